package parser

import (
	"neve/internal/ast"
	"neve/internal/diag"
	"neve/internal/lexer"
	"neve/internal/source"
	"neve/internal/token"
)

// Options configures a parse run.
type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough reports whether the error budget for this parse run is spent.
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

// Result is the outcome of parsing one file.
type Result struct {
	Module *ast.Module
	Bag    *diag.Bag
}

// tokenSource is the minimal interface the Parser drives: a real *lexer.Lexer
// scanning a file, or a tokenFeed replaying an already-scanned slice (used to
// parse the `{expr}` runs inside an interpolated string).
type tokenSource interface {
	Next() token.Token
	Peek() token.Token
}

// tokenFeed replays a fixed token slice, terminating with EOF once exhausted.
type tokenFeed struct {
	toks []token.Token
	pos  int
	eof  token.Token
}

func newTokenFeed(toks []token.Token, eofSpan source.Span) *tokenFeed {
	return &tokenFeed{toks: toks, eof: token.Token{Kind: token.EOF, Span: eofSpan}}
}

func (f *tokenFeed) Peek() token.Token {
	if f.pos >= len(f.toks) {
		return f.eof
	}
	return f.toks[f.pos]
}

func (f *tokenFeed) Next() token.Token {
	t := f.Peek()
	if f.pos < len(f.toks) {
		f.pos++
	}
	return t
}

// Parser holds the per-file state of a recursive-descent parse.
type Parser struct {
	lx       tokenSource
	mod      *ast.Module
	fs       *source.FileSet
	in       *source.Interner
	opts     Options
	lastSpan source.Span
}

// ParseFile parses one file's token stream into an *ast.Module. in is the
// symbol interner shared across the whole project, so identifiers parsed in
// different files intern to the same Symbol.
func ParseFile(fs *source.FileSet, in *source.Interner, lx *lexer.Lexer, opts Options) Result {
	p := &Parser{
		lx:       lx,
		mod:      ast.NewModule(),
		fs:       fs,
		in:       in,
		opts:     opts,
		lastSpan: lx.Peek().Span,
	}
	p.parseFile()

	var bag *diag.Bag
	if br, ok := opts.Reporter.(*diag.BagReporter); ok {
		bag = br.Bag
	}
	return Result{Module: p.mod, Bag: bag}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atAny(kinds ...token.Kind) bool {
	pk := p.lx.Peek().Kind
	for _, k := range kinds {
		if pk == k {
			return true
		}
	}
	return false
}

func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// diagSpan returns the span to attach to a diagnostic raised while looking
// at the current token: the token's own span, or (for a zero-width EOF) the
// position right after the last consumed token.
func (p *Parser) diagSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && peek.Span.Start == peek.Span.End && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// expect consumes the current token if it has kind k; otherwise it reports
// a diagnostic and returns ok=false without consuming anything.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.diagSpan()
	p.report(code, diag.SevError, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

func (p *Parser) err(code diag.Code, msg string) {
	p.report(code, diag.SevError, p.diagSpan(), msg)
}

func (p *Parser) errAt(code diag.Code, sp source.Span, msg string) {
	p.report(code, diag.SevError, sp, msg)
}

func (p *Parser) warnAt(code diag.Code, sp source.Span, msg string) {
	p.report(code, diag.SevWarning, sp, msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) {
	if p.opts.Reporter == nil {
		return
	}
	if sev == diag.SevError {
		p.opts.CurrentErrors++
	}
	if p.opts.Enough() {
		return
	}
	p.opts.Reporter.Report(code, sev, sp, msg, nil, nil)
}

// anchor tokens resync after a parse error: the start of a new item, or a
// closing delimiter that likely ends the enclosing construct.
var itemAnchors = []token.Kind{
	token.Semicolon, token.RBrace, token.EOF,
	token.KwLet, token.KwFn, token.KwType, token.KwStruct, token.KwEnum,
	token.KwTrait, token.KwImpl, token.KwImport, token.KwPub,
}

// resyncTop skips tokens until the next plausible item boundary.
func (p *Parser) resyncTop() {
	for !p.atAny(itemAnchors...) {
		p.advance()
	}
	if p.at(token.Semicolon) || p.at(token.RBrace) {
		p.advance()
	}
}

// resyncUntil skips tokens until one of the given kinds (without consuming it).
func (p *Parser) resyncUntil(kinds ...token.Kind) {
	for !p.atAny(append(kinds, token.EOF)...) {
		p.advance()
	}
}

// sym interns s using the parser's shared interner.
func (p *Parser) sym(s string) source.Symbol {
	return p.in.Intern(s)
}

// subParser parses a standalone expression out of an already-scanned token
// run (used for `{expr}` segments of an interpolated string), sharing this
// parser's arenas, interner, and diagnostic budget.
func (p *Parser) subParser(toks []token.Token, eofSpan source.Span) *Parser {
	return &Parser{
		lx:       newTokenFeed(toks, eofSpan),
		mod:      p.mod,
		fs:       p.fs,
		in:       p.in,
		opts:     p.opts,
		lastSpan: eofSpan,
	}
}

func (p *Parser) parseFile() {
	start := p.lx.Peek().Span
	var items []ast.ItemID
	for !p.at(token.EOF) {
		id, ok := p.parseItem()
		if ok {
			items = append(items, id)
		} else {
			p.resyncTop()
		}
	}
	p.mod.File = ast.File{Span: start.Cover(p.lastSpan), Items: items}
}
