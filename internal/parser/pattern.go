package parser

import (
	"neve/internal/ast"
	"neve/internal/diag"
	"neve/internal/source"
	"neve/internal/token"
)

// parsePattern parses one top-level or-pattern: `p1 | p2 | p3`.
func (p *Parser) parsePattern() (ast.PatternID, bool) {
	first, ok := parsePatternAtomChain(p)
	if !ok {
		return ast.NoPatternID, false
	}
	if !p.at(token.Pipe) {
		return first, true
	}
	start := p.mod.Patterns.Get(first).Span
	alts := []ast.PatternID{first}
	for p.at(token.Pipe) {
		p.advance()
		alt, ok := parsePatternAtomChain(p)
		if !ok {
			return ast.NoPatternID, false
		}
		alts = append(alts, alt)
	}
	end := p.mod.Patterns.Get(alts[len(alts)-1]).Span
	id := p.mod.Patterns.New(ast.Pattern{Kind: ast.PatOr, Span: start.Cover(end), Elems: alts})
	return id, true
}

// parsePatternAtomChain parses a single pattern, then an optional `@ pattern`
// bind suffix (e.g. `x @ Some(_)`).
func parsePatternAtomChain(p *Parser) (ast.PatternID, bool) {
	inner, ok := p.parsePatternAtom()
	if !ok {
		return ast.NoPatternID, false
	}
	if p.at(token.At) {
		pat := p.mod.Patterns.Get(inner)
		if pat.Kind != ast.PatIdent {
			p.err(diag.SynInvalidPattern, "'@' bindings require an identifier on the left")
			return ast.NoPatternID, false
		}
		name := pat.Name
		start := pat.Span
		p.advance()
		sub, ok := p.parsePatternAtom()
		if !ok {
			return ast.NoPatternID, false
		}
		end := p.mod.Patterns.Get(sub).Span
		id := p.mod.Patterns.New(ast.Pattern{Kind: ast.PatBind, Span: start.Cover(end), Name: name, Inner: sub})
		return id, true
	}
	return inner, true
}

func (p *Parser) parsePatternAtom() (ast.PatternID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Underscore:
		p.advance()
		return p.mod.Patterns.New(ast.Pattern{Kind: ast.PatWildcard, Span: tok.Span}), true

	case token.IntLit, token.FloatLit, token.BoolLit, token.CharLit, token.StringLit:
		expr, ok := p.parseLiteralExpr()
		if !ok {
			return ast.NoPatternID, false
		}
		sp := p.mod.Exprs.Get(expr).Span
		return p.mod.Patterns.New(ast.Pattern{Kind: ast.PatLit, Span: sp, LitExpr: expr}), true

	case token.Minus:
		// negative numeric literal pattern
		start := tok.Span
		p.advance()
		expr, ok := p.parseLiteralExpr()
		if !ok {
			return ast.NoPatternID, false
		}
		e := p.mod.Exprs.Get(expr)
		neg := p.mod.Exprs.New(ast.Expr{Kind: ast.ExprUnary, Span: start.Cover(e.Span), UnOp: ast.OpNeg, Operand: expr})
		return p.mod.Patterns.New(ast.Pattern{Kind: ast.PatLit, Span: start.Cover(e.Span), LitExpr: neg}), true

	case token.Ident:
		p.advance()
		name := p.sym(tok.Text)
		if p.at(token.LParen) {
			return p.parseConstructorPattern(tok)
		}
		return p.mod.Patterns.New(ast.Pattern{Kind: ast.PatIdent, Span: tok.Span, Name: name}), true

	case token.LParen:
		return p.parseTuplePattern()

	case token.LBracket:
		return p.parseListPattern()

	case token.HashBrace:
		return p.parseRecordPattern()

	default:
		p.err(diag.SynInvalidPattern, "expected a pattern")
		return ast.NoPatternID, false
	}
}

func (p *Parser) parseConstructorPattern(nameTok token.Token) (ast.PatternID, bool) {
	p.advance() // (
	var args []ast.PatternID
	for !p.at(token.RParen) && !p.at(token.EOF) {
		arg, ok := p.parsePattern()
		if !ok {
			return ast.NoPatternID, false
		}
		args = append(args, arg)
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close constructor pattern arguments")
	if !ok {
		return ast.NoPatternID, false
	}
	id := p.mod.Patterns.New(ast.Pattern{
		Kind: ast.PatConstructor, Span: nameTok.Span.Cover(closeTok.Span),
		ConstructorName: p.sym(nameTok.Text), Args: args,
	})
	return id, true
}

func (p *Parser) parseTuplePattern() (ast.PatternID, bool) {
	open := p.advance() // (
	var elems []ast.PatternID
	for !p.at(token.RParen) && !p.at(token.EOF) {
		el, ok := p.parsePattern()
		if !ok {
			return ast.NoPatternID, false
		}
		elems = append(elems, el)
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close tuple pattern")
	if !ok {
		return ast.NoPatternID, false
	}
	if len(elems) == 1 {
		// A single parenthesized pattern is not a 1-tuple, just grouping.
		return elems[0], true
	}
	return p.mod.Patterns.New(ast.Pattern{Kind: ast.PatTuple, Span: open.Span.Cover(closeTok.Span), Elems: elems}), true
}

func (p *Parser) parseListPattern() (ast.PatternID, bool) {
	open := p.advance() // [
	var head []ast.PatternID
	hasRest := false
	restSym := source.NoSymbol
	for !p.at(token.RBracket) && !p.at(token.EOF) {
		if p.at(token.DotDot) {
			p.advance()
			hasRest = true
			if p.at(token.Ident) {
				t := p.advance()
				restSym = p.sym(t.Text)
			}
			break
		}
		el, ok := p.parsePattern()
		if !ok {
			return ast.NoPatternID, false
		}
		head = append(head, el)
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	closeTok, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' to close list pattern")
	if !ok {
		return ast.NoPatternID, false
	}
	return p.mod.Patterns.New(ast.Pattern{
		Kind: ast.PatList, Span: open.Span.Cover(closeTok.Span),
		Head: head, HasRest: hasRest, RestName: restSym,
	}), true
}

func (p *Parser) parseRecordPattern() (ast.PatternID, bool) {
	open := p.advance() // #{
	var fields []ast.RecordPatternField
	hasRest := false
	restSym := source.NoSymbol
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.at(token.DotDot) {
			p.advance()
			hasRest = true
			if p.at(token.Ident) {
				t := p.advance()
				restSym = p.sym(t.Text)
			}
			break
		}
		nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected a field name in record pattern")
		if !ok {
			return ast.NoPatternID, false
		}
		name := p.sym(nameTok.Text)
		fieldPat := ast.NoPatternID
		if p.at(token.Colon) {
			p.advance()
			fieldPat, ok = p.parsePattern()
			if !ok {
				return ast.NoPatternID, false
			}
		}
		fields = append(fields, ast.RecordPatternField{Name: name, Pattern: fieldPat})
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close record pattern")
	if !ok {
		return ast.NoPatternID, false
	}
	return p.mod.Patterns.New(ast.Pattern{
		Kind: ast.PatRecord, Span: open.Span.Cover(closeTok.Span),
		RecordFields: fields, HasRecordRest: hasRest, RecordRestName: restSym,
	}), true
}
