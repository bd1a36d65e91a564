package parser

import (
	"strconv"
	"strings"

	"neve/internal/ast"
	"neve/internal/diag"
	"neve/internal/source"
	"neve/internal/token"
)

// parseExpr parses one full expression, including a trailing `a .. b` range.
func (p *Parser) parseExpr() (ast.ExprID, bool) {
	left, ok := p.parseBinary(precLowest)
	if !ok {
		return ast.NoExprID, false
	}
	if p.at(token.DotDot) {
		dotdot := p.advance()
		incl := p.at(token.Assign) && p.lx.Peek().Span.Start == dotdot.Span.End
		if incl {
			p.advance()
		}
		right, ok := p.parseBinary(precLowest)
		if !ok {
			return ast.NoExprID, false
		}
		leftSp := p.mod.Exprs.Get(left).Span
		rightSp := p.mod.Exprs.Get(right).Span
		return p.mod.Exprs.New(ast.Expr{
			Kind: ast.ExprRange, Span: leftSp.Cover(rightSp),
			Left: left, Right: right, RangeIncl: incl,
		}), true
	}
	return left, true
}

// parseBinary implements precedence climbing over the binary/pipe operator
// table, bottoming out at parseUnary.
func (p *Parser) parseBinary(minPrec int) (ast.ExprID, bool) {
	left, ok := p.parseUnary()
	if !ok {
		return ast.NoExprID, false
	}
	for {
		info, known := binaryOps[p.lx.Peek().Kind]
		if !known || info.prec < minPrec {
			return left, true
		}
		opTok := p.advance()
		nextMin := info.prec + 1
		if info.rightAssoc {
			nextMin = info.prec
		}
		right, ok := p.parseBinary(nextMin)
		if !ok {
			return ast.NoExprID, false
		}
		leftSp := p.mod.Exprs.Get(left).Span
		rightSp := p.mod.Exprs.Get(right).Span
		span := leftSp.Cover(rightSp)
		if opTok.Kind == token.PipeGt {
			left = p.mod.Exprs.New(ast.Expr{Kind: ast.ExprPipe, Span: span, Left: left, Right: right})
		} else {
			left = p.mod.Exprs.New(ast.Expr{Kind: ast.ExprBinary, Span: span, BinOp: info.op, Left: left, Right: right})
		}
	}
}

// parseUnary handles prefix `!`/`-`, right-associative.
func (p *Parser) parseUnary() (ast.ExprID, bool) {
	tok := p.lx.Peek()
	var op ast.UnaryOp
	switch tok.Kind {
	case token.Bang:
		op = ast.OpNot
	case token.Minus:
		op = ast.OpNeg
	default:
		return p.parsePostfix()
	}
	p.advance()
	operand, ok := p.parseUnary()
	if !ok {
		return ast.NoExprID, false
	}
	sp := tok.Span.Cover(p.mod.Exprs.Get(operand).Span)
	return p.mod.Exprs.New(ast.Expr{Kind: ast.ExprUnary, Span: sp, UnOp: op, Operand: operand}), true
}

// parsePostfix handles the tightest-binding suffix chain: member access,
// safe member access, call, index, and the postfix try operator `?`.
func (p *Parser) parsePostfix() (ast.ExprID, bool) {
	expr, ok := p.parsePrimary()
	if !ok {
		return ast.NoExprID, false
	}
	for {
		switch {
		case p.at(token.Dot):
			p.advance()
			nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected a field name after '.'")
			if !ok {
				return ast.NoExprID, false
			}
			sp := p.mod.Exprs.Get(expr).Span.Cover(nameTok.Span)
			expr = p.mod.Exprs.New(ast.Expr{Kind: ast.ExprField, Span: sp, Receiver: expr, FieldN: p.sym(nameTok.Text)})

		case p.at(token.QDot):
			p.advance()
			nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected a field name after '?.'")
			if !ok {
				return ast.NoExprID, false
			}
			sp := p.mod.Exprs.Get(expr).Span.Cover(nameTok.Span)
			expr = p.mod.Exprs.New(ast.Expr{Kind: ast.ExprSafeField, Span: sp, Receiver: expr, FieldN: p.sym(nameTok.Text)})

		case p.at(token.LParen):
			p.advance()
			var args []ast.ExprID
			for !p.at(token.RParen) && !p.at(token.EOF) {
				arg, ok := p.parseExpr()
				if !ok {
					return ast.NoExprID, false
				}
				args = append(args, arg)
				if p.at(token.Comma) {
					p.advance()
				} else {
					break
				}
			}
			closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close call arguments")
			if !ok {
				return ast.NoExprID, false
			}
			sp := p.mod.Exprs.Get(expr).Span.Cover(closeTok.Span)
			expr = p.mod.Exprs.New(ast.Expr{Kind: ast.ExprCall, Span: sp, Callee: expr, Elems: args})

		case p.at(token.LBracket):
			p.advance()
			idx, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			closeTok, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' to close index expression")
			if !ok {
				return ast.NoExprID, false
			}
			sp := p.mod.Exprs.Get(expr).Span.Cover(closeTok.Span)
			expr = p.mod.Exprs.New(ast.Expr{Kind: ast.ExprIndex, Span: sp, Receiver: expr, Index: idx})

		case p.at(token.Question):
			qTok := p.advance()
			sp := p.mod.Exprs.Get(expr).Span.Cover(qTok.Span)
			expr = p.mod.Exprs.New(ast.Expr{Kind: ast.ExprTry, Span: sp, Operand: expr})

		default:
			return expr, true
		}
	}
}

func (p *Parser) parsePrimary() (ast.ExprID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.IntLit, token.FloatLit, token.BoolLit, token.CharLit, token.StringLit:
		return p.parseLiteralExpr()

	case token.InterpString, token.MultilineStr:
		return p.parseInterpOrMultiline()

	case token.PathLit:
		p.advance()
		return p.mod.Exprs.New(ast.Expr{Kind: ast.ExprPathLit, Span: tok.Span, Text: p.sym(tok.Text)}), true

	case token.Ident:
		p.advance()
		return p.mod.Exprs.New(ast.Expr{Kind: ast.ExprIdent, Span: tok.Span, Name: p.sym(tok.Text)}), true

	case token.KwSelf, token.KwSuper, token.KwCrate:
		return p.parseQualifiedIdent()

	case token.KwFn:
		return p.parseLambda()

	case token.KwIf:
		return p.parseIf()

	case token.KwMatch:
		return p.parseMatch()

	case token.LBrace:
		return p.parseBlock()

	case token.HashBrace:
		return p.parseRecordLiteral()

	case token.LBracket:
		return p.parseListOrComprehension()

	case token.LParen:
		return p.parseParenOrTuple()

	default:
		p.err(diag.SynExpectExpression, "expected an expression")
		return ast.NoExprID, false
	}
}

func (p *Parser) parseQualifiedIdent() (ast.ExprID, bool) {
	kw := p.advance()
	var qual ast.Qualifier
	switch kw.Kind {
	case token.KwSelf:
		qual = ast.QualSelf
	case token.KwSuper:
		qual = ast.QualSuper
	case token.KwCrate:
		qual = ast.QualCrate
	}
	if !p.at(token.Dot) {
		return p.mod.Exprs.New(ast.Expr{Kind: ast.ExprIdent, Span: kw.Span, Qualifier: qual}), true
	}
	p.advance()
	nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected an identifier after qualifier")
	if !ok {
		return ast.NoExprID, false
	}
	sp := kw.Span.Cover(nameTok.Span)
	return p.mod.Exprs.New(ast.Expr{Kind: ast.ExprIdent, Span: sp, Name: p.sym(nameTok.Text), Qualifier: qual}), true
}

// parseLiteralExpr parses a single scalar literal token into an Expr node.
func (p *Parser) parseLiteralExpr() (ast.ExprID, bool) {
	tok := p.advance()
	switch tok.Kind {
	case token.IntLit:
		return p.mod.Exprs.New(ast.Expr{Kind: ast.ExprIntLit, Span: tok.Span, Text: p.sym(tok.Text), IntBase: tok.IntBase}), true
	case token.FloatLit:
		return p.mod.Exprs.New(ast.Expr{Kind: ast.ExprFloatLit, Span: tok.Span, Text: p.sym(tok.Text)}), true
	case token.BoolLit:
		return p.mod.Exprs.New(ast.Expr{Kind: ast.ExprBoolLit, Span: tok.Span, BoolVal: tok.BoolValue}), true
	case token.CharLit:
		return p.mod.Exprs.New(ast.Expr{Kind: ast.ExprCharLit, Span: tok.Span, CharVal: decodeCharLiteral(tok.Text)}), true
	case token.StringLit:
		decoded := decodeStringLiteral(tok.Text)
		return p.mod.Exprs.New(ast.Expr{Kind: ast.ExprStringLit, Span: tok.Span, Text: p.sym(decoded)}), true
	default:
		p.errAt(diag.SynExpectExpression, tok.Span, "expected a literal")
		return ast.NoExprID, false
	}
}

// decodeStringLiteral strips the surrounding quotes and resolves the escape
// sequences the lexer recognized but did not itself decode.
func decodeStringLiteral(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	return decodeEscapes(raw)
}

func decodeCharLiteral(raw string) rune {
	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		raw = raw[1 : len(raw)-1]
	}
	decoded := decodeEscapes(raw)
	for _, r := range decoded {
		return r
	}
	return 0
}

func decodeEscapes(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '\\' || i+1 >= len(runes) {
			b.WriteRune(r)
			continue
		}
		i++
		switch runes[i] {
		case 'n':
			b.WriteRune('\n')
		case 't':
			b.WriteRune('\t')
		case 'r':
			b.WriteRune('\r')
		case '0':
			b.WriteRune(0)
		case '\\':
			b.WriteRune('\\')
		case '"':
			b.WriteRune('"')
		case '\'':
			b.WriteRune('\'')
		case '`':
			b.WriteRune('`')
		case 'u':
			if i+1 < len(runes) && runes[i+1] == '{' {
				j := i + 2
				for j < len(runes) && runes[j] != '}' {
					j++
				}
				if j < len(runes) {
					if v, err := strconv.ParseInt(string(runes[i+2:j]), 16, 32); err == nil {
						b.WriteRune(rune(v))
					}
					i = j
				}
			}
		default:
			b.WriteRune(runes[i])
		}
	}
	return b.String()
}

// parseInterpOrMultiline turns the lexer's pre-scanned StringSegments into
// InterpSegment AST nodes, recursively parsing the embedded `{expr}` token
// runs with a sub-parser sharing this parser's arenas.
func (p *Parser) parseInterpOrMultiline() (ast.ExprID, bool) {
	tok := p.advance()
	if tok.Kind == token.MultilineStr {
		lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(tok.Text, `"""`), `"""`), "\n")
		indent := -1
		for _, ln := range lines {
			if n := len(ln) - len(strings.TrimLeft(ln, " \t")); strings.TrimSpace(ln) != "" && (indent < 0 || n < indent) {
				indent = n
			}
		}
		for i, ln := range lines {
			if indent > 0 && len(ln) >= indent {
				lines[i] = ln[indent:]
			}
		}
		return p.mod.Exprs.New(ast.Expr{Kind: ast.ExprMultilineStr, Span: tok.Span, Text: p.sym(decodeEscapes(strings.Join(lines, "\n")))}), true
	}
	kind := ast.ExprInterpString
	if tok.Kind == token.MultilineStr {
		kind = ast.ExprMultilineStr
	}
	var segs []ast.InterpSegment
	for _, s := range tok.Segments {
		if s.Literal {
			segs = append(segs, ast.InterpSegment{Literal: true, Text: p.sym(decodeEscapes(s.Text))})
			continue
		}
		sub := p.subParser(s.Tokens, tok.Span)
		inner, ok := sub.parseExpr()
		p.opts.CurrentErrors = sub.opts.CurrentErrors
		if !ok {
			return ast.NoExprID, false
		}
		segs = append(segs, ast.InterpSegment{Literal: false, Expr: inner})
	}
	return p.mod.Exprs.New(ast.Expr{Kind: kind, Span: tok.Span, Segments: segs}), true
}

func (p *Parser) parseParenOrTuple() (ast.ExprID, bool) {
	open := p.advance() // (
	if p.at(token.RParen) {
		closeTok := p.advance()
		return p.mod.Exprs.New(ast.Expr{Kind: ast.ExprTuple, Span: open.Span.Cover(closeTok.Span)}), true
	}
	first, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	if !p.at(token.Comma) {
		closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'")
		if !ok {
			return ast.NoExprID, false
		}
		_ = closeTok
		return first, true
	}
	elems := []ast.ExprID{first}
	for p.at(token.Comma) {
		p.advance()
		if p.at(token.RParen) {
			break
		}
		el, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		elems = append(elems, el)
	}
	closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close tuple")
	if !ok {
		return ast.NoExprID, false
	}
	return p.mod.Exprs.New(ast.Expr{Kind: ast.ExprTuple, Span: open.Span.Cover(closeTok.Span), Elems: elems}), true
}

// parseListOrComprehension parses `[e, e, ...]` or `[expr | gen, gen, ..., guard]`.
func (p *Parser) parseListOrComprehension() (ast.ExprID, bool) {
	open := p.advance() // [
	if p.at(token.RBracket) {
		closeTok := p.advance()
		return p.mod.Exprs.New(ast.Expr{Kind: ast.ExprList, Span: open.Span.Cover(closeTok.Span)}), true
	}
	head, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	if p.at(token.Pipe) {
		return p.parseListComprehension(open, head)
	}
	elems := []ast.ExprID{head}
	for p.at(token.Comma) {
		p.advance()
		if p.at(token.RBracket) {
			break
		}
		el, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		elems = append(elems, el)
	}
	closeTok, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' to close list literal")
	if !ok {
		return ast.NoExprID, false
	}
	return p.mod.Exprs.New(ast.Expr{Kind: ast.ExprList, Span: open.Span.Cover(closeTok.Span), Elems: elems}), true
}

// parseGeneratorArrow consumes the `<-` between a comprehension pattern and
// its source expression. The lexer has no dedicated token for it, so it is
// recognized as an adjacent `<` `-` pair.
func (p *Parser) parseGeneratorArrow() bool {
	lt, ok := p.expect(token.Lt, diag.SynExpectArrow, "expected '<-' after the comprehension pattern")
	if !ok {
		return false
	}
	minus, ok := p.expect(token.Minus, diag.SynExpectArrow, "expected '<-' after the comprehension pattern")
	if !ok {
		return false
	}
	if minus.Span.Start != lt.Span.End {
		p.errAt(diag.SynExpectArrow, lt.Span.Cover(minus.Span), "'<' and '-' must be adjacent to form '<-'")
	}
	return true
}

// parseListComprehension parses `[ result | pat <- src, pat <- src, if guard, ... ]`.
func (p *Parser) parseListComprehension(open token.Token, result ast.ExprID) (ast.ExprID, bool) {
	p.advance() // |
	var gens []ast.CompGenerator
	var guards []ast.ExprID
	for {
		if p.at(token.KwIf) {
			p.advance()
			g, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			guards = append(guards, g)
		} else {
			pat, ok := p.parsePattern()
			if !ok {
				return ast.NoExprID, false
			}
			if !p.parseGeneratorArrow() {
				return ast.NoExprID, false
			}
			src, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			gens = append(gens, ast.CompGenerator{Pattern: pat, Source: src})
		}
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	closeTok, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' to close list comprehension")
	if !ok {
		return ast.NoExprID, false
	}
	return p.mod.Exprs.New(ast.Expr{
		Kind: ast.ExprListComp, Span: open.Span.Cover(closeTok.Span),
		Body: result, Generators: gens, Guards: guards,
	}), true
}

func (p *Parser) parseRecordLiteral() (ast.ExprID, bool) {
	open := p.advance() // #{
	return p.parseRecordBody(open)
}

func (p *Parser) parseRecordBody(open token.Token) (ast.ExprID, bool) {
	var fields []ast.RecordFieldInit
	spread := ast.NoExprID
	seen := map[source.Symbol]bool{}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.at(token.DotDot) {
			p.advance()
			sv, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			spread = sv
			if p.at(token.Comma) {
				p.advance()
			}
			continue
		}
		nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected a field name in record literal")
		if !ok {
			return ast.NoExprID, false
		}
		name := p.sym(nameTok.Text)
		if seen[name] {
			p.errAt(diag.SynDuplicateRecordField, nameTok.Span, "duplicate record field")
		}
		seen[name] = true
		var val ast.ExprID
		fieldSpan := nameTok.Span
		if p.at(token.Assign) {
			p.advance()
			val, ok = p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			fieldSpan = fieldSpan.Cover(p.mod.Exprs.Get(val).Span)
		} else {
			val = p.mod.Exprs.New(ast.Expr{Kind: ast.ExprIdent, Span: nameTok.Span, Name: name})
		}
		fields = append(fields, ast.RecordFieldInit{Name: name, Value: val, Span: fieldSpan})
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close record literal")
	if !ok {
		return ast.NoExprID, false
	}
	return p.mod.Exprs.New(ast.Expr{
		Kind: ast.ExprRecord, Span: open.Span.Cover(closeTok.Span),
		Fields: fields, Spread: spread,
	}), true
}

// parseLambda parses `fn(params) [-> RetType] body`, where body is either a
// block or a bare expression.
func (p *Parser) parseLambda() (ast.ExprID, bool) {
	start := p.advance() // fn
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' to start lambda parameters"); !ok {
		return ast.NoExprID, false
	}
	var params []ast.Param
	for !p.at(token.RParen) && !p.at(token.EOF) {
		pstart := p.lx.Peek().Span
		lazy := false
		if p.at(token.KwLazy) {
			lazy = true
			p.advance()
		}
		nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected a parameter name")
		if !ok {
			return ast.NoExprID, false
		}
		paramType := ast.NoTypeID
		if p.at(token.Colon) {
			p.advance()
			paramType, ok = p.parseType()
			if !ok {
				return ast.NoExprID, false
			}
		} else if lazy {
			p.errAt(diag.SynInvalidLazyParam, pstart, "'lazy' requires an explicit parameter type")
		}
		params = append(params, ast.Param{Name: p.sym(nameTok.Text), Type: paramType, Lazy: lazy, Span: pstart.Cover(nameTok.Span)})
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close lambda parameters"); !ok {
		return ast.NoExprID, false
	}
	if p.at(token.Arrow) {
		p.advance()
		if _, ok := p.parseType(); !ok {
			return ast.NoExprID, false
		}
	}
	body, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	sp := start.Span.Cover(p.mod.Exprs.Get(body).Span)
	return p.mod.Exprs.New(ast.Expr{Kind: ast.ExprLambda, Span: sp, Params: params, Body: body}), true
}

func (p *Parser) parseIf() (ast.ExprID, bool) {
	start := p.advance() // if
	cond, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	then, ok := p.parseBlock()
	if !ok {
		return ast.NoExprID, false
	}
	elseExpr := ast.NoExprID
	end := p.mod.Exprs.Get(then).Span
	if p.at(token.KwElse) {
		p.advance()
		if p.at(token.KwIf) {
			elseExpr, ok = p.parseIf()
		} else {
			elseExpr, ok = p.parseBlock()
		}
		if !ok {
			return ast.NoExprID, false
		}
		end = p.mod.Exprs.Get(elseExpr).Span
	}
	return p.mod.Exprs.New(ast.Expr{
		Kind: ast.ExprIf, Span: start.Span.Cover(end),
		Cond: cond, Then: then, Else: elseExpr,
	}), true
}

func (p *Parser) parseMatch() (ast.ExprID, bool) {
	start := p.advance() // match
	scrutinee, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnclosedBrace, "expected '{' to start match arms"); !ok {
		return ast.NoExprID, false
	}
	var arms []ast.MatchArm
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		armStart := p.lx.Peek().Span
		pat, ok := p.parsePattern()
		if !ok {
			return ast.NoExprID, false
		}
		guard := ast.NoExprID
		if p.at(token.KwIf) {
			p.advance()
			guard, ok = p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
		}
		if _, ok := p.expect(token.Arrow, diag.SynExpectArrow, "expected '->' before the match arm body"); !ok {
			return ast.NoExprID, false
		}
		body, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body, Span: armStart.Cover(p.mod.Exprs.Get(body).Span)})
		if p.at(token.Comma) {
			p.advance()
		}
	}
	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close match arms")
	if !ok {
		return ast.NoExprID, false
	}
	return p.mod.Exprs.New(ast.Expr{
		Kind: ast.ExprMatch, Span: start.Span.Cover(closeTok.Span),
		Scrutinee: scrutinee, Arms: arms,
	}), true
}

// parseBlock parses `{ [let pat [: ty] = val;]* result }`.
func (p *Parser) parseBlock() (ast.ExprID, bool) {
	open, ok := p.expect(token.LBrace, diag.SynUnclosedBrace, "expected '{' to start a block")
	if !ok {
		return ast.NoExprID, false
	}
	var bindings []ast.BlockBinding
	for p.at(token.KwLet) {
		bstart := p.advance() // let
		pat, ok := p.parsePattern()
		if !ok {
			return ast.NoExprID, false
		}
		ty := ast.NoTypeID
		if p.at(token.Colon) {
			p.advance()
			ty, ok = p.parseType()
			if !ok {
				return ast.NoExprID, false
			}
		}
		if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' in let binding"); !ok {
			return ast.NoExprID, false
		}
		val, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after let binding")
		if !ok {
			return ast.NoExprID, false
		}
		bindings = append(bindings, ast.BlockBinding{Pattern: pat, Type: ty, Value: val, Span: bstart.Span.Cover(semi.Span)})
	}
	result, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close a block")
	if !ok {
		return ast.NoExprID, false
	}
	return p.mod.Exprs.New(ast.Expr{
		Kind: ast.ExprBlock, Span: open.Span.Cover(closeTok.Span),
		Bindings: bindings, Result: result,
	}), true
}
