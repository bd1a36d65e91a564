package parser

import (
	"neve/internal/ast"
	"neve/internal/diag"
	"neve/internal/source"
	"neve/internal/token"
)

// parseType parses one syntactic type expression.
func (p *Parser) parseType() (ast.TypeID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.KwSelf:
		p.advance()
		self := p.mod.Types.New(ast.TypeExpr{Kind: ast.TypeSelf, Span: tok.Span})
		return p.parseAssocTypeSuffix(self, tok.Span)

	case token.Ident:
		return p.parseNamedType()

	case token.LBracket:
		return p.parseListType()

	case token.HashBrace:
		return p.parseRecordType()

	case token.LParen:
		return p.parseTupleOrFunctionType()

	default:
		p.err(diag.SynExpectType, "expected a type")
		return ast.NoTypeID, false
	}
}

// parseAssocTypeSuffix parses an optional `.Name` suffix on `Self`, e.g.
// `Self.Item`.
func (p *Parser) parseAssocTypeSuffix(base ast.TypeID, baseSpan source.Span) (ast.TypeID, bool) {
	if !p.at(token.Dot) {
		return base, true
	}
	p.advance()
	nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected an associated type name after '.'")
	if !ok {
		return ast.NoTypeID, false
	}
	sp := baseSpan.Cover(nameTok.Span)
	return p.mod.Types.New(ast.TypeExpr{Kind: ast.TypeAssoc, Span: sp, Base: base, Name: p.sym(nameTok.Text)}), true
}

func (p *Parser) parseNamedType() (ast.TypeID, bool) {
	nameTok := p.advance()
	sp := nameTok.Span
	var args []ast.TypeID
	if p.at(token.Lt) {
		p.advance()
		for !p.at(token.Gt) && !p.at(token.EOF) {
			arg, ok := p.parseType()
			if !ok {
				return ast.NoTypeID, false
			}
			args = append(args, arg)
			if p.at(token.Comma) {
				p.advance()
			} else {
				break
			}
		}
		closeTok, ok := p.expect(token.Gt, diag.SynUnexpectedToken, "expected '>' to close type arguments")
		if !ok {
			return ast.NoTypeID, false
		}
		sp = sp.Cover(closeTok.Span)
	}
	named := p.mod.Types.New(ast.TypeExpr{Kind: ast.TypeName, Span: sp, Name: p.sym(nameTok.Text), TypeArgs: args})
	return p.parseAssocTypeSuffix(named, sp)
}

func (p *Parser) parseListType() (ast.TypeID, bool) {
	open := p.advance() // [
	elem, ok := p.parseType()
	if !ok {
		return ast.NoTypeID, false
	}
	closeTok, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' to close a list type")
	if !ok {
		return ast.NoTypeID, false
	}
	return p.mod.Types.New(ast.TypeExpr{Kind: ast.TypeListLit, Span: open.Span.Cover(closeTok.Span), Elem: elem}), true
}

func (p *Parser) parseRecordType() (ast.TypeID, bool) {
	open := p.advance() // #{
	var fields []ast.RecordTypeField
	openRow := false
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.at(token.DotDot) {
			p.advance()
			openRow = true
			break
		}
		nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected a field name in record type")
		if !ok {
			return ast.NoTypeID, false
		}
		if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after record type field name"); !ok {
			return ast.NoTypeID, false
		}
		fty, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		fields = append(fields, ast.RecordTypeField{Name: p.sym(nameTok.Text), Type: fty})
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close a record type")
	if !ok {
		return ast.NoTypeID, false
	}
	return p.mod.Types.New(ast.TypeExpr{
		Kind: ast.TypeRecordLit, Span: open.Span.Cover(closeTok.Span),
		Fields: fields, OpenRow: openRow,
	}), true
}

// parseTupleOrFunctionType parses `(T, U)` or `(T, U) -> V`. A single
// parenthesized type with no trailing arrow is just grouping.
func (p *Parser) parseTupleOrFunctionType() (ast.TypeID, bool) {
	open := p.advance() // (
	var elems []ast.TypeID
	for !p.at(token.RParen) && !p.at(token.EOF) {
		el, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		elems = append(elems, el)
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'")
	if !ok {
		return ast.NoTypeID, false
	}
	if p.at(token.Arrow) {
		p.advance()
		ret, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		sp := open.Span.Cover(p.mod.Types.Get(ret).Span)
		return p.mod.Types.New(ast.TypeExpr{Kind: ast.TypeFunction, Span: sp, Params: elems, Ret: ret}), true
	}
	if len(elems) == 1 {
		return elems[0], true
	}
	return p.mod.Types.New(ast.TypeExpr{Kind: ast.TypeTuple, Span: open.Span.Cover(closeTok.Span), Elems: elems}), true
}
