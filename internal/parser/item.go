package parser

import (
	"neve/internal/ast"
	"neve/internal/diag"
	"neve/internal/source"
	"neve/internal/token"
)

// parseItem parses one top-level (or trait-body) definition.
func (p *Parser) parseItem() (ast.ItemID, bool) {
	vis := ast.VisPrivate
	if p.at(token.KwPub) {
		p.advance()
		vis = ast.VisPublic
	}
	switch p.lx.Peek().Kind {
	case token.KwLet:
		return p.parseLetItem(vis)
	case token.KwFn:
		return p.parseFnItem(vis)
	case token.KwType:
		return p.parseTypeAliasItem(vis)
	case token.KwStruct:
		return p.parseStructItem(vis)
	case token.KwEnum:
		return p.parseEnumItem(vis)
	case token.KwTrait:
		return p.parseTraitItem(vis)
	case token.KwImpl:
		return p.parseImplItem()
	case token.KwImport:
		return p.parseImportItem(vis)
	default:
		p.err(diag.SynUnexpectedToken, "expected an item: let, fn, type, struct, enum, trait, impl, or import")
		return ast.NoItemID, false
	}
}

func (p *Parser) parseGenerics() ([]ast.GenericParam, bool) {
	if !p.at(token.Lt) {
		return nil, true
	}
	p.advance()
	var params []ast.GenericParam
	for !p.at(token.Gt) && !p.at(token.EOF) {
		nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected a generic parameter name")
		if !ok {
			return nil, false
		}
		var bounds []ast.TraitBound
		if p.at(token.Colon) {
			p.advance()
			for {
				b, ok := p.parseTraitBound()
				if !ok {
					return nil, false
				}
				bounds = append(bounds, b)
				if p.at(token.Plus) {
					p.advance()
					continue
				}
				break
			}
		}
		params = append(params, ast.GenericParam{Name: p.sym(nameTok.Text), Bounds: bounds})
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	if _, ok := p.expect(token.Gt, diag.SynUnexpectedToken, "expected '>' to close generic parameters"); !ok {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseTraitBound() (ast.TraitBound, bool) {
	nameTok, ok := p.expect(token.Ident, diag.SynInvalidTraitBound, "expected a trait name")
	if !ok {
		return ast.TraitBound{}, false
	}
	var args []ast.TypeID
	if p.at(token.Lt) {
		p.advance()
		for !p.at(token.Gt) && !p.at(token.EOF) {
			t, ok := p.parseType()
			if !ok {
				return ast.TraitBound{}, false
			}
			args = append(args, t)
			if p.at(token.Comma) {
				p.advance()
			} else {
				break
			}
		}
		if _, ok := p.expect(token.Gt, diag.SynUnexpectedToken, "expected '>' to close trait bound arguments"); !ok {
			return ast.TraitBound{}, false
		}
	}
	return ast.TraitBound{Trait: p.sym(nameTok.Text), Args: args}, true
}

func (p *Parser) parseLetItem(vis ast.Visibility) (ast.ItemID, bool) {
	start := p.advance() // let
	pat, ok := p.parsePattern()
	if !ok {
		return ast.NoItemID, false
	}
	ty := ast.NoTypeID
	if p.at(token.Colon) {
		p.advance()
		ty, ok = p.parseType()
		if !ok {
			return ast.NoItemID, false
		}
	}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' in let item"); !ok {
		return ast.NoItemID, false
	}
	val, ok := p.parseExpr()
	if !ok {
		return ast.NoItemID, false
	}
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after let item")
	if !ok {
		return ast.NoItemID, false
	}
	name := source.NoSymbol
	if patv := p.mod.Patterns.Get(pat); patv.Kind == ast.PatIdent {
		name = patv.Name
	}
	return p.mod.Items.New(ast.Item{
		Kind: ast.ItemLet, Span: start.Span.Cover(semi.Span), Vis: vis,
		Name: name, Pattern: pat, Type: ty, Value: val,
	}), true
}

// expectParamName accepts a plain identifier or the reserved word `self`
// (written as `self: Self` in a trait/impl method's receiver parameter).
func (p *Parser) expectParamName() (token.Token, bool) {
	if p.at(token.KwSelf) {
		return p.advance(), true
	}
	return p.expect(token.Ident, diag.SynExpectIdentifier, "expected a parameter name")
}

func (p *Parser) parseParamList() ([]ast.Param, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' to start parameters"); !ok {
		return nil, false
	}
	var params []ast.Param
	for !p.at(token.RParen) && !p.at(token.EOF) {
		pstart := p.lx.Peek().Span
		lazy := false
		if p.at(token.KwLazy) {
			lazy = true
			p.advance()
		}
		nameTok, ok := p.expectParamName()
		if !ok {
			return nil, false
		}
		pty := ast.NoTypeID
		pend := nameTok.Span
		if p.at(token.Colon) {
			p.advance()
			pty, ok = p.parseType()
			if !ok {
				return nil, false
			}
			pend = p.mod.Types.Get(pty).Span
		}
		params = append(params, ast.Param{Name: p.sym(nameTok.Text), Type: pty, Lazy: lazy, Span: pstart.Cover(pend)})
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close parameters"); !ok {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseFnItem(vis ast.Visibility) (ast.ItemID, bool) {
	start := p.advance() // fn
	nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected a function name")
	if !ok {
		return ast.NoItemID, false
	}
	generics, ok := p.parseGenerics()
	if !ok {
		return ast.NoItemID, false
	}
	params, ok := p.parseParamList()
	if !ok {
		return ast.NoItemID, false
	}
	retType := ast.NoTypeID
	if p.at(token.Arrow) {
		p.advance()
		retType, ok = p.parseType()
		if !ok {
			return ast.NoItemID, false
		}
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.NoItemID, false
	}
	sp := start.Span.Cover(p.mod.Exprs.Get(body).Span)
	return p.mod.Items.New(ast.Item{
		Kind: ast.ItemFn, Span: sp, Vis: vis, Name: p.sym(nameTok.Text),
		Generics: generics, Params: params, RetType: retType, Body: body,
	}), true
}

func (p *Parser) parseTypeAliasItem(vis ast.Visibility) (ast.ItemID, bool) {
	start := p.advance() // type
	nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected a type name")
	if !ok {
		return ast.NoItemID, false
	}
	generics, ok := p.parseGenerics()
	if !ok {
		return ast.NoItemID, false
	}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' in type alias"); !ok {
		return ast.NoItemID, false
	}
	ty, ok := p.parseType()
	if !ok {
		return ast.NoItemID, false
	}
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after type alias")
	if !ok {
		return ast.NoItemID, false
	}
	return p.mod.Items.New(ast.Item{
		Kind: ast.ItemTypeAlias, Span: start.Span.Cover(semi.Span), Vis: vis,
		Name: p.sym(nameTok.Text), Generics: generics, Type: ty,
	}), true
}

func (p *Parser) parseRecordFieldsBlock() ([]ast.RecordTypeField, source.Span, bool) {
	open, ok := p.expect(token.LBrace, diag.SynUnclosedBrace, "expected '{' to start fields")
	if !ok {
		return nil, source.Span{}, false
	}
	var fields []ast.RecordTypeField
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected a field name")
		if !ok {
			return nil, source.Span{}, false
		}
		if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after field name"); !ok {
			return nil, source.Span{}, false
		}
		fty, ok := p.parseType()
		if !ok {
			return nil, source.Span{}, false
		}
		fields = append(fields, ast.RecordTypeField{Name: p.sym(nameTok.Text), Type: fty})
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close fields")
	if !ok {
		return nil, source.Span{}, false
	}
	return fields, open.Span.Cover(closeTok.Span), true
}

func (p *Parser) parseStructItem(vis ast.Visibility) (ast.ItemID, bool) {
	start := p.advance() // struct
	nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected a struct name")
	if !ok {
		return ast.NoItemID, false
	}
	generics, ok := p.parseGenerics()
	if !ok {
		return ast.NoItemID, false
	}
	fields, bodySpan, ok := p.parseRecordFieldsBlock()
	if !ok {
		return ast.NoItemID, false
	}
	return p.mod.Items.New(ast.Item{
		Kind: ast.ItemStruct, Span: start.Span.Cover(bodySpan), Vis: vis,
		Name: p.sym(nameTok.Text), Generics: generics, Fields: fields,
	}), true
}

func (p *Parser) parseEnumItem(vis ast.Visibility) (ast.ItemID, bool) {
	start := p.advance() // enum
	nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected an enum name")
	if !ok {
		return ast.NoItemID, false
	}
	generics, ok := p.parseGenerics()
	if !ok {
		return ast.NoItemID, false
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnclosedBrace, "expected '{' to start enum variants"); !ok {
		return ast.NoItemID, false
	}
	var variants []ast.EnumVariant
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		vnameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected a variant name")
		if !ok {
			return ast.NoItemID, false
		}
		v := ast.EnumVariant{Name: p.sym(vnameTok.Text), Span: vnameTok.Span}
		switch {
		case p.at(token.LBrace):
			fields, bodySpan, ok := p.parseRecordFieldsBlock()
			if !ok {
				return ast.NoItemID, false
			}
			v.Fields = fields
			v.Span = v.Span.Cover(bodySpan)
		case p.at(token.LParen):
			p.advance()
			var positional []ast.TypeID
			for !p.at(token.RParen) && !p.at(token.EOF) {
				t, ok := p.parseType()
				if !ok {
					return ast.NoItemID, false
				}
				positional = append(positional, t)
				if p.at(token.Comma) {
					p.advance()
				} else {
					break
				}
			}
			closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close variant fields")
			if !ok {
				return ast.NoItemID, false
			}
			v.Positional = positional
			v.Span = v.Span.Cover(closeTok.Span)
		}
		variants = append(variants, v)
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close enum variants")
	if !ok {
		return ast.NoItemID, false
	}
	return p.mod.Items.New(ast.Item{
		Kind: ast.ItemEnum, Span: start.Span.Cover(closeTok.Span), Vis: vis,
		Name: p.sym(nameTok.Text), Generics: generics, Variants: variants,
	}), true
}

func (p *Parser) parseTraitItem(vis ast.Visibility) (ast.ItemID, bool) {
	start := p.advance() // trait
	nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected a trait name")
	if !ok {
		return ast.NoItemID, false
	}
	generics, ok := p.parseGenerics()
	if !ok {
		return ast.NoItemID, false
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnclosedBrace, "expected '{' to start trait body"); !ok {
		return ast.NoItemID, false
	}
	var assocDecls []ast.AssocTypeDecl
	var methods []ast.TraitMethodSig
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		switch {
		case p.at(token.KwType):
			p.advance()
			anameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected an associated type name")
			if !ok {
				return ast.NoItemID, false
			}
			var bounds []ast.TraitBound
			if p.at(token.Colon) {
				p.advance()
				for {
					b, ok := p.parseTraitBound()
					if !ok {
						return ast.NoItemID, false
					}
					bounds = append(bounds, b)
					if p.at(token.Plus) {
						p.advance()
						continue
					}
					break
				}
			}
			def := ast.NoTypeID
			if p.at(token.Assign) {
				p.advance()
				def, ok = p.parseType()
				if !ok {
					return ast.NoItemID, false
				}
			}
			if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after associated type declaration"); !ok {
				return ast.NoItemID, false
			}
			assocDecls = append(assocDecls, ast.AssocTypeDecl{Name: p.sym(anameTok.Text), Bounds: bounds, Default: def})

		case p.at(token.KwFn):
			mstart := p.advance()
			mnameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected a method name")
			if !ok {
				return ast.NoItemID, false
			}
			params, ok := p.parseParamList()
			if !ok {
				return ast.NoItemID, false
			}
			ret := ast.NoTypeID
			if p.at(token.Arrow) {
				p.advance()
				ret, ok = p.parseType()
				if !ok {
					return ast.NoItemID, false
				}
			}
			defBody := ast.NoExprID
			sigSpan := mstart.Span
			if p.at(token.LBrace) {
				defBody, ok = p.parseBlock()
				if !ok {
					return ast.NoItemID, false
				}
				sigSpan = sigSpan.Cover(p.mod.Exprs.Get(defBody).Span)
			} else {
				semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after an abstract method signature")
				if !ok {
					return ast.NoItemID, false
				}
				sigSpan = sigSpan.Cover(semi.Span)
			}
			methods = append(methods, ast.TraitMethodSig{
				Name: p.sym(mnameTok.Text), Params: params, RetType: ret, Default: defBody, Span: sigSpan,
			})

		default:
			p.err(diag.SynUnexpectedToken, "expected 'type' or 'fn' in trait body")
			return ast.NoItemID, false
		}
	}
	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close trait body")
	if !ok {
		return ast.NoItemID, false
	}
	return p.mod.Items.New(ast.Item{
		Kind: ast.ItemTrait, Span: start.Span.Cover(closeTok.Span), Vis: vis,
		Name: p.sym(nameTok.Text), Generics: generics, AssocDecls: assocDecls, Methods: methods,
	}), true
}

func (p *Parser) parseImplItem() (ast.ItemID, bool) {
	start := p.advance() // impl
	generics, ok := p.parseGenerics()
	if !ok {
		return ast.NoItemID, false
	}
	firstType, ok := p.parseType()
	if !ok {
		return ast.NoItemID, false
	}
	traitName := source.NoSymbol
	var traitArgs []ast.TypeID
	targetType := firstType
	if p.isForKeyword() {
		p.advance()
		targetType, ok = p.parseType()
		if !ok {
			return ast.NoItemID, false
		}
		fte := p.mod.Types.Get(firstType)
		traitName = fte.Name
		traitArgs = fte.TypeArgs
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnclosedBrace, "expected '{' to start impl body"); !ok {
		return ast.NoItemID, false
	}
	var assocBinds []ast.AssocTypeBinding
	var methods []ast.ItemID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.at(token.KwType) {
			p.advance()
			anameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected an associated type name")
			if !ok {
				return ast.NoItemID, false
			}
			if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' in associated type binding"); !ok {
				return ast.NoItemID, false
			}
			bty, ok := p.parseType()
			if !ok {
				return ast.NoItemID, false
			}
			if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after associated type binding"); !ok {
				return ast.NoItemID, false
			}
			assocBinds = append(assocBinds, ast.AssocTypeBinding{Name: p.sym(anameTok.Text), Type: bty})
			continue
		}
		m, ok := p.parseFnItem(ast.VisPrivate)
		if !ok {
			return ast.NoItemID, false
		}
		methods = append(methods, m)
	}
	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close impl body")
	if !ok {
		return ast.NoItemID, false
	}
	return p.mod.Items.New(ast.Item{
		Kind: ast.ItemImpl, Span: start.Span.Cover(closeTok.Span),
		Generics: generics, TraitName: traitName, TraitArgs: traitArgs,
		TargetType: targetType, AssocBinds: assocBinds, ImplMethods: methods,
	}), true
}

// isForKeyword reports whether the current token is the identifier "for",
// used to introduce the target type of a trait impl. "for" is not one of
// the language's 17 reserved keywords, so it is matched by text.
func (p *Parser) isForKeyword() bool {
	tok := p.lx.Peek()
	return tok.Kind == token.Ident && tok.Text == "for"
}

func (p *Parser) parseImportItem(vis ast.Visibility) (ast.ItemID, bool) {
	start := p.advance() // import
	var path []source.Symbol
	first, ok := p.expect(token.Ident, diag.SynExpectModulePath, "expected a module path segment")
	if !ok {
		return ast.NoItemID, false
	}
	path = append(path, p.sym(first.Text))
	for p.at(token.Dot) {
		p.advance()
		seg, ok := p.expect(token.Ident, diag.SynExpectModulePath, "expected a module path segment after '.'")
		if !ok {
			return ast.NoItemID, false
		}
		path = append(path, p.sym(seg.Text))
	}
	alias := source.NoSymbol
	if p.at(token.KwAs) {
		p.advance()
		aliasTok, ok := p.expect(token.Ident, diag.SynExpectIdentAfterAs, "expected an identifier after 'as'")
		if !ok {
			return ast.NoItemID, false
		}
		alias = p.sym(aliasTok.Text)
	}
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after import")
	if !ok {
		return ast.NoItemID, false
	}
	return p.mod.Items.New(ast.Item{
		Kind: ast.ItemImport, Span: start.Span.Cover(semi.Span), Vis: vis,
		Path: path, Alias: alias,
	}), true
}
