package sema

import (
	"neve/internal/ast"
	"neve/internal/hir"
	"neve/internal/source"
	"neve/internal/types"
)

// genericVarsFor allocates one fresh template variable per generic
// parameter a struct/enum/trait/fn declares, returning both the
// name->variable map (for elaborate) and the variables in declaration
// order (for recording on the def's signature).
func (c *Checker) genericVarsFor(params []ast.GenericParam) (map[source.Symbol]types.TypeID, []types.VarID) {
	vars := make(map[source.Symbol]types.TypeID, len(params))
	order := make([]types.VarID, len(params))
	for i, p := range params {
		v := c.newVar()
		vars[p.Name] = v
		order[i] = c.store.Get(v).VarID
	}
	return vars, order
}

// collectTypeDecls elaborates every struct, enum, and type-alias
// declaration in m into its template signature, without yet looking at any
// value-level (fn/let) bodies. Trait bounds on a struct/enum's own generic
// parameters are recorded nowhere yet — Neve's grammar only allows bounds
// on fn/trait/impl generics, not on struct/enum fields' own parameters.
func (c *Checker) collectTypeDecls(m *hir.Module) {
	for _, defID := range m.Defs {
		def := c.prog.Def(defID)
		item := m.AST.Items.Get(def.Item)
		switch def.Kind {
		case hir.DefStruct:
			c.collectStruct(m, defID, item)
		case hir.DefEnum:
			c.collectEnum(m, defID, item)
		case hir.DefTypeAlias:
			c.collectAlias(m, defID, item)
		}
	}
}

func (c *Checker) collectStruct(m *hir.Module, defID hir.DefID, item *ast.Item) {
	vars, order := c.genericVarsFor(item.Generics)
	fields := make([]types.RecordField, len(item.Fields))
	for i, f := range item.Fields {
		fields[i] = types.RecordField{Name: f.Name, Type: c.elaborate(m, f.Type, vars)}
	}
	c.structs[defID] = &structDef{genericVars: order, fields: fields}
}

func (c *Checker) collectEnum(m *hir.Module, defID hir.DefID, item *ast.Item) {
	vars, order := c.genericVarsFor(item.Generics)
	ed := &enumDef{genericVars: order, variants: make(map[source.Symbol]variantDef, len(item.Variants))}
	args := make([]types.TypeID, len(item.Generics))
	for i, p := range item.Generics {
		args[i] = vars[p.Name]
	}
	result := c.store.NewConstructor(item.Name, uint32(defID), args)
	for _, v := range item.Variants {
		variantDefID := c.variantDefID(m, defID, v.Name)
		vd := variantDef{def: variantDefID}
		if len(v.Fields) > 0 {
			vd.fields = make([]types.RecordField, len(v.Fields))
			for i, f := range v.Fields {
				vd.fields[i] = types.RecordField{Name: f.Name, Type: c.elaborate(m, f.Type, vars)}
			}
		}
		if len(v.Positional) > 0 {
			vd.positional = make([]types.TypeID, len(v.Positional))
			for i, t := range v.Positional {
				vd.positional[i] = c.elaborate(m, t, vars)
			}
		}
		ed.variants[v.Name] = vd
		ed.order = append(ed.order, v.Name)
		if variantDefID.IsValid() {
			c.variantOwner[variantDefID] = defID
			c.schemes[variantDefID] = types.Scheme{Vars: order, Type: variantConstructorType(c.store, vd, result)}
		}
	}
	c.enums[defID] = ed
}

// variantConstructorType is the variant's own type, in terms of the enum's
// template variables: a function from its payload to the enum's
// Constructor type for a variant with fields, or the bare Constructor type
// for a nullary variant (used as a value, not called).
func variantConstructorType(store *types.Store, vd variantDef, result types.TypeID) types.TypeID {
	if len(vd.positional) == 0 && len(vd.fields) == 0 {
		return result
	}
	params := vd.positional
	if len(params) == 0 {
		params = make([]types.TypeID, len(vd.fields))
		for i, f := range vd.fields {
			params[i] = f.Type
		}
	}
	return store.NewFunction(params, result)
}

// variantDefID finds the DefID collect.go already allocated for this
// variant (a DefEnumVariant with Parent == defID and matching Name), so
// pattern/constructor resolution (which records a variant's DefID, not its
// enum's) can be traced back to this enumDef.
func (c *Checker) variantDefID(m *hir.Module, enumDefID hir.DefID, name source.Symbol) hir.DefID {
	for _, id := range m.Defs {
		d := c.prog.Def(id)
		if d.Kind == hir.DefEnumVariant && d.Parent == enumDefID && d.Name == name {
			return id
		}
	}
	return hir.NoDefID
}

func (c *Checker) collectAlias(m *hir.Module, defID hir.DefID, item *ast.Item) {
	vars, order := c.genericVarsFor(item.Generics)
	c.aliases[defID] = aliasDef{genericVars: order, target: c.elaborate(m, item.Type, vars)}
}

// collectTraitsAndImpls elaborates trait method signatures (in terms of an
// implicit Self variable) and records each impl's target type and method
// DefIDs, for method-call and trait-bound resolution during body checking.
// Runs after collectTypeDecls so impl target types naming a struct/enum
// resolve.
func (c *Checker) collectTraitsAndImpls(m *hir.Module) {
	for _, defID := range m.Defs {
		def := c.prog.Def(defID)
		item := m.AST.Items.Get(def.Item)
		switch def.Kind {
		case hir.DefTrait:
			c.collectTrait(m, defID, item)
		case hir.DefImpl:
			c.collectImpl(m, item)
		}
	}
}

func (c *Checker) collectTrait(m *hir.Module, defID hir.DefID, item *ast.Item) {
	selfVar := c.newVar()
	vars := map[source.Symbol]types.TypeID{c.selfSymbol(): selfVar}
	td := &traitDef{selfVar: c.store.Get(selfVar).VarID, methods: make(map[source.Symbol]types.TypeID, len(item.Methods))}
	for _, meth := range item.Methods {
		params := make([]types.TypeID, len(meth.Params))
		for i, p := range meth.Params {
			params[i] = c.elaborate(m, p.Type, vars)
		}
		td.methods[meth.Name] = c.store.NewFunction(params, c.elaborate(m, meth.RetType, vars))
	}
	c.traits[defID] = td
}

func (c *Checker) collectImpl(m *hir.Module, item *ast.Item) {
	vars, _ := c.genericVarsFor(item.Generics)
	target := c.elaborate(m, item.TargetType, vars)
	id := &implDef{trait: item.TraitName, target: target, methods: make(map[source.Symbol]hir.DefID, len(item.ImplMethods))}
	for _, methID := range item.ImplMethods {
		meth := m.AST.Items.Get(methID)
		id.methods[meth.Name] = c.defByItemID(m, methID)
	}
	c.impls = append(c.impls, id)
}

// defByItemID finds the DefID collect.go allocated for an item node, by
// linear scan over the module's own Defs. Module bodies are small enough
// (one program-wide Defs list per module, not per lookup) that this is not
// worth indexing for.
func (c *Checker) defByItemID(m *hir.Module, itemID ast.ItemID) hir.DefID {
	for _, id := range m.Defs {
		d := c.prog.Def(id)
		if d.Item == itemID {
			return id
		}
	}
	return hir.NoDefID
}
