package types_test

import (
	"testing"

	"neve/internal/source"
	"neve/internal/types"
)

func TestStoreSeedsPrimitives(t *testing.T) {
	store := types.NewStore()
	if store.Int == types.NoTypeID || store.Bool == types.NoTypeID || store.String == types.NoTypeID {
		t.Fatalf("expected primitive TypeIDs to be seeded")
	}
	if store.Get(store.Int).Kind != types.KindInt {
		t.Fatalf("expected Int to have KindInt, got %v", store.Get(store.Int).Kind)
	}
}

func TestResolveFollowsLinkWithCompression(t *testing.T) {
	store := types.NewStore()
	a := store.NewVar(0)
	b := store.NewVar(0)
	c := store.NewVar(0)

	store.Get(a).Link = b
	store.Get(b).Link = c
	store.Get(c).Link = store.Int

	if got := store.Resolve(a); got != store.Int {
		t.Fatalf("expected a to resolve through the chain to Int, got %v", got)
	}
	// Path compression should have shortened a's link directly to Int.
	if store.Get(a).Link != store.Int {
		t.Fatalf("expected path compression to shorten a's link, got %v", store.Get(a).Link)
	}
}

func TestSchemeInstantiateFreshensEachCall(t *testing.T) {
	store := types.NewStore()
	v := store.NewVar(1)
	fn := store.NewFunction([]types.TypeID{v}, v)
	scheme := types.Scheme{Vars: []types.VarID{store.Get(v).VarID}, Type: fn}

	first, _ := scheme.Instantiate(store, 2)
	second, _ := scheme.Instantiate(store, 2)
	if first == second {
		t.Fatalf("expected two instantiations to produce distinct types, got the same TypeID")
	}

	firstFn := store.Get(first)
	secondFn := store.Get(second)
	if firstFn.Elems[0] == secondFn.Elems[0] {
		t.Fatalf("expected each instantiation to allocate its own fresh variable")
	}
}

func TestSchemeInstantiateCarriesBounds(t *testing.T) {
	store := types.NewStore()
	in := source.NewInterner()
	showTrait := in.Intern("Show")

	v := store.NewVar(0)
	scheme := types.Scheme{
		Vars:   []types.VarID{store.Get(v).VarID},
		Bounds: []types.Bound{{Var: store.Get(v).VarID, Trait: showTrait}},
		Type:   v,
	}

	_, bounds := scheme.Instantiate(store, 1)
	if len(bounds) != 1 || bounds[0].Trait != showTrait {
		t.Fatalf("expected the fresh variable to inherit the Show bound, got %+v", bounds)
	}
}

func TestLabelRendersCompoundTypes(t *testing.T) {
	store := types.NewStore()
	in := source.NewInterner()

	list := store.NewList(store.Int)
	if got := types.Label(in, store, list); got != "[Int]" {
		t.Fatalf("expected '[Int]', got %q", got)
	}

	fieldName := in.Intern("name")
	rec := store.NewRecord([]types.RecordField{{Name: fieldName, Type: store.String}}, types.NoTypeID)
	if got := types.Label(in, store, rec); got != "#{name: String}" {
		t.Fatalf("expected '#{name: String}', got %q", got)
	}

	fn := store.NewFunction([]types.TypeID{store.Int, store.Int}, store.Bool)
	if got := types.Label(in, store, fn); got != "fn(Int, Int) -> Bool" {
		t.Fatalf("expected 'fn(Int, Int) -> Bool', got %q", got)
	}
}
