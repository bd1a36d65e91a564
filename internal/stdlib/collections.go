package stdlib

import (
	"fmt"

	"neve/internal/bignum"
	"neve/internal/eval"
)

// registerCollections wires the map/set module the original
// prototype's Value enum adds alongside list/record/variant. Map and
// Set are represented as linear-scan-by-equality slices (see
// internal/eval's value.go), so every lookup here is O(n) — acceptable
// for the small config-sized collections this language targets, and
// consistent with how Record already compares fields.
func registerCollections(b *eval.Builtins) {
	b.Register("map.empty", 0, builtinMapEmpty)
	b.Register("map.insert", 3, builtinMapInsert)
	b.Register("map.get", 2, builtinMapGet)
	b.Register("map.remove", 2, builtinMapRemove)
	b.Register("map.contains", 2, builtinMapContains)
	b.Register("map.keys", 1, builtinMapKeys)
	b.Register("map.values", 1, builtinMapValues)
	b.Register("map.size", 1, builtinMapSize)
	b.Register("map.from_list", 1, builtinMapFromList)

	b.Register("set.empty", 0, builtinSetEmpty)
	b.Register("set.insert", 2, builtinSetInsert)
	b.Register("set.remove", 2, builtinSetRemove)
	b.Register("set.contains", 2, builtinSetContains)
	b.Register("set.size", 1, builtinSetSize)
	b.Register("set.to_list", 1, builtinSetToList)
	b.Register("set.from_list", 1, builtinSetFromList)

	b.Register("collections.to_map", 1, builtinMapFromList)
	b.Register("collections.to_set", 1, builtinSetFromList)
}

func wantMap(v eval.Value) error {
	if v.Kind != eval.KindMap {
		return fmt.Errorf("stdlib: expected a map value")
	}
	return nil
}

func wantSet(v eval.Value) error {
	if v.Kind != eval.KindSet {
		return fmt.Errorf("stdlib: expected a set value")
	}
	return nil
}

func mapFind(m eval.Value, key eval.Value) (int, bool, error) {
	for i, k := range m.MapKeys {
		eq, err := eval.ValuesEqual(k, key)
		if err != nil {
			return 0, false, err
		}
		if eq {
			return i, true, nil
		}
	}
	return 0, false, nil
}

func setFind(s eval.Value, key eval.Value) (int, bool, error) {
	for i, k := range s.SetKeys {
		eq, err := eval.ValuesEqual(k, key)
		if err != nil {
			return 0, false, err
		}
		if eq {
			return i, true, nil
		}
	}
	return 0, false, nil
}

func builtinMapEmpty(_ *eval.Evaluator, _ []*eval.Thunk) (eval.Value, error) {
	return eval.Value{Kind: eval.KindMap}, nil
}

func builtinMapInsert(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	m, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantMap(m); err != nil {
		return eval.Value{}, err
	}
	key, err := args[1].Force()
	if err != nil {
		return eval.Value{}, err
	}
	idx, found, err := mapFind(m, key)
	if err != nil {
		return eval.Value{}, err
	}
	keys := append([]eval.Value{}, m.MapKeys...)
	vals := append([]*eval.Thunk{}, m.MapVals...)
	if found {
		vals[idx] = args[2]
	} else {
		keys = append(keys, key)
		vals = append(vals, args[2])
	}
	return eval.Value{Kind: eval.KindMap, MapKeys: keys, MapVals: vals}, nil
}

func builtinMapGet(ev *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	m, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantMap(m); err != nil {
		return eval.Value{}, err
	}
	key, err := args[1].Force()
	if err != nil {
		return eval.Value{}, err
	}
	idx, found, err := mapFind(m, key)
	if err != nil {
		return eval.Value{}, err
	}
	if !found {
		return noneVariant(ev), nil
	}
	return someVariant(ev, m.MapVals[idx]), nil
}

func builtinMapRemove(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	m, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantMap(m); err != nil {
		return eval.Value{}, err
	}
	key, err := args[1].Force()
	if err != nil {
		return eval.Value{}, err
	}
	idx, found, err := mapFind(m, key)
	if err != nil {
		return eval.Value{}, err
	}
	if !found {
		return m, nil
	}
	keys := append(append([]eval.Value{}, m.MapKeys[:idx]...), m.MapKeys[idx+1:]...)
	vals := append(append([]*eval.Thunk{}, m.MapVals[:idx]...), m.MapVals[idx+1:]...)
	return eval.Value{Kind: eval.KindMap, MapKeys: keys, MapVals: vals}, nil
}

func builtinMapContains(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	m, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantMap(m); err != nil {
		return eval.Value{}, err
	}
	key, err := args[1].Force()
	if err != nil {
		return eval.Value{}, err
	}
	_, found, err := mapFind(m, key)
	if err != nil {
		return eval.Value{}, err
	}
	return eval.Bool(found), nil
}

func builtinMapKeys(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	m, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantMap(m); err != nil {
		return eval.Value{}, err
	}
	return eval.ListFromValues(m.MapKeys), nil
}

func builtinMapValues(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	m, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantMap(m); err != nil {
		return eval.Value{}, err
	}
	return eval.ListFromThunks(m.MapVals), nil
}

func builtinMapSize(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	m, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantMap(m); err != nil {
		return eval.Value{}, err
	}
	return eval.Int(bignum.IntFromInt64(int64(len(m.MapKeys)))), nil
}

// builtinMapFromList builds a Map out of a list of (key, value) tuples,
// last-write-wins on duplicate keys — matching map.insert's own
// overwrite-on-collision behavior above.
func builtinMapFromList(ev *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	cur, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantList(cur); err != nil {
		return eval.Value{}, err
	}
	m := eval.Value{Kind: eval.KindMap}
	for !cur.ListNil {
		pair, err := cur.ListHead.Force()
		if err != nil {
			return eval.Value{}, err
		}
		if pair.Kind != eval.KindTuple || len(pair.Tuple) != 2 {
			return eval.Value{}, fmt.Errorf("stdlib: map.from_list expects a list of (key, value) tuples")
		}
		key, err := pair.Tuple[0].Force()
		if err != nil {
			return eval.Value{}, err
		}
		idx, found, err := mapFind(m, key)
		if err != nil {
			return eval.Value{}, err
		}
		if found {
			m.MapVals[idx] = pair.Tuple[1]
		} else {
			m.MapKeys = append(m.MapKeys, key)
			m.MapVals = append(m.MapVals, pair.Tuple[1])
		}
		cur, err = cur.ListTail.Force()
		if err != nil {
			return eval.Value{}, err
		}
	}
	return m, nil
}

func builtinSetEmpty(_ *eval.Evaluator, _ []*eval.Thunk) (eval.Value, error) {
	return eval.Value{Kind: eval.KindSet}, nil
}

func builtinSetInsert(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	s, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantSet(s); err != nil {
		return eval.Value{}, err
	}
	key, err := args[1].Force()
	if err != nil {
		return eval.Value{}, err
	}
	_, found, err := setFind(s, key)
	if err != nil {
		return eval.Value{}, err
	}
	if found {
		return s, nil
	}
	keys := append(append([]eval.Value{}, s.SetKeys...), key)
	return eval.Value{Kind: eval.KindSet, SetKeys: keys}, nil
}

func builtinSetRemove(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	s, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantSet(s); err != nil {
		return eval.Value{}, err
	}
	key, err := args[1].Force()
	if err != nil {
		return eval.Value{}, err
	}
	idx, found, err := setFind(s, key)
	if err != nil {
		return eval.Value{}, err
	}
	if !found {
		return s, nil
	}
	keys := append(append([]eval.Value{}, s.SetKeys[:idx]...), s.SetKeys[idx+1:]...)
	return eval.Value{Kind: eval.KindSet, SetKeys: keys}, nil
}

func builtinSetContains(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	s, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantSet(s); err != nil {
		return eval.Value{}, err
	}
	key, err := args[1].Force()
	if err != nil {
		return eval.Value{}, err
	}
	_, found, err := setFind(s, key)
	if err != nil {
		return eval.Value{}, err
	}
	return eval.Bool(found), nil
}

func builtinSetSize(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	s, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantSet(s); err != nil {
		return eval.Value{}, err
	}
	return eval.Int(bignum.IntFromInt64(int64(len(s.SetKeys)))), nil
}

func builtinSetToList(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	s, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantSet(s); err != nil {
		return eval.Value{}, err
	}
	return eval.ListFromValues(s.SetKeys), nil
}

func builtinSetFromList(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	cur, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantList(cur); err != nil {
		return eval.Value{}, err
	}
	s := eval.Value{Kind: eval.KindSet}
	for !cur.ListNil {
		elem, err := cur.ListHead.Force()
		if err != nil {
			return eval.Value{}, err
		}
		_, found, err := setFind(s, elem)
		if err != nil {
			return eval.Value{}, err
		}
		if !found {
			s.SetKeys = append(s.SetKeys, elem)
		}
		cur, err = cur.ListTail.Force()
		if err != nil {
			return eval.Value{}, err
		}
	}
	return s, nil
}
