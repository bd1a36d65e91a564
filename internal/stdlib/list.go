package stdlib

import (
	"fmt"

	"neve/internal/bignum"
	"neve/internal/eval"
)

// registerList wires the list module: map, filter, fold, fold_right,
// length, head, tail, reverse, take, drop, zip, concat. Every one of
// these forces its list argument only as far as it
// needs to — map/filter build a new lazy cons chain rather than fully
// materializing their input, so `list.map(f, infiniteList)` stays usable.
func registerList(b *eval.Builtins) {
	b.Register("list.map", 2, builtinListMap)
	b.Register("list.filter", 2, builtinListFilter)
	b.Register("list.fold", 3, builtinListFold)
	b.Register("list.fold_right", 3, builtinListFoldRight)
	b.Register("list.length", 1, builtinListLength)
	b.Register("list.head", 1, builtinListHead)
	b.Register("list.tail", 1, builtinListTail)
	b.Register("list.reverse", 1, builtinListReverse)
	b.Register("list.take", 2, builtinListTake)
	b.Register("list.drop", 2, builtinListDrop)
	b.Register("list.zip", 2, builtinListZip)
	b.Register("list.concat", 1, builtinListConcat)
}

func wantList(v eval.Value) error {
	if v.Kind != eval.KindList {
		return fmt.Errorf("stdlib: expected a list value")
	}
	return nil
}

// builtinListMap returns a lazily-mapped list: forcing its head forces
// fn(head-of-xs) and nothing more of xs than that one element.
func builtinListMap(ev *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	fn, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	return mapList(ev, fn, args[1])
}

// mapList forces xs to WHNF immediately (there is no way to report
// Nil-vs-cons without knowing the spine's shape), but leaves the mapped
// head and the recursive mapping of the tail as unforced thunks — so
// `list.map(f, xs)` only ever runs fn as far as the result is consumed.
func mapList(ev *eval.Evaluator, fn eval.Value, xs *eval.Thunk) (eval.Value, error) {
	cur, err := xs.Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantList(cur); err != nil {
		return eval.Value{}, err
	}
	if cur.ListNil {
		return eval.Nil, nil
	}
	head, tail := cur.ListHead, cur.ListTail
	mappedHead := eval.NewThunk(func() (eval.Value, error) {
		return ev.Apply(fn, []*eval.Thunk{head})
	})
	mappedTail := eval.NewThunk(func() (eval.Value, error) {
		return mapList(ev, fn, tail)
	})
	return eval.Cons(mappedHead, mappedTail), nil
}

func builtinListFilter(ev *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	fn, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	return filterList(ev, fn, args[1])
}

func filterList(ev *eval.Evaluator, fn eval.Value, xs *eval.Thunk) (eval.Value, error) {
	for {
		cur, err := xs.Force()
		if err != nil {
			return eval.Value{}, err
		}
		if err := wantList(cur); err != nil {
			return eval.Value{}, err
		}
		if cur.ListNil {
			return eval.Nil, nil
		}
		keep, err := ev.Apply(fn, []*eval.Thunk{cur.ListHead})
		if err != nil {
			return eval.Value{}, err
		}
		if keep.Truthy() {
			tail := cur.ListTail
			return eval.Cons(cur.ListHead, eval.NewThunk(func() (eval.Value, error) {
				return filterList(ev, fn, tail)
			})), nil
		}
		xs = cur.ListTail
	}
}

func builtinListFold(ev *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	fn, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	acc, err := args[1].Force()
	if err != nil {
		return eval.Value{}, err
	}
	cur, err := args[2].Force()
	if err != nil {
		return eval.Value{}, err
	}
	for {
		if err := wantList(cur); err != nil {
			return eval.Value{}, err
		}
		if cur.ListNil {
			return acc, nil
		}
		acc, err = ev.Apply(fn, []*eval.Thunk{eval.Forced(acc), cur.ListHead})
		if err != nil {
			return eval.Value{}, err
		}
		cur, err = cur.ListTail.Force()
		if err != nil {
			return eval.Value{}, err
		}
	}
}

func builtinListFoldRight(ev *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	fn, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	init, err := args[1].Force()
	if err != nil {
		return eval.Value{}, err
	}
	cur, err := args[2].Force()
	if err != nil {
		return eval.Value{}, err
	}
	var elems []*eval.Thunk
	for {
		if err := wantList(cur); err != nil {
			return eval.Value{}, err
		}
		if cur.ListNil {
			break
		}
		elems = append(elems, cur.ListHead)
		cur, err = cur.ListTail.Force()
		if err != nil {
			return eval.Value{}, err
		}
	}
	acc := init
	for i := len(elems) - 1; i >= 0; i-- {
		acc, err = ev.Apply(fn, []*eval.Thunk{elems[i], eval.Forced(acc)})
		if err != nil {
			return eval.Value{}, err
		}
	}
	return acc, nil
}

func builtinListLength(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	cur, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantList(cur); err != nil {
		return eval.Value{}, err
	}
	n := int64(0)
	for !cur.ListNil {
		n++
		cur, err = cur.ListTail.Force()
		if err != nil {
			return eval.Value{}, err
		}
	}
	return eval.Int(bignum.IntFromInt64(n)), nil
}

func builtinListHead(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	cur, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantList(cur); err != nil {
		return eval.Value{}, err
	}
	if cur.ListNil {
		return eval.Value{}, fmt.Errorf("stdlib: list.head on an empty list")
	}
	return cur.ListHead.Force()
}

func builtinListTail(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	cur, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantList(cur); err != nil {
		return eval.Value{}, err
	}
	if cur.ListNil {
		return eval.Value{}, fmt.Errorf("stdlib: list.tail on an empty list")
	}
	return cur.ListTail.Force()
}

func builtinListReverse(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	cur, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	out := eval.Nil
	for {
		if err := wantList(cur); err != nil {
			return eval.Value{}, err
		}
		if cur.ListNil {
			return out, nil
		}
		out = eval.Cons(cur.ListHead, eval.Forced(out))
		cur, err = cur.ListTail.Force()
		if err != nil {
			return eval.Value{}, err
		}
	}
}

func builtinListTake(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	nv, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	n, ok := nv.Int.Int64()
	if !ok || n < 0 {
		return eval.Value{}, fmt.Errorf("stdlib: list.take expects a non-negative integer count")
	}
	xs := args[1]
	return takeList(xs, n)
}

func takeList(xs *eval.Thunk, n int64) (eval.Value, error) {
	if n == 0 {
		return eval.Nil, nil
	}
	cur, err := xs.Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantList(cur); err != nil {
		return eval.Value{}, err
	}
	if cur.ListNil {
		return eval.Nil, nil
	}
	tail := cur.ListTail
	return eval.Cons(cur.ListHead, eval.NewThunk(func() (eval.Value, error) {
		return takeList(tail, n-1)
	})), nil
}

func builtinListDrop(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	nv, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	n, ok := nv.Int.Int64()
	if !ok || n < 0 {
		return eval.Value{}, fmt.Errorf("stdlib: list.drop expects a non-negative integer count")
	}
	cur, err := args[1].Force()
	if err != nil {
		return eval.Value{}, err
	}
	for ; n > 0; n-- {
		if err := wantList(cur); err != nil {
			return eval.Value{}, err
		}
		if cur.ListNil {
			return eval.Nil, nil
		}
		cur, err = cur.ListTail.Force()
		if err != nil {
			return eval.Value{}, err
		}
	}
	return cur, nil
}

func builtinListZip(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	return zipLists(args[0], args[1])
}

func zipLists(xs, ys *eval.Thunk) (eval.Value, error) {
	xv, err := xs.Force()
	if err != nil {
		return eval.Value{}, err
	}
	yv, err := ys.Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantList(xv); err != nil {
		return eval.Value{}, err
	}
	if err := wantList(yv); err != nil {
		return eval.Value{}, err
	}
	if xv.ListNil || yv.ListNil {
		return eval.Nil, nil
	}
	xt, yt := xv.ListTail, yv.ListTail
	pair := eval.Tuple([]*eval.Thunk{xv.ListHead, yv.ListHead})
	return eval.Cons(eval.Forced(pair), eval.NewThunk(func() (eval.Value, error) {
		return zipLists(xt, yt)
	})), nil
}

func builtinListConcat(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	outer, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantList(outer); err != nil {
		return eval.Value{}, err
	}
	var lists []*eval.Thunk
	for !outer.ListNil {
		lists = append(lists, outer.ListHead)
		outer, err = outer.ListTail.Force()
		if err != nil {
			return eval.Value{}, err
		}
	}
	result := eval.Nil
	for i := len(lists) - 1; i >= 0; i-- {
		inner, err := lists[i].Force()
		if err != nil {
			return eval.Value{}, err
		}
		result = appendEager(inner, result)
	}
	return result, nil
}

// appendEager materializes a++b fully — list.concat's input is a list of
// lists, not one list concatenated with a thunked continuation, so there
// is no laziness to preserve past what each sub-list already has.
func appendEager(a, b eval.Value) eval.Value {
	if a.Kind != eval.KindList || a.ListNil {
		return b
	}
	tail, err := a.ListTail.Force()
	if err != nil {
		return eval.Value{}
	}
	return eval.Cons(a.ListHead, eval.Forced(appendEager(tail, b)))
}
