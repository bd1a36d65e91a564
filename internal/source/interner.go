package source

import (
	"slices"
)

// Symbol is an interned identifier: a 32-bit handle into an Interner.
// Symbols are only comparable within the Interner that produced them.
type Symbol uint32

// NoSymbol marks the absence of a symbol.
const NoSymbol Symbol = 0

// Interner owns the canonical string for every Symbol it hands out. It is
// process-wide for a single compilation job: lexer and parser intern
// identifiers, later stages only ever carry the Symbol.
type Interner struct {
	byID  []string          // index -> string (byID[0] == "" for NoSymbol)
	index map[string]Symbol // string -> id
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]Symbol{"": 0},
	}
}

// Intern inserts s if it is not already present and returns its Symbol.
func (in *Interner) Intern(s string) Symbol {
	if id, ok := in.index[s]; ok {
		return id
	}
	// Own a private copy so the interner does not alias the caller's buffer.
	cpy := string([]byte(s))
	id := Symbol(len(in.byID))
	in.byID = append(in.byID, cpy)
	in.index[cpy] = id
	return id
}

func (in *Interner) InternBytes(b []byte) Symbol {
	return in.Intern(string(b))
}

// Lookup returns the string for id, or ok=false if id is out of range.
func (in *Interner) Lookup(id Symbol) (string, bool) {
	if !in.Has(id) {
		return "", false
	}
	return in.byID[id], true
}

// MustLookup panics if id is invalid; used where the caller already proved
// the symbol came from this interner.
func (in *Interner) MustLookup(id Symbol) string {
	s, ok := in.Lookup(id)
	if !ok {
		panic("source: invalid symbol")
	}
	return s
}

func (in *Interner) Has(id Symbol) bool {
	return int(id) >= 0 && int(id) < len(in.byID)
}

// Len counts NoSymbol, so it is never less than 1.
func (in *Interner) Len() int {
	return len(in.byID)
}

// Snapshot returns a defensive copy of every interned string, indexed by Symbol.
func (in *Interner) Snapshot() []string {
	return slices.Clone(in.byID)
}
