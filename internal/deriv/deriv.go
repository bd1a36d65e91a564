// Package deriv implements Neve's derivation model: the immutable,
// content-addressed build recipe, and the canonical encoding that gives
// every derivation its identity hash.
package deriv

import "fmt"

// Digest is a fixed-width BLAKE3 output, the hash type every store path,
// derivation identity, and NAR hash in this package is expressed in.
type Digest [32]byte

func (d Digest) String() string { return EncodeBase32(d) }

// IsZero reports whether d is the zero digest (never a real hash; used as
// a not-yet-computed sentinel).
func (d Digest) IsZero() bool {
	var z Digest
	return d == z
}

// Input names one dependency of a derivation: either another derivation's
// output or a fetched source, tagged with which of its outputs this
// derivation actually consumes (a derivation may produce several named
// outputs; most inputs only need "out").
type Input struct {
	Hash    Digest   // the referenced derivation's (or source's) identity hash
	Name    string   // human-readable label; part of the canonical encoding and of the input's store path and build-env label
	Outputs []string // which named outputs of Hash this input consumes

	// Derivation is set when this input is another derivation this
	// program constructed in the same evaluation (as opposed to an
	// already-fetched source known only by hash): the builder recurses
	// into it to build a dependency before building the derivation that
	// references it. Never part of the canonical encoding — Hash already
	// captures this derivation's identity, so including the pointer too
	// would encode the same thing twice.
	Derivation *Derivation
}

// EnvVar is one entry of a derivation's environment map. Kept as a slice
// of pairs rather than a Go map so construction doesn't depend on Go's
// randomized map iteration order; the environment is logically unordered
// (declaration order must not affect the derivation's identity hash), so
// Encode sorts by Name before serializing it, the same treatment given
// an input's Outputs and a derivation's OutputNames.
type EnvVar struct {
	Name  string
	Value string
}

// HashAlgorithm names the hash function a fixed-output derivation's
// ExpectedHash was computed with. Neve only ever produces BLAKE3 hashes
// itself, but a fixed-output derivation fetching third-party content may
// need to verify against a hash computed by another tool.
type HashAlgorithm string

const (
	HashBlake3 HashAlgorithm = "blake3"
	HashSHA256 HashAlgorithm = "sha256"
)

// Derivation is the derivation record: a fully specified
// description of how to build one or more outputs from inputs. Derivations
// are immutable once constructed — New computes and freezes the identity
// hash at construction time, so a Derivation value is always internally
// consistent with its own Hash field.
type Derivation struct {
	Name         string
	Version      string
	System       string
	Inputs       []Input
	Environment  []EnvVar
	BuildCommand string
	OutputNames  []string

	// HashAlgorithm/ExpectedHash are set only for a fixed-output
	// derivation (one whose result is known in advance, typically a
	// network fetch) — see IsFixedOutput.
	HashAlgorithm HashAlgorithm
	ExpectedHash  Digest

	// Hash is this derivation's own identity: BLAKE3 over its canonical
	// encoding. Computed once by New and never mutated afterward.
	Hash Digest
}

// IsFixedOutput reports whether d declares an expected output hash in
// advance — the only derivations the builder permits network access for.
func (d *Derivation) IsFixedOutput() bool {
	return !d.ExpectedHash.IsZero()
}

// New builds a Derivation from its fields and computes its identity hash.
// OutputNames defaults to {"out"} if empty: every derivation produces at
// least one output.
func New(name, version, system string, inputs []Input, env []EnvVar, buildCommand string, outputNames []string, hashAlg HashAlgorithm, expectedHash Digest) (*Derivation, error) {
	if name == "" {
		return nil, fmt.Errorf("deriv: name must not be empty")
	}
	if len(outputNames) == 0 {
		outputNames = []string{"out"}
	}
	d := &Derivation{
		Name:          name,
		Version:       version,
		System:        system,
		Inputs:        inputs,
		Environment:   env,
		BuildCommand:  buildCommand,
		OutputNames:   outputNames,
		HashAlgorithm: hashAlg,
		ExpectedHash:  expectedHash,
	}
	d.Hash = HashCanonical(d)
	return d, nil
}

// OutputStorePathName returns the {hash}-{name} label this derivation's
// given output should be stored under. For a fixed-output derivation, the
// hash is ExpectedHash (the output is addressed by its own content,
// independent of how it was built); otherwise it's this derivation's own
// identity hash combined with the output name, since an input-addressed
// derivation's outputs are only known once built.
func (d *Derivation) OutputStorePathName(output string) string {
	if d.IsFixedOutput() {
		return fmt.Sprintf("%s-%s", EncodeBase32(d.ExpectedHash), d.Name)
	}
	h := CombineNamed(d.Hash, output)
	return fmt.Sprintf("%s-%s", EncodeBase32(h), d.Name)
}
