package deriv

import (
	"fmt"
	"sort"
	"strings"

	"lukechampine.com/blake3"
)

// HashBytes returns the BLAKE3-256 digest of b.
func HashBytes(b []byte) Digest {
	sum := blake3.Sum256(b)
	return Digest(sum)
}

// Combine produces H(content || dep1 || dep2 || ...), the usual
// content-plus-dependency-digests composition for module hashes, carried
// over to BLAKE3 and generalized to derivation identity:
// deps must already be in a deterministic order, which is the caller's
// responsibility.
func Combine(content Digest, deps ...Digest) Digest {
	h := blake3.New(32, nil)
	h.Write(content[:])
	for _, d := range deps {
		h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// CombineNamed mixes a string label into a digest, used to derive one
// output path's hash from its owning derivation's hash plus the output's
// own name (so "out" and "dev" of the same derivation land at different
// store paths).
func CombineNamed(base Digest, name string) Digest {
	h := blake3.New(32, nil)
	h.Write(base[:])
	h.Write([]byte(name))
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// HashCanonical computes a derivation's identity hash: BLAKE3 over its
// canonical encoding (Encode).
func HashCanonical(d *Derivation) Digest {
	return HashBytes(Encode(d))
}

// Encode renders a derivation into its canonical encoding:
// JSON-like, keys sorted, numbers as strings, nested derivation references
// replaced by their own hash. The exact textual grammar is intentionally
// simple (not real JSON — no escaping beyond what Neve names/paths can
// ever contain) since its only consumer is HashCanonical; it is never
// parsed back.
func Encode(d *Derivation) []byte {
	var b strings.Builder
	b.WriteByte('{')

	writeField(&b, "build_command", d.BuildCommand)
	b.WriteByte(',')

	b.WriteString(`"environment":[`)
	env := append([]EnvVar(nil), d.Environment...)
	sort.Slice(env, func(i, j int) bool { return env[i].Name < env[j].Name })
	for i, e := range env {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('{')
		writeField(&b, "name", e.Name)
		b.WriteByte(',')
		writeField(&b, "value", e.Value)
		b.WriteByte('}')
	}
	b.WriteString("],")

	if d.ExpectedHash.IsZero() {
		writeField(&b, "expected_hash", "")
	} else {
		writeField(&b, "expected_hash", EncodeBase32(d.ExpectedHash))
	}
	b.WriteByte(',')
	writeField(&b, "hash_algorithm", string(d.HashAlgorithm))
	b.WriteByte(',')

	b.WriteString(`"inputs":[`)
	for i, in := range d.Inputs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('{')
		writeField(&b, "hash", EncodeBase32(in.Hash))
		b.WriteByte(',')
		writeField(&b, "name", in.Name)
		b.WriteByte(',')
		b.WriteString(`"outputs":[`)
		outs := append([]string(nil), in.Outputs...)
		sort.Strings(outs)
		for j, o := range outs {
			if j > 0 {
				b.WriteByte(',')
			}
			writeString(&b, o)
		}
		b.WriteString("]}")
	}
	b.WriteString("],")

	writeField(&b, "name", d.Name)
	b.WriteByte(',')

	b.WriteString(`"output_names":[`)
	outs := append([]string(nil), d.OutputNames...)
	sort.Strings(outs)
	for i, o := range outs {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(&b, o)
	}
	b.WriteString("],")

	writeField(&b, "system", d.System)
	b.WriteByte(',')
	writeField(&b, "version", d.Version)
	b.WriteByte('}')
	return []byte(b.String())
}

func writeField(b *strings.Builder, key, value string) {
	writeString(b, key)
	b.WriteByte(':')
	writeString(b, value)
}

func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}

const base32Alphabet = "0123456789abcdfghijklmnpqrsvwxyz"

// EncodeBase32 renders a Digest as a fixed-length base-32 string using
// Neve's store-path alphabet (digits and lowercase letters, omitting
// e/o/u/t to avoid accidentally spelling words in store paths — the same
// omission rationale Nix's own store-path base32 alphabet uses).
func EncodeBase32(d Digest) string {
	var bits []byte
	for _, b := range d {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (b>>uint(i))&1)
		}
	}
	var out strings.Builder
	for i := 0; i < len(bits); i += 5 {
		end := i + 5
		if end > len(bits) {
			end = len(bits)
		}
		var v int
		for _, bit := range bits[i:end] {
			v = v<<1 | int(bit)
		}
		v <<= uint(5 - (end - i))
		out.WriteByte(base32Alphabet[v])
	}
	return out.String()
}

// DecodeBase32 is the inverse of EncodeBase32: it recovers a Digest from
// its fixed-length base-32 rendering, used when parsing a store path's
// {hash}-{name} label back into its hash component.
func DecodeBase32(s string) (Digest, bool) {
	var bits []byte
	for _, ch := range s {
		idx := strings.IndexRune(base32Alphabet, ch)
		if idx < 0 {
			return Digest{}, false
		}
		for i := 4; i >= 0; i-- {
			bits = append(bits, byte((idx>>uint(i))&1))
		}
	}
	// EncodeBase32 emits ceil(256/5)=52 quintets (260 bits) for a 32-byte
	// digest, padding the final quintet's low bits with zero; drop that
	// trailing pad before regrouping into bytes.
	if len(bits) < 256 {
		return Digest{}, false
	}
	bits = bits[:256]
	var out Digest
	for i := 0; i < 256; i += 8 {
		var b byte
		for j := 0; j < 8; j++ {
			b = b<<1 | bits[i+j]
		}
		out[i/8] = b
	}
	return out, true
}

// Must panics if err is non-nil; for call sites (tests, CLI glue) that
// already know a derivation's fields are well-formed.
func Must(d *Derivation, err error) *Derivation {
	if err != nil {
		panic(fmt.Sprintf("deriv: %v", err))
	}
	return d
}
