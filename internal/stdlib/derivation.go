package stdlib

import (
	"fmt"

	"neve/internal/deriv"
	"neve/internal/eval"
)

// registerDerivation wires the single `derivation` builtin that turns a
// record of canonical fields into an eval.Value holding a *deriv.Derivation.
// The derivation stays unbuilt until something forces it into a string or
// path context — string interpolation (eval.Evaluator.RealizeToString) and
// io.read_file/write_file's pathOrString both do that.
func registerDerivation(b *eval.Builtins) {
	b.Register("derivation", 1, builtinDerivation)
}

func builtinDerivation(ev *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	rec, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if rec.Kind != eval.KindRecord {
		return eval.Value{}, fmt.Errorf("stdlib: derivation: expected a record argument")
	}

	name, err := recordString(ev, rec, "name", true, "")
	if err != nil {
		return eval.Value{}, err
	}
	version, err := recordString(ev, rec, "version", false, "")
	if err != nil {
		return eval.Value{}, err
	}
	system, err := recordString(ev, rec, "system", false, "")
	if err != nil {
		return eval.Value{}, err
	}
	buildCommand, err := recordString(ev, rec, "build_command", false, "")
	if err != nil {
		return eval.Value{}, err
	}

	outputNames, err := recordStringList(ev, rec, "output_names")
	if err != nil {
		return eval.Value{}, err
	}

	env, err := recordEnv(ev, rec)
	if err != nil {
		return eval.Value{}, err
	}

	inputs, err := recordInputs(ev, rec)
	if err != nil {
		return eval.Value{}, err
	}

	hashAlg, expectedHash, err := recordFixedOutput(ev, rec)
	if err != nil {
		return eval.Value{}, err
	}

	d, err := deriv.New(name, version, system, inputs, env, buildCommand, outputNames, hashAlg, expectedHash)
	if err != nil {
		return eval.Value{}, fmt.Errorf("stdlib: derivation: %w", err)
	}
	return eval.Derivation(d), nil
}

// recordField scans rec's Fields/Vals for name by interned string,
// forcing and returning the value when present. Records have no more
// than a handful of fields in practice, so a linear scan (matching how
// eval.evalField itself resolves a field by symbol) is fine here too.
func recordField(ev *eval.Evaluator, rec eval.Value, name string) (eval.Value, bool, error) {
	for i, f := range rec.Fields {
		if ev.Interner().MustLookup(f) != name {
			continue
		}
		v, err := rec.Vals[i].Force()
		if err != nil {
			return eval.Value{}, false, err
		}
		return v, true, nil
	}
	return eval.Value{}, false, nil
}

func recordString(ev *eval.Evaluator, rec eval.Value, name string, required bool, def string) (string, error) {
	v, ok, err := recordField(ev, rec, name)
	if err != nil {
		return "", err
	}
	if !ok {
		if required {
			return "", fmt.Errorf("stdlib: derivation: missing required field %q", name)
		}
		return def, nil
	}
	return wantString(v)
}

func recordStringList(ev *eval.Evaluator, rec eval.Value, name string) ([]string, error) {
	v, ok, err := recordField(ev, rec, name)
	if err != nil || !ok {
		return nil, err
	}
	if err := wantList(v); err != nil {
		return nil, err
	}
	var out []string
	cur := v
	for !cur.ListNil {
		hv, err := cur.ListHead.Force()
		if err != nil {
			return nil, err
		}
		s, err := wantString(hv)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		cur, err = cur.ListTail.Force()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// recordEnv reads an `environment` field shaped as a list of
// #{name, value} records into deriv.EnvVar entries.
func recordEnv(ev *eval.Evaluator, rec eval.Value) ([]deriv.EnvVar, error) {
	v, ok, err := recordField(ev, rec, "environment")
	if err != nil || !ok {
		return nil, err
	}
	if err := wantList(v); err != nil {
		return nil, err
	}
	var out []deriv.EnvVar
	cur := v
	for !cur.ListNil {
		hv, err := cur.ListHead.Force()
		if err != nil {
			return nil, err
		}
		if hv.Kind != eval.KindRecord {
			return nil, fmt.Errorf("stdlib: derivation: environment entries must be records")
		}
		n, _, err := recordField(ev, hv, "name")
		if err != nil {
			return nil, err
		}
		val, _, err := recordField(ev, hv, "value")
		if err != nil {
			return nil, err
		}
		ns, err := wantString(n)
		if err != nil {
			return nil, err
		}
		vs, err := wantString(val)
		if err != nil {
			return nil, err
		}
		out = append(out, deriv.EnvVar{Name: ns, Value: vs})
		cur, err = cur.ListTail.Force()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// recordInputs reads an `inputs` field shaped as a list of records into
// deriv.Input entries. Each entry gives either a `derivation` (another
// derivation constructed earlier in the same program — the builder
// recurses into it) or a `hash` (a base32-encoded digest, the same form
// Digest.String produces, for a source already known by hash alone),
// plus an optional `name` label and `outputs` list (defaulting to every
// output the referenced derivation declares).
func recordInputs(ev *eval.Evaluator, rec eval.Value) ([]deriv.Input, error) {
	v, ok, err := recordField(ev, rec, "inputs")
	if err != nil || !ok {
		return nil, err
	}
	if err := wantList(v); err != nil {
		return nil, err
	}
	var out []deriv.Input
	cur := v
	for !cur.ListNil {
		hv, err := cur.ListHead.Force()
		if err != nil {
			return nil, err
		}
		if hv.Kind != eval.KindRecord {
			return nil, fmt.Errorf("stdlib: derivation: inputs entries must be records")
		}
		in, err := recordOneInput(ev, hv)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
		cur, err = cur.ListTail.Force()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func recordOneInput(ev *eval.Evaluator, hv eval.Value) (deriv.Input, error) {
	derivField, hasDeriv, err := recordField(ev, hv, "derivation")
	if err != nil {
		return deriv.Input{}, err
	}
	var hash deriv.Digest
	var dep *deriv.Derivation
	var defaultName string
	var defaultOutputs []string
	if hasDeriv {
		if derivField.Kind != eval.KindDerivation {
			return deriv.Input{}, fmt.Errorf("stdlib: derivation: inputs.derivation must itself be a derivation value")
		}
		dep = derivField.Deriv
		hash = dep.Hash
		defaultName = dep.Name
		defaultOutputs = dep.OutputNames
	} else {
		hashField, hasHash, err := recordField(ev, hv, "hash")
		if err != nil {
			return deriv.Input{}, err
		}
		if !hasHash {
			return deriv.Input{}, fmt.Errorf("stdlib: derivation: inputs entries need either a derivation or a hash field")
		}
		hashStr, err := wantString(hashField)
		if err != nil {
			return deriv.Input{}, err
		}
		decoded, ok := deriv.DecodeBase32(hashStr)
		if !ok {
			return deriv.Input{}, fmt.Errorf("stdlib: derivation: invalid input hash %q", hashStr)
		}
		hash = decoded
	}
	name, err := recordString(ev, hv, "name", false, defaultName)
	if err != nil {
		return deriv.Input{}, err
	}
	outputs, err := recordStringList(ev, hv, "outputs")
	if err != nil {
		return deriv.Input{}, err
	}
	if outputs == nil {
		outputs = defaultOutputs
	}
	return deriv.Input{Hash: hash, Name: name, Outputs: outputs, Derivation: dep}, nil
}

// recordFixedOutput reads the optional hash_algorithm/expected_hash pair
// that marks a fixed-output derivation (deriv.Derivation.IsFixedOutput).
func recordFixedOutput(ev *eval.Evaluator, rec eval.Value) (deriv.HashAlgorithm, deriv.Digest, error) {
	algField, ok, err := recordField(ev, rec, "hash_algorithm")
	if err != nil || !ok {
		return "", deriv.Digest{}, err
	}
	algStr, err := wantString(algField)
	if err != nil {
		return "", deriv.Digest{}, err
	}
	alg := deriv.HashAlgorithm(algStr)
	if alg != deriv.HashBlake3 && alg != deriv.HashSHA256 {
		return "", deriv.Digest{}, fmt.Errorf("stdlib: derivation: unsupported hash_algorithm %q", algStr)
	}
	hashField, ok, err := recordField(ev, rec, "expected_hash")
	if err != nil {
		return "", deriv.Digest{}, err
	}
	if !ok {
		return "", deriv.Digest{}, fmt.Errorf("stdlib: derivation: hash_algorithm given without expected_hash")
	}
	hashStr, err := wantString(hashField)
	if err != nil {
		return "", deriv.Digest{}, err
	}
	hash, ok := deriv.DecodeBase32(hashStr)
	if !ok {
		return "", deriv.Digest{}, fmt.Errorf("stdlib: derivation: invalid expected_hash %q", hashStr)
	}
	return alg, hash, nil
}
