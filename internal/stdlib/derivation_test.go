package stdlib_test

import (
	"testing"

	"neve/internal/eval"
)

func TestDerivationBuiltinConstructsValue(t *testing.T) {
	v, err := evalLet(t, `
		let d = derivation(#{
			name = "hello",
			version = "1.0",
			system = "x86_64-linux",
			build_command = "true",
			output_names = ["out"],
		});`, "d")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Kind != eval.KindDerivation {
		t.Fatalf("got kind %v, want KindDerivation", v.Kind)
	}
	if v.Deriv.Name != "hello" {
		t.Fatalf("got name %q, want hello", v.Deriv.Name)
	}
}

func TestDerivationForcedIntoStringFailsWithoutRealizer(t *testing.T) {
	_, err := evalLet(t, "\n"+
		"\t\tlet d = derivation(#{name = \"hello\", build_command = \"true\", output_names = [\"out\"]});\n"+
		"\t\tlet s = `path: {d}`;", "s")
	if err == nil {
		t.Fatalf("expected an error forcing an unbuilt derivation without a realizer")
	}
}
