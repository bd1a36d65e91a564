package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"neve/internal/deriv"
	"neve/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	return s
}

func newTestBuilder(t *testing.T, s *store.Store) *Builder {
	t.Helper()
	return New(s, Config{TempDir: t.TempDir()})
}

func mustDerivation(t *testing.T, name, buildCommand string, inputs []deriv.Input) *deriv.Derivation {
	t.Helper()
	d, err := deriv.New(name, "1.0", "x86_64-linux", inputs, nil, buildCommand, []string{"out"}, "", deriv.Digest{})
	if err != nil {
		t.Fatalf("deriv.New: %v", err)
	}
	return d
}

func TestRealizeRunsBuildCommandAndRegistersOutput(t *testing.T) {
	s := openTestStore(t)
	b := newTestBuilder(t, s)
	d := mustDerivation(t, "hello", `echo -n hello > "$out/greeting"`, nil)

	outs, err := b.Realize(d)
	if err != nil {
		t.Fatalf("Realize: %v", err)
	}
	out, ok := outs["out"]
	if !ok {
		t.Fatalf("expected an \"out\" output, got %v", outs)
	}
	content, err := os.ReadFile(filepath.Join(out, "greeting"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(content) != "hello" {
		t.Fatalf("got %q, want %q", content, "hello")
	}
}

func TestRealizeIsCachedOnSecondCall(t *testing.T) {
	s := openTestStore(t)
	b := newTestBuilder(t, s)
	d := mustDerivation(t, "once", `echo -n x > "$out/marker"`, nil)

	first, err := b.Realize(d)
	if err != nil {
		t.Fatalf("first Realize: %v", err)
	}
	second, err := b.Realize(d)
	if err != nil {
		t.Fatalf("second Realize: %v", err)
	}
	if first["out"] != second["out"] {
		t.Fatalf("expected identical output path on cache hit, got %q and %q", first["out"], second["out"])
	}
}

func TestRealizeFailsOnNonzeroExit(t *testing.T) {
	s := openTestStore(t)
	b := newTestBuilder(t, s)
	d := mustDerivation(t, "broken", `exit 7`, nil)

	if _, err := b.Realize(d); err == nil {
		t.Fatalf("expected an error from a build command that exits nonzero")
	}
}

func TestRealizeFailsOnMissingPlainHashInput(t *testing.T) {
	s := openTestStore(t)
	b := newTestBuilder(t, s)
	d := mustDerivation(t, "needs-source", `true`, []deriv.Input{
		{Hash: deriv.HashBytes([]byte("nonexistent")), Name: "src"},
	})

	_, err := b.Realize(d)
	if err == nil {
		t.Fatalf("expected an error for an input that was never fetched into the store")
	}
}

func TestRealizeRecursesIntoDerivationInputs(t *testing.T) {
	s := openTestStore(t)
	b := newTestBuilder(t, s)
	dep := mustDerivation(t, "dep", `echo -n dep-content > "$out/file"`, nil)
	top := mustDerivation(t, "top", `cat "$dep/file" > "$out/copied"`, []deriv.Input{
		{Hash: dep.Hash, Name: "dep", Outputs: []string{"out"}, Derivation: dep},
	})

	outs, err := b.Realize(top)
	if err != nil {
		t.Fatalf("Realize: %v", err)
	}
	content, err := os.ReadFile(filepath.Join(outs["out"], "copied"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(content) != "dep-content" {
		t.Fatalf("got %q, want %q", content, "dep-content")
	}
}

func TestRealizeAllBuildsEveryDerivationIndependently(t *testing.T) {
	s := openTestStore(t)
	b := newTestBuilder(t, s)
	ds := []*deriv.Derivation{
		mustDerivation(t, "a", `echo -n a > "$out/f"`, nil),
		mustDerivation(t, "broken", `exit 1`, nil),
		mustDerivation(t, "b", `echo -n b > "$out/f"`, nil),
	}

	results := b.RealizeAll(context.Background(), ds)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("derivation a: unexpected error: %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Fatalf("derivation broken: expected an error")
	}
	if results[2].Err != nil {
		t.Fatalf("derivation b: unexpected error: %v", results[2].Err)
	}
}

type collectingSink struct {
	events []Event
}

func (c *collectingSink) OnEvent(e Event) { c.events = append(c.events, e) }

func TestRealizeReportsPrepareRunRegisterStages(t *testing.T) {
	s := openTestStore(t)
	sink := &collectingSink{}
	b := New(s, Config{TempDir: t.TempDir(), Sink: sink})
	d := mustDerivation(t, "staged", `true`, nil)

	if _, err := b.Realize(d); err != nil {
		t.Fatalf("Realize: %v", err)
	}
	var sawStages []Stage
	for _, e := range sink.events {
		if e.Status == StatusDone {
			sawStages = append(sawStages, e.Stage)
		}
	}
	want := []Stage{StagePrepare, StageRun, StageRegister}
	if len(sawStages) != len(want) {
		t.Fatalf("got stages %v, want %v", sawStages, want)
	}
	for i, s := range want {
		if sawStages[i] != s {
			t.Fatalf("stage %d: got %v, want %v", i, sawStages[i], s)
		}
	}
}
