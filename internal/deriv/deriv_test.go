package deriv

import "testing"

func mustNew(t *testing.T, name string, inputs []Input, env []EnvVar, cmd string, outs []string, alg HashAlgorithm, expected Digest) *Derivation {
	t.Helper()
	d, err := New(name, "1.0", "x86_64-linux", inputs, env, cmd, outs, alg, expected)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestNewRejectsEmptyName(t *testing.T) {
	if _, err := New("", "", "", nil, nil, "", nil, "", Digest{}); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestNewDefaultsOutputNames(t *testing.T) {
	d := mustNew(t, "hello", nil, nil, "build.sh", nil, "", Digest{})
	if len(d.OutputNames) != 1 || d.OutputNames[0] != "out" {
		t.Fatalf("expected default output names [out], got %v", d.OutputNames)
	}
}

func TestIdenticalDerivationsHashIdentically(t *testing.T) {
	a := mustNew(t, "hello", nil, []EnvVar{{Name: "PATH", Value: "/bin"}}, "build.sh", []string{"out"}, "", Digest{})
	b := mustNew(t, "hello", nil, []EnvVar{{Name: "PATH", Value: "/bin"}}, "build.sh", []string{"out"}, "", Digest{})
	if a.Hash != b.Hash {
		t.Fatalf("expected identical derivations to hash identically: %x != %x", a.Hash, b.Hash)
	}
}

func TestDifferingBuildCommandChangesHash(t *testing.T) {
	a := mustNew(t, "hello", nil, nil, "build.sh", nil, "", Digest{})
	b := mustNew(t, "hello", nil, nil, "build2.sh", nil, "", Digest{})
	if a.Hash == b.Hash {
		t.Fatalf("expected differing build commands to hash differently")
	}
}

func TestInputOutputsOrderDoesNotAffectHash(t *testing.T) {
	dep := mustNew(t, "dep", nil, nil, "build.sh", nil, "", Digest{})
	a := mustNew(t, "hello", []Input{{Hash: dep.Hash, Name: "dep", Outputs: []string{"out", "dev"}}}, nil, "build.sh", nil, "", Digest{})
	b := mustNew(t, "hello", []Input{{Hash: dep.Hash, Name: "dep", Outputs: []string{"dev", "out"}}}, nil, "build.sh", nil, "", Digest{})
	if a.Hash != b.Hash {
		t.Fatalf("expected input outputs order to be irrelevant to hash")
	}
}

func TestEnvironmentOrderDoesNotAffectHash(t *testing.T) {
	a := mustNew(t, "hello", nil, []EnvVar{{Name: "A", Value: "1"}, {Name: "B", Value: "2"}}, "build.sh", nil, "", Digest{})
	b := mustNew(t, "hello", nil, []EnvVar{{Name: "B", Value: "2"}, {Name: "A", Value: "1"}}, "build.sh", nil, "", Digest{})
	if a.Hash != b.Hash {
		t.Fatalf("expected environment declaration order to be irrelevant to hash")
	}
}

func TestFixedOutputUsesExpectedHashForStorePath(t *testing.T) {
	expected := HashBytes([]byte("tarball contents"))
	d := mustNew(t, "src", nil, nil, "", nil, HashBlake3, expected)
	if !d.IsFixedOutput() {
		t.Fatalf("expected IsFixedOutput true")
	}
	want := EncodeBase32(expected) + "-src"
	if got := d.OutputStorePathName("out"); got != want {
		t.Fatalf("OutputStorePathName = %q, want %q", got, want)
	}
}

func TestInputAddressedOutputDerivesFromOwnHash(t *testing.T) {
	d := mustNew(t, "hello", nil, nil, "build.sh", []string{"out", "dev"}, "", Digest{})
	if d.IsFixedOutput() {
		t.Fatalf("expected IsFixedOutput false")
	}
	out := d.OutputStorePathName("out")
	dev := d.OutputStorePathName("dev")
	if out == dev {
		t.Fatalf("expected different outputs to produce different store path names")
	}
}

func TestBase32RoundTrip(t *testing.T) {
	d := HashBytes([]byte("round trip me"))
	s := EncodeBase32(d)
	got, ok := DecodeBase32(s)
	if !ok {
		t.Fatalf("DecodeBase32(%q) failed", s)
	}
	if got != d {
		t.Fatalf("round trip mismatch: %x != %x", got, d)
	}
}

func TestDecodeBase32RejectsInvalidCharacters(t *testing.T) {
	if _, ok := DecodeBase32("not-valid-because-of-the-dash!!"); ok {
		t.Fatalf("expected decode failure for invalid characters")
	}
}

func TestCombineIsOrderSensitive(t *testing.T) {
	c := HashBytes([]byte("content"))
	d1 := HashBytes([]byte("dep1"))
	d2 := HashBytes([]byte("dep2"))
	if Combine(c, d1, d2) == Combine(c, d2, d1) {
		t.Fatalf("expected dependency order to affect Combine result")
	}
}
