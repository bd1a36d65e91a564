// Package builder realizes derivations: it runs a derivation's build
// command in an isolated working directory, hashes and registers each
// declared output into the store, and recurses into any input that is
// itself a not-yet-built derivation. It implements eval.Realizer so an
// Evaluator can force a derivation into a string or path without
// internal/eval ever importing this package.
package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/singleflight"

	"neve/internal/deriv"
	"neve/internal/store"
)

// Config configures a Builder. MaxJobs bounds concurrent derivation
// builds when driven through RealizeAll; Realize itself always builds one
// derivation (plus whatever dependencies it recurses into) at a time.
type Config struct {
	MaxJobs    int
	TempDir    string
	KeepFailed bool
	Sink       ProgressSink
}

// Builder holds everything a realization needs: the store outputs land
// in, where scratch build directories are created, and the progress sink
// builds report to.
type Builder struct {
	store      *store.Store
	tempDir    string
	keepFailed bool
	sink       ProgressSink
	maxJobs    int

	group singleflight.Group // deduplicates concurrent builds of the same derivation hash
}

func New(s *store.Store, cfg Config) *Builder {
	if cfg.TempDir == "" {
		cfg.TempDir = filepath.Join(os.TempDir(), "neve-build")
	}
	if cfg.Sink == nil {
		cfg.Sink = nopSink{}
	}
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = 1
	}
	return &Builder{
		store:      s,
		tempDir:    cfg.TempDir,
		keepFailed: cfg.KeepFailed,
		sink:       cfg.Sink,
		maxJobs:    cfg.MaxJobs,
	}
}

// Realize builds d (and, recursively, any input derivation it names that
// isn't already built), returning a map from output name to the output's
// absolute path in the store. It implements eval.Realizer.
func (b *Builder) Realize(d *deriv.Derivation) (map[string]string, error) {
	return b.realize(context.Background(), d)
}

func (b *Builder) realize(ctx context.Context, d *deriv.Derivation) (map[string]string, error) {
	if outs, ok := b.existingOutputs(d); ok {
		return outs, nil
	}

	key := d.Hash.String()
	v, err, _ := b.group.Do(key, func() (interface{}, error) {
		if outs, ok := b.existingOutputs(d); ok {
			return outs, nil
		}
		if err := b.realizeDeps(ctx, d); err != nil {
			return nil, err
		}
		return b.build(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]string), nil
}

// realizeDeps recursively builds every input that names a derivation
// this program constructed directly (Input.Derivation != nil). A plain
// hash-only input must already be present in the store — no fetcher is
// wired into this package, by design: acquiring a source is a separate,
// earlier step (internal/fetcher), not something the builder does on a
// cache miss.
func (b *Builder) realizeDeps(ctx context.Context, d *deriv.Derivation) error {
	for _, in := range d.Inputs {
		if in.Derivation != nil {
			if _, err := b.realize(ctx, in.Derivation); err != nil {
				return fmt.Errorf("building input %q: %w", in.Name, err)
			}
			continue
		}
		if !b.store.Exists(store.Path{Hash: in.Hash, Name: in.Name}) {
			return fmt.Errorf("missing input %q: not present in the store and no derivation to build it", in.Name)
		}
	}
	return nil
}

// existingOutputs reports the already-built paths for every output d
// declares, or ok=false if any output is missing and a build is needed.
func (b *Builder) existingOutputs(d *deriv.Derivation) (map[string]string, bool) {
	outs := make(map[string]string, len(d.OutputNames))
	for _, name := range outputNames(d) {
		p, ok := store.ParsePath(d.OutputStorePathName(name))
		if !ok || !b.store.Exists(p) {
			return nil, false
		}
		outs[name] = b.store.ToFSPath(p)
	}
	return outs, true
}

func outputNames(d *deriv.Derivation) []string {
	if len(d.OutputNames) == 0 {
		return []string{"out"}
	}
	return d.OutputNames
}

// linkInputs symlinks every input's store path(s) into the build's inputs
// directory and returns the resulting links for buildEnv to expose as
// environment variables. Every path named here is already on disk by
// this point: realizeDeps either built it (Input.Derivation set) or
// confirmed it was already present (plain hash input) before build was
// ever called.
//
// A plain hash input (an already-fetched source) has exactly one path,
// {Hash}-{Name}, and is linked under its bare Name. A derivation input
// may name several outputs, each stored under its own
// {output-hash}-{name} path, and is linked once per output, labeled
// Name for "out" and Name_output for anything else.
func (b *Builder) linkInputs(d *deriv.Derivation, lay *layout) (map[string]string, error) {
	links := make(map[string]string, len(d.Inputs))
	for _, in := range d.Inputs {
		if in.Name == "" {
			continue
		}
		if in.Derivation == nil {
			p := store.Path{Hash: in.Hash, Name: in.Name}
			if !b.store.Exists(p) {
				return nil, fmt.Errorf("builder: input %q vanished from the store between check and link", in.Name)
			}
			link, err := lay.linkInput(in.Name, b.store.ToFSPath(p))
			if err != nil {
				return nil, err
			}
			links[in.Name] = link
			continue
		}
		for _, output := range inputOutputs(in) {
			p, ok := store.ParsePath(in.Derivation.OutputStorePathName(output))
			if !ok || !b.store.Exists(p) {
				return nil, fmt.Errorf("builder: input %q output %q vanished from the store between check and link", in.Name, output)
			}
			label := in.Name
			if output != "out" {
				label = in.Name + "_" + output
			}
			link, err := lay.linkInput(label, b.store.ToFSPath(p))
			if err != nil {
				return nil, err
			}
			links[label] = link
		}
	}
	return links, nil
}

func inputOutputs(in deriv.Input) []string {
	if len(in.Outputs) > 0 {
		return in.Outputs
	}
	if in.Derivation != nil && len(in.Derivation.OutputNames) > 0 {
		return in.Derivation.OutputNames
	}
	return []string{"out"}
}

func (b *Builder) build(ctx context.Context, d *deriv.Derivation) (map[string]string, error) {
	start := time.Now()
	b.sink.OnEvent(Event{Derivation: d.Name, Stage: StagePrepare, Status: StatusWorking})

	root, err := os.MkdirTemp(b.tempDir, sanitizeDirName(d.Name)+"-*")
	if err != nil {
		b.sink.OnEvent(Event{Derivation: d.Name, Stage: StagePrepare, Status: StatusError, Err: err})
		return nil, fmt.Errorf("builder: create build dir: %w", err)
	}
	lay, err := newLayout(root, outputNames(d))
	if err != nil {
		b.sink.OnEvent(Event{Derivation: d.Name, Stage: StagePrepare, Status: StatusError, Err: err})
		return nil, err
	}
	inputLinks, err := b.linkInputs(d, lay)
	if err != nil {
		b.sink.OnEvent(Event{Derivation: d.Name, Stage: StagePrepare, Status: StatusError, Err: err})
		if !b.keepFailed {
			os.RemoveAll(root)
		}
		return nil, err
	}
	b.sink.OnEvent(Event{Derivation: d.Name, Stage: StagePrepare, Status: StatusDone, Elapsed: time.Since(start)})

	runStart := time.Now()
	b.sink.OnEvent(Event{Derivation: d.Name, Stage: StageRun, Status: StatusWorking})
	sb := newSandbox(lay, buildEnv(d, lay, inputLinks), d.IsFixedOutput())
	log, runErr := sb.Run(ctx, d.BuildCommand)
	if runErr != nil {
		b.sink.OnEvent(Event{Derivation: d.Name, Stage: StageRun, Status: StatusError, Err: runErr, Elapsed: time.Since(runStart)})
		b.recordBuildLog(d, false, time.Since(start), log)
		if !b.keepFailed {
			os.RemoveAll(root)
		}
		return nil, fmt.Errorf("builder: %s: build command failed: %w\n%s", d.Name, runErr, log)
	}
	b.sink.OnEvent(Event{Derivation: d.Name, Stage: StageRun, Status: StatusDone, Elapsed: time.Since(runStart)})

	regStart := time.Now()
	b.sink.OnEvent(Event{Derivation: d.Name, Stage: StageRegister, Status: StatusWorking})
	outs, err := b.registerOutputs(d, lay)
	if err != nil {
		b.sink.OnEvent(Event{Derivation: d.Name, Stage: StageRegister, Status: StatusError, Err: err, Elapsed: time.Since(regStart)})
		b.recordBuildLog(d, false, time.Since(start), log)
		if !b.keepFailed {
			os.RemoveAll(root)
		}
		return nil, err
	}
	b.sink.OnEvent(Event{Derivation: d.Name, Stage: StageRegister, Status: StatusDone, Elapsed: time.Since(regStart)})
	b.recordBuildLog(d, true, time.Since(start), log)
	b.recordDerivationMetadata(d)

	os.RemoveAll(root)
	return outs, nil
}

// recordBuildLog and recordDerivationMetadata are best-effort: a cache
// write failure doesn't fail the build it's recording, since the cache
// exists to make later `store info` lookups faster, not to hold anything
// the builder itself depends on.
func (b *Builder) recordBuildLog(d *deriv.Derivation, success bool, elapsed time.Duration, log string) {
	idx, err := b.store.OpenBuildLogIndex()
	if err != nil {
		return
	}
	tail := log
	if len(tail) > 4096 {
		tail = tail[len(tail)-4096:]
	}
	idx.Record(d.Hash.String(), store.BuildLogEntry{Name: d.Name, Success: success, Elapsed: elapsed, LogTail: tail})
}

func (b *Builder) recordDerivationMetadata(d *deriv.Derivation) {
	cache, err := b.store.OpenDerivationMetadataCache()
	if err != nil {
		return
	}
	cache.Record(d.Hash.String(), store.DerivationMetadata{
		Name:        d.Name,
		OutputNames: outputNames(d),
		System:      d.System,
	})
}

func (b *Builder) registerOutputs(d *deriv.Derivation, lay *layout) (map[string]string, error) {
	outs := make(map[string]string, len(lay.outputs))
	for _, name := range outputNames(d) {
		dir := lay.outputs[name]
		if d.IsFixedOutput() {
			hash, err := store.HashPath(dir)
			if err != nil {
				return nil, fmt.Errorf("builder: hash output %q: %w", name, err)
			}
			if hash != d.ExpectedHash {
				return nil, fmt.Errorf("builder: output %q hash mismatch: expected %s, got %s", name, d.ExpectedHash, hash)
			}
		}
		p, err := b.store.AddDirectory(dir, storeName(d, name))
		if err != nil {
			return nil, fmt.Errorf("builder: register output %q: %w", name, err)
		}
		outs[name] = b.store.ToFSPath(p)
	}
	return outs, nil
}

func storeName(d *deriv.Derivation, output string) string {
	if output == "out" {
		return d.Name
	}
	return d.Name + "-" + output
}

func sanitizeDirName(name string) string {
	clean := make([]byte, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			clean = append(clean, byte(r))
		default:
			clean = append(clean, '_')
		}
	}
	if len(clean) == 0 {
		return "build"
	}
	return string(clean)
}
