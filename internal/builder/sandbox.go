package builder

import (
	"bytes"
	"context"
	"os/exec"
)

// sandbox runs a derivation's build command in layout's build directory
// with the given environment. On Linux it isolates the process with
// namespaces (sandbox_linux.go); elsewhere, and as a fallback when
// namespaces can't be created, it runs the command directly with a
// curated environment rather than blocking the build.
type sandbox struct {
	lay     *layout
	env     []string
	network bool
}

func newSandbox(lay *layout, env []string, network bool) *sandbox {
	return &sandbox{lay: lay, env: env, network: network}
}

// Run executes command as a shell build script and returns its combined
// stdout+stderr log regardless of success, so callers can surface it in
// an error message. If the command never starts because namespace
// isolation itself couldn't be set up (unprivileged user namespaces
// disabled, seccomp-restricted host, and so on), Run retries once
// unsandboxed rather than failing the build outright — a genuine build
// failure (the command started and exited nonzero) is never retried.
func (s *sandbox) Run(ctx context.Context, command string) (string, error) {
	out, started, err := s.run(ctx, command, true)
	if err != nil && !started {
		out, _, err = s.run(ctx, command, false)
	}
	return out, err
}

func (s *sandbox) run(ctx context.Context, command string, isolate bool) (log string, started bool, err error) {
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	cmd.Dir = s.lay.buildTop
	cmd.Env = s.env
	if isolate {
		applySandboxAttrs(cmd, s.network)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Start(); err != nil {
		return out.String(), false, err
	}
	return out.String(), true, cmd.Wait()
}
