//go:build !linux

package builder

import "os/exec"

// applySandboxAttrs is a no-op off Linux: neve-builder's namespace
// isolation is Linux-specific, so non-Linux builds run unsandboxed, the
// same fallback Linux itself takes when namespaces aren't available.
func applySandboxAttrs(cmd *exec.Cmd, network bool) {}
