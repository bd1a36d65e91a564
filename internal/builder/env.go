package builder

import (
	"fmt"
	"path/filepath"
	"runtime"

	"neve/internal/deriv"
)

// buildEnv assembles the environment a build command runs under: a fixed
// set of NEVE_BUILD_* variables locating the scratch directories, one
// variable per declared output giving its path, one per input giving the
// symlink linkInput created for it, and the derivation's own declared
// environment entries last, so a derivation can override any of the
// fixed ones it needs to (an "out" variable name collision, say).
func buildEnv(d *deriv.Derivation, l *layout, inputLinks map[string]string) []string {
	tmp := filepath.Join(l.buildTop, "tmp")
	env := []string{
		"NEVE_BUILD_TOP=" + l.buildTop,
		"TMPDIR=" + tmp,
		"TMP=" + tmp,
		"HOME=" + l.buildTop,
		"PWD=" + l.buildTop,
		"PATH=/usr/bin:/bin:/usr/local/bin",
		fmt.Sprintf("NEVE_BUILD_CORES=%d", runtime.NumCPU()),
		"name=" + d.Name,
		"version=" + d.Version,
		"system=" + d.System,
	}
	for name, dir := range l.outputs {
		env = append(env, name+"="+dir)
	}
	for label, link := range inputLinks {
		env = append(env, label+"="+link)
	}
	for _, kv := range d.Environment {
		env = append(env, kv.Name+"="+kv.Value)
	}
	return env
}
