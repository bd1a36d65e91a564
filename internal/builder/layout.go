package builder

import (
	"fmt"
	"os"
	"path/filepath"
)

// layout is the scratch directory tree a single build runs in: a build
// top containing a build/ working directory and one directory per
// declared output, created empty before the build command runs.
type layout struct {
	root     string
	buildTop string
	inputs   string
	outputs  map[string]string
}

func newLayout(root string, outputs []string) (*layout, error) {
	buildTop := filepath.Join(root, "build")
	if err := os.MkdirAll(filepath.Join(buildTop, "tmp"), 0o755); err != nil {
		return nil, fmt.Errorf("builder: create build top: %w", err)
	}
	inputs := filepath.Join(root, "inputs")
	if err := os.MkdirAll(inputs, 0o755); err != nil {
		return nil, fmt.Errorf("builder: create inputs dir: %w", err)
	}
	l := &layout{root: root, buildTop: buildTop, inputs: inputs, outputs: make(map[string]string, len(outputs))}
	for _, name := range outputs {
		dir := filepath.Join(root, "outputs", name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("builder: create output dir %q: %w", name, err)
		}
		l.outputs[name] = dir
	}
	return l, nil
}

// linkInput symlinks path into the build's inputs directory under label,
// so a build command can reach a dependency's output without needing to
// know the store's absolute layout.
func (l *layout) linkInput(label, path string) (string, error) {
	link := filepath.Join(l.inputs, label)
	if err := os.Symlink(path, link); err != nil {
		return "", fmt.Errorf("builder: link input %q: %w", label, err)
	}
	return link, nil
}
