package builder

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"neve/internal/store"
)

// ContentScanner implements store.ReferenceScanner by scanning a built
// output's files for other store paths' hash components as textual
// substrings — a build command has no structured way to declare which
// of its inputs ended up embedded in its output (a shebang line, a
// linked library path, a config file pointing at another derivation),
// so the only reliable way to recover that dependency edge afterward is
// to look for it directly in the bytes, the same technique Nix calls
// scanning for references.
type ContentScanner struct {
	store *store.Store
	cache *store.ReferencesCache
}

func NewContentScanner(s *store.Store) *ContentScanner {
	cache, err := s.OpenReferencesCache()
	if err != nil {
		cache = nil
	}
	return &ContentScanner{store: s, cache: cache}
}

// References reports every other store path whose hash component
// appears as a substring somewhere under p's content. A store path's
// content is immutable once built, so a cache hit never needs
// invalidating — only a miss costs a filesystem walk.
func (c *ContentScanner) References(p store.Path) ([]store.Path, error) {
	if c.cache != nil {
		if labels, ok := c.cache.Lookup(p); ok {
			return c.resolveLabels(labels)
		}
	}
	refs, err := c.scan(p)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		labels := make([]string, len(refs))
		for i, r := range refs {
			labels[i] = r.String()
		}
		if err := c.cache.Store(p, labels); err != nil {
			return nil, err
		}
	}
	return refs, nil
}

func (c *ContentScanner) resolveLabels(labels []string) ([]store.Path, error) {
	refs := make([]store.Path, 0, len(labels))
	for _, label := range labels {
		p, ok := store.ParsePath(label)
		if !ok {
			return nil, fmt.Errorf("content scanner: malformed cached label %q", label)
		}
		refs = append(refs, p)
	}
	return refs, nil
}

func (c *ContentScanner) scan(p store.Path) ([]store.Path, error) {
	candidates, err := c.store.ListPaths()
	if err != nil {
		return nil, err
	}
	needles := make(map[string]store.Path, len(candidates))
	for _, cand := range candidates {
		if cand == p {
			continue
		}
		needles[cand.Hash.String()] = cand
	}
	if len(needles) == 0 {
		return nil, nil
	}

	found := make(map[string]bool)
	root := c.store.ToFSPath(p)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		text := string(content)
		for hash := range needles {
			if !found[hash] && strings.Contains(text, hash) {
				found[hash] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	refs := make([]store.Path, 0, len(found))
	for hash := range found {
		refs = append(refs, needles[hash])
	}
	return refs, nil
}
