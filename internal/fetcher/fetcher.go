// Package fetcher acquires build inputs that are not already in the
// store: a URL download, a Git checkout, or a copy from a local path,
// each hash-verified before it is handed to the builder.
package fetcher

import (
	"context"
	"fmt"
	"os"

	"neve/internal/deriv"
	"neve/internal/store"
)

// Kind selects which acquisition strategy Fetch uses.
type Kind string

const (
	KindURL   Kind = "url"
	KindGit   Kind = "git"
	KindLocal Kind = "local"
)

// Source describes one fetchable input, the Go-side counterpart of a
// derivation input that isn't another derivation's output.
type Source struct {
	Kind Kind
	Name string // store-path label

	URL  string // KindURL, KindGit
	Rev  string // KindGit: branch, tag, or commit
	Path string // KindLocal

	Unpack bool // KindURL only: treat the download as an archive

	HashAlgorithm deriv.HashAlgorithm
	ExpectedHash  deriv.Digest
}

// Fetcher resolves Sources into store paths.
type Fetcher struct {
	store   *store.Store
	client  *httpClient
	retries int
}

// New returns a Fetcher that places acquired content into s.
func New(s *store.Store) *Fetcher {
	return &Fetcher{store: s, client: newHTTPClient(), retries: 3}
}

// Fetch acquires src and returns its store path. The result is verified
// against src.ExpectedHash whenever HashAlgorithm is set; a mismatch
// discards the fetched content and returns an error, never a partially
// written store path.
func (f *Fetcher) Fetch(ctx context.Context, src Source) (store.Path, error) {
	if src.Name == "" {
		return store.Path{}, fmt.Errorf("fetcher: source has no name")
	}
	switch src.Kind {
	case KindURL:
		return f.fetchURL(ctx, src)
	case KindGit:
		return f.fetchGit(ctx, src)
	case KindLocal:
		return f.fetchLocal(src)
	default:
		return store.Path{}, fmt.Errorf("fetcher: unknown source kind %q", src.Kind)
	}
}

func (f *Fetcher) verifyAndAddFile(src Source, content []byte) (store.Path, error) {
	if err := verifyContent(content, src.HashAlgorithm, src.ExpectedHash); err != nil {
		return store.Path{}, err
	}
	return f.store.AddFile(content, src.Name)
}

func (f *Fetcher) verifyAndAddDir(src Source, dir string) (store.Path, error) {
	if src.HashAlgorithm != "" {
		hash, err := store.HashPath(dir)
		if err != nil {
			return store.Path{}, fmt.Errorf("fetcher: hash %s: %w", dir, err)
		}
		if hash != src.ExpectedHash {
			return store.Path{}, &HashMismatchError{Name: src.Name, Expected: src.ExpectedHash, Actual: hash}
		}
	}
	return f.store.AddDirectory(dir, src.Name)
}

func (f *Fetcher) fetchLocal(src Source) (store.Path, error) {
	info, err := os.Stat(src.Path)
	if err != nil {
		return store.Path{}, fmt.Errorf("fetcher: local source %s: %w", src.Path, err)
	}
	if info.IsDir() {
		return f.verifyAndAddDir(src, src.Path)
	}
	content, err := os.ReadFile(src.Path)
	if err != nil {
		return store.Path{}, fmt.Errorf("fetcher: local source %s: %w", src.Path, err)
	}
	return f.verifyAndAddFile(src, content)
}
