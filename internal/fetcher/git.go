package fetcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"neve/internal/store"
)

// fetchGit clones src.URL at src.Rev into a scratch directory, strips
// .git (it isn't part of the reproducible content), and stores the
// resulting tree. No pure-Go git implementation is available, so this
// shells out to the git binary the way any CLI tool without a vendored
// git library would.
func (f *Fetcher) fetchGit(ctx context.Context, src Source) (store.Path, error) {
	dir, err := os.MkdirTemp("", "neve-git-*")
	if err != nil {
		return store.Path{}, err
	}
	defer os.RemoveAll(dir)

	if err := runGit(ctx, "", "clone", "--quiet", src.URL, dir); err != nil {
		return store.Path{}, fmt.Errorf("fetcher: git clone %s: %w", src.URL, err)
	}
	if src.Rev != "" {
		if err := runGit(ctx, dir, "checkout", "--quiet", src.Rev); err != nil {
			return store.Path{}, fmt.Errorf("fetcher: git checkout %s: %w", src.Rev, err)
		}
	}
	if err := os.RemoveAll(dir + "/.git"); err != nil {
		return store.Path{}, err
	}
	return f.verifyAndAddDir(src, dir)
}

func runGit(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w", string(out), err)
	}
	return nil
}
