package builder

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"neve/internal/deriv"
)

// Result pairs one derivation with the outcome of realizing it.
type Result struct {
	Derivation *deriv.Derivation
	Outputs    map[string]string
	Err        error
}

// RealizeAll builds every derivation in ds concurrently, bounded by the
// Builder's configured MaxJobs, and returns one Result per input in the
// same order. A failure building one derivation doesn't cancel the
// others — each index's Result reports its own error independently,
// writing into a pre-sized slice by index so no mutex is needed, and
// letting partial failures through instead of aborting the whole group.
func (b *Builder) RealizeAll(ctx context.Context, ds []*deriv.Derivation) []Result {
	if len(ds) == 0 {
		return nil
	}
	jobs := b.maxJobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(ds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(ds)))

	for i, d := range ds {
		g.Go(func(i int, d *deriv.Derivation) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					results[i] = Result{Derivation: d, Err: gctx.Err()}
					return nil
				default:
				}
				outs, err := b.realize(gctx, d)
				results[i] = Result{Derivation: d, Outputs: outs, Err: err}
				return nil
			}
		}(i, d))
	}
	g.Wait()
	return results
}
