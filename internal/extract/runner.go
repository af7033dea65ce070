package extract

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/declscan/declscan/internal/model"
	"github.com/declscan/declscan/internal/source"
)

// Result pairs one input file with its extracted model or a per-file
// error. A run never aborts because one file failed.
type Result struct {
	Path  string
	Model *model.Model
	Err   error
}

// Progress is called after each completed file. Implementations must be
// safe for concurrent use; completed is the running count.
type Progress func(completed, total int, path string)

// Runner extracts a batch of files concurrently. Files are independent,
// so there is no coordination beyond collecting results: each worker owns
// its file's tokens and model exclusively.
type Runner struct {
	workers  int
	progress Progress
}

// NewRunner creates a runner with the given worker count; zero or
// negative means one worker per CPU.
func NewRunner(workers int, progress Progress) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{workers: workers, progress: progress}
}

// Run extracts every file and returns results in input order. A canceled
// context skips the remaining files and returns the context error;
// results for files already processed are still populated.
func (r *Runner) Run(ctx context.Context, files []*source.File) ([]Result, error) {
	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	var completed atomic.Int64
	total := len(files)

	for i, f := range files {
		if gctx.Err() != nil {
			break
		}
		i, f := i, f
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			m, err := Extract(f)
			results[i] = Result{Path: f.Path, Model: m, Err: err}

			if r.progress != nil {
				r.progress(int(completed.Add(1)), total, f.Path)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
