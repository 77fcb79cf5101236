package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/shapec-dev/shapec/internal/compiler/schema"
)

// CompileAll compiles dirs on at most Workers goroutines. Results are in
// input order. A failing service does not stop the others; only context
// cancellation does, and services not yet started then report ctx.Err().
func (c *Compiler) CompileAll(ctx context.Context, dirs []schema.ServiceDir) []*Result {
	results := make([]*Result, len(dirs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)

	for i, dir := range dirs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = &Result{Service: dir.Name, Err: err}
				return nil
			}
			results[i] = c.Compile(gctx, dir)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Failed returns the results that carry an error.
func Failed(results []*Result) []*Result {
	var out []*Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
