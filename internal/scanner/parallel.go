package scanner

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ScanAll scans every unit using the engine's worker count and returns the
// results in input order. If ctx is cancelled no further units are started;
// units that were never scanned are left out of the result.
func (e *Engine) ScanAll(ctx context.Context, units []CodeUnit) []CodeUnit {
	results := make([]CodeUnit, len(units))
	scanned := make([]bool, len(units))

	workers := e.workers
	if workers > len(units) {
		workers = len(units)
	}

	g := new(errgroup.Group)
	g.SetLimit(max(workers, 1))
	for i := range units {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = e.ScanUnit(units[i])
			scanned[i] = true
			return nil
		})
	}
	_ = g.Wait()

	out := make([]CodeUnit, 0, len(units))
	for i := range results {
		if scanned[i] {
			out = append(out, results[i])
		}
	}
	return out
}

// ScanBatch scans units and returns only those with at least one finding,
// in input order.
func (e *Engine) ScanBatch(ctx context.Context, units []CodeUnit) []CodeUnit {
	all := e.ScanAll(ctx, units)
	out := make([]CodeUnit, 0, len(all))
	for _, u := range all {
		if len(u.Findings) > 0 {
			out = append(out, u)
		}
	}
	return out
}
