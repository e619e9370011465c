// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kmertax/internal/index"
	"kmertax/internal/query"
	"kmertax/internal/timing"
)

// Source is the minimal capability the scheduler needs from an index.
// *store.Reader satisfies it; tests use in-memory fakes.
type Source interface {
	Lineages(ctx context.Context) ([]string, error)
	Reference(ctx context.Context, id int) (*index.ReferenceIndex, error)
}

// Intersector computes one reference's counts over the whole query batch,
// in query order. *engine.Engine satisfies it.
type Intersector interface {
	IntersectBatch(ref *index.ReferenceIndex, qs []query.Record) []uint32
}

// Matrix holds intersection sizes indexed [query][reference].
type Matrix struct {
	Lineages []string
	Matches  [][]uint32
}

// Config controls the scheduler.
type Config struct {
	Threads  int       // 0 runs serially in the calling goroutine
	Progress io.Writer // progress bar destination; nil disables it
	Logger   *zap.Logger
}

// Stats reports stage timings; Avg is the mean time per reference or per
// query.
type Stats struct {
	Elapsed time.Duration
	Avg     time.Duration
}

// Intersect runs eng over every reference in src against qs. References
// are processed in any order but land in the matrix by id. The first error
// (including cancellation, observed between references) aborts the run and
// no matrix is returned.
func Intersect(ctx context.Context, src Source, eng Intersector, qs []query.Record, cfg Config) (*Matrix, Stats, error) {
	var st Stats
	start := time.Now()
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	lineages, err := src.Lineages(ctx)
	if err != nil {
		return nil, st, fmt.Errorf("intersect: %w", err)
	}
	cols := make([][]uint32, len(lineages))
	var mean timing.Mean
	prog := newProgress(cfg.Progress, len(lineages))

	one := func(ctx context.Context, id int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		t0 := time.Now()
		ref, err := src.Reference(ctx, id)
		if err != nil {
			return fmt.Errorf("intersect: reference %d: %w", id, err)
		}
		cols[id] = eng.IntersectBatch(ref, qs)
		d := time.Since(t0)
		mean.Add(d)
		prog.done(d)
		return nil
	}

	if cfg.Threads <= 0 {
		for id := range lineages {
			if err = one(ctx, id); err != nil {
				break
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Threads)
		for id := range lineages {
			if gctx.Err() != nil {
				break
			}
			id := id
			g.Go(func() error { return one(gctx, id) })
		}
		err = g.Wait()
		if err == nil {
			err = ctx.Err()
		}
	}
	prog.finish(err != nil)
	if err != nil {
		return nil, st, err
	}

	m := &Matrix{Lineages: lineages, Matches: make([][]uint32, len(qs))}
	for q := range qs {
		row := make([]uint32, len(lineages))
		for r := range lineages {
			row[r] = cols[r][q]
		}
		m.Matches[q] = row
	}
	st.Elapsed = time.Since(start)
	st.Avg = mean.Value()
	log.Info("intersections computed",
		zap.Int("references", len(lineages)),
		zap.Int("queries", len(qs)),
		zap.Int("threads", cfg.Threads),
		zap.Duration("elapsed", st.Elapsed),
		zap.Duration("avg_reference", st.Avg),
	)
	return m, st, nil
}
