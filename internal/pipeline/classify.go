package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kmertax/internal/query"
	"kmertax/internal/result"
	"kmertax/internal/score"
	"kmertax/internal/timing"
)

// ScoreConfig controls Classify.
type ScoreConfig struct {
	Threads int     // 0 runs serially
	TRatio  float64 // t = floor(n*TRatio); 0 selects 0.5
	Result  result.Options
	Logger  *zap.Logger
}

// Classify scores every query row of m and returns one classification per
// query in submission order. A scoring invariant violation fails the run
// naming the query.
func Classify(ctx context.Context, m *Matrix, qs []query.Record, cfg ScoreConfig) ([]result.Classification, Stats, error) {
	var st Stats
	if len(m.Matches) != len(qs) {
		return nil, st, fmt.Errorf("score: matrix has %d rows for %d queries", len(m.Matches), len(qs))
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()
	out := make([]result.Classification, len(qs))
	var mean timing.Mean

	one := func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		t0 := time.Now()
		q := &qs[i]
		n := len(q.Kmers)
		scores, err := score.Confidence(m.Matches[i], n, score.Threshold(n, cfg.TRatio))
		if err != nil {
			return fmt.Errorf("score: query %q: %w", q.Name, err)
		}
		out[i] = result.Classification{
			Query:     q.Name,
			KmerCount: n,
			Flipped:   q.Flipped,
			Ranking:   result.Aggregate(m.Lineages, scores, cfg.Result),
		}
		mean.Add(time.Since(t0))
		return nil
	}

	var err error
	if cfg.Threads <= 0 {
		for i := range qs {
			if err = one(ctx, i); err != nil {
				break
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Threads)
		for i := range qs {
			if gctx.Err() != nil {
				break
			}
			i := i
			g.Go(func() error { return one(gctx, i) })
		}
		err = g.Wait()
		if err == nil {
			err = ctx.Err()
		}
	}
	if err != nil {
		return nil, st, err
	}
	st.Elapsed = time.Since(start)
	st.Avg = mean.Value()
	log.Debug("queries scored", zap.Int("queries", len(qs)), zap.Duration("elapsed", st.Elapsed))
	return out, st, nil
}
