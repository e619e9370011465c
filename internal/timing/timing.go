// Package timing collects per-stage durations and counts for a classify run.
package timing

import (
	"sync"
	"time"
)

// Metadata is the run summary written to metadata.out.
type Metadata struct {
	RunID          string
	K              int
	Threads        int
	ReferenceCount int
	QueryCount     int
	IndexSkipped   bool

	ReferenceParse time.Duration
	QueryParse     time.Duration
	OrientQueries  time.Duration
	Intersections  time.Duration
	AvgReference   time.Duration
	AvgScoring     time.Duration
}

// Pairs returns the metadata as ordered key/value pairs with durations in
// seconds.
func (m Metadata) Pairs() [][2]any {
	return [][2]any{
		{"run_id", m.RunID},
		{"reference_count", m.ReferenceCount},
		{"query_count", m.QueryCount},
		{"k", m.K},
		{"threads", m.Threads},
		{"index_skipped", m.IndexSkipped},
		{"reference_parse_time", m.ReferenceParse.Seconds()},
		{"query_parse_time", m.QueryParse.Seconds()},
		{"orient_queries_time", m.OrientQueries.Seconds()},
		{"calculate_intersection_sizes_time", m.Intersections.Seconds()},
		{"average_reference_processing_time", m.AvgReference.Seconds()},
		{"average_prob_calculation_time", m.AvgScoring.Seconds()},
	}
}

// Stage measures one stage. Stop returns the elapsed time.
type Stage struct{ start time.Time }

func Start() Stage { return Stage{start: time.Now()} }

func (s Stage) Stop() time.Duration { return time.Since(s.start) }

// Mean accumulates durations from concurrent workers.
type Mean struct {
	mu    sync.Mutex
	total time.Duration
	n     int
}

func (m *Mean) Add(d time.Duration) {
	m.mu.Lock()
	m.total += d
	m.n++
	m.mu.Unlock()
}

// Value returns the mean, or 0 when nothing was added.
func (m *Mean) Value() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.n == 0 {
		return 0
	}
	return m.total / time.Duration(m.n)
}
