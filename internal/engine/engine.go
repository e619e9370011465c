package engine

import (
	"fmt"
	"sync"

	"kmertax/internal/index"
	"kmertax/internal/query"
)

// Mode selects the intersection statistic.
type Mode string

const (
	// ModeWindow counts query k-mers inside the best reference window of
	// query length.
	ModeWindow Mode = "window"
	// ModeGlobal counts query k-mers present anywhere in the reference.
	ModeGlobal Mode = "global"
)

// ParseMode accepts "", "window" and "global".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeWindow:
		return ModeWindow, nil
	case ModeGlobal:
		return ModeGlobal, nil
	}
	return "", fmt.Errorf("unknown engine mode %q (want window|global)", s)
}

type Config struct {
	Mode Mode
}

type Engine struct {
	cfg  Config
	pool sync.Pool
}

func New(c Config) *Engine {
	if c.Mode == "" {
		c.Mode = ModeWindow
	}
	e := &Engine{cfg: c}
	e.pool.New = func() any { return new(scratch) }
	return e
}

// Mode returns the configured statistic.
func (e *Engine) Mode() Mode { return e.cfg.Mode }

// Intersect returns the intersection size of q against ref.
func (e *Engine) Intersect(ref *index.ReferenceIndex, q *query.Record) int {
	if len(q.Kmers) == 0 {
		return 0
	}
	if e.cfg.Mode == ModeGlobal {
		return GlobalIntersection(ref, q.Kmers)
	}
	s := e.pool.Get().(*scratch)
	n := s.window(ref, q.Kmers, q.Length)
	e.pool.Put(s)
	return n
}

// IntersectBatch scores every query against ref, in query order.
func (e *Engine) IntersectBatch(ref *index.ReferenceIndex, qs []query.Record) []uint32 {
	out := make([]uint32, len(qs))
	for i := range qs {
		out[i] = uint32(e.Intersect(ref, &qs[i]))
	}
	return out
}

// WindowIntersection is the allocation-per-call form of the window statistic.
func WindowIntersection(ref *index.ReferenceIndex, kmers []uint32, window int) int {
	var s scratch
	return s.window(ref, kmers, window)
}

// GlobalIntersection counts kmers that occur at least once in ref.
func GlobalIntersection(ref *index.ReferenceIndex, kmers []uint32) int {
	n := 0
	for _, km := range kmers {
		if ref.Occurrences(km) > 0 {
			n++
		}
	}
	return n
}
