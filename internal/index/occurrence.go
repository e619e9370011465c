package index

import (
	"fmt"

	"kmertax/internal/kmer"
)

// Occurrence holds the summed occurrence count of every k-mer across all
// references of one index. It feeds the query orientation heuristic only.
type Occurrence struct {
	K      int
	Counts []uint32 // len 4^k
}

// NewOccurrence returns a zeroed table for k.
func NewOccurrence(k int) *Occurrence {
	return &Occurrence{K: k, Counts: make([]uint32, kmer.Count(k))}
}

// Add accumulates the bucket sizes of r.
func (o *Occurrence) Add(r *ReferenceIndex) error {
	if r.K != o.K {
		return fmt.Errorf("occurrence k=%d, reference k=%d", o.K, r.K)
	}
	for i := range o.Counts {
		o.Counts[i] += r.Offsets[i+1] - r.Offsets[i]
	}
	return nil
}

// Net returns Σ (count[km] - count[complement(km)]) over kmers.
func (o *Occurrence) Net(kmers []uint32) int64 {
	var net int64
	for _, km := range kmers {
		net += int64(o.Counts[km])
		net -= int64(o.Counts[kmer.Complement(km, o.K)])
	}
	return net
}
