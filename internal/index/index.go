// Package index builds the per-reference positional k-mer index.
//
// Positions are stored CSR style: bucket i of a ReferenceIndex holds the
// sorted 0-based offsets of k-mer i and spans Positions[Offsets[i]:Offsets[i+1]].
// The package is domain-only; persistence lives in internal/store.
package index

import (
	"errors"
	"fmt"

	"kmertax/internal/kmer"
)

// ErrInvalid is returned by Validate for a structurally broken index.
var ErrInvalid = errors.New("invalid reference index")

// ReferenceIndex is the immutable k-mer position index of one reference.
type ReferenceIndex struct {
	Lineage   string
	K         int
	SeqLen    int
	Offsets   []uint32 // len 4^k + 1
	Positions []uint32
}

// Bucket returns the sorted occurrence offsets of km. The slice aliases the
// index and must not be modified.
func (r *ReferenceIndex) Bucket(km uint32) []uint32 {
	return r.Positions[r.Offsets[km]:r.Offsets[km+1]]
}

// Occurrences returns the number of times km occurs.
func (r *ReferenceIndex) Occurrences(km uint32) int {
	return int(r.Offsets[km+1] - r.Offsets[km])
}

// Len is the total number of indexed k-mer occurrences.
func (r *ReferenceIndex) Len() int { return len(r.Positions) }

// Build indexes seq with a two-pass counting sort. Offsets are visited in
// increasing order, so every bucket comes out strictly increasing.
// A sequence shorter than k yields an index with only empty buckets.
func Build(lineage string, seq []byte, k int) (*ReferenceIndex, error) {
	if err := kmer.ValidateK(k); err != nil {
		return nil, err
	}
	n := kmer.Count(k)
	offsets := make([]uint32, n+1)

	total := 0
	kmer.Each(seq, k, func(_ int, km uint32) {
		offsets[km+1]++
		total++
	})
	for i := 1; i <= n; i++ {
		offsets[i] += offsets[i-1]
	}

	positions := make([]uint32, total)
	cursor := make([]uint32, n)
	copy(cursor, offsets[:n])
	kmer.Each(seq, k, func(pos int, km uint32) {
		positions[cursor[km]] = uint32(pos)
		cursor[km]++
	})

	return &ReferenceIndex{
		Lineage:   lineage,
		K:         k,
		SeqLen:    len(seq),
		Offsets:   offsets,
		Positions: positions,
	}, nil
}

// Validate checks the CSR invariants. Used on indexes read back from disk.
func (r *ReferenceIndex) Validate() error {
	if err := kmer.ValidateK(r.K); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	n := kmer.Count(r.K)
	if len(r.Offsets) != n+1 {
		return fmt.Errorf("%w: offsets length %d, want %d", ErrInvalid, len(r.Offsets), n+1)
	}
	if r.Offsets[0] != 0 || int(r.Offsets[n]) != len(r.Positions) {
		return fmt.Errorf("%w: offsets do not span positions", ErrInvalid)
	}
	for i := 0; i < n; i++ {
		lo, hi := r.Offsets[i], r.Offsets[i+1]
		if hi < lo {
			return fmt.Errorf("%w: offsets decrease at bucket %d", ErrInvalid, i)
		}
		for j := lo + 1; j < hi; j++ {
			if r.Positions[j] <= r.Positions[j-1] {
				return fmt.Errorf("%w: bucket %d not strictly increasing", ErrInvalid, i)
			}
		}
		if hi > lo && int(r.Positions[hi-1]) > r.SeqLen-r.K {
			return fmt.Errorf("%w: bucket %d position beyond sequence end", ErrInvalid, i)
		}
	}
	return nil
}
