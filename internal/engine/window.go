// internal/engine/window.go
package engine

import "kmertax/internal/index"

// maxDense bounds the dense counter array; larger references fall back to
// a map keyed by window start.
const maxDense = 1 << 26

// scratch holds per-call window counters. Only touched slots are reset, so
// reusing it costs nothing proportional to the reference length.
type scratch struct {
	counts  []uint32
	touched []int
}

// window returns the maximum number of distinct kmers found inside any
// reference window of the given length.
//
// An occurrence at offset idx lies inside every window whose start is in
// [idx-window+k, idx]. Each occurrence bumps those starts, skipping starts
// already bumped by the previous occurrence of the same k-mer, so a k-mer
// counts at most once per window.
func (s *scratch) window(ref *index.ReferenceIndex, kmers []uint32, window int) int {
	k := ref.K
	if len(kmers) == 0 || ref.Len() == 0 || window < k {
		return 0
	}
	shift := window - k
	size := ref.SeqLen - k + 1 + shift
	if size > maxDense {
		return windowSparse(ref, kmers, window)
	}
	if cap(s.counts) < size {
		s.counts = make([]uint32, size)
	}
	counts := s.counts[:size]

	var best uint32
	for _, km := range kmers {
		prev := -1
		for _, p := range ref.Bucket(km) {
			idx := int(p)
			lo := idx - shift
			if prev+1 > lo {
				lo = prev + 1
			}
			for i := lo + shift; i <= idx+shift; i++ {
				if counts[i] == 0 {
					s.touched = append(s.touched, i)
				}
				counts[i]++
				if counts[i] > best {
					best = counts[i]
				}
			}
			prev = idx
		}
	}

	for _, i := range s.touched {
		counts[i] = 0
	}
	s.touched = s.touched[:0]
	return int(best)
}

func windowSparse(ref *index.ReferenceIndex, kmers []uint32, window int) int {
	k := ref.K
	counts := make(map[int]int)
	best := 0
	for _, km := range kmers {
		prev := -1
		for _, p := range ref.Bucket(km) {
			idx := int(p)
			lo := max(prev+1, idx-window+k)
			for i := lo; i <= idx; i++ {
				counts[i]++
				if counts[i] > best {
					best = counts[i]
				}
			}
			prev = idx
		}
	}
	return best
}
