// Package kmer encodes nucleotide k-mers as 2-bit-per-base integers.
//
// A=0, C=1, G=2, T=3 (case-insensitive), concatenated big-endian, so a
// k-mer maps to [0, 4^k). Any other symbol invalidates every window that
// contains it.
package kmer

import (
	"fmt"
	"sort"
)

// DefaultK is the reference k-mer length.
const DefaultK = 8

// MaxK bounds the dense 4^k offset and occurrence tables (64 MiB each at 12).
const MaxK = 12

var codes [256]int8

func init() {
	for i := range codes {
		codes[i] = -1
	}
	codes['A'], codes['a'] = 0, 0
	codes['C'], codes['c'] = 1, 1
	codes['G'], codes['g'] = 2, 2
	codes['T'], codes['t'] = 3, 3
}

// ValidateK reports whether k is usable.
func ValidateK(k int) error {
	if k < 1 || k > MaxK {
		return fmt.Errorf("k must be in [1,%d], got %d", MaxK, k)
	}
	return nil
}

// Count returns the number of distinct k-mers (4^k).
func Count(k int) int { return 1 << (2 * uint(k)) }

// Mask returns 4^k - 1.
func Mask(k int) uint32 { return uint32(Count(k) - 1) }

// Encode returns the 2-bit code of a base.
func Encode(b byte) (uint32, bool) {
	c := codes[b]
	if c < 0 {
		return 0, false
	}
	return uint32(c), true
}

// Index encodes a whole k-mer string. ok is false if it holds a non-ACGT symbol.
func Index(s []byte) (uint32, bool) {
	var v uint32
	for _, b := range s {
		c, ok := Encode(b)
		if !ok {
			return 0, false
		}
		v = v<<2 | c
	}
	return v, true
}

// Each calls fn for every valid k-mer of seq with its 0-based start offset,
// in increasing offset order.
func Each(seq []byte, k int, fn func(pos int, kmer uint32)) {
	if k <= 0 || len(seq) < k {
		return
	}
	mask := Mask(k)
	var (
		v     uint32
		valid int // consecutive valid bases ending at i
	)
	for i, b := range seq {
		c, ok := Encode(b)
		if !ok {
			valid = 0
			v = 0
			continue
		}
		v = (v<<2 | c) & mask
		valid++
		if valid >= k {
			fn(i-k+1, v)
		}
	}
}

// Set returns the sorted unique k-mers of seq.
func Set(seq []byte, k int) []uint32 {
	if len(seq) < k {
		return nil
	}
	seen := make(map[uint32]struct{}, len(seq)-k+1)
	Each(seq, k, func(_ int, km uint32) { seen[km] = struct{}{} })
	out := make([]uint32, 0, len(seen))
	for km := range seen {
		out = append(out, km)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Complement flips every base of a k-mer (A<->T, C<->G) without reversing
// base order. With the A=0..T=3 code this is the bitwise NOT under Mask(k).
func Complement(km uint32, k int) uint32 { return ^km & Mask(k) }
