// internal/kmer/complement.go
package kmer

var complement = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = byte(i)
	}
	t['A'], t['T'], t['C'], t['G'] = 'T', 'A', 'G', 'C'
	t['a'], t['t'], t['c'], t['g'] = 't', 'a', 'g', 'c'
	return t
}()

// ComplementSeq returns the base-wise complement of seq. Positions are not
// reversed; symbols outside ACGT are copied unchanged.
func ComplementSeq(seq []byte) []byte {
	if len(seq) == 0 {
		return nil
	}
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[i] = complement[b]
	}
	return out
}
