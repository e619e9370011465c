// Package query turns query FASTA records into k-mer sets and optionally
// reorients them against the reference corpus.
package query

import (
	"bytes"

	"kmertax/internal/fasta"
	"kmertax/internal/index"
	"kmertax/internal/kmer"
)

// Record is one parsed query.
type Record struct {
	Name    string
	Desc    string
	Seq     []byte   // upper-cased
	Kmers   []uint32 // sorted, unique, valid k-mers only
	Length  int      // bases, used as the reference window length
	Flipped bool     // complemented by Orient
}

// Parse converts FASTA records into query records, preserving order.
func Parse(recs []fasta.Record, k int) ([]Record, error) {
	if err := kmer.ValidateK(k); err != nil {
		return nil, err
	}
	out := make([]Record, len(recs))
	for i, r := range recs {
		seq := bytes.ToUpper(r.Seq)
		out[i] = Record{
			Name:   r.ID,
			Desc:   r.Desc,
			Seq:    seq,
			Kmers:  kmer.Set(seq, k),
			Length: len(seq),
		}
	}
	return out, nil
}

// ShouldFlip reports whether q's k-mers lean towards the complement strand
// of the reference corpus (net < 0).
func ShouldFlip(q *Record, occ *index.Occurrence) bool {
	return occ.Net(q.Kmers) < 0
}

// Orient complements, in place, every query whose net occurrence balance is
// negative, and re-derives its k-mer set. It returns the number flipped.
func Orient(qs []Record, occ *index.Occurrence) int {
	flipped := 0
	for i := range qs {
		q := &qs[i]
		if !ShouldFlip(q, occ) {
			continue
		}
		q.Seq = kmer.ComplementSeq(q.Seq)
		q.Kmers = kmer.Set(q.Seq, occ.K)
		q.Flipped = !q.Flipped
		flipped++
	}
	return flipped
}

// Records converts queries back to FASTA records (for writing oriented
// query files).
func Records(qs []Record) []fasta.Record {
	out := make([]fasta.Record, len(qs))
	for i, q := range qs {
		out[i] = fasta.Record{ID: q.Name, Desc: q.Desc, Seq: q.Seq}
	}
	return out
}
