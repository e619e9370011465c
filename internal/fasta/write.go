package fasta

import (
	"bufio"
	"io"
)

// Write emits records in FASTA format, one sequence line per record,
// preserving ID and description.
func Write(w io.Writer, recs []Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range recs {
		_ = bw.WriteByte('>')
		_, _ = bw.WriteString(r.ID)
		if r.Desc != "" {
			_ = bw.WriteByte(' ')
			_, _ = bw.WriteString(r.Desc)
		}
		_ = bw.WriteByte('\n')
		_, _ = bw.Write(r.Seq)
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
