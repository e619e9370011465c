// Package fasta reads and writes FASTA records for references and queries.
package fasta

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
)

// Record is one parsed FASTA entry. Seq keeps the input case.
type Record struct {
	ID   string // header up to the first blank
	Desc string // remainder of the header line
	Seq  []byte
}

// maxLine allows very long single-line sequences (64 MiB).
const maxLine = 64 * 1024 * 1024

// Scan parses FASTA from r and calls emit once per record, in file order.
// Cancellation is checked between lines. Sequence lines are concatenated
// with surrounding whitespace removed; a record may have an empty sequence.
func Scan(ctx context.Context, r io.Reader, emit func(Record) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var (
		cur    Record
		inRec  bool
		seqBuf = make([]byte, 0, 1<<16)
	)
	flush := func() error {
		if !inRec {
			return nil
		}
		cur.Seq = append([]byte(nil), seqBuf...)
		return emit(cur)
	}

	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return err
			}
			cur = parseHeader(line[1:])
			inRec = true
			seqBuf = seqBuf[:0]
			continue
		}
		if line[0] == ';' {
			continue
		}
		if !inRec {
			return fmt.Errorf("fasta: sequence data before first header")
		}
		seqBuf = append(seqBuf, bytes.TrimSpace(line)...)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("fasta scan: %w", err)
	}
	return flush()
}

// ScanPath opens path (see Open) and scans it.
func ScanPath(ctx context.Context, path string, emit func(Record) error) error {
	rc, err := Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := Scan(ctx, rc, emit); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ReadAll collects every record of path.
func ReadAll(ctx context.Context, path string) ([]Record, error) {
	var out []Record
	err := ScanPath(ctx, path, func(r Record) error {
		out = append(out, r)
		return nil
	})
	return out, err
}

func parseHeader(hdr []byte) Record {
	hdr = bytes.TrimSpace(hdr)
	if i := bytes.IndexAny(hdr, " \t"); i >= 0 {
		return Record{ID: string(hdr[:i]), Desc: string(bytes.TrimSpace(hdr[i+1:]))}
	}
	return Record{ID: string(hdr)}
}
