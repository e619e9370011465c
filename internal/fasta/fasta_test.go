package fasta

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const plain = `>seq1;tax=a,b,c first record
ACGT
acgt

>seq2
NNnn
>empty
`

func writeGz(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.fa.gz")
	fh, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	gw := gzip.NewWriter(fh)
	if _, err := gw.Write([]byte(data)); err != nil {
		t.Fatalf("write gz: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	if err := fh.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func TestScanRecords(t *testing.T) {
	var recs []Record
	err := Scan(context.Background(), strings.NewReader(plain), func(r Record) error {
		recs = append(recs, r)
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("want 3 records, got %d", len(recs))
	}
	if recs[0].ID != "seq1;tax=a,b,c" || recs[0].Desc != "first record" || string(recs[0].Seq) != "ACGTacgt" {
		t.Fatalf("bad first record: %+v", recs[0])
	}
	if string(recs[1].Seq) != "NNnn" {
		t.Fatalf("bad second record: %+v", recs[1])
	}
	if recs[2].ID != "empty" || len(recs[2].Seq) != 0 {
		t.Fatalf("bad empty record: %+v", recs[2])
	}
}

func TestScanRejectsHeaderlessData(t *testing.T) {
	err := Scan(context.Background(), strings.NewReader("ACGT\n>x\nAC\n"), func(Record) error { return nil })
	if err == nil {
		t.Fatal("expected error for sequence before header")
	}
}

func TestScanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Scan(ctx, strings.NewReader(plain), func(Record) error { return nil })
	if err != context.Canceled {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestReadAllGzip(t *testing.T) {
	recs, err := ReadAll(context.Background(), writeGz(t, plain))
	if err != nil {
		t.Fatalf("read gz: %v", err)
	}
	if len(recs) != 3 || recs[1].ID != "seq2" {
		t.Fatalf("gzip parse failed: %+v", recs)
	}
}

func TestReadAllStdin(t *testing.T) {
	orig := os.Stdin
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdin = r
	defer func() { os.Stdin = orig }()
	go func() {
		_, _ = io.WriteString(w, plain)
		_ = w.Close()
	}()

	recs, err := ReadAll(context.Background(), Stdin)
	if err != nil {
		t.Fatalf("read stdin: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records from stdin, got %d", len(recs))
	}
}

func TestLineage(t *testing.T) {
	cases := map[string]string{
		"A;tax=X":               "X",
		"ref1;tax=d:Bac,p:Firm": "d:Bac,p:Firm",
		"no_marker":             "no_marker",
		"a;tax=b;tax=c":         "b",
	}
	for in, want := range cases {
		if got := Lineage(in); got != want {
			t.Fatalf("Lineage(%q) = %q want %q", in, got, want)
		}
	}
}

func TestWriteRoundTrip(t *testing.T) {
	in := []Record{{ID: "q1", Desc: "d e", Seq: []byte("ACGT")}, {ID: "q2", Seq: []byte("TT")}}
	var buf bytes.Buffer
	if err := Write(&buf, in); err != nil {
		t.Fatal(err)
	}
	if buf.String() != ">q1 d e\nACGT\n>q2\nTT\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
	out, err := func() ([]Record, error) {
		var got []Record
		err := Scan(context.Background(), &buf, func(r Record) error { got = append(got, r); return nil })
		return got, err
	}()
	if err != nil || len(out) != 2 || out[0].Desc != "d e" {
		t.Fatalf("round trip failed: %+v %v", out, err)
	}
}
