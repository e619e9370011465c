// internal/fasta/open.go
package fasta

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"strings"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	err := g.Reader.Close()
	if cerr := g.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Open returns a reader over path, transparently decompressing gzip input
// (detected by magic number or a .gz suffix). "-" reads standard input.
func Open(path string) (io.ReadCloser, error) {
	if path == Stdin {
		return openStream(io.NopCloser(os.Stdin))
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var sig [2]byte
	n, _ := io.ReadFull(fh, sig[:])
	if _, err := fh.Seek(0, io.SeekStart); err != nil {
		_ = fh.Close()
		return nil, err
	}
	if (n == 2 && sig[0] == 0x1f && sig[1] == 0x8b) || strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			_ = fh.Close()
			return nil, err
		}
		return &gzipFile{Reader: gr, f: fh}, nil
	}
	return fh, nil
}

type peekCloser struct {
	*bufio.Reader
	io.Closer
}

// openStream sniffs gzip on a non-seekable stream.
func openStream(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)
	sig, _ := br.Peek(2)
	if len(sig) == 2 && sig[0] == 0x1f && sig[1] == 0x8b {
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return &peekCloser{Reader: bufio.NewReader(gr), Closer: gr}, nil
	}
	return &peekCloser{Reader: br, Closer: rc}, nil
}
