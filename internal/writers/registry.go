// internal/writers/registry.go
package writers

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"syscall"

	"kmertax/internal/result"
)

// Output formats.
const (
	FormatText  = "text"
	FormatTSV   = "tsv"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// ResultWriters maps a format to a function that consumes classifications
// until in is closed.
var ResultWriters = map[string]func(w io.Writer, in <-chan result.Classification) error{}

// RegisterResult adds or replaces a format (last wins).
func RegisterResult(format string, fn func(io.Writer, <-chan result.Classification) error) {
	ResultWriters[format] = fn
}

// Formats lists the registered formats, sorted.
func Formats() []string {
	out := make([]string, 0, len(ResultWriters))
	for f := range ResultWriters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// StartResultWriter spins up a writer goroutine for the given format. The
// caller sends classifications in query order, closes the channel, then
// reads exactly one error (nil on success; broken pipes count as success).
func StartResultWriter(out io.Writer, format string, bufSize int) (chan<- result.Classification, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan result.Classification, bufSize)
	errCh := make(chan error, 1)

	go func() {
		fn, ok := ResultWriters[format]
		if !ok {
			for range in {
			}
			errCh <- fmt.Errorf("unknown output format %q (no writer registered)", format)
			return
		}
		err := fn(out, in)
		for range in {
		}
		if IsBrokenPipe(err) {
			err = nil
		}
		errCh <- err
	}()
	return in, errCh
}

// IsBrokenPipe reports whether err means the reader of our output went away,
// as when results are piped into head. Such writes end the run successfully.
func IsBrokenPipe(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe)
}

// WriteAll is the synchronous form of StartResultWriter.
func WriteAll(out io.Writer, format string, cls []result.Classification) error {
	in, done := StartResultWriter(out, format, len(cls))
	for _, c := range cls {
		in <- c
	}
	close(in)
	return <-done
}
