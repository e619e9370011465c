// internal/writers/jsonl.go
package writers

import (
	"encoding/json"
	"io"

	"kmertax/internal/jsonlutil"
	"kmertax/internal/result"
)

// StartJSONLWriter streams each classification as one JSON line (v1).
func StartJSONLWriter(out io.Writer, bufSize int) (chan<- result.Classification, <-chan error) {
	return jsonlutil.Start[result.Classification](out, bufSize,
		func(enc *json.Encoder, c result.Classification) error {
			return enc.Encode(ToAPI(c))
		},
		IsBrokenPipe,
	)
}

func init() {
	RegisterResult(FormatJSONL, func(w io.Writer, in <-chan result.Classification) error {
		ch, done := StartJSONLWriter(w, 0)
		for c := range in {
			ch <- c
		}
		close(ch)
		return <-done
	})
}
