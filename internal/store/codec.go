// internal/store/codec.go
package store

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// Codec names the blob compression of an index file.
type Codec string

const (
	CodecNone Codec = "none"
	CodecXZ   Codec = "xz"
)

// ParseCodec accepts "", "none" and "xz".
func ParseCodec(s string) (Codec, error) {
	switch Codec(s) {
	case "", CodecNone:
		return CodecNone, nil
	case CodecXZ:
		return CodecXZ, nil
	}
	return "", fmt.Errorf("unknown index compression %q (want none|xz)", s)
}

func packUint32s(v []uint32) []byte {
	out := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(out[4*i:], x)
	}
	return out
}

func unpackUint32s(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: blob length %d not a multiple of 4", ErrCorrupt, len(b))
	}
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[4*i:])
	}
	return out, nil
}

func (c Codec) encode(raw []byte) ([]byte, error) {
	if c != CodecXZ {
		return raw, nil
	}
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c Codec) decode(blob []byte) ([]byte, error) {
	if c != CodecXZ {
		return blob, nil
	}
	r, err := xz.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return raw, nil
}

// checksum is the BLAKE3 digest over the given raw (uncompressed) parts.
func checksum(parts ...[]byte) string {
	h := blake3.New()
	for _, p := range parts {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		_, _ = h.Write(n[:])
		_, _ = h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
