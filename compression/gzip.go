package compression

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/pkg/errors"
)

// gzipMagic is the two-byte header that opens every gzip stream.
var gzipMagic = []byte{0x1f, 0x8b}

// IsCompressed returns true when data looks like a gzip stream.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, gzipMagic)
}

// Compress data with gzip at the default level.
func Compress(data []byte) ([]byte, error) {
	var out bytes.Buffer

	w := gzip.NewWriter(&out)

	if _, err := w.Write(data); err != nil {
		return nil, errors.Wrap(err, "gzip write")
	}

	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "gzip close")
	}

	return out.Bytes(), nil
}

// Decompress a gzip stream.
// Data that is not gzip is returned as is, so that a plain cassette renamed to
// "*.gz" still loads.
func Decompress(data []byte) ([]byte, error) {
	if !IsCompressed(data) {
		return data, nil
	}

	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "gzip reader")
	}
	defer func() { _ = r.Close() }()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "gzip read")
	}

	return out, nil
}
