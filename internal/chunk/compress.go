package chunk

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// Deflate compresses p with klauspost/compress's zlib implementation — a
// drop-in, faster replacement for compress/zlib that the teacher already
// depends on (github.com/indrora/ponzu uses the same module for its own
// archive compression). spec.md S4.2/S9 only requires "any compliant
// deflate at any level"; level 9 matches original_source/holo.py's
// zlib.compress(..., level=9).
func Deflate(p []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	w, err := zlib.NewWriterLevel(buf, zlib.BestCompression)
	if err != nil {
		return nil, errors.Wrap(err, "chunk: new deflate writer")
	}
	if _, err := w.Write(p); err != nil {
		w.Close()
		return nil, errors.Wrap(ErrDeflateError, err.Error())
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(ErrDeflateError, err.Error())
	}
	return buf.Bytes(), nil
}

// Inflate decompresses p, reporting ErrDeflateError on any failure so
// callers can skip just this chunk per spec.md S7.
func Inflate(p []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(p))
	if err != nil {
		return nil, errors.Wrap(ErrDeflateError, err.Error())
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(ErrDeflateError, err.Error())
	}
	return out, nil
}
