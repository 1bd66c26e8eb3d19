// Package binarycodec implements the generic-binary pipeline (spec.md
// S4.5, C5): coarse is a raw byte prefix; residual is the permuted
// remainder. There is no perceptual degradation mode for this pipeline —
// missing chunks corrupt the reconstructed bytes at their positions.
package binarycodec

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Header is the HBIN v2 mode header of spec.md S6: total_len, coarse_len.
type Header struct {
	TotalLen  uint64
	CoarseLen uint32
}

// Marshal serializes the header in big-endian field order.
func (h Header) Marshal() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.BigEndian, h.TotalLen)
	binary.Write(buf, binary.BigEndian, h.CoarseLen)
	return buf.Bytes()
}

// Unmarshal parses a Header from its wire form.
func Unmarshal(p []byte) (Header, error) {
	var h Header
	r := bytes.NewReader(p)
	if err := binary.Read(r, binary.BigEndian, &h.TotalLen); err != nil {
		return h, errors.Wrap(io.ErrUnexpectedEOF, "binarycodec: header total_len")
	}
	if err := binary.Read(r, binary.BigEndian, &h.CoarseLen); err != nil {
		return h, errors.Wrap(io.ErrUnexpectedEOF, "binarycodec: header coarse_len")
	}
	return h, nil
}
