package imagecodec

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Header is the HIMG v2 mode header of spec.md S6: width, height, channels
// (always 3), thumb_side.
type Header struct {
	Width     uint32
	Height    uint32
	Channels  uint8
	ThumbSide uint16
}

// Marshal serializes the header in the same explicit-field, big-endian
// style as internal/chunk.Container (and ponzu/format/common.go's
// Preamble.WritePreamble).
func (h Header) Marshal() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.BigEndian, h.Width)
	binary.Write(buf, binary.BigEndian, h.Height)
	binary.Write(buf, binary.BigEndian, h.Channels)
	binary.Write(buf, binary.BigEndian, h.ThumbSide)
	return buf.Bytes()
}

// Unmarshal parses a Header from its wire form.
func Unmarshal(p []byte) (Header, error) {
	var h Header
	r := bytes.NewReader(p)
	if err := binary.Read(r, binary.BigEndian, &h.Width); err != nil {
		return h, errors.Wrap(io.ErrUnexpectedEOF, "imagecodec: header width")
	}
	if err := binary.Read(r, binary.BigEndian, &h.Height); err != nil {
		return h, errors.Wrap(io.ErrUnexpectedEOF, "imagecodec: header height")
	}
	if err := binary.Read(r, binary.BigEndian, &h.Channels); err != nil {
		return h, errors.Wrap(io.ErrUnexpectedEOF, "imagecodec: header channels")
	}
	if err := binary.Read(r, binary.BigEndian, &h.ThumbSide); err != nil {
		return h, errors.Wrap(io.ErrUnexpectedEOF, "imagecodec: header thumb_side")
	}
	return h, nil
}
