// Package audiocodec implements the audio pipeline (spec.md S4.4, C4):
// coarse is a downsampled, linearly-interpolated int16 PCM track; residual
// is the int16 difference against the upsampled coarse track.
package audiocodec

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Header is the HAUD v2 mode header of spec.md S6: frames, channels,
// sample_rate, coarse_frames.
type Header struct {
	Frames       uint32
	Channels     uint16
	SampleRate   uint32
	CoarseFrames uint32
}

// Marshal serializes the header in big-endian field order.
func (h Header) Marshal() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.BigEndian, h.Frames)
	binary.Write(buf, binary.BigEndian, h.Channels)
	binary.Write(buf, binary.BigEndian, h.SampleRate)
	binary.Write(buf, binary.BigEndian, h.CoarseFrames)
	return buf.Bytes()
}

// Unmarshal parses a Header from its wire form.
func Unmarshal(p []byte) (Header, error) {
	var h Header
	r := bytes.NewReader(p)
	if err := binary.Read(r, binary.BigEndian, &h.Frames); err != nil {
		return h, errors.Wrap(io.ErrUnexpectedEOF, "audiocodec: header frames")
	}
	if err := binary.Read(r, binary.BigEndian, &h.Channels); err != nil {
		return h, errors.Wrap(io.ErrUnexpectedEOF, "audiocodec: header channels")
	}
	if err := binary.Read(r, binary.BigEndian, &h.SampleRate); err != nil {
		return h, errors.Wrap(io.ErrUnexpectedEOF, "audiocodec: header sample_rate")
	}
	if err := binary.Read(r, binary.BigEndian, &h.CoarseFrames); err != nil {
		return h, errors.Wrap(io.ErrUnexpectedEOF, "audiocodec: header coarse_frames")
	}
	return h, nil
}
