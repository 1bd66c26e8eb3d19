// Package chunk implements the chunk container format (spec.md S4.2): a
// fixed-order binary envelope carrying a coarse payload and one compressed
// residual slice. The container is mode-agnostic; each codec package owns
// the contents of its ModeHeader.
package chunk

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Mode is the closed tagged variant {Image, Audio, Binary} of design note
// S9: the chunk magic is the wire tag, so Mode never needs to be stored
// separately.
type Mode uint8

const (
	ModeImage Mode = iota
	ModeAudio
	ModeBinary
)

// CurrentVersion is the container version this package writes and the
// maximum version it accepts. spec.md S4.2/S6 fix it at 2 for all three
// modes.
const CurrentVersion uint16 = 2

var magicOf = map[Mode][4]byte{
	ModeImage:  {'H', 'I', 'M', 'G'},
	ModeAudio:  {'H', 'A', 'U', 'D'},
	ModeBinary: {'H', 'B', 'I', 'N'},
}

// Magic returns the 4-byte wire tag for mode.
func (m Mode) Magic() [4]byte { return magicOf[m] }

// String implements fmt.Stringer for diagnostics (holo inspect, errors).
func (m Mode) String() string {
	switch m {
	case ModeImage:
		return "image"
	case ModeAudio:
		return "audio"
	case ModeBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// ParseMagic maps a 4-byte wire tag back to a Mode.
func ParseMagic(magic [4]byte) (Mode, error) {
	for m, mg := range magicOf {
		if mg == magic {
			return m, nil
		}
	}
	return 0, errors.Wrapf(ErrBadMagic, "magic %q", magic[:])
}

// Error kinds from spec.md S7, backed by concrete sentinels per
// SPEC_FULL.md S7.
var (
	ErrBadMagic           = errors.New("chunk: unrecognized magic")
	ErrBadVersion         = errors.New("chunk: unsupported version")
	ErrTruncated          = errors.New("chunk: truncated container")
	ErrInconsistentChunk  = errors.New("chunk: header disagrees with established chunk set")
	ErrMixedModes         = errors.New("chunk: directory mixes chunk magics")
	ErrNoChunks           = errors.New("chunk: no usable chunk in directory")
	ErrDeflateError       = errors.New("chunk: deflate/inflate failed")
	ErrUnsupportedInput   = errors.New("chunk: unsupported input for encode")
)

// Container is one fully-decoded chunk, independent of mode.
type Container struct {
	Mode       Mode
	Version    uint16
	ModeHeader []byte // mode-specific header bytes, opaque to this package
	Coarse     []byte // coarse payload bytes
	Slice      []byte // deflated residual slice bytes for this chunk
	BlockIndex uint32 // b
	BlockCount uint32 // B
	NTotal     uint64 // N
}

// WriteTo serializes the container in the exact wire order of spec.md
// S4.2.
func (c *Container) WriteTo(w io.Writer) (int64, error) {
	var written int64

	magic := c.Mode.Magic()
	if n, err := writeAll(w, magic[:]); err != nil {
		return written + n, errors.Wrap(err, "chunk: write magic")
	} else {
		written += n
	}

	if n, err := writeUint(w, c.Version); err != nil {
		return written + n, errors.Wrap(err, "chunk: write version")
	} else {
		written += n
	}

	if n, err := writeUint(w, uint32(len(c.ModeHeader))); err != nil {
		return written + n, errors.Wrap(err, "chunk: write header_len")
	} else {
		written += n
	}
	if n, err := writeAll(w, c.ModeHeader); err != nil {
		return written + n, errors.Wrap(err, "chunk: write mode_header")
	} else {
		written += n
	}

	if n, err := writeUint(w, uint32(len(c.Coarse))); err != nil {
		return written + n, errors.Wrap(err, "chunk: write coarse_len")
	} else {
		written += n
	}
	if n, err := writeAll(w, c.Coarse); err != nil {
		return written + n, errors.Wrap(err, "chunk: write coarse")
	} else {
		written += n
	}

	if n, err := writeUint(w, uint32(len(c.Slice))); err != nil {
		return written + n, errors.Wrap(err, "chunk: write slice_len")
	} else {
		written += n
	}
	if n, err := writeAll(w, c.Slice); err != nil {
		return written + n, errors.Wrap(err, "chunk: write slice")
	} else {
		written += n
	}

	if n, err := writeUint(w, c.BlockIndex); err != nil {
		return written + n, errors.Wrap(err, "chunk: write block_index")
	} else {
		written += n
	}
	if n, err := writeUint(w, c.BlockCount); err != nil {
		return written + n, errors.Wrap(err, "chunk: write block_count")
	} else {
		written += n
	}
	if n, err := writeUint(w, c.NTotal); err != nil {
		return written + n, errors.Wrap(err, "chunk: write n_total")
	} else {
		written += n
	}

	return written, nil
}

// ReadFrom parses the container from r, rejecting unknown magic/version and
// truncated input per spec.md S7's BadMagic/BadVersion/Truncated kinds.
func (c *Container) ReadFrom(r io.Reader) (int64, error) {
	var read int64

	var magic [4]byte
	if n, err := io.ReadFull(r, magic[:]); err != nil {
		return read + int64(n), truncatedOr(err, ErrBadMagic)
	} else {
		read += int64(n)
	}
	mode, err := ParseMagic(magic)
	if err != nil {
		return read, err
	}
	c.Mode = mode

	if n, err := readUint(r, &c.Version); err != nil {
		return read + n, truncatedOr(err, ErrTruncated)
	} else {
		read += n
	}
	if c.Version > CurrentVersion {
		return read, errors.Wrapf(ErrBadVersion, "version %d", c.Version)
	}

	var headerLen uint32
	if n, err := readUint(r, &headerLen); err != nil {
		return read + n, truncatedOr(err, ErrTruncated)
	} else {
		read += n
	}
	c.ModeHeader = make([]byte, headerLen)
	if n, err := io.ReadFull(r, c.ModeHeader); err != nil {
		return read + int64(n), truncatedOr(err, ErrTruncated)
	} else {
		read += int64(n)
	}

	var coarseLen uint32
	if n, err := readUint(r, &coarseLen); err != nil {
		return read + n, truncatedOr(err, ErrTruncated)
	} else {
		read += n
	}
	c.Coarse = make([]byte, coarseLen)
	if n, err := io.ReadFull(r, c.Coarse); err != nil {
		return read + int64(n), truncatedOr(err, ErrTruncated)
	} else {
		read += int64(n)
	}

	var sliceLen uint32
	if n, err := readUint(r, &sliceLen); err != nil {
		return read + n, truncatedOr(err, ErrTruncated)
	} else {
		read += n
	}
	c.Slice = make([]byte, sliceLen)
	if n, err := io.ReadFull(r, c.Slice); err != nil {
		return read + int64(n), truncatedOr(err, ErrTruncated)
	} else {
		read += int64(n)
	}

	if n, err := readUint(r, &c.BlockIndex); err != nil {
		return read + n, truncatedOr(err, ErrTruncated)
	} else {
		read += n
	}
	if n, err := readUint(r, &c.BlockCount); err != nil {
		return read + n, truncatedOr(err, ErrTruncated)
	} else {
		read += n
	}
	if n, err := readUint(r, &c.NTotal); err != nil {
		return read + n, truncatedOr(err, ErrTruncated)
	} else {
		read += n
	}

	return read, nil
}

func truncatedOr(err error, fallback error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrap(fallback, err.Error())
	}
	return errors.Wrap(err, "chunk: read failed")
}

func writeAll(w io.Writer, p []byte) (int64, error) {
	n, err := w.Write(p)
	return int64(n), err
}

func writeUint(w io.Writer, v any) (int64, error) {
	if err := binary.Write(w, binary.BigEndian, v); err != nil {
		return 0, err
	}
	return int64(sizeOf(v)), nil
}

func readUint(r io.Reader, v any) (int64, error) {
	if err := binary.Read(r, binary.BigEndian, v); err != nil {
		return 0, err
	}
	return int64(sizeOf(v)), nil
}

func sizeOf(v any) int {
	switch v.(type) {
	case uint16, *uint16:
		return 2
	case uint32, *uint32:
		return 4
	case uint64, *uint64:
		return 8
	default:
		return 0
	}
}
