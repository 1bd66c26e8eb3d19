// Package manifest writes and reads the descriptive CBOR sidecar that
// accompanies a chunk directory (SPEC_FULL.md S2.6). It is never consulted
// by decode; its absence or corruption never affects reconstruction.
package manifest

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Manifest describes one encode run, for provenance display in
// "holo inspect" — not a dependency of Decode.
type Manifest struct {
	Mode        string    `cbor:"mode"`
	SourceName  string    `cbor:"sourceName"`
	ChunkCount  uint32    `cbor:"chunkCount"`
	ResidualLen uint64    `cbor:"residualLen"`
	TargetKB    int       `cbor:"targetKB,omitempty"`
	EncodedAt   time.Time `cbor:"encodedAt"`
	StackInputs []string  `cbor:"stackInputs,omitempty"`
}

// FileName is the sidecar's fixed name within a chunk directory.
const FileName = "manifest.cbor"

// Write CBOR-encodes m and writes its zstd-compressed form to
// dir/manifest.cbor. The manifest is provenance-only, so the stronger
// compression ratio of zstd over deflate is worth the extra dependency
// where the chunk container format itself (spec.md S4.2) is not.
func Write(dir string, m Manifest) error {
	b, err := cbor.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "manifest: marshal")
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return errors.Wrap(err, "manifest: new zstd writer")
	}
	defer enc.Close()
	compressed := enc.EncodeAll(b, nil)

	return errors.Wrap(os.WriteFile(dir+"/"+FileName, compressed, 0o644), "manifest: write")
}

// Read loads dir/manifest.cbor, zstd-decompresses it, and decodes the
// CBOR payload. Callers that only display provenance (holo inspect)
// should treat any error as "no manifest available" rather than fatal.
func Read(dir string) (Manifest, error) {
	var m Manifest
	compressed, err := os.ReadFile(dir + "/" + FileName)
	if err != nil {
		return m, errors.Wrap(err, "manifest: read")
	}

	dec, err := zstd.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return m, errors.Wrap(err, "manifest: new zstd reader")
	}
	defer dec.Close()
	b, err := io.ReadAll(dec)
	if err != nil {
		return m, errors.Wrap(err, "manifest: zstd decompress")
	}

	if err := cbor.Unmarshal(b, &m); err != nil {
		return m, errors.Wrap(err, "manifest: unmarshal")
	}
	return m, nil
}
