package chunk

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// FileName returns the zero-padded chunk_XXXX.holo filename for block b out
// of blockCount total chunks, per spec.md S6: width = max(4, ceil(log10 B)).
func FileName(b, blockCount uint32) string {
	width := 4
	if blockCount > 0 {
		if w := int(math.Ceil(math.Log10(float64(blockCount)))); w > width {
			width = w
		}
	}
	return fmt.Sprintf("chunk_%0*d.holo", width, b)
}

// ManifestName is the sidecar filename written alongside chunk files
// (SPEC_FULL.md S2.6). Purely descriptive; never read by Decode.
const ManifestName = "manifest.cbor"

// ListChunkFiles returns the sorted paths of every chunk_*.holo file in dir.
func ListChunkFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "chunk: read directory")
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "chunk_") && strings.HasSuffix(name, ".holo") {
			out = append(out, filepath.Join(dir, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

// ReadFile reads and parses one chunk container from path. A file that
// fails to parse (bad magic, bad version, truncated) is reported with the
// matching sentinel so callers can skip it per spec.md S7's local-recovery
// policy.
func ReadFile(path string) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "chunk: open")
	}
	defer f.Close()

	c := &Container{}
	if _, err := c.ReadFrom(f); err != nil {
		return nil, err
	}
	return c, nil
}

// WriteFile serializes c to path, writing to a temp file first and renaming
// into place so a reader never observes a partial chunk.
func WriteFile(path string, c *Container) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(err, "chunk: create")
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "chunk: write")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "chunk: close")
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "chunk: rename into place")
	}
	return nil
}

// DetectDirMode inspects the magic of the first parseable chunk in dir and
// rejects the directory if any other parseable chunk carries a different
// magic, per spec.md S4.6/S7's MixedModes.
func DetectDirMode(dir string) (Mode, error) {
	paths, err := ListChunkFiles(dir)
	if err != nil {
		return 0, err
	}

	var mode Mode
	haveMode := false
	for _, p := range paths {
		c, err := ReadFile(p)
		if err != nil {
			continue
		}
		if !haveMode {
			mode = c.Mode
			haveMode = true
			continue
		}
		if c.Mode != mode {
			return 0, ErrMixedModes
		}
	}
	if !haveMode {
		return 0, ErrNoChunks
	}
	return mode, nil
}
