package chunk_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/holocodec/holo/internal/chunk"
)

func TestContainer_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		c    chunk.Container
	}{
		{
			name: "image chunk",
			c: chunk.Container{
				Mode:       chunk.ModeImage,
				Version:    chunk.CurrentVersion,
				ModeHeader: []byte{0, 1, 2, 3},
				Coarse:     bytes.Repeat([]byte{0xAB}, 37),
				Slice:      bytes.Repeat([]byte{0xCD}, 13),
				BlockIndex: 3,
				BlockCount: 16,
				NTotal:     12345,
			},
		},
		{
			name: "empty sections",
			c: chunk.Container{
				Mode:       chunk.ModeBinary,
				Version:    chunk.CurrentVersion,
				ModeHeader: nil,
				Coarse:     nil,
				Slice:      nil,
				BlockIndex: 0,
				BlockCount: 1,
				NTotal:     0,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			if _, err := tc.c.WriteTo(buf); err != nil {
				t.Fatalf("WriteTo: %v", err)
			}

			got := &chunk.Container{}
			if _, err := got.ReadFrom(buf); err != nil {
				t.Fatalf("ReadFrom: %v", err)
			}

			if got.Mode != tc.c.Mode || got.Version != tc.c.Version ||
				got.BlockIndex != tc.c.BlockIndex || got.BlockCount != tc.c.BlockCount ||
				got.NTotal != tc.c.NTotal ||
				!bytes.Equal(got.ModeHeader, tc.c.ModeHeader) ||
				!bytes.Equal(got.Coarse, tc.c.Coarse) ||
				!bytes.Equal(got.Slice, tc.c.Slice) {
				t.Errorf("round trip mismatch:\nwant %s\ngot  %s", spew.Sdump(tc.c), spew.Sdump(got))
			}
		})
	}
}

func TestContainer_ReadFrom_BadMagic(t *testing.T) {
	buf := bytes.NewBufferString("XXXX")
	c := &chunk.Container{}
	if _, err := c.ReadFrom(buf); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestContainer_ReadFrom_BadVersion(t *testing.T) {
	c := chunk.Container{Mode: chunk.ModeImage, Version: chunk.CurrentVersion + 1}
	buf := new(bytes.Buffer)
	if _, err := c.WriteTo(buf); err != nil {
		t.Fatal(err)
	}
	got := &chunk.Container{}
	if _, err := got.ReadFrom(buf); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestContainer_ReadFrom_Truncated(t *testing.T) {
	c := chunk.Container{
		Mode:    chunk.ModeAudio,
		Version: chunk.CurrentVersion,
		Coarse:  bytes.Repeat([]byte{1}, 100),
	}
	buf := new(bytes.Buffer)
	if _, err := c.WriteTo(buf); err != nil {
		t.Fatal(err)
	}

	truncated := bytes.NewBuffer(buf.Bytes()[:buf.Len()-50])
	got := &chunk.Container{}
	if _, err := got.ReadFrom(truncated); err == nil {
		t.Fatal("expected error for truncated container")
	}
}

func TestFileName_Width(t *testing.T) {
	testCases := []struct {
		b, blockCount uint32
		want          string
	}{
		{0, 1, "chunk_0000.holo"},
		{5, 16, "chunk_0005.holo"},
		{5, 100000, "chunk_000005.holo"},
	}
	for _, tc := range testCases {
		if got := chunk.FileName(tc.b, tc.blockCount); got != tc.want {
			t.Errorf("FileName(%d, %d) = %q, want %q", tc.b, tc.blockCount, got, tc.want)
		}
	}
}

func TestDetectDirMode_MixedModes(t *testing.T) {
	dir := t.TempDir()

	img := chunk.Container{Mode: chunk.ModeImage, Version: chunk.CurrentVersion, BlockCount: 2}
	aud := chunk.Container{Mode: chunk.ModeAudio, Version: chunk.CurrentVersion, BlockCount: 2}

	if err := chunk.WriteFile(filepath.Join(dir, chunk.FileName(0, 2)), &img); err != nil {
		t.Fatal(err)
	}
	if err := chunk.WriteFile(filepath.Join(dir, chunk.FileName(1, 2)), &aud); err != nil {
		t.Fatal(err)
	}

	if _, err := chunk.DetectDirMode(dir); err != chunk.ErrMixedModes {
		t.Fatalf("expected ErrMixedModes, got %v", err)
	}
}

func TestDetectDirMode_NoChunks(t *testing.T) {
	dir := t.TempDir()
	if _, err := chunk.DetectDirMode(dir); err != chunk.ErrNoChunks {
		t.Fatalf("expected ErrNoChunks, got %v", err)
	}
}

func TestWriteFile_ReadFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chunk_0000.holo")

	want := chunk.Container{
		Mode:       chunk.ModeBinary,
		Version:    chunk.CurrentVersion,
		ModeHeader: []byte{9, 9},
		Coarse:     []byte("coarse"),
		Slice:      []byte("slice"),
		BlockIndex: 0,
		BlockCount: 4,
		NTotal:     999,
	}
	if err := chunk.WriteFile(path, &want); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file should not survive a successful write")
	}

	got, err := chunk.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.NTotal != want.NTotal || !bytes.Equal(got.Slice, want.Slice) {
		t.Errorf("round trip mismatch: got %+v", got)
	}
}
