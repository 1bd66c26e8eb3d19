package manifest_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/holocodec/holo/internal/manifest"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := manifest.Manifest{
		Mode:        "image",
		SourceName:  "photo.png",
		ChunkCount:  32,
		ResidualLen: 196608,
		TargetKB:    32,
		EncodedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	if err := manifest.Write(dir, want); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := manifest.Read(dir)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !got.EncodedAt.Equal(want.EncodedAt) {
		t.Fatalf("round trip mismatch:\n%s", spew.Sdump(got, want))
	}
	got.EncodedAt, want.EncodedAt = time.Time{}, time.Time{}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n%s", spew.Sdump(got, want))
	}
}

func TestRead_MissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := manifest.Read(dir); err == nil {
		t.Fatal("expected error reading manifest from empty directory")
	}
}
