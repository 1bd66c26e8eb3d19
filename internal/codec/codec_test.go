package codec_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"testing"

	"github.com/holocodec/holo/internal/chunk"
	"github.com/holocodec/holo/internal/codec"
)

func TestDetectFromExtension(t *testing.T) {
	cases := map[string]chunk.Mode{
		"photo.png":  chunk.ModeImage,
		"PHOTO.JPG":  chunk.ModeImage,
		"track.wav":  chunk.ModeAudio,
		"archive.7z": chunk.ModeBinary,
		"noext":      chunk.ModeBinary,
	}
	for name, want := range cases {
		if got := codec.DetectFromExtension(name); got != want {
			t.Errorf("DetectFromExtension(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestEncodeDecode_ImageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	srcPath := dir + "/in.png"

	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 50, A: 255})
		}
	}
	f, err := os.Create(srcPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	outDir := dir + "/in.png.holo"
	mode, err := codec.Encode(codec.EncodeParams{SourcePath: srcPath, OutDir: outDir, TargetKB: 1})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if mode != chunk.ModeImage {
		t.Fatalf("expected ModeImage, got %v", mode)
	}

	destPath := dir + "/out.png"
	gotMode, err := codec.Decode(outDir, destPath)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if gotMode != chunk.ModeImage {
		t.Fatalf("expected ModeImage on decode, got %v", gotMode)
	}

	raw, err := os.ReadFile(destPath)
	if err != nil || len(raw) == 0 {
		t.Fatalf("expected non-empty decoded file, err=%v", err)
	}
	if !bytes.HasPrefix(raw, []byte("\x89PNG")) {
		t.Fatal("decoded output is not a PNG")
	}
}

func TestEncodeDecode_JPEGRoundTripPreservesFormat(t *testing.T) {
	dir := t.TempDir()
	srcPath := dir + "/in.jpg"

	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 50, A: 255})
		}
	}
	f, err := os.Create(srcPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := jpeg.Encode(f, img, nil); err != nil {
		t.Fatal(err)
	}
	f.Close()

	outDir := dir + "/in.jpg.holo"
	if _, err := codec.Encode(codec.EncodeParams{SourcePath: srcPath, OutDir: outDir, TargetKB: 1}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	destPath := dir + "/out.jpg"
	if _, err := codec.Decode(outDir, destPath); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	raw, err := os.ReadFile(destPath)
	if err != nil || len(raw) == 0 {
		t.Fatalf("expected non-empty decoded file, err=%v", err)
	}
	if !bytes.HasPrefix(raw, []byte{0xFF, 0xD8}) {
		t.Fatal("decoded .jpg output is not JPEG-encoded")
	}
}

func TestEncodeDecode_BinaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	srcPath := dir + "/in.bin"
	if err := os.WriteFile(srcPath, []byte("some arbitrary binary payload, not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	outDir := dir + "/in.bin.holo"
	if _, err := codec.Encode(codec.EncodeParams{SourcePath: srcPath, OutDir: outDir}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	destPath := dir + "/out.bin"
	if _, err := codec.Decode(outDir, destPath); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	got, err := os.ReadFile(destPath)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := os.ReadFile(srcPath)
	if !bytes.Equal(got, want) {
		t.Fatalf("round trip mismatch: got %q want %q", got, want)
	}
}
