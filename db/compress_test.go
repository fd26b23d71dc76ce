package db

import (
	"bytes"
	"testing"
)

func TestCompressRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 50)

	for _, mode := range []CompressMode{CompressNone, CompressLZ4, CompressXZ} {
		enc, err := compressPayload(mode, data)
		if err != nil {
			t.Fatalf("mode %d: compress: %v", mode, err)
		}
		dec, err := decompressPayload(mode, enc)
		if err != nil {
			t.Fatalf("mode %d: decompress: %v", mode, err)
		}
		if !bytes.Equal(dec, data) {
			t.Fatalf("mode %d: round trip mismatch", mode)
		}
	}
}

func TestCompressIncompressibleFallsBackToRaw(t *testing.T) {
	data := []byte("x")
	enc, err := compressPayload(CompressLZ4, data)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if enc[0] != 0 {
		t.Fatalf("expected raw fallback flag for tiny incompressible input, got flag %d", enc[0])
	}
	dec, err := decompressPayload(CompressLZ4, enc)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(dec, data) {
		t.Fatalf("round trip mismatch")
	}
}
