package bitstream

import (
	"bytes"
	"testing"
)

func TestScanlineFirstRowAllLiteral(t *testing.T) {
	// rowBytes=4, height=1: diffmask byte is ignored for row 0 (forced 0xFF).
	compr := []byte{0x00, 0x01, 0x02, 0x03, 0x04}
	got, err := Scanline(compr, 4, 1)
	if err != nil {
		t.Fatalf("Scanline failed: %v", err)
	}
	want := []byte{0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScanlineSecondRowCopiesUnchangedBytes(t *testing.T) {
	// row0: literal 1,2,3,4. row1: diffmask 0x00 (all same as previous row).
	compr := []byte{0x00, 1, 2, 3, 4, 0x00}
	got, err := Scanline(compr, 4, 2)
	if err != nil {
		t.Fatalf("Scanline failed: %v", err)
	}
	want := []byte{1, 2, 3, 4, 1, 2, 3, 4}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScanlineTruncatedReturnsError(t *testing.T) {
	if _, err := Scanline([]byte{0x00}, 4, 1); err == nil {
		t.Fatal("expected error for truncated scanline data")
	}
}

func TestRLEBasicRun(t *testing.T) {
	// one row of 4 bytes: run of 4 bytes value 0xAA
	compr := []byte{4, 0xAA}
	got, err := RLE(compr, 4, 1)
	if err != nil {
		t.Fatalf("RLE failed: %v", err)
	}
	want := []byte{0xAA, 0xAA, 0xAA, 0xAA}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRLEZeroCountIsError(t *testing.T) {
	if _, err := RLE([]byte{0, 0xAA}, 4, 1); err == nil {
		t.Fatal("expected error for zero-length RLE run")
	}
}

func TestRLERunCrossingRowBoundaryIsError(t *testing.T) {
	if _, err := RLE([]byte{5, 0xAA}, 4, 1); err == nil {
		t.Fatal("expected error for a run exceeding the scanline width")
	}
}

func TestPackBits8NoOp(t *testing.T) {
	// -128 control byte is skipped, then literal run of 1 byte (n=0 -> 1 byte).
	compr := []byte{0x80, 0x00, 0x42}
	got, err := PackBits8(compr, 1, 1)
	if err != nil {
		t.Fatalf("PackBits8 failed: %v", err)
	}
	if !bytes.Equal(got, []byte{0x42}) {
		t.Errorf("got %v, want [0x42]", got)
	}
}

func TestPackBits8RepeatedByte(t *testing.T) {
	// cbyte=-3 (0xFD) -> repeat next byte 1-(-3)=4 times.
	compr := []byte{0xFD, 0x7F}
	got, err := PackBits8(compr, 4, 1)
	if err != nil {
		t.Fatalf("PackBits8 failed: %v", err)
	}
	want := []byte{0x7F, 0x7F, 0x7F, 0x7F}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPackBits8LiteralRun(t *testing.T) {
	// cbyte=2 -> copy 3 literal bytes.
	compr := []byte{2, 0x10, 0x20, 0x30}
	got, err := PackBits8(compr, 3, 1)
	if err != nil {
		t.Fatalf("PackBits8 failed: %v", err)
	}
	want := []byte{0x10, 0x20, 0x30}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPackBits8TruncatedLiteralIsError(t *testing.T) {
	if _, err := PackBits8([]byte{2, 0x10}, 3, 1); err == nil {
		t.Fatal("expected error for a literal run shorter than declared")
	}
}
