package blockdec

import "fmt"

// astcBlockSizes is the block_x/block_y lookup table, ordered to match
// DDS/PVR3/KTX/KTX2 container format codes, ported from astc_lkup_tbl
// (ImageDecoder_ASTC.cpp, original_source).
var astcBlockSizes = [14][2]uint8{
	{4, 4}, {5, 4}, {5, 5}, {6, 5},
	{6, 6}, {8, 5}, {8, 6}, {8, 8},
	{10, 5}, {10, 6}, {10, 8}, {10, 10},
	{12, 10}, {12, 12},
}

// ValidASTCBlockSize reports whether (blockX, blockY) is one of the 14
// standard ASTC 2D LDR block footprints.
func ValidASTCBlockSize(blockX, blockY uint8) bool {
	for _, bs := range astcBlockSizes {
		if bs[0] == blockX && bs[1] == blockY {
			return true
		}
	}
	return false
}

// ASTCBlockDecoder decompresses one 16-byte ASTC block into a blockX*blockY
// row-major ARGB32 tile.
//
// ImageDecoder_ASTC.cpp doesn't implement ASTC's bit-packed weight/endpoint
// math itself either: it calls out to Basis Universal's basisu_astc_decomp
// because ASTC's encoding (dozens of partition/weight-grid/quantization
// combinations) is its own substantial codec, not a small per-format
// primitive like DXTn or BC7. This interface is the Go equivalent of that
// call-out boundary — a real ASTC decompressor library is wired in by
// whatever constructs the format-level reader that uses DecodeASTC, and
// this package supplies the tiling/validation logic around it.
type ASTCBlockDecoder interface {
	DecodeBlock(dst []uint32, block []byte, blockX, blockY int, srgb bool) error
}

// DecodeASTC decompresses a single ASTC block via dec and writes it,
// row-major, into dst (len(dst) must be blockX*blockY).
func DecodeASTC(dec ASTCBlockDecoder, dst []uint32, block []byte, blockX, blockY int, srgb bool) error {
	if !ValidASTCBlockSize(uint8(blockX), uint8(blockY)) {
		return fmt.Errorf("blockdec: invalid ASTC block size %dx%d", blockX, blockY)
	}
	if len(block) < 16 {
		return fmt.Errorf("blockdec: ASTC block too short: %d bytes", len(block))
	}
	if len(dst) < blockX*blockY {
		return fmt.Errorf("blockdec: ASTC destination tile too small for %dx%d block", blockX, blockY)
	}
	return dec.DecodeBlock(dst, block[:16], blockX, blockY, srgb)
}
