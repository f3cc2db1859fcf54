package swizzle

// GameCube/Wii texture tile geometry, ported from the tile dimensions each
// fromGcn* function in ImageDecoder_GCN.cpp hard-codes (original_source):
// RGB5A3/RGB565/IA8 use 4x4 tiles, CI8/I8 use 8x4 tiles, and CI4 uses 8x8
// tiles (with the CI4 nibble packed most-significant-nibble-first, unlike
// the NDS/Dreamcast convention).
const (
	GCNTile16Width  = 4
	GCNTile16Height = 4

	GCNTile8Width  = 8
	GCNTile8Height = 4

	GCNTile4Width  = 8
	GCNTile4Height = 8
)
