package swizzle

// N3DSTileOrder is the 8x8 three-level Z-order curve Nintendo 3DS SMDH/3DSX
// icon tiles are stored in, ported verbatim from N3DS_tile_order
// (ImageDecoder_N3DS.cpp, original_source).
var N3DSTileOrder = [64]uint8{
	0, 1, 8, 9, 2, 3, 10, 11, 16, 17, 24, 25, 18, 19, 26, 27,
	4, 5, 12, 13, 6, 7, 14, 15, 20, 21, 28, 29, 22, 23, 30, 31,
	32, 33, 40, 41, 34, 35, 42, 43, 48, 49, 56, 57, 50, 51, 58, 59,
	36, 37, 44, 45, 38, 39, 46, 47, 52, 53, 60, 61, 54, 55, 62, 63,
}
