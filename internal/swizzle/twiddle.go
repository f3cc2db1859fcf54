// Package swizzle implements the tile-address mappers: the Dreamcast
// twiddle table, the Nintendo 3DS 8x8 Z-order tile table, GameCube tile
// geometry constants, and the PlayStation 2 SVR un-swizzle transform.
//
// Grounded on ImageDecoder_DC.cpp, ImageDecoder_N3DS.cpp,
// ImageDecoder_GCN.cpp and SegaPVR.cpp (original_source).
package swizzle

import "sync"

// DCTwiddleMapSize is the largest coordinate the Dreamcast twiddle table
// supports (textures up to 4096x4096), matching DC_TMAP_SIZE.
const DCTwiddleMapSize = 4096

var (
	dcTwiddleOnce sync.Once
	dcTwiddleMap  [DCTwiddleMapSize]uint32
)

// initDCTwiddleMap bit-interleaves every index 0..DCTwiddleMapSize-1,
// matching initDreamcastTwiddleMap_int's "spread the bits of i across
// every other bit position" loop exactly.
func initDCTwiddleMap() {
	for i := 0; i < DCTwiddleMapSize; i++ {
		var v uint32
		j := 0
		for k := 1; k <= i; k <<= 1 {
			v |= uint32(i&k) << j
			j++
		}
		dcTwiddleMap[i] = v
	}
}

// DCTwiddle returns the twiddle-mapped value of i, lazily building the
// table on first use (pthread_once in the original; sync.Once here is the
// direct Go equivalent one-shot-guard).
func DCTwiddle(i int) uint32 {
	dcTwiddleOnce.Do(initDCTwiddleMap)
	return dcTwiddleMap[i]
}

// DCTwiddleIndex returns the source pixel index for destination (x, y) in
// a square twiddled image, i.e. (tmap[x]<<1)|tmap[y].
func DCTwiddleIndex(x, y int) int {
	return int((DCTwiddle(x) << 1) | DCTwiddle(y))
}
