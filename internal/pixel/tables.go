// Package pixel implements the pixel-conversion primitives: a bank of
// pure functions converting one source pixel to ARGB32.
//
// Grounded on PixelConversion.hpp/.cpp (original_source); expressed here as
// one function per source format plus a Format enum, with Convert8/16/24/32
// choosing the function by a switch on the Format.
package pixel

// a2Lookup expands a 2-bit alpha field into the A channel.
var a2Lookup = [4]uint32{0x00000000, 0x55000000, 0xAA000000, 0xFF000000}

// a3Lookup expands a 3-bit alpha field into the A channel.
var a3Lookup = [8]uint32{
	0x00000000, 0x24000000, 0x49000000, 0x6D000000,
	0x92000000, 0xB6000000, 0xDB000000, 0xFF000000,
}

// c2Lookup expands a 2-bit colour field into a full 8-bit channel.
var c2Lookup = [4]uint8{0x00, 0x55, 0xAA, 0xFF}

// c3Lookup expands a 3-bit colour field into a full 8-bit channel.
var c3Lookup = [8]uint8{0x00, 0x24, 0x49, 0x6D, 0x92, 0xB6, 0xDB, 0xFF}

// expand5to8 expands a 5-bit channel via left-shift + MSB replication.
func expand5to8(x uint32) uint32 { return (x << 3) | (x >> 2) }

// expand6to8 expands a 6-bit channel via left-shift + MSB replication.
func expand6to8(x uint32) uint32 { return (x << 2) | (x >> 4) }

// A2Lookup and A3Lookup are exported read-only views of the 2-bit and 3-bit
// alpha expansion tables.
func A2Lookup(i uint32) uint32 { return a2Lookup[i&3] }
func A3Lookup(i uint32) uint32 { return a3Lookup[i&7] }
