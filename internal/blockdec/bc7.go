package blockdec

import "encoding/binary"

// BC7 mode tables, ported verbatim from ImageDecoder_BC7.cpp (original_source).
var (
	bc7Weight2 = [4]uint8{0, 21, 43, 64}
	bc7Weight3 = [8]uint8{0, 9, 18, 27, 37, 46, 55, 64}
	bc7Weight4 = [16]uint8{0, 4, 9, 13, 17, 21, 26, 30, 34, 38, 43, 47, 51, 55, 60, 64}

	bc7_2sub = [64]uint32{
		0x50505050, 0x40404040, 0x54545454, 0x54505040,
		0x50404000, 0x55545450, 0x55545040, 0x54504000,
		0x50400000, 0x55555450, 0x55544000, 0x54400000,
		0x55555440, 0x55550000, 0x55555500, 0x55000000,
		0x55150100, 0x00004054, 0x15010000, 0x00405054,
		0x00004050, 0x15050100, 0x05010000, 0x40505054,
		0x00404050, 0x05010100, 0x14141414, 0x05141450,
		0x01155440, 0x00555500, 0x15014054, 0x05414150,
		0x44444444, 0x55005500, 0x11441144, 0x05055050,
		0x05500550, 0x11114444, 0x41144114, 0x44111144,
		0x15055054, 0x01055040, 0x05041050, 0x05455150,
		0x14414114, 0x50050550, 0x41411414, 0x00141400,
		0x00041504, 0x00105410, 0x10541000, 0x04150400,
		0x50410514, 0x41051450, 0x05415014, 0x14054150,
		0x41050514, 0x41505014, 0x40011554, 0x54150140,
		0x50505500, 0x00555050, 0x15151010, 0x54540404,
	}

	bc7_3sub = [64]uint32{
		0xAA685050, 0x6A5A5040, 0x5A5A4200, 0x5450A0A8,
		0xA5A50000, 0xA0A05050, 0x5555A0A0, 0x5A5A5050,
		0xAA550000, 0xAA555500, 0xAAAA5500, 0x90909090,
		0x94949494, 0xA4A4A4A4, 0xA9A59450, 0x2A0A4250,
		0xA5945040, 0x0A425054, 0xA5A5A500, 0x55A0A0A0,
		0xA8A85454, 0x6A6A4040, 0xA4A45000, 0x1A1A0500,
		0x0050A4A4, 0xAAA59090, 0x14696914, 0x69691400,
		0xA08585A0, 0xAA821414, 0x50A4A450, 0x6A5A0200,
		0xA9A58000, 0x5090A0A8, 0xA8A09050, 0x24242424,
		0x00AA5500, 0x24924924, 0x24499224, 0x50A50A50,
		0x500AA550, 0xAAAA4444, 0x66660000, 0xA5A0A5A0,
		0x50A050A0, 0x69286928, 0x44AAAA44, 0x66666600,
		0xAA444444, 0x54A854A8, 0x95809580, 0x96969600,
		0xA85454A8, 0x80959580, 0xAA141414, 0x96960000,
		0xAAAA1414, 0xA05050A0, 0xA0A5A5A0, 0x96000000,
		0x40804080, 0xA9A8A9A8, 0xAAAAAA44, 0x2A4A5254,
	}

	anchorIndexesSubset2of2 = [64]uint8{
		15, 15, 15, 15, 15, 15, 15, 15,
		15, 15, 15, 15, 15, 15, 15, 15,
		15, 2, 8, 2, 2, 8, 8, 15,
		2, 8, 2, 2, 8, 8, 2, 2,
		15, 15, 6, 8, 2, 8, 15, 15,
		2, 8, 2, 2, 2, 15, 15, 6,
		6, 2, 6, 8, 15, 15, 2, 2,
		15, 15, 15, 15, 15, 2, 2, 15,
	}

	anchorIndexesSubset2of3 = [64]uint8{
		3, 3, 15, 15, 8, 3, 15, 15,
		8, 8, 6, 6, 6, 5, 3, 3,
		3, 3, 8, 15, 3, 3, 6, 10,
		5, 8, 8, 6, 8, 5, 15, 15,
		8, 15, 3, 5, 6, 10, 8, 15,
		15, 3, 15, 5, 15, 15, 15, 15,
		3, 15, 5, 5, 5, 8, 5, 10,
		5, 10, 8, 13, 15, 12, 3, 3,
	}

	anchorIndexesSubset3of3 = [64]uint8{
		15, 8, 8, 3, 15, 15, 3, 8,
		15, 15, 15, 15, 15, 15, 15, 8,
		15, 8, 15, 3, 15, 8, 15, 8,
		3, 15, 6, 10, 15, 15, 10, 8,
		15, 3, 15, 10, 10, 8, 9, 10,
		6, 15, 8, 15, 3, 6, 6, 8,
		15, 3, 15, 15, 15, 15, 15, 15,
		15, 15, 15, 15, 3, 15, 15, 8,
	}

	bc7SubsetCount   = [8]uint8{3, 2, 3, 2, 1, 1, 1, 2}
	bc7PartitionBits = [8]uint8{4, 6, 6, 6, 0, 0, 0, 6}
	bc7EndpointCount = [8]uint8{6, 4, 6, 4, 2, 2, 2, 4}
	bc7EndpointBits  = [8]uint8{4, 6, 5, 7, 5, 7, 7, 5}
	bc7AlphaBits     = [8]uint8{0, 0, 0, 0, 6, 8, 7, 5}
	bc7PBitCount     = [8]uint8{1, 1, 0, 1, 0, 0, 1, 1}
	bc7IndexBits     = [8]uint8{3, 3, 2, 2, 0, 2, 4, 2}
)

// interpolateComponent reproduces interpolate_component's weighted blend
// between two 8-bit endpoint values, with exact passthrough at the index
// extremes.
func interpolateComponent(bits, index uint, e0, e1 uint8) uint8 {
	if index == 0 {
		return e0
	}
	if index == (1<<bits)-1 {
		return e1
	}
	var weight uint8
	switch bits {
	case 2:
		weight = bc7Weight2[index]
	case 3:
		weight = bc7Weight3[index]
	case 4:
		weight = bc7Weight4[index]
	default:
		return 0
	}
	return uint8((uint32(64-weight)*uint32(e0) + uint32(weight)*uint32(e1) + 32) >> 6)
}

func bc7AnchorIndex(partition, subset, subsetCount uint8) uint8 {
	if subset == 0 {
		return 0
	}
	switch subsetCount {
	case 2:
		return anchorIndexesSubset2of2[partition]
	case 3:
		if subset == 1 {
			return anchorIndexesSubset2of3[partition]
		}
		return anchorIndexesSubset3of3[partition]
	default:
		return 0
	}
}

// bc7Block holds a 128-bit BC7 block as two 64-bit halves and supports the
// same "shift the virtual 128-bit value right" operation decodeBC7Block
// relies on to walk through its variable-width bitfields.
type bc7Block struct {
	lsb, msb uint64
}

func (b *bc7Block) rshift128(shamt uint) {
	if shamt == 0 {
		return
	}
	b.lsb >>= shamt
	b.lsb |= b.msb << (64 - shamt)
	b.msb >>= shamt
}

func bc7Mode(dword0 uint32) int {
	if dword0 == 0 {
		return -1
	}
	for i := 0; i < 32; i++ {
		if dword0&(1<<uint(i)) != 0 {
			return i
		}
	}
	return -1
}

// DecodeBC7 decodes one 16-byte BC7 block, following decodeBC7Block's mode
// dispatch: mode comes from the position of the block's lowest set bit,
// then every subsequent field (rotation, partition, endpoints, alpha,
// P-bits, indexes) is pulled off the front of the remaining bitstream at a
// per-mode width.
func DecodeBC7(src []byte) (Tile, bool) {
	block := bc7Block{
		lsb: binary.LittleEndian.Uint64(src[0:8]),
		msb: binary.LittleEndian.Uint64(src[8:16]),
	}

	mode := bc7Mode(uint32(block.lsb))
	if mode < 0 || mode >= 8 {
		return Tile{}, false
	}
	block.rshift128(uint(mode) + 1)

	var rotationMode uint8
	if mode == 4 || mode == 5 {
		rotationMode = uint8(block.lsb & 3)
		block.rshift128(2)
	}

	var idxModeM4 uint8
	if mode == 4 {
		idxModeM4 = uint8(block.lsb & 1)
		block.rshift128(1)
	}

	var subset uint32
	var partition uint8
	if bc7PartitionBits[mode] != 0 {
		partition = uint8(block.lsb & ((1 << bc7PartitionBits[mode]) - 1))
		block.rshift128(uint(bc7PartitionBits[mode]))
		switch bc7SubsetCount[mode] {
		case 2:
			subset = bc7_2sub[partition]
		case 3:
			subset = bc7_3sub[partition]
		default:
			subset = 0
		}
	}

	endpointBits := bc7EndpointBits[mode]
	endpointCount := bc7EndpointCount[mode]
	endpointMask := uint8((1 << endpointBits) - 1)
	endpointShamt := 8 - endpointBits

	var endpoints [8][4]uint8
	componentCount := int(endpointCount) * 3
	epIdx, compIdx := uint8(0), uint8(0)
	for i := 0; i < componentCount; i++ {
		endpoints[epIdx][compIdx] = uint8(block.lsb&uint64(endpointMask)) << endpointShamt
		epIdx++
		if epIdx == endpointCount {
			compIdx++
			epIdx = 0
		}
		block.rshift128(uint(endpointBits))
	}

	alphaBits := bc7AlphaBits[mode]
	var alpha [4]uint8
	if alphaBits != 0 {
		alphaMask := uint8((1 << alphaBits) - 1)
		alphaShamt := 8 - alphaBits
		for i := uint8(0); i < endpointCount; i++ {
			alpha[i] = uint8(block.lsb&uint64(alphaMask)) << alphaShamt
			block.rshift128(uint(alphaBits))
		}
	} else {
		alpha = [4]uint8{255, 255, 255, 255}
	}

	if bc7PBitCount[mode] != 0 {
		lsb8 := uint8(block.lsb & 0xFF)
		if mode == 1 {
			if block.lsb&1 != 0 {
				endpoints[0][0] |= 2
				endpoints[0][1] |= 2
				endpoints[0][2] |= 2
				endpoints[0][3] |= 2
				endpoints[1][0] |= 2
				endpoints[1][1] |= 2
				endpoints[1][2] |= 2
				endpoints[1][3] |= 2
			}
			if block.lsb&2 != 0 {
				endpoints[2][0] |= 2
				endpoints[2][1] |= 2
				endpoints[2][2] |= 2
				endpoints[2][3] |= 2
				endpoints[3][0] |= 2
				endpoints[3][1] |= 2
				endpoints[3][2] |= 2
				endpoints[3][3] |= 2
			}
			block.rshift128(2)
		} else {
			pEpShamt := 7 - endpointBits
			l := lsb8
			for i := uint8(0); i < endpointCount; i++ {
				if l&1 != 0 {
					bit := uint8(1) << pEpShamt
					endpoints[i][0] |= bit
					endpoints[i][1] |= bit
					endpoints[i][2] |= bit
					endpoints[i][3] |= bit
				}
				l >>= 1
			}
			if alphaBits > 0 {
				pAShamt := 7 - alphaBits
				l = uint8(block.lsb & 0xFF)
				for i := uint8(0); i < endpointCount; i++ {
					alpha[i] |= (l & 1) << pAShamt
					l >>= 1
				}
				alphaBits++
			}
			block.rshift128(uint(endpointCount))
		}
		endpointBits++
	}

	if endpointBits < 8 {
		for i := uint8(0); i < endpointCount; i++ {
			endpoints[i][0] |= endpoints[i][0] >> endpointBits
			endpoints[i][1] |= endpoints[i][1] >> endpointBits
			endpoints[i][2] |= endpoints[i][2] >> endpointBits
		}
	}
	if alphaBits != 0 && alphaBits < 8 {
		for i := uint8(0); i < endpointCount; i++ {
			alpha[i] |= alpha[i] >> alphaBits
		}
	}

	indexBits := uint(bc7IndexBits[mode])

	var idxData uint64
	var indexMask uint8
	if mode == 4 {
		if idxModeM4 != 0 {
			idxData = (block.msb << 33) | (block.lsb >> 31)
			indexBits = 3
			indexMask = (1 << 3) - 1
		} else {
			idxData = block.lsb & ((1 << 31) - 1)
			indexBits = 2
			indexMask = (1 << 2) - 1
		}
	} else {
		idxData = block.lsb
		indexMask = uint8((1 << indexBits) - 1)
	}

	subsetCount := bc7SubsetCount[mode]
	var anchorIndex [4]uint8
	for i := uint8(1); i < subsetCount; i++ {
		anchorIndex[i] = bc7AnchorIndex(partition, i, subsetCount)
	}

	var tile Tile
	var pixR, pixG, pixB, pixA [16]uint8

	subsetData := subset
	for i := 0; i < 16; i++ {
		subsetIdx := uint8(subsetData & 3)
		subsetData >>= 2

		var dataIdx uint8
		if uint8(i) == anchorIndex[subsetIdx] {
			dataIdx = uint8(idxData) & (indexMask >> 1)
			idxData >>= indexBits - 1
		} else {
			dataIdx = uint8(idxData) & indexMask
			idxData >>= indexBits
		}

		epIdx := subsetIdx * 2
		pixR[i] = interpolateComponent(indexBits, uint(dataIdx), endpoints[epIdx][0], endpoints[epIdx+1][0])
		pixG[i] = interpolateComponent(indexBits, uint(dataIdx), endpoints[epIdx][1], endpoints[epIdx+1][1])
		pixB[i] = interpolateComponent(indexBits, uint(dataIdx), endpoints[epIdx][2], endpoints[epIdx+1][2])
	}

	switch {
	case mode == 4:
		var aIdxData uint64
		var aIndexBits uint
		var aIndexMask uint8
		if idxModeM4 != 0 {
			aIdxData = block.lsb & ((1 << 31) - 1)
			aIndexBits = 2
			aIndexMask = (1 << 2) - 1
		} else {
			aIdxData = (block.msb << 33) | (block.lsb >> 31)
			aIndexBits = 3
			aIndexMask = (1 << 3) - 1
		}
		subsetData = subset
		for i := 0; i < 16; i++ {
			subsetIdx := uint8(subsetData & 3)
			subsetData >>= 2
			var dataIdx uint8
			if uint8(i) == anchorIndex[subsetIdx] {
				dataIdx = uint8(aIdxData) & (aIndexMask >> 1)
				aIdxData >>= aIndexBits - 1
			} else {
				dataIdx = uint8(aIdxData) & aIndexMask
				aIdxData >>= aIndexBits
			}
			pixA[i] = interpolateComponent(aIndexBits, uint(dataIdx), alpha[0], alpha[1])
		}
	case alphaBits == 0:
		for i := range pixA {
			pixA[i] = 255
		}
	default:
		if mode == 5 {
			idxData = block.lsb >> 31
		} else {
			idxData = block.lsb
		}
		subsetData = subset
		for i := 0; i < 16; i++ {
			subsetIdx := uint8(subsetData & 3)
			subsetData >>= 2
			var dataIdx uint8
			if uint8(i) == anchorIndex[subsetIdx] {
				dataIdx = uint8(idxData) & (indexMask >> 1)
				idxData >>= indexBits - 1
			} else {
				dataIdx = uint8(idxData) & indexMask
				idxData >>= indexBits
			}
			epIdx := subsetIdx * 2
			pixA[i] = interpolateComponent(indexBits, uint(dataIdx), alpha[epIdx], alpha[epIdx+1])
		}
	}

	for i := 0; i < 16; i++ {
		c := argb{a: pixA[i], r: pixR[i], g: pixG[i], b: pixB[i]}
		switch rotationMode & 3 {
		case 1:
			c.a, c.r = c.r, c.a
		case 2:
			c.a, c.g = c.g, c.a
		case 3:
			c.a, c.b = c.b, c.a
		}
		tile[i] = c.u32()
	}

	return tile, true
}
