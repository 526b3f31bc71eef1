package addrlib

import (
	"github.com/vkngwrapper/addrlib/addrutil"
	"github.com/vkngwrapper/addrlib/equation"
)

// TileMode is the tiling mode of a surface on R800, SI and CI chips
type TileMode uint32

const (
	TileModeLinearGeneral TileMode = iota
	TileModeLinearAligned
	TileMode1DTiledThin1
	TileMode1DTiledThick
	TileMode2DTiledThin1
	TileMode2DTiledThin2
	TileMode2DTiledThin4
	TileMode2DTiledThick
	TileMode2BTiledThin1
	TileMode2BTiledThin2
	TileMode2BTiledThin4
	TileMode2BTiledThick
	TileMode3DTiledThin1
	TileMode3DTiledThick
	TileMode3BTiledThin1
	TileMode3BTiledThick
	TileMode2DTiledXThick
	TileMode3DTiledXThick
	TileModePrtTiledThin1
	TileModePrt2DTiledThin1
	TileModePrt3DTiledThin1
	TileModePrtTiledThick
	TileModePrt2DTiledThick
	TileModePrt3DTiledThick
	// TileModeUnknown asks ComputeSurfaceInfo to select a tile mode
	TileModeUnknown
)

type tileModeClass uint32

const (
	classLinear tileModeClass = iota
	classMicro
	classMacro
)

type tileModeFlags struct {
	thickness uint32
	class     tileModeClass
	// aspect is the macro tile aspect ratio implied by R800 THIN2/THIN4 modes, 0 when the tile
	// configuration decides
	aspect   uint32
	bankSwap bool
	prt      bool
	// prtNoRotation modes address every macro tile as if it were the first one
	prtNoRotation bool
	name          string
	thinner       TileMode
	microEquiv    TileMode
}

var tileModeTable = map[TileMode]tileModeFlags{
	TileModeLinearGeneral:   {thickness: 1, class: classLinear, name: "ADDR_TM_LINEAR_GENERAL"},
	TileModeLinearAligned:   {thickness: 1, class: classLinear, name: "ADDR_TM_LINEAR_ALIGNED"},
	TileMode1DTiledThin1:    {thickness: 1, class: classMicro, name: "ADDR_TM_1D_TILED_THIN1"},
	TileMode1DTiledThick:    {thickness: 4, class: classMicro, name: "ADDR_TM_1D_TILED_THICK", thinner: TileMode1DTiledThin1},
	TileMode2DTiledThin1:    {thickness: 1, class: classMacro, name: "ADDR_TM_2D_TILED_THIN1", microEquiv: TileMode1DTiledThin1},
	TileMode2DTiledThin2:    {thickness: 1, class: classMacro, aspect: 2, name: "ADDR_TM_2D_TILED_THIN2", microEquiv: TileMode1DTiledThin1},
	TileMode2DTiledThin4:    {thickness: 1, class: classMacro, aspect: 4, name: "ADDR_TM_2D_TILED_THIN4", microEquiv: TileMode1DTiledThin1},
	TileMode2DTiledThick:    {thickness: 4, class: classMacro, name: "ADDR_TM_2D_TILED_THICK", thinner: TileMode2DTiledThin1, microEquiv: TileMode1DTiledThick},
	TileMode2BTiledThin1:    {thickness: 1, class: classMacro, bankSwap: true, name: "ADDR_TM_2B_TILED_THIN1", microEquiv: TileMode1DTiledThin1},
	TileMode2BTiledThin2:    {thickness: 1, class: classMacro, bankSwap: true, aspect: 2, name: "ADDR_TM_2B_TILED_THIN2", microEquiv: TileMode1DTiledThin1},
	TileMode2BTiledThin4:    {thickness: 1, class: classMacro, bankSwap: true, aspect: 4, name: "ADDR_TM_2B_TILED_THIN4", microEquiv: TileMode1DTiledThin1},
	TileMode2BTiledThick:    {thickness: 4, class: classMacro, bankSwap: true, name: "ADDR_TM_2B_TILED_THICK", thinner: TileMode2BTiledThin1, microEquiv: TileMode1DTiledThick},
	TileMode3DTiledThin1:    {thickness: 1, class: classMacro, name: "ADDR_TM_3D_TILED_THIN1", microEquiv: TileMode1DTiledThin1},
	TileMode3DTiledThick:    {thickness: 4, class: classMacro, name: "ADDR_TM_3D_TILED_THICK", thinner: TileMode3DTiledThin1, microEquiv: TileMode1DTiledThick},
	TileMode3BTiledThin1:    {thickness: 1, class: classMacro, bankSwap: true, name: "ADDR_TM_3B_TILED_THIN1", microEquiv: TileMode1DTiledThin1},
	TileMode3BTiledThick:    {thickness: 4, class: classMacro, bankSwap: true, name: "ADDR_TM_3B_TILED_THICK", thinner: TileMode3BTiledThin1, microEquiv: TileMode1DTiledThick},
	TileMode2DTiledXThick:   {thickness: 8, class: classMacro, name: "ADDR_TM_2D_TILED_XTHICK", thinner: TileMode2DTiledThick, microEquiv: TileMode1DTiledThick},
	TileMode3DTiledXThick:   {thickness: 8, class: classMacro, name: "ADDR_TM_3D_TILED_XTHICK", thinner: TileMode3DTiledThick, microEquiv: TileMode1DTiledThick},
	TileModePrtTiledThin1:   {thickness: 1, class: classMacro, prt: true, prtNoRotation: true, name: "ADDR_TM_PRT_TILED_THIN1", microEquiv: TileMode1DTiledThin1},
	TileModePrt2DTiledThin1: {thickness: 1, class: classMacro, prt: true, name: "ADDR_TM_PRT_2D_TILED_THIN1", microEquiv: TileMode1DTiledThin1},
	TileModePrt3DTiledThin1: {thickness: 1, class: classMacro, prt: true, name: "ADDR_TM_PRT_3D_TILED_THIN1", microEquiv: TileMode1DTiledThin1},
	TileModePrtTiledThick:   {thickness: 4, class: classMacro, prt: true, prtNoRotation: true, name: "ADDR_TM_PRT_TILED_THICK", thinner: TileModePrtTiledThin1, microEquiv: TileMode1DTiledThick},
	TileModePrt2DTiledThick: {thickness: 4, class: classMacro, prt: true, name: "ADDR_TM_PRT_2D_TILED_THICK", thinner: TileModePrt2DTiledThin1, microEquiv: TileMode1DTiledThick},
	TileModePrt3DTiledThick: {thickness: 4, class: classMacro, prt: true, name: "ADDR_TM_PRT_3D_TILED_THICK", thinner: TileModePrt3DTiledThin1, microEquiv: TileMode1DTiledThick},
	TileModeUnknown:         {thickness: 1, class: classLinear, name: "ADDR_TM_UNKNOWN"},
}

func (m TileMode) flags() tileModeFlags {
	return tileModeTable[m]
}

func (m TileMode) String() string {
	f, ok := tileModeTable[m]
	if !ok {
		return "ADDR_TM_INVALID"
	}
	return f.name
}

func (m TileMode) valid() bool {
	_, ok := tileModeTable[m]
	return ok && m != TileModeUnknown
}

// Thickness is the number of slices one micro tile spans
func (m TileMode) Thickness() uint32 {
	return max(m.flags().thickness, 1)
}

func (m TileMode) IsLinear() bool {
	return m.flags().class == classLinear
}

func (m TileMode) IsMicroTiled() bool {
	return m.flags().class == classMicro
}

func (m TileMode) IsMacroTiled() bool {
	return m.flags().class == classMacro
}

func (m TileMode) IsPrt() bool {
	return m.flags().prt
}

func (m TileMode) IsThick() bool {
	return m.Thickness() > 1
}

// IsBankSwapped reports the 2B and 3B modes. They address like their 2D and 3D counterparts
// without slice rotation.
func (m TileMode) IsBankSwapped() bool {
	return m.flags().bankSwap
}

func (m TileMode) isPrtNoRotation() bool {
	return m.flags().prtNoRotation
}

// PipeConfig names the pipe count and the pipe equation layout of a chip
type PipeConfig uint32

const (
	PipeConfigInvalid         PipeConfig = 0
	PipeConfigP2              PipeConfig = 1
	PipeConfigP4_8x16         PipeConfig = 5
	PipeConfigP4_16x16        PipeConfig = 6
	PipeConfigP4_16x32        PipeConfig = 7
	PipeConfigP4_32x32        PipeConfig = 8
	PipeConfigP8_16x16_8x16   PipeConfig = 9
	PipeConfigP8_16x32_8x16   PipeConfig = 10
	PipeConfigP8_32x32_8x16   PipeConfig = 11
	PipeConfigP8_16x32_16x16  PipeConfig = 12
	PipeConfigP8_32x32_16x16  PipeConfig = 13
	PipeConfigP8_32x32_16x32  PipeConfig = 14
	PipeConfigP8_32x64_32x32  PipeConfig = 15
	PipeConfigP16_32x32_8x16  PipeConfig = 17
	PipeConfigP16_32x32_16x16 PipeConfig = 18
)

var pipeConfigNames = map[PipeConfig]string{
	PipeConfigP2:              "ADDR_PIPECFG_P2",
	PipeConfigP4_8x16:         "ADDR_PIPECFG_P4_8x16",
	PipeConfigP4_16x16:        "ADDR_PIPECFG_P4_16x16",
	PipeConfigP4_16x32:        "ADDR_PIPECFG_P4_16x32",
	PipeConfigP4_32x32:        "ADDR_PIPECFG_P4_32x32",
	PipeConfigP8_16x16_8x16:   "ADDR_PIPECFG_P8_16x16_8x16",
	PipeConfigP8_16x32_8x16:   "ADDR_PIPECFG_P8_16x32_8x16",
	PipeConfigP8_32x32_8x16:   "ADDR_PIPECFG_P8_32x32_8x16",
	PipeConfigP8_16x32_16x16:  "ADDR_PIPECFG_P8_16x32_16x16",
	PipeConfigP8_32x32_16x16:  "ADDR_PIPECFG_P8_32x32_16x16",
	PipeConfigP8_32x32_16x32:  "ADDR_PIPECFG_P8_32x32_16x32",
	PipeConfigP8_32x64_32x32:  "ADDR_PIPECFG_P8_32x64_32x32",
	PipeConfigP16_32x32_8x16:  "ADDR_PIPECFG_P16_32x32_8x16",
	PipeConfigP16_32x32_16x16: "ADDR_PIPECFG_P16_32x32_16x16",
}

func (c PipeConfig) String() string {
	name, ok := pipeConfigNames[c]
	if !ok {
		return "ADDR_PIPECFG_INVALID"
	}
	return name
}

var pipeConfigPipes = map[PipeConfig]uint32{
	PipeConfigP2:              2,
	PipeConfigP4_8x16:         4,
	PipeConfigP4_16x16:        4,
	PipeConfigP4_16x32:        4,
	PipeConfigP4_32x32:        4,
	PipeConfigP8_16x16_8x16:   8,
	PipeConfigP8_16x32_8x16:   8,
	PipeConfigP8_32x32_8x16:   8,
	PipeConfigP8_16x32_16x16:  8,
	PipeConfigP8_32x32_16x16:  8,
	PipeConfigP8_32x32_16x32:  8,
	PipeConfigP8_32x64_32x32:  8,
	PipeConfigP16_32x32_8x16:  16,
	PipeConfigP16_32x32_16x16: 16,
}

// NumPipes returns the pipe count of the configuration, or 0 if it is not a known configuration
func (c PipeConfig) NumPipes() uint32 {
	return pipeConfigPipes[c]
}

// defaultPipeConfig picks the configuration used by chips that have no tile mode tables. Four pipe
// R800 parts interleave pipes over 8x16 pixels, which their CMASK and HTILE layouts rely on.
func defaultPipeConfig(numPipes uint32) PipeConfig {
	switch numPipes {
	case 2:
		return PipeConfigP2
	case 4:
		return PipeConfigP4_8x16
	case 8:
		return PipeConfigP8_32x32_16x16
	case 16:
		return PipeConfigP16_32x32_16x16
	}
	return PipeConfigInvalid
}

func bit(v, i uint32) uint32 {
	return (v >> i) & 1
}

// computePipeFromCoord evaluates the unswizzled pipe of a pixel. The names follow the pixel
// address bits: x3 is bit 0 of the micro tile column.
func computePipeFromCoord(config PipeConfig, x, y uint32) uint32 {
	tx, ty := x/microTileWidth, y/microTileHeight
	x3, x4, x5, x6 := bit(tx, 0), bit(tx, 1), bit(tx, 2), bit(tx, 3)
	y3, y4, y5, y6 := bit(ty, 0), bit(ty, 1), bit(ty, 2), bit(ty, 3)

	var p0, p1, p2, p3 uint32
	switch config {
	case PipeConfigP2:
		p0 = x3 ^ y3
	case PipeConfigP4_8x16:
		p0 = x4 ^ y3
		p1 = x3 ^ y4
	case PipeConfigP4_16x16:
		p0 = x3 ^ y3 ^ x4
		p1 = x4 ^ y4
	case PipeConfigP4_16x32:
		p0 = x3 ^ y3 ^ x4
		p1 = x4 ^ y5
	case PipeConfigP4_32x32:
		p0 = x3 ^ y3 ^ x5
		p1 = x5 ^ y5
	case PipeConfigP8_16x16_8x16:
		// the third pipe bit only ever comes from the swizzle
		p0 = x4 ^ y3 ^ x5
		p1 = x3 ^ y5
	case PipeConfigP8_16x32_8x16:
		p0 = x4 ^ y3 ^ x5
		p1 = x3 ^ y4
		p2 = x4 ^ y5
	case PipeConfigP8_16x32_16x16:
		p0 = x3 ^ y3 ^ x4
		p1 = x5 ^ y4
		p2 = x4 ^ y5
	case PipeConfigP8_32x32_8x16:
		p0 = x4 ^ y3 ^ x5
		p1 = x3 ^ y4
		p2 = x5 ^ y5
	case PipeConfigP8_32x32_16x16:
		p0 = x3 ^ y3 ^ x4
		p1 = x4 ^ y4
		p2 = x5 ^ y5
	case PipeConfigP8_32x32_16x32:
		p0 = x3 ^ y3 ^ x4
		p1 = x4 ^ y6
		p2 = x5 ^ y5
	case PipeConfigP8_32x64_32x32:
		p0 = x3 ^ y3 ^ x5
		p1 = x6 ^ y5
		p2 = x5 ^ y6
	case PipeConfigP16_32x32_8x16:
		p0 = x4 ^ y3
		p1 = x3 ^ y4
		p2 = x5 ^ y6
		p3 = x6 ^ y5
	case PipeConfigP16_32x32_16x16:
		p0 = x3 ^ y3 ^ x4
		p1 = x4 ^ y4
		p2 = x5 ^ y6
		p3 = x6 ^ y5
	}
	return p0 | p1<<1 | p2<<2 | p3<<3
}

// solvePipeX is the inverse of computePipeFromCoord for a known y: it returns the micro tile column
// bits the pipe selects and the mask of the bits it set. bank0 is the unswizzled bank bit 0 and
// yBitTop the highest bank row bit, which the 32 pixel wide 4 and 8 pipe layouts need when banks are
// one micro tile wide.
func solvePipeX(config PipeConfig, pipe, y, bank0, yBitTop uint32) (value, mask uint32) {
	p0, p1, p2, p3 := bit(pipe, 0), bit(pipe, 1), bit(pipe, 2), bit(pipe, 3)
	y3, y4, y5, y6 := bit(y, 3), bit(y, 4), bit(y, 5), bit(y, 6)

	var x3, x4, x5, x6 uint32
	mask = 0x7
	switch config {
	case PipeConfigP2:
		x3 = p0 ^ y3
		mask = 0x1
	case PipeConfigP4_8x16:
		x4 = p0 ^ y3
		x3 = p1 ^ y4
		mask = 0x3
	case PipeConfigP4_16x16:
		x4 = p1 ^ y4
		x3 = p0 ^ y3 ^ x4
		mask = 0x3
	case PipeConfigP4_16x32:
		x4 = p1 ^ y5
		x3 = p0 ^ y3 ^ x4
		mask = 0x3
	case PipeConfigP4_32x32:
		x5 = p1 ^ y5
		x3 = p0 ^ y3 ^ x5
		x4 = bank0 ^ yBitTop
	case PipeConfigP8_16x16_8x16:
		x3 = p1 ^ y5
		x4 = p2 ^ y4
		x5 = p0 ^ y3 ^ x4
	case PipeConfigP8_16x32_8x16:
		x3 = p1 ^ y4
		x4 = p2 ^ y5
		x5 = p0 ^ y3 ^ x4
	case PipeConfigP8_32x32_8x16:
		x3 = p1 ^ y4
		x5 = p2 ^ y5
		x4 = p0 ^ y3 ^ x5
	case PipeConfigP8_16x32_16x16:
		x4 = p2 ^ y5
		x5 = p1 ^ y4
		x3 = p0 ^ y3 ^ x4
	case PipeConfigP8_32x32_16x16:
		x5 = p2 ^ y5
		x4 = p1 ^ y4
		x3 = p0 ^ y3 ^ x4
	case PipeConfigP8_32x32_16x32:
		x5 = p2 ^ y5
		x4 = p1 ^ y6
		x3 = p0 ^ y3 ^ x4
	case PipeConfigP8_32x64_32x32:
		x6 = p1 ^ y5
		x5 = p2 ^ y6
		x3 = p0 ^ y3 ^ x5
		x4 = bank0 ^ yBitTop
		mask = 0xf
	case PipeConfigP16_32x32_8x16:
		x4 = p0 ^ y3
		x3 = p1 ^ y4
		x5 = p2 ^ y6
		x6 = p3 ^ y5
		mask = 0xf
	case PipeConfigP16_32x32_16x16:
		x4 = p1 ^ y4
		x3 = p0 ^ y3 ^ x4
		x5 = p2 ^ y6
		x6 = p3 ^ y5
		mask = 0xf
	default:
		return 0, 0
	}
	return x3 | x4<<1 | x5<<2 | x6<<3, mask
}

// computeBankFromCoord evaluates the unswizzled bank from the macro-tile-local bank coordinates
// xBit = tileX/(pipes*bankWidth) and yBit = tileY/bankHeight
func computeBankFromCoord(numBanks, xBit, yBit uint32) uint32 {
	x := func(i uint32) uint32 { return (xBit >> i) & 1 }
	y := func(i uint32) uint32 { return (yBit >> i) & 1 }

	switch numBanks {
	case 2:
		return y(0) ^ x(0)
	case 4:
		b0 := y(1) ^ x(0)
		b1 := y(0) ^ x(1)
		return b0 | b1<<1
	case 8:
		b0 := y(2) ^ x(0)
		b1 := y(1) ^ y(2) ^ x(1)
		b2 := y(0) ^ x(2)
		return b0 | b1<<1 | b2<<2
	case 16:
		b0 := y(3) ^ x(0)
		b1 := y(2) ^ y(3) ^ x(1)
		b2 := y(1) ^ x(2)
		b3 := y(0) ^ x(3)
		return b0 | b1<<1 | b2<<2 | b3<<3
	}
	return 0
}

// solveBankBits is the inverse of computeBankFromCoord. xBit and yBit hold the bank coordinates
// known from the macro tile position; the result holds the bits the bank decides, the low x bits
// and low y bits of the bank coordinates within the macro tile.
func solveBankBits(aspect, numBanks, bank, xBit, yBit uint32) (x, y uint32) {
	b0, b1, b2, b3 := bit(bank, 0), bit(bank, 1), bit(bank, 2), bit(bank, 3)
	xb := func(i uint32) uint32 { return bit(xBit, i) }
	yb := func(i uint32) uint32 { return bit(yBit, i) }

	var x3, x4, x5, y3, y4, y5, y6 uint32
	switch aspect {
	case 1:
		switch numBanks {
		case 2:
			y3 = b0 ^ xb(0)
		case 4:
			y4 = b0 ^ xb(0)
			y3 = b1 ^ xb(1)
		case 8:
			y3 = b2 ^ xb(2)
			y5 = b0 ^ xb(0)
			y4 = b1 ^ xb(1) ^ y5
		case 16:
			y3 = b3 ^ xb(3)
			y4 = b2 ^ xb(2)
			y6 = b0 ^ xb(0)
			y5 = b1 ^ xb(1) ^ y6
		}
	case 2:
		switch numBanks {
		case 2:
			x3 = b0 ^ yb(0)
		case 4:
			x3 = b0 ^ yb(1)
			y3 = b1 ^ xb(1)
		case 8:
			x3 = b0 ^ yb(2)
			y3 = b2 ^ xb(2)
			y4 = b1 ^ xb(1) ^ yb(2)
		case 16:
			x3 = b0 ^ yb(3)
			y3 = b3 ^ xb(3)
			y4 = b2 ^ xb(2)
			y5 = b1 ^ xb(1) ^ yb(3)
		}
	case 4:
		switch numBanks {
		case 4:
			x3 = b0 ^ yb(1)
			x4 = b1 ^ yb(0)
		case 8:
			x3 = b0 ^ yb(2)
			y3 = b2 ^ xb(2)
			x4 = b1 ^ yb(1) ^ yb(2)
		case 16:
			x3 = b0 ^ yb(3)
			x4 = b1 ^ yb(2) ^ yb(3)
			y3 = b3 ^ xb(3)
			y4 = b2 ^ xb(2)
		}
	case 8:
		switch numBanks {
		case 8:
			x3 = b0 ^ yb(2)
			x4 = b1 ^ yb(1) ^ yb(2)
			x5 = b2 ^ yb(0)
		case 16:
			x3 = b0 ^ yb(3)
			x4 = b1 ^ yb(2) ^ yb(3)
			x5 = b2 ^ yb(1)
			y3 = b3 ^ xb(3)
		}
	}
	return x3 | x4<<1 | x5<<2, y3 | y4<<1 | y5<<2 | y6<<3
}

// pipeRotation and bankRotation are the per slice rotation steps the slice swizzle uses
func pipeRotation(mode TileMode, numPipes uint32) uint32 {
	switch mode {
	case TileMode3DTiledThin1, TileMode3DTiledThick, TileMode3DTiledXThick,
		TileModePrt3DTiledThin1, TileModePrt3DTiledThick:
		if numPipes < 4 {
			return 1
		}
		return numPipes/2 - 1
	}
	return 0
}

func bankRotation(mode TileMode, numBanks, numPipes uint32) uint32 {
	switch mode {
	case TileMode2DTiledThin1, TileMode2DTiledThick, TileMode2DTiledXThick,
		TileModePrt2DTiledThin1, TileModePrt2DTiledThick:
		return numBanks/2 - 1
	case TileMode3DTiledThin1, TileMode3DTiledThick, TileMode3DTiledXThick,
		TileModePrt3DTiledThin1, TileModePrt3DTiledThick:
		if numPipes < 4 {
			return 1
		}
		return numPipes/2 - 1
	}
	return 0
}

// slicePipeRotation and sliceBankRotation rotate the pipe and bank of every slice of a 2D or 3D
// tiled surface. PRT modes do not rotate.
func slicePipeRotation(mode TileMode, numPipes, slice uint32) uint32 {
	switch mode {
	case TileMode3DTiledThin1, TileMode3DTiledThick, TileMode3DTiledXThick:
		return max(1, numPipes/2-1) * (slice / mode.Thickness())
	}
	return 0
}

func sliceBankRotation(mode TileMode, numBanks, numPipes, slice uint32) uint32 {
	switch mode {
	case TileMode2DTiledThin1, TileMode2DTiledThick, TileMode2DTiledXThick:
		return (numBanks/2 - 1) * (slice / mode.Thickness())
	case TileMode3DTiledThin1, TileMode3DTiledThick, TileMode3DTiledXThick:
		return max(1, numPipes/2-1) * (slice / mode.Thickness()) / numPipes
	}
	return 0
}

// tileSplitBankRotation moves each tile split slice of a thin micro tile to another bank
func tileSplitBankRotation(mode TileMode, numBanks, tileSplitSlice uint32) uint32 {
	switch mode {
	case TileMode2DTiledThin1, TileMode3DTiledThin1, TileModePrt2DTiledThin1, TileModePrt3DTiledThin1:
		return (numBanks/2 + 1) * tileSplitSlice
	}
	return 0
}

// TileConfig holds the macro tile parameters of a surface
type TileConfig struct {
	Banks uint32
	// BankWidth is in micro tiles, 1, 2, 4 or 8
	BankWidth uint32
	// BankHeight is in micro tiles, 1, 2, 4 or 8
	BankHeight       uint32
	MacroAspectRatio uint32
	TileSplitBytes   uint32
	PipeConfig       PipeConfig
}

func (c TileConfig) validate() error {
	if c.PipeConfig.NumPipes() == 0 {
		return errInvalidf("pipe config %d", c.PipeConfig)
	}
	for _, field := range []struct {
		name  string
		value uint32
	}{
		{"banks", c.Banks},
		{"bank width", c.BankWidth},
		{"bank height", c.BankHeight},
		{"macro aspect ratio", c.MacroAspectRatio},
	} {
		if !addrutil.IsPow2(field.value) {
			return errInvalidf("%s %d is not a power of two", field.name, field.value)
		}
	}
	if c.Banks < 2 || c.Banks > 16 {
		return errInvalidf("bank count %d", c.Banks)
	}
	if c.BankWidth > 8 || c.BankHeight > 8 {
		return errInvalidf("bank width %d, height %d", c.BankWidth, c.BankHeight)
	}
	if c.MacroAspectRatio > c.Banks || c.MacroAspectRatio > 8 {
		return errInvalidf("macro aspect ratio %d with %d banks", c.MacroAspectRatio, c.Banks)
	}
	if c.TileSplitBytes != 0 && !addrutil.IsPow2(c.TileSplitBytes) {
		return errInvalidf("tile split %d is not a power of two", c.TileSplitBytes)
	}
	return nil
}

func microTileEquationKey(log2Bytes uint32, mode TileMode, tileType equation.MicroTileType) equation.Key {
	return equation.NewTileModeKey(log2Bytes, uint32(mode), tileType, mode.Thickness())
}
