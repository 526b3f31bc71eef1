package addrlib

import (
	"github.com/vkngwrapper/addrlib/addrutil"
)

// tileLayout holds the alignments of a tile mode and, for macro tiled modes, the macro tile geometry
// the address functions share with ComputeSurfaceInfo
type tileLayout struct {
	mode TileMode

	pitchAlign  uint32
	heightAlign uint32
	depthAlign  uint32
	baseAlign   uint32

	bytesPerElement uint32
	numSamples      uint32
	// tileBytes1x is the size of one sample of a micro tile
	tileBytes1x    uint32
	microTileBytes uint32

	// The remaining fields describe macro tiling
	config          TileConfig
	numPipes        uint32
	numBanks        uint32
	bankInterleave  uint32
	pipeInterleave  uint32
	macroTilePitch  uint32
	macroTileHeight uint32
	// tileSize is the micro tile size capped at the tile split, which sizes the macro tile
	tileSize uint32
	// tileBytes is the part of a micro tile that lands in one tile split slice. Thick micro tiles
	// are never split.
	tileBytes uint32
	numSplits uint32
}

func (l *Lib) tileLayout(mode TileMode, config TileConfig, bpp, numSamples uint32, flags SurfaceFlags) tileLayout {
	switch {
	case mode.IsMacroTiled():
		return l.macroTileLayout(mode, config, bpp, numSamples)
	case mode.IsMicroTiled():
		return l.microTileLayout(mode, bpp, numSamples, flags)
	}
	return l.linearLayout(mode, bpp, numSamples, flags)
}

func (l *Lib) baseLayout(mode TileMode, bpp, numSamples uint32) tileLayout {
	bytes := addrutil.BitsToBytes(bpp)
	tileBytes1x := microTilePixels * mode.Thickness() * bytes
	return tileLayout{
		mode:            mode,
		depthAlign:      1,
		bytesPerElement: bytes,
		numSamples:      numSamples,
		tileBytes1x:     tileBytes1x,
		microTileBytes:  tileBytes1x * numSamples,
		pipeInterleave:  l.chip.pipeInterleave,
		bankInterleave:  max(l.chip.bankInterleave, 1),
	}
}

func (l *Lib) linearLayout(mode TileMode, bpp, numSamples uint32, flags SurfaceFlags) tileLayout {
	layout := l.baseLayout(mode, bpp, numSamples)
	if mode == TileModeLinearGeneral {
		layout.pitchAlign = 1
		layout.heightAlign = 1
		layout.baseAlign = max(bpp/8, 1)
		return layout
	}

	layout.pitchAlign = l.ops.linearPitchAlign(l, layout.bytesPerElement, flags)
	layout.pitchAlign = l.adjustPitchAlign(layout.pitchAlign, flags)
	layout.heightAlign = 1
	layout.baseAlign = l.chip.pipeInterleave
	return layout
}

// Scanout hardwires the low five bits of the pitch register to zero
func (l *Lib) adjustPitchAlign(align uint32, flags SurfaceFlags) uint32 {
	if flags&SurfaceDisplay == 0 {
		return align
	}
	return max(addrutil.AlignUp(align, 32), l.config.MinPitchAlignPixels)
}

// r800LinearPitchAlign keeps every row on a pipe interleave boundary
func r800LinearPitchAlign(l *Lib, bytes uint32, _ SurfaceFlags) uint32 {
	return max(64, l.chip.pipeInterleave/bytes)
}

func siLinearPitchAlign(l *Lib, bytes uint32, flags SurfaceFlags) uint32 {
	if flags&SurfaceInterleaved != 0 {
		return r800LinearPitchAlign(l, bytes, flags)
	}
	return max(8, 64/bytes)
}

// siLinearSizeAdjust grows the pitch until a slice covers a whole number of 64 pixel or pipe
// interleave units and returns the smallest height step that keeps it that way
func siLinearSizeAdjust(l *Lib, bytes, numSamples, pitchAlign, pitch, height uint32) (uint32, uint32) {
	sliceAlign := uint64(max(64, l.chip.pipeInterleave/bytes))
	for uint64(pitch)*uint64(height)*uint64(numSamples)%sliceAlign != 0 {
		pitch += pitchAlign
	}
	heightAlign := uint32(1)
	for uint64(pitch)*uint64(heightAlign)%sliceAlign != 0 {
		heightAlign++
	}
	return pitch, heightAlign
}

func (l *Lib) microTileLayout(mode TileMode, bpp, numSamples uint32, flags SurfaceFlags) tileLayout {
	layout := l.baseLayout(mode, bpp, numSamples)
	layout.pitchAlign = max(microTileWidth, microTileWidth*l.chip.pipeInterleave/layout.microTileBytes)
	layout.pitchAlign = l.adjustPitchAlign(layout.pitchAlign, flags)
	layout.heightAlign = microTileHeight
	layout.depthAlign = mode.Thickness()
	layout.baseAlign = l.chip.pipeInterleave
	return layout
}

// macroTileLayout computes the macro tile geometry. A macro tile holds bankWidth x bankHeight micro
// tiles for every pipe and bank, so its byte size at one tile split slice is the base alignment.
func (l *Lib) macroTileLayout(mode TileMode, config TileConfig, bpp, numSamples uint32) tileLayout {
	layout := l.baseLayout(mode, bpp, numSamples)
	layout.config = config
	layout.numPipes = config.PipeConfig.NumPipes()
	layout.numBanks = config.Banks
	layout.depthAlign = mode.Thickness()

	split := config.TileSplitBytes
	if split == 0 || (l.chip.rowSize != 0 && split > l.chip.rowSize) {
		split = l.chip.rowSize
	}
	layout.tileSize = layout.microTileBytes
	if split != 0 {
		layout.tileSize = min(split, layout.microTileBytes)
	}
	layout.tileBytes = layout.microTileBytes
	layout.numSplits = 1
	if mode.Thickness() == 1 && layout.tileSize < layout.microTileBytes {
		layout.tileBytes = layout.tileSize
		layout.numSplits = layout.microTileBytes / layout.tileSize
	}

	aspect := max(config.MacroAspectRatio, 1)
	layout.macroTilePitch = microTileWidth * config.BankWidth * layout.numPipes * aspect
	layout.macroTileHeight = microTileHeight * config.BankHeight * config.Banks / aspect
	layout.pitchAlign = layout.macroTilePitch
	layout.heightAlign = layout.macroTileHeight

	pipesAndBanks := layout.numPipes * layout.numBanks
	layout.baseAlign = max(
		pipesAndBanks*config.BankWidth*config.BankHeight*layout.tileSize,
		pipesAndBanks*layout.bankInterleave*layout.pipeInterleave,
	)

	if mode.IsPrt() {
		area := prtTileBytes / (layout.bytesPerElement * numSamples * mode.Thickness())
		width := uint32(1) << ((addrutil.Log2(area) + 1) / 2)
		layout.pitchAlign = max(layout.pitchAlign, width)
		layout.heightAlign = max(layout.heightAlign, area/width)
		layout.baseAlign = max(layout.baseAlign, prtTileBytes)
	}

	return layout
}

// macroTilesPerRow and the slice byte count are per pipe and bank channel
func (t tileLayout) macroTilesPerRow(pitch uint32) uint32 {
	return pitch / t.macroTilePitch
}

func (t tileLayout) macroTileChannelBytes() uint64 {
	return uint64(t.config.BankWidth) * uint64(t.config.BankHeight) * uint64(t.tileBytes)
}

func (t tileLayout) sliceChannelBytes(pitch, height uint32) uint64 {
	macroTiles := uint64(pitch/t.macroTilePitch) * uint64(height/t.macroTileHeight)
	return macroTiles * t.macroTileChannelBytes()
}
