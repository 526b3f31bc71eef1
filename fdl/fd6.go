package fdl

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/addrlib/addrutil"
)

type ubwcBlock struct {
	width, height uint32
}

// ubwcBlockSizes is indexed by log2 of bytes per block
var ubwcBlockSizes = [...]ubwcBlock{
	{16, 4}, // 1
	{16, 4}, // 2
	{16, 4}, // 4
	{8, 4},  // 8
	{4, 4},  // 16
	{4, 2},  // 32
	{0, 0},  // 64
}

// UbwcBlockSize returns the pixel footprint of one byte of UBWC metadata. A zero size means
// the layout cannot be compressed.
func (l *Layout) UbwcBlockSize() (width, height uint32) {
	if l.Format.isTwoChannel8() {
		return 16, 8
	}

	// Cpp already includes the sample count
	if l.Cpp/l.Samples == 2 && l.Samples > 1 {
		switch l.Samples {
		case 2:
			return 8, 4
		case 4:
			return 4, 4
		default:
			return 4, 2
		}
	}

	if l.Format == FormatY8Unorm {
		return 32, 8
	}

	if l.Cpp != 1<<l.CppShift || int(l.CppShift) >= len(ubwcBlockSizes) {
		return 0, 0
	}
	block := ubwcBlockSizes[l.CppShift]
	return block.width, block.height
}

func (l *Layout) tiledHeightAlign() uint32 {
	if l.Cpp == 1 || (l.Cpp == 2 && l.Format.isTwoChannel8()) {
		return 32
	}
	return 16
}

// Layout6 lays out a surface for a6xx and later. Every level of every layer is placed in
// one allocation. With UBWC the metadata for all layers is placed ahead of the pixel data.
func (l *Layout) Layout6(params LayoutParams) error {
	err := l.reset(&params)
	if err != nil {
		return err
	}

	is3D := l.Flags&Layout3D != 0
	if is3D && params.ArraySize > 1 {
		return errors.Wrapf(ErrInvalidParams, "3D surface with %d array layers", params.ArraySize)
	}
	ubwcWidth, ubwcHeight := l.UbwcBlockSize()
	if params.Depth > 1 || ubwcWidth == 0 || l.Format.IsCompressed() {
		l.Flags &^= LayoutUBWC
	}
	if l.UBWC() && l.TileMode == TileModeLinear {
		return errors.Wrap(ErrInvalidParams, "UBWC requires a tiled layout")
	}

	if l.Cpp < 4 && l.TileMode != TileModeLinear {
		l.setPitchAlign(l.CppShift + 7)
	} else {
		l.setPitchAlign(l.CppShift + 6)
	}
	heightAlign := l.tiledHeightAlign()

	l.BaseAlign = 64
	if l.TileMode != TileModeLinear {
		l.BaseAlign = 4096
	}

	var offset uint32
	if params.Explicit != nil {
		offset = params.Explicit.Offset
		if params.Explicit.Pitch != addrutil.PowTwoAlign(params.Explicit.Pitch, uint32(1)<<l.PitchAlign) {
			return errors.Wrapf(ErrPitchAlignment, "pitch %d must be a multiple of %d",
				params.Explicit.Pitch, uint32(1)<<l.PitchAlign)
		}
		if params.Explicit.Pitch < l.Pitch0 {
			return errors.Wrapf(ErrInvalidParams, "pitch %d is less than the %d bytes the width needs",
				params.Explicit.Pitch, l.Pitch0)
		}
		l.Pitch0 = params.Explicit.Pitch
	}

	ubwcWidth0, ubwcHeight0 := params.Width, params.Height
	ubwcRowAlign := uint32(ubwcTileHeightAlignment)
	if params.MipLevels > 1 {
		// mipmapped metadata is sized in powers of two
		ubwcWidth0 = addrutil.NextPow2(ubwcWidth0)
		ubwcHeight0 = addrutil.NextPow2(ubwcHeight0)
		ubwcRowAlign = ubwcMipTileHeightAlignment
	}
	if l.UBWC() {
		l.UbwcWidth0 = addrutil.PowTwoAlign((ubwcWidth0+ubwcWidth-1)/ubwcWidth, ubwcTileWidthAlignment)
		ubwcHeight0 = addrutil.PowTwoAlign((ubwcHeight0+ubwcHeight-1)/ubwcHeight, ubwcRowAlign)
	}

	var size uint64
	var min3DLayerSize uint32

	for level := uint32(0); level < params.MipLevels; level++ {
		depth := minify(params.Depth, level)
		slice := &l.Slices[level]
		tileMode := l.TileModeOf(level)
		pitch := l.Pitch(level)

		// tiled levels of volumes round up to power of two heights
		height := minify(params.Height, level)
		if is3D && tileMode != TileModeLinear {
			height = minify(addrutil.NextPow2(params.Height), level)
		}

		rawRows := l.Format.blocksY(height)
		rows := rawRows
		if tileMode != TileModeLinear {
			rows = addrutil.PowTwoAlign(rows, heightAlign)
		}
		// copies between system memory and GMEM over-fetch in 16x4 blocks past the last level
		if level == params.MipLevels-1 {
			rows = addrutil.PowTwoAlign(rows, 4)
		}

		if l.UBWC() {
			size = addrutil.PowTwoAlign(size, ubwcPlaneAlignment)
		}
		slice.Offset = offset + uint32(size)

		switch {
		case !is3D:
			slice.Size0 = rows * pitch
		case level == 0:
			slice.Size0 = addrutil.PowTwoAlign(rows*pitch, layerAlignment)
		case min3DLayerSize != 0:
			slice.Size0 = min3DLayerSize
		default:
			// each level quarters the slice until the hardware stops shrinking it
			slice.Size0 = minify(l.Slices[0].Size0, level*2)

			if pitch != l.Pitch(level-1)/2 {
				slice.Size0 = rows * pitch
				min3DLayerSize = slice.Size0
			}
			if tileMode != TileModeLinear && rawRows < heightAlign {
				slice.Size0 = rows * pitch
				min3DLayerSize = slice.Size0
			}
			if slice.Size0 != addrutil.PowTwoAlign(slice.Size0, layerAlignment) {
				slice.Size0 = addrutil.PowTwoAlign(slice.Size0, layerAlignment)
				min3DLayerSize = slice.Size0
			}
		}

		size += uint64(slice.Size0) * uint64(depth)

		if l.UBWC() {
			ubwcSlice := &l.UbwcSlices[level]
			metaPitch := l.UbwcPitch(level)
			metaHeight := addrutil.PowTwoAlign(minify(ubwcHeight0, level), ubwcRowAlign)

			ubwcSlice.Size0 = addrutil.PowTwoAlign(metaPitch*metaHeight, ubwcPlaneAlignment)
			ubwcSlice.Offset = offset + uint32(l.UbwcLayerSize)
			l.UbwcLayerSize += uint64(ubwcSlice.Size0)
		}
	}

	if l.LayerFirst() {
		l.LayerSize = addrutil.PowTwoAlign(size, layerAlignment)
		size = l.LayerSize * uint64(params.ArraySize)
	}

	if l.UBWC() {
		ubwcSize := l.UbwcLayerSize * uint64(params.ArraySize)
		for level := uint32(0); level < params.MipLevels; level++ {
			l.Slices[level].Offset += uint32(ubwcSize)
		}
		size += ubwcSize
	}

	l.Size = size + uint64(offset)
	return nil
}
