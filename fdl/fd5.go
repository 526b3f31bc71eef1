package fdl

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/addrlib/addrutil"
)

// fd5LayerFreezeSize is the 3D layer size below which the a5xx auto-sizer stops shrinking
// layers of higher levels
const fd5LayerFreezeSize = 0xf000

// Layout5 lays out a surface for a5xx. It has no UBWC metadata and no explicit layouts.
func (l *Layout) Layout5(params LayoutParams) error {
	params.Flags &^= LayoutUBWC
	if params.Explicit != nil {
		return errors.Wrap(ErrInvalidParams, "a5xx layouts do not take an explicit layout")
	}
	err := l.reset(&params)
	if err != nil {
		return err
	}

	is3D := l.Flags&Layout3D != 0
	heightAlign := uint32(16)
	if l.Cpp == 1 {
		heightAlign = 32
	}

	// a level-first layout keeps every layer of a level together
	layersInLevel := params.ArraySize
	if l.LayerFirst() {
		layersInLevel = 1
	}

	if l.Cpp < 4 && l.TileMode != TileModeLinear {
		l.setPitchAlign(l.CppShift + 7)
	} else {
		l.setPitchAlign(l.CppShift + 6)
	}
	l.BaseAlign = 4096

	var size uint64
	for level := uint32(0); level < params.MipLevels; level++ {
		depth := minify(params.Depth, level)
		slice := &l.Slices[level]
		pitch := l.Pitch(level)
		rows := l.Format.blocksY(minify(params.Height, level))

		if l.TileModeOf(level) != TileModeLinear {
			rows = addrutil.PowTwoAlign(rows, heightAlign)
		} else if level == params.MipLevels-1 {
			// copies through GMEM over-fetch in 32x32 blocks past the last level
			rows = addrutil.PowTwoAlign(rows, 32)
		}

		slice.Offset = uint32(size)

		switch {
		case !is3D:
			slice.Size0 = rows * pitch
		case level <= 1 || l.Slices[level-1].Size0 > fd5LayerFreezeSize:
			slice.Size0 = addrutil.PowTwoAlign(rows*pitch, layerAlignment)
		default:
			slice.Size0 = l.Slices[level-1].Size0
		}

		size += uint64(slice.Size0) * uint64(depth) * uint64(layersInLevel)
	}

	if l.LayerFirst() {
		l.LayerSize = addrutil.PowTwoAlign(size, layerAlignment)
		size = l.LayerSize * uint64(params.ArraySize)
	}
	l.Size = size
	return nil
}
