package fdl

import (
	"math/bits"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/addrlib/addrutil"
	"github.com/vkngwrapper/core/v2/common"
)

// MaxMipLevels is the number of mip levels a Layout can describe
const MaxMipLevels = 15

const (
	// ubwcPlaneAlignment is the alignment of every level of UBWC metadata
	ubwcPlaneAlignment = 4096
	// ubwcTileWidthAlignment is the metadata pitch alignment, in metadata bytes
	ubwcTileWidthAlignment = 64
	// ubwcTileHeightAlignment is the metadata row alignment of single-level surfaces
	ubwcTileHeightAlignment = 16
	// ubwcMipTileHeightAlignment is the metadata row alignment once mipmapping is enabled
	ubwcMipTileHeightAlignment = 64

	layerAlignment = 4096
)

var (
	// ErrInvalidParams is returned for a surface description the layout cannot be computed for
	ErrInvalidParams = errors.New("invalid layout parameters")
	// ErrPitchAlignment is returned when an explicit pitch violates the format's pitch alignment
	ErrPitchAlignment = errors.New("explicit pitch is not aligned")
)

// TileMode is the hardware tiling of one mip level
type TileMode uint32

const (
	TileModeLinear TileMode = 0
	TileMode2      TileMode = 2
	TileMode3      TileMode = 3
)

func (m TileMode) String() string {
	switch m {
	case TileModeLinear:
		return "TILE_LINEAR"
	case TileMode2:
		return "TILE_2"
	case TileMode3:
		return "TILE_3"
	}
	return "TILE_UNKNOWN"
}

// LayoutFlags select optional layout behavior. A computed Layout reports the flags that
// were actually applied.
type LayoutFlags int32

var layoutFlagsMapping = common.NewFlagStringMapping[LayoutFlags]()

func (f LayoutFlags) Register(str string) {
	layoutFlagsMapping.Register(f, str)
}
func (f LayoutFlags) String() string {
	return layoutFlagsMapping.FlagsToString(f)
}

const (
	// LayoutUBWC requests bandwidth-compression metadata. It is dropped for formats and
	// shapes that cannot be compressed.
	LayoutUBWC LayoutFlags = 1 << iota
	// Layout3D lays the surface out as a volume, with depth slices stored inside each level
	Layout3D
	// LayoutLayerFirst is set on layouts where each array layer holds its complete mip chain
	LayoutLayerFirst
)

func init() {
	LayoutUBWC.Register("UBWC")
	Layout3D.Register("3D")
	LayoutLayerFirst.Register("LayerFirst")
}

// Slice locates one mip level, or one level of UBWC metadata
type Slice struct {
	// Offset of the first layer of the level from the start of the surface
	Offset uint32
	// Size0 is the byte size of a single layer or depth slice of the level
	Size0 uint32
}

// ExplicitLayout pins the surface to an externally chosen offset and pitch, as for
// imported buffers
type ExplicitLayout struct {
	Offset uint32
	Pitch  uint32
}

// LayoutParams describes the surface to lay out
type LayoutParams struct {
	Format    Format
	Samples   uint32
	Width     uint32
	Height    uint32
	Depth     uint32
	MipLevels uint32
	ArraySize uint32
	TileMode  TileMode
	Flags     LayoutFlags

	// Explicit is optional
	Explicit *ExplicitLayout
}

// Layout is the computed placement of every mip level of a surface. The caller owns it and
// reads it through the accessor methods.
type Layout struct {
	Slices     [MaxMipLevels]Slice
	UbwcSlices [MaxMipLevels]Slice

	Format    Format
	Samples   uint32
	Width0    uint32
	Height0   uint32
	Depth0    uint32
	MipLevels uint32
	TileMode  TileMode
	Flags     LayoutFlags

	// Cpp is bytes per block, multiplied by the sample count
	Cpp      uint32
	CppShift uint32
	// PitchAlign is the log2 of the byte alignment of every level's pitch
	PitchAlign uint32
	Pitch0     uint32
	BaseAlign  uint32

	// UbwcWidth0 is the level 0 metadata pitch, in metadata bytes
	UbwcWidth0 uint32

	LayerSize     uint64
	UbwcLayerSize uint64
	Size          uint64
}

func (l *Layout) reset(params *LayoutParams) error {
	if params.Samples == 0 || !addrutil.IsPow2(params.Samples) {
		return errors.Wrapf(ErrInvalidParams, "sample count %d", params.Samples)
	}
	if params.Width == 0 || params.Height == 0 || params.Depth == 0 || params.ArraySize == 0 {
		return errors.Wrapf(ErrInvalidParams, "extent %dx%dx%d with %d layers",
			params.Width, params.Height, params.Depth, params.ArraySize)
	}
	if params.MipLevels == 0 || params.MipLevels > MaxMipLevels {
		return errors.Wrapf(ErrInvalidParams, "%d mip levels", params.MipLevels)
	}
	if params.Format.BlockSize() == 0 {
		return errors.Wrapf(ErrInvalidParams, "unknown format %d", params.Format)
	}
	switch params.TileMode {
	case TileModeLinear, TileMode2, TileMode3:
	default:
		return errors.Wrapf(ErrInvalidParams, "tile mode %d", params.TileMode)
	}

	*l = Layout{
		Format:    params.Format,
		Samples:   params.Samples,
		Width0:    params.Width,
		Height0:   params.Height,
		Depth0:    params.Depth,
		MipLevels: params.MipLevels,
		TileMode:  params.TileMode,
		Flags:     params.Flags &^ LayoutLayerFirst,
		Cpp:       params.Format.BlockSize() * params.Samples,
	}
	l.CppShift = uint32(bits.TrailingZeros32(l.Cpp))
	if params.Flags&Layout3D == 0 {
		l.Flags |= LayoutLayerFirst
	}
	return nil
}

func (l *Layout) setPitchAlign(shift uint32) {
	l.PitchAlign = shift
	l.Pitch0 = addrutil.PowTwoAlign(l.Format.blocksX(l.Width0)*l.Cpp, uint32(1)<<shift)
}

func (l *Layout) UBWC() bool {
	return l.Flags&LayoutUBWC != 0
}

func (l *Layout) LayerFirst() bool {
	return l.Flags&LayoutLayerFirst != 0
}

// Pitch returns the byte pitch of one row of blocks in a mip level
func (l *Layout) Pitch(level uint32) uint32 {
	return addrutil.PowTwoAlign(minify(l.Pitch0, level), uint32(1)<<l.PitchAlign)
}

// UbwcPitch returns the pitch of a level's UBWC metadata, zero if the layout is
// not compressed
func (l *Layout) UbwcPitch(level uint32) uint32 {
	if !l.UBWC() {
		return 0
	}
	return addrutil.PowTwoAlign(minify(l.UbwcWidth0, level), ubwcTileWidthAlignment)
}

// LayerStride returns the distance between two array layers of a mip level
func (l *Layout) LayerStride(level uint32) uint64 {
	if l.LayerFirst() {
		return l.LayerSize
	}
	return uint64(l.Slices[level].Size0)
}

// SurfaceOffset returns the offset of a layer of a mip level from the start of the surface
func (l *Layout) SurfaceOffset(level, layer uint32) uint64 {
	return uint64(l.Slices[level].Offset) + l.LayerStride(level)*uint64(layer)
}

// UbwcOffset returns the offset of the UBWC metadata for a layer of a mip level
func (l *Layout) UbwcOffset(level, layer uint32) uint64 {
	return uint64(l.UbwcSlices[level].Offset) + l.UbwcLayerSize*uint64(layer)
}

// LevelLinear reports whether a level of the given width is too narrow to tile
func LevelLinear(width uint32) bool {
	return width < 16
}

// TileModeOf returns the tiling actually used by a mip level. Narrow levels of a tiled
// surface fall back to linear unless they carry UBWC metadata.
func (l *Layout) TileModeOf(level uint32) TileMode {
	if l.TileMode != TileModeLinear && !l.UBWC() && LevelLinear(minify(l.Width0, level)) {
		return TileModeLinear
	}
	return l.TileMode
}

func minify(value, level uint32) uint32 {
	value >>= level
	if value == 0 {
		return 1
	}
	return value
}
