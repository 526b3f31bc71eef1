package addrlib

import (
	"math/bits"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/addrlib/addrutil"
	"github.com/vkngwrapper/addrlib/element"
	"github.com/vkngwrapper/addrlib/equation"
	"golang.org/x/exp/slog"
)

// MaxMipLevels is the largest mip chain a swizzle mode surface may have
const MaxMipLevels = 16

const linearPitchAlignBytes = 256

// SurfaceV2 describes a surface on a swizzle mode chip. Dimensions are in pixels when Format is set
// and in elements otherwise.
type SurfaceV2 struct {
	SwizzleMode  SwizzleMode
	ResourceType ResourceType
	Format       element.Format
	Bpp          uint32
	Width        uint32
	Height       uint32
	// NumSlices is the depth of a 3D surface and the array size otherwise
	NumSlices    uint32
	NumMipLevels uint32
	NumSamples   uint32
	Flags        SurfaceFlags
}

// MipInfo is the padded size and placement of one mip level. Offset is relative to the start of the
// array slice for 1D and 2D surfaces, and to the surface for 3D ones.
type MipInfo struct {
	Pitch  uint32
	Height uint32
	Depth  uint32
	Offset uint64
	Size   uint64
}

type SurfaceInfoV2Input struct {
	Size uint32
	SurfaceV2
}

func NewSurfaceInfoV2Input() SurfaceInfoV2Input {
	return SurfaceInfoV2Input{Size: uint32(unsafe.Sizeof(SurfaceInfoV2Input{}))}
}

type SurfaceInfoV2Output struct {
	Size uint32

	Pitch     uint32
	Height    uint32
	NumSlices uint32
	// SliceSize is the size of one array slice with its mip chain, or of the whole surface for 3D
	SliceSize uint64
	SurfSize  uint64
	BaseAlign uint32

	BlockWidth  uint32
	BlockHeight uint32
	BlockSlices uint32

	Bpp         uint32
	PixelPitch  uint32
	PixelHeight uint32

	// EquationIndex indexes GetEquationTable, or is equation.InvalidIndex for linear and
	// multisampled surfaces
	EquationIndex uint32

	NumMipLevels uint32
	MipInfo      [MaxMipLevels]MipInfo
}

func NewSurfaceInfoV2Output() SurfaceInfoV2Output {
	return SurfaceInfoV2Output{Size: uint32(unsafe.Sizeof(SurfaceInfoV2Output{}))}
}

// v2Layout is a swizzle mode surface with its block shape, equation and mip chain resolved
type v2Layout struct {
	mode     SwizzleMode
	resource ResourceType

	bpp        uint32
	log2Bytes  uint32
	numSamples uint32
	numSlices  uint32

	elemMode         element.ElemMode
	expandX, expandY uint32

	blockWidth  uint32
	blockHeight uint32
	blockDepth  uint32
	blockBytes  uint64
	baseAlign   uint32

	eq       equation.Equation
	xorShift uint32
	xorBits  uint32

	levels    []MipInfo
	sliceSize uint64
	surfSize  uint64
}

func (l *Lib) v2Layout(s *SurfaceV2) (v2Layout, error) {
	if !l.generation.IsV2() {
		return v2Layout{}, errors.Wrapf(ErrNotSupported, "swizzle modes on %s, use tile modes", l.generation)
	}

	v := v2Layout{
		mode:       s.SwizzleMode,
		resource:   s.ResourceType,
		bpp:        s.Bpp,
		numSamples: max(s.NumSamples, 1),
		numSlices:  max(s.NumSlices, 1),
		expandX:    1,
		expandY:    1,
	}
	numLevels := max(s.NumMipLevels, 1)
	width, height := s.Width, s.Height

	if s.Format != element.FormatInvalid {
		bpi := l.elem.GetBitsPerPixel(s.Format)
		if bpi.Bpp == 0 {
			return v, errInvalidf("unknown format %d", s.Format)
		}
		v.bpp, v.elemMode, v.expandX, v.expandY = bpi.Bpp, bpi.ElemMode, bpi.ExpandX, bpi.ExpandY
	}

	switch {
	case v.bpp == 0 || v.bpp > maxBpp:
		return v, errInvalidf("bpp %d outside 1-%d", v.bpp, maxBpp)
	case width == 0 || height == 0:
		return v, errInvalidf("surface %dx%d", width, height)
	case s.ResourceType == ResourceTex1D && height > 1:
		return v, errInvalidf("1D surface with height %d", height)
	case !addrutil.IsPow2(v.numSamples) || v.numSamples > maxSamples:
		return v, errInvalidf("%d samples", v.numSamples)
	case v.numSamples > 1 && numLevels > 1:
		return v, errInvalidf("%d mip levels with %d samples", numLevels, v.numSamples)
	case numLevels > MaxMipLevels || numLevels > addrutil.Log2NonPow2(max(width, height, v.numSlicesForMips()))+1:
		return v, errInvalidf("%d mip levels for %dx%dx%d", numLevels, width, height, v.numSlices)
	}
	if err := l.checkSwizzleMode(v.mode, v.resource, v.numSamples); err != nil {
		return v, err
	}

	if s.Format != element.FormatInvalid {
		width, height = l.elem.PadForFormat(v.elemMode, v.expandX, v.expandY, width, height)
	}
	dims := l.elem.AdjustSurfaceInfo(v.elemMode, v.expandX, v.expandY, element.SurfaceDims{
		Bpp:    v.bpp,
		Width:  width,
		Height: height,
	})
	v.bpp, width, height = dims.Bpp, dims.Width, dims.Height
	if v.bpp%8 != 0 || v.bpp > maxBpp {
		return v, errInvalidf("element size %d bits", v.bpp)
	}
	bytes := v.bpp / 8
	if !v.mode.IsLinear() && !addrutil.IsPow2(bytes) {
		return v, errInvalidf("%s with a %d bit element", v.mode, v.bpp)
	}

	if v.mode.IsLinear() {
		v.blockWidth = max(1, linearPitchAlignBytes/bytes)
		v.blockHeight, v.blockDepth = 1, 1
		v.blockBytes = linearPitchAlignBytes
		v.baseAlign = linearPitchAlignBytes
	} else {
		v.log2Bytes = addrutil.Log2(bytes)
		eq, err := l.swizzleEquation(v.log2Bytes, v.mode, v.resource, addrutil.Log2(v.numSamples))
		if err != nil {
			return v, err
		}
		v.eq = eq
		v.blockWidth, v.blockHeight, v.blockDepth = swizzleBlockDims(&eq)
		v.blockBytes = uint64(v.mode.BlockBytes())
		v.baseAlign = v.mode.BlockBytes()
		v.xorShift = addrutil.Log2(l.chip.pipeInterleave)
		v.xorBits = l.swizzleXorBits(v.mode)
	}

	depth := uint32(1)
	if v.resource == ResourceTex3D {
		depth = v.numSlices
	}

	var offset uint64
	for level := uint32(0); level < numLevels; level++ {
		info := MipInfo{
			Pitch:  max(width>>level, 1),
			Height: max(height>>level, 1),
			Depth:  max(depth>>level, 1),
			Offset: offset,
		}
		if v.mode.IsLinear() {
			info.Pitch = addrutil.AlignUp(info.Pitch, v.blockWidth)
		} else {
			info.Pitch = addrutil.AlignUp(info.Pitch, v.blockWidth)
			info.Height = addrutil.AlignUp(info.Height, v.blockHeight)
			info.Depth = addrutil.AlignUp(info.Depth, v.blockDepth)
		}
		info.Size = uint64(info.Pitch) * uint64(info.Height) * uint64(info.Depth) * uint64(bytes) * uint64(v.numSamples)
		info.Size = addrutil.AlignUp(info.Size, uint64(v.baseAlign))
		v.levels = append(v.levels, info)
		offset += info.Size
	}

	v.sliceSize = offset
	v.surfSize = offset
	if v.resource != ResourceTex3D {
		v.surfSize = offset * uint64(v.numSlices)
	}
	return v, nil
}

// numSlicesForMips is the slice count that limits the mip chain, which only 3D surfaces minify
func (v *v2Layout) numSlicesForMips() uint32 {
	if v.resource == ResourceTex3D {
		return v.numSlices
	}
	return 1
}

// ComputeSurfaceInfoV2 computes the padded mip chain, size and block shape of a swizzle mode surface
func (l *Lib) ComputeSurfaceInfoV2(in *SurfaceInfoV2Input, out *SurfaceInfoV2Output) error {
	if err := l.checkSize("SurfaceInfoV2Input", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("SurfaceInfoV2Output", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}

	v, err := l.v2Layout(&in.SurfaceV2)
	if err != nil {
		return err
	}

	*out = SurfaceInfoV2Output{
		Size:          out.Size,
		Pitch:         v.levels[0].Pitch,
		Height:        v.levels[0].Height,
		NumSlices:     v.numSlices,
		SliceSize:     v.sliceSize,
		SurfSize:      v.surfSize,
		BaseAlign:     v.baseAlign,
		BlockWidth:    v.blockWidth,
		BlockHeight:   v.blockHeight,
		BlockSlices:   v.blockDepth,
		Bpp:           v.bpp,
		EquationIndex: equation.InvalidIndex,
		NumMipLevels:  uint32(len(v.levels)),
	}
	if v.resource == ResourceTex3D {
		out.NumSlices = v.levels[0].Depth
	}
	copy(out.MipInfo[:], v.levels)

	restored := l.elem.RestoreSurfaceInfo(v.elemMode, v.expandX, v.expandY, element.SurfaceDims{
		Bpp:    v.bpp,
		Width:  out.Pitch,
		Height: out.Height,
	})
	out.PixelPitch, out.PixelHeight = restored.Width, restored.Height

	if !v.mode.IsLinear() && v.numSamples == 1 {
		out.EquationIndex = l.equations.Index(equation.NewSwizzleModeKey(v.log2Bytes, uint32(v.mode), uint32(v.resource)))
	}

	l.logger.Debug("AddrLib::ComputeSurfaceInfoV2",
		slog.String("SwizzleMode", v.mode.String()),
		slog.Int("Pitch", int(out.Pitch)),
		slog.Int("Height", int(out.Height)),
		slog.Int("SurfSize", int(out.SurfSize)),
	)
	return nil
}

type SurfaceAddrFromCoordV2Input struct {
	Size uint32
	SurfaceV2
	// PipeBankXor is XORed into the pipe and bank bits of every block of an xor swizzle mode
	PipeBankXor uint32
	// X and Y are in elements. Slice is the z coordinate of a 3D surface.
	X, Y, Slice, Sample, MipLevel uint32
}

func NewSurfaceAddrFromCoordV2Input() SurfaceAddrFromCoordV2Input {
	return SurfaceAddrFromCoordV2Input{Size: uint32(unsafe.Sizeof(SurfaceAddrFromCoordV2Input{}))}
}

type SurfaceAddrFromCoordV2Output struct {
	Size uint32
	Addr uint64
}

func NewSurfaceAddrFromCoordV2Output() SurfaceAddrFromCoordV2Output {
	return SurfaceAddrFromCoordV2Output{Size: uint32(unsafe.Sizeof(SurfaceAddrFromCoordV2Output{}))}
}

type SurfaceCoordFromAddrV2Input struct {
	Size uint32
	SurfaceV2
	PipeBankXor uint32
	Addr        uint64
}

func NewSurfaceCoordFromAddrV2Input() SurfaceCoordFromAddrV2Input {
	return SurfaceCoordFromAddrV2Input{Size: uint32(unsafe.Sizeof(SurfaceCoordFromAddrV2Input{}))}
}

type SurfaceCoordFromAddrV2Output struct {
	Size                          uint32
	X, Y, Slice, Sample, MipLevel uint32
}

func NewSurfaceCoordFromAddrV2Output() SurfaceCoordFromAddrV2Output {
	return SurfaceCoordFromAddrV2Output{Size: uint32(unsafe.Sizeof(SurfaceCoordFromAddrV2Output{}))}
}

func (v *v2Layout) xorMask(pipeBankXor uint32) uint64 {
	return uint64(pipeBankXor&(1<<v.xorBits-1)) << v.xorShift
}

// blockIndex numbers the blocks of a level row by row, then slice by slice
func (v *v2Layout) blockIndex(level MipInfo, x, y, z uint32) uint64 {
	perRow := uint64(level.Pitch / v.blockWidth)
	perSlice := perRow * uint64(level.Height/v.blockHeight)
	return uint64(z/v.blockDepth)*perSlice + uint64(y/v.blockHeight)*perRow + uint64(x/v.blockWidth)
}

// ComputeSurfaceAddrFromCoordV2 returns the byte address of an element of a swizzle mode surface
func (l *Lib) ComputeSurfaceAddrFromCoordV2(in *SurfaceAddrFromCoordV2Input, out *SurfaceAddrFromCoordV2Output) error {
	if err := l.checkSize("SurfaceAddrFromCoordV2Input", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("SurfaceAddrFromCoordV2Output", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}

	v, err := l.v2Layout(&in.SurfaceV2)
	if err != nil {
		return err
	}
	if in.MipLevel >= uint32(len(v.levels)) {
		return errInvalidf("mip level %d of %d", in.MipLevel, len(v.levels))
	}
	level := v.levels[in.MipLevel]

	z, arraySlice := uint32(0), in.Slice
	if v.resource == ResourceTex3D {
		z, arraySlice = in.Slice, 0
	}
	if in.X >= level.Pitch || in.Y >= level.Height || z >= level.Depth || arraySlice >= v.numSlices || in.Sample >= v.numSamples {
		return errInvalidf("coordinate (%d, %d, %d, %d) outside mip level %d", in.X, in.Y, in.Slice, in.Sample, in.MipLevel)
	}

	base := uint64(arraySlice)*v.sliceSize + level.Offset
	bytes := uint64(v.bpp / 8)
	if v.mode.IsLinear() {
		out.Addr = base + (uint64(in.Y)*uint64(level.Pitch)+uint64(in.X))*bytes
		return nil
	}

	intra := uint64(v.eq.Evaluate(equation.Coord{X: in.X, Y: in.Y, Z: z, Sample: in.Sample}))
	intra ^= v.xorMask(in.PipeBankXor)
	out.Addr = base + v.blockIndex(level, in.X, in.Y, z)*v.blockBytes + intra
	return nil
}

// ComputeSurfaceCoordFromAddrV2 is the inverse of ComputeSurfaceAddrFromCoordV2. Addresses inside an
// element map to that element.
func (l *Lib) ComputeSurfaceCoordFromAddrV2(in *SurfaceCoordFromAddrV2Input, out *SurfaceCoordFromAddrV2Output) error {
	if err := l.checkSize("SurfaceCoordFromAddrV2Input", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("SurfaceCoordFromAddrV2Output", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}

	v, err := l.v2Layout(&in.SurfaceV2)
	if err != nil {
		return err
	}
	if in.Addr >= v.surfSize {
		return errInvalidf("address 0x%x outside a surface of %d bytes", in.Addr, v.surfSize)
	}

	arraySlice := uint32(in.Addr / v.sliceSize)
	rest := in.Addr % v.sliceSize

	mip := -1
	for i, level := range v.levels {
		if rest >= level.Offset && rest < level.Offset+level.Size {
			mip = i
			break
		}
	}
	if mip < 0 {
		return internalErrorf("offset 0x%x in no mip level of a %d byte slice", rest, v.sliceSize)
	}
	level := v.levels[mip]
	rest -= level.Offset
	bytes := uint64(v.bpp / 8)

	var x, y, z, sample uint32
	if v.mode.IsLinear() {
		elem := rest / bytes
		x, y = uint32(elem%uint64(level.Pitch)), uint32(elem/uint64(level.Pitch))
		if y >= level.Height {
			return errInvalidf("address 0x%x is level padding", in.Addr)
		}
	} else {
		block := rest / v.blockBytes
		intra := (rest % v.blockBytes) ^ v.xorMask(in.PipeBankXor)
		coord, err := v.eq.Invert(uint32(intra))
		if err != nil {
			return errors.Mark(errors.Wrapf(err, "%s block offset 0x%x", v.mode, intra), ErrInternal)
		}

		perRow := uint64(level.Pitch / v.blockWidth)
		perSlice := perRow * uint64(level.Height/v.blockHeight)
		x = uint32(block%perRow)*v.blockWidth + coord.X
		y = uint32(block%perSlice/perRow)*v.blockHeight + coord.Y
		z = uint32(block/perSlice)*v.blockDepth + coord.Z
		sample = coord.Sample
	}

	out.X, out.Y, out.Sample, out.MipLevel = x, y, sample, uint32(mip)
	out.Slice = arraySlice
	if v.resource == ResourceTex3D {
		out.Slice = z
	}
	return nil
}

type PipeBankXorInput struct {
	Size        uint32
	SwizzleMode SwizzleMode
	// SurfIndex is the index of the surface among those sharing a memory allocation
	SurfIndex uint32
}

func NewPipeBankXorInput() PipeBankXorInput {
	return PipeBankXorInput{Size: uint32(unsafe.Sizeof(PipeBankXorInput{}))}
}

type PipeBankXorOutput struct {
	Size        uint32
	PipeBankXor uint32
}

func NewPipeBankXorOutput() PipeBankXorOutput {
	return PipeBankXorOutput{Size: uint32(unsafe.Sizeof(PipeBankXorOutput{}))}
}

// ComputePipeBankXor picks the pipe and bank XOR of the surfIndex-th surface of an allocation so that
// consecutive surfaces start as far apart in the pipe and bank space as possible. Modes without
// pipe and bank XOR get 0.
func (l *Lib) ComputePipeBankXor(in *PipeBankXorInput, out *PipeBankXorOutput) error {
	if err := l.checkSize("PipeBankXorInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("PipeBankXorOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}
	if !l.generation.IsV2() {
		return errors.Wrapf(ErrNotSupported, "pipe bank xor on %s", l.generation)
	}
	if _, ok := swizzleModeTable[in.SwizzleMode]; !ok {
		return errInvalidf("swizzle mode %d", in.SwizzleMode)
	}

	xorBits := l.swizzleXorBits(in.SwizzleMode)
	out.PipeBankXor = reverseLowBits(in.SurfIndex&(1<<xorBits-1), xorBits)
	return nil
}

// reverseLowBits mirrors the low n bits of v, so consecutive indices land far apart
func reverseLowBits(v, n uint32) uint32 {
	if n == 0 {
		return 0
	}
	return bits.Reverse32(v) >> (32 - n)
}
