package addrlib

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/addrlib/addrutil"
	"github.com/vkngwrapper/addrlib/equation"
)

// FmaskSurface describes the FMASK of a multisampled color surface. NumFrags of 0 means one fragment
// per sample.
type FmaskSurface struct {
	TileMode   TileMode
	Pitch      uint32
	Height     uint32
	NumSlices  uint32
	NumSamples uint32
	NumFrags   uint32
	TileIndex  int32
	TileConfig *TileConfig

	PipeSwizzle uint32
	BankSwizzle uint32
	TileSwizzle uint32
}

// fmaskBitsPerSample is the size of one sample's fragment index. A surface with fewer fragments than
// samples needs one more value to mark a sample that matches no fragment.
func fmaskBitsPerSample(numSamples, numFrags uint32) (uint32, error) {
	if numFrags == 0 {
		numFrags = numSamples
	}
	switch {
	case numSamples < 2 || numSamples > maxSamples || !addrutil.IsPow2(numSamples):
		return 0, errInvalidf("FMASK of a %d sample surface", numSamples)
	case numFrags > numSamples || !addrutil.IsPow2(numFrags):
		return 0, errInvalidf("FMASK with %d fragments for %d samples", numFrags, numSamples)
	}

	bits := addrutil.Log2(numFrags)
	if numFrags < numSamples {
		bits++
	}
	return max(bits, 1), nil
}

// fmaskBpp is the element size holding every sample's fragment index of one pixel
func fmaskBpp(bitsPerSample, numSamples uint32) uint32 {
	return addrutil.NextPow2(max(8, bitsPerSample*numSamples))
}

func (l *Lib) checkFmaskMode(mode TileMode) error {
	if l.hasFlag(CreateUseTileIndex) {
		return nil
	}
	if mode.IsLinear() || mode.IsThick() || !mode.valid() {
		return errInvalidf("FMASK with %s", mode)
	}
	return nil
}

type FmaskInfoInput struct {
	Size uint32
	FmaskSurface
}

func NewFmaskInfoInput() FmaskInfoInput {
	return FmaskInfoInput{
		Size:         uint32(unsafe.Sizeof(FmaskInfoInput{})),
		FmaskSurface: FmaskSurface{TileIndex: TileIndexInvalid},
	}
}

type FmaskInfoOutput struct {
	Size           uint32
	Pitch          uint32
	Height         uint32
	NumSlices      uint32
	FmaskBytes     uint64
	SliceSize      uint64
	BaseAlign      uint32
	PitchAlign     uint32
	HeightAlign    uint32
	BitsPerSample  uint32
	Bpp            uint32
	TileMode       TileMode
	TileIndex      int32
	MacroModeIndex int32
}

func NewFmaskInfoOutput() FmaskInfoOutput {
	return FmaskInfoOutput{Size: uint32(unsafe.Sizeof(FmaskInfoOutput{}))}
}

// ComputeFmaskInfo lays out an FMASK as a single sample, non displayable surface whose elements hold
// the fragment index of every sample of a pixel
func (l *Lib) ComputeFmaskInfo(in *FmaskInfoInput, out *FmaskInfoOutput) error {
	if err := l.checkSize("FmaskInfoInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("FmaskInfoOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}
	if l.generation.IsV2() {
		return errors.Wrapf(ErrNotSupported, "FMASK tile modes on %s", l.generation)
	}
	if err := l.checkFmaskMode(in.TileMode); err != nil {
		return err
	}

	bitsPerSample, err := fmaskBitsPerSample(in.NumSamples, in.NumFrags)
	if err != nil {
		return err
	}
	bpp := fmaskBpp(bitsPerSample, in.NumSamples)

	tileType := equation.MicroTileNonDisplayable
	surf := NewSurfaceInfoInput()
	surf.TileMode = in.TileMode
	surf.Bpp = bpp
	surf.NumSamples = 1
	surf.Width = in.Pitch
	surf.Height = in.Height
	surf.NumSlices = in.NumSlices
	surf.Flags = SurfaceFmask
	surf.TileIndex = in.TileIndex
	surf.TileConfig = in.TileConfig
	surf.TileType = &tileType

	info := NewSurfaceInfoOutput()
	if err := l.ComputeSurfaceInfo(&surf, &info); err != nil {
		return errors.Wrap(err, "FMASK surface")
	}

	*out = FmaskInfoOutput{
		Size:           out.Size,
		Pitch:          info.Pitch,
		Height:         info.Height,
		NumSlices:      info.Depth,
		FmaskBytes:     info.SurfSize,
		SliceSize:      info.SliceSize,
		BaseAlign:      info.BaseAlign,
		PitchAlign:     info.PitchAlign,
		HeightAlign:    info.HeightAlign,
		BitsPerSample:  bitsPerSample,
		Bpp:            bpp,
		TileMode:       info.TileMode,
		TileIndex:      info.TileIndex,
		MacroModeIndex: info.MacroModeIndex,
	}
	return nil
}

func (l *Lib) prepareFmaskAddressing(s *FmaskSurface) (addressing, uint32, error) {
	if err := l.checkFmaskMode(s.TileMode); err != nil {
		return addressing{}, 0, err
	}
	bitsPerSample, err := fmaskBitsPerSample(s.NumSamples, s.NumFrags)
	if err != nil {
		return addressing{}, 0, err
	}

	tileType := equation.MicroTileNonDisplayable
	a, err := l.prepareAddressing(&TiledSurface{
		TileMode:    s.TileMode,
		Flags:       SurfaceFmask,
		Bpp:         fmaskBpp(bitsPerSample, s.NumSamples),
		NumSamples:  1,
		Pitch:       s.Pitch,
		Height:      s.Height,
		NumSlices:   s.NumSlices,
		TileIndex:   s.TileIndex,
		TileConfig:  s.TileConfig,
		TileType:    &tileType,
		PipeSwizzle: s.PipeSwizzle,
		BankSwizzle: s.BankSwizzle,
		TileSwizzle: s.TileSwizzle,
	})
	return a, bitsPerSample, err
}

type FmaskAddrFromCoordInput struct {
	Size uint32
	FmaskSurface
	X, Y, Slice, Sample uint32
}

func NewFmaskAddrFromCoordInput() FmaskAddrFromCoordInput {
	return FmaskAddrFromCoordInput{
		Size:         uint32(unsafe.Sizeof(FmaskAddrFromCoordInput{})),
		FmaskSurface: FmaskSurface{TileIndex: TileIndexInvalid},
	}
}

type FmaskAddrFromCoordOutput struct {
	Size        uint32
	Addr        uint64
	BitPosition uint32
}

func NewFmaskAddrFromCoordOutput() FmaskAddrFromCoordOutput {
	return FmaskAddrFromCoordOutput{Size: uint32(unsafe.Sizeof(FmaskAddrFromCoordOutput{}))}
}

type FmaskCoordFromAddrInput struct {
	Size uint32
	FmaskSurface
	Addr        uint64
	BitPosition uint32
}

func NewFmaskCoordFromAddrInput() FmaskCoordFromAddrInput {
	return FmaskCoordFromAddrInput{
		Size:         uint32(unsafe.Sizeof(FmaskCoordFromAddrInput{})),
		FmaskSurface: FmaskSurface{TileIndex: TileIndexInvalid},
	}
}

type FmaskCoordFromAddrOutput struct {
	Size                uint32
	X, Y, Slice, Sample uint32
}

func NewFmaskCoordFromAddrOutput() FmaskCoordFromAddrOutput {
	return FmaskCoordFromAddrOutput{Size: uint32(unsafe.Sizeof(FmaskCoordFromAddrOutput{}))}
}

// ComputeFmaskAddrFromCoord returns the address of a sample's fragment index. Samples of one pixel are
// packed from the low bits of the pixel's element.
func (l *Lib) ComputeFmaskAddrFromCoord(in *FmaskAddrFromCoordInput, out *FmaskAddrFromCoordOutput) error {
	if err := l.checkSize("FmaskAddrFromCoordInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("FmaskAddrFromCoordOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}

	a, bitsPerSample, err := l.prepareFmaskAddressing(&in.FmaskSurface)
	if err != nil {
		return err
	}
	if in.X >= a.pitch || in.Y >= a.height || in.Slice >= a.numSlices || in.Sample >= in.NumSamples {
		return errInvalidf("coordinate (%d, %d, %d, %d) outside the FMASK", in.X, in.Y, in.Slice, in.Sample)
	}

	bits := a.bits(in.X, in.Y, in.Slice, 0) + uint64(in.Sample*bitsPerSample)
	out.Addr = bits / 8
	out.BitPosition = uint32(bits % 8)
	return nil
}

func (l *Lib) ComputeFmaskCoordFromAddr(in *FmaskCoordFromAddrInput, out *FmaskCoordFromAddrOutput) error {
	if err := l.checkSize("FmaskCoordFromAddrInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("FmaskCoordFromAddrOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}
	if in.BitPosition > 7 {
		return errInvalidf("bit position %d", in.BitPosition)
	}

	a, bitsPerSample, err := l.prepareFmaskAddressing(&in.FmaskSurface)
	if err != nil {
		return err
	}
	if size := a.size(); in.Addr >= size {
		return errInvalidf("address 0x%x outside an FMASK of %d bytes", in.Addr, size)
	}

	elemBytes := uint64(a.bpp / 8)
	elemAddr := in.Addr - in.Addr%elemBytes
	sample := uint32((in.Addr%elemBytes)*8+uint64(in.BitPosition)) / bitsPerSample
	if sample >= in.NumSamples {
		return errInvalidf("address 0x%x bit %d is element padding", in.Addr, in.BitPosition)
	}

	c, err := a.coord(elemAddr * 8)
	if err != nil {
		return err
	}
	out.X, out.Y, out.Slice, out.Sample = c.x, c.y, c.slice, sample
	return nil
}
