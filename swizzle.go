package addrlib

import (
	"unsafe"

	"github.com/cockroachdb/errors"
)

// A combined tile swizzle is a base address in 256 byte units with only the bank and pipe bits set,
// the form the hardware takes in its base address registers.

func (l *Lib) combineSwizzle(bank, pipe uint32, baseAddr uint64, t tileLayout) uint32 {
	tileSwizzle := uint64(pipe) + uint64(bank)*uint64(t.bankInterleave)*uint64(t.numPipes)
	return uint32((baseAddr ^ tileSwizzle*uint64(t.pipeInterleave)) >> 8)
}

func (l *Lib) extractSwizzle(base256b uint32, t tileLayout) (bank, pipe uint32) {
	if base256b == 0 {
		return 0, 0
	}
	group := base256b / (t.pipeInterleave >> 8)
	pipe = group & (t.numPipes - 1)
	bank = (group / t.numPipes / t.bankInterleave) & (t.numBanks - 1)
	return bank, pipe
}

// SwizzleSurface names the tiling a swizzle operation works on
type SwizzleSurface struct {
	TileMode   TileMode
	Flags      SurfaceFlags
	TileIndex  int32
	TileConfig *TileConfig
}

func (l *Lib) swizzleLayout(s *SwizzleSurface) (tileLayout, error) {
	if l.generation.IsV2() {
		return tileLayout{}, errors.Wrapf(ErrNotSupported, "bank and pipe swizzles on %s", l.generation)
	}
	tiling, err := l.resolveTiling(s.TileMode, s.Flags, s.TileIndex, s.TileConfig, nil, 32, 1)
	if err != nil {
		return tileLayout{}, err
	}
	if !tiling.mode.IsMacroTiled() {
		return tileLayout{mode: tiling.mode}, nil
	}
	if err := tiling.config.validate(); err != nil {
		return tileLayout{}, err
	}
	return l.macroTileLayout(tiling.mode, tiling.config, 32, 1), nil
}

type CombineBankPipeSwizzleInput struct {
	Size uint32
	SwizzleSurface
	BankSwizzle uint32
	PipeSwizzle uint32
	BaseAddr    uint64
}

func NewCombineBankPipeSwizzleInput() CombineBankPipeSwizzleInput {
	return CombineBankPipeSwizzleInput{
		Size:           uint32(unsafe.Sizeof(CombineBankPipeSwizzleInput{})),
		SwizzleSurface: SwizzleSurface{TileIndex: TileIndexInvalid},
	}
}

type TileSwizzleOutput struct {
	Size        uint32
	TileSwizzle uint32
}

func NewTileSwizzleOutput() TileSwizzleOutput {
	return TileSwizzleOutput{Size: uint32(unsafe.Sizeof(TileSwizzleOutput{}))}
}

// CombineBankPipeSwizzle XORs a bank and pipe swizzle into a base address and returns it in 256 byte
// units
func (l *Lib) CombineBankPipeSwizzle(in *CombineBankPipeSwizzleInput, out *TileSwizzleOutput) error {
	if err := l.checkSize("CombineBankPipeSwizzleInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("TileSwizzleOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}

	t, err := l.swizzleLayout(&in.SwizzleSurface)
	if err != nil {
		return err
	}
	if !t.mode.IsMacroTiled() {
		out.TileSwizzle = 0
		return nil
	}
	if in.BankSwizzle >= t.numBanks || in.PipeSwizzle >= t.numPipes {
		return errInvalidf("bank swizzle %d of %d, pipe swizzle %d of %d", in.BankSwizzle, t.numBanks, in.PipeSwizzle, t.numPipes)
	}

	out.TileSwizzle = l.combineSwizzle(in.BankSwizzle, in.PipeSwizzle, in.BaseAddr, t)
	return nil
}

type ExtractBankPipeSwizzleInput struct {
	Size uint32
	SwizzleSurface
	TileSwizzle uint32
}

func NewExtractBankPipeSwizzleInput() ExtractBankPipeSwizzleInput {
	return ExtractBankPipeSwizzleInput{
		Size:           uint32(unsafe.Sizeof(ExtractBankPipeSwizzleInput{})),
		SwizzleSurface: SwizzleSurface{TileIndex: TileIndexInvalid},
	}
}

type ExtractBankPipeSwizzleOutput struct {
	Size        uint32
	BankSwizzle uint32
	PipeSwizzle uint32
}

func NewExtractBankPipeSwizzleOutput() ExtractBankPipeSwizzleOutput {
	return ExtractBankPipeSwizzleOutput{Size: uint32(unsafe.Sizeof(ExtractBankPipeSwizzleOutput{}))}
}

// ExtractBankPipeSwizzle reads the bank and pipe swizzle out of a base address in 256 byte units
func (l *Lib) ExtractBankPipeSwizzle(in *ExtractBankPipeSwizzleInput, out *ExtractBankPipeSwizzleOutput) error {
	if err := l.checkSize("ExtractBankPipeSwizzleInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("ExtractBankPipeSwizzleOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}

	t, err := l.swizzleLayout(&in.SwizzleSurface)
	if err != nil {
		return err
	}
	if !t.mode.IsMacroTiled() {
		out.BankSwizzle, out.PipeSwizzle = 0, 0
		return nil
	}
	out.BankSwizzle, out.PipeSwizzle = l.extractSwizzle(in.TileSwizzle, t)
	return nil
}

type SliceTileSwizzleInput struct {
	Size uint32
	SwizzleSurface
	Slice       uint32
	BaseSwizzle uint32
	BaseAddr    uint64
}

func NewSliceTileSwizzleInput() SliceTileSwizzleInput {
	return SliceTileSwizzleInput{
		Size:           uint32(unsafe.Sizeof(SliceTileSwizzleInput{})),
		SwizzleSurface: SwizzleSurface{TileIndex: TileIndexInvalid},
	}
}

// ComputeSliceTileSwizzle returns the combined swizzle that addresses one slice of a 3D tiled surface
// as if it were a 2D surface of its own
func (l *Lib) ComputeSliceTileSwizzle(in *SliceTileSwizzleInput, out *TileSwizzleOutput) error {
	if err := l.checkSize("SliceTileSwizzleInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("TileSwizzleOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}

	t, err := l.swizzleLayout(&in.SwizzleSurface)
	if err != nil {
		return err
	}
	if !t.mode.IsMacroTiled() {
		out.TileSwizzle = 0
		return nil
	}

	firstSlice := in.Slice / t.mode.Thickness()
	pipeRot := pipeRotation(t.mode, t.numPipes)
	bankRot := bankRotation(t.mode, t.numBanks, t.numPipes)

	bank, pipe := l.extractSwizzle(in.BaseSwizzle, t)
	if pipeRot == 0 {
		bank = (bank + firstSlice*bankRot) % t.numBanks
	} else {
		pipe = (pipe + firstSlice*pipeRot) % t.numPipes
		bank = (bank + firstSlice*bankRot/t.numPipes) % t.numBanks
	}
	out.TileSwizzle = l.combineSwizzle(bank, pipe, in.BaseAddr, t)
	return nil
}

// SwizzleGenOption selects how ComputeBaseSwizzle spreads surfaces over the banks
type SwizzleGenOption uint32

const (
	// SwizzleGenDefault walks the banks in the order that keeps consecutive surfaces furthest apart
	SwizzleGenDefault SwizzleGenOption = iota
	// SwizzleGenLinear gives surface n bank n
	SwizzleGenLinear
)

type BaseSwizzleInput struct {
	Size uint32
	SwizzleSurface
	// SurfIndex is the index of the surface among those sharing a memory allocation
	SurfIndex uint32
	GenOption SwizzleGenOption
	// ReduceBankBit uses half the banks
	ReduceBankBit bool
}

func NewBaseSwizzleInput() BaseSwizzleInput {
	return BaseSwizzleInput{
		Size:           uint32(unsafe.Sizeof(BaseSwizzleInput{})),
		SwizzleSurface: SwizzleSurface{TileIndex: TileIndexInvalid},
	}
}

var bankRotationOrder = map[uint32][]uint32{
	2:  {0, 0},
	4:  {0, 1, 2, 3},
	8:  {0, 3, 6, 1, 4, 7, 2, 5},
	16: {0, 7, 14, 5, 12, 3, 10, 1, 8, 15, 6, 13, 4, 11, 2, 9},
}

// ComputeBaseSwizzle picks a tile swizzle for the surfIndex-th surface of an allocation. 3D tiled
// surfaces also move to the next pipe.
func (l *Lib) ComputeBaseSwizzle(in *BaseSwizzleInput, out *TileSwizzleOutput) error {
	if err := l.checkSize("BaseSwizzleInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("TileSwizzleOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}

	t, err := l.swizzleLayout(&in.SwizzleSurface)
	if err != nil {
		return err
	}
	if !t.mode.IsMacroTiled() {
		out.TileSwizzle = 0
		return nil
	}

	banks := t.numBanks
	if in.ReduceBankBit && banks > 2 {
		banks >>= 1
	}

	var bank, pipe uint32
	if in.GenOption == SwizzleGenLinear {
		bank = in.SurfIndex & (banks - 1)
	} else {
		bank = bankRotationOrder[banks][in.SurfIndex&(banks-1)]
	}
	switch t.mode {
	case TileMode3DTiledThin1, TileMode3DTiledThick, TileMode3DTiledXThick, TileMode3BTiledThin1,
		TileMode3BTiledThick, TileModePrt3DTiledThin1, TileModePrt3DTiledThick:
		pipe = in.SurfIndex & (t.numPipes - 1)
	}
	out.TileSwizzle = l.combineSwizzle(bank, pipe, 0, t)
	return nil
}
