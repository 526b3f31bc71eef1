package addrlib

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/addrlib/addrutil"
	"github.com/vkngwrapper/addrlib/equation"
)

// tileConfigToHW encodes the fields of a tile configuration the way the tile mode registers hold
// them. SI and later also store the pipe configuration one lower.
func (l *Lib) tileConfigToHW(c TileConfig) (TileConfig, error) {
	encode := func(name string, value, lowest, values uint32) (uint32, error) {
		if value < lowest || !addrutil.IsPow2(value) || value/lowest >= 1<<values {
			return 0, errInvalidf("%s %d", name, value)
		}
		return addrutil.Log2(value / lowest), nil
	}

	var hw TileConfig
	var err error
	if hw.Banks, err = encode("banks", c.Banks, 2, 4); err != nil {
		return TileConfig{}, err
	}
	if hw.BankWidth, err = encode("bank width", c.BankWidth, 1, 4); err != nil {
		return TileConfig{}, err
	}
	if hw.BankHeight, err = encode("bank height", c.BankHeight, 1, 4); err != nil {
		return TileConfig{}, err
	}
	if hw.MacroAspectRatio, err = encode("macro aspect ratio", c.MacroAspectRatio, 1, 4); err != nil {
		return TileConfig{}, err
	}
	if hw.TileSplitBytes, err = encode("tile split", c.TileSplitBytes, 64, 7); err != nil {
		return TileConfig{}, err
	}

	hw.PipeConfig = c.PipeConfig
	if l.generation != GenerationR800 {
		if c.PipeConfig == PipeConfigInvalid {
			return TileConfig{}, errInvalidf("pipe config %d", c.PipeConfig)
		}
		hw.PipeConfig--
	}
	return hw, nil
}

// tileConfigFromHW decodes what tileConfigToHW encodes
func (l *Lib) tileConfigFromHW(hw TileConfig) (TileConfig, error) {
	decode := func(name string, value, lowest, values uint32) (uint32, error) {
		if value >= values {
			return 0, errInvalidf("%s field %d", name, value)
		}
		return lowest << value, nil
	}

	var c TileConfig
	var err error
	if c.Banks, err = decode("banks", hw.Banks, 2, 4); err != nil {
		return TileConfig{}, err
	}
	if c.BankWidth, err = decode("bank width", hw.BankWidth, 1, 4); err != nil {
		return TileConfig{}, err
	}
	if c.BankHeight, err = decode("bank height", hw.BankHeight, 1, 4); err != nil {
		return TileConfig{}, err
	}
	if c.MacroAspectRatio, err = decode("macro aspect ratio", hw.MacroAspectRatio, 1, 4); err != nil {
		return TileConfig{}, err
	}
	if c.TileSplitBytes, err = decode("tile split", hw.TileSplitBytes, 64, 7); err != nil {
		return TileConfig{}, err
	}

	c.PipeConfig = hw.PipeConfig
	if l.generation != GenerationR800 {
		c.PipeConfig++
	}
	return c, nil
}

type ConvertTileInfoToHWInput struct {
	Size uint32
	// Reverse decodes TileConfig from register fields instead of encoding it
	Reverse    bool
	TileConfig TileConfig
	// TileIndex replaces TileConfig when the Lib was created with CreateUseTileIndex and Reverse is
	// false
	TileIndex      int32
	MacroModeIndex int32
	Bpp            uint32
}

func NewConvertTileInfoToHWInput() ConvertTileInfoToHWInput {
	return ConvertTileInfoToHWInput{
		Size:           uint32(unsafe.Sizeof(ConvertTileInfoToHWInput{})),
		TileIndex:      TileIndexInvalid,
		MacroModeIndex: TileIndexNoMacroIndex,
	}
}

type ConvertTileInfoToHWOutput struct {
	Size       uint32
	TileConfig TileConfig
}

func NewConvertTileInfoToHWOutput() ConvertTileInfoToHWOutput {
	return ConvertTileInfoToHWOutput{Size: uint32(unsafe.Sizeof(ConvertTileInfoToHWOutput{}))}
}

// ConvertTileInfoToHW converts a tile configuration between real values and the log2 register
// fields of the tile mode registers
func (l *Lib) ConvertTileInfoToHW(in *ConvertTileInfoToHWInput, out *ConvertTileInfoToHWOutput) error {
	if err := l.checkSize("ConvertTileInfoToHWInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("ConvertTileInfoToHWOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}
	if l.generation.IsV2() {
		return errors.Wrapf(ErrNotSupported, "tile configurations on %s", l.generation)
	}

	if in.Reverse {
		config, err := l.tileConfigFromHW(in.TileConfig)
		if err != nil {
			return err
		}
		out.TileConfig = config
		return nil
	}

	config := in.TileConfig
	if l.usesTileIndex(in.TileIndex) {
		if l.ops.setupTileCfg == nil {
			return errors.Wrapf(ErrNotSupported, "tile index on %s", l.generation)
		}
		info, err := l.ops.setupTileCfg(l, in.Bpp, in.TileIndex, in.MacroModeIndex, 0)
		if err != nil {
			return err
		}
		config = info.Config
	}
	hw, err := l.tileConfigToHW(config)
	if err != nil {
		return err
	}
	out.TileConfig = hw
	return nil
}

type ConvertTileIndexInput struct {
	Size           uint32
	TileIndex      int32
	MacroModeIndex int32
	Bpp            uint32
	// TileInfoHW returns the configuration in register fields
	TileInfoHW bool
}

func NewConvertTileIndexInput() ConvertTileIndexInput {
	return ConvertTileIndexInput{
		Size:           uint32(unsafe.Sizeof(ConvertTileIndexInput{})),
		MacroModeIndex: TileIndexNoMacroIndex,
	}
}

type ConvertTileIndex1Input struct {
	Size       uint32
	TileIndex  int32
	Bpp        uint32
	NumSamples uint32
	TileInfoHW bool
}

func NewConvertTileIndex1Input() ConvertTileIndex1Input {
	return ConvertTileIndex1Input{Size: uint32(unsafe.Sizeof(ConvertTileIndex1Input{}))}
}

type ConvertTileIndexOutput struct {
	Size       uint32
	TileMode   TileMode
	TileType   equation.MicroTileType
	TileConfig TileConfig
}

func NewConvertTileIndexOutput() ConvertTileIndexOutput {
	return ConvertTileIndexOutput{Size: uint32(unsafe.Sizeof(ConvertTileIndexOutput{}))}
}

func (l *Lib) fillConvertTileIndexOutput(info tileIndexInfo, tileInfoHW bool, out *ConvertTileIndexOutput) error {
	out.TileMode = info.Mode
	out.TileType = info.TileType
	out.TileConfig = info.Config
	if !tileInfoHW {
		return nil
	}
	hw, err := l.tileConfigToHW(info.Config)
	if err != nil {
		return err
	}
	out.TileConfig = hw
	return nil
}

// ConvertTileIndex returns the tile mode, micro tile type and configuration of a tile index. On CI
// the macro tile configuration comes from MacroModeIndex.
func (l *Lib) ConvertTileIndex(in *ConvertTileIndexInput, out *ConvertTileIndexOutput) error {
	if err := l.checkSize("ConvertTileIndexInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("ConvertTileIndexOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}
	if l.ops.setupTileCfg == nil {
		return errors.Wrapf(ErrNotSupported, "tile index on %s", l.generation)
	}

	info, err := l.ops.setupTileCfg(l, in.Bpp, in.TileIndex, in.MacroModeIndex, 0)
	if err != nil {
		return err
	}
	return l.fillConvertTileIndexOutput(info, in.TileInfoHW, out)
}

// ConvertTileIndex1 is ConvertTileIndex with the macro mode index computed from the element size
// and sample count
func (l *Lib) ConvertTileIndex1(in *ConvertTileIndex1Input, out *ConvertTileIndexOutput) error {
	if err := l.checkSize("ConvertTileIndex1Input", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("ConvertTileIndexOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}

	info, err := l.resolveTileIndex(in.TileIndex, 0, in.Bpp, max(in.NumSamples, 1))
	if err != nil {
		return err
	}
	return l.fillConvertTileIndexOutput(info, in.TileInfoHW, out)
}

type MacroModeIndexInput struct {
	Size      uint32
	Flags     SurfaceFlags
	TileIndex int32
	Bpp       uint32
	NumFrags  uint32
}

func NewMacroModeIndexInput() MacroModeIndexInput {
	return MacroModeIndexInput{Size: uint32(unsafe.Sizeof(MacroModeIndexInput{}))}
}

type MacroModeIndexOutput struct {
	Size           uint32
	MacroModeIndex int32
}

func NewMacroModeIndexOutput() MacroModeIndexOutput {
	return MacroModeIndexOutput{Size: uint32(unsafe.Sizeof(MacroModeIndexOutput{}))}
}

// GetMacroModeIndex returns the macro tile table row a tile index uses, or TileIndexNoMacroIndex on
// chips without a macro tile table and for micro tiled rows
func (l *Lib) GetMacroModeIndex(in *MacroModeIndexInput, out *MacroModeIndexOutput) error {
	if err := l.checkSize("MacroModeIndexInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("MacroModeIndexOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}

	out.MacroModeIndex = TileIndexNoMacroIndex
	if l.ops.computeMacroModeIndex == nil {
		return nil
	}
	index, err := l.ops.computeMacroModeIndex(l, in.TileIndex, in.Flags, in.Bpp, max(in.NumFrags, 1))
	if errors.Is(err, ErrNotSupported) {
		return nil
	} else if err != nil {
		return err
	}
	out.MacroModeIndex = index
	return nil
}

type TileIndexInput struct {
	Size     uint32
	TileMode TileMode
	TileType equation.MicroTileType
	// TileConfig must match the row for macro tiled modes. Nil matches any row.
	TileConfig *TileConfig
}

func NewTileIndexInput() TileIndexInput {
	return TileIndexInput{Size: uint32(unsafe.Sizeof(TileIndexInput{}))}
}

type TileIndexOutput struct {
	Size  uint32
	Index int32
}

func NewTileIndexOutput() TileIndexOutput {
	return TileIndexOutput{Size: uint32(unsafe.Sizeof(TileIndexOutput{}))}
}

// GetTileIndex finds the tile mode table row for a tile mode, micro tile type and configuration. Index
// is TileIndexInvalid when no row matches.
func (l *Lib) GetTileIndex(in *TileIndexInput, out *TileIndexOutput) error {
	if err := l.checkSize("TileIndexInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("TileIndexOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}
	if l.ops.setupTileCfg == nil {
		return errors.Wrapf(ErrNotSupported, "tile index on %s", l.generation)
	}

	out.Index = l.lookupTileIndex(in.TileMode, in.TileType, in.TileConfig)
	return nil
}

func (l *Lib) rowTileType(reg TileModeRegister) equation.MicroTileType {
	if l.generation == GenerationCI {
		return reg.MicroTileTypeNew
	}
	return reg.MicroTileType
}

// rowConfigMatches compares a configuration with the fields a tile mode table row fixes. CI rows only
// carry the pipe configuration; their bank layout lives in the macro tile table.
func (l *Lib) rowConfigMatches(reg TileModeRegister, c *TileConfig) bool {
	if c == nil {
		return true
	}
	if reg.PipeConfig != c.PipeConfig {
		return false
	}
	if l.generation == GenerationCI {
		return true
	}
	return reg.Banks == c.Banks &&
		reg.BankWidth == c.BankWidth &&
		reg.BankHeight == c.BankHeight &&
		reg.MacroAspectRatio == c.MacroAspectRatio &&
		reg.TileSplitBytes == c.TileSplitBytes
}

// lookupTileIndex returns the first row matching the mode. Macro tiled rows must also match the
// micro tile type and configuration, micro tiled rows the micro tile type, and linear rows nothing
// more.
func (l *Lib) lookupTileIndex(mode TileMode, tileType equation.MicroTileType, config *TileConfig) int32 {
	if mode == TileModeLinearGeneral {
		return TileIndexLinearGeneral
	}
	for i, reg := range l.tileTable {
		switch {
		case reg.TileMode != mode:
		case mode == TileModeLinearAligned:
			return int32(i)
		case l.rowTileType(reg) != tileType:
		case mode.IsMacroTiled() && !l.rowConfigMatches(reg, config):
		default:
			return int32(i)
		}
	}
	return TileIndexInvalid
}
