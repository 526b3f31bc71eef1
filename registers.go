package addrlib

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/addrlib/addrutil"
	"github.com/vkngwrapper/addrlib/equation"
)

// RegisterValues carries the raw register values a chip's address configuration is decoded from
type RegisterValues struct {
	GbAddrConfig uint32
	// NoOfBanks is the encoded DRAM bank count used by R800 and by surfaces with no tile index:
	// 0 is 4 banks, 1 is 8 and 2 is 16
	NoOfBanks uint32
	NoOfRanks uint32
	// TileConfig holds GB_TILE_MODEn values on SI and CI
	TileConfig []uint32
	// MacroTileConfig holds GB_MACROTILE_MODEn values on CI
	MacroTileConfig []uint32
}

type regField struct {
	shift, width uint32
}

func (f regField) get(value uint32) uint32 {
	return addrutil.GetBits(value, f.shift, f.width, 0)
}

func (f regField) put(value uint32) uint32 {
	return addrutil.GetBits(value, 0, f.width, f.shift)
}

var (
	gbNumPipes         = regField{0, 3}
	gbPipeInterleave   = regField{4, 3}
	gbBankInterleave   = regField{8, 3}
	gbRowSize          = regField{28, 2}
	gfx9PipeInterleave = regField{3, 3}
	gfx9MaxCompFrags   = regField{6, 2}
	gfx9NumBanks       = regField{12, 3}
	gfx9NumSE          = regField{19, 2}
	gfx9NumRbPerSE     = regField{26, 2}
	gfx10NumPkrs       = regField{8, 3}

	tmMicroTileMode    = regField{0, 2}
	tmArrayMode        = regField{2, 4}
	tmPipeConfig       = regField{6, 5}
	tmTileSplit        = regField{11, 3}
	tmBankWidth        = regField{14, 2}
	tmBankHeight       = regField{16, 2}
	tmMacroTileAspect  = regField{18, 2}
	tmNumBanks         = regField{20, 2}
	tmMicroTileModeNew = regField{22, 3}
	tmSampleSplit      = regField{25, 2}

	mtmBankWidth       = regField{0, 2}
	mtmBankHeight      = regField{2, 2}
	mtmMacroTileAspect = regField{4, 2}
	mtmNumBanks        = regField{6, 2}
)

// GbAddrConfig is the decoded GB_ADDR_CONFIG register
type GbAddrConfig struct {
	NumPipes            uint32
	PipeInterleaveBytes uint32
	// BankInterleave is the number of pipe interleave groups per bank on R800 and 1 elsewhere
	BankInterleave uint32
	RowSize        uint32
	// The remaining fields are only decoded on GFX9 and later
	MaxCompressedFrags uint32
	NumBanks           uint32
	NumShaderEngines   uint32
	NumRbPerSE         uint32
	NumPkrs            uint32
}

// DecodeGbAddrConfig decodes GB_ADDR_CONFIG with the field layout of the given generation
func DecodeGbAddrConfig(gen Generation, value uint32) GbAddrConfig {
	cfg := GbAddrConfig{
		NumPipes:       1 << gbNumPipes.get(value),
		BankInterleave: 1,
	}

	if gen.IsV2() {
		cfg.PipeInterleaveBytes = 256 << gfx9PipeInterleave.get(value)
		cfg.MaxCompressedFrags = 1 << gfx9MaxCompFrags.get(value)
		cfg.NumShaderEngines = 1 << gfx9NumSE.get(value)
		cfg.NumRbPerSE = 1 << gfx9NumRbPerSE.get(value)
		if gen == GenerationGFX9 {
			cfg.NumBanks = 1 << gfx9NumBanks.get(value)
		} else {
			cfg.NumPkrs = 1 << gfx10NumPkrs.get(value)
		}
		return cfg
	}

	cfg.PipeInterleaveBytes = 256 << gbPipeInterleave.get(value)
	cfg.RowSize = 1024 << gbRowSize.get(value)
	if gen == GenerationR800 {
		cfg.BankInterleave = 1 << gbBankInterleave.get(value)
	}
	return cfg
}

// Encode builds a GB_ADDR_CONFIG value with the field layout of the given generation
func (c GbAddrConfig) Encode(gen Generation) uint32 {
	value := gbNumPipes.put(addrutil.Log2NonPow2(c.NumPipes))

	if gen.IsV2() {
		value |= gfx9PipeInterleave.put(addrutil.Log2NonPow2(c.PipeInterleaveBytes / 256))
		value |= gfx9MaxCompFrags.put(addrutil.Log2NonPow2(max(c.MaxCompressedFrags, 1)))
		value |= gfx9NumSE.put(addrutil.Log2NonPow2(max(c.NumShaderEngines, 1)))
		value |= gfx9NumRbPerSE.put(addrutil.Log2NonPow2(max(c.NumRbPerSE, 1)))
		if gen == GenerationGFX9 {
			value |= gfx9NumBanks.put(addrutil.Log2NonPow2(max(c.NumBanks, 1)))
		} else {
			value |= gfx10NumPkrs.put(addrutil.Log2NonPow2(max(c.NumPkrs, 1)))
		}
		return value
	}

	value |= gbPipeInterleave.put(addrutil.Log2NonPow2(c.PipeInterleaveBytes / 256))
	value |= gbRowSize.put(addrutil.Log2NonPow2(c.RowSize / 1024))
	if gen == GenerationR800 {
		value |= gbBankInterleave.put(addrutil.Log2NonPow2(max(c.BankInterleave, 1)))
	}
	return value
}

// DecodeNumBanks decodes the NoOfBanks register value
func DecodeNumBanks(value uint32) (uint32, error) {
	switch value {
	case 0:
		return 4, nil
	case 1:
		return 8, nil
	case 2:
		return 16, nil
	}
	return 0, errors.Wrapf(ErrInvalidGbRegValues, "bank count encoding %d", value)
}

var arrayModeToTileMode = [16]TileMode{
	TileModeLinearGeneral,
	TileModeLinearAligned,
	TileMode1DTiledThin1,
	TileMode1DTiledThick,
	TileMode2DTiledThin1,
	TileModePrtTiledThin1,
	TileModePrt2DTiledThin1,
	TileMode2DTiledThick,
	TileMode2DTiledXThick,
	TileModePrtTiledThick,
	TileModePrt2DTiledThick,
	TileModePrt3DTiledThin1,
	TileMode3DTiledThin1,
	TileMode3DTiledThick,
	TileMode3DTiledXThick,
	TileModePrt3DTiledThick,
}

var siMicroTileModes = [4]equation.MicroTileType{
	equation.MicroTileDisplayable,
	equation.MicroTileNonDisplayable,
	equation.MicroTileDepthSampleOrder,
	equation.MicroTileThick,
}

var ciMicroTileModes = [5]equation.MicroTileType{
	equation.MicroTileDisplayable,
	equation.MicroTileNonDisplayable,
	equation.MicroTileDepthSampleOrder,
	equation.MicroTileRotated,
	equation.MicroTileThick,
}

// TileModeRegister is a decoded GB_TILE_MODEn value. SI keeps the micro tile type and bank
// parameters in this register. CI moves the bank parameters to GB_MACROTILE_MODEn and uses
// MicroTileModeNew.
type TileModeRegister struct {
	TileMode         TileMode
	MicroTileType    equation.MicroTileType
	MicroTileTypeNew equation.MicroTileType
	PipeConfig       PipeConfig
	TileSplitBytes   uint32
	BankWidth        uint32
	BankHeight       uint32
	MacroAspectRatio uint32
	Banks            uint32
	SampleSplit      uint32
}

// DecodeTileModeRegister decodes one GB_TILE_MODEn value
func DecodeTileModeRegister(value uint32) (TileModeRegister, error) {
	reg := TileModeRegister{
		TileMode:         arrayModeToTileMode[tmArrayMode.get(value)],
		MicroTileType:    siMicroTileModes[tmMicroTileMode.get(value)],
		PipeConfig:       PipeConfig(tmPipeConfig.get(value) + 1),
		TileSplitBytes:   64 << tmTileSplit.get(value),
		BankWidth:        1 << tmBankWidth.get(value),
		BankHeight:       1 << tmBankHeight.get(value),
		MacroAspectRatio: 1 << tmMacroTileAspect.get(value),
		Banks:            2 << tmNumBanks.get(value),
		SampleSplit:      1 << tmSampleSplit.get(value),
	}

	newMode := tmMicroTileModeNew.get(value)
	if newMode >= uint32(len(ciMicroTileModes)) {
		return reg, errors.Wrapf(ErrInvalidGbRegValues, "micro tile mode %d", newMode)
	}
	reg.MicroTileTypeNew = ciMicroTileModes[newMode]

	if reg.PipeConfig.NumPipes() == 0 {
		return reg, errors.Wrapf(ErrInvalidGbRegValues, "pipe config %d", tmPipeConfig.get(value))
	}
	return reg, nil
}

// Encode builds the GB_TILE_MODEn value for the register fields
func (r TileModeRegister) Encode() uint32 {
	var arrayMode uint32
	for i, mode := range arrayModeToTileMode {
		if mode == r.TileMode {
			arrayMode = uint32(i)
		}
	}

	var microMode, microModeNew uint32
	for i, t := range siMicroTileModes {
		if t == r.MicroTileType {
			microMode = uint32(i)
		}
	}
	for i, t := range ciMicroTileModes {
		if t == r.MicroTileTypeNew {
			microModeNew = uint32(i)
		}
	}

	return tmMicroTileMode.put(microMode) |
		tmArrayMode.put(arrayMode) |
		tmPipeConfig.put(uint32(max(r.PipeConfig, 1))-1) |
		tmTileSplit.put(addrutil.Log2NonPow2(max(r.TileSplitBytes, 64)/64)) |
		tmBankWidth.put(addrutil.Log2NonPow2(max(r.BankWidth, 1))) |
		tmBankHeight.put(addrutil.Log2NonPow2(max(r.BankHeight, 1))) |
		tmMacroTileAspect.put(addrutil.Log2NonPow2(max(r.MacroAspectRatio, 1))) |
		tmNumBanks.put(addrutil.Log2NonPow2(max(r.Banks, 2)/2)) |
		tmMicroTileModeNew.put(microModeNew) |
		tmSampleSplit.put(addrutil.Log2NonPow2(max(r.SampleSplit, 1)))
}

// MacroTileModeRegister is a decoded GB_MACROTILE_MODEn value
type MacroTileModeRegister struct {
	BankWidth        uint32
	BankHeight       uint32
	MacroAspectRatio uint32
	Banks            uint32
}

func DecodeMacroTileModeRegister(value uint32) MacroTileModeRegister {
	return MacroTileModeRegister{
		BankWidth:        1 << mtmBankWidth.get(value),
		BankHeight:       1 << mtmBankHeight.get(value),
		MacroAspectRatio: 1 << mtmMacroTileAspect.get(value),
		Banks:            2 << mtmNumBanks.get(value),
	}
}

func (r MacroTileModeRegister) Encode() uint32 {
	return mtmBankWidth.put(addrutil.Log2NonPow2(max(r.BankWidth, 1))) |
		mtmBankHeight.put(addrutil.Log2NonPow2(max(r.BankHeight, 1))) |
		mtmMacroTileAspect.put(addrutil.Log2NonPow2(max(r.MacroAspectRatio, 1))) |
		mtmNumBanks.put(addrutil.Log2NonPow2(max(r.Banks, 2)/2))
}

func decodeV1AddrConfig(l *Lib, regs *RegisterValues) error {
	cfg := DecodeGbAddrConfig(l.generation, regs.GbAddrConfig)
	if cfg.NumPipes < 2 || cfg.NumPipes > 16 {
		return errors.Wrapf(ErrInvalidGbRegValues, "%d pipes", cfg.NumPipes)
	}
	if cfg.PipeInterleaveBytes > 512 {
		return errors.Wrapf(ErrInvalidGbRegValues, "pipe interleave %d", cfg.PipeInterleaveBytes)
	}
	if cfg.RowSize > 4096 {
		return errors.Wrapf(ErrInvalidGbRegValues, "row size %d", cfg.RowSize)
	}

	banks, err := DecodeNumBanks(regs.NoOfBanks)
	if err != nil {
		return err
	}

	l.chip.addrConfig = cfg
	l.chip.numPipes = cfg.NumPipes
	l.chip.pipeInterleave = cfg.PipeInterleaveBytes
	l.chip.bankInterleave = cfg.BankInterleave
	l.chip.rowSize = cfg.RowSize
	l.chip.numBanks = banks
	l.chip.numRanks = max(regs.NoOfRanks, 1)
	l.chip.pipeConfig = defaultPipeConfig(cfg.NumPipes)
	return nil
}

func r800InitGlobalParams(l *Lib, regs *RegisterValues) error {
	return decodeV1AddrConfig(l, regs)
}

func siInitGlobalParams(l *Lib, regs *RegisterValues) error {
	if err := decodeV1AddrConfig(l, regs); err != nil {
		return err
	}
	if l.chip.bankInterleave != 1 {
		return errors.Wrap(ErrInvalidGbRegValues, "bank interleave")
	}

	l.tileTable = make([]TileModeRegister, 0, len(regs.TileConfig))
	for i, value := range regs.TileConfig {
		reg, err := DecodeTileModeRegister(value)
		if err != nil {
			return errors.Wrapf(err, "tile mode register %d", i)
		}
		l.tileTable = append(l.tileTable, reg)
	}
	return nil
}

func ciInitGlobalParams(l *Lib, regs *RegisterValues) error {
	if err := siInitGlobalParams(l, regs); err != nil {
		return err
	}

	l.macroTileTable = make([]MacroTileModeRegister, 0, len(regs.MacroTileConfig))
	for _, value := range regs.MacroTileConfig {
		l.macroTileTable = append(l.macroTileTable, DecodeMacroTileModeRegister(value))
	}
	return nil
}

func decodeV2AddrConfig(l *Lib, regs *RegisterValues) error {
	cfg := DecodeGbAddrConfig(l.generation, regs.GbAddrConfig)
	if cfg.NumPipes > 64 {
		return errors.Wrapf(ErrInvalidGbRegValues, "%d pipes", cfg.NumPipes)
	}
	if cfg.PipeInterleaveBytes > 2048 {
		return errors.Wrapf(ErrInvalidGbRegValues, "pipe interleave %d", cfg.PipeInterleaveBytes)
	}

	l.chip.addrConfig = cfg
	l.chip.numPipes = cfg.NumPipes
	l.chip.pipeInterleave = cfg.PipeInterleaveBytes
	l.chip.bankInterleave = 1
	l.chip.numBanks = max(cfg.NumBanks, 1)
	l.chip.numRanks = max(regs.NoOfRanks, 1)
	return nil
}

func gfx9InitGlobalParams(l *Lib, regs *RegisterValues) error {
	return decodeV2AddrConfig(l, regs)
}

func gfx10InitGlobalParams(l *Lib, regs *RegisterValues) error {
	if err := decodeV2AddrConfig(l, regs); err != nil {
		return err
	}
	// packers take the place of banks in the pipe/bank XOR
	l.chip.numBanks = max(l.chip.addrConfig.NumPkrs, 1)
	return nil
}
