package addrlib

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/addrlib/addrutil"
	"github.com/vkngwrapper/addrlib/equation"
)

const (
	// TileIndexInvalid means the surface supplies its tile mode and configuration directly
	TileIndexInvalid int32 = -1
	// TileIndexNoMacroIndex means the macro tile table row has not been computed
	TileIndexNoMacroIndex int32 = -3
	// TileIndexLinearGeneral selects LINEAR_GENERAL, which has no row in the tile mode table
	TileIndexLinearGeneral int32 = 32
)

const prtMacroModeOffset = 8

// tileIndexInfo is the resolved content of a tile index
type tileIndexInfo struct {
	Mode           TileMode
	TileType       equation.MicroTileType
	Config         TileConfig
	MacroModeIndex int32
}

func r800DefaultTileConfig(l *Lib, mode TileMode) TileConfig {
	return TileConfig{
		Banks:            l.chip.numBanks,
		BankWidth:        1,
		BankHeight:       1,
		MacroAspectRatio: max(mode.flags().aspect, 1),
		TileSplitBytes:   l.chip.rowSize,
		PipeConfig:       l.chip.pipeConfig,
	}
}

func siDefaultTileConfig(l *Lib, mode TileMode) TileConfig {
	return TileConfig{
		Banks:            l.chip.numBanks,
		BankWidth:        1,
		BankHeight:       1,
		MacroAspectRatio: 1,
		TileSplitBytes:   l.chip.rowSize,
		PipeConfig:       l.chip.pipeConfig,
	}
}

func (l *Lib) tileRegister(index int32) (TileModeRegister, error) {
	if index < 0 || int(index) >= len(l.tileTable) {
		return TileModeRegister{}, errInvalidf("tile index %d outside a table of %d", index, len(l.tileTable))
	}
	return l.tileTable[index], nil
}

func siSetupTileCfg(l *Lib, bpp uint32, index, macroModeIndex int32, flags SurfaceFlags) (tileIndexInfo, error) {
	if index == TileIndexLinearGeneral {
		return tileIndexInfo{
			Mode:           TileModeLinearGeneral,
			TileType:       equation.MicroTileDisplayable,
			Config:         siDefaultTileConfig(l, TileModeLinearGeneral),
			MacroModeIndex: TileIndexNoMacroIndex,
		}, nil
	}

	reg, err := l.tileRegister(index)
	if err != nil {
		return tileIndexInfo{}, err
	}

	return tileIndexInfo{
		Mode:     reg.TileMode,
		TileType: reg.MicroTileType,
		Config: TileConfig{
			Banks:            reg.Banks,
			BankWidth:        reg.BankWidth,
			BankHeight:       reg.BankHeight,
			MacroAspectRatio: reg.MacroAspectRatio,
			TileSplitBytes:   reg.TileSplitBytes,
			PipeConfig:       reg.PipeConfig,
		},
		MacroModeIndex: TileIndexNoMacroIndex,
	}, nil
}

// ciTileSplit is the tile split a CI tile mode register gives a surface. Depth surfaces take the
// TILE_SPLIT field, color surfaces split by sample count.
func ciTileSplit(reg TileModeRegister, bpp uint32, flags SurfaceFlags) uint32 {
	if flags&(SurfaceDepth|SurfaceStencil) != 0 || reg.MicroTileTypeNew == equation.MicroTileDepthSampleOrder {
		return reg.TileSplitBytes
	}
	tileBytes1x := addrutil.BitsToBytes(bpp * 64 * reg.TileMode.Thickness())
	return max(256, reg.SampleSplit*tileBytes1x)
}

func ciComputeMacroModeIndex(l *Lib, index int32, flags SurfaceFlags, bpp, numSamples uint32) (int32, error) {
	if len(l.macroTileTable) == 0 {
		return TileIndexNoMacroIndex, errors.Wrap(ErrNotSupported, "no macro tile mode table")
	}
	if index == TileIndexLinearGeneral {
		return TileIndexNoMacroIndex, nil
	}

	reg, err := l.tileRegister(index)
	if err != nil {
		return TileIndexNoMacroIndex, err
	}
	if !reg.TileMode.IsMacroTiled() {
		return TileIndexNoMacroIndex, nil
	}

	microTileBytes := addrutil.BitsToBytes(bpp*64*reg.TileMode.Thickness()) * max(numSamples, 1)
	tileBytes := min(ciTileSplit(reg, bpp, flags), microTileBytes)
	if tileBytes < 64 {
		return TileIndexNoMacroIndex, errInvalidf("tile bytes %d", tileBytes)
	}

	macroIndex := int32(addrutil.Log2NonPow2(tileBytes / 64))
	if reg.TileMode.IsPrt() {
		macroIndex += prtMacroModeOffset
	}
	if int(macroIndex) >= len(l.macroTileTable) {
		return TileIndexNoMacroIndex, errInvalidf("macro mode index %d outside a table of %d", macroIndex, len(l.macroTileTable))
	}
	return macroIndex, nil
}

func ciSetupTileCfg(l *Lib, bpp uint32, index, macroModeIndex int32, flags SurfaceFlags) (tileIndexInfo, error) {
	if index == TileIndexLinearGeneral {
		return siSetupTileCfg(l, bpp, index, macroModeIndex, flags)
	}

	reg, err := l.tileRegister(index)
	if err != nil {
		return tileIndexInfo{}, err
	}

	info := tileIndexInfo{
		Mode:           reg.TileMode,
		TileType:       reg.MicroTileTypeNew,
		MacroModeIndex: macroModeIndex,
		Config: TileConfig{
			Banks:            reg.Banks,
			BankWidth:        reg.BankWidth,
			BankHeight:       reg.BankHeight,
			MacroAspectRatio: reg.MacroAspectRatio,
			TileSplitBytes:   ciTileSplit(reg, bpp, flags),
			PipeConfig:       reg.PipeConfig,
		},
	}
	if reg.TileMode.IsThick() && info.TileType != equation.MicroTileThick {
		info.TileType = equation.MicroTileThick
	}

	if macroModeIndex < 0 {
		return info, nil
	}
	if int(macroModeIndex) >= len(l.macroTileTable) {
		return tileIndexInfo{}, errInvalidf("macro mode index %d outside a table of %d", macroModeIndex, len(l.macroTileTable))
	}

	macro := l.macroTileTable[macroModeIndex]
	info.Config.Banks = macro.Banks
	info.Config.BankWidth = macro.BankWidth
	info.Config.BankHeight = macro.BankHeight
	info.Config.MacroAspectRatio = macro.MacroAspectRatio
	return info, nil
}

// resolveTileIndex turns a tile index into a tile mode, micro tile type and configuration. A
// generation that cannot compute a macro mode index falls back to the tile mode table alone.
func (l *Lib) resolveTileIndex(index int32, flags SurfaceFlags, bpp, numSamples uint32) (tileIndexInfo, error) {
	if l.ops.setupTileCfg == nil {
		return tileIndexInfo{}, errors.Wrapf(ErrNotSupported, "tile index on %s", l.generation)
	}

	macroIndex := TileIndexNoMacroIndex
	if l.ops.computeMacroModeIndex != nil {
		computed, err := l.ops.computeMacroModeIndex(l, index, flags, bpp, numSamples)
		switch {
		case errors.Is(err, ErrNotSupported):
		case err != nil:
			return tileIndexInfo{}, err
		default:
			macroIndex = computed
		}
	}

	info, err := l.ops.setupTileCfg(l, bpp, index, macroIndex, flags)
	if err != nil {
		return tileIndexInfo{}, err
	}

	if macroIndex >= 0 && !info.Mode.IsMacroTiled() {
		return tileIndexInfo{}, internalErrorf("macro mode index %d resolved for %s", macroIndex, info.Mode)
	}
	if info.Mode.IsMacroTiled() {
		if err := info.Config.validate(); err != nil {
			return tileIndexInfo{}, errors.Wrapf(err, "tile index %d", index)
		}
	}
	return info, nil
}
