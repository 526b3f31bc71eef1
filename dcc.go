package addrlib

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/addrlib/addrutil"
	"golang.org/x/exp/slog"
)

// dccBytesPerKey is the color surface size one DCC key byte covers
const dccBytesPerKey = 256

type DccInfoInput struct {
	Size          uint32
	Bpp           uint32
	NumSamples    uint32
	ColorSurfSize uint64
	TileMode      TileMode
	TileConfig    *TileConfig
	// TileIndex selects the tiling when the Lib was created with CreateUseTileIndex; TileMode and
	// TileConfig are ignored then. MacroModeIndex is computed from the tile index unless given.
	TileIndex      int32
	MacroModeIndex int32
}

func NewDccInfoInput() DccInfoInput {
	return DccInfoInput{
		Size:           uint32(unsafe.Sizeof(DccInfoInput{})),
		TileIndex:      TileIndexInvalid,
		MacroModeIndex: TileIndexNoMacroIndex,
	}
}

type DccInfoOutput struct {
	Size            uint32
	DccRamBaseAlign uint32
	DccRamSize      uint64
	// DccFastClearSize is the part of the key a fast clear may write, 0 when the first sample split
	// does not end on a pipe interleave boundary
	DccFastClearSize uint64
	// SubLvlCompressible reports a key that fills whole base alignments, so the next mip level's key
	// can follow it
	SubLvlCompressible bool
	// DccRamSizeAligned is false when DccRamSize had to be padded
	DccRamSizeAligned bool
}

func NewDccInfoOutput() DccInfoOutput {
	return DccInfoOutput{Size: uint32(unsafe.Sizeof(DccInfoOutput{}))}
}

// ComputeDccInfo computes the size and base alignment of the DCC key of a macro tiled color surface.
// Only Volcanic Islands class chips have DCC.
func (l *Lib) ComputeDccInfo(in *DccInfoInput, out *DccInfoOutput) error {
	if err := l.checkSize("DccInfoInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("DccInfoOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}
	if l.ops.computeDccInfo == nil {
		return errors.Wrapf(ErrNotSupported, "DCC on %s", l.generation)
	}

	var tiling surfaceTiling
	if l.usesTileIndex(in.TileIndex) && in.MacroModeIndex >= 0 {
		info, err := l.ops.setupTileCfg(l, in.Bpp, in.TileIndex, in.MacroModeIndex, 0)
		if err != nil {
			return err
		}
		tiling = surfaceTiling{
			mode:           info.Mode,
			tileType:       info.TileType,
			config:         info.Config,
			tileIndex:      in.TileIndex,
			macroModeIndex: in.MacroModeIndex,
		}
	} else {
		var err error
		tiling, err = l.resolveTiling(in.TileMode, 0, in.TileIndex, in.TileConfig, nil, in.Bpp, max(in.NumSamples, 1))
		if err != nil {
			return err
		}
	}

	*out = DccInfoOutput{Size: out.Size}
	return l.ops.computeDccInfo(l, in, tiling, out)
}

func isVolcanicIslands(family ChipFamily) bool {
	return family == ChipFamilyVI || family == ChipFamilyCZ
}

func ciComputeDccInfo(l *Lib, in *DccInfoInput, tiling surfaceTiling, out *DccInfoOutput) error {
	if !isVolcanicIslands(l.config.ChipFamily) || !tiling.mode.IsMacroTiled() {
		return errors.Wrapf(ErrNotSupported, "DCC for %s on family %d", tiling.mode, l.config.ChipFamily)
	}
	if in.ColorSurfSize%dccBytesPerKey != 0 {
		return errInvalidf("color surface size %d is not a multiple of %d", in.ColorSurfSize, dccBytesPerKey)
	}
	if err := tiling.config.validate(); err != nil {
		return err
	}
	numPipes := tiling.config.PipeConfig.NumPipes()
	pipeAlign := uint64(numPipes) * uint64(l.chip.pipeInterleave)

	keySize := in.ColorSurfSize / dccBytesPerKey
	fastClearSize := keySize
	numSamples := max(in.NumSamples, 1)
	if numSamples > 1 {
		tileBytesPerSample := addrutil.BitsToBytes(in.Bpp * microTilePixels)
		samplesPerSplit := tiling.config.TileSplitBytes / tileBytesPerSample
		if samplesPerSplit > 0 && samplesPerSplit < numSamples {
			// only the first sample split can be fast cleared
			fastClearSize /= uint64(numSamples / samplesPerSplit)
			if fastClearSize%pipeAlign != 0 {
				fastClearSize = 0
			}
		}
	}

	out.DccRamBaseAlign = tiling.config.Banks * numPipes * l.chip.pipeInterleave
	out.DccRamSize = keySize
	out.DccFastClearSize = fastClearSize
	out.DccRamSizeAligned = true
	if keySize%uint64(out.DccRamBaseAlign) == 0 {
		out.SubLvlCompressible = true
		return nil
	}

	if keySize == fastClearSize {
		out.DccFastClearSize = addrutil.AlignUp(keySize, pipeAlign)
	}
	if keySize%pipeAlign != 0 {
		out.DccRamSizeAligned = false
		l.logger.Debug("AddrLib::ComputeDccInfo padded key",
			slog.Uint64("From", keySize),
			slog.Uint64("Align", pipeAlign),
		)
	}
	out.DccRamSize = addrutil.AlignUp(keySize, pipeAlign)
	return nil
}
