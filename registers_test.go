package addrlib_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/addrlib"
	"github.com/vkngwrapper/addrlib/equation"
)

func TestGbAddrConfig_RoundTrip(t *testing.T) {
	cfg := addrlib.GbAddrConfig{
		NumPipes:            8,
		PipeInterleaveBytes: 512,
		BankInterleave:      2,
		RowSize:             4096,
	}

	decoded := addrlib.DecodeGbAddrConfig(addrlib.GenerationR800, cfg.Encode(addrlib.GenerationR800))
	require.Equal(t, cfg, decoded)

	// SI has no bank interleave field
	decoded = addrlib.DecodeGbAddrConfig(addrlib.GenerationSI, cfg.Encode(addrlib.GenerationSI))
	require.Equal(t, uint32(1), decoded.BankInterleave)
	require.Equal(t, uint32(8), decoded.NumPipes)
	require.Equal(t, uint32(4096), decoded.RowSize)
}

func TestGbAddrConfig_GFX9(t *testing.T) {
	cfg := addrlib.GbAddrConfig{
		NumPipes:            16,
		PipeInterleaveBytes: 256,
		BankInterleave:      1,
		MaxCompressedFrags:  4,
		NumBanks:            8,
		NumShaderEngines:    4,
		NumRbPerSE:          2,
	}

	decoded := addrlib.DecodeGbAddrConfig(addrlib.GenerationGFX9, cfg.Encode(addrlib.GenerationGFX9))
	require.Equal(t, cfg, decoded)
}

func TestDecodeNumBanks(t *testing.T) {
	for encoded, banks := range []uint32{4, 8, 16} {
		decoded, err := addrlib.DecodeNumBanks(uint32(encoded))
		require.NoError(t, err)
		require.Equal(t, banks, decoded)
	}

	_, err := addrlib.DecodeNumBanks(3)
	require.True(t, errors.Is(err, addrlib.ErrInvalidGbRegValues))
}

func TestTileModeRegister_RoundTrip(t *testing.T) {
	reg := addrlib.TileModeRegister{
		TileMode:         addrlib.TileMode2DTiledThin1,
		MicroTileType:    equation.MicroTileNonDisplayable,
		MicroTileTypeNew: equation.MicroTileRotated,
		PipeConfig:       addrlib.PipeConfigP8_32x32_16x16,
		TileSplitBytes:   256,
		BankWidth:        2,
		BankHeight:       4,
		MacroAspectRatio: 2,
		Banks:            8,
		SampleSplit:      2,
	}

	decoded, err := addrlib.DecodeTileModeRegister(reg.Encode())
	require.NoError(t, err)
	require.Equal(t, reg, decoded)
}

func TestDecodeTileModeRegister_BadPipeConfig(t *testing.T) {
	reg := addrlib.TileModeRegister{
		TileMode:   addrlib.TileMode1DTiledThin1,
		PipeConfig: addrlib.PipeConfig(3),
	}

	_, err := addrlib.DecodeTileModeRegister(reg.Encode())
	require.True(t, errors.Is(err, addrlib.ErrInvalidGbRegValues))
}

func TestMacroTileModeRegister_RoundTrip(t *testing.T) {
	reg := addrlib.MacroTileModeRegister{
		BankWidth:        1,
		BankHeight:       2,
		MacroAspectRatio: 4,
		Banks:            16,
	}
	require.Equal(t, reg, addrlib.DecodeMacroTileModeRegister(reg.Encode()))
}

func TestCreate_SITileTable(t *testing.T) {
	chip := siChip()
	lib := createLib(t, chip)

	stats := lib.BuildStatsString()
	require.Contains(t, stats, `"TileModes":[`)
	require.Contains(t, stats, addrlib.TileMode2DTiledThin1.String())
	require.NotEmpty(t, lib.GetEquationTable())
}

func TestCreate_SIBadTileRegister(t *testing.T) {
	chip := siChip()
	chip.tileConfig = append(chip.tileConfig, 7<<22)

	input := chip.createInput(allowAllocator(t))
	_, err := addrlib.Create(&input)
	require.True(t, errors.Is(err, addrlib.ErrInvalidGbRegValues))
}
