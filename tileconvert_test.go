package addrlib_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/addrlib"
	"github.com/vkngwrapper/addrlib/equation"
)

func TestConvertTileIndex_SI(t *testing.T) {
	lib := createLib(t, siChip())

	in := addrlib.NewConvertTileIndexInput()
	in.TileIndex = siTile2DThin
	in.Bpp = 32
	out := addrlib.NewConvertTileIndexOutput()
	require.NoError(t, lib.ConvertTileIndex(&in, &out))
	require.Equal(t, addrlib.TileMode2DTiledThin1, out.TileMode)
	require.Equal(t, equation.MicroTileNonDisplayable, out.TileType)
	require.Equal(t, addrlib.TileConfig{
		Banks:            8,
		BankWidth:        1,
		BankHeight:       2,
		MacroAspectRatio: 1,
		TileSplitBytes:   2048,
		PipeConfig:       addrlib.PipeConfigP8_32x32_16x16,
	}, out.TileConfig)

	in.TileInfoHW = true
	hwOut := addrlib.NewConvertTileIndexOutput()
	require.NoError(t, lib.ConvertTileIndex(&in, &hwOut))
	require.Equal(t, addrlib.TileConfig{
		Banks:            2,
		BankWidth:        0,
		BankHeight:       1,
		MacroAspectRatio: 0,
		TileSplitBytes:   5,
		PipeConfig:       addrlib.PipeConfigP8_32x32_16x16 - 1,
	}, hwOut.TileConfig)

	reverse := addrlib.NewConvertTileInfoToHWInput()
	reverse.Reverse = true
	reverse.TileConfig = hwOut.TileConfig
	realOut := addrlib.NewConvertTileInfoToHWOutput()
	require.NoError(t, lib.ConvertTileInfoToHW(&reverse, &realOut))
	require.Equal(t, out.TileConfig, realOut.TileConfig)

	in.TileIndex = int32(len(siTileTable))
	err := lib.ConvertTileIndex(&in, &out)
	require.True(t, errors.Is(err, addrlib.ErrInvalidParams), "%+v", err)
}

func TestConvertTileIndex_RoundTrip(t *testing.T) {
	for _, chip := range []struct {
		name string
		desc chipDesc
	}{
		{name: "SI", desc: siChip()},
		{name: "CI", desc: ciChip()},
	} {
		t.Run(chip.name, func(t *testing.T) {
			lib := createLib(t, chip.desc)

			for index := range siTileTable {
				for _, bpp := range []uint32{8, 32} {
					in := addrlib.NewConvertTileIndex1Input()
					in.TileIndex = int32(index)
					in.Bpp = bpp
					in.NumSamples = 1
					out := addrlib.NewConvertTileIndexOutput()
					require.NoError(t, lib.ConvertTileIndex1(&in, &out))

					indexIn := addrlib.NewTileIndexInput()
					indexIn.TileMode = out.TileMode
					indexIn.TileType = out.TileType
					indexIn.TileConfig = &out.TileConfig
					indexOut := addrlib.NewTileIndexOutput()
					require.NoError(t, lib.GetTileIndex(&indexIn, &indexOut))
					require.Equal(t, int32(index), indexOut.Index, "%s %s at %d bpp", out.TileMode, out.TileType, bpp)

					hwIn := addrlib.NewConvertTileInfoToHWInput()
					hwIn.TileConfig = out.TileConfig
					hwOut := addrlib.NewConvertTileInfoToHWOutput()
					require.NoError(t, lib.ConvertTileInfoToHW(&hwIn, &hwOut))

					hwIn.Reverse = true
					hwIn.TileConfig = hwOut.TileConfig
					realOut := addrlib.NewConvertTileInfoToHWOutput()
					require.NoError(t, lib.ConvertTileInfoToHW(&hwIn, &realOut))
					require.Equal(t, out.TileConfig, realOut.TileConfig)
				}
			}
		})
	}
}

func TestConvertTileInfoToHW_FromTileIndex(t *testing.T) {
	lib := createLib(t, siChip())

	in := addrlib.NewConvertTileInfoToHWInput()
	in.TileIndex = siTile2DDisplay
	in.Bpp = 32
	out := addrlib.NewConvertTileInfoToHWOutput()
	require.NoError(t, lib.ConvertTileInfoToHW(&in, &out))
	require.Equal(t, uint32(5), out.TileConfig.TileSplitBytes)
	require.Equal(t, uint32(2), out.TileConfig.Banks)
}

func TestConvertTileInfoToHW_Invalid(t *testing.T) {
	lib := createLib(t, siChip())

	valid := addrlib.TileConfig{
		Banks:            8,
		BankWidth:        1,
		BankHeight:       1,
		MacroAspectRatio: 1,
		TileSplitBytes:   256,
		PipeConfig:       addrlib.PipeConfigP4_16x16,
	}

	testCases := []struct {
		name   string
		modify func(c *addrlib.TileConfig)
	}{
		{name: "Banks", modify: func(c *addrlib.TileConfig) { c.Banks = 32 }},
		{name: "BankWidth", modify: func(c *addrlib.TileConfig) { c.BankWidth = 3 }},
		{name: "BankHeight", modify: func(c *addrlib.TileConfig) { c.BankHeight = 16 }},
		{name: "MacroAspectRatio", modify: func(c *addrlib.TileConfig) { c.MacroAspectRatio = 0 }},
		{name: "TileSplit", modify: func(c *addrlib.TileConfig) { c.TileSplitBytes = 8192 }},
		{name: "PipeConfig", modify: func(c *addrlib.TileConfig) { c.PipeConfig = addrlib.PipeConfigInvalid }},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			in := addrlib.NewConvertTileInfoToHWInput()
			in.TileConfig = valid
			testCase.modify(&in.TileConfig)
			out := addrlib.NewConvertTileInfoToHWOutput()
			err := lib.ConvertTileInfoToHW(&in, &out)
			require.True(t, errors.Is(err, addrlib.ErrInvalidParams), "%+v", err)
		})
	}

	in := addrlib.NewConvertTileInfoToHWInput()
	in.Reverse = true
	in.TileConfig = addrlib.TileConfig{Banks: 4}
	out := addrlib.NewConvertTileInfoToHWOutput()
	err := lib.ConvertTileInfoToHW(&in, &out)
	require.True(t, errors.Is(err, addrlib.ErrInvalidParams), "%+v", err)
}

func TestConvertTileInfoToHW_R800KeepsPipeConfig(t *testing.T) {
	lib := createLib(t, r800Chip(4))

	in := addrlib.NewConvertTileInfoToHWInput()
	in.TileConfig = addrlib.TileConfig{
		Banks:            4,
		BankWidth:        2,
		BankHeight:       4,
		MacroAspectRatio: 2,
		TileSplitBytes:   4096,
		PipeConfig:       addrlib.PipeConfigP4_8x16,
	}
	out := addrlib.NewConvertTileInfoToHWOutput()
	require.NoError(t, lib.ConvertTileInfoToHW(&in, &out))
	require.Equal(t, addrlib.TileConfig{
		Banks:            1,
		BankWidth:        1,
		BankHeight:       2,
		MacroAspectRatio: 1,
		TileSplitBytes:   6,
		PipeConfig:       addrlib.PipeConfigP4_8x16,
	}, out.TileConfig)
}

func TestGetMacroModeIndex(t *testing.T) {
	lib := createLib(t, ciChip())

	testCases := []struct {
		name      string
		tileIndex int32
		bpp       uint32
		numFrags  uint32
		flags     addrlib.SurfaceFlags
		expected  int32
	}{
		{name: "Color1x", tileIndex: siTile2DThin, bpp: 32, numFrags: 1, expected: 2},
		{name: "ColorSplitBySamples", tileIndex: siTile2DThin, bpp: 32, numFrags: 4, expected: 3},
		{name: "Color8bpp", tileIndex: siTile2DThin, bpp: 8, numFrags: 1, expected: 0},
		// depth takes the 2048 byte TILE_SPLIT field
		{name: "Depth8x", tileIndex: siTile2DThin, bpp: 32, numFrags: 8, flags: addrlib.SurfaceDepth, expected: 5},
		{name: "MicroTiled", tileIndex: siTile1DThin, bpp: 32, numFrags: 1, expected: addrlib.TileIndexNoMacroIndex},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			in := addrlib.NewMacroModeIndexInput()
			in.TileIndex = testCase.tileIndex
			in.Bpp = testCase.bpp
			in.NumFrags = testCase.numFrags
			in.Flags = testCase.flags
			out := addrlib.NewMacroModeIndexOutput()
			require.NoError(t, lib.GetMacroModeIndex(&in, &out))
			require.Equal(t, testCase.expected, out.MacroModeIndex)
		})
	}

	siLib := createLib(t, siChip())
	in := addrlib.NewMacroModeIndexInput()
	in.TileIndex = siTile2DThin
	in.Bpp = 32
	out := addrlib.NewMacroModeIndexOutput()
	require.NoError(t, siLib.GetMacroModeIndex(&in, &out))
	require.Equal(t, addrlib.TileIndexNoMacroIndex, out.MacroModeIndex)
}

func TestGetTileIndex(t *testing.T) {
	lib := createLib(t, siChip())

	lookup := func(mode addrlib.TileMode, tileType equation.MicroTileType, config *addrlib.TileConfig) int32 {
		in := addrlib.NewTileIndexInput()
		in.TileMode = mode
		in.TileType = tileType
		in.TileConfig = config
		out := addrlib.NewTileIndexOutput()
		require.NoError(t, lib.GetTileIndex(&in, &out))
		return out.Index
	}

	require.Equal(t, siTileLinear, lookup(addrlib.TileModeLinearAligned, equation.MicroTileThick, nil))
	require.Equal(t, addrlib.TileIndexLinearGeneral, lookup(addrlib.TileModeLinearGeneral, equation.MicroTileDisplayable, nil))
	require.Equal(t, siTile1DThin, lookup(addrlib.TileMode1DTiledThin1, equation.MicroTileNonDisplayable, nil))
	require.Equal(t, addrlib.TileIndexInvalid, lookup(addrlib.TileMode1DTiledThin1, equation.MicroTileRotated, nil))
	require.Equal(t, siTile2DDisplay, lookup(addrlib.TileMode2DTiledThin1, equation.MicroTileDisplayable, nil))

	config := addrlib.TileConfig{
		Banks:            8,
		BankWidth:        1,
		BankHeight:       2,
		MacroAspectRatio: 1,
		TileSplitBytes:   2048,
		PipeConfig:       addrlib.PipeConfigP8_32x32_16x16,
	}
	require.Equal(t, siTile2DThin, lookup(addrlib.TileMode2DTiledThin1, equation.MicroTileNonDisplayable, &config))
	config.BankHeight = 4
	require.Equal(t, addrlib.TileIndexInvalid, lookup(addrlib.TileMode2DTiledThin1, equation.MicroTileNonDisplayable, &config))

	r800 := createLib(t, r800Chip(2))
	in := addrlib.NewTileIndexInput()
	out := addrlib.NewTileIndexOutput()
	err := r800.GetTileIndex(&in, &out)
	require.True(t, errors.Is(err, addrlib.ErrNotSupported), "%+v", err)
}
