package addrlib_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/addrlib"
)

func TestCombineBankPipeSwizzle(t *testing.T) {
	lib := createLib(t, r800Chip(4))

	in := addrlib.NewCombineBankPipeSwizzleInput()
	in.TileMode = addrlib.TileMode2DTiledThin1
	in.BankSwizzle = 2
	in.PipeSwizzle = 1
	out := addrlib.NewTileSwizzleOutput()
	require.NoError(t, lib.CombineBankPipeSwizzle(&in, &out))
	// bank 2 * 4 pipes + pipe 1 pipe interleaves, in 256 byte units
	require.Equal(t, uint32(9), out.TileSwizzle)

	in.BaseAddr = 0x10100
	require.NoError(t, lib.CombineBankPipeSwizzle(&in, &out))
	require.Equal(t, uint32(0x108), out.TileSwizzle)
}

func TestExtractBankPipeSwizzle_RoundTrip(t *testing.T) {
	lib := createLib(t, r800Chip(4))

	for bank := uint32(0); bank < 4; bank++ {
		for pipe := uint32(0); pipe < 4; pipe++ {
			in := addrlib.NewCombineBankPipeSwizzleInput()
			in.TileMode = addrlib.TileMode2DTiledThin1
			in.BankSwizzle = bank
			in.PipeSwizzle = pipe
			combined := addrlib.NewTileSwizzleOutput()
			require.NoError(t, lib.CombineBankPipeSwizzle(&in, &combined))

			ex := addrlib.NewExtractBankPipeSwizzleInput()
			ex.TileMode = addrlib.TileMode2DTiledThin1
			ex.TileSwizzle = combined.TileSwizzle
			out := addrlib.NewExtractBankPipeSwizzleOutput()
			require.NoError(t, lib.ExtractBankPipeSwizzle(&ex, &out))
			require.Equal(t, bank, out.BankSwizzle)
			require.Equal(t, pipe, out.PipeSwizzle)
		}
	}
}

func TestCombineBankPipeSwizzle_OutOfRange(t *testing.T) {
	lib := createLib(t, r800Chip(2))

	in := addrlib.NewCombineBankPipeSwizzleInput()
	in.TileMode = addrlib.TileMode2DTiledThin1
	in.BankSwizzle = 4
	out := addrlib.NewTileSwizzleOutput()
	require.True(t, errors.Is(lib.CombineBankPipeSwizzle(&in, &out), addrlib.ErrInvalidParams))

	in.BankSwizzle = 0
	in.PipeSwizzle = 2
	require.True(t, errors.Is(lib.CombineBankPipeSwizzle(&in, &out), addrlib.ErrInvalidParams))
}

func TestSwizzle_NotMacroTiled(t *testing.T) {
	lib := createLib(t, r800Chip(2))

	in := addrlib.NewCombineBankPipeSwizzleInput()
	in.TileMode = addrlib.TileMode1DTiledThin1
	in.BankSwizzle = 3
	out := addrlib.NewTileSwizzleOutput()
	out.TileSwizzle = 77
	require.NoError(t, lib.CombineBankPipeSwizzle(&in, &out))
	require.Zero(t, out.TileSwizzle)

	base := addrlib.NewBaseSwizzleInput()
	base.TileMode = addrlib.TileModeLinearAligned
	base.SurfIndex = 5
	require.NoError(t, lib.ComputeBaseSwizzle(&base, &out))
	require.Zero(t, out.TileSwizzle)
}

func TestComputeBaseSwizzle(t *testing.T) {
	testCases := []struct {
		name      string
		banks     uint32
		mode      addrlib.TileMode
		option    addrlib.SwizzleGenOption
		reduce    bool
		surfIndex uint32
		expected  uint32
	}{
		{name: "First", banks: 4, mode: addrlib.TileMode2DTiledThin1, surfIndex: 0, expected: 0},
		{name: "Second", banks: 4, mode: addrlib.TileMode2DTiledThin1, surfIndex: 1, expected: 1 * 4},
		{name: "Fourth", banks: 4, mode: addrlib.TileMode2DTiledThin1, surfIndex: 3, expected: 3 * 4},
		{name: "WrapsAround", banks: 4, mode: addrlib.TileMode2DTiledThin1, surfIndex: 4, expected: 0},
		{name: "3DMovesPipe", banks: 4, mode: addrlib.TileMode3DTiledThin1, surfIndex: 1, expected: 1*4 + 1},
		{name: "3DSixth", banks: 4, mode: addrlib.TileMode3DTiledThin1, surfIndex: 6, expected: 2*4 + 2},
		// eight banks walk 0 3 6 1 4 7 2 5
		{name: "EightBanks", banks: 8, mode: addrlib.TileMode2DTiledThin1, surfIndex: 3, expected: 1 * 4},
		{name: "EightBanksLinear", banks: 8, mode: addrlib.TileMode2DTiledThin1, option: addrlib.SwizzleGenLinear, surfIndex: 3, expected: 3 * 4},
		{name: "ReduceBankBit", banks: 8, mode: addrlib.TileMode2DTiledThin1, reduce: true, surfIndex: 3, expected: 3 * 4},
		{name: "ReduceBankBitWraps", banks: 8, mode: addrlib.TileMode2DTiledThin1, reduce: true, surfIndex: 5, expected: 1 * 4},
		{name: "ReduceBankBitLinear", banks: 8, mode: addrlib.TileMode2DTiledThin1, option: addrlib.SwizzleGenLinear, reduce: true, surfIndex: 6, expected: 2 * 4},
		{name: "TwoBanksStayPut", banks: 2, mode: addrlib.TileMode2DTiledThin1, reduce: true, surfIndex: 1, expected: 0},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			chip := r800Chip(4)
			chip.banks = testCase.banks
			lib := createLib(t, chip)

			in := addrlib.NewBaseSwizzleInput()
			in.TileMode = testCase.mode
			in.SurfIndex = testCase.surfIndex
			in.GenOption = testCase.option
			in.ReduceBankBit = testCase.reduce
			out := addrlib.NewTileSwizzleOutput()
			require.NoError(t, lib.ComputeBaseSwizzle(&in, &out))
			require.Equal(t, testCase.expected, out.TileSwizzle)
		})
	}
}

func TestComputeSliceTileSwizzle(t *testing.T) {
	lib := createLib(t, r800Chip(4))

	in := addrlib.NewSliceTileSwizzleInput()
	in.TileMode = addrlib.TileMode3DTiledThin1
	in.Slice = 1
	out := addrlib.NewTileSwizzleOutput()
	require.NoError(t, lib.ComputeSliceTileSwizzle(&in, &out))
	// 3D modes rotate one pipe per slice on 4 pipes, and the bank only once every pipe was used
	require.Equal(t, uint32(1), out.TileSwizzle)

	in.Slice = 4
	require.NoError(t, lib.ComputeSliceTileSwizzle(&in, &out))
	require.Equal(t, uint32(1*4+0), out.TileSwizzle)

	in.Slice = 5
	require.NoError(t, lib.ComputeSliceTileSwizzle(&in, &out))
	require.Equal(t, uint32(1*4+1), out.TileSwizzle)

	// 2D modes rotate banks/2-1 banks per slice
	in.TileMode = addrlib.TileMode2DTiledThin1
	in.Slice = 1
	in.BaseSwizzle = 9
	require.NoError(t, lib.ComputeSliceTileSwizzle(&in, &out))
	require.Equal(t, uint32(3*4+1), out.TileSwizzle)

	in.Slice = 0
	require.NoError(t, lib.ComputeSliceTileSwizzle(&in, &out))
	require.Equal(t, uint32(9), out.TileSwizzle)

	// thick modes rotate per group of four slices
	in.TileMode = addrlib.TileMode2DTiledThick
	in.Slice = 7
	in.BaseSwizzle = 0
	require.NoError(t, lib.ComputeSliceTileSwizzle(&in, &out))
	require.Equal(t, uint32(1*4), out.TileSwizzle)
}

func TestSwizzle_V2NotSupported(t *testing.T) {
	lib := createLib(t, chipDesc{
		engine:         addrlib.ChipEngineArcticIsland,
		family:         addrlib.ChipFamilyRV,
		pipes:          4,
		pipeInterleave: 256,
		banks:          4,
	})

	in := addrlib.NewBaseSwizzleInput()
	in.TileMode = addrlib.TileMode2DTiledThin1
	out := addrlib.NewTileSwizzleOutput()
	require.True(t, errors.Is(lib.ComputeBaseSwizzle(&in, &out), addrlib.ErrNotSupported))
}
