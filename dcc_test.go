package addrlib_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/addrlib"
)

func viChip() chipDesc {
	chip := ciChip()
	chip.family = addrlib.ChipFamilyVI
	return chip
}

func TestComputeDccInfo(t *testing.T) {
	lib := createLib(t, viChip())

	testCases := []struct {
		name          string
		numSamples    uint32
		colorSurfSize uint64
		expected      addrlib.DccInfoOutput
	}{
		{
			name:          "WholeBaseAlignments",
			numSamples:    1,
			colorSurfSize: 4 << 20,
			expected: addrlib.DccInfoOutput{
				DccRamBaseAlign:    16384,
				DccRamSize:         16384,
				DccFastClearSize:   16384,
				SubLvlCompressible: true,
				DccRamSizeAligned:  true,
			},
		},
		{
			name:          "PipeAligned",
			numSamples:    1,
			colorSurfSize: 1 << 20,
			expected: addrlib.DccInfoOutput{
				DccRamBaseAlign:   16384,
				DccRamSize:        4096,
				DccFastClearSize:  4096,
				DccRamSizeAligned: true,
			},
		},
		{
			name:          "Padded",
			numSamples:    1,
			colorSurfSize: 768 * 256,
			expected: addrlib.DccInfoOutput{
				DccRamBaseAlign:  16384,
				DccRamSize:       2048,
				DccFastClearSize: 2048,
			},
		},
		{
			name:          "SampleSplit",
			numSamples:    4,
			colorSurfSize: 4 << 20,
			expected: addrlib.DccInfoOutput{
				DccRamBaseAlign:    16384,
				DccRamSize:         16384,
				DccFastClearSize:   8192,
				SubLvlCompressible: true,
				DccRamSizeAligned:  true,
			},
		},
		{
			// half of 6144 does not end on a 2048 byte pipe interleave row
			name:          "SampleSplitNoFastClear",
			numSamples:    4,
			colorSurfSize: 6144 * 256,
			expected: addrlib.DccInfoOutput{
				DccRamBaseAlign:   16384,
				DccRamSize:        6144,
				DccRamSizeAligned: true,
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			in := addrlib.NewDccInfoInput()
			in.Bpp = 32
			in.NumSamples = testCase.numSamples
			in.ColorSurfSize = testCase.colorSurfSize
			in.TileIndex = siTile2DThin

			out := addrlib.NewDccInfoOutput()
			require.NoError(t, lib.ComputeDccInfo(&in, &out))

			testCase.expected.Size = out.Size
			require.Equal(t, testCase.expected, out)
		})
	}
}

func TestComputeDccInfo_ExplicitMacroModeIndex(t *testing.T) {
	chip := viChip()
	chip.macroConfig[2] = addrlib.MacroTileModeRegister{
		BankWidth:        1,
		BankHeight:       1,
		MacroAspectRatio: 1,
		Banks:            16,
	}.Encode()
	lib := createLib(t, chip)

	in := addrlib.NewDccInfoInput()
	in.Bpp = 32
	in.NumSamples = 1
	in.ColorSurfSize = 4 << 20
	in.TileIndex = siTile2DThin

	// 256 byte tiles select macro mode 2
	out := addrlib.NewDccInfoOutput()
	require.NoError(t, lib.ComputeDccInfo(&in, &out))
	require.Equal(t, uint32(16*8*256), out.DccRamBaseAlign)

	in.MacroModeIndex = 0
	out = addrlib.NewDccInfoOutput()
	require.NoError(t, lib.ComputeDccInfo(&in, &out))
	require.Equal(t, uint32(8*8*256), out.DccRamBaseAlign)
}

func TestComputeDccInfo_Unsupported(t *testing.T) {
	in := addrlib.NewDccInfoInput()
	in.Bpp = 32
	in.NumSamples = 1
	in.ColorSurfSize = 1 << 20
	in.TileIndex = siTile2DThin

	t.Run("BeforeVolcanicIslands", func(t *testing.T) {
		lib := createLib(t, ciChip())
		out := addrlib.NewDccInfoOutput()
		err := lib.ComputeDccInfo(&in, &out)
		require.True(t, errors.Is(err, addrlib.ErrNotSupported), "%+v", err)
	})

	t.Run("SouthernIslands", func(t *testing.T) {
		lib := createLib(t, siChip())
		out := addrlib.NewDccInfoOutput()
		err := lib.ComputeDccInfo(&in, &out)
		require.True(t, errors.Is(err, addrlib.ErrNotSupported), "%+v", err)
	})

	t.Run("MicroTiled", func(t *testing.T) {
		lib := createLib(t, viChip())
		micro := in
		micro.TileIndex = siTile1DThin
		out := addrlib.NewDccInfoOutput()
		err := lib.ComputeDccInfo(&micro, &out)
		require.True(t, errors.Is(err, addrlib.ErrNotSupported), "%+v", err)
	})

	t.Run("PartialKeyByte", func(t *testing.T) {
		lib := createLib(t, viChip())
		partial := in
		partial.ColorSurfSize++
		out := addrlib.NewDccInfoOutput()
		err := lib.ComputeDccInfo(&partial, &out)
		require.True(t, errors.Is(err, addrlib.ErrInvalidParams), "%+v", err)
	})
}
