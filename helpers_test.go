package addrlib_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/addrlib"
	"github.com/vkngwrapper/addrlib/equation"
	mock_addrlib "github.com/vkngwrapper/addrlib/mocks"
	"go.uber.org/mock/gomock"
)

type chipDesc struct {
	engine         addrlib.ChipEngine
	family         addrlib.ChipFamily
	pipes          uint32
	pipeInterleave uint32
	rowSize        uint32
	banks          uint32
	tileConfig     []uint32
	macroConfig    []uint32
	flags          addrlib.CreateFlags
	minPitchAlign  uint32
}

func r800Chip(pipes uint32) chipDesc {
	return chipDesc{
		engine:         addrlib.ChipEngineR800,
		family:         addrlib.ChipFamilyEvergreen,
		pipes:          pipes,
		pipeInterleave: 256,
		rowSize:        2048,
		banks:          4,
	}
}

func encodeBanks(banks uint32) uint32 {
	switch banks {
	case 8:
		return 1
	case 16:
		return 2
	}
	return 0
}

func (c chipDesc) generation() addrlib.Generation {
	switch c.engine {
	case addrlib.ChipEngineR800:
		return addrlib.GenerationR800
	case addrlib.ChipEngineArcticIsland:
		if c.family == addrlib.ChipFamilyAI || c.family == addrlib.ChipFamilyRV {
			return addrlib.GenerationGFX9
		}
		return addrlib.GenerationGFX10
	}
	if c.family == addrlib.ChipFamilySI {
		return addrlib.GenerationSI
	}
	return addrlib.GenerationCI
}

func (c chipDesc) createInput(callbacks addrlib.SysMemCallbacks) addrlib.CreateInput {
	gen := c.generation()
	input := addrlib.NewCreateInput()
	input.ChipEngine = c.engine
	input.ChipFamily = c.family
	input.Callbacks = callbacks
	input.Flags = c.flags | addrlib.CreateFillSizeFields
	input.MinPitchAlignPixels = c.minPitchAlign
	input.RegValues = addrlib.RegisterValues{
		GbAddrConfig: addrlib.GbAddrConfig{
			NumPipes:            c.pipes,
			PipeInterleaveBytes: c.pipeInterleave,
			BankInterleave:      1,
			RowSize:             c.rowSize,
			NumBanks:            c.banks,
			NumPkrs:             c.banks,
		}.Encode(gen),
		NoOfBanks:       encodeBanks(c.banks),
		TileConfig:      c.tileConfig,
		MacroTileConfig: c.macroConfig,
	}
	return input
}

// createLib builds a Lib whose instance memory comes from a mock allocator that expects exactly one
// allocation and one free
func createLib(t *testing.T, chip chipDesc) *addrlib.Lib {
	ctrl := gomock.NewController(t)
	callbacks := mock_addrlib.NewMockSysMemCallbacks(ctrl)

	var mem []byte
	callbacks.EXPECT().Alloc(gomock.Any()).DoAndReturn(func(size int) []byte {
		mem = make([]byte, size)
		return mem
	})
	callbacks.EXPECT().Free(gomock.Any()).Do(func(buffer []byte) {
		require.Len(t, buffer, len(mem))
	})

	input := chip.createInput(callbacks)
	lib, err := addrlib.Create(&input)
	require.NoError(t, err)
	t.Cleanup(lib.Destroy)
	return lib
}

func computeSurface(t *testing.T, lib *addrlib.Lib, in addrlib.SurfaceInfoInput) addrlib.SurfaceInfoOutput {
	out := addrlib.NewSurfaceInfoOutput()
	require.NoError(t, lib.ComputeSurfaceInfo(&in, &out))
	return out
}

func surfaceInput(mode addrlib.TileMode, bpp, width, height, slices uint32) addrlib.SurfaceInfoInput {
	in := addrlib.NewSurfaceInfoInput()
	in.TileMode = mode
	in.Bpp = bpp
	in.Width = width
	in.Height = height
	in.NumSlices = slices
	in.NumSamples = 1
	return in
}

func tileReg(mode addrlib.TileMode, tileType equation.MicroTileType) uint32 {
	return addrlib.TileModeRegister{
		TileMode:         mode,
		MicroTileType:    tileType,
		MicroTileTypeNew: tileType,
		PipeConfig:       addrlib.PipeConfigP8_32x32_16x16,
		TileSplitBytes:   2048,
		BankWidth:        1,
		BankHeight:       2,
		MacroAspectRatio: 1,
		Banks:            8,
		SampleSplit:      2,
	}.Encode()
}

// siTileTable is indexed by the siTile constants
var siTileTable = []uint32{
	tileReg(addrlib.TileMode2DTiledThin1, equation.MicroTileDisplayable),
	tileReg(addrlib.TileMode2DTiledThin1, equation.MicroTileNonDisplayable),
	tileReg(addrlib.TileMode1DTiledThin1, equation.MicroTileNonDisplayable),
	tileReg(addrlib.TileModeLinearAligned, equation.MicroTileDisplayable),
	tileReg(addrlib.TileMode2DTiledThick, equation.MicroTileThick),
	tileReg(addrlib.TileMode1DTiledThick, equation.MicroTileThick),
}

const (
	siTile2DDisplay int32 = iota
	siTile2DThin
	siTile1DThin
	siTileLinear
	siTile2DThick
	siTile1DThick
)

func siChip() chipDesc {
	return chipDesc{
		engine:         addrlib.ChipEngineSouthernIsland,
		family:         addrlib.ChipFamilySI,
		pipes:          8,
		pipeInterleave: 256,
		rowSize:        2048,
		banks:          8,
		tileConfig:     siTileTable,
		flags:          addrlib.CreateUseTileIndex,
	}
}

func ciChip() chipDesc {
	chip := siChip()
	chip.family = addrlib.ChipFamilyCI
	for i := 0; i < 16; i++ {
		chip.macroConfig = append(chip.macroConfig, addrlib.MacroTileModeRegister{
			BankWidth:        1,
			BankHeight:       2,
			MacroAspectRatio: 1,
			Banks:            8,
		}.Encode())
	}
	return chip
}

// allowAllocator returns an allocator mock that accepts any use
func allowAllocator(t *testing.T) *mock_addrlib.MockSysMemCallbacks {
	callbacks := mock_addrlib.NewMockSysMemCallbacks(gomock.NewController(t))
	callbacks.EXPECT().Alloc(gomock.Any()).DoAndReturn(func(size int) []byte {
		return make([]byte, size)
	}).AnyTimes()
	callbacks.EXPECT().Free(gomock.Any()).AnyTimes()
	return callbacks
}
