package addrlib_test

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/addrlib"
)

type addrCase struct {
	mode       addrlib.TileMode
	bpp        uint32
	numSamples uint32
	flags      addrlib.SurfaceFlags
}

func (c addrCase) String() string {
	return fmt.Sprintf("%s_%dbpp_%dx_%s", c.mode, c.bpp, c.numSamples, c.flags)
}

// layoutSurface computes a surface layout and returns the tiled surface the address functions take
func layoutSurface(t *testing.T, lib *addrlib.Lib, c addrCase, width, height, slices uint32) (addrlib.TiledSurface, addrlib.SurfaceInfoOutput) {
	in := surfaceInput(c.mode, c.bpp, width, height, slices)
	in.NumSamples = c.numSamples
	in.Flags = c.flags
	info := computeSurface(t, lib, in)

	return addrlib.TiledSurface{
		TileMode:   info.TileMode,
		Flags:      c.flags,
		Bpp:        info.Bpp,
		NumSamples: c.numSamples,
		Pitch:      info.Pitch,
		Height:     info.Height,
		NumSlices:  info.Depth,
		TileIndex:  addrlib.TileIndexInvalid,
	}, info
}

// requireBijective walks every sample of the surface, checks that no two share an address and that
// each address decodes back to its coordinate
func requireBijective(t *testing.T, lib *addrlib.Lib, surf addrlib.TiledSurface, surfSize uint64) {
	seen := make(map[uint64]struct{})

	for slice := uint32(0); slice < surf.NumSlices; slice++ {
		for sample := uint32(0); sample < surf.NumSamples; sample++ {
			for y := uint32(0); y < surf.Height; y++ {
				for x := uint32(0); x < surf.Pitch; x++ {
					in := addrlib.NewSurfaceAddrFromCoordInput()
					in.TiledSurface = surf
					in.X, in.Y, in.Slice, in.Sample = x, y, slice, sample
					out := addrlib.NewSurfaceAddrFromCoordOutput()
					require.NoError(t, lib.ComputeSurfaceAddrFromCoord(&in, &out))
					require.Less(t, out.Addr, surfSize)

					key := out.Addr*8 + uint64(out.BitPosition)
					_, dup := seen[key]
					require.False(t, dup, "(%d, %d, %d, %d) reuses address 0x%x", x, y, slice, sample, out.Addr)
					seen[key] = struct{}{}

					back := addrlib.NewSurfaceCoordFromAddrInput()
					back.TiledSurface = surf
					back.Addr, back.BitPosition = out.Addr, out.BitPosition
					coord := addrlib.NewSurfaceCoordFromAddrOutput()
					require.NoError(t, lib.ComputeSurfaceCoordFromAddr(&back, &coord))
					require.Equal(t, [4]uint32{x, y, slice, sample}, [4]uint32{coord.X, coord.Y, coord.Slice, coord.Sample})
				}
			}
		}
	}
}

func TestSurfaceAddress_RoundTrip(t *testing.T) {
	cases := []addrCase{
		{mode: addrlib.TileModeLinearAligned, bpp: 32, numSamples: 1},
		{mode: addrlib.TileModeLinearGeneral, bpp: 8, numSamples: 2},
		{mode: addrlib.TileMode1DTiledThin1, bpp: 8, numSamples: 1},
		{mode: addrlib.TileMode1DTiledThin1, bpp: 32, numSamples: 4},
		{mode: addrlib.TileMode1DTiledThin1, bpp: 32, numSamples: 4, flags: addrlib.SurfaceDepth},
		{mode: addrlib.TileMode1DTiledThin1, bpp: 16, numSamples: 1, flags: addrlib.SurfaceDisplay},
		{mode: addrlib.TileMode1DTiledThick, bpp: 32, numSamples: 1},
		{mode: addrlib.TileMode2DTiledThin1, bpp: 8, numSamples: 1},
		{mode: addrlib.TileMode2DTiledThin1, bpp: 32, numSamples: 1},
		{mode: addrlib.TileMode2DTiledThin1, bpp: 128, numSamples: 1},
		{mode: addrlib.TileMode2DTiledThin1, bpp: 64, numSamples: 4},
		{mode: addrlib.TileMode2DTiledThin1, bpp: 32, numSamples: 2, flags: addrlib.SurfaceDepth},
		{mode: addrlib.TileMode2DTiledThin2, bpp: 32, numSamples: 1},
		{mode: addrlib.TileMode2DTiledThick, bpp: 32, numSamples: 1},
		{mode: addrlib.TileMode3DTiledThin1, bpp: 32, numSamples: 1},
		{mode: addrlib.TileMode3DTiledThick, bpp: 16, numSamples: 1},
		{mode: addrlib.TileMode2BTiledThin1, bpp: 32, numSamples: 1},
	}

	for _, pipes := range []uint32{2, 4} {
		chip := r800Chip(pipes)
		lib := createLib(t, chip)

		for _, c := range cases {
			t.Run(fmt.Sprintf("P%d_%s", pipes, c), func(t *testing.T) {
				surf, info := layoutSurface(t, lib, c, 64, 64, 4)
				requireBijective(t, lib, surf, info.SurfSize)
			})
		}
	}
}

func TestSurfaceAddress_Swizzled(t *testing.T) {
	lib := createLib(t, r800Chip(4))

	surf, info := layoutSurface(t, lib, addrCase{mode: addrlib.TileMode2DTiledThin1, bpp: 32, numSamples: 1}, 64, 64, 2)
	surf.PipeSwizzle = 3
	surf.BankSwizzle = 1
	requireBijective(t, lib, surf, info.SurfSize)

	// the swizzle moves the first element off the first pipe and bank
	in := addrlib.NewSurfaceAddrFromCoordInput()
	in.TiledSurface = surf
	out := addrlib.NewSurfaceAddrFromCoordOutput()
	require.NoError(t, lib.ComputeSurfaceAddrFromCoord(&in, &out))
	require.NotZero(t, out.Addr)
}

func TestSurfaceAddress_SITileIndex(t *testing.T) {
	lib := createLib(t, siChip())

	in := surfaceInput(addrlib.TileModeUnknown, 32, 64, 128, 1)
	in.TileIndex = siTile2DThin
	info := computeSurface(t, lib, in)

	surf := addrlib.TiledSurface{
		Bpp:        32,
		NumSamples: 1,
		Pitch:      info.Pitch,
		Height:     info.Height,
		NumSlices:  1,
		TileIndex:  siTile2DThin,
	}
	requireBijective(t, lib, surf, info.SurfSize)
}

func TestSurfaceAddress_Linear(t *testing.T) {
	lib := createLib(t, r800Chip(2))

	in := addrlib.NewSurfaceAddrFromCoordInput()
	in.TileMode = addrlib.TileModeLinearAligned
	in.Bpp = 32
	in.Pitch = 128
	in.Height = 50
	in.X, in.Y = 3, 2
	out := addrlib.NewSurfaceAddrFromCoordOutput()
	require.NoError(t, lib.ComputeSurfaceAddrFromCoord(&in, &out))
	require.Equal(t, uint64((2*128+3)*4), out.Addr)
	require.Zero(t, out.BitPosition)
}

func TestSurfaceAddress_MicroTileOrigin(t *testing.T) {
	lib := createLib(t, r800Chip(2))

	in := addrlib.NewSurfaceAddrFromCoordInput()
	in.TileMode = addrlib.TileMode1DTiledThin1
	in.Bpp = 32
	in.Pitch = 64
	in.Height = 64
	in.X, in.Y = 8, 8
	out := addrlib.NewSurfaceAddrFromCoordOutput()
	require.NoError(t, lib.ComputeSurfaceAddrFromCoord(&in, &out))
	// the ninth micro tile of 256 bytes, starting with its first pixel
	require.Equal(t, uint64(9*256), out.Addr)
}

func TestSurfaceAddress_InvalidParams(t *testing.T) {
	lib := createLib(t, r800Chip(2))

	base := addrlib.NewSurfaceAddrFromCoordInput()
	base.TileMode = addrlib.TileMode2DTiledThin1
	base.Bpp = 32
	base.NumSamples = 1
	base.Pitch = 64
	base.Height = 64

	testCases := map[string]func(in *addrlib.SurfaceAddrFromCoordInput){
		"XOutside":      func(in *addrlib.SurfaceAddrFromCoordInput) { in.X = 64 },
		"SampleOutside": func(in *addrlib.SurfaceAddrFromCoordInput) { in.Sample = 1 },
		"Unaligned":     func(in *addrlib.SurfaceAddrFromCoordInput) { in.Pitch = 40 },
		"OddBpp":        func(in *addrlib.SurfaceAddrFromCoordInput) { in.Bpp = 12 },
		"NoHeight":      func(in *addrlib.SurfaceAddrFromCoordInput) { in.Height = 0 },
		"ThickMSAA": func(in *addrlib.SurfaceAddrFromCoordInput) {
			in.TileMode = addrlib.TileMode1DTiledThick
			in.NumSamples = 2
		},
	}

	for name, mutate := range testCases {
		t.Run(name, func(t *testing.T) {
			in := base
			mutate(&in)
			out := addrlib.NewSurfaceAddrFromCoordOutput()
			err := lib.ComputeSurfaceAddrFromCoord(&in, &out)
			require.True(t, errors.Is(err, addrlib.ErrInvalidParams), "%+v", err)
		})
	}
}

func TestSurfaceCoord_InvalidParams(t *testing.T) {
	lib := createLib(t, r800Chip(2))

	in := addrlib.NewSurfaceCoordFromAddrInput()
	in.TileMode = addrlib.TileMode1DTiledThin1
	in.Bpp = 32
	in.Pitch = 64
	in.Height = 64
	in.Addr = 64 * 64 * 4
	out := addrlib.NewSurfaceCoordFromAddrOutput()
	require.True(t, errors.Is(lib.ComputeSurfaceCoordFromAddr(&in, &out), addrlib.ErrInvalidParams))

	in.Addr = 0
	in.BitPosition = 8
	require.True(t, errors.Is(lib.ComputeSurfaceCoordFromAddr(&in, &out), addrlib.ErrInvalidParams))
}

// pipeAndBank reads the pipe and bank fields out of an address with a 256 byte pipe interleave and no
// bank interleave
func pipeAndBank(t *testing.T, lib *addrlib.Lib, surf addrlib.TiledSurface, x, y, slice, sample uint32) (pipe, bank uint32) {
	in := addrlib.NewSurfaceAddrFromCoordInput()
	in.TiledSurface = surf
	in.X, in.Y, in.Slice, in.Sample = x, y, slice, sample
	out := addrlib.NewSurfaceAddrFromCoordOutput()
	require.NoError(t, lib.ComputeSurfaceAddrFromCoord(&in, &out))

	numPipes := surf.TileConfig.PipeConfig.NumPipes()
	group := uint32(out.Addr >> 8)
	return group % numPipes, (group / numPipes) % surf.TileConfig.Banks
}

func goldenSurface(mode addrlib.TileMode, pipeConfig addrlib.PipeConfig, numSamples uint32, split uint32) addrlib.TiledSurface {
	return addrlib.TiledSurface{
		TileMode:   mode,
		Bpp:        32,
		NumSamples: numSamples,
		Pitch:      256,
		Height:     256,
		NumSlices:  8,
		TileIndex:  addrlib.TileIndexInvalid,
		TileConfig: &addrlib.TileConfig{
			Banks:            4,
			BankWidth:        1,
			BankHeight:       1,
			MacroAspectRatio: 1,
			TileSplitBytes:   split,
			PipeConfig:       pipeConfig,
		},
	}
}

func TestSurfaceAddress_PipeFromCoord(t *testing.T) {
	lib := createLib(t, siChip())

	testCases := []struct {
		config   addrlib.PipeConfig
		x, y     uint32
		expected uint32
	}{
		{config: addrlib.PipeConfigP2, x: 8, y: 0, expected: 1},
		{config: addrlib.PipeConfigP2, x: 8, y: 8, expected: 0},
		{config: addrlib.PipeConfigP4_8x16, x: 8, y: 0, expected: 2},
		{config: addrlib.PipeConfigP4_8x16, x: 16, y: 0, expected: 1},
		{config: addrlib.PipeConfigP4_8x16, x: 0, y: 8, expected: 1},
		{config: addrlib.PipeConfigP4_16x16, x: 8, y: 0, expected: 1},
		{config: addrlib.PipeConfigP4_16x16, x: 16, y: 0, expected: 3},
		{config: addrlib.PipeConfigP4_16x16, x: 0, y: 16, expected: 2},
		{config: addrlib.PipeConfigP4_32x32, x: 16, y: 0, expected: 0},
		{config: addrlib.PipeConfigP4_32x32, x: 32, y: 0, expected: 3},
		{config: addrlib.PipeConfigP4_32x32, x: 0, y: 40, expected: 3},
		{config: addrlib.PipeConfigP8_16x16_8x16, x: 16, y: 0, expected: 1},
		{config: addrlib.PipeConfigP8_16x16_8x16, x: 0, y: 32, expected: 2},
		{config: addrlib.PipeConfigP8_16x32_16x16, x: 32, y: 0, expected: 2},
		{config: addrlib.PipeConfigP8_32x32_8x16, x: 32, y: 0, expected: 5},
		{config: addrlib.PipeConfigP8_32x32_16x16, x: 32, y: 0, expected: 4},
		{config: addrlib.PipeConfigP8_32x32_16x16, x: 8, y: 8, expected: 0},
		{config: addrlib.PipeConfigP8_32x32_16x16, x: 16, y: 0, expected: 3},
		{config: addrlib.PipeConfigP8_32x32_16x32, x: 0, y: 64, expected: 2},
		{config: addrlib.PipeConfigP8_32x64_32x32, x: 64, y: 0, expected: 2},
		{config: addrlib.PipeConfigP16_32x32_8x16, x: 8, y: 0, expected: 2},
		{config: addrlib.PipeConfigP16_32x32_16x16, x: 0, y: 32, expected: 8},
		{config: addrlib.PipeConfigP16_32x32_16x16, x: 64, y: 0, expected: 8},
		{config: addrlib.PipeConfigP16_32x32_16x16, x: 0, y: 64, expected: 4},
	}

	for _, testCase := range testCases {
		t.Run(fmt.Sprintf("%s_%d_%d", testCase.config, testCase.x, testCase.y), func(t *testing.T) {
			surf := goldenSurface(addrlib.TileMode2DTiledThin1, testCase.config, 1, 2048)
			pipe, _ := pipeAndBank(t, lib, surf, testCase.x, testCase.y, 0, 0)
			require.Equal(t, testCase.expected, pipe)
		})
	}
}

func TestSurfaceAddress_SliceRotation(t *testing.T) {
	lib := createLib(t, siChip())

	testCases := []struct {
		name         string
		mode         addrlib.TileMode
		slice        uint32
		expectedPipe uint32
		expectedBank uint32
	}{
		{name: "2DFirstSlice", mode: addrlib.TileMode2DTiledThin1, slice: 0, expectedPipe: 0, expectedBank: 0},
		// banks/2-1 banks per slice
		{name: "2DSecondSlice", mode: addrlib.TileMode2DTiledThin1, slice: 1, expectedPipe: 0, expectedBank: 1},
		{name: "2DFourthSlice", mode: addrlib.TileMode2DTiledThin1, slice: 3, expectedPipe: 0, expectedBank: 3},
		{name: "2DThickSameGroup", mode: addrlib.TileMode2DTiledThick, slice: 3, expectedPipe: 0, expectedBank: 0},
		{name: "2DThickNextGroup", mode: addrlib.TileMode2DTiledThick, slice: 4, expectedPipe: 0, expectedBank: 1},
		// pipes/2-1 pipes per slice, one bank once every pipe was used
		{name: "3DSecondSlice", mode: addrlib.TileMode3DTiledThin1, slice: 1, expectedPipe: 1, expectedBank: 0},
		{name: "3DFifthSlice", mode: addrlib.TileMode3DTiledThin1, slice: 4, expectedPipe: 0, expectedBank: 1},
		{name: "3DSixthSlice", mode: addrlib.TileMode3DTiledThin1, slice: 5, expectedPipe: 1, expectedBank: 1},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			surf := goldenSurface(testCase.mode, addrlib.PipeConfigP4_16x16, 1, 2048)
			pipe, bank := pipeAndBank(t, lib, surf, 0, 0, testCase.slice, 0)
			require.Equal(t, testCase.expectedPipe, pipe)
			require.Equal(t, testCase.expectedBank, bank)
		})
	}
}

func TestSurfaceAddress_TileSplitRotation(t *testing.T) {
	lib := createLib(t, siChip())

	// a 256 byte split puts every sample of a 32 bpp micro tile in its own split slice, each moved
	// banks/2+1 banks on
	surf := goldenSurface(addrlib.TileMode2DTiledThin1, addrlib.PipeConfigP4_16x16, 4, 256)
	for sample, expectedBank := range []uint32{0, 3, 2, 1} {
		pipe, bank := pipeAndBank(t, lib, surf, 0, 0, 0, uint32(sample))
		require.Zero(t, pipe, "sample %d", sample)
		require.Equal(t, expectedBank, bank, "sample %d", sample)
	}
}
