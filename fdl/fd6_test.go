package fdl_test

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/addrlib/fdl"
)

type testSlice struct {
	offset uint32
	pitch  uint32
}

type layoutTestCase struct {
	format    fdl.Format
	samples   uint32
	width     uint32
	height    uint32
	depth     uint32
	arraySize uint32
	tileMode  fdl.TileMode
	flags     fdl.LayoutFlags
	slices    []testSlice
	size      uint64
}

func (tc layoutTestCase) params() fdl.LayoutParams {
	samples, depth, arraySize := tc.samples, tc.depth, tc.arraySize
	if samples == 0 {
		samples = 1
	}
	if depth == 0 {
		depth = 1
	}
	if arraySize == 0 {
		arraySize = 1
	}
	return fdl.LayoutParams{
		Format:    tc.format,
		Samples:   samples,
		Width:     tc.width,
		Height:    tc.height,
		Depth:     depth,
		MipLevels: uint32(len(tc.slices)),
		ArraySize: arraySize,
		TileMode:  tc.tileMode,
		Flags:     tc.flags,
	}
}

func requireLayout(t *testing.T, tc layoutTestCase, layout *fdl.Layout) {
	for level, expected := range tc.slices {
		require.Equal(t, expected.offset, layout.Slices[level].Offset, "level %d offset", level)
		require.Equal(t, expected.pitch, layout.Pitch(uint32(level)), "level %d pitch", level)
	}
	if tc.size != 0 {
		require.Equal(t, tc.size, layout.Size)
	}
}

func TestLayout6(t *testing.T) {
	testCases := map[string]layoutTestCase{
		"LinearRGBA8": {
			format: fdl.FormatR8G8B8A8Unorm,
			width:  32, height: 32,
			slices: []testSlice{
				{offset: 0, pitch: 256},
				{offset: 8192, pitch: 256},
				{offset: 12288, pitch: 256},
				{offset: 14336, pitch: 256},
				{offset: 15360, pitch: 256},
				{offset: 15872, pitch: 256},
			},
			size: 20480,
		},
		"TiledRGBA8": {
			format: fdl.FormatR8G8B8A8Unorm,
			width:  64, height: 64,
			tileMode: fdl.TileMode3,
			slices: []testSlice{
				{offset: 0, pitch: 256},
				{offset: 16384, pitch: 256},
				{offset: 24576, pitch: 256},
				{offset: 28672, pitch: 256},
				{offset: 30720, pitch: 256},
			},
			size: 32768,
		},
		"TiledR8": {
			format: fdl.FormatR8Unorm,
			width:  64, height: 64,
			tileMode: fdl.TileMode3,
			slices:   []testSlice{{offset: 0, pitch: 128}},
			size:     8192,
		},
		"LinearArray": {
			format: fdl.FormatR8G8B8A8Unorm,
			width:  32, height: 32,
			arraySize: 3,
			slices:    []testSlice{{offset: 0, pitch: 256}},
			size:      3 * 8192,
		},
		"Volume": {
			format: fdl.FormatR8G8B8A8Unorm,
			width:  256, height: 256, depth: 4,
			flags: fdl.Layout3D,
			slices: []testSlice{
				{offset: 0, pitch: 1024},
				{offset: 1048576, pitch: 512},
				{offset: 1179648, pitch: 256},
				{offset: 1196032, pitch: 256},
				{offset: 1204224, pitch: 256},
			},
			size: 1212416,
		},
		"UBWC": {
			format: fdl.FormatR8G8B8A8Unorm,
			width:  256, height: 256,
			tileMode: fdl.TileMode3,
			flags:    fdl.LayoutUBWC,
			slices:   []testSlice{{offset: 4096, pitch: 1024}},
			size:     266240,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var layout fdl.Layout
			require.NoError(t, layout.Layout6(tc.params()))
			requireLayout(t, tc, &layout)
		})
	}
}

func TestLayout6_LevelLinear(t *testing.T) {
	var layout fdl.Layout
	require.NoError(t, layout.Layout6(fdl.LayoutParams{
		Format: fdl.FormatR8G8B8A8Unorm, Samples: 1,
		Width: 64, Height: 64, Depth: 1, MipLevels: 5, ArraySize: 1,
		TileMode: fdl.TileMode3,
	}))

	require.Equal(t, fdl.TileMode3, layout.TileModeOf(2))
	// the 8 pixel wide level is too narrow to tile
	require.Equal(t, fdl.TileModeLinear, layout.TileModeOf(3))
	require.Equal(t, uint32(4096), layout.BaseAlign)
}

func TestLayout6_VolumeLayerSizeFreezes(t *testing.T) {
	var layout fdl.Layout
	require.NoError(t, layout.Layout6(fdl.LayoutParams{
		Format: fdl.FormatR8G8B8A8Unorm, Samples: 1,
		Width: 256, Height: 256, Depth: 4, MipLevels: 5, ArraySize: 1,
		Flags: fdl.Layout3D,
	}))

	require.False(t, layout.LayerFirst())
	sizes := make([]uint32, 5)
	for level := range sizes {
		sizes[level] = layout.Slices[level].Size0
	}
	require.Equal(t, []uint32{262144, 65536, 16384, 8192, 8192}, sizes)

	// depth slices of a volume level are one layer size apart
	require.Equal(t, uint64(1048576+65536), layout.SurfaceOffset(1, 1))
}

func TestLayout6_UBWC(t *testing.T) {
	var layout fdl.Layout
	require.NoError(t, layout.Layout6(fdl.LayoutParams{
		Format: fdl.FormatR8G8B8A8Unorm, Samples: 1,
		Width: 256, Height: 256, Depth: 1, MipLevels: 1, ArraySize: 2,
		TileMode: fdl.TileMode3, Flags: fdl.LayoutUBWC,
	}))

	require.True(t, layout.UBWC())
	require.Equal(t, uint32(64), layout.UbwcPitch(0))
	require.Equal(t, uint64(4096), layout.UbwcLayerSize)
	require.Equal(t, uint64(0), layout.UbwcOffset(0, 0))
	require.Equal(t, uint64(4096), layout.UbwcOffset(0, 1))

	// the metadata of both layers sits ahead of the pixel data
	require.Equal(t, uint64(8192), layout.SurfaceOffset(0, 0))
	require.Equal(t, uint64(8192+262144), layout.SurfaceOffset(0, 1))
	require.Equal(t, uint64(8192+2*262144), layout.Size)
}

func TestLayout6_UBWCDropped(t *testing.T) {
	testCases := map[string]fdl.LayoutParams{
		"Volume": {
			Format: fdl.FormatR8G8B8A8Unorm, Samples: 1,
			Width: 64, Height: 64, Depth: 4, MipLevels: 1, ArraySize: 1,
			TileMode: fdl.TileMode3, Flags: fdl.LayoutUBWC | fdl.Layout3D,
		},
		"Compressed": {
			Format: fdl.FormatBC1RGBUnorm, Samples: 1,
			Width: 64, Height: 64, Depth: 1, MipLevels: 1, ArraySize: 1,
			TileMode: fdl.TileMode3, Flags: fdl.LayoutUBWC,
		},
		"Cpp64": {
			Format: fdl.FormatR32G32B32A32Float, Samples: 4,
			Width: 64, Height: 64, Depth: 1, MipLevels: 1, ArraySize: 1,
			TileMode: fdl.TileMode3, Flags: fdl.LayoutUBWC,
		},
	}

	for name, params := range testCases {
		t.Run(name, func(t *testing.T) {
			var layout fdl.Layout
			require.NoError(t, layout.Layout6(params))
			require.False(t, layout.UBWC())
			require.Zero(t, layout.UbwcPitch(0))
			require.Zero(t, layout.UbwcLayerSize)
		})
	}
}

func TestUbwcBlockSize(t *testing.T) {
	testCases := []struct {
		format        fdl.Format
		samples       uint32
		width, height uint32
	}{
		{format: fdl.FormatR8Unorm, samples: 1, width: 16, height: 4},
		{format: fdl.FormatR8G8Unorm, samples: 1, width: 16, height: 8},
		{format: fdl.FormatY8Unorm, samples: 1, width: 32, height: 8},
		{format: fdl.FormatR8G8B8A8Unorm, samples: 1, width: 16, height: 4},
		{format: fdl.FormatR16Unorm, samples: 2, width: 8, height: 4},
		{format: fdl.FormatR16Unorm, samples: 4, width: 4, height: 4},
		{format: fdl.FormatR16Unorm, samples: 8, width: 4, height: 2},
		{format: fdl.FormatR16G16B16A16Float, samples: 1, width: 8, height: 4},
		{format: fdl.FormatR32G32B32A32Float, samples: 1, width: 4, height: 4},
		{format: fdl.FormatR32G32B32A32Float, samples: 2, width: 4, height: 2},
		{format: fdl.FormatR32G32B32A32Float, samples: 4, width: 0, height: 0},
		{format: fdl.FormatR8G8B8Unorm, samples: 1, width: 0, height: 0},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s_%dx", tc.format, tc.samples), func(t *testing.T) {
			var layout fdl.Layout
			require.NoError(t, layout.Layout6(fdl.LayoutParams{
				Format: tc.format, Samples: tc.samples,
				Width: 64, Height: 64, Depth: 1, MipLevels: 1, ArraySize: 1,
				TileMode: fdl.TileMode3,
			}))
			width, height := layout.UbwcBlockSize()
			require.Equal(t, tc.width, width)
			require.Equal(t, tc.height, height)
		})
	}
}

func TestLayout6_ExplicitLayout(t *testing.T) {
	params := fdl.LayoutParams{
		Format: fdl.FormatR8G8B8A8Unorm, Samples: 1,
		Width: 32, Height: 32, Depth: 1, MipLevels: 1, ArraySize: 1,
		Explicit: &fdl.ExplicitLayout{Offset: 4096, Pitch: 512},
	}

	var layout fdl.Layout
	require.NoError(t, layout.Layout6(params))
	require.Equal(t, uint32(512), layout.Pitch(0))
	require.Equal(t, uint64(4096), layout.SurfaceOffset(0, 0))
	require.Equal(t, uint64(4096+32*512), layout.Size)

	params.Explicit.Pitch = 300
	err := layout.Layout6(params)
	require.True(t, errors.Is(err, fdl.ErrPitchAlignment))

	params.Explicit.Pitch = 0
	err = layout.Layout6(params)
	require.True(t, errors.Is(err, fdl.ErrInvalidParams))
}

func TestLayout6_InvalidParams(t *testing.T) {
	valid := fdl.LayoutParams{
		Format: fdl.FormatR8G8B8A8Unorm, Samples: 1,
		Width: 32, Height: 32, Depth: 1, MipLevels: 1, ArraySize: 1,
	}

	testCases := map[string]func(p *fdl.LayoutParams){
		"NoSamples":      func(p *fdl.LayoutParams) { p.Samples = 0 },
		"SamplesNotPow2": func(p *fdl.LayoutParams) { p.Samples = 3 },
		"ZeroWidth":      func(p *fdl.LayoutParams) { p.Width = 0 },
		"NoLevels":       func(p *fdl.LayoutParams) { p.MipLevels = 0 },
		"TooManyLevels":  func(p *fdl.LayoutParams) { p.MipLevels = fdl.MaxMipLevels + 1 },
		"UnknownFormat":  func(p *fdl.LayoutParams) { p.Format = fdl.FormatNone },
		"BadTileMode":    func(p *fdl.LayoutParams) { p.TileMode = 1 },
		"LinearUBWC":     func(p *fdl.LayoutParams) { p.Flags = fdl.LayoutUBWC },
		"VolumeArray": func(p *fdl.LayoutParams) {
			p.Flags = fdl.Layout3D
			p.ArraySize = 2
		},
	}

	for name, mutate := range testCases {
		t.Run(name, func(t *testing.T) {
			params := valid
			mutate(&params)
			var layout fdl.Layout
			require.True(t, errors.Is(layout.Layout6(params), fdl.ErrInvalidParams))
		})
	}
}
