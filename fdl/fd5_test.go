package fdl_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/addrlib/fdl"
)

func TestLayout5(t *testing.T) {
	testCases := map[string]layoutTestCase{
		"LinearRGBA8": {
			format: fdl.FormatR8G8B8A8Unorm,
			width:  32, height: 32,
			slices: []testSlice{
				{offset: 0, pitch: 256},
				{offset: 8192, pitch: 256},
				{offset: 12288, pitch: 256},
			},
			// the last level is padded to 32 rows
			size: 20480,
		},
		"TiledR8": {
			format: fdl.FormatR8Unorm,
			width:  100, height: 20,
			tileMode: fdl.TileMode3,
			slices:   []testSlice{{offset: 0, pitch: 128}},
			size:     4096,
		},
		"Volume": {
			format: fdl.FormatR8G8B8A8Unorm,
			width:  64, height: 64, depth: 4,
			flags: fdl.Layout3D,
			slices: []testSlice{
				{offset: 0, pitch: 256},
				{offset: 65536, pitch: 256},
				{offset: 81920, pitch: 256},
			},
			size: 90112,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var layout fdl.Layout
			require.NoError(t, layout.Layout5(tc.params()))
			requireLayout(t, tc, &layout)
		})
	}
}

func TestLayout5_VolumeLayerSizeFreezes(t *testing.T) {
	var layout fdl.Layout
	require.NoError(t, layout.Layout5(fdl.LayoutParams{
		Format: fdl.FormatR8G8B8A8Unorm, Samples: 1,
		Width: 64, Height: 64, Depth: 4, MipLevels: 3, ArraySize: 1,
		Flags: fdl.Layout3D,
	}))

	require.Equal(t, uint32(16384), layout.Slices[0].Size0)
	require.Equal(t, uint32(8192), layout.Slices[1].Size0)
	// level 1 is already under the freeze size, so level 2 keeps its layer size
	require.Equal(t, uint32(8192), layout.Slices[2].Size0)
}

func TestLayout5_IgnoresUBWC(t *testing.T) {
	var layout fdl.Layout
	require.NoError(t, layout.Layout5(fdl.LayoutParams{
		Format: fdl.FormatR8G8B8A8Unorm, Samples: 1,
		Width: 64, Height: 64, Depth: 1, MipLevels: 1, ArraySize: 1,
		TileMode: fdl.TileMode3, Flags: fdl.LayoutUBWC,
	}))
	require.False(t, layout.UBWC())
	require.Equal(t, uint64(0), layout.SurfaceOffset(0, 0))

	err := layout.Layout5(fdl.LayoutParams{
		Format: fdl.FormatR8G8B8A8Unorm, Samples: 1,
		Width: 64, Height: 64, Depth: 1, MipLevels: 1, ArraySize: 1,
		Explicit: &fdl.ExplicitLayout{Pitch: 256},
	})
	require.True(t, errors.Is(err, fdl.ErrInvalidParams))
}
