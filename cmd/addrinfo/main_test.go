package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/addrlib"
	"github.com/vkngwrapper/addrlib/addrutil"
	"github.com/vkngwrapper/addrlib/fdl"
)

const r800Config = `
[chip]
engine = "R800"
family = "Evergreen"
pipes = 2
pipe_interleave = 256
row_size = 2048
banks = 4

[[surface]]
name = "color"
tile_mode = "2D_TILED_THIN1"
bpp = 32
width = 256
height = 256
mip_levels = 2

[[layout]]
name = "texture"
generation = "a6xx"
format = "R8G8B8A8_UNORM"
width = 32
height = 32
mip_levels = 6
`

func runConfig(t *testing.T, data string, stats bool) string {
	cfg, err := decodeConfig(data)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(cfg, &out, addrutil.LoggerOrDiscard(nil), stats))
	return out.String()
}

func TestRun_R800(t *testing.T) {
	out := runConfig(t, r800Config, false)

	require.Contains(t, out, `"Name":"color","MipLevels":[{"TileMode":"ADDR_TM_2D_TILED_THIN1"`)
	require.Contains(t, out, `"Pitch":256`)
	require.Contains(t, out, `"Name":"texture","Generation":"a6xx","Format":"R8G8B8A8_UNORM"`)
	require.Contains(t, out, `"Offset":15872`)
	require.NotContains(t, out, "InstanceMemory")
}

func TestRun_Stats(t *testing.T) {
	out := runConfig(t, r800Config, true)

	require.Contains(t, out, `"Chip":{"Generation":"R800"`)
	// the library's instance memory is still live while the output is written
	require.Contains(t, out, `"InstanceMemory":{"Stats":{"AllocationCount":1`)
}

func TestRun_GFX9(t *testing.T) {
	out := runConfig(t, `
[chip]
engine = "AI"
family = "AI"
pipes = 4
pipe_interleave = 256
banks = 4

[[surface]]
name = "depth"
swizzle_mode = "64KBZ"
bpp = 32
width = 256
height = 256
`, false)

	require.Contains(t, out, `"SwizzleMode":"Swizzle64KBZ"`)
	require.Contains(t, out, `"Block":"128x128x1"`)
}

func TestRun_LayoutOnly(t *testing.T) {
	out := runConfig(t, `
[[layout]]
name = "ubwc"
generation = "a6xx"
format = "r8g8b8a8_unorm"
width = 256
height = 256
tile_mode = 3
flags = ["UBWC"]
`, false)

	require.Contains(t, out, `"Surfaces":[]`)
	require.Contains(t, out, `"UbwcLayerSize":4096`)
}

func TestRun_Errors(t *testing.T) {
	testCases := map[string]string{
		"UnknownEngine": `
[chip]
engine = "R600"
family = "Evergreen"
`,
		"UnknownTileMode": r800Config + `
[[surface]]
name = "bad"
tile_mode = "4D_TILED"
bpp = 32
width = 16
height = 16
`,
		"SurfaceWithoutChip": `
[[surface]]
name = "orphan"
bpp = 32
width = 16
height = 16
`,
		"BadExplicitPitch": `
[[layout]]
name = "imported"
generation = "a6xx"
format = "R8G8B8A8_UNORM"
width = 32
height = 32
pitch = 300
`,
	}

	for name, data := range testCases {
		t.Run(name, func(t *testing.T) {
			cfg, err := decodeConfig(data)
			require.NoError(t, err)

			var out bytes.Buffer
			require.Error(t, run(cfg, &out, addrutil.LoggerOrDiscard(nil), false))
		})
	}
}

func TestParseNames(t *testing.T) {
	mode, err := parseTileMode("ADDR_TM_1D_TILED_THICK")
	require.NoError(t, err)
	require.Equal(t, addrlib.TileMode1DTiledThick, mode)

	mode, err = parseTileMode("")
	require.NoError(t, err)
	require.Equal(t, addrlib.TileModeUnknown, mode)

	swizzle, err := parseSwizzleMode("Swizzle4KBSX")
	require.NoError(t, err)
	require.Equal(t, addrlib.Swizzle4KBSX, swizzle)

	format, err := parseFormat("y8_unorm")
	require.NoError(t, err)
	require.Equal(t, fdl.FormatY8Unorm, format)

	flags, err := parseFlags[addrlib.SurfaceFlags]("surface", "Surface", []string{"Depth", "SurfaceTcCompatible"})
	require.NoError(t, err)
	require.Equal(t, addrlib.SurfaceDepth|addrlib.SurfaceTcCompatible, flags)

	_, err = parseFlags[addrlib.CreateFlags]("create", "Create", []string{"Turbo"})
	require.Error(t, err)
}
