package element_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/addrlib/element"
)

func TestColorCompInfo(t *testing.T) {
	lib := element.New(nil, element.Config{})

	info := lib.PixGetColorCompInfo(element.Format5_6_5, element.SurfaceNumberUnorm, element.SwapStd)
	require.Equal(t, [4]uint32{5, 6, 5, 0}, info.CompBits)
	require.Equal(t, [4]uint32{0, 5, 11, 0}, info.CompStart)
	require.Equal(t, element.NumberOne, info.NumType[element.ChannelA])
	require.Equal(t, uint32(16), info.TotalBits)

	info = lib.PixGetColorCompInfo(element.Format8_8, element.SurfaceNumberSnorm, element.SwapAltRev)
	require.Equal(t, uint32(8), info.CompBits[element.ChannelA])
	require.Equal(t, uint32(0), info.CompStart[element.ChannelA])
	require.Equal(t, uint32(8), info.CompStart[element.ChannelR])
	require.Equal(t, element.NumberZero, info.NumType[element.ChannelG])
	require.Equal(t, element.NumberSnorm, info.NumType[element.ChannelR])

	info = lib.PixGetColorCompInfo(element.Format16_16_16_16Float, element.SurfaceNumberFloat, element.SwapStd)
	require.Equal(t, element.NumberS5Float, info.NumType[element.ChannelB])

	info = lib.PixGetColorCompInfo(element.FormatBC1, element.SurfaceNumberUnorm, element.SwapStd)
	require.Equal(t, uint32(0), info.TotalBits)
}

func TestFlt32ToColorPixel(t *testing.T) {
	lib := element.New(nil, element.Config{})

	pixel := lib.Flt32ToColorPixel(element.Format8_8_8_8, element.SurfaceNumberUnorm, element.SwapStd, element.EndianNone,
		[4]float32{1, 0, 0.5, 1})
	require.Equal(t, []byte{255, 0, 128, 255}, pixel)

	pixel = lib.Flt32ToColorPixel(element.Format8_8_8_8, element.SurfaceNumberUnorm, element.SwapAlt, element.EndianNone,
		[4]float32{1, 0, 0.5, 1})
	require.Equal(t, []byte{128, 0, 255, 255}, pixel)

	pixel = lib.Flt32ToColorPixel(element.Format5_6_5, element.SurfaceNumberUnorm, element.SwapStd, element.EndianNone,
		[4]float32{1, 0, 1, 0})
	require.Equal(t, []byte{0x1f, 0xf8}, pixel)

	pixel = lib.Flt32ToColorPixel(element.Format16Float, element.SurfaceNumberFloat, element.SwapStd, element.EndianNone,
		[4]float32{1})
	require.Equal(t, []byte{0x00, 0x3c}, pixel)

	pixel = lib.Flt32ToColorPixel(element.Format16Float, element.SurfaceNumberFloat, element.SwapStd, element.Endian8In16,
		[4]float32{1})
	require.Equal(t, []byte{0x3c, 0x00}, pixel)

	pixel = lib.Flt32ToColorPixel(element.Format5_9_9_9SharedExp, element.SurfaceNumberFloat, element.SwapStd, element.EndianNone,
		[4]float32{1, 0, 0})
	require.Equal(t, []byte{0x00, 0x01, 0x00, 0x80}, pixel)

	require.Nil(t, lib.Flt32ToColorPixel(element.FormatBC3, element.SurfaceNumberUnorm, element.SwapStd, element.EndianNone,
		[4]float32{}))
}

func TestFlt32ToDepthPixel(t *testing.T) {
	lib := element.New(nil, element.Config{})

	require.Equal(t, []byte{0xff, 0xff}, lib.Flt32ToDepthPixel(element.DepthFormat16, [2]float32{1, 0}))
	require.Equal(t, []byte{3, 0xff, 0xff, 0xff}, lib.Flt32ToDepthPixel(element.DepthFormat8_24, [2]float32{1, 3}))
	require.Equal(t, []byte{0, 0xff, 0xff, 0xff}, lib.Flt32ToDepthPixel(element.DepthFormatX8_24, [2]float32{1, 3}))
	require.Equal(t, []byte{0, 0, 0, 0xe0}, lib.Flt32ToDepthPixel(element.DepthFormat8_24Float, [2]float32{0.5, 0}))
	require.Equal(t, []byte{0, 0, 0x80, 0x3f, 5, 0, 0, 0},
		lib.Flt32ToDepthPixel(element.DepthFormatX24_8_32Float, [2]float32{1, 5}))
	require.Nil(t, lib.Flt32ToDepthPixel(element.DepthFormatInvalid, [2]float32{1, 0}))
}

func TestFlt32sToInt32s(t *testing.T) {
	require.Equal(t, uint32(0x81), element.Flt32sToInt32s(-1, 8, element.NumberSnorm))
	require.Equal(t, uint32(0x7f), element.Flt32sToInt32s(2, 8, element.NumberSnorm))
	require.Equal(t, uint32(127), element.Flt32sToInt32s(200, 8, element.NumberSint))
	require.Equal(t, uint32(0x80), element.Flt32sToInt32s(-300, 8, element.NumberSint))
	require.Equal(t, uint32(0), element.Flt32sToInt32s(-3, 8, element.NumberUint))
	require.Equal(t, uint32(255), element.Flt32sToInt32s(1000, 8, element.NumberUint))
	require.Equal(t, uint32(0x800000), element.Flt32sToInt32s(0.5, 24, element.NumberUnorm))
	require.Equal(t, uint32(0xffffff), element.Flt32sToInt32s(1, 24, element.NumberUnorm))

	require.Equal(t, uint32(0x3c0), element.Flt32sToInt32s(1, 11, element.NumberU5Float))
	require.Equal(t, uint32(0x1e0), element.Flt32sToInt32s(1, 10, element.NumberU5Float))
	require.Equal(t, uint32(0), element.Flt32sToInt32s(-1, 10, element.NumberU5Float))
	require.Equal(t, uint32(0xf00000), element.Flt32sToInt32s(1, 24, element.NumberU4FloatC))
	require.Equal(t, uint32(0xf00000), element.Flt32sToInt32s(7, 24, element.NumberU4FloatC))
}

func TestHalfFloat(t *testing.T) {
	require.Equal(t, uint32(0x3c00), element.Flt32sToInt32s(1, 16, element.NumberS5Float))
	require.Equal(t, uint32(0xc000), element.Flt32sToInt32s(-2, 16, element.NumberS5Float))
	require.Equal(t, uint32(0x7bff), element.Flt32sToInt32s(65504, 16, element.NumberS5Float))
	require.Equal(t, uint32(0x7c00), element.Flt32sToInt32s(1e6, 16, element.NumberS5Float))
	require.Equal(t, uint32(0x0001), element.Flt32sToInt32s(float32(math.Ldexp(1, -24)), 16, element.NumberS5Float))
	require.Equal(t, uint32(0x7e00), element.Flt32sToInt32s(float32(math.NaN()), 16, element.NumberS5Float))
}

func TestExportNorm(t *testing.T) {
	lib := element.New(nil, element.Config{})
	relaxed := element.New(nil, element.Config{Fp16ExportNorm: true})

	require.True(t, lib.PixGetExportNorm(element.Format8_8_8_8, element.SurfaceNumberUnorm, element.SwapStd))
	require.False(t, lib.PixGetExportNorm(element.Format16_16_16_16, element.SurfaceNumberUnorm, element.SwapStd))
	require.False(t, lib.PixGetExportNorm(element.Format8_8_8_8, element.SurfaceNumberUint, element.SwapStd))

	require.False(t, lib.PixGetExportNorm(element.Format16_16_16_16Float, element.SurfaceNumberFloat, element.SwapStd))
	require.True(t, relaxed.PixGetExportNorm(element.Format16_16_16_16Float, element.SurfaceNumberFloat, element.SwapStd))
	require.False(t, relaxed.PixGetExportNorm(element.Format32Float, element.SurfaceNumberFloat, element.SwapStd))
}
