package addrutil_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/addrlib/addrutil"
)

func TestCheckPow2(t *testing.T) {
	require.NoError(t, addrutil.CheckPow2(uint32(64), "align"))
	require.NoError(t, addrutil.CheckPow2(1, "align"))

	err := addrutil.CheckPow2(uint32(48), "align")
	require.Error(t, err)
	require.True(t, errors.Is(err, addrutil.PowerOfTwoError))
	require.Contains(t, err.Error(), "align is 48")

	require.Error(t, addrutil.CheckPow2(0, "align"))
}

func TestAlignment(t *testing.T) {
	require.Equal(t, uint32(112), addrutil.PowTwoAlign(uint32(100), 16))
	require.Equal(t, uint32(96), addrutil.PowTwoAlignDown(uint32(100), 16))
	require.Equal(t, uint64(4096), addrutil.PowTwoAlign(uint64(1), 4096))
	require.Equal(t, 300, addrutil.AlignUp(250, 100))
	require.True(t, addrutil.IsPow2(uint32(1)))
	require.False(t, addrutil.IsPow2(uint32(0)))
	require.False(t, addrutil.IsPow2(uint32(24)))
}

func TestLog2(t *testing.T) {
	require.Equal(t, uint32(0), addrutil.Log2(1))
	require.Equal(t, uint32(8), addrutil.Log2(256))
	require.Equal(t, uint32(6), addrutil.Log2NonPow2(100))
	require.Equal(t, uint32(31), addrutil.Log2NonPow2(0xffffffff))
}

func TestNextPow2(t *testing.T) {
	require.Equal(t, uint32(1), addrutil.NextPow2(0))
	require.Equal(t, uint32(1), addrutil.NextPow2(1))
	require.Equal(t, uint32(8), addrutil.NextPow2(5))
	require.Equal(t, uint32(64), addrutil.NextPow2(64))
	require.Equal(t, uint32(0x80000000), addrutil.NextPow2(0x40000001))
	require.Equal(t, uint32(0x80000000), addrutil.NextPow2(0x80000001))
	require.Equal(t, uint32(0x80000000), addrutil.NextPow2(0xffffffff))
}

func TestXorReduce(t *testing.T) {
	require.Equal(t, uint32(0), addrutil.XorReduce(0b1010, 4))
	require.Equal(t, uint32(1), addrutil.XorReduce(0b1011, 4))
	require.Equal(t, uint32(0), addrutil.XorReduce(0b1011, 2))
	require.Equal(t, uint32(1), addrutil.XorReduce(0x80000000, 32))
}

func TestMorton(t *testing.T) {
	require.Equal(t, uint32(0b10), addrutil.MortonGen2d(1, 0, 1))
	require.Equal(t, uint32(0b01), addrutil.MortonGen2d(0, 1, 1))
	require.Equal(t, uint32(0b1110), addrutil.MortonGen2d(3, 2, 2))
	require.Equal(t, uint32(0b100), addrutil.MortonGen3d(1, 0, 0, 1))
	require.Equal(t, uint32(0b001), addrutil.MortonGen3d(0, 0, 1, 1))

	for x := uint32(0); x < 16; x++ {
		for y := uint32(0); y < 16; y++ {
			dx, dy := addrutil.MortonDecode2d(addrutil.MortonGen2d(x, y, 4), 4)
			require.Equal(t, x, dx)
			require.Equal(t, y, dy)

			for z := uint32(0); z < 4; z++ {
				ex, ey, ez := addrutil.MortonDecode3d(addrutil.MortonGen3d(x, y, z, 4), 4)
				require.Equal(t, []uint32{x, y, z}, []uint32{ex, ey, ez})
			}
		}
	}
}

func TestGetBits(t *testing.T) {
	require.Equal(t, uint32(0b101<<4), addrutil.GetBits(0b1010000, 4, 3, 4))
	require.Equal(t, uint32(0b101), addrutil.GetBits(0b1010000, 4, 3, 0))
	require.Equal(t, uint32(0xffffffff), addrutil.GetBits(0xffffffff, 0, 32, 0))

	require.NoError(t, addrutil.CheckBitRange(31, 1))
	require.Error(t, addrutil.CheckBitRange(31, 2))
	require.Error(t, addrutil.CheckBitRange(0, 0))
}

func TestShifts(t *testing.T) {
	require.Equal(t, uint32(2), addrutil.ShiftCeil(5, 2))
	require.Equal(t, uint32(1), addrutil.ShiftCeil(4, 2))
	require.Equal(t, uint32(1), addrutil.ShiftRight(1, 3))
	require.Equal(t, uint32(8), addrutil.ShiftRight(64, 3))
	require.Equal(t, uint64(2), addrutil.BitsToBytes(uint64(9)))
	require.Equal(t, 64, addrutil.BytesToBits(8))
}
