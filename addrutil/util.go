package addrutil

import (
	"math/bits"

	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint | ~uint32 | ~uint64
}

func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// CheckBitRange returns an error if an n-bit field starting at bit start does not fit in 32 bits
func CheckBitRange(start, n uint32) error {
	if n < 1 || start >= 32 || start+n > 32 {
		return cerrors.Wrapf(BitRangeError, "start %d, width %d", start, n)
	}
	return nil
}

// IsPow2 returns true if value is a non-zero power of two
func IsPow2[T Number](value T) bool {
	return value > 0 && value&(value-1) == 0
}

// PowTwoAlign rounds value up to a multiple of alignment, which must be a power of two
func PowTwoAlign[T Number](value, alignment T) T {
	DebugCheckPow2(alignment, "alignment")
	return (value + alignment - 1) & ^(alignment - 1)
}

// PowTwoAlignDown rounds value down to a multiple of alignment, which must be a power of two
func PowTwoAlignDown[T Number](value, alignment T) T {
	DebugCheckPow2(alignment, "alignment")
	return value & ^(alignment - 1)
}

// AlignUp rounds value up to a multiple of alignment, which does not need to be a power of two
func AlignUp[T Number](value, alignment T) T {
	if alignment == 0 {
		return value
	}
	return ((value + alignment - 1) / alignment) * alignment
}

// Log2 returns the base-2 logarithm of value, which must be a power of two
func Log2(value uint32) uint32 {
	DebugCheckPow2(value, "value")
	return Log2NonPow2(value)
}

// Log2NonPow2 returns floor(log2(value)). Zero yields zero.
func Log2NonPow2(value uint32) uint32 {
	if value == 0 {
		return 0
	}
	return uint32(bits.Len32(value) - 1)
}

// NextPow2 rounds value up to the next power of two. Values above 0x7fffffff saturate to 0x80000000.
func NextPow2(value uint32) uint32 {
	if value > 0x7fffffff {
		return 0x80000000
	}
	if value <= 1 {
		return 1
	}
	return 1 << bits.Len32(value-1)
}

// GetBit returns bit i of value
func GetBit(value, i uint32) uint32 {
	return (value >> i) & 1
}

// XorReduce folds the low n bits of value into a single bit
func XorReduce(value, n uint32) uint32 {
	if n < 32 {
		value &= (1 << n) - 1
	}
	return uint32(bits.OnesCount32(value) & 1)
}

// MortonGen2d interleaves the low num bits of x and y: y occupies the even bits and x the odd bits.
func MortonGen2d(x, y, num uint32) uint32 {
	var mort uint32
	for i := uint32(0); i < num; i++ {
		mort |= GetBit(y, i) << (2 * i)
		mort |= GetBit(x, i) << (2*i + 1)
	}
	return mort
}

// MortonGen3d interleaves the low num bits of x, y and z with z in the lowest position of each triple.
func MortonGen3d(x, y, z, num uint32) uint32 {
	var mort uint32
	for i := uint32(0); i < num; i++ {
		mort |= GetBit(z, i) << (3 * i)
		mort |= GetBit(y, i) << (3*i + 1)
		mort |= GetBit(x, i) << (3*i + 2)
	}
	return mort
}

// MortonDecode2d is the inverse of MortonGen2d
func MortonDecode2d(mort, num uint32) (x, y uint32) {
	for i := uint32(0); i < num; i++ {
		y |= GetBit(mort, 2*i) << i
		x |= GetBit(mort, 2*i+1) << i
	}
	return x, y
}

// MortonDecode3d is the inverse of MortonGen3d
func MortonDecode3d(mort, num uint32) (x, y, z uint32) {
	for i := uint32(0); i < num; i++ {
		z |= GetBit(mort, 3*i) << i
		y |= GetBit(mort, 3*i+1) << i
		x |= GetBit(mort, 3*i+2) << i
	}
	return x, y, z
}

// GetBits extracts the n-bit field of src starting at srcStart and returns it positioned at dstStart.
// Both fields must fit in 32 bits.
func GetBits(src, srcStart, n, dstStart uint32) uint32 {
	DebugCheckBitRange(srcStart, n)
	DebugCheckBitRange(dstStart, n)

	var mask uint32 = 0xffffffff
	if n < 32 {
		mask = (1 << n) - 1
	}
	return ((src >> srcStart) & mask) << dstStart
}

// ShiftCeil returns ceil(value / 2^shift)
func ShiftCeil(value, shift uint32) uint32 {
	result := value >> shift
	if value&((1<<shift)-1) != 0 {
		result++
	}
	return result
}

// ShiftRight returns value >> shift, but never less than 1
func ShiftRight(value, shift uint32) uint32 {
	return max(value>>shift, 1)
}

// BitsToBytes converts a bit count to a byte count, rounding up
func BitsToBytes[T Number](bitCount T) T {
	return (bitCount + 7) / 8
}

// BytesToBits converts a byte count to a bit count
func BytesToBits[T Number](byteCount T) T {
	return byteCount * 8
}
