package element

import (
	"math"

	"golang.org/x/exp/slog"
)

// NumberType is the numeric encoding of one pixel component. The order matters to
// PixGetExportNorm: everything after NumberUscaled is outside the normalized export path.
type NumberType uint32

const (
	NumberZero NumberType = iota
	NumberOne
	NumberUnorm
	NumberSnorm
	NumberSscaled
	NumberUscaled
	NumberUint
	NumberSint
	NumberFloat32
	// NumberS5Float is the signed half float: 5-bit exponent, 10-bit mantissa
	NumberS5Float
	// NumberU5Float is the unsigned 11 and 10-bit float: 5-bit exponent, 6 or 5-bit mantissa
	NumberU5Float
	// NumberU4FloatC is the unsigned 24-bit depth float clamped to [0, 1]: 4-bit exponent, 20-bit mantissa
	NumberU4FloatC
	NumberSharedExp
)

var numberTypeMapping = map[NumberType]string{
	NumberZero:      "Zero",
	NumberOne:       "One",
	NumberUnorm:     "Unorm",
	NumberSnorm:     "Snorm",
	NumberSscaled:   "Sscaled",
	NumberUscaled:   "Uscaled",
	NumberUint:      "Uint",
	NumberSint:      "Sint",
	NumberFloat32:   "Float32",
	NumberS5Float:   "S5Float",
	NumberU5Float:   "U5Float",
	NumberU4FloatC:  "U4FloatC",
	NumberSharedExp: "SharedExp",
}

func (t NumberType) String() string {
	return numberTypeMapping[t]
}

// SurfaceNumber is the number format a color surface is written with
type SurfaceNumber uint32

const (
	SurfaceNumberUnorm SurfaceNumber = iota
	SurfaceNumberSnorm
	SurfaceNumberUscaled
	SurfaceNumberSscaled
	SurfaceNumberUint
	SurfaceNumberSint
	SurfaceNumberSrgb
	SurfaceNumberFloat
)

// SurfaceSwap selects which color channel lands in each component of a format
type SurfaceSwap uint32

const (
	SwapStd SurfaceSwap = iota
	SwapAlt
	SwapStdRev
	SwapAltRev
)

// EndianSwap reorders the bytes of a packed pixel
type EndianSwap uint32

const (
	EndianNone EndianSwap = iota
	Endian8In16
	Endian8In32
	Endian8In64
)

// Channel indices used by PixelFormatInfo
const (
	ChannelR = iota
	ChannelG
	ChannelB
	ChannelA
)

// PixelFormatInfo describes where each of the four channels lives in a packed pixel
type PixelFormatInfo struct {
	CompBits  [4]uint32
	CompStart [4]uint32
	NumType   [4]NumberType
	// TotalBits is the pixel size in bits including unused bits
	TotalBits uint32
}

var swapOrder = [5][4][]int{
	1: {
		SwapStd:    {ChannelR},
		SwapAlt:    {ChannelG},
		SwapStdRev: {ChannelB},
		SwapAltRev: {ChannelA},
	},
	2: {
		SwapStd:    {ChannelR, ChannelG},
		SwapAlt:    {ChannelR, ChannelA},
		SwapStdRev: {ChannelG, ChannelR},
		SwapAltRev: {ChannelA, ChannelR},
	},
	3: {
		SwapStd:    {ChannelR, ChannelG, ChannelB},
		SwapAlt:    {ChannelR, ChannelG, ChannelA},
		SwapStdRev: {ChannelB, ChannelG, ChannelR},
		SwapAltRev: {ChannelA, ChannelG, ChannelR},
	},
	4: {
		SwapStd:    {ChannelR, ChannelG, ChannelB, ChannelA},
		SwapAlt:    {ChannelB, ChannelG, ChannelR, ChannelA},
		SwapStdRev: {ChannelA, ChannelB, ChannelG, ChannelR},
		SwapAltRev: {ChannelA, ChannelR, ChannelG, ChannelB},
	},
}

func componentNumberType(number SurfaceNumber, bits uint32, sharedExp bool) NumberType {
	switch number {
	case SurfaceNumberUnorm, SurfaceNumberSrgb:
		return NumberUnorm
	case SurfaceNumberSnorm:
		return NumberSnorm
	case SurfaceNumberUscaled:
		return NumberUscaled
	case SurfaceNumberSscaled:
		return NumberSscaled
	case SurfaceNumberUint:
		return NumberUint
	case SurfaceNumberSint:
		return NumberSint
	case SurfaceNumberFloat:
		if sharedExp {
			return NumberSharedExp
		}
		switch bits {
		case 32:
			return NumberFloat32
		case 16:
			return NumberS5Float
		case 11, 10:
			return NumberU5Float
		case 24:
			return NumberU4FloatC
		}
		// stencil and other integer fields carried by float formats
		return NumberUint
	}
	return NumberZero
}

// PixGetColorCompInfo builds the channel layout of a color format for a number format and channel swap.
// Channels the format does not store are reported with zero bits and a constant 0 (or 1 for alpha).
func (l *Lib) PixGetColorCompInfo(format Format, number SurfaceNumber, swap SurfaceSwap) PixelFormatInfo {
	info := PixelFormatInfo{
		NumType: [4]NumberType{NumberZero, NumberZero, NumberZero, NumberOne},
	}

	fmtInfo, ok := formatTable[format]
	if !ok || len(fmtInfo.comps) == 0 || len(fmtInfo.comps) > 4 || swap > SwapAltRev {
		l.logger.Debug("ElemLib::PixGetColorCompInfo unsupported format", slog.String("Format", format.String()))
		return info
	}

	if number == SurfaceNumberFloat && !fmtInfo.float {
		number = SurfaceNumberUnorm
	}

	sharedExp := format == Format5_9_9_9SharedExp
	order := swapOrder[len(fmtInfo.comps)][swap]
	if sharedExp {
		order = swapOrder[4][SwapStd]
	}

	start := uint32(0)
	for i, bits := range fmtInfo.comps {
		channel := order[i]
		info.CompBits[channel] = bits
		info.CompStart[channel] = start
		info.NumType[channel] = componentNumberType(number, bits, sharedExp)
		start += bits
	}
	info.TotalBits = start + fmtInfo.unusedBits

	return info
}

// DepthFormat identifies a depth/stencil surface format
type DepthFormat uint32

const (
	DepthFormatInvalid DepthFormat = iota
	DepthFormat16
	DepthFormatX8_24
	DepthFormat8_24
	DepthFormatX8_24Float
	DepthFormat8_24Float
	DepthFormat32Float
	DepthFormatX24_8_32Float
)

// PixGetDepthCompInfo describes the depth (channel R) and stencil (channel G) layout of a depth format
func (l *Lib) PixGetDepthCompInfo(format DepthFormat) PixelFormatInfo {
	info := PixelFormatInfo{}

	switch format {
	case DepthFormat16:
		info.CompBits[ChannelR], info.NumType[ChannelR] = 16, NumberUnorm
		info.TotalBits = 16
	case DepthFormatX8_24, DepthFormat8_24, DepthFormatX8_24Float, DepthFormat8_24Float:
		info.CompBits[ChannelR], info.CompStart[ChannelR] = 24, 8
		info.NumType[ChannelR] = NumberUnorm
		if format == DepthFormatX8_24Float || format == DepthFormat8_24Float {
			info.NumType[ChannelR] = NumberU4FloatC
		}
		if format == DepthFormat8_24 || format == DepthFormat8_24Float {
			info.CompBits[ChannelG], info.NumType[ChannelG] = 8, NumberUint
		}
		info.TotalBits = 32
	case DepthFormat32Float:
		info.CompBits[ChannelR], info.NumType[ChannelR] = 32, NumberFloat32
		info.TotalBits = 32
	case DepthFormatX24_8_32Float:
		info.CompBits[ChannelR], info.NumType[ChannelR] = 32, NumberFloat32
		info.CompBits[ChannelG], info.CompStart[ChannelG], info.NumType[ChannelG] = 8, 32, NumberUint
		info.TotalBits = 64
	default:
		l.logger.Debug("ElemLib::PixGetDepthCompInfo unsupported format", slog.Int("Format", int(format)))
	}

	return info
}

// Flt32ToDepthPixel converts a depth value (comps[0]) and stencil value (comps[1]) into packed pixel bytes
func (l *Lib) Flt32ToDepthPixel(format DepthFormat, comps [2]float32) []byte {
	info := l.PixGetDepthCompInfo(format)
	return packPixel(info, [4]float32{comps[0], comps[1]}, EndianNone)
}

// Flt32ToColorPixel converts up to four channel values into packed pixel bytes for a color format
func (l *Lib) Flt32ToColorPixel(format Format, number SurfaceNumber, swap SurfaceSwap, endian EndianSwap, comps [4]float32) []byte {
	info := l.PixGetColorCompInfo(format, number, swap)
	if info.TotalBits == 0 {
		return nil
	}

	if format == Format5_9_9_9SharedExp && number == SurfaceNumberFloat {
		value := encodeSharedExp(comps[ChannelR], comps[ChannelG], comps[ChannelB])
		pixel := []byte{byte(value), byte(value >> 8), byte(value >> 16), byte(value >> 24)}
		return swapEndian(pixel, endian)
	}

	return packPixel(info, comps, endian)
}

// Flt32sToInt32s converts one float component to its raw bit pattern in the given encoding
func Flt32sToInt32s(value float32, bits uint32, numType NumberType) uint32 {
	if bits == 0 {
		return 0
	}

	maxUnsigned := uint64(1)<<bits - 1
	v := float64(value)

	switch numType {
	case NumberZero:
		return 0
	case NumberOne:
		return uint32(maxUnsigned)
	case NumberUnorm:
		if math.IsNaN(v) || v <= 0 {
			return 0
		}
		if v >= 1 {
			return uint32(maxUnsigned)
		}
		if bits == 24 {
			// 24-bit depth rounds in single precision
			return uint32(value*float32(maxUnsigned) + 0.5)
		}
		return uint32(math.Floor(v*float64(maxUnsigned) + 0.5))
	case NumberSnorm:
		scale := float64(uint64(1)<<(bits-1) - 1)
		if math.IsNaN(v) {
			return 0
		}
		v = math.Max(-1, math.Min(1, v))
		return uint32(int64(math.Floor(v*scale+0.5))) & uint32(maxUnsigned)
	case NumberUscaled, NumberUint:
		if math.IsNaN(v) || v <= 0 {
			return 0
		}
		if v >= float64(maxUnsigned) {
			return uint32(maxUnsigned)
		}
		return uint32(math.Floor(v + 0.5))
	case NumberSscaled, NumberSint:
		minSigned := -float64(uint64(1) << (bits - 1))
		maxSigned := float64(uint64(1)<<(bits-1) - 1)
		if math.IsNaN(v) {
			return 0
		}
		v = math.Max(minSigned, math.Min(maxSigned, math.Floor(v+0.5)))
		return uint32(int64(v)) & uint32(maxUnsigned)
	case NumberFloat32:
		return math.Float32bits(value)
	case NumberS5Float:
		return half.encode(value)
	case NumberU5Float:
		if bits == 11 {
			return float11.encode(value)
		}
		return float10.encode(value)
	case NumberU4FloatC:
		return float24C.encode(value)
	}

	return 0
}

func packPixel(info PixelFormatInfo, comps [4]float32, endian EndianSwap) []byte {
	if info.TotalBits == 0 {
		return nil
	}

	pixel := make([]byte, (info.TotalBits+7)/8)
	var packed uint64

	for c := 0; c < 4; c++ {
		bits := info.CompBits[c]
		if bits == 0 {
			continue
		}

		value := Flt32sToInt32s(comps[c], bits, info.NumType[c])
		start := info.CompStart[c]

		if start%8 == 0 && bits%8 == 0 {
			for b := uint32(0); b < bits/8; b++ {
				pixel[start/8+b] = byte(value >> (8 * b))
			}
			continue
		}

		mask := uint64(1)<<bits - 1
		packed |= (uint64(value) & mask) << start
	}

	for b := 0; b < len(pixel) && b < 8; b++ {
		pixel[b] |= byte(packed >> (8 * b))
	}

	return swapEndian(pixel, endian)
}

func swapEndian(pixel []byte, endian EndianSwap) []byte {
	var group int
	switch endian {
	case Endian8In16:
		group = 2
	case Endian8In32:
		group = 4
	case Endian8In64:
		group = 8
	default:
		return pixel
	}

	for base := 0; base+group <= len(pixel); base += group {
		for i, j := base, base+group-1; i < j; i, j = i+1, j-1 {
			pixel[i], pixel[j] = pixel[j], pixel[i]
		}
	}
	return pixel
}

// PixGetExportNorm returns true if every channel of the format fits the normalized color export path
func (l *Lib) PixGetExportNorm(format Format, number SurfaceNumber, swap SurfaceSwap) bool {
	info := l.PixGetColorCompInfo(format, number, swap)
	if info.TotalBits == 0 {
		return false
	}

	for c := 0; c < 4; c++ {
		outside := info.CompBits[c] > 11 || info.NumType[c] > NumberUscaled
		if !outside {
			continue
		}

		if l.config.Fp16ExportNorm {
			switch info.NumType[c] {
			case NumberS5Float, NumberU5Float, NumberU4FloatC:
				continue
			}
		}
		return false
	}

	return true
}

// GetCompType returns the component layout of a color format in its standard channel order
func (l *Lib) GetCompType(format Format, number SurfaceNumber) PixelFormatInfo {
	return l.PixGetColorCompInfo(format, number, SwapStd)
}
