package fdl

import "github.com/gogpu/gputypes"

// Format identifies a pixel format by its memory footprint. Only the block geometry and
// the channel layout matter to the layout code.
type Format int32

const (
	FormatNone Format = iota
	FormatR8Unorm
	FormatY8Unorm
	FormatR8G8Unorm
	FormatR16Unorm
	FormatR16Float
	FormatZ16Unorm
	FormatR8G8B8Unorm
	FormatR8G8B8A8Unorm
	FormatB8G8R8A8Unorm
	FormatR10G10B10A2Unorm
	FormatR16G16Float
	FormatR32Float
	FormatZ24UnormS8Uint
	FormatZ32Float
	FormatR16G16B16A16Float
	FormatR32G32Float
	FormatR32G32B32Float
	FormatR32G32B32A32Float
	FormatBC1RGBUnorm
	FormatBC3RGBAUnorm
	FormatETC2RGB8
	FormatASTC4x4
)

type formatInfo struct {
	name        string
	blockSize   uint32
	blockWidth  uint32
	blockHeight uint32
	components  uint32
	// bits of the first channel
	firstBits uint32
}

var formatTable = map[Format]formatInfo{
	FormatR8Unorm:           {"R8_UNORM", 1, 1, 1, 1, 8},
	FormatY8Unorm:           {"Y8_UNORM", 1, 1, 1, 1, 8},
	FormatR8G8Unorm:         {"R8G8_UNORM", 2, 1, 1, 2, 8},
	FormatR16Unorm:          {"R16_UNORM", 2, 1, 1, 1, 16},
	FormatR16Float:          {"R16_FLOAT", 2, 1, 1, 1, 16},
	FormatZ16Unorm:          {"Z16_UNORM", 2, 1, 1, 1, 16},
	FormatR8G8B8Unorm:       {"R8G8B8_UNORM", 3, 1, 1, 3, 8},
	FormatR8G8B8A8Unorm:     {"R8G8B8A8_UNORM", 4, 1, 1, 4, 8},
	FormatB8G8R8A8Unorm:     {"B8G8R8A8_UNORM", 4, 1, 1, 4, 8},
	FormatR10G10B10A2Unorm:  {"R10G10B10A2_UNORM", 4, 1, 1, 4, 10},
	FormatR16G16Float:       {"R16G16_FLOAT", 4, 1, 1, 2, 16},
	FormatR32Float:          {"R32_FLOAT", 4, 1, 1, 1, 32},
	FormatZ24UnormS8Uint:    {"Z24_UNORM_S8_UINT", 4, 1, 1, 2, 24},
	FormatZ32Float:          {"Z32_FLOAT", 4, 1, 1, 1, 32},
	FormatR16G16B16A16Float: {"R16G16B16A16_FLOAT", 8, 1, 1, 4, 16},
	FormatR32G32Float:       {"R32G32_FLOAT", 8, 1, 1, 2, 32},
	FormatR32G32B32Float:    {"R32G32B32_FLOAT", 12, 1, 1, 3, 32},
	FormatR32G32B32A32Float: {"R32G32B32A32_FLOAT", 16, 1, 1, 4, 32},
	FormatBC1RGBUnorm:       {"BC1_RGB_UNORM", 8, 4, 4, 3, 0},
	FormatBC3RGBAUnorm:      {"BC3_RGBA_UNORM", 16, 4, 4, 4, 0},
	FormatETC2RGB8:          {"ETC2_RGB8", 8, 4, 4, 3, 0},
	FormatASTC4x4:           {"ASTC_4x4", 16, 4, 4, 4, 0},
}

func (f Format) String() string {
	info, ok := formatTable[f]
	if !ok {
		return "NONE"
	}
	return info.name
}

// BlockSize is the number of bytes in one block of the format, a single pixel for
// uncompressed formats
func (f Format) BlockSize() uint32 {
	return formatTable[f].blockSize
}

func (f Format) IsCompressed() bool {
	info := formatTable[f]
	return info.blockWidth > 1 || info.blockHeight > 1
}

func (f Format) blocksX(width uint32) uint32 {
	w := formatTable[f].blockWidth
	return (width + w - 1) / w
}

func (f Format) blocksY(height uint32) uint32 {
	h := formatTable[f].blockHeight
	return (height + h - 1) / h
}

// isTwoChannel8 matches R8G8-style formats, which tile and compress differently from
// other 16-bit formats
func (f Format) isTwoChannel8() bool {
	info := formatTable[f]
	return info.components == 2 && info.firstBits == 8
}

var textureFormats = map[gputypes.TextureFormat]Format{
	gputypes.TextureFormatR8Unorm:             FormatR8Unorm,
	gputypes.TextureFormatRG8Unorm:            FormatR8G8Unorm,
	gputypes.TextureFormatRGBA8Unorm:          FormatR8G8B8A8Unorm,
	gputypes.TextureFormatBGRA8Unorm:          FormatB8G8R8A8Unorm,
	gputypes.TextureFormatRGBA16Float:         FormatR16G16B16A16Float,
	gputypes.TextureFormatRGBA32Float:         FormatR32G32B32A32Float,
	gputypes.TextureFormatDepth32Float:        FormatZ32Float,
	gputypes.TextureFormatDepth24PlusStencil8: FormatZ24UnormS8Uint,
}

// FormatFromTextureFormat maps a WebGPU texture format onto the layout format with the same
// footprint. The second return value is false for formats with no equivalent.
func FormatFromTextureFormat(format gputypes.TextureFormat) (Format, bool) {
	f, ok := textureFormats[format]
	return f, ok
}
