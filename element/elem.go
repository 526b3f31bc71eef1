package element

import (
	"github.com/vkngwrapper/addrlib/addrutil"
	"golang.org/x/exp/slog"
)

// Config holds the chip-dependent switches the element library honors
type Config struct {
	// Use32bppFor422Fmt stores GB_GR and BG_RG surfaces as 32-bit elements that each hold two pixels
	Use32bppFor422Fmt bool
	// Fp16ExportNorm relaxes PixGetExportNorm for the half-float style encodings
	Fp16ExportNorm bool
	// PadBCnToPow2 selects the R8xx handling of BC1-BC7 surfaces, whose dimensions are padded to a
	// power of two before AdjustSurfaceInfo divides them by the block size without rounding up
	PadBCnToPow2 bool
}

// Lib converts between pixel formats and storage elements. It is immutable once created and safe
// for concurrent use.
type Lib struct {
	logger *slog.Logger
	config Config
}

// New creates an element library. A nil logger discards all output.
func New(logger *slog.Logger, config Config) *Lib {
	return &Lib{logger: addrutil.LoggerOrDiscard(logger), config: config}
}

// Config returns the switches this library was created with
func (l *Lib) Config() Config {
	return l.config
}

// BitsPerPixel is the result of GetBitsPerPixel
type BitsPerPixel struct {
	// Bpp is the number of storage bits per addressable element. For block-compressed and packed
	// formats this is the size of the whole block or pixel group.
	Bpp        uint32
	ElemMode   ElemMode
	ExpandX    uint32
	ExpandY    uint32
	UnusedBits uint32
}

// GetBitsPerPixel looks up the storage properties of a format. Unknown formats return a zero Bpp.
func (l *Lib) GetBitsPerPixel(format Format) BitsPerPixel {
	info, ok := formatTable[format]
	if !ok {
		l.logger.Debug("ElemLib::GetBitsPerPixel unknown format", slog.Int("Format", int(format)))
		return BitsPerPixel{ExpandX: 1, ExpandY: 1}
	}

	result := BitsPerPixel{
		Bpp:        info.bpp,
		ElemMode:   info.elemMode,
		ExpandX:    max(info.expandX, 1),
		ExpandY:    max(info.expandY, 1),
		UnusedBits: info.unusedBits,
	}

	if IsMacroPixelPacked(format) && l.config.Use32bppFor422Fmt {
		result.Bpp = 32
		result.ExpandX = 2
	}

	return result
}

// SurfaceDims holds the quantities that AdjustSurfaceInfo and RestoreSurfaceInfo convert between
// pixel units and element units
type SurfaceDims struct {
	Bpp       uint32
	BasePitch uint32
	Width     uint32
	Height    uint32
}

// AdjustSurfaceInfo converts pixel-unit dimensions into storage-element units
func (l *Lib) AdjustSurfaceInfo(mode ElemMode, expandX, expandY uint32, dims SurfaceDims) SurfaceDims {
	expandX = max(expandX, 1)
	expandY = max(expandY, 1)
	out := dims

	if dims.Bpp != 0 {
		switch mode {
		case ElemModeExpanded:
			out.Bpp = dims.Bpp / expandX / expandY
		case ElemModePackedStd, ElemModePackedRev:
			out.Bpp = dims.Bpp * expandX * expandY
		case ElemModeUncompressed, ElemModePackedGBGR, ElemModePackedBGRG:
		case ElemModePackedBC1, ElemModePackedBC4, ElemModePackedETC2_64:
			out.Bpp = 64
		case ElemModePackedBC2, ElemModePackedBC3, ElemModePackedBC5, ElemModePackedBC6,
			ElemModePackedBC7, ElemModePackedETC2_128, ElemModePackedASTC:
			out.Bpp = 128
		default:
			l.logger.Debug("ElemLib::AdjustSurfaceInfo unknown element mode", slog.Int("ElemMode", int(mode)))
		}
	}

	if expandX == 1 && expandY == 1 {
		return out
	}

	if mode == ElemModeExpanded {
		out.Width = dims.Width * expandX
		out.Height = dims.Height * expandY
		out.BasePitch = dims.BasePitch * expandX
		return out
	}

	if mode.IsBCn() && l.config.PadBCnToPow2 {
		// Dimensions were padded to a power of two up front, so they divide exactly
		if dims.Width%expandX != 0 || dims.Height%expandY != 0 {
			l.logger.Debug("ElemLib::AdjustSurfaceInfo BCn surface not padded to block size",
				slog.Int("Width", int(dims.Width)), slog.Int("Height", int(dims.Height)))
		}
		out.Width = max(dims.Width/expandX, 1)
		out.Height = max(dims.Height/expandY, 1)
	} else {
		out.Width = max((dims.Width+expandX-1)/expandX, 1)
		out.Height = max((dims.Height+expandY-1)/expandY, 1)
	}
	out.BasePitch = dims.BasePitch / expandX

	return out
}

// RestoreSurfaceInfo is the inverse of AdjustSurfaceInfo: it converts element units back into pixel units
func (l *Lib) RestoreSurfaceInfo(mode ElemMode, expandX, expandY uint32, dims SurfaceDims) SurfaceDims {
	expandX = max(expandX, 1)
	expandY = max(expandY, 1)
	out := dims

	if dims.Bpp != 0 {
		switch mode {
		case ElemModeExpanded:
			out.Bpp = dims.Bpp * expandX * expandY
		case ElemModePackedStd, ElemModePackedRev:
			out.Bpp = dims.Bpp / expandX / expandY
		}
	}

	if expandX == 1 && expandY == 1 {
		return out
	}

	if mode == ElemModeExpanded {
		out.Width = dims.Width / expandX
		out.Height = dims.Height / expandY
		out.BasePitch = dims.BasePitch / expandX
		return out
	}

	out.Width = dims.Width * expandX
	out.Height = dims.Height * expandY
	out.BasePitch = dims.BasePitch * expandX

	return out
}

// PadForFormat rounds a level-0 surface up to the format's block footprint. BCn surfaces on chips that
// divide without rounding are padded to a power of two instead.
func (l *Lib) PadForFormat(mode ElemMode, expandX, expandY uint32, width, height uint32) (uint32, uint32) {
	if mode.IsBCn() && l.config.PadBCnToPow2 {
		return addrutil.NextPow2(width), addrutil.NextPow2(height)
	}
	if mode == ElemModeExpanded || (expandX <= 1 && expandY <= 1) {
		return width, height
	}
	return addrutil.AlignUp(width, max(expandX, 1)), addrutil.AlignUp(height, max(expandY, 1))
}
