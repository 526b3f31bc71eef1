package addrlib

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/addrlib/addrutil"
	"github.com/vkngwrapper/addrlib/element"
	"github.com/vkngwrapper/addrlib/equation"
	"golang.org/x/exp/slog"
)

const (
	microTileWidth  = 8
	microTileHeight = 8
	microTilePixels = microTileWidth * microTileHeight
	prtTileBytes    = 64 * 1024
	maxBpp          = 128
	maxSamples      = 16
)

// SurfaceInfoInput describes a surface for ComputeSurfaceInfo. Create it with NewSurfaceInfoInput,
// which fills Size and sets TileIndex to TileIndexInvalid.
type SurfaceInfoInput struct {
	Size uint32
	// TileMode is the requested tile mode. TileModeUnknown selects one.
	TileMode TileMode
	// Format is the pixel format. FormatInvalid means Bpp gives the element size directly.
	Format     element.Format
	Bpp        uint32
	NumSamples uint32
	Width      uint32
	Height     uint32
	NumSlices  uint32
	MipLevel   uint32
	Flags      SurfaceFlags
	// TileIndex names a tile mode table row when the Lib was created with CreateUseTileIndex
	TileIndex int32
	// TileConfig overrides the default macro tile configuration when no tile index is used
	TileConfig *TileConfig
	// TileType overrides the micro tile type derived from Flags
	TileType *equation.MicroTileType
	// MaxBaseAlign limits the base alignment OptimizeTileMode may settle on. 0 means no limit.
	MaxBaseAlign uint32
}

func NewSurfaceInfoInput() SurfaceInfoInput {
	return SurfaceInfoInput{
		Size:      uint32(unsafe.Sizeof(SurfaceInfoInput{})),
		TileIndex: TileIndexInvalid,
	}
}

// SurfaceInfoOutput is the layout ComputeSurfaceInfo computed. Pitch, Height and Bpp are in
// storage elements; the Pixel fields convert them back to pixels of the requested format.
type SurfaceInfoOutput struct {
	Size uint32

	Pitch  uint32
	Height uint32
	// Depth is the slice count padded to the tile thickness
	Depth    uint32
	SurfSize uint64

	TileMode       TileMode
	TileType       equation.MicroTileType
	TileConfig     TileConfig
	TileIndex      int32
	MacroModeIndex int32

	BaseAlign   uint32
	PitchAlign  uint32
	HeightAlign uint32
	DepthAlign  uint32

	Bpp         uint32
	PixelPitch  uint32
	PixelHeight uint32
	PixelBits   uint32

	SliceSize uint64
	// LastSliceSize includes the padding that aligns the surface size to BaseAlign
	LastSliceSize uint64

	PitchTileMax  uint32
	HeightTileMax uint32
	SliceTileMax  uint32

	// Last2DLevel is set with CreateCheckLast2DLevel when the next mip level degrades to micro tiling
	Last2DLevel bool
	// EquationIndex is the index in GetEquationTable of the surface's address equation, or
	// equation.InvalidIndex
	EquationIndex uint32
	// BlockWidth, BlockHeight and BlockSlices are the region the equation addresses
	BlockWidth  uint32
	BlockHeight uint32
	BlockSlices uint32

	StereoRightOffset  uint64
	StereoRightSwizzle uint32
}

func NewSurfaceInfoOutput() SurfaceInfoOutput {
	return SurfaceInfoOutput{Size: uint32(unsafe.Sizeof(SurfaceInfoOutput{}))}
}

// surfaceTiling is a fully resolved tile mode, micro tile type and configuration
type surfaceTiling struct {
	mode           TileMode
	tileType       equation.MicroTileType
	config         TileConfig
	tileIndex      int32
	macroModeIndex int32
}

// surfaceRequest is a SurfaceInfoInput normalized to storage elements
type surfaceRequest struct {
	bpp        uint32
	numSamples uint32
	width      uint32
	height     uint32
	numSlices  uint32
	mipLevel   uint32
	flags      SurfaceFlags
	maxAlign   uint32

	elemMode         element.ElemMode
	expandX, expandY uint32

	tiling surfaceTiling
}

func (l *Lib) defaultTileType(mode TileMode, flags SurfaceFlags) equation.MicroTileType {
	switch {
	case mode.IsThick():
		return equation.MicroTileThick
	case flags&(SurfaceDepth|SurfaceStencil) != 0:
		return equation.MicroTileDepthSampleOrder
	case flags&SurfaceDisplay != 0:
		return equation.MicroTileDisplayable
	}
	return equation.MicroTileNonDisplayable
}

func (l *Lib) pickTileType(mode TileMode, flags SurfaceFlags, override *equation.MicroTileType) equation.MicroTileType {
	if override == nil || (*override == equation.MicroTileThick && !mode.IsThick()) {
		return l.defaultTileType(mode, flags)
	}
	return *override
}

func (l *Lib) usesTileIndex(tileIndex int32) bool {
	return l.hasFlag(CreateUseTileIndex) && tileIndex != TileIndexInvalid
}

// resolveTiling settles the tile mode, micro tile type and configuration of a surface, either from
// its tile index or from the explicit fields
func (l *Lib) resolveTiling(mode TileMode, flags SurfaceFlags, tileIndex int32, config *TileConfig,
	tileType *equation.MicroTileType, bpp, numSamples uint32) (surfaceTiling, error) {

	if l.usesTileIndex(tileIndex) {
		info, err := l.resolveTileIndex(tileIndex, flags, bpp, numSamples)
		if err != nil {
			return surfaceTiling{}, err
		}
		return surfaceTiling{
			mode:           info.Mode,
			tileType:       info.TileType,
			config:         info.Config,
			tileIndex:      tileIndex,
			macroModeIndex: info.MacroModeIndex,
		}, nil
	}

	tiling := surfaceTiling{
		mode:           mode,
		tileIndex:      TileIndexInvalid,
		macroModeIndex: TileIndexNoMacroIndex,
	}
	if config != nil {
		tiling.config = *config
	} else {
		tiling.config = l.ops.defaultTileConfig(l, mode)
	}
	tiling.tileType = l.pickTileType(mode, flags, tileType)
	return tiling, nil
}

// postCheckTileIndex finds the tile index of a mode that OptimizeTileMode degraded to, falling back
// to the first row of the mode when none has the micro tile type
func (l *Lib) postCheckTileIndex(mode TileMode, tileType equation.MicroTileType) int32 {
	if index := l.lookupTileIndex(mode, tileType, nil); index != TileIndexInvalid {
		return index
	}
	for i, reg := range l.tileTable {
		if reg.TileMode == mode {
			return int32(i)
		}
	}
	return TileIndexInvalid
}

// selectTileMode picks the tile mode and micro tile type of a surface that asked for TileModeUnknown
func (l *Lib) selectTileMode(req *surfaceRequest) (TileMode, equation.MicroTileType) {
	mode := TileMode2DTiledThin1
	var tileType equation.MicroTileType
	switch {
	case req.flags&SurfaceVolume != 0:
		switch {
		case req.numSlices >= 8:
			mode = TileMode2DTiledXThick
		case req.numSlices >= 4:
			mode = TileMode2DTiledThick
		}
		tileType = equation.MicroTileNonDisplayable
	case req.flags&(SurfaceDepth|SurfaceStencil) != 0:
		tileType = equation.MicroTileDepthSampleOrder
	case req.bpp <= 32 || req.flags&SurfaceDisplay != 0:
		tileType = equation.MicroTileDisplayable
	default:
		tileType = equation.MicroTileNonDisplayable
	}

	if req.flags&SurfacePrt != 0 {
		mode = l.prtTileMode(mode.IsThick())
		if tileType == equation.MicroTileDisplayable {
			tileType = equation.MicroTileNonDisplayable
		}
	}
	return mode, tileType
}

// prtTileMode is the mode a PRT surface lands on. SI has no usable PRT modes and tiles PRT surfaces
// as 2D.
func (l *Lib) prtTileMode(thick bool) TileMode {
	switch {
	case l.generation == GenerationSI:
		return TileMode2DTiledThin1
	case thick:
		return TileModePrtTiledThick
	}
	return TileModePrtTiledThin1
}

var siPrtOverrides = map[TileMode]TileMode{
	TileModePrtTiledThin1:   TileMode2DTiledThin1,
	TileModePrtTiledThick:   TileMode2DTiledThick,
	TileModePrt2DTiledThick: TileMode2DTiledThick,
	TileModePrt3DTiledThick: TileMode3DTiledThick,
}

// overrideTileMode replaces the PRT modes SI cannot address with the 2D and 3D modes PRT surfaces
// use there
func (l *Lib) overrideTileMode(req *surfaceRequest, mode TileMode) TileMode {
	if l.generation != GenerationSI {
		return mode
	}
	if to, ok := siPrtOverrides[mode]; ok {
		req.flags |= SurfacePrt
		return to
	}
	return mode
}

// degradesTo1D reports whether a macro tiled surface is smaller than one macro tile or would grow
// past 1.5 times its size when padded to whole macro tiles
func degradesTo1D(width, height, pitchAlign, heightAlign uint32) bool {
	if width < pitchAlign || height < heightAlign {
		return true
	}
	aligned := uint64(addrutil.AlignUp(width, pitchAlign)) * uint64(addrutil.AlignUp(height, heightAlign))
	return 2*aligned > 3*uint64(width)*uint64(height)
}

func microTileMode(thickness uint32) TileMode {
	if thickness == 1 {
		return TileMode1DTiledThin1
	}
	return TileMode1DTiledThick
}

// degradeLargeThickTile thins a thick mode whose micro tile is larger than a DRAM row
func (l *Lib) degradeLargeThickTile(mode TileMode, bpp uint32) TileMode {
	thickness := mode.Thickness()
	if thickness == 1 || l.hasFlag(CreateAllowLargeThickTile) || l.chip.rowSize == 0 {
		return mode
	}
	tileSize := microTilePixels * thickness * (bpp / 8)
	if tileSize <= l.chip.rowSize {
		return mode
	}
	switch mode {
	case TileMode2DTiledXThick:
		if tileSize/2 <= l.chip.rowSize {
			return TileMode2DTiledThick
		}
		return TileMode2DTiledThin1
	case TileMode3DTiledXThick:
		if tileSize/2 <= l.chip.rowSize {
			return TileMode3DTiledThick
		}
		return TileMode3DTiledThin1
	case TileMode2DTiledThick:
		return TileMode2DTiledThin1
	case TileMode3DTiledThick:
		return TileMode3DTiledThin1
	case TileModePrtTiledThick:
		return TileModePrtTiledThin1
	case TileModePrt2DTiledThick:
		return TileModePrt2DTiledThin1
	case TileModePrt3DTiledThick:
		return TileModePrt3DTiledThin1
	}
	return mode
}

// degradeThickTileMode thins a thick mode for a surface with fewer slices than its thickness
func degradeThickTileMode(mode TileMode, numSlices uint32) TileMode {
	switch mode {
	case TileMode2DTiledXThick:
		if numSlices < 4 {
			return TileMode2DTiledThin1
		}
		return TileMode2DTiledThick
	case TileMode3DTiledXThick:
		if numSlices < 4 {
			return TileMode3DTiledThin1
		}
		return TileMode3DTiledThick
	}
	if thinner := mode.flags().thinner; mode.IsThick() && thinner != TileModeLinearGeneral {
		return thinner
	}
	return mode
}

// optimizeTileMode trades the requested macro tiling for a smaller footprint or a smaller base
// alignment when the surface flags or MaxBaseAlign ask for it
func (l *Lib) optimizeTileMode(req *surfaceRequest, tiling surfaceTiling) surfaceTiling {
	original := tiling.mode
	mode := tiling.mode
	thickness := mode.Thickness()
	convertToPrt := false

	doOpt := req.flags&(SurfaceOpt4Space|SurfaceMinimizeAlignment) != 0 || req.maxAlign != 0
	if doOpt && req.mipLevel == 0 && !mode.IsPrt() && req.flags&SurfacePrt == 0 {
		var layout tileLayout
		if mode.IsMacroTiled() {
			layout = l.macroTileLayout(mode, tiling.config, req.bpp, req.numSamples)
		}

		if req.flags&SurfaceDisplay == 0 && req.flags&SurfaceOpt4Space != 0 && req.numSamples <= 1 {
			switch {
			case req.height == 1 && !mode.IsLinear() && !req.elemMode.IsBCn() &&
				req.flags&(SurfaceDepth|SurfaceStencil|SurfaceDisableLinearOpt) == 0 &&
				!l.hasFlag(CreateDisableLinearOpt):
				mode = TileModeLinearAligned
			case mode.IsMacroTiled() && req.flags&SurfaceTcCompatible == 0:
				if degradesTo1D(req.width, req.height, layout.pitchAlign, layout.heightAlign) {
					mode = microTileMode(thickness)
				} else if thickness > 1 && req.flags&SurfaceDisallowLargeThickDegrade == 0 {
					if thinner := l.degradeLargeThickTile(mode, req.bpp); thinner != mode {
						mode = thinner
						thickness = mode.Thickness()
						layout = l.macroTileLayout(mode, tiling.config, req.bpp, req.numSamples)
						if degradesTo1D(req.width, req.height, layout.pitchAlign, layout.heightAlign) {
							mode = TileMode1DTiledThick
						}
					}
				}
			}
		}

		if req.flags&SurfaceMinimizeAlignment != 0 && req.numSamples <= 1 && mode.IsMacroTiled() {
			macroSize := uint64(addrutil.AlignUp(req.width, layout.pitchAlign)) * uint64(addrutil.AlignUp(req.height, layout.heightAlign))
			microSize := uint64(addrutil.AlignUp(req.width, microTileWidth)) * uint64(addrutil.AlignUp(req.height, microTileHeight))
			if macroSize > microSize {
				mode = microTileMode(thickness)
			}
		}

		if req.maxAlign != 0 && mode.IsMacroTiled() && layout.baseAlign > req.maxAlign {
			switch {
			case req.numSamples > 1:
				convertToPrt = true
			case req.maxAlign < prtTileBytes:
				mode = microTileMode(thickness)
			default:
				convertToPrt = true
			}
		}
	}

	if convertToPrt {
		if req.flags&SurfaceMatchStencilTileCfg != 0 && req.numSamples <= 1 {
			mode = TileMode1DTiledThin1
		} else {
			mode = l.prtTileMode(false)
			if tiling.tileType != equation.MicroTileDepthSampleOrder {
				tiling.tileType = equation.MicroTileNonDisplayable
			}
			req.flags |= SurfacePrt
		}
	}

	// SI and CI keep surfaces that need an address equation on modes that have one
	if l.generation != GenerationR800 && req.flags&SurfaceNeedEquation != 0 && mode.IsMacroTiled() && req.numSamples <= 1 {
		switch {
		case mode.IsThick():
			mode = TileMode1DTiledThick
		case req.numSlices > 1:
			mode = TileMode1DTiledThin1
		default:
			mode = TileMode2DTiledThin1
		}
	}

	if mode != original {
		l.logger.Debug("AddrLib::OptimizeTileMode",
			slog.String("From", original.String()),
			slog.String("To", mode.String()),
		)
	}
	tiling.mode = mode
	return tiling
}

// mipLevelTileMode degrades the tile mode of a mip level smaller than a macro tile, or whose micro
// tiles are too small to fill a pipe and bank interleave
func (l *Lib) mipLevelTileMode(mode TileMode, config TileConfig, bpp, width, height, numSlices, numSamples uint32) TileMode {
	if mode == TileMode1DTiledThick && numSlices < 4 {
		return TileMode1DTiledThin1
	}
	if !mode.IsMacroTiled() {
		return mode
	}

	layout := l.macroTileLayout(mode, config, bpp, numSamples)
	bytesPerTile := microTilePixels * mode.Thickness() * addrutil.NextPow2(bpp) / 8 * numSamples
	if numSlices < mode.Thickness() {
		thinner := degradeThickTileMode(mode, numSlices)
		bytesPerTile = bytesPerTile / mode.Thickness() * thinner.Thickness()
		mode = thinner
	}
	if config.TileSplitBytes != 0 && bytesPerTile > config.TileSplitBytes {
		bytesPerTile = config.TileSplitBytes
	}

	interleave := l.chip.pipeInterleave * max(l.chip.bankInterleave, 1)
	if mode.IsThick() {
		if width < layout.pitchAlign || height < layout.heightAlign {
			return TileMode1DTiledThick
		}
		return mode
	}
	threshold1 := bytesPerTile * layout.numPipes * config.BankWidth * max(config.MacroAspectRatio, 1)
	threshold2 := bytesPerTile * config.BankWidth * config.BankHeight
	if width < layout.pitchAlign || height < layout.heightAlign || interleave > threshold1 || interleave > threshold2 {
		return TileMode1DTiledThin1
	}
	return mode
}

// prepareSurface validates a SurfaceInfoInput, converts it to storage elements and settles its tiling
func (l *Lib) prepareSurface(in *SurfaceInfoInput) (surfaceRequest, error) {
	if l.generation.IsV2() {
		return surfaceRequest{}, errors.Wrapf(ErrNotSupported, "tile modes on %s, use swizzle modes", l.generation)
	}

	req := surfaceRequest{
		numSamples: max(in.NumSamples, 1),
		width:      in.Width,
		height:     in.Height,
		numSlices:  max(in.NumSlices, 1),
		mipLevel:   in.MipLevel,
		flags:      in.Flags,
		maxAlign:   in.MaxBaseAlign,
		expandX:    1,
		expandY:    1,
	}

	req.bpp = in.Bpp
	if in.Format != element.FormatInvalid {
		bpi := l.elem.GetBitsPerPixel(in.Format)
		if bpi.Bpp == 0 {
			return req, errInvalidf("unknown format %d", in.Format)
		}
		req.bpp, req.elemMode, req.expandX, req.expandY = bpi.Bpp, bpi.ElemMode, bpi.ExpandX, bpi.ExpandY
	}

	switch {
	case req.bpp == 0 || req.bpp > maxBpp:
		return req, errInvalidf("bpp %d outside 1-%d", req.bpp, maxBpp)
	case in.TileMode == TileModeUnknown && in.MipLevel > 0 && !l.usesTileIndex(in.TileIndex):
		return req, errInvalidf("tile mode selection for mip level %d", in.MipLevel)
	case in.TileMode != TileModeUnknown && !in.TileMode.valid():
		return req, errInvalidf("tile mode %d", in.TileMode)
	case in.TileMode.IsThick() && req.numSamples > 1:
		return req, errInvalidf("%s with %d samples", in.TileMode, req.numSamples)
	case !addrutil.IsPow2(req.numSamples) || req.numSamples > maxSamples:
		return req, errInvalidf("%d samples", req.numSamples)
	case in.Width == 0 || in.Height == 0:
		return req, errInvalidf("surface %dx%d", in.Width, in.Height)
	}

	if in.Format != element.FormatInvalid {
		req.width, req.height = l.elem.PadForFormat(req.elemMode, req.expandX, req.expandY, req.width, req.height)
	}
	if in.MipLevel > 0 || in.Flags&SurfacePow2Pad != 0 {
		req.width = addrutil.NextPow2(req.width)
		req.height = addrutil.NextPow2(req.height)
		if in.Flags&SurfaceVolume != 0 {
			req.numSlices = addrutil.NextPow2(req.numSlices)
		}
		if in.Flags&SurfaceCube != 0 && in.MipLevel > 0 && !l.hasFlag(CreateNoCubeMipSlicesPad) {
			req.numSlices = addrutil.NextPow2(req.numSlices)
		}
	}

	dims := l.elem.AdjustSurfaceInfo(req.elemMode, req.expandX, req.expandY, element.SurfaceDims{
		Bpp:    req.bpp,
		Width:  req.width,
		Height: req.height,
	})
	req.bpp, req.width, req.height = dims.Bpp, dims.Width, dims.Height
	if req.bpp%8 != 0 || req.bpp > maxBpp {
		return req, errInvalidf("element size %d bits", req.bpp)
	}

	mode := in.TileMode
	tileType := in.TileType
	selected := mode == TileModeUnknown && !l.usesTileIndex(in.TileIndex)
	if selected {
		var selectedType equation.MicroTileType
		mode, selectedType = l.selectTileMode(&req)
		if tileType == nil {
			tileType = &selectedType
		}
		req.flags |= SurfaceOpt4Space
	}

	tiling, err := l.resolveTiling(mode, req.flags, in.TileIndex, in.TileConfig, tileType, req.bpp, req.numSamples)
	if err != nil {
		return req, err
	}
	if !selected {
		tiling.mode = l.overrideTileMode(&req, tiling.mode)
	}
	if tiling.mode.IsMacroTiled() {
		if err := tiling.config.validate(); err != nil {
			return req, err
		}
	}

	optimized := l.optimizeTileMode(&req, tiling)
	if selected {
		optimized.mode = l.overrideTileMode(&req, optimized.mode)
	}
	if req.flags&SurfaceDisallowLargeThickDegrade == 0 {
		optimized.mode = l.degradeLargeThickTile(optimized.mode, req.bpp)
	}
	if req.mipLevel > 0 {
		optimized.mode = l.mipLevelTileMode(optimized.mode, optimized.config, req.bpp, req.width, req.height, req.numSlices, req.numSamples)
	}

	if optimized.mode != tiling.mode {
		if tiling.tileIndex != TileIndexInvalid {
			index := l.postCheckTileIndex(optimized.mode, optimized.tileType)
			if index != TileIndexInvalid {
				resolved, err := l.resolveTiling(optimized.mode, req.flags, index, nil, &optimized.tileType, req.bpp, req.numSamples)
				if err != nil {
					return req, err
				}
				resolved.mode = optimized.mode
				optimized = resolved
			} else {
				optimized.tileIndex = TileIndexInvalid
				optimized.macroModeIndex = TileIndexNoMacroIndex
			}
		}
		if optimized.tileType == equation.MicroTileThick && !optimized.mode.IsThick() {
			optimized.tileType = l.pickTileType(optimized.mode, req.flags, in.TileType)
		}
	}
	tiling = optimized

	if tiling.mode.IsThick() && req.numSamples > 1 {
		return req, errInvalidf("%s with %d samples", tiling.mode, req.numSamples)
	}
	if tiling.mode != TileModeLinearGeneral && !addrutil.IsPow2(req.bpp) {
		return req, errInvalidf("%s with a %d bit element", tiling.mode, req.bpp)
	}

	req.tiling = tiling
	return req, nil
}

// OptimizeTileMode returns the tile mode ComputeSurfaceInfo would lay the surface out with
func (l *Lib) OptimizeTileMode(in *SurfaceInfoInput) (TileMode, error) {
	if err := l.checkSize("SurfaceInfoInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return TileModeUnknown, err
	}
	req, err := l.prepareSurface(in)
	if err != nil {
		return TileModeUnknown, err
	}
	return req.tiling.mode, nil
}

// ComputeSurfaceInfo computes the padded dimensions, size and alignments of a surface on a tile
// mode chip
func (l *Lib) ComputeSurfaceInfo(in *SurfaceInfoInput, out *SurfaceInfoOutput) error {
	if err := l.checkSize("SurfaceInfoInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("SurfaceInfoOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}

	req, err := l.prepareSurface(in)
	if err != nil {
		return err
	}

	tiling := req.tiling
	layout := l.tileLayout(tiling.mode, tiling.config, req.bpp, req.numSamples, req.flags)

	pitch := addrutil.AlignUp(req.width, layout.pitchAlign)
	height := addrutil.AlignUp(req.height, layout.heightAlign)
	depth := addrutil.AlignUp(req.numSlices, layout.depthAlign)

	// Each slice, or each group of slices sharing a thick tile, starts on a base alignment boundary
	groupBytes := func() uint64 {
		return uint64(pitch) * uint64(height) * uint64(layout.depthAlign) * uint64(req.bpp/8) * uint64(req.numSamples)
	}
	if tiling.mode == TileModeLinearAligned && l.ops.linearSizeAdjust != nil {
		pitch, layout.heightAlign = l.ops.linearSizeAdjust(l, layout.bytesPerElement, req.numSamples, layout.pitchAlign, pitch, height)
	}
	for groupBytes()%uint64(layout.baseAlign) != 0 {
		if tiling.mode == TileModeLinearAligned {
			pitch += layout.pitchAlign
		} else {
			height += layout.heightAlign
		}
	}

	sliceSize := uint64(pitch) * uint64(height) * uint64(req.bpp/8) * uint64(req.numSamples)
	surfSize := addrutil.AlignUp(sliceSize*uint64(depth), uint64(layout.baseAlign))

	*out = SurfaceInfoOutput{
		Size:           out.Size,
		Pitch:          pitch,
		Height:         height,
		Depth:          depth,
		SurfSize:       surfSize,
		TileMode:       tiling.mode,
		TileType:       tiling.tileType,
		TileConfig:     tiling.config,
		TileIndex:      tiling.tileIndex,
		MacroModeIndex: tiling.macroModeIndex,
		BaseAlign:      layout.baseAlign,
		PitchAlign:     layout.pitchAlign,
		HeightAlign:    layout.heightAlign,
		DepthAlign:     layout.depthAlign,
		Bpp:            req.bpp,
		SliceSize:      sliceSize,
		LastSliceSize:  surfSize - sliceSize*uint64(depth-1),
		EquationIndex:  equation.InvalidIndex,
	}

	restored := l.elem.RestoreSurfaceInfo(req.elemMode, req.expandX, req.expandY, element.SurfaceDims{
		Bpp:    req.bpp,
		Width:  pitch,
		Height: height,
	})
	out.PixelPitch, out.PixelHeight, out.PixelBits = restored.Width, restored.Height, restored.Bpp

	out.PitchTileMax = pitch/microTileWidth - 1
	out.HeightTileMax = height/microTileHeight - 1
	out.SliceTileMax = pitch*height/microTilePixels - 1
	if tiling.mode.IsLinear() {
		// linear surfaces are not padded to whole micro tiles
		out.PitchTileMax = addrutil.ShiftCeil(pitch, 3) - 1
		out.HeightTileMax = addrutil.ShiftCeil(height, 3) - 1
		out.SliceTileMax = addrutil.ShiftCeil(pitch*height, 6) - 1
	}

	out.EquationIndex = l.surfaceEquationIndex(&req, tiling)
	if block, ok := l.EquationBlock(out.EquationIndex); ok {
		out.BlockWidth, out.BlockHeight, out.BlockSlices = block.Width, block.Height, block.Slices
	}

	if l.hasFlag(CreateCheckLast2DLevel) && req.flags&SurfacePow2Pad != 0 && tiling.mode.IsMacroTiled() && req.numSamples == 1 {
		nextHeight := req.height / 2
		if req.elemMode.IsBCn() {
			nextHeight = (nextHeight + 3) / 4
		}
		nextSlices := req.numSlices
		if req.flags&SurfaceVolume != 0 {
			nextSlices = max(1, nextSlices/2)
		}
		next := l.mipLevelTileMode(tiling.mode, tiling.config, req.bpp, pitch/2, addrutil.NextPow2(nextHeight), nextSlices, req.numSamples)
		out.Last2DLevel = !next.IsMacroTiled()
	}

	if req.flags&SurfaceQbStereo != 0 {
		l.applyStereo(out, layout)
	}

	l.logger.Debug("AddrLib::ComputeSurfaceInfo",
		slog.String("TileMode", tiling.mode.String()),
		slog.Int("Pitch", int(pitch)),
		slog.Int("Height", int(height)),
		slog.Int("SurfSize", int(surfSize)),
	)
	return nil
}

// applyStereo places the right eye image directly after the left one. On macro tiled modes the
// right image gets the bank swizzle of the row of tiles below the left image.
func (l *Lib) applyStereo(out *SurfaceInfoOutput, layout tileLayout) {
	leftHeight := out.Height
	out.StereoRightOffset = out.SurfSize
	out.Height *= 2
	out.PixelHeight *= 2
	out.SurfSize *= 2
	out.HeightTileMax = out.Height/microTileHeight - 1
	out.SliceTileMax = out.Pitch*out.Height/microTilePixels - 1

	if !out.TileMode.IsMacroTiled() {
		return
	}
	bank := computeBankFromCoord(layout.numBanks, 0, leftHeight/(microTileHeight*layout.config.BankHeight))
	if bank != 0 {
		out.StereoRightSwizzle = l.combineSwizzle(bank, 0, 0, layout)
	}
}
