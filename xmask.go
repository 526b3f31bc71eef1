package addrlib

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/addrlib/addrutil"
	"golang.org/x/exp/slog"
)

const (
	cmaskElemBits  = 4
	cmaskCacheBits = 1024
	htileElemBits  = 32
	htileCacheBits = 16384
	// cmaskBlockPixels is the area covered by one CMASK block, 128x128 pixels
	cmaskBlockPixels = 128 * 128
)

// xmaskKind holds what differs between CMASK and HTILE
type xmaskKind struct {
	name      string
	elemBits  uint32
	cacheBits uint32
	// factor is 2 for CMASK, which packs two entries in a byte, and 1 for HTILE
	factor uint32
}

var (
	cmaskKind = xmaskKind{name: "Cmask", elemBits: cmaskElemBits, cacheBits: cmaskCacheBits, factor: 2}
	htileKind = xmaskKind{name: "Htile", elemBits: htileElemBits, cacheBits: htileCacheBits, factor: 1}
)

// tilesPerCacheLine is the number of 8x8 tiles one pipe holds of a tiled metadata macro tile
func (k xmaskKind) tilesPerCacheLine() uint32 {
	return k.cacheBits / k.elemBits
}

// ComputeTileDataWidthAndHeight finds the macro tile shape of a metadata surface: the most square
// block of micro tiles whose elemBits-sized entries fill cacheBits for every pipe
func ComputeTileDataWidthAndHeight(elemBits, cacheBits, numPipes uint32) (macroWidth, macroHeight uint32) {
	width := cacheBits / elemBits
	height := uint32(1)
	for width > 2*numPipes*height && width%2 == 0 {
		width /= 2
		height *= 2
	}
	return microTileWidth * width, microTileHeight * height * numPipes
}

// r800LinearXmaskMacroSize pads linear HTILE to 512 bit rows and a micro tile row per pipe. CMASK
// is always tiled before SI.
func r800LinearXmaskMacroSize(l *Lib, _ PipeConfig, kind xmaskKind) (uint32, uint32, error) {
	if kind.factor == 2 {
		return 0, 0, errors.Wrapf(ErrNotSupported, "linear CMASK on %s", l.generation)
	}
	return microTileWidth * 512 / kind.elemBits, microTileHeight * l.chip.numPipes, nil
}

// siLinearXmaskMacroSize pads linear metadata to 4x4 micro tiles, or 8x8 for the pipe
// configurations whose pipe equation reaches past 32 pixels
func siLinearXmaskMacroSize(_ *Lib, config PipeConfig, _ xmaskKind) (uint32, uint32, error) {
	switch config {
	case PipeConfigP8_32x64_32x32, PipeConfigP16_32x32_8x16, PipeConfigP8_32x32_16x16:
		return 8 * microTileWidth, 8 * microTileHeight, nil
	}
	return 4 * microTileWidth, 4 * microTileHeight, nil
}

// MetadataSurface describes the color or depth surface a CMASK or HTILE belongs to. Pitch and Height
// are in pixels and are padded to the metadata macro tile the way ComputeCmaskInfo and
// ComputeHtileInfo pad them.
type MetadataSurface struct {
	Pitch     uint32
	Height    uint32
	NumSlices uint32
	Flags     SurfaceFlags
	TileMode  TileMode
	TileIndex int32
	// TileConfig supplies the pipe configuration when no tile index is used
	TileConfig *TileConfig
	// IsLinear selects the linear metadata layout, which pads to a few micro tiles instead of a
	// cache line per pipe
	IsLinear bool
}

// metadataTiling resolves the pipe and bank counts the metadata surface interleaves over
func (l *Lib) metadataTiling(s *MetadataSurface) (tileLayout, error) {
	if l.generation.IsV2() {
		return tileLayout{}, errors.Wrapf(ErrNotSupported, "metadata surfaces on %s", l.generation)
	}
	if s.Pitch == 0 || s.Height == 0 {
		return tileLayout{}, errInvalidf("surface %dx%d", s.Pitch, s.Height)
	}

	mode := s.TileMode
	if mode == TileModeUnknown {
		mode = TileMode2DTiledThin1
	}
	tiling, err := l.resolveTiling(mode, s.Flags, s.TileIndex, s.TileConfig, nil, 32, 1)
	if err != nil {
		return tileLayout{}, err
	}
	if tiling.config.PipeConfig.NumPipes() == 0 {
		return tileLayout{}, errInvalidf("pipe config %d", tiling.config.PipeConfig)
	}

	return tileLayout{
		mode:           tiling.mode,
		config:         tiling.config,
		numPipes:       tiling.config.PipeConfig.NumPipes(),
		numBanks:       max(tiling.config.Banks, 1),
		pipeInterleave: l.chip.pipeInterleave,
		bankInterleave: 1,
	}, nil
}

// xmaskLayout is the padded geometry of a CMASK or HTILE
type xmaskLayout struct {
	kind     xmaskKind
	t        tileLayout
	isLinear bool

	macroWidth  uint32
	macroHeight uint32
	pitch       uint32
	height      uint32
	numSlices   uint32
	baseAlign   uint32
	sliceBytes  uint64
	totalBytes  uint64
}

func (l *Lib) computeXmaskLayout(kind xmaskKind, s *MetadataSurface) (xmaskLayout, error) {
	t, err := l.metadataTiling(s)
	if err != nil {
		return xmaskLayout{}, err
	}

	m := xmaskLayout{
		kind:      kind,
		t:         t,
		isLinear:  s.IsLinear,
		numSlices: max(s.NumSlices, 1),
	}
	if s.IsLinear {
		m.macroWidth, m.macroHeight, err = l.ops.linearXmaskMacroSize(l, t.config.PipeConfig, kind)
		if err != nil {
			return xmaskLayout{}, err
		}
	} else {
		m.macroWidth, m.macroHeight = ComputeTileDataWidthAndHeight(kind.elemBits, kind.cacheBits, t.numPipes)
	}
	m.pitch = addrutil.AlignUp(s.Pitch, m.macroWidth)
	m.height = addrutil.AlignUp(s.Height, m.macroHeight)

	m.baseAlign = t.pipeInterleave * t.numPipes
	if s.Flags&SurfaceTcCompatible != 0 {
		m.baseAlign *= t.numBanks
	}

	if kind.factor == 2 {
		m.sliceBytes = m.entryBytes()
		for m.sliceBytes%uint64(m.baseAlign) != 0 {
			m.height += m.macroHeight
			m.sliceBytes = m.entryBytes()
		}
		m.totalBytes = m.sliceBytes * uint64(m.numSlices)
		return m, nil
	}

	cacheLines := uint64(htileCacheBits/8) * uint64(l.chip.numPipes)
	m.sliceBytes = m.entryBytes()
	if l.hasFlag(CreateHtileSliceAlign) {
		m.sliceBytes = addrutil.AlignUp(m.sliceBytes, cacheLines)
		m.totalBytes = m.sliceBytes * uint64(m.numSlices)
	} else {
		m.totalBytes = addrutil.AlignUp(m.sliceBytes*uint64(m.numSlices), cacheLines)
	}
	return m, nil
}

// entryBytes is the size of the entries of one padded slice
func (m *xmaskLayout) entryBytes() uint64 {
	return uint64(m.pitch) * uint64(m.height) / microTilePixels * uint64(m.kind.elemBits) / 8
}

type CmaskInfoInput struct {
	Size uint32
	MetadataSurface
}

func NewCmaskInfoInput() CmaskInfoInput {
	return CmaskInfoInput{
		Size:            uint32(unsafe.Sizeof(CmaskInfoInput{})),
		MetadataSurface: MetadataSurface{TileIndex: TileIndexInvalid},
	}
}

type CmaskInfoOutput struct {
	Size uint32
	// Pitch and Height are the color surface dimensions the CMASK covers after padding
	Pitch       uint32
	Height      uint32
	BaseAlign   uint32
	BlockMax    uint32
	MacroWidth  uint32
	MacroHeight uint32
	SliceSize   uint64
	CmaskBytes  uint64
}

func NewCmaskInfoOutput() CmaskInfoOutput {
	return CmaskInfoOutput{Size: uint32(unsafe.Sizeof(CmaskInfoOutput{}))}
}

// ComputeCmaskInfo computes the size and alignment of a CMASK surface. The covered height grows one
// macro tile at a time until a slice fills the base alignment. A BlockMax past the register field of
// the chip family is clamped, and the output is filled in before the ErrInvalidParams is returned.
func (l *Lib) ComputeCmaskInfo(in *CmaskInfoInput, out *CmaskInfoOutput) error {
	if err := l.checkSize("CmaskInfoInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("CmaskInfoOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}

	m, err := l.computeXmaskLayout(cmaskKind, &in.MetadataSurface)
	if err != nil {
		return err
	}
	if aligned := addrutil.AlignUp(in.Height, m.macroHeight); m.height != aligned {
		l.logger.Debug("AddrLib::ComputeCmaskInfo grew height",
			slog.Int("From", int(aligned)),
			slog.Int("To", int(m.height)),
		)
	}

	*out = CmaskInfoOutput{
		Size:        out.Size,
		Pitch:       m.pitch,
		Height:      m.height,
		BaseAlign:   m.baseAlign,
		MacroWidth:  m.macroWidth,
		MacroHeight: m.macroHeight,
		SliceSize:   m.sliceBytes,
		CmaskBytes:  m.totalBytes,
	}

	pixels := uint64(m.pitch) * uint64(m.height)
	if pixels%cmaskBlockPixels != 0 {
		l.logger.Debug("AddrLib::ComputeCmaskInfo slice is not whole blocks",
			slog.Int("Pitch", int(m.pitch)),
			slog.Int("Height", int(m.height)),
		)
	}
	blockMax := pixels/cmaskBlockPixels - 1
	if limit := l.ops.maxCmaskBlockMax; blockMax > uint64(limit) {
		out.BlockMax = limit
		l.logger.Debug("AddrLib::ComputeCmaskInfo clamped block max", slog.Int("BlockMax", int(blockMax)))
		return errInvalidf("CMASK block max %d exceeds %d", blockMax, limit)
	}
	out.BlockMax = uint32(blockMax)
	return nil
}

type HtileInfoInput struct {
	Size uint32
	MetadataSurface
}

func NewHtileInfoInput() HtileInfoInput {
	return HtileInfoInput{
		Size:            uint32(unsafe.Sizeof(HtileInfoInput{})),
		MetadataSurface: MetadataSurface{TileIndex: TileIndexInvalid},
	}
}

type HtileInfoOutput struct {
	Size        uint32
	Pitch       uint32
	Height      uint32
	BaseAlign   uint32
	MacroWidth  uint32
	MacroHeight uint32
	SliceSize   uint64
	HtileBytes  uint64
}

func NewHtileInfoOutput() HtileInfoOutput {
	return HtileInfoOutput{Size: uint32(unsafe.Sizeof(HtileInfoOutput{}))}
}

// ComputeHtileInfo computes the size and alignment of an HTILE surface. The total is padded to a
// cache line per pipe, or every slice is when the Lib was created with CreateHtileSliceAlign.
func (l *Lib) ComputeHtileInfo(in *HtileInfoInput, out *HtileInfoOutput) error {
	if err := l.checkSize("HtileInfoInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("HtileInfoOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}

	m, err := l.computeXmaskLayout(htileKind, &in.MetadataSurface)
	if err != nil {
		return err
	}

	*out = HtileInfoOutput{
		Size:        out.Size,
		Pitch:       m.pitch,
		Height:      m.height,
		BaseAlign:   m.baseAlign,
		MacroWidth:  m.macroWidth,
		MacroHeight: m.macroHeight,
		SliceSize:   m.sliceBytes,
		HtileBytes:  m.totalBytes,
	}
	return nil
}

// r800XmaskAddrFromCoord lays each metadata macro tile out as rows of entries, with the rows of a
// pipe dropped because the pipe equation implies them. CMASK rows cover half a macro tile and the
// second half lands in the high nibbles.
func r800XmaskAddrFromCoord(m *xmaskLayout, x, y, slice uint32) (uint64, uint32) {
	numPipes := m.t.numPipes
	pipeBits := addrutil.Log2(numPipes)
	groupBits := addrutil.Log2(m.t.pipeInterleave)
	pipe := computePipeFromCoord(m.t.config.PipeConfig, x, y)

	macroTileBytes := uint64(m.macroWidth) * uint64(m.macroHeight) * uint64(m.kind.elemBits) / microTilePixels / 8
	macroTileIndex := uint64(y/m.macroHeight)*uint64(m.pitch/m.macroWidth) + uint64(x/m.macroWidth)
	bytesPerRow := m.macroWidth * m.kind.elemBits / 8 / microTileWidth

	var offsetX uint32
	if m.kind.factor == 2 {
		offsetX = x % (m.macroWidth / 2) / microTileWidth
	} else {
		offsetX = x % m.macroWidth / microTileWidth * (m.kind.elemBits / 8)
	}
	offsetY := y % m.macroHeight / microTileHeight / numPipes * bytesPerRow

	total := (uint64(slice)*m.sliceBytes+macroTileIndex*macroTileBytes)>>pipeBits + uint64(offsetX+offsetY)
	groupMask := uint64(1)<<groupBits - 1
	addr := total&groupMask | (total&^groupMask)<<pipeBits | uint64(pipe)<<groupBits

	var bitPosition uint32
	if x%m.macroWidth >= m.macroWidth/m.kind.factor {
		bitPosition = 4
	}
	return addr, bitPosition
}

func r800XmaskCoordFromAddr(m *xmaskLayout, addr uint64, bitPosition uint32) (x, y, slice uint32, err error) {
	numPipes := m.t.numPipes
	pipeBits := addrutil.Log2(numPipes)
	groupBits := addrutil.Log2(m.t.pipeInterleave)
	groupSize := uint64(m.t.pipeInterleave) * 8

	pipe := uint32(addr>>groupBits) & (numPipes - 1)
	bitAddr := addr*8 + uint64(bitPosition)
	bitAddr = bitAddr%groupSize + bitAddr/groupSize/uint64(numPipes)*groupSize

	sliceBits := m.sliceBytes * 8 / uint64(numPipes)
	slice = uint32(bitAddr / sliceBits)
	elemOffset := bitAddr % sliceBits / uint64(m.kind.elemBits)

	factor := uint64(m.kind.factor)
	partWidth := m.macroWidth / m.kind.factor
	tilesPerMacro := uint64(partWidth*m.macroHeight/microTilePixels) >> pipeBits
	macrosPerPitch := m.pitch / partWidth

	macroIndex := elemOffset / factor / tilesPerMacro
	microIndex := elemOffset % (tilesPerMacro * factor)
	macroNumber := uint32(macroIndex*factor + microIndex%factor)
	microNumber := uint32(microIndex / factor)
	tilesPerRow := partWidth / microTileWidth

	x = macroNumber%macrosPerPitch*partWidth + microNumber%tilesPerRow*microTileWidth
	y = macroNumber/macrosPerPitch*m.macroHeight + microNumber/tilesPerRow*microTileHeight<<pipeBits

	for row := uint32(0); row < numPipes; row++ {
		if computePipeFromCoord(m.t.config.PipeConfig, x, y+row*microTileHeight) == pipe {
			return x, y + row*microTileHeight, slice, nil
		}
	}
	return 0, 0, 0, errInvalidf("address 0x%x is on pipe %d, which no tile of its row uses", addr, pipe)
}

// tileCoordToMaskElementIndex returns the index of a tile among the tiles of its pipe in a 4x4 tile
// block, the shift that makes room for it and the number of bits it takes. When it takes more bits
// than the shift the low bits of the block number are dropped and the pipe restores them.
func tileCoordToMaskElementIndex(tx, ty uint32, config PipeConfig) (elemIdx, macroShift, elemIdxBits uint32) {
	tx0, tx1 := bit(tx, 0), bit(tx, 1)
	ty0, ty1 := bit(ty, 0), bit(ty, 1)

	switch config {
	case PipeConfigP2:
		return tx1<<2 | (tx1^ty1)<<1 | (tx1 ^ ty0), 3, 3
	case PipeConfigP4_8x16:
		return tx1<<1 | (tx1 ^ ty1), 2, 2
	case PipeConfigP4_16x16:
		return tx1<<1 | (tx1 ^ ty0), 2, 2
	case PipeConfigP4_16x32:
		return (tx1^ty1)<<1 | (tx1 ^ ty0), 2, 2
	case PipeConfigP4_32x32:
		return tx1<<2 | (tx1^ty1)<<1 | (tx1 ^ ty0), 2, 3
	case PipeConfigP8_16x16_8x16:
		return tx1, 1, 1
	case PipeConfigP8_16x32_8x16, PipeConfigP8_16x32_16x16:
		return tx0, 1, 1
	case PipeConfigP8_32x32_8x16:
		return tx1<<1 | (tx1 ^ ty1), 1, 2
	case PipeConfigP8_32x32_16x16:
		return tx1<<1 | (tx1 ^ ty0), 1, 2
	case PipeConfigP8_32x32_16x32:
		return (tx1^ty1)<<1 | (tx1 ^ ty0), 1, 2
	case PipeConfigP8_32x64_32x32:
		return tx1<<2 | (tx1^ty1)<<1 | (tx1 ^ ty0), 1, 3
	case PipeConfigP16_32x32_8x16:
		return tx1<<1 | (tx1 ^ ty1), 0, 2
	case PipeConfigP16_32x32_16x16:
		return tx1<<1 | (tx1 ^ ty0), 0, 2
	}
	return 0, 0, 0
}

// tileCoordFromPipeAndElemIdx inverts tileCoordToMaskElementIndex and the pipe equation. x and y are
// the corner of the 4x4 tile block; the result is the tile within it, which reaches into the next
// block when the block number lost bits.
func tileCoordFromPipeAndElemIdx(elemIdx, pipe uint32, config PipeConfig, pitchInBlocks, x, y uint32) (microX, microY uint32) {
	p0, p1, p2, p3 := bit(pipe, 0), bit(pipe, 1), bit(pipe, 2), bit(pipe, 3)
	e0, e1, e2 := bit(elemIdx, 0), bit(elemIdx, 1), bit(elemIdx, 2)
	y5, y6 := bit(y, 5), bit(y, 6)
	x5 := bit(x, 5)
	var x3, x4, x6, y3, y4 uint32
	number := func(bits ...uint32) uint32 {
		var v uint32
		for _, b := range bits {
			v = v<<1 | b
		}
		return v
	}

	switch config {
	case PipeConfigP2:
		x4 = e2
		y4 = e1 ^ x4
		y3 = e0 ^ x4
		x3 = p0 ^ y3
		return number(x4, x3), number(y4, y3)
	case PipeConfigP4_8x16:
		x4 = e1
		y4 = e0 ^ x4
		x3 = p1 ^ y4
		y3 = p0 ^ x4
		return number(x4, x3), number(y4, y3)
	case PipeConfigP4_16x16:
		x4 = e1
		y3 = e0 ^ x4
		y4 = p1 ^ x4
		x3 = p0 ^ y3 ^ x4
		return number(x4, x3), number(y4, y3)
	case PipeConfigP4_16x32:
		x3 = e0 ^ p0
		x4 = p1 ^ y5
		y3 = p0 ^ x3 ^ x4
		y4 = e1 ^ x4
		return number(x4, x3), number(y4, y3)
	case PipeConfigP4_32x32:
		x4 = e2
		y3 = e0 ^ x4
		y4 = e1 ^ x4
		if pitchInBlocks%2 == 0 {
			x5 = p1 ^ y5
			x3 = p0 ^ y3 ^ x5
			return number(x5, x4, x3), number(y4, y3)
		}
		x3 = p0 ^ y3 ^ x5
		return number(x4, x3), number(y4, y3)
	case PipeConfigP8_16x16_8x16:
		x4 = e0
		x3 = p1 ^ y5
		y4 = p2 ^ x4
		y3 = p0 ^ x5 ^ x4
		return number(x4, x3), number(y4, y3)
	case PipeConfigP8_16x32_8x16:
		x3 = e0
		y4 = p1 ^ x3
		x4 = p2 ^ y5
		y3 = p0 ^ x4 ^ x5
		return number(x4, x3), number(y4, y3)
	case PipeConfigP8_32x32_8x16:
		x4 = e1
		y4 = e0 ^ x4
		x3 = p1 ^ y4
		if pitchInBlocks%2 == 0 {
			x5 = p2 ^ y5
			y3 = p0 ^ x4 ^ x5
			return number(x5, x4, x3), number(y4, y3)
		}
		y3 = p0 ^ x4 ^ x5
		return number(x4, x3), number(y4, y3)
	case PipeConfigP8_16x32_16x16:
		x3 = e0
		x4 = p2 ^ y5
		y4 = p1 ^ x5
		y3 = p0 ^ x3 ^ x4
		return number(x4, x3), number(y4, y3)
	case PipeConfigP8_32x32_16x16:
		x4 = e1
		y3 = e0 ^ x4
		x3 = y3 ^ x4 ^ p0
		y4 = p1 ^ x4
		if pitchInBlocks%2 == 0 {
			x5 = p2 ^ y5
			return number(x5, x4, x3), number(y4, y3)
		}
		return number(x4, x3), number(y4, y3)
	case PipeConfigP8_32x32_16x32:
		x4 = p1 ^ y6
		y3 = e0 ^ x4
		y4 = e1 ^ x4
		x3 = p0 ^ y3 ^ x4
		if pitchInBlocks%2 == 0 {
			x5 = p2 ^ y5
			return number(x5, x4, x3), number(y4, y3)
		}
		return number(x4, x3), number(y4, y3)
	case PipeConfigP8_32x64_32x32:
		x4 = e2
		y3 = e0 ^ x4
		y4 = e1 ^ x4
		x5 = p2 ^ y6
		x3 = p0 ^ y3 ^ x5
		if pitchInBlocks%4 == 0 {
			x6 = p1 ^ y5
			return number(x6, x5, x4, x3), number(y4, y3)
		}
		return number(x5, x4, x3), number(y4, y3)
	case PipeConfigP16_32x32_8x16:
		x4 = e1
		y4 = e0 ^ x4
		y3 = p0 ^ x4
		x3 = p1 ^ y4
		x5 = p2 ^ y6
		if pitchInBlocks%4 == 0 {
			x6 = p3 ^ y5
			return number(x6, x5, x4, x3), number(y4, y3)
		}
		return number(x5, x4, x3), number(y4, y3)
	case PipeConfigP16_32x32_16x16:
		x4 = e1
		y3 = e0 ^ x4
		y4 = p1 ^ x4
		x3 = p0 ^ y3 ^ x4
		x5 = p2 ^ y6
		if pitchInBlocks%4 == 0 {
			x6 = p3 ^ y5
			return number(x6, x5, x4, x3), number(y4, y3)
		}
		return number(x5, x4, x3), number(y4, y3)
	}
	return 0, 0
}

// siLinearXmaskSliceTiles is the number of tiles a slice of linear metadata takes, which is padded
// to a cache line per pipe for HTILE when the Lib was created with CreateHtileSliceAlign
func (l *Lib) siLinearXmaskSliceTiles(m *xmaskLayout) uint32 {
	tiles := m.pitch / microTileWidth * (m.height / microTileHeight)
	if m.kind.factor == 1 && l.hasFlag(CreateHtileSliceAlign) {
		tiles = addrutil.AlignUp(tiles, htileCacheBits/8*m.t.numPipes/m.kind.elemBits)
	}
	return tiles
}

// siXmaskAddrFromCoord groups the tiles of a pipe by 4x4 tile block. Tiled metadata gives every
// macro tile a cache line per pipe; linear metadata numbers the blocks across the whole slice.
func siXmaskAddrFromCoord(l *Lib, m *xmaskLayout, x, y, slice uint32) (uint64, uint32) {
	tx, ty := x/microTileWidth, y/microTileHeight
	pitchInTiles := m.pitch / microTileWidth
	heightInTiles := m.height / microTileHeight
	elemBits := uint64(m.kind.elemBits)
	numPipes := m.t.numPipes
	elemIdx, microShift, elemIdxBits := tileCoordToMaskElementIndex(tx, ty, m.t.config.PipeConfig)

	var blockNumber, macroOffset uint64
	if m.isLinear {
		blockNumber = uint64(tx/4+ty/4*(pitchInTiles/4)) << microShift
		macroOffset = uint64(slice) * uint64(l.siLinearXmaskSliceTiles(m)/numPipes) * elemBits
	} else {
		pitchInMacros := pitchInTiles / (m.macroWidth / microTileWidth)
		heightInMacros := heightInTiles / (m.macroHeight / microTileHeight)
		macroNumber := x/m.macroWidth + y/m.macroHeight*pitchInMacros + slice*pitchInMacros*heightInMacros

		blockX := x % m.macroWidth / microTileWidth / 4
		blockY := y % m.macroHeight / microTileHeight / 4
		blockNumber = uint64(blockX+blockY*(m.macroWidth/microTileWidth/4)) << microShift
		macroOffset = uint64(macroNumber) * uint64(m.kind.tilesPerCacheLine()) * elemBits
	}
	blockNumber = blockNumber>>elemIdxBits<<elemIdxBits + uint64(elemIdx)

	total := elemBits*blockNumber + macroOffset
	groupSize := uint64(m.t.pipeInterleave) * 8
	pipe := uint64(computePipeFromCoord(m.t.config.PipeConfig, x, y))
	addrBits := total%groupSize + pipe*groupSize + total/groupSize*groupSize*uint64(numPipes)
	return addrBits / 8, uint32(addrBits % 8)
}

func siXmaskCoordFromAddr(l *Lib, m *xmaskLayout, addr uint64, bitPosition uint32) (x, y, slice uint32, err error) {
	config := m.t.config.PipeConfig
	numPipes := m.t.numPipes
	pitchInTiles := m.pitch / microTileWidth
	heightInTiles := m.height / microTileHeight
	pitchInBlocks := pitchInTiles / 4
	_, macroShift, elemIdxBits := tileCoordToMaskElementIndex(0, 0, config)

	pi := uint64(m.t.pipeInterleave)
	pipe := uint32(addr / pi % uint64(numPipes))
	local := addr%pi + addr/pi/uint64(numPipes)*pi

	var tileIndex uint32
	if m.kind.factor == 2 {
		tileIndex = uint32(local * 2)
		if bitPosition != 0 {
			tileIndex++
		}
	} else {
		tileIndex = uint32(local / 4)
	}

	var blockOffset uint32
	if m.isLinear {
		perPipe := l.siLinearXmaskSliceTiles(m) / numPipes
		slice = tileIndex / perPipe
		blockOffset = tileIndex % perPipe
	} else {
		pitchInMacros := pitchInTiles / (m.macroWidth / microTileWidth)
		heightInMacros := heightInTiles / (m.macroHeight / microTileHeight)
		macroIndex := tileIndex / m.kind.tilesPerCacheLine()

		x = macroIndex % pitchInMacros * m.macroWidth
		y = macroIndex % (heightInMacros * pitchInMacros) / pitchInMacros * m.macroHeight
		slice = macroIndex / (heightInMacros * pitchInMacros)
		blockOffset = tileIndex % m.kind.tilesPerCacheLine()
	}

	elemIdx := blockOffset & 7
	blockOffset >>= elemIdxBits
	if elemIdxBits != macroShift {
		blockOffset <<= elemIdxBits - macroShift
		if pitchInBlocks%2 != 0 {
			switch config {
			case PipeConfigP4_32x32:
				blockOffset |= bit(pipe, 1)
			case PipeConfigP8_32x32_8x16, PipeConfigP8_32x32_16x16, PipeConfigP8_32x32_16x32:
				blockOffset |= bit(pipe, 2)
			}
		}
		if pitchInBlocks%4 != 0 {
			switch config {
			case PipeConfigP8_32x64_32x32:
				blockOffset |= bit(pipe, 1) << 1
			case PipeConfigP16_32x32_8x16, PipeConfigP16_32x32_16x16:
				blockOffset |= bit(pipe, 3) << 1
			}
		}
	}

	blocksPerRow := m.macroWidth / (microTileWidth * 4)
	if m.isLinear {
		blocksPerRow = pitchInBlocks
	}
	x += blockOffset % blocksPerRow * 4 * microTileWidth
	y += blockOffset / blocksPerRow * 4 * microTileHeight

	microX, microY := tileCoordFromPipeAndElemIdx(elemIdx, pipe, config, pitchInBlocks, x, y)
	x += microX * microTileWidth
	y += microY * microTileHeight
	if x >= m.pitch || y >= m.height || slice >= m.numSlices {
		return 0, 0, 0, errInvalidf("address 0x%x outside the metadata surface", addr)
	}
	return x, y, slice, nil
}

func (l *Lib) xmaskAddrBits(m *xmaskLayout, x, y, slice uint32) (uint64, uint32) {
	if l.generation == GenerationR800 {
		return r800XmaskAddrFromCoord(m, x, y, slice)
	}
	return siXmaskAddrFromCoord(l, m, x, y, slice)
}

func (l *Lib) xmaskCoord(m *xmaskLayout, addr uint64, bitPosition uint32) (uint32, uint32, uint32, error) {
	if l.generation == GenerationR800 {
		return r800XmaskCoordFromAddr(m, addr, bitPosition)
	}
	return siXmaskCoordFromAddr(l, m, addr, bitPosition)
}

type XmaskAddrFromCoordInput struct {
	Size uint32
	MetadataSurface
	X, Y, Slice uint32
}

func NewXmaskAddrFromCoordInput() XmaskAddrFromCoordInput {
	return XmaskAddrFromCoordInput{
		Size:            uint32(unsafe.Sizeof(XmaskAddrFromCoordInput{})),
		MetadataSurface: MetadataSurface{TileIndex: TileIndexInvalid},
	}
}

type XmaskAddrFromCoordOutput struct {
	Size        uint32
	Addr        uint64
	BitPosition uint32
}

func NewXmaskAddrFromCoordOutput() XmaskAddrFromCoordOutput {
	return XmaskAddrFromCoordOutput{Size: uint32(unsafe.Sizeof(XmaskAddrFromCoordOutput{}))}
}

type XmaskCoordFromAddrInput struct {
	Size uint32
	MetadataSurface
	Addr        uint64
	BitPosition uint32
}

func NewXmaskCoordFromAddrInput() XmaskCoordFromAddrInput {
	return XmaskCoordFromAddrInput{
		Size:            uint32(unsafe.Sizeof(XmaskCoordFromAddrInput{})),
		MetadataSurface: MetadataSurface{TileIndex: TileIndexInvalid},
	}
}

type XmaskCoordFromAddrOutput struct {
	Size        uint32
	X, Y, Slice uint32
}

func NewXmaskCoordFromAddrOutput() XmaskCoordFromAddrOutput {
	return XmaskCoordFromAddrOutput{Size: uint32(unsafe.Sizeof(XmaskCoordFromAddrOutput{}))}
}

func (l *Lib) xmaskAddrFromCoord(kind xmaskKind, in *XmaskAddrFromCoordInput, out *XmaskAddrFromCoordOutput) error {
	if err := l.checkSize(kind.name+"AddrFromCoordInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize(kind.name+"AddrFromCoordOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}

	m, err := l.computeXmaskLayout(kind, &in.MetadataSurface)
	if err != nil {
		return err
	}
	if in.X >= m.pitch || in.Y >= m.height || in.Slice >= m.numSlices {
		return errInvalidf("coordinate (%d, %d, %d) outside the %dx%dx%d metadata surface",
			in.X, in.Y, in.Slice, m.pitch, m.height, m.numSlices)
	}

	out.Addr, out.BitPosition = l.xmaskAddrBits(&m, in.X, in.Y, in.Slice)
	return nil
}

func (l *Lib) xmaskCoordFromAddr(kind xmaskKind, in *XmaskCoordFromAddrInput, out *XmaskCoordFromAddrOutput) error {
	if err := l.checkSize(kind.name+"CoordFromAddrInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize(kind.name+"CoordFromAddrOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}
	if in.BitPosition > 7 {
		return errInvalidf("bit position %d", in.BitPosition)
	}

	m, err := l.computeXmaskLayout(kind, &in.MetadataSurface)
	if err != nil {
		return err
	}
	if in.Addr >= m.totalBytes {
		return errInvalidf("address 0x%x outside the %d byte %s", in.Addr, m.totalBytes, kind.name)
	}

	out.X, out.Y, out.Slice, err = l.xmaskCoord(&m, in.Addr, in.BitPosition)
	return err
}

// ComputeCmaskAddrFromCoord returns the address of the 4-bit CMASK entry of the 8x8 tile at X, Y.
// BitPosition is 0 or 4.
func (l *Lib) ComputeCmaskAddrFromCoord(in *XmaskAddrFromCoordInput, out *XmaskAddrFromCoordOutput) error {
	return l.xmaskAddrFromCoord(cmaskKind, in, out)
}

// ComputeCmaskCoordFromAddr returns the corner of the 8x8 tile a CMASK entry belongs to
func (l *Lib) ComputeCmaskCoordFromAddr(in *XmaskCoordFromAddrInput, out *XmaskCoordFromAddrOutput) error {
	return l.xmaskCoordFromAddr(cmaskKind, in, out)
}

// ComputeHtileAddrFromCoord returns the address of the 32-bit HTILE entry of the 8x8 tile at X, Y
func (l *Lib) ComputeHtileAddrFromCoord(in *XmaskAddrFromCoordInput, out *XmaskAddrFromCoordOutput) error {
	return l.xmaskAddrFromCoord(htileKind, in, out)
}

func (l *Lib) ComputeHtileCoordFromAddr(in *XmaskCoordFromAddrInput, out *XmaskCoordFromAddrOutput) error {
	return l.xmaskCoordFromAddr(htileKind, in, out)
}
