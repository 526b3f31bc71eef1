package addrlib

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/addrlib/addrutil"
	"github.com/vkngwrapper/addrlib/equation"
)

// TiledSurface identifies a surface laid out by ComputeSurfaceInfo. Pitch, Height and Bpp are the
// element values ComputeSurfaceInfo returned.
type TiledSurface struct {
	TileMode   TileMode
	Flags      SurfaceFlags
	Bpp        uint32
	NumSamples uint32
	Pitch      uint32
	Height     uint32
	NumSlices  uint32
	TileIndex  int32
	TileConfig *TileConfig
	TileType   *equation.MicroTileType
	// PipeSwizzle and BankSwizzle select the first pipe and bank of the surface. With
	// CreateUseCombinedSwizzle, TileSwizzle replaces both.
	PipeSwizzle uint32
	BankSwizzle uint32
	TileSwizzle uint32
}

type SurfaceAddrFromCoordInput struct {
	Size uint32
	TiledSurface
	X, Y, Slice, Sample uint32
}

func NewSurfaceAddrFromCoordInput() SurfaceAddrFromCoordInput {
	return SurfaceAddrFromCoordInput{
		Size:         uint32(unsafe.Sizeof(SurfaceAddrFromCoordInput{})),
		TiledSurface: TiledSurface{TileIndex: TileIndexInvalid},
	}
}

type SurfaceAddrFromCoordOutput struct {
	Size uint32
	Addr uint64
	// BitPosition is the bit within the byte at Addr for elements smaller than a byte
	BitPosition uint32
}

func NewSurfaceAddrFromCoordOutput() SurfaceAddrFromCoordOutput {
	return SurfaceAddrFromCoordOutput{Size: uint32(unsafe.Sizeof(SurfaceAddrFromCoordOutput{}))}
}

type SurfaceCoordFromAddrInput struct {
	Size uint32
	TiledSurface
	Addr        uint64
	BitPosition uint32
}

func NewSurfaceCoordFromAddrInput() SurfaceCoordFromAddrInput {
	return SurfaceCoordFromAddrInput{
		Size:         uint32(unsafe.Sizeof(SurfaceCoordFromAddrInput{})),
		TiledSurface: TiledSurface{TileIndex: TileIndexInvalid},
	}
}

type SurfaceCoordFromAddrOutput struct {
	Size                uint32
	X, Y, Slice, Sample uint32
}

func NewSurfaceCoordFromAddrOutput() SurfaceCoordFromAddrOutput {
	return SurfaceCoordFromAddrOutput{Size: uint32(unsafe.Sizeof(SurfaceCoordFromAddrOutput{}))}
}

// addressing is everything the address functions need about one surface
type addressing struct {
	layout      tileLayout
	tileType    equation.MicroTileType
	order       []equation.Channel
	bpp         uint32
	numSamples  uint32
	pitch       uint32
	height      uint32
	numSlices   uint32
	pipeSwizzle uint32
	bankSwizzle uint32
	// preAdjustBank folds micro tile column bits into bank bit 0 for the SI layouts whose banks are
	// one micro tile wide
	preAdjustBank bool
}

func (l *Lib) prepareAddressing(s *TiledSurface) (addressing, error) {
	if l.generation.IsV2() {
		return addressing{}, errors.Wrapf(ErrNotSupported, "tile modes on %s, use swizzle modes", l.generation)
	}

	a := addressing{
		bpp:        s.Bpp,
		numSamples: max(s.NumSamples, 1),
		pitch:      s.Pitch,
		height:     s.Height,
		numSlices:  max(s.NumSlices, 1),
	}
	switch {
	case s.Bpp == 0 || s.Bpp > maxBpp || s.Bpp%8 != 0:
		return a, errInvalidf("bpp %d", s.Bpp)
	case s.Pitch == 0 || s.Height == 0:
		return a, errInvalidf("surface %dx%d", s.Pitch, s.Height)
	case !addrutil.IsPow2(a.numSamples) || a.numSamples > maxSamples:
		return a, errInvalidf("%d samples", a.numSamples)
	}

	tiling, err := l.resolveTiling(s.TileMode, s.Flags, s.TileIndex, s.TileConfig, s.TileType, s.Bpp, a.numSamples)
	if err != nil {
		return a, err
	}
	mode := tiling.mode
	if !mode.valid() {
		return a, errInvalidf("tile mode %d", mode)
	}
	if mode.IsThick() && a.numSamples > 1 {
		return a, errInvalidf("%s with %d samples", mode, a.numSamples)
	}
	if mode != TileModeLinearGeneral && !addrutil.IsPow2(s.Bpp) {
		return a, errInvalidf("%s with a %d bit element", mode, s.Bpp)
	}
	if mode.IsMacroTiled() {
		if err := tiling.config.validate(); err != nil {
			return a, err
		}
	}

	a.tileType = tiling.tileType
	a.layout = l.tileLayout(mode, tiling.config, s.Bpp, a.numSamples, s.Flags)

	if mode.IsLinear() {
		return a, nil
	}

	a.order, err = equation.PixelIndexOrder(addrutil.Log2(s.Bpp/8), mode.Thickness(), a.tileType)
	if err != nil {
		return a, errors.Wrapf(err, "%s %s", mode, a.tileType)
	}
	if s.Pitch%a.layout.pitchAlign != 0 || s.Height%a.layout.heightAlign != 0 {
		return a, errInvalidf("%dx%d is not aligned to %dx%d", s.Pitch, s.Height, a.layout.pitchAlign, a.layout.heightAlign)
	}
	a.numSlices = addrutil.AlignUp(a.numSlices, a.layout.depthAlign)

	if mode.IsMacroTiled() {
		a.pipeSwizzle, a.bankSwizzle = s.PipeSwizzle, s.BankSwizzle
		if l.hasFlag(CreateUseCombinedSwizzle) {
			a.bankSwizzle, a.pipeSwizzle = l.extractSwizzle(s.TileSwizzle, a.layout)
		}
		a.pipeSwizzle %= a.layout.numPipes
		a.bankSwizzle %= a.layout.numBanks
		a.preAdjustBank = l.preAdjustsBank(a.layout.config)
	}
	return a, nil
}

// ComputeSurfaceAddrFromCoord computes the byte address and bit position of a sample
func (l *Lib) ComputeSurfaceAddrFromCoord(in *SurfaceAddrFromCoordInput, out *SurfaceAddrFromCoordOutput) error {
	if err := l.checkSize("SurfaceAddrFromCoordInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("SurfaceAddrFromCoordOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}

	a, err := l.prepareAddressing(&in.TiledSurface)
	if err != nil {
		return err
	}
	if in.X >= a.pitch || in.Y >= a.height || in.Slice >= a.numSlices || in.Sample >= a.numSamples {
		return errInvalidf("coordinate (%d, %d, %d, %d) outside the surface", in.X, in.Y, in.Slice, in.Sample)
	}

	bits := a.bits(in.X, in.Y, in.Slice, in.Sample)
	out.Addr = bits / 8
	out.BitPosition = uint32(bits % 8)
	return nil
}

// ComputeSurfaceCoordFromAddr is the inverse of ComputeSurfaceAddrFromCoord
func (l *Lib) ComputeSurfaceCoordFromAddr(in *SurfaceCoordFromAddrInput, out *SurfaceCoordFromAddrOutput) error {
	if err := l.checkSize("SurfaceCoordFromAddrInput", in.Size, unsafe.Sizeof(*in)); err != nil {
		return err
	}
	if err := l.checkSize("SurfaceCoordFromAddrOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}
	if in.BitPosition > 7 {
		return errInvalidf("bit position %d", in.BitPosition)
	}

	a, err := l.prepareAddressing(&in.TiledSurface)
	if err != nil {
		return err
	}

	if size := a.size(); in.Addr >= size {
		return errInvalidf("address 0x%x outside a surface of %d bytes", in.Addr, size)
	}

	c, err := a.coord(in.Addr*8 + uint64(in.BitPosition))
	if err != nil {
		return err
	}
	out.X, out.Y, out.Slice, out.Sample = c.x, c.y, c.slice, c.sample
	return nil
}

type sampleCoord struct {
	x, y, slice, sample uint32
}

func (a *addressing) size() uint64 {
	return uint64(a.pitch) * uint64(a.height) * uint64(a.numSlices) * uint64(a.bpp/8) * uint64(a.numSamples)
}

func (a *addressing) bits(x, y, slice, sample uint32) uint64 {
	switch mode := a.layout.mode; {
	case mode.IsLinear():
		return a.linearBits(x, y, slice, sample)
	case mode.IsMicroTiled():
		return a.microTileBits(x, y, slice, sample)
	}
	return a.macroTileBits(x, y, slice, sample)
}

func (a *addressing) coord(bits uint64) (sampleCoord, error) {
	switch mode := a.layout.mode; {
	case mode.IsLinear():
		return a.linearCoord(bits), nil
	case mode.IsMicroTiled():
		return a.microTileCoord(bits), nil
	}
	return a.macroTileCoord(bits)
}

func (a *addressing) linearBits(x, y, slice, sample uint32) uint64 {
	sliceElems := uint64(a.pitch) * uint64(a.height)
	elem := (uint64(slice)+uint64(sample)*uint64(a.numSlices))*sliceElems + uint64(y)*uint64(a.pitch) + uint64(x)
	return elem * uint64(a.bpp)
}

func (a *addressing) linearCoord(bits uint64) sampleCoord {
	elem := bits / uint64(a.bpp)
	sliceElems := uint64(a.pitch) * uint64(a.height)
	plane := elem / sliceElems
	rest := elem % sliceElems
	return sampleCoord{
		x:      uint32(rest % uint64(a.pitch)),
		y:      uint32(rest / uint64(a.pitch)),
		slice:  uint32(plane % uint64(a.numSlices)),
		sample: uint32(plane / uint64(a.numSlices)),
	}
}

// pixelIndex evaluates the micro tile pixel order for the position within a micro tile
func pixelIndex(order []equation.Channel, x, y, z uint32) uint32 {
	var index uint32
	for i, c := range order {
		var v uint32
		switch c.Kind() {
		case equation.KindX:
			v = x
		case equation.KindY:
			v = y
		case equation.KindZ:
			v = z
		}
		index |= ((v >> c.Index()) & 1) << i
	}
	return index
}

func pixelCoord(order []equation.Channel, index uint32) (x, y, z uint32) {
	for i, c := range order {
		bit := ((index >> i) & 1) << c.Index()
		switch c.Kind() {
		case equation.KindX:
			x |= bit
		case equation.KindY:
			y |= bit
		case equation.KindZ:
			z |= bit
		}
	}
	return x, y, z
}

// elementBits is the bit offset of a sample within its micro tile. Depth sample order keeps the
// samples of a pixel together, every other order stores each sample as its own 1x micro tile.
func (a *addressing) elementBits(x, y, slice, sample uint32) uint64 {
	index := uint64(pixelIndex(a.order, x%microTileWidth, y%microTileHeight, slice%a.layout.mode.Thickness()))
	bpp := uint64(a.bpp)
	if a.tileType == equation.MicroTileDepthSampleOrder {
		return uint64(sample)*bpp + index*bpp*uint64(a.numSamples)
	}
	return uint64(sample)*uint64(a.layout.tileBytes1x)*8 + index*bpp
}

// elementCoord inverts elementBits. z is the slice within the thick tile.
func (a *addressing) elementCoord(bits uint64) (x, y, z, sample uint32) {
	bpp := uint64(a.bpp)
	var index uint64
	if a.tileType == equation.MicroTileDepthSampleOrder {
		index = bits / (bpp * uint64(a.numSamples))
		sample = uint32(bits % (bpp * uint64(a.numSamples)) / bpp)
	} else {
		sampleBits := uint64(a.layout.tileBytes1x) * 8
		sample = uint32(bits / sampleBits)
		index = bits % sampleBits / bpp
	}
	x, y, z = pixelCoord(a.order, uint32(index))
	return x, y, z, sample
}

func (a *addressing) microTileBits(x, y, slice, sample uint32) uint64 {
	thickness := a.layout.mode.Thickness()
	tilesPerRow := uint64(a.pitch / microTileWidth)
	tilesPerSlice := tilesPerRow * uint64(a.height/microTileHeight)
	tile := uint64(slice/thickness)*tilesPerSlice + uint64(y/microTileHeight)*tilesPerRow + uint64(x/microTileWidth)
	return tile*uint64(a.layout.microTileBytes)*8 + a.elementBits(x, y, slice, sample)
}

func (a *addressing) microTileCoord(bits uint64) sampleCoord {
	thickness := a.layout.mode.Thickness()
	tileBits := uint64(a.layout.microTileBytes) * 8
	tile := bits / tileBits
	x, y, z, sample := a.elementCoord(bits % tileBits)

	tilesPerRow := uint64(a.pitch / microTileWidth)
	tilesPerSlice := tilesPerRow * uint64(a.height/microTileHeight)
	sliceTile := tile % tilesPerSlice
	return sampleCoord{
		x:      uint32(sliceTile%tilesPerRow)*microTileWidth + x,
		y:      uint32(sliceTile/tilesPerRow)*microTileHeight + y,
		slice:  uint32(tile/tilesPerSlice)*thickness + z,
		sample: sample,
	}
}

// preAdjustsBank reports the SI layouts that fold the micro tile column into bank bit 0
func (l *Lib) preAdjustsBank(config TileConfig) bool {
	if l.generation != GenerationSI && l.generation != GenerationCI {
		return false
	}
	return config.BankWidth == 1 &&
		(config.PipeConfig == PipeConfigP4_32x32 || config.PipeConfig == PipeConfigP8_32x64_32x32)
}

// pipe is the pipe a pixel lands in after rotation and swizzle
func (a *addressing) pipe(x, y, slice uint32) uint32 {
	t := a.layout
	swizzle := (a.pipeSwizzle + slicePipeRotation(t.mode, t.numPipes, slice)) & (t.numPipes - 1)
	return computePipeFromCoord(t.config.PipeConfig, x, y) ^ swizzle
}

// bank is the bank a micro tile lands in after rotation and swizzle
func (a *addressing) bank(x, y, slice, tileSplitSlice uint32) uint32 {
	t := a.layout
	tileX := x / microTileWidth
	tileY := y / microTileHeight

	bank := computeBankFromCoord(t.numBanks, tileX/(t.config.BankWidth*t.numPipes), tileY/t.config.BankHeight)
	if a.preAdjustBank {
		bank |= bit(bank, 0) ^ bit(tileX, 1) ^ bit(tileX, 2)
	}

	bank ^= a.bankSwizzle + sliceBankRotation(t.mode, t.numBanks, t.numPipes, slice)
	bank ^= tileSplitBankRotation(t.mode, t.numBanks, tileSplitSlice)
	return bank & (t.numBanks - 1)
}

// interleave places a channel offset, bank and pipe in the address:
// rest | bank | bank interleave | pipe | pipe interleave
func (a *addressing) interleave(channelOffset uint64, bank, pipe uint32) uint64 {
	t := a.layout
	pi := uint64(t.pipeInterleave)
	bi := uint64(t.bankInterleave)
	low := channelOffset % pi
	group := channelOffset / pi
	bil := group % bi
	rest := group / bi
	return ((((rest*uint64(t.numBanks)+uint64(bank))*bi+bil)*uint64(t.numPipes) + uint64(pipe)) * pi) + low
}

func (a *addressing) deinterleave(addr uint64) (channelOffset uint64, bank, pipe uint32) {
	t := a.layout
	pi := uint64(t.pipeInterleave)
	bi := uint64(t.bankInterleave)
	low := addr % pi
	v := addr / pi
	pipe = uint32(v % uint64(t.numPipes))
	v /= uint64(t.numPipes)
	bil := v % bi
	v /= bi
	bank = uint32(v % uint64(t.numBanks))
	rest := v / uint64(t.numBanks)
	return (rest*bi+bil)*pi + low, bank, pipe
}

func (a *addressing) macroTileBits(x, y, slice, sample uint32) uint64 {
	t := a.layout
	elemBits := a.elementBits(x, y, slice, sample)
	elemOffset := elemBits / 8
	tileSplitSlice := elemOffset / uint64(t.tileBytes)
	elemOffset %= uint64(t.tileBytes)

	tileX := x / microTileWidth
	tileY := y / microTileHeight
	macroIndex := uint64(y/t.macroTileHeight)*uint64(t.macroTilesPerRow(a.pitch)) + uint64(x/t.macroTilePitch)
	tileIndex := uint64((tileY%t.config.BankHeight)*t.config.BankWidth + (tileX/t.numPipes)%t.config.BankWidth)
	sliceIndex := tileSplitSlice + uint64(t.numSplits)*uint64(slice/t.mode.Thickness())

	channelOffset := sliceIndex*t.sliceChannelBytes(a.pitch, a.height) +
		macroIndex*t.macroTileChannelBytes() +
		tileIndex*uint64(t.tileBytes) +
		elemOffset

	if t.mode.isPrtNoRotation() {
		x %= t.macroTilePitch
		y %= t.macroTileHeight
	}
	addr := a.interleave(channelOffset, a.bank(x, y, slice, uint32(tileSplitSlice)), a.pipe(x, y, slice))
	return addr*8 + elemBits%8
}

// macroTileCoord inverts macroTileBits. The channel offset gives the macro tile, the micro tile
// within its bank and the element; the bank and pipe then give the remaining x and y bits.
func (a *addressing) macroTileCoord(bits uint64) (sampleCoord, error) {
	t := a.layout
	channelOffset, bank, pipe := a.deinterleave(bits / 8)

	sliceBytes := t.sliceChannelBytes(a.pitch, a.height)
	sliceIndex := channelOffset / sliceBytes
	rest := channelOffset % sliceBytes
	macroIndex := uint32(rest / t.macroTileChannelBytes())
	rest %= t.macroTileChannelBytes()
	tileIndex := uint32(rest / uint64(t.tileBytes))
	elemOffset := rest % uint64(t.tileBytes)

	tileSplitSlice := uint32(sliceIndex % uint64(t.numSplits))
	sliceGroup := uint32(sliceIndex / uint64(t.numSplits))

	elemBits := (uint64(tileSplitSlice)*uint64(t.tileBytes)+elemOffset)*8 + bits%8
	xIn, yIn, zIn, sample := a.elementCoord(elemBits)
	slice := sliceGroup*t.mode.Thickness() + zIn
	if slice >= a.numSlices {
		return sampleCoord{}, errInvalidf("address 0x%x is in padding past the last slice", bits/8)
	}

	bw, bh := t.config.BankWidth, t.config.BankHeight
	originX := (macroIndex % t.macroTilesPerRow(a.pitch)) * t.macroTilePitch
	originY := (macroIndex / t.macroTilesPerRow(a.pitch)) * t.macroTileHeight
	x := (tileIndex%bw)*t.numPipes*microTileWidth + xIn
	y := (tileIndex/bw)%bh*microTileHeight + yIn
	if !t.mode.isPrtNoRotation() {
		x += originX
		y += originY
	}

	bank ^= a.bankSwizzle + sliceBankRotation(t.mode, t.numBanks, t.numPipes, slice)
	bank ^= tileSplitBankRotation(t.mode, t.numBanks, tileSplitSlice)
	bank &= t.numBanks - 1
	pipe ^= (a.pipeSwizzle + slicePipeRotation(t.mode, t.numPipes, slice)) & (t.numPipes - 1)

	x, y = a.coord2DFromBankPipe(x, y, bank, pipe)
	if t.mode.isPrtNoRotation() {
		x += originX
		y += originY
	}
	return sampleCoord{x: x, y: y, slice: slice, sample: sample}, nil
}

// coord2DFromBankPipe fills in the x and y bits the unswizzled bank and pipe select. x and y hold the
// rest of the coordinate with those bits clear.
func (a *addressing) coord2DFromBankPipe(x, y, bank, pipe uint32) (uint32, uint32) {
	t := a.layout
	bw, bh := t.config.BankWidth, t.config.BankHeight
	aspect := max(t.config.MacroAspectRatio, 1)

	xBit := x / (microTileWidth * bw * t.numPipes)
	yBit := y / (microTileHeight * bh)
	solvedX, solvedY := solveBankBits(aspect, t.numBanks, bank, xBit, yBit)

	var yBitTop uint32
	if a.preAdjustBank {
		yBitTop = bit(yBit, addrutil.Log2(t.numBanks)-1)
		solvedX &^= 1
	}
	y += solvedY * bh * microTileHeight
	x += solvedX * t.numPipes * bw * microTileWidth

	tileX, mask := solvePipeX(t.config.PipeConfig, pipe, y, bit(bank, 0), yBitTop)
	x = x&^(mask<<3) | tileX<<3
	return x, y
}
