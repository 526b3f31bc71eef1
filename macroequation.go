package addrlib

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/addrlib/addrutil"
	"github.com/vkngwrapper/addrlib/equation"
)

// eqBit lists the XOR terms of one equation output bit
type eqBit []equation.Channel

// thresholdChannel reads bit index of a coordinate, or nothing at or past the threshold
func thresholdChannel(kind equation.Kind, index, threshold uint32) equation.Channel {
	if threshold <= index {
		return 0
	}
	return equation.NewChannel(kind, index)
}

func compactBit(terms ...equation.Channel) eqBit {
	var out eqBit
	for _, c := range terms {
		if c.Valid() {
			out = append(out, c)
		}
	}
	return out
}

// pipeEquation returns the pipe bits of a macro tile, lowest first. Pipe bits read the micro tile
// coordinates, x3 being bit 0 of x / 8.
func pipeEquation(config PipeConfig, threshX, threshY uint32) ([]eqBit, error) {
	x := func(i uint32) equation.Channel { return thresholdChannel(equation.KindX, i, threshX) }
	y := func(i uint32) equation.Channel { return thresholdChannel(equation.KindY, i, threshY) }

	var bits [][]equation.Channel
	switch config {
	case PipeConfigP2:
		bits = [][]equation.Channel{{x(3), y(3)}}
	case PipeConfigP4_8x16:
		bits = [][]equation.Channel{{x(4), y(3)}, {x(3), y(4)}}
	case PipeConfigP4_16x16:
		bits = [][]equation.Channel{{x(3), y(3), x(4)}, {x(4), y(4)}}
	case PipeConfigP4_16x32:
		bits = [][]equation.Channel{{x(3), y(3), x(4)}, {x(4), y(5)}}
	case PipeConfigP4_32x32:
		bits = [][]equation.Channel{{x(3), y(3), x(5)}, {x(5), y(5)}}
	case PipeConfigP8_16x16_8x16:
		bits = [][]equation.Channel{{x(4), y(3), x(5)}, {x(3), y(5)}, {}}
	case PipeConfigP8_16x32_8x16:
		bits = [][]equation.Channel{{x(4), y(3), x(5)}, {x(3), y(4)}, {x(4), y(5)}}
	case PipeConfigP8_16x32_16x16:
		bits = [][]equation.Channel{{x(3), y(3), x(4)}, {x(5), y(4)}, {x(4), y(5)}}
	case PipeConfigP8_32x32_8x16:
		bits = [][]equation.Channel{{x(4), y(3), x(5)}, {x(3), y(4)}, {x(5), y(5)}}
	case PipeConfigP8_32x32_16x16:
		bits = [][]equation.Channel{{x(3), y(3), x(4)}, {x(4), y(4)}, {x(5), y(5)}}
	case PipeConfigP8_32x32_16x32:
		bits = [][]equation.Channel{{x(3), y(3), x(4)}, {x(4), y(6)}, {x(5), y(5)}}
	case PipeConfigP8_32x64_32x32:
		bits = [][]equation.Channel{{x(3), y(3), x(5)}, {x(6), y(5)}, {x(5), y(6)}}
	case PipeConfigP16_32x32_8x16:
		bits = [][]equation.Channel{{x(4), y(3)}, {x(3), y(4)}, {x(5), y(6)}, {x(6), y(5)}}
	case PipeConfigP16_32x32_16x16:
		bits = [][]equation.Channel{{x(3), y(3), x(4)}, {x(4), y(4)}, {x(5), y(6)}, {x(6), y(5)}}
	default:
		return nil, errors.Wrapf(ErrNotSupported, "pipe equation for %s", config)
	}

	out := make([]eqBit, len(bits))
	for i, terms := range bits {
		out[i] = compactBit(terms...)
	}
	return out, nil
}

// bankEquation returns the bank bits of a macro tile. Bank x bits start above the pipe and bank
// width bits, bank y bits above the bank height bits.
func bankEquation(config TileConfig, threshX, threshY uint32) ([]eqBit, error) {
	xStart := 3 + addrutil.Log2(config.PipeConfig.NumPipes()) + addrutil.Log2(config.BankWidth)
	yStart := 3 + addrutil.Log2(config.BankHeight)
	x := func(i uint32) equation.Channel { return thresholdChannel(equation.KindX, xStart+i-3, threshX) }
	y := func(i uint32) equation.Channel { return thresholdChannel(equation.KindY, yStart+i-3, threshY) }

	aspect := max(config.MacroAspectRatio, 1)
	var bits [][]equation.Channel
	switch config.Banks {
	case 16:
		switch aspect {
		case 1:
			bits = [][]equation.Channel{{y(6), x(3)}, {y(5), y(6), x(4)}, {y(4), x(5)}, {y(3), x(6)}}
		case 2:
			bits = [][]equation.Channel{{x(3), y(6)}, {y(5), y(6), x(4)}, {y(4), x(5)}, {y(3), x(6)}}
		case 4:
			bits = [][]equation.Channel{{x(3), y(6)}, {x(4), y(5), y(6)}, {y(4), x(5)}, {y(3), x(6)}}
		case 8:
			bits = [][]equation.Channel{{x(3), y(6)}, {x(4), y(5), y(6)}, {x(5), y(4)}, {y(3), x(6)}}
		}
	case 8:
		switch aspect {
		case 1:
			bits = [][]equation.Channel{{y(5), x(3)}, {y(4), y(5), x(4)}, {y(3), x(5)}}
		case 2:
			bits = [][]equation.Channel{{x(3), y(5)}, {y(4), y(5), x(4)}, {y(3), x(5)}}
		case 4:
			bits = [][]equation.Channel{{x(3), y(5)}, {x(4), y(4), y(5)}, {y(3), x(5)}}
		}
	case 4:
		switch aspect {
		case 1:
			bits = [][]equation.Channel{{y(4), x(3)}, {y(3), x(4)}}
		case 2:
			bits = [][]equation.Channel{{x(3), y(4)}, {y(3), x(4)}}
		default:
			bits = [][]equation.Channel{{x(3), y(4)}, {x(4), y(3)}}
		}
	case 2:
		if aspect == 1 {
			bits = [][]equation.Channel{{y(3), x(3)}}
		} else {
			bits = [][]equation.Channel{{x(3), y(3)}}
		}
	}
	if bits == nil {
		return nil, errors.Wrapf(ErrNotSupported, "bank equation for %d banks at aspect ratio %d", config.Banks, aspect)
	}
	if config.BankWidth == 1 && (config.PipeConfig == PipeConfigP4_32x32 || config.PipeConfig == PipeConfigP8_32x64_32x32) {
		return nil, errors.Wrapf(ErrNotSupported, "bank equation for %s with a bank width of 1", config.PipeConfig)
	}

	out := make([]eqBit, len(bits))
	for i, terms := range bits {
		out[i] = compactBit(terms...)
	}
	return out, nil
}

// insertBits places ins at position at, moving the bits already there up
func insertBits(bits []eqBit, at uint32, ins []eqBit) ([]eqBit, error) {
	if uint32(len(bits)) < at {
		return nil, errors.Wrapf(ErrNotSupported, "equation has %d bits below bit %d", len(bits), at)
	}
	out := append(append(append([]eqBit(nil), bits[:at]...), ins...), bits[at:]...)
	return out, nil
}

// computeMacroTileEquation builds the equation of the bytes of one macro tile: the micro tile
// equation followed by the bank width and bank height bits, with the pipe bits spliced in at the
// pipe interleave and the bank bits above them
func (l *Lib) computeMacroTileEquation(log2Bytes uint32, mode TileMode, tileType equation.MicroTileType, config TileConfig) (equation.Equation, error) {
	micro, err := equation.ComputeMicroTileEquation(log2Bytes, mode.Thickness(), tileType)
	if err != nil {
		return equation.Equation{}, err
	}

	bits := make([]eqBit, 0, equation.MaxBits)
	for bit := uint32(0); bit < micro.NumBits; bit++ {
		bits = append(bits, compactBit(micro.Comps[0][bit]))
	}

	numPipes := config.PipeConfig.NumPipes()
	pipeBits := addrutil.Log2(numPipes)
	for i := uint32(0); i < addrutil.Log2(config.BankWidth); i++ {
		bits = append(bits, eqBit{equation.NewChannel(equation.KindX, 3+pipeBits+i)})
	}
	for i := uint32(0); i < addrutil.Log2(config.BankHeight); i++ {
		bits = append(bits, eqBit{equation.NewChannel(equation.KindY, 3+i)})
	}

	threshX, threshY := uint32(32), uint32(32)
	if mode.isPrtNoRotation() {
		aspect := max(config.MacroAspectRatio, 1)
		threshX = addrutil.Log2(microTileWidth * config.BankWidth * numPipes * aspect)
		threshY = addrutil.Log2(microTileHeight * config.BankHeight * config.Banks / aspect)
	}

	pipe, err := pipeEquation(config.PipeConfig, threshX, threshY)
	if err != nil {
		return equation.Equation{}, err
	}
	pipeStart := addrutil.Log2(l.chip.pipeInterleave)
	if bits, err = insertBits(bits, pipeStart, pipe); err != nil {
		return equation.Equation{}, err
	}

	bank, err := bankEquation(config, threshX, threshY)
	if err != nil {
		return equation.Equation{}, err
	}
	bankStart := pipeStart + pipeBits + addrutil.Log2(max(l.chip.bankInterleave, 1))
	if bits, err = insertBits(bits, bankStart, bank); err != nil {
		return equation.Equation{}, err
	}

	return buildEquation(bits)
}

func buildEquation(bits []eqBit) (equation.Equation, error) {
	if len(bits) > equation.MaxBits {
		return equation.Equation{}, errors.Wrapf(ErrNotSupported, "%d equation bits", len(bits))
	}
	var eq equation.Equation
	for i, terms := range bits {
		for _, c := range terms {
			if err := eq.Xor(uint32(i), c); err != nil {
				return equation.Equation{}, err
			}
		}
	}
	eq.NumBits = uint32(len(bits))
	equation.FillEqBitComponents(&eq)
	return eq, nil
}

// EquationBlock is the region of a surface one equation addresses
type EquationBlock struct {
	Width  uint32
	Height uint32
	Slices uint32
}

// siPrtTileIndexMask marks the SI tile table rows reserved for partially resident textures
const siPrtTileIndexMask = 1<<3 | 1<<5 | 1<<6 | 1<<7 | 1<<21 | 1<<22 | 1<<23 | 1<<24 | 1<<25 | 1<<30

// siUncompressedDepthTileIndex is shared between PRT depth and uncompressed depth on SI
const siUncompressedDepthTileIndex = 3

// siEquationSupport lists, per SI tile index and log2 bytes per element, the macro tiled rows an
// equation describes
var siEquationSupport = [32][5]bool{
	0:  {true, true, true, false, false},
	3:  {false, true, false, false, false},
	4:  {true, true, true, false, false},
	6:  {false, false, true, false, false},
	8:  {true, true, true, true, true},
	9:  {true, true, true, true, true},
	10: {true, false, false, false, false},
	11: {false, true, false, false, false},
	12: {false, false, true, true, false},
	13: {true, true, true, true, true},
	14: {true, false, false, false, false},
	15: {false, true, false, false, false},
	16: {false, false, true, false, false},
	17: {false, false, false, true, true},
	18: {true, true, true, true, true},
	21: {true, false, false, false, false},
	22: {false, true, false, false, false},
	23: {false, false, true, false, false},
	24: {false, false, false, true, false},
	25: {false, false, false, false, true},
}

// addEquation stores eq and records the block it covers the first time key is seen
func (l *Lib) addEquation(key equation.Key, eq equation.Equation, block EquationBlock) uint32 {
	index := l.equations.Add(key, eq)
	if int(index) == len(l.equationBlocks) {
		l.equationBlocks = append(l.equationBlocks, block)
	}
	return index
}

// initMicroTileEquations adds the equation of every valid micro tiled mode, element size and micro
// tile type
func (l *Lib) initMicroTileEquations() error {
	types := []equation.MicroTileType{
		equation.MicroTileDisplayable,
		equation.MicroTileNonDisplayable,
		equation.MicroTileDepthSampleOrder,
		equation.MicroTileRotated,
		equation.MicroTileThick,
	}

	for _, mode := range []TileMode{TileMode1DTiledThin1, TileMode1DTiledThick} {
		for log2Bytes := uint32(0); log2Bytes <= 4; log2Bytes++ {
			for _, tileType := range types {
				eq, err := equation.ComputeMicroTileEquation(log2Bytes, mode.Thickness(), tileType)
				if errors.Is(err, equation.ErrNotSupported) || errors.Is(err, equation.ErrInvalidParams) {
					continue
				} else if err != nil {
					return err
				}
				l.addEquation(microTileEquationKey(log2Bytes, mode, tileType), eq,
					EquationBlock{Width: microTileWidth, Height: microTileHeight, Slices: mode.Thickness()})
			}
		}
	}
	return nil
}

// equationSupported reports whether a resolved tile index row has an equation at an element size
func (l *Lib) equationSupported(bpp uint32, info tileIndexInfo, index int) bool {
	switch info.Mode {
	case TileModeLinearGeneral, TileModeLinearAligned,
		TileMode2DTiledThick, TileMode2DTiledXThick, TileMode3DTiledThin1, TileMode3DTiledThick, TileMode3DTiledXThick:
		return false
	}
	if info.TileType == equation.MicroTileDepthSampleOrder && bpp > 32 {
		return false
	}
	if !info.Mode.IsMacroTiled() {
		return true
	}
	if bpp/8*microTilePixels*info.Mode.Thickness() > info.Config.TileSplitBytes {
		return false
	}
	if l.generation == GenerationSI {
		return index < len(siEquationSupport) && siEquationSupport[index][addrutil.Log2(bpp/8)]
	}
	return true
}

// macroTileEquation builds and stores the equation of one macro tiled tile index row. PRT rows
// smaller than a 64KB tile repeat the macro tile along x to fill it.
func (l *Lib) macroTileEquation(log2Bytes uint32, info tileIndexInfo, prt bool) (uint32, error) {
	tileType := info.TileType
	if tileType == equation.MicroTileDepthSampleOrder {
		tileType = equation.MicroTileNonDisplayable
	}
	key := microTileEquationKey(log2Bytes, info.Mode, tileType).WithMacroTile(equation.MacroTile{
		PipeConfig:       uint32(info.Config.PipeConfig),
		Banks:            info.Config.Banks,
		BankWidth:        info.Config.BankWidth,
		BankHeight:       info.Config.BankHeight,
		MacroAspectRatio: info.Config.MacroAspectRatio,
		Prt:              prt,
	})
	if index := l.equations.Index(key); index != equation.InvalidIndex {
		return index, nil
	}

	eq, err := l.computeMacroTileEquation(log2Bytes, info.Mode, tileType, info.Config)
	if err != nil {
		return equation.InvalidIndex, err
	}

	aspect := max(info.Config.MacroAspectRatio, 1)
	block := EquationBlock{
		Width:  info.Config.PipeConfig.NumPipes() * microTileWidth * info.Config.BankWidth * aspect,
		Height: microTileHeight * info.Config.BankHeight * info.Config.Banks / aspect,
		Slices: info.Mode.Thickness(),
	}
	if prt {
		macroTileBytes := block.Width * block.Height << log2Bytes
		if macroTileBytes < prtTileBytes {
			repeat := prtTileBytes / macroTileBytes
			xStart := addrutil.Log2(block.Width)
			for i := uint32(0); i < addrutil.Log2(repeat); i++ {
				if err := eq.Set(eq.NumBits, 0, equation.NewChannel(equation.KindX, xStart+i)); err != nil {
					return equation.InvalidIndex, err
				}
			}
			block.Width *= repeat
		}
	}
	return l.addEquation(key, eq, block), nil
}

// initTileIndexEquations fills the equation lookup of every tile index row and element size. Rows
// without an equation map to equation.InvalidIndex.
func (l *Lib) initTileIndexEquations() error {
	for log2Bytes := uint32(0); log2Bytes < uint32(len(l.equationLookup)); log2Bytes++ {
		bpp := uint32(8) << log2Bytes
		lookup := make([]uint32, len(l.tileTable))
		for index := range l.tileTable {
			lookup[index] = equation.InvalidIndex

			info, err := l.resolveTileIndex(int32(index), 0, bpp, 1)
			if err != nil || !l.equationSupported(bpp, info, index) {
				continue
			}

			if !info.Mode.IsMacroTiled() {
				lookup[index] = l.equations.Index(microTileEquationKey(log2Bytes, info.Mode, info.TileType))
				continue
			}
			prt := l.generation == GenerationSI && index < 32 && siPrtTileIndexMask&(1<<index) != 0
			eqIndex, err := l.macroTileEquation(log2Bytes, info, prt)
			if errors.Is(err, ErrNotSupported) || errors.Is(err, equation.ErrNotSupported) || errors.Is(err, equation.ErrInvalidParams) {
				continue
			} else if err != nil {
				return err
			}
			lookup[index] = eqIndex
		}
		l.equationLookup[log2Bytes] = lookup
	}

	l.uncompressedDepthEquations = [5]uint32{}
	for i := range l.uncompressedDepthEquations {
		l.uncompressedDepthEquations[i] = equation.InvalidIndex
	}
	if l.generation != GenerationSI || len(l.tileTable) <= siUncompressedDepthTileIndex {
		return nil
	}
	for log2Bytes := range l.uncompressedDepthEquations {
		info, err := l.resolveTileIndex(siUncompressedDepthTileIndex, 0, 8<<log2Bytes, 1)
		if err != nil || !info.Mode.IsMacroTiled() {
			return nil
		}
		eqIndex, err := l.macroTileEquation(uint32(log2Bytes), info, false)
		if err == nil {
			l.uncompressedDepthEquations[log2Bytes] = eqIndex
		}
	}
	return nil
}

// surfaceEquationIndex finds the equation of a single sample surface, preferring the tile index
// lookup when the surface was laid out from one
func (l *Lib) surfaceEquationIndex(req *surfaceRequest, tiling surfaceTiling) uint32 {
	if req.numSamples > 1 || req.bpp < 8 || req.bpp > 128 {
		return equation.InvalidIndex
	}
	log2Bytes := addrutil.Log2(req.bpp / 8)

	lookup := l.equationLookup[log2Bytes]
	if tiling.tileIndex < 0 || int(tiling.tileIndex) >= len(lookup) {
		if tiling.mode.IsMicroTiled() {
			return l.equations.Index(microTileEquationKey(log2Bytes, tiling.mode, tiling.tileType))
		}
		return equation.InvalidIndex
	}

	switch {
	case req.numSlices > 1 && tiling.mode.IsMacroTiled() && (l.generation == GenerationSI || !tiling.mode.IsPrt()):
		// slices rotate the banks and pipes
		return equation.InvalidIndex
	case req.flags&SurfacePrt == 0 && tiling.tileIndex == siUncompressedDepthTileIndex &&
		l.uncompressedDepthEquations[log2Bytes] != equation.InvalidIndex:
		return l.uncompressedDepthEquations[log2Bytes]
	}
	return lookup[tiling.tileIndex]
}

// EquationBlock returns the block an equation of GetEquationTable addresses
func (l *Lib) EquationBlock(index uint32) (EquationBlock, bool) {
	if index >= uint32(len(l.equationBlocks)) {
		return EquationBlock{}, false
	}
	return l.equationBlocks[index], true
}
