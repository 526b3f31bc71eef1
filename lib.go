package addrlib

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/addrlib/addrutil"
	"github.com/vkngwrapper/addrlib/element"
	"github.com/vkngwrapper/addrlib/equation"
	"golang.org/x/exp/slog"
)

// CreateInput describes the chip a Lib computes layouts for
type CreateInput struct {
	Size         uint32
	ChipEngine   ChipEngine
	ChipFamily   ChipFamily
	ChipRevision uint32
	// Callbacks is the allocator instance memory is drawn from. It must not be nil.
	Callbacks SysMemCallbacks
	Flags     CreateFlags
	RegValues RegisterValues
	// MinPitchAlignPixels raises the pitch alignment of linear and micro tiled display surfaces. It
	// must be 0 or a power of two.
	MinPitchAlignPixels uint32
	// Logger receives debug output. nil discards it.
	Logger *slog.Logger
}

// NewCreateInput returns a CreateInput with its Size filled in
func NewCreateInput() CreateInput {
	return CreateInput{Size: uint32(unsafe.Sizeof(CreateInput{}))}
}

// Config is the immutable configuration of a Lib
type Config struct {
	Flags               CreateFlags
	ChipEngine          ChipEngine
	ChipFamily          ChipFamily
	ChipRevision        uint32
	Generation          Generation
	MinPitchAlignPixels uint32
}

type chipParams struct {
	addrConfig     GbAddrConfig
	numPipes       uint32
	pipeInterleave uint32
	bankInterleave uint32
	rowSize        uint32
	numBanks       uint32
	numRanks       uint32
	pipeConfig     PipeConfig
}

// Lib computes surface layouts and addresses for one chip. Everything but Destroy is safe to call
// concurrently: the chip parameters and equation table are fixed at Create.
type Lib struct {
	logger    *slog.Logger
	allocator SysMemCallbacks
	// instanceMem is the allocation that accounts for this Lib in the caller's allocator
	instanceMem []byte

	config     Config
	generation Generation
	ops        *generationOps
	chip       chipParams

	tileTable      []TileModeRegister
	macroTileTable []MacroTileModeRegister

	elem      *element.Lib
	equations *equation.Table
	// equationBlocks is indexed like equations
	equationBlocks []EquationBlock
	// equationLookup maps log2 bytes per element and tile index to an equation index
	equationLookup             [5][]uint32
	uncompressedDepthEquations [5]uint32

	maxBaseAlign uint32
}

// Create builds a Lib for the chip described by input
func Create(input *CreateInput) (*Lib, error) {
	if input == nil || input.Callbacks == nil {
		return nil, errors.Wrap(ErrInvalidParams, "system memory callbacks are required")
	}
	if input.Flags&CreateFillSizeFields != 0 && input.Size != uint32(unsafe.Sizeof(CreateInput{})) {
		return nil, errors.Wrapf(ErrParamSizeMismatch, "CreateInput size %d", input.Size)
	}
	if input.MinPitchAlignPixels != 0 {
		if err := addrutil.CheckPow2(input.MinPitchAlignPixels, "MinPitchAlignPixels"); err != nil {
			return nil, errors.Mark(err, ErrInvalidParams)
		}
	}

	gen, ok := GenerationOf(input.ChipEngine, input.ChipFamily)
	if !ok {
		return nil, errors.Wrapf(ErrNotSupported, "chip engine 0x%x family %d", input.ChipEngine, input.ChipFamily)
	}

	mem := input.Callbacks.Alloc(int(unsafe.Sizeof(Lib{})))
	if mem == nil {
		return nil, errors.Wrap(ErrOutOfMemory, "allocating address library instance")
	}

	logger := addrutil.LoggerOrDiscard(input.Logger)
	l := &Lib{
		logger:      logger,
		allocator:   input.Callbacks,
		instanceMem: mem,
		config: Config{
			Flags:               input.Flags,
			ChipEngine:          input.ChipEngine,
			ChipFamily:          input.ChipFamily,
			ChipRevision:        input.ChipRevision,
			Generation:          gen,
			MinPitchAlignPixels: input.MinPitchAlignPixels,
		},
		generation: gen,
		ops:        generationTable[gen],
	}

	regs := input.RegValues
	err := l.ops.initGlobalParams(l, &regs)
	if err != nil {
		input.Callbacks.Free(mem)
		return nil, errors.Wrapf(err, "initializing %s", gen)
	}

	l.elem = element.New(logger, element.Config{
		Use32bppFor422Fmt: input.Flags&CreateUse32bppFor422Fmt != 0,
		Fp16ExportNorm:    input.Flags&CreateFp16ExportNorm != 0,
		PadBCnToPow2:      gen == GenerationR800,
	})

	l.equations = equation.NewTable()
	if gen.IsV2() {
		err = l.initSwizzleEquations()
	} else if gen != GenerationR800 {
		err = l.initMicroTileEquations()
		if err == nil {
			err = l.initTileIndexEquations()
		}
	}
	if err != nil {
		input.Callbacks.Free(mem)
		return nil, err
	}

	l.maxBaseAlign = l.ops.computeMaxBaseAlignment(l)

	logger.Debug("AddrLib::Create",
		slog.String("Generation", gen.String()),
		slog.Int("NumPipes", int(l.chip.numPipes)),
		slog.Int("NumBanks", int(l.chip.numBanks)),
		slog.Int("PipeInterleave", int(l.chip.pipeInterleave)),
		slog.Int("Equations", l.equations.Len()),
	)

	return l, nil
}

// Destroy returns the instance memory to the allocator the Lib was created with. The Lib must not be
// used afterward.
func (l *Lib) Destroy() {
	if l.instanceMem == nil {
		return
	}
	l.allocator.Free(l.instanceMem)
	l.instanceMem = nil
}

func (l *Lib) Config() Config {
	return l.config
}

func (l *Lib) Generation() Generation {
	return l.generation
}

// ElemLib returns the element library bound to this Lib
func (l *Lib) ElemLib() *element.Lib {
	return l.elem
}

// GetEquationTable returns a copy of the address equations precomputed at Create. Surface outputs
// refer to them by EquationIndex.
func (l *Lib) GetEquationTable() []equation.Equation {
	return l.equations.Equations()
}

func (l *Lib) hasFlag(flag CreateFlags) bool {
	return l.config.Flags&flag != 0
}

// checkSize enforces the struct size contract when CreateFillSizeFields is set
func (l *Lib) checkSize(name string, size uint32, expected uintptr) error {
	if !l.hasFlag(CreateFillSizeFields) || size == uint32(expected) {
		return nil
	}
	return errors.Wrapf(ErrParamSizeMismatch, "%s size %d, expected %d", name, size, expected)
}

// MaxAlignmentsOutput is the result of GetMaxAlignments
type MaxAlignmentsOutput struct {
	Size      uint32
	BaseAlign uint32
}

func NewMaxAlignmentsOutput() MaxAlignmentsOutput {
	return MaxAlignmentsOutput{Size: uint32(unsafe.Sizeof(MaxAlignmentsOutput{}))}
}

// GetMaxAlignments reports the largest base alignment any surface on this chip can require
func (l *Lib) GetMaxAlignments(out *MaxAlignmentsOutput) error {
	if err := l.checkSize("MaxAlignmentsOutput", out.Size, unsafe.Sizeof(*out)); err != nil {
		return err
	}
	out.BaseAlign = l.maxBaseAlign
	return nil
}

func v1ComputeMaxBaseAlignment(l *Lib) uint32 {
	maxAlign := l.chip.pipeInterleave

	consider := func(mode TileMode, config TileConfig) {
		if config.validate() != nil {
			return
		}
		align := l.macroTileLayout(mode, config, 128, 1).baseAlign
		maxAlign = max(maxAlign, align)
	}

	if len(l.tileTable) == 0 {
		for _, mode := range []TileMode{TileMode2DTiledThin1, TileMode2DTiledThick, TileMode2DTiledXThick} {
			consider(mode, l.ops.defaultTileConfig(l, mode))
		}
	}

	for index := range l.tileTable {
		if !l.tileTable[index].TileMode.IsMacroTiled() {
			continue
		}
		info, err := l.resolveTileIndex(int32(index), 0, 128, 1)
		if err != nil {
			continue
		}
		consider(info.Mode, info.Config)
	}

	if l.generation != GenerationR800 {
		maxAlign = max(maxAlign, prtTileBytes)
	}
	return maxAlign
}

func v2ComputeMaxBaseAlignment(l *Lib) uint32 {
	if supports256KBBlocks(l.config.ChipFamily) {
		return 256 * 1024
	}
	return 64 * 1024
}
