package addrlib

// ChipEngine identifies the graphics engine family of a chip
type ChipEngine uint32

const (
	ChipEngineR800           ChipEngine = 0x8
	ChipEngineSouthernIsland ChipEngine = 0xa
	ChipEngineArcticIsland   ChipEngine = 0xd
)

// ChipFamily identifies a chip family within an engine
type ChipFamily uint32

const (
	ChipFamilyEvergreen ChipFamily = 0x51
	ChipFamilyNI        ChipFamily = 0x52
	ChipFamilySI        ChipFamily = 110
	ChipFamilyCI        ChipFamily = 120
	ChipFamilyKV        ChipFamily = 125
	ChipFamilyVI        ChipFamily = 130
	ChipFamilyCZ        ChipFamily = 135
	ChipFamilyAI        ChipFamily = 141
	ChipFamilyRV        ChipFamily = 142
	ChipFamilyNV        ChipFamily = 143
	ChipFamilyVGH       ChipFamily = 144
	ChipFamilyNV3       ChipFamily = 145
	ChipFamilyRMB       ChipFamily = 146
	ChipFamilyRPL       ChipFamily = 148
	ChipFamilyMDN       ChipFamily = 149
	ChipFamilyGFX1150   ChipFamily = 150
)

// Generation is the address library implementation serving a chip
type Generation uint32

const (
	GenerationR800 Generation = iota
	GenerationSI
	GenerationCI
	GenerationGFX9
	GenerationGFX10
)

var generationMapping = map[Generation]string{
	GenerationR800:  "R800",
	GenerationSI:    "SI",
	GenerationCI:    "CI",
	GenerationGFX9:  "GFX9",
	GenerationGFX10: "GFX10",
}

func (g Generation) String() string {
	return generationMapping[g]
}

// IsV2 reports whether the generation addresses surfaces with swizzle modes instead of tile modes
func (g Generation) IsV2() bool {
	return g == GenerationGFX9 || g == GenerationGFX10
}

// GenerationOf returns the generation that serves a chip, or false when none does
func GenerationOf(engine ChipEngine, family ChipFamily) (Generation, bool) {
	switch engine {
	case ChipEngineR800:
		return GenerationR800, true
	case ChipEngineSouthernIsland:
		switch family {
		case ChipFamilySI:
			return GenerationSI, true
		case ChipFamilyCI, ChipFamilyKV, ChipFamilyVI, ChipFamilyCZ:
			return GenerationCI, true
		}
	case ChipEngineArcticIsland:
		switch family {
		case ChipFamilyAI, ChipFamilyRV:
			return GenerationGFX9, true
		case ChipFamilyNV, ChipFamilyVGH, ChipFamilyNV3, ChipFamilyRMB, ChipFamilyRPL, ChipFamilyMDN,
			ChipFamilyGFX1150:
			return GenerationGFX10, true
		}
	}
	return 0, false
}

// supports256KBBlocks reports whether the family is a GFX11 part with 256KB swizzle modes
func supports256KBBlocks(family ChipFamily) bool {
	return family == ChipFamilyNV3 || family == ChipFamilyGFX1150
}

// generationOps is the closed set of per-generation behaviors. Operations a generation does not
// have are left nil and report ErrNotSupported.
type generationOps struct {
	// initGlobalParams decodes the register values passed to Create
	initGlobalParams func(l *Lib, regs *RegisterValues) error
	// setupTileCfg resolves a tile index to a tile mode, micro tile type and tile configuration
	setupTileCfg func(l *Lib, bpp uint32, index, macroModeIndex int32, flags SurfaceFlags) (tileIndexInfo, error)
	// computeMacroModeIndex finds the macro tile table row used by a tile index
	computeMacroModeIndex func(l *Lib, index int32, flags SurfaceFlags, bpp, numSamples uint32) (int32, error)
	// computeMaxBaseAlignment is the largest base alignment any surface can require
	computeMaxBaseAlignment func(l *Lib) uint32
	// defaultTileConfig fills in a tile configuration when the caller supplies none
	defaultTileConfig func(l *Lib, mode TileMode) TileConfig
	// linearXmaskMacroSize is the padding unit of linear CMASK and HTILE
	linearXmaskMacroSize func(l *Lib, config PipeConfig, kind xmaskKind) (uint32, uint32, error)
	// maxCmaskBlockMax is the largest value the CMASK slice register field holds
	maxCmaskBlockMax uint32
	// linearPitchAlign is the pitch granularity of LINEAR_ALIGNED surfaces
	linearPitchAlign func(l *Lib, bytes uint32, flags SurfaceFlags) uint32
	// linearSizeAdjust pads a LINEAR_ALIGNED pitch after alignment and returns it with the height
	// alignment. Nil keeps growing the pitch until a slice fills whole base alignments.
	linearSizeAdjust func(l *Lib, bytes, numSamples, pitchAlign, pitch, height uint32) (uint32, uint32)
	// computeDccInfo sizes the DCC key of a resolved color surface
	computeDccInfo func(l *Lib, in *DccInfoInput, tiling surfaceTiling, out *DccInfoOutput) error
}

var generationTable = map[Generation]*generationOps{
	GenerationR800: {
		initGlobalParams:        r800InitGlobalParams,
		computeMaxBaseAlignment: v1ComputeMaxBaseAlignment,
		defaultTileConfig:       r800DefaultTileConfig,
		linearXmaskMacroSize:    r800LinearXmaskMacroSize,
		maxCmaskBlockMax:        0x3fff,
		linearPitchAlign:        r800LinearPitchAlign,
	},
	GenerationSI: {
		initGlobalParams:        siInitGlobalParams,
		setupTileCfg:            siSetupTileCfg,
		computeMaxBaseAlignment: v1ComputeMaxBaseAlignment,
		defaultTileConfig:       siDefaultTileConfig,
		linearXmaskMacroSize:    siLinearXmaskMacroSize,
		maxCmaskBlockMax:        0x3fff,
		linearPitchAlign:        siLinearPitchAlign,
		linearSizeAdjust:        siLinearSizeAdjust,
	},
	GenerationCI: {
		initGlobalParams:        ciInitGlobalParams,
		setupTileCfg:            ciSetupTileCfg,
		computeMacroModeIndex:   ciComputeMacroModeIndex,
		computeMaxBaseAlignment: v1ComputeMaxBaseAlignment,
		defaultTileConfig:       siDefaultTileConfig,
		linearXmaskMacroSize:    siLinearXmaskMacroSize,
		maxCmaskBlockMax:        0x3fff,
		linearPitchAlign:        siLinearPitchAlign,
		linearSizeAdjust:        siLinearSizeAdjust,
		computeDccInfo:          ciComputeDccInfo,
	},
	GenerationGFX9: {
		initGlobalParams:        gfx9InitGlobalParams,
		computeMaxBaseAlignment: v2ComputeMaxBaseAlignment,
	},
	GenerationGFX10: {
		initGlobalParams:        gfx10InitGlobalParams,
		computeMaxBaseAlignment: v2ComputeMaxBaseAlignment,
	},
}
