package addrlib

import "github.com/vkngwrapper/core/v2/common"

// CreateFlags alter the behavior of a Lib for its whole lifetime
type CreateFlags int32

var createFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	createFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return createFlagsMapping.FlagsToString(f)
}

const (
	// CreateFillSizeFields makes every call check the Size field of its input and output structs
	CreateFillSizeFields CreateFlags = 1 << iota
	// CreateUseTileIndex resolves tile configuration from TileIndex when an input supplies one
	CreateUseTileIndex
	// CreateUseCombinedSwizzle applies TileSwizzle from surface inputs as a combined bank/pipe swizzle
	CreateUseCombinedSwizzle
	// CreateCheckLast2DLevel reports whether a mip level is the last one that is still macro tiled
	CreateCheckLast2DLevel
	// CreateUse32bppFor422Fmt stores 4:2:2 packed formats as 32-bit elements holding two pixels
	CreateUse32bppFor422Fmt
	// CreateDisableLinearOpt keeps one row surfaces from being switched to linear tiling
	CreateDisableLinearOpt
	// CreateFp16ExportNorm lets half, 11 and 10-bit float formats take the normalized export path
	CreateFp16ExportNorm
	// CreateNoCubeMipSlicesPad disables padding cube map mip levels to six slices
	CreateNoCubeMipSlicesPad
	// CreateOptimalBankSwap is carried in the configuration flags for drivers that program it. The 2B
	// and 3B tile modes address like 2D and 3D whether it is set or not.
	CreateOptimalBankSwap
	// CreateAllowLargeThickTile keeps thick tile modes whose micro tile is larger than a DRAM row
	CreateAllowLargeThickTile
	// CreateHtileSliceAlign pads every HTILE slice to a cache line per pipe instead of only the total
	CreateHtileSliceAlign
)

// SurfaceFlags describe how a surface is used. Several of them change padding rules.
type SurfaceFlags int32

var surfaceFlagsMapping = common.NewFlagStringMapping[SurfaceFlags]()

func (f SurfaceFlags) Register(str string) {
	surfaceFlagsMapping.Register(f, str)
}
func (f SurfaceFlags) String() string {
	return surfaceFlagsMapping.FlagsToString(f)
}

const (
	SurfaceColor SurfaceFlags = 1 << iota
	SurfaceDepth
	SurfaceStencil
	SurfaceFmask
	SurfaceCube
	SurfaceVolume
	// SurfaceDisplay surfaces are scanned out and keep a displayable micro tile order
	SurfaceDisplay
	SurfacePow2Pad
	// SurfaceTexture marks a surface sampled by the texture unit
	SurfaceTexture
	// SurfaceQbStereo surfaces store a second, right-eye image below the first
	SurfaceQbStereo
	// SurfaceNoStencil is a depth surface without a stencil plane
	SurfaceNoStencil
	// SurfaceTcCompatible metadata must be readable by the texture unit
	SurfaceTcCompatible
	// SurfaceMinimizeAlignment asks OptimizeTileMode to prefer micro tiling over macro tile padding
	SurfaceMinimizeAlignment
	// SurfacePrt is a partially resident texture and always uses 64KB tiles
	SurfacePrt
	// SurfaceOpt4Space lets OptimizeTileMode degrade surfaces whose macro tile padding wastes space
	SurfaceOpt4Space
	SurfaceDccCompatible
	// SurfaceNeedEquation asks for a tile mode with an address equation
	SurfaceNeedEquation
	// SurfaceDisableLinearOpt keeps a one row surface from being switched to linear tiling
	SurfaceDisableLinearOpt
	// SurfaceMatchStencilTileCfg surfaces that would need a PRT mode fall back to 1D tiling
	SurfaceMatchStencilTileCfg
	// SurfaceDisallowLargeThickDegrade keeps thick modes whose micro tile outgrows a DRAM row
	SurfaceDisallowLargeThickDegrade
	// SurfaceInterleaved linear surfaces are read a pipe interleave at a time and keep rows aligned to it
	SurfaceInterleaved
)

func init() {
	CreateFillSizeFields.Register("CreateFillSizeFields")
	CreateUseTileIndex.Register("CreateUseTileIndex")
	CreateUseCombinedSwizzle.Register("CreateUseCombinedSwizzle")
	CreateCheckLast2DLevel.Register("CreateCheckLast2DLevel")
	CreateUse32bppFor422Fmt.Register("CreateUse32bppFor422Fmt")
	CreateDisableLinearOpt.Register("CreateDisableLinearOpt")
	CreateFp16ExportNorm.Register("CreateFp16ExportNorm")
	CreateNoCubeMipSlicesPad.Register("CreateNoCubeMipSlicesPad")
	CreateOptimalBankSwap.Register("CreateOptimalBankSwap")
	CreateAllowLargeThickTile.Register("CreateAllowLargeThickTile")
	CreateHtileSliceAlign.Register("CreateHtileSliceAlign")

	SurfaceColor.Register("SurfaceColor")
	SurfaceDepth.Register("SurfaceDepth")
	SurfaceStencil.Register("SurfaceStencil")
	SurfaceFmask.Register("SurfaceFmask")
	SurfaceCube.Register("SurfaceCube")
	SurfaceVolume.Register("SurfaceVolume")
	SurfaceDisplay.Register("SurfaceDisplay")
	SurfacePow2Pad.Register("SurfacePow2Pad")
	SurfaceTexture.Register("SurfaceTexture")
	SurfaceQbStereo.Register("SurfaceQbStereo")
	SurfaceNoStencil.Register("SurfaceNoStencil")
	SurfaceTcCompatible.Register("SurfaceTcCompatible")
	SurfaceMinimizeAlignment.Register("SurfaceMinimizeAlignment")
	SurfacePrt.Register("SurfacePrt")
	SurfaceOpt4Space.Register("SurfaceOpt4Space")
	SurfaceDccCompatible.Register("SurfaceDccCompatible")
	SurfaceNeedEquation.Register("SurfaceNeedEquation")
	SurfaceDisableLinearOpt.Register("SurfaceDisableLinearOpt")
	SurfaceMatchStencilTileCfg.Register("SurfaceMatchStencilTileCfg")
	SurfaceDisallowLargeThickDegrade.Register("SurfaceDisallowLargeThickDegrade")
	SurfaceInterleaved.Register("SurfaceInterleaved")
}
