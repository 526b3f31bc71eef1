package fdl

import (
	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
)

// Generation selects the layout rules of a GPU family
type Generation int32

const (
	GenerationA5xx Generation = iota + 5
	GenerationA6xx
)

func (g Generation) String() string {
	switch g {
	case GenerationA5xx:
		return "a5xx"
	case GenerationA6xx:
		return "a6xx"
	}
	return "unknown"
}

// LayoutForExtent lays out a WebGPU texture of the given extent. DepthOrArrayLayers is the
// depth of 3D textures and the layer count of everything else.
func LayoutForExtent(gen Generation, format gputypes.TextureFormat, extent gputypes.Extent3D, mipLevels, samples uint32, tileMode TileMode, flags LayoutFlags) (*Layout, error) {
	f, ok := FormatFromTextureFormat(format)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidParams, "texture format %v has no layout format", format)
	}

	params := LayoutParams{
		Format:    f,
		Samples:   samples,
		Width:     extent.Width,
		Height:    extent.Height,
		Depth:     1,
		MipLevels: mipLevels,
		ArraySize: extent.DepthOrArrayLayers,
		TileMode:  tileMode,
		Flags:     flags,
	}
	if flags&Layout3D != 0 {
		params.Depth = extent.DepthOrArrayLayers
		params.ArraySize = 1
	}

	layout := &Layout{}
	var err error
	switch gen {
	case GenerationA5xx:
		err = layout.Layout5(params)
	case GenerationA6xx:
		err = layout.Layout6(params)
	default:
		err = errors.Wrapf(ErrInvalidParams, "unknown generation %d", gen)
	}
	if err != nil {
		return nil, err
	}
	return layout, nil
}
