package equation

import (
	"github.com/cockroachdb/errors"
)

// MicroTileType is the pixel order within an 8x8 micro tile
type MicroTileType uint32

const (
	MicroTileDisplayable MicroTileType = iota
	MicroTileNonDisplayable
	MicroTileDepthSampleOrder
	MicroTileRotated
	MicroTileThick
)

var microTileTypeMapping = map[MicroTileType]string{
	MicroTileDisplayable:      "DISPLAYABLE",
	MicroTileNonDisplayable:   "NONDISPLAYABLE",
	MicroTileDepthSampleOrder: "DEPTH_SAMPLE_ORDER",
	MicroTileRotated:          "ROTATED",
	MicroTileThick:            "THICK",
}

func (t MicroTileType) String() string {
	return microTileTypeMapping[t]
}

var (
	x0 = NewChannel(KindX, 0)
	x1 = NewChannel(KindX, 1)
	x2 = NewChannel(KindX, 2)
	y0 = NewChannel(KindY, 0)
	y1 = NewChannel(KindY, 1)
	y2 = NewChannel(KindY, 2)
	z0 = NewChannel(KindZ, 0)
	z1 = NewChannel(KindZ, 1)
	z2 = NewChannel(KindZ, 2)
)

// Pixel index bit orders, lowest bit first, indexed by log2 of bytes per element
var (
	displayOrder = [5][]Channel{
		{x0, x1, x2, y1, y0, y2},
		{x0, x1, x2, y0, y1, y2},
		{x0, x1, y0, x2, y1, y2},
		{x0, y0, x1, x2, y1, y2},
		{y0, x0, x1, x2, y1, y2},
	}
	nonDisplayOrder = []Channel{x0, y0, x1, y1, x2, y2}
	rotatedOrder    = [5][]Channel{
		{y0, y1, y2, x1, x0, x2},
		{y0, y1, y2, x0, x1, x2},
		{y0, y1, x0, y2, x1, x2},
		{y0, x0, y1, x1, x2, y2},
		nil,
	}
	thickOrder = [5][]Channel{
		{x0, y0, x1, y1, z0, z1, x2, y2},
		{x0, y0, x1, y1, z0, z1, x2, y2},
		{x0, y0, x1, z0, y1, z1, x2, y2},
		{x0, y0, z0, x1, y1, z1, x2, y2},
		{x0, y0, z0, x1, y1, z1, x2, y2},
	}
)

// PixelIndexOrder returns the coordinate bit feeding each bit of the pixel index within a micro tile,
// lowest bit first. thickness is 1, 4 or 8.
func PixelIndexOrder(log2Bpp, thickness uint32, tileType MicroTileType) ([]Channel, error) {
	if log2Bpp > 4 {
		return nil, errors.Wrapf(ErrInvalidParams, "log2 bytes per element %d", log2Bpp)
	}
	if thickness != 1 && thickness != 4 && thickness != 8 {
		return nil, errors.Wrapf(ErrInvalidParams, "thickness %d", thickness)
	}

	var order []Channel
	switch tileType {
	case MicroTileDisplayable:
		order = displayOrder[log2Bpp]
	case MicroTileNonDisplayable, MicroTileDepthSampleOrder:
		order = nonDisplayOrder
	case MicroTileRotated:
		order = rotatedOrder[log2Bpp]
		if order == nil {
			return nil, errors.Wrapf(ErrNotSupported, "rotated micro tiles at %d bits per element", 8<<log2Bpp)
		}
	case MicroTileThick:
		if thickness == 1 {
			return nil, errors.Wrap(ErrInvalidParams, "thick micro tile order in a thin tile mode")
		}
		order = thickOrder[log2Bpp]
		if thickness == 8 {
			order = append(append([]Channel(nil), order...), z2)
		}
		return order, nil
	default:
		return nil, errors.Wrapf(ErrInvalidParams, "micro tile type %d", tileType)
	}

	order = append([]Channel(nil), order...)
	if thickness > 1 {
		order = append(order, z0, z1)
	}
	if thickness > 4 {
		order = append(order, z2)
	}
	return order, nil
}

// ComputeMicroTileEquation builds the equation for the bytes of one micro tile: the low log2Bpp bits
// pass the byte offset within the element through, the rest follow the pixel index order
func ComputeMicroTileEquation(log2Bpp, thickness uint32, tileType MicroTileType) (Equation, error) {
	order, err := PixelIndexOrder(log2Bpp, thickness, tileType)
	if err != nil {
		return Equation{}, err
	}

	var eq Equation
	for i := uint32(0); i < log2Bpp; i++ {
		if err := eq.Set(i, 0, NewChannel(KindAddr, i)); err != nil {
			return Equation{}, err
		}
	}
	for i, c := range order {
		if err := eq.Set(log2Bpp+uint32(i), 0, c); err != nil {
			return Equation{}, err
		}
	}

	FillEqBitComponents(&eq)
	return eq, nil
}
