package addrlib

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/addrlib/addrutil"
	"github.com/vkngwrapper/addrlib/equation"
)

// SwizzleMode selects the block size and element order of a surface on GFX9 and later
type SwizzleMode uint32

const (
	SwizzleLinear SwizzleMode = 0

	Swizzle256BS SwizzleMode = 1
	Swizzle256BD SwizzleMode = 2
	Swizzle256BR SwizzleMode = 3

	Swizzle4KBZ SwizzleMode = 4
	Swizzle4KBS SwizzleMode = 5
	Swizzle4KBD SwizzleMode = 6
	Swizzle4KBR SwizzleMode = 7

	Swizzle64KBZ SwizzleMode = 8
	Swizzle64KBS SwizzleMode = 9
	Swizzle64KBD SwizzleMode = 10
	Swizzle64KBR SwizzleMode = 11

	Swizzle4KBZX SwizzleMode = 20
	Swizzle4KBSX SwizzleMode = 21
	Swizzle4KBDX SwizzleMode = 22
	Swizzle4KBRX SwizzleMode = 23

	Swizzle64KBZX SwizzleMode = 24
	Swizzle64KBSX SwizzleMode = 25
	Swizzle64KBDX SwizzleMode = 26
	Swizzle64KBRX SwizzleMode = 27

	// The 256KB modes only exist on GFX11 parts
	Swizzle256KBZX SwizzleMode = 28
	Swizzle256KBSX SwizzleMode = 29
	Swizzle256KBDX SwizzleMode = 30
	Swizzle256KBRX SwizzleMode = 31
)

// swizzleOrder is the element order inside the 256 byte micro block
type swizzleOrder uint32

const (
	orderLinear swizzleOrder = iota
	// orderZ interleaves x and y bits one at a time
	orderZ
	// orderStandard fills rows of the micro block
	orderStandard
	// orderDisplay interleaves x and y bits two at a time
	orderDisplay
	orderRotated
)

type swizzleModeFlags struct {
	name      string
	blockLog2 uint32
	order     swizzleOrder

	// xor modes fold pipe and bank bits of the block with its high address bits
	xor   bool
	gfx11 bool
}

var swizzleModeTable = map[SwizzleMode]swizzleModeFlags{
	SwizzleLinear:  {name: "SwizzleLinear", order: orderLinear},
	Swizzle256BS:   {name: "Swizzle256BS", blockLog2: 8, order: orderStandard},
	Swizzle256BD:   {name: "Swizzle256BD", blockLog2: 8, order: orderDisplay},
	Swizzle256BR:   {name: "Swizzle256BR", blockLog2: 8, order: orderRotated},
	Swizzle4KBZ:    {name: "Swizzle4KBZ", blockLog2: 12, order: orderZ},
	Swizzle4KBS:    {name: "Swizzle4KBS", blockLog2: 12, order: orderStandard},
	Swizzle4KBD:    {name: "Swizzle4KBD", blockLog2: 12, order: orderDisplay},
	Swizzle4KBR:    {name: "Swizzle4KBR", blockLog2: 12, order: orderRotated},
	Swizzle64KBZ:   {name: "Swizzle64KBZ", blockLog2: 16, order: orderZ},
	Swizzle64KBS:   {name: "Swizzle64KBS", blockLog2: 16, order: orderStandard},
	Swizzle64KBD:   {name: "Swizzle64KBD", blockLog2: 16, order: orderDisplay},
	Swizzle64KBR:   {name: "Swizzle64KBR", blockLog2: 16, order: orderRotated},
	Swizzle4KBZX:   {name: "Swizzle4KBZX", blockLog2: 12, order: orderZ, xor: true},
	Swizzle4KBSX:   {name: "Swizzle4KBSX", blockLog2: 12, order: orderStandard, xor: true},
	Swizzle4KBDX:   {name: "Swizzle4KBDX", blockLog2: 12, order: orderDisplay, xor: true},
	Swizzle4KBRX:   {name: "Swizzle4KBRX", blockLog2: 12, order: orderRotated, xor: true},
	Swizzle64KBZX:  {name: "Swizzle64KBZX", blockLog2: 16, order: orderZ, xor: true},
	Swizzle64KBSX:  {name: "Swizzle64KBSX", blockLog2: 16, order: orderStandard, xor: true},
	Swizzle64KBDX:  {name: "Swizzle64KBDX", blockLog2: 16, order: orderDisplay, xor: true},
	Swizzle64KBRX:  {name: "Swizzle64KBRX", blockLog2: 16, order: orderRotated, xor: true},
	Swizzle256KBZX: {name: "Swizzle256KBZX", blockLog2: 18, order: orderZ, xor: true, gfx11: true},
	Swizzle256KBSX: {name: "Swizzle256KBSX", blockLog2: 18, order: orderStandard, xor: true, gfx11: true},
	Swizzle256KBDX: {name: "Swizzle256KBDX", blockLog2: 18, order: orderDisplay, xor: true, gfx11: true},
	Swizzle256KBRX: {name: "Swizzle256KBRX", blockLog2: 18, order: orderRotated, xor: true, gfx11: true},
}

func (m SwizzleMode) flags() swizzleModeFlags {
	return swizzleModeTable[m]
}

func (m SwizzleMode) String() string {
	f, ok := swizzleModeTable[m]
	if !ok {
		return "SwizzleInvalid"
	}
	return f.name
}

func (m SwizzleMode) IsLinear() bool {
	return m == SwizzleLinear
}

func (m SwizzleMode) IsXor() bool {
	return m.flags().xor
}

// BlockBytes is the size of the swizzle block, or 0 for linear surfaces
func (m SwizzleMode) BlockBytes() uint32 {
	if m.IsLinear() {
		return 0
	}
	return 1 << m.flags().blockLog2
}

// ResourceType is the dimensionality of a GFX9+ surface
type ResourceType uint32

const (
	ResourceTex1D ResourceType = iota
	ResourceTex2D
	ResourceTex3D
)

var resourceTypeMapping = map[ResourceType]string{
	ResourceTex1D: "Tex1D",
	ResourceTex2D: "Tex2D",
	ResourceTex3D: "Tex3D",
}

func (r ResourceType) String() string {
	return resourceTypeMapping[r]
}

// checkSwizzleMode reports whether the chip supports mode for the resource type and sample count
func (l *Lib) checkSwizzleMode(mode SwizzleMode, resource ResourceType, numSamples uint32) error {
	f, ok := swizzleModeTable[mode]
	switch {
	case !ok:
		return errInvalidf("swizzle mode %d", mode)
	case resource > ResourceTex3D:
		return errInvalidf("resource type %d", resource)
	case f.gfx11 && !supports256KBBlocks(l.config.ChipFamily):
		return errors.Wrapf(ErrNotSupported, "%s on chip family %d", mode, l.config.ChipFamily)
	case f.order == orderRotated:
		return errors.Wrapf(ErrNotSupported, "rotated swizzle %s", mode)
	case mode.IsLinear():
		if numSamples > 1 {
			return errInvalidf("linear surface with %d samples", numSamples)
		}
		return nil
	case resource == ResourceTex1D:
		return errors.Wrapf(ErrNotSupported, "%s for a 1D surface", mode)
	case resource == ResourceTex3D && f.order == orderDisplay:
		return errors.Wrapf(ErrNotSupported, "%s for a 3D surface", mode)
	case resource == ResourceTex3D && f.blockLog2 == 8:
		return errors.Wrapf(ErrNotSupported, "%s for a 3D surface", mode)
	case numSamples > 1 && (resource != ResourceTex2D || f.blockLog2 < 12 || f.order == orderDisplay):
		return errInvalidf("%s %s with %d samples", resource, mode, numSamples)
	}
	return nil
}

// swizzleXorBits is the number of pipe and bank bits an xor mode folds, starting at the pipe
// interleave. It never takes more than half the bits above the pipe interleave so that every
// folded bit is paired with a higher, unfolded one.
func (l *Lib) swizzleXorBits(mode SwizzleMode) uint32 {
	f := mode.flags()
	log2PI := addrutil.Log2(l.chip.pipeInterleave)
	if !f.xor || f.blockLog2 <= log2PI {
		return 0
	}
	pipeBankBits := addrutil.Log2(addrutil.NextPow2(l.chip.numPipes)) + addrutil.Log2(addrutil.NextPow2(l.chip.numBanks))
	return min(pipeBankBits, (f.blockLog2-log2PI)/2)
}

// coordOrder lists the coordinate kind feeding each address bit above the element bytes
func coordOrder(order swizzleOrder, resource ResourceType, microBits, log2Samples, blockBits uint32) []equation.Kind {
	var kinds []equation.Kind
	counts := map[equation.Kind]uint32{}
	push := func(k equation.Kind) {
		kinds = append(kinds, k)
		counts[k]++
	}

	dims := []equation.Kind{equation.KindX, equation.KindY}
	if resource == ResourceTex3D {
		dims = append(dims, equation.KindZ)
	}

	// fewest pushes the dimension with the fewest bits, taking the earliest on ties
	fewest := func() {
		best := dims[0]
		for _, d := range dims[1:] {
			if counts[d] < counts[best] {
				best = d
			}
		}
		push(best)
	}

	switch {
	case order == orderZ:
		for i := uint32(0); i < microBits; i++ {
			fewest()
		}
	case order == orderStandard:
		for i := uint32(0); i < (microBits+1)/2; i++ {
			push(equation.KindX)
		}
		for i := uint32(0); i < microBits/2; i++ {
			push(equation.KindY)
		}
	case order == orderDisplay:
		w, h := (microBits+1)/2, microBits/2
		for uint32(len(kinds)) < microBits {
			for i := 0; i < 2 && counts[equation.KindX] < w; i++ {
				push(equation.KindX)
			}
			for i := 0; i < 2 && counts[equation.KindY] < h; i++ {
				push(equation.KindY)
			}
		}
	}

	for i := uint32(0); i < log2Samples; i++ {
		push(equation.KindSample)
	}
	for uint32(len(kinds)) < blockBits {
		fewest()
	}
	return kinds
}

// buildSwizzleEquation computes the address equation of one swizzle block. The low address bits
// select the byte of the element, the next ones walk the 256 byte micro block in the mode's order,
// then the samples, then the rest of the block as square as possible.
func buildSwizzleEquation(log2Bytes uint32, mode SwizzleMode, resource ResourceType, log2Samples, log2PI, xorBits uint32) (equation.Equation, error) {
	f := mode.flags()
	if f.blockLog2 < 8 || log2Bytes > 4 {
		return equation.Equation{}, errors.Wrapf(equation.ErrInvalidParams, "%s with %d byte elements", mode, 1<<log2Bytes)
	}

	var eq equation.Equation
	for i := uint32(0); i < log2Bytes; i++ {
		if err := eq.Set(i, 0, equation.NewChannel(equation.KindAddr, i)); err != nil {
			return eq, err
		}
	}

	indices := map[equation.Kind]uint32{}
	kinds := coordOrder(f.order, resource, 8-log2Bytes, log2Samples, f.blockLog2-log2Bytes)
	for i, kind := range kinds {
		if err := eq.Set(log2Bytes+uint32(i), 0, equation.NewChannel(kind, indices[kind])); err != nil {
			return eq, err
		}
		indices[kind]++
	}

	for k := uint32(0); k < xorBits; k++ {
		low := log2PI + k
		high := f.blockLog2 - 1 - k
		if err := eq.Xor(low, eq.Addr(high)); err != nil {
			return eq, err
		}
	}

	equation.FillEqBitComponents(&eq)
	return eq, nil
}

// swizzleBlockDims is the block shape in elements, derived from the bits its equation reads
func swizzleBlockDims(eq *equation.Equation) (width, height, depth uint32) {
	log2 := map[equation.Kind]uint32{}
	for bit := uint32(0); bit < eq.NumBits; bit++ {
		c := eq.Addr(bit)
		if c.Kind() != equation.KindAddr {
			log2[c.Kind()] = max(log2[c.Kind()], c.Index()+1)
		}
	}
	return 1 << log2[equation.KindX], 1 << log2[equation.KindY], 1 << log2[equation.KindZ]
}

func (l *Lib) swizzleEquation(log2Bytes uint32, mode SwizzleMode, resource ResourceType, log2Samples uint32) (equation.Equation, error) {
	return buildSwizzleEquation(log2Bytes, mode, resource, log2Samples, addrutil.Log2(l.chip.pipeInterleave), l.swizzleXorBits(mode))
}

// initSwizzleEquations adds the single sample equation of every supported swizzle mode, resource
// type and element size
func (l *Lib) initSwizzleEquations() error {
	if !addrutil.IsPow2(l.chip.pipeInterleave) {
		return errors.Wrapf(ErrInvalidGbRegValues, "pipe interleave %d", l.chip.pipeInterleave)
	}

	for mode := Swizzle256BS; mode <= Swizzle256KBRX; mode++ {
		if _, ok := swizzleModeTable[mode]; !ok {
			continue
		}
		for _, resource := range []ResourceType{ResourceTex2D, ResourceTex3D} {
			if l.checkSwizzleMode(mode, resource, 1) != nil {
				continue
			}
			for log2Bytes := uint32(0); log2Bytes <= 4; log2Bytes++ {
				eq, err := l.swizzleEquation(log2Bytes, mode, resource, 0)
				if err != nil {
					return err
				}
				width, height, depth := swizzleBlockDims(&eq)
				l.addEquation(equation.NewSwizzleModeKey(log2Bytes, uint32(mode), uint32(resource)), eq,
					EquationBlock{Width: width, Height: height, Slices: depth})
			}
		}
	}
	return nil
}
