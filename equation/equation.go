package equation

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

const (
	// MaxBits is the largest number of output bits an equation describes
	MaxBits = 20
	// MaxComps is the largest number of XOR terms feeding one output bit
	MaxComps = 5
)

var (
	ErrNotSupported  = errors.New("equation not supported")
	ErrInvalidParams = errors.New("invalid equation parameters")
	ErrNotInvertible = errors.New("equation is not invertible")
)

// Equation maps coordinate bits to the low address bits of a tile. Output bit i is the XOR of
// Comps[0][i] through Comps[NumBitComponents-1][i]; invalid channels contribute zero.
//
// X channels count elements and KindAddr channels select the byte within one. ByteAddressed
// converts to the form where x counts bytes along a row.
type Equation struct {
	Comps            [MaxComps][MaxBits]Channel
	NumBits          uint32
	NumBitComponents uint32
	// StackedDepthSlices is set for 3D swizzles whose slices are laid out one after another
	// rather than interleaved into the block
	StackedDepthSlices bool
}

// Set assigns XOR term comp of output bit. Each term may be written once.
func (e *Equation) Set(bit, comp uint32, channel Channel) error {
	if bit >= MaxBits || comp >= MaxComps {
		return errors.Wrapf(ErrInvalidParams, "term %d of bit %d is out of range", comp, bit)
	}
	if e.Comps[comp][bit].Valid() {
		return errors.Wrapf(ErrInvalidParams, "term %d of bit %d is already %s", comp, bit, e.Comps[comp][bit])
	}

	e.Comps[comp][bit] = channel
	if bit >= e.NumBits {
		e.NumBits = bit + 1
	}
	return nil
}

// Xor appends channel as the next free XOR term of bit
func (e *Equation) Xor(bit uint32, channel Channel) error {
	for comp := uint32(0); comp < MaxComps; comp++ {
		if bit < MaxBits && !e.Comps[comp][bit].Valid() {
			return e.Set(bit, comp, channel)
		}
	}
	return errors.Wrapf(ErrInvalidParams, "bit %d has no free terms", bit)
}

// Addr returns the first term of bit
func (e *Equation) Addr(bit uint32) Channel {
	return e.Comps[0][bit]
}

// FillEqBitComponents sets NumBitComponents to one more than the highest XOR term any bit uses
func FillEqBitComponents(e *Equation) {
	e.NumBitComponents = 1
	for comp := uint32(MaxComps - 1); comp > 0; comp-- {
		for bit := uint32(0); bit < e.NumBits; bit++ {
			if e.Comps[comp][bit].Valid() {
				e.NumBitComponents = comp + 1
				return
			}
		}
	}
}

// GetCoordActiveMask returns the set of output bits that coordinate bit (kind, index) feeds
func GetCoordActiveMask(e *Equation, kind Kind, index uint32) uint32 {
	var mask uint32
	for bit := uint32(0); bit < e.NumBits; bit++ {
		for comp := uint32(0); comp < MaxComps; comp++ {
			c := e.Comps[comp][bit]
			if c.Valid() && c.Kind() == kind && c.Index() == index {
				mask |= 1 << bit
			}
		}
	}
	return mask
}

// GetMaxValidChannelIndex returns the highest bit index of kind that any channel in the list reads,
// and false if none does
func GetMaxValidChannelIndex(channels []Channel, kind Kind) (uint32, bool) {
	var index uint32
	found := false
	for _, c := range channels {
		if c.Valid() && c.Kind() == kind {
			index = max(index, c.Index())
			found = true
		}
	}
	return index, found
}

// Channels flattens every valid term of the equation
func (e *Equation) Channels() []Channel {
	var out []Channel
	for comp := uint32(0); comp < MaxComps; comp++ {
		for bit := uint32(0); bit < e.NumBits; bit++ {
			if e.Comps[comp][bit].Valid() {
				out = append(out, e.Comps[comp][bit])
			}
		}
	}
	return out
}

// ByteAddressed returns the equation with x measured in bytes: the KindAddr bits become the low x
// bits and every x channel moves up by log2 of the element size. Hardware swizzle tables list
// equations in this form.
func (e *Equation) ByteAddressed() Equation {
	var log2Bpp uint32
	for bit := uint32(0); bit < e.NumBits; bit++ {
		for comp := uint32(0); comp < MaxComps; comp++ {
			if c := e.Comps[comp][bit]; c.Valid() && c.Kind() == KindAddr {
				log2Bpp = max(log2Bpp, c.Index()+1)
			}
		}
	}

	out := *e
	for bit := uint32(0); bit < e.NumBits; bit++ {
		for comp := uint32(0); comp < MaxComps; comp++ {
			c := e.Comps[comp][bit]
			switch {
			case !c.Valid():
			case c.Kind() == KindAddr:
				out.Comps[comp][bit] = NewChannel(KindX, c.Index())
			case c.Kind() == KindX:
				out.Comps[comp][bit] = NewChannel(KindX, c.Index()+log2Bpp)
			}
		}
	}
	return out
}

// Evaluate computes the address bits the equation produces for coord
func (e *Equation) Evaluate(coord Coord) uint32 {
	var addr uint32
	for bit := uint32(0); bit < e.NumBits; bit++ {
		var v uint32
		for comp := uint32(0); comp < MaxComps; comp++ {
			v ^= e.Comps[comp][bit].eval(coord)
		}
		addr |= v << bit
	}
	return addr
}

// Invert recovers the coordinate bits feeding an address. Every coordinate bit the equation reads
// must be determined by the output bits, otherwise ErrNotInvertible is returned. Coordinate bits
// the equation does not read are zero in the result.
func (e *Equation) Invert(addr uint32) (Coord, error) {
	var vars []Channel
	varIndex := make(map[Channel]int)
	rows := make([]uint64, e.NumBits)

	for bit := uint32(0); bit < e.NumBits; bit++ {
		for comp := uint32(0); comp < MaxComps; comp++ {
			c := e.Comps[comp][bit]
			if !c.Valid() {
				continue
			}
			idx, ok := varIndex[c]
			if !ok {
				idx = len(vars)
				varIndex[c] = idx
				vars = append(vars, c)
			}
			rows[bit] ^= 1 << idx
		}
		rows[bit] |= uint64((addr>>bit)&1) << 63
	}

	if len(vars) > 63 {
		return Coord{}, errors.Wrapf(ErrNotInvertible, "%d unknowns", len(vars))
	}

	// Gauss-Jordan elimination over GF(2); bit 63 of each row holds the right-hand side
	pivotRow := make([]int, len(vars))
	rank := 0
	for v := range vars {
		pivotRow[v] = -1
		sel := -1
		for r := rank; r < len(rows); r++ {
			if rows[r]&(1<<v) != 0 {
				sel = r
				break
			}
		}
		if sel < 0 {
			continue
		}
		rows[rank], rows[sel] = rows[sel], rows[rank]
		for r := range rows {
			if r != rank && rows[r]&(1<<v) != 0 {
				rows[r] ^= rows[rank]
			}
		}
		pivotRow[v] = rank
		rank++
	}

	if rank < len(vars) {
		return Coord{}, errors.Wrapf(ErrNotInvertible, "rank %d for %d unknowns", rank, len(vars))
	}
	for r := rank; r < len(rows); r++ {
		if rows[r] != 0 {
			return Coord{}, errors.Wrapf(ErrNotInvertible, "address 0x%x is not produced by the equation", addr)
		}
	}

	var coord Coord
	for v, c := range vars {
		if rows[pivotRow[v]]>>63 != 0 {
			coord.set(c.Kind(), c.Index())
		}
	}
	return coord, nil
}

// WriteJSON writes the equation as an array of bits, each an array of its terms
func (e *Equation) WriteJSON(w *jwriter.Writer) {
	obj := w.Object()
	obj.Name("numBits").Int(int(e.NumBits))
	obj.Name("numBitComponents").Int(int(e.NumBitComponents))
	obj.Name("stackedDepthSlices").Bool(e.StackedDepthSlices)

	bits := obj.Name("bits").Array()
	for bit := uint32(0); bit < e.NumBits; bit++ {
		terms := bits.Array()
		for comp := uint32(0); comp < max(e.NumBitComponents, 1); comp++ {
			terms.String(e.Comps[comp][bit].String())
		}
		terms.End()
	}
	bits.End()
	obj.End()
}
