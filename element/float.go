package element

import "math"

// smallFloat describes a reduced-precision float encoding
type smallFloat struct {
	expBits  uint32
	mantBits uint32
	bias     int
	signed   bool
	// clamped encodings have no infinity: the largest exponent holds ordinary values
	clamped bool
}

var (
	half     = smallFloat{expBits: 5, mantBits: 10, bias: 15, signed: true}
	float11  = smallFloat{expBits: 5, mantBits: 6, bias: 15}
	float10  = smallFloat{expBits: 5, mantBits: 5, bias: 15}
	float24C = smallFloat{expBits: 4, mantBits: 20, bias: 15, clamped: true}
)

func (s smallFloat) encode(value float32) uint32 {
	v := float64(value)
	maxExp := uint32(1)<<s.expBits - 1
	mantMask := uint32(1)<<s.mantBits - 1

	if math.IsNaN(v) {
		if s.clamped {
			return 0
		}
		return maxExp<<s.mantBits | 1<<(s.mantBits-1)
	}

	var sign uint32
	if math.Signbit(v) {
		if !s.signed {
			return 0
		}
		sign = 1 << (s.expBits + s.mantBits)
		v = -v
	}

	if s.clamped && v > 1 {
		v = 1
	}

	if math.IsInf(v, 0) {
		return sign | maxExp<<s.mantBits
	}
	if v == 0 {
		return sign
	}

	frac, exp := math.Frexp(v)
	biased := exp - 1 + s.bias

	if biased <= 0 {
		// Denormal: the mantissa counts units of 2^(1-bias-mantBits); a carry out of the mantissa
		// lands exactly on the smallest normal encoding
		m := uint32(math.Floor(math.Ldexp(v, s.bias-1+int(s.mantBits)) + 0.5))
		return sign | m
	}

	m := uint32(math.Floor((frac*2-1)*float64(uint32(1)<<s.mantBits) + 0.5))
	if m > mantMask {
		m = 0
		biased++
	}

	if s.clamped {
		if uint32(biased) > maxExp {
			return sign | maxExp<<s.mantBits | mantMask
		}
	} else if uint32(biased) >= maxExp {
		return sign | maxExp<<s.mantBits
	}

	return sign | uint32(biased)<<s.mantBits | m
}

// encodeSharedExp packs three non-negative components into the 9-9-9 mantissa, 5-bit shared exponent
// layout with red in the lowest bits
func encodeSharedExp(r, g, b float32) uint32 {
	const (
		mantBits = 9
		bias     = 15
		maxExp   = 31
	)
	maxValue := float64((1<<mantBits)-1) / float64(1<<mantBits) * math.Ldexp(1, maxExp-bias)

	clamp := func(value float32) float64 {
		v := float64(value)
		if math.IsNaN(v) || v <= 0 {
			return 0
		}
		return math.Min(v, maxValue)
	}

	rc, gc, bc := clamp(r), clamp(g), clamp(b)
	maxComp := math.Max(rc, math.Max(gc, bc))

	expShared := -bias - 1
	if maxComp > 0 {
		expShared = max(-bias-1, int(math.Floor(math.Log2(maxComp))))
	}
	expShared += 1 + bias

	denom := math.Ldexp(1, expShared-bias-mantBits)
	if uint32(math.Floor(maxComp/denom+0.5)) == 1<<mantBits {
		denom *= 2
		expShared++
	}

	rm := uint32(math.Floor(rc/denom + 0.5))
	gm := uint32(math.Floor(gc/denom + 0.5))
	bm := uint32(math.Floor(bc/denom + 0.5))

	return rm | gm<<9 | bm<<18 | uint32(expShared)<<27
}
