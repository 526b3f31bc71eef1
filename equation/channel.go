package equation

import "strconv"

// Kind names the coordinate a channel reads a bit from
type Kind uint32

const (
	// KindAddr bits are taken directly from the byte offset within an element
	KindAddr Kind = iota
	KindX
	KindY
	KindZ
	KindSample
)

var kindMapping = map[Kind]string{
	KindAddr:   "addr",
	KindX:      "x",
	KindY:      "y",
	KindZ:      "z",
	KindSample: "s",
}

func (k Kind) String() string {
	return kindMapping[k]
}

const (
	channelValidBit   = 0
	channelKindShift  = 1
	channelKindMask   = 0x7
	channelIndexShift = 4
	channelIndexMask  = 0x1f
)

// Channel is one XOR term of an equation bit: a (kind, bit index) pair plus a valid flag,
// packed into a plain integer. The zero Channel is invalid and contributes nothing.
type Channel uint16

// NewChannel returns a valid channel reading bit index of the given coordinate kind
func NewChannel(kind Kind, index uint32) Channel {
	return Channel(1<<channelValidBit |
		(uint16(kind)&channelKindMask)<<channelKindShift |
		(uint16(index)&channelIndexMask)<<channelIndexShift)
}

func (c Channel) Valid() bool {
	return c&(1<<channelValidBit) != 0
}

func (c Channel) Kind() Kind {
	return Kind((c >> channelKindShift) & channelKindMask)
}

func (c Channel) Index() uint32 {
	return uint32((c >> channelIndexShift) & channelIndexMask)
}

func (c Channel) String() string {
	if !c.Valid() {
		return "-"
	}
	return c.Kind().String() + strconv.Itoa(int(c.Index()))
}

// Coord is the set of inputs an equation reads. X is in elements.
type Coord struct {
	X, Y, Z, Sample uint32
	// Byte is the byte offset within the element
	Byte uint32
}

func (c Coord) value(kind Kind) uint32 {
	switch kind {
	case KindX:
		return c.X
	case KindY:
		return c.Y
	case KindZ:
		return c.Z
	case KindSample:
		return c.Sample
	}
	return c.Byte
}

func (c *Coord) set(kind Kind, index uint32) {
	switch kind {
	case KindX:
		c.X |= 1 << index
	case KindY:
		c.Y |= 1 << index
	case KindZ:
		c.Z |= 1 << index
	case KindSample:
		c.Sample |= 1 << index
	default:
		c.Byte |= 1 << index
	}
}

func (c Channel) eval(coord Coord) uint32 {
	if !c.Valid() {
		return 0
	}
	return (coord.value(c.Kind()) >> c.Index()) & 1
}
