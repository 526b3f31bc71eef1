package equation

import (
	"math/bits"

	"github.com/dolthub/swiss"
)

const (
	keyLog2BppShift   = 0
	keyLog2BppMask    = 0x7
	keyModeShift      = 3
	keyModeMask       = 0x3f
	keyTileTypeShift  = 9
	keyTileTypeMask   = 0x7
	keyFamilyShift    = 12
	keyFamilyMask     = 0x3
	keyResourceShift  = 14
	keyResourceMask   = 0x3
	keyThicknessShift = 16
	keyThicknessMask  = 0xf

	keyPipeConfigShift = 20
	keyPipeConfigMask  = 0x1f
	keyLog2BanksShift  = 25
	keyLog2BanksMask   = 0x7
	keyBankWidthShift  = 28
	keyBankHeightShift = 30
	keyAspectShift     = 32
	keyLog2Mask        = 0x3
	keyPrtShift        = 34
)

// KeyFamily separates the key spaces of tile-mode and swizzle-mode equations
type KeyFamily uint32

const (
	KeyFamilyTileMode KeyFamily = iota
	KeyFamilySwizzleMode
)

// Key identifies an equation in a Table. mode is a tile mode or a swizzle mode depending on family;
// tileType, thickness and the macro tile fields are only meaningful for tile-mode keys and resource
// for swizzle-mode keys.
type Key uint64

func NewTileModeKey(log2Bpp, tileMode uint32, tileType MicroTileType, thickness uint32) Key {
	return Key((log2Bpp&keyLog2BppMask)<<keyLog2BppShift |
		(tileMode&keyModeMask)<<keyModeShift |
		(uint32(tileType)&keyTileTypeMask)<<keyTileTypeShift |
		uint32(KeyFamilyTileMode)<<keyFamilyShift |
		(thickness&keyThicknessMask)<<keyThicknessShift)
}

func NewSwizzleModeKey(log2Bpp, swizzleMode, resource uint32) Key {
	return Key((log2Bpp&keyLog2BppMask)<<keyLog2BppShift |
		(swizzleMode&keyModeMask)<<keyModeShift |
		uint32(KeyFamilySwizzleMode)<<keyFamilyShift |
		(resource&keyResourceMask)<<keyResourceShift)
}

// MacroTile describes the bank and pipe layout a macro tiled equation is built for. Banks,
// BankWidth, BankHeight and MacroAspectRatio are powers of two.
type MacroTile struct {
	PipeConfig       uint32
	Banks            uint32
	BankWidth        uint32
	BankHeight       uint32
	MacroAspectRatio uint32
	// Prt equations cover a whole 64KB partially resident tile
	Prt bool
}

// WithMacroTile adds the macro tile layout to a tile-mode key
func (k Key) WithMacroTile(m MacroTile) Key {
	log2 := func(v uint32) uint64 { return uint64(bits.TrailingZeros32(max(v, 1))) }
	k |= Key(uint64(m.PipeConfig&keyPipeConfigMask)<<keyPipeConfigShift |
		(log2(m.Banks)&keyLog2BanksMask)<<keyLog2BanksShift |
		(log2(m.BankWidth)&keyLog2Mask)<<keyBankWidthShift |
		(log2(m.BankHeight)&keyLog2Mask)<<keyBankHeightShift |
		(log2(m.MacroAspectRatio)&keyLog2Mask)<<keyAspectShift)
	if m.Prt {
		k |= 1 << keyPrtShift
	}
	return k
}

// MacroTile returns the macro tile layout of a tile-mode key, and false for micro tiled keys
func (k Key) MacroTile() (MacroTile, bool) {
	config := uint32(k>>keyPipeConfigShift) & keyPipeConfigMask
	if config == 0 {
		return MacroTile{}, false
	}
	return MacroTile{
		PipeConfig:       config,
		Banks:            1 << (uint32(k>>keyLog2BanksShift) & keyLog2BanksMask),
		BankWidth:        1 << (uint32(k>>keyBankWidthShift) & keyLog2Mask),
		BankHeight:       1 << (uint32(k>>keyBankHeightShift) & keyLog2Mask),
		MacroAspectRatio: 1 << (uint32(k>>keyAspectShift) & keyLog2Mask),
		Prt:              k&(1<<keyPrtShift) != 0,
	}, true
}

func (k Key) Log2Bpp() uint32 {
	return (uint32(k) >> keyLog2BppShift) & keyLog2BppMask
}

func (k Key) Mode() uint32 {
	return (uint32(k) >> keyModeShift) & keyModeMask
}

func (k Key) TileType() MicroTileType {
	return MicroTileType((uint32(k) >> keyTileTypeShift) & keyTileTypeMask)
}

func (k Key) Family() KeyFamily {
	return KeyFamily((uint32(k) >> keyFamilyShift) & keyFamilyMask)
}

func (k Key) Resource() uint32 {
	return (uint32(k) >> keyResourceShift) & keyResourceMask
}

func (k Key) Thickness() uint32 {
	return (uint32(k) >> keyThicknessShift) & keyThicknessMask
}

// InvalidIndex is returned for keys with no equation
const InvalidIndex = ^uint32(0)

// Table stores equations by dense index and looks them up by key. A Table is filled once and is
// safe for concurrent reads afterwards.
type Table struct {
	index     *swiss.Map[Key, uint32]
	equations []Equation
}

func NewTable() *Table {
	return &Table{
		index: swiss.NewMap[Key, uint32](42),
	}
}

// Add stores eq under key and returns its index. Adding an existing key returns the earlier index.
func (t *Table) Add(key Key, eq Equation) uint32 {
	if idx, ok := t.index.Get(key); ok {
		return idx
	}

	idx := uint32(len(t.equations))
	t.equations = append(t.equations, eq)
	t.index.Put(key, idx)
	return idx
}

// Index looks up the equation index stored for key, returning InvalidIndex if there is none
func (t *Table) Index(key Key) uint32 {
	idx, ok := t.index.Get(key)
	if !ok {
		return InvalidIndex
	}
	return idx
}

// Get returns the equation at index
func (t *Table) Get(index uint32) (Equation, bool) {
	if index >= uint32(len(t.equations)) {
		return Equation{}, false
	}
	return t.equations[index], true
}

func (t *Table) Len() int {
	return len(t.equations)
}

// Equations returns a copy of every stored equation in index order
func (t *Table) Equations() []Equation {
	return append([]Equation(nil), t.equations...)
}
