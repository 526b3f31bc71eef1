package element

// Format identifies a surface pixel format. Component widths in the names are listed starting
// from bit 0 of the element, so Format5_6_5 stores a 5-bit component in bits 0-4.
type Format uint32

const (
	FormatInvalid Format = iota
	Format8
	Format4_4
	Format3_3_2
	Format16
	Format16Float
	Format8_8
	Format5_6_5
	Format6_5_5
	Format1_5_5_5
	Format4_4_4_4
	Format5_5_5_1
	Format32
	Format32Float
	Format16_16
	Format16_16Float
	Format8_24
	Format8_24Float
	Format24_8
	Format24_8Float
	Format10_11_11
	Format10_11_11Float
	Format11_11_10
	Format11_11_10Float
	Format2_10_10_10
	Format8_8_8_8
	Format10_10_10_2
	FormatX24_8_32Float
	Format32_32
	Format32_32Float
	Format16_16_16_16
	Format16_16_16_16Float
	Format32_32_32_32
	Format32_32_32_32Float
	Format1
	Format1Reversed
	FormatGB_GR
	FormatBG_RG
	Format5_9_9_9SharedExp
	Format8_8_8
	Format16_16_16
	Format16_16_16Float
	Format32_32_32
	Format32_32_32Float
	FormatBC1
	FormatBC2
	FormatBC3
	FormatBC4
	FormatBC5
	FormatBC6
	FormatBC7
	FormatETC2_64BPP
	FormatETC2_128BPP
	FormatASTC_4x4
	FormatASTC_5x4
	FormatASTC_5x5
	FormatASTC_6x5
	FormatASTC_6x6
	FormatASTC_8x5
	FormatASTC_8x6
	FormatASTC_8x8
	FormatASTC_10x5
	FormatASTC_10x6
	FormatASTC_10x8
	FormatASTC_10x10
	FormatASTC_12x10
	FormatASTC_12x12
)

// ElemMode classifies how one storage element maps to pixels
type ElemMode uint32

const (
	ElemModeUncompressed ElemMode = iota
	// ElemModeExpanded formats store one pixel as three elements (24, 48 and 96 bit triples)
	ElemModeExpanded
	// ElemModePackedStd formats pack eight 1-bit pixels into a byte, lowest pixel in bit 0
	ElemModePackedStd
	// ElemModePackedRev formats pack eight 1-bit pixels into a byte, lowest pixel in bit 7
	ElemModePackedRev
	ElemModePackedGBGR
	ElemModePackedBGRG
	ElemModePackedBC1
	ElemModePackedBC2
	ElemModePackedBC3
	ElemModePackedBC4
	ElemModePackedBC5
	ElemModePackedBC6
	ElemModePackedBC7
	ElemModePackedETC2_64
	ElemModePackedETC2_128
	ElemModePackedASTC
)

var elemModeMapping = map[ElemMode]string{
	ElemModeUncompressed:   "Uncompressed",
	ElemModeExpanded:       "Expanded",
	ElemModePackedStd:      "PackedStd",
	ElemModePackedRev:      "PackedRev",
	ElemModePackedGBGR:     "PackedGBGR",
	ElemModePackedBGRG:     "PackedBGRG",
	ElemModePackedBC1:      "PackedBC1",
	ElemModePackedBC2:      "PackedBC2",
	ElemModePackedBC3:      "PackedBC3",
	ElemModePackedBC4:      "PackedBC4",
	ElemModePackedBC5:      "PackedBC5",
	ElemModePackedBC6:      "PackedBC6",
	ElemModePackedBC7:      "PackedBC7",
	ElemModePackedETC2_64:  "PackedETC2_64",
	ElemModePackedETC2_128: "PackedETC2_128",
	ElemModePackedASTC:     "PackedASTC",
}

func (m ElemMode) String() string {
	return elemModeMapping[m]
}

// IsBCn reports whether the mode is one of the BC1-BC7 block compression modes
func (m ElemMode) IsBCn() bool {
	return m >= ElemModePackedBC1 && m <= ElemModePackedBC7
}

type formatInfo struct {
	name       string
	bpp        uint32
	elemMode   ElemMode
	expandX    uint32
	expandY    uint32
	unusedBits uint32
	// comps holds color component widths starting at bit 0. Formats that cannot be written
	// through Flt32ToColorPixel leave it empty.
	comps []uint32
	float bool
}

var formatTable = map[Format]formatInfo{
	Format8:                {name: "8", bpp: 8, comps: []uint32{8}},
	Format4_4:              {name: "4_4", bpp: 8, comps: []uint32{4, 4}},
	Format3_3_2:            {name: "3_3_2", bpp: 8, comps: []uint32{3, 3, 2}},
	Format16:               {name: "16", bpp: 16, comps: []uint32{16}},
	Format16Float:          {name: "16_FLOAT", bpp: 16, comps: []uint32{16}, float: true},
	Format8_8:              {name: "8_8", bpp: 16, comps: []uint32{8, 8}},
	Format5_6_5:            {name: "5_6_5", bpp: 16, comps: []uint32{5, 6, 5}},
	Format6_5_5:            {name: "6_5_5", bpp: 16, comps: []uint32{6, 5, 5}},
	Format1_5_5_5:          {name: "1_5_5_5", bpp: 16, comps: []uint32{1, 5, 5, 5}},
	Format4_4_4_4:          {name: "4_4_4_4", bpp: 16, comps: []uint32{4, 4, 4, 4}},
	Format5_5_5_1:          {name: "5_5_5_1", bpp: 16, comps: []uint32{5, 5, 5, 1}},
	Format32:               {name: "32", bpp: 32, comps: []uint32{32}},
	Format32Float:          {name: "32_FLOAT", bpp: 32, comps: []uint32{32}, float: true},
	Format16_16:            {name: "16_16", bpp: 32, comps: []uint32{16, 16}},
	Format16_16Float:       {name: "16_16_FLOAT", bpp: 32, comps: []uint32{16, 16}, float: true},
	Format8_24:             {name: "8_24", bpp: 32, comps: []uint32{8, 24}},
	Format8_24Float:        {name: "8_24_FLOAT", bpp: 32, comps: []uint32{8, 24}, float: true},
	Format24_8:             {name: "24_8", bpp: 32, comps: []uint32{24, 8}},
	Format24_8Float:        {name: "24_8_FLOAT", bpp: 32, comps: []uint32{24, 8}, float: true},
	Format10_11_11:         {name: "10_11_11", bpp: 32, comps: []uint32{10, 11, 11}},
	Format10_11_11Float:    {name: "10_11_11_FLOAT", bpp: 32, comps: []uint32{10, 11, 11}, float: true},
	Format11_11_10:         {name: "11_11_10", bpp: 32, comps: []uint32{11, 11, 10}},
	Format11_11_10Float:    {name: "11_11_10_FLOAT", bpp: 32, comps: []uint32{11, 11, 10}, float: true},
	Format2_10_10_10:       {name: "2_10_10_10", bpp: 32, comps: []uint32{2, 10, 10, 10}},
	Format8_8_8_8:          {name: "8_8_8_8", bpp: 32, comps: []uint32{8, 8, 8, 8}},
	Format10_10_10_2:       {name: "10_10_10_2", bpp: 32, comps: []uint32{10, 10, 10, 2}},
	FormatX24_8_32Float:    {name: "X24_8_32_FLOAT", bpp: 64, unusedBits: 24, comps: []uint32{32, 8}, float: true},
	Format32_32:            {name: "32_32", bpp: 64, comps: []uint32{32, 32}},
	Format32_32Float:       {name: "32_32_FLOAT", bpp: 64, comps: []uint32{32, 32}, float: true},
	Format16_16_16_16:      {name: "16_16_16_16", bpp: 64, comps: []uint32{16, 16, 16, 16}},
	Format16_16_16_16Float: {name: "16_16_16_16_FLOAT", bpp: 64, comps: []uint32{16, 16, 16, 16}, float: true},
	Format32_32_32_32:      {name: "32_32_32_32", bpp: 128, comps: []uint32{32, 32, 32, 32}},
	Format32_32_32_32Float: {name: "32_32_32_32_FLOAT", bpp: 128, comps: []uint32{32, 32, 32, 32}, float: true},
	Format1:                {name: "1", bpp: 1, elemMode: ElemModePackedStd, expandX: 8, expandY: 1},
	Format1Reversed:        {name: "1_REVERSED", bpp: 1, elemMode: ElemModePackedRev, expandX: 8, expandY: 1},
	FormatGB_GR:            {name: "GB_GR", bpp: 16, elemMode: ElemModePackedGBGR, expandX: 1, expandY: 1},
	FormatBG_RG:            {name: "BG_RG", bpp: 16, elemMode: ElemModePackedBGRG, expandX: 1, expandY: 1},
	Format5_9_9_9SharedExp: {name: "5_9_9_9_SHAREDEXP", bpp: 32, comps: []uint32{9, 9, 9, 5}, float: true},
	Format8_8_8:            {name: "8_8_8", bpp: 24, elemMode: ElemModeExpanded, expandX: 3, expandY: 1},
	Format16_16_16:         {name: "16_16_16", bpp: 48, elemMode: ElemModeExpanded, expandX: 3, expandY: 1},
	Format16_16_16Float:    {name: "16_16_16_FLOAT", bpp: 48, elemMode: ElemModeExpanded, expandX: 3, expandY: 1},
	Format32_32_32:         {name: "32_32_32", bpp: 96, elemMode: ElemModeExpanded, expandX: 3, expandY: 1},
	Format32_32_32Float:    {name: "32_32_32_FLOAT", bpp: 96, elemMode: ElemModeExpanded, expandX: 3, expandY: 1},
	FormatBC1:              {name: "BC1", bpp: 64, elemMode: ElemModePackedBC1, expandX: 4, expandY: 4},
	FormatBC2:              {name: "BC2", bpp: 128, elemMode: ElemModePackedBC2, expandX: 4, expandY: 4},
	FormatBC3:              {name: "BC3", bpp: 128, elemMode: ElemModePackedBC3, expandX: 4, expandY: 4},
	FormatBC4:              {name: "BC4", bpp: 64, elemMode: ElemModePackedBC4, expandX: 4, expandY: 4},
	FormatBC5:              {name: "BC5", bpp: 128, elemMode: ElemModePackedBC5, expandX: 4, expandY: 4},
	FormatBC6:              {name: "BC6", bpp: 128, elemMode: ElemModePackedBC6, expandX: 4, expandY: 4},
	FormatBC7:              {name: "BC7", bpp: 128, elemMode: ElemModePackedBC7, expandX: 4, expandY: 4},
	FormatETC2_64BPP:       {name: "ETC2_64BPP", bpp: 64, elemMode: ElemModePackedETC2_64, expandX: 4, expandY: 4},
	FormatETC2_128BPP:      {name: "ETC2_128BPP", bpp: 128, elemMode: ElemModePackedETC2_128, expandX: 4, expandY: 4},
	FormatASTC_4x4:         {name: "ASTC_4x4", bpp: 128, elemMode: ElemModePackedASTC, expandX: 4, expandY: 4},
	FormatASTC_5x4:         {name: "ASTC_5x4", bpp: 128, elemMode: ElemModePackedASTC, expandX: 5, expandY: 4},
	FormatASTC_5x5:         {name: "ASTC_5x5", bpp: 128, elemMode: ElemModePackedASTC, expandX: 5, expandY: 5},
	FormatASTC_6x5:         {name: "ASTC_6x5", bpp: 128, elemMode: ElemModePackedASTC, expandX: 6, expandY: 5},
	FormatASTC_6x6:         {name: "ASTC_6x6", bpp: 128, elemMode: ElemModePackedASTC, expandX: 6, expandY: 6},
	FormatASTC_8x5:         {name: "ASTC_8x5", bpp: 128, elemMode: ElemModePackedASTC, expandX: 8, expandY: 5},
	FormatASTC_8x6:         {name: "ASTC_8x6", bpp: 128, elemMode: ElemModePackedASTC, expandX: 8, expandY: 6},
	FormatASTC_8x8:         {name: "ASTC_8x8", bpp: 128, elemMode: ElemModePackedASTC, expandX: 8, expandY: 8},
	FormatASTC_10x5:        {name: "ASTC_10x5", bpp: 128, elemMode: ElemModePackedASTC, expandX: 10, expandY: 5},
	FormatASTC_10x6:        {name: "ASTC_10x6", bpp: 128, elemMode: ElemModePackedASTC, expandX: 10, expandY: 6},
	FormatASTC_10x8:        {name: "ASTC_10x8", bpp: 128, elemMode: ElemModePackedASTC, expandX: 10, expandY: 8},
	FormatASTC_10x10:       {name: "ASTC_10x10", bpp: 128, elemMode: ElemModePackedASTC, expandX: 10, expandY: 10},
	FormatASTC_12x10:       {name: "ASTC_12x10", bpp: 128, elemMode: ElemModePackedASTC, expandX: 12, expandY: 10},
	FormatASTC_12x12:       {name: "ASTC_12x12", bpp: 128, elemMode: ElemModePackedASTC, expandX: 12, expandY: 12},
}

var formatByName map[string]Format

func init() {
	formatByName = make(map[string]Format, len(formatTable))
	for format, info := range formatTable {
		formatByName[info.name] = format
	}
}

func (f Format) String() string {
	info, ok := formatTable[f]
	if !ok {
		return "INVALID"
	}
	return info.name
}

// ParseFormat looks a format up by the name returned from Format.String
func ParseFormat(name string) (Format, bool) {
	format, ok := formatByName[name]
	return format, ok
}

// IsBlockCompressed returns true for BCn, ETC2 and ASTC formats
func IsBlockCompressed(format Format) bool {
	return format >= FormatBC1 && format <= FormatASTC_12x12
}

// IsMacroPixelPacked returns true for 4:2:2 formats that store two pixels per element
func IsMacroPixelPacked(format Format) bool {
	return format == FormatGB_GR || format == FormatBG_RG
}

// IsExpand3x returns true for 3-component formats stored as three single-component elements
func IsExpand3x(format Format) bool {
	switch format {
	case Format8_8_8, Format16_16_16, Format16_16_16Float, Format32_32_32, Format32_32_32Float:
		return true
	}
	return false
}
