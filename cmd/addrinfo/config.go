package main

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/addrlib"
	"github.com/vkngwrapper/addrlib/fdl"
)

type chipConfig struct {
	Engine   string `toml:"engine"`
	Family   string `toml:"family"`
	Revision uint32 `toml:"revision"`

	Pipes          uint32 `toml:"pipes"`
	PipeInterleave uint32 `toml:"pipe_interleave"`
	RowSize        uint32 `toml:"row_size"`
	Banks          uint32 `toml:"banks"`
	// GbAddrConfig replaces the register built from the fields above
	GbAddrConfig *uint32 `toml:"gb_addr_config"`

	TileModes      []uint32 `toml:"tile_modes"`
	MacroTileModes []uint32 `toml:"macro_tile_modes"`
	Flags          []string `toml:"flags"`

	MaxInstanceBytes int `toml:"max_instance_bytes"`
}

type surfaceConfig struct {
	Name        string   `toml:"name"`
	TileMode    string   `toml:"tile_mode"`
	SwizzleMode string   `toml:"swizzle_mode"`
	Resource    string   `toml:"resource"`
	TileIndex   *int32   `toml:"tile_index"`
	Bpp         uint32   `toml:"bpp"`
	Width       uint32   `toml:"width"`
	Height      uint32   `toml:"height"`
	Slices      uint32   `toml:"slices"`
	Samples     uint32   `toml:"samples"`
	MipLevels   uint32   `toml:"mip_levels"`
	Flags       []string `toml:"flags"`
}

type layoutConfig struct {
	Name       string   `toml:"name"`
	Generation string   `toml:"generation"`
	Format     string   `toml:"format"`
	Width      uint32   `toml:"width"`
	Height     uint32   `toml:"height"`
	Depth      uint32   `toml:"depth"`
	ArraySize  uint32   `toml:"array_size"`
	MipLevels  uint32   `toml:"mip_levels"`
	Samples    uint32   `toml:"samples"`
	TileMode   uint32   `toml:"tile_mode"`
	Flags      []string `toml:"flags"`
	// Pitch and Offset request an explicit layout when Pitch is set
	Pitch  uint32 `toml:"pitch"`
	Offset uint32 `toml:"offset"`
}

type config struct {
	Chip     *chipConfig     `toml:"chip"`
	Surfaces []surfaceConfig `toml:"surface"`
	Layouts  []layoutConfig  `toml:"layout"`
}

func readConfig(path string) (*config, error) {
	cfg := &config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrapf(err, "couldn't read config file %s", path)
	}
	return cfg, nil
}

func decodeConfig(data string) (*config, error) {
	cfg := &config{}
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, errors.Wrap(err, "couldn't decode config")
	}
	return cfg, nil
}

var engineNames = map[string]addrlib.ChipEngine{
	"r800": addrlib.ChipEngineR800,
	"si":   addrlib.ChipEngineSouthernIsland,
	"ai":   addrlib.ChipEngineArcticIsland,
}

var familyNames = map[string]addrlib.ChipFamily{
	"evergreen": addrlib.ChipFamilyEvergreen,
	"ni":        addrlib.ChipFamilyNI,
	"si":        addrlib.ChipFamilySI,
	"ci":        addrlib.ChipFamilyCI,
	"kv":        addrlib.ChipFamilyKV,
	"vi":        addrlib.ChipFamilyVI,
	"cz":        addrlib.ChipFamilyCZ,
	"ai":        addrlib.ChipFamilyAI,
	"rv":        addrlib.ChipFamilyRV,
	"nv":        addrlib.ChipFamilyNV,
	"vgh":       addrlib.ChipFamilyVGH,
	"nv3":       addrlib.ChipFamilyNV3,
	"rmb":       addrlib.ChipFamilyRMB,
	"rpl":       addrlib.ChipFamilyRPL,
	"mdn":       addrlib.ChipFamilyMDN,
	"gfx1150":   addrlib.ChipFamilyGFX1150,
}

var resourceNames = map[string]addrlib.ResourceType{
	"":      addrlib.ResourceTex2D,
	"tex1d": addrlib.ResourceTex1D,
	"tex2d": addrlib.ResourceTex2D,
	"tex3d": addrlib.ResourceTex3D,
}

var generationNames = map[string]fdl.Generation{
	"a5xx": fdl.GenerationA5xx,
	"a6xx": fdl.GenerationA6xx,
}

func lookup[T any](table map[string]T, kind, name string) (T, error) {
	value, ok := table[strings.ToLower(name)]
	if !ok {
		return value, errors.Newf("unknown %s %q", kind, name)
	}
	return value, nil
}

type namedEnum interface {
	~uint32 | ~int32
	String() string
}

// byName finds the enum value in [0, count) whose String matches name, ignoring case and an
// optional prefix
func byName[T namedEnum](kind, prefix, name string, count T) (T, error) {
	want := strings.TrimPrefix(strings.ToUpper(name), strings.ToUpper(prefix))
	for value := T(0); value < count; value++ {
		if strings.ToUpper(strings.TrimPrefix(value.String(), prefix)) == want {
			return value, nil
		}
	}
	return 0, errors.Newf("unknown %s %q", kind, name)
}

func parseTileMode(name string) (addrlib.TileMode, error) {
	if name == "" {
		return addrlib.TileModeUnknown, nil
	}
	return byName[addrlib.TileMode]("tile mode", "ADDR_TM_", name, addrlib.TileModeUnknown)
}

func parseSwizzleMode(name string) (addrlib.SwizzleMode, error) {
	return byName[addrlib.SwizzleMode]("swizzle mode", "Swizzle", name, addrlib.Swizzle256KBRX+1)
}

func parseFormat(name string) (fdl.Format, error) {
	return byName[fdl.Format]("format", "", name, fdl.FormatASTC4x4+1)
}

type namedFlags interface {
	~int32
	String() string
}

// parseFlags resolves flag names by the strings the flag types print
func parseFlags[T namedFlags](kind, prefix string, names []string) (T, error) {
	var flags T
	for _, name := range names {
		found := false
		for bit := 0; bit < 31; bit++ {
			flag := T(1) << bit
			str := flag.String()
			if strings.EqualFold(str, name) || strings.EqualFold(str, prefix+name) {
				flags |= flag
				found = true
				break
			}
		}
		if !found {
			return 0, errors.Newf("unknown %s flag %q", kind, name)
		}
	}
	return flags, nil
}

func encodeBanks(banks uint32) uint32 {
	switch banks {
	case 8:
		return 1
	case 16:
		return 2
	}
	return 0
}

func (c *chipConfig) createInput() (addrlib.CreateInput, error) {
	input := addrlib.NewCreateInput()

	engine, err := lookup(engineNames, "engine", c.Engine)
	if err != nil {
		return input, err
	}
	family, err := lookup(familyNames, "family", c.Family)
	if err != nil {
		return input, err
	}
	gen, ok := addrlib.GenerationOf(engine, family)
	if !ok {
		return input, errors.Newf("no address library serves engine %s with family %s", c.Engine, c.Family)
	}

	flags, err := parseFlags[addrlib.CreateFlags]("create", "Create", c.Flags)
	if err != nil {
		return input, err
	}

	input.ChipEngine = engine
	input.ChipFamily = family
	input.ChipRevision = c.Revision
	input.Flags = flags | addrlib.CreateFillSizeFields
	input.RegValues = addrlib.RegisterValues{
		GbAddrConfig: addrlib.GbAddrConfig{
			NumPipes:            c.Pipes,
			PipeInterleaveBytes: c.PipeInterleave,
			BankInterleave:      1,
			RowSize:             c.RowSize,
			NumBanks:            c.Banks,
			NumPkrs:             c.Banks,
		}.Encode(gen),
		NoOfBanks:       encodeBanks(c.Banks),
		TileConfig:      c.TileModes,
		MacroTileConfig: c.MacroTileModes,
	}
	if c.GbAddrConfig != nil {
		input.RegValues.GbAddrConfig = *c.GbAddrConfig
	}
	return input, nil
}
