package addrlib

import (
	"fmt"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

func (o *SurfaceInfoOutput) PrintParameters(json *jwriter.ObjectState) {
	json.Name("TileMode").String(o.TileMode.String())
	json.Name("TileType").String(o.TileType.String())
	json.Name("TileIndex").Int(int(o.TileIndex))
	json.Name("Pitch").Int(int(o.Pitch))
	json.Name("Height").Int(int(o.Height))
	json.Name("Depth").Int(int(o.Depth))
	json.Name("Bpp").Int(int(o.Bpp))
	json.Name("SurfSize").Float64(float64(o.SurfSize))
	json.Name("SliceSize").Float64(float64(o.SliceSize))
	json.Name("BaseAlign").Int(int(o.BaseAlign))
	json.Name("PitchAlign").Int(int(o.PitchAlign))
	json.Name("HeightAlign").Int(int(o.HeightAlign))

	if o.TileMode.IsMacroTiled() {
		cfg := json.Name("TileConfig").Object()
		o.TileConfig.printParameters(&cfg)
		cfg.End()
	}

	if o.StereoRightOffset != 0 {
		json.Name("StereoRightOffset").Float64(float64(o.StereoRightOffset))
		json.Name("StereoRightSwizzle").Int(int(o.StereoRightSwizzle))
	}
}

func (c TileConfig) printParameters(json *jwriter.ObjectState) {
	json.Name("PipeConfig").String(c.PipeConfig.String())
	json.Name("Banks").Int(int(c.Banks))
	json.Name("BankWidth").Int(int(c.BankWidth))
	json.Name("BankHeight").Int(int(c.BankHeight))
	json.Name("MacroAspectRatio").Int(int(c.MacroAspectRatio))
	json.Name("TileSplitBytes").Int(int(c.TileSplitBytes))
}

func (o *SurfaceInfoV2Output) PrintParameters(json *jwriter.ObjectState) {
	json.Name("Pitch").Int(int(o.Pitch))
	json.Name("Height").Int(int(o.Height))
	json.Name("NumSlices").Int(int(o.NumSlices))
	json.Name("Bpp").Int(int(o.Bpp))
	json.Name("SurfSize").Float64(float64(o.SurfSize))
	json.Name("SliceSize").Float64(float64(o.SliceSize))
	json.Name("BaseAlign").Int(int(o.BaseAlign))
	json.Name("Block").String(blockString(o.BlockWidth, o.BlockHeight, o.BlockSlices))

	levels := json.Name("MipLevels").Array()
	for _, mip := range o.MipInfo[:o.NumMipLevels] {
		obj := levels.Object()
		obj.Name("Pitch").Int(int(mip.Pitch))
		obj.Name("Height").Int(int(mip.Height))
		obj.Name("Depth").Int(int(mip.Depth))
		obj.Name("Offset").Float64(float64(mip.Offset))
		obj.Name("Size").Float64(float64(mip.Size))
		obj.End()
	}
	levels.End()
}

func blockString(width, height, depth uint32) string {
	return fmt.Sprintf("%dx%dx%d", width, height, depth)
}

// PrintDetailedMap writes the chip parameters and register tables the Lib was created with
func (l *Lib) PrintDetailedMap(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	obj.Name("Generation").String(l.generation.String())
	obj.Name("Flags").String(l.config.Flags.String())
	obj.Name("NumPipes").Int(int(l.chip.numPipes))
	obj.Name("NumBanks").Int(int(l.chip.numBanks))
	obj.Name("PipeInterleave").Int(int(l.chip.pipeInterleave))
	obj.Name("BankInterleave").Int(int(l.chip.bankInterleave))
	obj.Name("RowSize").Int(int(l.chip.rowSize))
	obj.Name("MaxBaseAlign").Int(int(l.maxBaseAlign))
	obj.Name("Equations").Int(l.equations.Len())

	if len(l.tileTable) > 0 {
		tiles := obj.Name("TileModes").Array()
		for _, reg := range l.tileTable {
			t := tiles.Object()
			t.Name("TileMode").String(reg.TileMode.String())
			t.Name("MicroTileType").String(reg.MicroTileType.String())
			t.Name("PipeConfig").String(reg.PipeConfig.String())
			t.Name("TileSplitBytes").Int(int(reg.TileSplitBytes))
			t.End()
		}
		tiles.End()
	}

	if len(l.macroTileTable) > 0 {
		macros := obj.Name("MacroTileModes").Array()
		for _, reg := range l.macroTileTable {
			m := macros.Object()
			m.Name("Banks").Int(int(reg.Banks))
			m.Name("BankWidth").Int(int(reg.BankWidth))
			m.Name("BankHeight").Int(int(reg.BankHeight))
			m.Name("MacroAspectRatio").Int(int(reg.MacroAspectRatio))
			m.End()
		}
		macros.End()
	}
}

// BuildStatsString returns PrintDetailedMap as a string
func (l *Lib) BuildStatsString() string {
	writer := jwriter.NewWriter()
	l.PrintDetailedMap(&writer)
	return string(writer.Bytes())
}
