package fdl

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"golang.org/x/exp/slog"
)

func (l *Layout) PrintParameters(json *jwriter.ObjectState) {
	json.Name("Format").String(l.Format.String())
	json.Name("Width0").Int(int(l.Width0))
	json.Name("Height0").Int(int(l.Height0))
	json.Name("Depth0").Int(int(l.Depth0))
	json.Name("Cpp").Int(int(l.Cpp))
	json.Name("Samples").Int(int(l.Samples))
	json.Name("TileMode").String(l.TileMode.String())
	json.Name("Flags").String(l.Flags.String())
	json.Name("Size").Float64(float64(l.Size))
	json.Name("LayerSize").Float64(float64(l.LayerSize))
	if l.UBWC() {
		json.Name("UbwcLayerSize").Float64(float64(l.UbwcLayerSize))
	}

	levels := json.Name("Levels").Array()
	for level := uint32(0); level < l.MipLevels; level++ {
		slice := l.Slices[level]
		pitch := l.Pitch(level)

		levelObj := levels.Object()
		levelObj.Name("Level").Int(int(level))
		levelObj.Name("Pitch").Int(int(pitch))
		levelObj.Name("Offset").Int(int(slice.Offset))
		levelObj.Name("Size0").Int(int(slice.Size0))
		levelObj.Name("AlignedHeight").Int(int(slice.Size0 / pitch))
		levelObj.Name("TileMode").String(l.TileModeOf(level).String())
		if l.UBWC() {
			ubwc := l.UbwcSlices[level]
			levelObj.Name("UbwcPitch").Int(int(l.UbwcPitch(level)))
			levelObj.Name("UbwcOffset").Int(int(ubwc.Offset))
			levelObj.Name("UbwcSize0").Int(int(ubwc.Size0))
		}
		levelObj.End()
	}
	levels.End()
}

// PrintDetailedMap writes the layout and the placement of every mip level
func (l *Layout) PrintDetailedMap(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	l.PrintParameters(&obj)
}

// BuildStatsString renders PrintDetailedMap as a JSON document
func (l *Layout) BuildStatsString() string {
	writer := jwriter.NewWriter()
	l.PrintDetailedMap(&writer)
	return string(writer.Bytes())
}

// LogLayout writes one debug record per mip level
func (l *Layout) LogLayout(logger *slog.Logger) {
	for level := uint32(0); level < l.MipLevels; level++ {
		slice := l.Slices[level]
		ubwc := l.UbwcSlices[level]
		pitch := l.Pitch(level)

		logger.Debug("fdl::Level",
			slog.String("Format", l.Format.String()),
			slog.Int("Level", int(level)),
			slog.Int("Width", int(minify(l.Width0, level))),
			slog.Int("Height", int(minify(l.Height0, level))),
			slog.Int("Depth", int(minify(l.Depth0, level))),
			slog.Int("Cpp", int(l.Cpp)),
			slog.Int("Samples", int(l.Samples)),
			slog.Int("Pitch", int(pitch)),
			slog.Int("Size0", int(slice.Size0)),
			slog.Int("UbwcSize0", int(ubwc.Size0)),
			slog.Int("AlignedHeight", int(slice.Size0/pitch)),
			slog.Int("Offset", int(slice.Offset)),
			slog.Int("UbwcOffset", int(ubwc.Offset)),
			slog.Uint64("LayerSize", l.LayerSize),
			slog.Uint64("UbwcLayerSize", l.UbwcLayerSize),
			slog.String("TileMode", l.TileModeOf(level).String()),
		)
	}
}
