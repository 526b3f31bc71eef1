// Command addrinfo computes surface layouts for a chip described in a TOML file and prints
// them as JSON.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/addrlib"
	"github.com/vkngwrapper/addrlib/addrutil"
	"github.com/vkngwrapper/addrlib/fdl"
	"github.com/vkngwrapper/addrlib/sysmem"
	"golang.org/x/exp/slog"
)

func main() {
	var configFile string
	var verbose, stats bool
	flag.StringVar(&configFile, "config", "", "TOML file describing the chip and the surfaces to lay out")
	flag.BoolVar(&verbose, "v", false, "log library debug output to stderr")
	flag.BoolVar(&stats, "stats", false, "include the chip tables and instance memory statistics")
	flag.Parse()

	if configFile == "" {
		fmt.Println("Usage: addrinfo -config <chip.toml> [-v] [-stats]")
		os.Exit(1)
	}

	cfg, err := readConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}

	logger := addrutil.LoggerOrDiscard(nil)
	if verbose {
		logger = slog.New(slog.HandlerOptions{Level: slog.LevelDebug}.NewTextHandler(os.Stderr))
	}

	if err := run(cfg, os.Stdout, logger, stats); err != nil {
		log.Fatalf("%+v", err)
	}
}

type runner struct {
	cfg    *config
	logger *slog.Logger
	stats  bool

	allocator *sysmem.Allocator
	lib       *addrlib.Lib
}

func run(cfg *config, out io.Writer, logger *slog.Logger, stats bool) error {
	r := &runner{cfg: cfg, logger: logger, stats: stats}

	if cfg.Chip != nil {
		input, err := cfg.Chip.createInput()
		if err != nil {
			return err
		}

		r.allocator = sysmem.New(sysmem.CreateOptions{
			MaxBytes: cfg.Chip.MaxInstanceBytes,
			Logger:   logger,
		})
		input.Callbacks = r.allocator
		input.Logger = logger

		r.lib, err = addrlib.Create(&input)
		if err != nil {
			return errors.Wrap(err, "couldn't create the address library")
		}
		defer r.lib.Destroy()
	} else if len(cfg.Surfaces) > 0 {
		return errors.New("surfaces need a [chip] section")
	}

	writer := jwriter.NewWriter()
	if err := r.print(&writer); err != nil {
		return err
	}
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "couldn't write JSON")
	}

	_, err := out.Write(append(writer.Bytes(), '\n'))
	return err
}

func (r *runner) print(writer *jwriter.Writer) error {
	obj := writer.Object()
	defer obj.End()

	if r.lib != nil && r.stats {
		r.lib.PrintDetailedMap(obj.Name("Chip"))
	}

	surfaces := obj.Name("Surfaces").Array()
	for i := range r.cfg.Surfaces {
		surface := &r.cfg.Surfaces[i]
		surfObj := surfaces.Object()
		surfObj.Name("Name").String(surface.Name)

		var err error
		if r.lib.Generation().IsV2() {
			err = r.printSurfaceV2(surface, &surfObj)
		} else {
			err = r.printSurface(surface, &surfObj)
		}
		surfObj.End()
		if err != nil {
			return errors.Wrapf(err, "surface %q", surface.Name)
		}
	}
	surfaces.End()

	layouts := obj.Name("Layouts").Array()
	for i := range r.cfg.Layouts {
		layoutCfg := &r.cfg.Layouts[i]
		layout, err := r.computeLayout(layoutCfg)
		if err != nil {
			return errors.Wrapf(err, "layout %q", layoutCfg.Name)
		}
		layout.LogLayout(r.logger)

		layoutObj := layouts.Object()
		layoutObj.Name("Name").String(layoutCfg.Name)
		layoutObj.Name("Generation").String(layoutCfg.Generation)
		layout.PrintParameters(&layoutObj)
		layoutObj.End()
	}
	layouts.End()

	if r.allocator != nil && r.stats {
		r.allocator.PrintDetailedMap(obj.Name("InstanceMemory"))
	}
	return nil
}

func (r *runner) printSurface(surface *surfaceConfig, json *jwriter.ObjectState) error {
	mode, err := parseTileMode(surface.TileMode)
	if err != nil {
		return err
	}
	flags, err := parseFlags[addrlib.SurfaceFlags]("surface", "Surface", surface.Flags)
	if err != nil {
		return err
	}

	levels := json.Name("MipLevels").Array()
	defer levels.End()

	for level := uint32(0); level < max(surface.MipLevels, 1); level++ {
		in := addrlib.NewSurfaceInfoInput()
		in.TileMode = mode
		in.Bpp = surface.Bpp
		in.Width = max(surface.Width>>level, 1)
		in.Height = max(surface.Height>>level, 1)
		in.NumSlices = max(surface.Slices, 1)
		in.NumSamples = max(surface.Samples, 1)
		in.MipLevel = level
		in.Flags = flags
		if surface.TileIndex != nil {
			in.TileIndex = *surface.TileIndex
		}

		out := addrlib.NewSurfaceInfoOutput()
		if err := r.lib.ComputeSurfaceInfo(&in, &out); err != nil {
			return errors.Wrapf(err, "mip level %d", level)
		}

		levelObj := levels.Object()
		out.PrintParameters(&levelObj)
		levelObj.End()

		// a tile mode chosen for level 0 carries down the chain
		mode = out.TileMode
	}
	return nil
}

func (r *runner) printSurfaceV2(surface *surfaceConfig, json *jwriter.ObjectState) error {
	mode, err := parseSwizzleMode(surface.SwizzleMode)
	if err != nil {
		return err
	}
	resource, err := lookup(resourceNames, "resource", surface.Resource)
	if err != nil {
		return err
	}
	flags, err := parseFlags[addrlib.SurfaceFlags]("surface", "Surface", surface.Flags)
	if err != nil {
		return err
	}

	in := addrlib.NewSurfaceInfoV2Input()
	in.SwizzleMode = mode
	in.ResourceType = resource
	in.Bpp = surface.Bpp
	in.Width = surface.Width
	in.Height = max(surface.Height, 1)
	in.NumSlices = max(surface.Slices, 1)
	in.NumMipLevels = max(surface.MipLevels, 1)
	in.NumSamples = max(surface.Samples, 1)
	in.Flags = flags

	out := addrlib.NewSurfaceInfoV2Output()
	if err := r.lib.ComputeSurfaceInfoV2(&in, &out); err != nil {
		return err
	}
	json.Name("SwizzleMode").String(mode.String())
	out.PrintParameters(json)
	return nil
}

func (r *runner) computeLayout(cfg *layoutConfig) (*fdl.Layout, error) {
	gen, err := lookup(generationNames, "generation", cfg.Generation)
	if err != nil {
		return nil, err
	}
	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	flags, err := parseFlags[fdl.LayoutFlags]("layout", "", cfg.Flags)
	if err != nil {
		return nil, err
	}

	params := fdl.LayoutParams{
		Format:    format,
		Samples:   max(cfg.Samples, 1),
		Width:     cfg.Width,
		Height:    max(cfg.Height, 1),
		Depth:     max(cfg.Depth, 1),
		MipLevels: max(cfg.MipLevels, 1),
		ArraySize: max(cfg.ArraySize, 1),
		TileMode:  fdl.TileMode(cfg.TileMode),
		Flags:     flags,
	}
	if cfg.Pitch != 0 {
		params.Explicit = &fdl.ExplicitLayout{Offset: cfg.Offset, Pitch: cfg.Pitch}
	}

	layout := &fdl.Layout{}
	switch gen {
	case fdl.GenerationA5xx:
		err = layout.Layout5(params)
	default:
		err = layout.Layout6(params)
	}
	if err != nil {
		return nil, err
	}
	return layout, nil
}
