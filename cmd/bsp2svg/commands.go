package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/bsp2svg/internal/assets"
	"github.com/Faultbox/bsp2svg/internal/config"
	"github.com/Faultbox/bsp2svg/internal/logger"
	"github.com/Faultbox/bsp2svg/internal/mapsvg"
	"github.com/Faultbox/bsp2svg/internal/preview"
	"github.com/Faultbox/bsp2svg/internal/texdump"
	"github.com/Faultbox/bsp2svg/pkg/formats"
	"github.com/Faultbox/bsp2svg/pkg/math"
)

// session is the state shared by every command: config, logging and assets.
type session struct {
	cfg    *config.Config
	assets *assets.Manager
}

// newFlagSet creates a flag set with the config flags registered.
func newFlagSet(name string, flags *config.Flags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags.Register(fs)
	return fs
}

// open loads the config, initializes logging and opens the PAK archives.
func open(flags *config.Flags) (*session, error) {
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	mgr := assets.NewManager(logger.Named("assets"))
	for _, path := range cfg.Input.PAKPaths {
		if err := mgr.AddArchive(path); err != nil {
			mgr.Close()
			return nil, err
		}
	}

	return &session{cfg: cfg, assets: mgr}, nil
}

func (s *session) Close() {
	if err := s.assets.Close(); err != nil {
		logger.Warn("closing archives", zap.Error(err))
	}
	logger.Sync()
}

// loadLevel resolves a map reference and its palette.
func (s *session) loadLevel(ref string) (*formats.BSP, *formats.Palette, error) {
	bsp, err := s.assets.LoadMap(ref)
	if err != nil {
		return nil, nil, err
	}
	pal, err := s.assets.Palette(s.cfg.Input.Palette)
	if err != nil {
		return nil, nil, fmt.Errorf("loading palette: %w", err)
	}
	return bsp, pal, nil
}

// converter builds a converter from the validated render settings.
func (s *session) converter() *mapsvg.Converter {
	axis, _ := mapsvg.ParseAxis(s.cfg.Render.Axis)
	scale, _ := formats.ParseTextureScale(s.cfg.Render.TextureScale)

	c := mapsvg.NewConverter(logger.Named("mapsvg"))
	c.Axis = axis
	c.Scale = scale
	c.Workers = s.cfg.Render.Workers
	c.Style = s.cfg.Render.Style()
	return c
}

func cmdConvert(args []string) error {
	var flags config.Flags
	fs := newFlagSet("convert", &flags)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bsp2svg convert [options] <map> [label]")
		os.Exit(1)
	}
	ref := fs.Arg(0)
	label := assets.Label(ref)
	if fs.NArg() > 1 {
		label = fs.Arg(1)
	}

	s, err := open(&flags)
	if err != nil {
		return err
	}
	defer s.Close()

	start := time.Now()
	bsp, pal, err := s.loadLevel(ref)
	if err != nil {
		return err
	}

	doc, err := s.converter().Convert(mapsvg.FromBSP(bsp), mapsvg.BSPRasters{BSP: bsp, Palette: pal})
	if err != nil {
		return fmt.Errorf("converting %s: %w", ref, err)
	}

	path := mapsvg.OutputPath(s.cfg.Output.Dir, label)
	if err := doc.Save(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	logger.Info("wrote map", zap.String("path", path), zap.Duration("elapsed", time.Since(start)))

	if format := s.cfg.Output.Preview; format != config.PreviewNone {
		img, err := preview.Render(doc, preview.Options{
			MaxSize:     s.cfg.Preview.MaxSize,
			Supersample: s.cfg.Preview.Supersample,
		})
		if err != nil {
			return fmt.Errorf("rendering preview: %w", err)
		}
		previewPath := preview.OutputPath(s.cfg.Output.Dir, label, format)
		if err := preview.Save(previewPath, img, format); err != nil {
			return fmt.Errorf("writing %s: %w", previewPath, err)
		}
		logger.Info("wrote preview", zap.String("path", previewPath),
			zap.Int("width", img.Bounds().Dx()), zap.Int("height", img.Bounds().Dy()))
	}

	fmt.Println(path)
	return nil
}

func cmdInfo(args []string) error {
	var flags config.Flags
	fs := newFlagSet("info", &flags)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bsp2svg info [options] <map>")
		os.Exit(1)
	}

	s, err := open(&flags)
	if err != nil {
		return err
	}
	defer s.Close()

	bsp, err := s.assets.LoadMap(fs.Arg(0))
	if err != nil {
		return err
	}
	level := mapsvg.FromBSP(bsp)

	embedded := 0
	for i := range bsp.Textures {
		if bsp.Textures[i].Embedded() {
			embedded++
		}
	}
	drawn := len(mapsvg.FilterFaces(level))

	fmt.Printf("Map:      %s\n", fs.Arg(0))
	fmt.Printf("Version:  %d\n", bsp.Version)
	fmt.Printf("Vertices: %d\n", len(level.Vertices))
	fmt.Printf("Faces:    %d (%d ignored)\n", len(level.Faces), len(level.Faces)-drawn)
	fmt.Printf("Textures: %d (%d embedded)\n", len(level.Textures), embedded)
	fmt.Println()
	fmt.Println("Projected bounds:")
	for _, axis := range []mapsvg.Axis{mapsvg.AxisX, mapsvg.AxisY, mapsvg.AxisZ} {
		b := math.BoundsOf(mapsvg.Project(level.Vertices, axis))
		if b.Empty() {
			fmt.Printf("  %s  (empty)\n", axis)
			continue
		}
		size := b.Size()
		fmt.Printf("  %s  min (%g, %g)  max (%g, %g)  size %g x %g\n",
			axis, b.Min.X, b.Min.Y, b.Max.X, b.Max.Y, size.X, size.Y)
	}
	return nil
}

func cmdColors(args []string) error {
	var flags config.Flags
	fs := newFlagSet("colors", &flags)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bsp2svg colors [options] <map>")
		os.Exit(1)
	}

	s, err := open(&flags)
	if err != nil {
		return err
	}
	defer s.Close()

	bsp, pal, err := s.loadLevel(fs.Arg(0))
	if err != nil {
		return err
	}

	c := s.converter()
	colors, err := mapsvg.SampleColors(mapsvg.FromBSP(bsp).Textures, mapsvg.BSPRasters{BSP: bsp, Palette: pal}, c.Scale, c.Workers)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(colors))
	for name := range colors {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ignored := ""
		if mapsvg.IsIgnoredTexture(name) {
			ignored = " (ignored)"
		}
		fmt.Printf("%-16s %s%s\n", name, colors[name].Hex(), ignored)
	}
	return nil
}

func cmdTextures(args []string) error {
	var flags config.Flags
	fs := newFlagSet("textures", &flags)
	scaleName := fs.String("scale", formats.ScaleFull.String(), "Mip level: full, half, quarter, eighth")
	format := fs.String("format", texdump.FormatPNG, "Output format: png, tga")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: bsp2svg textures [options] <map> <dir>")
		os.Exit(1)
	}

	scale, err := formats.ParseTextureScale(*scaleName)
	if err != nil {
		return err
	}

	s, err := open(&flags)
	if err != nil {
		return err
	}
	defer s.Close()

	bsp, pal, err := s.loadLevel(fs.Arg(0))
	if err != nil {
		return err
	}

	paths, err := texdump.Dump(bsp, fs.Arg(1), texdump.Options{
		Scale:   scale,
		Format:  *format,
		Palette: pal,
		Log:     logger.Named("texdump"),
	})
	for _, p := range paths {
		fmt.Println(p)
	}
	return err
}

func cmdMaps(args []string) error {
	var flags config.Flags
	fs := newFlagSet("maps", &flags)
	fs.Parse(args)

	s, err := open(&flags)
	if err != nil {
		return err
	}
	defer s.Close()

	if len(s.cfg.Input.PAKPaths) == 0 {
		return errors.New("no PAK archives configured (use -pak or input.pak_paths)")
	}

	for _, name := range s.assets.List(".bsp") {
		size, _ := s.assets.Size(name)
		fmt.Printf("%-24s %8d\n", name, size)
	}
	return nil
}
