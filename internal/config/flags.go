package config

import (
	"flag"
	"strings"
)

// Flags holds command-line overrides. Zero values leave the config untouched.
type Flags struct {
	Config  string
	Debug   bool
	Axis    string
	Out     string
	Padding float64 // negative = unset
	Workers int
	Palette string
	Paks    stringList
	Preview string
}

// Register adds the config flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Axis, "axis", "", "Projection axis (x, y, z)")
	fs.StringVar(&f.Out, "out", "", "Output directory")
	fs.Float64Var(&f.Padding, "padding", -1, "Padding around the map in level units")
	fs.IntVar(&f.Workers, "workers", 0, "Concurrent texture samplers")
	fs.StringVar(&f.Palette, "palette", "", "Path to palette.lmp")
	fs.Var(&f.Paks, "pak", "PAK archive to search (repeatable)")
	fs.StringVar(&f.Preview, "preview", "", "Also render a raster preview (png, webp)")
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Axis != "" {
		cfg.Render.Axis = f.Axis
	}
	if f.Out != "" {
		cfg.Output.Dir = f.Out
	}
	if f.Padding >= 0 {
		cfg.Render.Padding = float32(f.Padding)
	}
	if f.Workers > 0 {
		cfg.Render.Workers = f.Workers
	}
	if f.Palette != "" {
		cfg.Input.Palette = f.Palette
	}
	if len(f.Paks) > 0 {
		cfg.Input.PAKPaths = append([]string(nil), f.Paks...)
	}
	if f.Preview != "" {
		cfg.Output.Preview = strings.ToLower(f.Preview)
	}
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
