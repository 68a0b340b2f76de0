// Package config handles converter configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/bsp2svg/internal/mapsvg"
	"github.com/Faultbox/bsp2svg/pkg/formats"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Preview formats accepted by output.preview.
const (
	PreviewNone = ""
	PreviewPNG  = "png"
	PreviewWebP = "webp"
)

// Config holds all converter settings.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Render  RenderConfig  `yaml:"render"`
	Preview PreviewConfig `yaml:"preview"`
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig holds game data locations.
type InputConfig struct {
	PAKPaths []string `yaml:"pak_paths"` // searched in order, later archives win
	Palette  string   `yaml:"palette"`   // palette.lmp on disk
}

// OutputConfig holds where and what to write.
type OutputConfig struct {
	Dir     string `yaml:"dir"`
	Preview string `yaml:"preview"` // "", "png" or "webp"
}

// RenderConfig holds projection and styling settings.
type RenderConfig struct {
	Axis           string  `yaml:"axis"`
	Padding        float32 `yaml:"padding"`
	TextureScale   string  `yaml:"texture_scale"`
	Workers        int     `yaml:"workers"`
	Background     string  `yaml:"background"`
	BorderStroke   string  `yaml:"border_stroke"`
	BorderWidth    float32 `yaml:"border_width"`
	InteriorFill   string  `yaml:"interior_fill"`
	InteriorStroke string  `yaml:"interior_stroke"`
	InteriorWidth  float32 `yaml:"interior_width"`
}

// PreviewConfig holds raster preview settings.
type PreviewConfig struct {
	MaxSize     int `yaml:"max_size"`    // longest edge in pixels
	Supersample int `yaml:"supersample"` // render scale before downsampling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	style := mapsvg.DefaultStyle()
	return &Config{
		Output: OutputConfig{
			Dir: "target",
		},
		Render: RenderConfig{
			Axis:           mapsvg.AxisZ.String(),
			Padding:        style.Padding,
			TextureScale:   formats.ScaleEighth.String(),
			Workers:        1,
			Background:     style.Background,
			BorderStroke:   style.BorderStroke,
			BorderWidth:    style.BorderWidth,
			InteriorFill:   style.InteriorFill,
			InteriorStroke: style.InteriorStroke,
			InteriorWidth:  style.InteriorWidth,
		},
		Preview: PreviewConfig{
			MaxSize:     2048,
			Supersample: 2,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate rejects settings the converter cannot run with.
func (c *Config) Validate() error {
	if _, err := mapsvg.ParseAxis(c.Render.Axis); err != nil {
		return fmt.Errorf("%w: render.axis: %w", ErrInvalidConfig, err)
	}
	if _, err := formats.ParseTextureScale(c.Render.TextureScale); err != nil {
		return fmt.Errorf("%w: render.texture_scale: %w", ErrInvalidConfig, err)
	}
	if c.Render.Padding < 0 {
		return fmt.Errorf("%w: render.padding must not be negative", ErrInvalidConfig)
	}
	if c.Render.Workers < 1 {
		return fmt.Errorf("%w: render.workers must be at least 1", ErrInvalidConfig)
	}
	if c.Render.BorderWidth < 0 || c.Render.InteriorWidth < 0 {
		return fmt.Errorf("%w: stroke widths must not be negative", ErrInvalidConfig)
	}

	switch c.Output.Preview {
	case PreviewNone, PreviewPNG, PreviewWebP:
	default:
		return fmt.Errorf("%w: output.preview %q (want png or webp)", ErrInvalidConfig, c.Output.Preview)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("%w: output.dir is empty", ErrInvalidConfig)
	}

	if c.Preview.MaxSize <= 0 {
		return fmt.Errorf("%w: preview.max_size must be positive", ErrInvalidConfig)
	}
	if c.Preview.Supersample <= 0 {
		return fmt.Errorf("%w: preview.supersample must be positive", ErrInvalidConfig)
	}

	return nil
}

// Style returns the document style described by the render section.
func (r RenderConfig) Style() mapsvg.Style {
	return mapsvg.Style{
		Padding:        r.Padding,
		Background:     r.Background,
		BorderStroke:   r.BorderStroke,
		BorderWidth:    r.BorderWidth,
		InteriorFill:   r.InteriorFill,
		InteriorStroke: r.InteriorStroke,
		InteriorWidth:  r.InteriorWidth,
	}
}
