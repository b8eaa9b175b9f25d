// Package config loads the brushwork settings file. Every setting has a
// default, so a missing file or key falls back to Default.
//
//	map_format    = "valve"
//	log_level     = "debug"
//	eval_timeout  = "2s"
//	preview_cells = 96
//
//	[world]
//	min = [-8192, -8192, -8192]
//	max = [8192, 8192, 8192]
//
//	[defaults]
//	material = "base/concrete"
//	scale    = [0.5, 0.5]
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/builder"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pelletier/go-toml/v2"
)

// Config holds every setting.
type Config struct {
	MapFormat    string `toml:"map_format"`
	LogLevel     string `toml:"log_level"`
	EvalTimeout  string `toml:"eval_timeout"`
	PreviewCells int    `toml:"preview_cells"`
	World        World  `toml:"world"`
	Defaults     Face   `toml:"defaults"`
}

// World is the box every brush must fit in.
type World struct {
	Min [3]float64 `toml:"min"`
	Max [3]float64 `toml:"max"`
}

// Face holds the attributes new faces start from.
type Face struct {
	Material string     `toml:"material"`
	Offset   [2]float64 `toml:"offset"`
	Scale    [2]float64 `toml:"scale"`
	Rotation float64    `toml:"rotation"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		MapFormat:    brush.FormatStandard.String(),
		LogLevel:     "info",
		EvalTimeout:  "5s",
		PreviewCells: 64,
		World: World{
			Min: [3]float64{-4096, -4096, -4096},
			Max: [3]float64{4096, 4096, 4096},
		},
		Defaults: Face{Scale: [2]float64{1, 1}},
	}
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes TOML over the defaults and validates the result. Unknown
// keys are an error.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return nil, fmt.Errorf("line %d, column %d: %w", row, col, err)
		}
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Marshal encodes c as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if _, err := brush.ParseFormat(c.MapFormat); err != nil {
		errs = append(errs, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if d, err := time.ParseDuration(c.EvalTimeout); err != nil {
		errs = append(errs, fmt.Errorf("eval_timeout: %w", err))
	} else if d <= 0 {
		errs = append(errs, fmt.Errorf("eval_timeout %s is not positive", d))
	}
	if c.PreviewCells < 8 {
		errs = append(errs, fmt.Errorf("preview_cells %d is below 8", c.PreviewCells))
	}
	for i := range 3 {
		if c.World.Min[i] >= c.World.Max[i] {
			errs = append(errs, fmt.Errorf("world bounds are inverted on axis %d", i))
		}
	}
	if c.Defaults.Scale[0] == 0 || c.Defaults.Scale[1] == 0 {
		errs = append(errs, fmt.Errorf("defaults.scale %v has a zero component", c.Defaults.Scale))
	}
	return errors.Join(errs...)
}

// Format returns the map format. It falls back to the standard format for
// an invalid name, which Validate reports.
func (c *Config) Format() brush.MapFormat {
	f, err := brush.ParseFormat(c.MapFormat)
	if err != nil {
		return brush.FormatStandard
	}
	return f
}

// WorldBounds returns the world box.
func (c *Config) WorldBounds() sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: c.World.Min[0], Y: c.World.Min[1], Z: c.World.Min[2]},
		Max: v3.Vec{X: c.World.Max[0], Y: c.World.Max[1], Z: c.World.Max[2]},
	}
}

// Attributes returns the default face attributes.
func (c *Config) Attributes() brush.Attributes {
	a := brush.DefaultAttributes(c.Defaults.Material)
	a.Offset = v2.Vec{X: c.Defaults.Offset[0], Y: c.Defaults.Offset[1]}
	a.Scale = v2.Vec{X: c.Defaults.Scale[0], Y: c.Defaults.Scale[1]}
	a.Rotation = c.Defaults.Rotation
	return a
}

// Timeout returns the script evaluation timeout, or five seconds for an
// invalid value.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.EvalTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// Level returns the log level, or info for an invalid value.
func (c *Config) Level() log.Level {
	l, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// Builder returns a shape builder for the configured format, world and
// default attributes.
func (c *Config) Builder() *builder.Builder {
	return builder.New(c.Format(), c.WorldBounds(), builder.WithDefaultAttributes(c.Attributes()))
}
