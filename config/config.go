// Package config holds the runtime configuration of a rendering context:
// where assets come from, which extensions to request, and the textures,
// render targets and pipelines to register at startup.
//
// Values are read from a TOML file and then overridden by the environment
// (a .env file in the working directory is honored):
//
//	LIBXOR_ASSET_ROOT     asset_root
//	LIBXOR_LOG_LEVEL      log_level
//	LIBXOR_ANISOTROPY     anisotropy
//	LIBXOR_WATCH_SHADERS  watch_shaders
package config

import (
	"bytes"
	"os"
	"sort"
	"strconv"

	"github.com/gobuffalo/envy"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// Target describes a render target. Zero width or height follows the
// surface size and implies auto resize.
type Target struct {
	Color      bool `toml:"color"`
	Depth      bool `toml:"depth"`
	Width      int  `toml:"width"`
	Height     int  `toml:"height"`
	Float      bool `toml:"float"`
	AutoResize bool `toml:"auto_resize"`
}

type Pipeline struct {
	Vertex   string   `toml:"vertex"`
	Fragment string   `toml:"fragment"`
	WriteTo  string   `toml:"write_to"`
	ReadFrom []string `toml:"read_from"`

	DepthTest          bool       `toml:"depth_test"`
	Clear              bool       `toml:"clear"`
	ClearColor         [4]float32 `toml:"clear_color"`
	DisableColorWrites bool       `toml:"disable_color_writes"`

	// sampler uniform -> texture name
	Textures map[string]string `toml:"textures"`
}

type Config struct {
	AssetRoot          string   `toml:"asset_root"`
	Extensions         []string `toml:"extensions"`
	Anisotropy         float32  `toml:"anisotropy"`
	MaxConcurrentLoads int      `toml:"max_concurrent_loads"`
	ReadUnitOffset     int      `toml:"read_unit_offset"`
	LogLevel           string   `toml:"log_level"`
	WatchShaders       bool     `toml:"watch_shaders"`

	Window Window `toml:"window"`

	Textures  map[string]string   `toml:"textures"`
	Targets   map[string]Target   `toml:"targets"`
	Pipelines map[string]Pipeline `toml:"pipelines"`

	// pipelines drawn each frame, in order
	Passes []string `toml:"passes"`
}

func Default() *Config {
	return &Config{
		AssetRoot:          ".",
		Anisotropy:         4,
		MaxConcurrentLoads: 8,
		ReadUnitOffset:     8,
		LogLevel:           "info",
		Window: Window{
			Title:  "libxor",
			Width:  1280,
			Height: 720,
		},
		Textures:  map[string]string{},
		Targets:   map[string]Target{},
		Pipelines: map[string]Pipeline{},
	}
}

// PassOrder returns Passes, or every pipeline by name when none are listed.
func (c *Config) PassOrder() []string {
	if len(c.Passes) > 0 {
		return c.Passes
	}
	names := make([]string, 0, len(c.Pipelines))
	for name := range c.Pipelines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, errors.Wrapf(err, "config %q", path)
		default:
			if err := c.Decode(data); err != nil {
				return nil, errors.Wrapf(err, "config %q", path)
			}
		}
	}
	if err := c.Env(); err != nil {
		return nil, err
	}
	return c, nil
}

// Decode merges TOML data into c.
func (c *Config) Decode(data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(c)
}

// Env applies the LIBXOR_* environment variables.
func (c *Config) Env() error {
	c.AssetRoot = envy.Get("LIBXOR_ASSET_ROOT", c.AssetRoot)
	c.LogLevel = envy.Get("LIBXOR_LOG_LEVEL", c.LogLevel)

	if v := envy.Get("LIBXOR_ANISOTROPY", ""); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return errors.Wrap(err, "LIBXOR_ANISOTROPY")
		}
		c.Anisotropy = float32(f)
	}
	if v := envy.Get("LIBXOR_WATCH_SHADERS", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, "LIBXOR_WATCH_SHADERS")
		}
		c.WatchShaders = b
	}
	return nil
}

// Encode renders c as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
