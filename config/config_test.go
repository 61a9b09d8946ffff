package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gobuffalo/envy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
asset_root = "assets"
anisotropy = 8.0
extensions = ["OES_texture_float"]

[window]
title = "blur"
width = 320
height = 200

[textures]
stone = "stone.png"

[targets.scene]
color = true
depth = true
float = true

[pipelines.blur]
vertex = "blur.vert"
fragment = "blur.frag"
read_from = ["scene"]
textures = { noiseMap = "stone" }
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "libxor.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "assets", c.AssetRoot)
	assert.Equal(t, float32(8), c.Anisotropy)
	assert.Equal(t, []string{"OES_texture_float"}, c.Extensions)
	assert.Equal(t, Window{Title: "blur", Width: 320, Height: 200}, c.Window)
	assert.Equal(t, "stone.png", c.Textures["stone"])
	assert.Equal(t, Target{Color: true, Depth: true, Float: true}, c.Targets["scene"])

	p := c.Pipelines["blur"]
	assert.Equal(t, "blur.frag", p.Fragment)
	assert.Equal(t, []string{"scene"}, p.ReadFrom)
	assert.Equal(t, "stone", p.Textures["noiseMap"])

	// defaults survive where the file is silent
	assert.Equal(t, 8, c.ReadUnitOffset)
	assert.Equal(t, 8, c.MaxConcurrentLoads)
}

func TestLoadMissing(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Window, c.Window)
}

func TestLoadUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("asset_rot = 'x'\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnv(t *testing.T) {
	envy.Temp(func() {
		envy.Set("LIBXOR_ASSET_ROOT", "/srv/assets")
		envy.Set("LIBXOR_ANISOTROPY", "2")
		envy.Set("LIBXOR_WATCH_SHADERS", "true")
		envy.Set("LIBXOR_LOG_LEVEL", "debug")

		c := Default()
		require.NoError(t, c.Env())
		assert.Equal(t, "/srv/assets", c.AssetRoot)
		assert.Equal(t, float32(2), c.Anisotropy)
		assert.True(t, c.WatchShaders)
		assert.Equal(t, "debug", c.LogLevel)
	})

	envy.Temp(func() {
		envy.Set("LIBXOR_ANISOTROPY", "lots")
		assert.Error(t, Default().Env())
	})
}

func TestEncode(t *testing.T) {
	data, err := Default().Encode()
	require.NoError(t, err)

	c := &Config{}
	require.NoError(t, c.Decode(data))
	assert.Equal(t, Default().Window, c.Window)
}

func TestPassOrder(t *testing.T) {
	c := Default()
	c.Pipelines = map[string]Pipeline{"post": {}, "geometry": {}, "blur": {}}
	assert.Equal(t, []string{"blur", "geometry", "post"}, c.PassOrder())

	c.Passes = []string{"geometry", "blur", "post"}
	assert.Equal(t, []string{"geometry", "blur", "post"}, c.PassOrder())
}
