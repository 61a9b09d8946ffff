package engine

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/microwerx/libxor/gl/headless"
)

const (
	vertexSrc   = "#version 300 es\nin vec3 position;\nvoid main(){ gl_Position = vec4(position, 1.0); }"
	fragmentSrc = `#version 300 es
precision highp float;
uniform sampler2D diffuseMap;
uniform sampler2D noiseMap;
uniform float opacity;
uniform vec3 tint;
uniform mat4 modelMatrix;
uniform sampler2D AColor;
uniform sampler2D ADepth;
uniform vec2 AResolution;
uniform int AEnabled;
uniform int BEnabled;
out vec4 color;
void main(){ color = vec4(tint, opacity); }`
)

// memFetcher serves files from memory and counts requests per url.
type memFetcher struct {
	lock  sync.Mutex
	files map[string][]byte
	hits  map[string]int
}

func newMemFetcher(files map[string][]byte) *memFetcher {
	if files == nil {
		files = map[string][]byte{}
	}
	return &memFetcher{files: files, hits: map[string]int{}}
}

func (m *memFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.hits[url]++
	data, found := m.files[url]
	if !found {
		return nil, errors.Errorf("fetch %q: 404 Not Found", url)
	}
	return data, nil
}

func (m *memFetcher) put(url string, data []byte) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.files[url] = data
}

func (m *memFetcher) count(url string) int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.hits[url]
}

func quietLogger() *log.Entry {
	l := log.New()
	l.Out = io.Discard
	return log.NewEntry(l)
}

type fixture struct {
	ctx     *Context
	gl      *headless.Functions
	surface *headless.Surface
	fetch   *memFetcher
}

func newFixture(t *testing.T, cfg headless.Config, opts ...Option) *fixture {
	t.Helper()

	fx := &fixture{
		gl:      headless.New(cfg),
		surface: &headless.Surface{W: 640, H: 480},
		fetch: newMemFetcher(map[string][]byte{
			"basic.vert": []byte(vertexSrc),
			"basic.frag": []byte(fragmentSrc),
		}),
	}
	opts = append([]Option{WithFetcher(fx.fetch), WithLogger(quietLogger())}, opts...)

	c, err := NewContext(fx.gl, fx.surface, opts...)
	require.NoError(t, err)
	fx.ctx = c
	t.Cleanup(c.Close)
	return fx
}

func (fx *fixture) flush(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, fx.ctx.Flush(ctx))
}

// usable compiles a pipeline from the basic sources.
func (fx *fixture) usable(t *testing.T, name string) *Pipeline {
	t.Helper()
	p := fx.ctx.Pipelines.Create(name)
	p.SetSources(vertexSrc, fragmentSrc)
	require.NoError(t, p.Compile())
	return p
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func filled(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func noFloat() headless.Config {
	cfg := headless.DefaultConfig()
	cfg.Extensions = []string{
		"EXT_texture_filter_anisotropic",
		"OES_element_index_uint",
		"OES_standard_derivatives",
		"WEBGL_depth_texture",
	}
	cfg.FloatRenderable = false
	return cfg
}
