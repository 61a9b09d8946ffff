package engine

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microwerx/libxor/gl/headless"
)

func TestProgress(t *testing.T) {
	fx := newFixture(t, headless.DefaultConfig())
	c := fx.ctx
	fx.fetch.put("wall.png", encodePNG(t, filled(2, 2, color.RGBA{A: 255})))

	p := NewProgress(c)
	defer p.Close()
	assert.Equal(t, 100.0, p.Percent())
	assert.Equal(t, 0, p.Poll())

	c.Textures.Load("wall", "wall.png")
	c.Textures.Load("gone", "gone.png")
	c.Pipelines.Load("P", "basic.vert", "basic.frag")
	rt := c.Targets.Add("A", true, false, 8, 8, EncodingUint8)
	rt.AutoResize = true
	assert.Equal(t, 0.0, p.Percent())

	fx.flush(t)
	c.Targets.Autoresize()
	assert.Equal(t, 100.0, p.Percent())

	// delivery is asynchronous
	var seen int
	deadline := time.Now().Add(5 * time.Second)
	for seen < 4 && time.Now().Before(deadline) {
		seen += p.Poll()
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, 4, seen)
	assert.Equal(t, 2, p.Loaded())
	assert.Equal(t, 1, p.Resized())
	assert.Equal(t, []string{"texture gone"}, p.Failed())
}

func TestProgressClose(t *testing.T) {
	fx := newFixture(t, headless.DefaultConfig())
	p := NewProgress(fx.ctx)
	p.Close()

	require.NoError(t, fx.ctx.Textures.CreateFromImageData("g", make([]byte, 4), 1, 1))
	fx.flush(t)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, p.Poll())
}
