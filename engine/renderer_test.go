package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microwerx/libxor/gl"
	"github.com/microwerx/libxor/gl/headless"
)

func TestRendererPasses(t *testing.T) {
	fx := newFixture(t, headless.DefaultConfig())
	c := fx.ctx
	scene := c.Targets.Add("A", true, true, 0, 0, EncodingUint8)
	scene.AutoResize = true

	geo := c.Pipelines.Load("geometry", "basic.vert", "basic.frag")
	geo.WriteTo = "A"
	post := c.Pipelines.Load("post", "basic.vert", "basic.frag")
	post.ReadFrom = []string{"A"}

	r := NewRenderer(c, "geometry")
	r.AddPass("post")
	r.AddPass("missing")
	defer r.Close()
	assert.Equal(t, []string{"geometry", "post", "missing"}, r.Passes())

	fx.flush(t)
	assert.Equal(t, 2, r.Render(time.Second))
	assert.Equal(t, 2, fx.gl.Draws())
	assert.Equal(t, 1, r.Frames())

	// autoresized on the first frame, screen state restored afterwards
	assert.Equal(t, 640, scene.Width)
	assert.Equal(t, gl.NoFramebuffer, fx.gl.Framebuffer())
	assert.Equal(t, [4]int{0, 0, 640, 480}, fx.gl.Viewport4())

	fx.surface.W, fx.surface.H = 320, 240
	require.Equal(t, 2, r.Render(2*time.Second))
	assert.Equal(t, 320, scene.Width)
	assert.Equal(t, [4]int{0, 0, 320, 240}, fx.gl.Viewport4())
	assert.Equal(t, gl.Enum(gl.NO_ERROR), fx.gl.GetError())
}
