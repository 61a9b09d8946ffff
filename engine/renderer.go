package engine

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/microwerx/libxor/gl"
)

// Renderer draws a fixed list of full-screen passes once per frame. Each
// pass is a pipeline name; its vertex shader is expected to derive the
// triangle from gl_VertexID, no vertex buffers are bound.
type Renderer struct {
	ctx    *Context
	passes []string
	vao    gl.VertexArray

	frames int
}

func NewRenderer(c *Context, passes ...string) *Renderer {
	return &Renderer{
		ctx:    c,
		passes: passes,
		vao:    c.gl.CreateVertexArray(),
	}
}

func (r *Renderer) AddPass(name string) {
	r.passes = append(r.passes, name)
}

func (r *Renderer) Passes() []string { return r.passes }

// Frames counts calls to Render.
func (r *Renderer) Frames() int { return r.frames }

// Render applies finished loads, follows the surface size and draws every
// usable pass. Passes that are still loading or failed are skipped. It
// reports how many passes were drawn.
func (r *Renderer) Render(elapsed time.Duration) int {
	c, f := r.ctx, r.ctx.gl
	r.frames++

	c.Update()
	c.Targets.Autoresize()

	w, h := c.Width(), c.Height()
	f.Viewport(0, 0, w, h)

	// globals every pass may declare
	t := float32(elapsed.Seconds())
	resolution := mgl32.Vec2{float32(w), float32(h)}

	var drawn int
	f.BindVertexArray(r.vao)
	for _, name := range r.passes {
		p := c.Begin(name, c.ReadUnitOffset())
		if p == nil {
			continue
		}
		p.SetFloat("time", t)
		p.SetVec2("resolution", resolution)
		p.SetInt("frame", r.frames)

		f.DrawArrays(gl.TRIANGLES, 0, 3)
		c.End()
		drawn++
	}
	f.BindVertexArray(gl.NoVertexArray)
	return drawn
}

func (r *Renderer) Close() {
	r.ctx.gl.DeleteVertexArray(r.vao)
}
