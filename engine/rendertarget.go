package engine

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/willf/bitset"

	"github.com/microwerx/libxor/gl"
)

type Encoding int

const (
	EncodingUint8 Encoding = iota
	EncodingFloat
)

func (e Encoding) String() string {
	if e == EncodingFloat {
		return "float"
	}
	return "uint8"
}

// RenderTarget is an offscreen framebuffer with optional color and depth
// textures that later passes can sample.
type RenderTarget struct {
	Name          string
	Width, Height int
	HasColor      bool
	HasDepth      bool
	Encoding      Encoding // in effect, after any fallback
	Requested     Encoding
	AutoResize    bool

	complete    bool
	framebuffer gl.Framebuffer
	color       gl.Texture
	depth       gl.Texture

	colorUnit, depthUnit int

	// state replaced while the target is current
	savedFramebuffer gl.Framebuffer
	savedViewport    [4]int
	maskedColor      bool
}

// Complete reports whether the gpu accepted the attachments.
func (t *RenderTarget) Complete() bool { return t.complete }

func (t *RenderTarget) Color() gl.Texture { return t.color }
func (t *RenderTarget) Depth() gl.Texture { return t.depth }

func (t *RenderTarget) Framebuffer() gl.Framebuffer { return t.framebuffer }

// ColorUnit and DepthUnit return the texture unit the attachment is bound
// to for reading, -1 when unbound.
func (t *RenderTarget) ColorUnit() int { return t.colorUnit }
func (t *RenderTarget) DepthUnit() int { return t.depthUnit }

type TargetSystem struct {
	ctx *Context
	log *log.Entry

	targets map[string]*RenderTarget
	current *RenderTarget
}

func newTargetSystem(c *Context) *TargetSystem {
	return &TargetSystem{
		ctx:     c,
		log:     c.log.WithField("system", "target"),
		targets: map[string]*RenderTarget{},
	}
}

// Add builds a render target, replacing any target of the same name. Float
// color falls back to 8-bit when the device cannot render to it; check
// Complete on the result.
func (s *TargetSystem) Add(name string, hasColor, hasDepth bool, width, height int, enc Encoding) *RenderTarget {
	if old, found := s.targets[name]; found {
		s.destroy(old)
	}

	t := &RenderTarget{
		Name:      name,
		Width:     max(width, 1),
		Height:    max(height, 1),
		HasColor:  hasColor,
		HasDepth:  hasDepth,
		Requested: enc,
		colorUnit: -1,
		depthUnit: -1,
	}
	s.construct(t)
	s.targets[name] = t
	return t
}

// construct builds t at its requested encoding, downgrading float once.
func (s *TargetSystem) construct(t *RenderTarget) {
	l := s.log.WithField("target", t.Name)

	t.Encoding = t.Requested
	if t.HasColor && t.Encoding == EncodingFloat && !s.ctx.caps.FloatRenderable {
		l.Warn("float color not renderable, using 8-bit")
		t.Encoding = EncodingUint8
	}

	status := s.build(t)
	if !t.complete && t.HasColor && t.Encoding == EncodingFloat {
		l.WithField("status", statusString(status)).Warn("float target incomplete, retrying 8-bit")
		t.Encoding = EncodingUint8
		status = s.build(t)
	}
	if !t.complete {
		l.WithField("status", statusString(status)).Error("render target incomplete")
		return
	}
	l.WithFields(log.Fields{
		"width":    t.Width,
		"height":   t.Height,
		"encoding": t.Encoding,
	}).Debug("render target built")
}

// build (re)creates the gpu objects of t and checks completeness. The
// framebuffer and texture bindings are restored afterwards.
func (s *TargetSystem) build(t *RenderTarget) gl.Enum {
	f := s.ctx.gl
	s.release(t)

	prevFB := gl.Framebuffer(f.GetBinding(gl.FRAMEBUFFER_BINDING))
	prevTex := gl.Texture(f.GetBinding(gl.TEXTURE_BINDING_2D))

	t.framebuffer = f.CreateFramebuffer()
	f.BindFramebuffer(gl.FRAMEBUFFER, t.framebuffer)

	if t.HasColor {
		ty, filter := gl.Enum(gl.UNSIGNED_BYTE), gl.LINEAR
		if t.Encoding == EncodingFloat {
			ty = gl.FLOAT
			if !s.ctx.caps.FloatLinear {
				filter = gl.NEAREST
			}
		}
		t.color = f.CreateTexture()
		f.BindTexture(gl.TEXTURE_2D, t.color)
		setSampling(f, filter)
		f.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, t.Width, t.Height, gl.RGBA, ty, nil)
		f.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.color, 0)
	}

	if t.HasDepth {
		ty := gl.Enum(gl.UNSIGNED_SHORT)
		if s.ctx.caps.DepthTextures {
			ty = gl.UNSIGNED_INT
		}
		t.depth = f.CreateTexture()
		f.BindTexture(gl.TEXTURE_2D, t.depth)
		setSampling(f, gl.NEAREST)
		f.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT, t.Width, t.Height, gl.DEPTH_COMPONENT, ty, nil)
		f.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, t.depth, 0)
	}
	if !t.HasColor {
		// depth only, nothing to draw or read color from
		f.DrawBuffers([]gl.Enum{gl.NONE})
		f.ReadBuffer(gl.NONE)
	}

	status := f.CheckFramebufferStatus(gl.FRAMEBUFFER)
	t.complete = status == gl.FRAMEBUFFER_COMPLETE

	f.BindTexture(gl.TEXTURE_2D, prevTex)
	f.BindFramebuffer(gl.FRAMEBUFFER, prevFB)
	return status
}

func setSampling(f gl.Functions, filter int) {
	f.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	f.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
	f.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	f.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
}

func statusString(status gl.Enum) string {
	switch status {
	case gl.FRAMEBUFFER_COMPLETE:
		return "complete"
	case gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT:
		return "incomplete attachment"
	case gl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT:
		return "missing attachment"
	case gl.FRAMEBUFFER_INCOMPLETE_DIMENSIONS:
		return "incomplete dimensions"
	case gl.FRAMEBUFFER_INCOMPLETE_DRAW_BUFFER:
		return "incomplete draw buffer"
	case gl.FRAMEBUFFER_INCOMPLETE_READ_BUFFER:
		return "incomplete read buffer"
	case gl.FRAMEBUFFER_UNSUPPORTED:
		return "unsupported"
	}
	return "unknown"
}

// release deletes the gpu objects of t, keeping its description.
func (s *TargetSystem) release(t *RenderTarget) {
	f := s.ctx.gl
	s.unbindUnits(t)
	if t.framebuffer.Valid() {
		f.DeleteFramebuffer(t.framebuffer)
	}
	if t.color.Valid() {
		f.DeleteTexture(t.color)
	}
	if t.depth.Valid() {
		f.DeleteTexture(t.depth)
	}
	t.framebuffer, t.color, t.depth = gl.NoFramebuffer, gl.NoTexture, gl.NoTexture
	t.complete = false
}

func (s *TargetSystem) destroy(t *RenderTarget) {
	if s.current == t {
		s.Restore()
	}
	s.release(t)
	delete(s.targets, t.Name)
}

func (s *TargetSystem) Get(name string) *RenderTarget {
	return s.targets[name]
}

// Current is the target being written to, nil for the screen.
func (s *TargetSystem) Current() *RenderTarget {
	return s.current
}

// Configure prepares the render targets of p. A pipeline that writes to a
// target gets it bound as destination and nothing bound for reading; a
// missing or incomplete destination changes nothing and returns
// ErrTargetIncomplete;
// otherwise every target p reads from is bound for sampling, color on
// startUnit+2i and depth on startUnit+2i+1.
func (s *TargetSystem) Configure(p *Pipeline, startUnit int) error {
	if p == nil {
		return nil
	}
	if p.WriteTo != "" {
		return s.configureWrite(p)
	}
	if len(p.ReadFrom) == 0 {
		return nil
	}
	if err := s.checkUnits(p, startUnit); err != nil {
		return err
	}

	f := s.ctx.gl
	for i, name := range p.ReadFrom {
		t := s.targets[name]
		if t == nil || !t.complete {
			p.SetInt(name+"Enabled", 0)
			continue
		}

		if t.HasColor {
			t.colorUnit = startUnit + 2*i
			f.ActiveTexture(gl.TEXTURE0 + gl.Enum(t.colorUnit))
			f.BindTexture(gl.TEXTURE_2D, t.color)
			p.SetSampler(name+"Color", t.colorUnit)
		}
		if t.HasDepth {
			t.depthUnit = startUnit + 2*i + 1
			f.ActiveTexture(gl.TEXTURE0 + gl.Enum(t.depthUnit))
			f.BindTexture(gl.TEXTURE_2D, t.depth)
			p.SetSampler(name+"Depth", t.depthUnit)
		}
		p.SetVec2(name+"Resolution", mgl32.Vec2{float32(t.Width), float32(t.Height)})
		p.SetInt(name+"Enabled", 1)
	}
	f.ActiveTexture(gl.TEXTURE0)
	return nil
}

// Writable reports whether name is a complete target that can be drawn to.
func (s *TargetSystem) Writable(name string) bool {
	t := s.targets[name]
	return t != nil && t.complete
}

func (s *TargetSystem) configureWrite(p *Pipeline) error {
	l := s.log.WithFields(log.Fields{"pipeline": p.Name, "target": p.WriteTo})

	if !s.Writable(p.WriteTo) {
		l.Debug("write target missing or incomplete, skipped")
		return errors.Wrapf(ErrTargetIncomplete, "%s: target %q", p.Name, p.WriteTo)
	}
	t := s.targets[p.WriteTo]
	if s.current != nil {
		l.WithField("current", s.current.Name).Warn("write target still current, restoring")
		s.Restore()
	}

	f := s.ctx.gl
	t.savedFramebuffer = gl.Framebuffer(f.GetBinding(gl.FRAMEBUFFER_BINDING))
	t.savedViewport = f.GetInteger4(gl.VIEWPORT)

	f.BindFramebuffer(gl.FRAMEBUFFER, t.framebuffer)
	f.Viewport(0, 0, t.Width, t.Height)

	if p.ClearOnWrite {
		var mask gl.Enum
		if t.HasColor && !p.DisableColorWrites {
			mask |= gl.COLOR_BUFFER_BIT
		}
		if t.HasDepth {
			mask |= gl.DEPTH_BUFFER_BIT
		}
		c := p.ClearColor
		f.ClearColor(c[0], c[1], c[2], c[3])
		f.Clear(mask)
	}
	if p.DisableColorWrites {
		f.ColorMask(false, false, false, false)
		t.maskedColor = true
	}
	s.current = t
	return nil
}

// checkUnits rejects read bindings that collide with the material texture
// units [0, len(p.Textures)) or run past the device's unit count.
func (s *TargetSystem) checkUnits(p *Pipeline, startUnit int) error {
	limit := s.ctx.caps.MaxTextureUnits
	end := startUnit + 2*len(p.ReadFrom)
	if startUnit < 0 || end > limit {
		return errors.Wrapf(ErrUnitBudget, "%s: units %d..%d, device has %d", p.Name, startUnit, end-1, limit)
	}

	material := bitset.New(uint(limit))
	for i := range p.Textures {
		material.Set(uint(i))
	}
	reads := bitset.New(uint(limit))
	for u := startUnit; u < end; u++ {
		reads.Set(uint(u))
	}
	if n := material.IntersectionCardinality(reads); n > 0 {
		return errors.Wrapf(ErrUnitOverlap, "%s: %d material units from %d", p.Name, len(p.Textures), startUnit)
	}
	return nil
}

// Restore ends the current write: the saved framebuffer, viewport and color
// mask come back. Without a current target it unbinds the read attachments
// of every complete target.
func (s *TargetSystem) Restore() {
	f := s.ctx.gl
	if t := s.current; t != nil {
		f.BindFramebuffer(gl.FRAMEBUFFER, t.savedFramebuffer)
		v := t.savedViewport
		f.Viewport(v[0], v[1], v[2], v[3])
		if t.maskedColor {
			f.ColorMask(true, true, true, true)
			t.maskedColor = false
		}
		s.current = nil
		return
	}

	var unbound bool
	for _, name := range sortedKeys(s.targets) {
		t := s.targets[name]
		if t.complete && (t.colorUnit >= 0 || t.depthUnit >= 0) {
			s.unbindUnits(t)
			unbound = true
		}
	}
	if unbound {
		f.ActiveTexture(gl.TEXTURE0)
	}
}

func (s *TargetSystem) unbindUnits(t *RenderTarget) {
	f := s.ctx.gl
	for _, unit := range []*int{&t.colorUnit, &t.depthUnit} {
		if *unit < 0 {
			continue
		}
		f.ActiveTexture(gl.TEXTURE0 + gl.Enum(*unit))
		f.BindTexture(gl.TEXTURE_2D, gl.NoTexture)
		*unit = -1
	}
}

// Autoresize rebuilds every auto-resize target whose size differs from the
// surface. The current write target is left alone until restored.
func (s *TargetSystem) Autoresize() {
	w, h := s.ctx.Width(), s.ctx.Height()
	for _, name := range sortedKeys(s.targets) {
		t := s.targets[name]
		if !t.AutoResize || (t.Width == w && t.Height == h) {
			continue
		}
		if t == s.current {
			s.log.WithField("target", name).Debug("resize deferred, target is current")
			continue
		}
		t.Width, t.Height = w, h
		s.construct(t)
		s.ctx.onResize.Publish(MessageTargetResized{Name: name, Width: w, Height: h})
	}
}

func (s *TargetSystem) SetAutoResize(name string, on bool) bool {
	t, found := s.targets[name]
	if !found {
		return false
	}
	t.AutoResize = on
	return true
}

func (s *TargetSystem) Delete(name string) {
	if t, found := s.targets[name]; found {
		s.destroy(t)
	}
}

func (s *TargetSystem) Names() []string {
	return sortedKeys(s.targets)
}

func (s *TargetSystem) Close() {
	if s.current != nil {
		s.Restore()
	}
	for _, t := range s.targets {
		s.destroy(t)
	}
}
