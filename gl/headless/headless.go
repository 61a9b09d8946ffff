//go:build !js

// Package headless implements gl.Functions as an in-memory state machine.
//
// It tracks bindings, object lifetimes, texture images, framebuffer
// completeness, shader compile results and uniform values closely enough to
// run the engine without a GPU. Shader compilation fails for empty sources and
// for sources containing an #error directive; uniform locations exist for
// every identifier that appears in one of the linked sources.
package headless

import (
	"regexp"
	"strings"

	"github.com/microwerx/libxor/gl"
)

// Config describes the simulated device.
type Config struct {
	Extensions      []string
	FloatRenderable bool // float color attachments pass completeness
	MaxTextureUnits int
	MaxTextureSize  int
	MaxAnisotropy   float32
	Width, Height   int // initial viewport
}

// DefaultConfig is a capable webgl2-class device.
func DefaultConfig() Config {
	return Config{
		Extensions: []string{
			"EXT_texture_filter_anisotropic",
			"OES_element_index_uint",
			"OES_standard_derivatives",
			"OES_texture_float",
			"OES_texture_float_linear",
			"WEBGL_depth_texture",
			"EXT_color_buffer_float",
		},
		FloatRenderable: true,
		MaxTextureUnits: 16,
		MaxTextureSize:  4096,
		MaxAnisotropy:   16,
		Width:           640,
		Height:          480,
	}
}

// Image is one uploaded texture image.
type Image struct {
	Level          int
	InternalFormat gl.Enum
	Width, Height  int
	Format, Type   gl.Enum
	Data           []byte
}

// TextureInfo is a snapshot of a texture object.
type TextureInfo struct {
	Target  gl.Enum
	Images  map[gl.Enum]Image // keyed by image target (2d or cube face)
	Params  map[gl.Enum]float32
	Mipmaps bool
}

type texture struct {
	target  gl.Enum
	images  map[gl.Enum]Image
	params  map[gl.Enum]float32
	mipmaps bool
}

type framebuffer struct {
	attachments map[gl.Enum]uint
	drawBuffer  gl.Enum
	readBuffer  gl.Enum
}

type shader struct {
	ty       gl.Enum
	source   string
	compiled bool
	log      string
}

type program struct {
	shaders  []uint
	linked   bool
	log      string
	sources  string
	uniforms map[string]int
	values   map[int]interface{}
}

type Functions struct {
	cfg Config

	next  uint
	calls int
	err   gl.Enum

	framebuffer uint
	program     uint
	vertexArray uint
	viewport    [4]int
	clearColor  [4]float32
	colorMask   [4]bool
	caps        map[gl.Enum]bool
	clears      int
	draws       int

	activeUnit int
	units      map[int]map[gl.Enum]uint

	textures     map[uint]*texture
	framebuffers map[uint]*framebuffer
	shaders      map[uint]*shader
	programs     map[uint]*program
	vertexArrays map[uint]bool

	lookups int
}

func New(cfg Config) *Functions {
	if cfg.MaxTextureUnits <= 0 {
		cfg.MaxTextureUnits = 16
	}
	if cfg.MaxTextureSize <= 0 {
		cfg.MaxTextureSize = 4096
	}
	return &Functions{
		cfg:          cfg,
		viewport:     [4]int{0, 0, cfg.Width, cfg.Height},
		colorMask:    [4]bool{true, true, true, true},
		caps:         map[gl.Enum]bool{},
		units:        map[int]map[gl.Enum]uint{},
		textures:     map[uint]*texture{},
		framebuffers: map[uint]*framebuffer{},
		shaders:      map[uint]*shader{},
		programs:     map[uint]*program{},
		vertexArrays: map[uint]bool{},
	}
}

func (f *Functions) id() uint {
	f.next++
	return f.next
}

func (f *Functions) fail(e gl.Enum) {
	if f.err == gl.NO_ERROR {
		f.err = e
	}
}

// bindingTarget maps cube faces to the cube map binding point.
func bindingTarget(target gl.Enum) gl.Enum {
	for _, face := range gl.CubeFaces {
		if target == face {
			return gl.TEXTURE_CUBE_MAP
		}
	}
	return target
}

func (f *Functions) bound(target gl.Enum) *texture {
	return f.textures[f.units[f.activeUnit][bindingTarget(target)]]
}

func (f *Functions) ActiveTexture(texture gl.Enum) {
	f.calls++
	unit := int(texture) - gl.TEXTURE0
	if unit < 0 || unit >= f.cfg.MaxTextureUnits {
		f.fail(gl.INVALID_ENUM)
		return
	}
	f.activeUnit = unit
}

func (f *Functions) AttachShader(p gl.Program, s gl.Shader) {
	f.calls++
	prog, ok := f.programs[p.V]
	if !ok || f.shaders[s.V] == nil {
		f.fail(gl.INVALID_VALUE)
		return
	}
	prog.shaders = append(prog.shaders, s.V)
}

func (f *Functions) BindFramebuffer(target gl.Enum, fb gl.Framebuffer) {
	f.calls++
	if fb.V != 0 && f.framebuffers[fb.V] == nil {
		f.fail(gl.INVALID_OPERATION)
		return
	}
	f.framebuffer = fb.V
}

func (f *Functions) BindTexture(target gl.Enum, t gl.Texture) {
	f.calls++
	if t.V != 0 {
		tex, ok := f.textures[t.V]
		if !ok {
			f.fail(gl.INVALID_OPERATION)
			return
		}
		// a texture object keeps the target it was first bound to
		if tex.target == 0 {
			tex.target = target
		} else if tex.target != target {
			f.fail(gl.INVALID_OPERATION)
			return
		}
	}
	u, ok := f.units[f.activeUnit]
	if !ok {
		u = map[gl.Enum]uint{}
		f.units[f.activeUnit] = u
	}
	u[target] = t.V
}

func (f *Functions) BindVertexArray(a gl.VertexArray) {
	f.calls++
	f.vertexArray = a.V
}

func (f *Functions) CheckFramebufferStatus(target gl.Enum) gl.Enum {
	f.calls++
	if f.framebuffer == 0 {
		return gl.FRAMEBUFFER_COMPLETE
	}
	fb := f.framebuffers[f.framebuffer]
	if len(fb.attachments) == 0 {
		return gl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT
	}

	w, h := -1, -1
	for attachment, id := range fb.attachments {
		tex, ok := f.textures[id]
		if !ok {
			return gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT
		}
		img, ok := tex.images[gl.TEXTURE_2D]
		if !ok || img.Width == 0 || img.Height == 0 {
			return gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT
		}
		switch attachment {
		case gl.COLOR_ATTACHMENT0:
			if img.Format == gl.DEPTH_COMPONENT {
				return gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT
			}
			if (img.Type == gl.FLOAT || img.Type == gl.HALF_FLOAT) && !f.cfg.FloatRenderable {
				return gl.FRAMEBUFFER_UNSUPPORTED
			}
		case gl.DEPTH_ATTACHMENT:
			if img.Format != gl.DEPTH_COMPONENT {
				return gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT
			}
		}
		if w >= 0 && (img.Width != w || img.Height != h) {
			return gl.FRAMEBUFFER_INCOMPLETE_DIMENSIONS
		}
		w, h = img.Width, img.Height
	}

	// core profile rules: selected buffers must be attached
	_, color := fb.attachments[gl.COLOR_ATTACHMENT0]
	if !color && fb.drawBuffer == gl.COLOR_ATTACHMENT0 {
		return gl.FRAMEBUFFER_INCOMPLETE_DRAW_BUFFER
	}
	if !color && fb.readBuffer == gl.COLOR_ATTACHMENT0 {
		return gl.FRAMEBUFFER_INCOMPLETE_READ_BUFFER
	}
	return gl.FRAMEBUFFER_COMPLETE
}

func (f *Functions) Clear(mask gl.Enum) {
	f.calls++
	f.clears++
}

func (f *Functions) ClearColor(red, green, blue, alpha float32) {
	f.calls++
	f.clearColor = [4]float32{red, green, blue, alpha}
}

func (f *Functions) ColorMask(red, green, blue, alpha bool) {
	f.calls++
	f.colorMask = [4]bool{red, green, blue, alpha}
}

func (f *Functions) CompileShader(s gl.Shader) {
	f.calls++
	sh, ok := f.shaders[s.V]
	if !ok {
		f.fail(gl.INVALID_VALUE)
		return
	}
	switch {
	case strings.TrimSpace(sh.source) == "":
		sh.compiled, sh.log = false, "ERROR: 0:1: '' : syntax error: empty source"
	case strings.Contains(sh.source, "#error"):
		sh.compiled, sh.log = false, "ERROR: 0:1: '#error' : user error directive"
	default:
		sh.compiled, sh.log = true, ""
	}
}

func (f *Functions) CreateFramebuffer() gl.Framebuffer {
	f.calls++
	id := f.id()
	f.framebuffers[id] = &framebuffer{
		attachments: map[gl.Enum]uint{},
		drawBuffer:  gl.COLOR_ATTACHMENT0,
		readBuffer:  gl.COLOR_ATTACHMENT0,
	}
	return gl.Framebuffer{V: id}
}

func (f *Functions) CreateProgram() gl.Program {
	f.calls++
	id := f.id()
	f.programs[id] = &program{uniforms: map[string]int{}, values: map[int]interface{}{}}
	return gl.Program{V: id}
}

func (f *Functions) CreateShader(ty gl.Enum) gl.Shader {
	f.calls++
	id := f.id()
	f.shaders[id] = &shader{ty: ty}
	return gl.Shader{V: id}
}

func (f *Functions) CreateTexture() gl.Texture {
	f.calls++
	id := f.id()
	f.textures[id] = &texture{images: map[gl.Enum]Image{}, params: map[gl.Enum]float32{}}
	return gl.Texture{V: id}
}

func (f *Functions) CreateVertexArray() gl.VertexArray {
	f.calls++
	id := f.id()
	f.vertexArrays[id] = true
	return gl.VertexArray{V: id}
}

func (f *Functions) DeleteFramebuffer(v gl.Framebuffer) {
	f.calls++
	delete(f.framebuffers, v.V)
	if f.framebuffer == v.V {
		f.framebuffer = 0
	}
}

func (f *Functions) DeleteProgram(p gl.Program) {
	f.calls++
	delete(f.programs, p.V)
	if f.program == p.V {
		f.program = 0
	}
}

func (f *Functions) DeleteShader(s gl.Shader) {
	f.calls++
	delete(f.shaders, s.V)
}

func (f *Functions) DeleteTexture(v gl.Texture) {
	f.calls++
	delete(f.textures, v.V)
	for _, u := range f.units {
		for target, id := range u {
			if id == v.V {
				u[target] = 0
			}
		}
	}
	for _, fb := range f.framebuffers {
		for a, id := range fb.attachments {
			if id == v.V {
				delete(fb.attachments, a)
			}
		}
	}
}

func (f *Functions) DeleteVertexArray(a gl.VertexArray) {
	f.calls++
	delete(f.vertexArrays, a.V)
}

func (f *Functions) Disable(cap gl.Enum) {
	f.calls++
	f.caps[cap] = false
}

func (f *Functions) DrawArrays(mode gl.Enum, first, count int) {
	f.calls++
	if f.program == 0 {
		f.fail(gl.INVALID_OPERATION)
		return
	}
	f.draws++
}

func (f *Functions) DrawBuffers(bufs []gl.Enum) {
	f.calls++
	fb := f.framebuffers[f.framebuffer]
	if fb == nil || len(bufs) != 1 {
		// only single output framebuffers are modelled
		f.fail(gl.INVALID_OPERATION)
		return
	}
	fb.drawBuffer = bufs[0]
}

func (f *Functions) Enable(cap gl.Enum) {
	f.calls++
	f.caps[cap] = true
}

func (f *Functions) FramebufferTexture2D(target, attachment, texTarget gl.Enum, t gl.Texture, level int) {
	f.calls++
	fb, ok := f.framebuffers[f.framebuffer]
	if !ok {
		f.fail(gl.INVALID_OPERATION)
		return
	}
	if t.V == 0 {
		delete(fb.attachments, attachment)
		return
	}
	fb.attachments[attachment] = t.V
}

func (f *Functions) GenerateMipmap(target gl.Enum) {
	f.calls++
	tex := f.bound(target)
	if tex == nil {
		f.fail(gl.INVALID_OPERATION)
		return
	}
	tex.mipmaps = true
}

func (f *Functions) GetBinding(pname gl.Enum) gl.Object {
	f.calls++
	return gl.Object{V: uint(f.GetInteger(pname))}
}

func (f *Functions) GetError() gl.Enum {
	f.calls++
	e := f.err
	f.err = gl.NO_ERROR
	return e
}

func (f *Functions) GetExtension(name string) bool {
	f.calls++
	for _, e := range f.cfg.Extensions {
		if e == name {
			return true
		}
	}
	return false
}

func (f *Functions) GetFloat(pname gl.Enum) float32 {
	f.calls++
	switch pname {
	case gl.MAX_TEXTURE_MAX_ANISOTROPY_EXT:
		return f.cfg.MaxAnisotropy
	}
	return float32(f.GetInteger(pname))
}

func (f *Functions) GetInteger(pname gl.Enum) int {
	f.calls++
	switch pname {
	case gl.CURRENT_PROGRAM:
		return int(f.program)
	case gl.FRAMEBUFFER_BINDING:
		return int(f.framebuffer)
	case gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS:
		return f.cfg.MaxTextureUnits
	case gl.MAX_TEXTURE_SIZE:
		return f.cfg.MaxTextureSize
	case gl.NUM_EXTENSIONS:
		return len(f.cfg.Extensions)
	case gl.TEXTURE_BINDING_2D:
		return int(f.units[f.activeUnit][gl.TEXTURE_2D])
	case gl.TEXTURE_BINDING_CUBE_MAP:
		return int(f.units[f.activeUnit][gl.TEXTURE_CUBE_MAP])
	}
	f.fail(gl.INVALID_ENUM)
	return 0
}

func (f *Functions) GetInteger4(pname gl.Enum) [4]int {
	f.calls++
	if pname == gl.VIEWPORT {
		return f.viewport
	}
	f.fail(gl.INVALID_ENUM)
	return [4]int{}
}

func (f *Functions) GetProgrami(p gl.Program, pname gl.Enum) int {
	f.calls++
	prog, ok := f.programs[p.V]
	if !ok {
		f.fail(gl.INVALID_VALUE)
		return 0
	}
	if pname == gl.LINK_STATUS && prog.linked {
		return gl.TRUE
	}
	return 0
}

func (f *Functions) GetProgramInfoLog(p gl.Program) string {
	f.calls++
	if prog, ok := f.programs[p.V]; ok {
		return prog.log
	}
	return ""
}

func (f *Functions) GetShaderi(s gl.Shader, pname gl.Enum) int {
	f.calls++
	sh, ok := f.shaders[s.V]
	if !ok {
		f.fail(gl.INVALID_VALUE)
		return 0
	}
	if pname == gl.COMPILE_STATUS && sh.compiled {
		return gl.TRUE
	}
	return 0
}

func (f *Functions) GetShaderInfoLog(s gl.Shader) string {
	f.calls++
	if sh, ok := f.shaders[s.V]; ok {
		return sh.log
	}
	return ""
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (f *Functions) GetUniformLocation(p gl.Program, name string) gl.Uniform {
	f.calls++
	f.lookups++
	prog, ok := f.programs[p.V]
	if !ok || !prog.linked || !identifier.MatchString(name) {
		return gl.Uniform{V: -1}
	}
	if loc, ok := prog.uniforms[name]; ok {
		return gl.Uniform{V: loc}
	}
	if !regexp.MustCompile(`\b` + name + `\b`).MatchString(prog.sources) {
		return gl.Uniform{V: -1}
	}
	loc := len(prog.uniforms)
	prog.uniforms[name] = loc
	return gl.Uniform{V: loc}
}

func (f *Functions) LinkProgram(p gl.Program) {
	f.calls++
	prog, ok := f.programs[p.V]
	if !ok {
		f.fail(gl.INVALID_VALUE)
		return
	}
	prog.linked, prog.log, prog.sources = false, "", ""
	var vertex, fragment bool
	for _, id := range prog.shaders {
		sh, ok := f.shaders[id]
		if !ok || !sh.compiled {
			prog.log = "ERROR: one or more attached shaders not successfully compiled"
			return
		}
		vertex = vertex || sh.ty == gl.VERTEX_SHADER
		fragment = fragment || sh.ty == gl.FRAGMENT_SHADER
		prog.sources += sh.source + "\n"
	}
	if !vertex || !fragment {
		prog.log = "ERROR: missing vertex or fragment shader"
		return
	}
	prog.linked = true
}

func (f *Functions) ReadBuffer(src gl.Enum) {
	f.calls++
	fb := f.framebuffers[f.framebuffer]
	if fb == nil {
		f.fail(gl.INVALID_OPERATION)
		return
	}
	fb.readBuffer = src
}

func (f *Functions) ShaderSource(s gl.Shader, src string) {
	f.calls++
	if sh, ok := f.shaders[s.V]; ok {
		sh.source = src
	}
}

func (f *Functions) SupportedExtensions() []string {
	f.calls++
	exts := make([]string, len(f.cfg.Extensions))
	copy(exts, f.cfg.Extensions)
	return exts
}

func pixelSize(format, ty gl.Enum) int {
	n := 4
	switch format {
	case gl.RGB:
		n = 3
	case gl.DEPTH_COMPONENT:
		n = 1
	}
	switch ty {
	case gl.FLOAT, gl.UNSIGNED_INT:
		return n * 4
	case gl.HALF_FLOAT, gl.UNSIGNED_SHORT:
		return n * 2
	}
	return n
}

func (f *Functions) TexImage2D(target gl.Enum, level int, internalFormat gl.Enum, width, height int, format, ty gl.Enum, data []byte) {
	f.calls++
	tex := f.bound(target)
	if tex == nil {
		f.fail(gl.INVALID_OPERATION)
		return
	}
	if width < 0 || height < 0 || width > f.cfg.MaxTextureSize || height > f.cfg.MaxTextureSize {
		f.fail(gl.INVALID_VALUE)
		return
	}
	if data != nil && len(data) < width*height*pixelSize(format, ty) {
		f.fail(gl.INVALID_OPERATION)
		return
	}
	img := Image{
		Level:          level,
		InternalFormat: internalFormat,
		Width:          width,
		Height:         height,
		Format:         format,
		Type:           ty,
	}
	if data != nil {
		img.Data = append([]byte(nil), data...)
	}
	if level == 0 {
		tex.images[target] = img
	}
}

func (f *Functions) TexParameterf(target, pname gl.Enum, param float32) {
	f.calls++
	if tex := f.bound(target); tex != nil {
		tex.params[pname] = param
		return
	}
	f.fail(gl.INVALID_OPERATION)
}

func (f *Functions) TexParameteri(target, pname gl.Enum, param int) {
	f.TexParameterf(target, pname, float32(param))
}

func (f *Functions) set(dst gl.Uniform, v interface{}) {
	if dst.V < 0 {
		return
	}
	prog, ok := f.programs[f.program]
	if !ok {
		f.fail(gl.INVALID_OPERATION)
		return
	}
	prog.values[dst.V] = v
}

func (f *Functions) Uniform1f(dst gl.Uniform, v float32) {
	f.calls++
	f.set(dst, v)
}

func (f *Functions) Uniform1i(dst gl.Uniform, v int) {
	f.calls++
	f.set(dst, v)
}

func (f *Functions) Uniform2f(dst gl.Uniform, v0, v1 float32) {
	f.calls++
	f.set(dst, [2]float32{v0, v1})
}

func (f *Functions) Uniform3f(dst gl.Uniform, v0, v1, v2 float32) {
	f.calls++
	f.set(dst, [3]float32{v0, v1, v2})
}

func (f *Functions) Uniform4f(dst gl.Uniform, v0, v1, v2, v3 float32) {
	f.calls++
	f.set(dst, [4]float32{v0, v1, v2, v3})
}

func (f *Functions) UniformMatrix3fv(dst gl.Uniform, data []float32) {
	f.calls++
	f.set(dst, append([]float32(nil), data...))
}

func (f *Functions) UniformMatrix4fv(dst gl.Uniform, data []float32) {
	f.calls++
	f.set(dst, append([]float32(nil), data...))
}

func (f *Functions) UseProgram(p gl.Program) {
	f.calls++
	if p.V != 0 {
		prog, ok := f.programs[p.V]
		if !ok || !prog.linked {
			f.fail(gl.INVALID_OPERATION)
			return
		}
	}
	f.program = p.V
}

func (f *Functions) Viewport(x, y, width, height int) {
	f.calls++
	if width < 0 || height < 0 {
		f.fail(gl.INVALID_VALUE)
		return
	}
	f.viewport = [4]int{x, y, width, height}
}
