//go:build !js

// Package glcore implements gl.Functions on desktop OpenGL 3.3 core through go-gl.
// A context must be current on the calling thread before New is called.
package glcore

import (
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"

	xgl "github.com/microwerx/libxor/gl"
)

type Functions struct {
	extensions []string
}

// webgl extension names that are core features of GL 3.3
var coreExtensions = map[string]bool{
	"OES_element_index_uint":   true,
	"OES_standard_derivatives": true,
	"OES_texture_float":        true,
	"OES_texture_float_linear": true,
	"WEBGL_depth_texture":      true,
	"EXT_color_buffer_float":   true,
}

// webgl extension names mapped to their desktop spellings
var desktopExtensions = map[string][]string{
	"EXT_texture_filter_anisotropic": {"GL_EXT_texture_filter_anisotropic", "GL_ARB_texture_filter_anisotropic"},
}

func New() (*Functions, error) {
	if err := gl.Init(); err != nil {
		return nil, err
	}

	f := &Functions{}
	var n int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	for i := int32(0); i < n; i++ {
		f.extensions = append(f.extensions, gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i))))
	}
	return f, nil
}

func (f *Functions) ActiveTexture(texture xgl.Enum) { gl.ActiveTexture(uint32(texture)) }
func (f *Functions) AttachShader(p xgl.Program, s xgl.Shader) {
	gl.AttachShader(uint32(p.V), uint32(s.V))
}
func (f *Functions) BindFramebuffer(target xgl.Enum, fb xgl.Framebuffer) {
	gl.BindFramebuffer(uint32(target), uint32(fb.V))
}
func (f *Functions) BindTexture(target xgl.Enum, t xgl.Texture) {
	gl.BindTexture(uint32(target), uint32(t.V))
}
func (f *Functions) BindVertexArray(a xgl.VertexArray) { gl.BindVertexArray(uint32(a.V)) }
func (f *Functions) CheckFramebufferStatus(target xgl.Enum) xgl.Enum {
	return xgl.Enum(gl.CheckFramebufferStatus(uint32(target)))
}
func (f *Functions) Clear(mask xgl.Enum) { gl.Clear(uint32(mask)) }
func (f *Functions) ClearColor(red, green, blue, alpha float32) {
	gl.ClearColor(red, green, blue, alpha)
}
func (f *Functions) ColorMask(red, green, blue, alpha bool) { gl.ColorMask(red, green, blue, alpha) }
func (f *Functions) CompileShader(s xgl.Shader)              { gl.CompileShader(uint32(s.V)) }

func (f *Functions) CreateFramebuffer() xgl.Framebuffer {
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	return xgl.Framebuffer{V: uint(fb)}
}

func (f *Functions) CreateProgram() xgl.Program { return xgl.Program{V: uint(gl.CreateProgram())} }
func (f *Functions) CreateShader(ty xgl.Enum) xgl.Shader {
	return xgl.Shader{V: uint(gl.CreateShader(uint32(ty)))}
}

func (f *Functions) CreateTexture() xgl.Texture {
	var t uint32
	gl.GenTextures(1, &t)
	return xgl.Texture{V: uint(t)}
}

func (f *Functions) CreateVertexArray() xgl.VertexArray {
	var a uint32
	gl.GenVertexArrays(1, &a)
	return xgl.VertexArray{V: uint(a)}
}

func (f *Functions) DeleteFramebuffer(v xgl.Framebuffer) {
	fb := uint32(v.V)
	gl.DeleteFramebuffers(1, &fb)
}

func (f *Functions) DeleteProgram(p xgl.Program) { gl.DeleteProgram(uint32(p.V)) }
func (f *Functions) DeleteShader(s xgl.Shader)   { gl.DeleteShader(uint32(s.V)) }

func (f *Functions) DeleteTexture(v xgl.Texture) {
	t := uint32(v.V)
	gl.DeleteTextures(1, &t)
}

func (f *Functions) DeleteVertexArray(v xgl.VertexArray) {
	a := uint32(v.V)
	gl.DeleteVertexArrays(1, &a)
}

func (f *Functions) Disable(cap xgl.Enum) { gl.Disable(uint32(cap)) }
func (f *Functions) DrawArrays(mode xgl.Enum, first, count int) {
	gl.DrawArrays(uint32(mode), int32(first), int32(count))
}
func (f *Functions) Enable(cap xgl.Enum) { gl.Enable(uint32(cap)) }

func (f *Functions) FramebufferTexture2D(target, attachment, texTarget xgl.Enum, t xgl.Texture, level int) {
	gl.FramebufferTexture2D(uint32(target), uint32(attachment), uint32(texTarget), uint32(t.V), int32(level))
}

func (f *Functions) GenerateMipmap(target xgl.Enum) { gl.GenerateMipmap(uint32(target)) }

// DrawBuffers selects the color outputs of the bound framebuffer. Core
// profiles report a framebuffer without color attachment incomplete unless
// it draws to NONE.
func (f *Functions) DrawBuffers(bufs []xgl.Enum) {
	if len(bufs) == 0 {
		return
	}
	b := make([]uint32, len(bufs))
	for i, v := range bufs {
		b[i] = uint32(v)
	}
	gl.DrawBuffers(int32(len(b)), &b[0])
}

func (f *Functions) ReadBuffer(src xgl.Enum) { gl.ReadBuffer(uint32(src)) }

func (f *Functions) GetBinding(pname xgl.Enum) xgl.Object {
	return xgl.Object{V: uint(f.GetInteger(pname))}
}

func (f *Functions) GetError() xgl.Enum { return xgl.Enum(gl.GetError()) }

func (f *Functions) GetExtension(name string) bool {
	if coreExtensions[name] {
		return true
	}
	names, ok := desktopExtensions[name]
	if !ok {
		names = []string{name, "GL_" + name}
	}
	for _, e := range f.extensions {
		for _, n := range names {
			if e == n {
				return true
			}
		}
	}
	return false
}

func (f *Functions) GetFloat(pname xgl.Enum) float32 {
	var v float32
	gl.GetFloatv(uint32(pname), &v)
	return v
}

func (f *Functions) GetInteger(pname xgl.Enum) int {
	var v int32
	gl.GetIntegerv(uint32(pname), &v)
	return int(v)
}

func (f *Functions) GetInteger4(pname xgl.Enum) [4]int {
	var v [4]int32
	gl.GetIntegerv(uint32(pname), &v[0])
	return [4]int{int(v[0]), int(v[1]), int(v[2]), int(v[3])}
}

func (f *Functions) GetProgrami(p xgl.Program, pname xgl.Enum) int {
	var v int32
	gl.GetProgramiv(uint32(p.V), uint32(pname), &v)
	return int(v)
}

func (f *Functions) GetProgramInfoLog(p xgl.Program) string {
	var n int32
	gl.GetProgramiv(uint32(p.V), gl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return ""
	}
	buf := strings.Repeat("\x00", int(n+1))
	gl.GetProgramInfoLog(uint32(p.V), n, nil, gl.Str(buf))
	return strings.TrimRight(buf, "\x00")
}

func (f *Functions) GetShaderi(s xgl.Shader, pname xgl.Enum) int {
	var v int32
	gl.GetShaderiv(uint32(s.V), uint32(pname), &v)
	return int(v)
}

func (f *Functions) GetShaderInfoLog(s xgl.Shader) string {
	var n int32
	gl.GetShaderiv(uint32(s.V), gl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return ""
	}
	buf := strings.Repeat("\x00", int(n+1))
	gl.GetShaderInfoLog(uint32(s.V), n, nil, gl.Str(buf))
	return strings.TrimRight(buf, "\x00")
}

func (f *Functions) GetUniformLocation(p xgl.Program, name string) xgl.Uniform {
	return xgl.Uniform{V: int(gl.GetUniformLocation(uint32(p.V), gl.Str(name+"\x00")))}
}

func (f *Functions) LinkProgram(p xgl.Program) { gl.LinkProgram(uint32(p.V)) }

// ShaderSource accepts webgl2 sources: a leading "#version 300 es" is
// rewritten to the desktop core version.
func (f *Functions) ShaderSource(s xgl.Shader, src string) {
	if rest, ok := strings.CutPrefix(strings.TrimLeft(src, " \t\r\n"), "#version 300 es"); ok {
		src = "#version 330 core" + rest
	}
	csrc, free := gl.Strs(src + "\x00")
	defer free()
	gl.ShaderSource(uint32(s.V), 1, csrc, nil)
}

func (f *Functions) SupportedExtensions() []string {
	exts := make([]string, len(f.extensions))
	copy(exts, f.extensions)
	return exts
}

// TexImage2D promotes the unsized webgl formats to sized ones where core
// profile requires it.
func (f *Functions) TexImage2D(target xgl.Enum, level int, internalFormat xgl.Enum, width, height int, format, ty xgl.Enum, data []byte) {
	switch {
	case internalFormat == xgl.RGBA && ty == xgl.FLOAT:
		internalFormat = xgl.RGBA32F
	case internalFormat == xgl.RGBA && ty == xgl.HALF_FLOAT:
		internalFormat = xgl.RGBA16F
	case internalFormat == xgl.DEPTH_COMPONENT && ty == xgl.UNSIGNED_INT:
		internalFormat = xgl.DEPTH_COMPONENT24
	case internalFormat == xgl.DEPTH_COMPONENT && ty == xgl.UNSIGNED_SHORT:
		internalFormat = xgl.DEPTH_COMPONENT16
	}

	var p unsafe.Pointer
	if len(data) > 0 {
		p = gl.Ptr(data)
	}
	gl.TexImage2D(uint32(target), int32(level), int32(internalFormat), int32(width), int32(height),
		0, uint32(format), uint32(ty), p)
}

func (f *Functions) TexParameterf(target, pname xgl.Enum, param float32) {
	gl.TexParameterf(uint32(target), uint32(pname), param)
}

func (f *Functions) TexParameteri(target, pname xgl.Enum, param int) {
	gl.TexParameteri(uint32(target), uint32(pname), int32(param))
}

func (f *Functions) Uniform1f(dst xgl.Uniform, v float32) { gl.Uniform1f(int32(dst.V), v) }
func (f *Functions) Uniform1i(dst xgl.Uniform, v int)     { gl.Uniform1i(int32(dst.V), int32(v)) }
func (f *Functions) Uniform2f(dst xgl.Uniform, v0, v1 float32) {
	gl.Uniform2f(int32(dst.V), v0, v1)
}
func (f *Functions) Uniform3f(dst xgl.Uniform, v0, v1, v2 float32) {
	gl.Uniform3f(int32(dst.V), v0, v1, v2)
}
func (f *Functions) Uniform4f(dst xgl.Uniform, v0, v1, v2, v3 float32) {
	gl.Uniform4f(int32(dst.V), v0, v1, v2, v3)
}
func (f *Functions) UniformMatrix3fv(dst xgl.Uniform, data []float32) {
	gl.UniformMatrix3fv(int32(dst.V), int32(len(data)/9), false, &data[0])
}
func (f *Functions) UniformMatrix4fv(dst xgl.Uniform, data []float32) {
	gl.UniformMatrix4fv(int32(dst.V), int32(len(data)/16), false, &data[0])
}
func (f *Functions) UseProgram(p xgl.Program) { gl.UseProgram(uint32(p.V)) }
func (f *Functions) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}
