//go:build js && wasm

// Package webgl implements gl.Functions on a browser WebGL2 context.
package webgl

import (
	"errors"
	"syscall/js"

	"github.com/microwerx/libxor/gl"
)

type Functions struct {
	ctx        js.Value
	extensions map[string]js.Value

	uint8Array   js.Value
	float32Array js.Value
	float32Buf   js.Value
}

// New wraps the webgl2 context of a canvas element.
func New(canvas js.Value) (*Functions, error) {
	ctx := canvas.Call("getContext", "webgl2")
	if ctx.IsNull() || ctx.IsUndefined() {
		return nil, errors.New("webgl: webgl2 context unavailable")
	}
	return &Functions{
		ctx:          ctx,
		extensions:   map[string]js.Value{},
		uint8Array:   js.Global().Get("Uint8Array"),
		float32Array: js.Global().Get("Float32Array"),
		float32Buf:   js.Global().Get("Float32Array").New(16),
	}, nil
}

// webgl2 promotes these webgl1 extensions to core
var coreExtensions = map[string]bool{
	"OES_element_index_uint":   true,
	"OES_standard_derivatives": true,
	"OES_texture_float":        true,
	"WEBGL_depth_texture":      true,
}

func (f *Functions) ActiveTexture(texture gl.Enum) { f.ctx.Call("activeTexture", int(texture)) }
func (f *Functions) AttachShader(p gl.Program, s gl.Shader) {
	f.ctx.Call("attachShader", js.Value(p), js.Value(s))
}
func (f *Functions) BindFramebuffer(target gl.Enum, fb gl.Framebuffer) {
	f.ctx.Call("bindFramebuffer", int(target), js.Value(fb))
}
func (f *Functions) BindTexture(target gl.Enum, t gl.Texture) {
	f.ctx.Call("bindTexture", int(target), js.Value(t))
}
func (f *Functions) BindVertexArray(a gl.VertexArray) {
	f.ctx.Call("bindVertexArray", js.Value(a))
}
func (f *Functions) CheckFramebufferStatus(target gl.Enum) gl.Enum {
	return gl.Enum(f.ctx.Call("checkFramebufferStatus", int(target)).Int())
}
func (f *Functions) Clear(mask gl.Enum) { f.ctx.Call("clear", int(mask)) }
func (f *Functions) ClearColor(red, green, blue, alpha float32) {
	f.ctx.Call("clearColor", red, green, blue, alpha)
}
func (f *Functions) ColorMask(red, green, blue, alpha bool) {
	f.ctx.Call("colorMask", red, green, blue, alpha)
}
func (f *Functions) CompileShader(s gl.Shader) { f.ctx.Call("compileShader", js.Value(s)) }

func (f *Functions) DrawBuffers(bufs []gl.Enum) {
	arr := make([]interface{}, len(bufs))
	for i, v := range bufs {
		arr[i] = int(v)
	}
	f.ctx.Call("drawBuffers", arr)
}

func (f *Functions) ReadBuffer(src gl.Enum) { f.ctx.Call("readBuffer", int(src)) }
func (f *Functions) CreateFramebuffer() gl.Framebuffer {
	return gl.Framebuffer(f.ctx.Call("createFramebuffer"))
}
func (f *Functions) CreateProgram() gl.Program { return gl.Program(f.ctx.Call("createProgram")) }
func (f *Functions) CreateShader(ty gl.Enum) gl.Shader {
	return gl.Shader(f.ctx.Call("createShader", int(ty)))
}
func (f *Functions) CreateTexture() gl.Texture { return gl.Texture(f.ctx.Call("createTexture")) }
func (f *Functions) CreateVertexArray() gl.VertexArray {
	return gl.VertexArray(f.ctx.Call("createVertexArray"))
}
func (f *Functions) DeleteFramebuffer(v gl.Framebuffer) {
	f.ctx.Call("deleteFramebuffer", js.Value(v))
}
func (f *Functions) DeleteProgram(p gl.Program) { f.ctx.Call("deleteProgram", js.Value(p)) }
func (f *Functions) DeleteShader(s gl.Shader)   { f.ctx.Call("deleteShader", js.Value(s)) }
func (f *Functions) DeleteTexture(v gl.Texture) { f.ctx.Call("deleteTexture", js.Value(v)) }
func (f *Functions) DeleteVertexArray(a gl.VertexArray) {
	f.ctx.Call("deleteVertexArray", js.Value(a))
}
func (f *Functions) Disable(cap gl.Enum) { f.ctx.Call("disable", int(cap)) }
func (f *Functions) DrawArrays(mode gl.Enum, first, count int) {
	f.ctx.Call("drawArrays", int(mode), first, count)
}
func (f *Functions) Enable(cap gl.Enum) { f.ctx.Call("enable", int(cap)) }
func (f *Functions) FramebufferTexture2D(target, attachment, texTarget gl.Enum, t gl.Texture, level int) {
	f.ctx.Call("framebufferTexture2D", int(target), int(attachment), int(texTarget), js.Value(t), level)
}
func (f *Functions) GenerateMipmap(target gl.Enum) { f.ctx.Call("generateMipmap", int(target)) }
func (f *Functions) GetBinding(pname gl.Enum) gl.Object {
	return gl.Object(f.ctx.Call("getParameter", int(pname)))
}
func (f *Functions) GetError() gl.Enum { return gl.Enum(f.ctx.Call("getError").Int()) }

// GetExtension enables the extension on the context; webgl extensions
// are inert until requested.
func (f *Functions) GetExtension(name string) bool {
	if coreExtensions[name] {
		return true
	}
	if _, ok := f.extensions[name]; ok {
		return true
	}
	ext := f.ctx.Call("getExtension", name)
	if ext.IsNull() || ext.IsUndefined() {
		return false
	}
	f.extensions[name] = ext
	return true
}

func (f *Functions) GetFloat(pname gl.Enum) float32 {
	v := f.ctx.Call("getParameter", int(pname))
	if v.Type() != js.TypeNumber {
		return 0
	}
	return float32(v.Float())
}

func (f *Functions) GetInteger(pname gl.Enum) int {
	v := f.ctx.Call("getParameter", int(pname))
	if v.Type() != js.TypeNumber {
		return 0
	}
	return v.Int()
}

func (f *Functions) GetInteger4(pname gl.Enum) [4]int {
	v := f.ctx.Call("getParameter", int(pname))
	return [4]int{v.Index(0).Int(), v.Index(1).Int(), v.Index(2).Int(), v.Index(3).Int()}
}

func (f *Functions) GetProgrami(p gl.Program, pname gl.Enum) int {
	return paramVal(f.ctx.Call("getProgramParameter", js.Value(p), int(pname)))
}

func (f *Functions) GetProgramInfoLog(p gl.Program) string {
	return f.ctx.Call("getProgramInfoLog", js.Value(p)).String()
}

func (f *Functions) GetShaderi(s gl.Shader, pname gl.Enum) int {
	return paramVal(f.ctx.Call("getShaderParameter", js.Value(s), int(pname)))
}

func (f *Functions) GetShaderInfoLog(s gl.Shader) string {
	return f.ctx.Call("getShaderInfoLog", js.Value(s)).String()
}

func (f *Functions) GetUniformLocation(p gl.Program, name string) gl.Uniform {
	return gl.Uniform(f.ctx.Call("getUniformLocation", js.Value(p), name))
}

func (f *Functions) LinkProgram(p gl.Program) { f.ctx.Call("linkProgram", js.Value(p)) }
func (f *Functions) ShaderSource(s gl.Shader, src string) {
	f.ctx.Call("shaderSource", js.Value(s), src)
}

func (f *Functions) SupportedExtensions() []string {
	list := f.ctx.Call("getSupportedExtensions")
	if list.IsNull() {
		return nil
	}
	exts := make([]string, list.Length())
	for i := range exts {
		exts[i] = list.Index(i).String()
	}
	return exts
}

func (f *Functions) TexImage2D(target gl.Enum, level int, internalFormat gl.Enum, width, height int, format, ty gl.Enum, data []byte) {
	switch {
	case internalFormat == gl.RGBA && ty == gl.FLOAT:
		internalFormat = gl.RGBA32F
	case internalFormat == gl.RGBA && ty == gl.HALF_FLOAT:
		internalFormat = gl.RGBA16F
	case internalFormat == gl.DEPTH_COMPONENT && ty == gl.UNSIGNED_INT:
		internalFormat = gl.DEPTH_COMPONENT24
	case internalFormat == gl.DEPTH_COMPONENT && ty == gl.UNSIGNED_SHORT:
		internalFormat = gl.DEPTH_COMPONENT16
	}

	pixels := js.Null()
	if len(data) > 0 {
		pixels = f.uint8Array.New(len(data))
		js.CopyBytesToJS(pixels, data)
	}
	f.ctx.Call("texImage2D", int(target), level, int(internalFormat), width, height, 0, int(format), int(ty), pixels)
}

func (f *Functions) TexParameterf(target, pname gl.Enum, param float32) {
	f.ctx.Call("texParameterf", int(target), int(pname), param)
}

func (f *Functions) TexParameteri(target, pname gl.Enum, param int) {
	f.ctx.Call("texParameteri", int(target), int(pname), param)
}

func (f *Functions) Uniform1f(dst gl.Uniform, v float32) { f.ctx.Call("uniform1f", js.Value(dst), v) }
func (f *Functions) Uniform1i(dst gl.Uniform, v int)     { f.ctx.Call("uniform1i", js.Value(dst), v) }
func (f *Functions) Uniform2f(dst gl.Uniform, v0, v1 float32) {
	f.ctx.Call("uniform2f", js.Value(dst), v0, v1)
}
func (f *Functions) Uniform3f(dst gl.Uniform, v0, v1, v2 float32) {
	f.ctx.Call("uniform3f", js.Value(dst), v0, v1, v2)
}
func (f *Functions) Uniform4f(dst gl.Uniform, v0, v1, v2, v3 float32) {
	f.ctx.Call("uniform4f", js.Value(dst), v0, v1, v2, v3)
}

func (f *Functions) UniformMatrix3fv(dst gl.Uniform, data []float32) {
	f.ctx.Call("uniformMatrix3fv", js.Value(dst), false, f.floats(data))
}

func (f *Functions) UniformMatrix4fv(dst gl.Uniform, data []float32) {
	f.ctx.Call("uniformMatrix4fv", js.Value(dst), false, f.floats(data))
}

func (f *Functions) UseProgram(p gl.Program) { f.ctx.Call("useProgram", js.Value(p)) }
func (f *Functions) Viewport(x, y, width, height int) {
	f.ctx.Call("viewport", x, y, width, height)
}

// floats copies data into a reused Float32Array view of matching length.
func (f *Functions) floats(data []float32) js.Value {
	if f.float32Buf.Length() < len(data) {
		f.float32Buf = f.float32Array.New(len(data))
	}
	for i, v := range data {
		f.float32Buf.SetIndex(i, v)
	}
	return f.float32Buf.Call("subarray", 0, len(data))
}

func paramVal(v js.Value) int {
	switch v.Type() {
	case js.TypeBoolean:
		if v.Bool() {
			return gl.TRUE
		}
		return 0
	case js.TypeNumber:
		return v.Int()
	default:
		return 0
	}
}
