//go:build js

package gl

import "syscall/js"

type (
	Framebuffer js.Value
	Program     js.Value
	Shader      js.Value
	Texture     js.Value
	Uniform     js.Value
	VertexArray js.Value
	Object      js.Value
)

var (
	NoFramebuffer = Framebuffer(js.Null())
	NoProgram     = Program(js.Null())
	NoTexture     = Texture(js.Null())
	NoVertexArray = VertexArray(js.Null())
	NoUniform     = Uniform(js.Null())
)

func valid(v js.Value) bool {
	return !v.IsUndefined() && !v.IsNull()
}

func (f Framebuffer) Valid() bool { return valid(js.Value(f)) }
func (p Program) Valid() bool     { return valid(js.Value(p)) }
func (s Shader) Valid() bool      { return valid(js.Value(s)) }
func (t Texture) Valid() bool     { return valid(js.Value(t)) }
func (u Uniform) Valid() bool     { return valid(js.Value(u)) }
func (a VertexArray) Valid() bool { return valid(js.Value(a)) }

func (t Texture) Equal(o Texture) bool         { return js.Value(t).Equal(js.Value(o)) }
func (f Framebuffer) Equal(o Framebuffer) bool { return js.Value(f).Equal(js.Value(o)) }
func (p Program) Equal(o Program) bool         { return js.Value(p).Equal(js.Value(o)) }
