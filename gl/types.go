//go:build !js

package gl

type (
	Framebuffer struct{ V uint }
	Program     struct{ V uint }
	Shader      struct{ V uint }
	Texture     struct{ V uint }
	Uniform     struct{ V int }
	VertexArray struct{ V uint }
	Object      struct{ V uint }
)

// zero values name the default framebuffer, no program and no texture
var (
	NoFramebuffer Framebuffer
	NoProgram     Program
	NoTexture     Texture
	NoVertexArray VertexArray
	NoUniform     = Uniform{V: -1}
)

func (f Framebuffer) Valid() bool { return f.V != 0 }
func (p Program) Valid() bool     { return p.V != 0 }
func (s Shader) Valid() bool      { return s.V != 0 }
func (t Texture) Valid() bool     { return t.V != 0 }
func (u Uniform) Valid() bool     { return u.V != -1 }
func (a VertexArray) Valid() bool { return a.V != 0 }

func (t Texture) Equal(o Texture) bool         { return t.V == o.V }
func (f Framebuffer) Equal(o Framebuffer) bool { return f.V == o.V }
func (p Program) Equal(o Program) bool         { return p.V == o.V }
