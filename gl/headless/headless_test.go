//go:build !js

package headless

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microwerx/libxor/gl"
)

func colorTarget(f *Functions, ty gl.Enum, w, h int) gl.Framebuffer {
	t := f.CreateTexture()
	f.BindTexture(gl.TEXTURE_2D, t)
	f.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, w, h, gl.RGBA, ty, nil)
	fb := f.CreateFramebuffer()
	f.BindFramebuffer(gl.FRAMEBUFFER, fb)
	f.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t, 0)
	return fb
}

func TestFramebufferStatus(t *testing.T) {
	tests := []struct {
		name     string
		float    bool
		ty       gl.Enum
		w, h     int
		expected gl.Enum
	}{
		{"uint8", false, gl.UNSIGNED_BYTE, 4, 4, gl.FRAMEBUFFER_COMPLETE},
		{"float renderable", true, gl.FLOAT, 4, 4, gl.FRAMEBUFFER_COMPLETE},
		{"float unsupported", false, gl.FLOAT, 4, 4, gl.FRAMEBUFFER_UNSUPPORTED},
		{"empty image", false, gl.UNSIGNED_BYTE, 0, 4, gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT},
	}

	for _, c := range tests {
		cfg := DefaultConfig()
		cfg.FloatRenderable = c.float
		f := New(cfg)
		colorTarget(f, c.ty, c.w, c.h)
		if r := f.CheckFramebufferStatus(gl.FRAMEBUFFER); r != c.expected {
			t.Errorf("%s: status %#x instead of %#x", c.name, r, c.expected)
		}
	}
}

func TestFramebufferMissingAttachment(t *testing.T) {
	f := New(DefaultConfig())
	f.BindFramebuffer(gl.FRAMEBUFFER, f.CreateFramebuffer())
	assert.Equal(t, gl.Enum(gl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT), f.CheckFramebufferStatus(gl.FRAMEBUFFER))

	f.BindFramebuffer(gl.FRAMEBUFFER, gl.NoFramebuffer)
	assert.Equal(t, gl.Enum(gl.FRAMEBUFFER_COMPLETE), f.CheckFramebufferStatus(gl.FRAMEBUFFER))
}

func TestFramebufferDepthOnly(t *testing.T) {
	f := New(DefaultConfig())
	d := f.CreateTexture()
	f.BindTexture(gl.TEXTURE_2D, d)
	f.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT, 4, 4, gl.DEPTH_COMPONENT, gl.UNSIGNED_INT, nil)
	fb := f.CreateFramebuffer()
	f.BindFramebuffer(gl.FRAMEBUFFER, fb)
	f.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, d, 0)

	assert.Equal(t, gl.Enum(gl.FRAMEBUFFER_INCOMPLETE_DRAW_BUFFER), f.CheckFramebufferStatus(gl.FRAMEBUFFER))
	f.DrawBuffers([]gl.Enum{gl.NONE})
	assert.Equal(t, gl.Enum(gl.FRAMEBUFFER_INCOMPLETE_READ_BUFFER), f.CheckFramebufferStatus(gl.FRAMEBUFFER))
	f.ReadBuffer(gl.NONE)
	assert.Equal(t, gl.Enum(gl.FRAMEBUFFER_COMPLETE), f.CheckFramebufferStatus(gl.FRAMEBUFFER))

	draw, read := f.Buffers(fb)
	assert.Equal(t, gl.Enum(gl.NONE), draw)
	assert.Equal(t, gl.Enum(gl.NONE), read)
	assert.Equal(t, gl.Enum(gl.NO_ERROR), f.GetError())

	// the default framebuffer has no buffer selection to change
	f.BindFramebuffer(gl.FRAMEBUFFER, gl.NoFramebuffer)
	f.ReadBuffer(gl.NONE)
	assert.Equal(t, gl.Enum(gl.INVALID_OPERATION), f.GetError())
}

func build(f *Functions, vs, fs string) gl.Program {
	p := f.CreateProgram()
	for ty, src := range map[gl.Enum]string{gl.VERTEX_SHADER: vs, gl.FRAGMENT_SHADER: fs} {
		s := f.CreateShader(ty)
		f.ShaderSource(s, src)
		f.CompileShader(s)
		f.AttachShader(p, s)
	}
	f.LinkProgram(p)
	return p
}

func TestProgramLink(t *testing.T) {
	f := New(DefaultConfig())

	p := build(f, "void main(){}", "uniform float opacity; void main(){}")
	require.Equal(t, gl.TRUE, f.GetProgrami(p, gl.LINK_STATUS))

	bad := build(f, "void main(){}", "#error broken")
	assert.Equal(t, 0, f.GetProgrami(bad, gl.LINK_STATUS))
	assert.NotEmpty(t, f.GetProgramInfoLog(bad))

	empty := build(f, "", "void main(){}")
	assert.Equal(t, 0, f.GetProgrami(empty, gl.LINK_STATUS))
}

func TestUniforms(t *testing.T) {
	f := New(DefaultConfig())
	p := build(f, "void main(){}", "uniform float opacity; void main(){}")
	f.UseProgram(p)

	loc := f.GetUniformLocation(p, "opacity")
	require.True(t, loc.Valid())
	assert.False(t, f.GetUniformLocation(p, "missing").Valid())
	assert.Equal(t, 2, f.UniformLookups())

	f.Uniform1f(loc, 0.5)
	v, ok := f.UniformValue(p, "opacity")
	require.True(t, ok)
	assert.Equal(t, float32(0.5), v)

	// invalid locations are ignored
	f.Uniform1f(gl.Uniform{V: -1}, 1)
	assert.Equal(t, gl.Enum(gl.NO_ERROR), f.GetError())
}

func TestTextureBindings(t *testing.T) {
	f := New(DefaultConfig())
	tex := f.CreateTexture()

	f.ActiveTexture(gl.TEXTURE0 + 3)
	f.BindTexture(gl.TEXTURE_2D, tex)
	assert.Equal(t, tex, f.BoundTexture(3, gl.TEXTURE_2D))
	assert.Equal(t, gl.NoTexture, f.BoundTexture(0, gl.TEXTURE_2D))

	// target kind is fixed at first bind
	f.BindTexture(gl.TEXTURE_CUBE_MAP, tex)
	assert.Equal(t, gl.Enum(gl.INVALID_OPERATION), f.GetError())

	f.DeleteTexture(tex)
	assert.Equal(t, gl.NoTexture, f.BoundTexture(3, gl.TEXTURE_2D))
	textures, _, _, _ := f.Live()
	assert.Equal(t, 0, textures)
}
