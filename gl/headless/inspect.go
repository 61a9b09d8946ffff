//go:build !js

package headless

import "github.com/microwerx/libxor/gl"

// Accessors below read simulated state without counting as GL calls.

// Calls is the number of gl.Functions calls made so far.
func (f *Functions) Calls() int { return f.calls }

// UniformLookups counts GetUniformLocation calls.
func (f *Functions) UniformLookups() int { return f.lookups }

func (f *Functions) Clears() int { return f.clears }
func (f *Functions) Draws() int  { return f.draws }

func (f *Functions) Framebuffer() gl.Framebuffer { return gl.Framebuffer{V: f.framebuffer} }
func (f *Functions) Program() gl.Program         { return gl.Program{V: f.program} }
func (f *Functions) Viewport4() [4]int           { return f.viewport }
func (f *Functions) ColorMaskState() [4]bool     { return f.colorMask }
func (f *Functions) ClearColorState() [4]float32 { return f.clearColor }
func (f *Functions) Enabled(cap gl.Enum) bool    { return f.caps[cap] }
func (f *Functions) ActiveUnit() int             { return f.activeUnit }

// BoundTexture returns the texture bound to target on unit.
func (f *Functions) BoundTexture(unit int, target gl.Enum) gl.Texture {
	return gl.Texture{V: f.units[unit][target]}
}

// Texture returns a snapshot of a live texture object.
func (f *Functions) Texture(t gl.Texture) (TextureInfo, bool) {
	tex, ok := f.textures[t.V]
	if !ok {
		return TextureInfo{}, false
	}
	info := TextureInfo{
		Target:  tex.target,
		Images:  make(map[gl.Enum]Image, len(tex.images)),
		Params:  make(map[gl.Enum]float32, len(tex.params)),
		Mipmaps: tex.mipmaps,
	}
	for k, v := range tex.images {
		info.Images[k] = v
	}
	for k, v := range tex.params {
		info.Params[k] = v
	}
	return info, true
}

// Attachment returns the texture attached to a framebuffer attachment point.
func (f *Functions) Attachment(fb gl.Framebuffer, attachment gl.Enum) gl.Texture {
	if b, ok := f.framebuffers[fb.V]; ok {
		return gl.Texture{V: b.attachments[attachment]}
	}
	return gl.NoTexture
}

// Buffers returns the draw and read buffer selection of a framebuffer.
func (f *Functions) Buffers(fb gl.Framebuffer) (draw, read gl.Enum) {
	if b, ok := f.framebuffers[fb.V]; ok {
		return b.drawBuffer, b.readBuffer
	}
	return gl.NONE, gl.NONE
}

// UniformValue returns the last value set on a named uniform of p.
func (f *Functions) UniformValue(p gl.Program, name string) (interface{}, bool) {
	prog, ok := f.programs[p.V]
	if !ok {
		return nil, false
	}
	loc, ok := prog.uniforms[name]
	if !ok {
		return nil, false
	}
	v, ok := prog.values[loc]
	return v, ok
}

// Live counts live objects of each kind.
func (f *Functions) Live() (textures, framebuffers, programs, shaders int) {
	return len(f.textures), len(f.framebuffers), len(f.programs), len(f.shaders)
}

// Surface is a resizable stand-in for a window or canvas.
type Surface struct {
	W, H int
}

func (s *Surface) Size() (width, height int) { return s.W, s.H }
