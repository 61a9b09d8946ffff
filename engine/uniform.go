package engine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/microwerx/libxor/gl"
)

// Uniform resolves the location of name once and caches it, missing
// uniforms included. Setters on unusable pipelines do nothing.
func (p *Pipeline) Uniform(name string) gl.Uniform {
	if !p.Usable() {
		return gl.NoUniform
	}
	if loc, found := p.uniforms[name]; found {
		return loc
	}
	loc := p.gl.GetUniformLocation(p.program, name)
	p.uniforms[name] = loc
	return loc
}

func (p *Pipeline) SetInt(name string, v int) {
	if loc := p.Uniform(name); loc.Valid() {
		p.gl.Uniform1i(loc, v)
	}
}

func (p *Pipeline) SetBool(name string, v bool) {
	if v {
		p.SetInt(name, 1)
	} else {
		p.SetInt(name, 0)
	}
}

// SetSampler points a sampler uniform at a texture unit.
func (p *Pipeline) SetSampler(name string, unit int) {
	p.SetInt(name, unit)
}

func (p *Pipeline) SetFloat(name string, v float32) {
	if loc := p.Uniform(name); loc.Valid() {
		p.gl.Uniform1f(loc, v)
	}
}

func (p *Pipeline) SetVec2(name string, v mgl32.Vec2) {
	if loc := p.Uniform(name); loc.Valid() {
		p.gl.Uniform2f(loc, v[0], v[1])
	}
}

func (p *Pipeline) SetVec3(name string, v mgl32.Vec3) {
	if loc := p.Uniform(name); loc.Valid() {
		p.gl.Uniform3f(loc, v[0], v[1], v[2])
	}
}

func (p *Pipeline) SetVec4(name string, v mgl32.Vec4) {
	if loc := p.Uniform(name); loc.Valid() {
		p.gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	}
}

func (p *Pipeline) SetMat3(name string, v mgl32.Mat3) {
	if loc := p.Uniform(name); loc.Valid() {
		p.gl.UniformMatrix3fv(loc, v[:])
	}
}

func (p *Pipeline) SetMat4(name string, v mgl32.Mat4) {
	if loc := p.Uniform(name); loc.Valid() {
		p.gl.UniformMatrix4fv(loc, v[:])
	}
}

// SetUniform sets name from any supported value type.
func (p *Pipeline) SetUniform(name string, value interface{}) error {
	switch t := value.(type) {
	default:
		return fmt.Errorf("%v has unknown type: %T", name, t)

	case int:
		p.SetInt(name, t)
	case bool:
		p.SetBool(name, t)
	case float64:
		p.SetFloat(name, float32(t))
	case float32:
		p.SetFloat(name, t)

	case mgl32.Mat3:
		p.SetMat3(name, t)
	case mgl32.Mat4:
		p.SetMat4(name, t)

	case mgl32.Vec2:
		p.SetVec2(name, t)
	case mgl32.Vec3:
		p.SetVec3(name, t)
	case mgl32.Vec4:
		p.SetVec4(name, t)
	}

	return nil
}
