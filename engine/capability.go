package engine

import (
	log "github.com/sirupsen/logrus"

	"github.com/microwerx/libxor/gl"
)

// extension names as exposed by webgl
const (
	ExtAnisotropic     = "EXT_texture_filter_anisotropic"
	ExtUint32Indices   = "OES_element_index_uint"
	ExtDerivatives     = "OES_standard_derivatives"
	ExtFloatTextures   = "OES_texture_float"
	ExtFloatLinear     = "OES_texture_float_linear"
	ExtDepthTextures   = "WEBGL_depth_texture"
	ExtFloatRenderable = "EXT_color_buffer_float"
)

// DefaultExtensions are requested by every context unless overridden.
var DefaultExtensions = []string{
	ExtAnisotropic,
	ExtUint32Indices,
	ExtDerivatives,
	ExtFloatTextures,
	ExtFloatLinear,
	ExtDepthTextures,
	ExtFloatRenderable,
}

// Capabilities is resolved once when the context is created. Systems branch
// on it instead of querying the driver.
type Capabilities struct {
	Anisotropic     bool
	MaxAnisotropy   float32
	Uint32Indices   bool
	Derivatives     bool
	FloatTextures   bool
	FloatLinear     bool
	FloatRenderable bool // float textures usable as color attachments
	DepthTextures   bool
	MaxTextureUnits int
	MaxTextureSize  int
}

func (c *Context) probe(names []string) {
	c.EnableExtensions(names...)

	caps := Capabilities{
		Anisotropic:     c.GetExtension(ExtAnisotropic),
		Uint32Indices:   c.GetExtension(ExtUint32Indices),
		Derivatives:     c.GetExtension(ExtDerivatives),
		FloatTextures:   c.GetExtension(ExtFloatTextures),
		FloatLinear:     c.GetExtension(ExtFloatLinear),
		DepthTextures:   c.GetExtension(ExtDepthTextures),
		MaxTextureUnits: c.gl.GetInteger(gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS),
		MaxTextureSize:  c.gl.GetInteger(gl.MAX_TEXTURE_SIZE),
	}
	caps.FloatRenderable = caps.FloatTextures && c.GetExtension(ExtFloatRenderable)
	if caps.Anisotropic {
		caps.MaxAnisotropy = c.gl.GetFloat(gl.MAX_TEXTURE_MAX_ANISOTROPY_EXT)
	}
	if caps.MaxTextureUnits <= 0 {
		caps.MaxTextureUnits = 8
	}
	c.caps = caps

	c.log.WithFields(log.Fields{
		"anisotropy": caps.MaxAnisotropy,
		"float":      caps.FloatRenderable,
		"units":      caps.MaxTextureUnits,
	}).Debug("capabilities resolved")
}

// EnableExtensions tries each extension and reports whether all of them are
// available. Missing extensions are logged, never fatal.
func (c *Context) EnableExtensions(names ...string) bool {
	all := true
	for _, name := range names {
		if c.extensions[name] {
			continue
		}
		if !c.gl.GetExtension(name) {
			c.log.WithField("extension", name).Warn("extension unavailable")
			all = false
			continue
		}
		c.extensions[name] = true
	}
	return all
}

// GetExtension reports whether name was enabled. Absence is a normal state,
// every caller has a fallback path.
func (c *Context) GetExtension(name string) bool {
	return c.extensions[name]
}

func (c *Context) Capabilities() Capabilities {
	return c.caps
}

// Width is the current drawable width, at least 1.
func (c *Context) Width() int {
	w, _ := c.surface.Size()
	if w < 1 {
		return 1
	}
	return w
}

// Height is the current drawable height, at least 1.
func (c *Context) Height() int {
	_, h := c.surface.Size()
	if h < 1 {
		return 1
	}
	return h
}

func (c *Context) AspectRatio() float32 {
	return float32(c.Width()) / float32(c.Height())
}
