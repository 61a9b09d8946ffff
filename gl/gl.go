/*
	graphics api function table

	Functions is the subset of OpenGL ES 3 / WebGL2 the engine talks to.
	Implementations:
		glcore   desktop OpenGL 3.3 core (go-gl)
		webgl    browser WebGL2 (syscall/js)
		headless in-memory state machine

	All calls must happen on the thread that owns the context.
*/
package gl

type (
	Enum uint
)

const (
	NONE = 0
	TRUE = 1

	// errors
	NO_ERROR          = 0x0
	INVALID_ENUM      = 0x500
	INVALID_VALUE     = 0x501
	INVALID_OPERATION = 0x502

	// clear
	COLOR_BUFFER_BIT = 0x4000
	DEPTH_BUFFER_BIT = 0x100

	// capabilities
	BLEND      = 0xbe2
	CULL_FACE  = 0xb44
	DEPTH_TEST = 0xb71

	// queries
	CURRENT_PROGRAM                  = 0x8b8d
	EXTENSIONS                       = 0x1f03
	FRAMEBUFFER_BINDING              = 0x8ca6
	MAX_COMBINED_TEXTURE_IMAGE_UNITS = 0x8b4d
	MAX_TEXTURE_SIZE                 = 0xd33
	NUM_EXTENSIONS                   = 0x821d
	TEXTURE_BINDING_2D               = 0x8069
	TEXTURE_BINDING_CUBE_MAP         = 0x8514
	VIEWPORT                         = 0xba2

	// shaders
	COMPILE_STATUS  = 0x8b81
	FRAGMENT_SHADER = 0x8b30
	LINK_STATUS     = 0x8b82
	VERTEX_SHADER   = 0x8b31

	// primitives
	TRIANGLES      = 0x4
	TRIANGLE_STRIP = 0x5

	// data types
	FLOAT          = 0x1406
	HALF_FLOAT     = 0x140b
	UNSIGNED_BYTE  = 0x1401
	UNSIGNED_INT   = 0x1405
	UNSIGNED_SHORT = 0x1403

	// formats
	DEPTH_COMPONENT   = 0x1902
	DEPTH_COMPONENT16 = 0x81a5
	DEPTH_COMPONENT24 = 0x81a6
	RGB               = 0x1907
	RGBA              = 0x1908
	RGBA8             = 0x8058
	RGBA16F           = 0x881a
	RGBA32F           = 0x8814

	// textures
	TEXTURE_2D                  = 0xde1
	TEXTURE_CUBE_MAP            = 0x8513
	TEXTURE_CUBE_MAP_POSITIVE_X = 0x8515
	TEXTURE_CUBE_MAP_NEGATIVE_X = 0x8516
	TEXTURE_CUBE_MAP_POSITIVE_Y = 0x8517
	TEXTURE_CUBE_MAP_NEGATIVE_Y = 0x8518
	TEXTURE_CUBE_MAP_POSITIVE_Z = 0x8519
	TEXTURE_CUBE_MAP_NEGATIVE_Z = 0x851a
	TEXTURE0                    = 0x84c0

	TEXTURE_MAG_FILTER = 0x2800
	TEXTURE_MIN_FILTER = 0x2801
	TEXTURE_WRAP_S     = 0x2802
	TEXTURE_WRAP_T     = 0x2803
	TEXTURE_WRAP_R     = 0x8072

	NEAREST                = 0x2600
	LINEAR                 = 0x2601
	NEAREST_MIPMAP_NEAREST = 0x2700
	LINEAR_MIPMAP_NEAREST  = 0x2701
	NEAREST_MIPMAP_LINEAR  = 0x2702
	LINEAR_MIPMAP_LINEAR   = 0x2703

	REPEAT          = 0x2901
	CLAMP_TO_EDGE   = 0x812f
	MIRRORED_REPEAT = 0x8370

	// EXT_texture_filter_anisotropic
	TEXTURE_MAX_ANISOTROPY_EXT     = 0x84fe
	MAX_TEXTURE_MAX_ANISOTROPY_EXT = 0x84ff

	// framebuffers
	FRAMEBUFFER                               = 0x8d40
	COLOR_ATTACHMENT0                         = 0x8ce0
	DEPTH_ATTACHMENT                          = 0x8d00
	FRAMEBUFFER_COMPLETE                      = 0x8cd5
	FRAMEBUFFER_INCOMPLETE_ATTACHMENT         = 0x8cd6
	FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT = 0x8cd7
	FRAMEBUFFER_INCOMPLETE_DIMENSIONS         = 0x8cd9
	FRAMEBUFFER_INCOMPLETE_DRAW_BUFFER        = 0x8cdb
	FRAMEBUFFER_INCOMPLETE_READ_BUFFER        = 0x8cdc
	FRAMEBUFFER_UNSUPPORTED                   = 0x8cdd
)

// CubeFaces lists the cube map face targets in upload order.
var CubeFaces = [6]Enum{
	TEXTURE_CUBE_MAP_POSITIVE_X,
	TEXTURE_CUBE_MAP_NEGATIVE_X,
	TEXTURE_CUBE_MAP_POSITIVE_Y,
	TEXTURE_CUBE_MAP_NEGATIVE_Y,
	TEXTURE_CUBE_MAP_POSITIVE_Z,
	TEXTURE_CUBE_MAP_NEGATIVE_Z,
}

type Functions interface {
	ActiveTexture(texture Enum)
	AttachShader(p Program, s Shader)
	BindFramebuffer(target Enum, fb Framebuffer)
	BindTexture(target Enum, t Texture)
	BindVertexArray(a VertexArray)
	CheckFramebufferStatus(target Enum) Enum
	Clear(mask Enum)
	ClearColor(red, green, blue, alpha float32)
	ColorMask(red, green, blue, alpha bool)
	CompileShader(s Shader)
	CreateFramebuffer() Framebuffer
	CreateProgram() Program
	CreateShader(ty Enum) Shader
	CreateTexture() Texture
	CreateVertexArray() VertexArray
	DeleteFramebuffer(v Framebuffer)
	DeleteProgram(p Program)
	DeleteShader(s Shader)
	DeleteTexture(v Texture)
	DeleteVertexArray(a VertexArray)
	Disable(cap Enum)
	DrawArrays(mode Enum, first, count int)
	DrawBuffers(bufs []Enum)
	Enable(cap Enum)
	FramebufferTexture2D(target, attachment, texTarget Enum, t Texture, level int)
	GenerateMipmap(target Enum)
	GetBinding(pname Enum) Object
	GetError() Enum
	GetExtension(name string) bool
	GetFloat(pname Enum) float32
	GetInteger(pname Enum) int
	GetInteger4(pname Enum) [4]int
	GetProgrami(p Program, pname Enum) int
	GetProgramInfoLog(p Program) string
	GetShaderi(s Shader, pname Enum) int
	GetShaderInfoLog(s Shader) string
	GetUniformLocation(p Program, name string) Uniform
	LinkProgram(p Program)
	ReadBuffer(src Enum)
	ShaderSource(s Shader, src string)
	SupportedExtensions() []string
	TexImage2D(target Enum, level int, internalFormat Enum, width, height int, format, ty Enum, data []byte)
	TexParameterf(target, pname Enum, param float32)
	TexParameteri(target, pname Enum, param int)
	Uniform1f(dst Uniform, v float32)
	Uniform1i(dst Uniform, v int)
	Uniform2f(dst Uniform, v0, v1 float32)
	Uniform3f(dst Uniform, v0, v1, v2 float32)
	Uniform4f(dst Uniform, v0, v1, v2, v3 float32)
	UniformMatrix3fv(dst Uniform, data []float32)
	UniformMatrix4fv(dst Uniform, data []float32)
	UseProgram(p Program)
	Viewport(x, y, width, height int)
}
