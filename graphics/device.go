package graphics

import "errors"

// ErrContextUnavailable is returned when a surface cannot provide a
// hardware accelerated context of the required version.
var ErrContextUnavailable = errors.New("rendering context unavailable")

// Handle names a GPU object created by a Device.
type Handle uint32

// UniformLocation is a device specific uniform slot.
type UniformLocation int32

// ShaderStage selects the pipeline stage of a shader object.
type ShaderStage uint8

const (
	VertexStage ShaderStage = iota + 1
	FragmentStage
)

func (s ShaderStage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	}
	return "unknown"
}

// Dialect is the shading language flavour a Device compiles.
type Dialect uint8

const (
	// DialectESSL300 is GLSL ES 3.00 as accepted by WebGL2 and GLES3.
	DialectESSL300 Dialect = iota
	// DialectGLSL410 is desktop OpenGL 4.1 core.
	DialectGLSL410
)

func (d Dialect) String() string {
	if d == DialectGLSL410 {
		return "glsl410"
	}
	return "essl300"
}

// Device is the subset of a GL-class API the renderer issues. Creation
// methods report false when the driver could not allocate the object.
type Device interface {
	Dialect() Dialect

	CreateShader(stage ShaderStage) (Handle, bool)
	// CompileShader compiles source into shader and returns the driver's
	// status and info log.
	CompileShader(shader Handle, source string) (bool, string)
	DeleteShader(shader Handle)

	CreateProgram() (Handle, bool)
	// LinkProgram attaches shaders to program, links it and returns the
	// driver's status and info log.
	LinkProgram(program Handle, shaders ...Handle) (bool, string)
	UseProgram(program Handle)
	DeleteProgram(program Handle)

	UniformLocation(program Handle, name string) (UniformLocation, bool)
	AttribLocation(program Handle, name string) (uint32, bool)

	CreateBuffer() (Handle, bool)
	// BufferData uploads data as static vertex data into buffer.
	BufferData(buffer Handle, data []float32)
	DeleteBuffer(buffer Handle)

	CreateVertexArray() (Handle, bool)
	BindVertexArray(vao Handle)
	// VertexAttribPointer describes attribute index as size tightly packed
	// floats read from the currently bound buffer.
	VertexAttribPointer(index uint32, size int32)
	EnableVertexAttribArray(index uint32)
	DeleteVertexArray(vao Handle)

	Viewport(width, height int)
	ClearColor(r, g, b, a float32)
	// Clear clears the color buffer.
	Clear()
	Uniform1f(loc UniformLocation, v float32)
	Uniform2f(loc UniformLocation, x, y float32)
	// DrawTriangles draws count vertices from the bound vertex array.
	DrawTriangles(first, count int32)
}

// OffscreenDevice is a Device that can render into framebuffer objects and
// read pixels back.
type OffscreenDevice interface {
	Device
	// CreateFramebuffer allocates an RGBA8 color target of the given size.
	CreateFramebuffer(width, height int) (Handle, error)
	// BindFramebuffer binds fbo for drawing; zero binds the default target.
	BindFramebuffer(fbo Handle)
	// ReadPixels reads the bound framebuffer as tightly packed RGBA8 rows,
	// bottom row first, into dst.
	ReadPixels(width, height int, dst []byte)
	DeleteFramebuffer(fbo Handle)
}
