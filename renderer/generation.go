package renderer

import (
	"github.com/richinsley/goshadercanvas/graphics"
	"github.com/richinsley/goshadercanvas/shader"
)

// quadVertices covers clip space with two triangles, three floats per vertex.
var quadVertices = []float32{
	-1.0, -1.0, 0.0, 1.0, -1.0, 0.0, -1.0, 1.0, 0.0,
	-1.0, 1.0, 0.0, 1.0, 1.0, 0.0, 1.0, -1.0, 0.0,
}

const quadComponents = 3

var quadVertexCount = int32(len(quadVertices) / quadComponents)

// Binding is a uniform location resolved against one program. Writes through
// a Binding that is not Valid are dropped.
type Binding struct {
	Location graphics.UniformLocation
	Valid    bool
}

// generation owns every GPU object created by one successful SetShader.
type generation struct {
	program graphics.Handle
	vao     graphics.Handle

	resolution Binding
	mouse      Binding
	time       Binding

	// releasers run in reverse order of acquisition.
	releasers []func()
}

func (g *generation) onRelease(f func()) {
	g.releasers = append(g.releasers, f)
}

func (g *generation) release() {
	for i := len(g.releasers) - 1; i >= 0; i-- {
		g.releasers[i]()
	}
	g.releasers = nil
}

// build creates a complete generation for body. On error every object it
// created has already been deleted.
func (r *Renderer) build(body string) (*generation, error) {
	g := &generation{}
	if err := g.init(r, body); err != nil {
		g.release()
		return nil, err
	}
	return g, nil
}

func (g *generation) init(r *Renderer, body string) error {
	d := r.device
	fragSource, names, err := r.fragmentSource(body)
	if err != nil {
		return err
	}

	vs, err := g.compileShader(d, graphics.VertexStage, shader.VertexSource(d.Dialect()))
	if err != nil {
		return err
	}
	fs, err := g.compileShader(d, graphics.FragmentStage, fragSource)
	if err != nil {
		return err
	}

	program, ok := d.CreateProgram()
	if !ok {
		return &ProgramLinkError{Log: "unable to create program object"}
	}
	g.onRelease(func() { d.DeleteProgram(program) })
	if ok, infoLog := d.LinkProgram(program, vs, fs); !ok {
		return &ProgramLinkError{Log: infoLog}
	}
	g.program = program

	g.resolution = resolve(d, program, names, shader.ResolutionUniform)
	g.mouse = resolve(d, program, names, shader.MouseUniform)
	g.time = resolve(d, program, names, shader.TimeUniform)

	position, ok := d.AttribLocation(program, shader.PositionAttrib)
	if !ok {
		return &ProgramLinkError{Log: "attribute " + shader.PositionAttrib + " is not active"}
	}

	vbo, ok := d.CreateBuffer()
	if !ok {
		return &BufferAllocationError{}
	}
	g.onRelease(func() { d.DeleteBuffer(vbo) })
	d.BufferData(vbo, quadVertices)

	vao, ok := d.CreateVertexArray()
	if !ok {
		return &VertexArrayAllocationError{}
	}
	g.onRelease(func() { d.DeleteVertexArray(vao) })
	d.BindVertexArray(vao)
	d.VertexAttribPointer(position, quadComponents)
	d.EnableVertexAttribArray(position)
	g.vao = vao

	return nil
}

func (g *generation) compileShader(d graphics.Device, stage graphics.ShaderStage, source string) (graphics.Handle, error) {
	sh, ok := d.CreateShader(stage)
	if !ok {
		return 0, &ShaderCompileError{Stage: stage, Log: "unable to create shader object"}
	}
	g.onRelease(func() { d.DeleteShader(sh) })
	if ok, infoLog := d.CompileShader(sh, source); !ok {
		return 0, &ShaderCompileError{Stage: stage, Log: infoLog}
	}
	return sh, nil
}

// fragmentSource assembles body and runs it through the translator when one
// is configured. names is nil when uniforms keep their source names.
func (r *Renderer) fragmentSource(body string) (string, func(string) (string, bool), error) {
	if r.translator == nil {
		return shader.Assemble(r.device.Dialect(), body), nil, nil
	}
	res, err := r.translator.Translate(shader.Assemble(graphics.DialectESSL300, body), graphics.FragmentStage, r.device.Dialect())
	if err != nil {
		return "", nil, &ShaderCompileError{Stage: graphics.FragmentStage, Log: err.Error()}
	}
	return res.Code, res.Lookup, nil
}

func resolve(d graphics.Device, program graphics.Handle, names func(string) (string, bool), name string) Binding {
	if names != nil {
		mapped, ok := names(name)
		if !ok {
			return Binding{}
		}
		name = mapped
	}
	loc, ok := d.UniformLocation(program, name)
	return Binding{Location: loc, Valid: ok}
}
