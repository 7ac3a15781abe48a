// Package graphicstest provides an in-memory graphics.Device that records
// every command, for tests that cannot open a GL context.
package graphicstest

import (
	"fmt"
	"strings"

	"github.com/richinsley/goshadercanvas/graphics"
)

// Call is one recorded device command.
type Call struct {
	Name string
	Args []any
}

type object struct {
	kind   string
	stage  graphics.ShaderStage
	source string
	// uniforms of a linked program, by name.
	uniforms map[string]graphics.UniformLocation
}

// Device emulates a driver closely enough for renderer tests: sources with
// unbalanced braces fail to compile, and a uniform is only active when the
// linked fragment source mentions it more than once.
type Device struct {
	DialectValue graphics.Dialect

	FailCreateShader bool
	FailLink         string
	FailBuffer       bool
	FailVertexArray  bool

	Calls []Call

	ClearColorValue [4]float32
	Uniforms        map[graphics.UniformLocation][]float32
	Program         graphics.Handle
	VertexArray     graphics.Handle
	Framebuffer     graphics.Handle
	ViewportSize    [2]int

	objects     map[graphics.Handle]*object
	next        graphics.Handle
	nextUniform graphics.UniformLocation
}

func NewDevice() *Device {
	return &Device{
		Uniforms: make(map[graphics.UniformLocation][]float32),
		objects:  make(map[graphics.Handle]*object),
	}
}

func (d *Device) record(name string, args ...any) {
	d.Calls = append(d.Calls, Call{Name: name, Args: args})
}

func (d *Device) alloc(o *object) graphics.Handle {
	d.next++
	d.objects[d.next] = o
	return d.next
}

func (d *Device) free(h graphics.Handle, kind string) {
	if o, ok := d.objects[h]; ok && o.kind == kind {
		delete(d.objects, h)
	}
}

// Count returns how many times the named command was issued.
func (d *Device) Count(name string) int {
	n := 0
	for _, c := range d.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls but keeps object state.
func (d *Device) Reset() {
	d.Calls = nil
}

// Live returns the number of objects of kind that have not been deleted. An
// empty kind counts every object.
func (d *Device) Live(kind string) int {
	n := 0
	for _, o := range d.objects {
		if kind == "" || o.kind == kind {
			n++
		}
	}
	return n
}

// Uniform returns the last value written to name in the current program.
func (d *Device) Uniform(name string) ([]float32, bool) {
	p, ok := d.objects[d.Program]
	if !ok {
		return nil, false
	}
	loc, ok := p.uniforms[name]
	if !ok {
		return nil, false
	}
	v, ok := d.Uniforms[loc]
	return v, ok
}

func (d *Device) Dialect() graphics.Dialect { return d.DialectValue }

func (d *Device) CreateShader(stage graphics.ShaderStage) (graphics.Handle, bool) {
	d.record("CreateShader", stage)
	if d.FailCreateShader {
		return 0, false
	}
	return d.alloc(&object{kind: "shader", stage: stage}), true
}

func (d *Device) CompileShader(shader graphics.Handle, source string) (bool, string) {
	d.record("CompileShader", shader)
	o, ok := d.objects[shader]
	if !ok {
		return false, "invalid shader handle"
	}
	o.source = source
	if open, closed := strings.Count(source, "{"), strings.Count(source, "}"); open != closed {
		return false, fmt.Sprintf("ERROR: 0:%d: '}' : syntax error", strings.Count(source, "\n"))
	}
	return true, ""
}

func (d *Device) DeleteShader(shader graphics.Handle) {
	d.record("DeleteShader", shader)
	d.free(shader, "shader")
}

func (d *Device) CreateProgram() (graphics.Handle, bool) {
	d.record("CreateProgram")
	return d.alloc(&object{kind: "program"}), true
}

func (d *Device) LinkProgram(program graphics.Handle, shaders ...graphics.Handle) (bool, string) {
	d.record("LinkProgram", program)
	if d.FailLink != "" {
		return false, d.FailLink
	}
	p, ok := d.objects[program]
	if !ok {
		return false, "invalid program handle"
	}
	p.uniforms = make(map[string]graphics.UniformLocation)
	for _, sh := range shaders {
		o, ok := d.objects[sh]
		if !ok || o.kind != "shader" {
			return false, "invalid shader attached"
		}
		if o.stage != graphics.FragmentStage {
			continue
		}
		for _, name := range []string{"iResolution", "iMouse", "iTime"} {
			if strings.Count(o.source, name) > 1 {
				d.nextUniform++
				p.uniforms[name] = d.nextUniform
			}
		}
	}
	return true, ""
}

func (d *Device) UseProgram(program graphics.Handle) {
	d.record("UseProgram", program)
	d.Program = program
}

func (d *Device) DeleteProgram(program graphics.Handle) {
	d.record("DeleteProgram", program)
	d.free(program, "program")
}

func (d *Device) UniformLocation(program graphics.Handle, name string) (graphics.UniformLocation, bool) {
	p, ok := d.objects[program]
	if !ok {
		return 0, false
	}
	loc, ok := p.uniforms[name]
	return loc, ok
}

func (d *Device) AttribLocation(program graphics.Handle, name string) (uint32, bool) {
	return 0, name == "position"
}

func (d *Device) CreateBuffer() (graphics.Handle, bool) {
	d.record("CreateBuffer")
	if d.FailBuffer {
		return 0, false
	}
	return d.alloc(&object{kind: "buffer"}), true
}

func (d *Device) BufferData(buffer graphics.Handle, data []float32) {
	d.record("BufferData", buffer, len(data))
}

func (d *Device) DeleteBuffer(buffer graphics.Handle) {
	d.record("DeleteBuffer", buffer)
	d.free(buffer, "buffer")
}

func (d *Device) CreateVertexArray() (graphics.Handle, bool) {
	d.record("CreateVertexArray")
	if d.FailVertexArray {
		return 0, false
	}
	return d.alloc(&object{kind: "vertexarray"}), true
}

func (d *Device) BindVertexArray(vao graphics.Handle) {
	d.record("BindVertexArray", vao)
	d.VertexArray = vao
}

func (d *Device) VertexAttribPointer(index uint32, size int32) {
	d.record("VertexAttribPointer", index, size)
}

func (d *Device) EnableVertexAttribArray(index uint32) {
	d.record("EnableVertexAttribArray", index)
}

func (d *Device) DeleteVertexArray(vao graphics.Handle) {
	d.record("DeleteVertexArray", vao)
	d.free(vao, "vertexarray")
}

func (d *Device) Viewport(width, height int) {
	d.record("Viewport", width, height)
	d.ViewportSize = [2]int{width, height}
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.record("ClearColor", r, g, b, a)
	d.ClearColorValue = [4]float32{r, g, b, a}
}

func (d *Device) Clear() {
	d.record("Clear")
}

func (d *Device) Uniform1f(loc graphics.UniformLocation, v float32) {
	d.record("Uniform1f", loc, v)
	d.Uniforms[loc] = []float32{v}
}

func (d *Device) Uniform2f(loc graphics.UniformLocation, x, y float32) {
	d.record("Uniform2f", loc, x, y)
	d.Uniforms[loc] = []float32{x, y}
}

func (d *Device) DrawTriangles(first, count int32) {
	d.record("DrawTriangles", first, count)
}

func (d *Device) CreateFramebuffer(width, height int) (graphics.Handle, error) {
	d.record("CreateFramebuffer", width, height)
	return d.alloc(&object{kind: "framebuffer"}), nil
}

func (d *Device) BindFramebuffer(fbo graphics.Handle) {
	d.record("BindFramebuffer", fbo)
	d.Framebuffer = fbo
}

// ReadPixels fills dst with the last clear color.
func (d *Device) ReadPixels(width, height int, dst []byte) {
	d.record("ReadPixels", width, height)
	var px [4]byte
	for i, c := range d.ClearColorValue {
		px[i] = byte(c * 255)
	}
	for i := 0; i+4 <= len(dst) && i < width*height*4; i += 4 {
		copy(dst[i:i+4], px[:])
	}
}

func (d *Device) DeleteFramebuffer(fbo graphics.Handle) {
	d.record("DeleteFramebuffer", fbo)
	d.free(fbo, "framebuffer")
}

var _ graphics.OffscreenDevice = (*Device)(nil)
