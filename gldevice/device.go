//go:build !js

// Package gldevice implements graphics.Device on desktop OpenGL 4.1 core.
package gldevice

import (
	"fmt"
	"log"
	"strings"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goshadercanvas/graphics"
)

var glInitOnce sync.Once
var glInitErr error

// Device issues commands to the OpenGL context current on the calling
// thread.
type Device struct {
	// color attachments by framebuffer
	textures map[graphics.Handle]uint32
}

// New loads the OpenGL entry points. The caller's context must be current.
func New() (*Device, error) {
	glInitOnce.Do(func() {
		glInitErr = gl.Init()
		if glInitErr == nil {
			log.Printf("OpenGL version: %s", gl.GoStr(gl.GetString(gl.VERSION)))
		}
	})
	if glInitErr != nil {
		return nil, fmt.Errorf("%w: failed to initialize OpenGL: %v", graphics.ErrContextUnavailable, glInitErr)
	}
	return &Device{textures: make(map[graphics.Handle]uint32)}, nil
}

func (d *Device) Dialect() graphics.Dialect { return graphics.DialectGLSL410 }

func (d *Device) CreateShader(stage graphics.ShaderStage) (graphics.Handle, bool) {
	var t uint32 = gl.VERTEX_SHADER
	if stage == graphics.FragmentStage {
		t = gl.FRAGMENT_SHADER
	}
	sh := gl.CreateShader(t)
	return graphics.Handle(sh), sh != 0
}

func (d *Device) CompileShader(shader graphics.Handle, source string) (bool, string) {
	sh := uint32(shader)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(sh, 1, csources, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(sh, logLength, nil, gl.Str(logText))
		return false, strings.TrimRight(logText, "\x00")
	}
	return true, ""
}

func (d *Device) DeleteShader(shader graphics.Handle) {
	gl.DeleteShader(uint32(shader))
}

func (d *Device) CreateProgram() (graphics.Handle, bool) {
	p := gl.CreateProgram()
	return graphics.Handle(p), p != 0
}

func (d *Device) LinkProgram(program graphics.Handle, shaders ...graphics.Handle) (bool, string) {
	p := uint32(program)
	for _, sh := range shaders {
		gl.AttachShader(p, uint32(sh))
	}
	gl.LinkProgram(p)

	var status int32
	gl.GetProgramiv(p, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(p, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(p, logLength, nil, gl.Str(logText))
		return false, strings.TrimRight(logText, "\x00")
	}
	return true, ""
}

func (d *Device) UseProgram(program graphics.Handle) {
	gl.UseProgram(uint32(program))
}

func (d *Device) DeleteProgram(program graphics.Handle) {
	gl.DeleteProgram(uint32(program))
}

func (d *Device) UniformLocation(program graphics.Handle, name string) (graphics.UniformLocation, bool) {
	loc := gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00"))
	return graphics.UniformLocation(loc), loc >= 0
}

func (d *Device) AttribLocation(program graphics.Handle, name string) (uint32, bool) {
	loc := gl.GetAttribLocation(uint32(program), gl.Str(name+"\x00"))
	if loc < 0 {
		return 0, false
	}
	return uint32(loc), true
}

func (d *Device) CreateBuffer() (graphics.Handle, bool) {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	return graphics.Handle(vbo), vbo != 0
}

func (d *Device) BufferData(buffer graphics.Handle, data []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buffer))
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (d *Device) DeleteBuffer(buffer graphics.Handle) {
	vbo := uint32(buffer)
	gl.DeleteBuffers(1, &vbo)
}

func (d *Device) CreateVertexArray() (graphics.Handle, bool) {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return graphics.Handle(vao), vao != 0
}

func (d *Device) BindVertexArray(vao graphics.Handle) {
	gl.BindVertexArray(uint32(vao))
}

func (d *Device) VertexAttribPointer(index uint32, size int32) {
	gl.VertexAttribPointer(index, size, gl.FLOAT, false, 0, gl.PtrOffset(0))
}

func (d *Device) EnableVertexAttribArray(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (d *Device) DeleteVertexArray(vao graphics.Handle) {
	v := uint32(vao)
	gl.DeleteVertexArrays(1, &v)
}

func (d *Device) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *Device) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *Device) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Device) Uniform1f(loc graphics.UniformLocation, v float32) {
	gl.Uniform1f(int32(loc), v)
}

func (d *Device) Uniform2f(loc graphics.UniformLocation, x, y float32) {
	gl.Uniform2f(int32(loc), x, y)
}

func (d *Device) DrawTriangles(first, count int32) {
	gl.DrawArrays(gl.TRIANGLES, first, count)
}

var _ graphics.OffscreenDevice = (*Device)(nil)
