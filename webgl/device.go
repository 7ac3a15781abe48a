//go:build js && wasm

// Package webgl implements graphics.Device and graphics.Context on a browser
// canvas through WebGL2.
package webgl

import (
	"fmt"
	"syscall/js"

	"github.com/richinsley/goshadercanvas/graphics"
)

type glConsts struct {
	vertexShader   js.Value
	fragmentShader js.Value
	compileStatus  js.Value
	linkStatus     js.Value
	arrayBuffer    js.Value
	staticDraw     js.Value
	floatType      js.Value
	triangles      js.Value
	colorBufferBit js.Value
	framebuffer    js.Value
	colorAttach0   js.Value
	texture2D      js.Value
	rgba8          js.Value
	rgba           js.Value
	unsignedByte   js.Value
}

// Device issues WebGL2 calls. JS objects are kept in tables so the renderer
// only sees integer handles.
type Device struct {
	gl       js.Value
	consts   glConsts
	objects  map[graphics.Handle]js.Value
	uniforms map[graphics.UniformLocation]js.Value
	owners   map[graphics.UniformLocation]graphics.Handle
	// color attachments by framebuffer
	textures map[graphics.Handle]js.Value
	next     graphics.Handle
	nextLoc  graphics.UniformLocation
}

func newDevice(gl js.Value) *Device {
	d := &Device{
		gl:       gl,
		objects:  make(map[graphics.Handle]js.Value),
		uniforms: make(map[graphics.UniformLocation]js.Value),
		owners:   make(map[graphics.UniformLocation]graphics.Handle),
		textures: make(map[graphics.Handle]js.Value),
	}
	d.consts = glConsts{
		vertexShader:   gl.Get("VERTEX_SHADER"),
		fragmentShader: gl.Get("FRAGMENT_SHADER"),
		compileStatus:  gl.Get("COMPILE_STATUS"),
		linkStatus:     gl.Get("LINK_STATUS"),
		arrayBuffer:    gl.Get("ARRAY_BUFFER"),
		staticDraw:     gl.Get("STATIC_DRAW"),
		floatType:      gl.Get("FLOAT"),
		triangles:      gl.Get("TRIANGLES"),
		colorBufferBit: gl.Get("COLOR_BUFFER_BIT"),
		framebuffer:    gl.Get("FRAMEBUFFER"),
		colorAttach0:   gl.Get("COLOR_ATTACHMENT0"),
		texture2D:      gl.Get("TEXTURE_2D"),
		rgba8:          gl.Get("RGBA8"),
		rgba:           gl.Get("RGBA"),
		unsignedByte:   gl.Get("UNSIGNED_BYTE"),
	}
	return d
}

func (d *Device) put(v js.Value) (graphics.Handle, bool) {
	if v.IsNull() || v.IsUndefined() {
		return 0, false
	}
	d.next++
	d.objects[d.next] = v
	return d.next, true
}

func (d *Device) get(h graphics.Handle) js.Value {
	if v, ok := d.objects[h]; ok {
		return v
	}
	return js.Null()
}

func (d *Device) drop(h graphics.Handle) js.Value {
	v := d.get(h)
	delete(d.objects, h)
	return v
}

func (d *Device) Dialect() graphics.Dialect { return graphics.DialectESSL300 }

func (d *Device) CreateShader(stage graphics.ShaderStage) (graphics.Handle, bool) {
	t := d.consts.vertexShader
	if stage == graphics.FragmentStage {
		t = d.consts.fragmentShader
	}
	return d.put(d.gl.Call("createShader", t))
}

func (d *Device) CompileShader(shader graphics.Handle, source string) (bool, string) {
	sh := d.get(shader)
	d.gl.Call("shaderSource", sh, source)
	d.gl.Call("compileShader", sh)
	if d.gl.Call("getShaderParameter", sh, d.consts.compileStatus).Truthy() {
		return true, ""
	}
	infoLog := d.gl.Call("getShaderInfoLog", sh)
	if infoLog.Type() != js.TypeString {
		return false, "Unknown error creating shader"
	}
	return false, infoLog.String()
}

func (d *Device) DeleteShader(shader graphics.Handle) {
	d.gl.Call("deleteShader", d.drop(shader))
}

func (d *Device) CreateProgram() (graphics.Handle, bool) {
	return d.put(d.gl.Call("createProgram"))
}

func (d *Device) LinkProgram(program graphics.Handle, shaders ...graphics.Handle) (bool, string) {
	p := d.get(program)
	for _, sh := range shaders {
		d.gl.Call("attachShader", p, d.get(sh))
	}
	d.gl.Call("linkProgram", p)
	if d.gl.Call("getProgramParameter", p, d.consts.linkStatus).Truthy() {
		return true, ""
	}
	infoLog := d.gl.Call("getProgramInfoLog", p)
	if infoLog.Type() != js.TypeString {
		return false, "Unknown error creating program object"
	}
	return false, infoLog.String()
}

func (d *Device) UseProgram(program graphics.Handle) {
	d.gl.Call("useProgram", d.get(program))
}

func (d *Device) DeleteProgram(program graphics.Handle) {
	p := d.drop(program)
	// Locations die with their program.
	for loc, owner := range d.owners {
		if owner == program {
			delete(d.uniforms, loc)
			delete(d.owners, loc)
		}
	}
	d.gl.Call("deleteProgram", p)
}

func (d *Device) UniformLocation(program graphics.Handle, name string) (graphics.UniformLocation, bool) {
	loc := d.gl.Call("getUniformLocation", d.get(program), name)
	if loc.IsNull() || loc.IsUndefined() {
		return 0, false
	}
	d.nextLoc++
	d.uniforms[d.nextLoc] = loc
	d.owners[d.nextLoc] = program
	return d.nextLoc, true
}

func (d *Device) AttribLocation(program graphics.Handle, name string) (uint32, bool) {
	loc := d.gl.Call("getAttribLocation", d.get(program), name).Int()
	if loc < 0 {
		return 0, false
	}
	return uint32(loc), true
}

func (d *Device) CreateBuffer() (graphics.Handle, bool) {
	return d.put(d.gl.Call("createBuffer"))
}

func (d *Device) BufferData(buffer graphics.Handle, data []float32) {
	d.gl.Call("bindBuffer", d.consts.arrayBuffer, d.get(buffer))
	d.gl.Call("bufferData", d.consts.arrayBuffer, float32Array(data), d.consts.staticDraw)
}

func (d *Device) DeleteBuffer(buffer graphics.Handle) {
	d.gl.Call("deleteBuffer", d.drop(buffer))
}

func (d *Device) CreateVertexArray() (graphics.Handle, bool) {
	return d.put(d.gl.Call("createVertexArray"))
}

func (d *Device) BindVertexArray(vao graphics.Handle) {
	d.gl.Call("bindVertexArray", d.get(vao))
}

func (d *Device) VertexAttribPointer(index uint32, size int32) {
	d.gl.Call("vertexAttribPointer", index, size, d.consts.floatType, false, 0, 0)
}

func (d *Device) EnableVertexAttribArray(index uint32) {
	d.gl.Call("enableVertexAttribArray", index)
}

func (d *Device) DeleteVertexArray(vao graphics.Handle) {
	d.gl.Call("deleteVertexArray", d.drop(vao))
}

func (d *Device) Viewport(width, height int) {
	d.gl.Call("viewport", 0, 0, width, height)
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.gl.Call("clearColor", r, g, b, a)
}

func (d *Device) Clear() {
	d.gl.Call("clear", d.consts.colorBufferBit)
}

func (d *Device) Uniform1f(loc graphics.UniformLocation, v float32) {
	if l, ok := d.uniforms[loc]; ok {
		d.gl.Call("uniform1f", l, v)
	}
}

func (d *Device) Uniform2f(loc graphics.UniformLocation, x, y float32) {
	if l, ok := d.uniforms[loc]; ok {
		d.gl.Call("uniform2f", l, x, y)
	}
}

func (d *Device) DrawTriangles(first, count int32) {
	d.gl.Call("drawArrays", d.consts.triangles, first, count)
}

func float32Array(data []float32) js.Value {
	arr := js.Global().Get("Float32Array").New(len(data))
	for i, v := range data {
		arr.SetIndex(i, v)
	}
	return arr
}

func (d *Device) CreateFramebuffer(width, height int) (graphics.Handle, error) {
	tex := d.gl.Call("createTexture")
	if tex.IsNull() {
		return 0, fmt.Errorf("failed to create framebuffer texture")
	}
	d.gl.Call("bindTexture", d.consts.texture2D, tex)
	d.gl.Call("texStorage2D", d.consts.texture2D, 1, d.consts.rgba8, width, height)
	d.gl.Call("bindTexture", d.consts.texture2D, js.Null())

	fbo, ok := d.put(d.gl.Call("createFramebuffer"))
	if !ok {
		d.gl.Call("deleteTexture", tex)
		return 0, fmt.Errorf("failed to create framebuffer")
	}
	d.gl.Call("bindFramebuffer", d.consts.framebuffer, d.get(fbo))
	d.gl.Call("framebufferTexture2D", d.consts.framebuffer, d.consts.colorAttach0, d.consts.texture2D, tex, 0)
	status := d.gl.Call("checkFramebufferStatus", d.consts.framebuffer).Int()
	d.gl.Call("bindFramebuffer", d.consts.framebuffer, js.Null())
	if status != d.gl.Get("FRAMEBUFFER_COMPLETE").Int() {
		d.gl.Call("deleteFramebuffer", d.drop(fbo))
		d.gl.Call("deleteTexture", tex)
		return 0, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	d.textures[fbo] = tex
	return fbo, nil
}

func (d *Device) BindFramebuffer(fbo graphics.Handle) {
	if fbo == 0 {
		d.gl.Call("bindFramebuffer", d.consts.framebuffer, js.Null())
		return
	}
	d.gl.Call("bindFramebuffer", d.consts.framebuffer, d.get(fbo))
}

// ReadPixels reads RGBA bytes from the bound framebuffer into dst.
func (d *Device) ReadPixels(width, height int, dst []byte) {
	buf := js.Global().Get("Uint8Array").New(width * height * 4)
	d.gl.Call("readPixels", 0, 0, width, height, d.consts.rgba, d.consts.unsignedByte, buf)
	js.CopyBytesToGo(dst, buf)
}

func (d *Device) DeleteFramebuffer(fbo graphics.Handle) {
	if tex, ok := d.textures[fbo]; ok {
		d.gl.Call("deleteTexture", tex)
		delete(d.textures, fbo)
	}
	d.gl.Call("deleteFramebuffer", d.drop(fbo))
}

var _ graphics.OffscreenDevice = (*Device)(nil)
