//go:build js && wasm

package webgl

import (
	"fmt"
	"syscall/js"
	"time"

	"github.com/richinsley/goshadercanvas/graphics"
)

// Canvas is a graphics.Context over an HTML canvas element.
type Canvas struct {
	el     js.Value
	device *Device
	events chan struct{}
	frames chan struct{}
	funcs  []js.Func
	closed bool

	mouseX, mouseY float64
	down           bool
	// set by mousedown, cleared when read, so a quick click is never lost
	pressed bool
}

// NewCanvas acquires a WebGL2 context on el. It returns an error wrapping
// graphics.ErrContextUnavailable when the browser has no WebGL2 support.
func NewCanvas(el js.Value) (*Canvas, error) {
	if el.IsNull() || el.IsUndefined() {
		return nil, fmt.Errorf("%w: no canvas element", graphics.ErrContextUnavailable)
	}
	gl := el.Call("getContext", "webgl2", map[string]any{
		"preserveDrawingBuffer": true,
	})
	if !gl.Truthy() {
		return nil, fmt.Errorf("%w: webgl2 not supported", graphics.ErrContextUnavailable)
	}

	c := &Canvas{
		el:     el,
		device: newDevice(gl),
		events: make(chan struct{}, 1),
		frames: make(chan struct{}, 1),
	}
	c.listen("mousemove", func(ev js.Value) {
		c.mouseX, c.mouseY = c.toPixels(ev)
	})
	c.listen("mousedown", func(ev js.Value) {
		c.mouseX, c.mouseY = c.toPixels(ev)
		c.down = true
		c.pressed = true
	})
	c.listen("mouseup", func(ev js.Value) {
		c.down = false
	})
	return c, nil
}

func (c *Canvas) listen(event string, handle func(ev js.Value)) {
	fn := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			handle(args[0])
		}
		c.notify()
		return nil
	})
	c.funcs = append(c.funcs, fn)
	c.el.Call("addEventListener", event, fn)
}

func (c *Canvas) notify() {
	select {
	case c.events <- struct{}{}:
	default:
	}
}

// toPixels converts an event's CSS offset into drawing-buffer pixels with
// the origin at the bottom-left.
func (c *Canvas) toPixels(ev js.Value) (float64, float64) {
	w, h := c.GetFramebufferSize()
	cw := c.el.Get("clientWidth").Float()
	ch := c.el.Get("clientHeight").Float()
	scaleX, scaleY := 1.0, 1.0
	if cw > 0 && ch > 0 {
		scaleX = float64(w) / cw
		scaleY = float64(h) / ch
	}
	x := ev.Get("offsetX").Float() * scaleX
	y := float64(h) - ev.Get("offsetY").Float()*scaleY
	return x, y
}

// Device returns the WebGL2 device bound to this canvas.
func (c *Canvas) Device() *Device { return c.device }

// Resize sets the drawing-buffer size of the canvas.
func (c *Canvas) Resize(width, height int) {
	c.el.Set("width", width)
	c.el.Set("height", height)
}

func (c *Canvas) GetFramebufferSize() (int, int) {
	return c.el.Get("width").Int(), c.el.Get("height").Int()
}

func (c *Canvas) MakeCurrent() {}

// Shutdown removes the event listeners and makes ShouldClose report true.
func (c *Canvas) Shutdown() {
	if c.closed {
		return
	}
	c.closed = true
	for _, fn := range c.funcs {
		fn.Release()
	}
	c.funcs = nil
	c.notify()
}

func (c *Canvas) ShouldClose() bool { return c.closed }

// EndFrame blocks until the next animation frame so the browser can present
// what was drawn.
func (c *Canvas) EndFrame() {
	var fn js.Func
	fn = js.FuncOf(func(this js.Value, args []js.Value) any {
		fn.Release()
		c.frames <- struct{}{}
		return nil
	})
	js.Global().Call("requestAnimationFrame", fn)
	<-c.frames
}

// WaitEvents blocks until a canvas event arrives or timeout elapses. A
// non-positive timeout waits for an event only.
func (c *Canvas) WaitEvents(timeout time.Duration) {
	if timeout <= 0 {
		<-c.events
		return
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-c.events:
	case <-t.C:
	}
}

func (c *Canvas) GetMouseInput() graphics.MouseInput {
	m := graphics.MouseInput{
		X:    float32(c.mouseX),
		Y:    float32(c.mouseY),
		Down: c.down || c.pressed,
	}
	c.pressed = false
	return m
}

var _ graphics.Context = (*Canvas)(nil)
