//go:build js && wasm

package main

import (
	"context"
	"log"
	"math"
	"strconv"
	"syscall/js"
	"time"

	"github.com/richinsley/goshadercanvas/redraw"
	"github.com/richinsley/goshadercanvas/renderer"
	"github.com/richinsley/goshadercanvas/shader"
	"github.com/richinsley/goshadercanvas/webgl"
)

// canvasScale is the share of the window the canvas covers.
const canvasScale = 0.8

func main() {
	doc := js.Global().Get("document")
	win := js.Global().Get("window")

	el := doc.Call("getElementById", "canvas")
	if el.IsNull() {
		el = doc.Call("createElement", "canvas")
		el.Set("id", "canvas")
		doc.Get("body").Call("appendChild", el)
	}

	canvas, err := webgl.NewCanvas(el)
	if err != nil {
		log.Fatalf("Failed to create canvas: %v", err)
	}
	canvas.Resize(
		int(math.Floor(win.Get("innerWidth").Float()*canvasScale)),
		int(math.Floor(win.Get("innerHeight").Float()*canvasScale)),
	)

	r, err := renderer.New(canvas.Device(), canvas)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Destroy()

	body := shader.ExampleBody
	// <script id="shader" type="x-shader/x-fragment"> overrides the example.
	if s := doc.Call("getElementById", "shader"); !s.IsNull() {
		body = s.Get("textContent").String()
	}
	if err := r.SetShader(body); err != nil {
		log.Printf("Failed to compile shader: %v", err)
	}

	// data-interval="500" on the canvas adds a timed redraw in milliseconds.
	loop := &redraw.Loop{
		Context: canvas,
		Drawer:  r,
		Mode:    redraw.OnDemand,
		OnClick: true,
	}
	if v := el.Call("getAttribute", "data-interval"); !v.IsNull() {
		if ms, err := strconv.Atoi(v.String()); err == nil && ms > 0 {
			loop.Mode = redraw.Interval
			loop.Interval = time.Duration(ms) * time.Millisecond
		}
	}

	if err := loop.Run(context.Background()); err != nil {
		log.Printf("Render loop stopped: %v", err)
	}
}
