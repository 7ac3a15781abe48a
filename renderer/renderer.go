package renderer

import (
	"fmt"
	"time"

	"github.com/richinsley/goshadercanvas/graphics"
	"github.com/richinsley/goshadercanvas/shader"
	"github.com/richinsley/goshadercanvas/translator"
)

// Clock reports the current time. iTime is measured against the value it
// returned when the Renderer was created.
type Clock func() time.Time

type Option func(*Renderer)

// WithClock replaces the wall clock used for iTime.
func WithClock(c Clock) Option {
	return func(r *Renderer) { r.now = c }
}

// WithTranslator routes fragment sources through t before compiling them.
// Bodies are then written against WebGL2 regardless of the device dialect.
func WithTranslator(t translator.Translator) Option {
	return func(r *Renderer) { r.translator = t }
}

// Renderer draws a full screen quad with a user supplied mainImage body.
// It must only be used from the goroutine that owns the device's context.
type Renderer struct {
	device     graphics.Device
	surface    graphics.Surface
	translator translator.Translator
	now        Clock
	start      time.Time
	mouse      [2]float32
	current    *generation
}

// New prepares a renderer for surface and installs shader.DefaultBody, so
// the result can be drawn immediately.
func New(device graphics.Device, surface graphics.Surface, opts ...Option) (*Renderer, error) {
	if device == nil {
		return nil, fmt.Errorf("%w: no device", ErrContextUnavailable)
	}
	if surface == nil {
		return nil, fmt.Errorf("%w: no surface", ErrContextUnavailable)
	}
	r := &Renderer{
		device:  device,
		surface: surface,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.start = r.now()

	if err := r.SetShader(shader.DefaultBody); err != nil {
		return nil, fmt.Errorf("failed to install default shader: %w", err)
	}
	return r, nil
}

// SetShader compiles body as the new mainImage. On failure the previously
// installed program stays active and the error is one of
// *ShaderCompileError, *ProgramLinkError, *BufferAllocationError or
// *VertexArrayAllocationError.
func (r *Renderer) SetShader(body string) error {
	g, err := r.build(body)
	if err != nil {
		return err
	}
	r.device.UseProgram(g.program)
	r.device.BindVertexArray(g.vao)

	if r.current != nil {
		r.current.release()
	}
	r.current = g
	return nil
}

// SetMouse sets the value written to iMouse on the next Render. It defaults
// to the zero vector.
func (r *Renderer) SetMouse(x, y float32) {
	r.mouse = [2]float32{x, y}
}

// Elapsed returns the seconds since the renderer was created.
func (r *Renderer) Elapsed() float32 {
	secs := r.now().Sub(r.start).Seconds()
	if secs < 0 {
		return 0
	}
	return float32(secs)
}

// Render clears the surface and draws one frame with the active program.
func (r *Renderer) Render() {
	g := r.current
	if g == nil {
		return
	}
	d := r.device
	width, height := r.surface.GetFramebufferSize()

	d.UseProgram(g.program)
	d.BindVertexArray(g.vao)
	d.Viewport(width, height)
	d.ClearColor(0, 0, 0, 1)
	d.Clear()

	if g.resolution.Valid {
		d.Uniform2f(g.resolution.Location, float32(width), float32(height))
	}
	if g.time.Valid {
		d.Uniform1f(g.time.Location, r.Elapsed())
	}
	if g.mouse.Valid {
		d.Uniform2f(g.mouse.Location, r.mouse[0], r.mouse[1])
	}
	d.DrawTriangles(0, quadVertexCount)
}

// Destroy deletes every GPU object owned by the renderer. The device and
// surface are left to their owners.
func (r *Renderer) Destroy() {
	if r.current == nil {
		return
	}
	r.current.release()
	r.current = nil
}
