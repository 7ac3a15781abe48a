package renderer

import (
	"fmt"

	"github.com/richinsley/goshadercanvas/graphics"
)

// OffscreenTarget is a fixed size framebuffer object that doubles as the
// Surface of the renderer drawing into it.
type OffscreenTarget struct {
	device graphics.OffscreenDevice
	fbo    graphics.Handle
	width  int
	height int
}

func NewOffscreenTarget(device graphics.OffscreenDevice, width, height int) (*OffscreenTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid offscreen size %dx%d", width, height)
	}
	fbo, err := device.CreateFramebuffer(width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to create offscreen framebuffer: %w", err)
	}
	return &OffscreenTarget{
		device: device,
		fbo:    fbo,
		width:  width,
		height: height,
	}, nil
}

func (o *OffscreenTarget) GetFramebufferSize() (int, int) {
	return o.width, o.height
}

// FrameSize is the number of bytes Capture produces per frame.
func (o *OffscreenTarget) FrameSize() int {
	return o.width * o.height * 4
}

// Capture renders one frame of r into the target and returns its RGBA
// pixels, bottom row first. dst is reused when it is large enough.
func (o *OffscreenTarget) Capture(r *Renderer, dst []byte) []byte {
	if cap(dst) < o.FrameSize() {
		dst = make([]byte, o.FrameSize())
	}
	dst = dst[:o.FrameSize()]

	o.device.BindFramebuffer(o.fbo)
	r.Render()
	o.device.ReadPixels(o.width, o.height, dst)
	o.device.BindFramebuffer(0)
	return dst
}

func (o *OffscreenTarget) Destroy() {
	o.device.DeleteFramebuffer(o.fbo)
}
