package graphics

import "time"

// Surface is a drawable target whose size is owned by the host.
type Surface interface {
	// GetFramebufferSize returns the drawable size in device pixels.
	GetFramebufferSize() (int, int)
}

// MouseInput is the pointer state in framebuffer pixels with the origin at
// the bottom-left corner.
type MouseInput struct {
	X, Y float32
	Down bool
}

// Context defines the interface for a window or canvas that owns a GL context.
type Context interface {
	Surface
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	// EndFrame presents the back buffer and processes pending events.
	EndFrame()
	// WaitEvents blocks until an event arrives or timeout elapses.
	WaitEvents(timeout time.Duration)
	GetMouseInput() MouseInput
}
