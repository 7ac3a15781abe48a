//go:build !linux || !cgo

package headless

import (
	"fmt"

	"github.com/richinsley/goshadercanvas/graphics"
)

// Headless is unavailable on this platform.
type Headless struct{}

func New(width, height int) (*Headless, error) {
	return nil, fmt.Errorf("%w: egl headless rendering is not supported on this platform", graphics.ErrContextUnavailable)
}

func (h *Headless) MakeCurrent() {}

func (h *Headless) GetFramebufferSize() (int, int) { return 0, 0 }

func (h *Headless) Shutdown() {}
