// Package redraw decides when a shader canvas is drawn: every frame, on a
// fixed interval, on mouse presses, or on request from a hook.
package redraw

import (
	"context"
	"errors"
	"time"

	"github.com/richinsley/goshadercanvas/graphics"
)

type Mode int

const (
	// Continuous draws on every loop iteration, paced by buffer swaps.
	Continuous Mode = iota
	// Interval draws whenever Loop.Interval has elapsed.
	Interval
	// OnDemand draws only for clicks and BeforeFrame requests.
	OnDemand
)

const defaultIdle = 100 * time.Millisecond

// ErrInvalidInterval is returned by Run when Mode is Interval and Interval
// is not positive.
var ErrInvalidInterval = errors.New("redraw: interval mode needs a positive interval")

// Drawer is redrawn by the loop. *renderer.Renderer implements it.
type Drawer interface {
	Render()
	SetMouse(x, y float32)
}

// Loop drives a Drawer from a Context's event loop. It must run on the
// goroutine that owns the context.
type Loop struct {
	Context  graphics.Context
	Drawer   Drawer
	Mode     Mode
	Interval time.Duration
	// OnClick also redraws when the left button goes down.
	OnClick bool
	// BeforeFrame runs once per iteration. Returning true forces a redraw.
	BeforeFrame func() bool
	// Now defaults to time.Now.
	Now func() time.Time
	// Idle bounds how long the loop blocks waiting for events.
	Idle time.Duration

	frames int
}

// Frames reports how many frames the loop has drawn.
func (l *Loop) Frames() int { return l.frames }

// Run draws once, then loops until the context asks to close or ctx is
// done.
func (l *Loop) Run(ctx context.Context) error {
	if l.Mode == Interval && l.Interval <= 0 {
		return ErrInvalidInterval
	}
	now := l.Now
	if now == nil {
		now = time.Now
	}
	idle := l.Idle
	if idle <= 0 {
		idle = defaultIdle
	}

	l.feedMouse()
	l.draw()
	next := now().Add(l.Interval)
	wasDown := false

	for !l.Context.ShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}

		m := l.feedMouse()
		redraw := false
		if l.BeforeFrame != nil && l.BeforeFrame() {
			redraw = true
		}
		if l.OnClick && m.Down && !wasDown {
			redraw = true
		}
		wasDown = m.Down

		wait := idle
		switch l.Mode {
		case Continuous:
			redraw = true
		case Interval:
			t := now()
			if !t.Before(next) {
				redraw = true
				for !next.After(t) {
					next = next.Add(l.Interval)
				}
			}
			if d := next.Sub(t); d < wait {
				wait = d
			}
		}

		if redraw {
			l.draw()
		} else {
			l.Context.WaitEvents(wait)
		}
	}
	return nil
}

func (l *Loop) feedMouse() graphics.MouseInput {
	m := l.Context.GetMouseInput()
	l.Drawer.SetMouse(m.X, m.Y)
	return m
}

func (l *Loop) draw() {
	l.Drawer.Render()
	l.Context.EndFrame()
	l.frames++
}
