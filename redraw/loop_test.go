package redraw

import (
	"context"
	"testing"
	"time"

	"github.com/richinsley/goshadercanvas/graphics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedContext closes after len(mouse) iterations and advances a fake
// clock by step on every ShouldClose poll.
type scriptedContext struct {
	mouse []graphics.MouseInput
	polls int
	step  time.Duration
	clock time.Time

	endFrames int
	waits     []time.Duration
}

func (c *scriptedContext) GetFramebufferSize() (int, int) { return 640, 480 }
func (c *scriptedContext) MakeCurrent()                   {}
func (c *scriptedContext) Shutdown()                      {}
func (c *scriptedContext) EndFrame()                      { c.endFrames++ }

func (c *scriptedContext) WaitEvents(timeout time.Duration) {
	c.waits = append(c.waits, timeout)
}

func (c *scriptedContext) ShouldClose() bool {
	if c.polls > 0 {
		c.clock = c.clock.Add(c.step)
	}
	c.polls++
	return c.polls > len(c.mouse)
}

func (c *scriptedContext) GetMouseInput() graphics.MouseInput {
	i := c.polls - 1
	if i < 0 {
		i = 0
	}
	if i >= len(c.mouse) {
		return graphics.MouseInput{}
	}
	return c.mouse[i]
}

func (c *scriptedContext) now() time.Time { return c.clock }

type countingDrawer struct {
	renders int
	mouse   [2]float32
}

func (d *countingDrawer) Render()               { d.renders++ }
func (d *countingDrawer) SetMouse(x, y float32) { d.mouse = [2]float32{x, y} }

func iterations(n int) []graphics.MouseInput {
	return make([]graphics.MouseInput, n)
}

func TestContinuousDrawsEveryIteration(t *testing.T) {
	ctx := &scriptedContext{mouse: iterations(5)}
	d := &countingDrawer{}
	l := &Loop{Context: ctx, Drawer: d, Mode: Continuous}

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 6, d.renders, "initial frame plus one per iteration")
	assert.Equal(t, 6, ctx.endFrames)
	assert.Equal(t, 6, l.Frames())
	assert.Empty(t, ctx.waits)
}

func TestOnDemandDrawsOnPressEdge(t *testing.T) {
	mouse := []graphics.MouseInput{
		{X: 1, Y: 1},
		{X: 2, Y: 2, Down: true},
		{X: 3, Y: 3, Down: true},
		{X: 4, Y: 4},
		{X: 5, Y: 5, Down: true},
	}
	ctx := &scriptedContext{mouse: mouse}
	d := &countingDrawer{}
	l := &Loop{Context: ctx, Drawer: d, Mode: OnDemand, OnClick: true, Idle: time.Second}

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 3, d.renders, "initial frame plus two presses")
	assert.Equal(t, [2]float32{5, 5}, d.mouse)
	assert.Len(t, ctx.waits, 3)
	for _, w := range ctx.waits {
		assert.Equal(t, time.Second, w)
	}
}

func TestClicksIgnoredWithoutOnClick(t *testing.T) {
	ctx := &scriptedContext{mouse: []graphics.MouseInput{{Down: true}, {}, {Down: true}}}
	d := &countingDrawer{}
	l := &Loop{Context: ctx, Drawer: d, Mode: OnDemand}

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 1, d.renders)
}

func TestIntervalDrawsWhenDue(t *testing.T) {
	ctx := &scriptedContext{mouse: iterations(10), step: 300 * time.Millisecond, clock: time.Unix(0, 0)}
	d := &countingDrawer{}
	l := &Loop{Context: ctx, Drawer: d, Mode: Interval, Interval: time.Second, Now: ctx.now, Idle: time.Hour}

	require.NoError(t, l.Run(context.Background()))
	// iterations observe 0s .. 2.7s after start, crossing 1s and 2s
	assert.Equal(t, 3, d.renders)
	for _, w := range ctx.waits {
		assert.LessOrEqual(t, w, time.Second)
		assert.Greater(t, w, time.Duration(0))
	}
}

func TestBeforeFrameForcesRedraw(t *testing.T) {
	ctx := &scriptedContext{mouse: iterations(4)}
	d := &countingDrawer{}
	calls := 0
	l := &Loop{Context: ctx, Drawer: d, Mode: OnDemand, BeforeFrame: func() bool {
		calls++
		return calls == 2
	}}

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 4, calls)
	assert.Equal(t, 2, d.renders)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx := &scriptedContext{mouse: iterations(100)}
	d := &countingDrawer{}
	c, cancel := context.WithCancel(context.Background())
	cancel()

	err := (&Loop{Context: ctx, Drawer: d}).Run(c)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, d.renders)
}

func TestIntervalRejectsNonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		ctx := &scriptedContext{mouse: iterations(3)}
		d := &countingDrawer{}
		l := &Loop{Context: ctx, Drawer: d, Mode: Interval, Interval: interval, Now: ctx.now}

		done := make(chan error, 1)
		go func() { done <- l.Run(context.Background()) }()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, ErrInvalidInterval)
		case <-time.After(2 * time.Second):
			t.Fatalf("Run did not return for interval %v", interval)
		}
		assert.Zero(t, d.renders)
	}
}
