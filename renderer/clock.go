package renderer

import "time"

// FrameClock advances a fixed step per frame instead of following wall
// time, so recorded output does not depend on how fast frames render.
type FrameClock struct {
	base  time.Time
	fps   int
	frame int64
}

func NewFrameClock(fps int) *FrameClock {
	if fps <= 0 {
		fps = 60
	}
	return &FrameClock{base: time.Now(), fps: fps}
}

// Now returns the presentation time of the current frame.
func (c *FrameClock) Now() time.Time {
	return c.base.Add(time.Duration(c.frame) * time.Second / time.Duration(c.fps))
}

func (c *FrameClock) Advance() { c.frame++ }

func (c *FrameClock) Frame() int64 { return c.frame }
