package encoder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/richinsley/goshadercanvas/renderer"
)

// Recorder renders a fixed number of frames offscreen and hands them to a
// FrameWriter. The renderer must have been created with the recorder's
// clock so iTime advances exactly one frame per capture.
type Recorder struct {
	Renderer *renderer.Renderer
	Target   *renderer.OffscreenTarget
	Clock    *renderer.FrameClock
	FPS      int
}

// FrameCount is the number of frames covering duration seconds.
func FrameCount(duration float64, fps int) int64 {
	return int64(math.Ceil(duration * float64(fps)))
}

// Record renders duration seconds of output into w and closes it.
func (rec *Recorder) Record(ctx context.Context, duration float64, w FrameWriter) error {
	total := FrameCount(duration, rec.FPS)
	log.Printf("Recording %d frames at %d fps", total, rec.FPS)

	for rec.Clock.Frame() < total {
		if err := ctx.Err(); err != nil {
			return errors.Join(err, w.Close())
		}
		pts := rec.Clock.Frame()
		// Each frame gets its own buffer since the writer owns it afterwards.
		pixels := rec.Target.Capture(rec.Renderer, nil)
		if err := w.WriteFrame(&Frame{Pixels: pixels, PTS: pts}); err != nil {
			return errors.Join(fmt.Errorf("failed to write frame %d: %w", pts, err), w.Close())
		}
		rec.Clock.Advance()
		if rec.FPS > 0 && (pts+1)%int64(rec.FPS) == 0 {
			log.Printf("Rendered %d/%d frames", pts+1, total)
		}
	}
	return w.Close()
}
