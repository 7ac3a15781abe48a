package encoder

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/richinsley/goshadercanvas/graphics/graphicstest"
	"github.com/richinsley/goshadercanvas/renderer"
	"github.com/richinsley/goshadercanvas/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFFmpegArgs(t *testing.T) {
	cfg := Config{Width: 320, Height: 240, FPS: 30, OutputFile: "out.mp4", Codec: "hevc", FFMPEGPath: "/opt/ffmpeg"}
	cmd := cfg.stream(strings.NewReader("")).Compile()
	args := strings.Join(cmd.Args, " ")

	assert.Equal(t, "/opt/ffmpeg", cmd.Args[0])
	assert.Contains(t, args, "-f rawvideo")
	assert.Contains(t, args, "-pix_fmt rgba")
	assert.Contains(t, args, "-s 320x240")
	assert.Contains(t, args, "-framerate 30")
	assert.Contains(t, args, "-i pipe:")
	assert.Contains(t, args, "-vf vflip")
	assert.Contains(t, args, "-tag:v hvc1")
	assert.Contains(t, args, "-y")
	assert.True(t, strings.HasSuffix(args, "out.mp4") || strings.Contains(args, "out.mp4 "))

	if runtime.GOOS == "darwin" {
		assert.Contains(t, args, "-c:v hevc_videotoolbox")
	} else {
		assert.Contains(t, args, "-c:v libx265")
	}
}

func TestFFmpegArgsH264(t *testing.T) {
	in, out := Config{Width: 2, Height: 2, FPS: 60, OutputFile: "a.mkv", Codec: "h264"}.args()
	assert.Equal(t, "2x2", in["s"])
	_, tagged := out["tag:v"]
	assert.False(t, tagged)
	assert.Contains(t, out["c:v"], "264")
}

func TestNewFFmpegEncoderRejectsGeometry(t *testing.T) {
	_, err := NewFFmpegEncoder(Config{Width: 0, Height: 10, FPS: 30})
	assert.Error(t, err)
}

type memoryWriter struct {
	frames   []*Frame
	closed   bool
	fail     int64
	closeErr error
}

func (m *memoryWriter) WriteFrame(f *Frame) error {
	if m.fail > 0 && f.PTS == m.fail {
		return errors.New("disk full")
	}
	m.frames = append(m.frames, f)
	return nil
}

func (m *memoryWriter) Close() error {
	m.closed = true
	return m.closeErr
}

func newRecorder(t *testing.T, fps int) (*Recorder, *graphicstest.Device) {
	t.Helper()
	dev := graphicstest.NewDevice()
	target, err := renderer.NewOffscreenTarget(dev, 8, 4)
	require.NoError(t, err)
	clock := renderer.NewFrameClock(fps)
	r, err := renderer.New(dev, target, renderer.WithClock(clock.Now))
	require.NoError(t, err)
	require.NoError(t, r.SetShader(shader.ExampleBody))
	return &Recorder{Renderer: r, Target: target, Clock: clock, FPS: fps}, dev
}

func TestRecordFrames(t *testing.T) {
	rec, dev := newRecorder(t, 10)
	w := &memoryWriter{}

	require.NoError(t, rec.Record(context.Background(), 1.05, w))

	require.Len(t, w.frames, 11)
	assert.True(t, w.closed)
	for i, f := range w.frames {
		assert.Equal(t, int64(i), f.PTS)
		assert.Len(t, f.Pixels, 8*4*4)
	}
	assert.NotSame(t, &w.frames[0].Pixels[0], &w.frames[1].Pixels[0])

	v, ok := dev.Uniform(shader.TimeUniform)
	require.True(t, ok)
	assert.InDelta(t, 1.0, v[0], 1e-6, "last frame is at 10/10 s")
}

func TestRecordStopsOnWriteError(t *testing.T) {
	rec, _ := newRecorder(t, 10)
	w := &memoryWriter{fail: 3}

	err := rec.Record(context.Background(), 1, w)
	assert.ErrorContains(t, err, "disk full")
	assert.Len(t, w.frames, 3)
	assert.True(t, w.closed)
}

func TestRecordHonorsCancel(t *testing.T) {
	rec, _ := newRecorder(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rec.Record(ctx, 1, &memoryWriter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordCancelKeepsCloseError(t *testing.T) {
	rec, _ := newRecorder(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ffmpegErr := errors.New("ffmpeg exited with status 1")
	w := &memoryWriter{closeErr: ffmpegErr}

	err := rec.Record(ctx, 1, w)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ffmpegErr)
	assert.True(t, w.closed)
}

func TestRecordWriteErrorKeepsCloseError(t *testing.T) {
	rec, _ := newRecorder(t, 10)
	ffmpegErr := errors.New("ffmpeg exited with status 1")
	w := &memoryWriter{fail: 2, closeErr: ffmpegErr}

	err := rec.Record(context.Background(), 1, w)
	assert.ErrorContains(t, err, "disk full")
	assert.ErrorIs(t, err, ffmpegErr)
}

func TestFFmpegEncoderWriteAfterClose(t *testing.T) {
	e := &FFmpegEncoder{
		cfg:    Config{Width: 1, Height: 1, FPS: 1},
		frames: make(chan *Frame, 1),
		done:   make(chan error, 1),
	}
	e.done <- nil

	require.NoError(t, e.Close())
	assert.ErrorIs(t, e.WriteFrame(&Frame{Pixels: make([]byte, 4)}), ErrEncoderClosed)
	assert.NoError(t, e.Close(), "second Close returns the first result")
}

func TestFrameCount(t *testing.T) {
	assert.Equal(t, int64(600), FrameCount(10, 60))
	assert.Equal(t, int64(1), FrameCount(0.001, 60))
	assert.Equal(t, int64(0), FrameCount(0, 60))
}
