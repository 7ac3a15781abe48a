package encoder

import (
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Frame represents a single rendered video frame's data, ready for encoding.
type Frame struct {
	Pixels []byte
	PTS    int64
}

// FrameWriter consumes rendered frames in presentation order.
type FrameWriter interface {
	WriteFrame(f *Frame) error
	Close() error
}

type Config struct {
	Width      int
	Height     int
	FPS        int
	OutputFile string
	FFMPEGPath string
	Codec      string // "h264" or "hevc"
}

// FFmpegEncoder pipes raw RGBA frames into an ffmpeg process.
type FFmpegEncoder struct {
	cfg    Config
	frames chan *Frame
	done   chan error
	pw     *io.PipeWriter
	closed bool
	err    error
}

// ErrEncoderClosed is returned by WriteFrame after Close.
var ErrEncoderClosed = errors.New("encoder is closed")

func (cfg Config) args() (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"framerate": strconv.Itoa(cfg.FPS),
	}

	// GL rows arrive bottom first.
	outputArgs = ffmpeg.KwArgs{
		"vf":      "vflip",
		"pix_fmt": "yuv420p",
	}

	switch runtime.GOOS {
	case "darwin":
		if cfg.Codec == "hevc" {
			outputArgs["c:v"] = "hevc_videotoolbox"
		} else {
			outputArgs["c:v"] = "h264_videotoolbox"
		}
		outputArgs["b:v"] = "25M"
	default:
		if cfg.Codec == "hevc" {
			outputArgs["c:v"] = "libx265"
		} else {
			outputArgs["c:v"] = "libx264"
		}
		outputArgs["crf"] = "18"
	}

	if cfg.Codec == "hevc" && strings.HasSuffix(cfg.OutputFile, ".mp4") {
		outputArgs["tag:v"] = "hvc1"
	}
	return
}

func (cfg Config) stream(r io.Reader) *ffmpeg.Stream {
	inputArgs, outputArgs := cfg.args()
	s := ffmpeg.Input("pipe:", inputArgs).
		Output(cfg.OutputFile, outputArgs).
		OverWriteOutput().WithInput(r).ErrorToStdOut()
	if cfg.FFMPEGPath != "" {
		s = s.SetFfmpegPath(cfg.FFMPEGPath)
	}
	return s
}

// NewFFmpegEncoder starts ffmpeg and a goroutine feeding it. Frames passed
// to WriteFrame must not be modified afterwards.
func NewFFmpegEncoder(cfg Config) (*FFmpegEncoder, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.FPS <= 0 {
		return nil, fmt.Errorf("invalid encoder geometry %dx%d@%d", cfg.Width, cfg.Height, cfg.FPS)
	}
	pr, pw := io.Pipe()
	e := &FFmpegEncoder{
		cfg:    cfg,
		frames: make(chan *Frame, 5),
		done:   make(chan error, 1),
		pw:     pw,
	}

	errc := make(chan error, 1)
	go func() {
		err := cfg.stream(pr).Run()
		// Unblock the writer if ffmpeg exits early.
		pr.CloseWithError(io.ErrClosedPipe)
		errc <- err
	}()

	go func() {
		var werr error
		for f := range e.frames {
			if werr != nil {
				continue
			}
			if _, err := pw.Write(f.Pixels); err != nil {
				werr = fmt.Errorf("failed to write frame %d to ffmpeg: %w", f.PTS, err)
			}
		}
		pw.Close()
		ferr := <-errc
		if ferr != nil {
			e.done <- fmt.Errorf("ffmpeg failed: %w", ferr)
			return
		}
		e.done <- werr
	}()

	log.Printf("Encoding %dx%d@%d to %s", cfg.Width, cfg.Height, cfg.FPS, cfg.OutputFile)
	return e, nil
}

func (e *FFmpegEncoder) WriteFrame(f *Frame) error {
	if e.closed {
		return ErrEncoderClosed
	}
	if want := e.cfg.Width * e.cfg.Height * 4; len(f.Pixels) != want {
		return fmt.Errorf("frame %d has %d bytes, want %d", f.PTS, len(f.Pixels), want)
	}
	e.frames <- f
	return nil
}

// Close flushes queued frames and waits for ffmpeg to exit. Later calls
// return the first result.
func (e *FFmpegEncoder) Close() error {
	if e.closed {
		return e.err
	}
	e.closed = true
	close(e.frames)
	e.err = <-e.done
	return e.err
}
