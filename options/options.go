package options

import (
	"flag"
	"fmt"
	"time"
)

// Redraw cadences understood by the redraw loop.
const (
	RedrawContinuous = "continuous"
	RedrawInterval   = "interval"
	RedrawClick      = "click"
)

type ShaderOptions struct {
	APIKey     *string
	ShaderID   *string
	ShaderFile *string
	Help       *bool
	Mode       *string // "live" or "record"
	Width      *int
	Height     *int
	Translate  *bool // run fragment sources through the WebGL2 translator

	// Live mode
	Redraw   *string
	Interval *time.Duration
	Click    *bool // also redraw on left mouse press
	Watch    *bool // recompile ShaderFile when it changes

	// Record mode
	Duration   *float64
	FPS        *int
	OutputFile *string
	FFMPEGPath *string
	Codec      *string
	Headless   *bool // render through EGL instead of a hidden window
}

// Register defines the command-line flags on fs and returns the options
// they fill in after fs.Parse.
func Register(fs *flag.FlagSet) *ShaderOptions {
	return &ShaderOptions{
		APIKey:     fs.String("apikey", "", "Shadertoy API key (from SHADERTOY_KEY env var if not set)"),
		ShaderID:   fs.String("shader", "", "Shadertoy shader ID or URL"),
		ShaderFile: fs.String("file", "", "Path to a file holding a mainImage body"),
		Help:       fs.Bool("help", false, "Show help message"),
		Mode:       fs.String("mode", "live", "Mode: live or record"),
		Width:      fs.Int("width", 1280, "Width of the output"),
		Height:     fs.Int("height", 720, "Height of the output"),
		Translate:  fs.Bool("translate", true, "Translate WebGL2 sources to GLSL 4.10 with ANGLE"),

		Redraw:   fs.String("redraw", RedrawContinuous, "Redraw mode: continuous, interval or click"),
		Interval: fs.Duration("interval", time.Second, "Redraw interval for -redraw interval"),
		Click:    fs.Bool("click", true, "Also redraw when the left mouse button is pressed"),
		Watch:    fs.Bool("watch", true, "Recompile -file when it changes"),

		Duration:   fs.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:        fs.Int("fps", 60, "Frames per second for recording"),
		OutputFile: fs.String("output", "output.mp4", "Output file name for recording"),
		FFMPEGPath: fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Codec:      fs.String("codec", "h264", "Video codec: h264 or hevc"),
		Headless:   fs.Bool("headless", false, "Record through EGL without a window (Linux)"),
	}
}

// Validate checks option combinations that flag parsing cannot.
func (o *ShaderOptions) Validate() error {
	if *o.Width <= 0 || *o.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", *o.Width, *o.Height)
	}
	switch *o.Mode {
	case "live":
		switch *o.Redraw {
		case RedrawContinuous, RedrawClick:
		case RedrawInterval:
			if *o.Interval <= 0 {
				return fmt.Errorf("interval redraw needs a positive -interval")
			}
		default:
			return fmt.Errorf("unknown redraw mode %q", *o.Redraw)
		}
	case "record":
		if *o.FPS <= 0 {
			return fmt.Errorf("fps must be positive")
		}
		if *o.Duration <= 0 {
			return fmt.Errorf("duration must be positive")
		}
		if *o.OutputFile == "" {
			return fmt.Errorf("record mode needs an output file")
		}
		switch *o.Codec {
		case "h264", "hevc":
		default:
			return fmt.Errorf("unsupported codec %q", *o.Codec)
		}
	default:
		return fmt.Errorf("unknown mode %q", *o.Mode)
	}
	if *o.Headless && *o.Mode != "record" {
		return fmt.Errorf("-headless only applies to record mode")
	}
	if *o.ShaderFile != "" && *o.ShaderID != "" {
		return fmt.Errorf("-file and -shader are mutually exclusive")
	}
	return nil
}
