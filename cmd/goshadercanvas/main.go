package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"time"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	api "github.com/richinsley/goshadercanvas/api"
	"github.com/richinsley/goshadercanvas/encoder"
	"github.com/richinsley/goshadercanvas/gldevice"
	"github.com/richinsley/goshadercanvas/glfwcontext"
	"github.com/richinsley/goshadercanvas/headless"
	options "github.com/richinsley/goshadercanvas/options"
	"github.com/richinsley/goshadercanvas/redraw"
	"github.com/richinsley/goshadercanvas/renderer"
	"github.com/richinsley/goshadercanvas/shader"
	"github.com/richinsley/goshadercanvas/translator"
)

func init() {
	runtime.LockOSThread()
}

func loadSource(opts *options.ShaderOptions) (*api.Source, error) {
	switch {
	case *opts.ShaderFile != "":
		return api.SourceFromFile(*opts.ShaderFile)
	case *opts.ShaderID != "":
		log.Printf("Fetching shader with ID: %s", *opts.ShaderID)
		resp, err := api.NewClient(*opts.APIKey).ShaderFromID(*opts.ShaderID)
		if err != nil {
			return nil, fmt.Errorf("error fetching shader from ID: %w", err)
		}
		return api.SourceFromResponse(resp)
	default:
		return &api.Source{Title: "example", Body: shader.ExampleBody, Complete: true}, nil
	}
}

func rendererOptions(opts *options.ShaderOptions) ([]renderer.Option, error) {
	var ropts []renderer.Option
	if *opts.Translate {
		t, err := translator.GetTranslator()
		if err != nil {
			return nil, err
		}
		ropts = append(ropts, renderer.WithTranslator(t))
	}
	return ropts, nil
}

// fileWatcher reports when a shader file's modification time changes.
type fileWatcher struct {
	path    string
	modTime time.Time
}

func newFileWatcher(path string) *fileWatcher {
	w := &fileWatcher{path: path}
	if fi, err := os.Stat(path); err == nil {
		w.modTime = fi.ModTime()
	}
	return w
}

func (w *fileWatcher) changed() bool {
	fi, err := os.Stat(w.path)
	if err != nil || !fi.ModTime().After(w.modTime) {
		return false
	}
	w.modTime = fi.ModTime()
	return true
}

// reload recompiles path into r. On failure the running program is kept.
func reload(r *renderer.Renderer, path string) bool {
	src, err := api.SourceFromFile(path)
	if err != nil {
		log.Printf("Reload failed: %v", err)
		return false
	}
	if err := r.SetShader(src.Body); err != nil {
		log.Printf("Reload failed, keeping previous shader: %v", err)
		return false
	}
	log.Printf("Reloaded shader: %s", path)
	return true
}

func redrawMode(opts *options.ShaderOptions) redraw.Mode {
	switch *opts.Redraw {
	case options.RedrawInterval:
		return redraw.Interval
	case options.RedrawClick:
		return redraw.OnDemand
	default:
		return redraw.Continuous
	}
}

func runLive(ctx context.Context, opts *options.ShaderOptions, src *api.Source) error {
	win, err := glfwcontext.New(opts, true)
	if err != nil {
		return err
	}
	defer win.Shutdown()
	win.MakeCurrent()

	dev, err := gldevice.New()
	if err != nil {
		return err
	}
	ropts, err := rendererOptions(opts)
	if err != nil {
		return err
	}
	r, err := renderer.New(dev, win, ropts...)
	if err != nil {
		return err
	}
	defer r.Destroy()
	if err := r.SetShader(src.Body); err != nil {
		return err
	}
	log.Printf("Successfully loaded shader: %s", src.Title)

	loop := &redraw.Loop{
		Context:  win,
		Drawer:   r,
		Mode:     redrawMode(opts),
		Interval: *opts.Interval,
		OnClick:  *opts.Click || *opts.Redraw == options.RedrawClick,
	}

	if *opts.ShaderFile != "" {
		var forced bool
		win.RegisterKeyCallback(glfw.KeyR, func() {
			forced = true
		})
		var watcher *fileWatcher
		if *opts.Watch {
			watcher = newFileWatcher(*opts.ShaderFile)
		}
		loop.BeforeFrame = func() bool {
			if forced || (watcher != nil && watcher.changed()) {
				forced = false
				return reload(r, *opts.ShaderFile)
			}
			return false
		}
	}

	log.Println("Starting interactive render loop...")
	return loop.Run(ctx)
}

// offscreenContext owns the GL context used for recording.
type offscreenContext interface {
	MakeCurrent()
	Shutdown()
}

func newOffscreenContext(opts *options.ShaderOptions) (offscreenContext, error) {
	if *opts.Headless {
		return headless.New(*opts.Width, *opts.Height)
	}
	return glfwcontext.New(opts, false)
}

func runRecord(ctx context.Context, opts *options.ShaderOptions, src *api.Source) error {
	glctx, err := newOffscreenContext(opts)
	if err != nil {
		return err
	}
	defer glctx.Shutdown()
	glctx.MakeCurrent()

	dev, err := gldevice.New()
	if err != nil {
		return err
	}
	target, err := renderer.NewOffscreenTarget(dev, *opts.Width, *opts.Height)
	if err != nil {
		return err
	}
	defer target.Destroy()

	clock := renderer.NewFrameClock(*opts.FPS)
	ropts, err := rendererOptions(opts)
	if err != nil {
		return err
	}
	ropts = append(ropts, renderer.WithClock(clock.Now))
	r, err := renderer.New(dev, target, ropts...)
	if err != nil {
		return err
	}
	defer r.Destroy()
	if err := r.SetShader(src.Body); err != nil {
		return err
	}

	enc, err := encoder.NewFFmpegEncoder(encoder.Config{
		Width:      *opts.Width,
		Height:     *opts.Height,
		FPS:        *opts.FPS,
		OutputFile: *opts.OutputFile,
		FFMPEGPath: *opts.FFMPEGPath,
		Codec:      *opts.Codec,
	})
	if err != nil {
		return err
	}

	log.Println("Starting offscreen render loop...")
	rec := &encoder.Recorder{Renderer: r, Target: target, Clock: clock, FPS: *opts.FPS}
	if err := rec.Record(ctx, *opts.Duration, enc); err != nil {
		return fmt.Errorf("offscreen rendering failed: %w", err)
	}
	log.Printf("Successfully rendered to %s", *opts.OutputFile)
	return nil
}

func main() {
	opts := options.Register(flag.CommandLine)
	flag.Parse()

	if *opts.Help {
		fmt.Println("Shader Canvas Viewer/Recorder")
		flag.PrintDefaults()
		return
	}
	if *opts.APIKey == "" {
		*opts.APIKey = os.Getenv("SHADERTOY_KEY")
	}
	if err := opts.Validate(); err != nil {
		log.Fatalf("Invalid options: %v", err)
	}

	src, err := loadSource(opts)
	if err != nil {
		log.Fatalf("Error loading shader: %v", err)
	}
	if !src.Complete {
		log.Println("Warning: shader uses passes or inputs that are not supported; output may differ.")
	}

	if !*opts.Headless {
		if err := glfwcontext.InitGraphics(); err != nil {
			log.Fatalf("Failed to initialize graphics: %v", err)
		}
		defer glfwcontext.TerminateGraphics()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *opts.Mode == "record" {
		err = runRecord(ctx, opts, src)
	} else {
		err = runLive(ctx, opts, src)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Error: %v", err)
	}
}
