package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/gekko3d/volumetric"
	"github.com/gekko3d/volumetric/sdfrt/rt/app"
	"github.com/gekko3d/volumetric/sdfrt/rt/nodes"
	"github.com/gekko3d/volumetric/sdfrt/rt/render"
	"github.com/gekko3d/volumetric/sdfrt/rt/shaders"
)

type options struct {
	mode     string
	node     string
	params   string
	preset   string
	width    int
	height   int
	out      string
	workers  int
	frames   int
	stats    bool
	debug    bool
	decay    float64
	rotation float64
	upscale  int
}

func main() {
	var opts options
	flag.StringVar(&opts.mode, "mode", "render", "render | animate | flowfield | shader | list")
	flag.StringVar(&opts.node, "node", string(nodes.KindSphere), "node kind to render")
	flag.StringVar(&opts.params, "params", "", "node parameters as a JSON object")
	flag.StringVar(&opts.preset, "preset", "", "JSON render preset (overrides -node/-width/-height/-out)")
	flag.IntVar(&opts.width, "width", 256, "image width")
	flag.IntVar(&opts.height, "height", 256, "image height")
	flag.StringVar(&opts.out, "out", "out.png", "output PNG path (animate writes <name>_NNN.png)")
	flag.IntVar(&opts.workers, "workers", 0, "render workers, 0 = NumCPU or "+render.WorkersEnv)
	flag.IntVar(&opts.frames, "frames", 30, "frames for animate and flowfield")
	flag.BoolVar(&opts.stats, "stats", false, "print profiler stats and annotate images")
	flag.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flag.Float64Var(&opts.decay, "decay", 0, "flowfield trail decay factor per update, 0 disables")
	flag.Float64Var(&opts.rotation, "rotation", volumetric.DefaultRotationSpeed, "animate rotation speed in degrees per second")
	flag.IntVar(&opts.upscale, "upscale", 1, "scale the output image by this factor")
	flag.Parse()

	logger := volumetric.NewDefaultLogger("sdfrt", opts.debug)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger volumetric.Logger) error {
	switch opts.mode {
	case "render":
		return runRender(ctx, opts, logger)
	case "animate":
		return runAnimate(opts, logger)
	case "flowfield":
		return runFlowField(opts, logger)
	case "shader":
		return runShader(opts)
	case "list":
		for _, k := range nodes.Kinds() {
			fmt.Println(k)
		}
		return nil
	default:
		return fmt.Errorf("unknown mode %q", opts.mode)
	}
}

func loadPreset(opts options) (render.Preset, error) {
	if opts.preset != "" {
		return render.LoadPreset(opts.preset)
	}
	p := render.DefaultPreset()
	p.Node = nodes.Kind(opts.node)
	p.Width = opts.width
	p.Height = opts.height
	p.Output = opts.out
	if opts.params != "" {
		p.Params = []byte(opts.params)
	}
	return p, p.Validate()
}

func finish(img *image.NRGBA, opts options, path string, lines ...string) error {
	out := img
	if opts.upscale > 1 {
		b := img.Bounds()
		out = render.Scale(img, b.Dx()*opts.upscale, b.Dy()*opts.upscale)
	}
	if opts.stats {
		render.Annotate(out, lines...)
	}
	return render.SavePNG(path, out)
}

func runRender(ctx context.Context, opts options, logger volumetric.Logger) error {
	prof := app.NewProfiler()
	preset, err := loadPreset(opts)
	if err != nil {
		return err
	}
	node, transform, err := preset.Build()
	if err != nil {
		return err
	}

	r := preset.Renderer()
	r.Workers = opts.workers
	r.Logger = logger

	var stats render.Stats
	var img *image.NRGBA
	err = prof.Measure("render", func() error {
		var err error
		img, stats, err = r.Render(ctx, node, transform)
		return err
	})
	if err != nil {
		return err
	}
	prof.SetCount("pixels", stats.Pixels)
	prof.SetCount("hits", stats.Hits)

	if err := prof.Measure("encode", func() error {
		return finish(img, opts, preset.Output, node.Name(), fmt.Sprintf("hits %d/%d", stats.Hits, stats.Pixels))
	}); err != nil {
		return err
	}

	logger.Infof("wrote %s (%s, %dx%d, %d hits)", preset.Output, node.Kind(), preset.Width, preset.Height, stats.Hits)
	if opts.stats {
		fmt.Print(prof.GetStatsString())
	}
	return nil
}

func framePath(out string, frame int) string {
	ext := filepath.Ext(out)
	return fmt.Sprintf("%s_%03d%s", strings.TrimSuffix(out, ext), frame, ext)
}

// runAnimate ticks a rotating proxy at 30 Hz of simulated time and writes one
// image per frame.
func runAnimate(opts options, logger volumetric.Logger) error {
	preset, err := loadPreset(opts)
	if err != nil {
		return err
	}
	node, transform, err := preset.Build()
	if err != nil {
		return err
	}

	a := volumetric.NewApp()
	a.AddResource(logger, transform)
	a.UseModules(
		volumetric.TimeModule{},
		volumetric.RotationModule{Speed: float32(opts.rotation)},
		volumetric.RenderNodeModule{
			Node:    node,
			Width:   preset.Width,
			Height:  preset.Height,
			Camera:  preset.Camera,
			Workers: opts.workers,
		},
	)
	view := volumetric.Resource[volumetric.NodeView](a)
	assets := volumetric.Resource[volumetric.AssetServer](a)
	prof := app.NewProfiler()

	for frame := 0; frame < opts.frames; frame++ {
		prof.BeginScope("frame")
		a.Tick(time.Second / 30)
		prof.EndScope("frame")

		img, _ := assets.Texture(view.Texture)
		path := framePath(preset.Output, frame)
		if err := finish(img, opts, path, fmt.Sprintf("frame %d", frame), fmt.Sprintf("hits %d", view.Stats.Hits)); err != nil {
			return err
		}
		prof.AddCount("hits", view.Stats.Hits)
		logger.Debugf("frame %d: %s", frame, path)
	}
	prof.SetCount("frames", view.Frames)
	logger.Infof("wrote %d frames of %s", opts.frames, node.Kind())
	if opts.stats {
		fmt.Print(prof.GetStatsString())
	}
	return nil
}

// runFlowField paints 2D flow field trails, optionally fading them with the
// decay material, and saves the final texture.
func runFlowField(opts options, logger volumetric.Logger) error {
	m := volumetric.NewFlowFieldTexture2DModule()
	m.Width, m.Height = opts.width, opts.height

	a := volumetric.NewApp()
	a.AddResource(logger)
	a.UseModules(volumetric.TimeModule{}, m)
	ff := volumetric.Resource[volumetric.FlowField2D](a)
	if opts.decay > 0 {
		a.UseModules(volumetric.ApplyShaderModule{
			Texture:  ff.Texture,
			Material: volumetric.DecayMaterial{Factor: float32(opts.decay)},
		})
	}

	for frame := 0; frame < opts.frames; frame++ {
		a.Tick(time.Second / 60)
	}
	img, _ := volumetric.Resource[volumetric.AssetServer](a).Texture(ff.Texture)
	if err := finish(img, opts, opts.out, fmt.Sprintf("%d frames", opts.frames)); err != nil {
		return err
	}
	logger.Infof("wrote %s after %d frames", opts.out, opts.frames)
	return nil
}

// runShader prints the generated HLSL for a comma separated list of node kinds.
func runShader(opts options) error {
	var ns []nodes.Node
	for _, k := range strings.Split(opts.node, ",") {
		n, err := nodes.New(nodes.Kind(strings.TrimSpace(k)))
		if err != nil {
			return err
		}
		ns = append(ns, n)
	}
	src, err := shaders.Generate(ns...)
	if err != nil {
		return err
	}
	fmt.Print(src)
	return nil
}
