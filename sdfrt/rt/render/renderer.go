// Package render evaluates a volumetric node over a proxy cube on the CPU and
// produces an image, one independent sample per pixel.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetric/sdfrt/rt/core"
	"github.com/gekko3d/volumetric/sdfrt/rt/nodes"
)

const (
	TileSize   = 32
	maxWorkers = 128
	// WorkersEnv overrides the worker count when Renderer.Workers is zero.
	WorkersEnv = "SDFRT_WORKERS"
)

var (
	proxyMin = mgl32.Vec3{-0.5, -0.5, -0.5}
	proxyMax = mgl32.Vec3{0.5, 0.5, 0.5}
)

// Logger is the subset of the application logger the renderer reports to.
type Logger interface {
	Debugf(format string, args ...any)
}

type Renderer struct {
	Width   int
	Height  int
	Camera  Camera
	Workers int
	Logger  Logger
}

type Stats struct {
	Pixels   int
	Hits     int
	Duration time.Duration
}

func NewRenderer(width, height int) *Renderer {
	return &Renderer{Width: width, Height: height, Camera: DefaultCamera()}
}

func (r *Renderer) workerCount() int {
	n := r.Workers
	if n <= 0 {
		n = runtime.NumCPU()
		if env := os.Getenv(WorkersEnv); env != "" {
			if v, err := strconv.Atoi(env); err == nil && v > 0 {
				n = v
			}
		}
	}
	if n < 1 {
		n = 1
	}
	if n > maxWorkers {
		n = maxWorkers
	}
	return n
}

type tile struct {
	x0, y0, x1, y1 int
}

// Render draws node inside the unit cube placed by transform. Pixels whose ray
// misses the cube stay fully transparent.
func (r *Renderer) Render(ctx context.Context, node nodes.Node, transform *core.Transform) (*image.NRGBA, Stats, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return nil, Stats{}, fmt.Errorf("render: invalid size %dx%d", r.Width, r.Height)
	}
	if transform == nil {
		transform = core.NewTransform()
	}

	start := time.Now()
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	w2o := transform.WorldToObject()
	cam := r.Camera.basis(r.Width, r.Height)

	numTilesX := (r.Width + TileSize - 1) / TileSize
	numTilesY := (r.Height + TileSize - 1) / TileSize
	tiles := make(chan tile, numTilesX*numTilesY)
	for ty := 0; ty < r.Height; ty += TileSize {
		for tx := 0; tx < r.Width; tx += TileSize {
			tiles <- tile{x0: tx, y0: ty, x1: min(tx+TileSize, r.Width), y1: min(ty+TileSize, r.Height)}
		}
	}
	close(tiles)

	workers := r.workerCount()
	var hits atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tiles {
				if ctx.Err() != nil {
					return
				}
				var tileHits int64
				for y := t.y0; y < t.y1; y++ {
					for x := t.x0; x < t.x1; x++ {
						ray := cam.ray(r.Camera.Eye, x, y, r.Width, r.Height)
						c, hit := Sample(node, ray, w2o)
						if hit {
							tileHits++
						}
						img.SetNRGBA(x, y, c)
					}
				}
				hits.Add(tileHits)
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{Pixels: r.Width * r.Height, Hits: int(hits.Load()), Duration: time.Since(start)}
	if r.Logger != nil {
		r.Logger.Debugf("rendered %s %dx%d with %d workers: %d hits in %s",
			node.Kind(), r.Width, r.Height, workers, stats.Hits, stats.Duration)
	}
	return img, stats, nil
}

// Sample evaluates node for one world space ray. The ray enters the proxy cube,
// the entry point becomes the node position and the reversed ray its view direction.
func Sample(node nodes.Node, ray core.Ray, w2o mgl32.Mat4) (color.NRGBA, bool) {
	obj := ray.ToObject(w2o)
	obj.Direction = obj.Direction.Normalize()
	tMin, tMax := core.IntersectAABB(obj, proxyMin, proxyMax)
	if tMin > tMax || tMax < 0 {
		return color.NRGBA{}, false
	}
	out := node.Evaluate(nodes.Inputs{
		Position:      obj.At(tMin),
		ViewDirection: obj.Direction.Mul(-1),
	})
	return EncodeColor(node.Preview(out)), out.Hit
}

// EncodeColor clamps each channel to [0,1] and quantises it to 8 bits.
func EncodeColor(c mgl32.Vec4) color.NRGBA {
	q := func(v float32) uint8 {
		return uint8(core.Clamp01(v)*255 + 0.5)
	}
	return color.NRGBA{R: q(c.X()), G: q(c.Y()), B: q(c.Z()), A: q(c.W())}
}
