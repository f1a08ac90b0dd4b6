package volumetric

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetric/sdfrt/rt/render"
)

type GizmoType int

const (
	GizmoLine GizmoType = iota
	GizmoCube
)

var (
	GizmoCyan   = [4]float32{0, 1, 1, 1}
	GizmoYellow = [4]float32{1, 0.92, 0.016, 1}
)

// Gizmo is a wireframe debug shape in world space.
type Gizmo struct {
	Type  GizmoType
	Color [4]float32

	// For Cube, Position is the centre and Scale the edge lengths.
	// For Line, Position is the start.
	Position mgl32.Vec3
	Scale    mgl32.Vec3
	LineEnd  mgl32.Vec3
}

func NewGizmoLine(start, end mgl32.Vec3, color [4]float32) Gizmo {
	return Gizmo{Type: GizmoLine, Position: start, LineEnd: end, Color: color, Scale: mgl32.Vec3{1, 1, 1}}
}

func NewGizmoCube(center mgl32.Vec3, size mgl32.Vec3, color [4]float32) Gizmo {
	return Gizmo{Type: GizmoCube, Position: center, Scale: size, Color: color}
}

// segments returns the gizmo as world space line segments.
func (g Gizmo) segments() [][2]mgl32.Vec3 {
	if g.Type == GizmoLine {
		return [][2]mgl32.Vec3{{g.Position, g.LineEnd}}
	}
	h := g.Scale.Mul(0.5)
	corner := func(i int) mgl32.Vec3 {
		c := g.Position
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				c[axis] += h[axis]
			} else {
				c[axis] -= h[axis]
			}
		}
		return c
	}
	segs := make([][2]mgl32.Vec3, 0, 12)
	for i := 0; i < 8; i++ {
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) == 0 {
				segs = append(segs, [2]mgl32.Vec3{corner(i), corner(i | 1<<axis)})
			}
		}
	}
	return segs
}

// GizmoBuffer collects the gizmos drawn during one frame. GizmoModule clears it
// in Prelude.
type GizmoBuffer struct {
	items []Gizmo
}

func (b *GizmoBuffer) Line(start, end mgl32.Vec3, color [4]float32) {
	b.items = append(b.items, NewGizmoLine(start, end, color))
}

func (b *GizmoBuffer) WireCube(center, size mgl32.Vec3, color [4]float32) {
	b.items = append(b.items, NewGizmoCube(center, size, color))
}

func (b *GizmoBuffer) Items() []Gizmo { return b.items }

func (b *GizmoBuffer) Clear() { b.items = b.items[:0] }

// Rasterize draws every gizmo into img as seen from cam. Segments with an end
// behind the camera are skipped.
func (b *GizmoBuffer) Rasterize(img draw.Image, cam render.Camera) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	for _, g := range b.items {
		c := color.NRGBA{
			R: uint8(g.Color[0]*255 + 0.5),
			G: uint8(g.Color[1]*255 + 0.5),
			B: uint8(g.Color[2]*255 + 0.5),
			A: uint8(g.Color[3]*255 + 0.5),
		}
		for _, s := range g.segments() {
			x0, y0, ok0 := cam.Project(s[0], w, h)
			x1, y1, ok1 := cam.Project(s[1], w, h)
			if !ok0 || !ok1 || offscreen(x0, y0, w, h) || offscreen(x1, y1, w, h) {
				continue
			}
			drawLine(img, bounds.Min.X+int(math32.Round(x0)), bounds.Min.Y+int(math32.Round(y0)),
				bounds.Min.X+int(math32.Round(x1)), bounds.Min.Y+int(math32.Round(y1)), c)
		}
	}
}

// offscreen reports points so far outside the image that walking a line to them
// is not worth it.
func offscreen(x, y float32, w, h int) bool {
	m := float32(4 * (w + h))
	return x < -m || y < -m || x > float32(w)+m || y > float32(h)+m
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// drawLine is Bresenham's line, clipped to the image bounds per pixel.
func drawLine(img draw.Image, x0, y0, x1, y1 int, c color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	bounds := img.Bounds()
	e := dx + dy
	for {
		if image.Pt(x0, y0).In(bounds) {
			img.Set(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

type GizmoModule struct{}

func (GizmoModule) Install(app *App, cmd *Commands) {
	ensureGizmos(app)
	cmd.UseSystem(System(clearGizmosSystem).InStage(Prelude))
}

func ensureGizmos(app *App) *GizmoBuffer {
	return ensureResource(app, func() *GizmoBuffer { return &GizmoBuffer{} })
}

// useGizmos installs GizmoModule unless a buffer already exists.
func useGizmos(app *App, cmd *Commands) *GizmoBuffer {
	if g := Resource[GizmoBuffer](app); g != nil {
		return g
	}
	GizmoModule{}.Install(app, cmd)
	return Resource[GizmoBuffer](app)
}

func clearGizmosSystem(gizmos *GizmoBuffer) {
	gizmos.Clear()
}
