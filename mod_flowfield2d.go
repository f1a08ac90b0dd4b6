package volumetric

import (
	"image"
	"image/color"
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	flowForce2D    = 0.1
	flowMaxSpeed2D = 0.001
)

// FlowField2D advects particles in the unit square and paints their trail.
// The field is computed once; only particles move afterwards.
type FlowField2D struct {
	Resolution int
	Scale      float32
	Offset     mgl32.Vec2
	Particles  []Particle2D
	Texture    AssetId

	cells   []mgl32.Vec2
	xOffset float32
	rng     *rand.Rand
}

func NewFlowField2D(resolution int, scale float32, offset mgl32.Vec2, particles int, seed int64) *FlowField2D {
	if resolution < 2 {
		resolution = 2
	}
	ff := &FlowField2D{
		Resolution: resolution,
		Scale:      scale,
		Offset:     offset,
		cells:      make([]mgl32.Vec2, resolution*resolution),
		rng:        rand.New(rand.NewSource(seed)),
	}
	ff.Particles = make([]Particle2D, particles)
	for i := range ff.Particles {
		ff.Particles[i].Position = ff.randomPosition()
	}
	ff.UpdateField()
	return ff
}

func (ff *FlowField2D) At(x, y int) mgl32.Vec2 {
	return ff.cells[y*ff.Resolution+x]
}

func (ff *FlowField2D) UpdateField() {
	fres := float32(ff.Resolution)
	for x := 0; x < ff.Resolution; x++ {
		for y := 0; y < ff.Resolution; y++ {
			a := angle(float32(x)/fres*ff.Scale+ff.Offset.X()+ff.xOffset, float32(y)/fres*ff.Scale+ff.Offset.Y())
			ff.cells[y*ff.Resolution+x] = mgl32.Vec2{math32.Cos(a), math32.Sin(a)}
		}
	}
	ff.xOffset += flowDrift
}

func (ff *FlowField2D) randomPosition() mgl32.Vec2 {
	return mgl32.Vec2{ff.rng.Float32(), ff.rng.Float32()}
}

func (ff *FlowField2D) cell(v float32) int {
	i := int(math32.Floor(v * float32(ff.Resolution-1)))
	return max(0, min(ff.Resolution-1, i))
}

// Step moves every particle and paints its new position white into img.
// Texture row 0 is the top, so y is flipped.
func (ff *FlowField2D) Step(img *image.NRGBA) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	for i := range ff.Particles {
		p := &ff.Particles[i]
		p.ApplyForce(ff.At(ff.cell(p.Position.X()), ff.cell(p.Position.Y())).Mul(flowForce2D), flowMaxSpeed2D)
		p.Update()
		if pos := p.Position; pos.X() <= 0 || pos.X() >= 1 || pos.Y() <= 0 || pos.Y() >= 1 {
			p.Position = ff.randomPosition()
		}
		px := int(math32.Floor(p.Position.X() * float32(w-1)))
		py := h - 1 - int(math32.Floor(p.Position.Y()*float32(h-1)))
		img.SetNRGBA(b.Min.X+px, b.Min.Y+py, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	}
}

// DrawGizmos outlines the texture plane, Width/100 by Height/100 units around
// center, and one line per cell.
func (ff *FlowField2D) DrawGizmos(buf *GizmoBuffer, center mgl32.Vec3, width, height int) {
	size := mgl32.Vec2{float32(width) / 100, float32(height) / 100}
	buf.WireCube(center, mgl32.Vec3{size.X(), size.Y(), 0}, GizmoCyan)
	res := ff.Resolution
	chunk := size.Mul(1 / float32(res))
	o := size.Mul(0.5 * (1 - 1/float32(res)))
	for y := 0; y < res; y++ {
		py := center.Y() - o.Y() + 2*o.Y()*float32(y)/float32(res-1)
		for x := 0; x < res; x++ {
			px := center.X() - o.X() + 2*o.X()*float32(x)/float32(res-1)
			pos := mgl32.Vec3{px, py, center.Z()}
			v := ff.At(x, y)
			end := pos.Add(mgl32.Vec3{v.X() * chunk.X(), v.Y() * chunk.Y(), 0}.Mul(0.5))
			buf.Line(pos, end, GizmoYellow)
		}
	}
}

// FlowFieldTexture2DModule paints flow field particle trails onto a black
// texture asset every Update.
type FlowFieldTexture2DModule struct {
	Width      int
	Height     int
	Resolution int
	Scale      float32
	Offset     mgl32.Vec2
	Particles  int
	Seed       int64
	Gizmos     bool
}

func NewFlowFieldTexture2DModule() FlowFieldTexture2DModule {
	return FlowFieldTexture2DModule{Width: 512, Height: 512, Resolution: 20, Scale: 1, Particles: 100, Seed: 1}
}

func (m FlowFieldTexture2DModule) Install(app *App, cmd *Commands) {
	assets := ensureAssets(app)
	ff := NewFlowField2D(m.Resolution, m.Scale, m.Offset, m.Particles, m.Seed)
	ff.Texture = assets.CreateTexture(m.Width, m.Height, color.NRGBA{A: 255})
	cmd.AddResources(ff)

	cmd.UseSystem(System(flowField2DSystem).InStage(Update))
	if m.Gizmos {
		useGizmos(app, cmd)
		width, height := m.Width, m.Height
		cmd.UseSystem(System(func(ff *FlowField2D, gizmos *GizmoBuffer) {
			ff.DrawGizmos(gizmos, mgl32.Vec3{}, width, height)
		}).InStage(PostUpdate))
	}
}

func flowField2DSystem(ff *FlowField2D, assets *AssetServer) {
	img, ok := assets.Texture(ff.Texture)
	if !ok {
		return
	}
	ff.Step(img)
	assets.MarkDirty(ff.Texture)
}
