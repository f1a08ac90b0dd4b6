package volumetric

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetric/sdfrt/rt/field"
)

const (
	flowForce3D    = 0.01
	flowMaxSpeed3D = 0.1
	// flowDrift is added to the noise x offset after every field update.
	flowDrift = 0.01
)

var (
	worldUp      = mgl32.Vec3{0, 1, 0}
	worldRight   = mgl32.Vec3{1, 0, 0}
	worldForward = mgl32.Vec3{0, 0, 1}
)

// FlowField is a cube of Resolution³ cells, each holding a direction built from
// two Perlin angle fields, and particles advected through it.
type FlowField struct {
	Center     mgl32.Vec3
	Size       float32
	Resolution int
	Scale      float32
	Offset     mgl32.Vec3
	Particles  []Particle

	cells   []mgl32.Vec3
	xOffset float32
	rng     *rand.Rand
}

func NewFlowField(center mgl32.Vec3, size float32, resolution int, scale float32, offset mgl32.Vec3, particles int, seed int64) *FlowField {
	if resolution < 1 {
		resolution = 1
	}
	ff := &FlowField{
		Center:     center,
		Size:       size,
		Resolution: resolution,
		Scale:      scale,
		Offset:     offset,
		cells:      make([]mgl32.Vec3, resolution*resolution*resolution),
		rng:        rand.New(rand.NewSource(seed)),
	}
	ff.UpdateField()
	ff.Particles = make([]Particle, particles)
	for i := range ff.Particles {
		ff.Particles[i].Position = ff.randomPosition()
	}
	return ff
}

func (ff *FlowField) index(x, y, z int) int {
	return (z*ff.Resolution+y)*ff.Resolution + x
}

// At returns the field vector of cell (x, y, z).
func (ff *FlowField) At(x, y, z int) mgl32.Vec3 {
	return ff.cells[ff.index(x, y, z)]
}

// XOffset is the current drift of the noise lookup along x.
func (ff *FlowField) XOffset() float32 { return ff.xOffset }

func angle(x, y float32) float32 {
	return field.Perlin2D(x, y) * math32.Pi * 4
}

// UpdateField recomputes every cell. The y-rotated vector depends on (x, z) and
// the z-rotated one on (x, y); a cell holds their average.
func (ff *FlowField) UpdateField() {
	res := ff.Resolution
	fres := float32(res)
	ups := make([]mgl32.Vec3, res)
	for x := 0; x < res; x++ {
		nx := float32(x)/fres*ff.Scale + ff.Offset.X() + ff.xOffset
		for z := 0; z < res; z++ {
			a := angle(nx, float32(z)/fres*ff.Scale+ff.Offset.Z())
			ups[z] = mgl32.QuatRotate(a, worldUp).Rotate(worldRight)
		}
		for y := 0; y < res; y++ {
			a := angle(nx, float32(y)/fres*ff.Scale+ff.Offset.Y())
			forward := mgl32.QuatRotate(a, worldForward).Rotate(worldRight)
			for z := 0; z < res; z++ {
				ff.cells[ff.index(x, y, z)] = forward.Add(ups[z]).Mul(0.5)
			}
		}
	}
	ff.xOffset += flowDrift
}

func (ff *FlowField) min() mgl32.Vec3 {
	h := ff.Size * 0.5
	return ff.Center.Sub(mgl32.Vec3{h, h, h})
}

// Cell returns the cell containing p, clamped to the grid.
func (ff *FlowField) Cell(p mgl32.Vec3) (x, y, z int) {
	rel := p.Sub(ff.min()).Mul(float32(ff.Resolution) / ff.Size)
	clamp := func(v float32) int {
		i := int(math32.Floor(v))
		return max(0, min(ff.Resolution-1, i))
	}
	return clamp(rel.X()), clamp(rel.Y()), clamp(rel.Z())
}

// Contains reports whether p lies strictly inside the cube.
func (ff *FlowField) Contains(p mgl32.Vec3) bool {
	lo := ff.min()
	for i := 0; i < 3; i++ {
		if p[i] <= lo[i] || p[i] >= lo[i]+ff.Size {
			return false
		}
	}
	return true
}

func (ff *FlowField) randomPosition() mgl32.Vec3 {
	lo := ff.min()
	return mgl32.Vec3{
		lo.X() + ff.rng.Float32()*ff.Size,
		lo.Y() + ff.rng.Float32()*ff.Size,
		lo.Z() + ff.rng.Float32()*ff.Size,
	}
}

// Step pushes every particle by its cell's vector, respawns the ones that left
// the cube and then advances the field.
func (ff *FlowField) Step() (respawned int) {
	for i := range ff.Particles {
		p := &ff.Particles[i]
		x, y, z := ff.Cell(p.Position)
		p.ApplyForce(ff.At(x, y, z).Mul(flowForce3D), flowMaxSpeed3D)
		p.Update()
		if !ff.Contains(p.Position) {
			p.Position = ff.randomPosition()
			respawned++
		}
	}
	ff.UpdateField()
	return respawned
}

// DrawGizmos adds the bounding cube and one line per cell showing its vector.
func (ff *FlowField) DrawGizmos(buf *GizmoBuffer) {
	buf.WireCube(ff.Center, mgl32.Vec3{ff.Size, ff.Size, ff.Size}, GizmoCyan)
	res := ff.Resolution
	if res <= 1 {
		return
	}
	chunk := ff.Size / float32(res)
	o := ff.Size * 0.5 * (1 - 1/float32(res))
	start := ff.Center.Sub(mgl32.Vec3{o, o, o})
	end := ff.Center.Add(mgl32.Vec3{o, o, o})
	lerp := func(axis, i int) float32 {
		return mgl32.Clamp(start[axis]+(end[axis]-start[axis])*float32(i)/float32(res-1), start[axis], end[axis])
	}
	for z := 0; z < res; z++ {
		for y := 0; y < res; y++ {
			for x := 0; x < res; x++ {
				pos := mgl32.Vec3{lerp(0, x), lerp(1, y), lerp(2, z)}
				buf.Line(pos, pos.Add(ff.At(x, y, z).Mul(chunk*0.5)), GizmoYellow)
			}
		}
	}
}

// FlowFieldModule simulates a 3D flow field every Update and draws its gizmos
// in PostUpdate when a GizmoBuffer is present.
type FlowFieldModule struct {
	Center     mgl32.Vec3
	Size       float32
	Resolution int
	Scale      float32
	Offset     mgl32.Vec3
	Particles  int
	Seed       int64
	Gizmos     bool
}

func NewFlowFieldModule() FlowFieldModule {
	return FlowFieldModule{Size: 1, Resolution: 20, Scale: 1, Particles: 100, Seed: 1}
}

func (m FlowFieldModule) Install(app *App, cmd *Commands) {
	ff := NewFlowField(m.Center, m.Size, m.Resolution, m.Scale, m.Offset, m.Particles, m.Seed)
	cmd.AddResources(ff)
	cmd.UseSystem(System(flowFieldSystem).InStage(Update))
	if m.Gizmos {
		useGizmos(app, cmd)
		cmd.UseSystem(System(flowFieldGizmoSystem).InStage(PostUpdate))
	}
}

func flowFieldSystem(app *App, ff *FlowField) {
	if n := ff.Step(); n > 0 {
		app.Logger().Debugf("flow field: respawned %d particles", n)
	}
}

func flowFieldGizmoSystem(ff *FlowField, gizmos *GizmoBuffer) {
	ff.DrawGizmos(gizmos)
}
