package march

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/volumetric/sdfrt/rt/core"
	"github.com/gekko3d/volumetric/sdfrt/rt/field"
)

func TestMarchHitsSphere(t *testing.T) {
	sphere := field.Sphere{Radius: 0.2}

	res := March(sphere, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 0, 1}, DefaultConfig())

	require.True(t, res.Hit, "ray toward the sphere should converge")
	assert.Less(t, res.Distance, float32(DefaultMinDistance))
	assert.LessOrEqual(t, res.Steps, DefaultSteps)
	assert.InDelta(t, -0.2, res.Position.Z(), 0.02)
}

func TestMarchMissesAway(t *testing.T) {
	sphere := field.Sphere{Radius: 0.2}

	res := March(sphere, mgl32.Vec3{0, 0, -100}, mgl32.Vec3{0, 0, -1}, DefaultConfig())

	assert.False(t, res.Hit)
	assert.Equal(t, DefaultSteps, res.Steps)
	assert.True(t, core.Finite3(res.Position), "position %v", res.Position)
	assert.False(t, math32.IsInf(res.Distance, 0))
}

func TestMarchOverflowEndsEarly(t *testing.T) {
	sphere := field.Sphere{Radius: 0.2}
	cfg := DefaultConfig()

	// every step doubles the distance, so the position leaves float32 range on the second step
	res := March(sphere, mgl32.Vec3{0, 0, -1e38}, mgl32.Vec3{0, 0, -1}, cfg)

	assert.False(t, res.Hit)
	assert.Equal(t, 3, res.Steps)
	assert.Less(t, res.Steps, cfg.Steps)
	assert.True(t, math32.IsInf(res.Position.Z(), -1))
}

func TestMarchInfiniteFieldIsMiss(t *testing.T) {
	inf := field.FieldFunc(func(mgl32.Vec3) float32 { return math32.Inf(-1) })
	res := March(inf, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, DefaultConfig())
	assert.False(t, res.Hit)
	assert.Equal(t, 1, res.Steps)
}

func TestMarchZeroBudgetIsMiss(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Steps = 0
	res := March(field.Sphere{Radius: 1}, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, cfg)
	assert.False(t, res.Hit)
	assert.Equal(t, 0, res.Steps)
}

func TestMarchNaNFieldIsMiss(t *testing.T) {
	nan := field.FieldFunc(func(mgl32.Vec3) float32 { return math32.NaN() })
	res := March(nan, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, DefaultConfig())
	assert.False(t, res.Hit)
	assert.Equal(t, 1, res.Steps)
}

func TestMarchHitAtOrigin(t *testing.T) {
	// starting inside the surface converges on the first sample
	res := March(field.Sphere{Radius: 1}, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, DefaultConfig())
	require.True(t, res.Hit)
	assert.Equal(t, 1, res.Steps)
	assert.Equal(t, mgl32.Vec3{}, res.Position)
}

func TestFixedStepIgnoresDistance(t *testing.T) {
	calls := 0
	plane := field.FieldFunc(func(p mgl32.Vec3) float32 {
		calls++
		return 10 - p.Z()
	})
	cfg := Config{Steps: 5, MinDistance: 0.01, Policy: FixedStep}

	res := March(plane, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, cfg)

	assert.False(t, res.Hit)
	assert.Equal(t, 5, calls)
	assert.InDelta(t, 0.5, res.Position.Z(), 1e-5)
}

func TestDampedStepScalesDistance(t *testing.T) {
	plane := field.FieldFunc(func(p mgl32.Vec3) float32 { return 1 - p.Z() })
	cfg := Config{Steps: 1, MinDistance: 0.01, Policy: DampedStep}

	res := March(plane, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, cfg)

	assert.False(t, res.Hit)
	assert.InDelta(t, 0.1, res.Position.Z(), 1e-6)
}

func TestDampedStepStillConverges(t *testing.T) {
	plane := field.FieldFunc(func(p mgl32.Vec3) float32 { return 1 - p.Z() })
	cfg := Config{Steps: 100, MinDistance: 0.01, Policy: DampedStep}

	res := March(plane, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, cfg)

	// 0.9^n < 0.01 after 44 steps
	require.True(t, res.Hit)
	assert.Equal(t, 45, res.Steps)
}

func TestMaxDistanceEndsEarly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDistance = 50
	res := March(field.Sphere{Radius: 0.2}, mgl32.Vec3{0, 0, -10}, mgl32.Vec3{0, 0, -1}, cfg)
	assert.False(t, res.Hit)
	assert.Less(t, res.Steps, DefaultSteps)
}

func TestNormalMatchesAnalyticSphere(t *testing.T) {
	center := mgl32.Vec3{0.1, -0.2, 0.05}
	sphere := field.Sphere{Center: center, Radius: 0.2}
	points := []mgl32.Vec3{
		{0.5, 0.3, -0.4},
		{0.1, 0.0, 0.05},
		{-0.3, -0.2, 0.5},
		{1, 1, 1},
	}
	for _, p := range points {
		want := p.Sub(center).Normalize()
		got := Normal(sphere, p, NormalEpsilon)
		if got.Sub(want).Len() > 2e-3 {
			t.Errorf("normal at %v = %v, want %v", p, got, want)
		}
	}
}

func TestNormalOfFlatFieldIsZero(t *testing.T) {
	flat := field.FieldFunc(func(mgl32.Vec3) float32 { return 1 })
	n := Normal(flat, mgl32.Vec3{1, 2, 3}, NormalEpsilon)
	assert.Equal(t, mgl32.Vec3{}, n)
}

func TestNormalOfBoxFace(t *testing.T) {
	box := field.Box{Bounding: mgl32.Vec3{0.2, 0.2, 0.2}}
	n := Normal(box, mgl32.Vec3{0, 0, -0.2}, NormalEpsilon)
	assert.True(t, n.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-4), "got %v", n)
}

func TestProbe(t *testing.T) {
	f := field.FieldFunc(func(p mgl32.Vec3) float32 { return p.X() + 2*p.Y() + 3*p.Z() })
	pos, neg := Probe(f, mgl32.Vec3{}, 0.5)
	assert.Equal(t, mgl32.Vec3{0.5, 1, 1.5}, pos)
	assert.Equal(t, mgl32.Vec3{-0.5, -1, -1.5}, neg)
}

func TestLambert(t *testing.T) {
	l := mgl32.Vec3{1, 2, 3}.Normalize()
	assert.True(t, Lambert(l, l).ApproxEqualThreshold(mgl32.Vec4{1, 1, 1, 1}, 1e-6))

	perp := mgl32.Vec3{0, 0, 1}
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, Lambert(perp, mgl32.Vec3{1, 0, 0}))

	away := Lambert(mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{1, 0, 0})
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, away)

	// unnormalised default light is passed through
	c := Lambert(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{1, 1, 1})
	assert.Equal(t, float32(1), c.X())
	c = Lambert(mgl32.Vec3{1, 1, 1}.Normalize(), mgl32.Vec3{1, 1, 1})
	assert.InDelta(t, math32.Sqrt(3), c.X(), 1e-5)
}

func TestStepModeString(t *testing.T) {
	assert.Equal(t, "distance", StepDistance.String())
	assert.Equal(t, "fixed", StepFixed.String())
}
