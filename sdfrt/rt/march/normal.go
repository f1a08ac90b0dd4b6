package march

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetric/sdfrt/rt/core"
	"github.com/gekko3d/volumetric/sdfrt/rt/field"
)

// NormalEpsilon is the half width of the central differences.
const NormalEpsilon = 0.01

var axes = [3]mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// Probe samples f at p shifted by ±eps along each axis.
func Probe(f field.Field, p mgl32.Vec3, eps float32) (pos, neg mgl32.Vec3) {
	for i, axis := range axes {
		off := axis.Mul(eps)
		pos[i] = f.Distance(p.Add(off))
		neg[i] = f.Distance(p.Sub(off))
	}
	return pos, neg
}

// Gradient is the unnormalised central difference f(p+eps) - f(p-eps) per axis.
func Gradient(f field.Field, p mgl32.Vec3, eps float32) mgl32.Vec3 {
	pos, neg := Probe(f, p, eps)
	return pos.Sub(neg)
}

// Normal estimates the surface normal of f at p. A flat or non-finite gradient
// yields the zero vector instead of NaN.
func Normal(f field.Field, p mgl32.Vec3, eps float32) mgl32.Vec3 {
	g := Gradient(f, p, eps)
	l := g.Len()
	if l == 0 || !core.Finite3(g) {
		return mgl32.Vec3{}
	}
	return g.Mul(1 / l)
}
