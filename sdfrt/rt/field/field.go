// Package field holds the distance fields sampled by the ray marcher and the
// hash, value-noise and Voronoi primitives the procedural fields are built from.
package field

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetric/sdfrt/rt/core"
)

// Field returns the signed distance from p to a surface, negative inside.
// Noise and Voronoi fields return a thresholded field value instead of a
// metric distance; the marcher treats both the same way.
type Field interface {
	Distance(p mgl32.Vec3) float32
}

// FieldFunc adapts a plain function into a Field.
type FieldFunc func(mgl32.Vec3) float32

func (f FieldFunc) Distance(p mgl32.Vec3) float32 {
	return f(p)
}

// Box is an axis aligned box given by its center and half extents.
type Box struct {
	Center   mgl32.Vec3
	Bounding mgl32.Vec3
}

func (b Box) Distance(p mgl32.Vec3) float32 {
	d := core.Abs3(p.Sub(b.Center)).Sub(b.Bounding)
	return math32.Min(core.MaxComponent(d), 0) + core.Len3(core.MaxScalar3(d, 0))
}

type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

func (s Sphere) Distance(p mgl32.Vec3) float32 {
	return core.Len3(p.Sub(s.Center)) - s.Radius
}

// Noise is a three octave value-noise field shifted down by Threshold.
type Noise struct {
	Scale     float32
	Threshold float32
}

func (n Noise) Distance(p mgl32.Vec3) float32 {
	return FBM(p, n.Scale) - n.Threshold
}

// Voronoi is the nearest-feature distance of a jittered lattice shifted down by Threshold.
type Voronoi struct {
	Scale     float32
	Threshold float32
}

func (v Voronoi) Distance(p mgl32.Vec3) float32 {
	return Voronoi3D(p.Mul(v.Scale)) - v.Threshold
}
