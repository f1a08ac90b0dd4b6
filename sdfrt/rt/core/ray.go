package core

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// ToObject moves the ray into the object space described by w2o.
// The direction is not renormalised so that t stays comparable.
func (r Ray) ToObject(w2o mgl32.Mat4) Ray {
	return Ray{
		Origin:    w2o.Mul4x1(r.Origin.Vec4(1.0)).Vec3(),
		Direction: w2o.Mul4x1(r.Direction.Vec4(0.0)).Vec3(),
	}
}

// IntersectAABB is the slab test. The ray misses when tMin > tMax or tMax < 0.
// tMin is clamped to 0 so an origin inside the box enters at t=0.
func IntersectAABB(ray Ray, minB, maxB mgl32.Vec3) (float32, float32) {
	invDir := mgl32.Vec3{1.0 / (ray.Direction.X() + 1e-8), 1.0 / (ray.Direction.Y() + 1e-8), 1.0 / (ray.Direction.Z() + 1e-8)}
	t1 := Hadamard(minB.Sub(ray.Origin), invDir)
	t2 := Hadamard(maxB.Sub(ray.Origin), invDir)

	tMinV := mgl32.Vec3{math32.Min(t1.X(), t2.X()), math32.Min(t1.Y(), t2.Y()), math32.Min(t1.Z(), t2.Z())}
	tMaxV := mgl32.Vec3{math32.Max(t1.X(), t2.X()), math32.Max(t1.Y(), t2.Y()), math32.Max(t1.Z(), t2.Z())}

	realMin := math32.Max(0, MaxComponent(tMinV))
	realMax := math32.Min(math.MaxFloat32, math32.Min(tMaxV.X(), math32.Min(tMaxV.Y(), tMaxV.Z())))

	return realMin, realMax
}
