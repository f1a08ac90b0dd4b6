package core

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Frac returns x - floor(x), always in [0,1) for finite x.
func Frac(x float32) float32 {
	return x - math32.Floor(x)
}

func Frac3(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{Frac(v[0]), Frac(v[1]), Frac(v[2])}
}

func Floor3(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Floor(v[0]), math32.Floor(v[1]), math32.Floor(v[2])}
}

func Abs3(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Abs(v[0]), math32.Abs(v[1]), math32.Abs(v[2])}
}

// MaxScalar3 clamps every component from below by s.
func MaxScalar3(v mgl32.Vec3, s float32) mgl32.Vec3 {
	return mgl32.Vec3{math32.Max(v[0], s), math32.Max(v[1], s), math32.Max(v[2], s)}
}

// Len3 is the Euclidean length of v. Components whose squares overflow float32
// are summed in float64 and the result saturates at math32.MaxFloat32, so the
// length of a finite vector is always finite.
func Len3(v mgl32.Vec3) float32 {
	if l := v.Len(); !math32.IsInf(l, 0) {
		return l
	}
	x, y, z := float64(v[0]), float64(v[1]), float64(v[2])
	l := math.Sqrt(x*x + y*y + z*z)
	if l > math32.MaxFloat32 {
		return math32.MaxFloat32
	}
	return float32(l)
}

// Hadamard is the component-wise product.
func Hadamard(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func MaxComponent(v mgl32.Vec3) float32 {
	return math32.Max(v[0], math32.Max(v[1], v[2]))
}

// Lerp interpolates as (1-t)*a + t*b, matching the shader helper.
func Lerp(a, b, t float32) float32 {
	return (1.0-t)*a + t*b
}

// Smoothstep01 is the cubic Hermite weight 3t²-2t³ for t in [0,1].
func Smoothstep01(t float32) float32 {
	return t * t * (3.0 - 2.0*t)
}

// Finite3 reports whether no component is NaN or infinite.
func Finite3(v mgl32.Vec3) bool {
	for _, c := range v {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Clamp01 clamps x to [0,1]; NaN maps to 0.
func Clamp01(x float32) float32 {
	if math32.IsNaN(x) {
		return 0
	}
	return mgl32.Clamp(x, 0, 1)
}
