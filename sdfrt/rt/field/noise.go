package field

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetric/sdfrt/rt/core"
)

// Octaves used by FBM. Octave i samples at p*scale/2^i with weight 0.5^(Octaves-i).
const Octaves = 3

var hashVector = [3]float64{12.9898, 78.233, 125.67}

const hashGain = 43758.5453

// voronoiMatrix is applied as a row vector times a row-major matrix.
var voronoiMatrix = [3][3]float64{
	{15.27, 47.63, 99.41},
	{89.98, 127.45, 12.84},
	{64.82, 158.34, 78.45},
}

const voronoiGain = 46839.32

func fract64(x float64) float64 {
	return x - math.Floor(x)
}

// Hash maps a point to a deterministic pseudo-random value in [0,1).
// The sine runs in float64; large lattice coordinates lose too much in float32.
func Hash(p mgl32.Vec3) float32 {
	dot := float64(p[0])*hashVector[0] + float64(p[1])*hashVector[1] + float64(p[2])*hashVector[2]
	return clampBelowOne(fract64(math.Sin(dot) * hashGain))
}

// RandomVector returns a pseudo-random offset in [0,1)³ for a lattice cell.
func RandomVector(p mgl32.Vec3) mgl32.Vec3 {
	var out mgl32.Vec3
	for j := 0; j < 3; j++ {
		s := float64(p[0])*voronoiMatrix[0][j] + float64(p[1])*voronoiMatrix[1][j] + float64(p[2])*voronoiMatrix[2][j]
		out[j] = clampBelowOne(fract64(math.Sin(s) * voronoiGain))
	}
	return out
}

// largest float32 below 1
const belowOne float32 = 1 - 1.0/(1<<24)

// float64 fractions just under 1 round up to 1.0 in float32.
func clampBelowOne(x float64) float32 {
	f := float32(x)
	if f >= 1 {
		return belowOne
	}
	return f
}

// ValueNoise3D interpolates Hash at the eight corners of the unit cell
// containing p with smoothstep weights, so the field is C1 across cell faces.
func ValueNoise3D(p mgl32.Vec3) float32 {
	i := core.Floor3(p)
	f := core.Frac3(p)
	w := mgl32.Vec3{core.Smoothstep01(f[0]), core.Smoothstep01(f[1]), core.Smoothstep01(f[2])}

	corner := func(x, y, z float32) float32 {
		return Hash(i.Add(mgl32.Vec3{x, y, z}))
	}

	bottomFront := core.Lerp(corner(0, 0, 0), corner(1, 0, 0), w[0])
	topFront := core.Lerp(corner(0, 1, 0), corner(1, 1, 0), w[0])
	bottomBack := core.Lerp(corner(0, 0, 1), corner(1, 0, 1), w[0])
	topBack := core.Lerp(corner(0, 1, 1), corner(1, 1, 1), w[0])

	front := core.Lerp(bottomFront, topFront, w[1])
	back := core.Lerp(bottomBack, topBack, w[1])
	return core.Lerp(front, back, w[2])
}

// FBM sums Octaves of value noise at halving frequency and doubling weight.
// The result lies in [0, 0.875).
func FBM(p mgl32.Vec3, scale float32) float32 {
	var value float32
	for i := 0; i < Octaves; i++ {
		freq := math32.Pow(2, float32(i))
		amp := math32.Pow(0.5, float32(Octaves-i))
		value += ValueNoise3D(p.Mul(scale/freq)) * amp
	}
	return value
}

// voronoiStart is larger than any distance reachable inside the 3x3x3 window.
const voronoiStart = 8.0

// VoronoiCell searches the 27 lattice cells around floor(p) and returns the
// distance from frac(p) to the nearest jittered feature point and that cell's offset.
// The offset is (0,1,0) only if no cell is closer than the start value.
func VoronoiCell(p mgl32.Vec3) (float32, mgl32.Vec3) {
	g := core.Floor3(p)
	f := core.Frac3(p)
	res := float32(voronoiStart)
	cell := mgl32.Vec3{0, 1, 0}

	for y := -1; y <= 1; y++ {
		for x := -1; x <= 1; x++ {
			for z := -1; z <= 1; z++ {
				lattice := mgl32.Vec3{float32(x), float32(y), float32(z)}
				offset := RandomVector(lattice.Add(g))
				d := lattice.Add(offset).Sub(f).Len()
				if d < res {
					res = d
					cell = offset
				}
			}
		}
	}
	return res, cell
}

func Voronoi3D(p mgl32.Vec3) float32 {
	d, _ := VoronoiCell(p)
	return d
}
