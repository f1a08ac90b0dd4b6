package field

import (
	"github.com/chewxy/math32"

	"github.com/gekko3d/volumetric/sdfrt/rt/core"
)

// permutation is Ken Perlin's reference table, doubled to avoid index wrapping.
var permutation = func() [512]uint8 {
	base := [256]uint8{
		151, 160, 137, 91, 90, 15, 131, 13, 201, 95, 96, 53, 194, 233, 7, 225,
		140, 36, 103, 30, 69, 142, 8, 99, 37, 240, 21, 10, 23, 190, 6, 148,
		247, 120, 234, 75, 0, 26, 197, 62, 94, 252, 219, 203, 117, 35, 11, 32,
		57, 177, 33, 88, 237, 149, 56, 87, 174, 20, 125, 136, 171, 168, 68, 175,
		74, 165, 71, 134, 139, 48, 27, 166, 77, 146, 158, 231, 83, 111, 229, 122,
		60, 211, 133, 230, 220, 105, 92, 41, 55, 46, 245, 40, 244, 102, 143, 54,
		65, 25, 63, 161, 1, 216, 80, 73, 209, 76, 132, 187, 208, 89, 18, 169,
		200, 196, 135, 130, 116, 188, 159, 86, 164, 100, 109, 198, 173, 186, 3, 64,
		52, 217, 226, 250, 124, 123, 5, 202, 38, 147, 118, 126, 255, 82, 85, 212,
		207, 206, 59, 227, 47, 16, 58, 17, 182, 189, 28, 42, 223, 183, 170, 213,
		119, 248, 152, 2, 44, 154, 163, 70, 221, 153, 101, 155, 167, 43, 172, 9,
		129, 22, 39, 253, 19, 98, 108, 110, 79, 113, 224, 232, 178, 185, 112, 104,
		218, 246, 97, 228, 251, 34, 242, 193, 238, 210, 144, 12, 191, 179, 162, 241,
		81, 51, 145, 235, 249, 14, 239, 107, 49, 192, 214, 31, 181, 199, 106, 157,
		184, 84, 204, 176, 115, 121, 50, 45, 127, 4, 150, 254, 138, 236, 205, 93,
		222, 114, 67, 29, 24, 72, 243, 141, 128, 195, 78, 66, 215, 61, 156, 180,
	}
	var p [512]uint8
	for i := 0; i < 512; i++ {
		p[i] = base[i&255]
	}
	return p
}()

func fade(t float32) float32 {
	return t * t * t * (t*(t*6-15) + 10)
}

func grad2(hash uint8, x, y float32) float32 {
	switch hash & 7 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	case 3:
		return -x - y
	case 4:
		return x
	case 5:
		return -x
	case 6:
		return y
	default:
		return -y
	}
}

// Perlin2D is 2D gradient noise remapped to [0,1]. Integer lattice points
// return exactly 0.5, like the engine noise the flow fields were tuned against.
func Perlin2D(x, y float32) float32 {
	xf := math32.Floor(x)
	yf := math32.Floor(y)
	xi := int(xf) & 255
	yi := int(yf) & 255
	x -= xf
	y -= yf

	u := fade(x)
	v := fade(y)

	aa := permutation[int(permutation[xi])+yi]
	ab := permutation[int(permutation[xi])+yi+1]
	ba := permutation[int(permutation[xi+1])+yi]
	bb := permutation[int(permutation[xi+1])+yi+1]

	n := core.Lerp(
		core.Lerp(grad2(aa, x, y), grad2(ba, x-1, y), u),
		core.Lerp(grad2(ab, x, y-1), grad2(bb, x-1, y-1), u),
		v,
	)
	// gradients of length <= sqrt(2) keep n within [-1,1]
	return core.Clamp01((n + 1) * 0.5)
}
