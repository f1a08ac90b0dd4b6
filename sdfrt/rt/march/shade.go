package march

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Lambert returns the grey diffuse term max(n·l, 0) with alpha 1.
// The light direction is used as given; values above 1 are clamped only on output.
func Lambert(normal, lightDirection mgl32.Vec3) mgl32.Vec4 {
	ndotl := math32.Max(normal.Dot(lightDirection), 0)
	return mgl32.Vec4{ndotl, ndotl, ndotl, 1}
}
