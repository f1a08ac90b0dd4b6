package render

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetric/sdfrt/rt/core"
)

// Camera is a pinhole camera looking from Eye toward Target. FOV is the vertical
// field of view in degrees.
type Camera struct {
	Eye    mgl32.Vec3 `json:"eye"`
	Target mgl32.Vec3 `json:"target"`
	Up     mgl32.Vec3 `json:"up"`
	FOV    float32    `json:"fov"`
}

func DefaultCamera() Camera {
	return Camera{
		Eye:    mgl32.Vec3{0, 0, 2},
		Target: mgl32.Vec3{0, 0, 0},
		Up:     mgl32.Vec3{0, 1, 0},
		FOV:    45,
	}
}

// basis is the orthonormal camera frame plus the half extents of the image plane
// at unit distance.
type basis struct {
	forward, right, up mgl32.Vec3
	halfW, halfH       float32
}

func (c Camera) basis(width, height int) basis {
	forward := c.Target.Sub(c.Eye).Normalize()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward)

	halfH := math32.Tan(mgl32.DegToRad(c.FOV) * 0.5)
	halfW := halfH * float32(width) / float32(height)
	return basis{forward: forward, right: right, up: up, halfW: halfW, halfH: halfH}
}

// ray returns the world space ray through the centre of pixel (x, y). Row 0 is the top.
func (b basis) ray(eye mgl32.Vec3, x, y, width, height int) core.Ray {
	u := (2*(float32(x)+0.5)/float32(width) - 1) * b.halfW
	v := (1 - 2*(float32(y)+0.5)/float32(height)) * b.halfH
	dir := b.forward.Add(b.right.Mul(u)).Add(b.up.Mul(v)).Normalize()
	return core.Ray{Origin: eye, Direction: dir}
}

// PixelRay is the world space ray through pixel (x, y) of a width x height image.
func (c Camera) PixelRay(x, y, width, height int) core.Ray {
	return c.basis(width, height).ray(c.Eye, x, y, width, height)
}

// Project maps a world point to continuous pixel coordinates. ok is false for
// points behind the camera.
func (c Camera) Project(p mgl32.Vec3, width, height int) (x, y float32, ok bool) {
	b := c.basis(width, height)
	d := p.Sub(c.Eye)
	z := d.Dot(b.forward)
	if z <= 0 {
		return 0, 0, false
	}
	u := d.Dot(b.right) / (z * b.halfW)
	v := d.Dot(b.up) / (z * b.halfH)
	x = (u+1)*0.5*float32(width) - 0.5
	y = (1-v)*0.5*float32(height) - 0.5
	return x, y, true
}
