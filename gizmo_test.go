package volumetric

import (
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/gekko3d/volumetric/sdfrt/rt/render"
)

func TestGizmoCubeSegments(t *testing.T) {
	g := NewGizmoCube(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{2, 2, 2}, GizmoCyan)
	segs := g.segments()
	assert.Len(t, segs, 12)
	for _, s := range segs {
		// every edge has length 2 and runs along a single axis
		assert.InDelta(t, 2, s[1].Sub(s[0]).Len(), 1e-6)
		for _, p := range s {
			assert.InDelta(t, 1, mgl32.Abs(p.X()-1), 1e-6)
		}
	}

	line := NewGizmoLine(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, GizmoYellow)
	assert.Len(t, line.segments(), 1)
}

func TestGizmoBufferRasterize(t *testing.T) {
	var buf GizmoBuffer
	buf.Line(mgl32.Vec3{-0.5, 0, 0}, mgl32.Vec3{0.5, 0, 0}, GizmoYellow)
	buf.WireCube(mgl32.Vec3{}, mgl32.Vec3{0.5, 0.5, 0.5}, GizmoCyan)
	// behind the camera, skipped
	buf.Line(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{0, 1, 3}, GizmoYellow)
	assert.Len(t, buf.Items(), 3)

	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	buf.Rasterize(img, render.DefaultCamera())

	centre := img.NRGBAAt(32, 32)
	assert.Equal(t, uint8(255), centre.A)
	assert.Equal(t, uint8(255), centre.R)
	assert.Equal(t, uint8(0), img.NRGBAAt(32, 2).A)

	buf.Clear()
	assert.Empty(t, buf.Items())
}

func TestGizmoModuleClearsEachFrame(t *testing.T) {
	app := NewApp().UseModules(GizmoModule{})
	buf := Resource[GizmoBuffer](app)
	app.UseSystem(System(func(g *GizmoBuffer) {
		g.Line(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, GizmoYellow)
	}))
	app.Tick(0)
	app.Tick(0)
	assert.Len(t, buf.Items(), 1)
	assert.Same(t, buf, useGizmos(app, app.Commands()))
}
