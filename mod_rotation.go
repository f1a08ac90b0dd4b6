package volumetric

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetric/sdfrt/rt/core"
)

const DefaultRotationSpeed = 10

// RotationModule spins the proxy transform about its local up axis at Speed
// degrees per second.
type RotationModule struct {
	Speed float32
	Axis  mgl32.Vec3
}

func (m RotationModule) Install(app *App, cmd *Commands) {
	ensureResource(app, func() *Time { return &Time{} })
	ensureProxy(app)

	axis := m.Axis
	if axis.Len() == 0 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	speed := m.Speed
	cmd.UseSystem(System(func(t *Time, tr *core.Transform) {
		tr.RotateLocal(axis, mgl32.DegToRad(speed*t.DeltaSeconds()))
	}).InStage(Update))
}

// ensureProxy returns the transform of the rendered proxy volume, adding an
// identity one if needed.
func ensureProxy(app *App) *core.Transform {
	return ensureResource(app, core.NewTransform)
}

func NewRotationModule() RotationModule {
	return RotationModule{Speed: DefaultRotationSpeed, Axis: mgl32.Vec3{0, 1, 0}}
}
