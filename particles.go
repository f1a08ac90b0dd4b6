package volumetric

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Particle is a point pushed around by a flow field. The force replaces the
// acceleration each frame and the speed is clamped after every push.
type Particle struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
}

func (p *Particle) ApplyForce(force mgl32.Vec3, maxSpeed float32) {
	p.Velocity = clampMagnitude3(p.Velocity.Add(force), maxSpeed)
}

func (p *Particle) Update() {
	p.Position = p.Position.Add(p.Velocity)
}

type Particle2D struct {
	Position mgl32.Vec2
	Velocity mgl32.Vec2
}

func (p *Particle2D) ApplyForce(force mgl32.Vec2, maxSpeed float32) {
	v := p.Velocity.Add(force)
	if l := v.Len(); l > maxSpeed {
		v = v.Mul(maxSpeed / l)
	}
	p.Velocity = v
}

func (p *Particle2D) Update() {
	p.Position = p.Position.Add(p.Velocity)
}

func clampMagnitude3(v mgl32.Vec3, max float32) mgl32.Vec3 {
	if l := v.Len(); l > max {
		return v.Mul(max / l)
	}
	return v
}
