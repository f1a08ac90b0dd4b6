// Package march implements sphere tracing over a field.Field together with the
// finite-difference normal and Lambert shading used by the volumetric nodes.
package march

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetric/sdfrt/rt/core"
	"github.com/gekko3d/volumetric/sdfrt/rt/field"
)

type StepMode int

const (
	// StepDistance advances by the sampled distance times Factor.
	StepDistance StepMode = iota
	// StepFixed advances by Factor regardless of the sampled distance.
	StepFixed
)

func (m StepMode) String() string {
	switch m {
	case StepDistance:
		return "distance"
	case StepFixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// StepPolicy decides how far a ray advances after a sample that did not converge.
type StepPolicy struct {
	Mode   StepMode
	Factor float32
}

var (
	DistanceStep = StepPolicy{Mode: StepDistance, Factor: 1}
	// DampedStep is used by the Voronoi field, whose value overestimates distance.
	DampedStep = StepPolicy{Mode: StepDistance, Factor: 0.1}
	// FixedStep is used by the noise fields and ignores the sampled value.
	FixedStep = StepPolicy{Mode: StepFixed, Factor: 0.1}
)

func (p StepPolicy) step(d float32) float32 {
	if p.Mode == StepFixed {
		return p.Factor
	}
	return d * p.Factor
}

const (
	DefaultSteps       = 100
	DefaultMinDistance = 0.01
)

type Config struct {
	Steps       int
	MinDistance float32
	Policy      StepPolicy
	// MaxDistance ends the march early once the travelled length exceeds it.
	// Zero disables the check.
	MaxDistance float32
}

func DefaultConfig() Config {
	return Config{
		Steps:       DefaultSteps,
		MinDistance: DefaultMinDistance,
		Policy:      DistanceStep,
	}
}

// Result is the outcome of a march. On a miss Position and Distance describe the
// last sample taken; they carry no meaning for callers beyond debugging.
type Result struct {
	Hit      bool
	Position mgl32.Vec3
	Distance float32
	Steps    int
}

// March walks from origin along dir, sampling f at each position. It reports a hit
// as soon as a sample drops below cfg.MinDistance and a miss after cfg.Steps samples.
// A NaN or infinite sample or position ends the march early as a miss, as does
// exceeding cfg.MaxDistance; Steps then counts the samples actually taken.
// dir is the travel direction and is used as given, so its length scales every step.
func March(f field.Field, origin, dir mgl32.Vec3, cfg Config) Result {
	pos := origin
	var travelled float32
	var d float32

	for i := 0; i < cfg.Steps; i++ {
		d = f.Distance(pos)
		if math32.IsNaN(d) || math32.IsInf(d, 0) || !core.Finite3(pos) {
			return Result{Position: pos, Distance: d, Steps: i + 1}
		}
		if d < cfg.MinDistance {
			return Result{Hit: true, Position: pos, Distance: d, Steps: i + 1}
		}

		s := cfg.Policy.step(d)
		pos = pos.Add(dir.Mul(s))

		if cfg.MaxDistance > 0 {
			travelled += math32.Abs(s) * dir.Len()
			if travelled > cfg.MaxDistance {
				return Result{Position: pos, Distance: d, Steps: i + 1}
			}
		}
	}

	steps := cfg.Steps
	if steps < 0 {
		steps = 0
	}
	return Result{Position: pos, Distance: d, Steps: steps}
}
