package nodes

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetric/sdfrt/rt/field"
	"github.com/gekko3d/volumetric/sdfrt/rt/march"
)

// SDFMissValue is the distance reported by the SDF nodes when the march misses.
const SDFMissValue = 10

// marchProbe exposes the raw distance at the hit and the six axis samples around it,
// leaving shading to the graph.
func marchProbe(f field.Field, cfg march.Config, in Inputs) Outputs {
	res := march.March(f, in.Position, rayDirection(in), cfg)
	if !res.Hit {
		return Outputs{Value: SDFMissValue, RayPosition: in.Position}
	}
	pos, neg := march.Probe(f, res.Position, march.NormalEpsilon)
	return Outputs{
		Hit:         true,
		Value:       res.Distance,
		RayPosition: res.Position,
		DeltaPos:    pos,
		DeltaNeg:    neg,
	}
}

// probePreview shows the probe normal remapped to [0,1].
func probePreview(out Outputs) mgl32.Vec4 {
	if !out.Hit {
		return MissClear
	}
	g := out.DeltaPos.Sub(out.DeltaNeg)
	if g.Len() == 0 {
		return HitWhite
	}
	n := g.Normalize().Mul(0.5).Add(mgl32.Vec3{0.5, 0.5, 0.5})
	return n.Vec4(1)
}

const probeBody = `
{
    const float eps = 0.01;
    Out = 10;
    DeltaPos = float3(0, 0, 0);
    DeltaNeg = float3(0, 0, 0);
    for (int i = 0; i < Steps; i++)
    {
        float distance = %[1]s_distance(Position, %[2]s);
        if (distance < MinDistance)
        {
            Out = distance;
            DeltaPos = float3(
                %[1]s_distance(Position + float3(eps, 0, 0), %[2]s),
                %[1]s_distance(Position + float3(0, eps, 0), %[2]s),
                %[1]s_distance(Position + float3(0, 0, eps), %[2]s));
            DeltaNeg = float3(
                %[1]s_distance(Position - float3(eps, 0, 0), %[2]s),
                %[1]s_distance(Position - float3(0, eps, 0), %[2]s),
                %[1]s_distance(Position - float3(0, 0, eps), %[2]s));
            break;
        }
        Position -= distance * Direction;
    }
}
`

func probeSlots(shape Slot) []Slot {
	return []Slot{
		bound(0, "Position", BindingObjectSpacePosition),
		bound(1, "Direction", BindingObjectSpaceViewDirection),
		in3(2, "Center", mgl32.Vec3{}),
		shape,
		in1(4, "Steps", march.DefaultSteps),
		in1(5, "MinDistance", march.DefaultMinDistance),
		out(6, "Out", Vector1),
		out(7, "DeltaPos", Vector3),
		out(8, "DeltaNeg", Vector3),
	}
}

// SDFBox marches a box and returns the raw distance with its axis samples.
type SDFBox struct {
	Center   mgl32.Vec3 `json:"center"`
	Bounding mgl32.Vec3 `json:"bounding"`
	March
}

func NewSDFBox() *SDFBox {
	return &SDFBox{Bounding: DefaultBounding, March: defaultMarch()}
}

func (n *SDFBox) Kind() Kind      { return KindSDFBox }
func (n *SDFBox) Name() string    { return "SDF Box" }
func (n *SDFBox) Title() []string { return []string{"Volumetric Rendering", "SDF", "Box"} }

func (n *SDFBox) Slots() []Slot {
	return probeSlots(in3(3, "Bounding", DefaultBounding))
}

func (n *SDFBox) Config() march.Config {
	return n.config(march.DistanceStep)
}

func (n *SDFBox) Field() field.Field {
	return field.Box{Center: n.Center, Bounding: n.Bounding}
}

func (n *SDFBox) Evaluate(in Inputs) Outputs {
	return marchProbe(n.Field(), n.Config(), in)
}

func (n *SDFBox) Preview(out Outputs) mgl32.Vec4 { return probePreview(out) }
func (n *SDFBox) Functions() []string            { return []string{"box_distance"} }
func (n *SDFBox) Body() string                   { return fmt.Sprintf(probeBody, "box", "Center, Bounding") }

// SDFSphere marches a sphere and returns the raw distance with its axis samples.
type SDFSphere struct {
	Center mgl32.Vec3 `json:"center"`
	Radius float32    `json:"radius"`
	March
}

func NewSDFSphere() *SDFSphere {
	return &SDFSphere{Radius: DefaultRadius, March: defaultMarch()}
}

func (n *SDFSphere) Kind() Kind      { return KindSDFSphere }
func (n *SDFSphere) Name() string    { return "SDF Sphere" }
func (n *SDFSphere) Title() []string { return []string{"Volumetric Rendering", "SDF", "Sphere"} }

func (n *SDFSphere) Slots() []Slot {
	return probeSlots(in1(3, "Radius", DefaultRadius))
}

func (n *SDFSphere) Config() march.Config {
	return n.config(march.DistanceStep)
}

func (n *SDFSphere) Field() field.Field {
	return field.Sphere{Center: n.Center, Radius: n.Radius}
}

func (n *SDFSphere) Evaluate(in Inputs) Outputs {
	return marchProbe(n.Field(), n.Config(), in)
}

func (n *SDFSphere) Preview(out Outputs) mgl32.Vec4 { return probePreview(out) }
func (n *SDFSphere) Functions() []string            { return []string{"sphere_distance"} }
func (n *SDFSphere) Body() string                   { return fmt.Sprintf(probeBody, "sphere", "Center, Radius") }
