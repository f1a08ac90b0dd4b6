package nodes

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetric/sdfrt/rt/field"
	"github.com/gekko3d/volumetric/sdfrt/rt/march"
)

var (
	// MissWhite is the transparent white returned by the lit nodes on a miss.
	MissWhite = mgl32.Vec4{1, 1, 1, 0}
	// MissClear is the fully transparent black of the unlit sphere.
	MissClear = mgl32.Vec4{0, 0, 0, 0}
	// HitWhite is the flat colour of the unlit nodes.
	HitWhite = mgl32.Vec4{1, 1, 1, 1}

	DefaultLight    = mgl32.Vec3{1, 1, 1}
	DefaultBounding = mgl32.Vec3{0.2, 0.2, 0.2}
)

const (
	DefaultRadius    = 0.2
	DefaultScale     = 500
	DefaultThreshold = 0.2
)

var raymarchTitle = []string{"Volumetric Rendering", "Raymarching"}

func title(leaf string) []string {
	return append(append([]string(nil), raymarchTitle...), leaf)
}

// March holds the step budget shared by every raymarching node.
type March struct {
	Steps       int     `json:"steps"`
	MinDistance float32 `json:"min_distance"`
}

func defaultMarch() March {
	return March{Steps: march.DefaultSteps, MinDistance: march.DefaultMinDistance}
}

func (m March) config(policy march.StepPolicy) march.Config {
	return march.Config{Steps: m.Steps, MinDistance: m.MinDistance, Policy: policy}
}

// rayDirection turns the bound view direction into the travel direction.
// Marching along -view is the same as subtracting view*step from the position.
func rayDirection(in Inputs) mgl32.Vec3 {
	return in.ViewDirection.Mul(-1)
}

// marchLit marches f and shades a hit with Lambert. On a miss RayPosition keeps
// the bound surface position.
func marchLit(f field.Field, cfg march.Config, light mgl32.Vec3, in Inputs) Outputs {
	res := march.March(f, in.Position, rayDirection(in), cfg)
	if !res.Hit {
		return Outputs{Color: MissWhite, RayPosition: in.Position, Value: res.Distance}
	}
	normal := march.Normal(f, res.Position, march.NormalEpsilon)
	return Outputs{
		Hit:         true,
		Color:       march.Lambert(normal, light),
		RayPosition: res.Position,
		Normal:      normal,
		Value:       res.Distance,
	}
}

func colorPreview(out Outputs) mgl32.Vec4 {
	return out.Color
}

// Box is the lit raymarched box.
type Box struct {
	Center         mgl32.Vec3 `json:"center"`
	Bounding       mgl32.Vec3 `json:"bounding"`
	LightDirection mgl32.Vec3 `json:"light_direction"`
	March
}

func NewBox() *Box {
	return &Box{Bounding: DefaultBounding, LightDirection: DefaultLight, March: defaultMarch()}
}

func (n *Box) Kind() Kind      { return KindBox }
func (n *Box) Name() string    { return "Raymarching Box" }
func (n *Box) Title() []string { return title("Box") }

func (n *Box) Slots() []Slot {
	return []Slot{
		bound(0, "Position", BindingObjectSpacePosition),
		bound(1, "Direction", BindingObjectSpaceViewDirection),
		in3(2, "Center", mgl32.Vec3{}),
		in3(3, "Bounding", DefaultBounding),
		in3(4, "LightDirection", DefaultLight),
		in1(5, "Steps", march.DefaultSteps),
		in1(6, "MinDistance", march.DefaultMinDistance),
		out(7, "Out", Vector4),
	}
}

// Config returns the march budget with this node's stepping policy.
func (n *Box) Config() march.Config {
	return n.config(march.DistanceStep)
}

func (n *Box) Field() field.Field {
	return field.Box{Center: n.Center, Bounding: n.Bounding}
}

func (n *Box) Evaluate(in Inputs) Outputs {
	return marchLit(n.Field(), n.Config(), n.LightDirection, in)
}

func (n *Box) Preview(out Outputs) mgl32.Vec4 { return colorPreview(out) }
func (n *Box) Functions() []string            { return []string{"box_raymarch"} }

func (n *Box) Body() string {
	return `
{
    Out = box_raymarch(Position, Direction, Center, Bounding, LightDirection, (int)Steps, MinDistance);
}
`
}

// Sphere is the lit raymarched sphere, also exposing the hit position.
type Sphere struct {
	Center         mgl32.Vec3 `json:"center"`
	Radius         float32    `json:"radius"`
	LightDirection mgl32.Vec3 `json:"light_direction"`
	March
}

func NewSphere() *Sphere {
	return &Sphere{Radius: DefaultRadius, LightDirection: DefaultLight, March: defaultMarch()}
}

func (n *Sphere) Kind() Kind      { return KindSphere }
func (n *Sphere) Name() string    { return "Raymarching Sphere" }
func (n *Sphere) Title() []string { return title("Sphere") }

func (n *Sphere) Slots() []Slot {
	return []Slot{
		bound(0, "Position", BindingObjectSpacePosition),
		bound(1, "Direction", BindingObjectSpaceViewDirection),
		in3(2, "Center", mgl32.Vec3{}),
		in1(3, "Radius", DefaultRadius),
		in3(4, "LightDirection", DefaultLight),
		in1(5, "Steps", march.DefaultSteps),
		in1(6, "MinDistance", march.DefaultMinDistance),
		out(7, "Out", Vector4),
		out(8, "RayPosition", Vector3),
	}
}

func (n *Sphere) Config() march.Config {
	return n.config(march.DistanceStep)
}

func (n *Sphere) Field() field.Field {
	return field.Sphere{Center: n.Center, Radius: n.Radius}
}

func (n *Sphere) Evaluate(in Inputs) Outputs {
	return marchLit(n.Field(), n.Config(), n.LightDirection, in)
}

func (n *Sphere) Preview(out Outputs) mgl32.Vec4 { return colorPreview(out) }
func (n *Sphere) Functions() []string            { return []string{"sphere_distance", "sphere_render"} }

func (n *Sphere) Body() string {
	return `
{
    Out = float4(1, 1, 1, 0);
    RayPosition = Position;
    for (int i = 0; i < Steps; i++)
    {
        float distance = sphere_distance(Position, Center, Radius);
        if (distance < MinDistance)
        {
            Out = sphere_render(Position, Center, Radius, LightDirection);
            RayPosition = Position;
            break;
        }
        Position -= distance * Direction;
    }
}
`
}

// SphereUnlit outputs a flat mask plus hit position and normal.
type SphereUnlit struct {
	Center mgl32.Vec3 `json:"center"`
	Radius float32    `json:"radius"`
	March
}

func NewSphereUnlit() *SphereUnlit {
	return &SphereUnlit{Radius: DefaultRadius, March: defaultMarch()}
}

func (n *SphereUnlit) Kind() Kind      { return KindSphereUnlit }
func (n *SphereUnlit) Name() string    { return "Raymarching Sphere Unlit" }
func (n *SphereUnlit) Title() []string { return title("Sphere Unlit") }

func (n *SphereUnlit) Slots() []Slot {
	return []Slot{
		bound(0, "Position", BindingObjectSpacePosition),
		bound(1, "Direction", BindingObjectSpaceViewDirection),
		in3(2, "Center", mgl32.Vec3{}),
		in1(3, "Radius", DefaultRadius),
		in1(4, "Steps", march.DefaultSteps),
		in1(5, "MinDistance", march.DefaultMinDistance),
		out(6, "Out", Vector4),
		out(7, "RayPosition", Vector3),
		out(8, "Normal", Vector3),
	}
}

func (n *SphereUnlit) Config() march.Config {
	return n.config(march.DistanceStep)
}

func (n *SphereUnlit) Field() field.Field {
	return field.Sphere{Center: n.Center, Radius: n.Radius}
}

func (n *SphereUnlit) Evaluate(in Inputs) Outputs {
	f := n.Field()
	res := march.March(f, in.Position, rayDirection(in), n.Config())
	if !res.Hit {
		return Outputs{Color: MissClear, RayPosition: in.Position, Value: res.Distance}
	}
	return Outputs{
		Hit:         true,
		Color:       HitWhite,
		RayPosition: res.Position,
		Normal:      march.Normal(f, res.Position, march.NormalEpsilon),
		Value:       res.Distance,
	}
}

func (n *SphereUnlit) Preview(out Outputs) mgl32.Vec4 { return colorPreview(out) }
func (n *SphereUnlit) Functions() []string            { return []string{"sphere_distance", "sphere_normal"} }

func (n *SphereUnlit) Body() string {
	return `
{
    Out = float4(0, 0, 0, 0);
    RayPosition = Position;
    Normal = float3(0, 0, 0);
    for (int i = 0; i < Steps; i++)
    {
        float distance = sphere_distance(Position, Center, Radius);
        if (distance < MinDistance)
        {
            Out = float4(1, 1, 1, 1);
            RayPosition = Position;
            Normal = sphere_normal(Position, Center, Radius);
            break;
        }
        Position -= distance * Direction;
    }
}
`
}

// Noise is the lit value-noise volume. It advances by a fixed step.
type Noise struct {
	Scale          float32    `json:"scale"`
	Threshold      float32    `json:"threshold"`
	LightDirection mgl32.Vec3 `json:"light_direction"`
	March
}

func NewNoise() *Noise {
	return &Noise{Scale: DefaultScale, Threshold: DefaultThreshold, LightDirection: DefaultLight, March: defaultMarch()}
}

func (n *Noise) Kind() Kind      { return KindNoise }
func (n *Noise) Name() string    { return "Raymarching Noise" }
func (n *Noise) Title() []string { return title("Noise") }

func (n *Noise) Slots() []Slot {
	return []Slot{
		bound(0, "Position", BindingObjectSpacePosition),
		bound(1, "Direction", BindingObjectSpaceViewDirection),
		in1(2, "Scale", DefaultScale),
		in1(3, "Threshold", DefaultThreshold),
		in3(4, "LightDirection", DefaultLight),
		in1(5, "Steps", march.DefaultSteps),
		in1(6, "MinDistance", march.DefaultMinDistance),
		out(7, "Out", Vector4),
		out(8, "RayPosition", Vector3),
	}
}

func (n *Noise) Config() march.Config {
	return n.config(march.FixedStep)
}

func (n *Noise) Field() field.Field {
	return field.Noise{Scale: n.Scale, Threshold: n.Threshold}
}

func (n *Noise) Evaluate(in Inputs) Outputs {
	return marchLit(n.Field(), n.Config(), n.LightDirection, in)
}

func (n *Noise) Preview(out Outputs) mgl32.Vec4 { return colorPreview(out) }
func (n *Noise) Functions() []string            { return []string{"noise_distance", "noise_render"} }

func (n *Noise) Body() string {
	return `
{
    Out = float4(1, 1, 1, 0);
    RayPosition = Position;
    for (int i = 0; i < Steps; i++)
    {
        float distance = noise_distance(Position, Scale, Threshold);
        if (distance < MinDistance)
        {
            Out = noise_render(Position, Scale, Threshold, LightDirection);
            RayPosition = Position;
            break;
        }
        Position -= 0.1 * Direction;
    }
}
`
}

// NoiseUnlit outputs an opaque white mask where the noise volume is reached.
type NoiseUnlit struct {
	Scale     float32 `json:"scale"`
	Threshold float32 `json:"threshold"`
	March
}

func NewNoiseUnlit() *NoiseUnlit {
	return &NoiseUnlit{Scale: DefaultScale, Threshold: DefaultThreshold, March: defaultMarch()}
}

func (n *NoiseUnlit) Kind() Kind      { return KindNoiseUnlit }
func (n *NoiseUnlit) Name() string    { return "Raymarching Noise Unlit" }
func (n *NoiseUnlit) Title() []string { return title("Noise Unlit") }

func (n *NoiseUnlit) Slots() []Slot {
	return []Slot{
		bound(0, "Position", BindingObjectSpacePosition),
		bound(1, "Direction", BindingObjectSpaceViewDirection),
		in1(2, "Scale", DefaultScale),
		in1(3, "Threshold", DefaultThreshold),
		in1(4, "Steps", march.DefaultSteps),
		in1(5, "MinDistance", march.DefaultMinDistance),
		out(6, "Out", Vector4),
	}
}

func (n *NoiseUnlit) Config() march.Config {
	return n.config(march.FixedStep)
}

func (n *NoiseUnlit) Field() field.Field {
	return field.Noise{Scale: n.Scale, Threshold: n.Threshold}
}

func (n *NoiseUnlit) Evaluate(in Inputs) Outputs {
	res := march.March(n.Field(), in.Position, rayDirection(in), n.Config())
	if !res.Hit {
		return Outputs{Color: MissWhite, RayPosition: in.Position, Value: res.Distance}
	}
	return Outputs{Hit: true, Color: HitWhite, RayPosition: res.Position, Value: res.Distance}
}

func (n *NoiseUnlit) Preview(out Outputs) mgl32.Vec4 { return colorPreview(out) }
func (n *NoiseUnlit) Functions() []string            { return []string{"noise_raymarch_unlit"} }

func (n *NoiseUnlit) Body() string {
	return `
{
    Out = noise_raymarch_unlit(Position, Direction, Scale, Threshold, Steps, MinDistance);
}
`
}

// Voronoi is the lit Voronoi volume. Steps are damped by 0.1.
type Voronoi struct {
	Scale          float32    `json:"scale"`
	Threshold      float32    `json:"threshold"`
	LightDirection mgl32.Vec3 `json:"light_direction"`
	March
}

func NewVoronoi() *Voronoi {
	return &Voronoi{Scale: DefaultScale, Threshold: DefaultThreshold, LightDirection: DefaultLight, March: defaultMarch()}
}

func (n *Voronoi) Kind() Kind      { return KindVoronoi }
func (n *Voronoi) Name() string    { return "Raymarching Voronoi" }
func (n *Voronoi) Title() []string { return title("Voronoi") }

func (n *Voronoi) Slots() []Slot {
	return []Slot{
		bound(0, "Position", BindingObjectSpacePosition),
		bound(1, "Direction", BindingObjectSpaceViewDirection),
		in1(2, "Scale", DefaultScale),
		in1(3, "Threshold", DefaultThreshold),
		in3(4, "LightDirection", DefaultLight),
		in1(5, "Steps", march.DefaultSteps),
		in1(6, "MinDistance", march.DefaultMinDistance),
		out(7, "Out", Vector4),
	}
}

func (n *Voronoi) Config() march.Config {
	return n.config(march.DampedStep)
}

func (n *Voronoi) Field() field.Field {
	return field.Voronoi{Scale: n.Scale, Threshold: n.Threshold}
}

func (n *Voronoi) Evaluate(in Inputs) Outputs {
	return marchLit(n.Field(), n.Config(), n.LightDirection, in)
}

func (n *Voronoi) Preview(out Outputs) mgl32.Vec4 { return colorPreview(out) }
func (n *Voronoi) Functions() []string            { return []string{"voronoi_raymarch"} }

func (n *Voronoi) Body() string {
	return `
{
    Out = voronoi_raymarch(Position, Direction, Scale, Threshold, LightDirection, Steps, MinDistance);
}
`
}
