package nodes

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetric/sdfrt/rt/field"
)

func greyPreview(v float32) mgl32.Vec4 {
	return mgl32.Vec4{v, v, v, 1}
}

// SimpleNoise3D samples the three octave value noise at Position*Scale.
type SimpleNoise3D struct {
	Scale float32 `json:"scale"`
}

func NewSimpleNoise3D() *SimpleNoise3D {
	return &SimpleNoise3D{Scale: DefaultScale}
}

func (n *SimpleNoise3D) Kind() Kind      { return KindSimpleNoise3D }
func (n *SimpleNoise3D) Name() string    { return "Simple Noise 3D" }
func (n *SimpleNoise3D) Title() []string { return []string{"Procedural", "Noise", "Simple Noise 3D"} }

func (n *SimpleNoise3D) Slots() []Slot {
	return []Slot{
		bound(0, "Position", BindingObjectSpacePosition),
		in1(1, "Scale", DefaultScale),
		out(2, "Out", Vector1),
	}
}

func (n *SimpleNoise3D) Evaluate(in Inputs) Outputs {
	return Outputs{Value: field.FBM(in.Position, n.Scale)}
}

func (n *SimpleNoise3D) Preview(out Outputs) mgl32.Vec4 { return greyPreview(out.Value) }
func (n *SimpleNoise3D) Functions() []string            { return []string{"value_noise_3D"} }

func (n *SimpleNoise3D) Body() string {
	return `
{
    float t = 0.0;
    for (int i = 0; i < 3; i++)
    {
        float freq = pow(2.0, float(i));
        float amp = pow(0.5, float(3 - i));
        t += value_noise_3D(Position * Scale / freq) * amp;
    }
    Out = t;
}
`
}

const DefaultCellDensity = 5

// Voronoi3D outputs the nearest feature distance and that cell's random offset.
type Voronoi3D struct {
	CellDensity float32 `json:"cell_density"`
}

func NewVoronoi3D() *Voronoi3D {
	return &Voronoi3D{CellDensity: DefaultCellDensity}
}

func (n *Voronoi3D) Kind() Kind      { return KindVoronoi3D }
func (n *Voronoi3D) Name() string    { return "Voronoi 3D" }
func (n *Voronoi3D) Title() []string { return []string{"Procedural", "Noise", "Voronoi 3D"} }

func (n *Voronoi3D) Slots() []Slot {
	return []Slot{
		bound(0, "Position", BindingObjectSpacePosition),
		in1(1, "CellDensity", DefaultCellDensity),
		out(2, "Out", Vector1),
		out(3, "Cells", Vector3),
	}
}

func (n *Voronoi3D) Evaluate(in Inputs) Outputs {
	d, cell := field.VoronoiCell(in.Position.Mul(n.CellDensity))
	return Outputs{Value: d, Cells: cell}
}

func (n *Voronoi3D) Preview(out Outputs) mgl32.Vec4 { return greyPreview(out.Value) }
func (n *Voronoi3D) Functions() []string            { return []string{"random_vector"} }

func (n *Voronoi3D) Body() string {
	return `
{
    Out = 0;
    Cells = float3(0, 1, 0);
    float3 g = floor(Position * CellDensity);
    float3 f = frac(Position * CellDensity);
    float res = 8.0;
    for (int y = -1; y <= 1; y++)
    {
        for (int x = -1; x <= 1; x++)
        {
            for (int z = -1; z <= 1; z++)
            {
                float3 lattice = float3(x, y, z);
                float3 offset = random_vector(lattice + g);
                float d = distance(lattice + offset, f);
                if (d < res)
                {
                    res = d;
                    Out = res;
                    Cells = offset;
                }
            }
        }
    }
}
`
}
