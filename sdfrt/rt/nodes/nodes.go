// Package nodes declares the volumetric shader-graph nodes as plain Go values.
// Every node carries a static slot table, evaluates itself on the CPU, and names
// the shader fragments and HLSL body needed to generate it for a GPU graph.
package nodes

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

type Kind string

const (
	KindBox           Kind = "box"
	KindSphere        Kind = "sphere"
	KindSphereUnlit   Kind = "sphere-unlit"
	KindNoise         Kind = "noise"
	KindNoiseUnlit    Kind = "noise-unlit"
	KindVoronoi       Kind = "voronoi"
	KindSDFBox        Kind = "sdf-box"
	KindSDFSphere     Kind = "sdf-sphere"
	KindSimpleNoise3D Kind = "simple-noise-3d"
	KindVoronoi3D     Kind = "voronoi-3d"
)

var ErrUnknownKind = errors.New("unknown node kind")

type SlotType int

const (
	Vector1 SlotType = iota
	Vector3
	Vector4
)

// HLSL returns the shader type a slot of this type is declared with.
func (t SlotType) HLSL() string {
	switch t {
	case Vector1:
		return "float"
	case Vector3:
		return "float3"
	default:
		return "float4"
	}
}

type Binding int

const (
	BindingNone Binding = iota
	BindingObjectSpacePosition
	BindingObjectSpaceViewDirection
)

// Slot is one input or output port of a node.
type Slot struct {
	ID      int
	Name    string
	Type    SlotType
	Binding Binding
	Output  bool
	Default mgl32.Vec4
}

func in1(id int, name string, v float32) Slot {
	return Slot{ID: id, Name: name, Type: Vector1, Default: mgl32.Vec4{v, v, v, v}}
}

func in3(id int, name string, v mgl32.Vec3) Slot {
	return Slot{ID: id, Name: name, Type: Vector3, Default: v.Vec4(0)}
}

func bound(id int, name string, b Binding) Slot {
	return Slot{ID: id, Name: name, Type: Vector3, Binding: b}
}

func out(id int, name string, t SlotType) Slot {
	return Slot{ID: id, Name: name, Type: t, Output: true}
}

// Inputs are the values the host binds per sample, both in object space.
// ViewDirection points from the surface toward the viewer.
type Inputs struct {
	Position      mgl32.Vec3
	ViewDirection mgl32.Vec3
}

// Outputs holds every output slot a node can produce. Nodes fill only the
// fields matching their declared output slots.
type Outputs struct {
	Hit         bool
	Color       mgl32.Vec4
	Value       float32
	RayPosition mgl32.Vec3
	Normal      mgl32.Vec3
	DeltaPos    mgl32.Vec3
	DeltaNeg    mgl32.Vec3
	Cells       mgl32.Vec3
}

type Node interface {
	Kind() Kind
	// Name is the display name; the generated shader function is derived from it.
	Name() string
	Title() []string
	Slots() []Slot
	Evaluate(in Inputs) Outputs
	// Preview maps the outputs to a displayable RGBA colour.
	Preview(out Outputs) mgl32.Vec4
	// Functions lists the shader fragments Body calls directly.
	Functions() []string
	Body() string
}

var constructors = map[Kind]func() Node{
	KindBox:           func() Node { return NewBox() },
	KindSphere:        func() Node { return NewSphere() },
	KindSphereUnlit:   func() Node { return NewSphereUnlit() },
	KindNoise:         func() Node { return NewNoise() },
	KindNoiseUnlit:    func() Node { return NewNoiseUnlit() },
	KindVoronoi:       func() Node { return NewVoronoi() },
	KindSDFBox:        func() Node { return NewSDFBox() },
	KindSDFSphere:     func() Node { return NewSDFSphere() },
	KindSimpleNoise3D: func() Node { return NewSimpleNoise3D() },
	KindVoronoi3D:     func() Node { return NewVoronoi3D() },
}

// New returns a node of the given kind with its default parameters.
func New(kind Kind) (Node, error) {
	ctor, ok := constructors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return ctor(), nil
}

// Kinds returns every registered kind in sorted order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(constructors))
	for k := range constructors {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Configure overrides node parameters from a JSON object. Fields not present keep
// their current values.
func Configure(n Node, raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, n); err != nil {
		return fmt.Errorf("configure %s node: %w", n.Kind(), err)
	}
	return nil
}

// OutputSlots returns only the output slots of n.
func OutputSlots(n Node) []Slot {
	var res []Slot
	for _, s := range n.Slots() {
		if s.Output {
			res = append(res, s)
		}
	}
	return res
}
