package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetric/sdfrt/rt/core"
	"github.com/gekko3d/volumetric/sdfrt/rt/nodes"
)

var ErrInvalidPreset = errors.New("invalid render preset")

// Preset describes one offline render: which node, with which parameters, seen
// from where.
type Preset struct {
	Node   nodes.Kind      `json:"node"`
	Params json.RawMessage `json:"params,omitempty"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Camera Camera          `json:"camera"`
	// Rotation is the proxy cube rotation in degrees about X, Y and Z.
	Rotation mgl32.Vec3 `json:"rotation"`
	Output   string     `json:"output"`
}

func DefaultPreset() Preset {
	return Preset{
		Node:   nodes.KindSphere,
		Width:  256,
		Height: 256,
		Camera: DefaultCamera(),
		Output: "out.png",
	}
}

// LoadPreset reads a preset file. Missing fields keep the defaults.
func LoadPreset(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("read preset: %w", err)
	}
	p := DefaultPreset()
	if err := json.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("parse preset %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

func (p Preset) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidPreset, p.Width, p.Height)
	}
	if _, err := nodes.New(p.Node); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	if p.Camera.FOV <= 0 || p.Camera.FOV >= 180 {
		return fmt.Errorf("%w: fov %v", ErrInvalidPreset, p.Camera.FOV)
	}
	if p.Camera.Eye.ApproxEqual(p.Camera.Target) {
		return fmt.Errorf("%w: camera eye equals target", ErrInvalidPreset)
	}
	forward := p.Camera.Target.Sub(p.Camera.Eye).Normalize()
	if p.Camera.Up.Len() == 0 || forward.Cross(p.Camera.Up.Normalize()).Len() < 1e-6 {
		return fmt.Errorf("%w: camera up %v is parallel to the view direction", ErrInvalidPreset, p.Camera.Up)
	}
	return nil
}

// Build returns the configured node and the proxy transform.
func (p Preset) Build() (nodes.Node, *core.Transform, error) {
	n, err := nodes.New(p.Node)
	if err != nil {
		return nil, nil, err
	}
	if err := nodes.Configure(n, p.Params); err != nil {
		return nil, nil, err
	}
	t := core.NewTransform()
	t.Rotation = mgl32.AnglesToQuat(
		mgl32.DegToRad(p.Rotation.X()),
		mgl32.DegToRad(p.Rotation.Y()),
		mgl32.DegToRad(p.Rotation.Z()),
		mgl32.XYZ,
	)
	return n, t, nil
}

// Renderer returns a renderer sized and positioned by the preset.
func (p Preset) Renderer() *Renderer {
	r := NewRenderer(p.Width, p.Height)
	r.Camera = p.Camera
	return r
}
