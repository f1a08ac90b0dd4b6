package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/volumetric/sdfrt/rt/core"
	"github.com/gekko3d/volumetric/sdfrt/rt/nodes"
)

func TestCameraCentreRay(t *testing.T) {
	cam := DefaultCamera()
	r := cam.PixelRay(1, 1, 3, 3)
	assert.Equal(t, cam.Eye, r.Origin)
	assert.InDelta(t, -1, r.Direction.Z(), 1e-6)
	assert.InDelta(t, 0, r.Direction.X(), 1e-6)

	top := cam.PixelRay(1, 0, 3, 3)
	assert.Greater(t, top.Direction.Y(), float32(0))
}

func TestRenderSphere(t *testing.T) {
	r := NewRenderer(64, 64)
	r.Workers = 2
	img, stats, err := r.Render(context.Background(), nodes.NewSphere(), core.NewTransform())
	require.NoError(t, err)

	assert.Equal(t, 64*64, stats.Pixels)
	assert.Greater(t, stats.Hits, 0)
	assert.Less(t, stats.Hits, stats.Pixels)

	centre := img.NRGBAAt(32, 32)
	assert.Equal(t, uint8(255), centre.A)
	assert.Greater(t, centre.R, uint8(200))

	// corners miss the proxy cube entirely
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(63, 63))
}

func TestRenderInsideProxyMissIsTransparentWhite(t *testing.T) {
	n := nodes.NewSphere()
	n.Radius = 0.05
	ray := core.Ray{Origin: mgl32.Vec3{0.3, 0, 2}, Direction: mgl32.Vec3{0, 0, -1}}
	c, hit := Sample(n, ray, core.NewTransform().WorldToObject())
	assert.False(t, hit)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 0}, c)
}

func TestRenderDeterministicAcrossWorkerCounts(t *testing.T) {
	n := nodes.NewBox()
	tr := core.NewTransform()
	tr.Rotate(mgl32.Vec3{0, 1, 0}, mgl32.DegToRad(30))

	r1 := NewRenderer(70, 50)
	r1.Workers = 1
	a, _, err := r1.Render(context.Background(), n, tr)
	require.NoError(t, err)

	r4 := NewRenderer(70, 50)
	r4.Workers = 4
	b, _, err := r4.Render(context.Background(), n, tr)
	require.NoError(t, err)

	assert.Equal(t, a.Pix, b.Pix)
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewRenderer(32, 32).Render(ctx, nodes.NewSphere(), nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRenderInvalidSize(t *testing.T) {
	_, _, err := NewRenderer(0, 10).Render(context.Background(), nodes.NewSphere(), nil)
	assert.Error(t, err)
}

func TestWorkerCountFromEnv(t *testing.T) {
	t.Setenv(WorkersEnv, "3")
	assert.Equal(t, 3, NewRenderer(1, 1).workerCount())

	r := NewRenderer(1, 1)
	r.Workers = 1000
	assert.Equal(t, maxWorkers, r.workerCount())
}

func TestEncodeColor(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 128, A: 255}, EncodeColor(mgl32.Vec4{1.7, -1, 0.5, 1}))
}

func TestPNGRoundTrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	img.SetNRGBA(1, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	path := filepath.Join(t.TempDir(), "img.png")

	require.NoError(t, SavePNG(path, img))
	got, err := LoadPNG(path)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), got.Bounds())
	assert.Equal(t, img.NRGBAAt(1, 2), got.NRGBAAt(1, 2))

	_, err = LoadPNG(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestScaleAndAnnotate(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	dst := Scale(src, 32, 16)
	assert.Equal(t, image.Rect(0, 0, 32, 16), dst.Bounds())

	canvas := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	Annotate(canvas, "hits")
	drawn := 0
	for i := 3; i < len(canvas.Pix); i += 4 {
		if canvas.Pix[i] != 0 {
			drawn++
		}
	}
	assert.Greater(t, drawn, 0)
}

func TestPresetLoadAndBuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.json")
	data := `{"node": "noise", "params": {"threshold": 0.3}, "width": 40, "rotation": [0, 90, 0]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	p, err := LoadPreset(path)
	require.NoError(t, err)
	assert.Equal(t, 40, p.Width)
	assert.Equal(t, 256, p.Height)

	n, tr, err := p.Build()
	require.NoError(t, err)
	assert.Equal(t, float32(0.3), n.(*nodes.Noise).Threshold)
	rotated := tr.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
	assert.InDelta(t, -1, rotated.Z(), 1e-5)
}

func TestPresetValidate(t *testing.T) {
	p := DefaultPreset()
	require.NoError(t, p.Validate())

	bad := p
	bad.Node = "torus"
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidPreset))

	bad = p
	bad.Width = 0
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidPreset))

	bad = p
	bad.Camera.FOV = 0
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidPreset))

	bad = p
	bad.Camera.Target = bad.Camera.Eye
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidPreset))

	bad = p
	bad.Camera.Up = bad.Camera.Target.Sub(bad.Camera.Eye)
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidPreset))

	bad = p
	bad.Camera.Up = mgl32.Vec3{}
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidPreset))
}

func TestCameraProjectInvertsPixelRay(t *testing.T) {
	cam := DefaultCamera()
	ray := cam.PixelRay(10, 5, 40, 20)
	x, y, ok := cam.Project(ray.At(3), 40, 20)
	require.True(t, ok)
	assert.InDelta(t, 10, x, 1e-3)
	assert.InDelta(t, 5, y, 1e-3)

	_, _, ok = cam.Project(mgl32.Vec3{0, 0, 5}, 40, 20)
	assert.False(t, ok)
}
