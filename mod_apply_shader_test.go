package volumetric

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/volumetric/sdfrt/rt/nodes"
)

func filled(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestBlitCopyAndScale(t *testing.T) {
	src := filled(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	dst := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	Blit(src, dst, nil)
	assert.Equal(t, src.Pix, dst.Pix)

	big := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	Blit(src, big, nil)
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, big.NRGBAAt(5, 5))
}

func TestDecayMaterial(t *testing.T) {
	src := filled(2, 2, color.NRGBA{R: 200, G: 100, B: 0, A: 255})
	dst := image.NewNRGBA(src.Bounds())
	Blit(src, dst, DecayMaterial{Factor: 0.5})
	assert.Equal(t, color.NRGBA{R: 100, G: 50, B: 0, A: 255}, dst.NRGBAAt(1, 1))
}

func TestNodeMaterialCompositesOverSource(t *testing.T) {
	src := filled(16, 16, color.NRGBA{B: 255, A: 255})
	dst := image.NewNRGBA(src.Bounds())
	Blit(src, dst, NodeMaterial{Node: nodes.NewSphereUnlit()})

	// the sphere covers the centre with opaque white
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, dst.NRGBAAt(8, 8))
	// the corner misses and keeps the source
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, dst.NRGBAAt(0, 0))
}

func TestApplyShaderModule_Interval(t *testing.T) {
	initial := filled(4, 4, color.NRGBA{R: 200, A: 255})
	app := NewApp().UseModules(
		TimeModule{},
		ApplyShaderModule{Initial: initial, Material: DecayMaterial{Factor: 0.5}},
	)
	st := Resource[ShaderTarget](app)
	assets := Resource[AssetServer](app)
	require.NotNil(t, st)
	assert.Equal(t, DefaultUpdateInterval, st.Interval)

	tex, _ := assets.Texture(st.Texture)
	assert.Equal(t, uint8(200), tex.NRGBAAt(0, 0).R)

	// 0.05s: not yet past the interval
	app.Tick(50 * time.Millisecond)
	assert.Equal(t, 0, st.Updates)

	// 0.15s: first update
	app.Tick(100 * time.Millisecond)
	assert.Equal(t, 1, st.Updates)
	tex, _ = assets.Texture(st.Texture)
	assert.Equal(t, uint8(100), tex.NRGBAAt(0, 0).R)

	// 0.2s is not strictly past 0.15s + 0.1s
	app.Tick(50 * time.Millisecond)
	assert.Equal(t, 1, st.Updates)

	app.Tick(60 * time.Millisecond)
	assert.Equal(t, 2, st.Updates)
	tex, _ = assets.Texture(st.Texture)
	assert.Equal(t, uint8(50), tex.NRGBAAt(0, 0).R)
}

func TestApplyShaderModule_ReusesTexture(t *testing.T) {
	app := NewApp().UseModules(AssetServerModule{})
	assets := Resource[AssetServer](app)
	id := assets.CreateTexture(2, 2, color.NRGBA{G: 80, A: 255})

	app.UseModules(ApplyShaderModule{Texture: id})
	st := Resource[ShaderTarget](app)
	assert.Equal(t, id, st.Texture)
	require.NoError(t, st.UpdateTexture(assets))
	tex, _ := assets.Texture(id)
	assert.Equal(t, uint8(80), tex.NRGBAAt(1, 1).G)

	assert.Panics(t, func() { NewApp().UseModules(ApplyShaderModule{}) })
}
