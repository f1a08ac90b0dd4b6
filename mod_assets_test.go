package volumetric

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetServer_CreateTexture(t *testing.T) {
	server := NewAssetServer()
	id := server.CreateTexture(4, 2, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	assert.NotEmpty(t, id)

	img, ok := server.Texture(id)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}, img.NRGBAAt(3, 1))

	other := server.CreateTexture(1, 1, color.NRGBA{})
	assert.NotEqual(t, id, other)

	_, ok = server.Texture("missing")
	assert.False(t, ok)
}

func TestAssetServer_Versions(t *testing.T) {
	server := NewAssetServer()
	id := server.CreateTexture(1, 1, color.NRGBA{})
	assert.Equal(t, uint(0), server.Version(id))

	server.MarkDirty(id)
	require.NoError(t, server.ReplaceTexture(id, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	assert.Equal(t, uint(2), server.Version(id))

	img, _ := server.Texture(id)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Error(t, server.ReplaceTexture("missing", img))
}

func TestAssetServer_SaveAndLoad(t *testing.T) {
	server := NewAssetServer()
	id := server.CreateTexture(3, 3, color.NRGBA{R: 200, A: 255})
	path := filepath.Join(t.TempDir(), "tex.png")
	require.NoError(t, server.SaveTexture(id, path))

	loaded, err := server.LoadTexture(path)
	require.NoError(t, err)
	img, _ := server.Texture(loaded)
	assert.Equal(t, color.NRGBA{R: 200, A: 255}, img.NRGBAAt(1, 1))

	_, err = server.LoadTexture(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
	assert.Error(t, server.SaveTexture("missing", path))
}

func TestAssetServerModule_Idempotent(t *testing.T) {
	app := NewApp().UseModules(AssetServerModule{})
	first := Resource[AssetServer](app)
	app.UseModules(AssetServerModule{})
	assert.Same(t, first, Resource[AssetServer](app))
}
