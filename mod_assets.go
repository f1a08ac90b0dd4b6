package volumetric

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/google/uuid"

	"github.com/gekko3d/volumetric/sdfrt/rt/render"
)

type AssetId string

type TextureAsset struct {
	version uint
	image   *image.NRGBA
}

// AssetServer owns the textures shared between modules.
type AssetServer struct {
	mu       sync.RWMutex
	textures map[AssetId]*TextureAsset
}

type AssetServerModule struct{}

func NewAssetServer() *AssetServer {
	return &AssetServer{textures: make(map[AssetId]*TextureAsset)}
}

// CreateTexture allocates a width x height texture filled with fill.
func (server *AssetServer) CreateTexture(width, height int, fill color.NRGBA) AssetId {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = fill.R
		img.Pix[i+1] = fill.G
		img.Pix[i+2] = fill.B
		img.Pix[i+3] = fill.A
	}
	return server.AddTexture(img)
}

// AddTexture takes ownership of img.
func (server *AssetServer) AddTexture(img *image.NRGBA) AssetId {
	id := makeAssetId()
	server.mu.Lock()
	server.textures[id] = &TextureAsset{image: img}
	server.mu.Unlock()
	return id
}

func (server *AssetServer) LoadTexture(filename string) (AssetId, error) {
	img, err := render.LoadPNG(filename)
	if err != nil {
		return "", fmt.Errorf("load texture: %w", err)
	}
	return server.AddTexture(img), nil
}

// Texture returns the live image of a texture. Callers that modify it should call
// MarkDirty afterwards.
func (server *AssetServer) Texture(id AssetId) (*image.NRGBA, bool) {
	server.mu.RLock()
	defer server.mu.RUnlock()
	tex, ok := server.textures[id]
	if !ok {
		return nil, false
	}
	return tex.image, true
}

// ReplaceTexture swaps the image behind id and bumps its version.
func (server *AssetServer) ReplaceTexture(id AssetId, img *image.NRGBA) error {
	server.mu.Lock()
	defer server.mu.Unlock()
	tex, ok := server.textures[id]
	if !ok {
		return fmt.Errorf("texture %s not found", id)
	}
	tex.image = img
	tex.version++
	return nil
}

func (server *AssetServer) MarkDirty(id AssetId) {
	server.mu.Lock()
	if tex, ok := server.textures[id]; ok {
		tex.version++
	}
	server.mu.Unlock()
}

// Version counts the modifications of a texture since it was created.
func (server *AssetServer) Version(id AssetId) uint {
	server.mu.RLock()
	defer server.mu.RUnlock()
	if tex, ok := server.textures[id]; ok {
		return tex.version
	}
	return 0
}

func (server *AssetServer) SaveTexture(id AssetId, filename string) error {
	img, ok := server.Texture(id)
	if !ok {
		return fmt.Errorf("save texture: %s not found", id)
	}
	return render.SavePNG(filename, img)
}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	ensureAssets(app)
}

func ensureAssets(app *App) *AssetServer {
	return ensureResource(app, NewAssetServer)
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
