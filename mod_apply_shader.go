package volumetric

import (
	"fmt"
	"image"
	"image/color"
	"time"
)

var blank = color.NRGBA{}

const DefaultUpdateInterval = 100 * time.Millisecond

// ShaderTarget is the ping-pong state of one ApplyShaderModule. Texture holds
// the current image; buffer receives the material pass.
type ShaderTarget struct {
	Texture    AssetId
	Material   Material
	Interval   time.Duration
	Updates    int
	buffer     *image.NRGBA
	lastUpdate time.Duration
}

// UpdateTexture runs the material from the texture into the buffer and copies
// the buffer back.
func (st *ShaderTarget) UpdateTexture(assets *AssetServer) error {
	tex, ok := assets.Texture(st.Texture)
	if !ok {
		return fmt.Errorf("apply shader: texture %s not found", st.Texture)
	}
	if st.buffer == nil || st.buffer.Bounds() != tex.Bounds() {
		st.buffer = image.NewNRGBA(tex.Bounds())
	}
	Blit(tex, st.buffer, st.Material)
	Blit(st.buffer, tex, nil)
	assets.MarkDirty(st.Texture)
	st.Updates++
	return nil
}

// ApplyShaderModule repeatedly applies Material to a texture, at most once per
// UpdateInterval of simulated time. Initial, when set, is blitted into the
// texture on install; Texture names an existing asset to reuse, otherwise one
// of Initial's size is created.
type ApplyShaderModule struct {
	Initial        *image.NRGBA
	Texture        AssetId
	Material       Material
	UpdateInterval time.Duration
}

func (m ApplyShaderModule) Install(app *App, cmd *Commands) {
	assets := ensureAssets(app)
	ensureResource(app, func() *Time { return &Time{} })

	id := m.Texture
	if id == "" {
		if m.Initial == nil {
			panic("ApplyShaderModule needs an Initial image or a Texture")
		}
		id = assets.CreateTexture(m.Initial.Bounds().Dx(), m.Initial.Bounds().Dy(), blank)
	}
	tex, ok := assets.Texture(id)
	if !ok {
		panic(fmt.Sprintf("ApplyShaderModule: texture %s not found", id))
	}
	if m.Initial != nil {
		Blit(m.Initial, tex, nil)
	}

	interval := m.UpdateInterval
	if interval <= 0 {
		interval = DefaultUpdateInterval
	}
	cmd.AddResources(&ShaderTarget{Texture: id, Material: m.Material, Interval: interval})
	cmd.UseSystem(System(applyShaderSystem).InStage(PostUpdate))
}

func applyShaderSystem(app *App, t *Time, st *ShaderTarget, assets *AssetServer) {
	if t.Elapsed <= st.lastUpdate+st.Interval {
		return
	}
	if err := st.UpdateTexture(assets); err != nil {
		app.Logger().Errorf("%v", err)
		return
	}
	st.lastUpdate = t.Elapsed
}
