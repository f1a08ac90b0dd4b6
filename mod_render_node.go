package volumetric

import (
	"image/color"

	"github.com/gekko3d/volumetric/sdfrt/rt/core"
	"github.com/gekko3d/volumetric/sdfrt/rt/nodes"
	"github.com/gekko3d/volumetric/sdfrt/rt/render"
)

// NodeView is the render state of RenderNodeModule: the node, the renderer and
// the texture asset holding the last frame.
type NodeView struct {
	Node     nodes.Node
	Renderer *render.Renderer
	Texture  AssetId
	Stats    render.Stats
	Frames   int
	// DrawGizmos rasterises the frame's gizmos over the rendered image.
	DrawGizmos bool
}

// RenderNodeModule renders Node through the proxy transform into a texture every
// Render stage.
type RenderNodeModule struct {
	Node       nodes.Node
	Width      int
	Height     int
	Camera     render.Camera
	Workers    int
	DrawGizmos bool
}

func (m RenderNodeModule) Install(app *App, cmd *Commands) {
	if m.Node == nil {
		panic("RenderNodeModule needs a Node")
	}
	assets := ensureAssets(app)
	ensureProxy(app)

	r := render.NewRenderer(m.Width, m.Height)
	if m.Camera.FOV > 0 {
		r.Camera = m.Camera
	}
	r.Workers = m.Workers
	r.Logger = app.Logger()

	view := &NodeView{
		Node:       m.Node,
		Renderer:   r,
		Texture:    assets.CreateTexture(m.Width, m.Height, color.NRGBA{}),
		DrawGizmos: m.DrawGizmos,
	}
	cmd.AddResources(view)
	if m.DrawGizmos {
		useGizmos(app, cmd)
	}
	cmd.UseSystem(System(renderNodeSystem).InStage(Render))
}

func renderNodeSystem(app *App, view *NodeView, tr *core.Transform, assets *AssetServer) {
	img, stats, err := view.Renderer.Render(app.Context(), view.Node, tr)
	if err != nil {
		app.Logger().Warnf("render %s: %v", view.Node.Kind(), err)
		return
	}
	if view.DrawGizmos {
		if g := Resource[GizmoBuffer](app); g != nil {
			g.Rasterize(img, view.Renderer.Camera)
		}
	}
	if err := assets.ReplaceTexture(view.Texture, img); err != nil {
		app.Logger().Errorf("%v", err)
		return
	}
	view.Stats = stats
	view.Frames++
}
