package volumetric

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"

	"github.com/gekko3d/volumetric/sdfrt/rt/nodes"
	"github.com/gekko3d/volumetric/sdfrt/rt/render"
)

// Material computes dst from src texel by texel. src and dst have the same bounds.
type Material interface {
	Apply(dst, src *image.NRGBA)
}

// Blit copies src into dst, resampling when the sizes differ, then runs material
// over the result. A nil material is a plain copy.
func Blit(src, dst *image.NRGBA, material Material) {
	if material == nil {
		if src.Bounds().Size() == dst.Bounds().Size() {
			draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		} else {
			draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		}
		return
	}
	in := src
	if src.Bounds().Size() != dst.Bounds().Size() {
		in = render.Scale(src, dst.Bounds().Dx(), dst.Bounds().Dy())
	}
	material.Apply(dst, in)
}

// DecayMaterial scales colour channels by Factor, fading trails over time.
type DecayMaterial struct {
	Factor float32
}

func (m DecayMaterial) Apply(dst, src *image.NRGBA) {
	f := mgl32.Clamp(m.Factor, 0, 1)
	sb, db := src.Bounds(), dst.Bounds()
	for y := 0; y < db.Dy(); y++ {
		for x := 0; x < db.Dx(); x++ {
			c := src.NRGBAAt(sb.Min.X+x, sb.Min.Y+y)
			dst.SetNRGBA(db.Min.X+x, db.Min.Y+y, color.NRGBA{
				R: uint8(float32(c.R)*f + 0.5),
				G: uint8(float32(c.G)*f + 0.5),
				B: uint8(float32(c.B)*f + 0.5),
				A: c.A,
			})
		}
	}
}

// NodeMaterial evaluates a node over the front face of the proxy cube, one
// orthographic ray per texel looking down -Z, and composites the preview colour
// over src.
type NodeMaterial struct {
	Node nodes.Node
}

func (m NodeMaterial) Apply(dst, src *image.NRGBA) {
	sb, db := src.Bounds(), dst.Bounds()
	w, h := db.Dx(), db.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			u := (float32(x)+0.5)/float32(w) - 0.5
			v := 0.5 - (float32(y)+0.5)/float32(h)
			out := m.Node.Evaluate(nodes.Inputs{
				Position:      mgl32.Vec3{u, v, 0.5},
				ViewDirection: mgl32.Vec3{0, 0, 1},
			})
			fg := m.Node.Preview(out)
			bg := src.NRGBAAt(sb.Min.X+x, sb.Min.Y+y)
			dst.SetNRGBA(db.Min.X+x, db.Min.Y+y, over(fg, bg))
		}
	}
}

// over composites fg onto bg with straight alpha.
func over(fg mgl32.Vec4, bg color.NRGBA) color.NRGBA {
	a := mgl32.Clamp(fg.W(), 0, 1)
	mix := func(f float32, b uint8) float32 {
		return mgl32.Clamp(f, 0, 1)*a + float32(b)/255*(1-a)
	}
	outA := a + float32(bg.A)/255*(1-a)
	return render.EncodeColor(mgl32.Vec4{mix(fg.X(), bg.R), mix(fg.Y(), bg.G), mix(fg.Z(), bg.B), outA})
}
