package soft

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"

	"github.com/gekko3d/shadowgraph/render"
)

// ClearOp records one Clear call.
type ClearOp struct {
	Target   render.Target
	Face     render.CubeFace
	Viewport render.Viewport
	Color    mgl32.Vec4
}

// BlitOp records one Blit call.
type BlitOp struct {
	Src     render.Target
	Dst     render.Target
	SrcRect render.Rect
	DstRect render.Rect
}

// Device renders into soft Targets. The default surface is a 2D target of
// the size given to NewDevice.
type Device struct {
	backBuffer *Target
	target     *Target
	face       render.CubeFace
	viewport   render.Viewport
	pipeline   render.PipelineState

	Clears []ClearOp
	Blits  []BlitOp
}

func NewDevice(width, height int) *Device {
	bb := newTarget(render.TargetDesc{Kind: render.Target2D, Width: width, Height: height, Format: render.FormatRGBA8})
	d := &Device{backBuffer: bb, pipeline: render.DefaultPipelineState}
	d.SetRenderTarget(nil, render.FaceNone)
	return d
}

func (d *Device) BackBuffer() *Target { return d.backBuffer }

func (d *Device) SetRenderTarget(t render.Target, face render.CubeFace) {
	st, _ := t.(*Target)
	if st == nil {
		st = d.backBuffer
	}
	d.target = st
	d.face = face
	if st.desc.Kind == render.Target2D {
		d.face = render.FaceNone
	}
	d.viewport = render.FullViewport(st.desc.Width, st.desc.Height)
}

func (d *Device) RenderTarget() (render.Target, render.CubeFace) {
	if d.target == d.backBuffer {
		return nil, render.FaceNone
	}
	return d.target, d.face
}

func (d *Device) SetViewport(v render.Viewport) { d.viewport = v }
func (d *Device) Viewport() render.Viewport     { return d.viewport }

func (d *Device) PipelineState() render.PipelineState     { return d.pipeline }
func (d *Device) SetPipelineState(s render.PipelineState) { d.pipeline = s }

func (d *Device) Clear(c mgl32.Vec4) error {
	img := d.target.Face(d.face)
	if img == nil {
		return fmt.Errorf("soft: clear: face %d: %w", d.face, render.ErrUnknownTarget)
	}
	draw.Draw(img, d.viewportRect(), image.NewUniform(depthColor(c)), image.Point{}, draw.Src)

	t, f := d.RenderTarget()
	d.Clears = append(d.Clears, ClearOp{Target: t, Face: f, Viewport: d.viewport, Color: c})
	return nil
}

// Fill writes depth into rect of the current viewport, in viewport
// coordinates. It stands in for draw calls.
func (d *Device) Fill(rect render.Rect, depth float32) {
	img := d.target.Face(d.face)
	if img == nil {
		return
	}
	r := image.Rect(rect.X, rect.Y, rect.X+rect.Width, rect.Y+rect.Height).
		Add(image.Pt(d.viewport.X, d.viewport.Y)).
		Intersect(d.viewportRect())
	draw.Draw(img, r, image.NewUniform(color.Gray16{Y: quantize(depth)}), image.Point{}, draw.Src)
}

func (d *Device) Blit(src render.Target, srcRect, dstRect render.Rect) error {
	st, ok := src.(*Target)
	if !ok || st == nil {
		return fmt.Errorf("soft: blit: %w", render.ErrUnknownTarget)
	}
	dst := d.target.Face(d.face)
	sr := image.Rect(srcRect.X, srcRect.Y, srcRect.X+srcRect.Width, srcRect.Y+srcRect.Height)
	dr := image.Rect(dstRect.X, dstRect.Y, dstRect.X+dstRect.Width, dstRect.Y+dstRect.Height)
	draw.NearestNeighbor.Scale(dst, dr, st.faces[0], sr, draw.Src, nil)

	t, _ := d.RenderTarget()
	d.Blits = append(d.Blits, BlitOp{Src: src, Dst: t, SrcRect: srcRect, DstRect: dstRect})
	return nil
}

// ResetLog drops recorded clears and blits.
func (d *Device) ResetLog() {
	d.Clears = d.Clears[:0]
	d.Blits = d.Blits[:0]
}

func (d *Device) viewportRect() image.Rectangle {
	v := d.viewport
	return image.Rect(v.X, v.Y, v.X+v.Width, v.Y+v.Height)
}

// depthColor maps a clear color to a depth value using its red channel.
func depthColor(c mgl32.Vec4) color.Gray16 {
	return color.Gray16{Y: quantize(c.X())}
}

func quantize(v float32) uint16 {
	v = mgl32.Clamp(v, 0, 1)
	return uint16(v*0xFFFF + 0.5)
}

// Depth reads the depth stored at (x, y) of a face.
func Depth(t *Target, face render.CubeFace, x, y int) float32 {
	img := t.Face(face)
	if img == nil {
		return 0
	}
	return float32(img.Gray16At(x, y).Y) / 0xFFFF
}
