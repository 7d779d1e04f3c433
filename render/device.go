package render

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Rect struct {
	X, Y          int
	Width, Height int
}

func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

type Viewport struct {
	X, Y          int
	Width, Height int
	MinDepth      float32
	MaxDepth      float32
}

// FullViewport covers a whole target.
func FullViewport(width, height int) Viewport {
	return Viewport{Width: width, Height: height, MaxDepth: 1}
}

func (v Viewport) Rect() Rect {
	return Rect{X: v.X, Y: v.Y, Width: v.Width, Height: v.Height}
}

// Device is the part of the GPU the shadow renderers drive. A nil target
// binds the device's default surface. Binding a target resets the viewport
// to cover it.
type Device interface {
	SetRenderTarget(t Target, face CubeFace)
	RenderTarget() (Target, CubeFace)
	SetViewport(v Viewport)
	Viewport() Viewport
	// Clear fills the current viewport of the bound target.
	Clear(color mgl32.Vec4) error
	PipelineState() PipelineState
	SetPipelineState(s PipelineState)
	// Blit copies srcRect of src (face 0 for cube targets) onto dstRect of
	// the bound target, scaling when the sizes differ.
	Blit(src Target, srcRect, dstRect Rect) error
}

// ClearWhite is the maximum-depth clear color for shadow maps.
var ClearWhite = mgl32.Vec4{1, 1, 1, 1}

// StateSnapshot captures device state so a pass can restore it on exit.
type StateSnapshot struct {
	dev      Device
	target   Target
	face     CubeFace
	viewport Viewport
	pipeline PipelineState
}

func Snapshot(dev Device) StateSnapshot {
	t, f := dev.RenderTarget()
	return StateSnapshot{
		dev:      dev,
		target:   t,
		face:     f,
		viewport: dev.Viewport(),
		pipeline: dev.PipelineState(),
	}
}

func (s StateSnapshot) Restore() {
	if s.dev == nil {
		return
	}
	s.dev.SetRenderTarget(s.target, s.face)
	s.dev.SetViewport(s.viewport)
	s.dev.SetPipelineState(s.pipeline)
}
