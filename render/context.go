package render

import (
	"fmt"

	"github.com/gekko3d/shadowgraph/scene"
)

// NoPassIndex marks that no shadow sub-pass is active.
const NoPassIndex = -1

// Context is the per-frame render state shared by queries and renderers.
type Context struct {
	Device Device

	// Scene is the root of the scene being rendered.
	Scene scene.Node

	CameraNode *scene.CameraNode
	// LodCameraNode enables LOD selection when set. It is usually the same
	// node as CameraNode.
	LodCameraNode *scene.CameraNode
	LodBias       float32

	Frame     int
	Technique string

	RenderTarget  Target
	Viewport      Viewport
	ReferenceNode scene.Node
	// Object is what the current pass renders for, the active shadow during
	// shadow passes.
	Object any

	// ShadowPassIndex is the cascade or cube face being rendered, or
	// NoPassIndex.
	ShadowPassIndex int
}

func NewContext(dev Device) *Context {
	return &Context{
		Device:          dev,
		LodBias:         1,
		ShadowPassIndex: NoPassIndex,
	}
}

// Validate panics if ctx cannot be used for rendering. fn names the caller.
func (c *Context) Validate(fn string) {
	if c == nil {
		panic(fmt.Sprintf("%s: nil render context", fn))
	}
	if c.Device == nil {
		panic(fmt.Sprintf("%s: render context has no device", fn))
	}
}

// RequireCamera panics if no camera node is set.
func (c *Context) RequireCamera(fn string) *scene.CameraNode {
	if c == nil || c.CameraNode == nil {
		panic(fmt.Sprintf("%s: render context has no camera node", fn))
	}
	return c.CameraNode
}

// ContextState holds the fields a pass overrides.
type ContextState struct {
	CameraNode      *scene.CameraNode
	Technique       string
	RenderTarget    Target
	Viewport        Viewport
	ReferenceNode   scene.Node
	Object          any
	ShadowPassIndex int
}

func (c *Context) Save() ContextState {
	return ContextState{
		CameraNode:      c.CameraNode,
		Technique:       c.Technique,
		RenderTarget:    c.RenderTarget,
		Viewport:        c.Viewport,
		ReferenceNode:   c.ReferenceNode,
		Object:          c.Object,
		ShadowPassIndex: c.ShadowPassIndex,
	}
}

func (c *Context) Restore(s ContextState) {
	c.CameraNode = s.CameraNode
	c.Technique = s.Technique
	c.RenderTarget = s.RenderTarget
	c.Viewport = s.Viewport
	c.ReferenceNode = s.ReferenceNode
	c.Object = s.Object
	c.ShadowPassIndex = s.ShadowPassIndex
}

// RenderCallback renders the scene into the context's current target and
// reports whether anything was drawn.
type RenderCallback func(ctx *Context) bool
