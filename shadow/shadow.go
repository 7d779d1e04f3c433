// Package shadow renders shadow maps for light nodes. Each renderer handles
// one shadow kind, obtains its targets from a render.TargetPool and calls
// back into the host to draw shadow casters.
package shadow

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/shadowgraph/light"
	"github.com/gekko3d/shadowgraph/render"
	"github.com/gekko3d/shadowgraph/scene"
)

var (
	ErrUnsupportedLight     = errors.New("shadow: light type not supported by shadow kind")
	ErrCameraNotPerspective = errors.New("shadow: cascaded shadow maps need a perspective camera")
	ErrNoRenderer           = errors.New("shadow: no renderer for shadow kind")
	ErrTooManyCascades      = errors.New("shadow: too many cascades")
)

// Technique is set on the render context while shadow casters are drawn.
const Technique = "shadow"

// Renderer renders one kind of shadow for the light nodes it accepts.
type Renderer interface {
	CanRender(node scene.Node, ctx *render.Context) bool
	// Render processes the accepted nodes in order. Context fields and
	// device state are restored before it returns.
	Render(nodes []scene.Node, ctx *render.Context) error
}

// Stats counts renderer activity since construction.
type Stats struct {
	Lights   int // lights processed
	Passes   int // callback invocations
	Recycled int // shadow maps returned because nothing was drawn
}

func (s *Stats) add(o Stats) {
	s.Lights += o.Lights
	s.Passes += o.Passes
	s.Recycled += o.Recycled
}

type Option func(*options)

type options struct {
	log render.Logger
}

func WithLogger(l render.Logger) Option {
	return func(o *options) { o.log = render.OrNop(l) }
}

func buildOptions(opts []Option) options {
	o := options{log: render.OrNop(nil)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// base holds what every GPU renderer shares.
type base struct {
	pool     render.TargetPool
	callback render.RenderCallback
	log      render.Logger
	stats    Stats
	// camera is the light camera handed to the callback.
	camera *scene.CameraNode
}

func newBase(fn string, pool render.TargetPool, callback render.RenderCallback, opts []Option) base {
	if pool == nil {
		panic(fn + ": nil target pool")
	}
	if callback == nil {
		panic(fn + ": nil render callback")
	}
	o := buildOptions(opts)
	return base{
		pool:     pool,
		callback: callback,
		log:      o.log,
		camera:   scene.NewCameraNode("shadow camera", scene.NewPerspectiveFov(1, 1, 0.1, 1)),
	}
}

func (b *base) Stats() Stats { return b.stats }

// begin saves context and device state. The returned func restores both.
func (b *base) begin(ctx *render.Context) func() {
	saved := ctx.Save()
	snap := render.Snapshot(ctx.Device)
	return func() {
		ctx.Restore(saved)
		snap.Restore()
	}
}

// pass binds target and viewport, clears to maximum depth and runs the
// callback.
func (b *base) pass(ctx *render.Context, target render.Target, face render.CubeFace, vp render.Viewport, index int) (bool, error) {
	dev := ctx.Device
	dev.SetRenderTarget(target, face)
	dev.SetViewport(vp)
	if err := dev.Clear(render.ClearWhite); err != nil {
		return false, err
	}
	dev.SetPipelineState(render.ShadowPassState)

	ctx.CameraNode = b.camera
	ctx.Technique = Technique
	ctx.RenderTarget = target
	ctx.Viewport = vp
	ctx.ShadowPassIndex = index

	b.stats.Passes++
	return b.callback(ctx), nil
}

// recycle returns a shadow map that ended up empty.
func (b *base) recycle(node *light.Node, t render.Target) {
	b.pool.Recycle(t)
	b.stats.Recycled++
	b.log.Debugf("shadow: %s drew nothing, shadow map recycled", node.Name)
}

// obtain returns current if it already matches want, otherwise a fresh
// target; a mismatched current target is recycled.
func (b *base) obtain(current render.Target, want render.TargetDesc) (render.Target, error) {
	if current != nil {
		if current.Desc() == want {
			return current, nil
		}
		b.pool.Recycle(current)
	}
	if want.Kind == render.TargetCube {
		return b.pool.ObtainCube(want.Width, want.Format)
	}
	return b.pool.Obtain2D(want.Width, want.Height, want.Format)
}

func (b *base) setCamera(position mgl32.Vec3, rotation mgl32.Quat, p scene.Projection) {
	b.camera.Projection = p
	b.camera.SetPose(position, rotation)
}

func shadowOf[S light.Shadow](node scene.Node) (*light.Node, S, bool) {
	var zero S
	ln, ok := node.(*light.Node)
	if !ok || ln.Shadow == nil {
		return nil, zero, false
	}
	s, ok := ln.Shadow.(S)
	return ln, s, ok
}

// unitsPerTexel is the size of one shadow-map texel at distance 1 for
// perspective projections, or in world units for orthographic ones.
func unitsPerTexel(p scene.Projection, size int) float32 {
	if size <= 0 {
		return 0
	}
	if p.Kind == scene.Perspective && p.Near > 0 {
		return p.Width() / (float32(size) * p.Near)
	}
	return p.Width() / float32(size)
}
