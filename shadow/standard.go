package shadow

import (
	"fmt"

	"github.com/gekko3d/shadowgraph/light"
	"github.com/gekko3d/shadowgraph/render"
	"github.com/gekko3d/shadowgraph/scene"
)

// DefaultSpotNear is the near plane of spot light shadows when
// StandardShadow.Near is not set.
const DefaultSpotNear = 0.05

// StandardRenderer renders one shadow map per spot or projector light.
type StandardRenderer struct {
	base
}

func NewStandardRenderer(pool render.TargetPool, callback render.RenderCallback, opts ...Option) *StandardRenderer {
	return &StandardRenderer{base: newBase("shadow.NewStandardRenderer", pool, callback, opts)}
}

func (r *StandardRenderer) CanRender(node scene.Node, _ *render.Context) bool {
	_, _, ok := shadowOf[*light.StandardShadow](node)
	return ok
}

func (r *StandardRenderer) Render(nodes []scene.Node, ctx *render.Context) error {
	ctx.Validate("shadow.StandardRenderer.Render")
	if len(nodes) == 0 {
		return nil
	}
	defer r.begin(ctx)()

	for _, n := range nodes {
		ln, s, ok := shadowOf[*light.StandardShadow](n)
		if !ok {
			continue
		}
		if err := r.renderLight(ctx, ln, s); err != nil {
			return err
		}
	}
	return nil
}

// standardProjection derives the shadow camera projection from the light.
func standardProjection(ln *light.Node, s *light.StandardShadow) (scene.Projection, error) {
	switch l := ln.Light.(type) {
	case *light.SpotLight:
		near := s.Near
		if near <= 0 {
			near = DefaultSpotNear
		}
		return scene.NewPerspectiveFov(l.FieldOfViewY(), 1, near, l.Range), nil
	case *light.ProjectorLight:
		return l.Projection, nil
	}
	return scene.Projection{}, fmt.Errorf("shadow: standard shadow on %s light %q: %w",
		kindName(ln.Light), ln.Name, ErrUnsupportedLight)
}

func (r *StandardRenderer) renderLight(ctx *render.Context, ln *light.Node, s *light.StandardShadow) error {
	proj, err := standardProjection(ln, s)
	if err != nil {
		return err
	}
	r.stats.Lights++

	size := max(s.PreferredSize, 1)
	target, err := r.obtain(s.ShadowMap, render.TargetDesc{Kind: render.Target2D, Width: size, Height: size, Format: s.Format})
	if err != nil {
		s.ShadowMap = nil
		return fmt.Errorf("shadow: light %q: %w", ln.Name, err)
	}
	s.ShadowMap = target

	pose := ln.PoseWorld
	r.setCamera(pose.Position, pose.Rotation, proj)

	s.Near = proj.Near
	s.Far = proj.Far
	s.View = r.camera.View()
	s.Projection = proj.Matrix()

	upt := unitsPerTexel(proj, size)
	s.EffectiveDepthBias = -s.DepthBias * upt
	s.EffectiveNormalOffset = s.NormalOffset * upt

	ctx.ReferenceNode = ln
	ctx.Object = s
	drawn, err := r.pass(ctx, target, render.FaceNone, render.FullViewport(size, size), 0)
	if err != nil {
		return fmt.Errorf("shadow: light %q: %w", ln.Name, err)
	}
	if !drawn {
		r.recycle(ln, target)
		s.ShadowMap = nil
	}
	return nil
}

func kindName(l light.Light) string {
	if l == nil {
		return "nil"
	}
	return l.Kind().String()
}
