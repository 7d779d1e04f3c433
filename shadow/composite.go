package shadow

import (
	"fmt"

	"github.com/gekko3d/shadowgraph/light"
	"github.com/gekko3d/shadowgraph/render"
	"github.com/gekko3d/shadowgraph/scene"
)

// CompositeRenderer renders each part of a CompositeShadow with the sibling
// renderer that accepts it. The light's Shadow is swapped to the part for
// the duration of the call and restored afterwards.
type CompositeRenderer struct {
	renderers []Renderer
	one       [1]scene.Node
	stats     Stats
}

func NewCompositeRenderer(renderers ...Renderer) *CompositeRenderer {
	return &CompositeRenderer{renderers: renderers}
}

func (r *CompositeRenderer) Stats() Stats { return r.stats }

func (r *CompositeRenderer) CanRender(node scene.Node, _ *render.Context) bool {
	_, _, ok := shadowOf[*light.CompositeShadow](node)
	return ok
}

func (r *CompositeRenderer) Render(nodes []scene.Node, ctx *render.Context) error {
	ctx.Validate("shadow.CompositeRenderer.Render")
	for _, n := range nodes {
		ln, s, ok := shadowOf[*light.CompositeShadow](n)
		if !ok {
			continue
		}
		r.stats.Lights++
		if err := r.renderParts(ctx, ln, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *CompositeRenderer) renderParts(ctx *render.Context, ln *light.Node, s *light.CompositeShadow) error {
	original := ln.Shadow
	defer func() { ln.Shadow = original }()

	for i, part := range s.Shadows {
		if part == nil {
			continue
		}
		ln.Shadow = part
		renderer := r.find(ln, ctx)
		if renderer == nil {
			return fmt.Errorf("shadow: light %q part %d (%s): %w", ln.Name, i, part.Kind(), ErrNoRenderer)
		}
		r.one[0] = ln
		err := renderer.Render(r.one[:], ctx)
		r.one[0] = nil
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *CompositeRenderer) find(n scene.Node, ctx *render.Context) Renderer {
	for _, candidate := range r.renderers {
		if candidate == Renderer(r) {
			continue
		}
		if candidate.CanRender(n, ctx) {
			return candidate
		}
	}
	return nil
}
