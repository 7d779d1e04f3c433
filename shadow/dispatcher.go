package shadow

import (
	"fmt"

	"github.com/gekko3d/shadowgraph/light"
	"github.com/gekko3d/shadowgraph/render"
	"github.com/gekko3d/shadowgraph/scene"
)

// Dispatcher owns one renderer per shadow kind and routes light nodes to
// them. Within a renderer the input order of the nodes is kept.
type Dispatcher struct {
	Standard  *StandardRenderer
	Cascaded  *CascadedRenderer
	CubeMap   *CubeMapRenderer
	Composite *CompositeRenderer

	renderers []Renderer
	batches   [][]scene.Node
}

func NewDispatcher(pool render.TargetPool, callback render.RenderCallback, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		Standard: NewStandardRenderer(pool, callback, opts...),
		Cascaded: NewCascadedRenderer(pool, callback, opts...),
		CubeMap:  NewCubeMapRenderer(pool, callback, opts...),
	}
	d.Composite = NewCompositeRenderer(d.Standard, d.Cascaded, d.CubeMap)
	d.renderers = []Renderer{d.Standard, d.Cascaded, d.CubeMap, d.Composite}
	d.batches = make([][]scene.Node, len(d.renderers))
	return d
}

// Render renders the shadows of all light nodes that carry one. Nodes
// without a shadow are ignored.
func (d *Dispatcher) Render(nodes []scene.Node, ctx *render.Context) error {
	ctx.Validate("shadow.Dispatcher.Render")
	for i := range d.batches {
		clear(d.batches[i])
		d.batches[i] = d.batches[i][:0]
	}

	for _, n := range nodes {
		ln, ok := n.(*light.Node)
		if !ok || ln.Shadow == nil {
			continue
		}
		routed := false
		for i, r := range d.renderers {
			if r.CanRender(n, ctx) {
				d.batches[i] = append(d.batches[i], n)
				routed = true
				break
			}
		}
		if !routed {
			return fmt.Errorf("shadow: light %q (%s): %w", ln.Name, ln.Shadow.Kind(), ErrNoRenderer)
		}
	}

	for i, r := range d.renderers {
		if len(d.batches[i]) == 0 {
			continue
		}
		if err := r.Render(d.batches[i], ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stats sums the statistics of all renderers.
func (d *Dispatcher) Stats() Stats {
	var s Stats
	s.add(d.Standard.Stats())
	s.add(d.Cascaded.Stats())
	s.add(d.CubeMap.Stats())
	// composite parts are already counted by the renderers above
	s.Lights += d.Composite.Stats().Lights
	return s
}
