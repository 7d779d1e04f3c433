// Package shadowgraph runs the per-frame light and shadow pipeline: it
// culls the scene against the camera, finds the lights affecting a
// reference node and renders their shadow maps.
package shadowgraph

import (
	"fmt"
	"time"

	"github.com/gekko3d/shadowgraph/light"
	"github.com/gekko3d/shadowgraph/query"
	"github.com/gekko3d/shadowgraph/render"
	"github.com/gekko3d/shadowgraph/scene"
	"github.com/gekko3d/shadowgraph/shadow"
)

// DefaultCellSize is the cell size of the culling grid in world units.
const DefaultCellSize = 16

type pipelineOptions struct {
	log               Logger
	lodBias           float32
	hemisphericWeight float32
	frameLimit        int
	shadows           ShadowsConfig
	strict            bool
	cellSize          float32
}

type PipelineOption func(*pipelineOptions)

func WithLogger(l Logger) PipelineOption {
	return func(o *pipelineOptions) {
		if l != nil {
			o.log = l
		}
	}
}

func WithLodBias(bias float32) PipelineOption {
	return func(o *pipelineOptions) { o.lodBias = bias }
}

func WithHemisphericWeight(w float32) PipelineOption {
	return func(o *pipelineOptions) { o.hemisphericWeight = w }
}

func WithFrameLimit(frames int) PipelineOption {
	return func(o *pipelineOptions) { o.frameLimit = frames }
}

// WithShadowDefaults sets the sizes given to shadows without a
// PreferredSize.
func WithShadowDefaults(s ShadowsConfig) PipelineOption {
	return func(o *pipelineOptions) { o.shadows = s }
}

// WithStrictQueries makes queries panic on disabled nodes.
func WithStrictQueries(strict bool) PipelineOption {
	return func(o *pipelineOptions) { o.strict = strict }
}

func WithCellSize(size float32) PipelineOption {
	return func(o *pipelineOptions) { o.cellSize = size }
}

// FrameResult is what one RenderFrame produced. The query results are owned
// by the pipeline and valid until the next call.
type FrameResult struct {
	Visible        []scene.Node
	Lights         *query.LightQuery
	GlobalLights   *query.GlobalLightQuery
	Fog            []*scene.FogNode
	ShadowedLights int
	Timings        Profiler
}

// Pipeline owns the render-target pool, the shadow renderers and the
// queries. It is driven from the render thread.
type Pipeline struct {
	log        Logger
	pool       *render.Pool
	dispatcher *shadow.Dispatcher
	grid       *scene.SpatialHashGrid

	frustum query.CameraFrustumQuery
	lights  *query.LightQuery
	global  *query.GlobalLightQuery
	fog     query.FogQuery

	lodBias  float32
	shadows  ShadowsConfig
	shadowed []scene.Node
	profiler Profiler
}

func NewPipeline(alloc render.Allocator, callback render.RenderCallback, opts ...PipelineOption) *Pipeline {
	if alloc == nil {
		panic("shadowgraph.NewPipeline: nil allocator")
	}
	if callback == nil {
		panic("shadowgraph.NewPipeline: nil render callback")
	}

	cfg := DefaultConfig()
	o := pipelineOptions{
		log:               NewNopLogger(),
		lodBias:           cfg.LodBias,
		hemisphericWeight: cfg.HemisphericWeight,
		frameLimit:        cfg.Pool.FrameLimit,
		shadows:           cfg.Shadows,
		cellSize:          DefaultCellSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	pool := render.NewPool(alloc, render.WithFrameLimit(o.frameLimit), render.WithPoolLogger(o.log))
	p := &Pipeline{
		log:        o.log,
		pool:       pool,
		dispatcher: shadow.NewDispatcher(pool, callback, shadow.WithLogger(o.log)),
		grid:       scene.NewSpatialHashGrid(o.cellSize),
		lights:     query.NewLightQuery(),
		global:     query.NewGlobalLightQuery(),
		lodBias:    o.lodBias,
		shadows:    o.shadows,
	}
	p.lights.HemisphericWeight = o.hemisphericWeight
	p.lights.Strict = o.strict
	p.global.HemisphericWeight = o.hemisphericWeight
	return p
}

// NewPipelineFromConfig is NewPipeline with the options of cfg.
func NewPipelineFromConfig(cfg Config, alloc render.Allocator, callback render.RenderCallback, opts ...PipelineOption) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewPipeline(alloc, callback, append(cfg.Apply(), opts...)...), nil
}

func (p *Pipeline) Pool() *render.Pool             { return p.pool }
func (p *Pipeline) Dispatcher() *shadow.Dispatcher { return p.dispatcher }

// Cull returns the enabled nodes of the context's scene whose bounds touch
// the camera frustum.
func (p *Pipeline) Cull(ctx *render.Context) []scene.Node {
	cam := ctx.RequireCamera("shadowgraph.Pipeline.Cull")
	if ctx.Scene == nil {
		panic("shadowgraph.Pipeline.Cull: render context has no scene")
	}
	scene.UpdateWorldTransforms(ctx.Scene)
	p.grid.Build(ctx.Scene)
	f := cam.Frustum()
	return p.grid.QueryFrustum(&f)
}

// RenderFrame runs the queries for reference and renders the shadow maps
// of the lights found. A nil candidates list culls ctx.Scene first.
func (p *Pipeline) RenderFrame(ctx *render.Context, candidates []scene.Node, reference scene.Node) (FrameResult, error) {
	ctx.Validate("shadowgraph.Pipeline.RenderFrame")
	p.profiler.Reset()
	start := time.Now()
	t := start

	if candidates == nil {
		candidates = p.Cull(ctx)
		t = measure(&p.profiler.CullTime, t)
	}

	ctx.LodBias = p.lodBias
	p.frustum.Set(reference, candidates, ctx)
	p.lights.Set(reference, p.frustum.Nodes, ctx)
	p.global.Set(reference, p.frustum.Nodes, ctx)
	p.fog.Set(reference, p.frustum.Nodes, ctx)
	t = measure(&p.profiler.QueryTime, t)

	clear(p.shadowed)
	p.shadowed = p.shadowed[:0]
	for n := range p.lights.All() {
		if n.Shadow == nil {
			continue
		}
		p.applyShadowDefaults(n.Shadow)
		p.shadowed = append(p.shadowed, n)
	}

	var err error
	if len(p.shadowed) > 0 {
		if err = p.dispatcher.Render(p.shadowed, ctx); err != nil {
			p.log.Errorf("shadow rendering failed: %v", err)
			err = fmt.Errorf("shadowgraph: render frame %d: %w", ctx.Frame, err)
		}
	}
	measure(&p.profiler.ShadowTime, t)

	p.pool.EndFrame()
	p.profiler.TotalTime = time.Since(start)

	return FrameResult{
		Visible:        p.frustum.Nodes,
		Lights:         p.lights,
		GlobalLights:   p.global,
		Fog:            p.fog.FogNodes,
		ShadowedLights: len(p.shadowed),
		Timings:        p.profiler,
	}, err
}

func (p *Pipeline) applyShadowDefaults(s light.Shadow) {
	switch s := s.(type) {
	case *light.StandardShadow:
		if s.PreferredSize <= 0 {
			s.PreferredSize = p.shadows.DefaultSize
			s.Format = p.shadows.Format
		}
	case *light.CascadedShadow:
		if s.PreferredSize <= 0 {
			s.PreferredSize = p.shadows.CascadeSize
			s.Format = p.shadows.Format
		}
	case *light.CubeMapShadow:
		if s.PreferredSize <= 0 {
			s.PreferredSize = p.shadows.CubeSize
			s.Format = p.shadows.Format
		}
	case *light.CompositeShadow:
		for _, part := range s.Shadows {
			if part != nil {
				p.applyShadowDefaults(part)
			}
		}
	}
}

// Close releases the pooled targets that are not in use.
func (p *Pipeline) Close() {
	p.pool.Clear()
}
