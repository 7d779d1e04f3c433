package query

import (
	"fmt"
	"iter"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/shadowgraph/light"
	"github.com/gekko3d/shadowgraph/render"
	"github.com/gekko3d/shadowgraph/scene"
)

// LightQuery collects the lights that affect a reference node, one list per
// light kind. Every list is sorted by estimated contribution at the
// reference position, brightest first; image-based lights are sorted
// nearest first.
type LightQuery struct {
	AmbientLights     []*light.Node
	DirectionalLights []*light.Node
	PointLights       []*light.Node
	SpotLights        []*light.Node
	ProjectorLights   []*light.Node
	ImageBasedLights  []*light.Node
	OtherLights       []*light.Node

	HemisphericWeight float32

	// Strict panics when a disabled node is passed in instead of skipping it.
	Strict bool

	reference scene.Node

	// per-Set scratch
	refPos      mgl32.Vec3
	hasRef      bool
	frame       int
	lodCamPos   mgl32.Vec3
	lodDistance float32 // view normalization times LOD biases
}

func NewLightQuery() *LightQuery {
	return &LightQuery{HemisphericWeight: light.DefaultHemisphericWeight}
}

func (q *LightQuery) ReferenceNode() scene.Node { return q.reference }

func (q *LightQuery) Reset() {
	for _, list := range q.lists() {
		clear(*list)
		*list = (*list)[:0]
	}
	q.reference = nil
	q.hasRef = false
}

func (q *LightQuery) lists() [7]*[]*light.Node {
	return [7]*[]*light.Node{
		&q.AmbientLights,
		&q.DirectionalLights,
		&q.PointLights,
		&q.SpotLights,
		&q.ProjectorLights,
		&q.ImageBasedLights,
		&q.OtherLights,
	}
}

// Set categorizes the light nodes among nodes. When the context has a LOD
// camera, LOD groups are resolved and nodes beyond their MaxDistance are
// dropped.
func (q *LightQuery) Set(reference scene.Node, nodes []scene.Node, ctx *render.Context) {
	requireContext("query.LightQuery.Set", ctx)
	q.Reset()
	q.reference = reference
	q.frame = ctx.Frame
	if reference != nil {
		q.refPos = reference.AsNodeBase().PoseWorld.Position
		q.hasRef = true
	}

	cam := ctx.LodCameraNode
	if cam == nil {
		for _, n := range nodes {
			q.addNode(n)
		}
	} else {
		q.lodCamPos = cam.PoseWorld.Position
		q.lodDistance = scene.ViewNormalizedDistance(1, cam.Projection.Matrix()) * cam.LodBias * ctx.LodBias
		for _, n := range nodes {
			q.addNodeEx(n)
		}
	}

	for _, list := range q.lists() {
		sortDescending(*list)
	}
}

// All yields every collected light in category order.
func (q *LightQuery) All() iter.Seq[*light.Node] {
	return func(yield func(*light.Node) bool) {
		for _, list := range q.lists() {
			for _, n := range *list {
				if !yield(n) {
					return
				}
			}
		}
	}
}

// Len is the total number of collected lights.
func (q *LightQuery) Len() int {
	total := 0
	for _, list := range q.lists() {
		total += len(*list)
	}
	return total
}

func (q *LightQuery) checkEnabled(n scene.Node) bool {
	nb := n.AsNodeBase()
	if nb.Enabled {
		return true
	}
	if q.Strict {
		panic(fmt.Sprintf("query.LightQuery.Set: disabled node %q", nb.Name))
	}
	return false
}

// viewDistance is the LOD distance of a node: view normalized, biased and
// divided by the node's world scale.
func (q *LightQuery) viewDistance(nb *scene.NodeBase) float32 {
	d := nb.PoseWorld.Position.Sub(q.lodCamPos).Len() * q.lodDistance
	if s := nb.MaxScale(); s > 0 {
		d /= s
	}
	return d
}

// addNodeEx applies distance culling and LOD selection before adding.
// It reports whether the node survived distance culling.
func (q *LightQuery) addNodeEx(n scene.Node) bool {
	if n == nil || !q.checkEnabled(n) {
		return false
	}
	nb := n.AsNodeBase()
	lod, isLod := n.(*scene.LodGroupNode)
	if !isLod && !nb.HasMaxDistance() {
		q.addNode(n)
		return true
	}

	d := q.viewDistance(nb)
	if nb.HasMaxDistance() && d >= nb.MaxDistance {
		return false
	}
	if isLod {
		nb.LastFrame = q.frame
		if selected := lod.SelectLod(d); selected != nil {
			q.addSubtree(selected)
		}
		return true
	}
	q.addNode(n)
	return true
}

// addSubtree adds a selected LOD level and its enabled descendants. Distance
// culling is per node: a culled node does not cull its children.
func (q *LightQuery) addSubtree(n scene.Node) {
	if !n.AsNodeBase().Enabled {
		return
	}
	q.addNodeEx(n)
	if _, isLod := n.(*scene.LodGroupNode); isLod {
		return
	}
	for _, c := range n.AsNodeBase().Children() {
		q.addSubtree(c)
	}
}

func (q *LightQuery) addNode(n scene.Node) {
	if n == nil || !q.checkEnabled(n) {
		return
	}
	ln, ok := n.(*light.Node)
	if !ok {
		return
	}
	ln.LastFrame = q.frame

	if ln.Clip != nil && q.hasRef && !ln.Clip.Includes(q.refPos) {
		return
	}

	pos := ln.PoseWorld.Position
	if q.hasRef {
		pos = q.refPos
	}

	switch ln.Light.(type) {
	case *light.AmbientLight:
		q.AmbientLights = append(q.AmbientLights, ln)
	case *light.DirectionalLight:
		q.DirectionalLights = append(q.DirectionalLights, ln)
	case *light.PointLight:
		q.PointLights = append(q.PointLights, ln)
	case *light.SpotLight:
		q.SpotLights = append(q.SpotLights, ln)
	case *light.ProjectorLight:
		q.ProjectorLights = append(q.ProjectorLights, ln)
	case *light.ImageBasedLight:
		d := ln.PoseWorld.Position.Sub(pos)
		ln.SortTag = -d.Dot(d)
		q.ImageBasedLights = append(q.ImageBasedLights, ln)
		return
	default:
		q.OtherLights = append(q.OtherLights, ln)
	}
	ln.SortTag = ln.Contribution(pos, q.HemisphericWeight)
}

// GlobalLightQuery collects lights of infinite extent: ambient, directional
// and image-based lights without a bounding box. Clip volumes and LOD do not
// apply to them.
type GlobalLightQuery struct {
	AmbientLights     []*light.Node
	DirectionalLights []*light.Node
	ImageBasedLights  []*light.Node

	HemisphericWeight float32

	reference scene.Node
}

func NewGlobalLightQuery() *GlobalLightQuery {
	return &GlobalLightQuery{HemisphericWeight: light.DefaultHemisphericWeight}
}

func (q *GlobalLightQuery) ReferenceNode() scene.Node { return q.reference }

func (q *GlobalLightQuery) Reset() {
	for _, list := range []*[]*light.Node{&q.AmbientLights, &q.DirectionalLights, &q.ImageBasedLights} {
		clear(*list)
		*list = (*list)[:0]
	}
	q.reference = nil
}

func (q *GlobalLightQuery) Set(reference scene.Node, nodes []scene.Node, ctx *render.Context) {
	requireContext("query.GlobalLightQuery.Set", ctx)
	q.Reset()
	q.reference = reference

	for _, n := range nodes {
		ln, ok := n.(*light.Node)
		if !ok || !ln.Enabled || !ln.IsGlobal() {
			continue
		}
		pos := ln.PoseWorld.Position
		if reference != nil {
			pos = reference.AsNodeBase().PoseWorld.Position
		}
		switch ln.Light.(type) {
		case *light.AmbientLight:
			ln.SortTag = ln.Contribution(pos, q.HemisphericWeight)
			q.AmbientLights = append(q.AmbientLights, ln)
		case *light.DirectionalLight:
			ln.SortTag = ln.Contribution(pos, q.HemisphericWeight)
			q.DirectionalLights = append(q.DirectionalLights, ln)
		case *light.ImageBasedLight:
			d := ln.PoseWorld.Position.Sub(pos)
			ln.SortTag = -d.Dot(d)
			q.ImageBasedLights = append(q.ImageBasedLights, ln)
		}
	}

	sortDescending(q.AmbientLights)
	sortDescending(q.DirectionalLights)
	sortDescending(q.ImageBasedLights)
}
