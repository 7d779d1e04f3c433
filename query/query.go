// Package query turns candidate scene nodes into categorized, sorted result
// lists relative to a reference node. Query objects are reused every frame
// through Reset and Set and must not be shared between goroutines.
package query

import (
	"fmt"
	"sort"

	"github.com/gekko3d/shadowgraph/light"
	"github.com/gekko3d/shadowgraph/render"
	"github.com/gekko3d/shadowgraph/scene"
)

// SceneQuery is populated from a list of candidate nodes, usually the
// result of a frustum or spatial query.
type SceneQuery interface {
	ReferenceNode() scene.Node
	Reset()
	Set(reference scene.Node, nodes []scene.Node, ctx *render.Context)
}

func requireContext(fn string, ctx *render.Context) {
	if ctx == nil {
		panic(fmt.Sprintf("%s: nil render context", fn))
	}
}

// sortDescending orders lights by SortTag, highest first. Equal tags keep
// their input order.
func sortDescending(lights []*light.Node) {
	sort.SliceStable(lights, func(i, j int) bool {
		return lights[i].SortTag > lights[j].SortTag
	})
}

// CameraFrustumQuery keeps the candidates as they are. Frustum culling is
// done by whoever produces the candidate list.
type CameraFrustumQuery struct {
	Nodes []scene.Node

	reference scene.Node
}

func (q *CameraFrustumQuery) ReferenceNode() scene.Node { return q.reference }

func (q *CameraFrustumQuery) Reset() {
	clear(q.Nodes)
	q.Nodes = q.Nodes[:0]
	q.reference = nil
}

func (q *CameraFrustumQuery) Set(reference scene.Node, nodes []scene.Node, ctx *render.Context) {
	requireContext("query.CameraFrustumQuery.Set", ctx)
	q.Reset()
	q.reference = reference
	q.Nodes = append(q.Nodes, nodes...)
}

// FogQuery collects fog nodes, highest Priority first.
type FogQuery struct {
	FogNodes []*scene.FogNode

	reference scene.Node
}

func (q *FogQuery) ReferenceNode() scene.Node { return q.reference }

func (q *FogQuery) Reset() {
	clear(q.FogNodes)
	q.FogNodes = q.FogNodes[:0]
	q.reference = nil
}

func (q *FogQuery) Set(reference scene.Node, nodes []scene.Node, ctx *render.Context) {
	requireContext("query.FogQuery.Set", ctx)
	q.Reset()
	q.reference = reference
	for _, n := range nodes {
		if fog, ok := n.(*scene.FogNode); ok {
			q.FogNodes = append(q.FogNodes, fog)
		}
	}
	sort.SliceStable(q.FogNodes, func(i, j int) bool {
		return q.FogNodes[i].Priority > q.FogNodes[j].Priority
	})
}
