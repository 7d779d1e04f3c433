package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gekko3d/shadowgraph/render"
	"github.com/gekko3d/shadowgraph/scene"
)

func TestCameraFrustumQueryCopiesCandidates(t *testing.T) {
	a, b := scene.NewGroup("a"), scene.NewGroup("b")
	ref := scene.NewGroup("ref")
	nodes := []scene.Node{a, b}

	q := &CameraFrustumQuery{}
	q.Set(ref, nodes, render.NewContext(nil))

	assert.Equal(t, nodes, q.Nodes)
	assert.Same(t, ref, q.ReferenceNode())

	nodes[0] = b
	assert.Same(t, a, q.Nodes[0], "the query keeps its own copy")

	q.Reset()
	assert.Empty(t, q.Nodes)
	assert.Nil(t, q.ReferenceNode())
}

func TestFogQuerySortsByPriority(t *testing.T) {
	low := scene.NewFogNode("low", 1)
	high := scene.NewFogNode("high", 10)
	mid := scene.NewFogNode("mid", 5)

	q := &FogQuery{}
	q.Set(nil, []scene.Node{low, scene.NewGroup("group"), high, mid}, render.NewContext(nil))

	assert.Equal(t, []*scene.FogNode{high, mid, low}, q.FogNodes)

	var _ SceneQuery = q
	var _ SceneQuery = &CameraFrustumQuery{}
	var _ SceneQuery = NewLightQuery()
	var _ SceneQuery = NewGlobalLightQuery()
}
