package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpatialHashGrid(t *testing.T) {
	grid := NewSpatialHashGrid(10.0)

	a := NewGroup("a")
	b := NewGroup("b")

	grid.Insert(a, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{5, 5, 5})
	grid.Insert(b, mgl32.Vec3{15, 15, 15}, mgl32.Vec3{20, 20, 20})

	res := grid.QueryAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{6, 6, 6})
	assert.Equal(t, []Node{a}, res)

	res = grid.QueryAABB(mgl32.Vec3{14, 14, 14}, mgl32.Vec3{16, 16, 16})
	assert.Equal(t, []Node{b}, res)

	res = grid.QueryAABB(mgl32.Vec3{-100, -100, -100}, mgl32.Vec3{100, 100, 100})
	assert.ElementsMatch(t, []Node{a, b}, res)

	grid.Clear()
	assert.Empty(t, grid.QueryAABB(mgl32.Vec3{-100, -100, -100}, mgl32.Vec3{100, 100, 100}))
}

func TestSpatialHashGridBuildAndFrustum(t *testing.T) {
	root := NewGroup("root")

	ahead := NewGroup("ahead")
	ahead.Local.Position = mgl32.Vec3{0, 0, -20}
	ahead.Shape = SphereShape{Radius: 1}

	behind := NewGroup("behind")
	behind.Local.Position = mgl32.Vec3{0, 0, 20}
	behind.Shape = SphereShape{Radius: 1}

	sky := NewGroup("sky")
	sky.Shape = InfiniteShape{}

	off := NewGroup("off")
	off.Enabled = false
	off.Local.Position = mgl32.Vec3{0, 0, -10}

	AddChild(root, ahead)
	AddChild(root, behind)
	AddChild(root, sky)
	AddChild(root, off)
	UpdateWorldTransforms(root)

	grid := NewSpatialHashGrid(8)
	grid.Build(root)

	cam := NewCameraNode("cam", NewPerspectiveFov(mgl32.DegToRad(60), 1, 0.5, 100))
	f := cam.Frustum()

	res := grid.QueryFrustum(&f)
	require.Contains(t, res, Node(ahead))
	assert.Contains(t, res, Node(sky))
	assert.NotContains(t, res, Node(behind))
	assert.NotContains(t, res, Node(off))
}

func TestWorldAABBScalesRadius(t *testing.T) {
	n := NewGroup("n")
	n.Shape = SphereShape{Radius: 2}
	n.PoseWorld.Position = mgl32.Vec3{1, 1, 1}
	n.PoseWorld.Scale = mgl32.Vec3{1, 3, 1}

	lo, hi := WorldAABB(n.AsNodeBase())
	assert.Equal(t, mgl32.Vec3{-5, -5, -5}, lo)
	assert.Equal(t, mgl32.Vec3{7, 7, 7}, hi)
}
