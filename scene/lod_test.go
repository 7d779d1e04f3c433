package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSelectLod(t *testing.T) {
	g := NewLodGroupNode("lod")
	assert.Nil(t, g.SelectLod(5))

	far := NewGroup("far")
	near := NewGroup("near")
	mid := NewGroup("mid")
	g.AddLevel(50, far)
	g.AddLevel(0, near)
	g.AddLevel(10, mid)

	levels := g.Levels()
	assert.Equal(t, []float32{0, 10, 50}, []float32{levels[0].Distance, levels[1].Distance, levels[2].Distance})

	assert.Same(t, near, g.SelectLod(0))
	assert.Same(t, near, g.SelectLod(9.99))
	assert.Same(t, mid, g.SelectLod(10))
	assert.Same(t, mid, g.SelectLod(49))
	assert.Same(t, far, g.SelectLod(1000))
	assert.Same(t, g, mid.Parent())
}

func TestLodLevelsFollowGroupPose(t *testing.T) {
	root := NewGroup("root")
	root.Local.Position = mgl32.Vec3{0, 0, -5}
	g := NewLodGroupNode("lod")
	g.Local.Position = mgl32.Vec3{1, 0, 0}
	AddChild(root, g)

	level := NewGroup("level")
	level.Local.Position = mgl32.Vec3{0, 2, 0}
	g.AddLevel(0, level)

	UpdateWorldTransforms(root)
	assert.Equal(t, mgl32.Vec3{1, 2, -5}, level.PoseWorld.Position)
}
