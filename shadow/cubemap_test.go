package shadow

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/shadowgraph/light"
	"github.com/gekko3d/shadowgraph/render"
	"github.com/gekko3d/shadowgraph/scene"
)

func pointNode(lightRange float32, s *light.CubeMapShadow) *light.Node {
	n := light.NewNode("point", light.NewPointLight(lightRange))
	n.Shadow = s
	return n
}

// A wide camera just below and behind the light, looking down and away
// along -Y/+Z. Every corner of its frustum has y < 0 and z > 0, so the +Y and
// -Z faces of a light at the origin cannot see anything the camera sees.
func grazingCamera() *scene.CameraNode {
	cam := scene.NewCameraNode("main", scene.NewPerspectiveFov(math.Pi/2, 4, 0.1, 20))
	eye := mgl32.Vec3{0, -0.5, 0.5}
	cam.LookAt(eye, eye.Add(mgl32.Vec3{0, -1, 1}), mgl32.Vec3{0, 1, 1})
	return cam
}

func TestCubeMapSkipsFacesOutsideCamera(t *testing.T) {
	h := newHarness()
	h.ctx.CameraNode = grazingCamera()

	s := light.NewCubeMapShadow()
	s.Near = 0.1
	s.PreferredSize = 32
	r := NewCubeMapRenderer(h.pool, h.callback)

	require.NoError(t, r.Render([]scene.Node{pointNode(10, s)}, h.ctx))

	assert.Equal(t, []int{0, 1, 3, 5}, h.passIndices())
	for _, p := range h.passes {
		assert.Equal(t, render.CubeFace(p.index), p.face)
		assert.Same(t, s.ShadowMap, p.target)
	}
	require.NotNil(t, s.ShadowMap, "faces drew, the map is kept")
	assert.Equal(t, render.TargetDesc{Kind: render.TargetCube, Width: 32, Height: 32, Format: render.FormatR32F}, s.ShadowMap.Desc())

	faces := []render.CubeFace{}
	for _, c := range h.dev.Clears {
		faces = append(faces, c.Face)
	}
	assert.Equal(t, []render.CubeFace{0, 1, 3, 5}, faces)
}

func TestCubeMapWithoutCameraRendersAllFaces(t *testing.T) {
	h := newHarness()
	s := light.NewCubeMapShadow()
	s.PreferredSize = 16

	require.NoError(t, NewCubeMapRenderer(h.pool, h.callback).Render([]scene.Node{pointNode(10, s)}, h.ctx))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, h.passIndices())
}

func TestCubeMapFaceCameras(t *testing.T) {
	h := newHarness()
	s := light.NewCubeMapShadow()
	s.PreferredSize = 16
	n := pointNode(10, s)
	n.SetPose(mgl32.Vec3{1, 2, 3}, mgl32.QuatIdent())

	var forwards []mgl32.Vec3
	h.onPass = func(ctx *render.Context) {
		assert.Equal(t, n.PoseWorld.Position, ctx.CameraNode.PoseWorld.Position)
		forwards = append(forwards, ctx.CameraNode.Forward())
	}
	require.NoError(t, NewCubeMapRenderer(h.pool, h.callback).Render([]scene.Node{n}, h.ctx))

	require.Len(t, forwards, render.NumCubeFaces)
	for i, f := range forwards {
		assert.InDelta(t, 0, f.Sub(cubeForward[i]).Len(), 1e-5, "face %d", i)
	}
}

func TestCubeMapBiasAndProjection(t *testing.T) {
	h := newHarness()
	s := light.NewCubeMapShadow()
	s.PreferredSize = 256
	s.Near = 0.2
	s.DepthBias = 1
	s.NormalOffset = 3

	require.NoError(t, NewCubeMapRenderer(h.pool, h.callback).Render([]scene.Node{pointNode(25, s)}, h.ctx))

	// 90 degree faces: 2/size units per texel at distance 1.
	assert.InDelta(t, -2.0/256, s.EffectiveDepthBias, 1e-6)
	assert.InDelta(t, 3*2.0/256, s.EffectiveNormalOffset, 1e-6)
	assert.Equal(t, float32(25), s.Far)
	assert.InDelta(t, 1, s.Projection.At(1, 1), 1e-5)
}

func TestCubeMapNoFaceDrawnRecycles(t *testing.T) {
	h := newHarness()
	h.drawn = false
	s := light.NewCubeMapShadow()
	s.PreferredSize = 16

	require.NoError(t, NewCubeMapRenderer(h.pool, h.callback).Render([]scene.Node{pointNode(10, s)}, h.ctx))
	assert.Nil(t, s.ShadowMap)
	assert.Equal(t, 1, h.pool.Stats().Recycled)

	// Only one face drawing keeps the map.
	h.onPass = func(ctx *render.Context) { h.drawn = ctx.ShadowPassIndex == 5 }
	require.NoError(t, NewCubeMapRenderer(h.pool, h.callback).Render([]scene.Node{pointNode(10, s)}, h.ctx))
	assert.NotNil(t, s.ShadowMap)
}
