package shadow

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/shadowgraph/light"
	"github.com/gekko3d/shadowgraph/render"
	"github.com/gekko3d/shadowgraph/render/soft"
	"github.com/gekko3d/shadowgraph/scene"
)

func sunNode(s *light.CascadedShadow) *light.Node {
	n := light.NewNode("sun", light.NewDirectionalLight())
	n.SetPose(mgl32.Vec3{0, 50, 0}, scene.LookRotation(mgl32.Vec3{1, -2, -1}, mgl32.Vec3{0, 1, 0}))
	n.Shadow = s
	return n
}

func scenarioShadow() *light.CascadedShadow {
	s := light.NewCascadedShadow()
	s.NumberOfCascades = 4
	s.Distances = [light.MaxCascades]float32{10, 30, 60, 100}
	s.PreferredSize = 64
	return s
}

func TestCascadedScenario(t *testing.T) {
	h := newHarness()
	h.ctx.CameraNode = mainCamera(1, 100)
	s := scenarioShadow()
	r := NewCascadedRenderer(h.pool, h.callback)

	require.NoError(t, r.Render([]scene.Node{sunNode(s)}, h.ctx))

	require.NotNil(t, s.ShadowMap)
	assert.Equal(t, render.TargetDesc{Kind: render.Target2D, Width: 256, Height: 64, Format: render.FormatR32F}, s.ShadowMap.Desc())

	for i := 0; i < 4; i++ {
		vp := s.ViewProjections[i]
		assert.True(t, light.IsValidMatrix(vp), "cascade %d", i)
		assert.NotEqual(t, mgl32.Ident4(), vp, "cascade %d", i)
		for j := 0; j < i; j++ {
			assert.NotEqual(t, s.ViewProjections[j], vp, "cascades %d and %d", j, i)
		}
		assert.Less(t, s.EffectiveDepthBias[i], float32(0))
		assert.Greater(t, s.EffectiveNormalOffset[i], float32(0))
	}
	// Farther cascades cover more ground per texel.
	assert.Less(t, s.EffectiveDepthBias[3], s.EffectiveDepthBias[0])

	assert.Equal(t, []int{0, 1, 2, 3}, h.passIndices())
	for i, p := range h.passes {
		assert.Equal(t, render.Viewport{X: i * 64, Width: 64, Height: 64, MaxDepth: 1}, p.viewport)
		assert.Same(t, s.ShadowMap, p.target)
	}
}

func TestCascadeCoversItsSlice(t *testing.T) {
	h := newHarness()
	cam := mainCamera(1, 100)
	cam.LookAt(mgl32.Vec3{5, 2, 0}, mgl32.Vec3{5, 2, -10}, mgl32.Vec3{0, 1, 0})
	h.ctx.CameraNode = cam
	s := scenarioShadow()

	require.NoError(t, NewCascadedRenderer(h.pool, h.callback).Render([]scene.Node{sunNode(s)}, h.ctx))

	splits := SplitDistances(cam.Projection, s)
	assert.Equal(t, [light.MaxCascades + 1]float32{1, 10, 30, 60, 100}, splits)

	// Points along the view axis inside each slice project into the
	// cascade's clip volume.
	for i := 0; i < 4; i++ {
		mid := (splits[i] + splits[i+1]) / 2
		p := cam.PoseWorld.Position.Add(cam.Forward().Mul(mid))
		clip := s.ViewProjections[i].Mul4x1(p.Vec4(1))
		ndc := clip.Vec3().Mul(1 / clip.W())
		for k := 0; k < 3; k++ {
			assert.LessOrEqual(t, ndc[k], float32(1), "cascade %d axis %d", i, k)
			assert.GreaterOrEqual(t, ndc[k], float32(-1), "cascade %d axis %d", i, k)
		}
	}
}

func TestCascadeCentersSnapToTexels(t *testing.T) {
	h := newHarness()
	cam := mainCamera(1, 100)
	h.ctx.CameraNode = cam
	s := scenarioShadow()
	sun := sunNode(s)
	r := NewCascadedRenderer(h.pool, h.callback)

	// The light-space offset of the world origin is -center/radius, and the
	// center is a whole number of texels (2*radius/size). So the clip-space
	// origin times size/2 must be an integer.
	for _, pos := range []mgl32.Vec3{{0, 0, 0}, {0.37, 1.1, -3.3}, {12.5, -4, 7.25}} {
		cam.SetPose(pos, cam.PoseWorld.Rotation)
		require.NoError(t, r.Render([]scene.Node{sun}, h.ctx))

		for i := 0; i < 4; i++ {
			origin := s.ViewProjections[i].Mul4x1(mgl32.Vec4{0, 0, 0, 1})
			for _, v := range []float32{origin.X(), origin.Y()} {
				texels := float64(v) * float64(s.PreferredSize) / 2
				assert.InDelta(t, math.Round(texels), texels, 1e-2, "cascade %d at %v", i, pos)
			}
		}
	}
}

func TestLockedCascadesAreKept(t *testing.T) {
	h := newHarness()
	h.ctx.CameraNode = mainCamera(1, 100)
	s := scenarioShadow()
	sun := sunNode(s)
	r := NewCascadedRenderer(h.pool, h.callback)

	require.NoError(t, r.Render([]scene.Node{sun}, h.ctx))
	locked := s.ViewProjections[1]

	// Move the camera so unlocked cascades change.
	h.ctx.CameraNode.SetPose(mgl32.Vec3{20, 0, 0}, mgl32.QuatIdent())
	s.IsCascadeLocked[1] = true
	h.passes = nil
	require.NoError(t, r.Render([]scene.Node{sun}, h.ctx))

	assert.Equal(t, []int{0, 2, 3}, h.passIndices())
	assert.Equal(t, locked, s.ViewProjections[1])
	for _, i := range []int{0, 2, 3} {
		assert.True(t, light.IsValidMatrix(s.ViewProjections[i]))
	}

	// Nothing drawn, but the locked tile keeps the atlas alive.
	h.drawn = false
	require.NoError(t, r.Render([]scene.Node{sun}, h.ctx))
	assert.NotNil(t, s.ShadowMap)
}

func TestAllCascadesLockedDoesNoWork(t *testing.T) {
	h := newHarness()
	h.ctx.CameraNode = mainCamera(1, 100)
	s := scenarioShadow()
	sun := sunNode(s)
	r := NewCascadedRenderer(h.pool, h.callback)
	require.NoError(t, r.Render([]scene.Node{sun}, h.ctx))

	before := s.ViewProjections
	atlas := s.ShadowMap
	s.IsCascadeLocked = [light.MaxCascades]bool{true, true, true, true}
	h.passes = nil
	h.dev.ResetLog()

	h.ctx.CameraNode.SetPose(mgl32.Vec3{0, 0, 30}, mgl32.QuatIdent())
	require.NoError(t, r.Render([]scene.Node{sun}, h.ctx))

	assert.Empty(t, h.passes)
	assert.Empty(t, h.dev.Clears)
	assert.Equal(t, before, s.ViewProjections)
	assert.Same(t, atlas, s.ShadowMap)
}

func TestAtlasResizeCopiesLockedTiles(t *testing.T) {
	h := newHarness()
	h.ctx.CameraNode = mainCamera(1, 100)
	s := scenarioShadow()
	sun := sunNode(s)
	r := NewCascadedRenderer(h.pool, h.callback)

	h.onPass = func(ctx *render.Context) {
		if ctx.ShadowPassIndex == 1 {
			h.dev.Fill(render.Rect{Width: 64, Height: 64}, 0.25)
		}
	}
	require.NoError(t, r.Render([]scene.Node{sun}, h.ctx))
	old := s.ShadowMap

	s.IsCascadeLocked[1] = true
	s.PreferredSize = 32
	h.dev.ResetLog()
	require.NoError(t, r.Render([]scene.Node{sun}, h.ctx))

	require.NotNil(t, s.ShadowMap)
	assert.NotSame(t, old, s.ShadowMap)
	assert.Equal(t, 128, s.ShadowMap.Desc().Width)
	assert.False(t, h.pool.IsCheckedOut(old), "old atlas goes back to the pool")

	require.Len(t, h.dev.Blits, 1)
	blit := h.dev.Blits[0]
	assert.Same(t, old, blit.Src)
	assert.Equal(t, render.Rect{X: 64, Width: 64, Height: 64}, blit.SrcRect)
	assert.Equal(t, render.Rect{X: 32, Width: 32, Height: 32}, blit.DstRect)

	atlas := s.ShadowMap.(*soft.Target)
	assert.InDelta(t, 0.25, soft.Depth(atlas, render.FaceNone, 40, 10), 1e-3)
	assert.InDelta(t, 1, soft.Depth(atlas, render.FaceNone, 10, 10), 1e-3)
}

func TestFewerCascadesKeepLockedTile(t *testing.T) {
	h := newHarness()
	h.ctx.CameraNode = mainCamera(1, 100)
	s := scenarioShadow()
	sun := sunNode(s)
	r := NewCascadedRenderer(h.pool, h.callback)

	h.onPass = func(ctx *render.Context) {
		if ctx.ShadowPassIndex == 1 {
			h.dev.Fill(render.Rect{Width: 64, Height: 64}, 0.25)
		}
	}
	require.NoError(t, r.Render([]scene.Node{sun}, h.ctx))
	old := s.ShadowMap
	locked := s.ViewProjections[1]

	s.IsCascadeLocked[1] = true
	s.NumberOfCascades = 2
	h.passes = nil
	h.dev.ResetLog()
	require.NoError(t, r.Render([]scene.Node{sun}, h.ctx))

	assert.Equal(t, []int{0}, h.passIndices())
	require.NotNil(t, s.ShadowMap)
	assert.Equal(t, 128, s.ShadowMap.Desc().Width)
	assert.Equal(t, locked, s.ViewProjections[1])

	require.Len(t, h.dev.Blits, 1)
	blit := h.dev.Blits[0]
	assert.Same(t, old, blit.Src)
	assert.Equal(t, render.Rect{X: 64, Width: 64, Height: 64}, blit.SrcRect)
	assert.Equal(t, render.Rect{X: 64, Width: 64, Height: 64}, blit.DstRect)

	atlas := s.ShadowMap.(*soft.Target)
	assert.InDelta(t, 0.25, soft.Depth(atlas, render.FaceNone, 80, 10), 1e-3)
}

func TestLockedCascadeOutsideOldAtlas(t *testing.T) {
	h := newHarness()
	h.ctx.CameraNode = mainCamera(1, 100)
	s := scenarioShadow()
	s.NumberOfCascades = 2
	sun := sunNode(s)
	r := NewCascadedRenderer(h.pool, h.callback)
	require.NoError(t, r.Render([]scene.Node{sun}, h.ctx))
	require.Equal(t, 128, s.ShadowMap.Desc().Width)

	// cascade 3 never had a tile to keep
	s.NumberOfCascades = 4
	s.IsCascadeLocked[3] = true
	s.ViewProjections[3] = mgl32.Ident4()
	h.passes = nil
	h.dev.ResetLog()
	require.NoError(t, r.Render([]scene.Node{sun}, h.ctx))

	assert.Equal(t, []int{0, 1, 2}, h.passIndices())
	assert.Empty(t, h.dev.Blits)
	assert.Equal(t, 256, s.ShadowMap.Desc().Width)
	assert.False(t, light.IsValidMatrix(s.ViewProjections[3]))
}

func TestTooManyCascades(t *testing.T) {
	h := newHarness()
	h.ctx.CameraNode = mainCamera(1, 100)
	s := scenarioShadow()
	s.NumberOfCascades = light.MaxCascades + 1
	r := NewCascadedRenderer(h.pool, h.callback)

	err := r.Render([]scene.Node{sunNode(s)}, h.ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooManyCascades))
	assert.Empty(t, h.passes)
	assert.Nil(t, s.ShadowMap)
}
