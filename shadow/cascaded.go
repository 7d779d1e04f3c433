package shadow

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/shadowgraph/light"
	"github.com/gekko3d/shadowgraph/render"
	"github.com/gekko3d/shadowgraph/scene"
)

// CascadedRenderer renders cascaded shadow maps of directional lights. All
// cascades of a light share one atlas with the tiles side by side.
type CascadedRenderer struct {
	base
	corners [8]mgl32.Vec3
}

func NewCascadedRenderer(pool render.TargetPool, callback render.RenderCallback, opts ...Option) *CascadedRenderer {
	return &CascadedRenderer{base: newBase("shadow.NewCascadedRenderer", pool, callback, opts)}
}

func (r *CascadedRenderer) CanRender(node scene.Node, _ *render.Context) bool {
	_, _, ok := shadowOf[*light.CascadedShadow](node)
	return ok
}

func (r *CascadedRenderer) Render(nodes []scene.Node, ctx *render.Context) error {
	ctx.Validate("shadow.CascadedRenderer.Render")
	if len(nodes) == 0 {
		return nil
	}
	cam := ctx.RequireCamera("shadow.CascadedRenderer.Render")
	if cam.Projection.Kind != scene.Perspective {
		return fmt.Errorf("shadow: camera %q is %s: %w", cam.Name, cam.Projection.Kind, ErrCameraNotPerspective)
	}

	defer r.begin(ctx)()

	for _, n := range nodes {
		ln, s, ok := shadowOf[*light.CascadedShadow](n)
		if !ok {
			continue
		}
		if err := r.renderLight(ctx, cam, ln, s); err != nil {
			return err
		}
	}
	return nil
}

// SplitDistances returns the view distances bounding each cascade: the
// camera near plane followed by the configured cascade distances clamped to
// the camera depth range.
func SplitDistances(p scene.Projection, s *light.CascadedShadow) [light.MaxCascades + 1]float32 {
	var splits [light.MaxCascades + 1]float32
	n := cascadeCount(s)
	splits[0] = p.Near
	for i := 0; i < n; i++ {
		splits[i+1] = mgl32.Clamp(s.Distances[i], p.Near, p.Far)
	}
	return splits
}

func cascadeCount(s *light.CascadedShadow) int {
	return min(max(s.NumberOfCascades, 1), light.MaxCascades)
}

func (r *CascadedRenderer) renderLight(ctx *render.Context, cam *scene.CameraNode, ln *light.Node, s *light.CascadedShadow) error {
	if _, ok := ln.Light.(*light.DirectionalLight); !ok {
		return fmt.Errorf("shadow: cascaded shadow on %s light %q: %w", kindName(ln.Light), ln.Name, ErrUnsupportedLight)
	}
	if s.NumberOfCascades > light.MaxCascades {
		return fmt.Errorf("shadow: light %q has %d cascades, at most %d: %w",
			ln.Name, s.NumberOfCascades, light.MaxCascades, ErrTooManyCascades)
	}
	r.stats.Lights++

	n := cascadeCount(s)
	allLocked, anyLocked := true, false
	for i := 0; i < n; i++ {
		if s.IsCascadeLocked[i] {
			anyLocked = true
		} else {
			allLocked = false
			s.ViewProjections[i] = light.EmptyMatrix
		}
	}
	if allLocked {
		return nil
	}

	tile := max(s.PreferredSize, 1)
	if err := r.prepareAtlas(ctx, ln, s, n, tile, anyLocked); err != nil {
		return fmt.Errorf("shadow: light %q: %w", ln.Name, err)
	}

	ctx.ReferenceNode = ln
	ctx.Object = s

	splits := SplitDistances(cam.Projection, s)
	camPose := scene.Pose(cam.PoseWorld.Position, cam.PoseWorld.Rotation)
	lightRot := ln.PoseWorld.Rotation
	lightFwd := ln.PoseWorld.Forward()

	drawn := false
	for i := 0; i < n; i++ {
		if s.IsCascadeLocked[i] {
			continue
		}

		sub := cam.Projection.SubFrustum(splits[i], splits[i+1])
		for j, c := range sub.ViewSpaceCorners() {
			r.corners[j] = camPose.TransformPoint(c)
		}
		center, radius := scene.BoundingSphere(r.corners[:])

		// Moving the light camera in whole texels keeps shadow edges
		// from shimmering while the camera moves.
		texel := 2 * radius / float32(tile)
		if texel > 0 {
			lc := lightRot.Conjugate().Rotate(center)
			for k := 0; k < 3; k++ {
				lc[k] = float32(math.Ceil(float64(lc[k]/texel))) * texel
			}
			center = lightRot.Rotate(lc)
		}

		eye := center.Sub(lightFwd.Mul(radius + s.MinLightDistance))
		proj := scene.NewOrthographicOffCenter(-radius, radius, -radius, radius, 0, 2*radius+s.MinLightDistance)
		r.setCamera(eye, lightRot, proj)
		s.ViewProjections[i] = r.camera.ViewProjection()

		upt := unitsPerTexel(proj, tile)
		s.EffectiveDepthBias[i] = -s.DepthBias[i] * upt
		s.EffectiveNormalOffset[i] = s.NormalOffset[i] * upt

		vp := render.Viewport{X: i * tile, Width: tile, Height: tile, MaxDepth: 1}
		cascadeDrawn, err := r.pass(ctx, s.ShadowMap, render.FaceNone, vp, i)
		if err != nil {
			return fmt.Errorf("shadow: light %q cascade %d: %w", ln.Name, i, err)
		}
		drawn = drawn || cascadeDrawn
	}

	// Locked tiles still hold valid data, so the atlas is only dropped when
	// nothing in it is worth keeping.
	if !drawn && !anyLocked {
		r.recycle(ln, s.ShadowMap)
		s.ShadowMap = nil
	}
	return nil
}

// prepareAtlas makes s.ShadowMap an atlas of n tiles. When the size changes
// while cascades are locked, the locked tiles are copied into the new atlas.
// If the copy fails the old atlas is kept.
func (r *CascadedRenderer) prepareAtlas(ctx *render.Context, ln *light.Node, s *light.CascadedShadow, n, tile int, anyLocked bool) error {
	want := render.TargetDesc{Kind: render.Target2D, Width: tile * n, Height: tile, Format: s.Format}
	old := s.ShadowMap
	if old == nil || old.Desc() == want || !anyLocked {
		t, err := r.obtain(old, want)
		if err != nil {
			s.ShadowMap = nil
			return err
		}
		s.ShadowMap = t
		return nil
	}

	t, err := r.pool.Obtain2D(want.Width, want.Height, want.Format)
	if err != nil {
		return err
	}
	r.log.Debugf("shadow: %s atlas resized %s -> %s with locked cascades", ln.Name, old.Desc(), want)

	dev := ctx.Device
	dev.SetRenderTarget(t, render.FaceNone)
	dev.SetViewport(render.FullViewport(want.Width, want.Height))
	dev.SetPipelineState(render.CopyPassState)
	if err := dev.Clear(render.ClearWhite); err != nil {
		r.pool.Recycle(t)
		return err
	}

	// tiles are square, so the old tile size survives a cascade count change
	od := old.Desc()
	oldTile := od.Height
	for i := 0; i < n; i++ {
		if !s.IsCascadeLocked[i] {
			continue
		}
		if (i+1)*oldTile > od.Width {
			r.log.Warnf("shadow: %s cascade %d is locked but not in the old atlas", ln.Name, i)
			s.ViewProjections[i] = light.EmptyMatrix
			continue
		}
		src := render.Rect{X: i * oldTile, Width: oldTile, Height: od.Height}
		dst := render.Rect{X: i * tile, Width: tile, Height: tile}
		if err := dev.Blit(old, src, dst); err != nil {
			r.pool.Recycle(t)
			return err
		}
	}

	r.pool.Recycle(old)
	s.ShadowMap = t
	return nil
}
