package shadow

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/shadowgraph/light"
	"github.com/gekko3d/shadowgraph/render"
	"github.com/gekko3d/shadowgraph/scene"
)

// Cube face cameras in +X, -X, +Y, -Y, +Z, -Z face order. Cube maps are
// left-handed, so the +Z face looks down -Z.
var (
	cubeForward = [render.NumCubeFaces]mgl32.Vec3{
		{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, -1}, {0, 0, 1},
	}
	cubeUp = [render.NumCubeFaces]mgl32.Vec3{
		{0, 1, 0}, {0, 1, 0}, {0, 0, 1}, {0, 0, -1}, {0, 1, 0}, {0, 1, 0},
	}
)

const defaultCubeNear = 0.05

// CubeMapRenderer renders omnidirectional shadows of point lights. Faces
// whose frustum misses the camera frustum are skipped.
type CubeMapRenderer struct {
	base
	faceRotations [render.NumCubeFaces]mgl32.Quat
}

func NewCubeMapRenderer(pool render.TargetPool, callback render.RenderCallback, opts ...Option) *CubeMapRenderer {
	r := &CubeMapRenderer{base: newBase("shadow.NewCubeMapRenderer", pool, callback, opts)}
	for i := range r.faceRotations {
		r.faceRotations[i] = scene.LookRotation(cubeForward[i], cubeUp[i])
	}
	return r
}

func (r *CubeMapRenderer) CanRender(node scene.Node, _ *render.Context) bool {
	_, _, ok := shadowOf[*light.CubeMapShadow](node)
	return ok
}

func (r *CubeMapRenderer) Render(nodes []scene.Node, ctx *render.Context) error {
	ctx.Validate("shadow.CubeMapRenderer.Render")
	if len(nodes) == 0 {
		return nil
	}

	// The camera frustum is taken before the context is modified.
	var camFrustum *scene.Frustum
	if cam := ctx.CameraNode; cam != nil {
		f := cam.Frustum()
		camFrustum = &f
	}

	defer r.begin(ctx)()

	for _, n := range nodes {
		ln, s, ok := shadowOf[*light.CubeMapShadow](n)
		if !ok {
			continue
		}
		if err := r.renderLight(ctx, ln, s, camFrustum); err != nil {
			return err
		}
	}
	return nil
}

func (r *CubeMapRenderer) renderLight(ctx *render.Context, ln *light.Node, s *light.CubeMapShadow, camFrustum *scene.Frustum) error {
	pl, ok := ln.Light.(*light.PointLight)
	if !ok {
		return fmt.Errorf("shadow: cube map shadow on %s light %q: %w", kindName(ln.Light), ln.Name, ErrUnsupportedLight)
	}
	r.stats.Lights++

	size := max(s.PreferredSize, 1)
	target, err := r.obtain(s.ShadowMap, render.TargetDesc{Kind: render.TargetCube, Width: size, Height: size, Format: s.Format})
	if err != nil {
		s.ShadowMap = nil
		return fmt.Errorf("shadow: light %q: %w", ln.Name, err)
	}
	s.ShadowMap = target

	near := s.Near
	if near <= 0 {
		near = defaultCubeNear
	}
	proj := scene.NewPerspectiveFov(math.Pi/2, 1, near, pl.Range)
	projM := proj.Matrix()
	s.Far = pl.Range
	s.Projection = projM

	upt := unitsPerTexel(proj, size)
	s.EffectiveDepthBias = -s.DepthBias * upt
	s.EffectiveNormalOffset = s.NormalOffset * upt

	ctx.ReferenceNode = ln
	ctx.Object = s

	pos := ln.PoseWorld.Position
	vp := render.FullViewport(size, size)
	drawn := false
	for face := 0; face < render.NumCubeFaces; face++ {
		view := mgl32.LookAtV(pos, pos.Add(cubeForward[face]), cubeUp[face])
		if camFrustum != nil {
			faceFrustum := scene.NewFrustum(projM.Mul4(view))
			if !faceFrustum.Intersects(camFrustum) {
				continue
			}
		}

		r.setCamera(pos, r.faceRotations[face], proj)
		faceDrawn, err := r.pass(ctx, target, render.CubeFace(face), vp, face)
		if err != nil {
			return fmt.Errorf("shadow: light %q face %d: %w", ln.Name, face, err)
		}
		drawn = drawn || faceDrawn
	}

	if !drawn {
		r.recycle(ln, target)
		s.ShadowMap = nil
	}
	return nil
}
