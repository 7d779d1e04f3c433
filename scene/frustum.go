package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var inf = math.Inf(1)

// Frustum is a convex view volume. Planes are in Ax + By + Cz + D = 0 form
// with normals pointing inside, ordered Left, Right, Bottom, Top, Near, Far.
// Corners are the near quad followed by the far quad.
type Frustum struct {
	Planes  [6]mgl32.Vec4
	Corners [8]mgl32.Vec3
}

// ndcCorners follows the OpenGL clip convention (-1..1 depth) used by mgl32.
var ndcCorners = [8]mgl32.Vec4{
	{-1, -1, -1, 1}, {1, -1, -1, 1}, {1, 1, -1, 1}, {-1, 1, -1, 1},
	{-1, -1, 1, 1}, {1, -1, 1, 1}, {1, 1, 1, 1}, {-1, 1, 1, 1},
}

// NewFrustum builds the frustum of a view-projection matrix.
func NewFrustum(vp mgl32.Mat4) Frustum {
	f := Frustum{Planes: ExtractPlanes(vp)}
	inv := vp.Inv()
	for i, c := range ndcCorners {
		w := inv.Mul4x1(c)
		if w.W() != 0 {
			w = w.Mul(1 / w.W())
		}
		f.Corners[i] = w.Vec3()
	}
	return f
}

// ExtractPlanes extracts the 6 planes of the frustum from the view-projection matrix.
func ExtractPlanes(vp mgl32.Mat4) [6]mgl32.Vec4 {
	var planes [6]mgl32.Vec4

	row := func(r int) mgl32.Vec4 {
		return mgl32.Vec4{vp.At(r, 0), vp.At(r, 1), vp.At(r, 2), vp.At(r, 3)}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	planes[0] = r3.Add(r0) // Left
	planes[1] = r3.Sub(r0) // Right
	planes[2] = r3.Add(r1) // Bottom
	planes[3] = r3.Sub(r1) // Top
	planes[4] = r3.Add(r2) // Near (-1..1 depth)
	planes[5] = r3.Sub(r2) // Far

	for i := 0; i < 6; i++ {
		length := planes[i].Vec3().Len()
		if length > 0 {
			planes[i] = planes[i].Mul(1.0 / length)
		}
	}

	return planes
}

func planeDistance(plane mgl32.Vec4, p mgl32.Vec3) float32 {
	return plane[0]*p[0] + plane[1]*p[1] + plane[2]*p[2] + plane[3]
}

func (f *Frustum) ContainsPoint(p mgl32.Vec3) bool {
	for _, plane := range f.Planes {
		if planeDistance(plane, p) < 0 {
			return false
		}
	}
	return true
}

func (f *Frustum) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	for _, plane := range f.Planes {
		if planeDistance(plane, center) < -radius {
			return false
		}
	}
	return true
}

// IntersectsAABB checks if an AABB is at least partially inside the frustum.
func (f *Frustum) IntersectsAABB(min, max mgl32.Vec3) bool {
	for _, plane := range f.Planes {
		// The corner furthest along the plane normal is the most inside one.
		// If even that corner is behind the plane, the box is fully outside.
		var p mgl32.Vec3
		for axis := 0; axis < 3; axis++ {
			if plane[axis] > 0 {
				p[axis] = max[axis]
			} else {
				p[axis] = min[axis]
			}
		}
		if planeDistance(plane, p) < 0 {
			return false
		}
	}
	return true
}

// Intersects is a conservative convex-vs-convex test: the frusta are
// reported disjoint only if all corners of one lie behind a single plane of
// the other. It may report an intersection for some disjoint pairs near
// edges, never the other way round.
func (f *Frustum) Intersects(other *Frustum) bool {
	return !separatedBy(f, other) && !separatedBy(other, f)
}

func separatedBy(planesOf, cornersOf *Frustum) bool {
	for _, plane := range planesOf.Planes {
		outside := true
		for _, c := range cornersOf.Corners {
			if planeDistance(plane, c) >= 0 {
				outside = false
				break
			}
		}
		if outside {
			return true
		}
	}
	return false
}

// BoundingSphere returns a sphere enclosing points: centroid plus the
// largest distance to it. For a rigidly moving point set the radius is
// constant, which keeps shadow cascades from changing size under camera
// rotation.
func BoundingSphere(points []mgl32.Vec3) (mgl32.Vec3, float32) {
	if len(points) == 0 {
		return mgl32.Vec3{}, 0
	}
	var center mgl32.Vec3
	for _, p := range points {
		center = center.Add(p)
	}
	center = center.Mul(1 / float32(len(points)))

	var radiusSq float32
	for _, p := range points {
		d := p.Sub(center)
		if l := d.Dot(d); l > radiusSq {
			radiusSq = l
		}
	}
	return center, float32(math.Sqrt(float64(radiusSq)))
}
