package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type ProjectionKind int

const (
	Perspective ProjectionKind = iota
	Orthographic
)

func (k ProjectionKind) String() string {
	switch k {
	case Perspective:
		return "perspective"
	case Orthographic:
		return "orthographic"
	}
	return "unknown"
}

// Projection describes a view volume in view space (camera looking down -Z).
// For perspective projections Left/Right/Bottom/Top are measured on the near
// plane.
type Projection struct {
	Kind   ProjectionKind
	Left   float32
	Right  float32
	Bottom float32
	Top    float32
	Near   float32
	Far    float32
}

// NewPerspectiveFov creates a symmetric perspective projection. fovY is in
// radians.
func NewPerspectiveFov(fovY, aspect, near, far float32) Projection {
	top := near * float32(math.Tan(float64(fovY)/2))
	right := top * aspect
	return Projection{
		Kind:   Perspective,
		Left:   -right,
		Right:  right,
		Bottom: -top,
		Top:    top,
		Near:   near,
		Far:    far,
	}
}

func NewOrthographic(width, height, near, far float32) Projection {
	return NewOrthographicOffCenter(-width/2, width/2, -height/2, height/2, near, far)
}

func NewOrthographicOffCenter(left, right, bottom, top, near, far float32) Projection {
	return Projection{
		Kind:   Orthographic,
		Left:   left,
		Right:  right,
		Bottom: bottom,
		Top:    top,
		Near:   near,
		Far:    far,
	}
}

func (p Projection) Matrix() mgl32.Mat4 {
	if p.Kind == Orthographic {
		return mgl32.Ortho(p.Left, p.Right, p.Bottom, p.Top, p.Near, p.Far)
	}
	return mgl32.Frustum(p.Left, p.Right, p.Bottom, p.Top, p.Near, p.Far)
}

func (p Projection) Width() float32  { return p.Right - p.Left }
func (p Projection) Height() float32 { return p.Top - p.Bottom }

// FieldOfViewY returns the vertical field of view in radians. Zero for
// orthographic projections.
func (p Projection) FieldOfViewY() float32 {
	if p.Kind != Perspective || p.Near <= 0 {
		return 0
	}
	return float32(math.Atan(float64(p.Top/p.Near)) - math.Atan(float64(p.Bottom/p.Near)))
}

// SubFrustum returns the same projection with the depth range replaced. For
// perspective projections the near rectangle is rescaled so the field of view
// is unchanged.
func (p Projection) SubFrustum(near, far float32) Projection {
	sub := p
	if p.Kind == Perspective && p.Near > 0 {
		s := near / p.Near
		sub.Left *= s
		sub.Right *= s
		sub.Bottom *= s
		sub.Top *= s
	}
	sub.Near = near
	sub.Far = far
	return sub
}

// ViewSpaceCorners returns the 8 corners of the projection volume in view
// space, near quad first.
func (p Projection) ViewSpaceCorners() [8]mgl32.Vec3 {
	l, r, b, t, n, f := p.Left, p.Right, p.Bottom, p.Top, p.Near, p.Far
	fl, fr, fb, ft := l, r, b, t
	if p.Kind == Perspective && n > 0 {
		s := f / n
		fl, fr, fb, ft = l*s, r*s, b*s, t*s
	}
	return [8]mgl32.Vec3{
		{l, b, -n}, {r, b, -n}, {r, t, -n}, {l, t, -n},
		{fl, fb, -f}, {fr, fb, -f}, {fr, ft, -f}, {fl, ft, -f},
	}
}

// CameraNode is a scene node that looks down its local -Z axis.
type CameraNode struct {
	NodeBase
	Projection Projection

	// LodBias scales view-normalized distances computed against this camera.
	LodBias float32
}

func NewCameraNode(name string, projection Projection) *CameraNode {
	return &CameraNode{
		NodeBase:   NewNodeBase(name),
		Projection: projection,
		LodBias:    1,
	}
}

func (c *CameraNode) View() mgl32.Mat4 {
	pose := c.PoseWorld
	eye := pose.Position
	return mgl32.LookAtV(eye, eye.Add(pose.Forward()), pose.Up())
}

func (c *CameraNode) ViewProjection() mgl32.Mat4 {
	return c.Projection.Matrix().Mul4(c.View())
}

func (c *CameraNode) Frustum() Frustum {
	return NewFrustum(c.ViewProjection())
}

func (c *CameraNode) Forward() mgl32.Vec3 { return c.PoseWorld.Forward() }
func (c *CameraNode) Up() mgl32.Vec3      { return c.PoseWorld.Up() }

// LookAt orients the camera toward target. up must not be parallel to the
// view direction.
func (c *CameraNode) LookAt(eye, target, up mgl32.Vec3) {
	c.SetPose(eye, LookRotation(target.Sub(eye), up))
}

// LookRotation returns the rotation that maps -Z onto forward and +Y as close
// to up as possible.
func LookRotation(forward, up mgl32.Vec3) mgl32.Quat {
	f := forward.Normalize()
	r := f.Cross(up).Normalize()
	u := r.Cross(f)
	// Columns are the rotated basis vectors: X=r, Y=u, Z=-f.
	m := mgl32.Mat3{
		r.X(), r.Y(), r.Z(),
		u.X(), u.Y(), u.Z(),
		-f.X(), -f.Y(), -f.Z(),
	}
	return mgl32.Mat4ToQuat(m.Mat4())
}

// ViewNormalizedDistance scales a view distance to the distance it would have
// under a 90° vertical field of view, so LOD thresholds do not depend on the
// camera zoom.
func ViewNormalizedDistance(distance float32, projection mgl32.Mat4) float32 {
	yScale := abs32(projection.At(1, 1))
	if yScale == 0 {
		return distance
	}
	return distance / yScale
}
