package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Shape is a local-space volume. It is used as a bounding shape for culling
// and as the geometry of light clip volumes.
type Shape interface {
	// ContainsPoint reports whether p (in the shape's local space) touches
	// the shape. Points on the surface count as contact.
	ContainsPoint(p mgl32.Vec3) bool
	IsInfinite() bool
	// BoundingRadius is the radius of a sphere around the local origin that
	// encloses the shape. +Inf for infinite shapes.
	BoundingRadius() float32
}

// InfiniteShape contains every point.
type InfiniteShape struct{}

func (InfiniteShape) ContainsPoint(mgl32.Vec3) bool { return true }
func (InfiniteShape) IsInfinite() bool              { return true }
func (InfiniteShape) BoundingRadius() float32       { return float32(inf) }

type SphereShape struct {
	Radius float32
}

func (s SphereShape) ContainsPoint(p mgl32.Vec3) bool {
	return p.Dot(p) <= s.Radius*s.Radius
}

func (s SphereShape) IsInfinite() bool        { return false }
func (s SphereShape) BoundingRadius() float32 { return s.Radius }

// BoxShape is centered on the local origin.
type BoxShape struct {
	Extent mgl32.Vec3 // full widths along x, y, z
}

func (b BoxShape) ContainsPoint(p mgl32.Vec3) bool {
	h := b.Extent.Mul(0.5)
	return abs32(p.X()) <= h.X() && abs32(p.Y()) <= h.Y() && abs32(p.Z()) <= h.Z()
}

func (b BoxShape) IsInfinite() bool        { return false }
func (b BoxShape) BoundingRadius() float32 { return b.Extent.Len() * 0.5 }

// IsInfiniteShape treats a nil shape as infinite.
func IsInfiniteShape(s Shape) bool {
	return s == nil || s.IsInfinite()
}

// ClipVolume restricts where a light is considered active. With Invert set
// the light applies outside the geometry instead of inside it.
type ClipVolume struct {
	Shape  Shape
	Pose   Transform
	Invert bool
}

// HasContact performs a zero-radius point test of the world-space point p
// against the clip geometry.
func (c *ClipVolume) HasContact(p mgl32.Vec3) bool {
	if c.Shape == nil {
		return false
	}
	return c.Shape.ContainsPoint(c.Pose.InverseTransformPoint(p))
}

// Includes applies the invert flag: contact and not inverted, or no contact
// and inverted.
func (c *ClipVolume) Includes(p mgl32.Vec3) bool {
	return c.HasContact(p) != c.Invert
}
