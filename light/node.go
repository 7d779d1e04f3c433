package light

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/shadowgraph/scene"
)

// DefaultHemisphericWeight is the ambient weight used when ranking lights.
const DefaultHemisphericWeight = 0.7

// Node places a Light in the scene.
type Node struct {
	scene.NodeBase
	Light  Light
	Shadow Shadow
	// Clip restricts where the light applies. nil applies everywhere.
	Clip *scene.ClipVolume
}

func NewNode(name string, l Light) *Node {
	if l == nil {
		panic("light.NewNode: nil light")
	}
	n := &Node{NodeBase: scene.NewNodeBase(name), Light: l}
	n.Shape = l.Shape()
	return n
}

// IsGlobal reports whether the light has infinite extent.
func (n *Node) IsGlobal() bool {
	switch n.Light.(type) {
	case *AmbientLight, *DirectionalLight, *ImageBasedLight:
		return scene.IsInfiniteShape(n.Light.Shape())
	}
	return false
}

// Contribution estimates the brightness of the light at the world-space
// position. The value is only meant for ranking lights.
func (n *Node) Contribution(position mgl32.Vec3, hemisphericWeight float32) float32 {
	pose := n.PoseWorld
	switch l := n.Light.(type) {
	case *AmbientLight:
		weight := 1 + (hemisphericWeight-1)*l.HemisphericAttenuation
		return luminance(l.Color) * l.Intensity * l.HdrScale * weight

	case *DirectionalLight:
		return luminance(l.Color) * l.DiffuseIntensity * l.HdrScale

	case *PointLight:
		d := position.Sub(pose.Position).Len()
		return luminance(l.Color) * l.DiffuseIntensity * l.HdrScale *
			DistanceAttenuation(d, l.Range, l.Attenuation)

	case *SpotLight:
		toPoint := position.Sub(pose.Position)
		d := toPoint.Len()
		base := luminance(l.Color) * l.DiffuseIntensity * l.HdrScale * DistanceAttenuation(d, l.Range, l.Attenuation)
		if d == 0 || base == 0 {
			return base
		}
		return base * SpotAttenuation(pose.Forward(), toPoint.Mul(1/d), l.FalloffAngle, l.CutoffAngle)

	case *ProjectorLight:
		local := pose.InverseTransformPoint(position)
		p := l.Projection
		depth := -local.Z()
		if depth < p.Near || depth > p.Far {
			return 0
		}
		x, y := local.X(), local.Y()
		if p.Kind == scene.Perspective && p.Near > 0 {
			x, y = x*p.Near/depth, y*p.Near/depth
		}
		if x < p.Left || x > p.Right || y < p.Bottom || y > p.Top {
			return 0
		}
		return luminance(l.Color) * l.DiffuseIntensity * l.HdrScale *
			DistanceAttenuation(depth, p.Far, l.Attenuation)

	case *ImageBasedLight:
		return luminance(l.Color) * l.DiffuseIntensity * l.HdrScale
	}
	return 0
}
