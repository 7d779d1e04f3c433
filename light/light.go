package light

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/shadowgraph/scene"
)

type Kind uint32

const (
	KindAmbient Kind = iota
	KindDirectional
	KindPoint
	KindSpot
	KindProjector
	KindImageBased
)

func (k Kind) String() string {
	switch k {
	case KindAmbient:
		return "ambient"
	case KindDirectional:
		return "directional"
	case KindPoint:
		return "point"
	case KindSpot:
		return "spot"
	case KindProjector:
		return "projector"
	case KindImageBased:
		return "image-based"
	}
	return "unknown"
}

// Light describes emission only. Position and orientation come from the
// owning Node. The set of implementations is closed.
type Light interface {
	Kind() Kind
	// Shape is the local-space influence volume of the light.
	Shape() scene.Shape
	isLight()
}

// AmbientLight lights everything uniformly. HemisphericAttenuation blends
// between uniform (0) and hemispheric (1) lighting.
type AmbientLight struct {
	Color                  mgl32.Vec3
	Intensity              float32
	HdrScale               float32
	HemisphericAttenuation float32
}

func NewAmbientLight() *AmbientLight {
	return &AmbientLight{Color: mgl32.Vec3{1, 1, 1}, Intensity: 1, HdrScale: 1, HemisphericAttenuation: 0.7}
}

func (*AmbientLight) Kind() Kind         { return KindAmbient }
func (*AmbientLight) Shape() scene.Shape { return scene.InfiniteShape{} }
func (*AmbientLight) isLight()           {}

// DirectionalLight shines along the owning node's forward axis.
type DirectionalLight struct {
	Color             mgl32.Vec3
	DiffuseIntensity  float32
	SpecularIntensity float32
	HdrScale          float32
}

func NewDirectionalLight() *DirectionalLight {
	return &DirectionalLight{Color: mgl32.Vec3{1, 1, 1}, DiffuseIntensity: 1, SpecularIntensity: 1, HdrScale: 1}
}

func (*DirectionalLight) Kind() Kind         { return KindDirectional }
func (*DirectionalLight) Shape() scene.Shape { return scene.InfiniteShape{} }
func (*DirectionalLight) isLight()           {}

type PointLight struct {
	Color             mgl32.Vec3
	DiffuseIntensity  float32
	SpecularIntensity float32
	HdrScale          float32
	Range             float32
	// Attenuation is the exponent of the distance falloff.
	Attenuation float32
}

func NewPointLight(lightRange float32) *PointLight {
	return &PointLight{
		Color:             mgl32.Vec3{1, 1, 1},
		DiffuseIntensity:  1,
		SpecularIntensity: 1,
		HdrScale:          1,
		Range:             lightRange,
		Attenuation:       2,
	}
}

func (*PointLight) Kind() Kind           { return KindPoint }
func (l *PointLight) Shape() scene.Shape { return scene.SphereShape{Radius: l.Range} }
func (*PointLight) isLight()             {}

// SpotLight emits a cone along the node's forward axis. Angles are half
// angles in radians; FalloffAngle <= CutoffAngle.
type SpotLight struct {
	Color             mgl32.Vec3
	DiffuseIntensity  float32
	SpecularIntensity float32
	HdrScale          float32
	Range             float32
	FalloffAngle      float32
	CutoffAngle       float32
	Attenuation       float32
}

func NewSpotLight(lightRange, falloffAngle, cutoffAngle float32) *SpotLight {
	return &SpotLight{
		Color:             mgl32.Vec3{1, 1, 1},
		DiffuseIntensity:  1,
		SpecularIntensity: 1,
		HdrScale:          1,
		Range:             lightRange,
		FalloffAngle:      falloffAngle,
		CutoffAngle:       cutoffAngle,
		Attenuation:       2,
	}
}

func (*SpotLight) Kind() Kind { return KindSpot }
func (l *SpotLight) Shape() scene.Shape {
	return scene.SphereShape{Radius: l.Range}
}
func (*SpotLight) isLight() {}

// FieldOfViewY is the full cone angle.
func (l *SpotLight) FieldOfViewY() float32 { return 2 * l.CutoffAngle }

// ProjectorLight projects a texture through Projection. The far plane is the
// light's range.
type ProjectorLight struct {
	Color             mgl32.Vec3
	DiffuseIntensity  float32
	SpecularIntensity float32
	HdrScale          float32
	Projection        scene.Projection
	Attenuation       float32
}

func NewProjectorLight(projection scene.Projection) *ProjectorLight {
	return &ProjectorLight{
		Color:             mgl32.Vec3{1, 1, 1},
		DiffuseIntensity:  1,
		SpecularIntensity: 1,
		HdrScale:          1,
		Projection:        projection,
		Attenuation:       2,
	}
}

func (*ProjectorLight) Kind() Kind { return KindProjector }
func (l *ProjectorLight) Shape() scene.Shape {
	corners := l.Projection.ViewSpaceCorners()
	var r float32
	for _, c := range corners {
		r = max(r, c.Len())
	}
	return scene.SphereShape{Radius: r}
}
func (*ProjectorLight) isLight() {}

// ImageBasedLight is an environment map. A nil Box makes it global.
type ImageBasedLight struct {
	Color             mgl32.Vec3
	DiffuseIntensity  float32
	SpecularIntensity float32
	HdrScale          float32
	Box               *scene.BoxShape
}

func NewImageBasedLight() *ImageBasedLight {
	return &ImageBasedLight{Color: mgl32.Vec3{1, 1, 1}, DiffuseIntensity: 1, SpecularIntensity: 1, HdrScale: 1}
}

func (*ImageBasedLight) Kind() Kind { return KindImageBased }
func (l *ImageBasedLight) Shape() scene.Shape {
	if l.Box == nil {
		return scene.InfiniteShape{}
	}
	return *l.Box
}
func (*ImageBasedLight) isLight() {}

// DistanceAttenuation falls off from 1 at the light to 0 at lightRange.
// exponent shapes the curve; 0 disables the falloff inside the range.
func DistanceAttenuation(distance, lightRange, exponent float32) float32 {
	if lightRange <= 0 || distance >= lightRange {
		return 0
	}
	x := max(distance, 0) / lightRange
	return float32(math.Pow(float64(1-x*x), float64(exponent)))
}

// SpotAttenuation returns 1 inside the falloff cone, 0 outside the cutoff
// cone and a smooth transition in between. direction is the normalized
// spot axis, toPoint the normalized direction from the light to the point.
func SpotAttenuation(direction, toPoint mgl32.Vec3, falloffAngle, cutoffAngle float32) float32 {
	cosAngle := direction.Dot(toPoint)
	cosCutoff := float32(math.Cos(float64(cutoffAngle)))
	cosFalloff := float32(math.Cos(float64(falloffAngle)))
	if cosAngle <= cosCutoff {
		return 0
	}
	if cosAngle >= cosFalloff || cosFalloff <= cosCutoff {
		return 1
	}
	t := (cosAngle - cosCutoff) / (cosFalloff - cosCutoff)
	return t * t * (3 - 2*t)
}

// luminance weights of linear sRGB primaries
func luminance(c mgl32.Vec3) float32 {
	return 0.2126*c.X() + 0.7152*c.Y() + 0.0722*c.Z()
}
