package light

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/shadowgraph/render"
)

// MaxCascades is the capacity of the per-cascade arrays of CascadedShadow.
const MaxCascades = 4

type ShadowKind uint32

const (
	ShadowStandard ShadowKind = iota
	ShadowCascaded
	ShadowCubeMap
	ShadowComposite
)

func (k ShadowKind) String() string {
	switch k {
	case ShadowStandard:
		return "standard"
	case ShadowCascaded:
		return "cascaded"
	case ShadowCubeMap:
		return "cubemap"
	case ShadowComposite:
		return "composite"
	}
	return "unknown"
}

// Shadow is the closed set of shadow descriptors a light node can carry.
// Renderers fill in the computed fields; shading passes read them.
type Shadow interface {
	Kind() ShadowKind
	isShadow()
}

// EmptyMatrix marks a matrix slot that holds no valid transform.
var EmptyMatrix = mgl32.Mat4{}

func IsValidMatrix(m mgl32.Mat4) bool {
	return m != EmptyMatrix
}

// StandardShadow is a single shadow map for spot and projector lights.
// DepthBias and NormalOffset are in shadow-map texels.
type StandardShadow struct {
	PreferredSize int
	Format        render.Format
	DepthBias     float32
	NormalOffset  float32

	Near       float32
	Far        float32
	View       mgl32.Mat4
	Projection mgl32.Mat4

	EffectiveDepthBias    float32
	EffectiveNormalOffset float32

	ShadowMap render.Target
}

func NewStandardShadow() *StandardShadow {
	return &StandardShadow{PreferredSize: 1024, Format: render.FormatR32F, DepthBias: 2, NormalOffset: 2}
}

func (*StandardShadow) Kind() ShadowKind { return ShadowStandard }
func (*StandardShadow) isShadow()        {}

// ViewProjection returns Projection * View.
func (s *StandardShadow) ViewProjection() mgl32.Mat4 {
	return s.Projection.Mul4(s.View)
}

// CascadedShadow splits the camera frustum into depth slices, each with its
// own tile of a horizontal atlas. Distances are the far ends of the slices
// in world units.
type CascadedShadow struct {
	NumberOfCascades int
	Distances        [MaxCascades]float32
	// MinLightDistance pulls the light camera back so casters between the
	// light and the slice are included.
	MinLightDistance float32
	PreferredSize    int
	Format           render.Format
	DepthBias        [MaxCascades]float32
	NormalOffset     [MaxCascades]float32

	ViewProjections       [MaxCascades]mgl32.Mat4
	EffectiveDepthBias    [MaxCascades]float32
	EffectiveNormalOffset [MaxCascades]float32

	// IsCascadeLocked keeps the previous contents and matrix of a cascade.
	IsCascadeLocked [MaxCascades]bool

	ShadowMap render.Target
}

func NewCascadedShadow() *CascadedShadow {
	s := &CascadedShadow{
		NumberOfCascades: 4,
		Distances:        [MaxCascades]float32{4, 12, 20, 50},
		MinLightDistance: 100,
		PreferredSize:    1024,
		Format:           render.FormatR32F,
	}
	for i := range s.DepthBias {
		s.DepthBias[i] = 5
		s.NormalOffset[i] = 2
	}
	return s
}

func (*CascadedShadow) Kind() ShadowKind { return ShadowCascaded }
func (*CascadedShadow) isShadow()        {}

// CubeMapShadow is an omnidirectional shadow for point lights. The far
// plane is the light's range.
type CubeMapShadow struct {
	PreferredSize int
	Format        render.Format
	DepthBias     float32
	NormalOffset  float32
	Near          float32

	Far        float32
	Projection mgl32.Mat4

	EffectiveDepthBias    float32
	EffectiveNormalOffset float32

	ShadowMap render.Target
}

func NewCubeMapShadow() *CubeMapShadow {
	return &CubeMapShadow{PreferredSize: 512, Format: render.FormatR32F, DepthBias: 2, NormalOffset: 2, Near: 0.05}
}

func (*CubeMapShadow) Kind() ShadowKind { return ShadowCubeMap }
func (*CubeMapShadow) isShadow()        {}

// CompositeShadow combines several shadows on one light.
type CompositeShadow struct {
	Shadows []Shadow
}

func (*CompositeShadow) Kind() ShadowKind { return ShadowComposite }
func (*CompositeShadow) isShadow()        {}
