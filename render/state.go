package render

type CompareFunc uint8

const (
	CompareLessEqual CompareFunc = iota
	CompareLess
	CompareAlways
	CompareNever
)

type CullMode uint8

const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

type DepthStencilState struct {
	DepthEnable bool
	DepthWrite  bool
	Compare     CompareFunc
}

type RasterizerState struct {
	Cull CullMode
	// Hardware bias applied during rasterization, in depth units.
	DepthBias           float32
	SlopeScaleDepthBias float32
	ScissorTest         bool
}

// BlendState uses premultiplied alpha when Enabled.
type BlendState struct {
	Enabled   bool
	WriteMask ColorWriteMask
}

type ColorWriteMask uint8

const (
	WriteRed ColorWriteMask = 1 << iota
	WriteGreen
	WriteBlue
	WriteAlpha

	WriteAll = WriteRed | WriteGreen | WriteBlue | WriteAlpha
)

var (
	DepthStencilDefault = DepthStencilState{DepthEnable: true, DepthWrite: true, Compare: CompareLessEqual}
	DepthStencilNone    = DepthStencilState{Compare: CompareAlways}
	DepthStencilRead    = DepthStencilState{DepthEnable: true, Compare: CompareLessEqual}

	RasterizerCullBack = RasterizerState{Cull: CullBack}
	RasterizerCullNone = RasterizerState{Cull: CullNone}

	BlendOpaque = BlendState{WriteMask: WriteAll}
	BlendAlpha  = BlendState{Enabled: true, WriteMask: WriteAll}
)

// PipelineState is the fixed-function state a pass may change.
type PipelineState struct {
	DepthStencil DepthStencilState
	Rasterizer   RasterizerState
	Blend        BlendState
}

var (
	DefaultPipelineState = PipelineState{
		DepthStencil: DepthStencilDefault,
		Rasterizer:   RasterizerCullBack,
		Blend:        BlendOpaque,
	}
	// ShadowPassState renders depth of both faces into an opaque target.
	ShadowPassState = PipelineState{
		DepthStencil: DepthStencilDefault,
		Rasterizer:   RasterizerCullNone,
		Blend:        BlendOpaque,
	}
	// CopyPassState is used for full-screen copies.
	CopyPassState = PipelineState{
		DepthStencil: DepthStencilNone,
		Rasterizer:   RasterizerCullNone,
		Blend:        BlendOpaque,
	}
)
