// Package wgpurender implements the render device and target allocator on
// top of WebGPU.
package wgpurender

import (
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/shadowgraph/render"
)

// DepthFormat is the depth attachment format host passes use together with
// DepthStencil.
const DepthFormat = wgpu.TextureFormatDepth32Float

func TextureFormat(f render.Format) wgpu.TextureFormat {
	switch f {
	case render.FormatR16F:
		return wgpu.TextureFormatR16Float
	case render.FormatRGBA8:
		return wgpu.TextureFormatRGBA8Unorm
	}
	return wgpu.TextureFormatR32Float
}

func CompareFunction(c render.CompareFunc) wgpu.CompareFunction {
	switch c {
	case render.CompareLess:
		return wgpu.CompareFunctionLess
	case render.CompareAlways:
		return wgpu.CompareFunctionAlways
	case render.CompareNever:
		return wgpu.CompareFunctionNever
	}
	return wgpu.CompareFunctionLessEqual
}

func CullMode(c render.CullMode) wgpu.CullMode {
	switch c {
	case render.CullFront:
		return wgpu.CullModeFront
	case render.CullBack:
		return wgpu.CullModeBack
	}
	return wgpu.CullModeNone
}

// PrimitiveState describes triangle lists with counter-clockwise front faces.
func PrimitiveState(r render.RasterizerState) wgpu.PrimitiveState {
	return wgpu.PrimitiveState{
		Topology:  wgpu.PrimitiveTopologyTriangleList,
		FrontFace: wgpu.FrontFaceCCW,
		CullMode:  CullMode(r.Cull),
	}
}

// DepthStencil returns nil when depth testing is disabled.
func DepthStencil(ds render.DepthStencilState, r render.RasterizerState) *wgpu.DepthStencilState {
	if !ds.DepthEnable {
		return nil
	}
	keep := wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
	return &wgpu.DepthStencilState{
		Format:              DepthFormat,
		DepthWriteEnabled:   ds.DepthWrite,
		DepthCompare:        CompareFunction(ds.Compare),
		StencilFront:        keep,
		StencilBack:         keep,
		DepthBias:           int32(math.Round(float64(r.DepthBias))),
		DepthBiasSlopeScale: r.SlopeScaleDepthBias,
	}
}

func ColorWriteMask(m render.ColorWriteMask) wgpu.ColorWriteMask {
	var out wgpu.ColorWriteMask
	if m&render.WriteRed != 0 {
		out |= wgpu.ColorWriteMaskRed
	}
	if m&render.WriteGreen != 0 {
		out |= wgpu.ColorWriteMaskGreen
	}
	if m&render.WriteBlue != 0 {
		out |= wgpu.ColorWriteMaskBlue
	}
	if m&render.WriteAlpha != 0 {
		out |= wgpu.ColorWriteMaskAlpha
	}
	return out
}

// ColorTarget describes a color attachment of format f blended with b.
func ColorTarget(f render.Format, b render.BlendState) wgpu.ColorTargetState {
	cts := wgpu.ColorTargetState{
		Format:    TextureFormat(f),
		WriteMask: ColorWriteMask(b.WriteMask),
	}
	if b.Enabled {
		premultiplied := wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		}
		cts.Blend = &wgpu.BlendState{Color: premultiplied, Alpha: premultiplied}
	}
	return cts
}
