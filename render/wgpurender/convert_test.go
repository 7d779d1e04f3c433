package wgpurender

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/shadowgraph/render"
	"github.com/gekko3d/shadowgraph/render/soft"
)

func TestTextureFormat(t *testing.T) {
	assert.Equal(t, wgpu.TextureFormatR32Float, TextureFormat(render.FormatR32F))
	assert.Equal(t, wgpu.TextureFormatR16Float, TextureFormat(render.FormatR16F))
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, TextureFormat(render.FormatRGBA8))
}

func TestShadowPassStateConversion(t *testing.T) {
	s := render.ShadowPassState
	s.Rasterizer.DepthBias = 2.4
	s.Rasterizer.SlopeScaleDepthBias = 1.5

	prim := PrimitiveState(s.Rasterizer)
	assert.Equal(t, wgpu.CullModeNone, prim.CullMode)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, prim.Topology)

	ds := DepthStencil(s.DepthStencil, s.Rasterizer)
	require.NotNil(t, ds)
	assert.True(t, ds.DepthWriteEnabled)
	assert.Equal(t, wgpu.CompareFunctionLessEqual, ds.DepthCompare)
	assert.Equal(t, int32(2), ds.DepthBias)
	assert.Equal(t, float32(1.5), ds.DepthBiasSlopeScale)
	assert.Equal(t, wgpu.CompareFunctionAlways, ds.StencilFront.Compare)

	assert.Nil(t, DepthStencil(render.DepthStencilNone, s.Rasterizer))
	assert.Equal(t, wgpu.CullModeBack, CullMode(render.CullBack))
}

func TestColorTarget(t *testing.T) {
	opaque := ColorTarget(render.FormatR32F, render.BlendOpaque)
	assert.Nil(t, opaque.Blend)
	assert.Equal(t, wgpu.ColorWriteMaskAll, opaque.WriteMask)

	blended := ColorTarget(render.FormatRGBA8, render.BlendAlpha)
	require.NotNil(t, blended.Blend)
	assert.Equal(t, wgpu.BlendFactorOne, blended.Blend.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, blended.Blend.Color.DstFactor)

	redOnly := ColorTarget(render.FormatRGBA8, render.BlendState{WriteMask: render.WriteRed})
	assert.Equal(t, wgpu.ColorWriteMaskRed, redOnly.WriteMask)
}

func TestUnwrapForeignTarget(t *testing.T) {
	foreign, err := soft.NewAllocator().Allocate(render.TargetDesc{Width: 4, Height: 4})
	require.NoError(t, err)

	_, err = unwrap(foreign)
	assert.True(t, errors.Is(err, render.ErrUnknownTarget))

	_, err = unwrap(nil)
	assert.True(t, errors.Is(err, render.ErrUnknownTarget))
}
