package wgpurender

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/shadowgraph/render"
)

// ErrNoTarget is returned when drawing with no render target bound. The
// presentation surface belongs to the host renderer.
var ErrNoTarget = errors.New("wgpurender: no render target bound")

const paramsSize = 3 * 4 * 4

type pipelineKey struct {
	format render.Format
	blit   bool
}

// Device records every operation into its own command buffer and submits it
// right away, so host passes issued from render callbacks see the results.
type Device struct {
	device *wgpu.Device
	queue  *wgpu.Queue
	log    render.Logger

	module    *wgpu.ShaderModule
	uniforms  *wgpu.Buffer
	pipelines map[pipelineKey]*wgpu.RenderPipeline

	target   *Target
	face     render.CubeFace
	viewport render.Viewport
	state    render.PipelineState
}

func NewDevice(device *wgpu.Device, log render.Logger) (*Device, error) {
	if device == nil {
		panic("wgpurender.NewDevice: nil device")
	}
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "shadow copy",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: copyWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpurender: create shader module: %w", err)
	}
	uniforms, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "shadow copy params",
		Size:  paramsSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		module.Release()
		return nil, fmt.Errorf("wgpurender: create params buffer: %w", err)
	}
	return &Device{
		device:    device,
		queue:     device.GetQueue(),
		log:       render.OrNop(log),
		module:    module,
		uniforms:  uniforms,
		pipelines: make(map[pipelineKey]*wgpu.RenderPipeline),
		face:      render.FaceNone,
		state:     render.DefaultPipelineState,
	}, nil
}

// SetRenderTarget binds t. Targets from other backends unbind.
func (d *Device) SetRenderTarget(t render.Target, face render.CubeFace) {
	d.target, d.face = nil, render.FaceNone
	d.viewport = render.Viewport{}
	if t == nil {
		return
	}
	wt, err := unwrap(t)
	if err != nil {
		d.log.Warnf("wgpurender: bind: %v", err)
		return
	}
	d.target, d.face = wt, face
	d.viewport = render.FullViewport(wt.desc.Width, wt.desc.Height)
}

func (d *Device) RenderTarget() (render.Target, render.CubeFace) {
	if d.target == nil {
		return nil, render.FaceNone
	}
	return d.target, d.face
}

// TargetView is the view host passes attach as color target.
func (d *Device) TargetView() *wgpu.TextureView {
	if d.target == nil {
		return nil
	}
	return d.target.FaceView(d.face)
}

func (d *Device) SetViewport(v render.Viewport)           { d.viewport = v }
func (d *Device) Viewport() render.Viewport               { return d.viewport }
func (d *Device) PipelineState() render.PipelineState     { return d.state }
func (d *Device) SetPipelineState(s render.PipelineState) { d.state = s }

func (d *Device) Clear(c mgl32.Vec4) error {
	if d.target == nil {
		return ErrNoTarget
	}
	desc := d.target.desc
	if d.viewport.Rect() == (render.Rect{Width: desc.Width, Height: desc.Height}) {
		return d.submit("clear", func(enc *wgpu.CommandEncoder) error {
			pass := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
				ColorAttachments: []wgpu.RenderPassColorAttachment{{
					View:       d.TargetView(),
					LoadOp:     wgpu.LoadOpClear,
					StoreOp:    wgpu.StoreOpStore,
					ClearValue: wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])},
				}},
			})
			return pass.End()
		})
	}

	// partial clears are a full-screen fill clipped by the viewport
	d.writeParams(render.Rect{}, render.Rect{}, c)
	pipeline, err := d.pipeline(desc.Format, false)
	if err != nil {
		return err
	}
	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: d.uniforms, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpurender: clear bind group: %w", err)
	}
	defer bg.Release()
	return d.draw("clear", pipeline, bg, d.viewport.Rect())
}

func (d *Device) Blit(src render.Target, srcRect, dstRect render.Rect) error {
	if d.target == nil {
		return ErrNoTarget
	}
	s, err := unwrap(src)
	if err != nil {
		return err
	}
	if srcRect.Empty() || dstRect.Empty() {
		return nil
	}
	if s == d.target {
		return fmt.Errorf("wgpurender: blit %s onto itself", s.ID)
	}

	d.writeParams(srcRect, dstRect, mgl32.Vec4{})
	pipeline, err := d.pipeline(d.target.desc.Format, true)
	if err != nil {
		return err
	}
	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: d.uniforms, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: s.FaceView(0)},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpurender: blit bind group: %w", err)
	}
	defer bg.Release()
	return d.draw("blit", pipeline, bg, dstRect)
}

func (d *Device) writeParams(src, dst render.Rect, color mgl32.Vec4) {
	params := []float32{
		float32(src.X), float32(src.Y), float32(src.Width), float32(src.Height),
		float32(dst.X), float32(dst.Y), float32(dst.Width), float32(dst.Height),
		color[0], color[1], color[2], color[3],
	}
	d.queue.WriteBuffer(d.uniforms, 0, wgpu.ToBytes(params))
}

func (d *Device) draw(label string, pipeline *wgpu.RenderPipeline, bg *wgpu.BindGroup, r render.Rect) error {
	return d.submit(label, func(enc *wgpu.CommandEncoder) error {
		pass := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{{
				View:    d.TargetView(),
				LoadOp:  wgpu.LoadOpLoad,
				StoreOp: wgpu.StoreOpStore,
			}},
		})
		pass.SetPipeline(pipeline)
		pass.SetBindGroup(0, bg, nil)
		pass.SetViewport(float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), 0, 1)
		pass.Draw(3, 1, 0, 0)
		return pass.End()
	})
}

func (d *Device) submit(label string, record func(*wgpu.CommandEncoder) error) error {
	enc, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("wgpurender: %s: create encoder: %w", label, err)
	}
	defer enc.Release()
	if err := record(enc); err != nil {
		return fmt.Errorf("wgpurender: %s: %w", label, err)
	}
	cmd, err := enc.Finish(nil)
	if err != nil {
		return fmt.Errorf("wgpurender: %s: finish: %w", label, err)
	}
	defer cmd.Release()
	d.queue.Submit(cmd)
	return nil
}

func (d *Device) pipeline(format render.Format, blit bool) (*wgpu.RenderPipeline, error) {
	key := pipelineKey{format: format, blit: blit}
	if p, ok := d.pipelines[key]; ok {
		return p, nil
	}
	entry, label := "fs_fill", "shadow fill"
	if blit {
		entry, label = "fs_blit", "shadow blit"
	}
	p, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: fmt.Sprintf("%s %s", label, format),
		Vertex: wgpu.VertexState{
			Module:     d.module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     d.module,
			EntryPoint: entry,
			Targets:    []wgpu.ColorTargetState{ColorTarget(format, render.CopyPassState.Blend)},
		},
		Primitive: PrimitiveState(render.CopyPassState.Rasterizer),
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpurender: create %s pipeline: %w", label, err)
	}
	d.log.Debugf("wgpurender: created %s pipeline for %s", label, format)
	d.pipelines[key] = p
	return p, nil
}

// Release frees the device's own GPU objects. Targets are released by
// their Allocator.
func (d *Device) Release() {
	for k, p := range d.pipelines {
		p.Release()
		delete(d.pipelines, k)
	}
	d.uniforms.Release()
	d.module.Release()
}
