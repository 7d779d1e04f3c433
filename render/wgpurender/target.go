package wgpurender

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"

	"github.com/gekko3d/shadowgraph/render"
)

// Target is a texture with one render view per layer. Cube targets have six
// layers in render.CubeFace order.
type Target struct {
	ID      uuid.UUID
	desc    render.TargetDesc
	Texture *wgpu.Texture
	// SampleView binds the whole target in shaders: 2D or cube.
	SampleView *wgpu.TextureView
	faces      []*wgpu.TextureView
}

func (t *Target) Desc() render.TargetDesc { return t.desc }

// FaceView returns the render view of face. FaceNone selects layer 0.
func (t *Target) FaceView(face render.CubeFace) *wgpu.TextureView {
	if face < 0 || int(face) >= len(t.faces) {
		return t.faces[0]
	}
	return t.faces[face]
}

func (t *Target) release() {
	for _, v := range t.faces {
		v.Release()
	}
	t.faces = nil
	if t.SampleView != nil {
		t.SampleView.Release()
		t.SampleView = nil
	}
	t.Texture.Release()
}

// Allocator creates render targets on a wgpu device.
type Allocator struct {
	device *wgpu.Device
	log    render.Logger

	mu   sync.Mutex
	live map[*Target]struct{}
}

func NewAllocator(device *wgpu.Device, log render.Logger) *Allocator {
	if device == nil {
		panic("wgpurender.NewAllocator: nil device")
	}
	return &Allocator{device: device, log: render.OrNop(log), live: make(map[*Target]struct{})}
}

func (a *Allocator) Allocate(desc render.TargetDesc) (render.Target, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("wgpurender: invalid target size %dx%d", desc.Width, desc.Height)
	}
	layers := uint32(1)
	sampleDim := wgpu.TextureViewDimension2D
	if desc.Kind == render.TargetCube {
		layers = render.NumCubeFaces
		sampleDim = wgpu.TextureViewDimensionCube
	}
	format := TextureFormat(desc.Format)

	id := uuid.New()
	tex, err := a.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         fmt.Sprintf("shadow target %s (%s)", desc, id),
		Size:          wgpu.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: layers},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage: wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding |
			wgpu.TextureUsageCopySrc | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpurender: create texture %s: %w", desc, err)
	}

	t := &Target{ID: id, desc: desc, Texture: tex}
	for i := uint32(0); i < layers; i++ {
		v, err := tex.CreateView(&wgpu.TextureViewDescriptor{
			Label:           fmt.Sprintf("shadow target face %d", i),
			Format:          format,
			Dimension:       wgpu.TextureViewDimension2D,
			BaseMipLevel:    0,
			MipLevelCount:   1,
			BaseArrayLayer:  i,
			ArrayLayerCount: 1,
		})
		if err != nil {
			t.release()
			return nil, fmt.Errorf("wgpurender: create view %d of %s: %w", i, desc, err)
		}
		t.faces = append(t.faces, v)
	}
	t.SampleView, err = tex.CreateView(&wgpu.TextureViewDescriptor{
		Format:          format,
		Dimension:       sampleDim,
		MipLevelCount:   1,
		ArrayLayerCount: layers,
	})
	if err != nil {
		t.release()
		return nil, fmt.Errorf("wgpurender: create sample view of %s: %w", desc, err)
	}

	a.mu.Lock()
	a.live[t] = struct{}{}
	a.mu.Unlock()
	return t, nil
}

func (a *Allocator) Release(rt render.Target) {
	t, ok := rt.(*Target)
	if !ok {
		a.log.Warnf("wgpurender: release of foreign target %T", rt)
		return
	}
	a.mu.Lock()
	_, live := a.live[t]
	delete(a.live, t)
	a.mu.Unlock()
	if !live {
		a.log.Warnf("wgpurender: release of unknown target %s", t.ID)
		return
	}
	t.release()
}

func (a *Allocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

func unwrap(rt render.Target) (*Target, error) {
	t, ok := rt.(*Target)
	if !ok || t == nil {
		return nil, fmt.Errorf("wgpurender: %T: %w", rt, render.ErrUnknownTarget)
	}
	return t, nil
}
