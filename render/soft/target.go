// Package soft is a CPU implementation of the render device. Targets store
// one 16-bit depth channel per texel; it is used for headless runs, debug
// dumps and tests.
package soft

import (
	"image"
	"sync"

	"github.com/google/uuid"

	"github.com/gekko3d/shadowgraph/render"
)

type Target struct {
	ID    uuid.UUID
	desc  render.TargetDesc
	faces []*image.Gray16
}

func (t *Target) Desc() render.TargetDesc { return t.desc }

// Face returns the pixel storage of one face. 2D targets only have face 0.
func (t *Target) Face(face render.CubeFace) *image.Gray16 {
	if face == render.FaceNone {
		face = 0
	}
	if int(face) < 0 || int(face) >= len(t.faces) {
		return nil
	}
	return t.faces[face]
}

func newTarget(desc render.TargetDesc) *Target {
	n := 1
	if desc.Kind == render.TargetCube {
		n = render.NumCubeFaces
	}
	t := &Target{ID: uuid.New(), desc: desc, faces: make([]*image.Gray16, n)}
	for i := range t.faces {
		t.faces[i] = image.NewGray16(image.Rect(0, 0, desc.Width, desc.Height))
	}
	return t
}

// Allocator tracks the targets it created so tests can check for leaks.
type Allocator struct {
	mu       sync.Mutex
	live     map[*Target]struct{}
	Released int
}

func NewAllocator() *Allocator {
	return &Allocator{live: make(map[*Target]struct{})}
}

func (a *Allocator) Allocate(desc render.TargetDesc) (render.Target, error) {
	t := newTarget(desc)
	a.mu.Lock()
	a.live[t] = struct{}{}
	a.mu.Unlock()
	return t, nil
}

func (a *Allocator) Release(t render.Target) {
	st, ok := t.(*Target)
	if !ok {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.live[st]; ok {
		delete(a.live, st)
		a.Released++
	}
}

// Live returns the number of allocated, unreleased targets.
func (a *Allocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}
