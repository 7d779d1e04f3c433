package render

import (
	"fmt"
	"sync"
)

const DefaultFrameLimit = 60

type freeTarget struct {
	target   Target
	lastUsed int
}

// PoolStats is a snapshot of pool activity.
type PoolStats struct {
	Allocated      int // backend allocations
	Reused         int // obtains served from a free list
	Recycled       int
	Released       int // targets handed back to the backend
	DoubleRecycles int
	CheckedOut     int
	Free           int
}

// Pool is the TargetPool implementation. Free targets are kept per
// descriptor and released to the Allocator after staying unused for more
// than FrameLimit frames. Pool is safe for concurrent use.
type Pool struct {
	mu         sync.Mutex
	alloc      Allocator
	log        Logger
	frameLimit int
	frame      int
	free       map[TargetDesc][]freeTarget
	checkedOut map[Target]struct{}
	stats      PoolStats
}

type PoolOption func(*Pool)

// WithFrameLimit sets how many frames a free target survives. Negative
// values keep free targets forever.
func WithFrameLimit(frames int) PoolOption {
	return func(p *Pool) { p.frameLimit = frames }
}

func WithPoolLogger(l Logger) PoolOption {
	return func(p *Pool) { p.log = OrNop(l) }
}

func NewPool(alloc Allocator, opts ...PoolOption) *Pool {
	if alloc == nil {
		panic("render.NewPool: nil allocator")
	}
	p := &Pool{
		alloc:      alloc,
		log:        nopLogger{},
		frameLimit: DefaultFrameLimit,
		free:       make(map[TargetDesc][]freeTarget),
		checkedOut: make(map[Target]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pool) Obtain2D(width, height int, format Format) (Target, error) {
	return p.Obtain(TargetDesc{Kind: Target2D, Width: width, Height: height, Format: format})
}

func (p *Pool) ObtainCube(size int, format Format) (Target, error) {
	return p.Obtain(TargetDesc{Kind: TargetCube, Width: size, Height: size, Format: format})
}

// Obtain returns a free target matching desc or allocates a new one.
func (p *Pool) Obtain(desc TargetDesc) (Target, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("render: invalid target size %dx%d", desc.Width, desc.Height)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if list := p.free[desc]; len(list) > 0 {
		// most recently used first
		t := list[len(list)-1].target
		p.free[desc] = list[:len(list)-1]
		p.checkedOut[t] = struct{}{}
		p.stats.Reused++
		return t, nil
	}

	t, err := p.alloc.Allocate(desc)
	if err != nil {
		return nil, fmt.Errorf("render: allocate %s: %w", desc, err)
	}
	p.checkedOut[t] = struct{}{}
	p.stats.Allocated++
	p.log.Debugf("render pool: allocated %s", desc)
	return t, nil
}

// Recycle returns t to the pool. Recycling nil is a no-op. Recycling a
// target that is not checked out is logged and ignored.
func (p *Pool) Recycle(t Target) {
	if t == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.checkedOut[t]; !ok {
		p.stats.DoubleRecycles++
		p.log.Warnf("render pool: recycle of target %s that is not checked out", t.Desc())
		return
	}
	delete(p.checkedOut, t)
	desc := t.Desc()
	p.free[desc] = append(p.free[desc], freeTarget{target: t, lastUsed: p.frame})
	p.stats.Recycled++
}

// EndFrame advances the frame counter and releases stale free targets.
func (p *Pool) EndFrame() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frame++
	if p.frameLimit < 0 {
		return
	}
	for desc, list := range p.free {
		kept := list[:0]
		for _, f := range list {
			if p.frame-f.lastUsed > p.frameLimit {
				p.alloc.Release(f.target)
				p.stats.Released++
				p.log.Debugf("render pool: evicted %s unused for %d frames", desc, p.frame-f.lastUsed)
				continue
			}
			kept = append(kept, f)
		}
		if len(kept) == 0 {
			delete(p.free, desc)
		} else {
			p.free[desc] = kept
		}
	}
}

// Clear releases every free target. Checked-out targets are not touched.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for desc, list := range p.free {
		for _, f := range list {
			p.alloc.Release(f.target)
			p.stats.Released++
		}
		delete(p.free, desc)
	}
}

// IsCheckedOut reports whether t is currently handed out by the pool.
func (p *Pool) IsCheckedOut(t Target) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.checkedOut[t]
	return ok
}

func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.stats
	s.CheckedOut = len(p.checkedOut)
	for _, list := range p.free {
		s.Free += len(list)
	}
	return s
}
