package shadowgraph

import "time"

// Profiler holds the timings of the last RenderFrame.
type Profiler struct {
	CullTime   time.Duration
	QueryTime  time.Duration
	ShadowTime time.Duration
	TotalTime  time.Duration
}

func (p *Profiler) Reset() {
	p.CullTime = 0
	p.QueryTime = 0
	p.ShadowTime = 0
	p.TotalTime = 0
}

// measure adds the time since start to d and returns the current time.
func measure(d *time.Duration, start time.Time) time.Time {
	now := time.Now()
	*d += now.Sub(start)
	return now
}
