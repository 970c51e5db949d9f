package progress

import (
	"sync"
	"time"

	"github.com/viant/storyflow/internal/clock"
)

// Delta represents an incremental counter change emitted by the router.
// The fields are signed and therefore can be either positive or negative.
type Delta struct {
	Received   int
	Dispatched int
	Skipped    int
	Unknown    int
	Failed     int
	Running    int
}

// Progress keeps aggregated routing counters. It is safe for concurrent use.
type Progress struct {
	StartedAt time.Time

	Received   int
	Dispatched int
	Skipped    int
	Unknown    int
	Failed     int
	Running    int

	mu       sync.Mutex
	onChange func(Snapshot)
}

// Snapshot is a read-only copy of the counters
type Snapshot struct {
	StartedAt  time.Time `json:"startedAt"`
	Received   int       `json:"received"`
	Dispatched int       `json:"dispatched"`
	Skipped    int       `json:"skipped"`
	Unknown    int       `json:"unknown"`
	Failed     int       `json:"failed"`
	Running    int       `json:"running"`
}

// New creates a tracker, onChange may be nil
func New(onChange func(Snapshot)) *Progress {
	return &Progress{StartedAt: clock.Now(), onChange: onChange}
}

// Update applies the supplied delta. The onChange callback is invoked with a
// snapshot outside the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.Received += d.Received
	p.Dispatched += d.Dispatched
	p.Skipped += d.Skipped
	p.Unknown += d.Unknown
	p.Failed += d.Failed
	p.Running += d.Running
	snapshot := p.snapshot()
	cb := p.onChange
	p.mu.Unlock()
	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the counters
func (p *Progress) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

func (p *Progress) snapshot() Snapshot {
	return Snapshot{
		StartedAt:  p.StartedAt,
		Received:   p.Received,
		Dispatched: p.Dispatched,
		Skipped:    p.Skipped,
		Unknown:    p.Unknown,
		Failed:     p.Failed,
		Running:    p.Running,
	}
}

// OnChange registers a callback invoked after every Update, nil disables it
func (p *Progress) OnChange(cb func(Snapshot)) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.onChange = cb
	p.mu.Unlock()
}
