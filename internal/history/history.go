// Package history keeps a bounded list of controller snapshots so a
// viewer can step the simulation backward.
package history

import "github.com/san-kum/galaxysim/internal/sim"

const DefaultCapacity = 600

// Ring holds the most recent snapshots, dropping the oldest once full.
type Ring struct {
	buf   []sim.Snapshot
	start int
	n     int
}

func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{buf: make([]sim.Snapshot, capacity)}
}

func (r *Ring) Push(s sim.Snapshot) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = s
		r.n++
		return
	}
	r.buf[r.start] = s
	r.start = (r.start + 1) % len(r.buf)
}

// Pop removes and returns the newest snapshot.
func (r *Ring) Pop() (sim.Snapshot, bool) {
	if r.n == 0 {
		return sim.Snapshot{}, false
	}
	r.n--
	i := (r.start + r.n) % len(r.buf)
	s := r.buf[i]
	r.buf[i] = sim.Snapshot{}
	return s, true
}

func (r *Ring) Peek() (sim.Snapshot, bool) {
	if r.n == 0 {
		return sim.Snapshot{}, false
	}
	return r.buf[(r.start+r.n-1)%len(r.buf)], true
}

func (r *Ring) Len() int { return r.n }
func (r *Ring) Cap() int { return len(r.buf) }

func (r *Ring) Clear() {
	clear(r.buf)
	r.start, r.n = 0, 0
}

// Recorder pushes a controller snapshot before every step it is told
// about, so Back can undo the most recent step.
type Recorder struct {
	ring *Ring
	ctl  *sim.Controller
}

func NewRecorder(ctl *sim.Controller, capacity int) *Recorder {
	return &Recorder{ring: New(capacity), ctl: ctl}
}

// Step records the current state and then runs fn, which is expected to
// advance the controller. The record is discarded if fn fails.
func (r *Recorder) Step(fn func() error) error {
	snap := r.ctl.Snapshot()
	before := r.ctl.Steps()
	if err := fn(); err != nil {
		return err
	}
	if r.ctl.Steps() != before {
		r.ring.Push(snap)
	}
	return nil
}

// Back restores the snapshot taken before the most recent recorded step.
// It reports false when there is nothing to go back to.
func (r *Recorder) Back() (bool, error) {
	snap, ok := r.ring.Peek()
	if !ok {
		return false, nil
	}
	if err := r.ctl.Restore(snap); err != nil {
		return false, err
	}
	r.ring.Pop()
	return true, nil
}

func (r *Recorder) Len() int { return r.ring.Len() }

func (r *Recorder) Clear() { r.ring.Clear() }
