package interaction

import (
	"sort"
	"sync"
	"time"
)

// FrameHandle is a pending frame request.  Cancel is idempotent and safe to
// call after the frame has fired.
type FrameHandle interface {
	Cancel()
}

// Scheduler requests a single callback one frame from now.  The callback
// receives the time the frame fired.
type Scheduler interface {
	RequestFrame(fn func(now time.Time)) FrameHandle
}

// TimerScheduler fires frames on wall-clock timers.
type TimerScheduler struct {
	interval time.Duration
}

func NewTimerScheduler(interval time.Duration) *TimerScheduler {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &TimerScheduler{interval: interval}
}

func (s *TimerScheduler) Interval() time.Duration { return s.interval }

type timerHandle struct {
	once  sync.Once
	timer *time.Timer
}

func (h *timerHandle) Cancel() {
	h.once.Do(func() { h.timer.Stop() })
}

func (s *TimerScheduler) RequestFrame(fn func(now time.Time)) FrameHandle {
	h := &timerHandle{}
	h.timer = time.AfterFunc(s.interval, func() { fn(time.Now()) })
	return h
}

// ManualScheduler queues frames until the test advances its clock.
type ManualScheduler struct {
	mu       sync.Mutex
	now      time.Time
	interval time.Duration
	seq      int
	pending  []*manualFrame
}

type manualFrame struct {
	seq       int
	due       time.Time
	fn        func(time.Time)
	cancelled bool
	owner     *ManualScheduler
}

func (f *manualFrame) Cancel() {
	f.owner.mu.Lock()
	f.cancelled = true
	f.owner.mu.Unlock()
}

func NewManualScheduler(start time.Time, interval time.Duration) *ManualScheduler {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &ManualScheduler{now: start, interval: interval}
}

func (s *ManualScheduler) RequestFrame(fn func(now time.Time)) FrameHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	f := &manualFrame{seq: s.seq, due: s.now.Add(s.interval), fn: fn, owner: s}
	s.pending = append(s.pending, f)
	return f
}

// Now returns the scheduler clock.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of frames waiting to fire.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, f := range s.pending {
		if !f.cancelled {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d and fires every frame that falls due,
// in due order.  Frames requested by a callback are due one interval after
// the time it fired and fire in the same call when still inside the window.
// It returns the number of callbacks run.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	fired := 0
	for {
		s.mu.Lock()
		var next *manualFrame
		live := s.pending[:0]
		for _, f := range s.pending {
			if !f.cancelled {
				live = append(live, f)
			}
		}
		s.pending = live
		sort.SliceStable(s.pending, func(i, j int) bool {
			if s.pending[i].due.Equal(s.pending[j].due) {
				return s.pending[i].seq < s.pending[j].seq
			}
			return s.pending[i].due.Before(s.pending[j].due)
		})
		if len(s.pending) > 0 && !s.pending[0].due.After(target) {
			next = s.pending[0]
			s.pending = s.pending[1:]
			s.now = next.due
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return fired
		}
		s.mu.Unlock()

		next.fn(next.due)
		fired++
	}
}

// Step advances by exactly one frame interval.
func (s *ManualScheduler) Step() int {
	return s.Advance(s.interval)
}

//Personal.AI order the ending
