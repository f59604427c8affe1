package confirm

import (
	"sort"
	"sync"
	"time"
)

// Timer is a scheduled callback that can be released. Stop is idempotent
// and guarantees the callback is not started afterwards.
type Timer interface {
	Stop()
}

// Scheduler runs callbacks after a delay or periodically
type Scheduler interface {
	After(d time.Duration, fn func()) Timer
	Every(d time.Duration, fn func()) Timer
}

// ClockScheduler schedules on the wall clock
type ClockScheduler struct{}

type afterTimer struct {
	timer *time.Timer
}

func (t afterTimer) Stop() {
	t.timer.Stop()
}

type tickerTimer struct {
	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

func (t *tickerTimer) run(fn func()) {
	for {
		select {
		case <-t.stop:
			return
		case <-t.ticker.C:
			select {
			case <-t.stop:
				return
			default:
			}
			fn()
		}
	}
}

func (t *tickerTimer) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.stop)
	})
}

// After runs fn once on its own goroutine after d
func (ClockScheduler) After(d time.Duration, fn func()) Timer {
	return afterTimer{timer: time.AfterFunc(d, fn)}
}

// stoppedTimer is returned for periods that can never fire
type stoppedTimer struct{}

func (stoppedTimer) Stop() {}

// Every runs fn every d on a dedicated goroutine until stopped. A
// non-positive d schedules nothing.
func (ClockScheduler) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		return stoppedTimer{}
	}
	t := &tickerTimer{
		ticker: time.NewTicker(d),
		stop:   make(chan struct{}),
	}
	go t.run(fn)
	return t
}

// ManualScheduler is a Scheduler driven by Advance. Callbacks run on the
// goroutine calling Advance, which makes timer-driven transitions
// deterministic in tests.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	owner   *ManualScheduler
	due     time.Duration
	every   time.Duration
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	t.stopped = true
}

// NewManualScheduler returns a scheduler whose clock starts at zero
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) add(d, every time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{owner: s, due: s.now + d, every: every, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// After implements Scheduler
func (s *ManualScheduler) After(d time.Duration, fn func()) Timer {
	return s.add(d, 0, fn)
}

// Every implements Scheduler
func (s *ManualScheduler) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		return stoppedTimer{}
	}
	return s.add(d, d, fn)
}

// Advance moves the clock forward, firing due callbacks in time order
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.nextDue(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.due
		if next.every > 0 {
			next.due += next.every
		} else {
			next.stopped = true
		}
		fn := next.fn
		s.mu.Unlock()

		fn()
	}
}

func (s *ManualScheduler) nextDue(target time.Duration) *manualTimer {
	var pending []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && t.due <= target {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].due < pending[j].due })
	return pending[0]
}

// Active reports how many timers can still fire
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}
