// Package scheduler throttles premium recalculation. At most one computation runs at a time and
// at most one is accepted per window; requests that arrive while busy or inside the window are
// dropped rather than queued, so a stale result can never overwrite a newer one.
package scheduler

import (
	"sync"
	"time"

	"property-quote/internal/common/metrics"
	"property-quote/internal/quote/answers"
	"property-quote/internal/quote/rating"
)

const (
	DefaultWindow     = 1500 * time.Millisecond
	DefaultMinAnswers = 2
)

// Outcome of a Trigger call.
type Outcome string

const (
	Accepted         Outcome = "accepted"
	DroppedBusy      Outcome = "dropped_busy"
	DroppedThrottled Outcome = "dropped_throttled"
	DroppedStale     Outcome = "dropped_stale"
	BelowThreshold   Outcome = "below_threshold"
)

// ComputeFunc produces a breakdown for an answer set snapshot.
type ComputeFunc func(answers.Set) (rating.Breakdown, error)

type Option func(*Scheduler)

// WithWindow sets the minimum spacing between accepted runs.
func WithWindow(d time.Duration) Option {
	return func(s *Scheduler) { s.window = d }
}

// WithMinAnswers sets the threshold; a run needs strictly more answers than n.
func WithMinAnswers(n int) Option {
	return func(s *Scheduler) { s.minAnswers = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// Scheduler owns the current breakdown. Idle -> Calculating -> Idle.
type Scheduler struct {
	compute    ComputeFunc
	window     time.Duration
	minAnswers int
	now        func() time.Time

	mu           sync.Mutex
	busy         bool
	hasRun       bool
	seen         uint64
	lastAccepted time.Time
	current      *rating.Breakdown
	lastErr      error
}

func New(compute ComputeFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		compute:    compute,
		window:     DefaultWindow,
		minAnswers: DefaultMinAnswers,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Trigger requests a recalculation for set. When accepted, the computation runs on the calling
// goroutine; concurrent callers observe Calculating() and get DroppedBusy. On error the previous
// breakdown is kept and the error is exposed through LastError.
func (s *Scheduler) Trigger(set answers.Set) Outcome {
	return s.run(set, 0, false)
}

// TriggerVersion is Trigger for callers that number their snapshots. A snapshot older than one
// already seen is dropped as DroppedStale, even once the window has passed.
func (s *Scheduler) TriggerVersion(set answers.Set, version uint64) Outcome {
	return s.run(set, version, true)
}

func (s *Scheduler) run(set answers.Set, version uint64, versioned bool) Outcome {
	outcome := s.admit(set, version, versioned)
	metrics.RatingTriggers.WithLabelValues(string(outcome)).Inc()
	if outcome != Accepted {
		return outcome
	}
	defer s.release()

	start := time.Now()
	breakdown, err := s.compute(set)
	metrics.RatingDuration.Observe(time.Since(start).Seconds())

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		metrics.RatingRuns.WithLabelValues("error").Inc()
		return outcome
	}
	s.current = &breakdown
	s.lastErr = nil
	metrics.RatingRuns.WithLabelValues("ok").Inc()
	return outcome
}

func (s *Scheduler) admit(set answers.Set, version uint64, versioned bool) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if versioned {
		if version < s.seen {
			return DroppedStale
		}
		s.seen = version
	}
	if set.Len() <= s.minAnswers {
		return BelowThreshold
	}
	if s.busy {
		return DroppedBusy
	}
	now := s.now()
	if s.hasRun && now.Sub(s.lastAccepted) < s.window {
		return DroppedThrottled
	}
	s.busy = true
	s.hasRun = true
	s.lastAccepted = now
	return Accepted
}

// release clears the busy flag, also when compute panics.
func (s *Scheduler) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}

// Calculating reports whether a computation is in flight.
func (s *Scheduler) Calculating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Current returns a copy of the most recent accepted breakdown.
func (s *Scheduler) Current() (rating.Breakdown, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return rating.Breakdown{}, false
	}
	return s.current.Clone(), true
}

// LastError returns the error of the most recent accepted run, or nil if it succeeded.
func (s *Scheduler) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
