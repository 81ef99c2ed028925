// Package session owns the answer set of one quote in progress. Every mutation goes through the
// answers reducer, regenerates the question sequence, purges answers that fell off the active
// path and triggers a throttled recalculation.
package session

import (
	"strings"
	"sync"
	"time"

	"property-quote/internal/common/errors"
	"property-quote/internal/quote/answers"
	"property-quote/internal/quote/catalog"
	"property-quote/internal/quote/generator"
	"property-quote/internal/quote/rating"
	"property-quote/internal/quote/scheduler"
	"property-quote/internal/quote/validator"
)

// Session is a single customer's questionnaire. Mutations are serialized; rating runs outside
// the session lock so readers can observe Calculating.
type Session struct {
	ID        string
	CreatedAt time.Time

	catalog   *catalog.Catalog
	scheduler *scheduler.Scheduler

	mu        sync.Mutex
	set       answers.Set
	version   uint64
	current   string
	updatedAt time.Time
}

// View is a read-only snapshot for callers.
type View struct {
	ID          string              `json:"id"`
	Current     string              `json:"currentQuestionId,omitempty"`
	Questions   []catalog.Question  `json:"questions"`
	Answers     answers.Set         `json:"answers"`
	Premium     *rating.Breakdown   `json:"premium,omitempty"`
	Calculating bool                `json:"calculating"`
	RatingError string              `json:"ratingError,omitempty"`
	Complete    bool                `json:"complete"`
	Failures    []validator.Failure `json:"failures,omitempty"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func newSession(id string, c *catalog.Catalog, sched *scheduler.Scheduler, now time.Time) *Session {
	s := &Session{
		ID:        id,
		CreatedAt: now,
		catalog:   c,
		scheduler: sched,
		updatedAt: now,
	}
	if roots := c.Roots(); len(roots) > 0 {
		s.current = roots[0].ID
	}
	return s
}

// Answer stores value for questionID. The question must be on the active path. The validation
// result is returned for display; an invalid answer is still stored and only blocks Next.
func (s *Session) Answer(questionID string, value answers.Value) (validator.Result, error) {
	s.mu.Lock()
	q, err := s.activeQuestion(questionID)
	if err != nil {
		s.mu.Unlock()
		return validator.Result{}, err
	}

	answer := answers.Answer{QuestionID: questionID, Value: value, Label: labelFor(q, value)}
	result := validator.Validate(q, &answer)
	snapshot, version := s.apply(answers.SetAnswer{Answer: answer})
	s.mu.Unlock()

	s.scheduler.TriggerVersion(snapshot, version)
	return result, nil
}

// Clear removes the answer to questionID (and anything it unlocked).
func (s *Session) Clear(questionID string) {
	s.mu.Lock()
	snapshot, version := s.apply(answers.ClearAnswer{QuestionID: questionID})
	s.mu.Unlock()

	s.scheduler.TriggerVersion(snapshot, version)
}

// Replace loads a complete answer set, e.g. when restoring a quote. Inactive answers are dropped.
func (s *Session) Replace(set answers.Set) {
	s.mu.Lock()
	actions := []answers.Action{answers.Reset{}}
	for _, a := range set.Answers() {
		actions = append(actions, answers.SetAnswer{Answer: a})
	}
	snapshot, version := s.apply(actions...)
	s.mu.Unlock()

	s.scheduler.TriggerVersion(snapshot, version)
}

// apply must be called with mu held. Every call numbers the resulting snapshot so the
// scheduler can tell an older snapshot from a newer one.
func (s *Session) apply(actions ...answers.Action) (answers.Set, uint64) {
	next := answers.Reduce(s.set, actions...)
	s.set = generator.Prune(s.catalog, next)
	s.version++
	s.updatedAt = time.Now().UTC()

	if !contains(generator.ActiveIDs(s.catalog, s.set), s.current) {
		s.current = s.firstUnanswered()
	}
	return s.set, s.version
}

// Next validates the current question and moves to the following active question. It returns
// the new current question id, or "" once the end of the sequence is reached.
func (s *Session) Next() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := generator.Generate(s.catalog, s.set)
	idx := indexOf(seq, s.current)
	if idx < 0 {
		s.current = s.firstUnanswered()
		return s.current, nil
	}

	var ans *answers.Answer
	if a, ok := s.set.Get(s.current); ok {
		ans = &a
	}
	if r := validator.Validate(seq[idx], ans); !r.OK {
		return s.current, errors.NewValidationFailedError(s.current, string(r.Kind), r.Message)
	}

	if idx+1 < len(seq) {
		s.current = seq[idx+1].ID
	} else {
		s.current = ""
	}
	return s.current, nil
}

// Back moves to the previous active question; it never fails.
func (s *Session) Back() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := generator.Generate(s.catalog, s.set)
	switch idx := indexOf(seq, s.current); {
	case idx > 0:
		s.current = seq[idx-1].ID
	case idx < 0 && len(seq) > 0:
		s.current = seq[len(seq)-1].ID
	}
	return s.current
}

// Answers returns the current answer set.
func (s *Session) Answers() answers.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

// Questions returns the active question sequence.
func (s *Session) Questions() []catalog.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return generator.Generate(s.catalog, s.set)
}

// Premium returns the latest accepted breakdown. After a failed run this is still the previous
// breakdown; see RatingError.
func (s *Session) Premium() (rating.Breakdown, error) {
	b, ok := s.scheduler.Current()
	if !ok {
		return rating.Breakdown{}, errors.NewNoPremiumError()
	}
	return b, nil
}

// Calculating reports whether a recalculation is in flight.
func (s *Session) Calculating() bool {
	return s.scheduler.Calculating()
}

// RatingError is the error of the most recent accepted run, if it failed.
func (s *Session) RatingError() error {
	return s.scheduler.LastError()
}

// Recalculate asks the scheduler for a run over the current answers.
func (s *Session) Recalculate() scheduler.Outcome {
	s.mu.Lock()
	snapshot, version := s.set, s.version
	s.mu.Unlock()
	return s.scheduler.TriggerVersion(snapshot, version)
}

// Validate runs the validator over every active question.
func (s *Session) Validate() []validator.Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return validator.ValidateSet(generator.Generate(s.catalog, s.set), s.set)
}

func (s *Session) View() View {
	s.mu.Lock()
	seq := generator.Generate(s.catalog, s.set)
	failures := validator.ValidateSet(seq, s.set)
	v := View{
		ID:        s.ID,
		Current:   s.current,
		Questions: seq,
		Answers:   s.set,
		Complete:  len(failures) == 0,
		Failures:  failures,
		UpdatedAt: s.updatedAt,
	}
	s.mu.Unlock()

	if b, err := s.Premium(); err == nil {
		v.Premium = &b
	}
	v.Calculating = s.Calculating()
	if err := s.RatingError(); err != nil {
		v.RatingError = err.Error()
	}
	return v
}

func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

func (s *Session) activeQuestion(id string) (catalog.Question, error) {
	for _, q := range generator.Generate(s.catalog, s.set) {
		if q.ID == id {
			return q, nil
		}
	}
	if _, known := s.catalog.Question(id); known {
		return catalog.Question{}, errors.NewValidationFailedError(id, "inactive", "This question does not apply to your answers")
	}
	return catalog.Question{}, errors.NewValidationFailedError(id, "unknown", "Unknown question")
}

func (s *Session) firstUnanswered() string {
	seq := generator.Generate(s.catalog, s.set)
	for _, q := range seq {
		if !s.set.Has(q.ID) {
			return q.ID
		}
	}
	return ""
}

func labelFor(q catalog.Question, v answers.Value) string {
	switch q.Type {
	case catalog.TypeSingle:
		return q.OptionLabel(v.Str())
	case catalog.TypeMultiple:
		items := v.Items()
		labels := make([]string, len(items))
		for i, item := range items {
			labels[i] = q.OptionLabel(item)
		}
		return strings.Join(labels, ", ")
	default:
		return v.Str()
	}
}

func indexOf(seq []catalog.Question, id string) int {
	for i, q := range seq {
		if q.ID == id {
			return i
		}
	}
	return -1
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
