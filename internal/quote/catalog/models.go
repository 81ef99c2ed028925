// Package catalog declares the underwriting questionnaire: question definitions, options with
// follow-up ids, validation rules and activation predicates. The catalog is static data; the
// generator decides which questions are active for a given answer set.
package catalog

import (
	"property-quote/internal/quote/answers"
)

// QuestionType defines how a question is answered.
type QuestionType string

const (
	TypeSingle   QuestionType = "single"   // one option
	TypeMultiple QuestionType = "multiple" // any subset of options, never branches
	TypeNumber   QuestionType = "number"
	TypeText     QuestionType = "text"
)

// Option is a selectable answer. FollowUps lists question ids spliced in after the owning
// question when this option is chosen.
type Option struct {
	Value     string   `json:"value"`
	Label     string   `json:"label"`
	FollowUps []string `json:"followUps,omitempty"`
}

// Rule holds the validation constraints for a question.
type Rule struct {
	Required bool     `json:"required"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

// Predicate gates a question on the current answers.
type Predicate func(answers.Set) bool

// Question is one catalog entry.
type Question struct {
	ID      string       `json:"id"`
	Prompt  string       `json:"prompt"`
	Type    QuestionType `json:"type"`
	Options []Option     `json:"options,omitempty"`
	Rule    Rule         `json:"rule"`

	// Conditional questions are only reachable as a follow-up of another question's option.
	Conditional bool `json:"conditional,omitempty"`

	ActiveWhen Predicate `json:"-"`
}

// IsActive reports whether the activation predicate (if any) holds.
func (q Question) IsActive(set answers.Set) bool {
	if q.ActiveWhen == nil {
		return true
	}
	return q.ActiveWhen(set)
}

func (q Question) Option(value string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}

// OptionLabel returns the display label for value, or value itself when unknown.
func (q Question) OptionLabel(value string) string {
	if opt, ok := q.Option(value); ok {
		return opt.Label
	}
	return value
}

// FollowUpsFor returns the follow-up ids declared by the chosen option of a Single question.
func (q Question) FollowUpsFor(value answers.Value) []string {
	if q.Type != TypeSingle {
		return nil
	}
	opt, ok := q.Option(value.Str())
	if !ok {
		return nil
	}
	return opt.FollowUps
}

// HasOptions is true for Single and Multiple questions.
func (q Question) HasOptions() bool {
	return q.Type == TypeSingle || q.Type == TypeMultiple
}

func bound(v float64) *float64 {
	return &v
}
