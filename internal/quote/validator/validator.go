// Package validator checks a single answer against its question's constraints.
package validator

import (
	"fmt"
	"math"
	"strconv"

	"property-quote/internal/quote/answers"
	"property-quote/internal/quote/catalog"
)

// Kind names the rule that failed.
type Kind string

const (
	KindNone          Kind = ""
	KindRequired      Kind = "required"
	KindNumericRange  Kind = "numeric_range"
	KindInvalidNumber Kind = "invalid_number"
	KindInvalidOption Kind = "invalid_option"
)

// Result of validating one answer.
type Result struct {
	OK      bool   `json:"ok"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

// Failure ties a failed Result to its question.
type Failure struct {
	QuestionID string `json:"questionId"`
	Result
}

var pass = Result{OK: true}

func fail(kind Kind, format string, args ...interface{}) Result {
	return Result{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validate checks answer (nil when unanswered) against q.
func Validate(q catalog.Question, answer *answers.Answer) Result {
	if answer == nil || answer.Value.IsEmpty() {
		if q.Rule.Required {
			return fail(KindRequired, "%s is required", describe(q))
		}
		return pass
	}

	v := answer.Value
	switch q.Type {
	case catalog.TypeNumber:
		n, ok := v.Float()
		if !ok || math.IsInf(n, 0) {
			return fail(KindInvalidNumber, "Enter a valid number")
		}
		if q.Rule.Min != nil && n < *q.Rule.Min {
			return fail(KindNumericRange, "Value must be at least %s", format(*q.Rule.Min))
		}
		if q.Rule.Max != nil && n > *q.Rule.Max {
			return fail(KindNumericRange, "Value must be at most %s", format(*q.Rule.Max))
		}

	case catalog.TypeSingle:
		if v.Kind() == answers.KindList {
			return fail(KindInvalidOption, "Select a single option")
		}
		if _, ok := q.Option(v.Str()); !ok {
			return fail(KindInvalidOption, "%q is not a valid option", v.Str())
		}

	case catalog.TypeMultiple:
		for _, item := range v.Items() {
			if _, ok := q.Option(item); !ok {
				return fail(KindInvalidOption, "%q is not a valid option", item)
			}
		}
	}
	return pass
}

// ValidateSet validates every question in seq against set and returns the failures in order.
func ValidateSet(seq []catalog.Question, set answers.Set) []Failure {
	var failures []Failure
	for _, q := range seq {
		var ans *answers.Answer
		if a, ok := set.Get(q.ID); ok {
			ans = &a
		}
		if r := Validate(q, ans); !r.OK {
			failures = append(failures, Failure{QuestionID: q.ID, Result: r})
		}
	}
	return failures
}

func describe(q catalog.Question) string {
	if q.Type == catalog.TypeMultiple {
		return "At least one selection"
	}
	return "An answer"
}

func format(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
