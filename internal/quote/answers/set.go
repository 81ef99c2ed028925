// Package answers holds the answer store: one Answer per question id, kept in the order the
// questions were first answered. A Set is an immutable value; changes go through Reduce.
package answers

import (
	"encoding/json"
)

// Answer is the response to a single question.
type Answer struct {
	QuestionID string `json:"questionId"`
	Value      Value  `json:"value"`
	Label      string `json:"label,omitempty"`
}

// Set is an ordered mapping questionId -> Answer.
type Set struct {
	order []string
	byID  map[string]Answer
}

// NewSet builds a Set; later answers for the same id overwrite earlier ones in place.
func NewSet(list ...Answer) Set {
	s := Set{}
	for _, a := range list {
		s = s.with(a)
	}
	return s
}

func (s Set) Len() int { return len(s.order) }

func (s Set) Get(id string) (Answer, bool) {
	a, ok := s.byID[id]
	return a, ok
}

func (s Set) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Value returns the stored value, or the zero Value when the question is unanswered.
func (s Set) Value(id string) Value {
	return s.byID[id].Value
}

// Str is shorthand for Value(id).Str().
func (s Set) Str(id string) string {
	return s.Value(id).Str()
}

func (s Set) Float(id string) (float64, bool) {
	return s.Value(id).Float()
}

func (s Set) Contains(id, item string) bool {
	return s.Value(id).Contains(item)
}

// IDs returns question ids in answer order.
func (s Set) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Answers returns the answers in answer order.
func (s Set) Answers() []Answer {
	out := make([]Answer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Equal compares ids, order and values.
func (s Set) Equal(o Set) bool {
	if len(s.order) != len(o.order) {
		return false
	}
	for i, id := range s.order {
		if o.order[i] != id {
			return false
		}
		a, b := s.byID[id], o.byID[id]
		if a.Label != b.Label || !a.Value.Equal(b.Value) {
			return false
		}
	}
	return true
}

func (s Set) clone() Set {
	c := Set{
		order: make([]string, len(s.order), len(s.order)+1),
		byID:  make(map[string]Answer, len(s.byID)+1),
	}
	copy(c.order, s.order)
	for k, v := range s.byID {
		c.byID[k] = v
	}
	return c
}

func (s Set) with(a Answer) Set {
	c := s.clone()
	if _, exists := c.byID[a.QuestionID]; !exists {
		c.order = append(c.order, a.QuestionID)
	}
	c.byID[a.QuestionID] = a
	return c
}

func (s Set) without(id string) Set {
	if !s.Has(id) {
		return s
	}
	return s.filter(func(other string) bool { return other != id })
}

func (s Set) filter(keep func(id string) bool) Set {
	c := Set{byID: make(map[string]Answer, len(s.byID))}
	for _, id := range s.order {
		if keep(id) {
			c.order = append(c.order, id)
			c.byID[id] = s.byID[id]
		}
	}
	return c
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Answers())
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var list []Answer
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = NewSet(list...)
	return nil
}
