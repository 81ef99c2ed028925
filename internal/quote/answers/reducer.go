package answers

// Action is a pure state transition over a Set.
type Action interface {
	Apply(s Set) Set
}

// SetAnswer creates the answer or overwrites it in place.
type SetAnswer struct {
	Answer Answer
}

func (a SetAnswer) Apply(s Set) Set {
	if a.Answer.QuestionID == "" {
		return s
	}
	return s.with(a.Answer)
}

// ClearAnswer removes a single answer.
type ClearAnswer struct {
	QuestionID string
}

func (a ClearAnswer) Apply(s Set) Set {
	return s.without(a.QuestionID)
}

// Retain drops every answer whose question id is not listed. Used to purge answers whose
// questions left the active path.
type Retain struct {
	IDs []string
}

func (a Retain) Apply(s Set) Set {
	keep := make(map[string]struct{}, len(a.IDs))
	for _, id := range a.IDs {
		keep[id] = struct{}{}
	}
	return s.filter(func(id string) bool {
		_, ok := keep[id]
		return ok
	})
}

// Reset empties the set.
type Reset struct{}

func (Reset) Apply(Set) Set { return Set{} }

// Reduce applies actions in order and returns the resulting Set. The input is never modified.
func Reduce(s Set, actions ...Action) Set {
	for _, action := range actions {
		s = action.Apply(s)
	}
	return s
}
