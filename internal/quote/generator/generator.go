// Package generator derives the active question sequence from the catalog and the current
// answers. Every call is a pure fold over the answer set; nothing is cached between calls.
package generator

import (
	"property-quote/internal/quote/answers"
	"property-quote/internal/quote/catalog"
)

// Generate returns the ordered active question sequence: the roots, then the unconditional
// questions in catalog order. The follow-ups of an answered Single question are spliced in
// directly after it (recursively), each question at most once. Questions whose activation
// predicate is false are omitted along with their follow-ups.
func Generate(c *catalog.Catalog, set answers.Set) []catalog.Question {
	g := &fold{catalog: c, set: set, seen: make(map[string]struct{})}
	for _, q := range c.Roots() {
		g.visit(q)
	}
	for _, q := range c.Unconditional() {
		g.visit(q)
	}
	return g.seq
}

type fold struct {
	catalog *catalog.Catalog
	set     answers.Set
	seen    map[string]struct{}
	seq     []catalog.Question
}

func (g *fold) visit(q catalog.Question) {
	if _, done := g.seen[q.ID]; done {
		return
	}
	g.seen[q.ID] = struct{}{}

	if !q.IsActive(g.set) {
		return
	}
	g.seq = append(g.seq, q)

	answer, ok := g.set.Get(q.ID)
	if !ok {
		return
	}
	for _, id := range q.FollowUpsFor(answer.Value) {
		if next, ok := g.catalog.Question(id); ok {
			g.visit(next)
		}
	}
}

// ActiveIDs returns the ids of Generate(c, set).
func ActiveIDs(c *catalog.Catalog, set answers.Set) []string {
	seq := Generate(c, set)
	ids := make([]string, len(seq))
	for i, q := range seq {
		ids[i] = q.ID
	}
	return ids
}

// Prune drops answers whose questions are no longer on the active path. Removing an answer can
// deactivate further questions, so it repeats until nothing changes.
func Prune(c *catalog.Catalog, set answers.Set) answers.Set {
	for {
		next := answers.Reduce(set, answers.Retain{IDs: ActiveIDs(c, set)})
		if next.Len() == set.Len() {
			return next
		}
		set = next
	}
}

// Orphans lists answered question ids that are not on the active path.
func Orphans(c *catalog.Catalog, set answers.Set) []string {
	active := make(map[string]struct{})
	for _, id := range ActiveIDs(c, set) {
		active[id] = struct{}{}
	}
	var out []string
	for _, id := range set.IDs() {
		if _, ok := active[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
