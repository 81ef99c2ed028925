package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-quote/internal/quote/answers"
)

func TestNew_ReferencesAreConsistent(t *testing.T) {
	c := New()
	require.NoError(t, c.Check())

	roots := c.Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, PropertyType, roots[0].ID)

	for _, q := range c.Unconditional() {
		assert.False(t, q.Conditional, q.ID)
	}
}

func TestPropertyTypeFollowUps(t *testing.T) {
	c := New()
	q, ok := c.Question(PropertyType)
	require.True(t, ok)

	tests := []struct {
		value string
		want  []string
	}{
		{"office", []string{Floors, Plots}},
		{"bungalow", []string{Plots}},
		{"hostel", []string{Rooms, Floors}},
		{"school", []string{Blocks, PupilSeats}},
		{"petrol", []string{Pumps, Plots}},
		{"mixed", []string{Wings, Floors}},
		{"castle", nil},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, q.FollowUpsFor(answers.String(tt.value)))
		})
	}
}

func TestMultipleNeverBranches(t *testing.T) {
	c := New()
	q, _ := c.Question(Security)
	assert.Nil(t, q.FollowUpsFor(answers.List("guards")))
}

func TestSecurityGuardCountPredicate(t *testing.T) {
	c := New()
	q, _ := c.Question(SecurityGuardCount)

	assert.False(t, q.IsActive(answers.Set{}))
	assert.False(t, q.IsActive(answers.NewSet(answers.Answer{QuestionID: Security, Value: answers.List("gate")})))
	assert.True(t, q.IsActive(answers.NewSet(answers.Answer{QuestionID: Security, Value: answers.List("gate", "guards")})))
}

func TestReferenceSeeding(t *testing.T) {
	c := New(
		WithStates([]ReferenceOption{{Value: "Enugu"}, {Value: "Oyo", Label: "Oyo State"}}),
		WithOccupancies([]ReferenceOption{{Value: "owner", Label: "Owner"}, {Value: "vacant", Label: "Vacant"}}),
		WithTiers([]ReferenceOption{{Value: "plus", Label: "Plus (₦75,000)"}}),
	)

	state, _ := c.Question(State)
	require.Len(t, state.Options, 2)
	assert.Equal(t, "Enugu", state.Options[0].Label)
	assert.Equal(t, "Oyo State", state.OptionLabel("Oyo"))

	occ, _ := c.Question(Occupancy)
	assert.Equal(t, "Owner", occ.OptionLabel("owner"))
	_, hasOffice := occ.Option("office")
	assert.True(t, hasOffice)
	assert.Equal(t, "vacant", occ.Options[len(occ.Options)-1].Value)

	tier, _ := c.Question(PolicyTier)
	assert.Equal(t, "Plus (₦75,000)", tier.OptionLabel("plus"))
	assert.Equal(t, "Basic", tier.OptionLabel("basic"))
}

func TestDefaultStates(t *testing.T) {
	state, _ := New().Question(State)
	var values []string
	for _, o := range state.Options {
		values = append(values, o.Value)
	}
	assert.Equal(t, DefaultStates, values)
}
