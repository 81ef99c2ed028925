package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-quote/internal/quote/answers"
	"property-quote/internal/quote/catalog"
)

func answer(id string, v answers.Value) *answers.Answer {
	return &answers.Answer{QuestionID: id, Value: v}
}

func TestValidate(t *testing.T) {
	c := catalog.New()
	q := func(id string) catalog.Question {
		question, ok := c.Question(id)
		require.True(t, ok, id)
		return question
	}

	tests := []struct {
		name     string
		question catalog.Question
		answer   *answers.Answer
		wantKind Kind
	}{
		{"required missing", q(catalog.PropertyType), nil, KindRequired},
		{"blank text", q(catalog.Address), answer(catalog.Address, answers.String("   ")), KindRequired},
		{"empty multiple", q(catalog.Security), answer(catalog.Security, answers.List()), KindRequired},
		{"optional multiple empty", q(catalog.Riders), answer(catalog.Riders, answers.List()), KindNone},
		{"optional missing", q(catalog.ExtraCoverage), nil, KindNone},
		{"below min", q(catalog.YearBuilt), answer(catalog.YearBuilt, answers.Number(1899)), KindNumericRange},
		{"above max", q(catalog.SecurityGuardCount), answer(catalog.SecurityGuardCount, answers.Number(101)), KindNumericRange},
		{"at max", q(catalog.SecurityGuardCount), answer(catalog.SecurityGuardCount, answers.Number(100)), KindNone},
		{"zero floors", q(catalog.Floors), answer(catalog.Floors, answers.Number(0)), KindNumericRange},
		{"numeric string", q(catalog.Floors), answer(catalog.Floors, answers.String("3")), KindNone},
		{"not a number", q(catalog.DeclaredValue), answer(catalog.DeclaredValue, answers.String("lots")), KindInvalidNumber},
		{"negative declared value", q(catalog.DeclaredValue), answer(catalog.DeclaredValue, answers.Number(-1)), KindNumericRange},
		{"unknown option", q(catalog.WallMaterial), answer(catalog.WallMaterial, answers.String("glass")), KindInvalidOption},
		{"list for single", q(catalog.WallMaterial), answer(catalog.WallMaterial, answers.List("brick")), KindInvalidOption},
		{"unknown multiple item", q(catalog.FireSafety), answer(catalog.FireSafety, answers.List("alarm", "bucket")), KindInvalidOption},
		{"valid single", q(catalog.WallMaterial), answer(catalog.WallMaterial, answers.String("brick")), KindNone},
		{"valid multiple", q(catalog.Security), answer(catalog.Security, answers.List("gate", "cctv")), KindNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(tt.question, tt.answer)
			assert.Equal(t, tt.wantKind, r.Kind)
			assert.Equal(t, tt.wantKind == KindNone, r.OK)
			if !r.OK {
				assert.NotEmpty(t, r.Message)
			}
		})
	}
}

func TestValidate_RangeMessageNamesBound(t *testing.T) {
	q, _ := catalog.New().Question(catalog.YearBuilt)
	r := Validate(q, answer(catalog.YearBuilt, answers.Number(2200)))
	assert.Equal(t, "Value must be at most 2100", r.Message)
}

func TestValidateSet(t *testing.T) {
	c := catalog.New()
	floors, _ := c.Question(catalog.Floors)
	plots, _ := c.Question(catalog.Plots)
	seq := []catalog.Question{floors, plots}

	s := answers.NewSet(answers.Answer{QuestionID: catalog.Floors, Value: answers.Number(3)})
	failures := ValidateSet(seq, s)

	require.Len(t, failures, 1)
	assert.Equal(t, catalog.Plots, failures[0].QuestionID)
	assert.Equal(t, KindRequired, failures[0].Kind)
}
