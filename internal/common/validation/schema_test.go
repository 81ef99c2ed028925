package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuote() map[string]interface{} {
	return map[string]interface{}{
		"address":           "12 Marina Road",
		"state":             "Lagos",
		"lga":               "Lagos Island",
		"propertyType":      "Office",
		"year":              2015,
		"buildingMaterials": "Brick / block walls, Aluminium roof",
		"occupancyStatus":   "Office use",
		"paymentFrequency":  "annual",
		"policyTierId":      "standard",
		"propertyValue":     5000000,
		"concerns":          []string{"flood"},
		"extraCoverage": map[string]interface{}{
			"lossOfRent":       false,
			"contentInsurance": true,
			"publicLiability":  false,
			"accidentalDamage": false,
		},
	}
}

func TestCreateQuote_Valid(t *testing.T) {
	result := CreateQuote.Validate(validQuote())
	assert.True(t, result.Valid, result.Error())
	assert.Empty(t, result.Error())
}

func TestCreateQuote_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]interface{})
		field  string
	}{
		{"missing address", func(m map[string]interface{}) { delete(m, "address") }, "(root)"},
		{"year out of range", func(m map[string]interface{}) { m["year"] = 1800 }, "year"},
		{"bad frequency", func(m map[string]interface{}) { m["paymentFrequency"] = "weekly" }, "paymentFrequency"},
		{"negative value", func(m map[string]interface{}) { m["propertyValue"] = -1 }, "propertyValue"},
		{"unknown field", func(m map[string]interface{}) { m["discount"] = 10 }, "(root)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validQuote()
			tt.mutate(doc)

			result := CreateQuote.Validate(doc)
			require.False(t, result.Valid)
			require.NotEmpty(t, result.Errors)
			assert.Equal(t, tt.field, result.Errors[0].Field)
			assert.NotEmpty(t, result.Error())
		})
	}
}

func TestPriceQuoteInput(t *testing.T) {
	ok := PriceQuoteInput.ValidateJSON([]byte(`{"answers":[{"questionId":"floors","value":3},{"questionId":"security","value":["gate"]}]}`))
	assert.True(t, ok.Valid, ok.Error())

	bad := PriceQuoteInput.ValidateJSON([]byte(`{"answers":[{"questionId":"floors","value":{"n":3}}]}`))
	assert.False(t, bad.Valid)

	broken := PriceQuoteInput.ValidateJSON([]byte(`{not json`))
	assert.False(t, broken.Valid)
	assert.Equal(t, "INVALID_DOCUMENT", broken.Errors[0].Code)
}

func TestLoad_Unknown(t *testing.T) {
	_, err := Load("missing.json")
	assert.Error(t, err)
}
