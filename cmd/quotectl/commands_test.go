package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-quote/internal/quote/rating"
	"property-quote/internal/quote/validator"
)

const officeAnswers = `[
	{"questionId": "propertyType", "value": "office"},
	{"questionId": "floors", "value": 3},
	{"questionId": "plots", "value": 1},
	{"questionId": "buildingAge", "value": "new"},
	{"questionId": "wallMaterial", "value": "brick"},
	{"questionId": "fireSafety", "value": ["extinguisher", "alarm"]},
	{"questionId": "security", "value": ["gate", "guards"]},
	{"questionId": "declaredValue", "value": 5000000},
	{"questionId": "paymentFrequency", "value": "annual"}
]`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeAnswers(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "answers.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRate_JSON(t *testing.T) {
	out, err := run(t, "", "rate", "--json", "--answers", writeAnswers(t, officeAnswers))
	require.NoError(t, err)

	var b rating.Breakdown
	require.NoError(t, json.Unmarshal([]byte(out), &b))
	assert.Equal(t, "SingleOccOffice", string(b.Category))
	assert.Equal(t, 29250.0, b.Total)
}

func TestRate_TableFromStdin(t *testing.T) {
	out, err := run(t, officeAnswers, "rate", "-a", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "SingleOccOffice")
	assert.Contains(t, out, "29250.00")
}

func TestRate_EmptyAnswersHitsFloor(t *testing.T) {
	out, err := run(t, "", "rate")
	require.NoError(t, err)
	assert.Contains(t, out, "minimum premium applied")
	assert.Contains(t, out, "15000.00")
}

func TestQuestions(t *testing.T) {
	tests := []struct {
		name    string
		answers string
		want    []string
	}{
		{name: "no answers", answers: `[]`, want: []string{"propertyType", "declaredValue"}},
		{name: "office", answers: officeAnswers, want: []string{"propertyType", "floors"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.answers, "questions", "-a", "-")
			require.NoError(t, err)
			for _, id := range tt.want {
				assert.Contains(t, out, id)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("incomplete answers fail", func(t *testing.T) {
		out, err := run(t, officeAnswers, "validate", "--json", "-a", "-")
		require.Error(t, err)

		var failures []validator.Failure
		require.NoError(t, json.Unmarshal([]byte(out), &failures))
		assert.NotEmpty(t, failures)
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := run(t, `{"questionId":"x"}`, "validate", "-a", "-")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse answers")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, "", "validate", "-a", filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read answers")
	})
}
