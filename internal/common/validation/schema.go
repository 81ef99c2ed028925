package validation

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	// CreateQuote validates the create-quote request sent to the backend.
	CreateQuote = MustLoad("create_quote.json")
	// PriceQuoteInput validates the variables of a price-quote job.
	PriceQuoteInput = MustLoad("price_quote_input.json")
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error joins the individual errors; empty when valid.
func (r *ValidationResult) Error() string {
	if r == nil || r.Valid {
		return ""
	}
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// Schema is a compiled JSON schema.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// Load compiles an embedded schema by file name.
func Load(name string) (*Schema, error) {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("schema %s not found: %w", name, err)
	}
	return Compile(name, raw)
}

func MustLoad(name string) *Schema {
	s, err := Load(name)
	if err != nil {
		panic(err)
	}
	return s
}

func Compile(name string, raw []byte) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: compiled}, nil
}

func (s *Schema) Name() string { return s.name }

// Validate checks a Go value (struct, map) against the schema.
func (s *Schema) Validate(doc interface{}) *ValidationResult {
	return s.run(gojsonschema.NewGoLoader(doc))
}

// ValidateJSON checks raw JSON against the schema.
func (s *Schema) ValidateJSON(raw []byte) *ValidationResult {
	return s.run(gojsonschema.NewBytesLoader(raw))
}

func (s *Schema) run(loader gojsonschema.JSONLoader) *ValidationResult {
	result, err := s.schema.Validate(loader)
	if err != nil {
		return &ValidationResult{
			Errors: []ValidationError{{Field: "(root)", Message: err.Error(), Code: "INVALID_DOCUMENT"}},
		}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}
