// internal/workers/quote/price-quote/models.go
package pricequote

import (
	"property-quote/internal/quote/answers"
	"property-quote/internal/quote/rating"
	"property-quote/internal/quote/validator"
)

type Input struct {
	QuoteRef string           `json:"quoteRef"`
	Answers  []answers.Answer `json:"answers"`
}

type Output struct {
	QuoteRef     string              `json:"quoteRef,omitempty"`
	Category     string              `json:"category"`
	Premium      float64             `json:"premium"`
	FloorApplied bool                `json:"floorApplied"`
	Complete     bool                `json:"complete"`
	Missing      []validator.Failure `json:"missing,omitempty"`
	Ignored      []string            `json:"ignoredAnswers,omitempty"`
	Breakdown    rating.Breakdown    `json:"premiumBreakdown"`
}
