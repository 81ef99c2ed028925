package referencedata

import "github.com/shopspring/decimal"

type State struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type LGA struct {
	State string `json:"state"`
	Name  string `json:"name"`
}

// PropertyType is an occupancy status offered by the backend (owner, rental, ...).
type PropertyType struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Tier is a policy tier with its advertised base price.
type Tier struct {
	ID        string          `json:"id"`
	Label     string          `json:"label"`
	BasePrice decimal.Decimal `json:"basePrice"`
}

// Source tells callers whether a list came from the cache, the database or the static fallback.
type Source string

const (
	SourceCache    Source = "cache"
	SourceDatabase Source = "database"
	SourceFallback Source = "fallback"
)

var fallbackStates = []State{
	{Code: "LA", Name: "Lagos"},
	{Code: "FC", Name: "Abuja"},
	{Code: "KN", Name: "Kano"},
	{Code: "RI", Name: "Rivers"},
	{Code: "OG", Name: "Ogun"},
	{Code: "KD", Name: "Kaduna"},
}

var fallbackPropertyTypes = []PropertyType{
	{Code: "owner", Label: "Owner occupied"},
	{Code: "rental", Label: "Rented out"},
	{Code: "shortlet", Label: "Short let"},
	{Code: "commercial", Label: "Commercial"},
}

var fallbackTiers = []Tier{
	{ID: "basic", Label: "Basic", BasePrice: decimal.NewFromInt(25000)},
	{ID: "standard", Label: "Standard", BasePrice: decimal.NewFromInt(45000)},
	{ID: "plus", Label: "Plus", BasePrice: decimal.NewFromInt(75000)},
}
