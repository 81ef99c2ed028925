package submission

import (
	"math"
	"strings"

	"property-quote/internal/quote/answers"
	"property-quote/internal/quote/catalog"
)

// ExtraCoverage flags sent with the create-quote request.
type ExtraCoverage struct {
	LossOfRent       bool `json:"lossOfRent"`
	ContentInsurance bool `json:"contentInsurance"`
	PublicLiability  bool `json:"publicLiability"`
	AccidentalDamage bool `json:"accidentalDamage"`
}

// Payload is the create-quote request.
type Payload struct {
	Address           string        `json:"address"`
	State             string        `json:"state"`
	LGA               string        `json:"lga"`
	PropertyType      string        `json:"propertyType"`
	Year              int           `json:"year"`
	BuildingMaterials string        `json:"buildingMaterials"`
	OccupancyStatus   string        `json:"occupancyStatus"`
	PaymentFrequency  string        `json:"paymentFrequency"`
	PolicyTierID      string        `json:"policyTierId"`
	PropertyValue     float64       `json:"propertyValue"`
	Premium           float64       `json:"premium,omitempty"`
	Concerns          []string      `json:"concerns"`
	ExtraCoverage     ExtraCoverage `json:"extraCoverage"`
}

// concerns reported to the backend for each rider.
var riderConcerns = []struct {
	rider   string
	concern string
}{
	{"flood", "flood"},
	{"burglary", "burglary"},
	{"fire", "fire"},
	{"liability", "public-liability"},
	{"materials", "building-materials"},
}

// BuildPayload projects the answer set onto the create-quote request.
func BuildPayload(c *catalog.Catalog, set answers.Set, premium float64) Payload {
	frequency := set.Str(catalog.PaymentFrequency)
	if frequency == "" {
		frequency = "annual"
	}

	year := 0
	if y, ok := set.Float(catalog.YearBuilt); ok && !math.IsInf(y, 0) {
		year = int(y)
	}
	value := 0.0
	if v, ok := set.Float(catalog.DeclaredValue); ok {
		value = v
	}

	return Payload{
		Address:           strings.TrimSpace(set.Str(catalog.Address)),
		State:             set.Str(catalog.State),
		LGA:               strings.TrimSpace(set.Str(catalog.LGA)),
		PropertyType:      PropertyTypeLabel(c, set),
		Year:              year,
		BuildingMaterials: BuildingMaterials(c, set),
		OccupancyStatus:   OccupancyLabel(c, set),
		PaymentFrequency:  frequency,
		PolicyTierID:      set.Str(catalog.PolicyTier),
		PropertyValue:     value,
		Premium:           premium,
		Concerns:          Concerns(set),
		ExtraCoverage:     Coverage(set),
	}
}

func PropertyTypeLabel(c *catalog.Catalog, set answers.Set) string {
	return label(c, catalog.PropertyType, set)
}

func OccupancyLabel(c *catalog.Catalog, set answers.Set) string {
	return label(c, catalog.Occupancy, set)
}

// BuildingMaterials describes wall and roof, e.g. "Brick / block walls, Aluminium roof".
func BuildingMaterials(c *catalog.Catalog, set answers.Set) string {
	var parts []string
	if wall := label(c, catalog.WallMaterial, set); wall != "" {
		parts = append(parts, wall+" walls")
	}
	if roof := label(c, catalog.RoofMaterial, set); roof != "" {
		parts = append(parts, roof+" roof")
	}
	return strings.Join(parts, ", ")
}

// Concerns maps the selected riders to backend concern codes, in rider order.
func Concerns(set answers.Set) []string {
	out := []string{}
	for _, rc := range riderConcerns {
		if set.Contains(catalog.Riders, rc.rider) {
			out = append(out, rc.concern)
		}
	}
	return out
}

// Coverage reads the extraCoverage selections. The liability rider also implies public
// liability cover.
func Coverage(set answers.Set) ExtraCoverage {
	v := set.Value(catalog.ExtraCoverage)
	return ExtraCoverage{
		LossOfRent:       v.Contains("lossOfRent"),
		ContentInsurance: v.Contains("contentInsurance"),
		PublicLiability:  v.Contains("publicLiability") || set.Contains(catalog.Riders, "liability"),
		AccidentalDamage: v.Contains("accidentalDamage"),
	}
}

func label(c *catalog.Catalog, questionID string, set answers.Set) string {
	value := set.Str(questionID)
	if value == "" {
		return ""
	}
	q, ok := c.Question(questionID)
	if !ok {
		return value
	}
	return q.OptionLabel(value)
}
