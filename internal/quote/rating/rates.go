package rating

import (
	"property-quote/internal/quote/catalog"
)

const (
	// MinimumPremium is the floor applied to every quote (naira).
	MinimumPremium = 15000.0

	riskUnitRate          = 2000.0
	declaredValueUnitRate = 2000.0 // per million naira declared
	declaredValueUnit     = 1000000.0
)

type riskFactor struct {
	questionID string
	units      map[string]int
}

var riskFactors = []riskFactor{
	{catalog.BuildingAge, map[string]int{"old": 3, "mature": 1}},
	{catalog.WallMaterial, map[string]int{"wood": 2, "mud": 3}},
	{catalog.BuildingCondition, map[string]int{"poor": 2}},
	{catalog.WaterProximity, map[string]int{"sea": 4, "river": 4, "reservoir": 4}},
	{catalog.NearbyRisk, map[string]int{"petrol": 2, "industrial": 3}},
}

// pastLossRisk applies to any past loss other than "none".
const pastLossRisk = 3

type rider struct {
	name  string
	label string
	fee   float64
}

// riders are evaluated in this order.
var riders = []rider{
	{"flood", "Flood rider", 5000},
	{"burglary", "Burglary rider", 3000},
	{"fire", "Fire rider", 4000},
	{"liability", "Public liability rider", 6000},
	{"materials", "Building materials rider", 2500},
}

var frequencyMultipliers = map[string]float64{
	"monthly":   1.15,
	"quarterly": 1.08,
	"biannual":  1.03,
	"annual":    1.00,
}
