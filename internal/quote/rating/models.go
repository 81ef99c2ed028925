package rating

import (
	"property-quote/internal/quote/category"
)

// AdjustmentKind distinguishes percentage adjustments from flat fees.
type AdjustmentKind string

const (
	KindPercentage AdjustmentKind = "percentage"
	KindFixed      AdjustmentKind = "fixed"
)

// Adjustment is a named discount, surcharge or rider fee.
type Adjustment struct {
	Name   string         `json:"name"`
	Label  string         `json:"label"`
	Kind   AdjustmentKind `json:"kind"`
	Rate   float64        `json:"rate,omitempty"`
	Amount float64        `json:"amount"`
}

// Breakdown is the full, itemized result of one rating run. Treat it as immutable; hand out
// copies with Clone.
type Breakdown struct {
	Category  category.Category  `json:"category"`
	TableBase float64            `json:"tableBase"`
	Items     map[string]float64 `json:"breakdown"`

	RiskUnits          int     `json:"riskUnits"`
	RiskUnitsTotal     float64 `json:"riskUnitsTotal"`
	DeclaredValueUnits float64 `json:"declaredValueUnits"`
	Subtotal           float64 `json:"subtotal"`

	Discounts      []Adjustment `json:"discounts"`
	DiscountTotal  float64      `json:"discountTotal"`
	Surcharges     []Adjustment `json:"surcharges"`
	SurchargeTotal float64      `json:"surchargeTotal"`

	Riders    []Adjustment `json:"riders"`
	RiderCost float64      `json:"riderCost"`

	Frequency           string  `json:"frequency"`
	FrequencyMultiplier float64 `json:"frequencyMultiplier"`
	FloorApplied        bool    `json:"floorApplied"`
	Total               float64 `json:"total"`
}

// Clone returns a deep copy.
func (b Breakdown) Clone() Breakdown {
	c := b
	if b.Items != nil {
		c.Items = make(map[string]float64, len(b.Items))
		for k, v := range b.Items {
			c.Items[k] = v
		}
	}
	c.Discounts = cloneAdjustments(b.Discounts)
	c.Surcharges = cloneAdjustments(b.Surcharges)
	c.Riders = cloneAdjustments(b.Riders)
	return c
}

func cloneAdjustments(in []Adjustment) []Adjustment {
	if in == nil {
		return nil
	}
	out := make([]Adjustment, len(in))
	copy(out, in)
	return out
}
