// Package rating computes the advisory premium for an answer set. Compute is a pure function of
// (Category, answers.Set); money arithmetic is done in decimal and rounded to kobo per step.
package rating

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"property-quote/internal/quote/answers"
	"property-quote/internal/quote/catalog"
	"property-quote/internal/quote/category"
	"property-quote/internal/quote/generator"
)

// ErrInvalidInput is returned for negative, non-numeric or non-finite counts and declared
// values, and for unknown payment frequencies.
var ErrInvalidInput = errors.New("invalid rating input")

const defaultFrequency = "annual"

// Compute runs the rating steps in order: table base, risk units, declared-value units,
// subtotal, discounts and surcharges against the original subtotal, flat rider fees, payment
// frequency and the minimum premium floor.
func Compute(cat category.Category, set answers.Set) (Breakdown, error) {
	b := Breakdown{
		Category:   cat,
		Items:      make(map[string]float64),
		Discounts:  []Adjustment{},
		Surcharges: []Adjustment{},
		Riders:     []Adjustment{},
	}

	schedule := category.ScheduleFor(cat)
	tableBase := decimal.Zero
	for _, dim := range category.Dimensions {
		rate, ok := schedule[dim]
		if !ok {
			continue
		}
		n, present, err := nonNegative(set, dim.QuestionID())
		if err != nil {
			return Breakdown{}, err
		}
		if !present {
			continue
		}
		contribution := n.Mul(decimal.NewFromFloat(rate)).Round(2)
		b.Items[string(dim)] = contribution.InexactFloat64()
		tableBase = tableBase.Add(contribution)
	}

	b.RiskUnits = riskUnits(set)
	riskTotal := decimal.NewFromInt(int64(b.RiskUnits)).Mul(decimal.NewFromFloat(riskUnitRate))

	declared, _, err := nonNegative(set, catalog.DeclaredValue)
	if err != nil {
		return Breakdown{}, err
	}
	dvUnits := declared.Mul(decimal.NewFromFloat(declaredValueUnitRate)).
		Div(decimal.NewFromFloat(declaredValueUnit)).
		Round(2)

	subtotal := tableBase.Add(riskTotal).Add(dvUnits)

	b.Discounts = percentages(subtotal, discountsFor(set))
	b.Surcharges = percentages(subtotal, surchargesFor(set))
	discountTotal := sum(b.Discounts)
	surchargeTotal := sum(b.Surcharges)

	total := subtotal.Sub(discountTotal).Add(surchargeTotal)

	riderCost := decimal.Zero
	for _, r := range riders {
		if !set.Contains(catalog.Riders, r.name) {
			continue
		}
		b.Riders = append(b.Riders, Adjustment{Name: r.name, Label: r.label, Kind: KindFixed, Amount: r.fee})
		riderCost = riderCost.Add(decimal.NewFromFloat(r.fee))
	}
	total = total.Add(riderCost)

	frequency := set.Str(catalog.PaymentFrequency)
	if frequency == "" {
		frequency = defaultFrequency
	}
	multiplier, ok := frequencyMultipliers[frequency]
	if !ok {
		return Breakdown{}, fmt.Errorf("%w: unknown payment frequency %q", ErrInvalidInput, frequency)
	}
	total = total.Mul(decimal.NewFromFloat(multiplier)).Round(2)

	floor := decimal.NewFromFloat(MinimumPremium)
	if total.LessThan(floor) {
		total = floor
		b.FloorApplied = true
	}

	b.TableBase = tableBase.InexactFloat64()
	b.RiskUnitsTotal = riskTotal.InexactFloat64()
	b.DeclaredValueUnits = dvUnits.InexactFloat64()
	b.Subtotal = subtotal.InexactFloat64()
	b.DiscountTotal = discountTotal.InexactFloat64()
	b.SurchargeTotal = surchargeTotal.InexactFloat64()
	b.RiderCost = riderCost.InexactFloat64()
	b.Frequency = frequency
	b.FrequencyMultiplier = multiplier
	b.Total = total.InexactFloat64()

	return b, nil
}

// nonNegative reads a numeric answer. Unanswered (or blank) questions report present=false.
func nonNegative(set answers.Set, id string) (decimal.Decimal, bool, error) {
	v := set.Value(id)
	if v.IsEmpty() {
		return decimal.Zero, false, nil
	}
	f, ok := v.Float()
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, false, fmt.Errorf("%w: %s is not a finite number", ErrInvalidInput, id)
	}
	if f < 0 {
		return decimal.Zero, false, fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, id)
	}
	return decimal.NewFromFloat(f), true, nil
}

func riskUnits(set answers.Set) int {
	units := 0
	for _, factor := range riskFactors {
		units += factor.units[set.Str(factor.questionID)]
	}
	if loss := set.Str(catalog.PastLoss); loss != "" && loss != "none" {
		units += pastLossRisk
	}
	return units
}

type percentage struct {
	name  string
	label string
	rate  float64
}

func discountsFor(set answers.Set) []percentage {
	var out []percentage

	security := set.Value(catalog.Security)
	switch {
	case security.Contains("gate") && security.Contains("guards"):
		out = append(out, percentage{"security-gate-guards", "Gate and security guards", 0.15})
	case distinct(security.Items()) >= 2:
		out = append(out, percentage{"security-features", "Multiple security features", 0.08})
	}

	fire := set.Value(catalog.FireSafety)
	switch {
	case fire.Contains("extinguisher") && fire.Contains("alarm"):
		out = append(out, percentage{"fire-extinguisher-alarm", "Fire extinguisher and alarm", 0.12})
	case len(fire.Items()) > 0:
		out = append(out, percentage{"fire-safety", "Fire safety equipment", 0.05})
	}

	if set.Str(catalog.BuildingAge) == "new" {
		out = append(out, percentage{"new-building", "New building", 0.08})
	}
	return out
}

func surchargesFor(set answers.Set) []percentage {
	var out []percentage

	if set.Str(catalog.BuildingAge) == "old" {
		out = append(out, percentage{"old-building", "Old building", 0.25})
	}
	switch set.Str(catalog.WaterProximity) {
	case "sea", "river", "reservoir":
		out = append(out, percentage{"water-proximity", "Close to water", 0.30})
	}
	if set.Str(catalog.NearbyRisk) == "industrial" {
		out = append(out, percentage{"industrial-nearby", "Industrial site nearby", 0.20})
	}
	if use := set.Str(catalog.BusinessUse); use != "" && use != "none" {
		out = append(out, percentage{"business-use", "Business use", 0.15})
	}
	return out
}

// percentages prices each entry against the same base; nothing compounds.
func percentages(base decimal.Decimal, list []percentage) []Adjustment {
	out := make([]Adjustment, 0, len(list))
	for _, p := range list {
		amount := base.Mul(decimal.NewFromFloat(p.rate)).Round(2)
		out = append(out, Adjustment{
			Name:   p.name,
			Label:  p.label,
			Kind:   KindPercentage,
			Rate:   p.rate,
			Amount: amount.InexactFloat64(),
		})
	}
	return out
}

func sum(list []Adjustment) decimal.Decimal {
	total := decimal.Zero
	for _, a := range list {
		total = total.Add(decimal.NewFromFloat(a.Amount))
	}
	return total
}

func distinct(items []string) int {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		seen[it] = struct{}{}
	}
	return len(seen)
}

// Engine rates answer sets against a catalog. Answers no longer on the active question path
// are dropped before rating, so orphaned follow-ups never contribute.
type Engine struct {
	catalog *catalog.Catalog
}

func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// Quote prunes set, classifies it and runs Compute.
func (e *Engine) Quote(set answers.Set) (Breakdown, error) {
	pruned := generator.Prune(e.catalog, set)
	return Compute(category.FromAnswers(pruned), pruned)
}
