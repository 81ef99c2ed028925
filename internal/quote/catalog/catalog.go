package catalog

import (
	"fmt"

	"property-quote/internal/quote/answers"
)

// Catalog is an immutable, ordered set of question definitions.
type Catalog struct {
	roots         []string
	unconditional []string
	order         []string
	byID          map[string]Question
}

// ReferenceOption seeds a reference-data backed option list.
type ReferenceOption struct {
	Value string
	Label string
}

// CatalogOption configures the catalog built by New.
type CatalogOption func(*builder)

type builder struct {
	states      []ReferenceOption
	occupancies []ReferenceOption
	tiers       []ReferenceOption
}

// WithStates replaces the state options.
func WithStates(states []ReferenceOption) CatalogOption {
	return func(b *builder) { b.states = states }
}

// WithOccupancies merges reference occupancy labels into the occupancy options. Unknown values
// are appended; the built-in values the classifier depends on are always kept.
func WithOccupancies(occupancies []ReferenceOption) CatalogOption {
	return func(b *builder) { b.occupancies = occupancies }
}

// WithTiers relabels (and extends) the policy tier options.
func WithTiers(tiers []ReferenceOption) CatalogOption {
	return func(b *builder) { b.tiers = tiers }
}

// DefaultStates is the static fallback used when reference data is unavailable.
var DefaultStates = []string{"Lagos", "Abuja", "Kano", "Rivers", "Ogun", "Kaduna"}

// New builds the property questionnaire.
func New(opts ...CatalogOption) *Catalog {
	b := &builder{}
	for _, apply := range opts {
		apply(b)
	}

	c := &Catalog{byID: make(map[string]Question)}

	c.addRoot(Question{
		ID:     PropertyType,
		Prompt: "What type of property is this?",
		Type:   TypeSingle,
		Rule:   Rule{Required: true},
		Options: []Option{
			{Value: "office", Label: "Office", FollowUps: []string{Floors, Plots}},
			{Value: "bungalow", Label: "Bungalow", FollowUps: []string{Plots}},
			{Value: "duplex", Label: "Duplex", FollowUps: []string{Floors, Plots}},
			{Value: "flats", Label: "Block of flats", FollowUps: []string{Floors, Wings}},
			{Value: "hostel", Label: "Hotel / hostel / guest house", FollowUps: []string{Rooms, Floors}},
			{Value: "recreation", Label: "Recreation / cinema", FollowUps: []string{CinemaSeats, Floors}},
			{Value: "school", Label: "School / training centre", FollowUps: []string{Blocks, PupilSeats}},
			{Value: "petrol", Label: "Petrol / gas station", FollowUps: []string{Pumps, Plots}},
			{Value: "hospital", Label: "Hospital / clinic", FollowUps: []string{Beds, Floors}},
			{Value: "mixed", Label: "Multi-occupancy building", FollowUps: []string{Wings, Floors}},
			{Value: "others", Label: "Others", FollowUps: []string{Floors, Plots}},
		},
	})

	c.addConditional(count(Floors, "How many floors does the building have?", 200))
	c.addConditional(count(Plots, "How many plots does the property occupy?", 50))
	c.addConditional(count(Rooms, "How many guest rooms are there?", 1000))
	c.addConditional(count(Beds, "How many beds does the facility have?", 2000))
	c.addConditional(count(Pumps, "How many fuel pumps are installed?", 50))
	c.addConditional(count(CinemaSeats, "How many cinema seats are there?", 10000))
	c.addConditional(count(Blocks, "How many classroom blocks are there?", 100))
	c.addConditional(count(PupilSeats, "How many pupil seats are there?", 20000))
	c.addConditional(count(Wings, "How many apartment or office wings are there?", 100))

	c.add(single(BuildingAge, "How old is the building?",
		opt("new", "New (under 5 years)"),
		opt("modern", "Modern (5 to 20 years)"),
		opt("mature", "Mature (20 to 40 years)"),
		opt("old", "Old (over 40 years)"),
	))
	c.add(Question{
		ID:     YearBuilt,
		Prompt: "What year was the building completed?",
		Type:   TypeNumber,
		Rule:   Rule{Required: true, Min: bound(1900), Max: bound(2100)},
	})
	c.add(single(WallMaterial, "What are the walls made of?",
		opt("brick", "Brick / block"),
		opt("concrete", "Concrete"),
		opt("wood", "Wood"),
		opt("mud", "Mud"),
	))
	c.add(single(RoofMaterial, "What is the roof made of?",
		opt("aluminium", "Aluminium"),
		opt("zinc", "Zinc"),
		opt("concrete", "Concrete"),
		opt("tiles", "Tiles"),
		opt("asbestos", "Asbestos"),
	))
	c.add(single(BuildingCondition, "What condition is the building in?",
		opt("excellent", "Excellent"),
		opt("good", "Good"),
		opt("fair", "Fair"),
		opt("poor", "Poor"),
	))
	c.add(single(Occupancy, "How is the property occupied?",
		mergeReference([]Option{
			opt("owner", "Owner occupied"),
			opt("rental", "Rented out"),
			opt("shortlet", "Short let"),
			opt("commercial", "Commercial"),
			opt("business", "Business premises"),
			opt("office", "Office use"),
		}, b.occupancies)...,
	))
	c.add(single(BusinessUse, "Is any part of the property used for business?",
		opt("none", "No business use"),
		opt("home-office", "Home office"),
		opt("retail", "Retail / shop"),
		opt("warehouse", "Warehouse / storage"),
		opt("workshop", "Workshop"),
	))
	c.add(single(WaterProximity, "Is the property close to a body of water?",
		opt("none", "No"),
		opt("sea", "Sea / lagoon"),
		opt("river", "River"),
		opt("reservoir", "Dam / reservoir"),
	))
	c.add(single(NearbyRisk, "Is there a hazardous site nearby?",
		opt("none", "No"),
		opt("petrol", "Petrol / gas station"),
		opt("industrial", "Industrial site"),
	))
	c.add(Question{
		ID:     PastLoss,
		Prompt: "Has the property suffered a loss in the last five years?",
		Type:   TypeSingle,
		Rule:   Rule{Required: true},
		Options: []Option{
			{Value: "none", Label: "No losses"},
			{Value: "fire", Label: "Fire", FollowUps: []string{PastLossDetails}},
			{Value: "flood", Label: "Flood", FollowUps: []string{PastLossDetails}},
			{Value: "theft", Label: "Theft / burglary", FollowUps: []string{PastLossDetails}},
			{Value: "other", Label: "Other", FollowUps: []string{PastLossDetails}},
		},
	})
	c.addConditional(Question{
		ID:     PastLossDetails,
		Prompt: "Briefly describe the loss and any claim made.",
		Type:   TypeText,
		Rule:   Rule{Required: true},
	})
	c.add(multiple(Security, "Which security features are in place?", true,
		opt("gate", "Gate"),
		opt("guards", "Security guards"),
		opt("cctv", "CCTV"),
		opt("alarm", "Burglar alarm"),
		opt("fence", "Perimeter fence"),
	))
	c.add(Question{
		ID:     SecurityGuardCount,
		Prompt: "How many security guards are on duty?",
		Type:   TypeNumber,
		Rule:   Rule{Required: true, Min: bound(1), Max: bound(100)},
		ActiveWhen: func(set answers.Set) bool {
			return set.Contains(Security, "guards")
		},
	})
	c.add(multiple(FireSafety, "Which fire safety measures are installed?", true,
		opt("extinguisher", "Fire extinguishers"),
		opt("alarm", "Smoke / fire alarm"),
		opt("sprinkler", "Sprinklers"),
		opt("hydrant", "Hydrant"),
	))
	c.add(multiple(Riders, "Add optional riders", false,
		opt("flood", "Flood"),
		opt("burglary", "Burglary"),
		opt("fire", "Fire"),
		opt("liability", "Public liability"),
		opt("materials", "Building materials"),
	))
	c.add(multiple(ExtraCoverage, "Add extra coverage", false,
		opt("lossOfRent", "Loss of rent"),
		opt("contentInsurance", "Content insurance"),
		opt("publicLiability", "Public liability"),
		opt("accidentalDamage", "Accidental damage"),
	))
	c.add(Question{
		ID:     DeclaredValue,
		Prompt: "What is the declared value of the property (₦)?",
		Type:   TypeNumber,
		Rule:   Rule{Required: true, Min: bound(0)},
	})
	c.add(single(PaymentFrequency, "How often would you like to pay?",
		opt("monthly", "Monthly"),
		opt("quarterly", "Quarterly"),
		opt("biannual", "Every six months"),
		opt("annual", "Annually"),
	))
	c.add(single(PolicyTier, "Choose a policy tier",
		mergeReference([]Option{
			opt("basic", "Basic"),
			opt("standard", "Standard"),
			opt("plus", "Plus"),
		}, b.tiers)...,
	))
	c.add(Question{
		ID:     Address,
		Prompt: "What is the property address?",
		Type:   TypeText,
		Rule:   Rule{Required: true},
	})
	c.add(single(State, "Which state is the property in?", stateOptions(b.states)...))
	c.add(Question{
		ID:     LGA,
		Prompt: "Which local government area?",
		Type:   TypeText,
		Rule:   Rule{Required: true},
	})

	return c
}

func (c *Catalog) addRoot(q Question) {
	c.roots = append(c.roots, q.ID)
	c.put(q)
}

func (c *Catalog) add(q Question) {
	c.unconditional = append(c.unconditional, q.ID)
	c.put(q)
}

func (c *Catalog) addConditional(q Question) {
	q.Conditional = true
	c.put(q)
}

func (c *Catalog) put(q Question) {
	c.order = append(c.order, q.ID)
	c.byID[q.ID] = q
}

// Question looks up a definition by id.
func (c *Catalog) Question(id string) (Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// Roots returns the entry questions in order.
func (c *Catalog) Roots() []Question {
	return c.lookup(c.roots)
}

// Unconditional returns the non-root questions that are not follow-ups, in catalog order.
func (c *Catalog) Unconditional() []Question {
	return c.lookup(c.unconditional)
}

// All returns every definition in declaration order.
func (c *Catalog) All() []Question {
	return c.lookup(c.order)
}

func (c *Catalog) lookup(ids []string) []Question {
	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.byID[id])
	}
	return out
}

// Check verifies that every follow-up id references a conditional question.
func (c *Catalog) Check() error {
	for _, id := range c.order {
		q := c.byID[id]
		if q.HasOptions() && len(q.Options) == 0 {
			return fmt.Errorf("question %s has no options", id)
		}
		for _, o := range q.Options {
			for _, f := range o.FollowUps {
				target, ok := c.byID[f]
				if !ok {
					return fmt.Errorf("question %s option %s: unknown follow-up %s", id, o.Value, f)
				}
				if !target.Conditional {
					return fmt.Errorf("question %s option %s: follow-up %s is not conditional", id, o.Value, f)
				}
			}
		}
	}
	return nil
}

func opt(value, label string) Option {
	return Option{Value: value, Label: label}
}

func single(id, prompt string, options ...Option) Question {
	return Question{ID: id, Prompt: prompt, Type: TypeSingle, Options: options, Rule: Rule{Required: true}}
}

func multiple(id, prompt string, required bool, options ...Option) Question {
	return Question{ID: id, Prompt: prompt, Type: TypeMultiple, Options: options, Rule: Rule{Required: required}}
}

func count(id, prompt string, limit float64) Question {
	return Question{
		ID:     id,
		Prompt: prompt,
		Type:   TypeNumber,
		Rule:   Rule{Required: true, Min: bound(1), Max: bound(limit)},
	}
}

func stateOptions(seeded []ReferenceOption) []Option {
	if len(seeded) == 0 {
		out := make([]Option, 0, len(DefaultStates))
		for _, s := range DefaultStates {
			out = append(out, opt(s, s))
		}
		return out
	}
	out := make([]Option, 0, len(seeded))
	for _, s := range seeded {
		out = append(out, fromReference(s))
	}
	return out
}

func mergeReference(base []Option, ref []ReferenceOption) []Option {
	out := make([]Option, len(base))
	copy(out, base)

	index := make(map[string]int, len(out))
	for i, o := range out {
		index[o.Value] = i
	}
	for _, r := range ref {
		if i, ok := index[r.Value]; ok {
			if r.Label != "" {
				out[i].Label = r.Label
			}
			continue
		}
		index[r.Value] = len(out)
		out = append(out, fromReference(r))
	}
	return out
}

func fromReference(r ReferenceOption) Option {
	label := r.Label
	if label == "" {
		label = r.Value
	}
	return opt(r.Value, label)
}
