package catalog

// Question ids shared by the generator, rating engine and submission projections.
const (
	PropertyType = "propertyType"

	Floors      = "floors"
	Plots       = "plots"
	Rooms       = "rooms"
	Beds        = "beds"
	Pumps       = "pumps"
	CinemaSeats = "cinemaSeats"
	Blocks      = "blocks"
	PupilSeats  = "pupilSeats"
	Wings       = "wings"

	BuildingAge        = "buildingAge"
	YearBuilt          = "yearBuilt"
	WallMaterial       = "wallMaterial"
	RoofMaterial       = "roofMaterial"
	BuildingCondition  = "buildingCondition"
	Occupancy          = "occupancy"
	BusinessUse        = "businessUse"
	WaterProximity     = "waterProximity"
	NearbyRisk         = "nearbyRisk"
	PastLoss           = "pastLoss"
	PastLossDetails    = "pastLossDetails"
	Security           = "security"
	SecurityGuardCount = "securityGuardCount"
	FireSafety         = "fireSafety"
	Riders             = "riders"
	ExtraCoverage      = "extraCoverage"
	DeclaredValue      = "declaredValue"
	PaymentFrequency   = "paymentFrequency"
	PolicyTier         = "policyTier"
	Address            = "address"
	State              = "state"
	LGA                = "lga"
)
