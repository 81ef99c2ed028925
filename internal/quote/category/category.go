// Package category maps (propertyType, occupancy) to a rating category and its unit-charge
// schedule.
package category

import (
	"property-quote/internal/quote/answers"
	"property-quote/internal/quote/catalog"
)

// Category identifies a rating class.
type Category string

const (
	SingleOccOffice      Category = "SingleOccOffice"
	SingleOccResidential Category = "SingleOccResidential"
	HotelHostelGuest     Category = "HotelHostelGuest"
	RecreationCinema     Category = "RecreationCinema"
	SchoolsTraining      Category = "SchoolsTraining"
	PetrolGasStation     Category = "PetrolGasStation"
	HospitalClinic       Category = "HospitalClinic"
	MultiOccBusiness     Category = "MultiOccBusiness"
	MultiOccMixedRes     Category = "MultiOccMixedRes"
	Others               Category = "Others"
)

// Dimension is a unit-charge axis.
type Dimension string

const (
	PerFloor               Dimension = "perFloor"
	PerPlot                Dimension = "perPlot"
	PerRoom                Dimension = "perRoom"
	PerBed                 Dimension = "perBed"
	PerPump                Dimension = "perPump"
	PerCinemaSeat          Dimension = "perCinemaSeat"
	PerBlock               Dimension = "perBlock"
	PerPupilSeat           Dimension = "perPupilSeat"
	PerApartmentOfficeWing Dimension = "perApartmentOfficeWing"
)

// Dimensions lists every dimension in evaluation order.
var Dimensions = []Dimension{
	PerFloor, PerPlot, PerRoom, PerBed, PerPump, PerCinemaSeat, PerBlock, PerPupilSeat, PerApartmentOfficeWing,
}

// QuestionID returns the count question answering the dimension.
func (d Dimension) QuestionID() string {
	switch d {
	case PerFloor:
		return catalog.Floors
	case PerPlot:
		return catalog.Plots
	case PerRoom:
		return catalog.Rooms
	case PerBed:
		return catalog.Beds
	case PerPump:
		return catalog.Pumps
	case PerCinemaSeat:
		return catalog.CinemaSeats
	case PerBlock:
		return catalog.Blocks
	case PerPupilSeat:
		return catalog.PupilSeats
	case PerApartmentOfficeWing:
		return catalog.Wings
	}
	return ""
}

// Schedule is the unit rate (naira) per dimension.
type Schedule map[Dimension]float64

var schedules = map[Category]Schedule{
	SingleOccOffice:      {PerFloor: 10000, PerPlot: 5000},
	SingleOccResidential: {PerFloor: 7500, PerPlot: 5000},
	HotelHostelGuest:     {PerRoom: 2500, PerFloor: 5000},
	RecreationCinema:     {PerCinemaSeat: 500, PerFloor: 7500},
	SchoolsTraining:      {PerBlock: 10000, PerPupilSeat: 200},
	PetrolGasStation:     {PerPump: 15000, PerPlot: 10000},
	HospitalClinic:       {PerBed: 3000, PerFloor: 7500},
	MultiOccBusiness:     {PerApartmentOfficeWing: 8000, PerFloor: 6000},
	MultiOccMixedRes:     {PerApartmentOfficeWing: 6000, PerFloor: 5000},
	Others:               {PerFloor: 5000, PerPlot: 5000},
}

// ScheduleFor returns a copy of the category's schedule. Unknown categories get the Others
// schedule.
func ScheduleFor(c Category) Schedule {
	src, ok := schedules[c]
	if !ok {
		src = schedules[Others]
	}
	out := make(Schedule, len(src))
	for d, rate := range src {
		out[d] = rate
	}
	return out
}

// Classify applies the first matching rule in priority order.
func Classify(propertyType, occupancy string) Category {
	switch {
	case propertyType == "office" || occupancy == "office":
		return SingleOccOffice
	case (propertyType == "bungalow" || propertyType == "duplex" || propertyType == "flats") && occupancy == "owner":
		return SingleOccResidential
	case propertyType == "hostel":
		return HotelHostelGuest
	case propertyType == "recreation":
		return RecreationCinema
	case propertyType == "school":
		return SchoolsTraining
	case propertyType == "petrol":
		return PetrolGasStation
	case propertyType == "hospital":
		return HospitalClinic
	case propertyType == "mixed" && (occupancy == "business" || occupancy == "commercial"):
		return MultiOccBusiness
	case propertyType == "mixed":
		return MultiOccMixedRes
	default:
		return Others
	}
}

// FromAnswers classifies using the propertyType and occupancy answers only.
func FromAnswers(set answers.Set) Category {
	return Classify(set.Str(catalog.PropertyType), set.Str(catalog.Occupancy))
}
