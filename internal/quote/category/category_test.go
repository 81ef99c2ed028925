package category

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"property-quote/internal/quote/answers"
	"property-quote/internal/quote/catalog"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		propertyType string
		occupancy    string
		want         Category
	}{
		{"office", "", SingleOccOffice},
		{"bungalow", "office", SingleOccOffice},
		{"hostel", "office", SingleOccOffice},
		{"bungalow", "owner", SingleOccResidential},
		{"duplex", "owner", SingleOccResidential},
		{"flats", "owner", SingleOccResidential},
		{"flats", "rental", Others},
		{"hostel", "", HotelHostelGuest},
		{"recreation", "business", RecreationCinema},
		{"school", "", SchoolsTraining},
		{"petrol", "commercial", PetrolGasStation},
		{"hospital", "", HospitalClinic},
		{"mixed", "business", MultiOccBusiness},
		{"mixed", "commercial", MultiOccBusiness},
		{"mixed", "rental", MultiOccMixedRes},
		{"mixed", "", MultiOccMixedRes},
		{"others", "owner", Others},
		{"", "", Others},
	}

	for _, tt := range tests {
		t.Run(tt.propertyType+"/"+tt.occupancy, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.propertyType, tt.occupancy))
		})
	}
}

func TestFromAnswers_OnlyReadsTypeAndOccupancy(t *testing.T) {
	base := answers.NewSet(
		answers.Answer{QuestionID: catalog.PropertyType, Value: answers.String("mixed")},
		answers.Answer{QuestionID: catalog.Occupancy, Value: answers.String("business")},
	)
	noisy := answers.Reduce(base,
		answers.SetAnswer{Answer: answers.Answer{QuestionID: catalog.BuildingAge, Value: answers.String("old")}},
		answers.SetAnswer{Answer: answers.Answer{QuestionID: catalog.Wings, Value: answers.Number(4)}},
	)
	assert.Equal(t, MultiOccBusiness, FromAnswers(base))
	assert.Equal(t, FromAnswers(base), FromAnswers(noisy))
}

func TestScheduleFor(t *testing.T) {
	s := ScheduleFor(SingleOccOffice)
	assert.Equal(t, Schedule{PerFloor: 10000, PerPlot: 5000}, s)

	s[PerFloor] = 1
	assert.Equal(t, 10000.0, ScheduleFor(SingleOccOffice)[PerFloor])

	assert.Equal(t, ScheduleFor(Others), ScheduleFor(Category("Unknown")))
}

func TestEveryScheduledDimensionHasQuestion(t *testing.T) {
	c := catalog.New()
	for _, d := range Dimensions {
		_, ok := c.Question(d.QuestionID())
		assert.True(t, ok, string(d))
	}
}
