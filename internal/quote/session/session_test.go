package session

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-quote/internal/common/errors"
	"property-quote/internal/quote/answers"
	"property-quote/internal/quote/catalog"
	"property-quote/internal/quote/scheduler"
	"property-quote/internal/quote/validator"
)

func newTestRegistry() *Registry {
	return NewRegistry(catalog.New(), time.Hour, scheduler.WithWindow(0))
}

func errorCode(t *testing.T, err error) errors.ErrorCode {
	t.Helper()
	var se *errors.StandardError
	require.True(t, stderrors.As(err, &se), "expected StandardError, got %v", err)
	return se.Code
}

func mustAnswer(t *testing.T, s *Session, id string, v answers.Value) {
	t.Helper()
	r, err := s.Answer(id, v)
	require.NoError(t, err)
	require.True(t, r.OK, "%s: %s", id, r.Message)
}

// ==========================
// Answering & purging
// ==========================

func TestSession_StartsAtFirstRoot(t *testing.T) {
	s := newTestRegistry().Create()

	v := s.View()
	assert.Equal(t, catalog.PropertyType, v.Current)
	assert.Equal(t, 0, v.Answers.Len())
	assert.Nil(t, v.Premium)
	assert.False(t, v.Complete)
}

func TestSession_AnswerRejectsInactiveAndUnknownQuestions(t *testing.T) {
	s := newTestRegistry().Create()

	_, err := s.Answer(catalog.Floors, answers.Number(3))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidationFailed, errorCode(t, err))

	_, err = s.Answer("swimmingPool", answers.String("yes"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidationFailed, errorCode(t, err))

	assert.Equal(t, 0, s.Answers().Len())
}

func TestSession_AnswerStoresLabels(t *testing.T) {
	s := newTestRegistry().Create()
	mustAnswer(t, s, catalog.PropertyType, answers.String("office"))
	mustAnswer(t, s, catalog.FireSafety, answers.List("extinguisher", "alarm"))

	a, ok := s.Answers().Get(catalog.PropertyType)
	require.True(t, ok)
	assert.Equal(t, "Office", a.Label)

	a, ok = s.Answers().Get(catalog.FireSafety)
	require.True(t, ok)
	assert.Equal(t, "Fire extinguishers, Smoke / fire alarm", a.Label)
}

func TestSession_InvalidAnswerIsStoredButReported(t *testing.T) {
	s := newTestRegistry().Create()
	mustAnswer(t, s, catalog.PropertyType, answers.String("office"))

	r, err := s.Answer(catalog.Floors, answers.Number(0))
	require.NoError(t, err)
	assert.False(t, r.OK)
	assert.Equal(t, validator.KindNumericRange, r.Kind)
	assert.True(t, s.Answers().Has(catalog.Floors))
}

func TestSession_ChangingParentPurgesOrphans(t *testing.T) {
	s := newTestRegistry().Create()
	mustAnswer(t, s, catalog.PropertyType, answers.String("duplex"))
	mustAnswer(t, s, catalog.Floors, answers.Number(2))
	mustAnswer(t, s, catalog.Plots, answers.Number(2))

	mustAnswer(t, s, catalog.PropertyType, answers.String("bungalow"))

	set := s.Answers()
	assert.False(t, set.Has(catalog.Floors))
	assert.True(t, set.Has(catalog.Plots))

	for _, q := range s.Questions() {
		assert.NotEqual(t, catalog.Floors, q.ID)
	}
}

func TestSession_ClearRemovesDependents(t *testing.T) {
	s := newTestRegistry().Create()
	mustAnswer(t, s, catalog.Security, answers.List("gate", "guards"))
	mustAnswer(t, s, catalog.SecurityGuardCount, answers.Number(2))

	s.Clear(catalog.Security)

	assert.False(t, s.Answers().Has(catalog.Security))
	assert.False(t, s.Answers().Has(catalog.SecurityGuardCount))
}

func TestSession_ReplaceDropsInactiveAnswers(t *testing.T) {
	s := newTestRegistry().Create()
	s.Replace(answers.NewSet(
		answers.Answer{QuestionID: catalog.PropertyType, Value: answers.String("bungalow")},
		answers.Answer{QuestionID: catalog.Floors, Value: answers.Number(4)},
		answers.Answer{QuestionID: catalog.Plots, Value: answers.Number(1)},
	))

	set := s.Answers()
	assert.Equal(t, []string{catalog.PropertyType, catalog.Plots}, set.IDs())
}

// ==========================
// Navigation
// ==========================

func TestSession_NextAndBack(t *testing.T) {
	s := newTestRegistry().Create()

	_, err := s.Next()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidationFailed, errorCode(t, err))

	mustAnswer(t, s, catalog.PropertyType, answers.String("office"))
	next, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, catalog.Floors, next)

	_, err = s.Answer(catalog.Floors, answers.Number(0))
	require.NoError(t, err)
	cur, err := s.Next()
	require.Error(t, err)
	assert.Equal(t, catalog.Floors, cur)

	mustAnswer(t, s, catalog.Floors, answers.Number(3))
	next, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, catalog.Plots, next)

	assert.Equal(t, catalog.Floors, s.Back())
	assert.Equal(t, catalog.PropertyType, s.Back())
	assert.Equal(t, catalog.PropertyType, s.Back())
}

func TestSession_CurrentMovesWhenItBecomesInactive(t *testing.T) {
	s := newTestRegistry().Create()
	mustAnswer(t, s, catalog.PropertyType, answers.String("office"))
	_, err := s.Next()
	require.NoError(t, err)

	mustAnswer(t, s, catalog.PropertyType, answers.String("bungalow"))

	assert.Equal(t, catalog.Plots, s.View().Current)
}

// ==========================
// Premium
// ==========================

func TestSession_PremiumFollowsAnswers(t *testing.T) {
	s := newTestRegistry().Create()

	_, err := s.Premium()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNoPremium, errorCode(t, err))

	mustAnswer(t, s, catalog.PropertyType, answers.String("office"))
	mustAnswer(t, s, catalog.Floors, answers.Number(3))
	mustAnswer(t, s, catalog.Plots, answers.Number(1))
	mustAnswer(t, s, catalog.BuildingAge, answers.String("new"))
	mustAnswer(t, s, catalog.WallMaterial, answers.String("brick"))
	mustAnswer(t, s, catalog.FireSafety, answers.List("extinguisher", "alarm"))
	mustAnswer(t, s, catalog.Security, answers.List("gate", "guards"))
	mustAnswer(t, s, catalog.DeclaredValue, answers.Number(5000000))
	mustAnswer(t, s, catalog.PaymentFrequency, answers.String("annual"))

	b, err := s.Premium()
	require.NoError(t, err)
	assert.Equal(t, 29250.0, b.Total)
	assert.False(t, s.Calculating())
	assert.NoError(t, s.RatingError())

	v := s.View()
	require.NotNil(t, v.Premium)
	assert.Equal(t, 29250.0, v.Premium.Total)
}

func TestSession_RecalculateBelowThreshold(t *testing.T) {
	s := newTestRegistry().Create()
	mustAnswer(t, s, catalog.PropertyType, answers.String("office"))

	assert.Equal(t, scheduler.BelowThreshold, s.Recalculate())
}

func TestSession_RecalculateThrottled(t *testing.T) {
	r := NewRegistry(catalog.New(), 0)
	s := r.Create()
	mustAnswer(t, s, catalog.PropertyType, answers.String("office"))
	mustAnswer(t, s, catalog.Floors, answers.Number(3))
	mustAnswer(t, s, catalog.Plots, answers.Number(1))

	assert.Equal(t, scheduler.DroppedThrottled, s.Recalculate())
}

// ==========================
// Registry
// ==========================

func TestRegistry_CreateGetDelete(t *testing.T) {
	r := newTestRegistry()
	s := r.Create()
	require.NotEmpty(t, s.ID)
	assert.Equal(t, 1, r.Len())

	got, err := r.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	r.Delete(s.ID)
	_, err = r.Get(s.ID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSessionNotFound, errorCode(t, err))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_SessionsAreIndependent(t *testing.T) {
	r := newTestRegistry()
	a := r.Create()
	b := r.Create()
	require.NotEqual(t, a.ID, b.ID)

	mustAnswer(t, a, catalog.PropertyType, answers.String("office"))
	assert.Equal(t, 0, b.Answers().Len())
}

func TestRegistry_SweepRemovesIdleSessions(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	r := newTestRegistry()
	r.now = func() time.Time { return start }
	idle := r.Create()

	r.now = func() time.Time { return start.Add(2 * time.Hour) }
	fresh := r.Create()

	assert.Equal(t, 1, r.Sweep())
	_, err := r.Get(idle.ID)
	assert.Error(t, err)
	_, err = r.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestRegistry_SetCatalogAppliesToNewSessions(t *testing.T) {
	r := newTestRegistry()
	old := r.Create()

	r.SetCatalog(catalog.New(catalog.WithStates([]catalog.ReferenceOption{{Value: "Enugu", Label: "Enugu"}})))
	fresh := r.Create()

	_, err := fresh.Answer(catalog.State, answers.String("Enugu"))
	require.NoError(t, err)

	r2, err := old.Answer(catalog.State, answers.String("Enugu"))
	require.NoError(t, err)
	assert.False(t, r2.OK)
}
