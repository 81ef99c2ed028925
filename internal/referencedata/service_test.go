package referencedata

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-quote/internal/common/logger"
	"property-quote/internal/quote/catalog"
)

const testTTL = time.Hour

func newMocks(t *testing.T) (*Service, sqlmock.Sqlmock, redismock.ClientMock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	redisClient, redisMock := redismock.NewClientMock()
	return NewService(db, redisClient, testTTL, logger.NewTestLogger(t)), mock, redisMock
}

// ==========================
// Lookups
// ==========================

func TestStates_FromDatabaseThenCached(t *testing.T) {
	svc, mock, redisMock := newMocks(t)

	redisMock.ExpectGet("refdata:states").RedisNil()
	mock.ExpectQuery(`SELECT code, name FROM states WHERE active = true`).
		WillReturnRows(sqlmock.NewRows([]string{"code", "name"}).
			AddRow("LA", "Lagos").
			AddRow("EN", "Enugu"))

	want := []State{{Code: "LA", Name: "Lagos"}, {Code: "EN", Name: "Enugu"}}
	data, _ := json.Marshal(want)
	redisMock.ExpectSet("refdata:states", data, testTTL).SetVal("OK")

	got, src := svc.States(context.Background())
	assert.Equal(t, SourceDatabase, src)
	assert.Equal(t, want, got)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestStates_CacheHitSkipsDatabase(t *testing.T) {
	svc, mock, redisMock := newMocks(t)

	cached, _ := json.Marshal([]State{{Code: "OY", Name: "Oyo"}})
	redisMock.ExpectGet("refdata:states").SetVal(string(cached))

	got, src := svc.States(context.Background())
	assert.Equal(t, SourceCache, src)
	assert.Equal(t, []State{{Code: "OY", Name: "Oyo"}}, got)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestLookups_FallBackOnDatabaseError(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		query string
		run   func(*Service) (interface{}, Source)
		want  interface{}
	}{
		{
			name:  "states",
			key:   "refdata:states",
			query: `SELECT code, name FROM states`,
			run:   func(s *Service) (interface{}, Source) { return s.States(context.Background()) },
			want:  fallbackStates,
		},
		{
			name:  "property types",
			key:   "refdata:property_types",
			query: `SELECT code, label FROM property_types`,
			run:   func(s *Service) (interface{}, Source) { return s.PropertyTypes(context.Background()) },
			want:  fallbackPropertyTypes,
		},
		{
			name:  "tiers",
			key:   "refdata:tiers",
			query: `SELECT id, label, base_price FROM policy_tiers`,
			run:   func(s *Service) (interface{}, Source) { return s.Tiers(context.Background()) },
			want:  fallbackTiers,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock, redisMock := newMocks(t)
			redisMock.ExpectGet(tt.key).SetErr(errors.New("connection refused"))
			mock.ExpectQuery(tt.query).WillReturnError(errors.New("relation does not exist"))

			got, src := tt.run(svc)
			assert.Equal(t, SourceFallback, src)
			assert.Equal(t, tt.want, got)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStates_EmptyTableFallsBack(t *testing.T) {
	svc, mock, redisMock := newMocks(t)

	redisMock.ExpectGet("refdata:states").RedisNil()
	mock.ExpectQuery(`SELECT code, name FROM states`).
		WillReturnRows(sqlmock.NewRows([]string{"code", "name"}))

	got, src := svc.States(context.Background())
	assert.Equal(t, SourceFallback, src)
	assert.Len(t, got, len(catalog.DefaultStates))
}

func TestTiers_ScanDecimalPrices(t *testing.T) {
	svc, mock, redisMock := newMocks(t)

	redisMock.ExpectGet("refdata:tiers").RedisNil()
	mock.ExpectQuery(`SELECT id, label, base_price FROM policy_tiers`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "label", "base_price"}).
			AddRow("basic", "Bronze", "27500.00"))
	data, _ := json.Marshal([]Tier{{ID: "basic", Label: "Bronze", BasePrice: decimal.RequireFromString("27500.00")}})
	redisMock.ExpectSet("refdata:tiers", data, testTTL).SetVal("OK")

	got, src := svc.Tiers(context.Background())
	assert.Equal(t, SourceDatabase, src)
	require.Len(t, got, 1)
	assert.True(t, got[0].BasePrice.Equal(decimal.NewFromInt(27500)))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestLGAs_QueryByState(t *testing.T) {
	svc, mock, redisMock := newMocks(t)

	redisMock.ExpectGet("refdata:lgas:lagos").RedisNil()
	mock.ExpectQuery(`SELECT state_name, name FROM lgas WHERE state_name = \$1`).
		WithArgs("Lagos").
		WillReturnRows(sqlmock.NewRows([]string{"state_name", "name"}).
			AddRow("Lagos", "Ikeja").
			AddRow("Lagos", "Lagos Island"))
	want := []LGA{{State: "Lagos", Name: "Ikeja"}, {State: "Lagos", Name: "Lagos Island"}}
	data, _ := json.Marshal(want)
	redisMock.ExpectSet("refdata:lgas:lagos", data, testTTL).SetVal("OK")

	got, src := svc.LGAs(context.Background(), "Lagos")
	assert.Equal(t, SourceDatabase, src)
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestLookups_WithoutBackends(t *testing.T) {
	svc := NewService(nil, nil, testTTL, logger.NewNoOpLogger())

	states, src := svc.States(context.Background())
	assert.Equal(t, SourceFallback, src)
	assert.Equal(t, fallbackStates, states)

	lgas, _ := svc.LGAs(context.Background(), "Kano")
	assert.Empty(t, lgas)

	assert.NoError(t, svc.Invalidate(context.Background()))
}

func TestFallback_ReturnsCopy(t *testing.T) {
	svc := NewService(nil, nil, testTTL, logger.NewNoOpLogger())

	tiers, _ := svc.Tiers(context.Background())
	tiers[0].Label = "changed"

	again, _ := svc.Tiers(context.Background())
	assert.Equal(t, "Basic", again[0].Label)
}

// ==========================
// Catalog seeding
// ==========================

func TestCatalogOptions_SeedQuestions(t *testing.T) {
	svc, mock, redisMock := newMocks(t)

	states, _ := json.Marshal([]State{{Code: "EN", Name: "Enugu"}})
	redisMock.ExpectGet("refdata:states").SetVal(string(states))
	types, _ := json.Marshal([]PropertyType{{Code: "owner", Label: "Lives there"}, {Code: "coop", Label: "Co-operative"}})
	redisMock.ExpectGet("refdata:property_types").SetVal(string(types))
	redisMock.ExpectGet("refdata:tiers").RedisNil()
	mock.ExpectQuery(`SELECT id, label, base_price FROM policy_tiers`).WillReturnError(errors.New("timeout"))

	c := catalog.New(svc.CatalogOptions(context.Background())...)

	state, ok := c.Question(catalog.State)
	require.True(t, ok)
	require.Len(t, state.Options, 1)
	assert.Equal(t, "Enugu", state.Options[0].Value)

	occ, ok := c.Question(catalog.Occupancy)
	require.True(t, ok)
	assert.Equal(t, "Lives there", occ.OptionLabel("owner"))
	assert.Equal(t, "Co-operative", occ.OptionLabel("coop"))
	assert.Equal(t, "Office use", occ.OptionLabel("office"))

	tier, ok := c.Question(catalog.PolicyTier)
	require.True(t, ok)
	assert.Equal(t, "Basic", tier.OptionLabel("basic"))
}

func TestInvalidate(t *testing.T) {
	svc, _, redisMock := newMocks(t)

	redisMock.ExpectKeys("refdata:*").SetVal([]string{"refdata:states", "refdata:tiers"})
	redisMock.ExpectDel("refdata:states", "refdata:tiers").SetVal(2)

	require.NoError(t, svc.Invalidate(context.Background()))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestRefresh_RebuildsCatalogFromDatabase(t *testing.T) {
	svc, mock, redisMock := newMocks(t)

	redisMock.ExpectKeys("refdata:*").SetVal([]string{"refdata:states"})
	redisMock.ExpectDel("refdata:states").SetVal(1)

	redisMock.ExpectGet("refdata:states").RedisNil()
	mock.ExpectQuery(`SELECT code, name FROM states WHERE active = true`).
		WillReturnRows(sqlmock.NewRows([]string{"code", "name"}).AddRow("EB", "Ebonyi"))
	data, _ := json.Marshal([]State{{Code: "EB", Name: "Ebonyi"}})
	redisMock.ExpectSet("refdata:states", data, testTTL).SetVal("OK")

	redisMock.ExpectGet("refdata:property_types").RedisNil()
	mock.ExpectQuery(`SELECT code, label FROM property_types`).WillReturnError(errors.New("timeout"))
	redisMock.ExpectGet("refdata:tiers").RedisNil()
	mock.ExpectQuery(`SELECT id, label, base_price FROM policy_tiers`).WillReturnError(errors.New("timeout"))

	c, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	state, ok := c.Question(catalog.State)
	require.True(t, ok)
	require.Len(t, state.Options, 1)
	assert.Equal(t, "Ebonyi", state.Options[0].Value)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestRefresh_CacheFailure(t *testing.T) {
	svc, _, redisMock := newMocks(t)
	redisMock.ExpectKeys("refdata:*").SetErr(errors.New("connection reset"))

	_, err := svc.Refresh(context.Background())
	require.Error(t, err)
}
