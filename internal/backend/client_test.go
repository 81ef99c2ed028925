package backend

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-quote/internal/common/errors"
	"property-quote/internal/common/logger"
	"property-quote/internal/quote/submission"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", APIKey: "secret", Timeout: 2 * time.Second}, logger.NewTestLogger(t))
}

func codeOf(t *testing.T, err error) errors.ErrorCode {
	t.Helper()
	var se *errors.StandardError
	require.True(t, stderrors.As(err, &se), "expected StandardError, got %v", err)
	return se.Code
}

// ==========================
// Wallet
// ==========================

func TestBalance(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   string
		code   errors.ErrorCode
	}{
		{name: "string amount", body: `{"balance":"12500.50"}`, status: http.StatusOK, want: "12500.5"},
		{name: "numeric amount", body: `{"balance":40000}`, status: http.StatusOK, want: "40000"},
		{name: "server error", body: `boom`, status: http.StatusBadGateway, code: "EXTERNAL_SERVICE_ERROR"},
		{name: "no wallet", body: `missing`, status: http.StatusNotFound, code: "RESOURCE_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/wallet/balance", r.URL.Path)
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := c.Balance(context.Background())
			if tt.code != "" {
				require.Error(t, err)
				assert.Equal(t, tt.code, codeOf(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestBalance_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Balance(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCode("TIMEOUT_ERROR"), codeOf(t, err))
}

func TestFund(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wallet/fund", r.URL.Path)

		var req fundRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Amount.Equal(decimal.RequireFromString("30000.13")))
		assert.Equal(t, "https://app.example.com/return?draft=d1", req.CallbackURL)

		_, _ = w.Write([]byte(`{"redirectUrl":"https://pay.example.com/r/abc","reference":"ref-1"}`))
	})

	redirect, err := c.Fund(context.Background(), decimal.RequireFromString("30000.125"), "https://app.example.com/return?draft=d1")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/r/abc", redirect.RedirectURL)
	assert.Equal(t, "ref-1", redirect.Reference)
}

func TestFund_EmptyRedirect(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.Fund(context.Background(), decimal.NewFromInt(100), "")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCode("EXTERNAL_SERVICE_ERROR"), codeOf(t, err))
}

// ==========================
// Quotes
// ==========================

func TestCreateQuote(t *testing.T) {
	payload := submission.Payload{
		Address:          "12 Marina Road",
		State:            "Lagos",
		LGA:              "Lagos Island",
		PropertyType:     "Office",
		Year:             2020,
		PaymentFrequency: "annual",
		PolicyTierID:     "basic",
		PropertyValue:    5000000,
		Concerns:         []string{},
	}

	tests := []struct {
		name    string
		body    string
		wantID  string
		wantErr bool
	}{
		{name: "top level id", body: `{"id":"q-1"}`, wantID: "q-1"},
		{name: "wrapped id", body: `{"data":{"id":"q-2"}}`, wantID: "q-2"},
		{name: "no id", body: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/quotes", r.URL.Path)
				assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var got map[string]interface{}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				assert.Equal(t, "Lagos", got["state"])
				assert.Equal(t, "basic", got["policyTierId"])

				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(tt.body))
			})

			id, err := c.CreateQuote(context.Background(), payload)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestCreateQuote_UniqueIdempotencyKeys(t *testing.T) {
	seen := make(map[string]bool)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen[r.Header.Get("Idempotency-Key")] = true
		_, _ = w.Write([]byte(`{"id":"q"}`))
	})

	for i := 0; i < 3; i++ {
		_, err := c.CreateQuote(context.Background(), submission.Payload{})
		require.NoError(t, err)
	}
	assert.Len(t, seen, 3)
}

func TestCreateQuote_CancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CreateQuote(ctx, submission.Payload{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
