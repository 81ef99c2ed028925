// Package backend talks to the consuming backend: wallet balance, wallet funding and quote
// creation. It implements submission.Wallet and submission.QuoteCreator.
package backend

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"property-quote/internal/common/errors"
	httpclient "property-quote/internal/common/http"
	"property-quote/internal/common/logger"
	"property-quote/internal/quote/submission"
)

const serviceName = "quote-backend"

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	http    *httpclient.Client
	logger  logger.Logger
}

type balanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type fundRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	CallbackURL string          `json:"callbackUrl,omitempty"`
}

type fundResponse struct {
	RedirectURL string `json:"redirectUrl"`
	Reference   string `json:"reference"`
}

type createQuoteResponse struct {
	ID   string `json:"id"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func NewClient(cfg Config, log logger.Logger) *Client {
	hc := httpclient.NewClient(cfg.Timeout)
	if cfg.APIKey != "" {
		hc = hc.WithHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		logger:  log.WithFields(map[string]interface{}{"component": "backend"}),
	}
}

// Balance returns the customer's current wallet balance.
func (c *Client) Balance(ctx context.Context) (decimal.Decimal, error) {
	var resp balanceResponse
	if err := c.http.DoJSON(ctx, http.MethodGet, c.baseURL+"/wallet/balance", nil, &resp); err != nil {
		return decimal.Zero, c.wrap("wallet balance", err)
	}
	return resp.Balance, nil
}

// Fund asks the wallet for a payment-provider redirect for amount.
func (c *Client) Fund(ctx context.Context, amount decimal.Decimal, callbackURL string) (*submission.FundingRedirect, error) {
	req := fundRequest{Amount: amount.Round(2), CallbackURL: callbackURL}

	var resp fundResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, c.baseURL+"/wallet/fund", req, &resp); err != nil {
		return nil, c.wrap("wallet fund", err)
	}
	if resp.RedirectURL == "" {
		return nil, errors.NewExternalServiceError(serviceName, fmt.Errorf("wallet fund: empty redirect url"))
	}
	return &submission.FundingRedirect{RedirectURL: resp.RedirectURL, Reference: resp.Reference}, nil
}

// CreateQuote posts the payload and returns the created quote id. Each call carries a fresh
// idempotency key.
func (c *Client) CreateQuote(ctx context.Context, payload submission.Payload) (string, error) {
	key := uuid.NewString()

	var resp createQuoteResponse
	err := c.http.WithHeader("Idempotency-Key", key).
		DoJSON(ctx, http.MethodPost, c.baseURL+"/quotes", payload, &resp)
	if err != nil {
		return "", c.wrap("create quote", err)
	}

	id := resp.ID
	if id == "" {
		id = resp.Data.ID
	}
	if id == "" {
		return "", errors.NewExternalServiceError(serviceName, fmt.Errorf("create quote: response carried no id"))
	}

	c.logger.Debug("quote created at backend", map[string]interface{}{"quoteId": id, "idempotencyKey": key})
	return id, nil
}

func (c *Client) wrap(op string, err error) error {
	if stderrors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeoutError(serviceName, fmt.Errorf("%s: %w", op, err))
	}

	var status *httpclient.StatusError
	if stderrors.As(err, &status) && status.StatusCode == http.StatusNotFound {
		return errors.NewResourceNotFoundError(serviceName, fmt.Sprintf("%s: %s", op, status.Body))
	}
	return errors.NewExternalServiceError(serviceName, fmt.Errorf("%s: %w", op, err))
}
