// Package submission turns a rated answer set into a created quote. It projects the answers
// onto the backend payload, branches on wallet sufficiency, and when funding is needed saves a
// draft and hands the customer off to the payment provider. Resume picks the draft up again
// after the customer returns.
package submission

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"property-quote/internal/common/errors"
	"property-quote/internal/common/logger"
	"property-quote/internal/common/metrics"
	"property-quote/internal/common/observability"
	"property-quote/internal/common/validation"
	"property-quote/internal/quote/answers"
	"property-quote/internal/quote/catalog"
	"property-quote/internal/quote/generator"
	"property-quote/internal/quote/rating"
	"property-quote/internal/quote/validator"
)

// Wallet is the customer's wallet at the consuming backend.
type Wallet interface {
	Balance(ctx context.Context) (decimal.Decimal, error)
	Fund(ctx context.Context, amount decimal.Decimal, callbackURL string) (*FundingRedirect, error)
}

// QuoteCreator persists a quote and returns its id.
type QuoteCreator interface {
	CreateQuote(ctx context.Context, payload Payload) (string, error)
}

// DraftStore keeps pending quotes while the customer is at the payment provider.
type DraftStore interface {
	Save(ctx context.Context, draft *Draft) error
	Load(ctx context.Context, id string) (*Draft, error)
	Delete(ctx context.Context, id string) error
}

// EventPublisher announces created quotes.
type EventPublisher interface {
	PublishQuoteCreated(ctx context.Context, event QuoteCreated) error
}

// FundingRedirect is returned by the wallet when a funding request is accepted.
type FundingRedirect struct {
	RedirectURL string `json:"redirectUrl"`
	Reference   string `json:"reference,omitempty"`
}

// Draft is a pending quote awaiting wallet funding.
type Draft struct {
	ID        string          `json:"id"`
	SessionID string          `json:"sessionId,omitempty"`
	Payload   Payload         `json:"payload"`
	Premium   decimal.Decimal `json:"premium"`
	Reference string          `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// QuoteCreated is published after the backend accepted a quote.
type QuoteCreated struct {
	QuoteID          string    `json:"quoteId"`
	PropertyType     string    `json:"propertyType"`
	State            string    `json:"state"`
	PolicyTierID     string    `json:"policyTierId"`
	PaymentFrequency string    `json:"paymentFrequency"`
	Premium          string    `json:"premium"`
	CreatedAt        time.Time `json:"createdAt"`
}

type Status string

const (
	StatusCreated         Status = "created"
	StatusFundingRequired Status = "funding_required"
)

// Result of Submit and Resume.
type Result struct {
	Status    Status          `json:"status"`
	QuoteID   string          `json:"quoteId,omitempty"`
	DraftID   string          `json:"draftId,omitempty"`
	Premium   decimal.Decimal `json:"premium"`
	Balance   decimal.Decimal `json:"balance"`
	Shortfall decimal.Decimal `json:"shortfall"`
}

// Funding is the result of a successful funding request.
type Funding struct {
	DraftID     string          `json:"draftId"`
	RedirectURL string          `json:"redirectUrl"`
	Amount      decimal.Decimal `json:"amount"`
	Shortfall   decimal.Decimal `json:"shortfall"`
}

type Config struct {
	// CallbackURL is where the payment provider sends the customer back; the draft id is
	// appended as the "draft" query parameter.
	CallbackURL string
}

type Orchestrator struct {
	config  Config
	catalog *catalog.Catalog
	engine  *rating.Engine
	wallet  Wallet
	creator QuoteCreator
	drafts  DraftStore
	events  EventPublisher
	obs     *observability.Observability
	logger  logger.Logger
	now     func() time.Time
}

// NewOrchestrator wires the collaborators. events and obs may be nil.
func NewOrchestrator(cfg Config, c *catalog.Catalog, wallet Wallet, creator QuoteCreator, drafts DraftStore,
	events EventPublisher, obs *observability.Observability, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		config:  cfg,
		catalog: c,
		engine:  rating.NewEngine(c),
		wallet:  wallet,
		creator: creator,
		drafts:  drafts,
		events:  events,
		obs:     obs,
		logger:  log.WithFields(map[string]interface{}{"component": "submission"}),
		now:     time.Now,
	}
}

// Submit prices set, then creates the quote when the wallet covers the premium and otherwise
// reports the shortfall. Cancelling ctx aborts the in-flight call; nothing is retried.
func (o *Orchestrator) Submit(ctx context.Context, set answers.Set) (result *Result, err error) {
	start := time.Now()
	ctx, span := o.obs.StartSpan(ctx, "quote.submit")
	defer func() {
		observability.EndSpan(span, err)
		o.record(ctx, "submit", result, err, start)
	}()

	payload, breakdown, err := o.prepare(set)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("category", string(breakdown.Category)))
	premium := decimal.NewFromFloat(breakdown.Total)

	balance, err := o.wallet.Balance(ctx)
	if err != nil {
		o.logger.Error("wallet balance query failed", map[string]interface{}{"error": err})
		return nil, errors.NewWalletQueryFailedError(err)
	}

	if shortfall := Shortfall(balance, premium); shortfall.IsPositive() {
		o.logger.Info("wallet funding required", map[string]interface{}{
			"premium":   premium.String(),
			"balance":   balance.String(),
			"shortfall": shortfall.String(),
		})
		return &Result{Status: StatusFundingRequired, Premium: premium, Balance: balance, Shortfall: shortfall}, nil
	}

	quoteID, err := o.create(ctx, payload, premium)
	if err != nil {
		return nil, err
	}
	return &Result{Status: StatusCreated, QuoteID: quoteID, Premium: premium, Balance: balance, Shortfall: decimal.Zero}, nil
}

// Fund prices set, validates amount against the shortfall, saves a draft of the pending quote
// and asks the wallet for a payment-provider redirect.
func (o *Orchestrator) Fund(ctx context.Context, sessionID string, set answers.Set,
	amount decimal.Decimal) (funding *Funding, err error) {
	ctx, span := o.obs.StartSpan(ctx, "quote.fund", attribute.String("amount", amount.String()))
	defer func() { observability.EndSpan(span, err) }()

	payload, breakdown, err := o.prepare(set)
	if err != nil {
		return nil, err
	}
	premium := decimal.NewFromFloat(breakdown.Total)

	balance, err := o.wallet.Balance(ctx)
	if err != nil {
		return nil, errors.NewWalletQueryFailedError(err)
	}

	shortfall := Shortfall(balance, premium)
	minimum := shortfall
	if !minimum.IsPositive() {
		minimum = decimal.New(1, -2)
	}
	if amount.LessThan(minimum) {
		metrics.FundingRequests.WithLabelValues("rejected").Inc()
		return nil, errors.NewFundingAmountTooLowError(FormatNaira(minimum))
	}

	draft := &Draft{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Payload:   payload,
		Premium:   premium,
		CreatedAt: o.now().UTC(),
	}
	if err := o.drafts.Save(ctx, draft); err != nil {
		o.logger.Error("draft save failed", map[string]interface{}{"error": err, "draftId": draft.ID})
		return nil, errors.NewDraftStoreFailedError(err)
	}

	redirect, err := o.wallet.Fund(ctx, amount, o.callbackURL(draft.ID))
	if err != nil {
		metrics.FundingRequests.WithLabelValues("failed").Inc()
		o.logger.Error("wallet funding failed", map[string]interface{}{"error": err, "draftId": draft.ID})
		if delErr := o.drafts.Delete(context.WithoutCancel(ctx), draft.ID); delErr != nil {
			o.logger.Warn("draft cleanup failed", map[string]interface{}{"error": delErr, "draftId": draft.ID})
		}
		return nil, errors.NewFundingFailedError(err)
	}

	if redirect.Reference != "" {
		draft.Reference = redirect.Reference
		if err := o.drafts.Save(ctx, draft); err != nil {
			o.logger.Warn("draft reference update failed", map[string]interface{}{"error": err, "draftId": draft.ID})
		}
	}

	metrics.FundingRequests.WithLabelValues("redirected").Inc()
	o.logger.Info("funding redirect issued", map[string]interface{}{
		"draftId": draft.ID,
		"amount":  amount.String(),
	})

	return &Funding{DraftID: draft.ID, RedirectURL: redirect.RedirectURL, Amount: amount, Shortfall: shortfall}, nil
}

// Resume continues a drafted quote after the customer returns from the payment provider.
// The draft is deleted once the quote is created; while the wallet is still short the draft is
// kept and the shortfall reported again.
func (o *Orchestrator) Resume(ctx context.Context, draftID string) (result *Result, err error) {
	start := time.Now()
	ctx, span := o.obs.StartSpan(ctx, "quote.resume", attribute.String("draft_id", draftID))
	defer func() {
		observability.EndSpan(span, err)
		o.record(ctx, "resume", result, err, start)
	}()

	draft, err := o.drafts.Load(ctx, draftID)
	if err != nil {
		return nil, err
	}

	balance, err := o.wallet.Balance(ctx)
	if err != nil {
		return nil, errors.NewWalletQueryFailedError(err)
	}

	if shortfall := Shortfall(balance, draft.Premium); shortfall.IsPositive() {
		return &Result{
			Status:    StatusFundingRequired,
			DraftID:   draft.ID,
			Premium:   draft.Premium,
			Balance:   balance,
			Shortfall: shortfall,
		}, nil
	}

	quoteID, err := o.create(ctx, draft.Payload, draft.Premium)
	if err != nil {
		return nil, err
	}

	if err := o.drafts.Delete(ctx, draft.ID); err != nil {
		o.logger.Warn("draft delete failed", map[string]interface{}{"error": err, "draftId": draft.ID})
	}

	return &Result{Status: StatusCreated, QuoteID: quoteID, DraftID: draft.ID, Premium: draft.Premium, Balance: balance, Shortfall: decimal.Zero}, nil
}

// prepare validates every active question and rates set itself; a session's displayed
// breakdown may lag behind its answers and is never used to price a submission.
func (o *Orchestrator) prepare(set answers.Set) (Payload, rating.Breakdown, error) {
	set = generator.Prune(o.catalog, set)
	if failures := validator.ValidateSet(generator.Generate(o.catalog, set), set); len(failures) > 0 {
		ids := make([]string, len(failures))
		for i, f := range failures {
			ids[i] = f.QuestionID
		}
		o.logger.Info("submission blocked by invalid answers", map[string]interface{}{"questions": ids})
		return Payload{}, rating.Breakdown{}, errors.NewIncompleteAnswersError(ids, failures)
	}

	breakdown, err := o.engine.Quote(set)
	if err != nil {
		return Payload{}, rating.Breakdown{}, errors.NewRatingFailedError(err)
	}

	payload := BuildPayload(o.catalog, set, breakdown.Total)
	if result := validation.CreateQuote.Validate(payload); !result.Valid {
		return Payload{}, rating.Breakdown{}, errors.NewInvalidPayloadError(result.Error())
	}
	return payload, breakdown, nil
}

func (o *Orchestrator) create(ctx context.Context, payload Payload, premium decimal.Decimal) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.NewQuoteSubmissionFailedError(err)
	}

	quoteID, err := o.creator.CreateQuote(ctx, payload)
	if err != nil {
		o.logger.Error("quote creation failed", map[string]interface{}{"error": err})
		return "", errors.NewQuoteSubmissionFailedError(err)
	}

	o.logger.Info("quote created", map[string]interface{}{
		"quoteId": quoteID,
		"premium": premium.String(),
	})

	if o.events != nil {
		event := QuoteCreated{
			QuoteID:          quoteID,
			PropertyType:     payload.PropertyType,
			State:            payload.State,
			PolicyTierID:     payload.PolicyTierID,
			PaymentFrequency: payload.PaymentFrequency,
			Premium:          premium.StringFixed(2),
			CreatedAt:        o.now().UTC(),
		}
		if err := o.events.PublishQuoteCreated(context.WithoutCancel(ctx), event); err != nil {
			o.logger.Warn("quote.created publish failed", map[string]interface{}{"error": err, "quoteId": quoteID})
		}
	}
	return quoteID, nil
}

func (o *Orchestrator) callbackURL(draftID string) string {
	if o.config.CallbackURL == "" {
		return ""
	}
	u, err := url.Parse(o.config.CallbackURL)
	if err != nil {
		return fmt.Sprintf("%s?draft=%s", o.config.CallbackURL, url.QueryEscape(draftID))
	}
	q := u.Query()
	q.Set("draft", draftID)
	u.RawQuery = q.Encode()
	return u.String()
}

func (o *Orchestrator) record(ctx context.Context, op string, result *Result, err error, start time.Time) {
	outcome := "failed"
	if err == nil && result != nil {
		outcome = string(result.Status)
	}
	metrics.Submissions.WithLabelValues(outcome).Inc()
	o.obs.RecordSubmission(ctx, op+":"+outcome, time.Since(start))
}
