// internal/workers/quote/price-quote/handler.go
package pricequote

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

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

const (
	TaskType = "price-quote"
)

// Handler prices the answer set carried in the job variables. The result is advisory; the
// customer-facing premium is still the one computed by the quote session.
type Handler struct {
	config       *Config
	catalog      *catalog.Catalog
	engine       *rating.Engine
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, c *catalog.Catalog, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		catalog:      c,
		engine:       rating.NewEngine(c),
		obs:          obs,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := parseInput([]byte(job.Variables))
	if err != nil {
		h.recordFailure(err)
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.recordFailure(err)
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) recordFailure(err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
}

func parseInput(raw []byte) (*Input, error) {
	if result := validation.PriceQuoteInput.ValidateJSON(raw); !result.Valid {
		return nil, errors.NewValidationFailedError("answers", "schema", result.Error())
	}

	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, errors.NewValidationFailedError("answers", "parse", fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	set := answers.NewSet(input.Answers...)

	breakdown, err := h.engine.Quote(set)
	if err != nil {
		if stderrors.Is(err, rating.ErrInvalidInput) {
			return nil, errors.NewValidationFailedError("answers", "invalid_input", err.Error())
		}
		return nil, errors.NewRatingFailedError(err)
	}

	ignored := generator.Orphans(h.catalog, set)
	pruned := generator.Prune(h.catalog, set)
	missing := validator.ValidateSet(generator.Generate(h.catalog, pruned), pruned)

	h.obs.RecordRating(ctx, string(breakdown.Category), breakdown.FloorApplied)
	h.logger.Info("quote priced", map[string]interface{}{
		"quoteRef": input.QuoteRef,
		"category": string(breakdown.Category),
		"premium":  breakdown.Total,
		"missing":  len(missing),
		"ignored":  len(ignored),
	})

	return &Output{
		QuoteRef:     input.QuoteRef,
		Category:     string(breakdown.Category),
		Premium:      breakdown.Total,
		FloorApplied: breakdown.FloorApplied,
		Complete:     len(missing) == 0,
		Missing:      missing,
		Ignored:      ignored,
		Breakdown:    breakdown,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// Execute runs the pricing step without a job client.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
