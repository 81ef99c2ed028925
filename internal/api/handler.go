// Package api exposes quote sessions over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"property-quote/internal/common/logger"
	"property-quote/internal/quote/answers"
	"property-quote/internal/quote/catalog"
	"property-quote/internal/quote/session"
	"property-quote/internal/quote/submission"
	"property-quote/internal/quote/validator"
	"property-quote/internal/referencedata"
)

// Submitter is the submission orchestrator.
type Submitter interface {
	Submit(ctx context.Context, set answers.Set) (*submission.Result, error)
	Fund(ctx context.Context, sessionID string, set answers.Set, amount decimal.Decimal) (*submission.Funding, error)
	Resume(ctx context.Context, draftID string) (*submission.Result, error)
}

// ReferenceData serves the lookup lists.
type ReferenceData interface {
	States(ctx context.Context) ([]referencedata.State, referencedata.Source)
	LGAs(ctx context.Context, state string) ([]referencedata.LGA, referencedata.Source)
	PropertyTypes(ctx context.Context) ([]referencedata.PropertyType, referencedata.Source)
	Tiers(ctx context.Context) ([]referencedata.Tier, referencedata.Source)
	Refresh(ctx context.Context) (*catalog.Catalog, error)
}

// HealthCheck reports on one dependency.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	sessions  *session.Registry
	submitter Submitter
	reference ReferenceData
	checks    map[string]HealthCheck
	logger    logger.Logger
}

func NewHandler(sessions *session.Registry, submitter Submitter, reference ReferenceData,
	checks map[string]HealthCheck, log logger.Logger) *Handler {
	return &Handler{
		sessions:  sessions,
		submitter: submitter,
		reference: reference,
		checks:    checks,
		logger:    log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// ==========================
// Sessions
// ==========================

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()

	var req struct {
		Answers answers.Set `json:"answers"`
	}
	if err := readJSON(r, &req); err != nil {
		h.sessions.Delete(s.ID)
		writeError(w, err)
		return
	}
	if req.Answers.Len() > 0 {
		s.Replace(req.Answers)
	}

	h.logger.Info("session created", map[string]interface{}{"sessionId": s.ID})
	writeJSON(w, http.StatusCreated, s.View())
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.sessions.Delete(s.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": s.Questions()})
}

type answerResponse struct {
	Validation validator.Result `json:"validation"`
	Session    session.View     `json:"session"`
}

func (h *Handler) PutAnswer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Value answers.Value `json:"value"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.Answer(chi.URLParam(r, "questionId"), req.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Validation: result, Session: s.View()})
}

func (h *Handler) DeleteAnswer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Clear(chi.URLParam(r, "questionId"))
	writeJSON(w, http.StatusOK, s.View())
}

func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if _, err := s.Next(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Back()
	writeJSON(w, http.StatusOK, s.View())
}

func (h *Handler) Premium(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	b, err := s.Premium()
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]interface{}{
		"premium":     b,
		"calculating": s.Calculating(),
	}
	if ratingErr := s.RatingError(); ratingErr != nil {
		resp["ratingError"] = ratingErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	outcome := s.Recalculate()
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"outcome": outcome,
		"session": s.View(),
	})
}

// ==========================
// Submission
// ==========================

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	result, err := h.submitter.Submit(r.Context(), s.Answers())
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if result.Status == submission.StatusCreated {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

func (h *Handler) Fund(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	funding, err := h.submitter.Fund(r.Context(), s.ID, s.Answers(), req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, funding)
}

func (h *Handler) ResumeDraft(w http.ResponseWriter, r *http.Request) {
	result, err := h.submitter.Resume(r.Context(), chi.URLParam(r, "draftId"))
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if result.Status == submission.StatusCreated {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

// ==========================
// Reference data
// ==========================

func (h *Handler) States(w http.ResponseWriter, r *http.Request) {
	states, src := h.reference.States(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": states, "source": src})
}

func (h *Handler) LGAs(w http.ResponseWriter, r *http.Request) {
	lgas, src := h.reference.LGAs(r.Context(), chi.URLParam(r, "state"))
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": lgas, "source": src})
}

func (h *Handler) PropertyTypes(w http.ResponseWriter, r *http.Request) {
	types, src := h.reference.PropertyTypes(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": types, "source": src})
}

func (h *Handler) Tiers(w http.ResponseWriter, r *http.Request) {
	tiers, src := h.reference.Tiers(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": tiers, "source": src})
}

// RefreshReference reloads the lookup lists; sessions created afterwards use the new catalog.
func (h *Handler) RefreshReference(w http.ResponseWriter, r *http.Request) {
	c, err := h.reference.Refresh(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.sessions.SetCatalog(c)
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "refreshed"})
}

// ==========================
// Health
// ==========================

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	writeJSON(w, status, map[string]interface{}{
		"status":   overall,
		"checks":   results,
		"sessions": h.sessions.Len(),
	})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return s, true
}
