// Package handlers contains the HTTP handlers for croppredict: the HTML form
// pages and the JSON prediction API. Each handler declares the narrow service
// interface it needs and registers its own routes.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"croppredict/internal/core"
	"croppredict/internal/types"
)

// PredictionService runs a reading through the dispatcher.
type PredictionService interface {
	Predict(ctx context.Context, r types.SoilReading) (types.Outcome, error)
	Ready() bool
}

// CategoryLister exposes the loaded label to category mapping.
type CategoryLister interface {
	All() map[string]string
}

// PredictionRequest is the body of POST /v1/predictions. Nutrients may be
// omitted and then count as not filled in; the climate fields are required.
type PredictionRequest struct {
	Nitrogen    *float64 `json:"nitrogen" validate:"omitempty,gte=0,lte=200"`
	Phosphorus  *float64 `json:"phosphorus" validate:"omitempty,gte=0,lte=200"`
	Potassium   *float64 `json:"potassium" validate:"omitempty,gte=0,lte=200"`
	Temperature *float64 `json:"temperature" validate:"required,gte=-10,lte=60"`
	Humidity    *float64 `json:"humidity" validate:"required,gte=0,lte=100"`
	PH          *float64 `json:"ph" validate:"required,gte=0,lte=14"`
}

// Reading converts the request into a SoilReading. Call it only after
// validation has passed.
func (p PredictionRequest) Reading() types.SoilReading {
	return types.SoilReading{
		Nitrogen:    deref(p.Nitrogen),
		Phosphorus:  deref(p.Phosphorus),
		Potassium:   deref(p.Potassium),
		Temperature: deref(p.Temperature),
		Humidity:    deref(p.Humidity),
		PH:          deref(p.PH),
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// CategoriesResponse is the body of GET /v1/categories.
type CategoriesResponse struct {
	Categories map[string]string `json:"categories"`
	Count      int               `json:"count"`
	ModelReady bool              `json:"model_ready"`
}

// PredictionHandler serves the JSON prediction API.
type PredictionHandler struct {
	service    PredictionService
	categories CategoryLister
	validator  *core.Validator
	logger     *slog.Logger
}

// NewPredictionHandler creates a PredictionHandler. categories may be nil
// when artifacts failed to load.
func NewPredictionHandler(svc PredictionService, categories CategoryLister, v *core.Validator, l *slog.Logger) *PredictionHandler {
	if l == nil {
		l = slog.Default()
	}
	return &PredictionHandler{
		service:    svc,
		categories: categories,
		validator:  v,
		logger:     l,
	}
}

// RegisterRoutes mounts the API under the router it is given (normally /v1).
func (h *PredictionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/predictions", h.HandlePredict)
	r.Get("/categories", h.HandleCategories)
}

// HandlePredict handles POST /v1/predictions.
//
// The outcome is always returned in the data envelope; the status tells the
// kinds apart: 200 prediction, 422 missing fields or plausibility warnings,
// 503 model unavailable.
func (h *PredictionHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictionRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	outcome, err := h.service.Predict(r.Context(), req.Reading())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.Envelope(w, r, outcomeStatus(outcome.Kind), outcome)
}

// HandleCategories handles GET /v1/categories.
func (h *PredictionHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	var all map[string]string
	if h.categories != nil {
		all = h.categories.All()
	}
	if all == nil {
		all = map[string]string{}
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	core.Envelope(w, r, http.StatusOK, CategoriesResponse{
		Categories: all,
		Count:      len(all),
		ModelReady: h.service.Ready(),
	})
}

// outcomeStatus serves each rejected outcome with the status of its error
// code.
func outcomeStatus(kind types.OutcomeKind) int {
	switch kind {
	case types.OutcomePrediction:
		return http.StatusOK
	case types.OutcomeMissingFields:
		return types.ErrCodeUnprocessableIncomplete.HTTPStatus()
	case types.OutcomeValidationWarnings:
		return types.ErrCodeUnprocessableWarning.HTTPStatus()
	case types.OutcomeModelUnavailable:
		return types.ErrCodeModelUnavailable.HTTPStatus()
	default:
		return types.ErrCodeInternalUnexpected.HTTPStatus()
	}
}
