package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/complyhq/compliance-engine/internal/application/compliance"
	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/logging"
	"github.com/complyhq/compliance-engine/pkg/errors"
	"github.com/complyhq/compliance-engine/pkg/types/common"
)

const (
	defaultUpcomingLimit = 100
	maxUpcomingLimit     = 500
)

// ObligationHandler serves obligation generation, listing and completion.
type ObligationHandler struct {
	service *compliance.Service
	// defaultWindowDays is the upcoming-deadlines look-ahead used when the
	// request does not specify one.
	defaultWindowDays int
	logger            logging.Logger
}

// NewObligationHandler wires the handler.
func NewObligationHandler(service *compliance.Service, defaultWindowDays int, logger logging.Logger) *ObligationHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ObligationHandler{
		service:           service,
		defaultWindowDays: defaultWindowDays,
		logger:            logger.Named("http.obligation"),
	}
}

// Register mounts the obligation routes on the API router.
func (h *ObligationHandler) Register(r chi.Router) {
	r.Post("/entities/{entityId}/obligations/generate", h.generate)
	r.Get("/entities/{entityId}/obligations", h.listForEntity)
	r.Get("/entities/{entityId}/costs", h.costs)
	r.Post("/obligations/{obligationId}/complete", h.complete)
	r.Get("/deadlines/upcoming", h.upcoming)
}

func (h *ObligationHandler) generate(w http.ResponseWriter, r *http.Request) {
	entityID, err := parseID(r, "entityId")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	// Zero means the current year; an explicit year pre-generates that
	// year's obligations.
	asOfYear := 0
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := parsePositive(v)
		if err != nil {
			writeError(w, h.logger, errors.InvalidParam("year must be a positive integer"))
			return
		}
		asOfYear = n
	}

	report, err := h.service.GenerateForEntity(r.Context(), entityID, asOfYear)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, common.NewSuccessResponse(report))
}

func (h *ObligationHandler) listForEntity(w http.ResponseWriter, r *http.Request) {
	entityID, err := parseID(r, "entityId")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	obs, err := h.service.ObligationsForEntity(r.Context(), entityID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, common.NewSuccessResponse(obs))
}

func (h *ObligationHandler) costs(w http.ResponseWriter, r *http.Request) {
	entityID, err := parseID(r, "entityId")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	report, err := h.service.EstimatedCosts(r.Context(), entityID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, common.NewSuccessResponse(report))
}

func (h *ObligationHandler) complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "obligationId")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	o, err := h.service.CompleteObligation(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, common.NewSuccessResponse(o))
}

func (h *ObligationHandler) upcoming(w http.ResponseWriter, r *http.Request) {
	windowDays := h.defaultWindowDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := parsePositive(v)
		if err != nil {
			writeError(w, h.logger, errors.InvalidParam("days must be a positive integer"))
			return
		}
		windowDays = n
	}

	limit := defaultUpcomingLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := parsePositive(v)
		if err != nil {
			writeError(w, h.logger, errors.InvalidParam("limit must be a positive integer"))
			return
		}
		limit = n
	}
	if limit > maxUpcomingLimit {
		limit = maxUpcomingLimit
	}

	obs, err := h.service.UpcomingDeadlines(r.Context(), windowDays, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, common.NewSuccessResponse(obs))
}
