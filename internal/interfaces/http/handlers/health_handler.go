package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/complyhq/compliance-engine/internal/application/compliance"
	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/logging"
	"github.com/complyhq/compliance-engine/pkg/errors"
	"github.com/complyhq/compliance-engine/pkg/types/common"
)

const maxPortfolioSize = 200

// HealthScoreHandler serves the entity and portfolio health endpoints.
type HealthScoreHandler struct {
	service *compliance.Service
	logger  logging.Logger
}

// NewHealthScoreHandler wires the handler.
func NewHealthScoreHandler(service *compliance.Service, logger logging.Logger) *HealthScoreHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &HealthScoreHandler{service: service, logger: logger.Named("http.health")}
}

// Register mounts the health score routes on the API router.
func (h *HealthScoreHandler) Register(r chi.Router) {
	r.Get("/entities/{entityId}/health", h.entityHealth)
	r.Post("/portfolio/health", h.portfolioHealth)
}

func (h *HealthScoreHandler) entityHealth(w http.ResponseWriter, r *http.Request) {
	entityID, err := parseID(r, "entityId")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	report, err := h.service.EntityHealth(r.Context(), entityID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, common.NewSuccessResponse(report))
}

type portfolioRequest struct {
	EntityIDs []common.ID `json:"entity_ids"`
}

func (h *HealthScoreHandler) portfolioHealth(w http.ResponseWriter, r *http.Request) {
	var req portfolioRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if len(req.EntityIDs) > maxPortfolioSize {
		writeError(w, h.logger, errors.InvalidParam("portfolio exceeds the maximum of 200 entities"))
		return
	}
	for _, id := range req.EntityIDs {
		if err := id.Validate(); err != nil {
			writeError(w, h.logger, errors.InvalidParam("entity_ids contains an invalid UUID"))
			return
		}
	}

	report, err := h.service.PortfolioHealth(r.Context(), req.EntityIDs)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, common.NewSuccessResponse(report))
}
