package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/complyhq/compliance-engine/internal/domain/entity"
	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/logging"
	"github.com/complyhq/compliance-engine/pkg/errors"
	"github.com/complyhq/compliance-engine/pkg/types/common"
)

// EntityHandler serves the entity management endpoints.
type EntityHandler struct {
	repo   entity.Repository
	logger logging.Logger
}

// NewEntityHandler wires the handler.
func NewEntityHandler(repo entity.Repository, logger logging.Logger) *EntityHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &EntityHandler{repo: repo, logger: logger.Named("http.entity")}
}

// Register mounts the entity routes on the API router.
func (h *EntityHandler) Register(r chi.Router) {
	r.Post("/entities", h.create)
	r.Get("/entities", h.list)
	r.Get("/entities/{entityId}", h.get)
}

type createEntityRequest struct {
	Name          string   `json:"name"`
	Jurisdiction  string   `json:"jurisdiction"`
	FormationDate *string  `json:"formation_date,omitempty"`
	IndustryTags  []string `json:"industry_tags,omitempty"`
}

func (h *EntityHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createEntityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	e := &entity.Entity{
		ID:           common.NewID(),
		Name:         req.Name,
		Jurisdiction: req.Jurisdiction,
		IndustryTags: req.IndustryTags,
	}
	if req.FormationDate != nil {
		formed, err := time.Parse("2006-01-02", *req.FormationDate)
		if err != nil {
			writeError(w, h.logger, errors.InvalidParam("formation_date must be YYYY-MM-DD"))
			return
		}
		e.FormationDate = &formed
	}

	if err := e.Validate(); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.repo.Create(r.Context(), e); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, common.NewSuccessResponse(e))
}

func (h *EntityHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "entityId")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	e, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, common.NewSuccessResponse(e))
}

func (h *EntityHandler) list(w http.ResponseWriter, r *http.Request) {
	p := common.Pagination{Page: 1, PageSize: 50}
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := parsePositive(v)
		if err != nil {
			writeError(w, h.logger, errors.InvalidParam("page must be a positive integer"))
			return
		}
		p.Page = n
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		n, err := parsePositive(v)
		if err != nil {
			writeError(w, h.logger, errors.InvalidParam("page_size must be a positive integer"))
			return
		}
		p.PageSize = n
	}
	if err := p.Validate(); err != nil {
		writeError(w, h.logger, errors.InvalidParam(err.Error()))
		return
	}

	es, err := h.repo.List(r.Context(), p)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, common.NewSuccessResponse(es))
}
