package timeline

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/openduty/console/internal/domain"
	"github.com/openduty/console/internal/pkg/httputil"
)

// Handler handles HTTP requests for incident timelines.
type Handler struct {
	repo      Repository
	validator *validator.Validate
}

// NewHandler creates a new timeline handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{
		repo:      repo,
		validator: validator.New(),
	}
}

// RegisterRoutes registers timeline routes under /incidents/{id}.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/incidents/{id}/timeline", h.List)
	r.Post("/incidents/{id}/timeline", h.Append)
}

// AppendRequest represents request body for a manual timeline entry.
type AppendRequest struct {
	Kind    string `json:"kind" validate:"omitempty,oneof=NOTE STATUS_CHANGE RUNBOOK_ACTION ALERT"`
	Content string `json:"content" validate:"required,max=4000"`
	Author  string `json:"author" validate:"required,max=200"`
}

// List handles GET /incidents/{id}/timeline. Events are returned oldest
// first; consumers wanting reverse-chronological display invert this.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.repo.ListByIncident(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.Success(w, http.StatusOK, events)
}

// Append handles POST /incidents/{id}/timeline.
func (h *Handler) Append(w http.ResponseWriter, r *http.Request) {
	var req AppendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	kind := domain.TimelineEventKind(req.Kind)
	if req.Kind == "" {
		kind = domain.TimelineEventNote
	}

	event := &domain.TimelineEvent{
		IncidentID: chi.URLParam(r, "id"),
		Kind:       kind,
		Content:    req.Content,
		Author:     req.Author,
	}

	if err := h.repo.Append(r.Context(), event); err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.Success(w, http.StatusCreated, event)
}
