package incidents

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/openduty/console/internal/domain"
	"github.com/openduty/console/internal/pkg/httputil"
)

var errorMappings = []httputil.ErrorMapping{
	{Error: ErrIncidentNotFound, Status: http.StatusNotFound, Message: "incident not found"},
	{Error: ErrInvalidSeverity, Status: http.StatusBadRequest},
	{Error: ErrInvalidStatus, Status: http.StatusBadRequest},
	{Error: ErrIllegalTransition, Status: http.StatusUnprocessableEntity},
}

// Handler handles HTTP requests for the incidents module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers incident routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/incidents", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Declare)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.UpdateStatus)
	})
}

// DeclareRequest represents request body for declaring an incident.
type DeclareRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=4000"`
	Severity    string  `json:"severity" validate:"required,oneof=SEV1 SEV2 SEV3 SEV4"`
	Commander   string  `json:"commander" validate:"required,max=200"`
	TeamID      *string `json:"team_id"`
}

// UpdateStatusRequest represents request body for a status transition.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// IncidentResponse is the API representation of an incident, including the
// derived duration.
type IncidentResponse struct {
	domain.Incident
	DurationSeconds int64 `json:"duration_seconds"`
}

func toResponse(incident *domain.Incident) IncidentResponse {
	return IncidentResponse{
		Incident:        *incident,
		DurationSeconds: int64(incident.Duration(time.Now()).Seconds()),
	}
}

// Declare handles POST /incidents.
func (h *Handler) Declare(w http.ResponseWriter, r *http.Request) {
	var req DeclareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.Declare(r.Context(), DeclareInput{
		Title:       req.Title,
		Description: req.Description,
		Severity:    domain.IncidentSeverity(req.Severity),
		Commander:   req.Commander,
		TeamID:      req.TeamID,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, toResponse(incident))
}

// List handles GET /incidents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := Filters{}

	if teamID := r.URL.Query().Get("team_id"); teamID != "" {
		filters.TeamID = &teamID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.IncidentStatus(status)
		if !s.IsValid() {
			httputil.Error(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		filters.Status = &s
	}

	result, err := h.service.List(r.Context(), filters)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	responses := make([]IncidentResponse, 0, len(result))
	for i := range result {
		responses = append(responses, toResponse(&result[i]))
	}

	httputil.Success(w, http.StatusOK, responses)
}

// Get handles GET /incidents/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	incident, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, toResponse(incident))
}

// UpdateStatus handles PATCH /incidents/{id}.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), domain.IncidentStatus(req.Status))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, toResponse(incident))
}
