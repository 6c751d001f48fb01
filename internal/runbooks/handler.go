package runbooks

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/openduty/console/internal/domain"
	"github.com/openduty/console/internal/pkg/httputil"
)

var errorMappings = []httputil.ErrorMapping{
	{Error: ErrRunbookNotFound, Status: http.StatusNotFound, Message: "runbook not found"},
	{Error: ErrStepNotFound, Status: http.StatusNotFound, Message: "runbook step not found"},
	{Error: ErrInvalidStepType, Status: http.StatusBadRequest},
}

// Handler handles HTTP requests for the runbooks module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new runbooks handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers runbook routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/runbooks", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Post("/steps/{stepID}/execute", h.ExecuteStep)
		})
	})
}

// StepRequest represents one step in a create or update request.
type StepRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Type        string `json:"type" validate:"required,oneof=manual notify http"`
	Target      string `json:"target"`
	AutoExecute bool   `json:"auto_execute"`
}

// CreateRequest represents request body for creating a runbook.
type CreateRequest struct {
	Name  string        `json:"name" validate:"required"`
	Steps []StepRequest `json:"steps" validate:"dive"`
}

// Create handles POST /runbooks.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	runbook, err := h.service.Create(r.Context(), CreateInput{
		Name:  req.Name,
		Steps: stepInputs(req.Steps),
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, runbook)
}

// UpdateRequest represents request body for updating a runbook. The step
// list replaces the runbook's existing steps.
type UpdateRequest struct {
	Name  string        `json:"name" validate:"required"`
	Steps []StepRequest `json:"steps" validate:"dive"`
}

// Update handles PUT /runbooks/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	runbook, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), UpdateInput{
		Name:  req.Name,
		Steps: stepInputs(req.Steps),
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, runbook)
}

// List handles GET /runbooks.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, result)
}

// Get handles GET /runbooks/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	runbook, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, runbook)
}

// Delete handles DELETE /runbooks/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExecuteStepRequest represents request body for executing a runbook step.
type ExecuteStepRequest struct {
	IncidentID string `json:"incident_id" validate:"required"`
	Author     string `json:"author"`
}

// ExecuteStep handles POST /runbooks/{id}/steps/{stepID}/execute.
func (h *Handler) ExecuteStep(w http.ResponseWriter, r *http.Request) {
	var req ExecuteStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	result, err := h.service.ExecuteStep(r.Context(), ExecuteStepInput{
		RunbookID:  chi.URLParam(r, "id"),
		StepID:     chi.URLParam(r, "stepID"),
		IncidentID: req.IncidentID,
		Author:     req.Author,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	status := http.StatusOK
	if result.Job != nil {
		status = http.StatusAccepted
	}
	httputil.Success(w, status, result)
}

func stepInputs(reqs []StepRequest) []StepInput {
	inputs := make([]StepInput, 0, len(reqs))
	for _, s := range reqs {
		inputs = append(inputs, StepInput{
			Title:       s.Title,
			Description: s.Description,
			Type:        domain.StepType(s.Type),
			Target:      s.Target,
			AutoExecute: s.AutoExecute,
		})
	}
	return inputs
}
