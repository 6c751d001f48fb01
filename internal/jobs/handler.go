package jobs

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/openduty/console/internal/domain"
	"github.com/openduty/console/internal/pkg/httputil"
)

var errorMappings = []httputil.ErrorMapping{
	{Error: ErrJobNotFound, Status: http.StatusNotFound, Message: "job not found"},
	{Error: ErrInvalidJobKind, Status: http.StatusBadRequest},
	{Error: ErrInvalidPayload, Status: http.StatusBadRequest},
}

// Handler handles HTTP requests for the jobs module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new jobs handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers job routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Submit)
		r.Get("/{id}", h.Get)
	})
}

// SubmitRequest represents request body for submitting a job.
type SubmitRequest struct {
	Kind    string               `json:"kind" validate:"required"`
	Payload SubmitPayloadRequest `json:"payload" validate:"required"`
}

// SubmitPayloadRequest is the payload section of a job submission.
type SubmitPayloadRequest struct {
	IncidentID  string `json:"incidentId" validate:"required"`
	StepID      string `json:"stepId"`
	RunbookName string `json:"runbookName"`
	ActionType  string `json:"actionType" validate:"required,oneof=notify http"`
	Target      string `json:"target" validate:"required"`
}

// Submit handles POST /jobs.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	job, err := h.service.Submit(r.Context(), SubmitInput{
		Kind: domain.JobKind(req.Kind),
		Payload: domain.JobPayload{
			IncidentID:  req.Payload.IncidentID,
			StepID:      req.Payload.StepID,
			RunbookName: req.Payload.RunbookName,
			ActionType:  domain.StepActionType(req.Payload.ActionType),
			Target:      req.Payload.Target,
		},
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, job)
}

// List handles GET /jobs.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	result, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, result)
}

// Get handles GET /jobs/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, job)
}
