package notifications

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/openduty/console/internal/domain"
	"github.com/openduty/console/internal/pkg/httputil"
)

var errorMappings = []httputil.ErrorMapping{
	{Error: ErrChannelNotFound, Status: http.StatusNotFound, Message: "notification channel not found"},
	{Error: ErrInvalidChannelType, Status: http.StatusBadRequest},
}

// Handler handles HTTP requests for the notifications module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new notifications handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers channel registry routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/channels", func(r chi.Router) {
		r.Get("/", h.ListChannels)
		r.Post("/", h.CreateChannel)
		r.Get("/{id}", h.GetChannel)
		r.Patch("/{id}", h.UpdateChannel)
		r.Delete("/{id}", h.DeleteChannel)
	})
}

// CreateChannelRequest represents request body for creating a channel.
type CreateChannelRequest struct {
	Type    string            `json:"type" validate:"required,oneof=email matrix mattermost webhook"`
	Name    string            `json:"name" validate:"required,max=200"`
	Config  map[string]string `json:"config"`
	Enabled bool              `json:"enabled"`
}

// UpdateChannelRequest represents request body for updating a channel.
type UpdateChannelRequest struct {
	Name    *string           `json:"name" validate:"omitempty,max=200"`
	Config  map[string]string `json:"config"`
	Enabled *bool             `json:"enabled"`
}

// ListChannels handles GET /channels.
func (h *Handler) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.service.ListChannels(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, channels)
}

// CreateChannel handles POST /channels.
func (h *Handler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	var req CreateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	channel, err := h.service.CreateChannel(r.Context(), CreateChannelInput{
		Type:    domain.ChannelType(req.Type),
		Name:    req.Name,
		Config:  req.Config,
		Enabled: req.Enabled,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, channel)
}

// GetChannel handles GET /channels/{id}.
func (h *Handler) GetChannel(w http.ResponseWriter, r *http.Request) {
	channel, err := h.service.GetChannel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, channel)
}

// UpdateChannel handles PATCH /channels/{id}.
func (h *Handler) UpdateChannel(w http.ResponseWriter, r *http.Request) {
	var req UpdateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	channel, err := h.service.UpdateChannel(r.Context(), chi.URLParam(r, "id"), UpdateChannelInput{
		Name:    req.Name,
		Config:  req.Config,
		Enabled: req.Enabled,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, channel)
}

// DeleteChannel handles DELETE /channels/{id}.
func (h *Handler) DeleteChannel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteChannel(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.JSON(w, http.StatusNoContent, nil)
}
