package handler

import (
	"encoding/json"
	"net/http"

	"github.com/kamtrack/lead-api/internal/domain"
	"github.com/kamtrack/lead-api/internal/service"
	"go.uber.org/zap"
)

type InteractionHandler struct {
	interactionService *service.InteractionService
	logger             *zap.Logger
}

func NewInteractionHandler(interactionService *service.InteractionService, logger *zap.Logger) *InteractionHandler {
	return &InteractionHandler{
		interactionService: interactionService,
		logger:             logger,
	}
}

// Record godoc
// @Summary Record interaction
// @Description Append an interaction to the lead's timeline. A CALL reschedules the next call; an ORDER refreshes the lead's rolling order metrics. All of it happens atomically.
// @Tags Interactions
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param interaction body domain.RecordInteractionRequest true "Interaction to record"
// @Success 201 {object} domain.InteractionDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/interactions [post]
func (h *InteractionHandler) Record(w http.ResponseWriter, r *http.Request) {
	leadID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req domain.RecordInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	interaction, err := h.interactionService.Record(r.Context(), leadID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, interaction)
}

// List godoc
// @Summary List interactions
// @Description Get the lead's timeline, newest first
// @Tags Interactions
// @Produce json
// @Param id path string true "Lead ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.InteractionDTO}
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/interactions [get]
func (h *InteractionHandler) List(w http.ResponseWriter, r *http.Request) {
	leadID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	page, pageSize := parsePagination(r)
	interactions, total, err := h.interactionService.ListByLead(r.Context(), leadID, page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, paginated(interactions, total, page, pageSize))
}
