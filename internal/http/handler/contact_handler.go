package handler

import (
	"encoding/json"
	"net/http"

	"github.com/kamtrack/lead-api/internal/domain"
	"github.com/kamtrack/lead-api/internal/service"
	"go.uber.org/zap"
)

type ContactHandler struct {
	contactService *service.ContactService
	logger         *zap.Logger
}

func NewContactHandler(contactService *service.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger,
	}
}

// Add godoc
// @Summary Add contact
// @Description Add a contact to the lead. The first contact becomes primary; marking one primary demotes the previous primary.
// @Tags Contacts
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param contact body domain.CreateContactRequest true "Contact to add"
// @Success 201 {object} domain.ContactDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/contacts [post]
func (h *ContactHandler) Add(w http.ResponseWriter, r *http.Request) {
	leadID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req domain.CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	contact, err := h.contactService.Add(r.Context(), leadID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, contact)
}

// List godoc
// @Summary List contacts
// @Description Get the lead's contacts, primary first
// @Tags Contacts
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {array} domain.ContactDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/contacts [get]
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	leadID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	contacts, err := h.contactService.ListByLead(r.Context(), leadID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, contacts)
}

// SetPrimary godoc
// @Summary Set primary contact
// @Description Promote a contact to primary, demoting the previous one
// @Tags Contacts
// @Produce json
// @Param id path string true "Lead ID"
// @Param contactId path string true "Contact ID"
// @Success 200 {object} domain.ContactDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/contacts/{contactId}/primary [put]
func (h *ContactHandler) SetPrimary(w http.ResponseWriter, r *http.Request) {
	leadID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	contactID, ok := parseUUIDParam(w, r, "contactId")
	if !ok {
		return
	}

	contact, err := h.contactService.SetPrimary(r.Context(), leadID, contactID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, contact)
}

// Delete godoc
// @Summary Delete contact
// @Description Remove a contact from the lead
// @Tags Contacts
// @Param id path string true "Lead ID"
// @Param contactId path string true "Contact ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/contacts/{contactId} [delete]
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	leadID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	contactID, ok := parseUUIDParam(w, r, "contactId")
	if !ok {
		return
	}

	if err := h.contactService.Delete(r.Context(), leadID, contactID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
