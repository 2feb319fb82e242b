package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/kamtrack/lead-api/internal/domain"
	"github.com/kamtrack/lead-api/internal/service"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService      *service.UserService
	transferService  *service.TransferService
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewUserHandler(
	userService *service.UserService,
	transferService *service.TransferService,
	dashboardService *service.DashboardService,
	logger *zap.Logger,
) *UserHandler {
	return &UserHandler{
		userService:      userService,
		transferService:  transferService,
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// Login godoc
// @Summary Login
// @Description Exchange credentials for a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.LoginResponse
// @Failure 401 {object} domain.APIError
// @Router /auth/login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Create godoc
// @Summary Create user
// @Description Create a KAM or admin account
// @Tags Users
// @Accept json
// @Produce json
// @Param user body domain.CreateUserRequest true "User to create"
// @Success 201 {object} domain.UserDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.userService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// List godoc
// @Summary List users
// @Description Get paginated users
// @Tags Users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.UserDTO}
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	users, total, err := h.userService.List(r.Context(), page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, paginated(users, total, page, pageSize))
}

// Get godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} domain.UserDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Update godoc
// @Summary Update user
// @Description Update profile fields; users may update themselves, admins anyone
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param user body domain.UpdateUserRequest true "Fields to update"
// @Success 200 {object} domain.UserDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /users/{id} [patch]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.userService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Deactivate godoc
// @Summary Deactivate user
// @Description Disable an account. Fails while the user still owns leads.
// @Tags Users
// @Param id path string true "User ID"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.userService.Deactivate(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TransferLeads godoc
// @Summary Transfer all leads
// @Description Move every lead from one KAM to another in a single transaction
// @Tags Users
// @Produce json
// @Param id path string true "Source KAM ID"
// @Param toKamId query string true "Target KAM ID"
// @Success 200 {array} domain.LeadDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /users/{id}/transfer-leads [post]
func (h *UserHandler) TransferLeads(w http.ResponseWriter, r *http.Request) {
	fromID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	toID, err := uuid.Parse(r.URL.Query().Get("toKamId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid toKamId parameter")
		return
	}

	leads, err := h.transferService.TransferAll(r.Context(), fromID, toID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, leads)
}

// Stats godoc
// @Summary User activity stats
// @Description Get the user's 30-day activity summary
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} domain.KamStats
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /users/{id}/stats [get]
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	stats, err := h.dashboardService.GetKamStats(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
