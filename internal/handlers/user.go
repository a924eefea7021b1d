package handlers

import (
	"errors"
	"net/http"
	"strings"

	"photo-social-backend/internal/middleware"
	"photo-social-backend/internal/models"
	"photo-social-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService       *services.UserService
	permissionService *services.PermissionService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, permissionService *services.PermissionService) *UserHandler {
	return &UserHandler{
		userService:       userService,
		permissionService: permissionService,
	}
}

// CreateGhostRequest binds a new ghost user to a device
type CreateGhostRequest struct {
	DeviceID   string            `json:"device_id"`
	DeviceType models.DeviceType `json:"device_type"`
}

// CredentialsRequest carries an email and password
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpgradeRequest turns a ghost user into a full account
type UpgradeRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// DisplayNameRequest renames a user
type DisplayNameRequest struct {
	DisplayName string `json:"display_name"`
}

// CreateGhost handles POST /api/v1/users/ghost
func (h *UserHandler) CreateGhost(w http.ResponseWriter, r *http.Request) {
	var req CreateGhostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DeviceID == "" {
		respondError(w, "device_id is required", http.StatusBadRequest)
		return
	}
	if !req.DeviceType.Valid() {
		respondError(w, "device_type must be android or ios", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	user, err := h.userService.CreateGhost(ctx, req.DeviceID, req.DeviceType)
	if err != nil {
		respondServiceError(w, err, "Failed to create ghost user", map[string]any{"device_type": req.DeviceType})
		return
	}

	token, err := h.userService.IssueToken(ctx, user)
	if err != nil {
		respondServiceError(w, err, "Failed to issue token", map[string]any{"user_id": user.ID})
		return
	}

	respondJSON(w, http.StatusCreated, token)
}

// Register handles POST /api/v1/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validCredentials(w, req.Email, req.Password) {
		return
	}

	token, err := h.userService.CreateFull(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err, "Failed to create user", nil)
		return
	}

	log.Info().Str("user_id", token.User.ID).Msg("User registered")
	respondJSON(w, http.StatusCreated, token)
}

// Login handles POST /api/v1/auth/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validCredentials(w, req.Email, req.Password) {
		return
	}

	token, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err, "Failed to authenticate", nil)
		return
	}

	respondJSON(w, http.StatusOK, token)
}

// GetUser handles GET /api/v1/users/{user_id}. Only the user and admins
// see the full record; everyone else gets the public profile.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	userID := chi.URLParam(r, "user_id")
	fields := map[string]any{"user_id": userID, "actor_id": actorID}

	user, err := h.userService.Get(ctx, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to get user", fields)
		return
	}

	err = h.permissionService.CanActOnUser(ctx, actorID, userID)
	if err != nil && !errors.Is(err, services.ErrPermissionDenied) {
		respondServiceError(w, err, "Failed to get user", fields)
		return
	}

	respondJSON(w, http.StatusOK, userView(user, err == nil))
}

func userView(user *models.User, full bool) any {
	if full {
		return user
	}
	return user.Public()
}

// Upgrade handles POST /api/v1/users/{user_id}/upgrade
func (h *UserHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	var req UpgradeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validCredentials(w, req.Email, req.Password) {
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		respondError(w, "display_name is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	userID := chi.URLParam(r, "user_id")
	fields := map[string]any{"user_id": userID, "actor_id": actorID}

	if err := h.permissionService.CanActOnUser(ctx, actorID, userID); err != nil {
		respondServiceError(w, err, "Upgrade not allowed", fields)
		return
	}

	user, err := h.userService.UpgradeGhost(ctx, userID, req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondServiceError(w, err, "Failed to upgrade user", fields)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UpdateDisplayName handles PATCH /api/v1/users/{user_id}/display-name
func (h *UserHandler) UpdateDisplayName(w http.ResponseWriter, r *http.Request) {
	var req DisplayNameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		respondError(w, "display_name is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	userID := chi.URLParam(r, "user_id")
	fields := map[string]any{"user_id": userID, "actor_id": actorID}

	if err := h.permissionService.CanActOnUser(ctx, actorID, userID); err != nil {
		respondServiceError(w, err, "Rename not allowed", fields)
		return
	}
	if err := h.userService.UpdateDisplayName(ctx, userID, req.DisplayName); err != nil {
		respondServiceError(w, err, "Failed to update display name", fields)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser handles DELETE /api/v1/users/{user_id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	userID := chi.URLParam(r, "user_id")
	fields := map[string]any{"user_id": userID, "actor_id": actorID}

	if err := h.permissionService.CanActOnUser(ctx, actorID, userID); err != nil {
		respondServiceError(w, err, "Delete not allowed", fields)
		return
	}
	if err := h.userService.Delete(ctx, userID); err != nil {
		respondServiceError(w, err, "Failed to delete user", fields)
		return
	}

	log.Info().Str("user_id", userID).Str("actor_id", actorID).Msg("User deleted")
	w.WriteHeader(http.StatusNoContent)
}

func validCredentials(w http.ResponseWriter, email, password string) bool {
	if !strings.Contains(email, "@") {
		respondError(w, "a valid email is required", http.StatusBadRequest)
		return false
	}
	if password == "" {
		respondError(w, "password is required", http.StatusBadRequest)
		return false
	}
	return true
}
