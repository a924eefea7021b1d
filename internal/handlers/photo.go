package handlers

import (
	"net/http"

	"photo-social-backend/internal/middleware"
	"photo-social-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	photoService      *services.PhotoService
	permissionService *services.PermissionService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService *services.PhotoService, permissionService *services.PermissionService) *PhotoHandler {
	return &PhotoHandler{
		photoService:      photoService,
		permissionService: permissionService,
	}
}

// OrderRequest moves a photo within its post
type OrderRequest struct {
	Order *int `json:"order"`
}

// ListPhotos handles GET /api/v1/posts/{post_id}/photos
func (h *PhotoHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	postID := chi.URLParam(r, "post_id")
	fields := map[string]any{"post_id": postID, "actor_id": actorID}

	if err := h.permissionService.CanViewPost(ctx, actorID, postID); err != nil {
		respondServiceError(w, err, "Post not visible", fields)
		return
	}

	photos, err := h.photoService.ListByPost(ctx, postID)
	if err != nil {
		respondServiceError(w, err, "Failed to get photos", fields)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"photos": photos})
}

// UpdateOrder handles PATCH /api/v1/photos/{photo_id}/order
func (h *PhotoHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Order == nil {
		respondError(w, "order is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	photoID := chi.URLParam(r, "photo_id")
	fields := map[string]any{"photo_id": photoID, "actor_id": actorID}

	if err := h.permissionService.CanModifyPhoto(ctx, actorID, photoID); err != nil {
		respondServiceError(w, err, "Reorder not allowed", fields)
		return
	}
	if err := h.photoService.UpdateOrder(ctx, photoID, *req.Order); err != nil {
		respondServiceError(w, err, "Failed to update photo order", fields)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeletePhoto handles DELETE /api/v1/photos/{photo_id}
func (h *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	photoID := chi.URLParam(r, "photo_id")
	fields := map[string]any{"photo_id": photoID, "actor_id": actorID}

	if err := h.permissionService.CanModifyPhoto(ctx, actorID, photoID); err != nil {
		respondServiceError(w, err, "Delete not allowed", fields)
		return
	}
	if err := h.photoService.DeletePhoto(ctx, photoID); err != nil {
		respondServiceError(w, err, "Failed to delete photo", fields)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
