package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"photo-social-backend/internal/middleware"
	"photo-social-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

const (
	maxCollectionName        = 50
	maxCollectionDescription = 250
)

// CollectionHandler handles collection-related HTTP requests
type CollectionHandler struct {
	collectionService *services.CollectionService
	permissionService *services.PermissionService
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(collectionService *services.CollectionService, permissionService *services.PermissionService) *CollectionHandler {
	return &CollectionHandler{
		collectionService: collectionService,
		permissionService: permissionService,
	}
}

// CollectionRequest is the body of collection create and update
type CollectionRequest struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	PostIDs     []string `json:"post_ids"`
}

// CreateCollection handles POST /api/v1/collections
func (h *CollectionHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req CollectionRequest
	if !decodeJSON(w, r, &req) || !validCollection(w, req) {
		return
	}

	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	id, err := h.collectionService.Create(ctx, req.PostIDs, userID, services.CollectionInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(w, err, "Failed to create collection", map[string]any{"user_id": userID})
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// GetCollection handles GET /api/v1/collections/{collection_id}. Only the
// owner and admins see private posts.
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	collectionID := chi.URLParam(r, "collection_id")
	fields := map[string]any{"collection_id": collectionID, "actor_id": actorID}

	publicOnly := false
	if err := h.permissionService.CanModifyCollection(ctx, actorID, collectionID); err != nil {
		if !errors.Is(err, services.ErrPermissionDenied) {
			respondServiceError(w, err, "Failed to get collection", fields)
			return
		}
		publicOnly = true
	}

	collection, err := h.collectionService.Get(ctx, collectionID, publicOnly)
	if err != nil {
		respondServiceError(w, err, "Failed to get collection", fields)
		return
	}

	respondJSON(w, http.StatusOK, collection)
}

// ListUserCollections handles GET /api/v1/users/{user_id}/collections
func (h *CollectionHandler) ListUserCollections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	userID := chi.URLParam(r, "user_id")
	fields := map[string]any{"user_id": userID, "actor_id": actorID}

	publicOnly := false
	if err := h.permissionService.CanActOnUser(ctx, actorID, userID); err != nil {
		if !errors.Is(err, services.ErrPermissionDenied) {
			respondServiceError(w, err, "Failed to list collections", fields)
			return
		}
		publicOnly = true
	}

	collections, err := h.collectionService.ListByUser(ctx, userID, publicOnly)
	if err != nil {
		respondServiceError(w, err, "Failed to list collections", fields)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"collections": collections})
}

// UpdateCollection handles PUT /api/v1/collections/{collection_id}
func (h *CollectionHandler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	var req CollectionRequest
	if !decodeJSON(w, r, &req) || !validCollection(w, req) {
		return
	}

	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	collectionID := chi.URLParam(r, "collection_id")
	fields := map[string]any{"collection_id": collectionID, "actor_id": actorID}

	if err := h.permissionService.CanModifyCollection(ctx, actorID, collectionID); err != nil {
		respondServiceError(w, err, "Update not allowed", fields)
		return
	}

	err := h.collectionService.Update(ctx, collectionID, req.PostIDs, services.CollectionInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(w, err, "Failed to update collection", fields)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteCollection handles DELETE /api/v1/collections/{collection_id}
func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	collectionID := chi.URLParam(r, "collection_id")
	fields := map[string]any{"collection_id": collectionID, "actor_id": actorID}

	if err := h.permissionService.CanModifyCollection(ctx, actorID, collectionID); err != nil {
		respondServiceError(w, err, "Delete not allowed", fields)
		return
	}
	if err := h.collectionService.Delete(ctx, collectionID); err != nil {
		respondServiceError(w, err, "Failed to delete collection", fields)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validCollection(w http.ResponseWriter, req CollectionRequest) bool {
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, "name is required", http.StatusBadRequest)
		return false
	}
	if utf8.RuneCountInString(req.Name) > maxCollectionName {
		respondError(w, "name must be at most 50 characters", http.StatusBadRequest)
		return false
	}
	if req.Description != nil && utf8.RuneCountInString(*req.Description) > maxCollectionDescription {
		respondError(w, "description must be at most 250 characters", http.StatusBadRequest)
		return false
	}
	return true
}
