package handlers

import (
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"photo-social-backend/internal/middleware"
	"photo-social-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

const maxCommentLength = 250

// PostHandler handles posts and their likes and comments
type PostHandler struct {
	postService       *services.PostService
	likeService       *services.LikeService
	commentService    *services.CommentService
	permissionService *services.PermissionService
}

// NewPostHandler creates a new post handler
func NewPostHandler(
	postService *services.PostService,
	likeService *services.LikeService,
	commentService *services.CommentService,
	permissionService *services.PermissionService,
) *PostHandler {
	return &PostHandler{
		postService:       postService,
		likeService:       likeService,
		commentService:    commentService,
		permissionService: permissionService,
	}
}

// LocationRequest is the place a post was taken at
type LocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   *string  `json:"address"`
}

// PhotoRequest describes one photo of a post. Data is base64 in JSON and
// required for photos without an id.
type PhotoRequest struct {
	ID       *string `json:"id"`
	Name     string  `json:"name"`
	MimeType string  `json:"mime_type"`
	Order    int     `json:"order"`
	Width    *int    `json:"width"`
	Height   *int    `json:"height"`
	Data     []byte  `json:"data"`
}

// PostRequest is the body of post create and update
type PostRequest struct {
	Location    LocationRequest `json:"location"`
	Public      bool            `json:"public"`
	Occurred    *time.Time      `json:"occurred"`
	Description *string         `json:"description"`
	Photos      []PhotoRequest  `json:"photos"`
}

// CommentRequest is the body of a new comment
type CommentRequest struct {
	Content string `json:"content"`
}

// CreatePost handles POST /api/v1/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validLocation(w, req.Location) {
		return
	}

	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	postID, err := h.postService.Create(ctx, services.CreatePostInput{
		CreatorID:   userID,
		Location:    toLocationInput(req.Location),
		Public:      req.Public,
		Occurred:    occurredAt(req.Occurred),
		Description: req.Description,
		Photos:      toPhotoInputs(req.Photos),
	})
	if err != nil {
		respondServiceError(w, err, "Failed to create post", map[string]any{"user_id": userID})
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"id": postID})
}

// ListPosts handles GET /api/v1/posts
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)

	filter := services.PostFilter{
		UserID:     queryString(r, "user_id"),
		LocationID: queryString(r, "location_id"),
		PublicOnly: true,
		Count:      queryInt(r, "count", 0),
		WithCover:  queryBool(r, "with_cover"),
	}

	// Owners and admins also see private posts of the listed user
	if filter.UserID != nil {
		err := h.permissionService.CanActOnUser(ctx, actorID, *filter.UserID)
		switch {
		case err == nil:
			filter.PublicOnly = false
		case !errors.Is(err, services.ErrPermissionDenied):
			respondServiceError(w, err, "Failed to list posts", map[string]any{"user_id": *filter.UserID})
			return
		}
	}

	posts, err := h.postService.List(ctx, filter)
	if err != nil {
		respondServiceError(w, err, "Failed to list posts", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// GetPost handles GET /api/v1/posts/{post_id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	postID := chi.URLParam(r, "post_id")
	fields := map[string]any{"post_id": postID, "actor_id": actorID}

	if err := h.permissionService.CanViewPost(ctx, actorID, postID); err != nil {
		respondServiceError(w, err, "Post not visible", fields)
		return
	}

	post, err := h.postService.Get(ctx, postID)
	if err != nil {
		respondServiceError(w, err, "Failed to get post", fields)
		return
	}

	respondJSON(w, http.StatusOK, post)
}

// UpdatePost handles PUT /api/v1/posts/{post_id}
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validLocation(w, req.Location) {
		return
	}

	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	postID := chi.URLParam(r, "post_id")
	fields := map[string]any{"post_id": postID, "actor_id": actorID}

	if err := h.permissionService.CanModifyPost(ctx, actorID, postID); err != nil {
		respondServiceError(w, err, "Update not allowed", fields)
		return
	}

	err := h.postService.Update(ctx, postID, services.UpdatePostInput{
		Location:    toLocationInput(req.Location),
		Public:      req.Public,
		Occurred:    occurredAt(req.Occurred),
		Description: req.Description,
		Photos:      toPhotoInputs(req.Photos),
	})
	if err != nil {
		respondServiceError(w, err, "Failed to update post", fields)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeletePost handles DELETE /api/v1/posts/{post_id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	postID := chi.URLParam(r, "post_id")
	fields := map[string]any{"post_id": postID, "actor_id": actorID}

	if err := h.permissionService.CanModifyPost(ctx, actorID, postID); err != nil {
		respondServiceError(w, err, "Delete not allowed", fields)
		return
	}
	if err := h.postService.Delete(ctx, postID); err != nil {
		respondServiceError(w, err, "Failed to delete post", fields)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LikePost handles POST /api/v1/posts/{post_id}/likes
func (h *PostHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	postID := chi.URLParam(r, "post_id")
	fields := map[string]any{"post_id": postID, "actor_id": actorID}

	if err := h.permissionService.CanLikePost(ctx, actorID, postID); err != nil {
		respondServiceError(w, err, "Like not allowed", fields)
		return
	}
	if err := h.likeService.Add(ctx, postID, actorID); err != nil {
		respondServiceError(w, err, "Failed to like post", fields)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnlikePost handles DELETE /api/v1/posts/{post_id}/likes
func (h *PostHandler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	postID := chi.URLParam(r, "post_id")
	fields := map[string]any{"post_id": postID, "actor_id": actorID}

	if err := h.permissionService.CanLikePost(ctx, actorID, postID); err != nil {
		respondServiceError(w, err, "Unlike not allowed", fields)
		return
	}
	if err := h.likeService.Remove(ctx, postID, actorID); err != nil {
		respondServiceError(w, err, "Failed to unlike post", fields)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetLikes handles GET /api/v1/posts/{post_id}/likes
func (h *PostHandler) GetLikes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	postID := chi.URLParam(r, "post_id")
	fields := map[string]any{"post_id": postID, "actor_id": actorID}

	if err := h.permissionService.CanViewPost(ctx, actorID, postID); err != nil {
		respondServiceError(w, err, "Post not visible", fields)
		return
	}

	summary, err := h.likeService.Summarize(ctx, postID)
	if err != nil {
		respondServiceError(w, err, "Failed to summarize likes", fields)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// CreateComment handles POST /api/v1/posts/{post_id}/comments
func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == "" {
		respondError(w, "content is required", http.StatusBadRequest)
		return
	}
	if utf8.RuneCountInString(req.Content) > maxCommentLength {
		respondError(w, "content must be at most 250 characters", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	postID := chi.URLParam(r, "post_id")
	fields := map[string]any{"post_id": postID, "actor_id": actorID}

	if err := h.permissionService.CanCreateComment(ctx, actorID, postID); err != nil {
		respondServiceError(w, err, "Comment not allowed", fields)
		return
	}

	commentID, err := h.commentService.Add(ctx, postID, actorID, req.Content)
	if err != nil {
		respondServiceError(w, err, "Failed to add comment", fields)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"id": commentID})
}

// ListComments handles GET /api/v1/posts/{post_id}/comments
func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	postID := chi.URLParam(r, "post_id")
	fields := map[string]any{"post_id": postID, "actor_id": actorID}

	if err := h.permissionService.CanViewPost(ctx, actorID, postID); err != nil {
		respondServiceError(w, err, "Post not visible", fields)
		return
	}

	comments, err := h.commentService.ListByPost(ctx, postID)
	if err != nil {
		respondServiceError(w, err, "Failed to list comments", fields)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

// DeleteComment handles DELETE /api/v1/comments/{comment_id}
func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	commentID := chi.URLParam(r, "comment_id")
	fields := map[string]any{"comment_id": commentID, "actor_id": actorID}

	if err := h.permissionService.CanDeleteComment(ctx, actorID, commentID); err != nil {
		respondServiceError(w, err, "Delete not allowed", fields)
		return
	}
	if err := h.commentService.Remove(ctx, commentID); err != nil {
		respondServiceError(w, err, "Failed to delete comment", fields)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validLocation(w http.ResponseWriter, loc LocationRequest) bool {
	if loc.Latitude == nil || loc.Longitude == nil {
		respondError(w, "location.latitude and location.longitude are required", http.StatusBadRequest)
		return false
	}
	if *loc.Latitude < -90 || *loc.Latitude > 90 || *loc.Longitude < -180 || *loc.Longitude > 180 {
		respondError(w, "location is out of range", http.StatusBadRequest)
		return false
	}
	return true
}

func toLocationInput(loc LocationRequest) services.LocationInput {
	return services.LocationInput{
		Latitude:  *loc.Latitude,
		Longitude: *loc.Longitude,
		Address:   loc.Address,
	}
}

// toPhotoInputs keeps nil as nil so an update without photos leaves them alone
func toPhotoInputs(photos []PhotoRequest) []services.PhotoInput {
	if photos == nil {
		return nil
	}
	out := make([]services.PhotoInput, 0, len(photos))
	for _, p := range photos {
		out = append(out, services.PhotoInput{
			ID:       p.ID,
			Name:     p.Name,
			MimeType: p.MimeType,
			Order:    p.Order,
			Width:    p.Width,
			Height:   p.Height,
			Data:     p.Data,
		})
	}
	return out
}

func occurredAt(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
