package services

import (
	"context"
	"errors"
	"time"

	"photo-social-backend/internal/models"
	"photo-social-backend/internal/repository"

	"github.com/google/uuid"
)

// CommentService manages comments on posts
type CommentService struct {
	commentRepo CommentRepository
	now         func() time.Time
}

// NewCommentService creates a new comment service
func NewCommentService(commentRepo CommentRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, now: time.Now}
}

// Add attaches a comment to a post and returns its ID
func (s *CommentService) Add(ctx context.Context, postID, userID, content string) (string, error) {
	comment := &models.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		CreatorID: userID,
		Content:   content,
		Created:   s.now(),
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return "", translate("add comment", err)
	}
	return comment.ID, nil
}

// Remove deletes a comment. Removing a missing comment succeeds.
func (s *CommentService) Remove(ctx context.Context, commentID string) error {
	err := s.commentRepo.Delete(ctx, commentID)
	if err == nil || errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return translate("remove comment", err)
}

// ListByPost returns the comments of a post, newest first
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, translate("list comments", err)
	}
	return comments, nil
}

// Get retrieves a comment by ID
func (s *CommentService) Get(ctx context.Context, commentID string) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, translate("get comment", err)
	}
	return comment, nil
}
