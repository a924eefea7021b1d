package services

import (
	"context"
	"errors"
	"time"

	"photo-social-backend/internal/models"
	"photo-social-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// LikeService records which users like which posts
type LikeService struct {
	likeRepo LikeRepository
	now      func() time.Time
}

// NewLikeService creates a new like service
func NewLikeService(likeRepo LikeRepository) *LikeService {
	return &LikeService{likeRepo: likeRepo, now: time.Now}
}

// Add records that userID likes postID. Liking twice keeps a single row.
func (s *LikeService) Add(ctx context.Context, postID, userID string) error {
	like := &models.PostLike{UserID: userID, PostID: postID, Created: s.now()}

	inserted, err := s.likeRepo.Create(ctx, like)
	if err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return translate("like post", err)
	}
	if !inserted {
		log.Debug().Str("post_id", postID).Str("user_id", userID).Msg("Post already liked")
	}
	return nil
}

// Remove deletes the like of userID on postID if there is one
func (s *LikeService) Remove(ctx context.Context, postID, userID string) error {
	err := s.likeRepo.Delete(ctx, postID, userID)
	if err == nil || errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return translate("unlike post", err)
}

// Summarize returns the number of likes on a post and who gave them
func (s *LikeService) Summarize(ctx context.Context, postID string) (*models.LikeSummary, error) {
	ids, err := s.likeRepo.ListUserIDs(ctx, postID)
	if err != nil {
		return nil, translate("summarize likes", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return &models.LikeSummary{Count: len(ids), LikerIDs: ids}, nil
}

// Count returns the number of likes on a post
func (s *LikeService) Count(ctx context.Context, postID string) (int, error) {
	n, err := s.likeRepo.CountByPost(ctx, postID)
	if err != nil {
		return 0, translate("count likes", err)
	}
	return n, nil
}
