package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photo-social-backend/internal/models"
	"photo-social-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LocationInput is the place a post was taken at
type LocationInput struct {
	Latitude  float64
	Longitude float64
	Address   *string
}

// CreatePostInput holds everything needed to publish a post
type CreatePostInput struct {
	CreatorID   string
	Location    LocationInput
	Public      bool
	Occurred    time.Time
	Description *string
	Photos      []PhotoInput
}

// UpdatePostInput holds the mutable fields of a post. A nil Photos leaves
// the photo set untouched; a non-nil one replaces it.
type UpdatePostInput struct {
	Location    LocationInput
	Public      bool
	Occurred    time.Time
	Description *string
	Photos      []PhotoInput
}

// PostFilter selects posts for listing. All set filters must match.
type PostFilter struct {
	UserID     *string
	LocationID *string
	PublicOnly bool
	Count      int
	WithCover  bool
}

// PostService assembles posts from their locations, photos, comments and likes
type PostService struct {
	postRepo  PostRepository
	userRepo  UserRepository
	locations *LocationService
	photos    *PhotoService
	comments  *CommentService
	likes     *LikeService
	now       func() time.Time
}

// NewPostService creates a new post service
func NewPostService(
	postRepo PostRepository,
	userRepo UserRepository,
	locations *LocationService,
	photos *PhotoService,
	comments *CommentService,
	likes *LikeService,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		locations: locations,
		photos:    photos,
		comments:  comments,
		likes:     likes,
		now:       time.Now,
	}
}

// Create publishes a post and its photos and returns the post ID
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (string, error) {
	for _, p := range in.Photos {
		if err := validateNewPhoto(p); err != nil {
			return "", err
		}
	}

	loc, err := s.locations.Resolve(ctx, in.Location.Latitude, in.Location.Longitude, in.Location.Address)
	if err != nil {
		return "", err
	}

	exists, err := s.userRepo.Exists(ctx, in.CreatorID)
	if err != nil {
		return "", translate("check post creator", err)
	}
	if !exists {
		return "", fmt.Errorf("post creator %s: %w", in.CreatorID, ErrNotFound)
	}

	now := s.now()
	created := in.Occurred
	if created.IsZero() {
		created = now
	}

	post := &models.Post{
		ID:          uuid.New().String(),
		CreatorID:   in.CreatorID,
		LocationID:  loc.ID,
		Public:      in.Public,
		Description: in.Description,
		Created:     created,
		Updated:     now,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return "", translate("create post", err)
	}

	for _, p := range in.Photos {
		p.ID = nil
		if _, err := s.photos.AddPhoto(ctx, post.ID, p); err != nil {
			return "", err
		}
	}

	log.Info().Str("post_id", post.ID).Str("creator_id", post.CreatorID).Int("photos", len(in.Photos)).Msg("Post created")
	return post.ID, nil
}

// Update changes the location, visibility, time and description of a post
// and, when in.Photos is non-nil, replaces its photo set. The creator never
// changes.
func (s *PostService) Update(ctx context.Context, postID string, in UpdatePostInput) error {
	current, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return translate("get post", err)
	}

	loc, err := s.locations.Resolve(ctx, in.Location.Latitude, in.Location.Longitude, in.Location.Address)
	if err != nil {
		return err
	}

	created := in.Occurred
	if created.IsZero() {
		created = current.Created
	}

	err = s.postRepo.Update(ctx, postID, repository.PostChanges{
		LocationID:  loc.ID,
		Public:      in.Public,
		Description: in.Description,
		Created:     created,
		Updated:     s.now(),
	})
	if err != nil {
		return translate("update post", err)
	}

	if in.Photos != nil {
		if _, err := s.photos.UpsertForPost(ctx, postID, in.Photos); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a post with its location, photos, comments, likes and cover
func (s *PostService) Get(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, translate("get post", err)
	}

	if post.Location, err = s.locations.Get(ctx, post.LocationID); err != nil {
		return nil, err
	}
	if post.Photos, err = s.photos.ListByPost(ctx, postID); err != nil {
		return nil, err
	}
	if post.Comments, err = s.comments.ListByPost(ctx, postID); err != nil {
		return nil, err
	}

	summary, err := s.likes.Summarize(ctx, postID)
	if err != nil {
		return nil, err
	}
	post.LikeCount = summary.Count
	post.LikerIDs = summary.LikerIDs

	// Photos come back by ascending order so the first one is the cover
	if len(post.Photos) > 0 {
		post.Cover = post.Photos[0]
	}
	return post, nil
}

// List returns posts matching f, most recent first. Each post carries its
// location and like count, plus its cover when f.WithCover is set.
func (s *PostService) List(ctx context.Context, f PostFilter) ([]*models.Post, error) {
	posts, err := s.postRepo.List(ctx, repository.PostQuery{
		UserID:     f.UserID,
		LocationID: f.LocationID,
		PublicOnly: f.PublicOnly,
		Limit:      f.Count,
	})
	if err != nil {
		return nil, translate("list posts", err)
	}

	for _, post := range posts {
		if err := s.summarize(ctx, post, f.WithCover); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// Delete removes a post. Comments, likes, photo rows and collection
// memberships go with it; stored binaries are removed in the background.
// Deleting a missing post succeeds.
func (s *PostService) Delete(ctx context.Context, postID string) error {
	photos, err := s.photos.ListByPost(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		log.Error().Err(err).Str("post_id", postID).Msg("Failed to delete post")
		return translate("delete post", err)
	}

	paths := make([]string, 0, len(photos))
	for _, p := range photos {
		paths = append(paths, p.Path)
	}
	s.photos.scheduleRemoval(paths...)

	log.Info().Str("post_id", postID).Int("photos", len(paths)).Msg("Post deleted")
	return nil
}

// summarize attaches the list-view fields of a post
func (s *PostService) summarize(ctx context.Context, post *models.Post, withCover bool) error {
	var err error
	if post.Location, err = s.locations.Get(ctx, post.LocationID); err != nil {
		return err
	}
	if post.LikeCount, err = s.likes.Count(ctx, post.ID); err != nil {
		return err
	}
	if withCover {
		if post.Cover, err = s.photos.GetCover(ctx, post.ID); err != nil {
			return err
		}
	}
	return nil
}
