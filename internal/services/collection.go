package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"photo-social-backend/internal/models"
	"photo-social-backend/internal/repository"

	"github.com/google/uuid"
)

// CollectionInput holds the descriptive fields of a collection
type CollectionInput struct {
	Name        string
	Description *string
}

// CollectionService manages named sets of posts
type CollectionService struct {
	collectionRepo CollectionRepository
	postRepo       PostRepository
	userRepo       UserRepository
	photos         *PhotoService
	now            func() time.Time
}

// NewCollectionService creates a new collection service
func NewCollectionService(
	collectionRepo CollectionRepository,
	postRepo PostRepository,
	userRepo UserRepository,
	photos *PhotoService,
) *CollectionService {
	return &CollectionService{
		collectionRepo: collectionRepo,
		postRepo:       postRepo,
		userRepo:       userRepo,
		photos:         photos,
		now:            time.Now,
	}
}

// Create creates a collection of postIDs owned by creatorID. The creator and
// every post must exist; otherwise nothing is persisted.
func (s *CollectionService) Create(ctx context.Context, postIDs []string, creatorID string, in CollectionInput) (string, error) {
	exists, err := s.userRepo.Exists(ctx, creatorID)
	if err != nil {
		return "", translate("check collection creator", err)
	}
	if !exists {
		return "", fmt.Errorf("collection creator %s: %w", creatorID, ErrNotFound)
	}

	postIDs, err = s.requirePosts(ctx, postIDs)
	if err != nil {
		return "", err
	}

	collection := &models.Collection{
		ID:          uuid.New().String(),
		CreatorID:   creatorID,
		Name:        in.Name,
		Description: in.Description,
		PostIDs:     postIDs,
		CreatedAt:   s.now(),
	}
	if err := s.collectionRepo.Create(ctx, collection); err != nil {
		return "", translate("create collection", err)
	}
	return collection.ID, nil
}

// Update replaces the name, description and post set of a collection
func (s *CollectionService) Update(ctx context.Context, id string, postIDs []string, in CollectionInput) error {
	postIDs, err := s.requirePosts(ctx, postIDs)
	if err != nil {
		return err
	}

	err = s.collectionRepo.Update(ctx, id, in.Name, in.Description, postIDs)
	return translate("update collection", err)
}

// Get returns a collection with its posts. With publicOnly set, private
// posts are left out of the result; membership itself is unchanged.
func (s *CollectionService) Get(ctx context.Context, id string, publicOnly bool) (*models.Collection, error) {
	collection, err := s.collectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate("get collection", err)
	}

	if err := s.attachPosts(ctx, collection, publicOnly); err != nil {
		return nil, err
	}
	return collection, nil
}

// ListByUser returns the collections created by a user
func (s *CollectionService) ListByUser(ctx context.Context, userID string, publicOnly bool) ([]*models.Collection, error) {
	collections, err := s.collectionRepo.ListByCreator(ctx, userID)
	if err != nil {
		return nil, translate("list collections", err)
	}

	for _, c := range collections {
		if err := s.attachPosts(ctx, c, publicOnly); err != nil {
			return nil, err
		}
	}
	return collections, nil
}

// Delete removes a collection. The posts stay. Deleting a missing
// collection succeeds.
func (s *CollectionService) Delete(ctx context.Context, id string) error {
	err := s.collectionRepo.Delete(ctx, id)
	if err == nil || errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return translate("delete collection", err)
}

// requirePosts returns the canonical, deduplicated form of postIDs and
// fails with ErrNotFound naming every id without a post
func (s *CollectionService) requirePosts(ctx context.Context, postIDs []string) ([]string, error) {
	ids, missing := canonicalIDs(postIDs)
	if len(ids) > 0 {
		found, err := s.postRepo.ExistingIDs(ctx, ids)
		if err != nil {
			return nil, translate("check collection posts", err)
		}

		present := make(map[string]bool, len(found))
		for _, id := range found {
			present[id] = true
		}
		for _, id := range ids {
			if !present[id] {
				missing = append(missing, id)
			}
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("posts %s: %w", strings.Join(missing, ", "), ErrNotFound)
	}
	return ids, nil
}

func (s *CollectionService) attachPosts(ctx context.Context, c *models.Collection, publicOnly bool) error {
	posts, err := s.postRepo.ListByIDs(ctx, c.PostIDs, publicOnly)
	if err != nil {
		return translate("list collection posts", err)
	}

	ids := make([]string, 0, len(posts))
	for _, post := range posts {
		if post.Cover, err = s.photos.GetCover(ctx, post.ID); err != nil {
			return err
		}
		ids = append(ids, post.ID)
	}
	c.Posts = posts
	c.PostIDs = ids
	return nil
}

// canonicalIDs lower-cases and dedupes uuids in input order. Strings that
// are not uuids are returned separately since no post can have them.
func canonicalIDs(ids []string) (valid, malformed []string) {
	seen := make(map[string]bool, len(ids))
	valid = make([]string, 0, len(ids))
	for _, raw := range ids {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			malformed = append(malformed, raw)
			continue
		}
		id := parsed.String()
		if seen[id] {
			continue
		}
		seen[id] = true
		valid = append(valid, id)
	}
	return valid, malformed
}
