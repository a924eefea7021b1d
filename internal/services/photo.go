package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"photo-social-backend/internal/models"
	"photo-social-backend/internal/repository"
	"photo-social-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const removalTimeout = 30 * time.Second

// PhotoInput describes a photo to add or keep on a post. A nil ID means a
// new photo, which must carry Data; its path always comes from the content
// store. Data is ignored for existing photos.
type PhotoInput struct {
	ID       *string
	Name     string
	MimeType string
	Order    int
	Width    *int
	Height   *int
	Data     []byte
}

// PhotoService manages photo rows and their stored binaries
type PhotoService struct {
	photoRepo PhotoRepository
	store     storage.ContentStore
	pending   sync.WaitGroup
}

// NewPhotoService creates a new photo service
func NewPhotoService(photoRepo PhotoRepository, store storage.ContentStore) *PhotoService {
	return &PhotoService{
		photoRepo: photoRepo,
		store:     store,
	}
}

// AddPhoto stores the binary of in and attaches the photo to a post
func (s *PhotoService) AddPhoto(ctx context.Context, postID string, in PhotoInput) (*models.Photo, error) {
	if err := validateNewPhoto(in); err != nil {
		return nil, err
	}

	path, err := s.store.Save(ctx, in.Data, in.MimeType)
	if err != nil {
		return nil, storageError("store photo", err)
	}

	photo := &models.Photo{
		ID:       uuid.New().String(),
		PostID:   postID,
		Name:     in.Name,
		Path:     path,
		MimeType: in.MimeType,
		Order:    in.Order,
		Width:    in.Width,
		Height:   in.Height,
	}
	if err := s.photoRepo.Create(ctx, photo); err != nil {
		// Nothing references the object we just uploaded
		s.scheduleRemoval(photo.Path)
		return nil, translate("add photo", err)
	}

	return photo, nil
}

// UpsertForPost makes the photo set of a post equal to desired. Photos
// missing from desired are deleted, known ids are updated in place and
// inputs without an id are added.
func (s *PhotoService) UpsertForPost(ctx context.Context, postID string, desired []PhotoInput) ([]*models.Photo, error) {
	existing, err := s.photoRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, translate("list photos", err)
	}

	byID := make(map[string]*models.Photo, len(existing))
	for _, p := range existing {
		byID[p.ID] = p
	}

	// Reject foreign ids before touching anything
	keep := make(map[string]bool, len(desired))
	for _, in := range desired {
		if in.ID == nil {
			if err := validateNewPhoto(in); err != nil {
				return nil, err
			}
			continue
		}
		if _, ok := byID[*in.ID]; !ok {
			return nil, fmt.Errorf("photo %s on post %s: %w", *in.ID, postID, ErrNotFound)
		}
		keep[*in.ID] = true
	}

	var removed []string
	for _, p := range existing {
		if keep[p.ID] {
			continue
		}
		if err := s.photoRepo.Delete(ctx, p.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, translate("delete photo", err)
		}
		removed = append(removed, p.Path)
	}
	s.scheduleRemoval(removed...)

	for _, in := range desired {
		if in.ID == nil {
			if _, err := s.AddPhoto(ctx, postID, in); err != nil {
				return nil, err
			}
			continue
		}

		current := byID[*in.ID]
		updated := applyPhotoInput(*current, in)
		if photoUnchanged(current, &updated) {
			continue
		}
		if err := s.photoRepo.Update(ctx, &updated); err != nil {
			return nil, translate("update photo", err)
		}
	}

	return s.ListByPost(ctx, postID)
}

// GetCover returns the photo with the lowest order, or nil when the post has none
func (s *PhotoService) GetCover(ctx context.Context, postID string) (*models.Photo, error) {
	photo, err := s.photoRepo.GetLowestOrder(ctx, postID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("get cover photo", err)
	}
	return photo, nil
}

// UpdateOrder sets the order of a photo. Values are not clamped.
func (s *PhotoService) UpdateOrder(ctx context.Context, photoID string, order int) error {
	return translate("update photo order", s.photoRepo.UpdateOrder(ctx, photoID, order))
}

// Get retrieves a photo by ID
func (s *PhotoService) Get(ctx context.Context, photoID string) (*models.Photo, error) {
	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if err != nil {
		return nil, translate("get photo", err)
	}
	return photo, nil
}

// DeletePhoto removes a photo row and schedules removal of its binary.
// Deleting a missing photo succeeds.
func (s *PhotoService) DeletePhoto(ctx context.Context, photoID string) error {
	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return translate("delete photo", err)
	}

	if err := s.photoRepo.Delete(ctx, photoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		log.Error().Err(err).Str("photo_id", photoID).Msg("Failed to delete photo")
		return translate("delete photo", err)
	}

	s.scheduleRemoval(photo.Path)
	return nil
}

// ListByPost returns the photos of a post by ascending order
func (s *PhotoService) ListByPost(ctx context.Context, postID string) ([]*models.Photo, error) {
	photos, err := s.photoRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, translate("list photos", err)
	}
	return photos, nil
}

// Wait blocks until every scheduled binary removal has finished
func (s *PhotoService) Wait() {
	s.pending.Wait()
}

// scheduleRemoval deletes stored binaries in the background. The caller's
// request is already answered, so failures are only logged.
func (s *PhotoService) scheduleRemoval(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		s.pending.Add(1)
		go func(path string) {
			defer s.pending.Done()

			ctx, cancel := context.WithTimeout(context.Background(), removalTimeout)
			defer cancel()

			if err := s.store.Delete(ctx, path); err != nil {
				log.Error().Err(err).Str("path", path).Msg("Failed to remove photo content")
				return
			}
			log.Debug().Str("path", path).Msg("Removed photo content")
		}(path)
	}
}

// validateNewPhoto requires content for a photo that is not stored yet
func validateNewPhoto(in PhotoInput) error {
	if len(in.Data) == 0 {
		return fmt.Errorf("photo %q has no content: %w", in.Name, ErrUnprocessable)
	}
	return nil
}

func applyPhotoInput(photo models.Photo, in PhotoInput) models.Photo {
	if in.Name != "" {
		photo.Name = in.Name
	}
	if in.MimeType != "" {
		photo.MimeType = in.MimeType
	}
	photo.Order = in.Order
	if in.Width != nil {
		photo.Width = in.Width
	}
	if in.Height != nil {
		photo.Height = in.Height
	}
	return photo
}

func photoUnchanged(a, b *models.Photo) bool {
	return a.Name == b.Name &&
		a.MimeType == b.MimeType &&
		a.Order == b.Order &&
		equalIntPtr(a.Width, b.Width) &&
		equalIntPtr(a.Height, b.Height)
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
