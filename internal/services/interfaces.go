package services

import (
	"context"
	"time"

	"photo-social-backend/internal/models"
	"photo-social-backend/internal/repository"
)

// UserRepository is the user storage used by the identity and permission services
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	CreateWithDevice(ctx context.Context, user *models.User, device *models.Device) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByDisplayName(ctx context.Context, displayName string) (*models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	SetCredentials(ctx context.Context, id, email, passwordHash, displayName string) error
	UpdateDisplayName(ctx context.Context, id, displayName string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// LocationRepository stores deduplicated coordinates
type LocationRepository interface {
	InsertIfAbsent(ctx context.Context, location *models.Location) error
	GetByCoordinates(ctx context.Context, latitude, longitude float64) (*models.Location, error)
	GetByID(ctx context.Context, id string) (*models.Location, error)
}

// PostRepository stores post rows
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Update(ctx context.Context, id string, changes repository.PostChanges) error
	List(ctx context.Context, q repository.PostQuery) ([]*models.Post, error)
	ListByIDs(ctx context.Context, ids []string, publicOnly bool) ([]*models.Post, error)
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
	Delete(ctx context.Context, id string) error
}

// PhotoRepository stores photo rows
type PhotoRepository interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	ListByPost(ctx context.Context, postID string) ([]*models.Photo, error)
	GetLowestOrder(ctx context.Context, postID string) (*models.Photo, error)
	Update(ctx context.Context, photo *models.Photo) error
	UpdateOrder(ctx context.Context, photoID string, order int) error
	Delete(ctx context.Context, id string) error
}

// CommentRepository stores comments
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// LikeRepository stores post likes
type LikeRepository interface {
	Create(ctx context.Context, like *models.PostLike) (bool, error)
	Delete(ctx context.Context, postID, userID string) error
	ListUserIDs(ctx context.Context, postID string) ([]string, error)
	CountByPost(ctx context.Context, postID string) (int, error)
}

// CollectionRepository stores collections and memberships
type CollectionRepository interface {
	Create(ctx context.Context, collection *models.Collection) error
	Update(ctx context.Context, id, name string, description *string, postIDs []string) error
	GetByID(ctx context.Context, id string) (*models.Collection, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*models.Collection, error)
	Delete(ctx context.Context, id string) error
}

var (
	_ UserRepository       = (*repository.UserRepository)(nil)
	_ LocationRepository   = (*repository.LocationRepository)(nil)
	_ PostRepository       = (*repository.PostRepository)(nil)
	_ PhotoRepository      = (*repository.PhotoRepository)(nil)
	_ CommentRepository    = (*repository.CommentRepository)(nil)
	_ LikeRepository       = (*repository.LikeRepository)(nil)
	_ CollectionRepository = (*repository.CollectionRepository)(nil)
)
