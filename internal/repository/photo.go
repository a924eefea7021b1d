package repository

import (
	"context"
	"fmt"

	"photo-social-backend/internal/db"
	"photo-social-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const photoColumns = `id, post_id, name, path, mime_type, "order", width, height`

// PhotoRepository handles database operations for photos
type PhotoRepository struct {
	db db.Querier
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db db.Querier) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create creates a new photo
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (id, post_id, name, path, mime_type, "order", width, height)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		photo.ID, photo.PostID, photo.Name, photo.Path, photo.MimeType, photo.Order, photo.Width, photo.Height,
	)
	if err != nil {
		return writeError("create photo", err)
	}
	return nil
}

// GetByID retrieves a photo by ID
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`
	photo, err := scanPhoto(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, readError("get photo", err)
	}
	return photo, nil
}

// ListByPost retrieves the photos of a post ordered by their order value
func (r *PhotoRepository) ListByPost(ctx context.Context, postID string) ([]*models.Photo, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photos
		WHERE post_id = $1
		ORDER BY "order" ASC
	`
	rows, err := r.db.Query(ctx, query, postID)
	if err != nil {
		return nil, listError("get photos", err)
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, listError("iterate photos", err)
	}
	return photos, nil
}

// GetLowestOrder retrieves the photo with the lowest order value for a post
func (r *PhotoRepository) GetLowestOrder(ctx context.Context, postID string) (*models.Photo, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photos
		WHERE post_id = $1
		ORDER BY "order" ASC
		LIMIT 1
	`
	photo, err := scanPhoto(r.db.QueryRow(ctx, query, postID))
	if err != nil {
		return nil, readError("get cover photo", err)
	}
	return photo, nil
}

// Update replaces the descriptive fields of a photo. Path and post are fixed.
func (r *PhotoRepository) Update(ctx context.Context, photo *models.Photo) error {
	query := `
		UPDATE photos
		SET name = $1, mime_type = $2, "order" = $3, width = $4, height = $5
		WHERE id = $6
	`
	result, err := r.db.Exec(ctx, query,
		photo.Name, photo.MimeType, photo.Order, photo.Width, photo.Height, photo.ID,
	)
	if err != nil {
		return writeError("update photo", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateOrder updates the order value of a photo
func (r *PhotoRepository) UpdateOrder(ctx context.Context, photoID string, order int) error {
	query := `UPDATE photos SET "order" = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, order, photoID)
	if err != nil {
		return writeError("update photo order", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a photo row. The stored binary is not touched.
func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return writeError("delete photo", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPhoto(row pgx.Row) (*models.Photo, error) {
	var photo models.Photo
	err := row.Scan(
		&photo.ID, &photo.PostID, &photo.Name, &photo.Path,
		&photo.MimeType, &photo.Order, &photo.Width, &photo.Height,
	)
	if err != nil {
		return nil, err
	}
	return &photo, nil
}
