package repository

import (
	"context"
	"fmt"

	"photo-social-backend/internal/db"
	"photo-social-backend/internal/models"
)

// LocationRepository handles database operations for locations
type LocationRepository struct {
	db db.Querier
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db db.Querier) *LocationRepository {
	return &LocationRepository{db: db}
}

// InsertIfAbsent inserts a location unless the coordinate pair is already stored.
// A colliding row is left untouched, including its address.
func (r *LocationRepository) InsertIfAbsent(ctx context.Context, location *models.Location) error {
	query := `
		INSERT INTO locations (id, latitude, longitude, address)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (latitude, longitude) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, location.ID, location.Latitude, location.Longitude, location.Address)
	if err != nil {
		return fmt.Errorf("failed to insert location: %w", err)
	}
	return nil
}

// GetByCoordinates retrieves a location by its exact coordinate pair
func (r *LocationRepository) GetByCoordinates(ctx context.Context, latitude, longitude float64) (*models.Location, error) {
	query := `
		SELECT id, latitude, longitude, address
		FROM locations
		WHERE latitude = $1 AND longitude = $2
	`
	var loc models.Location
	err := r.db.QueryRow(ctx, query, latitude, longitude).Scan(
		&loc.ID, &loc.Latitude, &loc.Longitude, &loc.Address,
	)
	if err != nil {
		return nil, readError("get location by coordinates", err)
	}
	return &loc, nil
}

// GetByID retrieves a location by ID
func (r *LocationRepository) GetByID(ctx context.Context, id string) (*models.Location, error) {
	query := `
		SELECT id, latitude, longitude, address
		FROM locations
		WHERE id = $1
	`
	var loc models.Location
	err := r.db.QueryRow(ctx, query, id).Scan(
		&loc.ID, &loc.Latitude, &loc.Longitude, &loc.Address,
	)
	if err != nil {
		return nil, readError("get location", err)
	}
	return &loc, nil
}
