package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"photo-social-backend/internal/models"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// cachedLocation is a location held in the resolver cache until ExpiresAt
type cachedLocation struct {
	Location  models.Location
	ExpiresAt time.Time
}

// LocationService resolves coordinates to a single shared location row
type LocationService struct {
	repo  LocationRepository
	cache *lru.Cache[string, cachedLocation]
	ttl   time.Duration
	now   func() time.Time
}

// NewLocationService creates a location resolver backed by an LRU cache of
// the given size. Entries older than ttl are refetched.
func NewLocationService(repo LocationRepository, cacheSize int, ttl time.Duration) (*LocationService, error) {
	cache, err := lru.New[string, cachedLocation](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create location cache: %w", err)
	}
	return &LocationService{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

// Resolve returns the location at the given coordinates, creating it when
// absent. When two requests race on the same pair both get the same row and
// the address of whichever insert landed first.
func (s *LocationService) Resolve(ctx context.Context, latitude, longitude float64, address *string) (*models.Location, error) {
	key := coordinateKey(latitude, longitude)
	if loc, ok := s.lookup(key); ok {
		return loc, nil
	}

	candidate := &models.Location{
		ID:        uuid.New().String(),
		Latitude:  latitude,
		Longitude: longitude,
		Address:   address,
	}
	if err := s.repo.InsertIfAbsent(ctx, candidate); err != nil {
		return nil, translate("resolve location", err)
	}

	loc, err := s.repo.GetByCoordinates(ctx, latitude, longitude)
	if err != nil {
		return nil, translate("resolve location", err)
	}

	s.remember(loc)
	return loc, nil
}

// Get retrieves a location by ID
func (s *LocationService) Get(ctx context.Context, id string) (*models.Location, error) {
	if loc, ok := s.lookup(idKey(id)); ok {
		return loc, nil
	}

	loc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate("get location", err)
	}

	s.remember(loc)
	return loc, nil
}

func (s *LocationService) lookup(key string) (*models.Location, bool) {
	item, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	if s.now().After(item.ExpiresAt) {
		s.cache.Remove(key)
		return nil, false
	}
	loc := item.Location
	return &loc, true
}

func (s *LocationService) remember(loc *models.Location) {
	item := cachedLocation{Location: *loc, ExpiresAt: s.now().Add(s.ttl)}
	s.cache.Add(coordinateKey(loc.Latitude, loc.Longitude), item)
	s.cache.Add(idKey(loc.ID), item)
}

func coordinateKey(latitude, longitude float64) string {
	return strconv.FormatFloat(latitude, 'g', -1, 64) + "," + strconv.FormatFloat(longitude, 'g', -1, 64)
}

func idKey(id string) string {
	return "id:" + id
}
