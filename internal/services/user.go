package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"photo-social-backend/internal/auth"
	"photo-social-backend/internal/models"
	"photo-social-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	suffixDigits       = 4
	maxNameAttempts    = 10
	defaultDisplayName = "user"
)

// UserService handles ghost and full accounts, login and tokens
type UserService struct {
	userRepo UserRepository
	hasher   auth.PasswordHasher
	tokens   auth.TokenIssuer
	tokenTTL time.Duration
	now      func() time.Time
}

// NewUserService creates a new user service
func NewUserService(
	userRepo UserRepository,
	hasher auth.PasswordHasher,
	tokens auth.TokenIssuer,
	tokenTTL time.Duration,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// CreateGhost creates a user that is known only by a device
func (s *UserService) CreateGhost(ctx context.Context, deviceID string, deviceType models.DeviceType) (*models.User, error) {
	if !deviceType.Valid() {
		return nil, fmt.Errorf("device type %q: %w", deviceType, ErrUnprocessable)
	}

	user := &models.User{
		ID:        uuid.New().String(),
		Role:      models.RoleContributor,
		CreatedAt: s.now(),
	}
	device := &models.Device{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		Type:       deviceType,
		Identifier: deviceID,
	}

	if err := s.userRepo.CreateWithDevice(ctx, user, device); err != nil {
		return nil, translate("create ghost user", err)
	}
	user.Devices = []models.Device{*device}

	log.Info().Str("user_id", user.ID).Str("device_type", string(deviceType)).Msg("Ghost user created")
	return user, nil
}

// UpgradeGhost gives an existing user an email, password and display name.
// The ID is kept. Whether the user is still a ghost is up to the caller.
func (s *UserService) UpgradeGhost(ctx context.Context, userID, email, password, displayName string) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.SetCredentials(ctx, userID, email, hash, displayName); err != nil {
		return nil, translate("upgrade user", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, translate("get user", err)
	}

	log.Info().Str("user_id", userID).Msg("Ghost user upgraded")
	return user, nil
}

// CreateFull registers a user with email and password. The display name is
// derived from the email and retried with a new suffix on collision.
func (s *UserService) CreateFull(ctx context.Context, email, password string) (*models.UserToken, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	for i := 0; i < maxNameAttempts; i++ {
		name := generateDisplayName(email)
		user := &models.User{
			ID:           uuid.New().String(),
			Email:        &email,
			PasswordHash: &hash,
			DisplayName:  &name,
			Role:         models.RoleContributor,
			CreatedAt:    s.now(),
		}

		err := s.userRepo.Create(ctx, user)
		if errors.Is(err, repository.ErrDisplayNameTaken) {
			continue
		}
		if err != nil {
			return nil, translate("create user", err)
		}
		return s.IssueToken(ctx, user)
	}
	return nil, fmt.Errorf("failed to generate unique display name after %d attempts: %w", maxNameAttempts, ErrConflict)
}

// Authenticate checks email and password and returns a fresh token
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.UserToken, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, translate("get user by email", err)
	}
	if user.PasswordHash == nil || !s.hasher.Compare(password, *user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	// Last login is informational; a failed write does not block the login
	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to record last login")
	} else {
		user.LastLogin = &now
	}

	return s.IssueToken(ctx, user)
}

// UpdateDisplayName renames a user. The name must not belong to someone else.
func (s *UserService) UpdateDisplayName(ctx context.Context, userID, displayName string) error {
	holder, err := s.userRepo.GetByDisplayName(ctx, displayName)
	switch {
	case err == nil && holder.ID == userID:
		return nil
	case err == nil:
		return fmt.Errorf("display name %q: %w", displayName, ErrConflict)
	case !errors.Is(err, repository.ErrNotFound):
		return translate("check display name", err)
	}

	return translate("update display name", s.userRepo.UpdateDisplayName(ctx, userID, displayName))
}

// Delete removes a user with everything they created. Deleting a missing
// user succeeds.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	err := s.userRepo.Delete(ctx, userID)
	if err == nil || errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	log.Error().Err(err).Str("user_id", userID).Msg("Failed to delete user")
	return translate("delete user", err)
}

// Get retrieves a user by ID
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, translate("get user", err)
	}
	return user, nil
}

// IssueToken signs a session token for user
func (s *UserService) IssueToken(_ context.Context, user *models.User) (*models.UserToken, error) {
	token, err := s.tokens.Issue(auth.Claims{UserID: user.ID, Role: string(user.Role)}, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &models.UserToken{
		User:      user,
		Token:     token,
		ExpiresAt: s.now().Add(s.tokenTTL),
	}, nil
}

// VerifyToken checks a session token and returns its claims
func (s *UserService) VerifyToken(token string) (*auth.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// generateDisplayName builds "<local part><4 random digits>" from an email
func generateDisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		local = defaultDisplayName
	}

	limit := big.NewInt(1)
	for i := 0; i < suffixDigits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, _ := rand.Int(rand.Reader, limit)
	return fmt.Sprintf("%s%0*d", local, suffixDigits, n.Int64())
}
