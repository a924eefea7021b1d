package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"photo-social-backend/internal/auth"
	"photo-social-backend/internal/models"
	"photo-social-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService(repo *mockUserRepository) *UserService {
	return NewUserService(repo, auth.NewBcryptHasher(bcrypt.MinCost), auth.NewJWTIssuer("test-secret"), time.Hour)
}

func TestUserService_CreateGhost(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)

	repo.On("CreateWithDevice", mock.Anything,
		mock.MatchedBy(func(u *models.User) bool { return u.IsGhost() && u.Role == models.RoleContributor }),
		mock.MatchedBy(func(d *models.Device) bool { return d.Identifier == "device-1" && d.Type == models.DeviceIOS }),
	).Return(nil).Once()

	user, err := svc.CreateGhost(context.Background(), "device-1", models.DeviceIOS)
	require.NoError(t, err)
	assert.True(t, user.IsGhost())
	require.Len(t, user.Devices, 1)
	assert.Equal(t, user.ID, user.Devices[0].UserID)
	repo.AssertExpectations(t)
}

func TestUserService_CreateGhostUnknownDeviceType(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)

	_, err := svc.CreateGhost(context.Background(), "device-1", models.DeviceType("windows"))
	assert.ErrorIs(t, err, ErrUnprocessable)
}

func TestUserService_CreateFullDuplicateEmail(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)

	repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrEmailTaken)

	_, err := svc.CreateFull(context.Background(), "alice@example.com", "secret")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserService_CreateFullRetriesDisplayName(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)

	var names []string
	record := func(args mock.Arguments) {
		names = append(names, *args.Get(1).(*models.User).DisplayName)
	}
	repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDisplayNameTaken).Run(record).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Run(record).Once()

	result, err := svc.CreateFull(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)

	require.Len(t, names, 2)
	pattern := regexp.MustCompile(`^alice\d{4}$`)
	for _, name := range names {
		assert.Regexp(t, pattern, name)
	}
	assert.Equal(t, names[1], *result.User.DisplayName)

	claims, err := svc.VerifyToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	repo.AssertExpectations(t)
}

func TestUserService_UpgradeGhost(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)

	upgraded := &models.User{ID: "user-1", Email: strPtr("bob@example.com"), DisplayName: strPtr("bob"), Role: models.RoleContributor}
	repo.On("SetCredentials", mock.Anything, "user-1", "bob@example.com", mock.AnythingOfType("string"), "bob").Return(nil).Once()
	repo.On("GetByID", mock.Anything, "user-1").Return(upgraded, nil)

	user, err := svc.UpgradeGhost(context.Background(), "user-1", "bob@example.com", "pw", "bob")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.False(t, user.IsGhost())
	repo.AssertExpectations(t)
}

func TestUserService_UpgradeGhostConflicts(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("SetCredentials", mock.Anything, "user-1", "taken@example.com", mock.Anything, "bob").Return(repository.ErrEmailTaken)
	repo.On("SetCredentials", mock.Anything, "missing", mock.Anything, mock.Anything, mock.Anything).Return(repository.ErrNotFound)

	_, err := svc.UpgradeGhost(ctx, "user-1", "taken@example.com", "pw", "bob")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.UpgradeGhost(ctx, "missing", "new@example.com", "pw", "new")
	assert.ErrorIs(t, err, ErrNotFound)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUserService_Authenticate(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	hash, err := auth.NewBcryptHasher(bcrypt.MinCost).Hash("right")
	require.NoError(t, err)
	user := &models.User{ID: "user-1", Email: strPtr("a@example.com"), PasswordHash: &hash, Role: models.RoleAdmin}

	repo.On("GetByEmail", mock.Anything, "a@example.com").Return(user, nil)
	repo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrNotFound)
	repo.On("UpdateLastLogin", mock.Anything, "user-1", mock.Anything).Return(errors.New("timeout"))

	_, err = svc.Authenticate(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "right")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// A failed last-login write does not block the login
	result, err := svc.Authenticate(ctx, "a@example.com", "right")
	require.NoError(t, err)
	claims, err := svc.VerifyToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleAdmin), claims.Role)
}

func TestUserService_VerifyTokenRejectsGarbage(t *testing.T) {
	svc := newTestUserService(new(mockUserRepository))

	_, err := svc.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserService_UpdateDisplayName(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("GetByDisplayName", mock.Anything, "taken").Return(&models.User{ID: "someone-else"}, nil)
	repo.On("GetByDisplayName", mock.Anything, "mine").Return(&models.User{ID: "user-1"}, nil)
	repo.On("GetByDisplayName", mock.Anything, "free").Return(nil, repository.ErrNotFound)
	repo.On("UpdateDisplayName", mock.Anything, "user-1", "free").Return(nil).Once()

	assert.ErrorIs(t, svc.UpdateDisplayName(ctx, "user-1", "taken"), ErrConflict)
	assert.NoError(t, svc.UpdateDisplayName(ctx, "user-1", "mine"))
	assert.NoError(t, svc.UpdateDisplayName(ctx, "user-1", "free"))
	repo.AssertExpectations(t)
}

func TestUserService_Delete(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("Delete", mock.Anything, "missing").Return(repository.ErrNotFound)
	repo.On("Delete", mock.Anything, "broken").Return(errors.New("connection refused"))

	assert.NoError(t, svc.Delete(ctx, "missing"))
	assert.ErrorIs(t, svc.Delete(ctx, "broken"), ErrStorage)
}

func TestGenerateDisplayName(t *testing.T) {
	assert.Regexp(t, `^carol\d{4}$`, generateDisplayName("carol@example.com"))
	assert.Regexp(t, `^user\d{4}$`, generateDisplayName("@example.com"))
}
