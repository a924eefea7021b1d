package services

import (
	"context"
	"strings"
	"testing"

	"photo-social-backend/internal/models"
	"photo-social-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	postOne  = "6f1c2a9e-0b3d-4c55-9a1e-2f7b8c9d0e11"
	postTwo  = "6f1c2a9e-0b3d-4c55-9a1e-2f7b8c9d0e22"
	postGone = "6f1c2a9e-0b3d-4c55-9a1e-2f7b8c9d0e99"
)

type collectionHarness struct {
	collections *mockCollectionRepository
	posts       *mockPostRepository
	users       *mockUserRepository
	photos      *mockPhotoRepository
	svc         *CollectionService
}

func newCollectionHarness() *collectionHarness {
	h := &collectionHarness{
		collections: new(mockCollectionRepository),
		posts:       new(mockPostRepository),
		users:       new(mockUserRepository),
		photos:      new(mockPhotoRepository),
	}
	h.svc = NewCollectionService(h.collections, h.posts, h.users, NewPhotoService(h.photos, newMemoryStore()))
	return h
}

func TestCollectionService_Create(t *testing.T) {
	h := newCollectionHarness()

	h.users.On("Exists", mock.Anything, "user-1").Return(true, nil)
	h.posts.On("ExistingIDs", mock.Anything, []string{postOne, postTwo}).Return([]string{postTwo, postOne}, nil)
	h.collections.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Collection) bool {
		return c.CreatorID == "user-1" && c.Name == "Trip" && assert.ObjectsAreEqual([]string{postOne, postTwo}, c.PostIDs)
	})).Return(nil).Once()

	id, err := h.svc.Create(context.Background(), []string{postOne, postTwo, postOne}, "user-1", CollectionInput{Name: "Trip"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	h.collections.AssertExpectations(t)
}

func TestCollectionService_CreateWithMissingPost(t *testing.T) {
	h := newCollectionHarness()

	h.users.On("Exists", mock.Anything, "user-1").Return(true, nil)
	h.posts.On("ExistingIDs", mock.Anything, []string{postOne, postGone}).Return([]string{postOne}, nil)

	_, err := h.svc.Create(context.Background(), []string{postOne, postGone}, "user-1", CollectionInput{Name: "Trip"})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), postGone)
	h.collections.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCollectionService_CreateNormalizesPostIDs(t *testing.T) {
	h := newCollectionHarness()

	h.users.On("Exists", mock.Anything, "user-1").Return(true, nil)
	h.posts.On("ExistingIDs", mock.Anything, []string{postOne}).Return([]string{postOne}, nil)
	h.collections.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Collection) bool {
		return assert.ObjectsAreEqual([]string{postOne}, c.PostIDs)
	})).Return(nil).Once()

	_, err := h.svc.Create(context.Background(), []string{strings.ToUpper(postOne), postOne}, "user-1", CollectionInput{Name: "Trip"})
	require.NoError(t, err)
	h.collections.AssertExpectations(t)
}

func TestCollectionService_CreateWithMalformedPostID(t *testing.T) {
	h := newCollectionHarness()

	h.users.On("Exists", mock.Anything, "user-1").Return(true, nil)
	h.posts.On("ExistingIDs", mock.Anything, []string{postOne}).Return([]string{postOne}, nil)

	_, err := h.svc.Create(context.Background(), []string{postOne, "not-a-uuid"}, "user-1", CollectionInput{Name: "Trip"})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "not-a-uuid")
	assert.NotContains(t, err.Error(), postOne)
	h.collections.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCollectionService_CreateWithMissingCreator(t *testing.T) {
	h := newCollectionHarness()

	h.users.On("Exists", mock.Anything, "nobody").Return(false, nil)

	_, err := h.svc.Create(context.Background(), nil, "nobody", CollectionInput{Name: "Empty"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCollectionService_GetPublicOnlyFiltersPosts(t *testing.T) {
	h := newCollectionHarness()
	ctx := context.Background()

	stored := func() *models.Collection {
		return &models.Collection{ID: "col-1", CreatorID: "user-1", Name: "Trip", PostIDs: []string{"p1", "p2"}}
	}
	public := &models.Post{ID: "p1", Public: true}
	private := &models.Post{ID: "p2", Public: false}

	h.collections.On("GetByID", mock.Anything, "col-1").Return(stored(), nil).Once()
	h.collections.On("GetByID", mock.Anything, "col-1").Return(stored(), nil).Once()
	h.posts.On("ListByIDs", mock.Anything, []string{"p1", "p2"}, true).Return([]*models.Post{public}, nil)
	h.posts.On("ListByIDs", mock.Anything, []string{"p1", "p2"}, false).Return([]*models.Post{public, private}, nil)
	h.photos.On("GetLowestOrder", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)

	got, err := h.svc.Get(ctx, "col-1", true)
	require.NoError(t, err)
	require.Len(t, got.Posts, 1)
	assert.Equal(t, "p1", got.Posts[0].ID)
	assert.Equal(t, []string{"p1"}, got.PostIDs)

	got, err = h.svc.Get(ctx, "col-1", false)
	require.NoError(t, err)
	assert.Len(t, got.Posts, 2)
}

func TestCollectionService_ListByUser(t *testing.T) {
	h := newCollectionHarness()

	h.collections.On("ListByCreator", mock.Anything, "user-1").Return([]*models.Collection{
		{ID: "col-1", PostIDs: []string{"p1"}},
		{ID: "col-2"},
	}, nil)
	h.posts.On("ListByIDs", mock.Anything, []string{"p1"}, false).Return([]*models.Post{{ID: "p1"}}, nil)
	h.posts.On("ListByIDs", mock.Anything, []string(nil), false).Return(nil, nil)
	h.photos.On("GetLowestOrder", mock.Anything, "p1").Return(&models.Photo{ID: "cover"}, nil)

	got, err := h.svc.ListByUser(context.Background(), "user-1", false)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "cover", got[0].Posts[0].Cover.ID)
	assert.Empty(t, got[1].Posts)
}

func TestCollectionService_UpdateMissingCollection(t *testing.T) {
	h := newCollectionHarness()

	h.posts.On("ExistingIDs", mock.Anything, []string{postOne}).Return([]string{postOne}, nil)
	h.collections.On("Update", mock.Anything, "missing", "New", (*string)(nil), []string{postOne}).Return(repository.ErrNotFound)

	err := h.svc.Update(context.Background(), "missing", []string{postOne}, CollectionInput{Name: "New"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCollectionService_DeleteIsIdempotent(t *testing.T) {
	h := newCollectionHarness()

	h.collections.On("Delete", mock.Anything, "col-1").Return(repository.ErrNotFound)

	assert.NoError(t, h.svc.Delete(context.Background(), "col-1"))
}
