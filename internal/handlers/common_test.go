package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"photo-social-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("post p: %w", services.ErrNotFound), http.StatusNotFound},
		{services.ErrConflict, http.StatusConflict},
		{services.ErrPermissionDenied, http.StatusForbidden},
		{services.ErrUnprocessable, http.StatusUnprocessableEntity},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrInvalidToken, http.StatusUnauthorized},
		{services.ErrStorage, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestRespondServiceErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(rec, errors.New("dial tcp 10.0.0.5:5432: refused"), "Failed to get post", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Failed to get post", body.Error)
}

func TestRespondServiceErrorKeepsClientMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(rec, fmt.Errorf("display name %q: %w", "bob", services.ErrConflict), "Failed", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "conflict")
}

// The handlers below reject these requests before touching any service
func TestRequestValidation(t *testing.T) {
	users := NewUserHandler(nil, nil)
	posts := NewPostHandler(nil, nil, nil, nil)
	photos := NewPhotoHandler(nil, nil)
	collections := NewCollectionHandler(nil, nil)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		body    string
	}{
		{"ghost without device", users.CreateGhost, `{"device_type":"ios"}`},
		{"ghost with unknown platform", users.CreateGhost, `{"device_id":"d","device_type":"symbian"}`},
		{"register without email", users.Register, `{"password":"x"}`},
		{"login without password", users.Login, `{"email":"a@b.c"}`},
		{"rename to blank", users.UpdateDisplayName, `{"display_name":"  "}`},
		{"post without location", posts.CreatePost, `{"public":true}`},
		{"post off the map", posts.CreatePost, `{"location":{"latitude":91,"longitude":0}}`},
		{"empty comment", posts.CreateComment, `{"content":""}`},
		{"long comment", posts.CreateComment, `{"content":"` + strings.Repeat("x", 251) + `"}`},
		{"order missing", photos.UpdateOrder, `{}`},
		{"collection without name", collections.CreateCollection, `{"post_ids":[]}`},
		{"collection name too long", collections.CreateCollection, `{"name":"` + strings.Repeat("n", 51) + `"}`},
		{"malformed json", collections.UpdateCollection, `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			tt.handler(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestToPhotoInputsKeepsNil(t *testing.T) {
	assert.Nil(t, toPhotoInputs(nil))
	assert.NotNil(t, toPhotoInputs([]PhotoRequest{}))
	assert.Len(t, toPhotoInputs([]PhotoRequest{{Name: "a"}}), 1)
}
