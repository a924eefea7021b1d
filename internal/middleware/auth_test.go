package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"photo-social-backend/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type issuerVerifier struct {
	issuer *auth.JWTIssuer
}

func (v issuerVerifier) VerifyToken(token string) (*auth.Claims, error) {
	return v.issuer.Verify(token)
}

func TestAuthMiddleware(t *testing.T) {
	issuer := auth.NewJWTIssuer("middleware-secret")
	valid, err := issuer.Issue(auth.Claims{UserID: "user-1", Role: "CONTRIBUTOR"}, time.Hour)
	require.NoError(t, err)

	var seen string
	handler := AuthMiddleware(issuerVerifier{issuer})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer garbage", http.StatusUnauthorized},
		{"valid token", "Bearer " + valid, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusNoContent {
				assert.Equal(t, "user-1", seen)
			} else {
				assert.Empty(t, seen)
			}
		})
	}
}

func TestGetUserIDWithoutValue(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetUserID(req.Context()))
}
