package services

import (
	"errors"
	"fmt"
	"testing"

	"photo-social-backend/internal/repository"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	driverErr := errors.New("pq: connection refused")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"not found", repository.ErrNotFound, ErrNotFound},
		{"foreign key", fmt.Errorf("failed to create like: %w", repository.ErrForeignKey), ErrNotFound},
		{"email taken", repository.ErrEmailTaken, ErrConflict},
		{"display name taken", repository.ErrDisplayNameTaken, ErrConflict},
		{"service error passes through", fmt.Errorf("x: %w", ErrPermissionDenied), ErrPermissionDenied},
		{"anything else", driverErr, ErrStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translate("op", tt.in), tt.want)
		})
	}

	assert.NoError(t, translate("op", nil))
	assert.False(t, errors.Is(translate("op", driverErr), driverErr))
}
