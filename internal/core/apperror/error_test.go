package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Wrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("save items: %w", NewPersistence("Failed to create invoice.", cause))

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, CodePersistence, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(err))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, appErr.Error(), "connection reset")
}

func TestNormalize(t *testing.T) {
	assert.Nil(t, Normalize(nil, "x"))

	notFound := NewNotFound("invoice", "42")
	assert.Same(t, notFound, Normalize(notFound, "x"))

	err := Normalize(errors.New("boom"), "Failed to update invoice.")
	assert.True(t, IsPersistence(err))
	appErr, _ := AsAppError(err)
	assert.Equal(t, "Failed to update invoice.", appErr.Message)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidation("invoice or items missing"), http.StatusBadRequest},
		{"not found", NewNotFound("invoice", "1"), http.StatusNotFound},
		{"conflict", NewConcurrentModification("products", "1"), http.StatusConflict},
		{"unauthorized", NewUnauthorized("invalid credentials"), http.StatusUnauthorized},
		{"plain error", errors.New("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.err))
		})
	}
}

func TestField(t *testing.T) {
	err := NewValidation("quantity must be positive").WithDetail("field", "items")
	assert.Equal(t, "items", err.Field())
	assert.Equal(t, "", NewValidation("x").Field())
}
