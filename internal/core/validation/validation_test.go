package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartshop/internal/core/apperror"
)

type sample struct {
	Name  string `json:"name" validate:"required,max=5"`
	Email string `json:"email" validate:"omitempty,email"`
	Kind  string `json:"kind" validate:"oneof=a b"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "ok", Kind: "a"}))

	err := Struct(sample{Name: "", Email: "nope", Kind: "c"})
	require.True(t, apperror.IsValidation(err))

	appErr, _ := apperror.AsAppError(err)
	fields := appErr.Details["fields"].(map[string]string)
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be one of: a b", fields["kind"])
	assert.Equal(t, "name", appErr.Field())
}
