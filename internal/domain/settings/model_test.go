package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"smartshop/internal/core/apperror"
)

func TestSetting_Validate(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		value    string
		dataType DataType
		valid    bool
	}{
		{"text", "hello", DataTypeText, true},
		{"number", "12.5", DataTypeNumber, true},
		{"bad number", "twelve", DataTypeNumber, false},
		{"boolean", "true", DataTypeBoolean, true},
		{"bad boolean", "yes please", DataTypeBoolean, false},
		{"json", `{"a":1}`, DataTypeJSON, true},
		{"bad json", `{a:1}`, DataTypeJSON, false},
		{"unknown type", "x", DataType("xml"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSetting("k", tt.value, tt.dataType, "").Validate(ctx)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperror.IsValidation(err))
			}
		})
	}
}

func TestSetting_RequiresKey(t *testing.T) {
	err := NewSetting("", "x", DataTypeText, "").Validate(context.Background())
	appErr, ok := apperror.AsAppError(err)
	if assert.True(t, ok) {
		assert.Equal(t, "key", appErr.Field())
	}
}
