// Package settings stores typed key/value configuration editable at runtime.
package settings

import (
	"context"
	"encoding/json"
	"strconv"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/entity"
	"smartshop/internal/core/validation"
)

// DataType names how Value is interpreted.
type DataType string

const (
	DataTypeText    DataType = "text"
	DataTypeNumber  DataType = "number"
	DataTypeBoolean DataType = "boolean"
	DataTypeJSON    DataType = "json"
)

// Setting is one named value.
type Setting struct {
	entity.BaseEntity

	Key         string   `db:"key" json:"key" validate:"required,max=100"`
	Value       string   `db:"value" json:"value"`
	DataType    DataType `db:"data_type" json:"dataType" validate:"required,oneof=text number boolean json"`
	Description string   `db:"description" json:"description" validate:"max=500"`
}

// NewSetting creates a new Setting.
func NewSetting(key, value string, dataType DataType, description string) *Setting {
	return &Setting{
		BaseEntity:  entity.NewBaseEntity(),
		Key:         key,
		Value:       value,
		DataType:    dataType,
		Description: description,
	}
}

// Validate implements entity.Validatable interface.
func (s *Setting) Validate(_ context.Context) error {
	if err := validation.Struct(s); err != nil {
		return err
	}
	if !s.valueMatchesType() {
		return apperror.NewValidation("value does not match data type "+string(s.DataType)).
			WithDetail("field", "value")
	}
	return nil
}

func (s *Setting) valueMatchesType() bool {
	switch s.DataType {
	case DataTypeNumber:
		_, err := strconv.ParseFloat(s.Value, 64)
		return err == nil
	case DataTypeBoolean:
		_, err := strconv.ParseBool(s.Value)
		return err == nil
	case DataTypeJSON:
		return json.Valid([]byte(s.Value))
	}
	return true
}

// Bool returns the value of a boolean setting.
func (s *Setting) Bool() (bool, error) {
	return strconv.ParseBool(s.Value)
}

// Float returns the value of a number setting.
func (s *Setting) Float() (float64, error) {
	return strconv.ParseFloat(s.Value, 64)
}
