// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"smartshop/internal/core/entity"
	"smartshop/internal/core/types"
)

// ListResponse wraps one page of results.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// BaseResponse contains common response fields.
type BaseResponse struct {
	ID        string    `json:"id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromBase creates BaseResponse from entity.BaseEntity.
func FromBase(b entity.BaseEntity) BaseResponse {
	return BaseResponse{
		ID:        b.ID.String(),
		Version:   b.Version,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// MoneyString renders an amount with the stored two-digit scale.
func MoneyString(m types.Money) string {
	return m.StringFixed(types.MoneyScale)
}
