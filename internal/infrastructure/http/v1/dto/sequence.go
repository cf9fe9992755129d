package dto

import (
	"time"

	"github.com/samber/lo"

	"smartshop/internal/domain/sequence"
)

// ConfigureSequenceRequest is the body of PUT /sequences/:key.
type ConfigureSequenceRequest struct {
	Prefix      string `json:"prefix" binding:"max=20"`
	Length      int    `json:"length" binding:"required,min=1"`
	Description string `json:"description" binding:"max=200"`
}

// ToSettings converts DTO to domain settings.
func (r *ConfigureSequenceRequest) ToSettings() sequence.Settings {
	return sequence.Settings{Prefix: r.Prefix, Length: r.Length, Description: r.Description}
}

// SequenceResponse is one counter.
type SequenceResponse struct {
	Key         string    `json:"key"`
	Description string    `json:"description"`
	Prefix      string    `json:"prefix"`
	Length      int       `json:"length"`
	Value       int64     `json:"value"`
	Current     string    `json:"current"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FromSequence creates response DTO from a counter.
func FromSequence(c *sequence.Config) *SequenceResponse {
	return &SequenceResponse{
		Key:         c.Key,
		Description: c.Description,
		Prefix:      c.Prefix,
		Length:      c.Length,
		Value:       c.Value,
		Current:     c.Format(c.Value),
		UpdatedAt:   c.UpdatedAt,
	}
}

// FromSequences maps a list of counters.
func FromSequences(configs []*sequence.Config) []*SequenceResponse {
	return lo.Map(configs, func(c *sequence.Config, _ int) *SequenceResponse { return FromSequence(c) })
}

// NextValueResponse is the result of GET /sequences/:key/next.
type NextValueResponse struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Increment bool   `json:"increment"`
}
