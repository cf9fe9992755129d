// Package sequence issues human-readable, gap-free counters (product codes,
// customer codes, invoice numbers) keyed by a free-form string.
package sequence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/id"
)

// DefaultLength is the zero-padding width of a lazily created counter.
const DefaultLength = 6

// MaxLength bounds the padding width accepted by Configure.
const MaxLength = 32

// Well-known keys used by the catalog and invoice services.
const (
	KeyProduct  = "Product"
	KeyCustomer = "Customer"
	KeyInvoice  = "Invoice"
)

// Config is one named counter. Value is the last issued number and never decreases.
type Config struct {
	ID          id.ID     `db:"id" json:"id"`
	Key         string    `db:"key" json:"key"`
	Description string    `db:"description" json:"description"`
	Prefix      string    `db:"prefix" json:"prefix"`
	Length      int       `db:"length" json:"length"`
	Value       int64     `db:"value" json:"value"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// NewConfig builds the default counter for an unseen key, already holding
// its first value.
func NewConfig(key string, now time.Time) *Config {
	return &Config{
		ID:          id.New(),
		Key:         key,
		Description: "Sequence for " + key,
		Length:      DefaultLength,
		Value:       1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Format renders n left-padded with zeros to length, joined to a non-empty
// prefix with "-". Numbers wider than length are not truncated.
func Format(prefix string, length int, n int64) string {
	digits := strconv.FormatInt(n, 10)
	if pad := length - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	if prefix == "" {
		return digits
	}
	return prefix + "-" + digits
}

// Format renders value n using this counter's prefix and length.
func (c *Config) Format(n int64) string {
	return Format(c.Prefix, c.Length, n)
}

// Settings are the administrative fields of a counter. Value is never settable.
type Settings struct {
	Prefix      string `json:"prefix" binding:"max=20"`
	Length      int    `json:"length" binding:"required,min=1"`
	Description string `json:"description" binding:"max=200"`
}

// Validate checks Settings invariants.
func (s Settings) Validate() error {
	if s.Length < 1 || s.Length > MaxLength {
		return apperror.NewValidation(fmt.Sprintf("length must be between 1 and %d", MaxLength)).
			WithDetail("field", "length")
	}
	if strings.ContainsAny(s.Prefix, " \t\n") {
		return apperror.NewValidation("prefix must not contain whitespace").
			WithDetail("field", "prefix")
	}
	return nil
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return apperror.NewValidation("sequence key is required").WithDetail("field", "key")
	}
	if len(key) > 100 {
		return apperror.NewValidation("sequence key is too long").WithDetail("field", "key")
	}
	return nil
}
