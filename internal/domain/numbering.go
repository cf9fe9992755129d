package domain

import (
	"context"
)

// Numberer issues formatted sequence values (implemented by sequence.Service).
type Numberer interface {
	Next(ctx context.Context, key string, increment bool) (string, error)
}

// AssignCode returns a before-create hook that fills an empty code field
// with the next value of the key counter.
func AssignCode[T any](numberer Numberer, key string, field func(T) *string) Hook[T] {
	return func(ctx context.Context, entity T) error {
		code := field(entity)
		if *code != "" || numberer == nil {
			return nil
		}
		next, err := numberer.Next(ctx, key, true)
		if err != nil {
			return err
		}
		*code = next
		return nil
	}
}
