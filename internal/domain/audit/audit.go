// Package audit defines the change history recorded for business entities.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"smartshop/internal/core/id"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entry is one recorded change. Changes holds the decoded JSON change set.
type Entry struct {
	ID         id.ID           `db:"id" json:"id"`
	EntityType string          `db:"entity_type" json:"entityType"`
	EntityID   id.ID           `db:"entity_id" json:"entityId"`
	Action     Action          `db:"action" json:"action"`
	UserID     string          `db:"user_id" json:"userId,omitempty"`
	UserName   string          `db:"user_name" json:"userName,omitempty"`
	Changes    json.RawMessage `db:"changes" json:"changes"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// Recorder persists change sets. Record must join the transaction carried by ctx
// so that an audit row exists if and only if the change it describes committed.
type Recorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action Action, changes any) error
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]Entry, error)
}

// Change is the conventional change-set shape: the state before and after.
type Change struct {
	Before any `json:"before,omitempty"`
	After  any `json:"after,omitempty"`
}

// Nop discards every record.
type Nop struct{}

func (Nop) Record(context.Context, string, id.ID, Action, any) error { return nil }

func (Nop) History(context.Context, string, id.ID, int) ([]Entry, error) { return nil, nil }
