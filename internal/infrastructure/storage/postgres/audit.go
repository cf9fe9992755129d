package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/klauspost/compress/zstd"

	"smartshop/internal/core/clock"
	appctx "smartshop/internal/core/context"
	"smartshop/internal/core/id"
	"smartshop/internal/domain/audit"
)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the change-set size above which rows are compressed.
const DefaultCompressThreshold = 10 * 1024

var _ audit.Recorder = (*AuditService)(nil)

// auditRow is the sys_audit row layout.
type auditRow struct {
	ID                id.ID           `db:"id"`
	EntityType        string          `db:"entity_type"`
	EntityID          id.ID           `db:"entity_id"`
	Action            string          `db:"action"`
	UserID            string          `db:"user_id"`
	UserName          string          `db:"user_name"`
	Changes           json.RawMessage `db:"changes"`
	ChangesCompressed []byte          `db:"changes_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditService writes change sets to sys_audit, zstd-compressing large ones.
type AuditService struct {
	txManager         *TxManager
	clock             clock.Clock
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditService creates a new audit service. Entries are stamped by clk,
// or by the system clock when clk is nil.
func NewAuditService(txManager *TxManager, clk clock.Clock) (*AuditService, error) {
	if clk == nil {
		clk = clock.System{}
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditService{
		txManager:         txManager,
		clock:             clk,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
	}, nil
}

// Record implements audit.Recorder.
func (s *AuditService) Record(ctx context.Context, entityType string, entityID id.ID, action audit.Action, changes any) error {
	payload, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}

	row := auditRow{
		ID:         id.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     string(action),
		CreatedAt:  s.clock.Now(),
	}
	if user := appctx.GetUser(ctx); user != nil {
		row.UserID = user.UserID
		row.UserName = user.UserName
	}
	row.Changes, row.ChangesCompressed, row.CompressionAlgo = s.pack(payload)

	sql, args, err := Builder.Insert("sys_audit").SetMap(StructToMap(row)).ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}
	if _, err := s.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// History implements audit.Recorder. Entries are newest first.
func (s *AuditService) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	q := Builder.
		Select(ExtractDBColumns[auditRow]()...).
		From("sys_audit").
		Where(squirrel.Eq{"entity_type": entityType, "entity_id": entityID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	var rows []auditRow
	if err := Select(ctx, s.txManager.GetQuerier(ctx), &rows, q); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	entries := make([]audit.Entry, 0, len(rows))
	for _, r := range rows {
		changes, err := s.unpack(r)
		if err != nil {
			return nil, err
		}
		entries = append(entries, audit.Entry{
			ID:         r.ID,
			EntityType: r.EntityType,
			EntityID:   r.EntityID,
			Action:     audit.Action(r.Action),
			UserID:     r.UserID,
			UserName:   r.UserName,
			Changes:    changes,
			CreatedAt:  r.CreatedAt,
		})
	}
	return entries, nil
}

func (s *AuditService) pack(payload []byte) (json.RawMessage, []byte, CompressionAlgo) {
	if len(payload) > s.compressThreshold {
		return nil, s.encoder.EncodeAll(payload, nil), CompressionZstd
	}
	return payload, nil, CompressionNone
}

func (s *AuditService) unpack(r auditRow) (json.RawMessage, error) {
	if r.CompressionAlgo != CompressionZstd {
		return r.Changes, nil
	}
	raw, err := s.decoder.DecodeAll(r.ChangesCompressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress changes %s: %w", r.ID, err)
	}
	return raw, nil
}
