package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// CopyFromSlice bulk inserts rows using the COPY protocol.
// It must run inside a transaction so a failed copy leaves nothing behind.
func (m *TxManager) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	t := m.GetTx(ctx)
	if t == nil {
		return 0, fmt.Errorf("copy into %s requires transaction context", table)
	}
	n, err := t.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

// RowsFor projects each item onto columns using its db tags.
func RowsFor[T any](items []T, columns []string) [][]any {
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		m := StructToMap(item)
		row := make([]any, len(columns))
		for i, c := range columns {
			row[i] = copyValue(m[c])
		}
		rows = append(rows, row)
	}
	return rows
}

// copyValue converts values the binary COPY encoder cannot handle directly.
func copyValue(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return Numeric(d)
	}
	return v
}

// Numeric converts a decimal into its pgtype representation.
func Numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}
