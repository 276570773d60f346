package persistence

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantfold/shadowbench/errs"
	"github.com/quantfold/shadowbench/internal/schema"
	"github.com/quantfold/shadowbench/internal/timeutil"
)

// timescaleBackend upserts each flush through one parameterized statement.
type timescaleBackend struct {
	pool *pgxpool.Pool
}

func newTimescaleBackend(ctx context.Context, dsn string) (*timescaleBackend, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(dsn))
	if err != nil {
		return nil, errs.New("persistence", errs.CodeInvalid,
			errs.WithMessage("invalid timescale dsn"), errs.WithCause(err))
	}
	return &timescaleBackend{pool: pool}, nil
}

// Write builds a multi-row INSERT ... ON CONFLICT DO UPDATE where every
// non-key column takes the incoming value.
func (b *timescaleBackend) Write(ctx context.Context, table string, rows []schema.MetricRow) error {
	sql, args, err := upsertStatement(table, rows)
	if err != nil {
		return err
	}
	if _, err := b.pool.Exec(ctx, sql, args...); err != nil {
		return errs.New("persistence", errs.CodeBackend,
			errs.WithMessage("timescale upsert"), errs.WithCause(err))
	}
	return nil
}

func (b *timescaleBackend) Close() error {
	b.pool.Close()
	return nil
}

func upsertStatement(table string, rows []schema.MetricRow) (string, []any, error) {
	columns := schema.RowColumns
	width := len(columns)

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*width)
	for i, row := range rows {
		ts, err := timeutil.ParseISO(row.TS)
		if err != nil {
			return "", nil, err
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < width; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(i*width + j + 1))
		}
		sb.WriteString(")")
		args = append(args, row.Label, row.Metric, row.RunID, row.Symbol, ts, row.Value)
	}

	sb.WriteString(" ON CONFLICT (")
	sb.WriteString(strings.Join(schema.RowPrimaryKey, ", "))
	sb.WriteString(") DO UPDATE SET ")

	pk := make(map[string]struct{}, len(schema.RowPrimaryKey))
	for _, col := range schema.RowPrimaryKey {
		pk[col] = struct{}{}
	}
	first := true
	for _, col := range columns {
		if _, isKey := pk[col]; isKey {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		sb.WriteString(col)
		sb.WriteString(" = EXCLUDED.")
		sb.WriteString(col)
		first = false
	}

	return sb.String(), args, nil
}
