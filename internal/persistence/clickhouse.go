package persistence

import (
	"context"
	"strings"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/quantfold/shadowbench/errs"
	"github.com/quantfold/shadowbench/internal/schema"
	"github.com/quantfold/shadowbench/internal/timeutil"
)

// clickhouseBackend performs a single columnar bulk insert per flush.
type clickhouseBackend struct {
	conn      driver.Conn
	closeOnce sync.Once
}

func newClickHouseBackend(url string) (*clickhouseBackend, error) {
	opts, err := clickhouse.ParseDSN(strings.TrimSpace(url))
	if err != nil {
		return nil, errs.New("persistence", errs.CodeInvalid,
			errs.WithMessage("invalid clickhouse url"), errs.WithCause(err))
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, errs.New("persistence", errs.CodeNetwork,
			errs.WithMessage("open clickhouse connection"), errs.WithCause(err))
	}
	return &clickhouseBackend{conn: conn}, nil
}

// Write bulk-inserts rows with the stable lexicographic column ordering.
func (b *clickhouseBackend) Write(ctx context.Context, table string, rows []schema.MetricRow) error {
	stmt := "INSERT INTO " + table + " (" + strings.Join(schema.RowColumns, ", ") + ")"
	batch, err := b.conn.PrepareBatch(ctx, stmt)
	if err != nil {
		return errs.New("persistence", errs.CodeBackend,
			errs.WithMessage("prepare clickhouse batch"), errs.WithCause(err))
	}
	for _, row := range rows {
		ts, err := timeutil.ParseISO(row.TS)
		if err != nil {
			return err
		}
		if err := batch.Append(row.Label, row.Metric, row.RunID, row.Symbol, ts, row.Value); err != nil {
			return errs.New("persistence", errs.CodeBackend,
				errs.WithMessage("append clickhouse row"), errs.WithCause(err))
		}
	}
	if err := batch.Send(); err != nil {
		return errs.New("persistence", errs.CodeBackend,
			errs.WithMessage("send clickhouse batch"), errs.WithCause(err))
	}
	return nil
}

func (b *clickhouseBackend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		err = b.conn.Close()
	})
	return err
}
