package schema

import (
	"github.com/quantfold/shadowbench/errs"
)

// MetricRow is one persisted cost observation. The tuple
// (RunID, TS, Symbol, Metric) uniquely identifies a row for deduplication
// and upsert purposes.
type MetricRow struct {
	RunID  string  `json:"run_id"`
	TS     string  `json:"ts"`
	Symbol string  `json:"symbol"`
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
	Label  string  `json:"label"`
}

// RowColumns lists every persisted column in stable lexicographic order.
// Both backends write columns in exactly this order.
var RowColumns = []string{"label", "metric", "run_id", "symbol", "ts", "value"}

// RowPrimaryKey lists the primary-key columns in declaration order.
var RowPrimaryKey = []string{"run_id", "ts", "symbol", "metric"}

// Key returns the primary-key tuple used for dedup and conflict resolution.
func (r MetricRow) Key() RowKey {
	return RowKey{RunID: r.RunID, TS: r.TS, Symbol: r.Symbol, Metric: r.Metric}
}

// RowKey is the comparable primary key of a MetricRow.
type RowKey struct {
	RunID  string
	TS     string
	Symbol string
	Metric string
}

// Validate reports which primary-key field is missing, if any.
func (r MetricRow) Validate() error {
	switch {
	case r.RunID == "":
		return missingKey("run_id")
	case r.TS == "":
		return missingKey("ts")
	case r.Symbol == "":
		return missingKey("symbol")
	case r.Metric == "":
		return missingKey("metric")
	}
	return nil
}

func missingKey(field string) error {
	return errs.New("schema", errs.CodeInvalid,
		errs.WithMessage("missing primary-key field "+field),
		errs.WithRemediation("populate run_id, ts, symbol, and metric before submitting"))
}
