package persistence

import (
	"github.com/quantfold/shadowbench/internal/schema"
)

// DedupeRows collapses a batch to one row per primary key, keeping the last
// occurrence in iteration order (last-write-wins). Output order is the order
// in which each key first appeared, so repeated flushes of the same stream
// stay stable.
func DedupeRows(rows []schema.MetricRow) []schema.MetricRow {
	if len(rows) <= 1 {
		return rows
	}
	index := make(map[schema.RowKey]int, len(rows))
	out := make([]schema.MetricRow, 0, len(rows))
	for _, row := range rows {
		key := row.Key()
		if at, seen := index[key]; seen {
			out[at] = row
			continue
		}
		index[key] = len(out)
		out = append(out, row)
	}
	return out
}
