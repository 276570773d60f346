// Package replay drives recorded trade-intent streams through the fill engine
// and feeds the resulting cost observations into the persistence pipeline.
package replay

import (
	"os"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/quantfold/shadowbench/errs"
	"github.com/quantfold/shadowbench/internal/schema"
	"github.com/quantfold/shadowbench/internal/timeutil"
)

// Event is one recorded trade intent together with the market state it is
// evaluated against. Optional fields follow the recorded-stream conventions:
// a missing side means buy, a missing type means market, quantities default
// to one unit.
type Event struct {
	TS       int64    `json:"ts"`
	Symbol   string   `json:"symbol"`
	ID       int64    `json:"id"`
	Side     int      `json:"side"`
	Type     string   `json:"type"`
	Qty      float64  `json:"qty"`
	Limit    *float64 `json:"limit"`
	Stop     *float64 `json:"stop"`
	QueuePos *float64 `json:"queue_pos"`
	Last     float64  `json:"last"`
	Mark     float64  `json:"mark"`
	Bid      float64  `json:"bid"`
	Ask      float64  `json:"ask"`
	Vol      float64  `json:"vol"`
}

// LoadEvents decodes a JSON array of events from path.
func LoadEvents(path string) ([]Event, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- path is operator provided via CLI flags.
	if err != nil {
		return nil, errs.New("replay", errs.CodeNotFound,
			errs.WithMessage("read events file "+path), errs.WithCause(err))
	}
	var events []Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, errs.New("replay", errs.CodeInvalid,
			errs.WithMessage("parse events file "+path), errs.WithCause(err))
	}
	return events, nil
}

// SortEvents orders events deterministically by timestamp, then symbol, then
// event id, so equal seeds consume identical random streams across runs.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.TS != b.TS {
			return a.TS < b.TS
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.ID < b.ID
	})
}

// Snapshot shapes the event's market state into a normalized snapshot.
func (e Event) Snapshot() schema.MarketSnapshot {
	vol := e.Vol
	if vol == 0 {
		vol = 1
	}
	return schema.MarketSnapshot{
		TS:     timeutil.FromEpoch(e.TS),
		Last:   e.Last,
		Mark:   e.Mark,
		Bid:    e.Bid,
		Ask:    e.Ask,
		Volume: vol,
	}.Normalize()
}

// Intent shapes the event's order fields into an OrderIntent.
func (e Event) Intent() schema.OrderIntent {
	side := schema.SideBuy
	if e.Side < 0 {
		side = schema.SideSell
	}
	kind := schema.OrderKind(e.Type)
	if e.Type == "" {
		kind = schema.OrderKindMarket
	}
	qty := e.Qty
	if qty == 0 {
		qty = 1
	}
	queuePos := 0.5
	if e.QueuePos != nil {
		queuePos = *e.QueuePos
	}
	return schema.OrderIntent{
		Side:       side,
		Kind:       kind,
		Quantity:   qty,
		LimitPrice: e.Limit,
		StopPrice:  e.Stop,
		TIF:        schema.TIFGoodTillCancel,
		QueuePos:   queuePos,
	}
}
