// Package fill converts trade intents and market snapshots into simulated
// execution outcomes under a configurable slippage model.
package fill

import (
	"math"

	"github.com/quantfold/shadowbench/errs"
	"github.com/quantfold/shadowbench/internal/schema"
)

// SlippageMode selects how the execution price deviates from the reference.
type SlippageMode string

const (
	// ModeFixedTicks applies a flat tick-size offset independent of price.
	ModeFixedTicks SlippageMode = "fixed_ticks"
	// ModeBasisPoints scales the reference price by a basis-point rate.
	ModeBasisPoints SlippageMode = "bps"
	// ModePctSpread scales the quoted spread by a percentage.
	ModePctSpread SlippageMode = "pct_spread"
	// ModeHybrid blends the basis-point and spread offsets by a fixed weight.
	ModeHybrid SlippageMode = "hybrid"
)

// minSpread floors the spread where it enters a rate term, so zero-spread
// snapshots degrade gracefully instead of producing NaNs or zero offsets.
const minSpread = 1e-9

// Config fixes the slippage policy and the random stream of a Model.
type Config struct {
	Mode         SlippageMode
	TickSize     float64
	BPS          float64
	PctSpread    float64
	HybridWeight float64
	BidAskAware  bool
	Seed         int64
}

// Validate checks that the configuration describes a usable policy.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeFixedTicks, ModeBasisPoints, ModePctSpread, ModeHybrid:
	default:
		return errs.New("fill", errs.CodeInvalid, errs.WithMessage("unknown slippage mode "+string(c.Mode)))
	}
	if c.TickSize < 0 {
		return errs.New("fill", errs.CodeInvalid, errs.WithMessage("tick size must be non-negative"))
	}
	if c.BPS < 0 {
		return errs.New("fill", errs.CodeInvalid, errs.WithMessage("bps rate must be non-negative"))
	}
	if c.PctSpread < 0 {
		return errs.New("fill", errs.CodeInvalid, errs.WithMessage("pct-spread rate must be non-negative"))
	}
	if c.HybridWeight < 0 || c.HybridWeight > 1 {
		return errs.New("fill", errs.CodeInvalid, errs.WithMessage("hybrid weight must lie in [0,1]"))
	}
	return nil
}

// Model simulates fills for a single configuration. It holds no state across
// evaluations besides the position of its random stream.
type Model struct {
	cfg Config
	rng *Source
}

// New constructs a Model after validating the configuration.
func New(cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Model{cfg: cfg, rng: NewSource(cfg.Seed)}, nil
}

// Slippage returns the signed execution-price offset for the given side.
// The sign always matches the side: positive for buys, negative for sells.
func (m *Model) Slippage(snap schema.MarketSnapshot, side schema.Side) float64 {
	ref := m.referencePrice(snap, side)
	spread := math.Max(snap.Spread, minSpread)

	var magnitude float64
	switch m.cfg.Mode {
	case ModeFixedTicks:
		magnitude = m.cfg.TickSize
	case ModeBasisPoints:
		magnitude = ref * (m.cfg.BPS / 1e4)
	case ModePctSpread:
		magnitude = spread * (m.cfg.PctSpread / 100)
	case ModeHybrid:
		bps := ref * (m.cfg.BPS / 1e4)
		sp := spread * (m.cfg.PctSpread / 100)
		magnitude = m.cfg.HybridWeight*bps + (1-m.cfg.HybridWeight)*sp
	}
	return magnitude * side.Sign()
}

// MarketFill executes the full requested quantity at the reference price plus
// slippage. A zero-spread snapshot still fills: the reference degrades to the
// last trade price when bid == ask.
func (m *Model) MarketFill(snap schema.MarketSnapshot, intent schema.OrderIntent) schema.FillOutcome {
	slip := m.Slippage(snap, intent.Side)
	ref := m.referencePrice(snap, intent.Side)
	return schema.FillOutcome{
		Price:     ref + slip,
		FilledQty: intent.Quantity,
		SlipCost:  math.Abs(slip) * intent.Quantity,
		Status:    schema.FillStatusFilled,
	}
}

// LimitFill executes marketable limit orders at the touch plus slippage,
// clamped so the execution price never violates the limit. Non-marketable
// orders rest; they never produce a probabilistic partial fill.
func (m *Model) LimitFill(snap schema.MarketSnapshot, intent schema.OrderIntent) schema.FillOutcome {
	if intent.LimitPrice == nil {
		return schema.NoFill()
	}
	limit := *intent.LimitPrice
	touch := snap.Touch(intent.Side)

	marketable := (intent.Side == schema.SideBuy && limit >= touch) ||
		(intent.Side == schema.SideSell && limit <= touch)
	if !marketable {
		return schema.Resting()
	}

	price := touch + m.Slippage(snap, intent.Side)
	if intent.Side == schema.SideBuy {
		price = math.Min(price, limit)
	} else {
		price = math.Max(price, limit)
	}
	return schema.FillOutcome{
		Price:     price,
		FilledQty: intent.Quantity,
		SlipCost:  math.Abs(price-touch) * intent.Quantity,
		Status:    schema.FillStatusFilled,
	}
}

// StopFill triggers when the last trade crosses the stop price (at or above
// for buys, at or below for sells) and then executes as a market order with
// the status overridden to triggered.
func (m *Model) StopFill(snap schema.MarketSnapshot, intent schema.OrderIntent) schema.FillOutcome {
	if intent.StopPrice == nil || !stopTriggered(snap, intent) {
		return schema.NoFill()
	}
	out := m.MarketFill(snap, intent)
	out.Status = schema.FillStatusTriggered
	return out
}

// StopLimitFill applies the stop trigger test and then delegates to LimitFill,
// inheriting its filled, resting, or no_fill outcome unchanged.
func (m *Model) StopLimitFill(snap schema.MarketSnapshot, intent schema.OrderIntent) schema.FillOutcome {
	if intent.StopPrice == nil || !stopTriggered(snap, intent) {
		return schema.NoFill()
	}
	return m.LimitFill(snap, intent)
}

// Fill dispatches by order kind. Unrecognized kinds resolve to no_fill with
// zero quantity and cost; they are not an error.
func (m *Model) Fill(snap schema.MarketSnapshot, intent schema.OrderIntent) schema.FillOutcome {
	switch intent.Kind {
	case schema.OrderKindMarket:
		return m.MarketFill(snap, intent)
	case schema.OrderKindLimit:
		return m.LimitFill(snap, intent)
	case schema.OrderKindStop:
		return m.StopFill(snap, intent)
	case schema.OrderKindStopLimit:
		return m.StopLimitFill(snap, intent)
	}
	return schema.NoFill()
}

func (m *Model) referencePrice(snap schema.MarketSnapshot, side schema.Side) float64 {
	if !m.cfg.BidAskAware {
		return snap.Last
	}
	return snap.Touch(side)
}

func stopTriggered(snap schema.MarketSnapshot, intent schema.OrderIntent) bool {
	stop := *intent.StopPrice
	if intent.Side == schema.SideBuy {
		return snap.Last >= stop
	}
	return snap.Last <= stop
}
