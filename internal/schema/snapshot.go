package schema

import (
	"time"

	"github.com/quantfold/shadowbench/errs"
)

// MarketSnapshot is an immutable view of one symbol's market state at an instant.
type MarketSnapshot struct {
	TS     time.Time
	Last   float64
	Mark   float64
	Bid    float64
	Ask    float64
	Spread float64
	Volume float64
}

// Normalize returns a copy with the defaulting rules applied: the last trade
// price substitutes for a missing bid or ask, the mark defaults to last, and
// the spread defaults to ask minus bid.
func (m MarketSnapshot) Normalize() MarketSnapshot {
	out := m
	if out.Bid == 0 {
		out.Bid = out.Last
	}
	if out.Ask == 0 {
		out.Ask = out.Last
	}
	if out.Mark == 0 {
		out.Mark = out.Last
	}
	if out.Spread == 0 {
		out.Spread = out.Ask - out.Bid
	}
	return out
}

// Validate checks the price invariants of the snapshot.
func (m MarketSnapshot) Validate() error {
	if m.Last < 0 || m.Mark < 0 || m.Bid < 0 || m.Ask < 0 {
		return errs.New("schema", errs.CodeInvalid, errs.WithMessage("snapshot prices must be non-negative"))
	}
	if m.Volume < 0 {
		return errs.New("schema", errs.CodeInvalid, errs.WithMessage("snapshot volume must be non-negative"))
	}
	return nil
}

// Touch returns the best available execution price for the given side:
// the ask for buys, the bid for sells.
func (m MarketSnapshot) Touch(side Side) float64 {
	if side == SideBuy {
		return m.Ask
	}
	return m.Bid
}
