// Package schema defines the shared data model exchanged between the replay
// orchestrator, the fill engine, and the persistence pipeline.
package schema

import (
	"github.com/quantfold/shadowbench/errs"
)

// Side encodes order direction: +1 for buys, -1 for sells.
type Side int

const (
	// SideBuy marks an order that lifts the ask.
	SideBuy Side = 1
	// SideSell marks an order that hits the bid.
	SideSell Side = -1
)

// Sign returns +1 for buys and -1 for sells as a float factor.
func (s Side) Sign() float64 {
	if s < 0 {
		return -1
	}
	return 1
}

// OrderKind enumerates the supported order types.
type OrderKind string

const (
	// OrderKindMarket executes immediately at the touch plus slippage.
	OrderKindMarket OrderKind = "market"
	// OrderKindLimit executes only at or better than the limit price.
	OrderKindLimit OrderKind = "limit"
	// OrderKindStop converts to a market order once the stop triggers.
	OrderKindStop OrderKind = "stop"
	// OrderKindStopLimit converts to a limit order once the stop triggers.
	OrderKindStopLimit OrderKind = "stop-limit"
)

// TimeInForce enumerates order lifetimes. The fill engine evaluates a single
// snapshot at a time, so the value is carried but never shortens an evaluation.
type TimeInForce string

// TIFGoodTillCancel keeps the order working until cancelled.
const TIFGoodTillCancel TimeInForce = "GTC"

// OrderIntent is an immutable trade intent evaluated against one snapshot.
type OrderIntent struct {
	Side       Side
	Kind       OrderKind
	Quantity   float64
	LimitPrice *float64
	StopPrice  *float64
	TIF        TimeInForce
	// QueuePos estimates position in the resting queue: 0 front, 1 back.
	QueuePos float64
}

// Validate checks the structural invariants of the intent.
func (o OrderIntent) Validate() error {
	if o.Side != SideBuy && o.Side != SideSell {
		return errs.New("schema", errs.CodeInvalid, errs.WithMessage("side must be +1 or -1"))
	}
	if o.Quantity <= 0 {
		return errs.New("schema", errs.CodeInvalid, errs.WithMessage("quantity must be positive"))
	}
	if o.QueuePos < 0 || o.QueuePos > 1 {
		return errs.New("schema", errs.CodeInvalid, errs.WithMessage("queue position must lie in [0,1]"))
	}
	return nil
}
