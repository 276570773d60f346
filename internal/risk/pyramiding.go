// Package risk provides pure position-sizing helpers used by strategies that
// layer into a position over multiple entries.
package risk

import "github.com/shopspring/decimal"

// PyramidingConfig bounds how a strategy may add layers to a position.
type PyramidingConfig struct {
	// MaxLayers caps the number of entries; at or beyond it the next size is zero.
	MaxLayers int
	// RiskNeutral keeps every layer at the base size instead of scaling up.
	RiskNeutral bool
}

var layerStep = decimal.RequireFromString("0.25")

// NextSize returns the size of the next pyramiding layer. When the strategy
// is not risk-neutral, sizes follow the progression base × (1 + 0.25·layers).
func NextSize(currentLayers int, baseSize decimal.Decimal, cfg PyramidingConfig) decimal.Decimal {
	if currentLayers >= cfg.MaxLayers {
		return decimal.Zero
	}
	if cfg.RiskNeutral {
		return baseSize
	}
	scale := decimal.NewFromInt(1).Add(layerStep.Mul(decimal.NewFromInt(int64(currentLayers))))
	return baseSize.Mul(scale)
}
