package risk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNextSizeZeroAtMaxLayers(t *testing.T) {
	cfg := PyramidingConfig{MaxLayers: 3, RiskNeutral: true}
	base := decimal.NewFromInt(10)

	require.True(t, NextSize(3, base, cfg).IsZero())
	require.True(t, NextSize(5, base, cfg).IsZero())
}

func TestNextSizeRiskNeutralKeepsBase(t *testing.T) {
	cfg := PyramidingConfig{MaxLayers: 3, RiskNeutral: true}
	base := decimal.RequireFromString("2.5")

	for layer := 0; layer < 3; layer++ {
		require.True(t, base.Equal(NextSize(layer, base, cfg)), "layer %d", layer)
	}
}

func TestNextSizeGeometricProgression(t *testing.T) {
	cfg := PyramidingConfig{MaxLayers: 4, RiskNeutral: false}
	base := decimal.NewFromInt(100)

	require.True(t, decimal.NewFromInt(100).Equal(NextSize(0, base, cfg)))
	require.True(t, decimal.NewFromInt(125).Equal(NextSize(1, base, cfg)))
	require.True(t, decimal.NewFromInt(150).Equal(NextSize(2, base, cfg)))
	require.True(t, decimal.NewFromInt(175).Equal(NextSize(3, base, cfg)))
	require.True(t, NextSize(4, base, cfg).IsZero())
}
