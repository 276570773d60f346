// Package numeric provides shared numeric helpers for simulation statistics.
package numeric

// KahanSum accumulates float64 values with compensated summation so that
// long replay runs do not lose small per-event costs to rounding.
type KahanSum struct {
	sum float64
	c   float64
}

// Add folds x into the running sum.
func (k *KahanSum) Add(x float64) {
	y := x - k.c
	t := k.sum + y
	k.c = (t - k.sum) - y
	k.sum = t
}

// Value returns the compensated total.
func (k *KahanSum) Value() float64 {
	return k.sum
}
