package fill

import "math/rand"

// Source is an explicit, seeded pseudo-random stream. Each Model owns its own
// Source so concurrent simulations with different seeds cannot interfere, and
// runs with equal seeds consume identical draw sequences.
type Source struct {
	rng *rand.Rand
}

// NewSource creates a deterministic source from the given seed.
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Float64 returns the next draw in [0,1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Binomial returns the number of successes in n Bernoulli trials with
// probability p, consuming exactly n draws.
func (s *Source) Binomial(n int, p float64) int {
	if n <= 0 || p <= 0 {
		return 0
	}
	if p >= 1 {
		return n
	}
	successes := 0
	for i := 0; i < n; i++ {
		if s.rng.Float64() < p {
			successes++
		}
	}
	return successes
}
