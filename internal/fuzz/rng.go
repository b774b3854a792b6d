package fuzz

// LCG parameters (Numerical Recipes).
const (
	lcgA = 1664525
	lcgC = 1013904223
)

// RNG is a 32-bit linear congruential generator. Every generation call
// owns its RNG; strategies receive it explicitly.
type RNG struct {
	state uint32
}

// NewRNG seeds a generator. Only the low 32 bits of seed are used.
func NewRNG(seed int64) *RNG {
	return &RNG{state: uint32(seed)}
}

// Next advances the generator and returns the new state.
func (r *RNG) Next() uint32 {
	r.state = lcgA*r.state + lcgC
	return r.state
}

// Float64 returns a value in [0, 1).
func (r *RNG) Float64() float64 {
	return float64(r.Next()) / (1 << 32)
}

// Intn returns a value in [0, n). n must be positive.
func (r *RNG) Intn(n int) int {
	return int(r.Float64() * float64(n))
}

// Between returns a value in [lo, hi].
func (r *RNG) Between(lo, hi int) int {
	return lo + r.Intn(hi-lo+1)
}

// Pick returns a uniformly chosen element of xs, which must be non-empty.
func Pick[T any](r *RNG, xs []T) T {
	return xs[r.Intn(len(xs))]
}

// Shuffle permutes xs in place (Fisher-Yates).
func Shuffle[T any](r *RNG, xs []T) {
	for i := len(xs) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}
