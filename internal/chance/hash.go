// Package chance implements the deterministic pseudo-random primitives
// behind every probabilistic decision in the daily simulation.
//
// Randomness is derived from caller-supplied string seeds rather than a
// PRNG seeded from wall-clock time. The same seed always produces the
// same result across runs and processes, which makes past turns exactly
// replayable for debugging and testing. Seeds are conventionally shaped
// "{userId}:{dayIndex}:{contextId}" and supplied by the caller.
package chance

import "hash/fnv"

// UnitFloat hashes a seed string to a float in [0, 1).
//
// # Determinism
//
// UnitFloat is a pure function of the seed bytes: repeat calls with the
// same seed return bit-for-bit identical floats, on every platform. The
// hash is FNV-1a (64-bit); the top 53 bits of the digest are scaled into
// the unit interval so the full float64 mantissa is exercised.
func UnitFloat(seed string) float64 {
	h := fnv.New64a()
	// fnv.Write never returns an error.
	_, _ = h.Write([]byte(seed))
	return float64(h.Sum64()>>11) / float64(1<<53)
}
