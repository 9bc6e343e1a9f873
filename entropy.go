package genomesig

import (
	"errors"
	"math"
)

// entropy.go holds the information-theoretic primitives shared by the
// anomaly scanner and the genome comparison helpers. All divergences
// use log base 2 (bits).

// ErrDimensionMismatch is returned when two vectors that must share a
// dimension do not. This is a caller contract violation, not a data
// condition, so it surfaces as an error instead of a neutral result.
var ErrDimensionMismatch = errors.New("genomesig: vector dimensions do not match")

// klEpsilon replaces zero reference probabilities so log(0) never
// occurs when the window contains a k-mer absent from the background.
const klEpsilon = 1e-6

// KLDivergence computes D_KL(P||Q) in bits, summing over entries where
// P is positive and clamping zero Q entries to a small epsilon. The
// result is floored at 0 to absorb floating-point noise.
func KLDivergence(p, q []float64) (float64, error) {
	if len(p) != len(q) {
		return 0, ErrDimensionMismatch
	}
	var d float64
	for i, pi := range p {
		if pi <= 0 {
			continue
		}
		qi := q[i]
		if qi <= 0 {
			qi = klEpsilon
		}
		d += pi * math.Log2(pi/qi)
	}
	if d < 0 {
		d = 0
	}
	return d, nil
}

// ShannonEntropy computes H(X) = -sum p*log2(p) in bits over a
// probability distribution. Invalid entries (p <= 0 or p > 1) are
// skipped; the result is clamped to be non-negative.
func ShannonEntropy(probs []float64) float64 {
	var h float64
	for _, p := range probs {
		if p > 0 && p <= 1 {
			h -= p * math.Log2(p)
		}
	}
	if h < 0 {
		h = 0
	}
	return h
}

// ShannonEntropyFromCounts normalizes a count vector internally and
// returns its Shannon entropy in bits. Returns 0 for an empty or
// all-zero vector.
func ShannonEntropyFromCounts(counts []float64) float64 {
	var total float64
	for _, c := range counts {
		total += c
	}
	if total <= 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		if c > 0 {
			p := c / total
			h -= p * math.Log2(p)
		}
	}
	if h < 0 {
		h = 0
	}
	return h
}

// JensenShannonDivergence computes the symmetric, bounded JSD between
// two probability distributions, in [0, 1] with log base 2.
func JensenShannonDivergence(p, q []float64) (float64, error) {
	if len(p) != len(q) {
		return 0, ErrDimensionMismatch
	}
	var jsd float64
	for i := range p {
		pi := math.Max(p[i], 0)
		qi := math.Max(q[i], 0)
		mi := 0.5 * (pi + qi)
		if mi <= 0 {
			continue
		}
		if pi > 0 {
			jsd += 0.5 * pi * math.Log2(pi/mi)
		}
		if qi > 0 {
			jsd += 0.5 * qi * math.Log2(qi/mi)
		}
	}
	return math.Min(math.Max(jsd, 0), 1), nil
}

// JensenShannonDivergenceFromCounts normalizes two count vectors and
// returns their JSD. Two all-zero vectors are identical (0); one empty
// side is maximally divergent (1).
func JensenShannonDivergenceFromCounts(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	var totalA, totalB float64
	for i := range a {
		totalA += a[i]
		totalB += b[i]
	}
	if totalA <= 0 || totalB <= 0 {
		if totalA <= 0 && totalB <= 0 {
			return 0, nil
		}
		return 1, nil
	}
	p := make([]float64, len(a))
	q := make([]float64, len(b))
	for i := range a {
		p[i] = a[i] / totalA
		q[i] = b[i] / totalB
	}
	return JensenShannonDivergence(p, q)
}
