// Package kernel holds the optimized compute kernels dispatched to by
// the accelerator. Every entry point is a pure function over flat
// slices so callers can copy results into their own memory; kernels
// never retain references to their inputs.
//
// Each kernel is numerically equivalent to the portable reference
// implementation in the root package; the accelerator's tests assert
// this parity.
package kernel

import "math"

// code maps bases to 2-bit codes (A=0 C=1 G=2 T=3); -1 resets the
// rolling window.
var code = buildCodes()

func buildCodes() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	t['A'], t['C'], t['G'], t['T'] = 0, 1, 2, 3
	t['a'], t['c'], t['g'], t['t'] = 0, 1, 2, 3
	return t
}

// CountKmers counts k-mers of a canonical sequence into a dense 4^k
// vector using a rolling 2k-bit window with reset on ambiguous bases.
// Returns nil counts for out-of-range k.
func CountKmers(seq []byte, k int) (counts []uint32, totalValid uint64) {
	if k <= 0 || k > 10 {
		return nil, 0
	}
	counts = make([]uint32, 1<<(2*k))
	mask := uint64(1)<<(2*k) - 1

	var window uint64
	run := 0
	for _, b := range seq {
		c := code[b]
		if c < 0 {
			run = 0
			continue
		}
		window = (window<<2 | uint64(c)) & mask
		run++
		if run >= k {
			counts[window]++
			totalValid++
		}
	}
	return counts, totalValid
}

// WindowKL scores every sliding window of a canonical sequence against
// a background distribution, returning window start positions and KL
// divergences (bits). The background log table is built once; per
// window only the count vector is rebuilt, into a reused buffer.
// epsilon replaces zero background entries.
func WindowKL(seq []byte, windowSize, stepSize, k int, background []float64, epsilon float64) (positions []int, divergences []float64) {
	if windowSize <= 0 || stepSize <= 0 || len(seq) < windowSize || k <= 0 || k > 10 {
		return nil, nil
	}
	dim := 1 << (2 * k)
	if len(background) != dim {
		return nil, nil
	}

	// Precompute log2 of the clamped background once.
	logQ := make([]float64, dim)
	for i, q := range background {
		if q <= 0 {
			q = epsilon
		}
		logQ[i] = math.Log2(q)
	}

	n := (len(seq)-windowSize)/stepSize + 1
	positions = make([]int, 0, n)
	divergences = make([]float64, 0, n)

	counts := make([]uint32, dim)
	mask := uint64(1)<<(2*k) - 1

	for start := 0; start+windowSize <= len(seq); start += stepSize {
		for i := range counts {
			counts[i] = 0
		}
		var window uint64
		run := 0
		var total uint64
		for _, b := range seq[start : start+windowSize] {
			c := code[b]
			if c < 0 {
				run = 0
				continue
			}
			window = (window<<2 | uint64(c)) & mask
			run++
			if run >= k {
				counts[window]++
				total++
			}
		}

		var d float64
		if total > 0 {
			inv := 1 / float64(total)
			for i, c := range counts {
				if c == 0 {
					continue
				}
				p := float64(c) * inv
				d += p * (math.Log2(p) - logQ[i])
			}
			if d < 0 {
				d = 0
			}
		}
		positions = append(positions, start)
		divergences = append(divergences, d)
	}
	return positions, divergences
}

// PCA extracts the top components of a centered row-major matrix
// (n rows, d columns) by deflation-based power iteration on the
// implicit operator X^T X. Loadings are returned row-major
// (comps x d) with the canonical sign applied (largest-magnitude entry
// positive); eigenvalues use the sample-covariance 1/(n-1) scaling.
func PCA(centered []float64, n, d, comps, maxIter int, tol float64) (loadings []float64, eigenvalues []float64) {
	if n <= 0 || d <= 0 || len(centered) != n*d {
		return nil, nil
	}
	if comps > n {
		comps = n
	}
	if comps > d {
		comps = d
	}

	loadings = make([]float64, 0, comps*d)
	eigenvalues = make([]float64, 0, comps)
	previous := make([][]float64, 0, comps)

	xv := make([]float64, n)
	xtxv := make([]float64, d)

	for c := 0; c < comps; c++ {
		v := seedVector(d)
		for _, pc := range previous {
			deflate(v, pc)
		}
		normalize(v)

		var eigenvalue float64
		for iter := 0; iter < maxIter; iter++ {
			// xv = X v
			for i := 0; i < n; i++ {
				xv[i] = dot(centered[i*d:(i+1)*d], v)
			}
			// xtxv = X^T xv
			for j := range xtxv {
				xtxv[j] = 0
			}
			for i := 0; i < n; i++ {
				axpy(xtxv, centered[i*d:(i+1)*d], xv[i])
			}
			for _, pc := range previous {
				deflate(xtxv, pc)
			}
			eigenvalue = dot(v, xtxv)
			normalize(xtxv)
			if dot(v, xtxv) < 0 {
				for j := range xtxv {
					xtxv[j] = -xtxv[j]
				}
			}
			var diff float64
			for j := range v {
				diff += math.Abs(v[j] - xtxv[j])
			}
			copy(v, xtxv)
			if diff < tol {
				break
			}
		}

		canonicalSign(v)
		if n > 1 {
			eigenvalue /= float64(n - 1)
		}
		loadings = append(loadings, v...)
		eigenvalues = append(eigenvalues, eigenvalue)
		previous = append(previous, v)
	}
	return loadings, eigenvalues
}

// seedVector builds the deterministic pseudo-periodic start vector.
// Determinism here is load-bearing: reference and kernel paths must
// iterate from the same point to stay parity-matched.
func seedVector(d int) []float64 {
	v := make([]float64, d)
	for i := range v {
		v[i] = float64((i*7919+104729)%1000)/1000 - 0.5
	}
	return v
}

// dot is a 4-way unrolled dot product.
func dot(a, b []float64) float64 {
	var s0, s1, s2, s3 float64
	i := 0
	for ; i+3 < len(a); i += 4 {
		s0 += a[i] * b[i]
		s1 += a[i+1] * b[i+1]
		s2 += a[i+2] * b[i+2]
		s3 += a[i+3] * b[i+3]
	}
	s := s0 + s1 + s2 + s3
	for ; i < len(a); i++ {
		s += a[i] * b[i]
	}
	return s
}

// axpy accumulates dst += scale*row, 4-way unrolled.
func axpy(dst, row []float64, scale float64) {
	i := 0
	for ; i+3 < len(dst); i += 4 {
		dst[i] += row[i] * scale
		dst[i+1] += row[i+1] * scale
		dst[i+2] += row[i+2] * scale
		dst[i+3] += row[i+3] * scale
	}
	for ; i < len(dst); i++ {
		dst[i] += row[i] * scale
	}
}

// deflate removes v's projection onto the unit vector u.
func deflate(v, u []float64) {
	proj := dot(v, u)
	for i := range v {
		v[i] -= proj * u[i]
	}
}

// normalize scales v to unit length in place; zero vectors are left
// unchanged.
func normalize(v []float64) {
	norm := math.Sqrt(dot(v, v))
	if norm > 0 {
		for i := range v {
			v[i] /= norm
		}
	}
}

// canonicalSign flips v so its largest-magnitude entry is positive.
func canonicalSign(v []float64) {
	maxAbs, maxVal := 0.0, 0.0
	for _, x := range v {
		if a := math.Abs(x); a > maxAbs {
			maxAbs, maxVal = a, x
		}
	}
	if maxVal < 0 {
		for i := range v {
			v[i] = -v[i]
		}
	}
}
