package genomesig

import (
	"fmt"
	"math"
)

// SignatureVector is one genome's composition signature, the input row
// for PCA. Frequencies is typically the output of KmerFrequencies; the
// remaining fields are carried through for labeling projections.
type SignatureVector struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Frequencies  []float64 `json:"frequencies"`
	GCContent    float64   `json:"gc_content"`
	GenomeLength int       `json:"genome_length"`
}

// PCAOptions configures a PCAEngine.
type PCAOptions struct {
	// NumComponents is the number of principal components to extract.
	// It is capped at min(rows, dims); non-positive means 3.
	NumComponents int

	// MaxIterations bounds power iteration per component.
	MaxIterations int

	// Tolerance is the L1 convergence threshold on the iterated
	// direction vector.
	Tolerance float64

	// Accelerator, when non-nil, is consulted for large matrices.
	Accelerator *Accelerator
}

// DefaultPCAOptions returns the standard three-component setup.
func DefaultPCAOptions() PCAOptions {
	return PCAOptions{
		NumComponents: 3,
		MaxIterations: 100,
		Tolerance:     1e-8,
	}
}

// PCAResult holds the decomposition of a signature matrix.
type PCAResult struct {
	// Projections[i] is the i-th input vector expressed in component
	// coordinates.
	Projections [][]float64 `json:"projections"`

	// Eigenvalues are the component variances, largest first.
	Eigenvalues []float64 `json:"eigenvalues"`

	// VarianceExplained[i] is Eigenvalues[i] as a fraction of
	// TotalVariance; CumulativeVariance is its running sum.
	VarianceExplained  []float64 `json:"variance_explained"`
	CumulativeVariance []float64 `json:"cumulative_variance"`

	// Loadings[i] is the i-th principal axis in feature space, unit
	// length, largest-magnitude entry positive.
	Loadings [][]float64 `json:"loadings"`

	// Mean is the per-feature mean subtracted before decomposition.
	Mean []float64 `json:"mean"`

	// TotalVariance is the summed sample variance across all features.
	TotalVariance float64 `json:"total_variance"`

	UsedNativeKernel bool `json:"used_native_kernel"`
}

// PCAEngine performs principal component analysis by power iteration
// with deflation. Results are deterministic: the starting vector for
// each component is a fixed pseudo-random seed, not time- or
// rand-dependent.
type PCAEngine struct {
	opts PCAOptions
}

// NewPCAEngine creates an engine, filling unset options from
// DefaultPCAOptions.
func NewPCAEngine(opts PCAOptions) *PCAEngine {
	def := DefaultPCAOptions()
	if opts.NumComponents <= 0 {
		opts.NumComponents = def.NumComponents
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = def.MaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = def.Tolerance
	}
	return &PCAEngine{opts: opts}
}

// Fit decomposes the given signature vectors. All vectors must share
// one dimension; a mismatch is the only error condition. Empty input
// returns an empty but well-formed result.
func (e *PCAEngine) Fit(vectors []SignatureVector) (*PCAResult, error) {
	result := &PCAResult{
		Projections:        [][]float64{},
		Eigenvalues:        []float64{},
		VarianceExplained:  []float64{},
		CumulativeVariance: []float64{},
		Loadings:           [][]float64{},
		Mean:               []float64{},
	}
	n := len(vectors)
	if n == 0 {
		return result, nil
	}

	d := len(vectors[0].Frequencies)
	for i, v := range vectors {
		if len(v.Frequencies) != d {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d: %w", i, len(v.Frequencies), d, ErrDimensionMismatch)
		}
	}
	if d == 0 {
		return result, nil
	}

	mean := make([]float64, d)
	for _, v := range vectors {
		for j, f := range v.Frequencies {
			mean[j] += f
		}
	}
	for j := range mean {
		mean[j] /= float64(n)
	}
	result.Mean = mean

	centered := make([]float64, n*d)
	var sumSquares float64
	for i, v := range vectors {
		row := centered[i*d : (i+1)*d]
		for j, f := range v.Frequencies {
			c := f - mean[j]
			row[j] = c
			sumSquares += c * c
		}
	}
	denom := float64(n - 1)
	if denom < 1 {
		denom = 1
	}
	result.TotalVariance = sumSquares / denom

	comps := e.opts.NumComponents
	if comps > n {
		comps = n
	}
	if comps > d {
		comps = d
	}

	loadings, eigenvalues, native := e.opts.Accelerator.pca(centered, n, d, comps, e.opts.MaxIterations, e.opts.Tolerance)
	if !native {
		// powerIteration deflates its input in place; give it a copy so
		// the projections below still see the original centered matrix.
		work := make([]float64, len(centered))
		copy(work, centered)
		loadings, eigenvalues = powerIteration(work, n, d, comps, e.opts.MaxIterations, e.opts.Tolerance)
	}
	result.UsedNativeKernel = native
	result.Loadings = loadings
	result.Eigenvalues = eigenvalues

	result.VarianceExplained = make([]float64, len(eigenvalues))
	result.CumulativeVariance = make([]float64, len(eigenvalues))
	cum := 0.0
	for i, ev := range eigenvalues {
		frac := 0.0
		if result.TotalVariance > 0 {
			frac = ev / result.TotalVariance
		}
		result.VarianceExplained[i] = frac
		cum += frac
		result.CumulativeVariance[i] = cum
	}

	result.Projections = make([][]float64, n)
	for i := 0; i < n; i++ {
		row := centered[i*d : (i+1)*d]
		proj := make([]float64, len(loadings))
		for c, axis := range loadings {
			var dot float64
			for j, a := range axis {
				dot += row[j] * a
			}
			proj[c] = dot
		}
		result.Projections[i] = proj
	}
	return result, nil
}

// powerIteration extracts comps leading eigenvectors of the sample
// covariance of the centered n-by-d matrix, deflating between
// components. It mutates centered.
func powerIteration(centered []float64, n, d, comps, maxIter int, tol float64) (loadings [][]float64, eigenvalues []float64) {
	loadings = make([][]float64, 0, comps)
	eigenvalues = make([]float64, 0, comps)
	denom := float64(n - 1)
	if denom < 1 {
		denom = 1
	}

	xv := make([]float64, n)
	next := make([]float64, d)
	for c := 0; c < comps; c++ {
		// Start orthogonal to the components already captured, as a
		// unit vector. On rank-deficient input the deflated matrix can
		// be exactly zero; the loop below then emits a zero loading
		// with a zero eigenvalue instead of leaking the seed.
		v := pcaSeedVector(d)
		for _, prev := range loadings {
			var proj float64
			for j, a := range v {
				proj += a * prev[j]
			}
			for j := range v {
				v[j] -= proj * prev[j]
			}
		}
		var seedNorm float64
		for _, a := range v {
			seedNorm += a * a
		}
		if seedNorm > 0 {
			seedNorm = math.Sqrt(seedNorm)
			for j := range v {
				v[j] /= seedNorm
			}
		}

		for iter := 0; iter < maxIter; iter++ {
			// next = X^T (X v), without forming the covariance matrix.
			for i := 0; i < n; i++ {
				row := centered[i*d : (i+1)*d]
				var dot float64
				for j, a := range row {
					dot += a * v[j]
				}
				xv[i] = dot
			}
			for j := range next {
				next[j] = 0
			}
			for i := 0; i < n; i++ {
				row := centered[i*d : (i+1)*d]
				s := xv[i]
				for j, a := range row {
					next[j] += s * a
				}
			}

			var norm float64
			for _, a := range next {
				norm += a * a
			}
			norm = math.Sqrt(norm)
			if norm == 0 {
				for j := range v {
					v[j] = 0
				}
				break
			}
			for j := range next {
				next[j] /= norm
			}

			// Power iteration is sign-blind; align with the previous
			// iterate so the convergence test measures direction only.
			var align float64
			for j, a := range next {
				align += a * v[j]
			}
			if align < 0 {
				for j := range next {
					next[j] = -next[j]
				}
			}

			var diff float64
			for j, a := range next {
				diff += math.Abs(a - v[j])
			}
			copy(v, next)
			if diff < tol {
				break
			}
		}

		// Rayleigh quotient of the converged direction.
		var ev float64
		for i := 0; i < n; i++ {
			row := centered[i*d : (i+1)*d]
			var dot float64
			for j, a := range row {
				dot += a * v[j]
			}
			xv[i] = dot
			ev += dot * dot
		}
		eigenvalues = append(eigenvalues, ev/denom)

		// Deflate: remove the captured direction from every row.
		for i := 0; i < n; i++ {
			row := centered[i*d : (i+1)*d]
			s := xv[i]
			for j := range row {
				row[j] -= s * v[j]
			}
		}

		canonicalizeSign(v)
		loadings = append(loadings, v)
	}
	return loadings, eigenvalues
}

// pcaSeedVector returns the deterministic pseudo-random starting
// vector used for every power iteration run.
func pcaSeedVector(d int) []float64 {
	v := make([]float64, d)
	for i := range v {
		v[i] = float64((i*7919+104729)%1000)/1000.0 - 0.5
	}
	return v
}

// canonicalizeSign flips v so its largest-magnitude entry is positive,
// fixing the arbitrary sign of an eigenvector.
func canonicalizeSign(v []float64) {
	maxAbs := 0.0
	maxIdx := 0
	for i, a := range v {
		if abs := math.Abs(a); abs > maxAbs {
			maxAbs = abs
			maxIdx = i
		}
	}
	if v[maxIdx] < 0 {
		for i := range v {
			v[i] = -v[i]
		}
	}
}

// PerformPCA runs PCA over the given signature vectors with default
// iteration settings and the shared accelerator.
func PerformPCA(vectors []SignatureVector, numComponents int) (*PCAResult, error) {
	engine := NewPCAEngine(PCAOptions{
		NumComponents: numComponents,
		Accelerator:   DefaultAccelerator(),
	})
	return engine.Fit(vectors)
}

// ProjectToPCA projects a new frequency vector into an existing
// component space. The mean and loadings come from a prior Fit.
func ProjectToPCA(freqs, mean []float64, loadings [][]float64) ([]float64, error) {
	if len(freqs) != len(mean) {
		return nil, fmt.Errorf("frequency dimension %d, mean dimension %d: %w", len(freqs), len(mean), ErrDimensionMismatch)
	}
	proj := make([]float64, len(loadings))
	for c, axis := range loadings {
		if len(axis) != len(freqs) {
			return nil, fmt.Errorf("loading %d has dimension %d, want %d: %w", c, len(axis), len(freqs), ErrDimensionMismatch)
		}
		var dot float64
		for j, a := range axis {
			dot += (freqs[j] - mean[j]) * a
		}
		proj[c] = dot
	}
	return proj, nil
}
