package genomesig

import (
	"sync"
	"sync/atomic"

	"github.com/phagemap/genomesig/internal/kernel"
)

// accel.go implements the acceleration dispatcher consulted by the
// counter, the anomaly scanner and the PCA engine. The capability is an
// explicit Accelerator value injected into each engine rather than a
// process-wide global, so engines stay stateless and testable. A call
// never depends on the kernel for correctness: below the amortization
// threshold, while the probe is pending, or on any kernel panic, the
// caller runs the portable reference implementation instead.

// AccelConfig configures the acceleration dispatcher.
type AccelConfig struct {
	// Enabled allows kernel dispatch at all.
	Enabled bool `json:"enabled"`

	// CountThreshold is the minimum sequence length before k-mer
	// counting is worth dispatching.
	CountThreshold int `json:"count_threshold"`

	// ScanThreshold is the minimum sequence length before window KL
	// scoring is worth dispatching.
	ScanThreshold int `json:"scan_threshold"`

	// PCAThreshold is the minimum rows*cols before PCA is worth
	// dispatching.
	PCAThreshold int `json:"pca_threshold"`
}

// DefaultAccelConfig returns the default dispatch thresholds. Below
// these sizes the call and copy overhead outweighs any kernel speedup.
func DefaultAccelConfig() AccelConfig {
	return AccelConfig{
		Enabled:        true,
		CountThreshold: 64 * 1024,
		ScanThreshold:  64 * 1024,
		PCAThreshold:   16 * 1024,
	}
}

// AccelStats reports dispatcher activity.
type AccelStats struct {
	Probed       bool  `json:"probed"`
	Available    bool  `json:"available"`
	NativeCalls  int64 `json:"native_calls"`
	Fallbacks    int64 `json:"fallbacks"`
	KernelPanics int64 `json:"kernel_panics"`
}

// Accelerator decides per call whether to run the optimized kernel or
// let the caller fall back to the reference path. Availability is set
// once by a background known-answer probe and only read afterwards.
type Accelerator struct {
	config AccelConfig

	ready     chan struct{}
	available atomic.Bool

	nativeCalls  atomic.Int64
	fallbacks    atomic.Int64
	kernelPanics atomic.Int64
}

// NewAccelerator creates an accelerator and starts its capability probe
// in the background. Calls arriving before the probe completes use the
// reference path; this affects latency, never correctness.
func NewAccelerator(config AccelConfig) *Accelerator {
	a := &Accelerator{config: config, ready: make(chan struct{})}
	go a.probe()
	return a
}

var (
	defaultAccelOnce sync.Once
	defaultAccel     *Accelerator
)

// DefaultAccelerator returns the shared accelerator used by the
// package-level entry points.
func DefaultAccelerator() *Accelerator {
	defaultAccelOnce.Do(func() {
		defaultAccel = NewAccelerator(DefaultAccelConfig())
	})
	return defaultAccel
}

// probe runs a small known-answer input through the kernel and marks it
// available only if the output shape and values match. Any panic or
// mismatch leaves the kernel unavailable; the probe never errors out to
// callers.
func (a *Accelerator) probe() {
	defer close(a.ready)
	defer func() {
		if r := recover(); r != nil {
			a.kernelPanics.Add(1)
		}
	}()

	counts, total := kernel.CountKmers([]byte("ACGTACGT"), 2)
	if len(counts) != 16 || total != 7 {
		return
	}
	// ACGTACGT contains AC, CG, GT twice each and TA once.
	expected := map[int]uint32{1: 2, 6: 2, 11: 2, 12: 1}
	for i, c := range counts {
		if c != expected[i] {
			return
		}
	}
	a.available.Store(true)
}

// Available reports whether the kernel passed its probe. It does not
// block: while the probe is pending this is simply false.
func (a *Accelerator) Available() bool {
	select {
	case <-a.ready:
		return a.available.Load()
	default:
		return false
	}
}

// WaitReady blocks until the capability probe has completed. Intended
// for tests and benchmarks that need a deterministic dispatch decision.
func (a *Accelerator) WaitReady() {
	<-a.ready
}

// Stats returns dispatcher statistics.
func (a *Accelerator) Stats() AccelStats {
	probed := false
	select {
	case <-a.ready:
		probed = true
	default:
	}
	return AccelStats{
		Probed:       probed,
		Available:    a.Available(),
		NativeCalls:  a.nativeCalls.Load(),
		Fallbacks:    a.fallbacks.Load(),
		KernelPanics: a.kernelPanics.Load(),
	}
}

// shouldDispatch applies the availability and amortization checks
// shared by every kernel entry point. The caller has already handled
// the nil-accelerator case.
func (a *Accelerator) shouldDispatch(costProxy, threshold int) bool {
	if !a.config.Enabled || !a.Available() {
		return false
	}
	if costProxy < threshold {
		a.fallbacks.Add(1)
		return false
	}
	return true
}

// countKmers dispatches dense counting to the kernel. ok=false means
// the caller must run the reference implementation.
func (a *Accelerator) countKmers(seq []byte, k int) (counts []uint32, total uint64, ok bool) {
	if a == nil || !a.shouldDispatch(len(seq), a.config.CountThreshold) {
		return nil, 0, false
	}
	defer func() {
		if r := recover(); r != nil {
			a.kernelPanics.Add(1)
			counts, total, ok = nil, 0, false
		}
	}()
	kc, kt := kernel.CountKmers(seq, k)
	if len(kc) != 1<<(2*k) {
		return nil, 0, false
	}
	// Copy out of the kernel-owned buffer before returning.
	owned := make([]uint32, len(kc))
	copy(owned, kc)
	a.nativeCalls.Add(1)
	return owned, kt, true
}

// windowKL dispatches batched window divergence scoring to the kernel.
func (a *Accelerator) windowKL(seq []byte, windowSize, stepSize, k int, background []float64) (positions []int, divergences []float64, ok bool) {
	if a == nil || !a.shouldDispatch(len(seq), a.config.ScanThreshold) {
		return nil, nil, false
	}
	defer func() {
		if r := recover(); r != nil {
			a.kernelPanics.Add(1)
			positions, divergences, ok = nil, nil, false
		}
	}()
	kp, kd := kernel.WindowKL(seq, windowSize, stepSize, k, background, klEpsilon)
	if kp == nil || len(kp) != len(kd) {
		return nil, nil, false
	}
	positions = make([]int, len(kp))
	divergences = make([]float64, len(kd))
	copy(positions, kp)
	copy(divergences, kd)
	a.nativeCalls.Add(1)
	return positions, divergences, true
}

// pca dispatches power iteration on a centered matrix to the kernel.
// Loadings come back as comps slices of length d.
func (a *Accelerator) pca(centered []float64, n, d, comps, maxIter int, tol float64) (loadings [][]float64, eigenvalues []float64, ok bool) {
	if a == nil || !a.shouldDispatch(n*d, a.config.PCAThreshold) {
		return nil, nil, false
	}
	defer func() {
		if r := recover(); r != nil {
			a.kernelPanics.Add(1)
			loadings, eigenvalues, ok = nil, nil, false
		}
	}()
	flat, kev := kernel.PCA(centered, n, d, comps, maxIter, tol)
	got := len(kev)
	if flat == nil || len(flat) != got*d {
		return nil, nil, false
	}
	loadings = make([][]float64, got)
	for i := range loadings {
		loadings[i] = make([]float64, d)
		copy(loadings[i], flat[i*d:(i+1)*d])
	}
	eigenvalues = make([]float64, got)
	copy(eigenvalues, kev)
	a.nativeCalls.Add(1)
	return loadings, eigenvalues, true
}
