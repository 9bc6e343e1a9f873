package genomesig

import (
	"math"
	"sort"
)

// Anomaly classifications assigned by the scanner. A window whose k-mer
// distribution diverges from the genome background while remaining
// poorly compressible looks like foreign sequence; a highly
// compressible window is low-complexity repeat; divergence without a
// compression signal is flagged but left unexplained.
const (
	AnomalyHGT        = "HGT"
	AnomalyRepetitive = "Repetitive"
	AnomalyUnknown    = "Unknown"
)

// ScannerConfig configures an AnomalyScanner.
type ScannerConfig struct {
	// WindowSize is the window length in bases and StepSize the stride
	// between window starts. Both must be positive; a scan with
	// non-positive geometry produces an empty result.
	WindowSize int
	StepSize   int

	// K is the k-mer size used for window composition. Must be in
	// [1, MaxDenseK]; scans with an out-of-range K produce an empty
	// result rather than an error.
	K int

	// Compressor supplies the compressibility signal. A nil Compressor
	// disables the compression channel: ratios are reported as 0 and
	// divergent windows can only be classified AnomalyUnknown.
	Compressor Compressor

	// Accelerator, when non-nil, is consulted for batched window
	// scoring on large sequences.
	Accelerator *Accelerator
}

// DefaultScannerConfig returns a config suitable for bacterial-scale
// genomes: 500 bp windows stepped by 100 bp, tetranucleotide
// composition, snappy compressibility.
func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		WindowSize: 500,
		StepSize:   100,
		K:          4,
		Compressor: SnappyCompressor{},
	}
}

// AnomalyWindow is the scored result for one window.
type AnomalyWindow struct {
	// Position is the window start in the original sequence
	// coordinates. Canonicalization is length-preserving, so positions
	// map directly back to the input.
	Position int `json:"position"`

	KLDivergence     float64 `json:"kl_divergence"`
	CompressionRatio float64 `json:"compression_ratio"`

	IsAnomalous bool   `json:"is_anomalous"`
	AnomalyType string `json:"anomaly_type,omitempty"`
}

// ScanThresholds holds the adaptive cutoffs derived from the scanned
// sequence itself (95th percentile of each signal).
type ScanThresholds struct {
	KL          float64 `json:"kl"`
	Compression float64 `json:"compression"`
}

// ScanResult is the full output of a scan.
type ScanResult struct {
	Windows          []AnomalyWindow `json:"windows"`
	GlobalKmerFreq   []float64       `json:"global_kmer_freq"`
	Thresholds       ScanThresholds  `json:"thresholds"`
	UsedNativeKernel bool            `json:"used_native_kernel"`
}

// AnomalyScanner slides fixed-size windows across a genome and scores
// each against the genome-wide k-mer background.
type AnomalyScanner struct {
	config ScannerConfig
}

// NewAnomalyScanner creates a scanner with the config as given; start
// from DefaultScannerConfig for sensible geometry. Non-positive
// geometry or an out-of-range K makes every scan return the empty
// result rather than an error. The Compressor is also taken as given:
// leaving it nil is how callers request a KL-only scan.
func NewAnomalyScanner(config ScannerConfig) *AnomalyScanner {
	return &AnomalyScanner{config: config}
}

// Scan scores every window of seq and classifies outliers. A sequence
// shorter than one window, or an unusable K, yields an empty but
// well-formed result.
func (s *AnomalyScanner) Scan(seq []byte) *ScanResult {
	result := &ScanResult{
		Windows:        []AnomalyWindow{},
		GlobalKmerFreq: []float64{},
	}

	k := s.config.K
	if k < 1 || k > MaxDenseK || s.config.WindowSize <= 0 || s.config.StepSize <= 0 {
		return result
	}

	canonical := Canonicalize(seq)
	if len(canonical) < s.config.WindowSize || len(canonical) < k {
		return result
	}

	background := s.globalFrequencies(canonical, k, result)
	result.GlobalKmerFreq = background

	positions, divergences, native := s.windowDivergences(canonical, background)
	result.UsedNativeKernel = result.UsedNativeKernel || native
	if len(positions) == 0 {
		return result
	}

	ratios := make([]float64, len(positions))
	if s.config.Compressor != nil {
		for i, pos := range positions {
			ratios[i] = compressionRatio(s.config.Compressor, canonical[pos:pos+s.config.WindowSize])
		}
	}

	thresholds := ScanThresholds{
		KL:          percentile95(divergences),
		Compression: percentile95(ratios),
	}
	result.Thresholds = thresholds

	windows := make([]AnomalyWindow, len(positions))
	for i, pos := range positions {
		w := AnomalyWindow{
			Position:         pos,
			KLDivergence:     divergences[i],
			CompressionRatio: ratios[i],
		}
		w.IsAnomalous, w.AnomalyType = classify(w.KLDivergence, w.CompressionRatio, thresholds)
		windows[i] = w
	}
	result.Windows = windows
	return result
}

// DivergenceProfile computes only the per-window KL signal, skipping
// compression and classification. Useful for plotting and for callers
// that apply their own thresholds.
func (s *AnomalyScanner) DivergenceProfile(seq []byte) (positions []int, divergences []float64) {
	k := s.config.K
	if k < 1 || k > MaxDenseK || s.config.WindowSize <= 0 || s.config.StepSize <= 0 {
		return []int{}, []float64{}
	}
	canonical := Canonicalize(seq)
	if len(canonical) < s.config.WindowSize || len(canonical) < k {
		return []int{}, []float64{}
	}
	background := s.globalFrequencies(canonical, k, nil)
	positions, divergences, _ = s.windowDivergences(canonical, background)
	return positions, divergences
}

// globalFrequencies computes the genome-wide background distribution,
// via the kernel when it pays off.
func (s *AnomalyScanner) globalFrequencies(canonical []byte, k int, result *ScanResult) []float64 {
	if counts, total, ok := s.config.Accelerator.countKmers(canonical, k); ok {
		if result != nil {
			result.UsedNativeKernel = true
		}
		kc := KmerCounts{K: k, Counts: counts, TotalValid: total}
		return kc.Frequencies()
	}
	return CountKmers(canonical, k).Frequencies()
}

// windowDivergences scores each window against the background, batched
// through the kernel when available.
func (s *AnomalyScanner) windowDivergences(canonical []byte, background []float64) ([]int, []float64, bool) {
	if pos, div, ok := s.config.Accelerator.windowKL(canonical, s.config.WindowSize, s.config.StepSize, s.config.K, background); ok {
		return pos, div, true
	}

	var positions []int
	var divergences []float64
	for i := 0; i+s.config.WindowSize <= len(canonical); i += s.config.StepSize {
		window := canonical[i : i+s.config.WindowSize]
		freqs := CountKmers(window, s.config.K).Frequencies()
		d, err := KLDivergence(freqs, background)
		if err != nil {
			d = 0
		}
		positions = append(positions, i)
		divergences = append(divergences, d)
	}
	return positions, divergences, false
}

// classify applies the anomaly decision in priority order: the joint
// HGT test first, then repetitiveness, then unexplained divergence.
func classify(kl, ratio float64, th ScanThresholds) (bool, string) {
	switch {
	case kl > th.KL && ratio < th.Compression:
		return true, AnomalyHGT
	case ratio > th.Compression:
		return true, AnomalyRepetitive
	case kl > th.KL:
		return true, AnomalyUnknown
	default:
		return false, ""
	}
}

// percentile95 returns the value at the 95th percentile index of the
// sorted values, without interpolation. The input is not modified.
func percentile95(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	idx := int(math.Floor(0.95 * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// ScanForAnomalies scans seq with the given geometry using the shared
// accelerator and snappy compressibility. It is the convenience entry
// point; use an AnomalyScanner for full control.
func ScanForAnomalies(seq []byte, windowSize, stepSize, k int) *ScanResult {
	scanner := NewAnomalyScanner(ScannerConfig{
		WindowSize:  windowSize,
		StepSize:    stepSize,
		K:           k,
		Compressor:  SnappyCompressor{},
		Accelerator: DefaultAccelerator(),
	})
	return scanner.Scan(seq)
}
