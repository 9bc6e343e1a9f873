package genomesig

import (
	"math"
	"testing"
)

// lcgSequence builds a deterministic pseudo-random ACGT sequence.
func lcgSequence(n int, seed uint32) []byte {
	seq := make([]byte, n)
	state := seed
	for i := range seq {
		state = state*1664525 + 1013904223
		seq[i] = "ACGT"[state>>30]
	}
	return seq
}

func TestScanShortSequence(t *testing.T) {
	scanner := NewAnomalyScanner(DefaultScannerConfig())
	result := scanner.Scan([]byte("ACGT"))
	if len(result.Windows) != 0 {
		t.Errorf("windows = %d, want 0", len(result.Windows))
	}
	if result.Windows == nil || result.GlobalKmerFreq == nil {
		t.Error("empty result must still be well-formed")
	}
}

func TestScanNonPositiveGeometry(t *testing.T) {
	seq := lcgSequence(2000, 1)
	cases := []struct {
		name       string
		windowSize int
		stepSize   int
	}{
		{"zero window", 0, 100},
		{"negative window", -500, 100},
		{"zero step", 500, 0},
		{"negative step", 500, -3},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			result := ScanForAnomalies(seq, tt.windowSize, tt.stepSize, 4)
			if len(result.Windows) != 0 || len(result.GlobalKmerFreq) != 0 {
				t.Errorf("got %d windows, want empty result", len(result.Windows))
			}
			scanner := NewAnomalyScanner(ScannerConfig{WindowSize: tt.windowSize, StepSize: tt.stepSize, K: 4})
			if pos, div := scanner.DivergenceProfile(seq); len(pos) != 0 || len(div) != 0 {
				t.Errorf("profile has %d points, want 0", len(pos))
			}
		})
	}
}

func TestScanInvalidK(t *testing.T) {
	for _, k := range []int{-1, MaxDenseK + 1} {
		result := ScanForAnomalies(lcgSequence(2000, 1), 500, 100, k)
		if len(result.Windows) != 0 || len(result.GlobalKmerFreq) != 0 {
			t.Errorf("k=%d: expected empty result, got %d windows", k, len(result.Windows))
		}
	}
}

func TestScanWindowPositions(t *testing.T) {
	scanner := NewAnomalyScanner(ScannerConfig{WindowSize: 5, StepSize: 2, K: 2})
	result := scanner.Scan([]byte("ACGTNACGT"))
	want := []int{0, 2, 4}
	if len(result.Windows) != len(want) {
		t.Fatalf("windows = %d, want %d", len(result.Windows), len(want))
	}
	for i, w := range result.Windows {
		if w.Position != want[i] {
			t.Errorf("window %d at position %d, want %d", i, w.Position, want[i])
		}
	}
}

func TestScanRNAEquivalence(t *testing.T) {
	dna := lcgSequence(400, 7)
	rna := make([]byte, len(dna))
	for i, b := range dna {
		if b == 'T' {
			rna[i] = 'U'
		} else {
			rna[i] = b + 'a' - 'A' // mixed case for good measure
		}
	}
	scanner := NewAnomalyScanner(ScannerConfig{WindowSize: 16, StepSize: 8, K: 2})
	a := scanner.Scan(dna)
	b := scanner.Scan(rna)
	if len(a.Windows) != len(b.Windows) {
		t.Fatalf("window counts differ: %d vs %d", len(a.Windows), len(b.Windows))
	}
	for i := range a.Windows {
		if math.Abs(a.Windows[i].KLDivergence-b.Windows[i].KLDivergence) > 1e-5 {
			t.Errorf("window %d KL differs: %v vs %v", i, a.Windows[i].KLDivergence, b.Windows[i].KLDivergence)
		}
		if math.Abs(a.Windows[i].CompressionRatio-b.Windows[i].CompressionRatio) > 1e-5 {
			t.Errorf("window %d ratio differs: %v vs %v", i, a.Windows[i].CompressionRatio, b.Windows[i].CompressionRatio)
		}
	}
}

func TestScanDetectsRepetitiveInsert(t *testing.T) {
	seq := lcgSequence(10000, 42)
	for i := 5000; i < 5500; i++ {
		seq[i] = 'A'
	}
	result := ScanForAnomalies(seq, 500, 100, 4)
	if len(result.Windows) == 0 {
		t.Fatal("no windows scanned")
	}
	if len(result.GlobalKmerFreq) != 256 {
		t.Fatalf("global freq length = %d, want 256", len(result.GlobalKmerFreq))
	}

	var hit *AnomalyWindow
	for i := range result.Windows {
		if result.Windows[i].Position == 5000 {
			hit = &result.Windows[i]
		}
	}
	if hit == nil {
		t.Fatal("no window at position 5000")
	}
	if !hit.IsAnomalous {
		t.Fatalf("homopolymer window not flagged: KL=%v ratio=%v thresholds=%+v",
			hit.KLDivergence, hit.CompressionRatio, result.Thresholds)
	}
	if hit.AnomalyType != AnomalyRepetitive {
		t.Errorf("homopolymer window classified %q, want %q", hit.AnomalyType, AnomalyRepetitive)
	}

	// Windows far from the insert should be unremarkable.
	for i := range result.Windows {
		w := &result.Windows[i]
		if w.Position < 4000 && w.AnomalyType == AnomalyRepetitive {
			t.Errorf("background window at %d classified Repetitive", w.Position)
		}
	}
}

func TestScanWithoutCompressor(t *testing.T) {
	seq := lcgSequence(5000, 3)
	scanner := NewAnomalyScanner(ScannerConfig{WindowSize: 500, StepSize: 250, K: 4, Compressor: nil})
	result := scanner.Scan(seq)
	if len(result.Windows) == 0 {
		t.Fatal("no windows scanned")
	}
	for _, w := range result.Windows {
		if w.CompressionRatio != 0 {
			t.Errorf("window %d has ratio %v without a compressor", w.Position, w.CompressionRatio)
		}
		if w.AnomalyType == AnomalyRepetitive || w.AnomalyType == AnomalyHGT {
			t.Errorf("window %d classified %q without a compression signal", w.Position, w.AnomalyType)
		}
	}
}

func TestScanDeterministic(t *testing.T) {
	seq := lcgSequence(3000, 9)
	a := ScanForAnomalies(seq, 500, 100, 4)
	b := ScanForAnomalies(seq, 500, 100, 4)
	if len(a.Windows) != len(b.Windows) {
		t.Fatalf("window counts differ: %d vs %d", len(a.Windows), len(b.Windows))
	}
	for i := range a.Windows {
		if a.Windows[i] != b.Windows[i] {
			t.Errorf("window %d differs between runs: %+v vs %+v", i, a.Windows[i], b.Windows[i])
		}
	}
	if a.Thresholds != b.Thresholds {
		t.Errorf("thresholds differ: %+v vs %+v", a.Thresholds, b.Thresholds)
	}
}

func TestScanThresholdsWithinRange(t *testing.T) {
	seq := lcgSequence(4000, 11)
	result := ScanForAnomalies(seq, 400, 100, 3)
	minKL, maxKL := math.Inf(1), math.Inf(-1)
	for _, w := range result.Windows {
		minKL = math.Min(minKL, w.KLDivergence)
		maxKL = math.Max(maxKL, w.KLDivergence)
	}
	if result.Thresholds.KL < minKL || result.Thresholds.KL > maxKL {
		t.Errorf("KL threshold %v outside observed range [%v, %v]", result.Thresholds.KL, minKL, maxKL)
	}
}

func TestDivergenceProfileMatchesScan(t *testing.T) {
	seq := lcgSequence(3000, 5)
	scanner := NewAnomalyScanner(ScannerConfig{WindowSize: 300, StepSize: 150, K: 3})
	positions, divergences := scanner.DivergenceProfile(seq)
	result := scanner.Scan(seq)
	if len(positions) != len(result.Windows) {
		t.Fatalf("profile has %d points, scan has %d windows", len(positions), len(result.Windows))
	}
	for i, w := range result.Windows {
		if positions[i] != w.Position {
			t.Errorf("point %d at %d, scan window at %d", i, positions[i], w.Position)
		}
		if math.Abs(divergences[i]-w.KLDivergence) > 1e-12 {
			t.Errorf("point %d KL %v, scan KL %v", i, divergences[i], w.KLDivergence)
		}
	}
}
