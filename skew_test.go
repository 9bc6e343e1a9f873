package genomesig

import (
	"math"
	"testing"
)

func TestGCSkew(t *testing.T) {
	skews := GCSkew([]byte("GGGCCC"), 3, 3)
	if len(skews) != 2 {
		t.Fatalf("windows = %d, want 2", len(skews))
	}
	if skews[0] != 1 || skews[1] != -1 {
		t.Errorf("skews = %v, want [1 -1]", skews)
	}
}

func TestGCSkewNoGC(t *testing.T) {
	skews := GCSkew([]byte("ATATATAT"), 4, 4)
	for i, s := range skews {
		if s != 0 {
			t.Errorf("window %d skew = %v, want 0", i, s)
		}
	}
}

func TestGCSkewMixed(t *testing.T) {
	// 3 G and 1 C: (3-1)/(3+1) = 0.5. Case-insensitive, N ignored.
	skews := GCSkew([]byte("gGGcAN"), 6, 1)
	if len(skews) != 1 {
		t.Fatalf("windows = %d, want 1", len(skews))
	}
	if math.Abs(skews[0]-0.5) > 1e-9 {
		t.Errorf("skew = %v, want 0.5", skews[0])
	}
}

func TestGCSkewDegenerate(t *testing.T) {
	if got := GCSkew([]byte("ACG"), 10, 5); len(got) != 0 {
		t.Errorf("short sequence: %v, want empty", got)
	}
	if got := GCSkew([]byte("ACGTACGT"), 0, 1); len(got) != 0 {
		t.Errorf("zero window: %v, want empty", got)
	}
}

func TestCumulativeGCSkew(t *testing.T) {
	got := CumulativeGCSkew([]byte("GGCATC"))
	want := []float64{1, 2, 1, 1, 1, 0}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cumulative[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLinguisticComplexity(t *testing.T) {
	homopolymer := LinguisticComplexity([]byte("AAAAAAAAAAAAAAAA"), 3)
	diverse := LinguisticComplexity(lcgSequence(4096, 13), 3)
	if homopolymer >= diverse {
		t.Errorf("homopolymer complexity %v >= diverse complexity %v", homopolymer, diverse)
	}
	if diverse <= 0.9 {
		t.Errorf("diverse complexity = %v, want near 1", diverse)
	}
	if homopolymer <= 0 {
		t.Errorf("homopolymer complexity = %v, want positive", homopolymer)
	}
	if got := LinguisticComplexity(nil, 3); got != 0 {
		t.Errorf("empty sequence complexity = %v, want 0", got)
	}
}

func TestWindowedComplexity(t *testing.T) {
	seq := append(lcgSequence(512, 29), make([]byte, 512)...)
	for i := 512; i < 1024; i++ {
		seq[i] = 'A'
	}
	scores := WindowedComplexity(seq, 256, 256, 3)
	if len(scores) != 4 {
		t.Fatalf("windows = %d, want 4", len(scores))
	}
	if scores[0] <= scores[3] {
		t.Errorf("random window %v not more complex than homopolymer window %v", scores[0], scores[3])
	}
	for i, s := range scores {
		if s < 0 || s > 1 {
			t.Errorf("score %d = %v, want in [0,1]", i, s)
		}
	}
}

func TestWindowedComplexityDegenerate(t *testing.T) {
	if got := WindowedComplexity([]byte("ACGT"), 10, 5, 2); len(got) != 0 {
		t.Errorf("short sequence: %v, want empty", got)
	}
	if got := WindowedComplexity([]byte("ACGTACGT"), 4, 2, 5); len(got) != 0 {
		t.Errorf("k larger than window: %v, want empty", got)
	}
}
