package genomesig

import (
	"errors"
	"math"
	"testing"
)

func TestCompareKmerProfilesIdentical(t *testing.T) {
	seq := lcgSequence(2000, 31)
	cmp := CompareKmerProfiles(seq, seq, 4)
	if cmp.Jaccard != 1 {
		t.Errorf("Jaccard = %v, want 1", cmp.Jaccard)
	}
	if cmp.ContainmentAInB != 1 || cmp.ContainmentBInA != 1 {
		t.Errorf("containment = %v/%v, want 1/1", cmp.ContainmentAInB, cmp.ContainmentBInA)
	}
	if math.Abs(cmp.CosineSimilarity-1) > 1e-9 {
		t.Errorf("cosine = %v, want 1", cmp.CosineSimilarity)
	}
	if math.Abs(cmp.BrayCurtis) > 1e-9 {
		t.Errorf("Bray-Curtis = %v, want 0", cmp.BrayCurtis)
	}
	if cmp.UniqueToA != 0 || cmp.UniqueToB != 0 {
		t.Errorf("unique counts = %d/%d, want 0/0", cmp.UniqueToA, cmp.UniqueToB)
	}
}

func TestCompareKmerProfilesDisjoint(t *testing.T) {
	cmp := CompareKmerProfiles([]byte("AAAAAAAA"), []byte("CCCCCCCC"), 2)
	if cmp.Jaccard != 0 {
		t.Errorf("Jaccard = %v, want 0", cmp.Jaccard)
	}
	if cmp.SharedKmers != 0 {
		t.Errorf("shared = %d, want 0", cmp.SharedKmers)
	}
	if cmp.CosineSimilarity != 0 {
		t.Errorf("cosine = %v, want 0", cmp.CosineSimilarity)
	}
	if math.Abs(cmp.BrayCurtis-1) > 1e-9 {
		t.Errorf("Bray-Curtis = %v, want 1", cmp.BrayCurtis)
	}
	if cmp.UniqueToA != 1 || cmp.UniqueToB != 1 {
		t.Errorf("unique counts = %d/%d, want 1/1", cmp.UniqueToA, cmp.UniqueToB)
	}
}

func TestCompareKmerProfilesContainment(t *testing.T) {
	// B contains A as a substring, so every k-mer of A appears in B.
	a := []byte("ACGTACGTACGT")
	b := append(append([]byte("TTTTGGGG"), a...), []byte("CCCCAAAA")...)
	cmp := CompareKmerProfiles(a, b, 3)
	if cmp.ContainmentAInB != 1 {
		t.Errorf("containment A in B = %v, want 1", cmp.ContainmentAInB)
	}
	if cmp.ContainmentBInA >= 1 {
		t.Errorf("containment B in A = %v, want < 1", cmp.ContainmentBInA)
	}
	if cmp.Jaccard <= 0 || cmp.Jaccard >= 1 {
		t.Errorf("Jaccard = %v, want in (0,1)", cmp.Jaccard)
	}
}

func TestCompareKmerProfilesDegenerate(t *testing.T) {
	zero := KmerComparison{K: 20}
	if cmp := CompareKmerProfiles([]byte("ACGT"), []byte("ACGT"), 20); cmp != zero {
		t.Errorf("k beyond sparse range: %+v, want zero comparison", cmp)
	}
	if cmp := CompareKmerProfiles([]byte("NNNN"), []byte("ACGT"), 2); cmp.Jaccard != 0 || cmp.SharedKmers != 0 {
		t.Errorf("all-N sequence: %+v, want zero comparison", cmp)
	}
}

func TestMinHashSimilarityIdentical(t *testing.T) {
	seq := lcgSequence(3000, 37)
	if sim := MinHashSimilarity(seq, seq, 8, 64); sim != 1 {
		t.Errorf("self similarity = %v, want 1", sim)
	}
}

func TestMinHashSimilarityUnrelated(t *testing.T) {
	a := lcgSequence(3000, 41)
	b := lcgSequence(3000, 43)
	sim := MinHashSimilarity(a, b, 12, 64)
	// Distinct random sequences share almost no 12-mers.
	if sim > 0.2 {
		t.Errorf("similarity of unrelated sequences = %v, want near 0", sim)
	}
}

func TestMinHashSimilarityTracksJaccard(t *testing.T) {
	a := lcgSequence(4000, 47)
	// b shares its first 3000 bases with a.
	b := append([]byte{}, a[:3000]...)
	b = append(b, lcgSequence(1000, 53)...)
	est := MinHashSimilarity(a, b, 8, 128)
	exact := CompareKmerProfiles(a, b, 8).Jaccard
	if math.Abs(est-exact) > 0.2 {
		t.Errorf("MinHash estimate %v too far from exact Jaccard %v", est, exact)
	}
}

func TestMinHashSimilarityDegenerate(t *testing.T) {
	if sim := MinHashSimilarity([]byte("NNNN"), []byte("NNNN"), 2, 16); sim != 0 {
		t.Errorf("similarity of empty k-mer sets = %v, want 0", sim)
	}
	if sim := MinHashSimilarity([]byte("ACGT"), []byte("ACGT"), 2, 0); sim != 0 {
		t.Errorf("similarity with zero hashes = %v, want 0", sim)
	}
}

func TestHoeffdingsDPerfectDependence(t *testing.T) {
	x := make([]float64, 20)
	for i := range x {
		x[i] = float64(i)
	}
	d, err := HoeffdingsD(x, x)
	if err != nil {
		t.Fatalf("HoeffdingsD: %v", err)
	}
	if math.Abs(d-1) > 1e-9 {
		t.Errorf("D = %v, want 1 for perfect monotone dependence", d)
	}
}

func TestHoeffdingsDNonMonotoneDependence(t *testing.T) {
	// y = (x-10)^2 is strongly dependent but not monotone.
	x := make([]float64, 21)
	y := make([]float64, 21)
	for i := range x {
		x[i] = float64(i)
		y[i] = (x[i] - 10) * (x[i] - 10)
	}
	d, err := HoeffdingsD(x, y)
	if err != nil {
		t.Fatalf("HoeffdingsD: %v", err)
	}
	if d < 0.05 {
		t.Errorf("D = %v, want clearly positive for quadratic dependence", d)
	}
}

func TestHoeffdingsDSmallSample(t *testing.T) {
	d, err := HoeffdingsD([]float64{1, 2, 3, 4}, []float64{4, 3, 2, 1})
	if err != nil {
		t.Fatalf("HoeffdingsD: %v", err)
	}
	if d != 0 {
		t.Errorf("D = %v, want 0 below minimum sample size", d)
	}
}

func TestHoeffdingsDDimensionMismatch(t *testing.T) {
	_, err := HoeffdingsD([]float64{1, 2, 3}, []float64{1, 2})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestAverageRanks(t *testing.T) {
	ranks := averageRanks([]float64{10, 20, 20, 30})
	want := []float64{1, 2.5, 2.5, 4}
	for i := range want {
		if ranks[i] != want[i] {
			t.Errorf("rank[%d] = %v, want %v", i, ranks[i], want[i])
		}
	}
}
