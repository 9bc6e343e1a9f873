package genomesig

import (
	"math"
	"sort"
)

// KmerComparison summarizes how similar two k-mer profiles are. Set
// measures (Jaccard, containment) use presence only; cosine and
// Bray-Curtis weigh abundance.
type KmerComparison struct {
	K int `json:"k"`

	// Jaccard is shared distinct k-mers over the union.
	Jaccard float64 `json:"jaccard"`

	// ContainmentAInB is the fraction of A's distinct k-mers also in
	// B, and vice versa. Useful when one sequence is much shorter.
	ContainmentAInB float64 `json:"containment_a_in_b"`
	ContainmentBInA float64 `json:"containment_b_in_a"`

	// CosineSimilarity compares the count vectors by angle.
	CosineSimilarity float64 `json:"cosine_similarity"`

	// BrayCurtis is the abundance dissimilarity in [0,1]; 0 means
	// identical profiles.
	BrayCurtis float64 `json:"bray_curtis"`

	SharedKmers int `json:"shared_kmers"`
	UniqueToA   int `json:"unique_to_a"`
	UniqueToB   int `json:"unique_to_b"`
}

// CompareKmerProfiles counts k-mers in both sequences and computes the
// full comparison. k outside [1, MaxSparseK], or sequences with no
// valid k-mers, yield the zero comparison.
func CompareKmerProfiles(seqA, seqB []byte, k int) KmerComparison {
	cmp := KmerComparison{K: k}
	if k < 1 || k > MaxSparseK {
		return cmp
	}
	a := CountKmersSparse(Canonicalize(seqA), k)
	b := CountKmersSparse(Canonicalize(seqB), k)
	if a.TotalValid == 0 || b.TotalValid == 0 {
		return cmp
	}

	var shared, uniqueA int
	var dotProduct, normA, normB float64
	var sumMin, sumTotal float64
	for kmer, ca := range a.Counts {
		fa := float64(ca)
		normA += fa * fa
		sumTotal += fa
		if cb, ok := b.Counts[kmer]; ok {
			shared++
			fb := float64(cb)
			dotProduct += fa * fb
			sumMin += math.Min(fa, fb)
		} else {
			uniqueA++
		}
	}
	uniqueB := 0
	for kmer, cb := range b.Counts {
		fb := float64(cb)
		normB += fb * fb
		sumTotal += fb
		if _, ok := a.Counts[kmer]; !ok {
			uniqueB++
		}
	}

	union := shared + uniqueA + uniqueB
	if union > 0 {
		cmp.Jaccard = float64(shared) / float64(union)
	}
	cmp.ContainmentAInB = float64(shared) / float64(len(a.Counts))
	cmp.ContainmentBInA = float64(shared) / float64(len(b.Counts))
	if normA > 0 && normB > 0 {
		cmp.CosineSimilarity = dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	}
	if sumTotal > 0 {
		cmp.BrayCurtis = 1 - 2*sumMin/sumTotal
	}
	cmp.SharedKmers = shared
	cmp.UniqueToA = uniqueA
	cmp.UniqueToB = uniqueB
	return cmp
}

// MinHashSimilarity estimates the Jaccard similarity of the two k-mer
// sets from numHashes independent minimum hashes, avoiding the full
// sparse profiles. Sequences with no valid k-mers score 0.
func MinHashSimilarity(seqA, seqB []byte, k, numHashes int) float64 {
	if k < 1 || k > MaxSparseK || numHashes <= 0 {
		return 0
	}
	sketchA := minHashSketch(Canonicalize(seqA), k, numHashes)
	sketchB := minHashSketch(Canonicalize(seqB), k, numHashes)

	matches := 0
	valid := 0
	for h := 0; h < numHashes; h++ {
		if sketchA[h] == math.MaxUint32 && sketchB[h] == math.MaxUint32 {
			continue
		}
		valid++
		if sketchA[h] == sketchB[h] {
			matches++
		}
	}
	if valid == 0 {
		return 0
	}
	return float64(matches) / float64(valid)
}

// minHashSketch computes the per-hash minimum over all valid k-mers of
// an already-canonicalized sequence. A k-mer containing N is skipped.
func minHashSketch(canonical []byte, k, numHashes int) []uint32 {
	sketch := make([]uint32, numHashes)
	for h := range sketch {
		sketch[h] = math.MaxUint32
	}
	for i := 0; i+k <= len(canonical); i++ {
		kmer := canonical[i : i+k]
		valid := true
		for _, b := range kmer {
			if baseCode[b] < 0 {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}
		for h := 0; h < numHashes; h++ {
			hash := fnvHash(kmer, uint32(h)*0x9e3779b9)
			if hash < sketch[h] {
				sketch[h] = hash
			}
		}
	}
	return sketch
}

// fnvHash is FNV-1a with the seed folded into the offset basis, giving
// numHashes cheap independent hash functions.
func fnvHash(data []byte, seed uint32) uint32 {
	hash := uint32(2166136261) ^ seed
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 0x01000193
	}
	return hash
}

// HoeffdingsD measures general (not just monotone) dependence between
// two samples, scaled so independence is near 0. Ties are handled with
// average ranks. Fewer than 5 points cannot support the statistic and
// score 0.
func HoeffdingsD(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, ErrDimensionMismatch
	}
	n := len(x)
	if n < 5 {
		return 0, nil
	}

	r := averageRanks(x)
	s := averageRanks(y)

	// Q[i] counts points in the lower-left quadrant of point i, with
	// half weight for ties on one axis and quarter weight on both.
	q := make([]float64, n)
	for i := 0; i < n; i++ {
		qi := 1.0
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			switch {
			case x[j] < x[i] && y[j] < y[i]:
				qi += 1
			case x[j] == x[i] && y[j] == y[i]:
				qi += 0.25
			case (x[j] == x[i] && y[j] < y[i]) || (x[j] < x[i] && y[j] == y[i]):
				qi += 0.5
			}
		}
		q[i] = qi
	}

	var d1, d2, d3 float64
	for i := 0; i < n; i++ {
		d1 += (q[i] - 1) * (q[i] - 2)
		d2 += (r[i] - 1) * (r[i] - 2) * (s[i] - 1) * (s[i] - 2)
		d3 += (r[i] - 2) * (s[i] - 2) * (q[i] - 1)
	}

	nf := float64(n)
	num := 30 * ((nf-2)*(nf-3)*d1 + d2 - 2*(nf-2)*d3)
	den := nf * (nf - 1) * (nf - 2) * (nf - 3) * (nf - 4)
	return num / den, nil
}

// averageRanks assigns 1-based ranks, with tied values sharing the
// mean of their rank range.
func averageRanks(values []float64) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[order[j+1]] == values[order[i]] {
			j++
		}
		// Ranks i+1..j+1 averaged across the tie group.
		avg := float64(i+j+2) / 2
		for t := i; t <= j; t++ {
			ranks[order[t]] = avg
		}
		i = j + 1
	}
	return ranks
}
