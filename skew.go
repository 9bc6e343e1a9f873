package genomesig

// skew.go has the strand-asymmetry and sequence-complexity measures.
// GC skew locates replication origin and terminus in bacterial
// genomes; linguistic complexity separates repeat-rich regions from
// information-dense ones.

// GCSkew computes (G-C)/(G+C) for each window of seq. Windows with no
// G or C score 0. Matching is case-insensitive and other bases are
// ignored.
func GCSkew(seq []byte, windowSize, stepSize int) []float64 {
	if windowSize <= 0 || stepSize <= 0 || len(seq) < windowSize {
		return []float64{}
	}
	canonical := Canonicalize(seq)
	skews := make([]float64, 0, (len(canonical)-windowSize)/stepSize+1)
	for i := 0; i+windowSize <= len(canonical); i += stepSize {
		var g, c int
		for _, b := range canonical[i : i+windowSize] {
			switch b {
			case 'G':
				g++
			case 'C':
				c++
			}
		}
		if g+c == 0 {
			skews = append(skews, 0)
			continue
		}
		skews = append(skews, float64(g-c)/float64(g+c))
	}
	return skews
}

// CumulativeGCSkew returns the running sum of per-base skew, +1 for
// each G and -1 for each C. The minimum of the curve marks the likely
// replication origin, the maximum the terminus.
func CumulativeGCSkew(seq []byte) []float64 {
	canonical := Canonicalize(seq)
	cumulative := make([]float64, len(canonical))
	sum := 0.0
	for i, b := range canonical {
		switch b {
		case 'G':
			sum++
		case 'C':
			sum--
		}
		cumulative[i] = sum
	}
	return cumulative
}

// LinguisticComplexity measures vocabulary usage: the number of
// distinct substrings of lengths 1..maxK observed in seq, over the
// maximum possible. 1.0 means every achievable word is present; long
// homopolymers score near 0.
func LinguisticComplexity(seq []byte, maxK int) float64 {
	canonical := Canonicalize(seq)
	if len(canonical) == 0 || maxK <= 0 {
		return 0
	}
	var observed, possible float64
	for k := 1; k <= maxK && k <= len(canonical); k++ {
		seen := make(map[string]struct{})
		for i := 0; i+k <= len(canonical); i++ {
			seen[string(canonical[i:i+k])] = struct{}{}
		}
		maxWords := float64(len(canonical) - k + 1)
		if alphabet := pow4(k); alphabet < maxWords {
			maxWords = alphabet
		}
		observed += float64(len(seen))
		possible += maxWords
	}
	if possible == 0 {
		return 0
	}
	return observed / possible
}

// WindowedComplexity computes the distinct-k-mer ratio for each window
// of seq: distinct k-mers observed over the maximum achievable in a
// window of that size.
func WindowedComplexity(seq []byte, windowSize, stepSize, k int) []float64 {
	if windowSize <= 0 || stepSize <= 0 || k <= 0 || k > windowSize || len(seq) < windowSize {
		return []float64{}
	}
	canonical := Canonicalize(seq)
	if len(canonical) < windowSize {
		return []float64{}
	}
	maxWords := float64(windowSize - k + 1)
	if alphabet := pow4(k); alphabet < maxWords {
		maxWords = alphabet
	}
	scores := make([]float64, 0, (len(canonical)-windowSize)/stepSize+1)
	seen := make(map[string]struct{})
	for i := 0; i+windowSize <= len(canonical); i += stepSize {
		for key := range seen {
			delete(seen, key)
		}
		window := canonical[i : i+windowSize]
		for j := 0; j+k <= len(window); j++ {
			seen[string(window[j:j+k])] = struct{}{}
		}
		scores = append(scores, float64(len(seen))/maxWords)
	}
	return scores
}

// pow4 returns 4^k as a float64, saturating well past any realistic k.
func pow4(k int) float64 {
	result := 1.0
	for i := 0; i < k; i++ {
		result *= 4
	}
	return result
}
