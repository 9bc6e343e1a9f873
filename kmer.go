package genomesig

// kmer.go implements the rolling k-mer encoder and the dense/sparse
// counters behind every composition signature in this package. The
// encoder is a two-transition state machine over {window, validRun}:
// a valid base shifts the 2k-bit window, an ambiguous base resets the
// run, so no emitted k-mer ever spans an N.

// MaxDenseK is the largest k the dense counter accepts. 4^10 entries
// bound the count vector to a few MB.
const MaxDenseK = 10

// MaxSparseK is the largest k the sparse counter accepts. Beyond this,
// exact counting is impractical and callers should use a sketch.
const MaxSparseK = 15

// baseCode maps canonical bases to their 2-bit codes (A=0 C=1 G=2 T=3);
// every other byte is -1 and resets the encoder.
var baseCode = buildBaseCodes()

func buildBaseCodes() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	t['A'], t['C'], t['G'], t['T'] = 0, 1, 2, 3
	t['a'], t['c'], t['g'], t['t'] = 0, 1, 2, 3
	return t
}

// KmerCounts is a dense per-index count vector for a fixed k.
// Counts[i] is the number of occurrences of k-mer index i;
// sum(Counts) == TotalValid and UniqueCount is the number of nonzero
// entries.
type KmerCounts struct {
	K           int      `json:"k"`
	Counts      []uint32 `json:"counts"`
	TotalValid  uint64   `json:"total_valid"`
	UniqueCount int      `json:"unique_count"`
}

// CountKmers counts all k-mers of seq into a dense 4^k vector. The
// sequence should already be canonical; any non-ACGT byte resets the
// rolling window. Out-of-range k (k <= 0 or k > MaxDenseK) yields an
// empty result rather than an error so parameter sweeps stay simple.
func CountKmers(seq []byte, k int) *KmerCounts {
	kc := &KmerCounts{K: k}
	if k <= 0 || k > MaxDenseK {
		return kc
	}
	counts := make([]uint32, 1<<(2*k))
	mask := uint64(1)<<(2*k) - 1

	var window uint64
	validRun := 0
	for _, b := range seq {
		code := baseCode[b]
		if code < 0 {
			validRun = 0
			continue
		}
		window = (window<<2 | uint64(code)) & mask
		validRun++
		if validRun >= k {
			counts[window]++
			kc.TotalValid++
		}
	}

	for _, c := range counts {
		if c != 0 {
			kc.UniqueCount++
		}
	}
	kc.Counts = counts
	return kc
}

// CountCanonicalKmers counts strand-independent k-mers: each emitted
// index is folded with its reverse complement and the lexicographically
// smaller of the two is counted.
func CountCanonicalKmers(seq []byte, k int) *KmerCounts {
	kc := &KmerCounts{K: k}
	if k <= 0 || k > MaxDenseK {
		return kc
	}
	counts := make([]uint32, 1<<(2*k))
	mask := uint64(1)<<(2*k) - 1

	var window uint64
	validRun := 0
	for _, b := range seq {
		code := baseCode[b]
		if code < 0 {
			validRun = 0
			continue
		}
		window = (window<<2 | uint64(code)) & mask
		validRun++
		if validRun >= k {
			idx := window
			if rc := reverseComplementIndex(idx, k); rc < idx {
				idx = rc
			}
			counts[idx]++
			kc.TotalValid++
		}
	}

	for _, c := range counts {
		if c != 0 {
			kc.UniqueCount++
		}
	}
	kc.Counts = counts
	return kc
}

// reverseComplementIndex returns the 2k-bit index of the reverse
// complement of the k-mer encoded by idx. Complementing a 2-bit code is
// 3-code, and consuming idx from its low end reverses base order.
func reverseComplementIndex(idx uint64, k int) uint64 {
	var rc uint64
	for i := 0; i < k; i++ {
		rc = rc<<2 | (3 - idx&3)
		idx >>= 2
	}
	return rc
}

// Frequencies converts the count vector into a probability vector that
// sums to 1, or an all-zero vector when no valid k-mers were counted.
func (kc *KmerCounts) Frequencies() []float64 {
	freqs := make([]float64, len(kc.Counts))
	if kc.TotalValid == 0 {
		return freqs
	}
	total := float64(kc.TotalValid)
	for i, c := range kc.Counts {
		freqs[i] = float64(c) / total
	}
	return freqs
}

// SparseKmerCounts holds map-based counts keyed by k-mer string, for k
// beyond the dense range.
type SparseKmerCounts struct {
	K          int               `json:"k"`
	Counts     map[string]uint32 `json:"counts"`
	TotalValid uint64            `json:"total_valid"`
}

// CountKmersSparse counts k-mers into a map, valid for k up to
// MaxSparseK. Same reset-on-ambiguous rule as the dense counter.
// Out-of-range k yields an empty result.
func CountKmersSparse(seq []byte, k int) *SparseKmerCounts {
	sc := &SparseKmerCounts{K: k, Counts: make(map[string]uint32)}
	if k <= 0 || k > MaxSparseK {
		return sc
	}
	validRun := 0
	for i, b := range seq {
		if baseCode[b] < 0 {
			validRun = 0
			continue
		}
		validRun++
		if validRun >= k {
			sc.Counts[string(seq[i-k+1:i+1])]++
			sc.TotalValid++
		}
	}
	return sc
}

// KmerToIndex encodes a k-mer string as its base-4 index. The second
// return is false if the k-mer contains any ambiguous base.
func KmerToIndex(kmer string) (uint64, bool) {
	var idx uint64
	for i := 0; i < len(kmer); i++ {
		code := baseCode[kmer[i]]
		if code < 0 {
			return 0, false
		}
		idx = idx<<2 | uint64(code)
	}
	return idx, true
}

// IndexToKmer decodes a base-4 index back into its k-mer string.
func IndexToKmer(idx uint64, k int) string {
	buf := make([]byte, k)
	for i := k - 1; i >= 0; i-- {
		buf[i] = "ACGT"[idx&3]
		idx >>= 2
	}
	return string(buf)
}

// KmerOptions configures KmerFrequencies.
type KmerOptions struct {
	// K is the k-mer length (default 4).
	K int

	// Normalize converts counts to probabilities (default true).
	Normalize bool

	// IncludeReverseComplement symmetrizes the signature across strands
	// by adding each k-mer's count to its reverse complement's slot
	// (default true).
	IncludeReverseComplement bool
}

// DefaultKmerOptions returns the defaults used for tetranucleotide
// signatures.
func DefaultKmerOptions() KmerOptions {
	return KmerOptions{K: 4, Normalize: true, IncludeReverseComplement: true}
}

// KmerFrequencies computes a composition signature of length 4^k from a
// raw sequence. The input is canonicalized first, so case and RNA (U)
// input are handled. Out-of-range k yields an empty vector.
func KmerFrequencies(seq []byte, opts KmerOptions) []float64 {
	if opts.K <= 0 || opts.K > MaxDenseK {
		return []float64{}
	}
	kc := CountKmers(Canonicalize(seq), opts.K)

	values := make([]float64, len(kc.Counts))
	if opts.IncludeReverseComplement {
		for i, c := range kc.Counts {
			rc := reverseComplementIndex(uint64(i), opts.K)
			values[i] = float64(c) + float64(kc.Counts[rc])
		}
	} else {
		for i, c := range kc.Counts {
			values[i] = float64(c)
		}
	}

	if opts.Normalize {
		var total float64
		for _, v := range values {
			total += v
		}
		if total > 0 {
			for i := range values {
				values[i] /= total
			}
		}
	}
	return values
}

// CountingMethod identifies a k-mer counting strategy.
type CountingMethod string

const (
	// MethodDense uses a fixed 4^k count vector.
	MethodDense CountingMethod = "dense"
	// MethodSparse uses a map keyed by k-mer string.
	MethodSparse CountingMethod = "sparse"
	// MethodSketch recommends an approximate sketch such as MinHash.
	MethodSketch CountingMethod = "sketch"
)

// StrategyAdvice is the advisory result of CountingStrategy.
type StrategyAdvice struct {
	Method CountingMethod `json:"method"`
	Reason string         `json:"reason"`
}

// CountingStrategy recommends a counting strategy for the given k:
// dense arrays up to MaxDenseK, sparse maps up to MaxSparseK, and an
// approximate sketch beyond that.
func CountingStrategy(k int) StrategyAdvice {
	switch {
	case k <= MaxDenseK:
		return StrategyAdvice{
			Method: MethodDense,
			Reason: "4^k count vector fits in a few MB",
		}
	case k <= MaxSparseK:
		return StrategyAdvice{
			Method: MethodSparse,
			Reason: "4^k exceeds dense array budget; map-based counting stays exact",
		}
	default:
		return StrategyAdvice{
			Method: MethodSketch,
			Reason: "exact counting impractical beyond k=15; use MinHash or similar",
		}
	}
}
