package genomesig

// sequence.go implements the sequence canonicalizer and the basic
// composition helpers (GC content, reverse complement) that the
// signature pipeline builds on.

// canonicalTable maps every input byte onto the canonical {A,C,G,T,N}
// alphabet: uppercase, U becomes T, anything else becomes N.
var canonicalTable = buildCanonicalTable()

func buildCanonicalTable() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = 'N'
	}
	for _, b := range []byte("ACGT") {
		t[b] = b
		t[b+'a'-'A'] = b
	}
	t['U'] = 'T'
	t['u'] = 'T'
	return t
}

// Canonicalize normalizes a raw nucleotide sequence onto {A,C,G,T,N}.
// Length is always preserved: ambiguous symbols are replaced, never
// dropped, so window coordinates computed downstream match the input.
func Canonicalize(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[i] = canonicalTable[b]
	}
	return out
}

// GCContent returns the GC percentage (0-100) over unambiguous bases.
// N and other ambiguity codes are excluded from both numerator and
// denominator. Returns 0 when no valid bases are present.
func GCContent(seq []byte) float64 {
	var gc, total uint64
	for _, b := range seq {
		switch b {
		case 'G', 'g', 'C', 'c':
			gc++
			total++
		case 'A', 'a', 'T', 't', 'U', 'u':
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(gc) / float64(total) * 100
}

// complementTable maps each base to its complement, covering the full
// IUPAC ambiguity alphabet and preserving case. Unknown bytes map to
// themselves.
var complementTable = buildComplementTable()

func buildComplementTable() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = byte(i)
	}
	pairs := []struct{ a, b byte }{
		{'A', 'T'}, {'G', 'C'},
		{'R', 'Y'}, {'K', 'M'},
		{'B', 'V'}, {'D', 'H'},
	}
	for _, p := range pairs {
		t[p.a], t[p.b] = p.b, p.a
		t[p.a+32], t[p.b+32] = p.b+32, p.a+32
	}
	// S, W and N are self-complementary; U pairs with A like T does.
	t['U'] = 'A'
	t['u'] = 'a'
	return t
}

// ReverseComplement returns the reverse complement of seq, handling all
// IUPAC ambiguity codes and preserving case.
func ReverseComplement(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = complementTable[b]
	}
	return out
}

// stripAmbiguous returns seq with every non-ACGT byte removed. Used by
// the compression-ratio signal so long N runs do not inflate apparent
// compressibility.
func stripAmbiguous(seq []byte) []byte {
	out := make([]byte, 0, len(seq))
	for _, b := range seq {
		switch b {
		case 'A', 'C', 'G', 'T':
			out = append(out, b)
		}
	}
	return out
}
