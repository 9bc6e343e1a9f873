// Package genomesig computes alignment-free composition signatures for
// genomic sequences: k-mer frequency profiles, sliding-window anomaly
// detection, and principal component analysis of signature sets.
//
// The package is strict about nothing and quiet about everything: inputs
// are canonicalized (case-insensitive, RNA folded to DNA, unknown bases
// mapped to N) rather than rejected, and degenerate inputs produce empty
// but well-formed results. Heavy inner loops can be dispatched to an
// optimized kernel through an Accelerator; all results are identical
// within floating-point tolerance whether or not the kernel is used.
package genomesig
