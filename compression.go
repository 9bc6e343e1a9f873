package genomesig

import (
	"errors"

	"github.com/golang/snappy"
)

// compression.go provides the lossless-compressor collaborator behind
// the window compression-ratio signal. The compressor is only required
// for the Repetitive/HGT classification; KL-based detection works
// without one.

// ErrNoCompressor is returned by compression-ratio operations when the
// scanner was configured without a compressor.
var ErrNoCompressor = errors.New("genomesig: no compressor configured")

// Compressor is a generic lossless byte compressor. Only the compressed
// length is consumed by this package; the output is never stored or
// decompressed.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// SnappyCompressor compresses with snappy block encoding. It is the
// default compressor: fast enough to run once per window.
type SnappyCompressor struct{}

// Compress implements Compressor.
func (SnappyCompressor) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

// CompressionRatio computes the compressibility signal for a single
// window: unambiguous length over compressed length. Returns
// ErrNoCompressor when c is nil; a window with no unambiguous bases
// scores 0.
func CompressionRatio(c Compressor, window []byte) (float64, error) {
	if c == nil {
		return 0, ErrNoCompressor
	}
	return compressionRatio(c, window), nil
}

// compressionRatio returns rawLen/compressedLen for the window with
// ambiguous bases stripped first, so long N runs do not read as
// repetitive sequence. Returns 0 for an empty window or on compressor
// failure.
func compressionRatio(c Compressor, window []byte) float64 {
	if c == nil {
		return 0
	}
	stripped := stripAmbiguous(window)
	if len(stripped) == 0 {
		return 0
	}
	compressed, err := c.Compress(stripped)
	if err != nil || len(compressed) == 0 {
		return 0
	}
	return float64(len(stripped)) / float64(len(compressed))
}
