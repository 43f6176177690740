// Package hash provides hashing utilities.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256 computes the SHA256 hash of data and returns it as a hex string.
func SHA256(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SHA256Short returns the first n characters of a SHA256 hash.
func SHA256Short(data []byte, n int) string {
	h := SHA256(data)
	if n > len(h) {
		return h
	}
	return h[:n]
}

// RunID derives a short deterministic identifier for an evaluation run
// from the annotation payload it evaluated. The same corpus always yields
// the same run ID, which lets run history deduplicate re-runs.
func RunID(annotations []byte) string {
	return SHA256Short(annotations, 12)
}
