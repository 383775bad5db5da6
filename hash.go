package sketches

import "github.com/zeebo/xxh3"

// Hash64 returns the canonical 64-bit digest used by every sketch family
// in this library.  It is the seedless xxh3 hash: fast, with the avalanche
// and uniformity properties the estimator math assumes.
//
// The choice is load-bearing.  Serialized sketches carry register state
// derived from these digests, so two processes exchanging sketch bytes
// must hash identically; the function will not change across releases.
func Hash64(item []byte) uint64 {
	return xxh3.Hash(item)
}

// HashString64 is Hash64 for strings, avoiding the []byte copy.
func HashString64(item string) uint64 {
	return xxh3.HashString(item)
}
