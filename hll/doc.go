// Package hll implements the HyperLogLog cardinality sketch: a fixed-size
// stream summary that estimates the number of distinct items observed.
//
// A sketch with precision p keeps 2^p six-bit registers and estimates with
// a relative standard error of about 1.04/sqrt(2^p).  Precision 14 costs
// 12KiB and lands within roughly 0.8%; every added item costs one hash and
// one register write, no matter how large the stream grows.
//
//	s, _ := hll.New(14)
//	s.UpdateString("alice")
//	s.UpdateString("bob")
//	s.UpdateString("alice")
//	n := s.Estimate() // ≈ 2
//
// Sketches built on different machines over different parts of a stream
// can be combined with Merge, which computes the union without the raw
// data and loses nothing relative to a single sketch that saw everything.
// Merging requires equal precisions.
//
// MarshalBinary produces a small versioned encoding validated strictly on
// the way back in, safe to persist or ship across a network; a JSON form
// with a snappy-compressed register payload is available through the usual
// encoding/json interfaces.  FromRedis and ToRedis exchange register state
// with the Redis HYLL type.
//
// A Sketch must not be mutated concurrently.  Shard work across
// goroutines by giving each its own sketch and merging under the caller's
// lock.
package hll
