// Package sketches defines the lifecycle contract shared by the sketch
// families in this library.
//
// A sketch is a fixed-memory summary of an unbounded data stream that
// answers a statistical query approximately: how many distinct items, how
// often an item occurred, whether an item was seen at all.  Every family
// trades exactness for sublinear memory with a quantified error bound, and
// every family moves through the same lifecycle: a validated constructor,
// streaming Update calls, point-in-time Estimate reads, Merge with another
// sketch of the same configuration, and a versioned binary encoding that
// survives the network and hostile input.
//
// Families live in subpackages.  The hll subpackage implements the
// cardinality family (HyperLogLog); its Sketch type satisfies the
// interfaces declared here.  Deserialization cannot be expressed as an
// interface method, so each family exports its own FromBytes function
// alongside encoding.BinaryUnmarshaler support on the concrete type.
//
// All families hash input through Hash64/HashString64.  The digest
// function is part of the serialized contract: two processes exchanging
// sketch bytes must agree on it, so it will not change across releases.
//
// Sketches are not safe for unsynchronized concurrent mutation.  The
// intended distributed pattern is one sketch per worker, periodically
// merged into an aggregate under the caller's lock or behind a channel.
// Concurrent reads are safe with each other.
package sketches
