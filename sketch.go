package sketches

import "encoding"

// Sketch is the streaming lifecycle every family in this library
// implements.  Update and Estimate are total: they have no error
// conditions and always complete in time bounded by the sketch's
// configuration alone.
type Sketch interface {
	encoding.BinaryMarshaler

	// Update folds one observed item into the sketch.
	Update(item []byte)

	// Estimate returns the sketch's current approximate answer.  It is
	// read-only and idempotent: calling it any number of times, in any
	// interleaving with other reads, yields the same value.
	Estimate() float64

	// IsEmpty reports whether no observation has been recorded.
	IsEmpty() bool
}

// Mergeable is satisfied by sketch types whose union can be computed from
// the sketches alone, without access to the original streams.  Merging is
// only defined between two sketches of the same concrete family and
// configuration, hence the self-referential type parameter: a family's
// concrete type S implements Mergeable[S].
//
// Merge folds other into the receiver.  A configuration mismatch is
// reported as an *IncompatibleError and leaves the receiver untouched;
// other is never mutated.
type Mergeable[S any] interface {
	Sketch

	Merge(other S) error
}
