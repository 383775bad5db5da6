package hll

import (
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/yfedoseev/go-sketches"
)

// Serialized layout, stable across releases:
//
//	[version: 1 byte][precision: 1 byte][registers: 3*2^(precision-2) bytes]
//
// Registers appear in index order, six bits each, most significant bit
// first.  Any layout change bumps the version byte; readers reject
// versions they do not know rather than guessing.
const (
	codecVersion = 1
	headerLen    = 2
)

// MarshalBinary implements encoding.BinaryMarshaler.  It never fails; the
// error return satisfies the interface.
func (s *Sketch) MarshalBinary() ([]byte, error) {

	out := make([]byte, headerLen+packedLen(s.precision))
	out[0] = codecVersion
	out[1] = byte(s.precision)
	s.regs.writeBytes(out[headerLen:])

	return out, nil
}

// FromBytes deserializes a sketch produced by MarshalBinary.  The input is
// treated as untrusted: the version, the precision, and the exact payload
// length are validated before any register data is read.  Every failure is
// a *sketches.FormatError.
func FromBytes(data []byte) (*Sketch, error) {

	if len(data) < headerLen {
		return nil, &sketches.FormatError{Reason: "truncated header"}
	}

	if v := data[0]; v != codecVersion {
		return nil, &sketches.FormatError{Reason: fmt.Sprintf("unknown version %d", v)}
	}

	precision := int(data[1])
	if precision < MinPrecision || precision > MaxPrecision {
		return nil, &sketches.FormatError{
			Reason: fmt.Sprintf("precision %d out of range [%d,%d]", precision, MinPrecision, MaxPrecision),
		}
	}

	payload := data[headerLen:]
	if len(payload) != packedLen(precision) {
		return nil, &sketches.FormatError{
			Reason: fmt.Sprintf("register payload is %d bytes, want %d", len(payload), packedLen(precision)),
		}
	}

	s := &Sketch{precision: precision, regs: newRegisters(precision)}
	s.regs.setBytes(payload)

	return s, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.  The receiver is
// replaced only after the input fully validates; on error it is left
// unchanged.
func (s *Sketch) UnmarshalBinary(data []byte) error {

	decoded, err := FromBytes(data)
	if err != nil {
		return err
	}

	*s = *decoded
	return nil
}

// jsonSketch is the wire shape of the JSON codec.  The packed register
// image is snappy-compressed before the base64 pass encoding/json applies
// to byte slices; at low cardinality the image is mostly zero runs and
// compresses to almost nothing.
type jsonSketch struct {
	Precision int    `json:"precision"`
	Registers []byte `json:"registers"`
}

// MarshalJSON implements json.Marshaler.
func (s *Sketch) MarshalJSON() ([]byte, error) {

	packed := make([]byte, packedLen(s.precision))
	s.regs.writeBytes(packed)

	return json.Marshal(jsonSketch{
		Precision: s.precision,
		Registers: snappy.Encode(nil, packed),
	})
}

// UnmarshalJSON implements json.Unmarshaler with the same trust model as
// FromBytes: everything validates before the receiver changes, and the
// claimed decompressed size is checked before any allocation, so a crafted
// payload cannot demand an arbitrarily large buffer.
func (s *Sketch) UnmarshalJSON(data []byte) error {

	var wire jsonSketch
	if err := json.Unmarshal(data, &wire); err != nil {
		return &sketches.FormatError{Reason: "json envelope", Err: err}
	}

	if wire.Precision < MinPrecision || wire.Precision > MaxPrecision {
		return &sketches.FormatError{
			Reason: fmt.Sprintf("precision %d out of range [%d,%d]", wire.Precision, MinPrecision, MaxPrecision),
		}
	}

	n, err := snappy.DecodedLen(wire.Registers)
	if err != nil {
		return &sketches.FormatError{Reason: "register payload", Err: errors.Wrap(err, "snappy header")}
	}
	if n != packedLen(wire.Precision) {
		return &sketches.FormatError{
			Reason: fmt.Sprintf("register payload is %d bytes, want %d", n, packedLen(wire.Precision)),
		}
	}

	packed, err := snappy.Decode(nil, wire.Registers)
	if err != nil {
		return &sketches.FormatError{Reason: "register payload", Err: errors.Wrap(err, "snappy decode")}
	}

	decoded := &Sketch{precision: wire.Precision, regs: newRegisters(wire.Precision)}
	decoded.regs.setBytes(packed)

	*s = *decoded
	return nil
}
