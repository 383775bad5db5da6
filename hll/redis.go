package hll

import (
	"fmt"

	"github.com/yfedoseev/go-sketches"
)

// Redis serializes its HyperLogLog type as a 16-byte header followed by
// the registers:
//
//	[magic "HYLL": 4][encoding: 1][reserved: 3][cached cardinality: 8]
//
// Redis always runs 16384 registers of six bits (precision 14).  The dense
// encoding packs them least-significant-bit first within bytes, the
// reverse of this package's native order.  The sparse encoding is a run
// list of three opcodes:
//
//	ZERO   00xxxxxx            xxxxxx+1 registers set to 0 (1..64)
//	XZERO  01xxxxxx yyyyyyyy   14-bit count, +1 registers set to 0 (1..16384)
//	VAL    1vvvvvxx            value vvvvv+1 (1..32), repeated xx+1 times (1..4)
const (
	// RedisPrecision is the precision of every Redis HyperLogLog.  Only
	// sketches constructed with it can be exported, and imports always
	// produce it.
	RedisPrecision = 14

	redisMagic     = "HYLL"
	redisHeaderLen = 16

	redisEncodingDense  = 0
	redisEncodingSparse = 1

	redisRegisters = 1 << RedisPrecision
	redisDenseLen  = redisRegisters * registerWidth / 8
)

// FromRedis decodes the value stored at a Redis HyperLogLog key, as
// returned by GET or DUMP-without-envelope, into a sketch of precision
// RedisPrecision.  Both the dense and the sparse encodings are accepted.
// Malformed input of any kind is rejected with a *sketches.FormatError.
//
// Registers imported from Redis are valid HyperLogLog state and estimate
// correctly, but Redis assigns items to registers with its own hash, so a
// sketch imported from Redis and one built natively from the same items
// will not have identical registers.  Merge imported sketches with other
// imported sketches.
func FromRedis(data []byte) (*Sketch, error) {

	if len(data) < redisHeaderLen {
		return nil, &sketches.FormatError{Reason: "truncated HYLL header"}
	}

	if string(data[:len(redisMagic)]) != redisMagic {
		return nil, &sketches.FormatError{Reason: "missing HYLL magic"}
	}

	s, err := New(RedisPrecision)
	if err != nil {
		return nil, err
	}

	payload := data[redisHeaderLen:]

	switch encoding := data[4]; encoding {
	case redisEncodingDense:
		if len(payload) != redisDenseLen {
			return nil, &sketches.FormatError{
				Reason: fmt.Sprintf("dense payload is %d bytes, want %d", len(payload), redisDenseLen),
			}
		}
		for i := 0; i < redisRegisters; i++ {
			s.regs.observe(i, redisGetRegister(payload, i))
		}
	case redisEncodingSparse:
		if err := decodeRedisSparse(payload, s.regs); err != nil {
			return nil, err
		}
	default:
		return nil, &sketches.FormatError{Reason: fmt.Sprintf("unknown HYLL encoding %d", encoding)}
	}

	return s, nil
}

// ToRedis encodes the sketch as a dense HYLL value that Redis accepts via
// SET followed by PFADD/PFCOUNT/PFMERGE on the key.  The cached
// cardinality in the header is marked stale so Redis recomputes it on
// first use.
//
// Only RedisPrecision sketches can be exported; anything else returns a
// *sketches.IncompatibleError.
func (s *Sketch) ToRedis() ([]byte, error) {

	if s.precision != RedisPrecision {
		return nil, &sketches.IncompatibleError{
			Reason: fmt.Sprintf("redis interop requires precision %d, sketch has %d", RedisPrecision, s.precision),
		}
	}

	out := make([]byte, redisHeaderLen+redisDenseLen)
	copy(out, redisMagic)
	out[4] = redisEncodingDense
	out[15] = 0x80 // cached-cardinality stale bit

	payload := out[redisHeaderLen:]
	for i := 0; i < redisRegisters; i++ {
		redisSetRegister(payload, i, s.regs.get(i))
	}

	return out, nil
}

// decodeRedisSparse replays a sparse opcode stream into the register file.
// The stream must cover exactly the full register range.
func decodeRedisSparse(payload []byte, regs registers) error {

	idx := 0
	for i := 0; i < len(payload); {

		op := payload[i]
		switch {
		case op&0xc0 == 0x00: // ZERO
			idx += int(op&0x3f) + 1
			i++
		case op&0xc0 == 0x40: // XZERO
			if i+1 >= len(payload) {
				return &sketches.FormatError{Reason: "truncated XZERO opcode"}
			}
			idx += int(op&0x3f)<<8 + int(payload[i+1]) + 1
			i += 2
		default: // VAL
			value := (op>>2)&0x1f + 1
			runLen := int(op&0x03) + 1

			if idx+runLen > redisRegisters {
				return &sketches.FormatError{Reason: "sparse payload overflows the register range"}
			}
			for j := 0; j < runLen; j++ {
				regs.observe(idx+j, value)
			}

			idx += runLen
			i++
		}

		if idx > redisRegisters {
			return &sketches.FormatError{Reason: "sparse payload overflows the register range"}
		}
	}

	if idx != redisRegisters {
		return &sketches.FormatError{
			Reason: fmt.Sprintf("sparse payload covers %d of %d registers", idx, redisRegisters),
		}
	}

	return nil
}

// redisGetRegister reads register i from a dense Redis payload, where
// registers are packed least-significant-bit first within bytes.
func redisGetRegister(payload []byte, i int) uint8 {

	addr := i * registerWidth
	b := addr >> 3
	fb := uint(addr & 0x7)

	v := uint16(payload[b]) >> fb
	if fb > 8-registerWidth {
		v |= uint16(payload[b+1]) << (8 - fb)
	}

	return uint8(v & maxRegisterValue)
}

// redisSetRegister writes register i into a dense Redis payload.
func redisSetRegister(payload []byte, i int, value uint8) {

	addr := i * registerWidth
	b := addr >> 3
	fb := uint(addr & 0x7)

	mask := uint16(maxRegisterValue) << fb
	bits := uint16(value) << fb

	payload[b] = (payload[b] &^ byte(mask)) | byte(bits)
	if fb > 8-registerWidth {
		payload[b+1] = (payload[b+1] &^ byte(mask>>8)) | byte(bits>>8)
	}
}
