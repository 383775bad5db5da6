package hll

import (
	"encoding/binary"
)

// registers is the sketch's register file: m six-bit values packed into
// uint64 words.  Words rather than bytes keep most register accesses
// within a single array index; the cost is a little reassembly work on the
// codec path, which runs far less often than observe and indicator.
//
// The bit layout is most-significant-first: register 0 occupies the top
// six bits of word 0.  A register whose bits straddle a word boundary is
// split into an upper part (low bits of one word) and a lower part (high
// bits of the next).
type registers struct {
	words []uint64
	count int
}

// newRegisters allocates a zeroed register file with 2^precision entries.
// The allocation is the sketch's only one: every later operation works in
// place.
func newRegisters(precision int) registers {
	m := 1 << uint(precision)
	return registers{
		words: make([]uint64, (m*registerWidth+63)/64),
		count: m,
	}
}

// calcPosition locates a register: the index of the word holding its first
// bit, and the bit offset within that word counted from the most
// significant end.
func calcPosition(regnum int) (int, int) {
	addr := regnum * registerWidth
	return addr >> 6, addr & 0x3f
}

// get extracts a single register value.
func (r registers) get(regnum int) uint8 {

	idx, pos := calcPosition(regnum)

	// single word read.
	if pos+registerWidth <= 64 {
		shift := uint(64 - (pos + registerWidth))
		return uint8((r.words[idx] >> shift) & maxRegisterValue)
	}

	// boundary read.
	nBitsUpper := uint(64 - pos)
	nBitsLower := registerWidth - nBitsUpper

	maskUpper := uint64(1)<<nBitsUpper - 1

	upper := (r.words[idx] & maskUpper) << nBitsLower
	lower := r.words[idx+1] >> (64 - nBitsLower)

	return uint8(upper | lower)
}

// observe records a rarity for a register, keeping the larger of the
// stored and observed values.  Register values only ever grow.
func (r registers) observe(regnum int, value uint8) {

	idx, pos := calcPosition(regnum)

	// single word write.
	if pos+registerWidth <= 64 {
		shift := uint(64 - (pos + registerWidth))
		mask := uint64(maxRegisterValue) << shift

		curr := uint8((r.words[idx] & mask) >> shift)
		if value > curr {
			r.words[idx] = (r.words[idx] &^ mask) | uint64(value)<<shift
		}
		return
	}

	// boundary write.
	nBitsUpper := uint(64 - pos)
	nBitsLower := registerWidth - nBitsUpper

	maskUpper := uint64(1)<<nBitsUpper - 1
	maskLower := uint64(1)<<nBitsLower - 1

	upper := (r.words[idx] & maskUpper) << nBitsLower
	lower := r.words[idx+1] >> (64 - nBitsLower)

	if value > uint8(upper|lower) {
		r.words[idx] = (r.words[idx] &^ maskUpper) | uint64(value)>>nBitsLower
		r.words[idx+1] = (r.words[idx+1] &^ (maskLower << (64 - nBitsLower))) |
			(uint64(value)&maskLower)<<(64-nBitsLower)
	}
}

// indicator computes both estimator inputs in one pass over the packed
// words: the sum of 2^(-reg[i]) over all registers, and the number of
// registers still at zero.  It walks a shifting mask down each word
// instead of re-deriving positions per register.
func (r registers) indicator() (float64, int) {

	idx := 0
	pos := 0
	curr := r.words[idx]
	mask := uint64(maxRegisterValue) << (64 - registerWidth)

	sum := float64(0)
	numberOfZeros := 0

	for i := 0; i < r.count; i++ {

		var value uint64

		bitsAvailable := 64 - pos

		if bitsAvailable >= registerWidth {

			value = (curr & mask) >> uint(64-pos-registerWidth)
			pos += registerWidth
			mask >>= registerWidth

		} else {

			nLowerBits := uint(registerWidth - bitsAvailable)

			upperBits := uint64(0)
			if bitsAvailable > 0 {
				upperBits = (curr & mask) << nLowerBits
			}

			idx++
			curr = r.words[idx]

			lowerMask := (uint64(1)<<nLowerBits - 1) << (64 - nLowerBits)
			value = upperBits | (curr&lowerMask)>>(64-nLowerBits)

			pos = int(nLowerBits)
			mask = (uint64(maxRegisterValue) << (64 - registerWidth)) >> nLowerBits
		}

		sum += 1.0 / float64(uint64(1)<<value)
		if value == 0 {
			numberOfZeros++
		}
	}

	return sum, numberOfZeros
}

// merge keeps the element-wise maximum of the two register files.  Both
// must have the same count; the argument is never modified.
func (r registers) merge(other registers) {
	for i := 0; i < r.count; i++ {
		r.observe(i, other.get(i))
	}
}

// unpack returns the register values as one byte each.
func (r registers) unpack() []uint8 {
	out := make([]uint8, r.count)
	for i := range out {
		out[i] = r.get(i)
	}
	return out
}

// clear zeroes every register in place.
func (r registers) clear() {
	for i := range r.words {
		r.words[i] = 0
	}
}

// isEmpty reports whether every register is zero.  Bits past the last
// register are never written, so scanning whole words suffices.
func (r registers) isEmpty() bool {
	for _, w := range r.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// clone returns an independent deep copy.
func (r registers) clone() registers {
	words := make([]uint64, len(r.words))
	copy(words, r.words)
	return registers{words: words, count: r.count}
}

// writeBytes writes the packed register image into bytes, most significant
// bit first.  len(bytes) must be the packedLen for the store's precision.
func (r registers) writeBytes(bytes []byte) {

	byteOffset := 0
	nWords := len(bytes) / 8
	for i := 0; i < nWords; i++ {
		binary.BigEndian.PutUint64(bytes[byteOffset:], r.words[i])
		byteOffset += 8
	}

	// the loop above only handles whole words; emit any remaining bytes
	// from the top of the final partial word.
	remainder := len(bytes) % 8
	if remainder > 0 {
		lastWord := r.words[nWords]
		for i := 0; i < remainder; i++ {
			bytes[byteOffset+i] = byte(lastWord >> uint(64-8*(i+1)))
		}
	}
}

// setBytes loads a packed image previously produced by writeBytes.  The
// codec validates the length before calling.
func (r registers) setBytes(bytes []byte) {

	n := len(bytes)
	nWords := n / 8
	for i := 0; i < nWords; i++ {
		r.words[i] = binary.BigEndian.Uint64(bytes[i*8:])
	}

	remainder := n % 8
	if remainder > 0 {
		lastWord := uint64(0)
		for i := 0; i < remainder; i++ {
			lastWord |= uint64(bytes[nWords*8+i]) << uint(64-8*(i+1))
		}
		r.words[nWords] = lastWord
	}
}
