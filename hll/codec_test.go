package hll

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yfedoseev/go-sketches"
)

func Test_MarshalBinary_Layout(t *testing.T) {

	s := newSketch(t, 4)
	s.UpdateHash(routedHash(4, 0, 1))

	data, err := s.MarshalBinary()
	require.NoError(t, err)

	require.Len(t, data, headerLen+12)
	assert.Equal(t, byte(codecVersion), data[0])
	assert.Equal(t, byte(4), data[1])

	// register 0 holds 1: six bits 000001 at the top of the payload.
	assert.Equal(t, byte(0x04), data[2])
	for _, b := range data[3:] {
		assert.Equal(t, byte(0), b)
	}
}

func Test_BinaryRoundTrip(t *testing.T) {

	for _, precision := range []int{4, 12, 14, 18} {

		s := newSketch(t, precision)
		for i := 0; i < 1000; i++ {
			s.UpdateString("item_" + strconv.Itoa(i))
		}

		data, err := s.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, headerLen+packedLen(precision), "precision %d", precision)

		in, err := FromBytes(data)
		require.NoError(t, err)

		assert.Equal(t, s.Precision(), in.Precision())
		assert.Equal(t, s.Registers(), in.Registers())
		assert.Equal(t, s.Estimate(), in.Estimate())
	}
}

func Test_UnmarshalBinary(t *testing.T) {

	s := newSketch(t, 10)
	s.UpdateString("one")
	data, err := s.MarshalBinary()
	require.NoError(t, err)

	var in Sketch
	require.NoError(t, in.UnmarshalBinary(data))
	assert.Equal(t, s.Registers(), in.Registers())

	// a failed unmarshal leaves existing state alone.
	require.Error(t, in.UnmarshalBinary([]byte{0xff}))
	assert.Equal(t, s.Registers(), in.Registers())
}

func Test_FromBytes_RejectsMalformed(t *testing.T) {

	s := newSketch(t, 4)
	s.UpdateString("seed")
	valid, err := s.MarshalBinary()
	require.NoError(t, err)

	mutate := func(idx int, b byte) []byte {
		d := append([]byte(nil), valid...)
		d[idx] = b
		return d
	}

	tests := []struct {
		label string
		data  []byte
	}{
		{label: "nil", data: nil},
		{label: "empty", data: []byte{}},
		{label: "half a header", data: []byte{codecVersion}},
		{label: "header with no payload", data: []byte{codecVersion, 14}},
		{label: "unknown version", data: mutate(0, 2)},
		{label: "version from another codec", data: mutate(0, 0xff)},
		{label: "precision below range", data: mutate(1, 3)},
		{label: "precision above range", data: mutate(1, 19)},
		{label: "truncated payload", data: valid[:len(valid)-1]},
		{label: "oversized payload", data: append(append([]byte(nil), valid...), 0)},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {

			in, err := FromBytes(tt.data)
			require.Error(t, err)
			require.Nil(t, in)

			var formatErr *sketches.FormatError
			assert.ErrorAs(t, err, &formatErr)
		})
	}
}

func Test_JSONRoundTrip(t *testing.T) {

	s := newSketch(t, 12)
	for i := 0; i < 500; i++ {
		s.UpdateString("item_" + strconv.Itoa(i))
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"precision":12`))

	var in Sketch
	require.NoError(t, json.Unmarshal(data, &in))

	assert.Equal(t, s.Precision(), in.Precision())
	assert.Equal(t, s.Registers(), in.Registers())
	assert.Equal(t, s.Estimate(), in.Estimate())
}

func Test_JSON_CompressesSparseState(t *testing.T) {

	// a lightly loaded register file is almost all zeros, which snappy
	// collapses to a tiny fraction of the packed size.
	s := newSketch(t, 14)
	s.UpdateString("only")

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Less(t, len(data), packedLen(14)/4)
}

func Test_UnmarshalJSON_RejectsMalformed(t *testing.T) {

	registers := func(payload []byte) string {
		return base64.StdEncoding.EncodeToString(payload)
	}

	tests := []struct {
		label string
		data  string
	}{
		{
			label: "not json",
			data:  `{"precision":`,
		},
		{
			label: "precision out of range",
			data:  `{"precision":3,"registers":""}`,
		},
		{
			label: "empty registers",
			data:  `{"precision":12,"registers":""}`,
		},
		{
			label: "registers not snappy",
			data:  `{"precision":12,"registers":"` + registers([]byte{0xff, 0xff, 0xff, 0xff}) + `"}`,
		},
		{
			label: "payload length mismatch",
			data:  `{"precision":12,"registers":"` + registers(snappy.Encode(nil, []byte("short"))) + `"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {

			var s Sketch
			err := s.UnmarshalJSON([]byte(tt.data))
			require.Error(t, err)

			var formatErr *sketches.FormatError
			assert.ErrorAs(t, err, &formatErr)
		})
	}
}

func Test_UnmarshalJSON_WrapsCause(t *testing.T) {

	payload := `{"precision":12,"registers":"` +
		base64.StdEncoding.EncodeToString([]byte{0xff, 0xff, 0xff, 0xff}) + `"}`

	var s Sketch
	err := s.UnmarshalJSON([]byte(payload))
	require.Error(t, err)

	// the snappy error stays reachable through the wrap chain.
	assert.ErrorIs(t, err, snappy.ErrCorrupt)
}
