package sketches

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Hash64_Deterministic(t *testing.T) {

	assert.Equal(t, Hash64([]byte("observability")), Hash64([]byte("observability")))
	assert.Equal(t, Hash64(nil), Hash64([]byte{}))
}

func Test_Hash64_MatchesHashString64(t *testing.T) {

	items := []string{
		"",
		"a",
		"item_42",
		"Ω≈ç√",
		"a somewhat longer input that leaves the short-string fast path",
	}

	for _, item := range items {
		assert.Equal(t, Hash64([]byte(item)), HashString64(item), "item %q", item)
	}
}

func Test_Hash64_Spreads(t *testing.T) {

	// not a statistical test, just a guard against a degenerate digest:
	// distinct short keys must produce distinct values.
	seen := make(map[uint64]string, 10000)

	for i := 0; i < 10000; i++ {
		item := "item_" + strconv.Itoa(i)
		h := HashString64(item)

		prev, collision := seen[h]
		require.False(t, collision, "%q and %q collide", prev, item)
		seen[h] = item
	}
}
