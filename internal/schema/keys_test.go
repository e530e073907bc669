package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositeKeys(t *testing.T) {
	assert.Equal(t, "12_7", EntryKey(12, 7))
	assert.Equal(t, "3_45", TotalKey(3, 45))

	// 1_23 and 12_3 must not collide.
	assert.NotEqual(t, EntryKey(1, 23), EntryKey(12, 3))
}

func TestSplitKey(t *testing.T) {
	t.Run("round trips", func(t *testing.T) {
		a, b, err := SplitKey(TotalKey(9001, 42))
		require.NoError(t, err)
		assert.Equal(t, int64(9001), a)
		assert.Equal(t, int64(42), b)
	})

	t.Run("rejects malformed keys", func(t *testing.T) {
		for _, key := range []string{"", "12", "a_1", "1_b", "1-2"} {
			_, _, err := SplitKey(key)
			assert.Error(t, err, "key %q", key)
		}
	})
}
