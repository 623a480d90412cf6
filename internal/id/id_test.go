package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for range 1000 {
		id, err := Generate("ani")
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestGenerate_Format(t *testing.T) {
	id := MustGenerate("usr")

	prefix, rest, ok := strings.Cut(id, "-")
	require.True(t, ok)
	assert.Equal(t, "usr", prefix)
	assert.Len(t, rest, length)
	for _, r := range rest {
		assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q", r)
	}
}
