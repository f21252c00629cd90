package drbg

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func read(t *testing.T, r io.Reader, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := io.ReadFull(r, b)
	require.NoError(t, err)
	return b
}

func TestDeterministic(t *testing.T) {
	a := read(t, String("seed"), 1000)
	b := read(t, String("seed"), 1000)
	assert.Equal(t, a, b)

	c := read(t, String("other seed"), 1000)
	assert.NotEqual(t, a, c)
}

func TestStreamContinues(t *testing.T) {
	r := String("seed")
	first := read(t, r, 64)
	second := read(t, r, 64)
	assert.NotEqual(t, first, second)
}
