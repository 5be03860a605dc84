package pnr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := Generate()
		assert.NoError(t, err)
		assert.Len(t, code, Length)
		assert.True(t, Valid(code), "generated code %q is not all digits", code)
	}
}

func TestGenerateNotConstant(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := Generate()
		assert.NoError(t, err)
		seen[code] = true
	}
	// 50 draws from a 10^10 space should never all be the same code.
	assert.Greater(t, len(seen), 1)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("0123456789"))
	assert.True(t, Valid("9999999999"))

	assert.False(t, Valid(""))
	assert.False(t, Valid("123456789"))   // too short
	assert.False(t, Valid("12345678901")) // too long
	assert.False(t, Valid("12345abc90"))
	assert.False(t, Valid("12345 7890"))
	assert.False(t, Valid("١٢٣٤٥٦٧٨٩٠")) // non-ASCII digits
}
