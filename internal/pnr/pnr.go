// Package pnr generates reservation codes. A PNR is a ten-digit
// numeric string drawn at random; the generator performs no storage
// access, so callers must verify the code is unused before committing
// a booking that carries it.
package pnr

import "crypto/rand"

// Length is the fixed size of a generated code.
const Length = 10

// Generate returns a random ten-digit numeric string. Codes are drawn
// uniformly from the 10^10 space; collisions are possible and must be
// handled by the caller.
func Generate() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = '0' + b%10
	}
	return string(buf), nil
}

// Valid reports whether s has the shape of a reservation code:
// exactly Length ASCII digits.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
