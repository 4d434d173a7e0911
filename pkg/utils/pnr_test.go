package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratePNR(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{6}$`)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		pnr := GeneratePNR()
		assert.Regexp(t, pattern, pnr)
		seen[pnr] = true
	}
	// 100 draws from a 36^6 space colliding down to a handful would mean a
	// broken generator
	assert.Greater(t, len(seen), 90)
}

func TestSyntheticTransactionID(t *testing.T) {
	assert.Equal(t, "BB000042", SyntheticTransactionID(42))
	assert.Equal(t, "BB000001", SyntheticTransactionID(1))
	assert.Equal(t, "BB1234567", SyntheticTransactionID(1234567))
}
