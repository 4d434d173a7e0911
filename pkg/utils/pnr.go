package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const pnrAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// PNRLength is the length of generated booking confirmation codes
const PNRLength = 6

// GeneratePNR returns a random 6-character uppercase alphanumeric booking
// reference. Uniqueness is enforced by the database constraint; callers retry
// on collision.
func GeneratePNR() string {
	b := make([]byte, PNRLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(pnrAlphabet))))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			b[i] = pnrAlphabet[0]
			continue
		}
		b[i] = pnrAlphabet[n.Int64()]
	}
	return string(b)
}

// SyntheticTransactionID derives the deterministic payment transaction id
// recorded for an internally settled booking.
func SyntheticTransactionID(requestID uint) string {
	return fmt.Sprintf("BB%06d", requestID)
}
