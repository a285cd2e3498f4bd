package bookings

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// referenceAlphabet omits the look-alikes 0, O, 1, I and L
const referenceAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const referenceSuffixLength = 8

// ReferenceGenerator produces booking references
type ReferenceGenerator func(now time.Time) (string, error)

// NewReferenceGenerator returns PREFIX-YYYYMMDD-XXXXXXXX references drawn
// from crypto/rand.
func NewReferenceGenerator(prefix string) ReferenceGenerator {
	if prefix == "" {
		prefix = "BK"
	}
	return func(now time.Time) (string, error) {
		suffix, err := randomString(referenceSuffixLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate booking reference: %w", err)
		}
		return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102"), suffix), nil
	}
}

func randomString(length int) (string, error) {
	max := big.NewInt(int64(len(referenceAlphabet)))
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		result[i] = referenceAlphabet[n.Int64()]
	}
	return string(result), nil
}
