package random

import (
	"crypto/rand"
	"math/big"
)

// Random abstracts randomness so join code generation can be made
// deterministic in tests
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// String draws a string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// CryptoRandom implements Random on crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a cryptographically random int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	max := big.NewInt(int64(n))
	result, err := rand.Int(rand.Reader, max)
	if err != nil {
		// crypto/rand reads should not fail; 0 keeps callers total
		return 0
	}
	return int(result.Int64())
}

// String draws a string of the given length from the given alphabet
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(result)
}
