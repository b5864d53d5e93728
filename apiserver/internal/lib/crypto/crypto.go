package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
)

const tokenChars = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789"

var tokenCharsLen = big.NewInt(int64(len(tokenChars)))

// ShortSHA returns a truncated, hex-encoded SHA-256 hash of the provided
// input. If a salt is provided, it is prepended to the input before hashing.
func ShortSHA(salt, input string) string {
	if salt != "" {
		input = fmt.Sprintf("%s:%s", salt, input)
	}
	sum := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", sum)[0:54]
}

// NewToken returns a random alphanumeric string of the specified length. It
// panics if the system's secure random source cannot be read.
func NewToken(tokenLength int) string {
	b := make([]byte, tokenLength)
	for i := 0; i < tokenLength; i++ {
		n, err := rand.Int(rand.Reader, tokenCharsLen)
		if err != nil {
			panic(err)
		}
		b[i] = tokenChars[n.Int64()]
	}
	return string(b)
}
