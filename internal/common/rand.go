package common

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateRandByteArray returns size cryptographically random bytes.
// It panics if the system RNG fails, which is not recoverable anyway.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// MakeNumericCode returns a string of length digits built from uniformly
// random decimal digits, e.g. a 6-digit password reset code. Leading zeros
// are allowed.
func MakeNumericCode(digits int) (string, error) {
	max := big.NewInt(10)
	code := make([]byte, digits)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Useful for removing passwords from memory after use.
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}

// Mask returns a short prefix of s suitable for logging identifiers without
// exposing the full value.
func Mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return fmt.Sprintf("%s****", s[:4])
}
