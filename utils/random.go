package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// alphanumeric charset without ambiguous characters (0/O, 1/l/I).
const tokenCharset = "23456789abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ"

// RandomString returns an n character random string drawn from the
// token charset. It panics if the system entropy source fails.
func RandomString(n int) string {
	byt := make([]byte, n)
	if _, err := rand.Read(byt); err != nil {
		panic(err)
	}
	for i := range byt {
		byt[i] = tokenCharset[int(byt[i])%len(tokenCharset)]
	}
	return string(byt)
}

// NewProofToken mints a fresh entry proof secret. Tokens are long enough
// that guessing one is not practical.
func NewProofToken() (string, error) {
	// Make a slice of random bytes.
	byt := make([]byte, 20)

	// Read into the slice.
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	// Return the hexadecimal string.
	return hex.EncodeToString(byt), nil
}

// GenerateCode returns an uppercase hex code of n random bytes, used for
// short human-facing references.
func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(byt)), nil
}
