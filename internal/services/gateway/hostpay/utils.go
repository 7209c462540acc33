package hostpay

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// Hmac256 computes the hex encoded HMAC-SHA256 of data under key.
func Hmac256(data, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC reports whether signature is the HMAC-SHA256 of data under
// key, comparing in constant time.
func VerifyHMAC(data []byte, signature string, key []byte) bool {
	want, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return hmac.Equal(mac.Sum(nil), want)
}

// GenerateHash returns a bcrypt hash of the given secret.
func GenerateHash(secret []byte) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(secret, bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("GenerateHash: %v", err)
	}
	return string(hashed), nil
}

// CompareHash reports whether secret matches the bcrypt hash.
func CompareHash(hash string, secret []byte) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), secret) == nil
}

// randomNumber returns a 12 digit random request id.
func randomNumber() (string, error) {
	max := big.NewInt(0).Exp(big.NewInt(10), big.NewInt(12), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("randomNumber: %v", err)
	}
	return fmt.Sprintf("%012d", n), nil
}
