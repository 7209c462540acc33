package hostpay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHmac256Deterministic(t *testing.T) {
	sig := Hmac256([]byte("payload"), []byte("key"))

	assert.Len(t, sig, 64)
	assert.Equal(t, sig, Hmac256([]byte("payload"), []byte("key")))
	assert.NotEqual(t, sig, Hmac256([]byte("payload"), []byte("other-key")))
	assert.NotEqual(t, sig, Hmac256([]byte("other-payload"), []byte("key")))
}

func TestVerifyHMAC(t *testing.T) {
	sig := Hmac256([]byte("payload"), []byte("key"))

	assert.True(t, VerifyHMAC([]byte("payload"), sig, []byte("key")))
	assert.False(t, VerifyHMAC([]byte("payload"), sig, []byte("other-key")))
	assert.False(t, VerifyHMAC([]byte("tampered"), sig, []byte("key")))
	assert.False(t, VerifyHMAC([]byte("payload"), "not-hex", []byte("key")))
	assert.False(t, VerifyHMAC([]byte("payload"), "", []byte("key")))
}

func TestGenerateAndCompareHash(t *testing.T) {
	hash, err := GenerateHash([]byte("client-secret"))
	require.NoError(t, err)

	assert.True(t, CompareHash(hash, []byte("client-secret")))
	assert.False(t, CompareHash(hash, []byte("wrong-secret")))

	// bcrypt is salted, two hashes of the same input differ
	hash2, err := GenerateHash([]byte("client-secret"))
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestRandomNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		n, err := randomNumber()
		require.NoError(t, err)
		assert.Len(t, n, 12)
		seen[n] = true
	}
	assert.Greater(t, len(seen), 1)
}
