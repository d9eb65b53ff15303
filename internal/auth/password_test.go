package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher("", 0)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmBcrypt, h.Algorithm())

	_, err = NewPasswordHasher("md5", 10)
	assert.Error(t, err)

	_, err = NewPasswordHasher(AlgorithmBcrypt, 99)
	assert.Error(t, err)
}

func TestHasher_Bcrypt(t *testing.T) {
	h, err := NewPasswordHasher(AlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)

	hashed, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hashed, "$2"))
	assert.NotContains(t, hashed, "pw1")

	again, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, hashed, again, "salt must differ per hash")

	assert.True(t, h.Verify("pw1", hashed))
	assert.False(t, h.Verify("pw2", hashed))
	assert.False(t, h.Verify("pw1", ""))
	assert.False(t, h.Verify("pw1", "invalid-format"))
}

func TestHasher_Argon2VerifiesBothEncodings(t *testing.T) {
	legacy, err := NewPasswordHasher(AlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	bcryptHash, err := legacy.Hash("pw1")
	require.NoError(t, err)

	h, err := NewPasswordHasher(AlgorithmArgon2id, 0)
	require.NoError(t, err)

	argonHash, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(argonHash, "$argon2id$"))

	assert.True(t, h.Verify("pw1", argonHash))
	assert.False(t, h.Verify("pw2", argonHash))
	assert.True(t, h.Verify("pw1", bcryptHash))
	assert.True(t, legacy.Verify("pw1", argonHash))
}

func TestHasher_RejectsPasswordsOverByteLimit(t *testing.T) {
	atLimit := strings.Repeat("é", 36) // 72 bytes
	overLimit := atLimit + "a"         // 73 bytes, 37 runes

	for _, algorithm := range []string{AlgorithmBcrypt, AlgorithmArgon2id} {
		t.Run(algorithm, func(t *testing.T) {
			h, err := NewPasswordHasher(algorithm, bcrypt.MinCost)
			require.NoError(t, err)

			hashed, err := h.Hash(atLimit)
			require.NoError(t, err)
			assert.True(t, h.Verify(atLimit, hashed))

			_, err = h.Hash(overLimit)
			assert.ErrorIs(t, err, ErrPasswordTooLong)
		})
	}
}
