package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("password", FastParams)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$"))

	ok, err := Verify("password", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("wrong", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashUsesFreshSalt(t *testing.T) {
	a, err := Hash("password", FastParams)
	require.NoError(t, err)
	b, err := Hash("password", FastParams)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	for _, encoded := range []string{"", "plain", "$bcrypt$v=1$m=1,t=1,p=1$a$b", "$argon2id$v=19$m=x$a$b"} {
		_, err := Verify("password", encoded)
		assert.ErrorIs(t, err, ErrInvalidHash, encoded)
	}
}
