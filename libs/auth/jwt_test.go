package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBearer(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"BEARER  abc ", "abc"},
		{"Bearer", ""},
		{"Basic abc", ""},
		{"abc", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExtractBearer(tc.header), "header %q", tc.header)
	}
}

func TestParseJWT(t *testing.T) {
	signed := signToken(t, "test-user-1", testSecret, time.Now().Add(time.Hour))

	claims, err := ParseJWT(signed, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, "test-user-1", claims.Subject)
	assert.Equal(t, int64(1), claims.UserID)

	_, err = ParseJWT(signed, []byte("bad-secret"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseJWT(signToken(t, "", testSecret, time.Now().Add(time.Hour)), []byte(testSecret))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewToken(t *testing.T) {
	now := time.Now()
	user := &User{ID: 7, UserName: "test-user-7"}

	signed, err := NewToken(user, []byte(testSecret), time.Hour, now)
	require.NoError(t, err)
	claims, err := ParseJWT(signed, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, "test-user-7", claims.Subject)
	assert.Equal(t, int64(7), claims.UserID)
	require.NotNil(t, claims.ExpiresAt)

	signed, err = NewToken(user, []byte(testSecret), 0, now)
	require.NoError(t, err)
	claims, err = ParseJWT(signed, []byte(testSecret))
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)

	expired, err := NewToken(user, []byte(testSecret), time.Minute, now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = ParseJWT(expired, []byte(testSecret))
	assert.ErrorIs(t, err, ErrInvalidToken)
}
