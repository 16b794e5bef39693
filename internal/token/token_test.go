package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret, "HS256", 24*time.Hour)
	require.NoError(t, err)
	return c
}

func TestNewCodec_RejectsNonHMAC(t *testing.T) {
	for _, alg := range []string{"RS256", "ES256", "none", "bogus"} {
		_, err := NewCodec(testSecret, alg, time.Hour)
		assert.Error(t, err, alg)
	}
}

func TestIssueDecode_RoundTrip(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now()

	raw, err := c.Issue("user-1", now)
	require.NoError(t, err)

	claims, err := c.Decode(raw, now)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, now.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestDecode_Expired(t *testing.T) {
	c := newTestCodec(t)
	t0 := time.Unix(1700000000, 0)

	raw, err := c.Issue("user-1", t0)
	require.NoError(t, err)

	// still alive just before expiry
	_, err = c.Decode(raw, t0.Add(24*time.Hour-time.Second))
	require.NoError(t, err)

	// dead at and after expiry
	_, err = c.Decode(raw, t0.Add(24*time.Hour))
	assert.ErrorIs(t, err, ErrExpired)
	_, err = c.Decode(raw, t0.Add(24*time.Hour+time.Second))
	assert.ErrorIs(t, err, ErrExpired)
}

func TestDecode_Tampered(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now()

	first, err := c.Issue("user-1", now)
	require.NoError(t, err)
	second, err := c.Issue("user-2", now)
	require.NoError(t, err)

	// payload from one token with the signature of another
	a := strings.Split(first, ".")
	b := strings.Split(second, ".")
	require.Len(t, a, 3)
	require.Len(t, b, 3)
	spliced := a[0] + "." + b[1] + "." + a[2]

	_, err = c.Decode(spliced, now)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestDecode_WrongSecret(t *testing.T) {
	c := newTestCodec(t)
	other, err := NewCodec("other-secret", "HS256", 24*time.Hour)
	require.NoError(t, err)

	now := time.Now()
	raw, err := other.Issue("user-1", now)
	require.NoError(t, err)

	_, err = c.Decode(raw, now)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestDecode_WrongAlgorithm(t *testing.T) {
	c := newTestCodec(t)
	hs512, err := NewCodec(testSecret, "HS512", 24*time.Hour)
	require.NoError(t, err)

	now := time.Now()
	raw, err := hs512.Issue("user-1", now)
	require.NoError(t, err)

	_, err = c.Decode(raw, now)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestDecode_Malformed(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now()

	for _, raw := range []string{"", "garbage", "a.b", "a.b.c.d", "!!.!!.!!"} {
		_, err := c.Decode(raw, now)
		assert.ErrorIs(t, err, ErrMalformed, raw)
	}
}

func TestDecode_MissingExpiry(t *testing.T) {
	c := newTestCodec(t)

	// signed correctly but without an exp claim
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "user-1"}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = c.Decode(raw, time.Now())
	assert.ErrorIs(t, err, ErrMalformed)
}
