package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-auth/internal/model"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	tok, err := issuer.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, err := issuer.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestVerifyExpiredToken(t *testing.T) {
	issuer := NewIssuer("test-secret", -time.Minute)

	tok, err := issuer.Issue(42)
	require.NoError(t, err)

	// The negative TTL puts exp in the past, so the token must already be
	// rejected even though the signature is valid.
	_, err = issuer.Verify(tok)
	assert.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewIssuer("right-secret", time.Hour)
	other := NewIssuer("wrong-secret", time.Hour)

	tok, err := issuer.Issue(42)
	require.NoError(t, err)

	_, err = other.Verify(tok)
	assert.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestVerifyMalformedToken(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := issuer.Verify(tok)
		assert.ErrorIs(t, err, model.ErrInvalidToken, "token %q", tok)
	}
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": float64(42),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Verify(tok)
	assert.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestVerifyRejectsMissingUserID(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	signed := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tok, err := signed.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = issuer.Verify(tok)
	assert.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestIssuerKeepsGivenTTL(t *testing.T) {
	issuer := NewIssuer("test-secret", -time.Minute)
	assert.Equal(t, -time.Minute, issuer.ttl)

	issuer = NewIssuer("test-secret", time.Hour)
	assert.Equal(t, time.Hour, issuer.ttl)
}

func TestExpiryDerivedFromTTL(t *testing.T) {
	issuer := NewIssuer("test-secret", -time.Minute)

	tok, err := issuer.Issue(42)
	require.NoError(t, err)

	parsed, err := jwt.Parse(tok, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.Error(t, err)
	require.NotNil(t, parsed)

	exp, expErr := parsed.Claims.GetExpirationTime()
	require.NoError(t, expErr)
	assert.True(t, exp.Before(time.Now()), "exp should be in the past for a negative ttl")
}
