package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestDecodeTokenForDisplay(t *testing.T) {
	iat := testStart.Unix()
	exp := testStart.Add(time.Hour).Unix()
	tok := signedTestToken(t, jwt.MapClaims{
		"event_id":   "evt-42",
		"event_name": " Board Game Night ",
		"iat":        iat,
		"exp":        exp,
	})

	got, err := DecodeTokenForDisplay(tok)
	require.NoError(t, err)
	require.Equal(t, "evt-42", got.EventID)
	require.Equal(t, "Board Game Night", got.EventName)
	require.NotNil(t, got.IssuedAt)
	require.Equal(t, iat, got.IssuedAt.Unix())
	require.NotNil(t, got.ExpiresAt)
	require.Equal(t, exp, got.ExpiresAt.Unix())
}

func TestDecodeTokenForDisplayIgnoresSignatureAndExpiry(t *testing.T) {
	tok := signedTestToken(t, jwt.MapClaims{
		"event_name": "Long Gone",
		"exp":        testStart.Add(-24 * time.Hour).Unix(),
	})
	// Tamper with the signature segment.
	tok = tok[:len(tok)-4] + "AAAA"

	got, err := DecodeTokenForDisplay(tok)
	require.NoError(t, err)
	require.Equal(t, "Long Gone", got.EventName)
	require.Nil(t, got.IssuedAt)
}

func TestDecodeTokenForDisplayErrors(t *testing.T) {
	_, err := DecodeTokenForDisplay("")
	require.ErrorIs(t, err, ErrEmptyToken)

	_, err = DecodeTokenForDisplay("not-a-jwt")
	require.ErrorContains(t, err, "decode token for display")
}
