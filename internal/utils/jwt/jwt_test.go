package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestGenerateAndVerify(t *testing.T) {
	id := uuid.New()

	token, err := GenerateAccessToken(id, "alice", secret, time.Hour)
	require.NoError(t, err)

	claims, err := VerifyToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestVerifyToken_Failures(t *testing.T) {
	id := uuid.New()

	expired, err := GenerateAccessToken(id, "alice", secret, -time.Minute)
	require.NoError(t, err)
	_, err = VerifyToken(expired, secret)
	assert.ErrorIs(t, err, ErrExpiredToken)

	valid, err := GenerateAccessToken(id, "alice", secret, time.Hour)
	require.NoError(t, err)
	_, err = VerifyToken(valid, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = VerifyToken("not-a-token", secret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned := gojwt.NewWithClaims(gojwt.SigningMethodNone, Claims{UserID: id, Username: "alice"})
	raw, err := unsigned.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = VerifyToken(raw, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
