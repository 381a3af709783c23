package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Hour}

	tok, err := j.Issue("u1", "a@x.com", "member")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "member", claims.Role)
	assert.Equal(t, "test", claims.Issuer)
}

func TestParseWrongSecret(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Hour}
	tok, err := j.Issue("u1", "a@x.com", "member")
	require.NoError(t, err)

	other := &JWTer{Secret: []byte("another-secret"), Issuer: "test", TTL: time.Hour}
	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestParseExpired(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: -time.Minute}
	tok, err := j.Issue("u1", "a@x.com", "member")
	require.NoError(t, err)

	_, err = j.Parse(tok)
	assert.Error(t, err)
}

func TestNoSecret(t *testing.T) {
	j := &JWTer{Issuer: "test", TTL: time.Hour}

	_, err := j.Issue("u1", "a@x.com", "member")
	assert.ErrorIs(t, err, ErrNoSecret)

	_, err = j.Parse("whatever")
	assert.ErrorIs(t, err, ErrNoSecret)
}
