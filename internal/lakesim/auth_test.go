package lakesim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAccount = &Account{
	Name:         "tidelake-dev",
	StoreAccount: "lakestore-dev",
	Principal:    "svc-acl-admin",
	AccessKey:    "dev-key",
}

func TestIssueAndValidateToken(t *testing.T) {
	auth := NewAuthService("secret", time.Hour)

	token, claims, err := auth.IssueToken(testAccount)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, claims.ID, "tokens carry a jti")

	parsed, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "tidelake-dev", parsed.Account)
	assert.Equal(t, "lakestore-dev", parsed.Store)
	assert.Equal(t, "svc-acl-admin", parsed.Subject)
	assert.Equal(t, tokenIssuer, parsed.Issuer)
}

func TestValidateTokenRejectsForgeries(t *testing.T) {
	auth := NewAuthService("secret", time.Hour)
	other := NewAuthService("other-secret", time.Hour)

	token, _, err := other.IssueToken(testAccount)
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.Error(t, err, "wrong signing secret")

	_, err = auth.ValidateToken("junk.junk.junk")
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	auth := NewAuthService("secret", -time.Minute)

	token, _, err := auth.IssueToken(testAccount)
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.Error(t, err)
}
