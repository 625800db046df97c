package lakesdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/token", r.URL.Path)

		var req TokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Key != "good-key" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(&APIError{Code: CodeBadCredentials, Message: "bad key"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&TokenResponse{
			AccessToken: "tok-123",
			TokenType:   "Bearer",
			ExpiresIn:   3600,
		})
	}))
	defer srv.Close()

	token, err := ExchangeKey(context.Background(), srv.URL, &TokenRequest{
		Account: "tidelake-prod",
		Key:     "good-key",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)

	_, err = ExchangeKey(context.Background(), srv.URL, &TokenRequest{
		Account: "tidelake-prod",
		Key:     "bad-key",
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeBadCredentials))
}

func TestExchangeKeyValidation(t *testing.T) {
	_, err := ExchangeKey(context.Background(), "nope", &TokenRequest{Account: "a", Key: "k"})
	assert.ErrorIs(t, err, ErrInvalidEndpoint)

	_, err = ExchangeKey(context.Background(), "http://localhost:9999", &TokenRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestParseClaimsUnverified(t *testing.T) {
	exp := time.Now().Add(90 * time.Minute).Truncate(time.Second)
	claims := &TokenClaims{
		Account: "tidelake-prod",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "jane",
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	got, err := ParseClaimsUnverified(signed)
	require.NoError(t, err)
	assert.Equal(t, "jane", got.Subject)
	assert.Equal(t, "tidelake-prod", got.Account)
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, got.ExpiresAt.Time.Equal(exp), "want %s, got %s", exp, got.ExpiresAt.Time)

	_, err = ParseClaimsUnverified("not-a-token")
	assert.Error(t, err)
}
