package lakesdk

import "github.com/golang-jwt/jwt/v5"

type TokenRequest struct {
	Account string `json:"account"`
	Key     string `json:"key"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// TokenClaims mirrors the claims the service puts in access tokens.
type TokenClaims struct {
	Account string `json:"acct,omitempty"`
	jwt.RegisteredClaims
}
