package lakesim

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "lakesim"

// Claims is what lakesim puts in access tokens. The subject is the
// admin principal; acct and store pin the token to one account.
type Claims struct {
	Account string `json:"acct"`
	Store   string `json:"store,omitempty"`
	jwt.RegisteredClaims
}

// AuthService mints and checks HS256 bearer tokens.
type AuthService struct {
	secret []byte
	ttl    time.Duration
}

func NewAuthService(secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (a *AuthService) TTL() time.Duration {
	return a.ttl
}

func (a *AuthService) IssueToken(acct *Account) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		Account: acct.Name,
		Store:   acct.StoreAccount,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   acct.Principal,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

func (a *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Account == "" || claims.Store == "" {
		return nil, errors.New("token missing account claims")
	}
	return claims, nil
}
