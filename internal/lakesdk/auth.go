package lakesdk

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/imroc/req/v3"

	"github.com/tidelake/lakeacl/internal/utils"
)

const (
	authTokenEndpoint = "/auth/token"
	healthEndpoint    = "/healthz"
)

// Ping checks that a lake service is answering at serverURL. Used by
// login before asking for credentials.
func Ping(ctx context.Context, serverURL string) error {
	if err := utils.ValidateURL(serverURL); err != nil {
		return ErrInvalidEndpoint
	}

	client := req.C().
		SetBaseURL(serverURL).
		SetUserAgent(UserAgent)

	res, err := client.R().
		SetContext(ctx).
		Get(healthEndpoint)
	return handleAPIError(res, err, "ping")
}

// ExchangeKey trades an account key for a bearer token. It builds its
// own client because login happens before a Client exists.
func ExchangeKey(ctx context.Context, serverURL string, request *TokenRequest) (*TokenResponse, error) {
	if err := utils.ValidateURL(serverURL); err != nil {
		return nil, ErrInvalidEndpoint
	}
	if request.Account == "" || request.Key == "" {
		return nil, ErrInvalidRequest
	}

	client := req.C().
		SetBaseURL(serverURL).
		SetUserAgent(UserAgent).
		SetCommonHeader(HeaderLakeDeviceId, utils.HWID).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	var token TokenResponse
	res, err := client.R().
		SetContext(ctx).
		SetBody(request).
		SetSuccessResult(&token).
		Post(authTokenEndpoint)
	if err := handleAPIError(res, err, "exchange key"); err != nil {
		return nil, err
	}
	return &token, nil
}

// ParseClaimsUnverified decodes token claims without checking the
// signature. Only the service holds the signing secret; the client
// just needs the subject and expiry.
func ParseClaimsUnverified(accessToken string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
