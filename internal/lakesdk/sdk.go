// Package lakesdk is the HTTP client for the Tidelake service APIs.
package lakesdk

import (
	"fmt"
	"runtime"
	"time"

	"github.com/imroc/req/v3"

	"github.com/tidelake/lakeacl/internal/utils"
	"github.com/tidelake/lakeacl/internal/version"
)

const (
	HeaderLakeVersion  = "X-Lake-Version"
	HeaderLakeDeviceId = "X-Lake-Device-Id"
)

var UserAgent = fmt.Sprintf("lakeacl/%s (%s; %s)", version.Version, runtime.GOOS, runtime.GOARCH)

// Client talks to a Tidelake endpoint. All APIs share one underlying
// HTTP client, so a token set once applies everywhere.
type Client struct {
	Accounts *AccountsAPI
	Store    *StoreAPI

	baseURL string
	http    *req.Client
}

type Option func(*Client)

// WithToken sets the bearer token used for all API calls.
func WithToken(token string) Option {
	return func(c *Client) {
		c.SetToken(token)
	}
}

// WithDebug dumps requests and responses to stderr.
func WithDebug() Option {
	return func(c *Client) {
		c.http.EnableDumpAll()
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if err := utils.ValidateURL(baseURL); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}

	httpClient := req.C().
		SetBaseURL(baseURL).
		SetUserAgent(UserAgent).
		SetCommonHeader(HeaderLakeVersion, version.Version).
		SetCommonHeader(HeaderLakeDeviceId, utils.HWID).
		SetCommonRetryCount(3).
		SetCommonRetryFixedInterval(1 * time.Second).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	client := &Client{
		Accounts: newAccountsAPI(httpClient),
		Store:    newStoreAPI(httpClient),
		baseURL:  baseURL,
		http:     httpClient,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// BaseURL returns the endpoint this client was built for.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) SetToken(token string) {
	c.http.SetCommonBearerAuthToken(token)
}
