package lakesim

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
)

const (
	bearerPrefix = "Bearer "
	authHeader   = "Authorization"

	ctxAccount = "account"
	ctxStore   = "store"
)

var rateLimitStore = memory.NewStore()

// JWTAuth rejects requests without a valid bearer token and stashes
// the token's account scope on the gin context.
func JWTAuth(auth *AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(authHeader)
		if header == "" || !strings.HasPrefix(header, bearerPrefix) {
			abortError(c, http.StatusUnauthorized, CodeInvalidToken, "bearer token required")
			return
		}

		claims, err := auth.ValidateToken(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			abortError(c, http.StatusUnauthorized, CodeInvalidToken, err.Error())
			return
		}

		c.Set(ctxAccount, claims.Account)
		c.Set(ctxStore, claims.Store)
		c.Next()
	}
}

// RateLimiter emulates the remote service's request throttling.
// Rates use the limiter format, e.g. "600-M".
func RateLimiter(formattedRate string) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(formattedRate)
	if err != nil {
		panic(err)
	}
	instance := limiter.New(rateLimitStore, rate)
	return mgin.NewMiddleware(
		instance,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			c.PureJSON(http.StatusTooManyRequests, APIError{
				Code:    CodeRateLimited,
				Message: "rate limit exceeded",
			})
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			c.PureJSON(http.StatusInternalServerError, APIError{
				Code:    CodeInternalError,
				Message: err.Error(),
			})
		}),
	)
}

func HSTS() gin.HandlerFunc {
	return secure.New(secure.Config{
		SSLRedirect:          true,
		STSSeconds:           315360000,
		STSIncludeSubdomains: true,
		STSPreload:           true,
		FrameDeny:            true,
		ContentTypeNosniff:   true,
		BrowserXssFilter:     true,
		IENoOpen:             true,
		SSLProxyHeaders:      map[string]string{"X-Forwarded-Proto": "https"},
	})
}

func abortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, APIError{Code: code, Message: message})
}
