package lakesim

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	slogGin "github.com/samber/slog-gin"
)

func (s *Server) buildRouter() http.Handler {
	r := gin.New()

	httpLogger := slog.Default().WithGroup("http")
	r.Use(slogGin.NewWithConfig(httpLogger, slogGin.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
	}))
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.BestSpeed))
	r.Use(cors.Default())
	if s.cfg.EnableHSTS {
		r.Use(HSTS())
	}
	r.Use(RateLimiter(s.cfg.Rate))

	r.GET("/", s.handleIndex)
	r.GET("/healthz", s.handleHealth)
	r.POST("/auth/token", s.handleToken)

	v1 := r.Group("/api/v1")
	v1.Use(JWTAuth(s.auth))
	{
		v1.GET("/accounts/view", s.handleAccountView)

		v1.GET("/store/status", s.handleStoreStatus)
		v1.GET("/store/list", s.handleStoreList)
		v1.GET("/store/acl", s.handleGetAcl)
		v1.POST("/store/acl/remove", s.handleRemoveAcl)
		v1.POST("/store/mkdir", s.handleMkdir)
		v1.POST("/store/create", s.handleCreateFile)
	}

	r.NoRoute(func(c *gin.Context) {
		c.PureJSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.PureJSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	return r.Handler()
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
