package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"humangov/internal/records"
	"humangov/internal/services/health"
	"humangov/internal/shared/config"
	"humangov/internal/shared/metrics"
	"humangov/internal/shared/server/flash"
	"humangov/internal/shared/server/middleware"
	"humangov/internal/shared/server/respond"
	localstore "humangov/internal/shared/storage/object/local"
	"humangov/internal/web"
)

// RouterDeps is everything NewRouter needs from bootstrap.
type RouterDeps struct {
	Config  config.Config
	Records *records.Handler
	Health  *health.Service

	// LocalObjects serves links minted by the local object store. Nil on S3.
	LocalObjects gin.HandlerFunc
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.SetHTMLTemplate(web.Templates())

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		flash.Sessions(deps.Config.SecretKey, deps.Config.SecureCookies),
		stateLabel(deps.Config.USState),
	)
	r.NoRoute(func(c *gin.Context) {
		respond.NotFound(c, "Page not found.")
	})

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	r.GET("/health", func(c *gin.Context) {
		ok, failures := healthSvc.Status(c.Request.Context())
		if !ok {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "failures": failures})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())
	if deps.LocalObjects != nil {
		r.GET(localstore.RoutePrefix+"/*key", deps.LocalObjects)
	}
	if deps.Records != nil {
		deps.Records.RegisterRoutes(r)
	}

	return r
}

func stateLabel(label string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(respond.StateKey, label)
		c.Next()
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":5000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
