package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	_ "mapcandy-api/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DefaultPrefix is used when RouterConfig.Prefix is empty.
const DefaultPrefix = "/v1"

// RouterConfig holds the transport settings of the router.
type RouterConfig struct {
	// Prefix is the path under which the dispatcher is mounted, e.g. "/v1".
	Prefix         string
	RequestTimeout time.Duration
}

// NewRouter builds the gin engine: health probes, API docs and the dispatcher
// mounted under cfg.Prefix for every method.
func NewRouter(cfg RouterConfig, d *Dispatcher, db Pinger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(), CORS())
	if cfg.RequestTimeout > 0 {
		r.Use(Timeout(cfg.RequestTimeout))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, ErrorBody{Error: "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// A catch-all at the root would collide with the probes above.
	prefix := "/" + strings.Trim(cfg.Prefix, "/")
	if prefix == "/" {
		prefix = DefaultPrefix
	}
	r.Any(prefix+"/*"+PathParam, d.Handle)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorBody{Error: "No endpoint: " + c.Request.URL.Path})
	})

	return r
}
