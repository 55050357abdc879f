package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ecoclick-api/internal/app"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "EcoClick API"

// Options configures NewRouter.
type Options struct {
	// BasePath prefixes every API route. Empty mounts them at the root.
	BasePath string
	// CORSOrigins limits cross-origin callers. Empty allows any origin.
	CORSOrigins []string
	// StaticDir, when set, is served under /static.
	StaticDir string
	// Registry receives the HTTP metrics and backs /metrics. A fresh one is used when nil.
	Registry *prometheus.Registry
}

// NewRouter builds the gin engine with middleware, health, metrics and API routes.
func NewRouter(service *app.Service, logger *slog.Logger, opts Options) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))
	r.Use(NewMetrics(reg).middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "service": serviceName})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	if opts.StaticDir != "" {
		r.Static("/static", opts.StaticDir)
	}

	h := NewHandler(service, logger)
	h.register(r.Group(normalizeBasePath(opts.BasePath)))

	r.NoRoute(func(c *gin.Context) {
		abortWith(c, http.StatusNotFound, "route not found")
	})
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}
