package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/barber-api/internal/middleware"
	"github.com/jwalitptl/barber-api/internal/service/tenant"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// PublicHandler mounts routes reachable without a token next to its guarded ones.
type PublicHandler interface {
	Handler
	RegisterPublicRoutes(*gin.RouterGroup)
}

// Handlers groups everything the API mounts.
type Handlers struct {
	Health      Handler
	Metrics     Handler
	Spots       Handler
	Barber      Handler
	Tenant      Handler
	Appointment Handler
	History     Handler
	Catalog     Handler
	Admin       Handler
	Report      PublicHandler
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	sessions *tenant.SessionStore
	handlers Handlers
	config   RouterConfig
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	RateLimit      rate.Limit
	RateBurst      int
	RateLimitIdle  time.Duration
	DisableLimiter bool
	CORSConfig     middleware.CORSConfig
	MaxBodySize    int64
	RequestTimeout time.Duration
	MetricsPrefix  string
	Registerer     prometheus.Registerer
}

func NewRouter(auth *middleware.AuthMiddleware, sessions *tenant.SessionStore, handlers Handlers, config RouterConfig) *Router {
	engine := gin.New()

	if config.MaxBodySize <= 0 {
		config.MaxBodySize = middleware.DefaultMaxBodySize
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 30 * time.Second
	}

	r := &Router{
		engine:   engine,
		auth:     auth,
		sessions: sessions,
		handlers: handlers,
		config:   config,
		metrics:  initRouterMetrics(config.Registerer, config.MetricsPrefix),
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.CORS(config.CORSConfig),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.Timeout(config.RequestTimeout),
	)

	return r
}

func (r *Router) Setup() {
	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(r.engine.Group(""))
	}
	if r.handlers.Metrics != nil {
		r.handlers.Metrics.RegisterRoutes(r.engine.Group(""))
	}

	api := r.engine.Group("/api/v1")
	api.Use(middleware.BodyLimit(r.config.MaxBodySize))

	r.setupPublicRoutes(api)

	authenticated := api.Group("")
	authenticated.Use(r.auth.Authenticate())
	r.setupAuthenticatedRoutes(authenticated)

	tenantScoped := api.Group("")
	tenantScoped.Use(r.auth.Authenticate(), middleware.Tenant(r.sessions))
	r.setupTenantRoutes(tenantScoped)

	admin := api.Group("/admin")
	admin.Use(r.auth.Authenticate(), r.auth.RequireSuperAdmin())
	r.setupAdminRoutes(admin)
}

func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	public := rg.Group("")
	if !r.config.DisableLimiter {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:    r.config.RateLimit,
			Burst:   r.config.RateBurst,
			IdleTTL: r.config.RateLimitIdle,
		})
		public.Use(limiter.RateLimit())
	}

	register(public, r.handlers.Spots)
	if r.handlers.Report != nil {
		r.handlers.Report.RegisterPublicRoutes(public)
	}
}

func (r *Router) setupAuthenticatedRoutes(rg *gin.RouterGroup) {
	register(rg, r.handlers.Barber)
}

func (r *Router) setupTenantRoutes(rg *gin.RouterGroup) {
	register(rg, r.handlers.Tenant)
	register(rg, r.handlers.Appointment)
	register(rg, r.handlers.History)
	register(rg, r.handlers.Catalog)
}

func (r *Router) setupAdminRoutes(rg *gin.RouterGroup) {
	register(rg, r.handlers.Admin)
	register(rg, r.handlers.Report)
}

func register(rg *gin.RouterGroup, h Handler) {
	if h != nil {
		h.RegisterRoutes(rg)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(reg prometheus.Registerer, prefix string) *routerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &routerMetrics{
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// Unmatched routes share one label value.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		code := c.Writer.Status()
		status := strconv.Itoa(code)

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		switch {
		case code >= 500:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "server").Inc()
		case code >= 400:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "client").Inc()
		}
	}
}
