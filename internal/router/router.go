package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	appointmentHandler "github.com/praxisdesk/booking-api/internal/handler/appointment"
	authHandler "github.com/praxisdesk/booking-api/internal/handler/auth"
	availabilityHandler "github.com/praxisdesk/booking-api/internal/handler/availability"
	healthHandler "github.com/praxisdesk/booking-api/internal/handler/health"
	scheduleHandler "github.com/praxisdesk/booking-api/internal/handler/schedule"
	"github.com/praxisdesk/booking-api/internal/middleware"
	"github.com/praxisdesk/booking-api/internal/model"
	"github.com/praxisdesk/booking-api/pkg/metrics"
)

type Config struct {
	GlobalRate     rate.Limit
	GlobalBurst    int
	LoginLimit     int
	CancelLimit    int
	Window         time.Duration
	RequestTimeout time.Duration
	MetricsPrefix  string
}

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	availabilityH *availabilityHandler.Handler
	appointmentH  *appointmentHandler.Handler
	authH         *authHandler.Handler
	scheduleH     *scheduleHandler.Handler
	healthH       *healthHandler.Handler
	loginLimiter  *middleware.RateLimiter
	cancelLimiter *middleware.RateLimiter
	metrics       *metrics.Metrics
	routerMetrics *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func New(
	auth *middleware.AuthMiddleware,
	availabilityH *availabilityHandler.Handler,
	appointmentH *appointmentHandler.Handler,
	authH *authHandler.Handler,
	scheduleH *scheduleHandler.Handler,
	healthH *healthHandler.Handler,
	m *metrics.Metrics,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	r := &Router{
		engine:        engine,
		auth:          auth,
		availabilityH: availabilityH,
		appointmentH:  appointmentH,
		authH:         authH,
		scheduleH:     scheduleH,
		healthH:       healthH,
		loginLimiter:  middleware.NewRateLimiter(config.LoginLimit, config.Window),
		cancelLimiter: middleware.NewRateLimiter(config.CancelLimit, config.Window),
		metrics:       m,
		routerMetrics: initRouterMetrics(config.MetricsPrefix),
	}

	timeoutCfg := middleware.DefaultTimeoutConfig()
	if config.RequestTimeout > 0 {
		timeoutCfg.Duration = config.RequestTimeout
	}

	engine.Use(
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(middleware.DefaultCORSConfig()),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.SizeLimit(middleware.DefaultSizeLimitConfig()),
		middleware.Timeout(timeoutCfg),
		r.metricsMiddleware(),
	)

	globalLimiter := middleware.NewGlobalRateLimiter(middleware.GlobalRateLimiterConfig{
		Rate:  config.GlobalRate,
		Burst: config.GlobalBurst,
	})
	engine.Use(globalLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.healthH.RegisterRoutes(api)

	// Public surface
	public := api.Group("")
	public.Use(middleware.Cache(middleware.DefaultCacheConfig()))
	r.availabilityH.RegisterRoutes(public)
	r.appointmentH.RegisterPublicRoutes(public, r.cancelLimiter.Throttle("cancel", r.metrics))
	r.authH.RegisterRoutes(public, r.loginLimiter.Throttle("login", r.metrics))

	// Staff surface
	staff := api.Group("")
	staff.Use(r.auth.Authenticate())
	r.appointmentH.RegisterStaffRoutes(staff)

	// Schedule management is admin only.
	admin := staff.Group("")
	admin.Use(r.auth.RequireRole(model.RoleAdmin))
	r.scheduleH.RegisterRoutes(admin)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.routerMetrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.routerMetrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
