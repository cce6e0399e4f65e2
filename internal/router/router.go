package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-api/internal/guard"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// Handlers groups everything the router mounts
type Handlers struct {
	Health       Handler
	Auth         Handler
	Queue        Handler
	Account      Handler
	Appointment  AppointmentHandler
	Patient      Handler
	Medicine     Handler
	Prescription Handler
}

// AppointmentHandler serves the shared views plus front desk booking
type AppointmentHandler interface {
	Handler
	RegisterBookingRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	CORSConfig       middleware.CORSConfig
	RequestTimeout   time.Duration
	MetricsPrefix    string
	// Registerer receives the HTTP metrics; nil leaves them unregistered
	Registerer prometheus.Registerer
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, config RouterConfig) *Router {
	engine := gin.New()

	metrics := initRouterMetrics(config.MetricsPrefix)
	if config.Registerer != nil {
		config.Registerer.MustRegister(metrics.requestDuration, metrics.requestTotal, metrics.errorTotal)
	}

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		metrics:  metrics,
	}

	timeout := config.RequestTimeout
	if timeout == 0 {
		timeout = middleware.DefaultTimeoutConfig().Duration
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: timeout}),
		middleware.SecurityHeaders(),
		middleware.Compress(middleware.DefaultCompressConfig()),
		middleware.SizeLimit(middleware.DefaultSizeLimitConfig()),
		middleware.CORS(config.CORSConfig),
	)

	if config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(middleware.Version(middleware.DefaultVersionConfig()))

	r.handlers.Health.RegisterRoutes(api)

	// Public routes
	r.handlers.Auth.RegisterRoutes(api)

	// The token display polls, so let it reuse a response for a few seconds
	display := api.Group("", middleware.Cache(middleware.CacheConfig{MaxAge: 5 * time.Second}))
	r.handlers.Queue.RegisterRoutes(display)

	doctor := api.Group("/doctor", r.auth.Authenticate(), r.auth.RequireRole(model.RoleDoctor))
	r.setupDoctorRoutes(doctor)

	receptionist := api.Group("/receptionist", r.auth.Authenticate(), r.auth.RequireRole(model.RoleReceptionist))
	r.setupReceptionistRoutes(receptionist)

	r.engine.NoRoute(func(c *gin.Context) {
		httputil.RespondWithErrorRedirect(c, http.StatusNotFound, "no route for "+c.Request.URL.Path, guard.HomePath)
	})
}

func (r *Router) setupDoctorRoutes(rg *gin.RouterGroup) {
	r.handlers.Account.RegisterRoutes(rg)
	r.handlers.Appointment.RegisterRoutes(rg)
	r.handlers.Patient.RegisterRoutes(rg)
	r.handlers.Medicine.RegisterRoutes(rg)
	r.handlers.Prescription.RegisterRoutes(rg)
}

func (r *Router) setupReceptionistRoutes(rg *gin.RouterGroup) {
	r.handlers.Account.RegisterRoutes(rg)
	r.handlers.Appointment.RegisterRoutes(rg)
	r.handlers.Appointment.RegisterBookingRoutes(rg)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	if prefix == "" {
		prefix = "http"
	}
	return &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
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

		// Unmatched paths share one label so scanners cannot blow up cardinality
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := fmt.Sprintf("%d", c.Writer.Status())

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		switch {
		case c.Writer.Status() >= 500:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "server").Inc()
		case c.Writer.Status() >= 400:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "client").Inc()
		}
	}
}
