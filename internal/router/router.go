package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rusdhi-de/clinic-api/internal/handler"
	appointmentHandler "github.com/rusdhi-de/clinic-api/internal/handler/appointment"
	authHandler "github.com/rusdhi-de/clinic-api/internal/handler/auth"
	dashboardHandler "github.com/rusdhi-de/clinic-api/internal/handler/dashboard"
	doctorHandler "github.com/rusdhi-de/clinic-api/internal/handler/doctor"
	prescriptionHandler "github.com/rusdhi-de/clinic-api/internal/handler/prescription"
	"github.com/rusdhi-de/clinic-api/internal/middleware"
)

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	CORSConfig     middleware.CORSConfig
	MetricsPrefix  string
}

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	authH         *authHandler.Handler
	doctorH       *doctorHandler.Handler
	appointmentH  *appointmentHandler.Handler
	dashboardH    *dashboardHandler.Handler
	prescriptionH *prescriptionHandler.Handler
	h             *handler.Handler
	metrics       *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH *authHandler.Handler,
	doctorH *doctorHandler.Handler,
	appointmentH *appointmentHandler.Handler,
	dashboardH *dashboardHandler.Handler,
	prescriptionH *prescriptionHandler.Handler,
	h *handler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	r := &Router{
		engine:        engine,
		auth:          auth,
		authH:         authH,
		doctorH:       doctorH,
		appointmentH:  appointmentH,
		dashboardH:    dashboardH,
		prescriptionH: prescriptionH,
		h:             h,
		metrics:       initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   config.RateLimitRPS,
		Burst: config.RateLimitBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	root := r.engine.Group("")

	// Public routes
	root.GET("/", r.h.Home)
	r.setupHealthCheck(root)
	r.authH.RegisterRoutes(root)

	// Any authenticated principal
	authed := root.Group("")
	authed.Use(r.auth.Authenticate())
	r.authH.RegisterProtectedRoutes(authed)
	r.doctorH.RegisterRoutes(authed)

	// Patient-only routes
	patients := authed.Group("")
	patients.Use(r.auth.RequirePatient())
	r.appointmentH.RegisterPatientRoutes(patients)
	r.dashboardH.RegisterRoutes(patients)

	// Admin-only routes
	admins := authed.Group("")
	admins.Use(r.auth.RequireAdmin())
	r.appointmentH.RegisterAdminRoutes(admins)
	r.prescriptionH.RegisterAdminRoutes(admins)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
	}
	rg.GET("/metrics", r.h.MetricsHandler)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	m := &routerMetrics{
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
	}
	prometheus.MustRegister(m.requestDuration, m.requestTotal)
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
