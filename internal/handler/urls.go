package handlers

import (
	"net/http"

	"NeighborWatch/internal/models"
	"NeighborWatch/pkg/config"
	"NeighborWatch/pkg/errors"
	"NeighborWatch/pkg/metrics"
	"NeighborWatch/pkg/middleware"
	"NeighborWatch/pkg/response"
	stores "NeighborWatch/pkg/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	cfg     *config.Config
	conns   *models.Provider
	store   stores.Store
	metrics *metrics.Metrics
	log     *zap.Logger
	limiter *middleware.RateLimiter
}

// Deps carries everything the handlers need; Metrics, Logger and Limiter
// are optional.
type Deps struct {
	Config  *config.Config
	Conns   *models.Provider
	Store   stores.Store
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	Limiter *middleware.RateLimiter
}

func NewHandlers(d Deps) *Handlers {
	l := d.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return &Handlers{
		cfg:     d.Config,
		conns:   d.Conns,
		store:   d.Store,
		metrics: d.Metrics,
		log:     l,
		limiter: d.Limiter,
	}
}

// NewEngine builds a gin engine with the middleware chain and every route.
func (h *Handlers) NewEngine() *gin.Engine {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.MaxMultipartMemory = h.cfg.MaxUploadSize
	h.Register(engine)
	return engine
}

func (h *Handlers) Register(engine *gin.Engine) {
	engine.Use(
		middleware.RequestID(),
		middleware.AccessLog(h.log),
		middleware.Recovery(h.log),
		middleware.CORS(h.cfg.AllowedOrigins),
	)
	if h.metrics != nil {
		engine.Use(metrics.MonitorMiddleware(h.metrics))
		if h.cfg.MetricsPath != "" {
			engine.GET(h.cfg.MetricsPath, gin.WrapH(h.metrics.Handler()))
		}
	}
	if h.limiter != nil {
		if h.metrics != nil {
			h.limiter.WithObserver(h.metrics)
		}
		engine.Use(h.limiter.Middleware())
	}

	engine.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, "Not Found")
	})
	engine.NoMethod(func(c *gin.Context) {
		response.Fail(c, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	h.registerSystemRoutes(engine)
	h.registerUserRoutes(engine)
	h.registerAlertRoutes(engine)
}

func (h *Handlers) registerSystemRoutes(r gin.IRoutes) {
	r.GET("/", h.handleRoot)

	r.GET("/healthz", h.HealthCheck)
}

// User Module
func (h *Handlers) registerUserRoutes(r gin.IRoutes) {
	r.POST("/login/", h.handleLogin)

	r.GET("/users/", h.handleListUsers)

	r.POST("/users/", h.handleCreateUser)

	r.GET("/users/:id", h.handleGetUser)
}

// Alert Module
func (h *Handlers) registerAlertRoutes(r gin.IRoutes) {
	r.POST("/alerts/", h.handleCreateAlert)

	r.GET("/groups/:groupId/alerts/", h.handleGroupAlerts)

	r.GET("/uploads/*filename", h.handleUpload)
}

// fail writes err as a JSON detail and logs server-side failures.
func (h *Handlers) fail(c *gin.Context, err error) {
	if code := errors.GetCode(err); code == 0 || code >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(errors.Cause(err)),
			zap.String("stack", errors.GetStack(err)))
	}
	response.Error(c, err)
}

func (h *Handlers) event(name string) {
	if h.metrics != nil {
		h.metrics.IncEvent(name)
	}
}
