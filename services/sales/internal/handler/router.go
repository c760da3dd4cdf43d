package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"example.com/sales-console/pkg/metrics"
	"example.com/sales-console/services/sales/internal/middleware"
	"example.com/sales-console/services/sales/internal/service"
)

// ReadinessChecker — функция проверки готовности сервиса.
type ReadinessChecker func(ctx context.Context) error

// Router — конфигурация HTTP роутера Sales Service.
type Router struct {
	engine         *gin.Engine
	carts          service.CartService
	authMW         *middleware.AuthMiddleware
	rateLimitMW    *middleware.RateLimitMiddleware
	tracingMW      *middleware.TracingMiddleware
	readinessCheck ReadinessChecker
}

// RouterConfig — параметры для создания роутера.
type RouterConfig struct {
	Carts          service.CartService
	AuthMW         *middleware.AuthMiddleware
	RateLimitMW    *middleware.RateLimitMiddleware
	TracingMW      *middleware.TracingMiddleware
	ReadinessCheck ReadinessChecker // опциональная проверка готовности для /readyz
	Debug          bool             // Режим отладки Gin
}

// NewRouter создаёт и настраивает HTTP роутер.
func NewRouter(cfg RouterConfig) *Router {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	engine.Use(middleware.SecurityHeaders())

	// OpenTelemetry tracing — создаёт spans для Jaeger
	engine.Use(otelgin.Middleware("sales"))

	// Prometheus метрики — requests_total, request_duration_seconds
	engine.Use(metrics.GinMetricsMiddleware("sales"))

	r := &Router{
		engine:         engine,
		carts:          cfg.Carts,
		authMW:         cfg.AuthMW,
		rateLimitMW:    cfg.RateLimitMW,
		tracingMW:      cfg.TracingMW,
		readinessCheck: cfg.ReadinessCheck,
	}

	r.setupRoutes()
	return r
}

// setupRoutes настраивает все маршруты API.
func (r *Router) setupRoutes() {
	if r.tracingMW != nil {
		r.engine.Use(r.tracingMW.Handle())
	}

	// Health endpoints (без rate limiting и auth)
	r.engine.GET("/healthz", r.livenessCheck)
	r.engine.GET("/readyz", r.readinessCheckHandler)

	v1 := r.engine.Group("/api/v1")

	if r.rateLimitMW != nil {
		v1.Use(r.rateLimitMW.Handle())
	}
	if r.authMW != nil {
		v1.Use(r.authMW.Handle())
	}

	cartHandler := NewCartHandler(r.carts)

	// === Каталог ===
	v1.GET("/catalog", cartHandler.SearchCatalog)

	// === Сессии корзины ===
	sessions := v1.Group("/cart/sessions")
	{
		sessions.POST("", cartHandler.CreateSession)
		sessions.GET("/:id", cartHandler.GetCart)
		sessions.DELETE("/:id", cartHandler.CloseSession)

		// Позиции
		sessions.POST("/:id/lines", cartHandler.AddLine)
		sessions.POST("/:id/lines/sort", cartHandler.SortLines)
		sessions.PATCH("/:id/lines/:index/quantity", cartHandler.UpdateQuantity)
		sessions.PATCH("/:id/lines/:index/price", cartHandler.UpdateUnitPrice)
		sessions.DELETE("/:id/lines/:index", cartHandler.RemoveLine)

		// Параметры заказа
		sessions.PUT("/:id/price-tier", cartHandler.SetPriceTier)
		sessions.PUT("/:id/tax-exempt", cartHandler.SetTaxExempt)
		sessions.PUT("/:id/customer", cartHandler.SetCustomer)
		sessions.PUT("/:id/order-number", cartHandler.SetOrderNumber)
		sessions.PUT("/:id/notes", cartHandler.SetNotes)

		// Наложение исторических цен
		sessions.POST("/:id/overlay", cartHandler.ApplyOverlay)
		sessions.DELETE("/:id/overlay", cartHandler.RestoreOverlay)
		sessions.GET("/:id/overlay", cartHandler.GetOverlayStatus)

		// Аналитика и отправка
		sessions.GET("/:id/totals", cartHandler.GetTotals)
		sessions.GET("/:id/profit", cartHandler.GetProfit)
		sessions.GET("/:id/balance", cartHandler.GetBalance)
		sessions.POST("/:id/submit", cartHandler.Submit)
	}
}

// Engine возвращает Gin engine для запуска сервера.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// livenessCheck — liveness probe для Kubernetes.
func (r *Router) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// readinessCheckHandler — readiness probe для Kubernetes.
func (r *Router) readinessCheckHandler(c *gin.Context) {
	if r.readinessCheck == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := r.readinessCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
