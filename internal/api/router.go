package api

import (
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/marketly/storefront/internal/api/docs"
	"github.com/marketly/storefront/internal/api/handler"
	"github.com/marketly/storefront/internal/api/middleware"
	"github.com/marketly/storefront/internal/core/cart"
	"github.com/marketly/storefront/internal/core/domain"
	"github.com/marketly/storefront/internal/core/service"
	"github.com/marketly/storefront/internal/core/session"
)

// Dependencies is everything the router wires into handlers.
type Dependencies struct {
	Backend  string
	Sessions *session.Manager
	Cart     *cart.Cart
	Products cart.ProductGetter
	Catalog  *service.CatalogService
	Checkout *service.CheckoutService
	Orders   *service.OrderService
	// Checks are the readiness probes, keyed by dependency name.
	Checks map[string]handler.Check

	// Registerer and Gatherer back the HTTP metrics and /metrics. Nil means
	// the Prometheus defaults.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	reg, gath := deps.Registerer, deps.Gatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if gath == nil {
		gath = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "storefront_http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || strings.HasPrefix(p, "/swagger")
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Sessions)
	productHandler := handler.NewProductHandler(deps.Catalog)
	cartHandler := handler.NewCartHandler(deps.Cart, deps.Products)
	orderHandler := handler.NewOrderHandler(deps.Checkout, deps.Orders)
	healthHandler := handler.NewHealthHandler(deps.Backend)
	readyHandler := handler.NewReadinessHandler(deps.Checks)

	signedIn := middleware.Guard(deps.Sessions)
	sellerOnly := middleware.Guard(deps.Sessions, domain.RoleSeller)

	// --- Health probes and tooling (no session required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readyHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gath}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth ---
	e.GET("/auth/login", authHandler.LoginPrompt)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/session", authHandler.Session)
	e.PUT("/account/role", authHandler.UpdateRole, signedIn)

	// --- Catalog and cart ---
	e.GET("/products", productHandler.List)
	e.GET("/products/:id", productHandler.Get)

	e.GET("/cart", cartHandler.Get)
	e.DELETE("/cart", cartHandler.Clear)
	e.POST("/cart/items", cartHandler.Add)
	e.PATCH("/cart/items/:product_id", cartHandler.SetQuantity)
	e.DELETE("/cart/items/:product_id", cartHandler.Remove)

	// --- Orders ---
	e.POST("/checkout", orderHandler.Checkout, signedIn)
	e.GET("/orders", orderHandler.Mine, signedIn)

	// --- Seller area ---
	seller := e.Group("/seller", sellerOnly)
	seller.GET("/products", productHandler.Mine)
	seller.POST("/products", productHandler.Create)
	seller.PATCH("/products/:id", productHandler.Update)
	seller.DELETE("/products/:id", productHandler.Delete)
	seller.GET("/orders", orderHandler.Seller)
	seller.PATCH("/orders/:id/status", orderHandler.ChangeStatus)
	seller.POST("/files", productHandler.Upload)
	seller.DELETE("/files/:ref", productHandler.DeleteFile)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency.Round(time.Microsecond)).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
