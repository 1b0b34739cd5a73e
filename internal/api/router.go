package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/printcraft/storefront/docs"
	"github.com/printcraft/storefront/internal/api/handler"
	"github.com/printcraft/storefront/internal/api/middleware"
	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

const (
	uploadTimeout   = 3 * time.Minute
	uploadBodyLimit = "100M"
	jsonBodyLimit   = "1M"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Logger zerolog.Logger
	// Verbose adds the underlying error to 500 responses.
	Verbose      bool
	ClientURL    string
	UploadDir    string
	SecureCookie bool

	Tokens ports.TokenVerifier
	Users  ports.UserRepository

	Auth       ports.AuthService
	Products   ports.ProductService
	Orders     ports.OrderService
	Accounts   ports.UserService
	Artworks   ports.ArtworkService
	Newsletter ports.NewsletterService
	Analytics  ports.AnalyticsService

	HealthChecks map[string]handler.DependencyCheck

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	// AuthRateLimit limits login, register and subscribe calls per client IP.
	AuthRateLimit rate.Limit
	AuthBurst     int
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	if d.AuthRateLimit == 0 {
		d.AuthRateLimit = rate.Every(6 * time.Second)
	}
	if d.AuthBurst == 0 {
		d.AuthBurst = 10
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger, d.Verbose)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{d.ClientURL},
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(echomiddleware.BodyLimitWithConfig(echomiddleware.BodyLimitConfig{
		Skipper: isMultipart,
		Limit:   jsonBodyLimit,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "storefront",
		Registerer: d.Registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.SecureCookie)
	productHandler := handler.NewProductHandler(d.Products)
	orderHandler := handler.NewOrderHandler(d.Orders)
	userHandler := handler.NewUserHandler(d.Accounts)
	artworkHandler := handler.NewArtworkHandler(d.Artworks)
	newsletterHandler := handler.NewNewsletterHandler(d.Newsletter)
	analyticsHandler := handler.NewAnalyticsHandler(d.Analytics)
	healthHandler := handler.NewHealthHandler(d.HealthChecks)

	auth := middleware.Auth(d.Tokens, d.Users)
	optionalAuth := middleware.OptionalAuth(d.Tokens, d.Users)
	admin := middleware.RBAC(domain.RoleAdmin)
	limited := rateLimiter(d.AuthRateLimit, d.AuthBurst)
	upload := []echo.MiddlewareFunc{
		echomiddleware.BodyLimit(uploadBodyLimit),
		echomiddleware.ContextTimeoutWithConfig(echomiddleware.ContextTimeoutConfig{
			Timeout:      uploadTimeout,
			ErrorHandler: uploadTimeoutError,
		}),
	}

	// --- Service routes (no auth required) ---
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Storefront API is running")
	})
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.Static("/uploads", d.UploadDir)

	v1 := e.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register, limited)
	authGroup.POST("/login", authHandler.Login, limited)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)

	products := v1.Group("/products")
	products.GET("", productHandler.List, optionalAuth)
	products.GET("/:id", productHandler.Get, optionalAuth)
	products.POST("", productHandler.Create, withUpload(upload, auth, admin)...)
	products.PUT("/:id", productHandler.Update, withUpload(upload, auth, admin)...)
	products.DELETE("/:id", productHandler.Delete, auth, admin)

	orders := v1.Group("/orders", auth)
	orders.POST("/payment", orderHandler.CreatePayment)
	orders.POST("", orderHandler.Checkout)
	orders.POST("/cod", orderHandler.CheckoutCOD)
	orders.GET("/mine", orderHandler.Mine)
	orders.GET("", orderHandler.List, admin)
	orders.GET("/:id", orderHandler.Get)
	orders.GET("/:id/receipt", orderHandler.Receipt)
	orders.PUT("/:id/status", orderHandler.UpdateStatus, admin)

	v1.GET("/analytics", analyticsHandler.Dashboard, auth, admin)

	artworks := v1.Group("/artworks", auth)
	artworks.GET("", artworkHandler.List)
	artworks.GET("/:id", artworkHandler.Get)
	artworks.POST("", artworkHandler.Create, upload...)
	artworks.DELETE("/:id", artworkHandler.Delete)

	users := v1.Group("/users", auth)
	users.GET("/me", userHandler.Me)
	users.PUT("/me", userHandler.UpdateMe)
	users.DELETE("/me", userHandler.DeleteMe)
	users.GET("", userHandler.List, admin)
	users.DELETE("", userHandler.DeleteMany, admin)
	users.GET("/:id", userHandler.Get, admin)
	users.PUT("/:id", userHandler.Update, admin)
	users.DELETE("/:id", userHandler.Delete, admin)

	newsletter := v1.Group("/newsletter")
	newsletter.POST("/subscribe", newsletterHandler.Subscribe, limited)
	newsletter.POST("/unsubscribe", newsletterHandler.Unsubscribe)
	newsletter.POST("/send", newsletterHandler.Send, auth, admin)
	newsletter.GET("/subscribers", newsletterHandler.Subscribers, auth, admin)

	return e
}

// withUpload puts the body limit and timeout in front of the access checks.
func withUpload(upload []echo.MiddlewareFunc, access ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(upload)+len(access))
	out = append(out, upload...)
	return append(out, access...)
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

func uploadTimeoutError(err error, c echo.Context) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return echo.NewHTTPError(http.StatusRequestTimeout, "upload timed out")
	}
	return err
}

func rateLimiter(limit rate.Limit, burst int) echo.MiddlewareFunc {
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      limit,
			Burst:     burst,
			ExpiresIn: 10 * time.Minute,
		}),
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, try again later")
		},
	})
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/metrics" || strings.HasPrefix(p, "/health")
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= http.StatusInternalServerError {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
