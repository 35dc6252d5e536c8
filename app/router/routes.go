// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/amirphl/dynamic-pricing/app/dto"
	"github.com/amirphl/dynamic-pricing/app/handlers"
	"github.com/amirphl/dynamic-pricing/app/middleware"
	"github.com/amirphl/dynamic-pricing/docs"
	"github.com/amirphl/dynamic-pricing/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Handlers groups the HTTP handlers served by the router
type Handlers struct {
	Admin        handlers.AdminHandlerInterface
	Client       handlers.ClientHandlerInterface
	PricingModel handlers.PricingModelHandlerInterface
	Market       handlers.MarketHandlerInterface
	Quote        handlers.QuoteHandlerInterface
	Report       handlers.ReportHandlerInterface
	ROI          handlers.ROIHandlerInterface
}

// Options tunes the router per deployment
type Options struct {
	AllowOrigins    []string
	EnableDocs      bool
	RateLimit       int
	AuthRateLimit   int
	EnableAccessLog bool
	Version         string
	BodyLimit       int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ProxyHeader     string
	Compress        bool
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	handlers       Handlers
	authMiddleware *middleware.AuthMiddleware
	options        Options
	logger         *zap.Logger
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(h Handlers, authMiddleware *middleware.AuthMiddleware, options Options, log *zap.Logger) Router {
	if log == nil {
		log = zap.NewNop()
	}
	if options.RateLimit <= 0 {
		options.RateLimit = 2000
	}
	if options.AuthRateLimit <= 0 {
		options.AuthRateLimit = 20
	}
	if options.Version == "" {
		options.Version = "1.0.0"
	}
	if options.BodyLimit <= 0 {
		options.BodyLimit = 1 * 1024 * 1024
	}
	if options.ReadTimeout <= 0 {
		options.ReadTimeout = 10 * time.Second
	}
	if options.WriteTimeout <= 0 {
		options.WriteTimeout = 30 * time.Second
	}
	if options.IdleTimeout <= 0 {
		options.IdleTimeout = 60 * time.Second
	}

	r := &FiberRouter{
		handlers:       h,
		authMiddleware: authMiddleware,
		options:        options,
		logger:         log.Named("router"),
	}
	r.app = fiber.New(fiber.Config{
		AppName:      "Dynamic Pricing API",
		ServerHeader: "dynamic-pricing",
		ErrorHandler: r.errorHandler,
		BodyLimit:    options.BodyLimit,
		ReadTimeout:  options.ReadTimeout,
		WriteTimeout: options.WriteTimeout,
		IdleTimeout:  options.IdleTimeout,
		ProxyHeader:  options.ProxyHeader,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})
	return r
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	r.setupMiddleware()

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	if r.options.EnableDocs {
		api.Get("/swagger.json", r.serveSwaggerJSON)
		r.logger.Info("API documentation enabled")
	}

	api.Use(r.rateLimiter(r.options.RateLimit, func(c fiber.Ctx) bool {
		return c.Path() == "/api/v1/health"
	}))

	// Admin auth routes with stricter rate limiting
	auth := api.Group("/auth")
	auth.Use(r.rateLimiter(r.options.AuthRateLimit, nil))
	auth.Post("/login", r.handlers.Admin.Login)
	auth.Post("/refresh", r.handlers.Admin.Refresh)

	clients := api.Group("/clients")
	clients.Post("/", r.handlers.Client.CreateClient)
	clients.Get("/:uuid", r.handlers.Client.GetClient)

	models := api.Group("/pricing-models")
	models.Get("/", r.handlers.PricingModel.ListModels)
	models.Get("/:name", r.handlers.PricingModel.GetModel)

	api.Get("/market-conditions", r.handlers.Market.Current)

	quotes := api.Group("/quotes")
	quotes.Post("/", r.handlers.Quote.CreateQuote)
	quotes.Get("/", r.handlers.Quote.ListQuotes)
	quotes.Post("/preview", r.handlers.Quote.PreviewQuote)
	quotes.Get("/:uuid", r.handlers.Quote.GetQuote)
	quotes.Get("/:uuid/history", r.handlers.Quote.History)
	quotes.Patch("/:uuid/status", r.handlers.Quote.UpdateStatus)

	api.Post("/roi", r.handlers.ROI.Project)

	admin := api.Group("/admin", r.authMiddleware.AdminAuthenticate())
	admin.Put("/market-conditions", r.handlers.Market.Publish)
	admin.Post("/quotes/expire", r.handlers.Quote.ExpireDue)
	admin.Get("/reports/pricing", r.handlers.Report.PricingReport)
	admin.Get("/reports/pricing/export", r.handlers.Report.ExportQuotes)
	admin.Get("/reports/optimization", r.handlers.Report.OptimizationReport)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	r.logger.Info("Routes configured")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: generateRequestID,
	}))

	r.app.Use(middleware.Metrics())

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000,
		ContentSecurityPolicy:     "default-src 'none'; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginResourcePolicy: "same-site",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	if len(r.options.AllowOrigins) > 0 {
		r.app.Use(cors.New(cors.Config{
			AllowOrigins: r.options.AllowOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "HEAD", "OPTIONS"},
			AllowHeaders: []string{
				"Origin",
				"Content-Type",
				"Accept",
				"Authorization",
				"X-Request-ID",
			},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           utils.CORSMaxAge,
		}))
	}

	if r.options.Compress {
		r.app.Use(compress.New(compress.Config{
			Level: compress.LevelBestSpeed,
			Next: func(c fiber.Ctx) bool {
				// xlsx is already zip compressed
				return strings.HasSuffix(c.Path(), "/export")
			},
		}))
	}

	if r.options.EnableAccessLog {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/api/v1/health"
			},
		}))
	}

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			r.logger.Error("panic recovered",
				zap.String("request_id", requestid.FromContext(c)),
				zap.Any("error", e),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
		},
	}))
}

func (r *FiberRouter) rateLimiter(limit int, next func(c fiber.Ctx) bool) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error:   dto.ErrorDetail{Code: "RATE_LIMIT_EXCEEDED"},
			})
		},
		Next: next,
	})
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	r.logger.Info("Starting server", zap.String("address", address))
	return r.app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true})
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   r.options.Version,
			"service":   "dynamic-pricing-api",
		},
	})
}

// serveSwaggerJSON serves the registered OpenAPI document
func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to load Swagger documentation",
			Error:   dto.ErrorDetail{Code: "SWAGGER_LOAD_ERROR"},
		})
	}
	c.Set("Content-Type", "application/json")
	return c.SendString(doc)
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

// Global error handler
func (r *FiberRouter) errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An internal server error occurred"
	errorCode := "INTERNAL_ERROR"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			message = fe.Message
			errorCode = "REQUEST_ERROR"
		}
	}

	if code >= fiber.StatusInternalServerError {
		r.logger.Error("request failed", zap.Int("status", code), zap.String("path", c.Path()), zap.Error(err))
	}

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: errorCode,
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
