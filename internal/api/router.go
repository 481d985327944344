package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	jsoniter "github.com/json-iterator/go"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/facemood/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/facemood/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/facemood/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/facemood/internal/service"
	"github.com/saturnino-fabrica-de-software/facemood/internal/ws"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultBodyLimit leaves room for uploads larger than a backend accepts;
// those are downscaled before analysis.
const DefaultBodyLimit = 16 * 1024 * 1024

type Dependencies struct {
	Detection *service.DetectionService
	// Camera is nil when no capture source is configured.
	Camera      handler.CameraSource
	Hub         *ws.Hub
	ReadyChecks map[string]handler.ReadyCheck
}

type Options struct {
	APIKey    string
	RateLimit middleware.RateLimiterConfig
	BodyLimit int
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	opts        Options
	rateLimiter *middleware.RateLimiter
	cancelHub   context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies, opts Options) *Router {
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = DefaultBodyLimit
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "facemood API",
		BodyLimit:    opts.BodyLimit,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
		opts:   opts,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization,X-API-Key",
		ExposeHeaders: "X-Detection-ID,X-Request-ID",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints (no auth required)
	healthHandler := handler.NewHealthHandler(r.readyChecks())
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil || r.deps.Detection == nil {
		return
	}

	v1 := r.app.Group("/v1")

	if r.opts.APIKey != "" {
		v1.Use(middleware.APIKey(r.opts.APIKey))
	}

	r.rateLimiter = middleware.NewRateLimiter(r.opts.RateLimit)
	v1.Use(r.rateLimiter.Handler())

	detectionHandler := handler.NewDetectionHandler(r.deps.Detection, r.logger)
	v1.Post("/detections", detectionHandler.Create)
	v1.Get("/faces", detectionHandler.Faces)
	v1.Get("/faces/framed", detectionHandler.Framed)
	v1.Post("/faces/tap", detectionHandler.Tap)

	cameraHandler := handler.NewCameraHandler(r.deps.Camera, r.logger)
	v1.Get("/camera", cameraHandler.Status)
	v1.Post("/camera/start", cameraHandler.Start)
	v1.Post("/camera/stop", cameraHandler.Stop)

	if r.deps.Hub != nil {
		hubCtx, hubCancel := context.WithCancel(context.Background())
		r.cancelHub = hubCancel
		go r.deps.Hub.Run(hubCtx)

		v1.Get("/ws", ws.UpgradeMiddleware(), ws.Handler(r.deps.Hub))
	}
}

func (r *Router) readyChecks() map[string]handler.ReadyCheck {
	if r.deps == nil {
		return nil
	}
	return r.deps.ReadyChecks
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop WebSocket hub
	if r.cancelHub != nil {
		r.cancelHub()
	}

	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
