package router

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	handler "github.com/zdziszkee/swift-registry/internal/api/handlers"
	"github.com/zdziszkee/swift-registry/internal/api/middleware"
	"github.com/zdziszkee/swift-registry/internal/metrics"
)

// Options carries the ambient collaborators of the HTTP app. Every field is optional.
type Options struct {
	AppName  string
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// SetupRoutes configures all API routes
func SetupRoutes(swiftHandler *handler.SwiftHandler, opts Options) *fiber.App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	app := fiber.New(fiber.Config{
		AppName: opts.AppName,
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal server error"

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			}

			return c.Status(code).JSON(fiber.Map{
				"message": msg,
			})
		},
	})

	// Add global middleware
	app.Use(middleware.RequestLogger(logger, opts.Metrics))
	app.Use(recover.New())

	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	// API versioning
	v1 := app.Group("/v1")

	// The country route must be registered before the optional code parameter.
	v1.Get("/swift-codes/country/:countryISO2code?", swiftHandler.GetByCountry)
	v1.Get("/swift-codes/:swiftCode?", swiftHandler.GetByCode)
	v1.Post("/swift-codes", swiftHandler.Create)
	v1.Delete("/swift-codes/:swiftCode?", swiftHandler.Delete)
	return app
}
