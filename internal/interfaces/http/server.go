package http

import (
	"errors"
	nethttp "net/http"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// HTTPMetrics registra peticiones y expone el endpoint de Prometheus.
type HTTPMetrics interface {
	RecordHTTPRequest(method, path string, status int, duration time.Duration)
	Handler() nethttp.Handler
}

// ServerConfig opciones del servidor. SwaggerFile vacío desactiva /docs; Metrics nil desactiva /metrics.
type ServerConfig struct {
	AppName     string
	SwaggerFile string
	Metrics     HTTPMetrics
}

// NewApp arma la aplicación Fiber con recover, /health, /metrics, /docs y las rutas de costeo.
func NewApp(cfg ServerConfig, deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	if cfg.Metrics != nil {
		app.Use(MetricsMiddleware(cfg.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.SwaggerFile != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.SwaggerFile,
			Path:     "docs",
			Title:    "Costeo de Inventario API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.AppName})
	})

	Router(app, deps)
	return app
}

// MetricsMiddleware registra método, ruta (patrón, no la URL real), estado y duración.
func MetricsMiddleware(m HTTPMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		path := c.Route().Path
		if path == "" || path == "/" {
			path = c.Path()
		}
		m.RecordHTTPRequest(c.Method(), path, status, time.Since(start))
		return err
	}
}
