package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sensorbridge/sensorbridge/internal/broker"
	"github.com/sensorbridge/sensorbridge/internal/cache"
	"github.com/sensorbridge/sensorbridge/internal/config"
	"github.com/sensorbridge/sensorbridge/internal/handlers"
	"github.com/sensorbridge/sensorbridge/internal/hub"
	"github.com/sensorbridge/sensorbridge/internal/logging"
	"github.com/sensorbridge/sensorbridge/internal/middleware"
	"github.com/sensorbridge/sensorbridge/internal/store"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, cfg config.Config,
	b broker.Broker, st store.Store, c *cache.SampleCache, h *hub.Hub,
) *handlers.Handler {
	handler := handlers.New(logger, cfg.MQTT, b, st, c, h)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger))

	app.Get("/api/health", handler.Health)

	relaxed := middleware.RelaxedRateLimiter()

	// Sensor data routes
	sensor := app.Group("/api/sensor", relaxed)
	sensor.Get("/data", handler.GetSensorData)
	sensor.Get("/data/latest", handler.GetLatestSensorData)
	sensor.Get("/data/device/:deviceId", handler.GetDeviceSeries)
	sensor.Get("/stats", handler.GetSensorStats)
	sensor.Delete("/clear", handler.ClearSensorData)

	// Device control routes, strict budget: these move hardware
	control := app.Group("/api/control", middleware.StrictRateLimiter())
	control.Post("/device", handler.IssueCommand)
	control.Get("/devices", handler.ListDevices)
	control.Get("/:deviceId/status", handler.GetDeviceStatus)
	control.Put("/:deviceId", handler.UpdateDevice)

	// Control history routes
	history := app.Group("/api/history", relaxed)
	history.Get("/control", handler.GetControlHistory)
	history.Get("/stats", handler.GetHistoryStats)
	history.Delete("/clear", handler.ClearControlHistory)

	// Live viewer stream
	app.Use("/ws", handlers.WSUpgrade)
	app.Get("/ws", handler.WS())

	// 404 handler
	app.Use(handler.NotFound)

	return handler
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, cfg config.Config, b broker.Broker,
	st store.Store, c *cache.SampleCache, h *hub.Hub,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "SensorBridge",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, cfg, b, st, c, h)

	return app
}
