package handlers

import (
	"time"

	"github.com/sensorbridge/sensorbridge/internal/broker"
	"github.com/sensorbridge/sensorbridge/internal/cache"
	"github.com/sensorbridge/sensorbridge/internal/config"
	"github.com/sensorbridge/sensorbridge/internal/hub"
	"github.com/sensorbridge/sensorbridge/internal/logging"
	"github.com/sensorbridge/sensorbridge/internal/services"
	"github.com/sensorbridge/sensorbridge/internal/store"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger    *logging.Logger
	hub       *hub.Hub
	startTime time.Time
	// Services
	sensorQuery  *services.SensorQueryService
	historyQuery *services.HistoryQueryService
	command      *services.CommandService
	devices      *services.DeviceService
	retention    *services.RetentionService
}

// New creates a new handler instance
func New(logger *logging.Logger, cfg config.MQTTConfig, b broker.Broker,
	st store.Store, c *cache.SampleCache, h *hub.Hub,
) *Handler {
	return &Handler{
		logger:       logger,
		hub:          h,
		startTime:    time.Now(),
		sensorQuery:  services.NewSensorQueryService(st, c, logger),
		historyQuery: services.NewHistoryQueryService(st, logger),
		command:      services.NewCommandService(cfg, b, st, logger),
		devices:      services.NewDeviceService(st, logger),
		retention:    services.NewRetentionService(st, logger),
	}
}
