package store

import (
	"context"
	"fmt"

	"github.com/sensorbridge/sensorbridge/internal/config"
	"github.com/sensorbridge/sensorbridge/internal/logging"
)

// New creates a Store based on the configured driver
func New(ctx context.Context, cfg config.StoreConfig, logger *logging.Logger) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "mongo":
		return NewMongoStore(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}
