package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
	Store   StoreConfig   `mapstructure:"store"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"` // Bind address (e.g., 0.0.0.0 for all interfaces)
	Port int    `mapstructure:"port"` // HTTP server port
}

// MQTTConfig represents broker connection and topic configuration
type MQTTConfig struct {
	Type     string `mapstructure:"type"`      // Broker type: mqtt (default), memory
	URL      string `mapstructure:"url"`       // Broker URL (e.g., tcp://localhost:1883)
	Username string `mapstructure:"username"`  // Optional authentication
	Password string `mapstructure:"password"`  // Optional authentication
	ClientID string `mapstructure:"client_id"` // Client ID prefix; a random suffix is appended

	SensorTopic        string `mapstructure:"sensor_topic"`         // Sensor reading wildcard (iot/sensor/#)
	StateTopic         string `mapstructure:"state_topic"`          // Device state echo wildcard (iot/control/+/state)
	ControlTopicPrefix string `mapstructure:"control_topic_prefix"` // Per-device control topic prefix (iot/control/)
	SensorDeviceID     string `mapstructure:"sensor_device_id"`     // Device ID attributed to sensor readings

	PublishTimeout time.Duration `mapstructure:"publish_timeout"` // Bounded wait on publish acknowledgement
}

// StoreConfig represents event store configuration
type StoreConfig struct {
	Driver   string `mapstructure:"driver"`   // Store driver: memory (default), mongo
	URI      string `mapstructure:"uri"`      // Connection URI for mongo
	Database string `mapstructure:"database"` // Database name for mongo
}

// CacheConfig represents the latest-sample cache configuration
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`  // Enable Redis latest-sample cache
	Addr     string        `mapstructure:"addr"`     // Redis address (host:port)
	Password string        `mapstructure:"password"` // Optional authentication
	DB       int           `mapstructure:"db"`       // Redis database number
	TTL      time.Duration `mapstructure:"ttl"`      // Expiry for cached latest samples
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt config: %w", err)
	}

	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	return nil
}

// Validate validates broker configuration
func (c *MQTTConfig) Validate() error {
	switch c.Type {
	case "", "mqtt", "memory":
	default:
		return fmt.Errorf("mqtt.type must be 'mqtt' or 'memory'")
	}

	if c.Type != "memory" && c.URL == "" {
		return fmt.Errorf("mqtt.url is required")
	}

	if c.SensorTopic == "" {
		return fmt.Errorf("mqtt.sensor_topic is required")
	}

	if c.StateTopic == "" {
		return fmt.Errorf("mqtt.state_topic is required")
	}

	if !strings.HasSuffix(c.ControlTopicPrefix, "/") {
		return fmt.Errorf("mqtt.control_topic_prefix must end with '/'")
	}

	if c.PublishTimeout <= 0 {
		return fmt.Errorf("mqtt.publish_timeout must be positive")
	}

	return nil
}

// Validate validates store configuration
func (c *StoreConfig) Validate() error {
	switch c.Driver {
	case "", "memory":
	case "mongo":
		if c.URI == "" {
			return fmt.Errorf("store.uri is required for mongo driver")
		}
		if c.Database == "" {
			return fmt.Errorf("store.database is required for mongo driver")
		}
	default:
		return fmt.Errorf("store.driver must be 'memory' or 'mongo'")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
