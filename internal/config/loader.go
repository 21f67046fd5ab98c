package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/sensorbridge")
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides
	v.SetEnvPrefix("SENSORBRIDGE")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)

	// Broker defaults
	v.SetDefault("mqtt.type", "mqtt")
	v.SetDefault("mqtt.url", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "sensorbridge")
	v.SetDefault("mqtt.sensor_topic", "iot/sensor/#")
	v.SetDefault("mqtt.state_topic", "iot/control/+/state")
	v.SetDefault("mqtt.control_topic_prefix", "iot/control/")
	v.SetDefault("mqtt.sensor_device_id", "esp8266_001")
	v.SetDefault("mqtt.publish_timeout", "5s")

	// Store defaults
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.database", "sensorbridge")

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.ttl", "24h")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		MQTT: MQTTConfig{
			Type:               "mqtt",
			URL:                "tcp://localhost:1883",
			ClientID:           "sensorbridge",
			SensorTopic:        "iot/sensor/#",
			StateTopic:         "iot/control/+/state",
			ControlTopicPrefix: "iot/control/",
			SensorDeviceID:     "esp8266_001",
			PublishTimeout:     5 * time.Second,
		},
		Store: StoreConfig{
			Driver:   "memory",
			Database: "sensorbridge",
		},
		Cache: CacheConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			TTL:     24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
