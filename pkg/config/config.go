package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file leaves a field unset. The queue
// timeout derives from the original teleop cadence: one bounded receive per
// poll cycle, sized to the push frequency.
const (
	DefaultQueueSize        = 10
	DefaultPushFrequencyHz  = 1
	DefaultTimeoutUnitMs    = 100
	DefaultUnitSpeed        = 0.2
	DefaultUnitDegree       = 20.0
	DefaultArmorSensitivity = 10
	DefaultHTTPPort         = 8080
	DefaultRequestTimeoutMs = 10000
)

// Config holds the teleop controller configuration loaded at bootstrap.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	Gateway GatewayConfig `yaml:"gateway"`
	Queues  QueueConfig   `yaml:"queues"`
	Control ControlConfig `yaml:"control"`
	Safety  SafetyConfig  `yaml:"safety"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogPath string `yaml:"log_path,omitempty"`
}

// ServerConfig holds operator HTTP server settings.
type ServerConfig struct {
	HTTPPort int `yaml:"http_port"`
}

// GatewayConfig holds the ZeroMQ addresses of the robot gateway.
type GatewayConfig struct {
	CommandAddress   string `yaml:"command_address"`
	SubscribeAddress string `yaml:"subscribe_address"`
	RequestTimeoutMs int    `yaml:"request_timeout_ms"`
}

// QueueConfig sizes the telemetry/event/frame queues and the poll cadence.
type QueueConfig struct {
	Size            int `yaml:"size"`
	PushFrequencyHz int `yaml:"push_frequency_hz"`
	TimeoutUnitMs   int `yaml:"timeout_unit_ms"`
}

// ControlConfig holds the per-gear velocity increments.
type ControlConfig struct {
	UnitSpeed  float64 `yaml:"unit_speed"`
	UnitDegree float64 `yaml:"unit_degree"`
}

// SafetyConfig holds armor event settings.
type SafetyConfig struct {
	ArmorSensitivity int `yaml:"armor_sensitivity"`
}

// LoadConfig loads the controller configuration from the given YAML file,
// validates required fields and applies defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file '%s': %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file '%s': %w", path, err)
	}

	if cfg.Gateway.CommandAddress == "" {
		return nil, fmt.Errorf("missing required field in config: gateway.command_address")
	}
	if cfg.Gateway.SubscribeAddress == "" {
		return nil, fmt.Errorf("missing required field in config: gateway.subscribe_address")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = DefaultHTTPPort
	}
	if c.Gateway.RequestTimeoutMs == 0 {
		c.Gateway.RequestTimeoutMs = DefaultRequestTimeoutMs
	}
	if c.Queues.Size == 0 {
		c.Queues.Size = DefaultQueueSize
	}
	if c.Queues.PushFrequencyHz == 0 {
		c.Queues.PushFrequencyHz = DefaultPushFrequencyHz
	}
	if c.Queues.TimeoutUnitMs == 0 {
		c.Queues.TimeoutUnitMs = DefaultTimeoutUnitMs
	}
	if c.Control.UnitSpeed == 0 {
		c.Control.UnitSpeed = DefaultUnitSpeed
	}
	if c.Control.UnitDegree == 0 {
		c.Control.UnitDegree = DefaultUnitDegree
	}
	if c.Safety.ArmorSensitivity == 0 {
		c.Safety.ArmorSensitivity = DefaultArmorSensitivity
	}
}

// QueueTimeout returns the bounded-receive timeout for one poll:
// the timeout unit divided by the push frequency.
func (c *Config) QueueTimeout() time.Duration {
	return time.Duration(c.Queues.TimeoutUnitMs) * time.Millisecond / time.Duration(c.Queues.PushFrequencyHz)
}

// RequestTimeout returns the command transport timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Gateway.RequestTimeoutMs) * time.Millisecond
}
