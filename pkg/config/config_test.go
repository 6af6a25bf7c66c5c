package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "teleop_config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

func TestLoadConfig(t *testing.T) {
	configContent := `
logging:
  level: "debug"
  log_path: "/var/log/teleop"
server:
  http_port: 9090
gateway:
  command_address: "tcp://robot:5555"
  subscribe_address: "tcp://robot:5556"
  request_timeout_ms: 5000
queues:
  size: 20
  push_frequency_hz: 5
  timeout_unit_ms: 100
control:
  unit_speed: 0.3
  unit_degree: 25
safety:
  armor_sensitivity: 7
`
	configPath := writeConfig(t, configContent)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected logging level 'debug', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.LogPath != "/var/log/teleop" {
		t.Errorf("Expected log path '/var/log/teleop', got '%s'", cfg.Logging.LogPath)
	}
	if cfg.Server.HTTPPort != 9090 {
		t.Errorf("Expected http_port 9090, got %d", cfg.Server.HTTPPort)
	}
	if cfg.Gateway.CommandAddress != "tcp://robot:5555" {
		t.Errorf("Expected command_address 'tcp://robot:5555', got '%s'", cfg.Gateway.CommandAddress)
	}
	if cfg.Gateway.SubscribeAddress != "tcp://robot:5556" {
		t.Errorf("Expected subscribe_address 'tcp://robot:5556', got '%s'", cfg.Gateway.SubscribeAddress)
	}
	if cfg.Queues.Size != 20 {
		t.Errorf("Expected queue size 20, got %d", cfg.Queues.Size)
	}
	if cfg.Control.UnitSpeed != 0.3 {
		t.Errorf("Expected unit_speed 0.3, got %v", cfg.Control.UnitSpeed)
	}
	if cfg.Control.UnitDegree != 25 {
		t.Errorf("Expected unit_degree 25, got %v", cfg.Control.UnitDegree)
	}
	if cfg.Safety.ArmorSensitivity != 7 {
		t.Errorf("Expected armor_sensitivity 7, got %d", cfg.Safety.ArmorSensitivity)
	}

	// timeout_unit_ms / push_frequency_hz
	expected := 20 * time.Millisecond
	if cfg.QueueTimeout() != expected {
		t.Errorf("Expected queue timeout %v, got %v", expected, cfg.QueueTimeout())
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	configContent := `
gateway:
  command_address: "tcp://robot:5555"
  subscribe_address: "tcp://robot:5556"
`
	configPath := writeConfig(t, configContent)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default logging level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("Expected default http_port %d, got %d", DefaultHTTPPort, cfg.Server.HTTPPort)
	}
	if cfg.Queues.Size != DefaultQueueSize {
		t.Errorf("Expected default queue size %d, got %d", DefaultQueueSize, cfg.Queues.Size)
	}
	if cfg.Queues.PushFrequencyHz != DefaultPushFrequencyHz {
		t.Errorf("Expected default push frequency %d, got %d", DefaultPushFrequencyHz, cfg.Queues.PushFrequencyHz)
	}
	if cfg.Control.UnitSpeed != DefaultUnitSpeed {
		t.Errorf("Expected default unit_speed %v, got %v", DefaultUnitSpeed, cfg.Control.UnitSpeed)
	}
	if cfg.Control.UnitDegree != DefaultUnitDegree {
		t.Errorf("Expected default unit_degree %v, got %v", DefaultUnitDegree, cfg.Control.UnitDegree)
	}
	if cfg.Safety.ArmorSensitivity != DefaultArmorSensitivity {
		t.Errorf("Expected default armor_sensitivity %d, got %d", DefaultArmorSensitivity, cfg.Safety.ArmorSensitivity)
	}

	expected := 100 * time.Millisecond
	if cfg.QueueTimeout() != expected {
		t.Errorf("Expected default queue timeout %v, got %v", expected, cfg.QueueTimeout())
	}
}

func TestLoadConfigMissingRequired(t *testing.T) {
	// Missing gateway.command_address
	configContent := `
logging:
  level: "info"
gateway:
  subscribe_address: "tcp://robot:5556"
`
	configPath := writeConfig(t, configContent)

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatalf("Expected error for missing required field, got nil")
	}

	expectedSubstr := "missing required field in config: gateway.command_address"
	if !strings.Contains(err.Error(), expectedSubstr) {
		t.Errorf("Expected error to contain '%s', got: %v", expectedSubstr, err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Errorf("Expected error for missing config file, got nil")
	}
}
