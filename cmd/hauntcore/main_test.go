package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("HAUNTCORE_CONFIG")
	defer os.Setenv("HAUNTCORE_CONFIG", originalEnv)

	os.Setenv("HAUNTCORE_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDatabasePath verifies run fails when database path is invalid.
func TestRun_MissingDatabasePath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
site:
  id: test-site

database:
  path: ""
  wal_mode: true
  busy_timeout: 5

mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883
    client_id: "test-client"
    tls: false
  qos: 1
  topics:
    person: "frigate/entrance/person"
    portal_state: "portal/state"

portal:
  host: "127.0.0.1"
  timeout: 1

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: 8080
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("HAUNTCORE_CONFIG")
	defer os.Setenv("HAUNTCORE_CONFIG", originalEnv)
	os.Setenv("HAUNTCORE_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	originalEnv := os.Getenv("HAUNTCORE_CONFIG")
	defer os.Setenv("HAUNTCORE_CONFIG", originalEnv)

	os.Unsetenv("HAUNTCORE_CONFIG")

	path := getConfigPath()
	if path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	originalEnv := os.Getenv("HAUNTCORE_CONFIG")
	defer os.Setenv("HAUNTCORE_CONFIG", originalEnv)

	expected := "/custom/path/config.yaml"
	os.Setenv("HAUNTCORE_CONFIG", expected)

	path := getConfigPath()
	if path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestTelemetryAdapters_NilClient verifies a nil InfluxDB client maps to
// nil interfaces rather than typed nil pointers.
func TestTelemetryAdapters_NilClient(t *testing.T) {
	if engineTelemetry(nil) != nil {
		t.Error("engineTelemetry(nil) should be a nil interface")
	}
	if livenessRecorder(nil) != nil {
		t.Error("livenessRecorder(nil) should be a nil interface")
	}
	if visitorRecorder(nil) != nil {
		t.Error("visitorRecorder(nil) should be a nil interface")
	}
}

// TestRun_SuccessfulStartupAndShutdown tests full startup with running services.
// Requires MQTT broker at 127.0.0.1:1883.
func TestRun_SuccessfulStartupAndShutdown(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")
	dbPath := filepath.Join(tmpDir, "test.db")

	configContent := `
site:
  id: test-site

database:
  path: "` + dbPath + `"
  wal_mode: true
  busy_timeout: 5

mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883
    client_id: "test-successful-startup"
    tls: false
  qos: 1
  topics:
    person: "frigate/entrance/person"
    portal_state: "portal/state"

portal:
  host: "127.0.0.1"
  timeout: 1

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: 18085
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("HAUNTCORE_CONFIG")
	defer os.Setenv("HAUNTCORE_CONFIG", originalEnv)
	os.Setenv("HAUNTCORE_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := run(ctx)

	if err != nil {
		t.Logf("run() returned error: %v (may be due to missing MQTT broker)", err)
	}
}
