package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Haunt Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Portal    PortalConfig    `yaml:"portal"`
	Lighting  LightingConfig  `yaml:"lighting"`
	Scenario  ScenarioConfig  `yaml:"scenario"`
	Health    HealthConfig    `yaml:"health"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DatabaseConfig contains SQLite database settings.
// The database holds only the durable visitor counter; all scenario state
// is process-memory only and resets on restart.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
	Topics    MQTTTopicsConfig    `yaml:"topics"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// MQTTTopicsConfig contains the inbound topics the intake subscribes to.
type MQTTTopicsConfig struct {
	// Person is the topic carrying a numeric person-count payload
	// (e.g., "frigate/entrance/person").
	Person string `yaml:"person"`

	// PortalState is the topic carrying the portal's reported state (1/2/3).
	PortalState string `yaml:"portal_state"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// PortalConfig contains the LED portal device connection settings.
type PortalConfig struct {
	// Host is the IP address or hostname of the portal device.
	Host string `yaml:"host"`

	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout"`
}

// LightingConfig contains the lighting controller connection settings.
type LightingConfig struct {
	// URL is the base URL of the lighting controller REST API.
	URL string `yaml:"url"`

	// Token is the bearer token for API authentication.
	Token string `yaml:"token"`

	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout"`

	// SceneLightsOn is the scene entity restoring normal lighting.
	SceneLightsOn string `yaml:"scene_lights_on"`

	// SceneLightsOff is the scene entity turning all lights off.
	SceneLightsOff string `yaml:"scene_lights_off"`

	// FlickerEntity is the light entity used for the flicker effect.
	FlickerEntity string `yaml:"flicker_entity"`
}

// ScenarioConfig contains scenario orchestration settings.
type ScenarioConfig struct {
	// CooldownSeconds is the minimum time between admitted triggers,
	// measured from admission (not sequence completion).
	CooldownSeconds int `yaml:"cooldown_seconds"`

	// FlickerRounds is the number of flicker cycles in the effect sequence.
	FlickerRounds int `yaml:"flicker_rounds"`
}

// HealthConfig contains device reachability probe settings.
type HealthConfig struct {
	// ProbeInterval is how often to probe the portal and lighting
	// controller for liveness, in seconds. 0 disables periodic probes.
	ProbeInterval int `yaml:"probe_interval"`
}

// InfluxDBConfig contains InfluxDB telemetry settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HAUNTCORE_SECTION_KEY
// For example: HAUNTCORE_DATABASE_PATH, HAUNTCORE_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "haunt-001",
			Name: "Haunt Core",
		},
		Database: DatabaseConfig{
			Path:        "./data/hauntcore.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "haunt-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			Topics: MQTTTopicsConfig{
				Person:      "frigate/entrance/person",
				PortalState: "portal/state",
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Portal: PortalConfig{
			Host:    "10.1.5.32",
			Timeout: 5,
		},
		Lighting: LightingConfig{
			Timeout:        5,
			SceneLightsOn:  "scene.halloween_pa",
			SceneLightsOff: "scene.halloween_av",
			FlickerEntity:  "light.entrance_outdoor",
		},
		Scenario: ScenarioConfig{
			CooldownSeconds: 30,
			FlickerRounds:   3,
		},
		Health: HealthConfig{
			ProbeInterval: 15,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HAUNTCORE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("HAUNTCORE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("HAUNTCORE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HAUNTCORE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("HAUNTCORE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HAUNTCORE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("HAUNTCORE_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// Devices
	if v := os.Getenv("HAUNTCORE_PORTAL_HOST"); v != "" {
		cfg.Portal.Host = v
	}
	if v := os.Getenv("HAUNTCORE_LIGHTING_URL"); v != "" {
		cfg.Lighting.URL = v
	}
	if v := os.Getenv("HAUNTCORE_LIGHTING_TOKEN"); v != "" {
		cfg.Lighting.Token = v
	}

	// InfluxDB
	if v := os.Getenv("HAUNTCORE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Site validation
	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Topics.Person == "" {
		errs = append(errs, "mqtt.topics.person is required")
	}
	if c.MQTT.Topics.PortalState == "" {
		errs = append(errs, "mqtt.topics.portal_state is required")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// Portal validation
	if c.Portal.Host == "" {
		errs = append(errs, "portal.host is required")
	}
	if c.Portal.Timeout < 1 {
		errs = append(errs, "portal.timeout must be at least 1 second")
	}

	// Lighting validation: URL may be empty (degraded mode, portal-only),
	// but if set it needs a token for the bearer-auth API.
	if c.Lighting.URL != "" && c.Lighting.Token == "" {
		errs = append(errs, "lighting.token is required when lighting.url is set (set HAUNTCORE_LIGHTING_TOKEN)")
	}

	// Scenario validation
	if c.Scenario.CooldownSeconds < 0 {
		errs = append(errs, "scenario.cooldown_seconds must not be negative")
	}
	if c.Scenario.FlickerRounds < 1 {
		errs = append(errs, "scenario.flicker_rounds must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// CooldownDuration returns the scenario cooldown window as a Duration.
func (c *ScenarioConfig) CooldownDuration() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}
