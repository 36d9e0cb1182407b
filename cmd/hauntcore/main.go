// Haunt Core - Halloween Scenario Orchestration
//
// This is the main entry point for the Haunt Core application.
// Haunt Core coordinates a walk-up Halloween installation:
//   - Person detection events arrive over MQTT and trigger the effect sequence
//   - An LED portal and the house lighting run a synchronized scare
//   - A dashboard watches live status over WebSocket and counts visitors
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/haunt-core/migrations"

	"github.com/nerrad567/haunt-core/internal/api"
	"github.com/nerrad567/haunt-core/internal/infrastructure/config"
	"github.com/nerrad567/haunt-core/internal/infrastructure/database"
	"github.com/nerrad567/haunt-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/haunt-core/internal/infrastructure/logging"
	"github.com/nerrad567/haunt-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/haunt-core/internal/lighting"
	"github.com/nerrad567/haunt-core/internal/portal"
	"github.com/nerrad567/haunt-core/internal/scenario"
	"github.com/nerrad567/haunt-core/internal/status"
	"github.com/nerrad567/haunt-core/internal/visitors"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// initialStateTimeout bounds the best-effort device reset at startup.
const initialStateTimeout = 10 * time.Second

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Haunt Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Load the durable visitor count into the status record
	visitorRepo := visitors.NewSQLiteRepository(db.DB)
	visitorCount, err := visitorRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("loading visitor count: %w", err)
	}

	store := status.New(cfg.Scenario.CooldownDuration())
	store.Update(func(s *status.Status, _ time.Time) {
		s.VisitorCount = visitorCount
	})
	log.Info("status record initialised",
		"visitor_count", visitorCount,
		"cooldown_seconds", cfg.Scenario.CooldownSeconds,
	)

	// Device clients
	portalClient := portal.New(portal.Config{
		Host:    cfg.Portal.Host,
		Timeout: time.Duration(cfg.Portal.Timeout) * time.Second,
	})
	lightsClient := lighting.New(lighting.Config{
		URL:     cfg.Lighting.URL,
		Token:   cfg.Lighting.Token,
		Timeout: time.Duration(cfg.Lighting.Timeout) * time.Second,
	})
	if lightsClient.Enabled() {
		log.Info("lighting controller configured", "url", cfg.Lighting.URL)
	} else {
		log.Warn("lighting controller not configured, running portal-only")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
		store.Update(func(s *status.Status, _ time.Time) {
			s.BusConnected = true
		})
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
		store.Update(func(s *status.Status, _ time.Time) {
			s.BusConnected = false
		})
	})
	store.Update(func(s *status.Status, _ time.Time) {
		s.BusConnected = mqttClient.IsConnected()
	})

	// Scenario engine and bus intake
	engine := scenario.NewEngine(scenario.Config{
		SceneLightsOn:  cfg.Lighting.SceneLightsOn,
		SceneLightsOff: cfg.Lighting.SceneLightsOff,
		FlickerEntity:  cfg.Lighting.FlickerEntity,
		FlickerRounds:  cfg.Scenario.FlickerRounds,
	}, scenario.Deps{
		Store:     store,
		Portal:    portalClient,
		Lighting:  lightsClient,
		Publisher: mqttClient,
		Telemetry: engineTelemetry(influxClient),
		Logger:    log,
	})

	intake := scenario.NewIntake(engine, store, log)

	qos := byte(cfg.MQTT.QoS)
	if err := mqttClient.Subscribe(cfg.MQTT.Topics.Person, qos, intake.HandlePersonCount); err != nil {
		return fmt.Errorf("subscribing to person topic: %w", err)
	}
	if err := mqttClient.Subscribe(cfg.MQTT.Topics.PortalState, qos, intake.HandlePortalState); err != nil {
		return fmt.Errorf("subscribing to portal state topic: %w", err)
	}
	log.Info("bus intake subscribed",
		"person_topic", cfg.MQTT.Topics.Person,
		"portal_state_topic", cfg.MQTT.Topics.PortalState,
	)

	// Device liveness prober
	prober := scenario.NewProber(
		store,
		portalClient,
		lightsClient,
		mqttClient,
		livenessRecorder(influxClient),
		time.Duration(cfg.Health.ProbeInterval)*time.Second,
		log,
	)
	go prober.Run(ctx)

	// Start the API server
	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Lighting: cfg.Lighting,
		Logger:   log,
		Store:    store,
		Engine:   engine,
		Portal:   portalClient,
		Lights:   lightsClient,
		Visitors: visitorRepo,
		Prober:   prober,
		Bus:      mqttClient,
		Recorder: visitorRecorder(influxClient),
		DB:       db.DB,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Put the devices into their idle look. Failures are tolerated;
	// the prober will report unreachable devices.
	setInitialState(ctx, portalClient, lightsClient, cfg.Lighting.SceneLightsOn, log)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. MQTT
	// 3. InfluxDB (if enabled)
	// 4. Database

	log.Info("Haunt Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HAUNTCORE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HAUNTCORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// setInitialState best-effort restores the idle look at startup: portal
// back to its rotating animation, lights to the normal evening scene.
func setInitialState(ctx context.Context, portalClient *portal.Client, lightsClient *lighting.Client, lightsOnScene string, log *logging.Logger) {
	initCtx, cancel := context.WithTimeout(ctx, initialStateTimeout)
	defer cancel()

	if err := portalClient.Reset(initCtx); err != nil {
		log.Warn("initial portal reset failed", "error", err)
	}
	if lightsClient.Enabled() {
		if err := lightsClient.ActivateScene(initCtx, lightsOnScene); err != nil {
			log.Warn("initial lighting scene failed", "error", err)
		}
	}
}

// engineTelemetry converts an optional InfluxDB client into the engine's
// telemetry interface. A typed nil pointer must not leak into the
// interface value, so nil maps to a nil interface.
func engineTelemetry(c *influxdb.Client) scenario.Telemetry {
	if c == nil {
		return nil
	}
	return c
}

// livenessRecorder converts an optional InfluxDB client into the
// prober's recorder interface.
func livenessRecorder(c *influxdb.Client) scenario.LivenessRecorder {
	if c == nil {
		return nil
	}
	return c
}

// visitorRecorder converts an optional InfluxDB client into the API's
// visitor telemetry interface.
func visitorRecorder(c *influxdb.Client) api.VisitorRecorder {
	if c == nil {
		return nil
	}
	return c
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	// Check database
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	// Check MQTT
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
