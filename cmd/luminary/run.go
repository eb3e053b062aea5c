package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/luminary-core/internal/api"
	"github.com/nerrad567/luminary-core/internal/audio"
	"github.com/nerrad567/luminary-core/internal/audit"
	"github.com/nerrad567/luminary-core/internal/canvas"
	"github.com/nerrad567/luminary-core/internal/engine"
	"github.com/nerrad567/luminary-core/internal/infrastructure/config"
	"github.com/nerrad567/luminary-core/internal/infrastructure/database"
	"github.com/nerrad567/luminary-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/luminary-core/internal/infrastructure/logging"
	"github.com/nerrad567/luminary-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/luminary-core/internal/lightctl"
	"github.com/nerrad567/luminary-core/internal/show"
	"github.com/nerrad567/luminary-core/internal/writequeue"
	_ "github.com/nerrad567/luminary-core/migrations"
)

const (
	// historyRetention is how long finished sessions are kept.
	historyRetention = 30 * 24 * time.Hour

	// shutdownTimeout bounds stopping the show and draining writes.
	shutdownTimeout = 5 * time.Second
)

// run wires every component, starts the API and blocks until ctx is
// cancelled. Components are torn down in reverse order of creation.
func run(ctx context.Context, configPath string) error {
	log := logging.Default()
	log.Info("starting Luminary",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "site", cfg.Site.ID)

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	auditLog := audit.NewSQLiteRepository(db.DB)
	history := engine.NewSQLiteSessionRepository(db.DB)
	if pruned, err := history.Prune(ctx, historyRetention); err != nil {
		log.Warn("pruning session history failed", "error", err)
	} else if pruned > 0 {
		log.Info("pruned session history", "sessions", pruned)
	}

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
	mqttClient.SetLogger(log.Component("mqtt"))
	mqttClient.SetOnConnect(func() { log.Info("MQTT reconnected") })
	mqttClient.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	influxClient, err := connectInflux(cfg.InfluxDB, log)
	if err != nil {
		return err
	}
	if influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
	}

	controller := lightctl.NewMQTTController(mqttClient, mqttClient.QoS())
	controller.SetLogger(log.Component("lightctl"))

	coordinator := writequeue.New(controller, writequeue.Config{
		Debounce:     cfg.Engine.Debounce(),
		WriteTimeout: cfg.Engine.WriteTimeout(),
	})
	coordinator.SetLogger(log.Component("writequeue"))
	if influxClient != nil {
		coordinator.SetRecorder(influxClient)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if closeErr := coordinator.Close(closeCtx); closeErr != nil {
			log.Warn("write coordinator did not drain", "error", closeErr)
		}
	}()

	levels, stopAudio, err := startAudio(cfg, mqttClient, log)
	if err != nil {
		return err
	}
	defer stopAudio()

	eng := engine.New(show.NewDefaultRegistry(levels), coordinator, history, log.Component("engine"))
	if influxClient != nil {
		eng.SetEventRecorder(influxClient)
	}

	hub := api.NewHub(cfg.WebSocket, log.Component("websocket"))
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)
	eng.SetPreview(hub.PreviewFunc())

	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if _, dropped, stopErr := eng.StopAll(stopCtx); stopErr != nil {
			log.Warn("show did not stop cleanly", "error", stopErr)
		} else {
			log.Info("show engine stopped", "dropped_writes", dropped)
		}
	}()

	checks := map[string]api.HealthChecker{
		"database": db,
		"mqtt":     mqttClient,
	}
	if influxClient != nil {
		checks["influxdb"] = influxClient
	}

	server, err := api.New(api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Logger:  log.Component("api"),
		Engine:  eng,
		Hub:     hub,
		Checks:  checks,
		Audit:   auditLog,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := applyStartupShow(ctx, eng, cfg.Engine, auditLog); err != nil {
		log.Warn("startup show not applied", "show", cfg.Engine.StartupShow, "error", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal",
		"api", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		"shows", eng.Registry().Len(),
	)
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")
	return nil
}

func openDatabase(cfg *config.Config) (*database.DB, error) {
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// connectInflux returns nil without error when telemetry is disabled.
func connectInflux(cfg config.InfluxDBConfig, log *logging.Logger) (*influxdb.Client, error) {
	if !cfg.Enabled {
		log.Info("InfluxDB disabled")
		return nil, nil
	}
	client, err := influxdb.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	}
	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected", "url", cfg.URL, "org", cfg.Org, "bucket", cfg.Bucket)
	return client, nil
}

// startAudio creates the configured level source. The returned stop
// function is always safe to call.
func startAudio(cfg *config.Config, sub audio.Subscriber, log *logging.Logger) (show.LevelSource, func(), error) {
	noop := func() {}

	switch cfg.Audio.Source {
	case config.AudioSourceMQTT:
		src := audio.NewMQTTSource(sub, cfg.Audio.Topic, cfg.Audio.Decay(), cfg.Audio.Stale())
		if err := src.Start(); err != nil {
			return nil, noop, fmt.Errorf("starting MQTT audio source: %w", err)
		}
		log.Info("audio levels from MQTT", "topic", src.Topic())
		return src, func() {
			if err := src.Stop(); err != nil {
				log.Warn("stopping MQTT audio source", "error", err)
			}
		}, nil

	case config.AudioSourceMIDI:
		port, err := audio.FindInPort(cfg.Audio.MIDIPort)
		if err != nil {
			return nil, noop, err
		}
		src := audio.NewMIDISource(cfg.Audio.Decay(), cfg.Audio.Stale())
		if err := src.Listen(port); err != nil {
			return nil, noop, err
		}
		log.Info("audio levels from MIDI", "port", port.String())
		return src, src.Close, nil

	default:
		log.Info("no audio source configured; sound-reactive show unavailable")
		return nil, noop, nil
	}
}

// applyStartupShow starts the configured show, if any, and records it in
// the audit log when one is given.
func applyStartupShow(ctx context.Context, eng *engine.Engine, cfg config.EngineConfig, auditLog audit.Repository) error {
	if cfg.StartupShow == "" {
		return nil
	}
	lights := make([]canvas.Light, len(cfg.StartupLights))
	for i, l := range cfg.StartupLights {
		lights[i] = canvas.Light{ID: l.ID, Position: canvas.Point{X: l.X, Y: l.Y}}
	}
	sess, err := eng.Apply(ctx, cfg.StartupShow, lights)
	if err != nil {
		return err
	}
	if auditLog == nil {
		return nil
	}
	return auditLog.Record(ctx, &audit.Entry{
		Action:    audit.ActionApply,
		ShowID:    sess.ShowID,
		SessionID: sess.ID,
		Actor:     "system",
		Source:    audit.SourceStartup,
		Details:   map[string]any{"lights": len(lights)},
	})
}
