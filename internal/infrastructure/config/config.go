package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Luminary.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Engine    EngineConfig    `yaml:"engine"`
	Audio     AudioConfig     `yaml:"audio"`
}

// SiteConfig identifies the installation.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DatabaseConfig contains SQLite database settings.
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

// MQTTReconnectConfig contains MQTT reconnection settings, in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
	Auth     APIAuthConfig    `yaml:"auth"`

	// PanelDir overrides the embedded preview page with files on disk.
	PanelDir string `yaml:"panel_dir"`
}

// APIAuthConfig contains bearer token settings. An empty JWTSecret leaves
// the control endpoints open.
type APIAuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`

	// TokenTTL is the lifetime of minted tokens, in hours.
	TokenTTL int `yaml:"token_ttl"`
}

// APITimeoutConfig contains HTTP timeout settings, in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains preview stream settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
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

// EngineConfig contains show engine and write coordinator settings.
type EngineConfig struct {
	// DebounceMS is how long a light write waits for a newer colour.
	DebounceMS int `yaml:"debounce_ms"`

	// WriteTimeoutMS bounds each controller call.
	WriteTimeoutMS int `yaml:"write_timeout_ms"`

	// StartupShow, if set, is applied to StartupLights when the service starts.
	StartupShow   string        `yaml:"startup_show"`
	StartupLights []LightConfig `yaml:"startup_lights"`
}

// LightConfig places one light on the canvas.
type LightConfig struct {
	ID string  `yaml:"id"`
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
}

// Audio level source kinds.
const (
	AudioSourceNone = "none"
	AudioSourceMQTT = "mqtt"
	AudioSourceMIDI = "midi"
)

// AudioConfig selects the amplitude/frequency feed for sound-reactive shows.
type AudioConfig struct {
	Source string `yaml:"source"`

	// Topic is the MQTT topic carrying level samples (source mqtt).
	Topic string `yaml:"topic"`

	// MIDIPort is a substring of the MIDI input port name (source midi).
	MIDIPort string `yaml:"midi_port"`

	// DecayMS is how long a level takes to fall from 1 to 0 without input.
	DecayMS int `yaml:"decay_ms"`

	// StaleMS is how old a sample may be before it counts as silence.
	StaleMS int `yaml:"stale_ms"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: LUMINARY_SECTION_KEY
// For example: LUMINARY_DATABASE_PATH, LUMINARY_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults. It is valid as-is and is
// used when no config file is given.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "site-001",
			Name: "Luminary",
		},
		Database: DatabaseConfig{
			Path:        "./data/luminary.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "luminary-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
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
			Auth: APIAuthConfig{
				TokenTTL: 24,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Engine: EngineConfig{
			DebounceMS:     100,
			WriteTimeoutMS: 5000,
		},
		Audio: AudioConfig{
			Source:  AudioSourceNone,
			Topic:   "luminary/audio/level",
			DecayMS: 300,
			StaleMS: 2000,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: LUMINARY_SECTION_KEY
func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"LUMINARY_DATABASE_PATH":       &cfg.Database.Path,
		"LUMINARY_MQTT_HOST":           &cfg.MQTT.Broker.Host,
		"LUMINARY_MQTT_USERNAME":       &cfg.MQTT.Auth.Username,
		"LUMINARY_MQTT_PASSWORD":       &cfg.MQTT.Auth.Password,
		"LUMINARY_API_HOST":            &cfg.API.Host,
		"LUMINARY_API_JWT_SECRET":      &cfg.API.Auth.JWTSecret,
		"LUMINARY_INFLUXDB_URL":        &cfg.InfluxDB.URL,
		"LUMINARY_INFLUXDB_TOKEN":      &cfg.InfluxDB.Token,
		"LUMINARY_LOGGING_LEVEL":       &cfg.Logging.Level,
		"LUMINARY_ENGINE_STARTUP_SHOW": &cfg.Engine.StartupShow,
		"LUMINARY_AUDIO_SOURCE":        &cfg.Audio.Source,
		"LUMINARY_AUDIO_MIDI_PORT":     &cfg.Audio.MIDIPort,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"LUMINARY_MQTT_PORT":          &cfg.MQTT.Broker.Port,
		"LUMINARY_API_PORT":           &cfg.API.Port,
		"LUMINARY_ENGINE_DEBOUNCE_MS": &cfg.Engine.DebounceMS,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		*dst = n
	}

	if v := os.Getenv("LUMINARY_INFLUXDB_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing LUMINARY_INFLUXDB_ENABLED: %w", err)
		}
		cfg.InfluxDB.Enabled = enabled
	}

	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if s := c.API.Auth.JWTSecret; s != "" && len(s) < minJWTSecretLength {
		errs = append(errs, fmt.Sprintf("api.auth.jwt_secret must be at least %d characters", minJWTSecretLength))
	}
	if c.API.Auth.TokenTTL < 0 {
		errs = append(errs, "api.auth.token_ttl must not be negative")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if c.Engine.DebounceMS < 0 {
		errs = append(errs, "engine.debounce_ms must not be negative")
	}
	if c.Engine.WriteTimeoutMS < 0 {
		errs = append(errs, "engine.write_timeout_ms must not be negative")
	}
	if c.Engine.StartupShow != "" && len(c.Engine.StartupLights) == 0 {
		errs = append(errs, "engine.startup_lights is required when engine.startup_show is set")
	}
	seen := make(map[string]bool, len(c.Engine.StartupLights))
	for i, l := range c.Engine.StartupLights {
		switch {
		case l.ID == "":
			errs = append(errs, fmt.Sprintf("engine.startup_lights[%d].id is required", i))
		case seen[l.ID]:
			errs = append(errs, fmt.Sprintf("engine.startup_lights[%d].id %q is duplicated", i, l.ID))
		}
		seen[l.ID] = true
	}

	switch c.Audio.Source {
	case AudioSourceNone, "":
	case AudioSourceMQTT:
		if c.Audio.Topic == "" {
			errs = append(errs, "audio.topic is required for the mqtt source")
		}
	case AudioSourceMIDI:
	default:
		errs = append(errs, fmt.Sprintf("audio.source %q must be none, mqtt, or midi", c.Audio.Source))
	}
	if c.Audio.DecayMS < 0 {
		errs = append(errs, "audio.decay_ms must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// minJWTSecretLength is the shortest accepted HS256 signing secret.
const minJWTSecretLength = 32

// TokenLifetime returns the minted token lifetime as a Duration.
func (a APIAuthConfig) TokenLifetime() time.Duration {
	return time.Duration(a.TokenTTL) * time.Hour
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

// Debounce returns the coordinator debounce window.
func (e EngineConfig) Debounce() time.Duration {
	return time.Duration(e.DebounceMS) * time.Millisecond
}

// WriteTimeout returns the per-write controller timeout.
func (e EngineConfig) WriteTimeout() time.Duration {
	return time.Duration(e.WriteTimeoutMS) * time.Millisecond
}

// Decay returns the audio level decay time.
func (a AudioConfig) Decay() time.Duration {
	return time.Duration(a.DecayMS) * time.Millisecond
}

// Stale returns how long a level sample stays current.
func (a AudioConfig) Stale() time.Duration {
	return time.Duration(a.StaleMS) * time.Millisecond
}
