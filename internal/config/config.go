// Package config resolves geolog settings from the config file, GEOLOG_*
// environment variables and command-line flags through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. GEOLOG_LOCATION_SOURCE
const EnvPrefix = "GEOLOG"

// Location sources
const (
	SourceStatic = "static"
	SourceNMEA   = "nmea"
	SourceMQTT   = "mqtt"
)

// Config is the resolved configuration shared by all binaries
type Config struct {
	Location LocationConfig
	Export   ExportConfig
	Logging  LoggingConfig
}

// LocationConfig selects and configures the location source
type LocationConfig struct {
	Source string
	Static StaticConfig
	NMEA   NMEAConfig
	MQTT   MQTTConfig
}

// StaticConfig is a fixed position, useful indoors and in demos
type StaticConfig struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
}

// NMEAConfig points at a GPS receiver or a recorded sentence log
type NMEAConfig struct {
	Path string
}

// MQTTConfig describes an OwnTracks-style broker subscription
type MQTTConfig struct {
	Broker   string
	Topic    string
	Username string
	Password string
	ClientID string
}

// ExportConfig controls where exports go and how they are shared
type ExportConfig struct {
	Dir   string
	Share string
}

// LoggingConfig configures slog
type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("location.source", SourceStatic)
	v.SetDefault("location.static.latitude", 0.0)
	v.SetDefault("location.static.longitude", 0.0)
	v.SetDefault("location.static.accuracy", 5.0)
	v.SetDefault("location.nmea.path", "/dev/ttyACM0")
	v.SetDefault("location.mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("location.mqtt.topic", "owntracks/+/+")
	v.SetDefault("export.dir", os.TempDir())
	v.SetDefault("export.share", "none")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
}

// Init points v at the config file and the environment and reads the file.
// An empty cfgFile searches $HOME/.config/geolog and the working directory;
// a missing file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".config", "geolog"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// Load resolves v into a Config and validates it
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Location: LocationConfig{
			Source: strings.ToLower(v.GetString("location.source")),
			Static: StaticConfig{
				Latitude:  v.GetFloat64("location.static.latitude"),
				Longitude: v.GetFloat64("location.static.longitude"),
				Accuracy:  v.GetFloat64("location.static.accuracy"),
			},
			NMEA: NMEAConfig{
				Path: ExpandPath(v.GetString("location.nmea.path")),
			},
			MQTT: MQTTConfig{
				Broker:   v.GetString("location.mqtt.broker"),
				Topic:    v.GetString("location.mqtt.topic"),
				Username: v.GetString("location.mqtt.username"),
				Password: v.GetString("location.mqtt.password"),
				ClientID: v.GetString("location.mqtt.client_id"),
			},
		},
		Export: ExportConfig{
			Dir:   ExpandPath(v.GetString("export.dir")),
			Share: strings.ToLower(v.GetString("export.share")),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(v.GetString("logging.level")),
			Format: strings.ToLower(v.GetString("logging.format")),
			File:   ExpandPath(v.GetString("logging.file")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that viper cannot type-check
func (c *Config) Validate() error {
	switch c.Location.Source {
	case SourceStatic:
		s := c.Location.Static
		if s.Latitude < -90 || s.Latitude > 90 || s.Longitude < -180 || s.Longitude > 180 {
			return fmt.Errorf("location.static: coordinates out of range (%g, %g)", s.Latitude, s.Longitude)
		}
		if s.Accuracy < 0 {
			return fmt.Errorf("location.static.accuracy must not be negative")
		}
	case SourceNMEA:
		if c.Location.NMEA.Path == "" {
			return fmt.Errorf("location.nmea.path is required")
		}
	case SourceMQTT:
		if c.Location.MQTT.Broker == "" || c.Location.MQTT.Topic == "" {
			return fmt.Errorf("location.mqtt.broker and location.mqtt.topic are required")
		}
	default:
		return fmt.Errorf("unknown location.source %q (expected static, nmea or mqtt)", c.Location.Source)
	}

	switch c.Export.Share {
	case "clipboard", "open", "editor", "none", "":
	default:
		return fmt.Errorf("unknown export.share %q (expected clipboard, open, editor or none)", c.Export.Share)
	}
	return nil
}

// ExpandPath replaces a leading ~ with the user's home directory
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
