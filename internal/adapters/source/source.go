// Package source builds the configured location capability.
package source

import (
	"fmt"

	"geolog/internal/adapters/mqtt"
	"geolog/internal/adapters/nmea"
	"geolog/internal/adapters/static"
	"geolog/internal/config"
	"geolog/internal/domain"
	"geolog/internal/ports"
)

// New returns the capability selected by cfg.Source
func New(cfg config.LocationConfig) (ports.LocationCapability, error) {
	switch cfg.Source {
	case config.SourceStatic:
		return static.New(domain.Fix{
			Latitude:           cfg.Static.Latitude,
			Longitude:          cfg.Static.Longitude,
			HorizontalAccuracy: cfg.Static.Accuracy,
		}), nil
	case config.SourceNMEA:
		return nmea.New(cfg.NMEA.Path), nil
	case config.SourceMQTT:
		return mqtt.New(mqtt.Config{
			Broker:   cfg.MQTT.Broker,
			Topic:    cfg.MQTT.Topic,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			ClientID: cfg.MQTT.ClientID,
		}), nil
	default:
		return nil, fmt.Errorf("unknown location source %q", cfg.Source)
	}
}

// Describe summarises the source for status lines
func Describe(cfg config.LocationConfig) string {
	switch cfg.Source {
	case config.SourceStatic:
		return fmt.Sprintf("static %.5f, %.5f", cfg.Static.Latitude, cfg.Static.Longitude)
	case config.SourceNMEA:
		return "nmea " + cfg.NMEA.Path
	case config.SourceMQTT:
		return fmt.Sprintf("mqtt %s %s", cfg.MQTT.Broker, cfg.MQTT.Topic)
	default:
		return cfg.Source
	}
}
