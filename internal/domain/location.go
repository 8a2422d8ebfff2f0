package domain

import (
	"fmt"
	"math"
	"time"
)

// Fix is a single position report from a location source
type Fix struct {
	Latitude           float64   // decimal degrees
	Longitude          float64   // decimal degrees
	HorizontalAccuracy float64   // meters, 0 when the source does not report it
	Timestamp          time.Time // when the source took the fix
}

// Valid reports whether the fix carries usable coordinates
func (f Fix) Valid() bool {
	if math.IsNaN(f.Latitude) || math.IsNaN(f.Longitude) || math.IsNaN(f.HorizontalAccuracy) {
		return false
	}
	if f.Latitude < -90 || f.Latitude > 90 {
		return false
	}
	if f.Longitude < -180 || f.Longitude > 180 {
		return false
	}
	return f.HorizontalAccuracy >= 0 && !math.IsInf(f.HorizontalAccuracy, 0)
}

func (f Fix) String() string {
	return fmt.Sprintf("%.5f, %.5f ±%.0fm", f.Latitude, f.Longitude, f.HorizontalAccuracy)
}

// AuthorizationState is the permission state of a location source
type AuthorizationState int

const (
	AuthNotDetermined AuthorizationState = iota
	AuthRestricted
	AuthDenied
	AuthWhenInUse
	AuthAlways
)

// Granted is true for both authorized states
func (s AuthorizationState) Granted() bool {
	return s == AuthWhenInUse || s == AuthAlways
}

func (s AuthorizationState) String() string {
	switch s {
	case AuthNotDetermined:
		return "not determined"
	case AuthRestricted:
		return "restricted"
	case AuthDenied:
		return "denied"
	case AuthWhenInUse:
		return "authorized (when in use)"
	case AuthAlways:
		return "authorized (always)"
	default:
		return "unknown"
	}
}
