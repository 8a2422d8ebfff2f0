package application

import (
	"log/slog"

	"geolog/internal/domain"
	"geolog/internal/ports"
)

// Notification is what LocationProvider publishes to subscribers.
// Implementations: LocationUpdated, AuthChanged, Failed.
type Notification interface {
	notification()
}

// LocationUpdated carries the new current fix
type LocationUpdated struct {
	Fix domain.Fix
}

// AuthChanged carries the new authorization state
type AuthChanged struct {
	State domain.AuthorizationState
}

// Failed carries an advisory delivery error
type Failed struct {
	Message string
}

func (LocationUpdated) notification() {}
func (AuthChanged) notification()     {}
func (Failed) notification()          {}

// LocationProvider keeps the latest fix and permission state of a capability.
// All methods must be called from the single goroutine that owns the session.
type LocationProvider struct {
	capability ports.LocationCapability

	fix       domain.Fix
	hasFix    bool
	auth      domain.AuthorizationState
	lastError string
	updating  bool

	subscribers map[int]func(Notification)
	nextSubID   int
}

// NewLocationProvider wraps capability
func NewLocationProvider(capability ports.LocationCapability) *LocationProvider {
	return &LocationProvider{
		capability:  capability,
		auth:        capability.AuthorizationState(),
		subscribers: make(map[int]func(Notification)),
	}
}

// RequestStart prompts for permission when undetermined, or starts updates
// when already granted. Results arrive later through Handle.
func (p *LocationProvider) RequestStart() {
	switch {
	case p.auth == domain.AuthNotDetermined:
		p.capability.RequestPermission()
	case p.auth.Granted():
		p.startUpdates()
	default:
		slog.Debug("location permission not granted", "state", p.auth.String())
	}
}

func (p *LocationProvider) startUpdates() {
	if p.updating {
		return
	}
	p.updating = true
	p.capability.StartUpdates()
}

// Handle applies one capability event and notifies subscribers
func (p *LocationProvider) Handle(ev ports.LocationEvent) {
	switch ev := ev.(type) {
	case ports.AuthorizationChanged:
		p.auth = ev.State
		slog.Info("location authorization changed", "state", ev.State.String())
		if ev.State.Granted() {
			p.startUpdates()
		}
		p.publish(AuthChanged{State: ev.State})

	case ports.FixesDelivered:
		if len(ev.Fixes) == 0 {
			return
		}
		p.fix = ev.Fixes[len(ev.Fixes)-1]
		p.hasFix = true
		p.publish(LocationUpdated{Fix: p.fix})

	case ports.DeliveryFailed:
		p.lastError = ev.Message
		slog.Warn("location delivery failed", "error", ev.Message)
		p.publish(Failed{Message: ev.Message})
	}
}

// Subscribe registers fn for every notification; the returned func removes it
func (p *LocationProvider) Subscribe(fn func(Notification)) func() {
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	return func() {
		delete(p.subscribers, id)
	}
}

func (p *LocationProvider) publish(n Notification) {
	for _, fn := range p.subscribers {
		fn(n)
	}
}

// CurrentFix implements domain.FixSource
func (p *LocationProvider) CurrentFix() (domain.Fix, bool) {
	return p.fix, p.hasFix
}

// Authorization returns the last known permission state
func (p *LocationProvider) Authorization() domain.AuthorizationState {
	return p.auth
}

// LastError returns the most recent delivery failure, empty when none
func (p *LocationProvider) LastError() string {
	return p.lastError
}

// Updating reports whether continuous updates were started
func (p *LocationProvider) Updating() bool {
	return p.updating
}

// Events exposes the capability's event stream for the owning loop
func (p *LocationProvider) Events() <-chan ports.LocationEvent {
	return p.capability.Events()
}
