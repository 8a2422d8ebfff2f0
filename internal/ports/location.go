package ports

import "geolog/internal/domain"

// LocationEvent is one asynchronous notification from a location capability.
// Implementations: AuthorizationChanged, FixesDelivered, DeliveryFailed.
type LocationEvent interface {
	locationEvent()
}

// AuthorizationChanged reports a new permission state
type AuthorizationChanged struct {
	State domain.AuthorizationState
}

// FixesDelivered carries a batch of fixes, oldest first
type FixesDelivered struct {
	Fixes []domain.Fix
}

// DeliveryFailed reports a transient error; updates keep running
type DeliveryFailed struct {
	Message string
}

func (AuthorizationChanged) locationEvent() {}
func (FixesDelivered) locationEvent()       {}
func (DeliveryFailed) locationEvent()       {}

// LocationCapability is a platform source of position fixes.
// Events arrive on the capability's own goroutine through Events; consumers
// hand them to their owning goroutine before touching shared state.
type LocationCapability interface {
	// AuthorizationState returns the state known before any event is read
	AuthorizationState() domain.AuthorizationState

	// RequestPermission asks for access; the answer arrives as AuthorizationChanged
	RequestPermission()

	// StartUpdates begins continuous delivery; it must not block
	StartUpdates()

	// Events is closed after Close
	Events() <-chan LocationEvent

	Close() error
}
