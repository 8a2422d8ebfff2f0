// Package static provides location capabilities that do not talk to hardware:
// a fixed position taken from configuration and a scripted source for tests.
package static

import (
	"sync"
	"time"

	"geolog/internal/domain"
	"geolog/internal/ports"
)

const eventBuffer = 32

// emitter is a closable, non-blocking event channel shared by both sources
type emitter struct {
	mu     sync.Mutex
	events chan ports.LocationEvent
	closed bool
}

func newEmitter() *emitter {
	return &emitter{events: make(chan ports.LocationEvent, eventBuffer)}
}

// emit queues ev; it is dropped when the buffer is full or after Close
func (e *emitter) emit(ev ports.LocationEvent) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	select {
	case e.events <- ev:
		return true
	default:
		return false
	}
}

func (e *emitter) Events() <-chan ports.LocationEvent {
	return e.events
}

func (e *emitter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.events)
	}
	return nil
}

// Capability reports one configured position.
// Permission is always granted when requested.
type Capability struct {
	*emitter
	fix   domain.Fix
	clock func() time.Time
}

var _ ports.LocationCapability = (*Capability)(nil)

// New creates a capability that delivers fix once updates start
func New(fix domain.Fix) *Capability {
	return &Capability{
		emitter: newEmitter(),
		fix:     fix,
		clock:   time.Now,
	}
}

// AuthorizationState is undetermined until RequestPermission
func (c *Capability) AuthorizationState() domain.AuthorizationState {
	return domain.AuthNotDetermined
}

// RequestPermission grants foreground access
func (c *Capability) RequestPermission() {
	c.emit(ports.AuthorizationChanged{State: domain.AuthWhenInUse})
}

// StartUpdates delivers the configured fix stamped with the current time
func (c *Capability) StartUpdates() {
	fix := c.fix
	fix.Timestamp = c.clock()
	c.emit(ports.FixesDelivered{Fixes: []domain.Fix{fix}})
}

// Scripted is a capability driven by the caller. It answers permission
// requests with a preset state and lets tests inject any event.
type Scripted struct {
	*emitter
	initial domain.AuthorizationState
	answer  domain.AuthorizationState

	mu                 sync.Mutex
	permissionRequests int
	startCalls         int
}

var _ ports.LocationCapability = (*Scripted)(nil)

// NewScripted creates a scripted capability starting in initial state that
// answers permission requests with answer
func NewScripted(initial, answer domain.AuthorizationState) *Scripted {
	return &Scripted{
		emitter: newEmitter(),
		initial: initial,
		answer:  answer,
	}
}

func (s *Scripted) AuthorizationState() domain.AuthorizationState {
	return s.initial
}

func (s *Scripted) RequestPermission() {
	s.mu.Lock()
	s.permissionRequests++
	s.mu.Unlock()
	s.emit(ports.AuthorizationChanged{State: s.answer})
}

func (s *Scripted) StartUpdates() {
	s.mu.Lock()
	s.startCalls++
	s.mu.Unlock()
}

// Emit injects an event as if the platform had delivered it
func (s *Scripted) Emit(ev ports.LocationEvent) bool {
	return s.emit(ev)
}

// PermissionRequests returns how many times permission was requested
func (s *Scripted) PermissionRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permissionRequests
}

// StartCalls returns how many times updates were started
func (s *Scripted) StartCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startCalls
}
