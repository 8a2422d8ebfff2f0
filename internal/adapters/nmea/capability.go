package nmea

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"geolog/internal/domain"
	"geolog/internal/ports"
)

const eventBuffer = 64

// Capability reads sentences from a serial device or a replay file.
// Opening the path stands in for the permission prompt.
type Capability struct {
	path  string
	open  func(string) (io.ReadCloser, error)
	clock func() time.Time

	events chan ports.LocationEvent
	done   chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	source  io.ReadCloser
	started bool
	closed  bool
}

var _ ports.LocationCapability = (*Capability)(nil)

// Option configures a Capability
type Option func(*Capability)

// WithOpener replaces os.Open, mainly for tests
func WithOpener(open func(string) (io.ReadCloser, error)) Option {
	return func(c *Capability) {
		c.open = open
	}
}

// WithClock sets the clock used for sentences without a date
func WithClock(clock func() time.Time) Option {
	return func(c *Capability) {
		c.clock = clock
	}
}

// New creates a capability reading from path
func New(path string, opts ...Option) *Capability {
	c := &Capability{
		path: path,
		open: func(p string) (io.ReadCloser, error) {
			return os.Open(p)
		},
		clock:  time.Now,
		events: make(chan ports.LocationEvent, eventBuffer),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthorizationState probes the device
func (c *Capability) AuthorizationState() domain.AuthorizationState {
	r, err := c.open(c.path)
	if err != nil {
		return authorizationFor(err)
	}
	r.Close()
	return domain.AuthWhenInUse
}

func authorizationFor(err error) domain.AuthorizationState {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return domain.AuthDenied
	default:
		return domain.AuthRestricted
	}
}

// RequestPermission re-probes the device and reports the outcome
func (c *Capability) RequestPermission() {
	state := c.AuthorizationState()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliver(ports.AuthorizationChanged{State: state})
}

// deliver sends ev from a tracked goroutine so the caller never blocks.
// c.mu must be held.
func (c *Capability) deliver(ev ports.LocationEvent) {
	if c.closed {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.send(ev)
	}()
}

// StartUpdates opens the device and streams fixes until EOF or Close
func (c *Capability) StartUpdates() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.closed {
		return
	}

	r, err := c.open(c.path)
	if err != nil {
		c.deliver(ports.DeliveryFailed{Message: err.Error()})
		return
	}
	c.started = true
	c.source = r

	c.wg.Add(1)
	go c.read(r)
}

func (c *Capability) read(r io.Reader) {
	defer c.wg.Done()

	decoder := NewDecoder(c.clock)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fix, ok, err := decoder.Feed(scanner.Text())
		if err != nil {
			if !c.send(ports.DeliveryFailed{Message: err.Error()}) {
				return
			}
			continue
		}
		if ok && !c.send(ports.FixesDelivered{Fixes: []domain.Fix{fix}}) {
			return
		}
	}

	if err := scanner.Err(); err != nil && !c.isClosed() {
		c.send(ports.DeliveryFailed{Message: err.Error()})
		return
	}
	slog.Debug("nmea source exhausted", "path", c.path)
}

// send blocks until ev is queued or the capability is closed
func (c *Capability) send(ev ports.LocationEvent) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

func (c *Capability) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Capability) Events() <-chan ports.LocationEvent {
	return c.events
}

// Close stops reading, waits for the reader and closes the event channel
func (c *Capability) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	source := c.source
	c.mu.Unlock()

	var err error
	if source != nil {
		err = source.Close()
	}
	c.wg.Wait()
	close(c.events)
	return err
}
