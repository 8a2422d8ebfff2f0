// Package mqtt receives positions published by a phone tracker (OwnTracks
// and compatible apps) through an MQTT broker.
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/eclipse/paho.mqtt.golang/packets"

	"geolog/internal/domain"
	"geolog/internal/ports"
)

const (
	eventBuffer    = 64
	connectTimeout = 15 * time.Second
	disconnectWait = 250 // milliseconds
	subscribeQoS   = 1
)

// Config holds the broker connection settings
type Config struct {
	Broker   string
	Topic    string
	Username string
	Password string
	ClientID string
}

// Capability treats a successful broker login as granted permission and
// every location message on the topic as a fix.
type Capability struct {
	config Config
	events chan ports.LocationEvent
	done   chan struct{}
	wg     sync.WaitGroup

	newClient func(*paho.ClientOptions) paho.Client

	mu         sync.Mutex
	client     paho.Client
	connecting bool
	started    bool
	closed     bool
}

var _ ports.LocationCapability = (*Capability)(nil)

// Option configures a Capability
type Option func(*Capability)

// WithClientFactory replaces paho.NewClient, mainly for tests
func WithClientFactory(newClient func(*paho.ClientOptions) paho.Client) Option {
	return func(c *Capability) {
		c.newClient = newClient
	}
}

// New creates a capability for config. Nothing connects until
// RequestPermission.
func New(config Config, opts ...Option) *Capability {
	c := &Capability{
		config:    config,
		events:    make(chan ports.LocationEvent, eventBuffer),
		done:      make(chan struct{}),
		newClient: paho.NewClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthorizationState is undetermined until the broker has been asked
func (c *Capability) AuthorizationState() domain.AuthorizationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil && c.client.IsConnected() {
		return domain.AuthWhenInUse
	}
	return domain.AuthNotDetermined
}

// RequestPermission connects in the background. A refused login maps to
// a denial; any other failure is reported and can be retried. Calls while a
// connect is in flight or after it succeeded do nothing.
func (c *Capability) RequestPermission() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.connecting || c.client != nil {
		return
	}
	c.connecting = true
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.connect()
	}()
}

func (c *Capability) connect() {
	opts := paho.NewClientOptions()
	opts.AddBroker(c.config.Broker)
	opts.SetClientID(c.clientID())
	opts.SetUsername(c.config.Username)
	opts.SetPassword(c.config.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	client := c.newClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		client.Disconnect(0)
		c.connectFailed()
		c.dispatch(ports.DeliveryFailed{Message: "timeout connecting to MQTT broker " + c.config.Broker})
		return
	}
	if err := token.Error(); err != nil {
		c.connectFailed()
		if state, refused := classifyConnectError(err); refused {
			c.dispatch(ports.AuthorizationChanged{State: state})
			return
		}
		c.dispatch(ports.DeliveryFailed{Message: fmt.Sprintf("connecting to %s: %v", c.config.Broker, err)})
		return
	}

	c.mu.Lock()
	c.connecting = false
	if c.closed {
		c.mu.Unlock()
		client.Disconnect(disconnectWait)
		return
	}
	c.client = client
	c.mu.Unlock()

	slog.Info("connected to MQTT broker", "broker", c.config.Broker)
	c.dispatch(ports.AuthorizationChanged{State: domain.AuthWhenInUse})
}

func (c *Capability) connectFailed() {
	c.mu.Lock()
	c.connecting = false
	c.mu.Unlock()
}

func (c *Capability) clientID() string {
	if c.config.ClientID != "" {
		return c.config.ClientID
	}
	return fmt.Sprintf("geolog-%d", time.Now().UnixNano())
}

// classifyConnectError reports whether err is the broker refusing the login
func classifyConnectError(err error) (domain.AuthorizationState, bool) {
	switch {
	case errors.Is(err, packets.ErrorRefusedBadUsernameOrPassword),
		errors.Is(err, packets.ErrorRefusedNotAuthorised):
		return domain.AuthDenied, true
	default:
		return domain.AuthNotDetermined, false
	}
}

// StartUpdates subscribes to the location topic
func (c *Capability) StartUpdates() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.closed {
		return
	}
	c.started = true
	if c.client != nil {
		c.subscribe(c.client)
	}
}

// subscribe must be called with c.mu held
func (c *Capability) subscribe(client paho.Client) {
	topic := c.config.Topic
	token := client.Subscribe(topic, subscribeQoS, func(_ paho.Client, msg paho.Message) {
		c.onMessage(msg.Payload())
	})
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if token.WaitTimeout(connectTimeout) && token.Error() == nil {
			slog.Debug("subscribed to location topic", "topic", topic)
			return
		}
		err := token.Error()
		if err == nil {
			err = errors.New("timeout")
		}
		c.dispatch(ports.DeliveryFailed{Message: fmt.Sprintf("subscribing to %s: %v", topic, err)})
	}()
}

func (c *Capability) onConnect(client paho.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Clean sessions drop subscriptions, so a reconnect has to renew them.
	if c.started && !c.closed && c.client != nil {
		c.subscribe(client)
	}
}

func (c *Capability) onConnectionLost(_ paho.Client, err error) {
	slog.Warn("MQTT connection lost", "broker", c.config.Broker, "error", err)
	c.dispatch(ports.DeliveryFailed{Message: "connection lost: " + err.Error()})
}

func (c *Capability) onMessage(payload []byte) {
	fix, ok, err := ParseLocation(payload)
	switch {
	case err != nil:
		c.dispatch(ports.DeliveryFailed{Message: err.Error()})
	case ok:
		c.dispatch(ports.FixesDelivered{Fixes: []domain.Fix{fix}})
	}
}

// dispatch blocks until ev is queued or the capability closes
func (c *Capability) dispatch(ev ports.LocationEvent) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *Capability) Events() <-chan ports.LocationEvent {
	return c.events
}

// Close disconnects from the broker and closes the event channel
func (c *Capability) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	client := c.client
	c.mu.Unlock()

	if client != nil {
		client.Disconnect(disconnectWait)
	}
	c.wg.Wait()
	close(c.events)
	return nil
}

// ownTracksLocation is the subset of the OwnTracks location message we use
type ownTracksLocation struct {
	Type      string   `json:"_type"`
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lon"`
	Accuracy  float64  `json:"acc"`
	Timestamp int64    `json:"tst"`
}

// ParseLocation decodes an OwnTracks payload. Messages of other types
// (transition, waypoint, lwt) return ok == false without error.
func ParseLocation(payload []byte) (domain.Fix, bool, error) {
	var msg ownTracksLocation
	if err := json.Unmarshal(payload, &msg); err != nil {
		return domain.Fix{}, false, fmt.Errorf("decoding location message: %w", err)
	}
	if msg.Type != "location" {
		return domain.Fix{}, false, nil
	}
	if msg.Latitude == nil || msg.Longitude == nil {
		return domain.Fix{}, false, errors.New("location message without coordinates")
	}

	fix := domain.Fix{
		Latitude:           *msg.Latitude,
		Longitude:          *msg.Longitude,
		HorizontalAccuracy: msg.Accuracy,
		Timestamp:          time.Unix(msg.Timestamp, 0).UTC(),
	}
	if msg.Timestamp == 0 {
		fix.Timestamp = time.Now().UTC()
	}
	if !fix.Valid() {
		return domain.Fix{}, false, fmt.Errorf("invalid location %s", fix)
	}
	return fix, true, nil
}
