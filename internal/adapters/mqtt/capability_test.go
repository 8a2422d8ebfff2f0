package mqtt

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/eclipse/paho.mqtt.golang/packets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"geolog/internal/domain"
	"geolog/internal/ports"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantOK  bool
		wantErr bool
		want    domain.Fix
	}{
		{
			name:    "location message",
			payload: `{"_type":"location","lat":25.03,"lon":121.56,"acc":8,"tst":1714552260,"batt":80}`,
			wantOK:  true,
			want: domain.Fix{
				Latitude:           25.03,
				Longitude:          121.56,
				HorizontalAccuracy: 8,
				Timestamp:          time.Date(2024, 5, 1, 8, 31, 0, 0, time.UTC),
			},
		},
		{
			name:    "transition is ignored",
			payload: `{"_type":"transition","event":"enter","desc":"park"}`,
		},
		{
			name:    "last will is ignored",
			payload: `{"_type":"lwt","tst":1714552260}`,
		},
		{
			name:    "not json",
			payload: `lat=25.03`,
			wantErr: true,
		},
		{
			name:    "missing coordinates",
			payload: `{"_type":"location","acc":8}`,
			wantErr: true,
		},
		{
			name:    "latitude out of range",
			payload: `{"_type":"location","lat":95,"lon":10,"acc":8,"tst":1714552260}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix, ok, err := ParseLocation([]byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, fix)
			}
		})
	}
}

func TestParseLocation_MissingTimestampUsesNow(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	fix, ok, err := ParseLocation([]byte(`{"_type":"location","lat":1,"lon":2}`))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, fix.Timestamp.After(before))
}

func TestClassifyConnectError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantState   domain.AuthorizationState
		wantRefused bool
	}{
		{
			name:        "bad credentials",
			err:         packets.ErrorRefusedBadUsernameOrPassword,
			wantState:   domain.AuthDenied,
			wantRefused: true,
		},
		{
			name:        "not authorised, wrapped",
			err:         fmt.Errorf("connack: %w", packets.ErrorRefusedNotAuthorised),
			wantState:   domain.AuthDenied,
			wantRefused: true,
		},
		{
			name:      "server unavailable",
			err:       packets.ErrorRefusedServerUnavailable,
			wantState: domain.AuthNotDetermined,
		},
		{
			name:      "network",
			err:       errors.New("dial tcp 127.0.0.1:1883: connect: connection refused"),
			wantState: domain.AuthNotDetermined,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, refused := classifyConnectError(tt.err)
			assert.Equal(t, tt.wantState, state)
			assert.Equal(t, tt.wantRefused, refused)
		})
	}
}

func TestCapability_MessagesBecomeEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := New(Config{Broker: "tcp://localhost:1883", Topic: "owntracks/field/phone"})
	defer c.Close()

	assert.Equal(t, domain.AuthNotDetermined, c.AuthorizationState())

	c.onMessage([]byte(`{"_type":"location","lat":48.85,"lon":2.35,"acc":12,"tst":1714552260}`))
	c.onMessage([]byte(`{"_type":"waypoint"}`))
	c.onMessage([]byte(`{`))

	delivered, ok := (<-c.Events()).(ports.FixesDelivered)
	require.True(t, ok)
	require.Len(t, delivered.Fixes, 1)
	assert.Equal(t, 48.85, delivered.Fixes[0].Latitude)

	_, ok = (<-c.Events()).(ports.DeliveryFailed)
	assert.True(t, ok)
}

func TestCapability_CloseStopsDelivery(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := New(Config{Broker: "tcp://localhost:1883", Topic: "owntracks/#"})
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, open := <-c.Events()
	assert.False(t, open)

	c.RequestPermission()
	c.StartUpdates()
	c.onMessage([]byte(`{"_type":"location","lat":1,"lon":2}`))
}

func TestCapability_ClientIDDefaults(t *testing.T) {
	c := New(Config{ClientID: "field-laptop"})
	assert.Equal(t, "field-laptop", c.clientID())

	c = New(Config{})
	assert.Contains(t, c.clientID(), "geolog-")
}

// fakeToken completes when done is closed
type fakeToken struct {
	done chan struct{}
	err  error
}

func (t *fakeToken) Wait() bool {
	<-t.done
	return true
}

func (t *fakeToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *fakeToken) Done() <-chan struct{} { return t.done }

func (t *fakeToken) Error() error { return t.err }

// fakeClient answers Connect with token and records Disconnect
type fakeClient struct {
	paho.Client
	token        *fakeToken
	connected    atomic.Bool
	disconnected atomic.Bool
}

func (f *fakeClient) Connect() paho.Token {
	go func() {
		<-f.token.done
		f.connected.Store(f.token.err == nil)
	}()
	return f.token
}

func (f *fakeClient) IsConnected() bool { return f.connected.Load() }

func (f *fakeClient) Disconnect(uint) {
	f.connected.Store(false)
	f.disconnected.Store(true)
}

func TestCapability_RequestPermissionConnectsOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	var (
		created atomic.Int32
		client  = &fakeClient{token: &fakeToken{done: release}}
	)
	c := New(Config{Broker: "tcp://localhost:1883", Topic: "owntracks/#", ClientID: "field-laptop"},
		WithClientFactory(func(*paho.ClientOptions) paho.Client {
			created.Add(1)
			return client
		}))

	c.RequestPermission()
	c.RequestPermission()
	close(release)

	assert.Equal(t, ports.AuthorizationChanged{State: domain.AuthWhenInUse}, <-c.Events())

	c.RequestPermission()
	require.NoError(t, c.Close())

	assert.Equal(t, int32(1), created.Load())
	assert.True(t, client.disconnected.Load())
}

func TestCapability_RequestPermissionRetriesAfterFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	done := make(chan struct{})
	close(done)
	var created atomic.Int32
	c := New(Config{Broker: "tcp://localhost:1883", Topic: "owntracks/#"},
		WithClientFactory(func(*paho.ClientOptions) paho.Client {
			created.Add(1)
			return &fakeClient{token: &fakeToken{done: done, err: errors.New("connection refused")}}
		}))
	defer c.Close()

	c.RequestPermission()
	failed, ok := (<-c.Events()).(ports.DeliveryFailed)
	require.True(t, ok)
	assert.Contains(t, failed.Message, "connection refused")

	c.RequestPermission()
	_, ok = (<-c.Events()).(ports.DeliveryFailed)
	require.True(t, ok)
	assert.Equal(t, int32(2), created.Load())
}
