package application

import (
	"context"
	"errors"
	"time"

	"geolog/internal/domain"
	"geolog/internal/ports"
)

// ErrLoopStopped is returned by Do after Run has returned
var ErrLoopStopped = errors.New("session loop stopped")

// Session is the state owned by a Loop
type Session struct {
	Provider *LocationProvider
	Log      *domain.SessionLog
}

// NewSession wires a provider for capability into a fresh log
func NewSession(capability ports.LocationCapability, clock func() time.Time) *Session {
	provider := NewLocationProvider(capability)
	return &Session{
		Provider: provider,
		Log:      domain.NewSessionLog(provider, clock),
	}
}

type request struct {
	fn   func(*Session)
	done chan struct{}
}

// Loop serializes every access to a Session onto the goroutine running Run.
// Location events and callers' closures are applied one at a time.
type Loop struct {
	session  *Session
	requests chan request
	stopped  chan struct{}
}

// NewLoop creates a loop for session; call Run to start it
func NewLoop(session *Session) *Loop {
	return &Loop{
		session:  session,
		requests: make(chan request),
		stopped:  make(chan struct{}),
	}
}

// Run requests location updates and processes events and requests until ctx
// is done.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.stopped)

	l.session.Provider.RequestStart()
	events := l.session.Provider.Events()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			l.session.Provider.Handle(ev)
		case req := <-l.requests:
			req.fn(l.session)
			close(req.done)
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish
func (l *Loop) Do(ctx context.Context, fn func(*Session)) error {
	req := request{fn: fn, done: make(chan struct{})}
	select {
	case l.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrLoopStopped
	}
	<-req.done
	return nil
}

// WaitForFix blocks until the provider knows a fix. It fails with
// ErrPermissionDenied when the capability reports a denial.
func (l *Loop) WaitForFix(ctx context.Context) (domain.Fix, error) {
	updates := make(chan Notification, 8)
	var (
		fix         domain.Fix
		ok          bool
		denied      bool
		unsubscribe func()
	)
	err := l.Do(ctx, func(s *Session) {
		fix, ok = s.Provider.CurrentFix()
		auth := s.Provider.Authorization()
		denied = auth == domain.AuthDenied || auth == domain.AuthRestricted
		if ok || denied {
			return
		}
		unsubscribe = s.Provider.Subscribe(func(n Notification) {
			if _, failed := n.(Failed); failed {
				return
			}
			select {
			case updates <- n:
			default:
			}
		})
	})
	if err != nil {
		return domain.Fix{}, err
	}
	if ok {
		return fix, nil
	}
	if denied {
		return domain.Fix{}, ErrPermissionDenied
	}
	defer func() {
		_ = l.Do(context.Background(), func(*Session) { unsubscribe() })
	}()

	for {
		select {
		case <-ctx.Done():
			return domain.Fix{}, ctx.Err()
		case <-l.stopped:
			return domain.Fix{}, ErrLoopStopped
		case n := <-updates:
			switch n := n.(type) {
			case LocationUpdated:
				return n.Fix, nil
			case AuthChanged:
				if n.State == domain.AuthDenied || n.State == domain.AuthRestricted {
					return domain.Fix{}, ErrPermissionDenied
				}
			}
		}
	}
}
