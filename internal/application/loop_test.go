package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"geolog/internal/adapters/static"
	"geolog/internal/domain"
	"geolog/internal/ports"
)

func startLoop(t *testing.T, capability ports.LocationCapability) (*Loop, context.CancelFunc) {
	t.Helper()
	loop := NewLoop(NewSession(capability, nil))
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		loop.Run(ctx)
	}()
	return loop, func() {
		cancel()
		wg.Wait()
	}
}

func TestLoop_StaticSourceDeliversFix(t *testing.T) {
	defer goleak.VerifyNone(t)

	capability := static.New(domain.Fix{Latitude: 25.03, Longitude: 121.56, HorizontalAccuracy: 5})
	defer capability.Close()
	loop, stop := startLoop(t, capability)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	fix, err := loop.WaitForFix(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25.03, fix.Latitude)

	var appended bool
	v := 350.0
	require.NoError(t, loop.Do(ctx, func(s *Session) {
		appended = s.Log.Append(domain.CategoryLight, &v, nil)
	}))
	assert.True(t, appended)
}

func TestLoop_WaitForFixDenied(t *testing.T) {
	defer goleak.VerifyNone(t)

	capability := static.NewScripted(domain.AuthNotDetermined, domain.AuthDenied)
	defer capability.Close()
	loop, stop := startLoop(t, capability)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := loop.WaitForFix(ctx)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestLoop_WaitForFixHonoursContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	capability := static.NewScripted(domain.AuthWhenInUse, domain.AuthWhenInUse)
	defer capability.Close()
	loop, stop := startLoop(t, capability)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := loop.WaitForFix(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoop_EventsFromOtherGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	capability := static.NewScripted(domain.AuthWhenInUse, domain.AuthWhenInUse)
	defer capability.Close()
	loop, stop := startLoop(t, capability)
	defer stop()

	go capability.Emit(ports.FixesDelivered{Fixes: []domain.Fix{{Latitude: 48.85, Longitude: 2.35}}})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	fix, err := loop.WaitForFix(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.35, fix.Longitude)
}

func TestLoop_DoAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	capability := static.NewScripted(domain.AuthWhenInUse, domain.AuthWhenInUse)
	defer capability.Close()
	loop, stop := startLoop(t, capability)
	stop()

	err := loop.Do(context.Background(), func(*Session) {})
	assert.True(t, errors.Is(err, ErrLoopStopped))
}
