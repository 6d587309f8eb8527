package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrides/openrides/internal/domain/request"
	"github.com/openrides/openrides/internal/service/ledger"
	"github.com/openrides/openrides/internal/service/pricing"
	"github.com/openrides/openrides/internal/store/memory"
	"github.com/openrides/openrides/pkg/logger"
	"github.com/openrides/openrides/pkg/monitoring"
)

func TestSweepExpiresStaleRequests(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	stale := &request.ServiceRequest{
		ID:          uuid.New(),
		PassengerID: uuid.New(),
		Status:      request.StatusOpen,
		ExpiresAt:   time.Now().Add(-time.Minute),
	}
	require.NoError(t, st.Requests().Create(ctx, stale))

	mon, _ := monitoring.New(monitoring.Config{})
	l := ledger.NewService(st, pricing.NewService(pricing.DefaultConfig()), logger.NewNop(), mon, 3*time.Minute)
	s := New(l, logger.NewNop(), mon, time.Minute)

	s.Sweep(ctx)

	got, err := st.Requests().Get(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusExpired, got.Status)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	st := memory.New()
	mon, _ := monitoring.New(monitoring.Config{})
	l := ledger.NewService(st, pricing.NewService(pricing.DefaultConfig()), logger.NewNop(), mon, 3*time.Minute)
	s := New(l, logger.NewNop(), mon, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}
