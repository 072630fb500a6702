package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shipliyo/smsgate/domains/health"
	"github.com/shipliyo/smsgate/pkg/lang"
	"github.com/shipliyo/smsgate/pkg/msgworker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type togglePinger struct{ err error }

func (p *togglePinger) Ping(context.Context) error { return p.err }

func TestHealth_StoreAvailability(t *testing.T) {
	store := &togglePinger{}
	svc := NewHealthService(store, nil, nil)
	ctx := context.Background()

	assert.True(t, svc.StoreAvailable(), "available before the first check")

	store.err = errors.New("dial tcp: connection refused")
	record, err := svc.CheckStore(ctx)
	require.NoError(t, err)
	assert.Equal(t, health.StatusError, record.Status)
	assert.False(t, svc.StoreAvailable())

	store.err = nil
	record, err = svc.CheckStore(ctx)
	require.NoError(t, err)
	assert.Equal(t, health.StatusOk, record.Status)
	assert.NotNil(t, record.LastSuccess)
	assert.True(t, svc.StoreAvailable())
}

func TestHealth_ReportFailureKeepsRecordID(t *testing.T) {
	svc := NewHealthService(&togglePinger{}, nil, nil)
	ctx := context.Background()

	first, _ := svc.CheckStore(ctx)
	svc.ReportFailure(ctx, health.EntityStore, "primary", "query timeout")

	got, err := svc.GetEntityStatus(ctx, health.EntityStore, "primary")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, health.StatusError, got.Status)
	assert.Equal(t, "query timeout", got.LastMessage)
	require.NotNil(t, got.LastSuccess, "last success survives a failure")
	assert.NotEmpty(t, got.LastSuccessAgo)
	assert.True(t, svc.StoreAvailable(), "only a failed ping marks the store unavailable")
}

func TestHealth_LookupFailureLeavesChatAvailable(t *testing.T) {
	svc := NewHealthService(&togglePinger{}, nil, nil)
	d := newTestDialogue(t, failingRepo{}, WithHealthReporter(svc))

	reply := converse(t, d, "trendyol", lang.Turkish)
	assert.False(t, reply.Success)

	got, err := svc.GetEntityStatus(context.Background(), health.EntityStore, "primary")
	require.NoError(t, err)
	assert.Equal(t, health.StatusError, got.Status)
	assert.Equal(t, errStoreDown.Error(), got.LastMessage)
	assert.True(t, svc.StoreAvailable())
}

func TestHealth_UnknownEntity(t *testing.T) {
	svc := NewHealthService(&togglePinger{}, nil, nil)

	got, err := svc.GetEntityStatus(context.Background(), health.EntityValkey, "primary")
	require.NoError(t, err)
	assert.Equal(t, health.StatusUnknown, got.Status)
}

func TestHealth_CheckAll(t *testing.T) {
	pool := msgworker.NewPool(1, 1)
	svc := NewHealthService(&togglePinger{}, &togglePinger{err: errors.New("NOAUTH")}, pool)

	records, err := svc.CheckAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	status, err := svc.GetStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, status, 3)
	assert.Equal(t, health.EntityDispatch, status[0].EntityType)
	assert.Equal(t, "0 jobs processed, 0 dropped, 0 failed", status[0].LastMessage)
	assert.Equal(t, health.EntityStore, status[1].EntityType)
	assert.Equal(t, health.EntityValkey, status[2].EntityType)
	assert.Equal(t, health.StatusError, status[2].Status)
	assert.True(t, svc.StoreAvailable())
}

func TestHealth_PeriodicChecksStopWithContext(t *testing.T) {
	store := &togglePinger{err: errors.New("down")}
	svc := NewHealthService(store, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc.StartPeriodicChecks(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool { return !svc.StoreAvailable() }, time.Second, 5*time.Millisecond)
}
