package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/shipliyo/smsgate/domains/health"
	"github.com/shipliyo/smsgate/pkg/msgworker"
	"github.com/sirupsen/logrus"
)

// Pinger is anything with a liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthKey struct {
	entityType health.EntityType
	entityID   string
}

type healthService struct {
	store  Pinger
	valkey Pinger
	pool   *msgworker.Pool

	mu             sync.RWMutex
	records        map[healthKey]health.HealthRecord
	storeAvailable atomic.Bool
	now            func() time.Time
}

// NewHealthService tracks the message store and, when non-nil, Valkey and the dispatch pool.
func NewHealthService(store Pinger, valkey Pinger, pool *msgworker.Pool) health.IHealthUsecase {
	s := &healthService{
		store:   store,
		valkey:  valkey,
		pool:    pool,
		records: make(map[healthKey]health.HealthRecord),
		now:     time.Now,
	}
	s.storeAvailable.Store(true)
	return s
}

func (s *healthService) GetStatus(_ context.Context) ([]health.HealthRecord, error) {
	s.mu.RLock()
	records := make([]health.HealthRecord, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, s.withAgo(r))
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].EntityType != records[j].EntityType {
			return records[i].EntityType < records[j].EntityType
		}
		return records[i].EntityID < records[j].EntityID
	})
	return records, nil
}

func (s *healthService) GetEntityStatus(_ context.Context, entityType health.EntityType, entityID string) (health.HealthRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[healthKey{entityType, entityID}]
	if !ok {
		return health.HealthRecord{
			EntityType: entityType,
			EntityID:   entityID,
			Status:     health.StatusUnknown,
		}, nil
	}
	return s.withAgo(r), nil
}

func (s *healthService) upsertStatus(r health.HealthRecord) health.HealthRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := healthKey{r.EntityType, r.EntityID}
	existing, ok := s.records[key]
	if ok {
		r.ID = existing.ID
		r.LastSuccess = existing.LastSuccess
	} else {
		r.ID = uuid.NewString()
	}

	now := s.now()
	r.LastChecked = now
	if r.Status == health.StatusOk {
		r.LastSuccess = &now
	}
	s.records[key] = r
	return s.withAgo(r)
}

func (s *healthService) withAgo(r health.HealthRecord) health.HealthRecord {
	if r.LastSuccess != nil {
		r.LastSuccessAgo = humanize.RelTime(*r.LastSuccess, r.LastChecked, "ago", "from now")
	}
	return r
}

func (s *healthService) CheckStore(ctx context.Context) (health.HealthRecord, error) {
	record := health.HealthRecord{
		EntityType: health.EntityStore,
		EntityID:   "primary",
		Status:     health.StatusOk,
	}

	if err := s.store.Ping(ctx); err != nil {
		record.Status = health.StatusError
		record.LastMessage = err.Error()
	} else {
		record.LastMessage = "Connection successful"
	}

	s.storeAvailable.Store(record.Status != health.StatusError)
	return s.upsertStatus(record), nil
}

func (s *healthService) checkValkey(ctx context.Context) health.HealthRecord {
	record := health.HealthRecord{
		EntityType: health.EntityValkey,
		EntityID:   "primary",
		Status:     health.StatusOk,
	}

	if err := s.valkey.Ping(ctx); err != nil {
		record.Status = health.StatusError
		record.LastMessage = err.Error()
	} else {
		record.LastMessage = "PING ok"
	}

	return s.upsertStatus(record)
}

func (s *healthService) checkDispatch() health.HealthRecord {
	stats := s.pool.GetStats()
	record := health.HealthRecord{
		EntityType: health.EntityDispatch,
		EntityID:   "sms",
		Status:     health.StatusOk,
		LastMessage: fmt.Sprintf("%s jobs processed, %s dropped, %s failed",
			humanize.Comma(stats.TotalProcessed),
			humanize.Comma(stats.TotalDropped),
			humanize.Comma(stats.TotalErrors),
		),
	}
	return s.upsertStatus(record)
}

// ReportFailure marks the entity record as failing. Store availability only
// follows CheckStore.
func (s *healthService) ReportFailure(_ context.Context, entityType health.EntityType, entityID string, message string) {
	s.upsertStatus(health.HealthRecord{
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      health.StatusError,
		LastMessage: message,
	})
}

func (s *healthService) StoreAvailable() bool {
	return s.storeAvailable.Load()
}

func (s *healthService) CheckAll(ctx context.Context) ([]health.HealthRecord, error) {
	var results []health.HealthRecord

	res, _ := s.CheckStore(ctx)
	results = append(results, res)

	if s.valkey != nil {
		results = append(results, s.checkValkey(ctx))
	}
	if s.pool != nil {
		results = append(results, s.checkDispatch())
	}

	return results, nil
}

func (s *healthService) StartPeriodicChecks(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	logrus.Infof("[HEALTH] starting periodic health checks loop (interval: %s)", interval)
	ticker := time.NewTicker(interval)

	go func() {
		logrus.Info("[HEALTH] performing initial health check")
		s.CheckAll(ctx)
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logrus.Debug("[HEALTH] performing scheduled health check")
				records, _ := s.CheckAll(ctx)
				for _, r := range records {
					if r.Status == health.StatusError {
						logrus.Warnf("[HEALTH] %s/%s is failing: %s", r.EntityType, r.EntityID, r.LastMessage)
					}
				}
			}
		}
	}()
}
