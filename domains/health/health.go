package health

import (
	"context"
	"time"
)

type EntityType string

const (
	EntityStore    EntityType = "MESSAGE_STORE"
	EntityValkey   EntityType = "VALKEY"
	EntityDispatch EntityType = "DISPATCH_POOL"
)

type Status string

const (
	StatusOk      Status = "OK"
	StatusError   Status = "ERROR"
	StatusUnknown Status = "UNKNOWN"
)

type HealthRecord struct {
	ID          string     `json:"id"`
	EntityType  EntityType `json:"entity_type"`
	EntityID    string     `json:"entity_id"`
	Status      Status     `json:"status"`
	LastMessage string     `json:"last_message"`
	LastChecked time.Time  `json:"last_checked"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	// LastSuccessAgo is LastSuccess rendered relative to LastChecked.
	LastSuccessAgo string `json:"last_success_ago,omitempty"`
}

type IHealthUsecase interface {
	GetStatus(ctx context.Context) ([]HealthRecord, error)
	GetEntityStatus(ctx context.Context, entityType EntityType, entityID string) (HealthRecord, error)
	CheckStore(ctx context.Context) (HealthRecord, error)
	CheckAll(ctx context.Context) ([]HealthRecord, error)
	// ReportFailure records an error observed outside a scheduled check.
	ReportFailure(ctx context.Context, entityType EntityType, entityID string, message string)
	// StoreAvailable is false after a failed store check until the next successful one.
	StoreAvailable() bool
	StartPeriodicChecks(ctx context.Context, interval time.Duration)
}
