package ingest

import (
	"context"
	"time"

	"github.com/shipliyo/smsgate/domains/message"
)

type Status string

const (
	StatusAccepted  Status = "accepted"
	StatusDuplicate Status = "duplicate"
	StatusRejected  Status = "rejected"
)

type Reason string

const (
	ReasonInvalidInput       Reason = "invalid_input"
	ReasonRateLimited        Reason = "rate_limited"
	ReasonStorageUnavailable Reason = "storage_unavailable"
)

// IngestRequest is the payload posted by the SMS gateway app.
type IngestRequest struct {
	Sender          string `json:"from"`
	Body            string `json:"body"`
	DeviceID        string `json:"deviceId"`
	ClientTimestamp string `json:"timestamp"`

	ClientID       string         `json:"-"`
	Source         message.Source `json:"-"`
	SkipPhoneCheck bool           `json:"-"`
}

type IngestResult struct {
	Status     Status        `json:"status"`
	Reason     Reason        `json:"reason,omitempty"`
	StoredID   string        `json:"sms_id,omitempty"`
	RetryAfter time.Duration `json:"-"`
}

// Accepted and Duplicate are both success outcomes for the caller.
func (r IngestResult) Succeeded() bool {
	return r.Status == StatusAccepted || r.Status == StatusDuplicate
}

type IIngestUsecase interface {
	// Ingest runs validation, rate limiting, dedup and persistence. A rejected
	// result is always paired with a pkg/error GenericError.
	Ingest(ctx context.Context, request IngestRequest) (IngestResult, error)
}
