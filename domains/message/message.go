package message

import (
	"context"
	"errors"
	"time"
)

// Source tags the ingestion channel of a message.
type Source string

const (
	SourceNewGateway    Source = "new_gateway"
	SourceLegacyGateway Source = "legacy_gateway"
)

// UnknownDevice is stored when the gateway does not send a device id.
const UnknownDevice = "unknown"

type InboundMessage struct {
	ID              string    `json:"id"`
	Sender          string    `json:"from"`
	Body            string    `json:"body"`
	ReceivedAt      time.Time `json:"timestamp"`
	DeviceID        string    `json:"device_id"`
	ClientTimestamp string    `json:"client_timestamp,omitempty"`
	Processed       bool      `json:"processed"`
	Source          Source    `json:"source"`
	BotReply        *string   `json:"bot_reply,omitempty"`
}

// Filter selects stored messages. Text matching is a case-insensitive
// substring test on the body. Results are ordered newest first.
type Filter struct {
	Since       time.Time
	ContainsAny []string // at least one must occur; empty means no constraint
	ExcludesAll []string // none may occur
	Limit       int      // zero means no limit
}

// Matches applies the filter to one message in memory.
func (f Filter) Matches(m InboundMessage, lowerBody string) bool {
	if !f.Since.IsZero() && m.ReceivedAt.Before(f.Since) {
		return false
	}
	if len(f.ContainsAny) > 0 && !containsAny(lowerBody, f.ContainsAny) {
		return false
	}
	if containsAny(lowerBody, f.ExcludesAll) {
		return false
	}
	return true
}

var ErrMessageNotFound = errors.New("message not found")

// IMessageRepository is the message store port.
type IMessageRepository interface {
	InitSchema(ctx context.Context) error
	Insert(ctx context.Context, msg *InboundMessage) error
	MarkProcessed(ctx context.Context, id string, botReply *string) error
	Find(ctx context.Context, filter Filter) ([]InboundMessage, error)
	Recent(ctx context.Context, limit int) ([]InboundMessage, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type IMessageUsecase interface {
	Recent(ctx context.Context, limit int) ([]InboundMessage, error)
}
