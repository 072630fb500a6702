package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	domainMessage "github.com/shipliyo/smsgate/domains/message"
)

// MessageMemoryRepository keeps messages in process memory. Used with
// DB_DRIVER=memory and in tests.
type MessageMemoryRepository struct {
	mu       sync.RWMutex
	messages []domainMessage.InboundMessage
	index    map[string]int
}

func NewMessageMemoryRepository() *MessageMemoryRepository {
	return &MessageMemoryRepository{index: make(map[string]int)}
}

func (r *MessageMemoryRepository) InitSchema(_ context.Context) error {
	return nil
}

func (r *MessageMemoryRepository) Insert(_ context.Context, msg *domainMessage.InboundMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.index[msg.ID] = len(r.messages)
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *MessageMemoryRepository) MarkProcessed(_ context.Context, id string, botReply *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return domainMessage.ErrMessageNotFound
	}
	r.messages[i].Processed = true
	r.messages[i].BotReply = botReply
	return nil
}

func (r *MessageMemoryRepository) Find(_ context.Context, filter domainMessage.Filter) ([]domainMessage.InboundMessage, error) {
	r.mu.RLock()
	out := make([]domainMessage.InboundMessage, 0)
	for _, m := range r.messages {
		if filter.Matches(m, strings.ToLower(m.Body)) {
			out = append(out, m)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReceivedAt.After(out[j].ReceivedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *MessageMemoryRepository) Recent(ctx context.Context, limit int) ([]domainMessage.InboundMessage, error) {
	return r.Find(ctx, domainMessage.Filter{Limit: limit})
}

func (r *MessageMemoryRepository) Ping(_ context.Context) error {
	return nil
}

func (r *MessageMemoryRepository) Close(_ context.Context) error {
	return nil
}

// Len returns the number of stored messages.
func (r *MessageMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.messages)
}
