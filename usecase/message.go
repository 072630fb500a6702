package usecase

import (
	"context"

	domainMessage "github.com/shipliyo/smsgate/domains/message"
	pkgError "github.com/shipliyo/smsgate/pkg/error"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

type serviceMessage struct {
	repo domainMessage.IMessageRepository
}

func NewMessageService(repo domainMessage.IMessageRepository) domainMessage.IMessageUsecase {
	return &serviceMessage{repo: repo}
}

// Recent returns the newest stored messages. A zero limit means the default;
// the limit is capped.
func (service serviceMessage) Recent(ctx context.Context, limit int) ([]domainMessage.InboundMessage, error) {
	switch {
	case limit < 0:
		return nil, pkgError.ValidationError("limit must not be negative")
	case limit == 0:
		limit = defaultRecentLimit
	case limit > maxRecentLimit:
		limit = maxRecentLimit
	}

	messages, err := service.repo.Recent(ctx, limit)
	if err != nil {
		return nil, pkgError.StorageUnavailableError{Err: err}
	}
	return messages, nil
}
