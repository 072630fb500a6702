package usecase

import (
	"context"
	"strings"
	"time"

	domainDialogue "github.com/shipliyo/smsgate/domains/dialogue"
	domainIngest "github.com/shipliyo/smsgate/domains/ingest"
	domainMessage "github.com/shipliyo/smsgate/domains/message"
	"github.com/shipliyo/smsgate/infrastructure/notifier"
	"github.com/shipliyo/smsgate/pkg/dedup"
	pkgError "github.com/shipliyo/smsgate/pkg/error"
	"github.com/shipliyo/smsgate/pkg/msgworker"
	"github.com/shipliyo/smsgate/pkg/ratelimit"
	"github.com/shipliyo/smsgate/pkg/smsparser"
	"github.com/shipliyo/smsgate/validations"
	"github.com/sirupsen/logrus"
)

// Dispatcher accepts post-ingestion jobs without blocking.
type Dispatcher interface {
	TryDispatch(job msgworker.Job) bool
}

// IngestSettings carries the validation limits of the pipeline.
type IngestSettings struct {
	MaxBodyLength int
	ValidatePhone bool
}

type serviceIngest struct {
	repo       domainMessage.IMessageRepository
	limiter    ratelimit.Limiter
	dedup      dedup.Cache
	dispatcher Dispatcher
	dialogue   domainDialogue.IDialogueUsecase
	parser     *smsparser.Parser
	notifier   notifier.Notifier
	settings   IngestSettings
	now        func() time.Time
}

type IngestOption func(*serviceIngest)

func WithIngestClock(now func() time.Time) IngestOption {
	return func(s *serviceIngest) { s.now = now }
}

// WithNotifier sends the bot reply back to phone-number senders after dispatch.
func WithNotifier(n notifier.Notifier) IngestOption {
	return func(s *serviceIngest) { s.notifier = n }
}

func NewIngestService(
	repo domainMessage.IMessageRepository,
	limiter ratelimit.Limiter,
	cache dedup.Cache,
	dispatcher Dispatcher,
	dialogue domainDialogue.IDialogueUsecase,
	parser *smsparser.Parser,
	settings IngestSettings,
	opts ...IngestOption,
) domainIngest.IIngestUsecase {
	if settings.MaxBodyLength <= 0 {
		settings.MaxBodyLength = 1000
	}
	s := &serviceIngest{
		repo:       repo,
		limiter:    limiter,
		dedup:      cache,
		dispatcher: dispatcher,
		dialogue:   dialogue,
		parser:     parser,
		notifier:   notifier.Noop{},
		settings:   settings,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func rejected(reason domainIngest.Reason) domainIngest.IngestResult {
	return domainIngest.IngestResult{Status: domainIngest.StatusRejected, Reason: reason}
}

func (s *serviceIngest) Ingest(ctx context.Context, request domainIngest.IngestRequest) (domainIngest.IngestResult, error) {
	request.Sender = strings.TrimSpace(request.Sender)
	if strings.TrimSpace(request.DeviceID) == "" {
		request.DeviceID = domainMessage.UnknownDevice
	}
	if request.Source == "" {
		request.Source = domainMessage.SourceNewGateway
	}

	if err := validations.ValidateIngest(ctx, request, s.settings.MaxBodyLength, s.settings.ValidatePhone); err != nil {
		return rejected(domainIngest.ReasonInvalidInput), err
	}

	clientID := request.ClientID
	if clientID == "" {
		clientID = request.Sender
	}
	decision, err := s.limiter.Allow(ctx, clientID)
	if err != nil {
		// Fail open when the limiter backend is down.
		logrus.WithError(err).Warnf("[INGEST] rate limiter unavailable for %s", clientID)
	} else if !decision.Allowed {
		result := rejected(domainIngest.ReasonRateLimited)
		result.RetryAfter = decision.RetryAfter
		return result, pkgError.RateLimitedError{RetryAfter: decision.RetryAfter}
	}

	key := dedup.Key{Sender: request.Sender, Body: request.Body, ClientTimestamp: request.ClientTimestamp}
	duplicate, err := s.dedup.Claim(ctx, key)
	if err != nil {
		logrus.WithError(err).Warn("[INGEST] dedup cache unavailable, storing without duplicate check")
	}
	if duplicate {
		logrus.Debugf("[INGEST] duplicate delivery from %s ignored", request.Sender)
		return domainIngest.IngestResult{Status: domainIngest.StatusDuplicate}, nil
	}

	msg := &domainMessage.InboundMessage{
		Sender:          request.Sender,
		Body:            request.Body,
		ReceivedAt:      s.now().UTC(),
		DeviceID:        request.DeviceID,
		ClientTimestamp: request.ClientTimestamp,
		Source:          request.Source,
	}
	if err := s.repo.Insert(ctx, msg); err != nil {
		if relErr := s.dedup.Release(ctx, key); relErr != nil {
			logrus.WithError(relErr).Warn("[INGEST] failed to release dedup claim")
		}
		logrus.WithError(err).Errorf("[INGEST] failed to store SMS from %s", request.Sender)
		return rejected(domainIngest.ReasonStorageUnavailable), pkgError.StorageUnavailableError{Err: err}
	}

	logrus.Infof("[INGEST] stored SMS %s from %s (%s)", msg.ID, msg.Sender, msg.Source)

	stored := *msg
	if ok := s.dispatcher.TryDispatch(msgworker.Job{
		Key:     stored.Sender,
		Handler: func(ctx context.Context) error { return s.process(ctx, stored) },
	}); !ok {
		logrus.Warnf("[INGEST] dispatch queue full, SMS %s left unprocessed", stored.ID)
	}

	return domainIngest.IngestResult{Status: domainIngest.StatusAccepted, StoredID: stored.ID}, nil
}

// process runs the bot on a stored SMS, records the reply and optionally sends it back.
func (s *serviceIngest) process(ctx context.Context, msg domainMessage.InboundMessage) error {
	language := s.parser.DetectLanguage(msg.Body)
	reply := s.dialogue.Respond(ctx, msg.Body, language)

	text := reply.Text
	if err := s.repo.MarkProcessed(ctx, msg.ID, &text); err != nil {
		return err
	}
	logrus.Debugf("[DIALOGUE] SMS %s answered with %s reply (lang=%s, source=%s)", msg.ID, reply.Kind, language, reply.Source)

	if !notifier.Replyable(msg.Sender) {
		return nil
	}
	return s.notifier.Notify(ctx, msg.Sender, text)
}
