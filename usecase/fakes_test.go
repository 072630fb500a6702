package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shipliyo/smsgate/domains/health"
	domainMessage "github.com/shipliyo/smsgate/domains/message"
	"github.com/shipliyo/smsgate/infrastructure/store"
	"github.com/shipliyo/smsgate/pkg/msgworker"
)

var (
	errStoreDown    = errors.New("connection refused")
	errNotifyFailed = errors.New("twilio: 21211 invalid 'To' phone number")
)

// failingRepo fails every operation.
type failingRepo struct{}

func (failingRepo) InitSchema(context.Context) error { return errStoreDown }
func (failingRepo) Insert(context.Context, *domainMessage.InboundMessage) error {
	return errStoreDown
}
func (failingRepo) MarkProcessed(context.Context, string, *string) error { return errStoreDown }
func (failingRepo) Find(context.Context, domainMessage.Filter) ([]domainMessage.InboundMessage, error) {
	return nil, errStoreDown
}
func (failingRepo) Recent(context.Context, int) ([]domainMessage.InboundMessage, error) {
	return nil, errStoreDown
}
func (failingRepo) Ping(context.Context) error  { return errStoreDown }
func (failingRepo) Close(context.Context) error { return nil }

// unmarkableRepo stores messages but cannot record the bot reply.
type unmarkableRepo struct {
	*store.MessageMemoryRepository
}

func (unmarkableRepo) MarkProcessed(context.Context, string, *string) error { return errStoreDown }

// inlineDispatcher runs jobs on the caller goroutine.
type inlineDispatcher struct {
	accept bool
	jobs   int
	errs   []error
}

func (d *inlineDispatcher) TryDispatch(job msgworker.Job) bool {
	if !d.accept {
		return false
	}
	d.jobs++
	if err := job.Handler(context.Background()); err != nil {
		d.errs = append(d.errs, err)
	}
	return true
}

type sentSMS struct{ to, body string }

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentSMS
	err  error
}

func (n *recordingNotifier) Name() string { return "recording" }

func (n *recordingNotifier) Notify(_ context.Context, to, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentSMS{to, body})
	return nil
}

type failureReport struct {
	entityType health.EntityType
	message    string
}

// recordingHealth captures ReportFailure calls.
type recordingHealth struct {
	failures []failureReport
}

func (h *recordingHealth) GetStatus(context.Context) ([]health.HealthRecord, error) { return nil, nil }
func (h *recordingHealth) GetEntityStatus(context.Context, health.EntityType, string) (health.HealthRecord, error) {
	return health.HealthRecord{}, nil
}
func (h *recordingHealth) CheckStore(context.Context) (health.HealthRecord, error) {
	return health.HealthRecord{}, nil
}
func (h *recordingHealth) CheckAll(context.Context) ([]health.HealthRecord, error) { return nil, nil }
func (h *recordingHealth) ReportFailure(_ context.Context, entityType health.EntityType, _ string, message string) {
	h.failures = append(h.failures, failureReport{entityType, message})
}
func (h *recordingHealth) StoreAvailable() bool                                { return true }
func (h *recordingHealth) StartPeriodicChecks(context.Context, time.Duration) {}

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }
