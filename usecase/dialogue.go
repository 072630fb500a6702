package usecase

import (
	"context"
	"strings"
	"time"

	domainDialogue "github.com/shipliyo/smsgate/domains/dialogue"
	domainHealth "github.com/shipliyo/smsgate/domains/health"
	domainMessage "github.com/shipliyo/smsgate/domains/message"
	"github.com/shipliyo/smsgate/pkg/catalog"
	pkgError "github.com/shipliyo/smsgate/pkg/error"
	"github.com/shipliyo/smsgate/pkg/lang"
	"github.com/shipliyo/smsgate/pkg/smsparser"
	"github.com/shipliyo/smsgate/validations"
	"github.com/sirupsen/logrus"
)

// DialogueSettings tunes the store lookups of the router.
type DialogueSettings struct {
	SiteWindow      time.Duration
	SiteLimit       int
	ReferenceWindow time.Duration
	DefaultLanguage lang.Language
}

type serviceDialogue struct {
	repo     domainMessage.IMessageRepository
	parser   *smsparser.Parser
	catalog  *catalog.Catalog
	health   domainHealth.IHealthUsecase
	settings DialogueSettings
	now      func() time.Time
}

type DialogueOption func(*serviceDialogue)

func WithDialogueClock(now func() time.Time) DialogueOption {
	return func(s *serviceDialogue) { s.now = now }
}

// WithHealthReporter forwards store lookup failures to the health service.
func WithHealthReporter(h domainHealth.IHealthUsecase) DialogueOption {
	return func(s *serviceDialogue) { s.health = h }
}

func NewDialogueService(repo domainMessage.IMessageRepository, parser *smsparser.Parser, cat *catalog.Catalog, settings DialogueSettings, opts ...DialogueOption) domainDialogue.IDialogueUsecase {
	if settings.SiteWindow <= 0 {
		settings.SiteWindow = 120 * time.Second
	}
	if settings.SiteLimit <= 0 {
		settings.SiteLimit = 10
	}
	if settings.ReferenceWindow <= 0 {
		settings.ReferenceWindow = 2 * time.Hour
	}
	if !lang.IsSupported(settings.DefaultLanguage) {
		settings.DefaultLanguage = lang.Default
	}

	s := &serviceDialogue{
		repo:     repo,
		parser:   parser,
		catalog:  cat,
		settings: settings,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceDialogue) Converse(ctx context.Context, request domainDialogue.ConverseRequest) (domainDialogue.Reply, error) {
	if err := validations.ValidateConverse(ctx, request); err != nil {
		return domainDialogue.Reply{}, err
	}
	return s.Respond(ctx, request.Utterance, request.Language), nil
}

// SMS bodies reach Respond from the dispatch worker after ingest validation.
func (s *serviceDialogue) Respond(ctx context.Context, utterance string, language lang.Language) domainDialogue.Reply {
	language = s.language(language)
	text := strings.ToLower(strings.TrimSpace(utterance))

	if text == "" {
		return s.mainMenu(language)
	}

	switch text {
	case domainDialogue.PayloadGetCode:
		return s.siteSelection(language)
	case domainDialogue.PayloadHelp:
		return s.help(language)
	case domainDialogue.PayloadGetAddress, domainDialogue.PayloadAddress:
		return s.addressPrompt(language)
	}
	if site := smsparser.Site(text); smsparser.IsMenuSite(site) {
		return s.siteQuery(ctx, site, s.settings.SiteWindow, language)
	}

	switch detectIntent(text, language) {
	case intentGetCode:
		return s.siteSelection(language)
	case intentGetAddress:
		return s.addressPrompt(language)
	case intentHelp:
		return s.help(language)
	}

	if looksLikeReference(text) {
		return s.referenceQuery(ctx, text, language)
	}
	return s.mainMenu(language)
}

func (s *serviceDialogue) SiteQuery(ctx context.Context, site smsparser.Site, window time.Duration, language lang.Language) (domainDialogue.Reply, error) {
	if !smsparser.IsMenuSite(site) {
		return domainDialogue.Reply{}, pkgError.ValidationError("site must be one of trendyol, hepsiburada, n11, other")
	}
	if window <= 0 {
		window = s.settings.SiteWindow
	}
	return s.siteQuery(ctx, site, window, s.language(language)), nil
}

func (s *serviceDialogue) language(l lang.Language) lang.Language {
	if lang.IsSupported(l) {
		return l
	}
	return s.settings.DefaultLanguage
}

func (s *serviceDialogue) mainMenu(l lang.Language) domainDialogue.Reply {
	return domainDialogue.BubbleMenu(s.catalog.Text(catalog.KeyWelcome, l, nil), s.catalog.Menu(catalog.MenuMain, l))
}

func (s *serviceDialogue) siteSelection(l lang.Language) domainDialogue.Reply {
	return domainDialogue.BubbleMenu(s.catalog.Text(catalog.KeyChooseSite, l, nil), s.catalog.Menu(catalog.MenuSites, l))
}

func (s *serviceDialogue) help(l lang.Language) domainDialogue.Reply {
	return domainDialogue.DirectText(true, s.catalog.Text(catalog.KeyHelpResponse, l, nil), domainDialogue.SourceStatic)
}

func (s *serviceDialogue) addressPrompt(l lang.Language) domainDialogue.Reply {
	return domainDialogue.AddressPrompt(s.catalog.Text(catalog.KeyAddressPrompt, l, nil))
}

// lookupResult separates "nothing matched" from "the store failed".
type lookupResult struct {
	messages []domainMessage.InboundMessage
	err      error
}

func (r lookupResult) failed() bool { return r.err != nil }

func (s *serviceDialogue) lookup(ctx context.Context, filter domainMessage.Filter) lookupResult {
	messages, err := s.repo.Find(ctx, filter)
	if err != nil {
		logrus.WithError(err).Error("[DIALOGUE] message store lookup failed")
		if s.health != nil {
			s.health.ReportFailure(ctx, domainHealth.EntityStore, "primary", err.Error())
		}
		return lookupResult{err: err}
	}
	return lookupResult{messages: messages}
}

func (s *serviceDialogue) siteQuery(ctx context.Context, site smsparser.Site, window time.Duration, l lang.Language) domainDialogue.Reply {
	filter := domainMessage.Filter{
		Since: s.now().Add(-window),
		Limit: s.settings.SiteLimit,
	}
	if site == smsparser.SiteOther {
		filter.ExcludesAll = smsparser.OtherExclusions()
	} else {
		filter.ContainsAny = smsparser.QueryKeywords(site)
	}

	seconds := int(window / time.Second)
	result := s.lookup(ctx, filter)
	if result.failed() || len(result.messages) == 0 {
		source := domainDialogue.SourceStore
		if result.failed() {
			source = domainDialogue.SourceError
		}
		text := s.catalog.Text(catalog.KeyNoRecentSMS, l, catalog.Params{"site": site.Title(), "seconds": seconds})
		return domainDialogue.DirectText(false, text, source)
	}

	if len(result.messages) == 1 {
		return s.resolved(result.messages[0], l)
	}

	items := make([]domainDialogue.MessageSummary, len(result.messages))
	for i, m := range result.messages {
		parsed := s.parser.Parse(m.Body, l)
		items[i] = domainDialogue.MessageSummary{
			Site:       parsed.Site.Title(),
			Code:       s.codeText(parsed, l),
			Raw:        parsed.Raw,
			ReceivedAt: m.ReceivedAt,
		}
	}
	text := s.catalog.Text(catalog.KeyMultipleSMSFound, l, catalog.Params{"count": len(items), "seconds": seconds})
	return domainDialogue.List(text, items)
}

func (s *serviceDialogue) referenceQuery(ctx context.Context, reference string, l lang.Language) domainDialogue.Reply {
	result := s.lookup(ctx, domainMessage.Filter{
		Since:       s.now().Add(-s.settings.ReferenceWindow),
		ContainsAny: []string{reference},
		Limit:       1,
	})
	if result.failed() || len(result.messages) == 0 {
		source := domainDialogue.SourceStore
		if result.failed() {
			source = domainDialogue.SourceError
		}
		return domainDialogue.DirectText(false, s.catalog.Text(catalog.KeyNoReference, l, nil), source)
	}
	return s.resolved(result.messages[0], l)
}

func (s *serviceDialogue) resolved(m domainMessage.InboundMessage, l lang.Language) domainDialogue.Reply {
	parsed := s.parser.Parse(m.Body, l)
	text := s.catalog.Text(catalog.KeyReferenceFound, l, catalog.Params{
		"site": parsed.Site.Title(),
		"code": s.codeText(parsed, l),
	})
	return domainDialogue.DirectResolved(text, parsed)
}

func (s *serviceDialogue) codeText(parsed smsparser.ParsedMessage, l lang.Language) string {
	if code := parsed.Code(); code != "" {
		return code
	}
	return s.catalog.Text(catalog.KeyCodeNotFound, l, nil)
}
