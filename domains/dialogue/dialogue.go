package dialogue

import (
	"context"
	"time"

	"github.com/shipliyo/smsgate/pkg/lang"
	"github.com/shipliyo/smsgate/pkg/smsparser"
)

// Menu payloads understood by the router.
const (
	PayloadGetCode    = "get_code"
	PayloadHelp       = "help"
	PayloadGetAddress = "get_address"
	PayloadAddress    = "address"
)

type ConverseRequest struct {
	Utterance string        `json:"message" xml:"message"`
	SessionID string        `json:"session_id" xml:"session_id"`
	Language  lang.Language `json:"language" xml:"language"`
}

type IDialogueUsecase interface {
	// Converse answers one utterance. Store lookup failures never surface as
	// errors; the error return is reserved for invalid input.
	Converse(ctx context.Context, request ConverseRequest) (Reply, error)
	// Respond routes an utterance without input validation. It never fails.
	Respond(ctx context.Context, utterance string, language lang.Language) Reply
	// SiteQuery runs the site lookup with a caller-chosen window.
	SiteQuery(ctx context.Context, site smsparser.Site, window time.Duration, language lang.Language) (Reply, error)
}
