package dialogue

import (
	"time"

	"github.com/shipliyo/smsgate/pkg/catalog"
	"github.com/shipliyo/smsgate/pkg/smsparser"
)

// ReplyKind tags which fields of a Reply are populated.
type ReplyKind string

const (
	KindDirect  ReplyKind = "direct"
	KindBubbles ReplyKind = "bubbles"
	KindList    ReplyKind = "list"
	KindAddress ReplyKind = "address"
)

// LookupSource records where a reply came from. It is logged, never shown.
type LookupSource string

const (
	SourceStatic LookupSource = "static"
	SourceStore  LookupSource = "store"
	SourceError  LookupSource = "error"
)

// MessageSummary is one entry of a list reply.
type MessageSummary struct {
	Site       string    `json:"site"`
	Code       string    `json:"code"`
	Raw        string    `json:"raw"`
	ReceivedAt time.Time `json:"timestamp"`
}

// Reply is built only through the constructors below, so Menu is set only
// for KindBubbles, Items only for KindList and Parsed only for a resolved
// KindDirect.
type Reply struct {
	Success bool
	Text    string
	Kind    ReplyKind
	Menu    []catalog.MenuOption
	Items   []MessageSummary
	Parsed  *smsparser.ParsedMessage
	Source  LookupSource
}

// DirectText is a plain text reply.
func DirectText(success bool, text string, source LookupSource) Reply {
	return Reply{Success: success, Text: text, Kind: KindDirect, Source: source}
}

// DirectResolved is a text reply about one resolved message.
func DirectResolved(text string, parsed smsparser.ParsedMessage) Reply {
	return Reply{Success: true, Text: text, Kind: KindDirect, Parsed: &parsed, Source: SourceStore}
}

func BubbleMenu(text string, options []catalog.MenuOption) Reply {
	return Reply{Success: true, Text: text, Kind: KindBubbles, Menu: options, Source: SourceStatic}
}

func List(text string, items []MessageSummary) Reply {
	return Reply{Success: true, Text: text, Kind: KindList, Items: items, Source: SourceStore}
}

func AddressPrompt(text string) Reply {
	return Reply{Success: true, Text: text, Kind: KindAddress, Source: SourceStatic}
}
