package usecase

import (
	"regexp"
	"strings"

	domainDialogue "github.com/shipliyo/smsgate/domains/dialogue"
	"github.com/shipliyo/smsgate/pkg/lang"
)

type intent string

const (
	intentNone       intent = ""
	intentGetCode    intent = domainDialogue.PayloadGetCode
	intentGetAddress intent = domainDialogue.PayloadGetAddress
	intentHelp       intent = domainDialogue.PayloadHelp
)

type intentKeywords struct {
	intent   intent
	keywords map[lang.Language][]string
}

// Checked in order; the first intent with a keyword hit wins.
var intentTable = []intentKeywords{
	{
		intent: intentGetCode,
		keywords: map[lang.Language][]string{
			lang.Turkish:   {"kod", "kodu", "onay", "doğrulama", "numara", "almak", "istiyorum"},
			lang.Bulgarian: {"код", "кодът", "кодове", "потвърдителен", "искам", "получи"},
			lang.English:   {"code", "verification", "number", "want", "get"},
		},
	},
	{
		intent: intentGetAddress,
		keywords: map[lang.Language][]string{
			lang.Turkish:   {"adres", "adresi", "teslimat", "adresim", "adres al"},
			lang.Bulgarian: {"адрес", "адресът", "доставка", "адреса ми", "получи адрес"},
			lang.English:   {"address", "delivery", "my address", "get address"},
		},
	},
	{
		intent: intentHelp,
		keywords: map[lang.Language][]string{
			lang.Turkish:   {"yardım", "yardim", "help", "nasıl", "ne yapabilir"},
			lang.Bulgarian: {"помощ", "помогнете", "help", "как", "какво"},
			lang.English:   {"help", "yardım", "how", "what can you do"},
		},
	},
}

var referenceLike = regexp.MustCompile(`^[a-z0-9]{4,6}$`)

// detectIntent expects a trimmed, lower-cased utterance.
func detectIntent(text string, language lang.Language) intent {
	for _, entry := range intentTable {
		for _, kw := range entry.keywords[language] {
			if strings.Contains(text, kw) {
				return entry.intent
			}
		}
	}
	return intentNone
}

func looksLikeReference(text string) bool {
	return referenceLike.MatchString(text)
}
