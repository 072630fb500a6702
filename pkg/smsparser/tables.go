package smsparser

import (
	"github.com/shipliyo/smsgate/pkg/lang"
)

// siteKeywords pairs a site with the lower-case keywords that identify it in a body.
type siteKeywords struct {
	site     Site
	keywords []string
}

// Site detection tables, tested in slice order.
var siteTable = map[lang.Language][]siteKeywords{
	lang.Turkish: {
		{SiteTrendyol, []string{"trendyol", "trend"}},
		{SiteHepsiburada, []string{"hepsiburada", "hepsi", "hb"}},
		{SiteN11, []string{"n11", "n11.com"}},
		{SiteAmazon, []string{"amazon"}},
	},
	lang.Bulgarian: {
		{SiteTrendyol, []string{"trendyol"}},
		{SiteHepsiburada, []string{"hepsiburada"}},
		{SiteN11, []string{"n11"}},
		{SiteAmazon, []string{"amazon"}},
	},
	lang.English: {
		{SiteTrendyol, []string{"trendyol"}},
		{SiteHepsiburada, []string{"hepsiburada"}},
		{SiteN11, []string{"n11"}},
		{SiteAmazon, []string{"amazon", "amzn"}},
	},
}

// Sites offered in the chat menu. Their store keywords are the union of
// their siteTable keywords across languages, and SiteOther excludes them all,
// so a stored body lands under the same site Parse would give it.
var menuSites = []Site{SiteTrendyol, SiteHepsiburada, SiteN11}

// Reference-code labels. Each becomes label[:\s]*([a-z0-9]{4,6}).
var referenceLabels = map[lang.Language][]string{
	lang.Turkish:   {`ref`, `referans`, `no`, `kod`, `kodu`, `numara`},
	lang.Bulgarian: {`ref`, `referans`, `nomer`, `kod`},
	lang.English:   {`ref`, `reference`, `code`, `number`},
}

// Extra reference patterns appended after the label ones.
var referenceExtra = map[lang.Language][]string{
	lang.English: {`ref[.\s]*([a-z0-9]{4,6})`},
}

// Verification labels, most specific first. The bare digit fallback is
// always appended last so a labeled code wins over an unrelated number.
// \p{L}* lets a label absorb inflected suffixes (kodunuz, кодът).
var verificationLabels = map[lang.Language][]string{
	lang.Turkish:   {`onay[:\s]*kodu\p{L}*`, `kodu\p{L}*`, `kod\p{L}*`},
	lang.Bulgarian: {`потвърдителен[:\s]*код\p{L}*`, `код\p{L}*`, `kod\p{L}*`},
	lang.English:   {`verification[:\s]*code`, `confirm[:\s]*code`, `code`},
}

// Language detection vocabulary.
var languageKeywords = []struct {
	language lang.Language
	keywords []string
}{
	{lang.Bulgarian, []string{"потвърдителен", "код", "номер", "рефер"}},
	{lang.Turkish, []string{"onay", "kod", "numara", "referans"}},
	{lang.English, []string{"verification", "code", "number", "reference"}},
}
