// Package smsparser extracts the site, reference code and verification code
// from free-text SMS bodies in Turkish, Bulgarian and English.
package smsparser

import (
	"regexp"
	"strings"

	"github.com/shipliyo/smsgate/pkg/lang"
)

type Site string

const (
	SiteTrendyol    Site = "trendyol"
	SiteHepsiburada Site = "hepsiburada"
	SiteN11         Site = "n11"
	SiteAmazon      Site = "amazon"
	SiteOther       Site = "other"
)

var siteTitles = map[Site]string{
	SiteTrendyol:    "Trendyol",
	SiteHepsiburada: "Hepsiburada",
	SiteN11:         "N11",
	SiteAmazon:      "Amazon",
	SiteOther:       "Other",
}

// Title returns the display name used in replies.
func (s Site) Title() string {
	if t, ok := siteTitles[s]; ok {
		return t
	}
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ParsedMessage is the structured view of one SMS body.
type ParsedMessage struct {
	Site             Site          `json:"site"`
	ReferenceCode    *string       `json:"ref_code"`
	VerificationCode *string       `json:"verification_code"`
	Language         lang.Language `json:"language"`
	Raw              string        `json:"raw"`
}

// HasReference reports whether a reference code was found.
func (p ParsedMessage) HasReference() bool {
	return p.ReferenceCode != nil
}

// Code returns the verification code or an empty string.
func (p ParsedMessage) Code() string {
	if p.VerificationCode == nil {
		return ""
	}
	return *p.VerificationCode
}

// Parser holds the compiled pattern tables. It is immutable after NewParser
// and safe for concurrent use.
type Parser struct {
	sites        map[lang.Language][]siteKeywords
	references   map[lang.Language][]*regexp.Regexp
	verification map[lang.Language][]*regexp.Regexp
}

var bareVerification = regexp.MustCompile(`(?:^|\D)(\d{5,6})(?:\D|$)`)

// NewParser compiles the keyword and pattern tables.
func NewParser() *Parser {
	p := &Parser{
		sites:        siteTable,
		references:   make(map[lang.Language][]*regexp.Regexp, len(referenceLabels)),
		verification: make(map[lang.Language][]*regexp.Regexp, len(verificationLabels)),
	}

	for l, labels := range referenceLabels {
		patterns := make([]*regexp.Regexp, 0, len(labels)+len(referenceExtra[l]))
		for _, label := range labels {
			patterns = append(patterns, regexp.MustCompile(label+`[:\s]*([a-z0-9]{4,6})`))
		}
		for _, extra := range referenceExtra[l] {
			patterns = append(patterns, regexp.MustCompile(extra))
		}
		p.references[l] = patterns
	}

	for l, labels := range verificationLabels {
		patterns := make([]*regexp.Regexp, 0, len(labels)+1)
		for _, label := range labels {
			patterns = append(patterns, regexp.MustCompile(label+`[:\s]*(\d{5,6})(?:\D|$)`))
		}
		p.verification[l] = append(patterns, bareVerification)
	}

	return p
}

// Parse maps a body and language to its structured fields. Unsupported
// languages are parsed with the default language tables.
func (p *Parser) Parse(body string, language lang.Language) ParsedMessage {
	language = lang.OrDefault(language)
	lower := strings.ToLower(body)

	return ParsedMessage{
		Site:             p.detectSite(lower, language),
		ReferenceCode:    p.extractReference(lower, language),
		VerificationCode: p.extractVerification(lower, language),
		Language:         language,
		Raw:              body,
	}
}

// DetectLanguage counts language-specific vocabulary hits. The strictly
// highest count wins; ties fall back to the default language.
func (p *Parser) DetectLanguage(body string) lang.Language {
	lower := strings.ToLower(body)

	counts := make(map[lang.Language]int, len(languageKeywords))
	for _, entry := range languageKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				counts[entry.language]++
			}
		}
	}

	best, bestCount, tied := lang.Default, -1, false
	for _, entry := range languageKeywords {
		c := counts[entry.language]
		switch {
		case c > bestCount:
			best, bestCount, tied = entry.language, c, false
		case c == bestCount:
			tied = true
		}
	}
	if tied {
		return lang.Default
	}
	return best
}

// QueryKeywords returns the store keywords for a menu site. For SiteOther it
// returns nil; use OtherExclusions instead.
func QueryKeywords(site Site) []string {
	if !isListedMenuSite(site) {
		return nil
	}
	return siteKeywordUnion(site)
}

// OtherExclusions lists the keywords a body must not contain to count as SiteOther.
func OtherExclusions() []string {
	var out []string
	for _, site := range menuSites {
		out = append(out, siteKeywordUnion(site)...)
	}
	return out
}

// MenuSites returns the sites offered in the chat site menu, in order.
func MenuSites() []Site {
	out := make([]Site, len(menuSites))
	copy(out, menuSites)
	return out
}

// IsMenuSite reports whether s can be selected from the site menu, SiteOther included.
func IsMenuSite(s Site) bool {
	return s == SiteOther || isListedMenuSite(s)
}

func isListedMenuSite(s Site) bool {
	for _, site := range menuSites {
		if site == s {
			return true
		}
	}
	return false
}

// siteKeywordUnion collects the keywords of site from every language table,
// in language display order without duplicates.
func siteKeywordUnion(site Site) []string {
	var out []string
	seen := make(map[string]bool)
	for _, l := range lang.All() {
		for _, entry := range siteTable[l] {
			if entry.site != site {
				continue
			}
			for _, kw := range entry.keywords {
				if !seen[kw] {
					seen[kw] = true
					out = append(out, kw)
				}
			}
		}
	}
	return out
}

func (p *Parser) detectSite(lower string, language lang.Language) Site {
	for _, entry := range p.sites[language] {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.site
			}
		}
	}
	return SiteOther
}

func (p *Parser) extractReference(lower string, language lang.Language) *string {
	for _, re := range p.references[language] {
		if m := re.FindStringSubmatch(lower); m != nil {
			code := strings.ToUpper(m[1])
			return &code
		}
	}
	return nil
}

func (p *Parser) extractVerification(lower string, language lang.Language) *string {
	for _, re := range p.verification[language] {
		if m := re.FindStringSubmatch(lower); m != nil {
			code := m[1]
			return &code
		}
	}
	return nil
}
