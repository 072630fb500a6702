// Package catalog serves the localized texts and menus of the bot.
//
// The catalog is decoded once from an embedded YAML document and is
// read-only afterwards. Lookups fall back to the default language when the
// requested language or key is missing.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/shipliyo/smsgate/pkg/lang"
	"gopkg.in/yaml.v3"
)

// Text keys.
const (
	KeyWelcome          = "welcome"
	KeyReferenceFound   = "reference_found"
	KeyNoReference      = "no_reference"
	KeyChooseSite       = "choose_site"
	KeyGetCodeIntent    = "get_code_intent"
	KeySiteOptions      = "site_options"
	KeyInvalidChoice    = "invalid_choice"
	KeyProcessing       = "processing"
	KeyMultipleSMSFound = "multiple_sms_found"
	KeyNoRecentSMS      = "no_recent_sms"
	KeyUnknownMessage   = "unknown_message"
	KeyCodeNotFound     = "code_not_found"
	KeyAddressPrompt    = "address_prompt"
	KeyAddressInvalid   = "address_invalid"
	KeyHelpResponse     = "help_response"
)

// Menu keys.
const (
	MenuMain  = "main_menu"
	MenuSites = "site_menu"
)

//go:embed responses.yaml
var embedded []byte

// MenuOption is one selectable bubble.
type MenuOption struct {
	Label   string `yaml:"label" json:"title" xml:"title"`
	Payload string `yaml:"payload" json:"payload" xml:"payload"`
}

// Params holds named placeholder values.
type Params map[string]any

type document struct {
	DefaultLanguage lang.Language                             `yaml:"default_language"`
	Texts           map[lang.Language]map[string]string       `yaml:"texts"`
	Menus           map[lang.Language]map[string][]MenuOption `yaml:"menus"`
}

type Catalog struct {
	fallback lang.Language
	texts    map[lang.Language]map[string]string
	menus    map[lang.Language]map[string][]MenuOption
}

// Load decodes the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(embedded)
}

// MustLoad is Load for package-level wiring; it panics on a broken embed.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	fallback := doc.DefaultLanguage
	if fallback == "" {
		fallback = lang.Default
	}
	if _, ok := doc.Texts[fallback]; !ok {
		return nil, fmt.Errorf("catalog has no texts for fallback language %q", fallback)
	}

	c := &Catalog{
		fallback: fallback,
		texts:    doc.Texts,
		menus:    doc.Menus,
	}
	if c.menus == nil {
		c.menus = map[lang.Language]map[string][]MenuOption{}
	}
	return c, nil
}

// Text renders key in language l with named params. Unknown keys render as the key itself.
func (c *Catalog) Text(key string, l lang.Language, params Params) string {
	tmpl, ok := c.texts[l][key]
	if !ok {
		tmpl, ok = c.texts[c.fallback][key]
	}
	if !ok {
		return key
	}
	return render(tmpl, params)
}

// Menu returns a copy of the option list for key in language l.
func (c *Catalog) Menu(key string, l lang.Language) []MenuOption {
	options, ok := c.menus[l][key]
	if !ok {
		options = c.menus[c.fallback][key]
	}
	out := make([]MenuOption, len(options))
	copy(out, options)
	return out
}

// Languages returns the languages with at least one text, sorted.
func (c *Catalog) Languages() []lang.Language {
	out := make([]lang.Language, 0, len(c.texts))
	for l := range c.texts {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func render(tmpl string, params Params) string {
	if len(params) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
