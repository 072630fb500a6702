// Package lang holds the languages the bot speaks.
package lang

import "strings"

type Language string

const (
	Turkish   Language = "tr"
	Bulgarian Language = "bg"
	English   Language = "en"

	// Default is used whenever a language is missing or unsupported.
	Default = Turkish
)

// Info describes a supported language for listing endpoints.
type Info struct {
	Code Language `json:"code"`
	Name string   `json:"name"`
	Flag string   `json:"flag"`
}

var supported = []Info{
	{Code: Turkish, Name: "Türkçe", Flag: "🇹🇷"},
	{Code: Bulgarian, Name: "Bulgarca", Flag: "🇧🇬"},
	{Code: English, Name: "İngilizce", Flag: "🇺🇸"},
}

// All returns the supported languages in display order.
func All() []Language {
	out := make([]Language, len(supported))
	for i, s := range supported {
		out[i] = s.Code
	}
	return out
}

// Supported returns the supported languages with display metadata.
func Supported() []Info {
	out := make([]Info, len(supported))
	copy(out, supported)
	return out
}

// IsSupported reports whether l is one of tr, bg or en.
func IsSupported(l Language) bool {
	for _, s := range supported {
		if s.Code == l {
			return true
		}
	}
	return false
}

// Parse normalizes raw and reports whether it named a supported language.
func Parse(raw string) (Language, bool) {
	l := Language(strings.ToLower(strings.TrimSpace(raw)))
	if IsSupported(l) {
		return l, true
	}
	return Default, false
}

// OrDefault returns l when supported, otherwise Default.
func OrDefault(l Language) Language {
	if IsSupported(l) {
		return l
	}
	return Default
}
