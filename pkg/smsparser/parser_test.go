package smsparser

import (
	"strings"
	"testing"

	"github.com/shipliyo/smsgate/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_TrendyolTurkish(t *testing.T) {
	p := NewParser()

	got := p.Parse("Trendyol onay kodunuz: 123456 Ref: A1B2C3", lang.Turkish)

	assert.Equal(t, SiteTrendyol, got.Site)
	require.NotNil(t, got.ReferenceCode)
	assert.Equal(t, "A1B2C3", *got.ReferenceCode)
	require.NotNil(t, got.VerificationCode)
	assert.Equal(t, "123456", *got.VerificationCode)
	assert.Equal(t, lang.Turkish, got.Language)
	assert.Equal(t, "Trendyol onay kodunuz: 123456 Ref: A1B2C3", got.Raw)
}

func TestParse_LabeledCodeWinsOverBareNumber(t *testing.T) {
	p := NewParser()

	cases := []struct {
		name     string
		body     string
		language lang.Language
		want     string
	}{
		{"tr kod", "Siparis 98765 icin kod: 123456", lang.Turkish, "123456"},
		{"tr onay kodu", "Tutar 55555 TL. Onay kodu 654321", lang.Turkish, "654321"},
		{"en verification", "Order 11111 verification code: 222333", lang.English, "222333"},
		{"en code", "Ticket 44444, code 98765", lang.English, "98765"},
		{"bg код", "Поръчка 77777 код: 123123", lang.Bulgarian, "123123"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := p.Parse(tc.body, tc.language)
			require.NotNil(t, got.VerificationCode)
			assert.Equal(t, tc.want, *got.VerificationCode)
		})
	}
}

func TestParse_BareFallback(t *testing.T) {
	p := NewParser()

	got := p.Parse("Your one time password is 48213", lang.English)
	require.NotNil(t, got.VerificationCode)
	assert.Equal(t, "48213", *got.VerificationCode)
}

func TestParse_LongNumbersAreNotSplit(t *testing.T) {
	p := NewParser()

	got := p.Parse("Call us at 08501234567", lang.English)
	assert.Nil(t, got.VerificationCode)
}

func TestParse_NoCode(t *testing.T) {
	p := NewParser()

	got := p.Parse("Kargonuz yola cikti", lang.Turkish)
	assert.Nil(t, got.VerificationCode)
	assert.Equal(t, "", got.Code())
	assert.Equal(t, SiteOther, got.Site)
}

func TestParse_SiteDetection(t *testing.T) {
	p := NewParser()

	assert.Equal(t, SiteHepsiburada, p.Parse("HB siparis onayi 12345", lang.Turkish).Site)
	assert.Equal(t, SiteOther, p.Parse("HB order 12345", lang.English).Site)
	assert.Equal(t, SiteN11, p.Parse("n11.com kodunuz 12345", lang.Turkish).Site)
	assert.Equal(t, SiteAmazon, p.Parse("AMZN code 123456", lang.English).Site)
	assert.Equal(t, SiteTrendyol, p.Parse("Trendyol: код 123456", lang.Bulgarian).Site)
}

func TestParse_UnsupportedLanguageUsesDefault(t *testing.T) {
	p := NewParser()

	got := p.Parse("Trendyol kod 123456", lang.Language("de"))
	assert.Equal(t, lang.Default, got.Language)
	assert.Equal(t, SiteTrendyol, got.Site)
}

func TestParse_Idempotent(t *testing.T) {
	p := NewParser()
	body := "Hepsiburada dogrulama kodu: 908172 ref XY12"

	first := p.Parse(body, lang.Turkish)
	second := p.Parse(body, lang.Turkish)
	assert.Equal(t, first, second)
}

func TestDetectLanguage(t *testing.T) {
	p := NewParser()

	assert.Equal(t, lang.Turkish, p.DetectLanguage("Onay kodunuz 123456, referans ABCD"))
	assert.Equal(t, lang.Bulgarian, p.DetectLanguage("Вашият потвърдителен код е 123456"))
	assert.Equal(t, lang.English, p.DetectLanguage("Your verification code is 123456"))
	assert.Equal(t, lang.Default, p.DetectLanguage("hello there"))
	// "kod" (tr) and "code" (en) tie at one hit each.
	assert.Equal(t, lang.Default, p.DetectLanguage("kod code"))
}

func TestSiteTitle(t *testing.T) {
	assert.Equal(t, "Trendyol", SiteTrendyol.Title())
	assert.Equal(t, "N11", SiteN11.Title())
	assert.Equal(t, "Other", SiteOther.Title())
}

func TestQueryTables(t *testing.T) {
	assert.Equal(t, []Site{SiteTrendyol, SiteHepsiburada, SiteN11}, MenuSites())
	assert.Equal(t, []string{"trendyol", "trend"}, QueryKeywords(SiteTrendyol))
	assert.Nil(t, QueryKeywords(SiteOther))
	assert.True(t, IsMenuSite(SiteOther))
	assert.False(t, IsMenuSite(SiteAmazon))
	assert.Equal(t, []string{"hepsiburada", "hepsi", "hb"}, QueryKeywords(SiteHepsiburada))
	assert.Equal(t, []string{"n11", "n11.com"}, QueryKeywords(SiteN11))
	assert.ElementsMatch(t, []string{"trendyol", "trend", "hepsiburada", "hepsi", "hb", "n11", "n11.com"}, OtherExclusions())
}

func TestOtherExclusionsAgreeWithParser(t *testing.T) {
	p := NewParser()
	for _, body := range []string{"HepsiPay onay kodunuz: 445566", "TrendPay kod 111111", "HB kod 222222", "n11 kod 333333"} {
		site := p.Parse(body, lang.Turkish).Site
		require.NotEqual(t, SiteOther, site, body)

		lower := strings.ToLower(body)
		excluded := false
		for _, kw := range OtherExclusions() {
			if strings.Contains(lower, kw) {
				excluded = true
			}
		}
		assert.True(t, excluded, body)
		assert.True(t, IsMenuSite(site), body)
	}
}
