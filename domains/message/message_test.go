package message

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilterMatches(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	msg := InboundMessage{Body: "TRENDYOL onay kodunuz 123456", ReceivedAt: now}
	lower := strings.ToLower(msg.Body)

	assert.True(t, Filter{}.Matches(msg, lower))
	assert.True(t, Filter{Since: now.Add(-time.Minute), ContainsAny: []string{"trend"}}.Matches(msg, lower))
	assert.False(t, Filter{Since: now.Add(time.Second)}.Matches(msg, lower))
	assert.False(t, Filter{ContainsAny: []string{"hepsi", "n11"}}.Matches(msg, lower))
	assert.False(t, Filter{ExcludesAll: []string{"Trendyol"}}.Matches(msg, lower))
	assert.True(t, Filter{ExcludesAll: []string{"n11"}}.Matches(msg, lower))
}
