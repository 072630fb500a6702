package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shipliyo/smsgate/core/config"
	"github.com/shipliyo/smsgate/core/database"
	domainMessage "github.com/shipliyo/smsgate/domains/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newGormRepo(t *testing.T) *MessageGormRepository {
	t.Helper()
	db, err := database.NewDatabase(&config.Config{Database: config.DatabaseConfig{
		Driver: "sqlite",
		Name:   filepath.Join(t.TempDir(), "sms.db"),
	}})
	require.NoError(t, err)

	repo := NewMessageGormRepository(db)
	require.NoError(t, repo.InitSchema(context.Background()))
	t.Cleanup(func() { _ = repo.Close(context.Background()) })
	return repo
}

// repositories runs each case against every backend that needs no external server.
func repositories(t *testing.T) map[string]domainMessage.IMessageRepository {
	return map[string]domainMessage.IMessageRepository{
		"gorm":   newGormRepo(t),
		"memory": NewMessageMemoryRepository(),
	}
}

func seed(t *testing.T, repo domainMessage.IMessageRepository, now time.Time) {
	t.Helper()
	ctx := context.Background()
	msgs := []domainMessage.InboundMessage{
		{Sender: "Trendyol", Body: "Trendyol onay kodunuz: 111111", ReceivedAt: now.Add(-10 * time.Second)},
		{Sender: "HB", Body: "Hepsiburada kod: 222222", ReceivedAt: now.Add(-20 * time.Second)},
		{Sender: "N11", Body: "n11.com kodunuz 333333", ReceivedAt: now.Add(-30 * time.Second)},
		{Sender: "AMZN", Body: "Amazon code 444444", ReceivedAt: now.Add(-40 * time.Second)},
		{Sender: "Trendyol", Body: "TRENDYOL eski kod 555555", ReceivedAt: now.Add(-10 * time.Minute)},
	}
	for i := range msgs {
		msgs[i].DeviceID = domainMessage.UnknownDevice
		msgs[i].Source = domainMessage.SourceNewGateway
		require.NoError(t, repo.Insert(ctx, &msgs[i]))
		require.NotEmpty(t, msgs[i].ID)
	}
}

func TestMessageRepository_FindByKeywordWithinWindow(t *testing.T) {
	now := time.Now().UTC()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, repo, now)

			got, err := repo.Find(context.Background(), domainMessage.Filter{
				Since:       now.Add(-90 * time.Second),
				ContainsAny: []string{"trendyol", "trend"},
			})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "Trendyol onay kodunuz: 111111", got[0].Body)
		})
	}
}

func TestMessageRepository_FindOther(t *testing.T) {
	now := time.Now().UTC()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, repo, now)

			got, err := repo.Find(context.Background(), domainMessage.Filter{
				Since:       now.Add(-90 * time.Second),
				ExcludesAll: []string{"trendyol", "hepsiburada", "n11"},
			})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "AMZN", got[0].Sender)
		})
	}
}

func TestMessageRepository_RecentNewestFirst(t *testing.T) {
	now := time.Now().UTC()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, repo, now)

			got, err := repo.Recent(context.Background(), 3)
			require.NoError(t, err)
			require.Len(t, got, 3)
			assert.Equal(t, "Trendyol", got[0].Sender)
			assert.Equal(t, "HB", got[1].Sender)
			assert.Equal(t, "N11", got[2].Sender)
			assert.True(t, got[0].ReceivedAt.After(got[1].ReceivedAt))
		})
	}
}

func TestMessageRepository_MarkProcessed(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			msg := &domainMessage.InboundMessage{Sender: "+905551112233", Body: "kod", Source: domainMessage.SourceLegacyGateway, DeviceID: "dev-1"}
			require.NoError(t, repo.Insert(ctx, msg))
			assert.False(t, msg.ReceivedAt.IsZero())

			reply := "Hoş geldiniz"
			require.NoError(t, repo.MarkProcessed(ctx, msg.ID, &reply))

			got, err := repo.Recent(ctx, 10)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.True(t, got[0].Processed)
			require.NotNil(t, got[0].BotReply)
			assert.Equal(t, reply, *got[0].BotReply)
			assert.Equal(t, domainMessage.SourceLegacyGateway, got[0].Source)
			assert.Equal(t, "dev-1", got[0].DeviceID)

			assert.ErrorIs(t, repo.MarkProcessed(ctx, "missing", nil), domainMessage.ErrMessageNotFound)
		})
	}
}

func TestMessageRepository_Ping(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, repo.Ping(context.Background()))
		})
	}
}

func TestMongoFilter(t *testing.T) {
	since := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	q := mongoFilter(domainMessage.Filter{
		Since:       since,
		ContainsAny: []string{"n11.com"},
		ExcludesAll: []string{"trendyol"},
	})

	assert.Equal(t, bson.M{"$gte": since}, q["timestamp"])
	conditions, ok := q["$and"].([]bson.M)
	require.True(t, ok)
	require.Len(t, conditions, 2)
	assert.Equal(t, bson.M{"$or": []bson.M{{"body": primitive.Regex{Pattern: `n11\.com`, Options: "i"}}}}, conditions[0])
	assert.Equal(t, bson.M{"body": bson.M{"$not": primitive.Regex{Pattern: "trendyol", Options: "i"}}}, conditions[1])

	assert.Empty(t, mongoFilter(domainMessage.Filter{}))
}
