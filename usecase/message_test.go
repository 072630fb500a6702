package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	domainAddress "github.com/shipliyo/smsgate/domains/address"
	domainMessage "github.com/shipliyo/smsgate/domains/message"
	"github.com/shipliyo/smsgate/infrastructure/store"
	pkgError "github.com/shipliyo/smsgate/pkg/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageService_RecentLimits(t *testing.T) {
	repo := store.NewMessageMemoryRepository()
	for i := 0; i < 120; i++ {
		require.NoError(t, repo.Insert(context.Background(), &domainMessage.InboundMessage{
			Sender:     "HB",
			Body:       fmt.Sprintf("kod %06d", i),
			ReceivedAt: testNow.Add(time.Duration(i) * time.Second),
		}))
	}
	svc := NewMessageService(repo)

	got, err := svc.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, got, 10)
	assert.Equal(t, "kod 000119", got[0].Body)

	got, err = svc.Recent(context.Background(), 500)
	require.NoError(t, err)
	assert.Len(t, got, 100)

	_, err = svc.Recent(context.Background(), -1)
	var verr pkgError.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestMessageService_StoreFailure(t *testing.T) {
	_, err := NewMessageService(failingRepo{}).Recent(context.Background(), 5)

	var serr pkgError.StorageUnavailableError
	assert.ErrorAs(t, err, &serr)
}

func TestAddressService_Lookup(t *testing.T) {
	svc := NewAddressService()

	got, err := svc.Lookup(context.Background(), domainAddress.LookupRequest{Phone: "111222333"})
	require.NoError(t, err)
	assert.Equal(t, "BG111222333 Hatip Mahallesi Fulya Sokak No: 19/A Çorlu, Tekirdağ", got.Address)
	assert.Equal(t, "Tekirdağ", got.Components.City)
	assert.Equal(t, "19/A", got.Components.Building)

	_, err = svc.Lookup(context.Background(), domainAddress.LookupRequest{Phone: "12345"})
	require.Error(t, err)
	assert.Equal(t, "Geçersiz telefon numarası. 9 haneli numara girin.", err.Error())
}
