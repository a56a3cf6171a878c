package service

import (
	"testing"

	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/neartalkapp/neartalk/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushService_SubscribeAndUnsubscribe(t *testing.T) {
	db := testDB(t)
	svc := NewPushService(repository.NewPushRepository(db))
	alice := seedUser(t, db, "alice")

	req := model.PushSubscribeRequest{
		Endpoint: "https://push.example/device-1",
		Keys:     &model.PushKeys{Auth: "auth-a", P256dh: "p256-a"},
	}

	sub, err := svc.Subscribe(alice, req)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, sub.UserID)

	t.Run("resubscribing the same device keeps one row", func(t *testing.T) {
		_, err := svc.Subscribe(alice, req)
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Table("push_subscriptions").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("unsubscribe removes the registration", func(t *testing.T) {
		require.NoError(t, svc.Unsubscribe(alice, req))

		subs, err := repository.NewPushRepository(db).ForUser(alice.ID)
		require.NoError(t, err)
		assert.Empty(t, subs)
	})

	t.Run("unsubscribe of unknown subscription is not found", func(t *testing.T) {
		err := svc.Unsubscribe(alice, req)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPushService_SubscribeValidation(t *testing.T) {
	db := testDB(t)
	svc := NewPushService(repository.NewPushRepository(db))
	alice := seedUser(t, db, "alice")

	tests := []struct {
		name string
		req  model.PushSubscribeRequest
	}{
		{"missing endpoint", model.PushSubscribeRequest{Keys: &model.PushKeys{Auth: "a", P256dh: "p"}}},
		{"missing keys", model.PushSubscribeRequest{Endpoint: "https://push.example/d"}},
		{"empty auth", model.PushSubscribeRequest{Endpoint: "https://push.example/d", Keys: &model.PushKeys{P256dh: "p"}}},
		{"empty p256dh", model.PushSubscribeRequest{Endpoint: "https://push.example/d", Keys: &model.PushKeys{Auth: "a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Subscribe(alice, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}
