package service

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/neartalkapp/neartalk/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string {
	return &s
}

func subscribeToStation(t *testing.T, db *gorm.DB, userID uuid.UUID, stationID uuid.UUID) {
	t.Helper()
	_, err := repository.NewStationRepository(db).Subscribe(userID, stationID)
	require.NoError(t, err)
}

func seedStation(t *testing.T, db *gorm.DB, lat, lon float64) *model.Station {
	t.Helper()
	station := &model.Station{ID: uuid.New(), Latitude: lat, Longitude: lon}
	require.NoError(t, db.Create(station).Error)
	return station
}

func TestChatService_AddMessageValidation(t *testing.T) {
	db := testDB(t)
	svc, _, _ := newChatFixture(t, db)
	alice := seedUser(t, db, "alice")

	tests := []struct {
		name string
		req  model.AddMessageRequest
	}{
		{"neither text nor image", model.AddMessageRequest{}},
		{"empty text", model.AddMessageRequest{Text: strPtr("")}},
		{"oversized text", model.AddMessageRequest{Text: strPtr(strings.Repeat("a", 601))}},
		{"oversized multibyte text", model.AddMessageRequest{Text: strPtr(strings.Repeat("ж", 601))}},
		{"empty image key", model.AddMessageRequest{ImageKey: strPtr("")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddMessage(alice, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// Validation fails fast: nothing was written
	var count int64
	require.NoError(t, db.Table("private_messages").Count(&count).Error)
	assert.Equal(t, int64(0), count)
	require.NoError(t, db.Table("station_messages").Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestChatService_AddMessageTextAtLimit(t *testing.T) {
	db := testDB(t)
	svc, _, notifier := newChatFixture(t, db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	notifier.expect(2)
	_, err := svc.AddMessage(alice, model.AddMessageRequest{
		Text:   strPtr(strings.Repeat("a", 600)),
		UserID: strPtr(bob.ID.String()),
	})
	assert.NoError(t, err)

	// The limit counts characters, not bytes: 600 two-byte runes fit
	_, err = svc.AddMessage(alice, model.AddMessageRequest{
		Text:   strPtr(strings.Repeat("ж", 600)),
		UserID: strPtr(bob.ID.String()),
	})
	assert.NoError(t, err)
	notifier.wait()
}

func TestChatService_AddPrivateMessage(t *testing.T) {
	db := testDB(t)
	svc, live, notifier := newChatFixture(t, db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	notifier.expect(1)
	view, err := svc.AddMessage(alice, model.AddMessageRequest{
		Text:   strPtr("hello bob"),
		UserID: strPtr(bob.ID.String()),
	})
	require.NoError(t, err)

	assert.Equal(t, bob.ID, view.ReceiverID)
	assert.Equal(t, "hello bob", view.Text)
	assert.Equal(t, alice.ID, view.Sender.UserID)
	assert.Equal(t, "alice", view.Sender.Username)
	assert.False(t, view.SentAt.IsZero())

	t.Run("receiver unread incremented", func(t *testing.T) {
		unread, err := repository.NewUnreadRepository(db).Get(bob.ID, nil, &alice.ID)
		require.NoError(t, err)
		require.NotNil(t, unread)
		assert.Equal(t, 1, unread.Count)
	})

	t.Run("live push to receiver only", func(t *testing.T) {
		sends := live.sent()
		require.Len(t, sends, 1)
		assert.Equal(t, bob.ID, sends[0].userID)
		assert.Equal(t, model.EventMessage, sends[0].event)

		payload, ok := sends[0].data.(model.LiveMessage)
		require.True(t, ok)
		assert.False(t, payload.IsStation)
		assert.Equal(t, 1, payload.Unread)
		assert.Equal(t, "hello bob", payload.Text)
	})

	t.Run("web push dispatched to receiver", func(t *testing.T) {
		calls := notifier.wait()
		require.Len(t, calls, 1)
		assert.Equal(t, bob.ID, calls[0])
	})
}

func TestChatService_AddPrivateMessageUnknownReceiver(t *testing.T) {
	db := testDB(t)
	svc, _, _ := newChatFixture(t, db)
	alice := seedUser(t, db, "alice")

	_, err := svc.AddMessage(alice, model.AddMessageRequest{
		Text:   strPtr("anyone there"),
		UserID: strPtr(uuid.New().String()),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddMessage(alice, model.AddMessageRequest{
		Text:   strPtr("anyone there"),
		UserID: strPtr("not-a-uuid"),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChatService_AddStationMessage(t *testing.T) {
	db := testDB(t)
	svc, live, notifier := newChatFixture(t, db)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	outsider := seedUser(t, db, "outsider")

	station := seedStation(t, db, 45.25, 19.84)
	other := seedStation(t, db, 45.80, 20.50)
	subscribeToStation(t, db, alice.ID, station.ID)
	subscribeToStation(t, db, bob.ID, station.ID)
	subscribeToStation(t, db, carol.ID, station.ID)
	subscribeToStation(t, db, outsider.ID, other.ID)

	view, err := svc.AddMessage(alice, model.AddMessageRequest{Text: strPtr("hello station")})
	require.NoError(t, err)
	assert.Equal(t, station.ID, view.ReceiverID)

	t.Run("every other subscriber gets a live push", func(t *testing.T) {
		sends := live.sent()
		require.Len(t, sends, 2)
		targets := []uuid.UUID{sends[0].userID, sends[1].userID}
		assert.ElementsMatch(t, []uuid.UUID{bob.ID, carol.ID}, targets)
		for _, s := range sends {
			payload, ok := s.data.(model.LiveMessage)
			require.True(t, ok)
			assert.True(t, payload.IsStation)
			assert.Equal(t, 1, payload.Unread)
		}
	})

	t.Run("station unread counters per subscriber", func(t *testing.T) {
		unreadRepo := repository.NewUnreadRepository(db)
		for _, id := range []uuid.UUID{bob.ID, carol.ID} {
			unread, err := unreadRepo.Get(id, &station.ID, nil)
			require.NoError(t, err)
			require.NotNil(t, unread)
			assert.Equal(t, 1, unread.Count)
		}
		// The sender's own counter is untouched
		senderUnread, err := unreadRepo.Get(alice.ID, &station.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, senderUnread)
	})

	t.Run("broadcasts do not trigger web push", func(t *testing.T) {
		assert.Empty(t, notifier.calls)
	})
}

func TestChatService_AddStationMessageWithoutSubscription(t *testing.T) {
	db := testDB(t)
	svc, _, _ := newChatFixture(t, db)
	alice := seedUser(t, db, "alice")

	_, err := svc.AddMessage(alice, model.AddMessageRequest{Text: strPtr("void")})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestChatService_GetChatRoundTrip(t *testing.T) {
	db := testDB(t)
	svc, _, notifier := newChatFixture(t, db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	notifier.expect(2)
	first, err := svc.AddMessage(alice, model.AddMessageRequest{
		Text:   strPtr("first"),
		UserID: strPtr(bob.ID.String()),
	})
	require.NoError(t, err)
	second, err := svc.AddMessage(alice, model.AddMessageRequest{
		ImageKey: strPtr("alice/some-image"),
		UserID:   strPtr(bob.ID.String()),
	})
	require.NoError(t, err)
	notifier.wait()

	chat, err := svc.GetChat(bob.ID, alice.ID, "", "")
	require.NoError(t, err)

	assert.Equal(t, bob.ID, chat.Receiver.ID)
	assert.Equal(t, "bob", chat.Receiver.Username)
	assert.False(t, chat.Receiver.IsStation)

	// Ascending send order, identical content
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, first.MessageID, chat.Messages[0].MessageID)
	assert.Equal(t, "first", chat.Messages[0].Text)
	assert.Equal(t, second.MessageID, chat.Messages[1].MessageID)
	assert.Equal(t, "alice/some-image", chat.Messages[1].ImageKey)
	assert.Equal(t, alice.ID, chat.Messages[0].Sender.UserID)
	assert.WithinDuration(t, first.SentAt, chat.Messages[0].SentAt, time.Second)

	t.Run("total spans the whole conversation across pages", func(t *testing.T) {
		page, err := svc.GetChat(bob.ID, alice.ID, "0", "1")
		require.NoError(t, err)
		require.Len(t, page.Messages, 1)
		assert.Equal(t, int64(2), page.Total)
	})
}

func TestChatService_GetChatStation(t *testing.T) {
	db := testDB(t)
	svc, _, _ := newChatFixture(t, db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	station := seedStation(t, db, 45.25, 19.84)
	subscribeToStation(t, db, alice.ID, station.ID)
	subscribeToStation(t, db, bob.ID, station.ID)

	_, err := svc.AddMessage(alice, model.AddMessageRequest{Text: strPtr("one")})
	require.NoError(t, err)
	_, err = svc.AddMessage(bob, model.AddMessageRequest{Text: strPtr("two")})
	require.NoError(t, err)

	chat, err := svc.GetChat(station.ID, alice.ID, "", "")
	require.NoError(t, err)

	assert.Equal(t, station.ID, chat.Receiver.ID)
	assert.Equal(t, "Station", chat.Receiver.Username)
	assert.True(t, chat.Receiver.IsStation)
	assert.Equal(t, 1, chat.Unread)
	assert.Equal(t, int64(2), chat.Total)

	require.Len(t, chat.Messages, 2)
	assert.Equal(t, "one", chat.Messages[0].Text)
	assert.Equal(t, "two", chat.Messages[1].Text)
}

func TestChatService_GetChatErrors(t *testing.T) {
	db := testDB(t)
	svc, _, _ := newChatFixture(t, db)
	alice := seedUser(t, db, "alice")

	t.Run("unknown receiver", func(t *testing.T) {
		_, err := svc.GetChat(uuid.New(), alice.ID, "", "")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("non-integer offset", func(t *testing.T) {
		_, err := svc.GetChat(alice.ID, alice.ID, "abc", "")
		assert.ErrorIs(t, err, ErrInvalidLimitOffset)
	})

	t.Run("non-integer limit", func(t *testing.T) {
		_, err := svc.GetChat(alice.ID, alice.ID, "", "2.5")
		assert.ErrorIs(t, err, ErrInvalidLimitOffset)
	})
}

func TestChatService_GetChats(t *testing.T) {
	db := testDB(t)
	svc, _, notifier := newChatFixture(t, db)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	station := seedStation(t, db, 45.25, 19.84)
	subscribeToStation(t, db, alice.ID, station.ID)

	_, err := svc.AddMessage(alice, model.AddMessageRequest{Text: strPtr("station hello")})
	require.NoError(t, err)

	notifier.expect(3)
	_, err = svc.AddMessage(alice, model.AddMessageRequest{Text: strPtr("to bob"), UserID: strPtr(bob.ID.String())})
	require.NoError(t, err)
	_, err = svc.AddMessage(alice, model.AddMessageRequest{Text: strPtr("to carol"), UserID: strPtr(carol.ID.String())})
	require.NoError(t, err)
	_, err = svc.AddMessage(alice, model.AddMessageRequest{Text: strPtr("to bob again"), UserID: strPtr(bob.ID.String())})
	require.NoError(t, err)
	notifier.wait()

	chats, err := svc.GetChats(alice, "", "")
	require.NoError(t, err)

	assert.True(t, chats.StationChat.Receiver.IsStation)
	assert.Equal(t, station.ID, chats.StationChat.Receiver.ID)
	require.Len(t, chats.StationChat.Messages, 1)

	// Most recently active peer first
	require.Len(t, chats.PrivateChats, 2)
	assert.Equal(t, bob.ID, chats.PrivateChats[0].Receiver.ID)
	assert.Equal(t, carol.ID, chats.PrivateChats[1].Receiver.ID)
	assert.Len(t, chats.PrivateChats[0].Messages, 2)
}

func TestChatService_ResetUnread(t *testing.T) {
	db := testDB(t)
	svc, _, notifier := newChatFixture(t, db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	station := seedStation(t, db, 45.25, 19.84)

	notifier.expect(3)
	for i := 0; i < 3; i++ {
		_, err := svc.AddMessage(alice, model.AddMessageRequest{
			Text:   strPtr("ping"),
			UserID: strPtr(bob.ID.String()),
		})
		require.NoError(t, err)
	}
	notifier.wait()

	t.Run("both keys set is invalid", func(t *testing.T) {
		_, err := svc.ResetUnread(bob, model.ResetUnreadRequest{
			StationID: strPtr(station.ID.String()),
			SenderID:  strPtr(alice.ID.String()),
			Count:     float64(0),
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("neither key set is invalid", func(t *testing.T) {
		_, err := svc.ResetUnread(bob, model.ResetUnreadRequest{Count: float64(0)})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("non-integer count", func(t *testing.T) {
		_, err := svc.ResetUnread(bob, model.ResetUnreadRequest{
			SenderID: strPtr(alice.ID.String()),
			Count:    2.5,
		})
		assert.ErrorIs(t, err, ErrInvalidCount)

		_, err = svc.ResetUnread(bob, model.ResetUnreadRequest{
			SenderID: strPtr(alice.ID.String()),
			Count:    "0",
		})
		assert.ErrorIs(t, err, ErrInvalidCount)
	})

	t.Run("unknown station", func(t *testing.T) {
		_, err := svc.ResetUnread(bob, model.ResetUnreadRequest{
			StationID: strPtr(uuid.New().String()),
			Count:     float64(0),
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown sender", func(t *testing.T) {
		_, err := svc.ResetUnread(bob, model.ResetUnreadRequest{
			SenderID: strPtr(uuid.New().String()),
			Count:    float64(0),
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("reset is idempotent", func(t *testing.T) {
		first, err := svc.ResetUnread(bob, model.ResetUnreadRequest{
			SenderID: strPtr(alice.ID.String()),
			Count:    float64(0),
		})
		require.NoError(t, err)
		assert.Equal(t, 0, first.Count)

		second, err := svc.ResetUnread(bob, model.ResetUnreadRequest{
			SenderID: strPtr(alice.ID.String()),
			Count:    float64(0),
		})
		require.NoError(t, err)
		assert.Equal(t, 0, second.Count)
	})

	t.Run("reset of absent counter is a zero no-op", func(t *testing.T) {
		unread, err := svc.ResetUnread(alice, model.ResetUnreadRequest{
			SenderID: strPtr(bob.ID.String()),
			Count:    float64(0),
		})
		require.NoError(t, err)
		assert.Equal(t, 0, unread.Count)
	})
}

func TestParsePage(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		offset, limit, err := parsePage("", "", 20)
		require.NoError(t, err)
		assert.Equal(t, 0, offset)
		assert.Equal(t, 20, limit)
	})

	t.Run("explicit values", func(t *testing.T) {
		offset, limit, err := parsePage("5", "10", 20)
		require.NoError(t, err)
		assert.Equal(t, 5, offset)
		assert.Equal(t, 10, limit)
	})

	t.Run("negative values clamp to defaults", func(t *testing.T) {
		offset, limit, err := parsePage("-1", "-3", 20)
		require.NoError(t, err)
		assert.Equal(t, 0, offset)
		assert.Equal(t, 20, limit)
	})

	t.Run("non-integer rejected", func(t *testing.T) {
		_, _, err := parsePage("x", "", 20)
		assert.ErrorIs(t, err, ErrInvalidLimitOffset)
		_, _, err = parsePage("", "1.5", 20)
		assert.ErrorIs(t, err, ErrInvalidLimitOffset)
	})
}
