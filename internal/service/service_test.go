package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/config"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/neartalkapp/neartalk/internal/repository"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.Station{},
		&model.Subscription{},
		&model.PrivateMessage{},
		&model.StationMessage{},
		&model.Unread{},
		&model.PushSubscription{},
	))
	return db
}

var testHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

func seedUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()

	user := &model.User{
		ID:       uuid.New(),
		Username: username,
		Email:    fmt.Sprintf("%s@neartalk.local", username),
		Password: testHash,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// fakeLive records live-channel pushes.
type fakeLive struct {
	mu    sync.Mutex
	sends []liveSend
}

type liveSend struct {
	userID uuid.UUID
	event  string
	data   any
}

func (f *fakeLive) Send(userID uuid.UUID, event string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, liveSend{userID: userID, event: event, data: data})
}

func (f *fakeLive) sent() []liveSend {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]liveSend, len(f.sends))
	copy(out, f.sends)
	return out
}

// fakeNotifier records web-push dispatches; done is closed-over per test via
// the wait group since dispatch runs on its own goroutine.
type fakeNotifier struct {
	mu    sync.Mutex
	wg    sync.WaitGroup
	calls []uuid.UUID
}

func (f *fakeNotifier) SendToUser(userID uuid.UUID, payload any) {
	f.mu.Lock()
	f.calls = append(f.calls, userID)
	f.mu.Unlock()
	f.wg.Done()
}

func (f *fakeNotifier) expect(n int) {
	f.wg.Add(n)
}

func (f *fakeNotifier) wait() []uuid.UUID {
	f.wg.Wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uuid.UUID, len(f.calls))
	copy(out, f.calls)
	return out
}

func newChatFixture(t *testing.T, db *gorm.DB) (*ChatService, *fakeLive, *fakeNotifier) {
	t.Helper()

	live := &fakeLive{}
	notifier := &fakeNotifier{}
	svc := NewChatService(
		repository.NewUserRepository(db),
		repository.NewStationRepository(db),
		repository.NewMessageRepository(db),
		repository.NewUnreadRepository(db),
		live,
		notifier,
		nil,
		config.ChatConfig{DefaultLimit: 20, DefaultListLimit: 20},
	)
	return svc, live, notifier
}
