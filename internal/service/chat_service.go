package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/config"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/neartalkapp/neartalk/internal/repository"
	"gorm.io/gorm"
)

// LiveSender pushes an event to a user's live channel. Send is a no-op when
// the user has no registered connection and must never block or fail the
// caller.
type LiveSender interface {
	Send(userID uuid.UUID, event string, data any)
}

// Notifier delivers a push notification to all of a user's registered
// devices. Implementations handle permanent-failure cleanup themselves.
type Notifier interface {
	SendToUser(userID uuid.UUID, payload any)
}

// ChatService is the chat engine: it validates and classifies submitted
// messages, persists them, keeps unread counters and fans out to live
// connections and push devices.
type ChatService struct {
	userRepo    *repository.UserRepository
	stationRepo *repository.StationRepository
	messageRepo *repository.MessageRepository
	unreadRepo  *repository.UnreadRepository
	live        LiveSender
	notifier    Notifier
	cache       ProfileCache
	cfg         config.ChatConfig
}

func NewChatService(
	userRepo *repository.UserRepository,
	stationRepo *repository.StationRepository,
	messageRepo *repository.MessageRepository,
	unreadRepo *repository.UnreadRepository,
	live LiveSender,
	notifier Notifier,
	cache ProfileCache,
	cfg config.ChatConfig,
) *ChatService {
	return &ChatService{
		userRepo:    userRepo,
		stationRepo: stationRepo,
		messageRepo: messageRepo,
		unreadRepo:  unreadRepo,
		live:        live,
		notifier:    notifier,
		cache:       cache,
		cfg:         cfg,
	}
}

// ========== Payload validation ==========

func verifyText(text *string) error {
	if text == nil {
		return nil
	}
	if *text == "" {
		return fmt.Errorf("%w: text must not be empty", ErrValidation)
	}
	if utf8.RuneCountInString(*text) > model.MaxTextLen {
		return fmt.Errorf("%w: text too long, %d chars is enough", ErrValidation, model.MaxTextLen)
	}
	return nil
}

func verifyImageKey(imageKey *string) error {
	if imageKey != nil && *imageKey == "" {
		return fmt.Errorf("%w: image_key must not be empty", ErrValidation)
	}
	return nil
}

// verifyAddMessage fails fast before any write
func verifyAddMessage(req model.AddMessageRequest) error {
	if err := verifyImageKey(req.ImageKey); err != nil {
		return err
	}
	if err := verifyText(req.Text); err != nil {
		return err
	}
	if req.Text == nil && req.ImageKey == nil {
		return fmt.Errorf("%w: you must provide either text or image_key", ErrValidation)
	}
	return nil
}

// parsePage validates offset/limit query values. Non-integers are rejected;
// missing values fall back to the configured default.
func parsePage(offsetRaw, limitRaw string, defaultLimit int) (int, int, error) {
	offset := 0
	if offsetRaw != "" {
		n, err := strconv.Atoi(offsetRaw)
		if err != nil {
			return 0, 0, ErrInvalidLimitOffset
		}
		offset = n
	}
	limit := defaultLimit
	if limitRaw != "" {
		n, err := strconv.Atoi(limitRaw)
		if err != nil {
			return 0, 0, ErrInvalidLimitOffset
		}
		limit = n
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return offset, limit, nil
}

func verifyCount(raw any) (int, error) {
	switch n := raw.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, ErrInvalidCount
		}
		return int(n), nil
	default:
		return 0, ErrInvalidCount
	}
}

// ========== Message submission ==========

// AddMessage validates and classifies a submitted payload, persists it and
// fans it out. A payload carrying user_id is a private message to that user;
// otherwise it broadcasts to the sender's current station. Fan-out is best
// effort and never rolls back or fails the persisted message.
func (s *ChatService) AddMessage(sender *model.User, req model.AddMessageRequest) (*model.MessageView, error) {
	if err := verifyAddMessage(req); err != nil {
		return nil, err
	}

	if req.UserID != nil {
		receiverID, err := uuid.Parse(*req.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: there is no user with user id %s", ErrNotFound, *req.UserID)
		}
		if _, err := s.userRepo.FindByID(receiverID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: there is no user with user id %s", ErrNotFound, receiverID)
			}
			return nil, err
		}
		return s.addPrivate(sender, receiverID, req)
	}

	// No sender subscription is a precondition violation, not a user error
	station, err := s.stationRepo.StationForUser(sender.ID)
	if err != nil {
		return nil, fmt.Errorf("sender %s has no station subscription: %w", sender.ID, err)
	}
	return s.addStation(sender, station, req)
}

func (s *ChatService) addPrivate(sender *model.User, receiverID uuid.UUID, req model.AddMessageRequest) (*model.MessageView, error) {
	msg := &model.PrivateMessage{
		ID:         uuid.New(),
		SenderID:   sender.ID,
		ReceiverID: receiverID,
		Text:       deref(req.Text),
		ImageKey:   deref(req.ImageKey),
		SentAt:     time.Now().UTC(),
	}
	if err := s.messageRepo.CreatePrivate(msg); err != nil {
		return nil, err
	}

	view := s.privateView(msg)

	senderID := sender.ID
	count := 0
	unread, err := s.unreadRepo.Increment(receiverID, nil, &senderID)
	if err != nil {
		log.Printf("unread increment for %s failed: %v", receiverID, err)
	} else {
		count = unread.Count
	}

	live := model.LiveMessage{IsStation: false, Unread: count, MessageView: *view}
	s.live.Send(receiverID, model.EventMessage, live)
	if s.notifier != nil {
		go s.notifier.SendToUser(receiverID, live)
	}
	return view, nil
}

func (s *ChatService) addStation(sender *model.User, station *model.Station, req model.AddMessageRequest) (*model.MessageView, error) {
	msg := &model.StationMessage{
		ID:        uuid.New(),
		SenderID:  sender.ID,
		StationID: station.ID,
		Text:      deref(req.Text),
		ImageKey:  deref(req.ImageKey),
		SentAt:    time.Now().UTC(),
	}
	if err := s.messageRepo.CreateStation(msg); err != nil {
		return nil, err
	}

	view := s.stationView(msg)

	subscriberIDs, err := s.stationRepo.SubscriberIDs(station.ID)
	if err != nil {
		log.Printf("station %s fan-out skipped: %v", station.ID, err)
		return view, nil
	}
	for _, subscriberID := range subscriberIDs {
		if subscriberID == sender.ID {
			continue
		}
		// One subscriber's failure must not abort the rest
		count := 0
		unread, err := s.unreadRepo.Increment(subscriberID, &station.ID, nil)
		if err != nil {
			log.Printf("unread increment for %s failed: %v", subscriberID, err)
		} else {
			count = unread.Count
		}
		s.live.Send(subscriberID, model.EventMessage, model.LiveMessage{
			IsStation:   true,
			Unread:      count,
			MessageView: *view,
		})
	}
	return view, nil
}

// ========== Message retrieval ==========

// GetChat returns one conversation page for the requester. The receiver id
// resolves to a station or a user; anything else is not found.
func (s *ChatService) GetChat(receiverID uuid.UUID, requesterID uuid.UUID, offsetRaw, limitRaw string) (*model.ChatView, error) {
	offset, limit, err := parsePage(offsetRaw, limitRaw, s.cfg.DefaultLimit)
	if err != nil {
		return nil, err
	}

	station, err := s.stationRepo.FindByID(receiverID)
	if err == nil {
		return s.stationChat(station, requesterID, offset, limit)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user, err := s.userRepo.FindByID(receiverID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: there is no receiver with id %s", ErrNotFound, receiverID)
	}
	if err != nil {
		return nil, err
	}
	return s.privateChat(user, requesterID, offset, limit)
}

// GetChats returns the requester's full chat list: their station conversation
// plus the paged private conversations, most recently active first.
func (s *ChatService) GetChats(requester *model.User, offsetRaw, limitRaw string) (*model.ChatListView, error) {
	offset, limit, err := parsePage(offsetRaw, limitRaw, s.cfg.DefaultListLimit)
	if err != nil {
		return nil, err
	}

	station, err := s.stationRepo.StationForUser(requester.ID)
	if err != nil {
		return nil, fmt.Errorf("requester %s has no station subscription: %w", requester.ID, err)
	}
	stationChat, err := s.stationChat(station, requester.ID, 0, s.cfg.DefaultLimit)
	if err != nil {
		return nil, err
	}

	peerIDs, err := s.messageRepo.DistinctPeerIDs(requester.ID, offset, limit)
	if err != nil {
		return nil, err
	}

	privateChats := []model.ChatView{}
	for _, peerID := range peerIDs {
		peer, err := s.userRepo.FindByID(peerID)
		if err != nil {
			log.Printf("chat list: resolve peer %s: %v", peerID, err)
			continue
		}
		chat, err := s.privateChat(peer, requester.ID, 0, s.cfg.DefaultLimit)
		if err != nil {
			return nil, err
		}
		privateChats = append(privateChats, *chat)
	}

	return &model.ChatListView{
		StationChat:  *stationChat,
		PrivateChats: privateChats,
	}, nil
}

func (s *ChatService) stationChat(station *model.Station, requesterID uuid.UUID, offset, limit int) (*model.ChatView, error) {
	messages, err := s.messageRepo.StationMessages(station.ID, offset, limit)
	if err != nil {
		return nil, err
	}
	views := make([]model.MessageView, 0, len(messages))
	// Fetched newest first; returned in ascending send order
	for i := len(messages) - 1; i >= 0; i-- {
		views = append(views, *s.stationView(&messages[i]))
	}

	unreadCount, err := s.unreadCount(requesterID, &station.ID, nil)
	if err != nil {
		return nil, err
	}
	total, err := s.messageRepo.CountStation(station.ID)
	if err != nil {
		return nil, err
	}
	return &model.ChatView{
		Receiver: model.ReceiverView{
			ID:        station.ID,
			Username:  "Station",
			IsStation: true,
		},
		Unread:   unreadCount,
		Total:    total,
		Messages: views,
	}, nil
}

func (s *ChatService) privateChat(peer *model.User, requesterID uuid.UUID, offset, limit int) (*model.ChatView, error) {
	messages, err := s.messageRepo.PrivateBetween(peer.ID, requesterID, offset, limit)
	if err != nil {
		return nil, err
	}
	views := make([]model.MessageView, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		views = append(views, *s.privateView(&messages[i]))
	}

	peerID := peer.ID
	unreadCount, err := s.unreadCount(requesterID, nil, &peerID)
	if err != nil {
		return nil, err
	}
	total, err := s.messageRepo.CountPrivateBetween(peer.ID, requesterID)
	if err != nil {
		return nil, err
	}
	return &model.ChatView{
		Receiver: model.ReceiverView{
			ID:        peer.ID,
			Username:  peer.Username,
			AvatarKey: peer.AvatarKey,
			IsStation: false,
		},
		Unread:   unreadCount,
		Total:    total,
		Messages: views,
	}, nil
}

func (s *ChatService) unreadCount(receiverID uuid.UUID, stationID, senderID *uuid.UUID) (int, error) {
	unread, err := s.unreadRepo.Get(receiverID, stationID, senderID)
	if err != nil {
		return 0, err
	}
	if unread == nil {
		return 0, nil
	}
	return unread.Count, nil
}

// ========== Unread reset ==========

// ResetUnread sets one of the requester's unread counters to an explicit
// value. Exactly one of station_id/sender_id must be set; resetting a counter
// that does not exist yet is a no-op returning a zero-valued result.
func (s *ChatService) ResetUnread(requester *model.User, req model.ResetUnreadRequest) (*model.Unread, error) {
	if (req.StationID == nil) == (req.SenderID == nil) {
		return nil, fmt.Errorf("%w: exactly one of station_id and sender_id must be set", ErrValidation)
	}
	count, err := verifyCount(req.Count)
	if err != nil {
		return nil, err
	}

	var stationID, senderID *uuid.UUID
	if req.StationID != nil {
		id, err := uuid.Parse(*req.StationID)
		if err != nil {
			return nil, fmt.Errorf("%w: there is no station with id %s", ErrNotFound, *req.StationID)
		}
		if _, err := s.stationRepo.FindByID(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: there is no station with id %s", ErrNotFound, id)
			}
			return nil, err
		}
		stationID = &id
	} else {
		id, err := uuid.Parse(*req.SenderID)
		if err != nil {
			return nil, fmt.Errorf("%w: there is no user with user id %s", ErrNotFound, *req.SenderID)
		}
		if _, err := s.userRepo.FindByID(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: there is no user with user id %s", ErrNotFound, id)
			}
			return nil, err
		}
		senderID = &id
	}

	return s.unreadRepo.Reset(requester.ID, stationID, senderID, count)
}

// ========== Response enrichment ==========

// senderBlock resolves a sender's public profile, consulting the cache first.
// A missing user yields an empty block rather than an error.
func (s *ChatService) senderBlock(senderID uuid.UUID) model.UserPublic {
	ctx := context.Background()
	if s.cache != nil {
		if profile, ok := s.cache.GetUser(ctx, senderID); ok {
			return *profile
		}
	}
	user, err := s.userRepo.FindByID(senderID)
	if err != nil {
		return model.UserPublic{}
	}
	profile := user.ToPublic()
	if s.cache != nil {
		s.cache.SetUser(ctx, profile)
	}
	return profile
}

func (s *ChatService) privateView(msg *model.PrivateMessage) *model.MessageView {
	return &model.MessageView{
		MessageID:  msg.ID,
		ReceiverID: msg.ReceiverID,
		Text:       msg.Text,
		ImageKey:   msg.ImageKey,
		SentAt:     msg.SentAt,
		Sender:     s.senderBlock(msg.SenderID),
	}
}

func (s *ChatService) stationView(msg *model.StationMessage) *model.MessageView {
	return &model.MessageView{
		MessageID:  msg.ID,
		ReceiverID: msg.StationID,
		Text:       msg.Text,
		ImageKey:   msg.ImageKey,
		SentAt:     msg.SentAt,
		Sender:     s.senderBlock(msg.SenderID),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
