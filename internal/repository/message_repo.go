package repository

import (
	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/model"
	"gorm.io/gorm"
)

// MessageRepository handles database operations for both message classes
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// CreatePrivate inserts a new private message
func (r *MessageRepository) CreatePrivate(msg *model.PrivateMessage) error {
	return r.db.Create(msg).Error
}

// CreateStation inserts a new station broadcast message
func (r *MessageRepository) CreateStation(msg *model.StationMessage) error {
	return r.db.Create(msg).Error
}

// PrivateBetween returns the symmetric conversation between two users,
// newest first, paged by offset/limit.
func (r *MessageRepository) PrivateBetween(a, b uuid.UUID, offset, limit int) ([]model.PrivateMessage, error) {
	messages := []model.PrivateMessage{}
	err := r.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("sent_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// StationMessages returns a station's broadcast messages, newest first
func (r *MessageRepository) StationMessages(stationID uuid.UUID, offset, limit int) ([]model.StationMessage, error) {
	messages := []model.StationMessage{}
	err := r.db.
		Where("station_id = ?", stationID).
		Order("sent_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// CountPrivateBetween counts the symmetric conversation between two users
func (r *MessageRepository) CountPrivateBetween(a, b uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.PrivateMessage{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Count(&count).Error
	return count, err
}

// CountStation counts a station's broadcast messages
func (r *MessageRepository) CountStation(stationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.StationMessage{}).
		Where("station_id = ?", stationID).
		Count(&count).Error
	return count, err
}

// DistinctPeerIDs returns the ids of users the given user has exchanged
// private messages with, most recently active first. The de-dup scans rows in
// descending send order and keeps the first occurrence of each peer, so the
// order reflects latest activity; a plain DISTINCT would lose it.
func (r *MessageRepository) DistinctPeerIDs(userID uuid.UUID, offset, limit int) ([]uuid.UUID, error) {
	var rows []struct {
		SenderID   uuid.UUID
		ReceiverID uuid.UUID
	}
	err := r.db.Model(&model.PrivateMessage{}).
		Select("sender_id", "receiver_id").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("sent_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool)
	peers := []uuid.UUID{}
	for _, row := range rows {
		peer := row.SenderID
		if peer == userID {
			peer = row.ReceiverID
		}
		if seen[peer] {
			continue
		}
		seen[peer] = true
		peers = append(peers, peer)
	}

	if offset >= len(peers) {
		return []uuid.UUID{}, nil
	}
	end := offset + limit
	if end > len(peers) {
		end = len(peers)
	}
	return peers[offset:end], nil
}
