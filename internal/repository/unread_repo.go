package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/model"
	"gorm.io/gorm"
)

// UnreadRepository handles database operations for unread counters
type UnreadRepository struct {
	db *gorm.DB
}

func NewUnreadRepository(db *gorm.DB) *UnreadRepository {
	return &UnreadRepository{db: db}
}

func (r *UnreadRepository) keyed(receiverID uuid.UUID, stationID, senderID *uuid.UUID) *gorm.DB {
	query := r.db.Where("receiver_id = ?", receiverID)
	if stationID != nil {
		query = query.Where("station_id = ?", *stationID)
	} else {
		query = query.Where("station_id IS NULL")
	}
	if senderID != nil {
		query = query.Where("sender_id = ?", *senderID)
	} else {
		query = query.Where("sender_id IS NULL")
	}
	return query
}

// Increment bumps the counter for the given key, creating it at 1 if absent.
// Concurrent increments for the same key may lose an update; that imprecision
// is accepted.
func (r *UnreadRepository) Increment(receiverID uuid.UUID, stationID, senderID *uuid.UUID) (*model.Unread, error) {
	var unread model.Unread
	err := r.keyed(receiverID, stationID, senderID).First(&unread).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		unread = model.Unread{
			ReceiverID: receiverID,
			StationID:  stationID,
			SenderID:   senderID,
			Count:      1,
		}
		if err := r.db.Create(&unread).Error; err != nil {
			return nil, err
		}
		return &unread, nil
	}
	if err != nil {
		return nil, err
	}
	unread.Count++
	if err := r.db.Model(&unread).Update("count", unread.Count).Error; err != nil {
		return nil, err
	}
	return &unread, nil
}

// Get returns the counter for the given key, or nil when none exists
func (r *UnreadRepository) Get(receiverID uuid.UUID, stationID, senderID *uuid.UUID) (*model.Unread, error) {
	var unread model.Unread
	err := r.keyed(receiverID, stationID, senderID).First(&unread).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &unread, nil
}

// Reset sets the counter to the given value. When no row exists the reset is
// a no-op returning a zero-valued counter rather than an error.
func (r *UnreadRepository) Reset(receiverID uuid.UUID, stationID, senderID *uuid.UUID, count int) (*model.Unread, error) {
	var unread model.Unread
	err := r.keyed(receiverID, stationID, senderID).First(&unread).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.Unread{
			ReceiverID: receiverID,
			StationID:  stationID,
			SenderID:   senderID,
			Count:      0,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	unread.Count = count
	if err := r.db.Model(&unread).Update("count", count).Error; err != nil {
		return nil, err
	}
	return &unread, nil
}
