package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/model"
	"gorm.io/gorm"
)

// SessionRepository handles database operations for Session
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session
func (r *SessionRepository) Create(session *model.Session) error {
	return r.db.Create(session).Error
}

// FindByID finds a session by its token
func (r *SessionRepository) FindByID(id uuid.UUID) (*model.Session, error) {
	var session model.Session
	err := r.db.Where("session_id = ?", id).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByUserID finds the single live session of a user, if any
func (r *SessionRepository) FindByUserID(userID uuid.UUID) (*model.Session, error) {
	var session model.Session
	err := r.db.Where("user_id = ?", userID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateExpiry moves a session's expiry forward (sliding renewal)
func (r *SessionRepository) UpdateExpiry(id uuid.UUID, expiresAt time.Time) error {
	return r.db.Model(&model.Session{}).
		Where("session_id = ?", id).
		Update("expires_at", expiresAt).Error
}

// Delete removes a session unconditionally
func (r *SessionRepository) Delete(id uuid.UUID) error {
	return r.db.Where("session_id = ?", id).Delete(&model.Session{}).Error
}
