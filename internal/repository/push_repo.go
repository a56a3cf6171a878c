package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PushRepository handles database operations for push subscriptions
type PushRepository struct {
	db *gorm.DB
}

func NewPushRepository(db *gorm.DB) *PushRepository {
	return &PushRepository{db: db}
}

// Upsert saves a push subscription. When the endpoint is already registered
// (possibly under a different user) the row is re-owned instead of
// duplicated: same device, new owner.
func (r *PushRepository) Upsert(sub *model.PushSubscription) error {
	sub.CreatedAt = time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"user_id":    sub.UserID,
			"auth":       sub.Auth,
			"p256dh":     sub.P256dh,
			"created_at": sub.CreatedAt,
		}),
	}).Create(sub).Error
}

// Find returns the subscription matching all four identity fields, or nil
func (r *PushRepository) Find(userID uuid.UUID, endpoint, auth, p256dh string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := r.db.
		Where("user_id = ? AND endpoint = ? AND auth = ? AND p256dh = ?", userID, endpoint, auth, p256dh).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ForUser returns all registered devices of a user
func (r *PushRepository) ForUser(userID uuid.UUID) ([]model.PushSubscription, error) {
	subs := []model.PushSubscription{}
	err := r.db.Where("user_id = ?", userID).Find(&subs).Error
	return subs, err
}

// Delete removes a subscription row
func (r *PushRepository) Delete(sub *model.PushSubscription) error {
	return r.db.Delete(sub).Error
}

// DeleteByEndpoint removes whichever subscription owns the endpoint. Used for
// cleanup after a permanent delivery failure.
func (r *PushRepository) DeleteByEndpoint(endpoint string) error {
	return r.db.Where("endpoint = ?", endpoint).Delete(&model.PushSubscription{}).Error
}
