package service

import (
	"fmt"

	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/neartalkapp/neartalk/internal/repository"
)

// PushService manages Web Push device registrations.
type PushService struct {
	pushRepo *repository.PushRepository
}

func NewPushService(pushRepo *repository.PushRepository) *PushService {
	return &PushService{pushRepo: pushRepo}
}

func verifySubscription(req model.PushSubscribeRequest) error {
	if req.Endpoint == "" {
		return fmt.Errorf("%w: endpoint must not be empty", ErrValidation)
	}
	if req.Keys == nil || req.Keys.Auth == "" || req.Keys.P256dh == "" {
		return fmt.Errorf("%w: keys.auth and keys.p256dh must not be empty", ErrValidation)
	}
	return nil
}

// Subscribe registers a device for the user. Subscribing an endpoint that
// already exists re-owns it, so a shared browser follows whoever logged in
// last.
func (s *PushService) Subscribe(user *model.User, req model.PushSubscribeRequest) (*model.PushSubscription, error) {
	if err := verifySubscription(req); err != nil {
		return nil, err
	}
	sub := &model.PushSubscription{
		UserID:   user.ID,
		Endpoint: req.Endpoint,
		Auth:     req.Keys.Auth,
		P256dh:   req.Keys.P256dh,
	}
	if err := s.pushRepo.Upsert(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Unsubscribe removes a registration matching the exact subscription the
// client presented.
func (s *PushService) Unsubscribe(user *model.User, req model.PushSubscribeRequest) error {
	if err := verifySubscription(req); err != nil {
		return err
	}
	sub, err := s.pushRepo.Find(user.ID, req.Endpoint, req.Keys.Auth, req.Keys.P256dh)
	if err != nil {
		return err
	}
	if sub == nil {
		return fmt.Errorf("%w: no such push subscription", ErrNotFound)
	}
	return s.pushRepo.Delete(sub)
}
