// Package notification delivers Web Push messages to registered devices.
package notification

import (
	"encoding/json"
	"log"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/config"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/neartalkapp/neartalk/internal/repository"
)

// Dispatcher sends push notifications to every device a user has registered.
// Delivery is best effort: failures are logged, and a permanent provider
// rejection removes the dead subscription.
type Dispatcher struct {
	pushRepo        *repository.PushRepository
	vapidPublicKey  string
	vapidPrivateKey string
	subscriber      string
}

// NewDispatcher builds a dispatcher from config. Missing VAPID keys are
// generated and logged so they can be persisted in the environment; keys that
// change across restarts invalidate existing browser subscriptions.
func NewDispatcher(pushRepo *repository.PushRepository, cfg config.PushConfig) (*Dispatcher, error) {
	publicKey, privateKey := cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey
	if publicKey == "" || privateKey == "" {
		log.Println("VAPID keys not found in environment, generating new keys")
		generatedPrivate, generatedPublic, err := webpush.GenerateVAPIDKeys()
		if err != nil {
			return nil, err
		}
		privateKey, publicKey = generatedPrivate, generatedPublic
		log.Printf("generated VAPID keys, add to .env to persist:\nVAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s", publicKey, privateKey)
	}
	return &Dispatcher{
		pushRepo:        pushRepo,
		vapidPublicKey:  publicKey,
		vapidPrivateKey: privateKey,
		subscriber:      cfg.Subscriber,
	}, nil
}

// PublicKey returns the VAPID public key clients subscribe with.
func (d *Dispatcher) PublicKey() string {
	return d.vapidPublicKey
}

// SendToUser pushes the payload to all of the user's devices. It never
// returns an error to the caller; the triggering request must not fail on
// delivery problems.
func (d *Dispatcher) SendToUser(userID uuid.UUID, payload any) {
	subs, err := d.pushRepo.ForUser(userID)
	if err != nil {
		log.Printf("push: load subscriptions for %s: %v", userID, err)
		return
	}
	if len(subs) == 0 {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("push: marshal payload: %v", err)
		return
	}
	for i := range subs {
		d.sendToDevice(&subs[i], body)
	}
}

func (d *Dispatcher) sendToDevice(sub *model.PushSubscription, body []byte) {
	resp, err := webpush.SendNotification(body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.Auth,
			P256dh: sub.P256dh,
		},
	}, &webpush.Options{
		Subscriber:      d.subscriber,
		VAPIDPublicKey:  d.vapidPublicKey,
		VAPIDPrivateKey: d.vapidPrivateKey,
		TTL:             30,
	})
	if err != nil {
		log.Printf("push: send to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// 404/410 means the subscription is permanently gone
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		if err := d.pushRepo.DeleteByEndpoint(sub.Endpoint); err != nil {
			log.Printf("push: cleanup dead subscription %s: %v", sub.Endpoint, err)
		} else {
			log.Printf("push: removed dead subscription %s", sub.Endpoint)
		}
	}
}
