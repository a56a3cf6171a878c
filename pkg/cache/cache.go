// Package cache holds the Redis-backed profile cache. Message responses
// embed the sender's public profile, so hot chats would otherwise hit the
// users table once per rendered message.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/redis/go-redis/v9"
)

const profileTTL = time.Hour

// ProfileCache caches public user profiles in Redis. All methods are best
// effort: a Redis failure degrades to a database read, never to a request
// failure.
type ProfileCache struct {
	rdb *redis.Client
}

func NewProfileCache(rdb *redis.Client) *ProfileCache {
	return &ProfileCache{rdb: rdb}
}

func profileKey(userID uuid.UUID) string {
	return "profile:" + userID.String()
}

func (c *ProfileCache) GetUser(ctx context.Context, userID uuid.UUID) (*model.UserPublic, bool) {
	raw, err := c.rdb.Get(ctx, profileKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: get %s: %v", userID, err)
		}
		return nil, false
	}
	var profile model.UserPublic
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, false
	}
	return &profile, true
}

func (c *ProfileCache) SetUser(ctx context.Context, profile model.UserPublic) {
	raw, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, profileKey(profile.UserID), raw, profileTTL).Err(); err != nil {
		log.Printf("cache: set %s: %v", profile.UserID, err)
	}
}

// Invalidate drops a cached profile, called after any profile mutation.
func (c *ProfileCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := c.rdb.Del(ctx, profileKey(userID)).Err(); err != nil {
		log.Printf("cache: invalidate %s: %v", userID, err)
	}
}
