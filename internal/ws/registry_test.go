package ws

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SendToRegisteredClient(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()
	client := NewClient(registry, nil)

	registry.Register(userID, client)
	assert.True(t, registry.Online(userID))

	registry.Send(userID, model.EventMessage, map[string]string{"text": "hi"})

	select {
	case raw := <-client.send:
		var event model.Event
		require.NoError(t, json.Unmarshal(raw, &event))
		assert.Equal(t, model.EventMessage, event.Event)
	default:
		t.Fatal("expected a queued event")
	}
}

func TestRegistry_SendToUnknownUserIsNoOp(t *testing.T) {
	registry := NewRegistry()
	// Must not panic or block
	registry.Send(uuid.New(), model.EventMessage, nil)
}

func TestRegistry_NewConnectionReplacesOld(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()

	old := NewClient(registry, nil)
	registry.Register(userID, old)

	replacement := NewClient(registry, nil)
	registry.Register(userID, replacement)

	registry.Send(userID, model.EventMessage, nil)
	select {
	case <-replacement.send:
	default:
		t.Fatal("replacement connection should receive events")
	}
	select {
	case <-old.send:
		t.Fatal("stale connection must not receive events")
	default:
	}
}

func TestRegistry_UnregisterByHandle(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()

	old := NewClient(registry, nil)
	registry.Register(userID, old)
	replacement := NewClient(registry, nil)
	registry.Register(userID, replacement)

	// The replaced connection's late unregister must not evict its successor
	registry.Unregister(old)
	assert.True(t, registry.Online(userID))

	registry.Unregister(replacement)
	assert.False(t, registry.Online(userID))

	// Unregistering an unknown handle is harmless
	registry.Unregister(NewClient(registry, nil))
}

func TestRegistry_SendDropsWhenBufferFull(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()
	client := NewClient(registry, nil)
	registry.Register(userID, client)

	// Nobody drains the channel; Send must never block the caller
	for i := 0; i < cap(client.send)+10; i++ {
		registry.Send(userID, model.EventMessage, i)
	}
	assert.Len(t, client.send, cap(client.send))
}
