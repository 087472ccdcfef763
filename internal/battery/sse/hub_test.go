package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop())
	a := &Client{ID: "a", Events: make(chan Event, 4)}
	b := &Client{ID: "b", Events: make(chan Event, 1)}
	hub.Register(a)
	hub.Register(b)
	assert.Equal(t, 2, hub.ClientCount())

	hub.PublishBatteryUpdate("1700000000000", "created", 0)
	hub.PublishSettingsUpdate("repairItems", "deleted")

	first := <-a.Events
	assert.Equal(t, EventBatteryUpdate, first.EventType)
	assert.JSONEq(t, `{"id":"1700000000000","action":"created"}`, first.Data)
	second := <-a.Events
	assert.Equal(t, EventSettingsUpdate, second.EventType)
	assert.Greater(t, second.ID, first.ID)

	// b 的缓冲区只有1，第二个事件被丢弃
	require.Len(t, b.Events, 1)
	assert.Equal(t, uint64(1), hub.Dropped())

	hub.Unregister("a")
	hub.Unregister("a")
	_, open := <-a.Events
	assert.False(t, open)
	assert.Equal(t, 1, hub.ClientCount())
}
