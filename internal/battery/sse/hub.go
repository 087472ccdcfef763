package sse

import (
	"encoding/json"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// 事件类型
const (
	EventBatteryUpdate  = "battery_update"
	EventSettingsUpdate = "settings_update"
)

// Event represents a Server-Sent Event
type Event struct {
	ID        uint64 `json:"id"`
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client represents a connected SSE client
type Client struct {
	ID     string
	Events chan Event
}

// Hub manages all SSE client connections
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	seq     atomic.Uint64
	dropped atomic.Uint64
	logger  *zap.Logger
}

// NewHub creates a new SSE Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.logger.Debug("SSE client registered", zap.String("client_id", client.ID), zap.Int("total", len(h.clients)))
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Debug("SSE client unregistered", zap.String("client_id", clientID), zap.Int("total", len(h.clients)))
	}
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped 因缓冲区满而丢弃的事件数
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Broadcast sends an event to all connected clients
func (h *Hub) Broadcast(event Event) {
	event.ID = h.seq.Inc()
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
			h.dropped.Inc()
			h.logger.Warn("SSE client buffer full, skipping event", zap.String("client_id", client.ID))
		}
	}
}

// Publish 广播一个JSON负载的事件
func (h *Hub) Publish(eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Marshal SSE payload failed", zap.String("event", eventType), zap.Error(err))
		return
	}
	h.Broadcast(Event{EventType: eventType, Data: string(data)})
}

// BatteryChange 电池记录变更通知
type BatteryChange struct {
	ID     string `json:"id,omitempty"`
	Action string `json:"action"`
	Count  int    `json:"count,omitempty"`
}

// PublishBatteryUpdate 记录创建/更新/删除/导入等
func (h *Hub) PublishBatteryUpdate(id, action string, count int) {
	h.Publish(EventBatteryUpdate, BatteryChange{ID: id, Action: action, Count: count})
}

// PublishSettingsUpdate 设置变更
func (h *Hub) PublishSettingsUpdate(list, action string) {
	h.Publish(EventSettingsUpdate, map[string]string{"list": list, "action": action})
}
