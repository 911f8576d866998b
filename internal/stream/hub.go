package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix  = "roster:"
	channelSuffix  = ":updates"
	channelPattern = channelPrefix + "*" + channelSuffix
)

// Hub fans roster updates out to websocket clients watching an event. With
// redis configured, updates also travel between API instances.
type Hub struct {
	redis   *redis.Client
	origin  string
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
	cancel  context.CancelFunc
}

type Client struct {
	EventID string
	Send    chan []byte
}

// envelope tags a published payload with the instance that sent it, so the
// sender can skip its own message when redis echoes it back.
type envelope struct {
	Origin  string `json:"origin"`
	Payload []byte `json:"payload"`
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		origin:  uuid.NewString(),
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancel = cancel
		pubsub := redisClient.PSubscribe(ctx, channelPattern)
		// Wait for the subscription so nothing published after NewHub is missed.
		if _, err := pubsub.Receive(ctx); err != nil {
			slog.Warn("roster updates subscribe failed", "error", err)
			_ = pubsub.Close()
		} else {
			go h.relay(ctx, pubsub)
		}
	}
	return h
}

// Close stops relaying messages from redis.
func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
	}
}

func (h *Hub) Register(eventID string) *Client {
	client := &Client{
		EventID: eventID,
		Send:    make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[eventID] == nil {
		h.clients[eventID] = map[*Client]struct{}{}
	}
	h.clients[eventID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if eventClients, ok := h.clients[client.EventID]; ok {
		delete(eventClients, client)
		if len(eventClients) == 0 {
			delete(h.clients, client.EventID)
		}
	}
	close(client.Send)
}

// Broadcast delivers payload to local clients of the event and publishes it
// for the other instances.
func (h *Hub) Broadcast(ctx context.Context, eventID string, payload []byte) {
	h.deliver(eventID, payload)

	if h.redis == nil {
		return
	}
	msg, err := json.Marshal(envelope{Origin: h.origin, Payload: payload})
	if err != nil {
		slog.Error("roster update encode failed", "event_id", eventID, "error", err)
		return
	}
	if err := h.redis.Publish(ctx, redisChannel(eventID), msg).Err(); err != nil {
		slog.Error("redis publish error", "event_id", eventID, "error", err)
	}
}

// deliver sends under the read lock so Unregister cannot close a channel
// mid-send. Slow clients drop messages instead of blocking the hub.
func (h *Hub) deliver(eventID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[eventID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) relay(ctx context.Context, pubsub *redis.PubSub) {
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			eventID := eventIDFromChannel(msg.Channel)
			if eventID == "" {
				continue
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				slog.Warn("dropping malformed roster update", "channel", msg.Channel, "error", err)
				continue
			}
			if env.Origin == h.origin {
				continue
			}
			h.deliver(eventID, env.Payload)
		}
	}
}

func redisChannel(eventID string) string {
	return channelPrefix + eventID + channelSuffix
}

func eventIDFromChannel(ch string) string {
	// roster:{event}:updates
	if !strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	if len(ch) <= len(channelPrefix)+len(channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
