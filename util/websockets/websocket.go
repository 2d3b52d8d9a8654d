package websockets

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/bwise1/eventbuzz/util"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait       = 10 * time.Second
	broadcastBuffer = 64
	// MaxRadius bounds a subscription circle in meters.
	MaxRadius     = 50000.0
	defaultRadius = 5000.0
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewWebSocketManager initializes a WebSocketManager
func NewWebSocketManager(logger zerolog.Logger) *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*websocket.Conn]*Client),
		broadcast:  make(chan Broadcast, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		log:        logger.With().Str("component", "live").Logger(),
	}
}

// Run owns all connection writes until ctx is cancelled, then closes every
// connection.
func (manager *WebSocketManager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(manager.done)
			manager.mu.Lock()
			for conn := range manager.clients {
				_ = conn.Close()
				delete(manager.clients, conn)
			}
			manager.mu.Unlock()
			return

		case client := <-manager.register:
			manager.mu.Lock()
			manager.clients[client.Conn] = client
			manager.mu.Unlock()

		case conn := <-manager.unregister:
			manager.mu.Lock()
			if _, exists := manager.clients[conn]; exists {
				delete(manager.clients, conn)
				_ = conn.Close()
				manager.log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("client disconnected")
			}
			manager.mu.Unlock()

		case b := <-manager.broadcast:
			manager.mu.Lock()
			for conn, client := range manager.clients {
				if !client.wants(b) {
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, b.Payload); err != nil {
					_ = conn.Close()
					delete(manager.clients, conn)
				}
			}
			manager.mu.Unlock()
		}
	}
}

func (c *Client) wants(b Broadcast) bool {
	if !c.Subscribed {
		return false
	}
	if !b.Located {
		return true
	}
	return isNearby(c.Latitude, c.Longitude, b.Latitude, b.Longitude, c.Radius)
}

// Publish queues a payload for delivery. It never blocks; when the queue
// is full the payload is dropped.
func (manager *WebSocketManager) Publish(b Broadcast) {
	select {
	case manager.broadcast <- b:
	default:
		manager.log.Warn().Msg("live feed queue full, dropping change")
	}
}

// PublishChange wraps data in an event_change envelope and queues it.
func (manager *WebSocketManager) PublishChange(data any, located bool, lat, lng float64) {
	payload, err := json.Marshal(Envelope{Type: MsgTypeEventChange, Data: data})
	if err != nil {
		manager.log.Error().Err(err).Msg("encode live change")
		return
	}
	manager.Publish(Broadcast{Payload: payload, Located: located, Latitude: lat, Longitude: lng})
}

// HandleConnections upgrades HTTP requests to WebSocket connections
func (manager *WebSocketManager) HandleConnections(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		manager.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{Conn: conn}
	select {
	case manager.register <- client:
	case <-manager.done:
		_ = conn.Close()
		return
	}

	defer func() {
		select {
		case manager.unregister <- conn:
		case <-manager.done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var message Message
		if err := json.Unmarshal(msg, &message); err != nil {
			manager.log.Debug().Err(err).Msg("invalid client frame")
			continue
		}

		switch message.Type {
		case MsgTypeSubscribe:
			if !validSubscription(message) {
				continue
			}
			radius := message.Radius
			if radius <= 0 {
				radius = defaultRadius
			}
			manager.mu.Lock()
			client.Subscribed = true
			client.Latitude = message.Latitude
			client.Longitude = message.Longitude
			client.Radius = radius
			manager.mu.Unlock()

		case MsgTypeUnsubscribe:
			manager.mu.Lock()
			client.Subscribed = false
			manager.mu.Unlock()
		}
	}
}

func validSubscription(m Message) bool {
	return m.Latitude >= -90 && m.Latitude <= 90 &&
		m.Longitude >= -180 && m.Longitude <= 180 &&
		m.Radius >= 0 && m.Radius <= MaxRadius
}

// isNearby checks if an event lies within radius meters of the subscriber
func isNearby(userLat, userLon, eventLat, eventLon, radius float64) bool {
	return util.Haversine(userLat, userLon, eventLat, eventLon) <= radius
}
