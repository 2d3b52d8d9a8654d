package websockets

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Message types
const (
	MsgTypeSubscribe   = "subscribe"
	MsgTypeUnsubscribe = "unsubscribe"
	MsgTypeEventChange = "event_change"
)

// Client is a connected live-feed listener. It only receives changes for
// events inside its subscribed circle.
type Client struct {
	Conn       *websocket.Conn
	Subscribed bool
	Latitude   float64
	Longitude  float64
	Radius     float64
}

type WebSocketManager struct {
	clients    map[*websocket.Conn]*Client
	broadcast  chan Broadcast
	register   chan *Client
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.Mutex
	log        zerolog.Logger
}

// Broadcast is a payload to fan out. Located payloads go to subscribers
// whose circle contains the point; unlocated ones go to every subscriber.
type Broadcast struct {
	Payload   []byte
	Located   bool
	Latitude  float64
	Longitude float64
}

// Message is an incoming client frame.
type Message struct {
	Type      string  `json:"type"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Radius    float64 `json:"radius,omitempty"`
}

// Envelope wraps an outgoing change notification.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
