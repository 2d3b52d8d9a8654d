package websockets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func TestIsNearby(t *testing.T) {
	testCases := []struct {
		name   string
		lat    float64
		lon    float64
		radius float64
		want   bool
	}{
		{"same point", 40.7128, -74.0060, 10, true},
		{"about 1.1km north within 2km", 40.7228, -74.0060, 2000, true},
		{"about 1.1km north outside 1km", 40.7228, -74.0060, 1000, false},
		{"other continent", 51.5074, -0.1278, MaxRadius, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isNearby(40.7128, -74.0060, tc.lat, tc.lon, tc.radius); got != tc.want {
				t.Errorf("isNearby() = %v; want %v", got, tc.want)
			}
		})
	}
}

func TestClientWants(t *testing.T) {
	c := &Client{Latitude: 40.7128, Longitude: -74.0060, Radius: 1000}
	if c.wants(Broadcast{}) {
		t.Error("unsubscribed client must not receive changes")
	}
	c.Subscribed = true
	if !c.wants(Broadcast{}) {
		t.Error("unlocated changes go to every subscriber")
	}
	if c.wants(Broadcast{Located: true, Latitude: 41.0, Longitude: -74.0060}) {
		t.Error("distant change delivered")
	}
}

func TestValidSubscription(t *testing.T) {
	if !validSubscription(Message{Latitude: 10, Longitude: 10}) {
		t.Error("zero radius should fall back to the default")
	}
	if validSubscription(Message{Latitude: 100}) {
		t.Error("latitude out of range accepted")
	}
	if validSubscription(Message{Radius: MaxRadius + 1}) {
		t.Error("oversized radius accepted")
	}
}

func TestLiveFeedDeliversNearbyChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := NewWebSocketManager(zerolog.Nop())
	go manager.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(manager.HandleConnections))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sub, _ := json.Marshal(Message{Type: MsgTypeSubscribe, Latitude: 40.7128, Longitude: -74.0060, Radius: 2000})
	if err := conn.WriteMessage(websocket.TextMessage, sub); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// Wait until the subscription is registered before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for {
		manager.mu.Lock()
		ready := false
		for _, c := range manager.clients {
			ready = ready || c.Subscribed
		}
		manager.mu.Unlock()
		if ready {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("subscription never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	manager.PublishChange(map[string]string{"title": "far"}, true, 51.5074, -0.1278)
	manager.PublishChange(map[string]string{"title": "near"}, true, 40.7200, -74.0060)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Type != MsgTypeEventChange || env.Data["title"] != "near" {
		t.Errorf("got %s", msg)
	}
}
