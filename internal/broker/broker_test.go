package broker

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEventChangeJSON(t *testing.T) {
	change := EventChange{
		Type:       EventDeleted,
		EventID:    uuid.MustParse("6f1c2a52-1d8e-4c0a-9a43-2d7e8f5b9c10"),
		OccurredAt: time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(change)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if strings.Contains(s, `"event"`) {
		t.Errorf("deletions must omit the event body: %s", s)
	}
	if !strings.Contains(s, `"type":"event.deleted"`) {
		t.Errorf("missing type: %s", s)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), EventChange{Type: EventCreated}); err != nil {
		t.Errorf("nop publish returned %v", err)
	}
	p.Close()
}
