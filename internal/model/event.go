package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive  = "active"
	StatusDeleted = "deleted"

	DefaultCategoryColor = "#6750A4"
	DefaultCurrency      = "USD"
	DefaultSource        = "manual"
)

// EventBubble is the minimal payload for a map marker.
type EventBubble struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	CategoryID int       `json:"category_id"`
	ColorHex   string    `json:"color_hex"`
	StartDate  time.Time `json:"start_date"`
}

// EventListItem is the card-level representation used by nearby and search.
// DistanceMeters is only set by spatial queries.
type EventListItem struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	Category       Category   `json:"category"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	Address        *string    `json:"address"`
	City           *string    `json:"city"`
	Country        *string    `json:"country"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	ImageURL       *string    `json:"image_url"`
	PriceMin       *float64   `json:"price_min"`
	PriceMax       *float64   `json:"price_max"`
	Currency       string     `json:"currency"`
	Status         string     `json:"status"`
	DistanceMeters *float64   `json:"distance_meters"`
}

type EventImage struct {
	ID           uuid.UUID `json:"id"`
	ImageURL     string    `json:"image_url"`
	DisplayOrder int       `json:"display_order"`
}

type EventTag struct {
	Tag string `json:"tag"`
}

// EventDetail is the full representation of a single event.
type EventDetail struct {
	EventListItem
	TicketURL  *string        `json:"ticket_url"`
	Source     string         `json:"source"`
	ExternalID *string        `json:"external_id"`
	CreatedBy  *uuid.UUID     `json:"created_by,omitempty"`
	Tags       []EventTag     `json:"tags"`
	Images     []EventImage   `json:"images"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Bubble projects a detail down to its map-marker fields.
func (d EventDetail) Bubble() EventBubble {
	color := d.Category.ColorHex
	if color == "" {
		color = DefaultCategoryColor
	}
	return EventBubble{
		ID:         d.ID,
		Title:      d.Title,
		Latitude:   d.Latitude,
		Longitude:  d.Longitude,
		CategoryID: d.Category.ID,
		ColorHex:   color,
		StartDate:  d.StartDate,
	}
}

// TagNames returns the tag strings of the event.
func (d EventDetail) TagNames() []string {
	names := make([]string, 0, len(d.Tags))
	for _, t := range d.Tags {
		names = append(names, t.Tag)
	}
	return names
}

// NormalizeTags trims, drops empty entries and removes duplicates while
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
