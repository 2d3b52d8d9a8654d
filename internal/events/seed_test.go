package events

import (
	"testing"
	"time"

	"github.com/bwise1/eventbuzz/internal/model"
)

func TestSampleEvents(t *testing.T) {
	categories := make([]model.Category, len(DefaultCategories))
	for i, c := range DefaultCategories {
		c.ID = i + 1
		categories[i] = c
	}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	samples := SampleEvents(categories, NewYork, now, 42)
	if len(samples) != 3*len(DefaultCategories) {
		t.Fatalf("got %d samples; want %d", len(samples), 3*len(DefaultCategories))
	}

	for _, s := range samples {
		if *s.Latitude < NewYork.MinLat || *s.Latitude > NewYork.MaxLat ||
			*s.Longitude < NewYork.MinLng || *s.Longitude > NewYork.MaxLng {
			t.Errorf("%q outside bounding box: %f,%f", s.Title, *s.Latitude, *s.Longitude)
		}
		if !s.StartDate.After(now) {
			t.Errorf("%q starts in the past", s.Title)
		}
		if err := s.Check(); err != nil {
			t.Errorf("%q fails validation: %v", s.Title, err)
		}
		if len(s.Tags) < 1 || len(s.Tags) > 3 {
			t.Errorf("%q has %d tags", s.Title, len(s.Tags))
		}
	}

	again := SampleEvents(categories, NewYork, now, 42)
	if *again[7].Latitude != *samples[7].Latitude || again[7].StartDate != samples[7].StartDate {
		t.Error("same seed should produce the same events")
	}
}

func TestSampleEventsSkipsUnknownCategories(t *testing.T) {
	samples := SampleEvents([]model.Category{{ID: 99, Slug: "unknown"}}, NewYork, time.Now(), 1)
	if len(samples) != 0 {
		t.Errorf("got %d samples for an unknown category", len(samples))
	}
}
