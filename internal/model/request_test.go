package model

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func TestCreateEventRequestCheck(t *testing.T) {
	start := time.Date(2026, 7, 4, 20, 0, 0, 0, time.UTC)
	valid := func() CreateEventRequest {
		return CreateEventRequest{
			Title:      "Jazz Under the Stars",
			CategoryID: 1,
			Latitude:   ptr(40.7128),
			Longitude:  ptr(-74.0060),
			StartDate:  start,
		}
	}

	testCases := []struct {
		name    string
		mutate  func(r *CreateEventRequest)
		field   string
		wantErr bool
	}{
		{"valid", func(r *CreateEventRequest) {}, "", false},
		{"end before start", func(r *CreateEventRequest) { r.EndDate = ptr(start.Add(-time.Hour)) }, "end_date", true},
		{"end equals start", func(r *CreateEventRequest) { r.EndDate = ptr(start) }, "", false},
		{"min above max", func(r *CreateEventRequest) { r.PriceMin, r.PriceMax = ptr(30.0), ptr(10.0) }, "price_min", true},
		{"only min", func(r *CreateEventRequest) { r.PriceMin = ptr(30.0) }, "", false},
		{"latitude out of range", func(r *CreateEventRequest) { r.Latitude = ptr(91.0) }, "latitude", true},
		{"missing longitude", func(r *CreateEventRequest) { r.Longitude = nil }, "location", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := valid()
			tc.mutate(&r)
			err := r.Check()
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Errorf("field = %q; want %q", ve.Field, tc.field)
			}
		})
	}
}

func TestCreateEventRequestNormalize(t *testing.T) {
	r := CreateEventRequest{Currency: "eur", Tags: []string{" jazz", "jazz", "", "outdoor"}}
	r.Normalize()

	if r.Currency != "EUR" {
		t.Errorf("currency = %q; want EUR", r.Currency)
	}
	if r.Source != DefaultSource {
		t.Errorf("source = %q; want %q", r.Source, DefaultSource)
	}
	if len(r.Tags) != 2 || r.Tags[0] != "jazz" || r.Tags[1] != "outdoor" {
		t.Errorf("tags = %v; want [jazz outdoor]", r.Tags)
	}

	r = CreateEventRequest{}
	r.Normalize()
	if r.Currency != DefaultCurrency {
		t.Errorf("default currency = %q; want %q", r.Currency, DefaultCurrency)
	}
}

func TestUpdateEventRequestCheck(t *testing.T) {
	testCases := []struct {
		name  string
		req   UpdateEventRequest
		field string
	}{
		{"empty payload", UpdateEventRequest{}, ""},
		{"title only", UpdateEventRequest{Title: Some("New title")}, ""},
		{"null title", UpdateEventRequest{Title: Null[string]()}, "title"},
		{"empty title", UpdateEventRequest{Title: Some("")}, "title"},
		{"null description allowed", UpdateEventRequest{Description: Null[string]()}, ""},
		{"only latitude", UpdateEventRequest{Latitude: Some(40.0)}, "location"},
		{"only longitude", UpdateEventRequest{Longitude: Some(-74.0)}, "location"},
		{"null latitude", UpdateEventRequest{Latitude: Null[float64](), Longitude: Some(-74.0)}, "location"},
		{"both coordinates", UpdateEventRequest{Latitude: Some(40.0), Longitude: Some(-74.0)}, ""},
		{"longitude out of range", UpdateEventRequest{Latitude: Some(40.0), Longitude: Some(-190.0)}, "longitude"},
		{"null tags", UpdateEventRequest{Tags: Null[[]string]()}, "tags"},
		{"empty tags clear", UpdateEventRequest{Tags: Some([]string{})}, ""},
		{"bad currency", UpdateEventRequest{Currency: Some("EURO")}, "currency"},
		{"negative price", UpdateEventRequest{PriceMax: Some(-1.0)}, "price_max"},
		{"inverted prices", UpdateEventRequest{PriceMin: Some(5.0), PriceMax: Some(2.0)}, "price_min"},
		{"null start date", UpdateEventRequest{StartDate: Null[time.Time]()}, "start_date"},
		{"null category", UpdateEventRequest{CategoryID: Null[int]()}, "category_id"},
		{"status change", UpdateEventRequest{Status: Some("cancelled")}, ""},
		{"long status", UpdateEventRequest{Status: Some(strings.Repeat("x", 21))}, "status"},
		{"address at limit", UpdateEventRequest{Address: Some(strings.Repeat("a", 500))}, ""},
		{"long address", UpdateEventRequest{Address: Some(strings.Repeat("a", 501))}, "address"},
		{"long city", UpdateEventRequest{City: Some(strings.Repeat("c", 151))}, "city"},
		{"multibyte city at limit", UpdateEventRequest{City: Some(strings.Repeat("é", 150))}, ""},
		{"long country", UpdateEventRequest{Country: Some(strings.Repeat("c", 101))}, "country"},
		{"long external id", UpdateEventRequest{ExternalID: Some(strings.Repeat("e", 256))}, "external_id"},
		{"null address clears", UpdateEventRequest{Address: Null[string]()}, ""},
		{"bad image url", UpdateEventRequest{ImageURL: Some("not a url")}, "image_url"},
		{"bad ticket url", UpdateEventRequest{TicketURL: Some("tickets")}, "ticket_url"},
		{"good urls", UpdateEventRequest{ImageURL: Some("https://example.com/a.jpg"), TicketURL: Some("https://example.com/t")}, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Check()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError on %s, got %v", tc.field, err)
			}
			if ve.Field != tc.field {
				t.Errorf("field = %q; want %q", ve.Field, tc.field)
			}
		})
	}
}

func TestEventDetailBubbleDefaultsColor(t *testing.T) {
	d := EventDetail{EventListItem: EventListItem{Title: "x", Category: Category{ID: 4}}}
	b := d.Bubble()
	if b.ColorHex != DefaultCategoryColor {
		t.Errorf("color = %q; want %q", b.ColorHex, DefaultCategoryColor)
	}
	if b.CategoryID != 4 {
		t.Errorf("category_id = %d; want 4", b.CategoryID)
	}
}
