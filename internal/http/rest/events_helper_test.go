package rest

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/bwise1/eventbuzz/internal/events"
	stadiamaps "github.com/bwise1/eventbuzz/internal/http/stadia_maps"
	"github.com/bwise1/eventbuzz/internal/model"
	"github.com/bwise1/eventbuzz/util/values"
	"github.com/rs/zerolog"
)

func errCategory() error  { return events.ErrCategoryNotFound }
func errDuplicate() error { return events.ErrDuplicateExternalID }

func TestEventErrorStatus(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status string
	}{
		{"validation", &model.ValidationError{Field: "end_date", Reason: "bad"}, values.Unprocessable},
		{"not found", events.ErrEventNotFound, values.NotFound},
		{"unknown category", events.ErrCategoryNotFound, values.Unprocessable},
		{"duplicate", events.ErrDuplicateExternalID, values.Conflict},
		{"other", errors.New("db down"), values.Error},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, message := eventErrorStatus(tc.err, "fallback")
			if status != tc.status {
				t.Errorf("status = %q; want %q", status, tc.status)
			}
			if tc.status == values.Error && message != "fallback" {
				t.Errorf("server errors must not leak details, got %q", message)
			}
		})
	}
}

type fakeTitles struct {
	indexed []string
	removed []string
}

func (f *fakeTitles) IndexTitle(_ context.Context, title string) {
	f.indexed = append(f.indexed, title)
}
func (f *fakeTitles) RemoveTitle(_ context.Context, title string) {
	f.removed = append(f.removed, title)
}
func (f *fakeTitles) SuggestTitles(context.Context, string, int) ([]string, error) {
	return f.indexed, nil
}

func TestTitleIndexFollowsMutations(t *testing.T) {
	ta := newTestAPI(t)
	titles := &fakeTitles{}
	ta.api.Titles = titles
	ctx := context.Background()
	lat, lng := 1.0, 2.0

	created, _, _, err := ta.api.CreateEventHelper(ctx, model.CreateEventRequest{
		Title: "Old Name", CategoryID: 1, Latitude: &lat, Longitude: &lng,
	}, model.Principal{Subject: "admin"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, _, err := ta.api.UpdateEventHelper(ctx, created.ID, model.UpdateEventRequest{Title: model.Some("New Name")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, _, err := ta.api.DeleteEventHelper(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(titles.indexed) != 2 || titles.indexed[1] != "New Name" {
		t.Errorf("indexed = %v", titles.indexed)
	}
	if len(titles.removed) != 2 || titles.removed[0] != "Old Name" || titles.removed[1] != "New Name" {
		t.Errorf("removed = %v", titles.removed)
	}
}

type fakeGeocoder struct {
	place stadiamaps.Place
	err   error
	calls int
}

func (g *fakeGeocoder) ReverseGeocode(context.Context, float64, float64) (stadiamaps.Place, error) {
	g.calls++
	return g.place, g.err
}

func TestFillAddress(t *testing.T) {
	lat, lng := 40.7128, -74.006
	city := "Brooklyn"

	testCases := []struct {
		name    string
		geo     *fakeGeocoder
		req     model.CreateEventRequest
		address string
		city    string
		calls   int
	}{
		{
			name:    "fills missing fields only",
			geo:     &fakeGeocoder{place: stadiamaps.Place{Address: "1 Main St", City: "New York", Country: "United States"}},
			req:     model.CreateEventRequest{Latitude: &lat, Longitude: &lng, City: &city},
			address: "1 Main St",
			city:    "Brooklyn",
			calls:   1,
		},
		{
			name:  "lookup failure leaves request unchanged",
			geo:   &fakeGeocoder{err: errors.New("timeout")},
			req:   model.CreateEventRequest{Latitude: &lat, Longitude: &lng},
			calls: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestAPI(t)
			ta.api.Geo = tc.geo
			req := tc.req
			ta.api.fillAddress(context.Background(), &req)

			if tc.geo.calls != tc.calls {
				t.Errorf("calls = %d; want %d", tc.geo.calls, tc.calls)
			}
			if got := deref(req.Address); got != tc.address {
				t.Errorf("address = %q; want %q", got, tc.address)
			}
			if got := deref(req.City); got != tc.city {
				t.Errorf("city = %q; want %q", got, tc.city)
			}
		})
	}
}

func TestFillAddressSkipsCompleteRequests(t *testing.T) {
	ta := newTestAPI(t)
	geo := &fakeGeocoder{}
	ta.api.Geo = geo
	lat, lng, s := 1.0, 2.0, "x"

	ta.api.fillAddress(context.Background(), &model.CreateEventRequest{Latitude: &lat, Longitude: &lng, Address: &s, City: &s, Country: &s})
	if geo.calls != 0 {
		t.Error("geocoder should not be called when the address is complete")
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func createTitled(t *testing.T, ta *testAPI, title string) model.EventDetail {
	t.Helper()
	lat, lng := 1.0, 2.0
	d, _, _, err := ta.api.CreateEventHelper(context.Background(), model.CreateEventRequest{
		Title: title, CategoryID: 1, Latitude: &lat, Longitude: &lng,
	}, model.Principal{Subject: "admin"})
	if err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return d
}

func TestTitleIndexTracksStatus(t *testing.T) {
	ta := newTestAPI(t)
	titles := &fakeTitles{}
	ta.api.Titles = titles
	ctx := context.Background()

	ev := createTitled(t, ta, "Jazz Night")

	if _, _, _, err := ta.api.UpdateEventHelper(ctx, ev.ID, model.UpdateEventRequest{Status: model.Some(model.StatusDeleted)}); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if len(titles.indexed) != 1 {
		t.Errorf("indexed = %v; a deleted event must not be re-indexed", titles.indexed)
	}
	if len(titles.removed) != 1 || titles.removed[0] != "Jazz Night" {
		t.Errorf("removed = %v; want [Jazz Night]", titles.removed)
	}

	if _, _, _, err := ta.api.UpdateEventHelper(ctx, ev.ID, model.UpdateEventRequest{Title: model.Some("Blues Night")}); err != nil {
		t.Fatalf("rename deleted: %v", err)
	}
	for _, title := range titles.indexed {
		if title == "Blues Night" {
			t.Errorf("indexed = %v; title of a deleted event must stay out of the index", titles.indexed)
		}
	}

	if _, _, _, err := ta.api.UpdateEventHelper(ctx, ev.ID, model.UpdateEventRequest{Status: model.Some(model.StatusActive)}); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if last := titles.indexed[len(titles.indexed)-1]; last != "Blues Night" {
		t.Errorf("indexed = %v; restored event should be indexed again", titles.indexed)
	}
}

func TestTitleIndexKeepsSharedTitles(t *testing.T) {
	ta := newTestAPI(t)
	titles := &fakeTitles{}
	ta.api.Titles = titles
	ctx := context.Background()

	first := createTitled(t, ta, "Jazz Night")
	second := createTitled(t, ta, "Jazz Night")

	if _, _, err := ta.api.DeleteEventHelper(ctx, first.ID); err != nil {
		t.Fatalf("delete first: %v", err)
	}
	if len(titles.removed) != 0 {
		t.Errorf("removed = %v; another active event still uses the title", titles.removed)
	}

	if _, _, _, err := ta.api.UpdateEventHelper(ctx, second.ID, model.UpdateEventRequest{Title: model.Some("Jazz Brunch")}); err != nil {
		t.Fatalf("rename second: %v", err)
	}
	if len(titles.removed) != 1 || titles.removed[0] != "Jazz Night" {
		t.Errorf("removed = %v; want [Jazz Night] once the last holder is renamed", titles.removed)
	}
}

func TestPublishFailureIsLoggedNotReturned(t *testing.T) {
	ta := newTestAPI(t)
	var logs bytes.Buffer
	ta.api.Log = zerolog.New(&logs)
	ta.handler = ta.api.setUpServerHandler()
	ta.broker.err = errors.New("channel closed")

	rec, _ := ta.do(t, http.MethodPost, "/api/v1/events", createBody, adminToken(t, "admin"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; a broker failure must not fail the request", rec.Code)
	}
	if !strings.Contains(logs.String(), "failed to publish event change") {
		t.Errorf("expected the publish failure in the request log, got %s", logs.String())
	}
	if !strings.Contains(logs.String(), rec.Header().Get(values.HeaderRequestID)) {
		t.Error("publish failure should be logged with the request id")
	}
}

func TestFillAddressLogsLookupFailure(t *testing.T) {
	ta := newTestAPI(t)
	var logs bytes.Buffer
	ta.api.Log = zerolog.New(&logs)
	ta.handler = ta.api.setUpServerHandler()
	ta.api.Geo = &fakeGeocoder{err: errors.New("upstream timeout")}

	rec, _ := ta.do(t, http.MethodPost, "/api/v1/events", createBody, adminToken(t, "admin"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(logs.String(), "reverse geocoding failed") {
		t.Errorf("expected a geocoding warning, got %s", logs.String())
	}
}
