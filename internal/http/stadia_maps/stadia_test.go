package stadiamaps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReverseGeocode(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		status  int
		want    Place
		wantErr bool
	}{
		{
			name:   "street address",
			status: http.StatusOK,
			body:   `{"features":[{"properties":{"housenumber":"120","street":"W 45th St","locality":"New York","country":"United States"}}]}`,
			want:   Place{Address: "120 W 45th St", City: "New York", Country: "United States"},
		},
		{
			name:   "venue falls back to name and county",
			status: http.StatusOK,
			body:   `{"features":[{"properties":{"name":"Central Park","county":"New York County","country":"United States"}}]}`,
			want:   Place{Address: "Central Park", City: "New York County", Country: "United States"},
		},
		{
			name:    "upstream error",
			status:  http.StatusUnauthorized,
			body:    `{"error":"invalid key"}`,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != reverseEndpoint {
					t.Errorf("path = %s", r.URL.Path)
				}
				q := r.URL.Query()
				if q.Get("api_key") != "key" || q.Get("point.lat") != "40.7128" || q.Get("point.lon") != "-74.006" || q.Get("size") != "1" {
					t.Errorf("query = %s", r.URL.RawQuery)
				}
				if q.Get("layers") != "address,venue,street" {
					t.Errorf("layers = %q", q.Get("layers"))
				}
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c, err := NewClient("key", srv.URL)
			if err != nil {
				t.Fatal(err)
			}
			got, err := c.ReverseGeocode(context.Background(), 40.7128, -74.006)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v; want %+v", got, tc.want)
			}
		})
	}
}

func TestReverseGeocodeNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	c, _ := NewClient("key", srv.URL)
	if _, err := c.ReverseGeocode(context.Background(), 0, 0); !errors.Is(err, ErrNoPlace) {
		t.Errorf("err = %v; want ErrNoPlace", err)
	}
}
