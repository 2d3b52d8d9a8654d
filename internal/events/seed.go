package events

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/bwise1/eventbuzz/internal/model"
)

// DefaultCategories is the category set a fresh install starts with.
var DefaultCategories = []model.Category{
	{Name: "Music", Slug: "music", ColorHex: "#E91E63", IconName: "music_note"},
	{Name: "Sports", Slug: "sports", ColorHex: "#4CAF50", IconName: "sports"},
	{Name: "Arts & Theater", Slug: "arts-theater", ColorHex: "#9C27B0", IconName: "theater_comedy"},
	{Name: "Food & Drink", Slug: "food-drink", ColorHex: "#FF9800", IconName: "restaurant"},
	{Name: "Nightlife", Slug: "nightlife", ColorHex: "#673AB7", IconName: "nightlife"},
	{Name: "Community", Slug: "community", ColorHex: "#2196F3", IconName: "groups"},
	{Name: "Tech", Slug: "tech", ColorHex: "#00BCD4", IconName: "computer"},
	{Name: "Outdoors", Slug: "outdoors", ColorHex: "#8BC34A", IconName: "park"},
	{Name: "Family", Slug: "family", ColorHex: "#FFC107", IconName: "family_restroom"},
	{Name: "Workshops", Slug: "workshops", ColorHex: "#795548", IconName: "build"},
}

// SeedCategories inserts the default categories that are missing by slug
// and returns how many were added.
func (r *Repo) SeedCategories(ctx context.Context) (int, error) {
	added := 0
	for _, c := range DefaultCategories {
		tag, err := r.db.Pool().Exec(ctx, `
			INSERT INTO categories (name, slug, color_hex, icon_name)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (slug) DO NOTHING`, c.Name, c.Slug, c.ColorHex, c.IconName)
		if err != nil {
			return added, fmt.Errorf("seed category %s: %w", c.Slug, err)
		}
		added += int(tag.RowsAffected())
	}
	if r.cache != nil && added > 0 {
		r.cache.InvalidateCategories(ctx)
	}
	return added, nil
}

// BoundingBox limits where generated sample events are placed.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// NewYork is the default sample area.
var NewYork = BoundingBox{MinLat: 40.6892, MaxLat: 40.8200, MinLng: -74.0200, MaxLng: -73.9100}

var sampleTitles = map[string][]string{
	"music":        {"Jazz Under the Stars", "Indie Rock Showcase", "Acoustic Open Mic Night"},
	"sports":       {"5K Charity Run", "Basketball Tournament", "Yoga in the Park"},
	"arts-theater": {"Contemporary Art Exhibition", "Stand-Up Comedy Night", "Street Art Walking Tour"},
	"food-drink":   {"International Food Festival", "Wine Tasting Evening", "Farmers Market Sunday"},
	"nightlife":    {"Rooftop DJ Set", "Latin Dance Night", "Silent Disco"},
	"community":    {"Neighborhood Cleanup", "Book Swap Meetup", "Community Town Hall"},
	"tech":         {"AI & Machine Learning Meetup", "Startup Pitch Night", "Hackathon Weekend"},
	"outdoors":     {"Sunset Kayaking Trip", "Urban Bird-Watching Walk", "Stargazing Night"},
	"family":       {"Kids Science Fair", "Family Movie Night Outdoors", "Children's Story Time"},
	"workshops":    {"Watercolor Painting Workshop", "Intro to Photography", "Candle Making Workshop"},
}

var sampleTags = map[string][]string{
	"music":        {"live-music", "concert", "festival", "jazz", "indie"},
	"sports":       {"fitness", "running", "tournament", "outdoor", "wellness"},
	"arts-theater": {"art", "comedy", "theater", "gallery", "performance"},
	"food-drink":   {"food", "wine", "cooking", "vegan", "craft-beer"},
	"nightlife":    {"dj", "dance", "party", "rooftop", "club"},
	"community":    {"volunteer", "networking", "culture", "meetup", "charity"},
	"tech":         {"ai", "startup", "hackathon", "developer", "cloud"},
	"outdoors":     {"nature", "hiking", "kayaking", "adventure", "wildlife"},
	"family":       {"kids", "family-friendly", "education", "fun", "interactive"},
	"workshops":    {"workshop", "craft", "creative", "hands-on", "learning"},
}

var sampleStreets = []string{
	"123 Broadway", "456 5th Avenue", "789 Park Avenue", "101 West 42nd Street",
	"200 Central Park West", "55 Water Street", "88 Greenwich Street", "42 Canal Street",
}

// SampleEvents generates create requests for every known category with
// random points inside box. The same seed yields the same events.
func SampleEvents(categories []model.Category, box BoundingBox, now time.Time, seed uint64) []model.CreateEventRequest {
	rng := rand.New(rand.NewPCG(seed, seed))
	city, country := "New York", "US"
	description := "A sample event generated for local development."

	var out []model.CreateEventRequest
	for _, c := range categories {
		titles, ok := sampleTitles[c.Slug]
		if !ok {
			continue
		}
		for _, title := range titles {
			lat := box.MinLat + rng.Float64()*(box.MaxLat-box.MinLat)
			lng := box.MinLng + rng.Float64()*(box.MaxLng-box.MinLng)
			start := now.Add(time.Duration(1+rng.IntN(90))*24*time.Hour + time.Duration(8+rng.IntN(14))*time.Hour).Truncate(time.Minute)
			end := start.Add(time.Duration([]int{1, 2, 3, 4, 8}[rng.IntN(5)]) * time.Hour)
			address := sampleStreets[rng.IntN(len(sampleStreets))]

			req := model.CreateEventRequest{
				Title:       title,
				Description: &description,
				CategoryID:  c.ID,
				Latitude:    &lat,
				Longitude:   &lng,
				Address:     &address,
				City:        &city,
				Country:     &country,
				StartDate:   start,
				EndDate:     &end,
				Currency:    model.DefaultCurrency,
				Source:      "seed",
			}
			if rng.Float64() > 0.3 {
				lo := math.Round(rng.Float64()*5000) / 100
				hi := math.Round((lo+10+rng.Float64()*90)*100) / 100
				req.PriceMin, req.PriceMax = &lo, &hi
			}

			pool := sampleTags[c.Slug]
			perm := rng.Perm(len(pool))
			for _, i := range perm[:1+rng.IntN(3)] {
				req.Tags = append(req.Tags, pool[i])
			}
			out = append(out, req)
		}
	}
	return out
}

// SeedEvents creates the sample events unless the store already holds at
// least as many events. It returns the number created.
func (r *Repo) SeedEvents(ctx context.Context, box BoundingBox, seed uint64) (int, error) {
	categories, err := r.ListCategories(ctx)
	if err != nil {
		return 0, err
	}
	if len(categories) == 0 {
		return 0, fmt.Errorf("no categories found, seed categories first")
	}

	samples := SampleEvents(categories, box, time.Now().UTC(), seed)

	var existing int
	if err := r.db.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&existing); err != nil {
		return 0, err
	}
	if existing >= len(samples) {
		r.log.Info().Int("existing", existing).Msg("events already present, skipping seed")
		return 0, nil
	}

	created := 0
	for _, req := range samples {
		if _, err := r.Create(ctx, req, nil); err != nil {
			return created, fmt.Errorf("seed event %q: %w", req.Title, err)
		}
		created++
	}
	return created, nil
}
