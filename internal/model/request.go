package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// fieldRules checks single optional values against the same tags the create
// payload declares.
var fieldRules = validator.New()

// ValidationError is a request inconsistency detected after schema
// validation, such as a cross-field rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

type CreateEventRequest struct {
	Title       string         `json:"title" validate:"required,min=1,max=255"`
	Description *string        `json:"description"`
	CategoryID  int            `json:"category_id" validate:"required,gt=0"`
	Latitude    *float64       `json:"latitude" validate:"required,latitude"`
	Longitude   *float64       `json:"longitude" validate:"required,longitude"`
	Address     *string        `json:"address" validate:"omitempty,max=500"`
	City        *string        `json:"city" validate:"omitempty,max=150"`
	Country     *string        `json:"country" validate:"omitempty,max=100"`
	StartDate   time.Time      `json:"start_date" validate:"required"`
	EndDate     *time.Time     `json:"end_date"`
	ImageURL    *string        `json:"image_url" validate:"omitempty,url"`
	TicketURL   *string        `json:"ticket_url" validate:"omitempty,url"`
	PriceMin    *float64       `json:"price_min" validate:"omitempty,gte=0"`
	PriceMax    *float64       `json:"price_max" validate:"omitempty,gte=0"`
	Currency    string         `json:"currency" validate:"omitempty,len=3"`
	Source      string         `json:"source" validate:"omitempty,max=50"`
	ExternalID  *string        `json:"external_id" validate:"omitempty,max=255"`
	Tags        []string       `json:"tags" validate:"omitempty,dive,max=50"`
	Images      []string       `json:"images" validate:"omitempty,dive,url"`
	Metadata    map[string]any `json:"metadata"`
}

// Normalize fills server-side defaults.
func (r *CreateEventRequest) Normalize() {
	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}
	r.Currency = strings.ToUpper(r.Currency)
	if r.Source == "" {
		r.Source = DefaultSource
	}
	r.Tags = NormalizeTags(r.Tags)
}

// Check enforces the cross-field rules a field-level schema cannot express.
func (r CreateEventRequest) Check() error {
	if r.Latitude == nil || r.Longitude == nil {
		return &ValidationError{Field: "location", Reason: "latitude and longitude are required"}
	}
	if err := checkPoint(*r.Latitude, *r.Longitude); err != nil {
		return err
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return &ValidationError{Field: "end_date", Reason: "must not be before start_date"}
	}
	return checkPrices(r.PriceMin, r.PriceMax)
}

// UpdateEventRequest is a partial update. Fields absent from the payload are
// left untouched; nullable fields sent as null are cleared.
type UpdateEventRequest struct {
	Title       Optional[string]         `json:"title"`
	Description Optional[string]         `json:"description"`
	CategoryID  Optional[int]            `json:"category_id"`
	Latitude    Optional[float64]        `json:"latitude"`
	Longitude   Optional[float64]        `json:"longitude"`
	Address     Optional[string]         `json:"address"`
	City        Optional[string]         `json:"city"`
	Country     Optional[string]         `json:"country"`
	StartDate   Optional[time.Time]      `json:"start_date"`
	EndDate     Optional[time.Time]      `json:"end_date"`
	ImageURL    Optional[string]         `json:"image_url"`
	TicketURL   Optional[string]         `json:"ticket_url"`
	PriceMin    Optional[float64]        `json:"price_min"`
	PriceMax    Optional[float64]        `json:"price_max"`
	Currency    Optional[string]         `json:"currency"`
	Status      Optional[string]         `json:"status"`
	ExternalID  Optional[string]         `json:"external_id"`
	Tags        Optional[[]string]       `json:"tags"`
	Metadata    Optional[map[string]any] `json:"metadata"`
}

// HasLocation reports whether both coordinates were supplied.
func (r UpdateEventRequest) HasLocation() bool {
	return r.Latitude.Present() && r.Longitude.Present()
}

// Check validates the fields present in the payload. A location change must
// carry both coordinates; sending only one is rejected.
func (r UpdateEventRequest) Check() error {
	required := []struct {
		name string
		opt  Optional[string]
	}{
		{"title", r.Title},
		{"currency", r.Currency},
		{"status", r.Status},
	}
	for _, f := range required {
		if f.opt.IsNull() {
			return &ValidationError{Field: f.name, Reason: "cannot be null"}
		}
	}
	if r.CategoryID.IsNull() {
		return &ValidationError{Field: "category_id", Reason: "cannot be null"}
	}
	if r.StartDate.IsNull() {
		return &ValidationError{Field: "start_date", Reason: "cannot be null"}
	}

	if r.Title.Present() {
		n := utf8.RuneCountInString(*r.Title.Value)
		if n < 1 || n > 255 {
			return &ValidationError{Field: "title", Reason: "must be between 1 and 255 characters"}
		}
	}
	if r.CategoryID.Present() && *r.CategoryID.Value <= 0 {
		return &ValidationError{Field: "category_id", Reason: "must be positive"}
	}
	if r.Currency.Present() && len(*r.Currency.Value) != 3 {
		return &ValidationError{Field: "currency", Reason: "must be a 3-letter code"}
	}
	if r.Status.Present() && strings.TrimSpace(*r.Status.Value) == "" {
		return &ValidationError{Field: "status", Reason: "cannot be empty"}
	}
	for _, f := range []struct {
		name string
		opt  Optional[string]
		tag  string
	}{
		{"address", r.Address, "max=500"},
		{"city", r.City, "max=150"},
		{"country", r.Country, "max=100"},
		{"external_id", r.ExternalID, "max=255"},
		{"status", r.Status, "max=20"},
		{"image_url", r.ImageURL, "url"},
		{"ticket_url", r.TicketURL, "url"},
	} {
		if f.opt.Present() {
			if err := fieldRules.Var(*f.opt.Value, f.tag); err != nil {
				return &ValidationError{Field: f.name, Reason: "must satisfy " + f.tag}
			}
		}
	}
	if r.Tags.IsNull() {
		return &ValidationError{Field: "tags", Reason: "cannot be null, send [] to clear"}
	}
	if r.Tags.Present() {
		for _, t := range *r.Tags.Value {
			if utf8.RuneCountInString(t) > 50 {
				return &ValidationError{Field: "tags", Reason: "tags must be at most 50 characters"}
			}
		}
	}

	if r.Latitude.Set != r.Longitude.Set || r.Latitude.IsNull() || r.Longitude.IsNull() {
		return &ValidationError{Field: "location", Reason: "latitude and longitude must be provided together"}
	}
	if r.HasLocation() {
		if err := checkPoint(*r.Latitude.Value, *r.Longitude.Value); err != nil {
			return err
		}
	}

	if r.StartDate.Present() && r.EndDate.Present() && r.EndDate.Value.Before(*r.StartDate.Value) {
		return &ValidationError{Field: "end_date", Reason: "must not be before start_date"}
	}
	if r.PriceMin.Present() && *r.PriceMin.Value < 0 {
		return &ValidationError{Field: "price_min", Reason: "must be >= 0"}
	}
	if r.PriceMax.Present() && *r.PriceMax.Value < 0 {
		return &ValidationError{Field: "price_max", Reason: "must be >= 0"}
	}
	return checkPrices(r.PriceMin.Value, r.PriceMax.Value)
}

type AddImageRequest struct {
	ImageURL     string `json:"image_url" validate:"required,url"`
	DisplayOrder *int   `json:"display_order" validate:"omitempty,gte=0"`
}

func checkPoint(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return &ValidationError{Field: "latitude", Reason: "must be within [-90, 90]"}
	}
	if lng < -180 || lng > 180 {
		return &ValidationError{Field: "longitude", Reason: "must be within [-180, 180]"}
	}
	return nil
}

func checkPrices(lo, hi *float64) error {
	if lo != nil && *lo < 0 {
		return &ValidationError{Field: "price_min", Reason: "must be >= 0"}
	}
	if hi != nil && *hi < 0 {
		return &ValidationError{Field: "price_max", Reason: "must be >= 0"}
	}
	if lo != nil && hi != nil && *lo > *hi {
		return &ValidationError{Field: "price_min", Reason: "must not exceed price_max"}
	}
	return nil
}
