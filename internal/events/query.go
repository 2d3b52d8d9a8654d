package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwise1/eventbuzz/internal/model"
)

const listColumns = `
	e.id, e.title, e.description,
	c.id, c.name, c.slug, c.color_hex, c.icon_name, c.created_at,
	ST_Y(e.location::geometry), ST_X(e.location::geometry),
	e.address, e.city, e.country, e.start_date, e.end_date, e.image_url,
	e.price_min::float8, e.price_max::float8, e.currency, e.status`

const detailColumns = listColumns + `,
	e.ticket_url, e.source, e.external_id, e.created_by, e.metadata, e.created_at, e.updated_at`

// filter collects WHERE clauses and their positional arguments.
type filter struct {
	clauses []string
	args    []any
}

// arg registers a value and returns its placeholder.
func (f *filter) arg(v any) string {
	f.args = append(f.args, v)
	return fmt.Sprintf("$%d", len(f.args))
}

func (f *filter) where(format string, vals ...any) {
	placeholders := make([]any, len(vals))
	for i, v := range vals {
		placeholders[i] = f.arg(v)
	}
	f.clauses = append(f.clauses, fmt.Sprintf(format, placeholders...))
}

func (f *filter) sql() string {
	if len(f.clauses) == 0 {
		return "TRUE"
	}
	return strings.Join(f.clauses, " AND ")
}

// point returns the geography expression for a reference point. Longitude
// is bound before latitude, as ST_MakePoint expects.
func (f *filter) point(p model.Point) string {
	lng := f.arg(p.Longitude)
	lat := f.arg(p.Latitude)
	return fmt.Sprintf("ST_SetSRID(ST_MakePoint(%s, %s), 4326)::geography", lng, lat)
}

type builtQuery struct {
	SQL  string
	Args []any
}

// nearbyQueries builds the page query and the matching count query. Both
// share the same predicate; the count query drops ordering and paging.
func nearbyQueries(p model.NearbyParams) (page, count builtQuery) {
	var f filter
	ref := f.point(p.Center)
	f.clauses = append(f.clauses, fmt.Sprintf("ST_DWithin(e.location, %s, %s)", ref, f.arg(p.Radius)))
	applyCommonFilters(&f, p.Status, p.CategoryID, p.DateFrom, p.DateTo)

	where := f.sql()
	count = builtQuery{
		SQL:  "SELECT COUNT(*) FROM events e WHERE " + where,
		Args: append([]any(nil), f.args...),
	}

	limit := f.arg(p.PageSize)
	offset := f.arg(model.Offset(p.Page, p.PageSize))
	page = builtQuery{
		SQL: fmt.Sprintf(`SELECT %s, ST_Distance(e.location, %s) AS distance
	FROM events e
	JOIN categories c ON c.id = e.category_id
	WHERE %s
	ORDER BY distance ASC, e.id ASC
	LIMIT %s OFFSET %s`, listColumns, ref, where, limit, offset),
		Args: f.args,
	}
	return page, count
}

func applyCommonFilters(f *filter, status string, categoryID *int, from, to *time.Time) {
	if status == "" {
		status = model.StatusActive
	}
	f.where("e.status = %s", status)
	if categoryID != nil {
		f.where("e.category_id = %s", *categoryID)
	}
	if from != nil {
		f.where("e.start_date >= %s", *from)
	}
	if to != nil {
		f.where("e.start_date <= %s", *to)
	}
}

// bubbleQuery returns active events within the radius, nearest first. A
// positive limit caps the result.
func bubbleQuery(p model.BubbleParams, limit int) builtQuery {
	var f filter
	ref := f.point(p.Center)
	f.clauses = append(f.clauses, fmt.Sprintf("ST_DWithin(e.location, %s, %s)", ref, f.arg(p.Radius)))
	f.where("e.status = %s", model.StatusActive)
	if p.CategoryID != nil {
		f.where("e.category_id = %s", *p.CategoryID)
	}

	sql := fmt.Sprintf(`SELECT e.id, e.title, ST_Y(e.location::geometry), ST_X(e.location::geometry),
	e.category_id, COALESCE(c.color_hex, '%s'), e.start_date
	FROM events e
	LEFT JOIN categories c ON c.id = e.category_id
	WHERE %s
	ORDER BY ST_Distance(e.location, %s) ASC, e.id ASC`, model.DefaultCategoryColor, f.sql(), ref)
	if limit > 0 {
		sql += " LIMIT " + f.arg(limit)
	}
	return builtQuery{SQL: sql, Args: f.args}
}

// searchQueries matches the text as a literal substring of title or
// description, case-insensitively.
func searchQueries(p model.SearchParams) (page, count builtQuery) {
	var f filter
	pattern := "%" + escapeLike(p.Query) + "%"
	ph := f.arg(pattern)
	f.clauses = append(f.clauses, fmt.Sprintf(`(e.title ILIKE %[1]s ESCAPE '\' OR e.description ILIKE %[1]s ESCAPE '\')`, ph))
	f.where("e.status = %s", model.StatusActive)
	if p.CategoryID != nil {
		f.where("e.category_id = %s", *p.CategoryID)
	}

	where := f.sql()
	count = builtQuery{
		SQL:  "SELECT COUNT(*) FROM events e WHERE " + where,
		Args: append([]any(nil), f.args...),
	}

	limit := f.arg(p.PageSize)
	offset := f.arg(model.Offset(p.Page, p.PageSize))
	page = builtQuery{
		SQL: fmt.Sprintf(`SELECT %s, NULL::float8 AS distance
	FROM events e
	JOIN categories c ON c.id = e.category_id
	WHERE %s
	ORDER BY e.start_date ASC, e.id ASC
	LIMIT %s OFFSET %s`, listColumns, where, limit, offset),
		Args: f.args,
	}
	return page, count
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
