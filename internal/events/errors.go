package events

import (
	"errors"

	"github.com/bwise1/eventbuzz/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrDuplicateExternalID = errors.New("an event with this external_id already exists")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgStringTooLong       = "22001"
)

// translate maps store constraint failures onto domain errors.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		if pgErr.ConstraintName == "events_external_id_key" {
			return ErrDuplicateExternalID
		}
	case pgForeignKeyViolation:
		if pgErr.ConstraintName == "events_category_id_fkey" {
			return ErrCategoryNotFound
		}
	case pgCheckViolation:
		switch pgErr.ConstraintName {
		case "events_end_after_start":
			return &model.ValidationError{Field: "end_date", Reason: "must not be before start_date"}
		case "events_price_range":
			return &model.ValidationError{Field: "price_min", Reason: "must not exceed price_max"}
		}
		field := pgErr.ColumnName
		if field == "" {
			field = "event"
		}
		return &model.ValidationError{Field: field, Reason: pgErr.Message}
	case pgStringTooLong:
		field := pgErr.ColumnName
		if field == "" {
			field = "event"
		}
		return &model.ValidationError{Field: field, Reason: "value too long"}
	}
	return err
}
