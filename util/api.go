package util

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bwise1/eventbuzz/internal/model"
	"github.com/bwise1/eventbuzz/util/tracing"
	"github.com/bwise1/eventbuzz/util/values"
	"github.com/google/uuid"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
)

// StatusCode returns the status code represented
// by the specified status. Note that this function
// returns a status code of 200 by default
func StatusCode(status string) int {
	switch status {
	case values.Error, values.Failed:
		return http.StatusInternalServerError
	case values.Created:
		return http.StatusCreated
	case values.Deleted:
		return http.StatusNoContent
	case values.BadRequestBody:
		return http.StatusBadRequest
	case values.Unprocessable:
		return http.StatusUnprocessableEntity
	case values.NotAllowed:
		return http.StatusForbidden
	case values.Conflict:
		return http.StatusConflict
	case values.NotFound:
		return http.StatusNotFound
	case values.NotAuthorised, values.TokenExpired:
		return http.StatusUnauthorized
	case values.TooManyRequests:
		return http.StatusTooManyRequests
	case values.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusOK
	}
}

const AdminRole = "admin"

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// DecodeJSONBody ...
func DecodeJSONBody(tc tracing.Context, body io.ReadCloser, target interface{}) error {
	if body == nil {
		return fmt.Errorf("missing request body for request: %v", tc)
	}
	defer func() {
		_ = body.Close()
	}()

	if err := json.NewDecoder(body).Decode(target); err != nil {
		return errors.Wrapf(err, "Error parsing json body for request: %v", tc)
	}

	return nil
}

// DecodeQuery fills target from URL query parameters using its schema tags.
func DecodeQuery(query url.Values, target interface{}) error {
	if err := queryDecoder.Decode(target, query); err != nil {
		return errors.Wrap(err, "invalid query parameters")
	}
	return nil
}

// GetPrincipalFromContext returns the caller set by the authentication
// middleware.
func GetPrincipalFromContext(ctx context.Context) (model.Principal, error) {
	p, ok := ctx.Value(values.ContextPrincipalKey).(model.Principal)
	if !ok {
		return model.Principal{}, errors.New("principal not found in context")
	}
	return p, nil
}

// string to UUID
func StringToUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}
