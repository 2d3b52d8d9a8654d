package rest

import (
	"encoding/json"
	"net/http"

	"github.com/bwise1/eventbuzz/util"
	"github.com/bwise1/eventbuzz/util/tracing"
	"github.com/bwise1/eventbuzz/util/values"
)

type ServerResponse struct {
	Message    string      `json:"message"`
	Status     string      `json:"status"`
	StatusCode int         `json:"-"`
	Data       interface{} `json:"data,omitempty"`
}

// respondWithError logs err against the request and wraps message in an
// error envelope. Server-side failures are logged at error level, client
// mistakes at debug.
func respondWithError(err error, message, status string, tc tracing.Context) *ServerResponse {
	code := util.StatusCode(status)
	event := tc.Logger.Debug()
	if code >= http.StatusInternalServerError {
		event = tc.Logger.Error()
	}
	event.Err(err).Str("status", status).Int("code", code).Msg(message)

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: code,
	}
}

func writeErrorResponse(w http.ResponseWriter, err error, status, message string) {
	resp := ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
	}
	if err != nil && resp.StatusCode < http.StatusInternalServerError && message == "" {
		resp.Message = err.Error()
	}
	body, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, body, resp.StatusCode)
}

func writeJSONResponse(w http.ResponseWriter, body []byte, statusCode int) {
	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

func ok(message string, data interface{}) *ServerResponse {
	return &ServerResponse{
		Message:    message,
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       data,
	}
}
