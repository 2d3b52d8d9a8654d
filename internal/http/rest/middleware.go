package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwise1/eventbuzz/internal/model"
	"github.com/bwise1/eventbuzz/util"
	"github.com/bwise1/eventbuzz/util/tracing"
	"github.com/bwise1/eventbuzz/util/values"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt"
	"github.com/lucsky/cuid"
)

const defaultRequestSource = "unknown"

var (
	errTokenExpired = errors.New("token expired")
	errInvalidToken = errors.New("invalid token")
)

// RequestTracing attaches a request id, the caller-declared source and a
// request-scoped logger to the context, then logs the completed request.
func (api *API) RequestTracing(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		start := time.Now()

		requestSource := r.Header.Get(values.HeaderRequestSource)
		if requestSource == "" {
			requestSource = defaultRequestSource
		}

		requestID := r.Header.Get(values.HeaderRequestID)
		if requestID == "" {
			requestID = cuid.New()
		}
		w.Header().Set(values.HeaderRequestID, requestID)

		logger := api.Log.With().
			Str("request_id", requestID).
			Str("request_source", requestSource).
			Logger()

		tracingContext := tracing.Context{
			RequestID:     requestID,
			RequestSource: requestSource,
			Logger:        logger,
		}

		ctx = context.WithValue(ctx, values.ContextTracingKey, tracingContext)
		ctx = logger.WithContext(ctx)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	}

	return http.HandlerFunc(fn)
}

// RequireAdmin rejects requests without a valid bearer token carrying the
// admin role and stores the caller's principal in the context.
func (api *API) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.Split(r.Header.Get("Authorization"), " ")
		if len(authorization) != 2 || authorization[0] != "Bearer" {
			writeErrorResponse(w, errors.New(values.NotAuthorised), values.NotAuthorised, "not-authorized")
			return
		}

		principal, err := api.verifyToken(authorization[1])
		if err != nil {
			tc := tracing.FromContext(r.Context())
			tc.Logger.Debug().Err(err).Msg("rejected bearer token")
			if errors.Is(err, errTokenExpired) {
				writeErrorResponse(w, err, values.TokenExpired, "token-expired")
				return
			}
			writeErrorResponse(w, err, values.NotAuthorised, "invalid-token")
			return
		}

		if !principal.HasRole(util.AdminRole) {
			writeErrorResponse(w, errors.New(values.NotAllowed), values.NotAllowed, "admin role required")
			return
		}

		ctx := context.WithValue(r.Context(), values.ContextPrincipalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (api *API) verifyToken(tokenString string) (model.Principal, error) {
	if api.Config.JwtSecret == "" {
		return model.Principal{}, fmt.Errorf("%w: no signing secret configured", errInvalidToken)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(api.Config.JwtSecret), nil
	})

	if ve, ok := err.(*jwt.ValidationError); ok {
		if ve.Errors&jwt.ValidationErrorExpired != 0 {
			return model.Principal{}, errTokenExpired
		}
	}

	if err != nil || !token.Valid {
		return model.Principal{}, fmt.Errorf("%w: %v", errInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.Principal{}, fmt.Errorf("%w: unexpected claims", errInvalidToken)
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return model.Principal{}, fmt.Errorf("%w: missing subject", errInvalidToken)
	}

	return model.Principal{Subject: subject, Roles: rolesFromClaims(claims)}, nil
}

// rolesFromClaims reads realm_access.roles and falls back to a top-level
// roles array.
func rolesFromClaims(claims jwt.MapClaims) []string {
	if realm, ok := claims["realm_access"].(map[string]interface{}); ok {
		if roles := stringSlice(realm["roles"]); len(roles) > 0 {
			return roles
		}
	}
	return stringSlice(claims["roles"])
}

func stringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
