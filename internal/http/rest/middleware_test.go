package rest

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwise1/eventbuzz/config"
	"github.com/bwise1/eventbuzz/util/values"
	"github.com/golang-jwt/jwt"
)

func TestRequestTracingSetsRequestID(t *testing.T) {
	ta := newTestAPI(t)

	rec, _ := ta.do(t, http.MethodGet, "/api/v1/health", "", "")
	if rec.Header().Get(values.HeaderRequestID) == "" {
		t.Error("expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set(values.HeaderRequestID, "req-123")
	rec = httptest.NewRecorder()
	ta.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(values.HeaderRequestID); got != "req-123" {
		t.Errorf("request id = %q; want the caller's id echoed", got)
	}
}

func TestVerifyToken(t *testing.T) {
	ta := newTestAPI(t)

	testCases := []struct {
		name    string
		claims  jwt.MapClaims
		roles   []string
		wantErr error
	}{
		{
			name:   "realm roles",
			claims: jwt.MapClaims{"sub": "u1", "realm_access": map[string]interface{}{"roles": []string{"admin", "editor"}}},
			roles:  []string{"admin", "editor"},
		},
		{
			name:   "top-level roles",
			claims: jwt.MapClaims{"sub": "u1", "roles": []string{"viewer"}},
			roles:  []string{"viewer"},
		},
		{
			name:   "realm takes precedence",
			claims: jwt.MapClaims{"sub": "u1", "roles": []string{"viewer"}, "realm_access": map[string]interface{}{"roles": []string{"admin"}}},
			roles:  []string{"admin"},
		},
		{
			name:    "missing subject",
			claims:  jwt.MapClaims{"roles": []string{"admin"}},
			wantErr: errInvalidToken,
		},
		{
			name:    "expired",
			claims:  jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Minute).Unix()},
			wantErr: errTokenExpired,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ta.api.verifyToken(signToken(t, tc.claims))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v; want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Subject != "u1" || len(p.Roles) != len(tc.roles) {
				t.Fatalf("principal = %+v", p)
			}
			for i, r := range tc.roles {
				if p.Roles[i] != r {
					t.Errorf("roles = %v; want %v", p.Roles, tc.roles)
				}
			}
		})
	}
}

func TestVerifyTokenRejectsOtherAlgorithms(t *testing.T) {
	ta := newTestAPI(t)
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ta.api.verifyToken(token); !errors.Is(err, errInvalidToken) {
		t.Errorf("err = %v; want invalid token", err)
	}
}

func TestRequireAdminWithoutSecret(t *testing.T) {
	ta := newTestAPI(t, func(c *config.Config) { c.JwtSecret = "" })

	rec, resp := ta.do(t, http.MethodPost, "/api/v1/events", createBody, adminToken(t, "admin"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Message != "invalid-token" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestRequireAdminExpiredToken(t *testing.T) {
	ta := newTestAPI(t)
	token := signToken(t, jwt.MapClaims{
		"sub":          "admin",
		"realm_access": map[string]interface{}{"roles": []string{"admin"}},
		"exp":          time.Now().Add(-time.Hour).Unix(),
	})

	rec, resp := ta.do(t, http.MethodDelete, "/api/v1/events/00000000-0000-0000-0000-000000000001", "", token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Status != values.TokenExpired || resp.Message != "token-expired" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestRequireAdminMalformedHeader(t *testing.T) {
	ta := newTestAPI(t)
	for _, header := range []string{"Token abc", "Bearer", "Bearer a b"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/events", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		ta.handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%q: status = %d", header, rec.Code)
		}
	}
}
