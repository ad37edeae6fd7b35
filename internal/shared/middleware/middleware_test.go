package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ticketcore/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func organizerEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
	engine := gin.New()
	engine.GET("/admin", JWTAuthWithConfig(cfg), RequireOrganizer(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return engine
}

func TestJWTAuth_Organizer(t *testing.T) {
	engine := organizerEngine()
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token abc", http.StatusUnauthorized},
		{"bad signature", "Bearer " + signToken(t, jwt.MapClaims{"type": "access", "role": RoleOrganizer, "exp": exp}, "other"), http.StatusUnauthorized},
		{"refresh token", "Bearer " + signToken(t, jwt.MapClaims{"type": "refresh", "role": RoleOrganizer, "exp": exp}, testSecret), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, jwt.MapClaims{"type": "access", "role": RoleOrganizer, "exp": time.Now().Add(-time.Hour).Unix()}, testSecret), http.StatusUnauthorized},
		{"attendee", "Bearer " + signToken(t, jwt.MapClaims{"type": "access", "role": "ATTENDEE", "exp": exp}, testSecret), http.StatusForbidden},
		{"organizer", "Bearer " + signToken(t, jwt.MapClaims{"type": "access", "role": RoleOrganizer, "exp": exp}, testSecret), http.StatusOK},
		{"admin", "Bearer " + signToken(t, jwt.MapClaims{"type": "access", "role": RoleAdmin, "exp": exp}, testSecret), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestHolderToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/me", HolderToken(), func(c *gin.Context) {
		c.String(http.StatusOK, GetHolderToken(c))
	})

	tests := []struct {
		token string
		want  int
		body  string
	}{
		{"", http.StatusBadRequest, ""},
		{"   ", http.StatusBadRequest, ""},
		{strings.Repeat("x", 129), http.StatusBadRequest, ""},
		{" alice ", http.StatusOK, "alice"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tt.token != "" {
			req.Header.Set(HolderTokenHeader, tt.token)
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		if w.Code != tt.want {
			t.Fatalf("token %q: expected %d, got %d", tt.token, tt.want, w.Code)
		}
		if tt.body != "" && w.Body.String() != tt.body {
			t.Fatalf("expected holder %q, got %q", tt.body, w.Body.String())
		}
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/ping", RequestID(), func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Body.String() != "req-42" {
		t.Fatalf("expected caller id to be kept, got %q", w.Body.String())
	}
	if got := w.Header().Get(RequestIDHeader); got != "req-42" {
		t.Fatalf("expected id echoed in header, got %q", got)
	}

	for _, incoming := range []string{"", strings.Repeat("r", 65)} {
		req = httptest.NewRequest(http.MethodGet, "/ping", nil)
		if incoming != "" {
			req.Header.Set(RequestIDHeader, incoming)
		}
		w = httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		id := w.Body.String()
		if id == "" || id == incoming {
			t.Fatalf("expected a generated id for %q, got %q", incoming, id)
		}
		if w.Header().Get(RequestIDHeader) != id {
			t.Fatalf("expected header %q, got %q", id, w.Header().Get(RequestIDHeader))
		}
	}
}
