package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/roofdash/internal/service"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if strings.TrimSpace(generated) == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

func serveWithJWT(t *testing.T, secret, issuer, authHeader string) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(JWTAuthMiddleware(secret, issuer))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status_code": 0, "admin_id": c.GetUint("admin_id"), "username": c.GetString("username")})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	code, _ := resp["status_code"].(float64)
	return int(code), resp
}

func TestJWTAuthMiddlewareMissingSecret(t *testing.T) {
	code, _ := serveWithJWT(t, "", "", "Bearer whatever")
	if code != 401 {
		t.Fatalf("status_code want 401 got %d", code)
	}
}

func TestJWTAuthMiddlewareRejectsBadHeaders(t *testing.T) {
	if code, _ := serveWithJWT(t, "secret", "", ""); code != 401 {
		t.Fatalf("missing header want 401 got %d", code)
	}
	if code, _ := serveWithJWT(t, "secret", "", "Token abc"); code != 401 {
		t.Fatalf("non bearer header want 401 got %d", code)
	}
	if code, _ := serveWithJWT(t, "secret", "", "Bearer not-a-jwt"); code != 401 {
		t.Fatalf("garbage token want 401 got %d", code)
	}
}

func TestJWTAuthMiddlewareAcceptsValidToken(t *testing.T) {
	token, _, err := service.GenerateAdminJWT("secret", "roofdash", 42, "ops", time.Hour)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	code, resp := serveWithJWT(t, "secret", "roofdash", "Bearer "+token)
	if code != 0 {
		t.Fatalf("status_code want 0 got %d", code)
	}
	if resp["admin_id"].(float64) != 42 || resp["username"] != "ops" {
		t.Fatalf("context want 42/ops got %v/%v", resp["admin_id"], resp["username"])
	}

	if code, _ := serveWithJWT(t, "secret", "elsewhere", "Bearer "+token); code != 401 {
		t.Fatalf("issuer mismatch want 401 got %d", code)
	}
}
