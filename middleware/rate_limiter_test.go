package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientIPGeneric_DirectRemote(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.local/", nil)
	req.RemoteAddr = "203.0.113.5:54321"
	ip := clientIPGeneric(req, nil)
	if ip != "203.0.113.5" {
		t.Fatalf("expected direct remote IP, got %s", ip)
	}
}

func TestClientIPGeneric_TrustedProxyXFF(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.local/", nil)
	req.RemoteAddr = "198.51.100.10:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 198.51.100.10")
	// trustedCIDR contains the remote IP
	ip := clientIPGeneric(req, []string{"198.51.100.10"})
	if ip != "203.0.113.7" {
		t.Fatalf("expected X-Forwarded-For first value, got %s", ip)
	}
}

func TestClientIPGeneric_UntrustedProxyIgnoresXFF(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.local/", nil)
	req.RemoteAddr = "198.51.100.11:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.8, 198.51.100.11")
	ip := clientIPGeneric(req, []string{"198.51.100.10"})
	if ip != "198.51.100.11" {
		t.Fatalf("expected remote IP when proxy untrusted, got %s", ip)
	}
}

func TestAllowWithinLimit(t *testing.T) {
	l := &IPRateLimiter{max: 3, window: time.Minute, state: map[string][]int64{}}
	now := time.Unix(1700000000, 0)
	for i := 0; i < 3; i++ {
		if !l.allow("203.0.113.5", now) {
			t.Fatalf("request %d unexpectedly limited", i)
		}
	}
	if l.allow("203.0.113.5", now) {
		t.Fatal("fourth request should be limited")
	}
	// Another IP has its own budget.
	if !l.allow("203.0.113.6", now) {
		t.Fatal("different IP should not share the limit")
	}
}

func TestAllowWindowExpiry(t *testing.T) {
	l := &IPRateLimiter{max: 1, window: time.Minute, state: map[string][]int64{}}
	now := time.Unix(1700000000, 0)
	if !l.allow("203.0.113.5", now) {
		t.Fatal("first request should pass")
	}
	if l.allow("203.0.113.5", now.Add(30*time.Second)) {
		t.Fatal("request inside the window should be limited")
	}
	if !l.allow("203.0.113.5", now.Add(61*time.Second)) {
		t.Fatal("request after the window should pass again")
	}
}

func TestMiddlewareReturns429(t *testing.T) {
	l := &IPRateLimiter{max: 1, window: time.Minute, state: map[string][]int64{}}
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "http://example.local/api/spin", nil)
	req.RemoteAddr = "203.0.113.5:54321"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("429 response should carry Retry-After")
	}
}
