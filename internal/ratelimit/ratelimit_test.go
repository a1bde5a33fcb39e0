package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testConfig() Config {
	return Config{Rate: rate.Limit(1.0 / 60.0), Burst: 2, CleanupInterval: time.Hour}
}

func TestAllowPerKey(t *testing.T) {
	l := New(testConfig())
	defer l.Stop()

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("expected burst of 2 to be allowed")
	}
	if l.Allow("a") {
		t.Error("expected third request to be rejected")
	}
	if !l.Allow("b") {
		t.Error("expected a different key to have its own bucket")
	}
	if l.Len() != 2 {
		t.Errorf("expected 2 tracked keys, got %d", l.Len())
	}
}

func TestMiddlewareRejectsWith429(t *testing.T) {
	l := New(testConfig())
	defer l.Stop()

	rejected := 0
	h := l.Middleware(func(*http.Request) { rejected++ })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/token", nil)
		req.RemoteAddr = "192.0.2.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") != "60" {
			t.Errorf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
		}
	}

	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status codes %v", codes)
	}
	if rejected != 1 {
		t.Errorf("expected 1 rejection callback, got %d", rejected)
	}
}

func TestClientKeyStripsPort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[2001:db8::1]:443"
	if got := ClientKey(req); got != "2001:db8::1" {
		t.Errorf("expected bare IPv6 address, got %q", got)
	}

	req.RemoteAddr = "not-an-address"
	if got := ClientKey(req); got != "not-an-address" {
		t.Errorf("expected raw remote address, got %q", got)
	}
}

func TestCleanupDropsIdleKeys(t *testing.T) {
	l := New(testConfig())
	defer l.Stop()

	l.Allow("idle")
	l.cleanup(time.Now().Add(3 * time.Hour))
	if l.Len() != 0 {
		t.Errorf("expected idle key to be dropped, %d left", l.Len())
	}

	l.Stop()
}
