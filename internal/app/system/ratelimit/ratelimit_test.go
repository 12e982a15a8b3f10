package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/apperr"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/auth"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestLimiter_Allow(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(3, time.Minute).WithClock(clk.now)

	for i := 0; i < 3; i++ {
		if !l.Allow("a") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("a") {
		t.Error("fourth attempt should be rejected")
	}
	if !l.Allow("b") {
		t.Error("other keys are counted separately")
	}
	if got := l.Remaining("a"); got != 0 {
		t.Errorf("Remaining(a) = %d, want 0", got)
	}

	clk.t = clk.t.Add(time.Minute + time.Second)
	if !l.Allow("a") {
		t.Error("new window should allow again")
	}
	if got := l.Remaining("a"); got != 2 {
		t.Errorf("Remaining(a) = %d, want 2", got)
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)
	l.Allow("a")
	if l.Allow("a") {
		t.Fatal("second attempt should be rejected")
	}
	l.Reset("a")
	if !l.Allow("a") {
		t.Error("Reset should clear the window")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	l := New(0, time.Minute)
	for i := 0; i < 100; i++ {
		if !l.Allow("a") {
			t.Fatal("a zero limit allows everything")
		}
	}
}

func TestLimiter_SweepDropsExpired(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(1, time.Minute).WithClock(clk.now)
	l.Allow("a")
	l.Allow("b")

	clk.t = clk.t.Add(3 * time.Minute)
	l.Allow("c")

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.windows) != 1 {
		t.Errorf("got %d windows after sweep, want 1", len(l.windows))
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "10.0.0.2:5000", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": " 5.6.7.8 "}, "10.0.0.2:5000", "5.6.7.8"},
		{"remote with port", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"remote without port", nil, "9.9.9.9", "9.9.9.9"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tc.want {
				t.Errorf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	l := New(1, time.Minute)
	var failed error
	fail := func(w http.ResponseWriter, _ *http.Request, err error) {
		failed = err
		w.WriteHeader(http.StatusTooManyRequests)
	}
	h := Middleware(l, CallerKey, fail)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := func(uid string) *http.Request {
		return auth.WithTestCaller(httptest.NewRequest(http.MethodPost, "/join", nil), auth.Caller{ID: uid})
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req("alice"))
	if rec.Code != http.StatusOK {
		t.Fatalf("first attempt: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req("alice"))
	if rec.Code != http.StatusTooManyRequests || !apperr.Is(failed, apperr.ResourceExhausted) {
		t.Errorf("second attempt: %d err=%v", rec.Code, failed)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req("bob"))
	if rec.Code != http.StatusOK {
		t.Errorf("other caller: %d", rec.Code)
	}
}
