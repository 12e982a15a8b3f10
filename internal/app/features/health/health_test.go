package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/health"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/testutil"
	"go.uber.org/zap"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("no reachable servers") }

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body
}

func TestServe_MongoConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(health.MongoPinger{Client: db.Client()}, "mongo", zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}
	if body := decode(t, rec); body["status"] != "ok" || body["database"] != "connected" {
		t.Errorf("body: %v", body)
	}
}

func TestServe_Memory(t *testing.T) {
	handler := health.NewHandler(health.MemoryPinger{}, "memory", zap.NewNop())
	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if body := decode(t, rec); body["backend"] != "memory" {
		t.Errorf("body: %v", body)
	}
}

func TestServe_StoreDown(t *testing.T) {
	handler := health.NewHandler(failingPinger{}, "mongo", zap.NewNop())
	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	body := decode(t, rec)
	if body["status"] != "error" || body["database"] != "disconnected" {
		t.Errorf("body: %v", body)
	}
}
