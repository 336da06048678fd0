package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestSetupWithLevel(t *testing.T) {
	var buf bytes.Buffer
	l := SetupWith("warn", "json", &buf)
	l.Info("hidden")
	l.Warn("shown", "k", 1)
	if bytes.Contains(buf.Bytes(), []byte("hidden")) {
		t.Error("info should be filtered at warn level")
	}
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("not JSON: %v (%s)", err, buf.String())
	}
	if m["msg"] != "shown" {
		t.Errorf("msg = %v", m["msg"])
	}
	if L() != l {
		t.Error("L should return the configured logger")
	}
}

func TestAccessMiddleware(t *testing.T) {
	var buf bytes.Buffer
	l := SetupWith("debug", "json", &buf)
	h := middleware.RequestID(AccessMiddleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hello"))
	})))
	req := httptest.NewRequest(http.MethodGet, "/api/geo", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("not JSON: %v (%s)", err, buf.String())
	}
	if m["status"] != float64(http.StatusTeapot) || m["bytes"] != float64(5) || m["ip"] != "203.0.113.5" {
		t.Errorf("access log = %v", m)
	}
	if id, _ := m["request_id"].(string); id == "" {
		t.Error("request_id missing")
	}
}
