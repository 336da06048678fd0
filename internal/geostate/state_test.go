package geostate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMemStoreExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemStore()
	s.now = func() time.Time { return now }
	s.Set("k", "v", time.Hour)
	if v, ok := s.Get("k"); !ok || v != "v" {
		t.Fatalf("Get = %q %v", v, ok)
	}
	now = now.Add(2 * time.Hour)
	if _, ok := s.Get("k"); ok {
		t.Error("expected expiry")
	}
}

func TestReadWrite(t *testing.T) {
	s := NewMemStore()
	if _, ok := Read(s); ok {
		t.Fatal("empty store should not report a location")
	}
	Write(s, Location{City: "Costa Mesa", State: "CA", Slug: "costa-mesa"}, 0)
	l, ok := Read(s)
	if !ok || l.Slug != "costa-mesa" || l.City != "Costa Mesa" || l.State != "CA" {
		t.Errorf("Read = %+v %v", l, ok)
	}
	Write(s, Location{City: "", State: "CA"}, time.Hour)
	if _, ok := Read(s); ok {
		t.Error("missing city must not count as resolved")
	}
	if _, ok := Read(nil); ok {
		t.Error("nil store")
	}
}

func TestCookieStore(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/geo", nil)
	s := NewCookieStore(rec, req)
	Write(s, Location{City: "Costa Mesa", State: "CA", Slug: "costa-mesa"}, DefaultTTL)
	if l, ok := Read(s); !ok || l.City != "Costa Mesa" {
		t.Errorf("read-your-writes failed: %+v", l)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 3 {
		t.Fatalf("cookies = %d, want 3", len(cookies))
	}
	for _, c := range cookies {
		if c.HttpOnly {
			t.Errorf("%s must not be HttpOnly", c.Name)
		}
		if c.SameSite != http.SameSiteLaxMode {
			t.Errorf("%s SameSite = %v", c.Name, c.SameSite)
		}
		if c.MaxAge != 604800 {
			t.Errorf("%s MaxAge = %d", c.Name, c.MaxAge)
		}
	}
	raw := strings.Join(rec.Header().Values("Set-Cookie"), "\n")
	if !strings.Contains(raw, "geo_city=Costa%20Mesa") {
		t.Errorf("city cookie not encoded: %s", raw)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/page/stop-auction/anaheim", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	l, ok := Read(NewCookieStore(nil, req2))
	if !ok || l.City != "Costa Mesa" || l.State != "CA" || l.Slug != "costa-mesa" {
		t.Errorf("round trip = %+v %v", l, ok)
	}
}
