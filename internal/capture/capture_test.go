package capture

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"geo-leads/internal/geostate"
)

type fakeGeo struct {
	pos   Position
	err   error
	calls atomic.Int32
	opt   PositionOptions
}

func (f *fakeGeo) CurrentPosition(ctx context.Context, opt PositionOptions) (Position, error) {
	f.calls.Add(1)
	f.opt = opt
	return f.pos, f.err
}

type fakeSubmit struct {
	lat, lng float64
	err      error
	calls    int
}

func (f *fakeSubmit) Submit(ctx context.Context, lat, lng float64) error {
	f.calls++
	f.lat, f.lng = lat, lng
	return f.err
}

func TestRunSkipsWhenCached(t *testing.T) {
	st := geostate.NewMemStore()
	geostate.Write(st, geostate.Location{City: "Anaheim", State: "CA", Slug: "anaheim"}, time.Hour)
	g := &fakeGeo{}
	c := New(st, g, &fakeSubmit{}, DefaultOptions)
	if got := c.Run(context.Background()); got != OutcomeCached {
		t.Errorf("Run = %v", got)
	}
	if g.calls.Load() != 0 {
		t.Error("geolocation must not be requested when cached")
	}
}

func TestRunPartialCacheStillCaptures(t *testing.T) {
	st := geostate.NewMemStore()
	st.Set(geostate.KeyCity, "Anaheim", time.Hour)
	g := &fakeGeo{pos: Position{Lat: 33.8, Lng: -117.9}}
	s := &fakeSubmit{}
	if got := New(st, g, s, DefaultOptions).Run(context.Background()); got != OutcomeSubmitted {
		t.Errorf("Run = %v", got)
	}
	if s.lat != 33.8 || s.lng != -117.9 {
		t.Errorf("submitted %v,%v", s.lat, s.lng)
	}
	if g.opt.Timeout != 8*time.Second || g.opt.MaximumAge != 60*time.Second {
		t.Errorf("options = %+v", g.opt)
	}
}

func TestRunSilentFailures(t *testing.T) {
	cases := []struct {
		name   string
		geo    Geolocator
		submit *fakeSubmit
		want   Outcome
	}{
		{"no geolocation", nil, &fakeSubmit{}, OutcomeUnsupported},
		{"unsupported", &fakeGeo{err: ErrUnsupported}, &fakeSubmit{}, OutcomeUnsupported},
		{"denied", &fakeGeo{err: ErrDenied}, &fakeSubmit{}, OutcomeNoPosition},
		{"timeout", &fakeGeo{err: ErrTimeout}, &fakeSubmit{}, OutcomeNoPosition},
		{"submit fails", &fakeGeo{}, &fakeSubmit{err: errors.New("network")}, OutcomeSubmitFailed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := New(geostate.NewMemStore(), c.geo, c.submit, DefaultOptions).Run(context.Background())
			if got != c.want {
				t.Errorf("Run = %v, want %v", got, c.want)
			}
			if c.want != OutcomeSubmitFailed && c.submit.calls != 0 {
				t.Error("submit should not be called")
			}
		})
	}
}

func TestRunOnce(t *testing.T) {
	g := &fakeGeo{}
	c := New(geostate.NewMemStore(), g, &fakeSubmit{}, DefaultOptions)
	if c.Attempted() {
		t.Fatal("fresh capture should be unresolved")
	}
	c.Run(context.Background())
	if got := c.Run(context.Background()); got != OutcomeAlreadyRan {
		t.Errorf("second Run = %v", got)
	}
	if !c.Attempted() || g.calls.Load() != 1 {
		t.Errorf("attempted=%v calls=%d", c.Attempted(), g.calls.Load())
	}
}

func TestHTTPSubmitterStoresCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/geo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body map[string]float64
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["lat"] != 33.8 || body["lng"] != -117.9 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		st := geostate.NewCookieStore(w, r)
		geostate.Write(st, geostate.Location{City: "Anaheim", State: "CA", Slug: "anaheim"}, time.Hour)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()
	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar, Timeout: time.Second}
	state := JarState{Jar: jar, URL: srv.URL}
	c := New(state, &fakeGeo{pos: Position{Lat: 33.8, Lng: -117.9}}, NewHTTPSubmitter(srv.URL+"/api", client), DefaultOptions)
	if got := c.Run(context.Background()); got != OutcomeSubmitted {
		t.Fatalf("Run = %v", got)
	}
	l, ok := geostate.Read(state)
	if !ok || l.Slug != "anaheim" {
		t.Errorf("jar state = %+v %v", l, ok)
	}
	// 下一次页面加载读取到缓存，不再定位
	g := &fakeGeo{}
	if got := New(state, g, NewHTTPSubmitter(srv.URL+"/api", client), DefaultOptions).Run(context.Background()); got != OutcomeCached {
		t.Errorf("second page load = %v", got)
	}
}

func TestHTTPSubmitterStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	if err := NewHTTPSubmitter(srv.URL, srv.Client()).Submit(context.Background(), 1, 2); err == nil {
		t.Error("expected error on 502")
	}
}
