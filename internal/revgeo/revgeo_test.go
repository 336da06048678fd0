package revgeo

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"geo-leads/internal/config"
	"geo-leads/internal/geostate"
	"geo-leads/internal/outcome"
)

type fakeGoogle struct {
	srv   *httptest.Server
	calls atomic.Int32
	last  atomic.Value
}

func newFakeGoogle(t *testing.T, body string) *fakeGoogle {
	t.Helper()
	f := &fakeGoogle{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		f.last.Store(r.URL.Query())
		w.Header().Set("content-type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

const okBody = `{"status":"OK","results":[
 {"address_components":[
   {"long_name":"Costa Mesa","short_name":"Costa Mesa","types":["locality","political"]},
   {"long_name":"California","short_name":"CA","types":["administrative_area_level_1","political"]}]}]}`

const neighborhoodBody = `{"status":"OK","results":[
 {"address_components":[
   {"long_name":"Downtown","short_name":"Downtown","types":["neighborhood","political"]}]}]}`

func TestResolveSuccessPersists(t *testing.T) {
	f := newFakeGoogle(t, okBody)
	r := NewResolver(NewClient(f.srv.URL, "k", time.Second), Options{})
	st := geostate.NewMemStore()
	out := r.Resolve(context.Background(), 33.6411, -117.9187, st)
	if !out.OK || out.Kind != outcome.KindNone {
		t.Fatalf("outcome = %+v", out)
	}
	if outcome.Deref(out.City) != "Costa Mesa" || outcome.Deref(out.State) != "CA" || outcome.Deref(out.Slug) != "costa-mesa" {
		t.Errorf("outcome = %v/%v/%v", outcome.Deref(out.City), outcome.Deref(out.State), outcome.Deref(out.Slug))
	}
	l, ok := geostate.Read(st)
	if !ok || l.Slug != "costa-mesa" || l.State != "CA" {
		t.Errorf("persisted = %+v %v", l, ok)
	}
	q := f.last.Load().(url.Values)
	if q["latlng"][0] != "33.6411,-117.9187" || q["key"][0] != "k" {
		t.Errorf("query = %v", q)
	}
	if q["result_type"][0] != "locality|postal_town|administrative_area_level_3|sublocality|neighborhood" {
		t.Errorf("result_type = %v", q["result_type"])
	}
}

func TestResolveInvalidInputNoCall(t *testing.T) {
	f := newFakeGoogle(t, okBody)
	r := NewResolver(NewClient(f.srv.URL, "k", time.Second), Options{})
	cases := []struct{ lat, lng float64 }{
		{math.NaN(), -117.9},
		{33.6, math.NaN()},
		{math.Inf(1), -117.9},
		{33.6, ParseCoordinate(nil)},
	}
	for _, c := range cases {
		st := geostate.NewMemStore()
		out := r.Resolve(context.Background(), c.lat, c.lng, st)
		if out.OK || out.City != nil || out.State != nil || out.Slug != nil {
			t.Errorf("(%v,%v): outcome = %+v", c.lat, c.lng, out)
		}
		if out.Kind != outcome.KindInvalidInput || out.Error == "" {
			t.Errorf("(%v,%v): kind = %v error = %q", c.lat, c.lng, out.Kind, out.Error)
		}
		if st.Len() != 0 {
			t.Error("state must not be written")
		}
	}
	if n := f.calls.Load(); n != 0 {
		t.Errorf("outbound calls = %d, want 0", n)
	}
}

func TestResolveMissingKeyNoCall(t *testing.T) {
	f := newFakeGoogle(t, okBody)
	r := NewResolver(NewClient(f.srv.URL, "", time.Second), Options{})
	out := r.Resolve(context.Background(), 33.6, -117.9, geostate.NewMemStore())
	if out.OK || out.Kind != outcome.KindInvalidInput || out.Error != "Missing GOOGLE_MAPS_API_KEY" {
		t.Errorf("outcome = %+v", out)
	}
	if f.calls.Load() != 0 {
		t.Error("no call expected")
	}
}

func TestResolveNonOKStatus(t *testing.T) {
	f := newFakeGoogle(t, `{"status":"REQUEST_DENIED","error_message":"bad key","results":[]}`)
	r := NewResolver(NewClient(f.srv.URL, "k", time.Second), Options{})
	st := geostate.NewMemStore()
	out := r.Resolve(context.Background(), 33.6, -117.9, st)
	if out.OK || out.Status != "REQUEST_DENIED" || out.City != nil || out.State != nil || out.Slug != nil {
		t.Errorf("outcome = %+v", out)
	}
	if out.Kind != outcome.KindUpstream {
		t.Errorf("kind = %v", out.Kind)
	}
	if st.Len() != 0 {
		t.Error("no cookies on non-OK status")
	}
}

func TestResolveNeighborhoodFallback(t *testing.T) {
	f := newFakeGoogle(t, neighborhoodBody)
	r := NewResolver(NewClient(f.srv.URL, "k", time.Second), Options{})
	out := r.Resolve(context.Background(), 34.05, -118.25, geostate.NewMemStore())
	if !out.OK || outcome.Deref(out.City) != "Downtown" || outcome.Deref(out.Slug) != "downtown" || out.State != nil {
		t.Errorf("outcome = %+v", out)
	}
}

func TestResolveNoMatch(t *testing.T) {
	f := newFakeGoogle(t, `{"status":"OK","results":[{"address_components":[{"long_name":"USA","short_name":"US","types":["country"]}]}]}`)
	r := NewResolver(NewClient(f.srv.URL, "k", time.Second), Options{})
	out := r.Resolve(context.Background(), 34.05, -118.25, geostate.NewMemStore())
	if !out.OK || out.Kind != outcome.KindNoMatch || out.City != nil || out.State != nil || out.Slug != nil {
		t.Errorf("outcome = %+v", out)
	}
}

func TestResolveUpstreamFailures(t *testing.T) {
	bad := newFakeGoogle(t, `{not json`)
	r := NewResolver(NewClient(bad.srv.URL, "k", time.Second), Options{})
	if out := r.Resolve(context.Background(), 1, 2, geostate.NewMemStore()); out.OK || out.Kind != outcome.KindUpstream || out.Error != "Geocode failed" {
		t.Errorf("decode failure outcome = %+v", out)
	}

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()
	r = NewResolver(NewClient(slow.URL, "k", 50*time.Millisecond), Options{})
	start := time.Now()
	out := r.Resolve(context.Background(), 1, 2, geostate.NewMemStore())
	if out.OK || out.Kind != outcome.KindUpstream {
		t.Errorf("timeout outcome = %+v", out)
	}
	if time.Since(start) > time.Second {
		t.Error("timeout not honored")
	}
}

func TestResolveCellCache(t *testing.T) {
	f := newFakeGoogle(t, okBody)
	r := NewResolver(NewClient(f.srv.URL, "k", time.Second), Options{CacheTTL: time.Minute})
	for i := 0; i < 3; i++ {
		st := geostate.NewMemStore()
		out := r.Resolve(context.Background(), 33.6411, -117.9187, st)
		if !out.OK || outcome.Deref(out.Slug) != "costa-mesa" {
			t.Fatalf("outcome %d = %+v", i, out)
		}
		if _, ok := geostate.Read(st); !ok {
			t.Errorf("cache hit %d should still persist state", i)
		}
	}
	if n := f.calls.Load(); n != 1 {
		t.Errorf("outbound calls = %d, want 1", n)
	}
}

func TestResolveDefaultConfigEachVisitorCalls(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		city := "Fullerton"
		if r.URL.Query().Get("latlng") == "33.8353,-117.9145" {
			city = "Anaheim"
		}
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"address_components":[{"long_name":"` + city + `","short_name":"` + city + `","types":["locality"]}]}]}`))
	}))
	defer srv.Close()
	cfg := config.FromEnv(func(string) string { return "" })
	r := NewResolver(NewClient(srv.URL, "k", time.Second), Options{CacheTTL: cfg.RevGeoCacheTTL, CacheSize: cfg.RevGeoCacheSize})

	// 两点同属一个 13 级单元
	if cellKey(33.8353, -117.9145) != cellKey(33.8361, -117.9150) {
		t.Fatal("coordinates expected in one cell")
	}
	a := r.Resolve(context.Background(), 33.8353, -117.9145, geostate.NewMemStore())
	b := r.Resolve(context.Background(), 33.8361, -117.9150, geostate.NewMemStore())
	if outcome.Deref(a.City) != "Anaheim" || outcome.Deref(b.City) != "Fullerton" {
		t.Errorf("cities = %q, %q", outcome.Deref(a.City), outcome.Deref(b.City))
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("outbound calls = %d, want 2", n)
	}
}

func TestCityStatePriority(t *testing.T) {
	comp := func(name, short string, types ...string) Component {
		return Component{LongName: name, ShortName: short, Types: types}
	}
	cases := []struct {
		name       string
		results    []Result
		city, stat string
	}{
		{"locality wins", []Result{{AddressComponents: []Component{
			comp("Downtown", "", "neighborhood"), comp("Anaheim", "", "locality"), comp("California", "CA", "administrative_area_level_1"),
		}}}, "Anaheim", "CA"},
		{"postal town", []Result{{AddressComponents: []Component{
			comp("Sub", "", "sublocality"), comp("Town", "", "postal_town"),
		}}}, "Town", ""},
		{"admin level 3", []Result{{AddressComponents: []Component{
			comp("Sub", "", "sublocality"), comp("Twp", "", "administrative_area_level_3"),
		}}}, "Twp", ""},
		{"empty long name skipped", []Result{{AddressComponents: []Component{
			comp("", "", "locality"), comp("Sub", "", "sublocality"),
		}}}, "Sub", ""},
		{"first candidate with any field", []Result{
			{AddressComponents: []Component{comp("USA", "US", "country")}},
			{AddressComponents: []Component{comp("California", "CA", "administrative_area_level_1")}},
			{AddressComponents: []Component{comp("Irvine", "", "locality")}},
		}, "", "CA"},
		{"none", []Result{{AddressComponents: []Component{comp("USA", "US", "country")}}}, "", ""},
		{"no results", nil, "", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			city, state := CityState(c.results)
			if city != c.city || state != c.stat {
				t.Errorf("CityState = %q,%q want %q,%q", city, state, c.city, c.stat)
			}
		})
	}
}

func TestParseCoordinate(t *testing.T) {
	cases := map[string]float64{
		`33.5`:    33.5,
		`-117`:    -117,
		`"33.25"`: 33.25,
		`" 1e1 "`: 10,
	}
	for in, want := range cases {
		if got := ParseCoordinate(json.RawMessage(in)); got != want {
			t.Errorf("ParseCoordinate(%s) = %v, want %v", in, got, want)
		}
	}
	for _, in := range []string{``, `null`, `true`, `"abc"`, `{}`, `[1]`} {
		if got := ParseCoordinate(json.RawMessage(in)); !math.IsNaN(got) {
			t.Errorf("ParseCoordinate(%s) = %v, want NaN", in, got)
		}
	}
}

func TestLRUEviction(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU(2, time.Minute)
	c.now = func() time.Time { return now }
	c.Set("a", cityState{City: "A"})
	c.Set("b", cityState{City: "B"})
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing")
	}
	c.Set("c", cityState{City: "C"})
	if _, ok := c.Get("b"); ok {
		t.Error("b should be evicted as least recently used")
	}
	if c.Len() != 2 {
		t.Errorf("len = %d", c.Len())
	}
	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
}

func TestCellKeyStable(t *testing.T) {
	if cellKey(33.6411, -117.9187) != cellKey(33.6411, -117.9187) {
		t.Error("same point should map to the same cell")
	}
	if cellKey(33.6411, -117.9187) == cellKey(34.05, -118.25) {
		t.Error("distant points should not share a cell")
	}
}
