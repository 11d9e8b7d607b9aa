package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jeanpaul/lifeline/internal/cache"
	"github.com/jeanpaul/lifeline/internal/persist"
	"github.com/jeanpaul/lifeline/internal/timeline"
)

type memGateway struct{}

func (memGateway) Load(string) (timeline.Dataset, error) {
	return timeline.Dataset{}, persist.ErrNotExist
}

func (memGateway) SaveAtomic(string, timeline.Dataset) error { return nil }

type stubResolver struct {
	calls  int
	person timeline.Person
	err    error
}

func (r *stubResolver) Resolve(ctx context.Context, name string) (timeline.Person, error) {
	r.calls++
	if r.err != nil {
		return timeline.Person{}, r.err
	}
	p := r.person
	p.Name = name
	return p, nil
}

func newTestServer(t *testing.T, r *stubResolver) (*Server, *cache.Cache) {
	t.Helper()
	c := cache.New(memGateway{}, "unused.json", nil)
	c.Preload(nil, timeline.Fallback())
	return New(c, r, "", nil), c
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestPeopleServesDataset(t *testing.T) {
	s, _ := newTestServer(t, &stubResolver{})
	rec := get(t, s.Handler(), "/api/people")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}

	var ds timeline.Dataset
	if err := json.Unmarshal(rec.Body.Bytes(), &ds); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ds.Persons) != 2 || ds.Persons[0].Name != "毛泽东" {
		t.Errorf("unexpected dataset: %d persons", len(ds.Persons))
	}
	// Chinese text must go out verbatim, not \u-escaped.
	if !strings.Contains(rec.Body.String(), "毛泽东") {
		t.Error("response escapes non-ASCII text")
	}
}

func TestPersonRequiresName(t *testing.T) {
	s, _ := newTestServer(t, &stubResolver{})
	rec := get(t, s.Handler(), "/api/person")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	rec = get(t, s.Handler(), "/api/person?name=%20%20")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank name status = %d, want 400", rec.Code)
	}
}

func TestPersonCacheHitSkipsResolver(t *testing.T) {
	r := &stubResolver{}
	s, _ := newTestServer(t, r)
	rec := get(t, s.Handler(), "/api/person?name=毛泽东")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var p timeline.Person
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Name != "毛泽东" || len(p.Events) == 0 {
		t.Errorf("person = %q with %d events", p.Name, len(p.Events))
	}
	if r.calls != 0 {
		t.Errorf("resolver called %d times for cached name", r.calls)
	}
}

func TestPersonEnrichmentIsCached(t *testing.T) {
	r := &stubResolver{person: timeline.Person{
		Events: []timeline.Event{{Year: timeline.Int(1886), Place: "仪陇", Title: "出生"}},
	}}
	s, c := newTestServer(t, r)
	h := s.Handler()

	rec := get(t, h, "/api/person?name=朱德")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !c.Dirty() {
		t.Error("successful enrichment should dirty the cache")
	}

	// Second request is served from the cache.
	get(t, h, "/api/person?name=朱德")
	if r.calls != 1 {
		t.Errorf("resolver calls = %d, want 1", r.calls)
	}
}

func TestPersonEmptyResultNotCached(t *testing.T) {
	r := &stubResolver{person: timeline.Person{Events: []timeline.Event{}}}
	s, c := newTestServer(t, r)
	h := s.Handler()

	rec := get(t, h, "/api/person?name=查无此人")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, empty results still answer 200", rec.Code)
	}
	var p timeline.Person
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Name != "查无此人" || len(p.Events) != 0 {
		t.Errorf("placeholder = %+v", p)
	}
	if c.Dirty() {
		t.Error("empty result must not dirty the cache")
	}

	// Negative results never stick: the next request resolves again.
	get(t, h, "/api/person?name=查无此人")
	if r.calls != 2 {
		t.Errorf("resolver calls = %d, want 2", r.calls)
	}
}

func TestPersonResolverErrorReturnsPlaceholder(t *testing.T) {
	r := &stubResolver{err: errors.New("status 503")}
	s, c := newTestServer(t, r)

	rec := get(t, s.Handler(), "/api/person?name=朱德")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, failures degrade to an empty record", rec.Code)
	}
	var p timeline.Person
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Name != "朱德" || len(p.Events) != 0 {
		t.Errorf("placeholder = %+v", p)
	}
	if c.Dirty() {
		t.Error("failed enrichment must not dirty the cache")
	}
}

func TestNames(t *testing.T) {
	s, c := newTestServer(t, &stubResolver{})
	c.Upsert(timeline.Person{Name: "朱德", Events: []timeline.Event{{Title: "出生"}}})

	rec := get(t, s.Handler(), "/api/names")
	var names []string
	if err := json.Unmarshal(rec.Body.Bytes(), &names); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"毛泽东", "毛晓彤", "朱德"}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &stubResolver{})
	rec := get(t, s.Handler(), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["persons"] != float64(2) {
		t.Errorf("health = %v", body)
	}
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t, &stubResolver{})
	h := s.Handler()

	rec := get(t, h, "/api/people")
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header on GET")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/people", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("preflight status = %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, &stubResolver{})
	h := s.Handler()
	for _, target := range []string{"/api/people", "/api/person?name=x", "/api/names"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, target, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s status = %d, want 405", target, rec.Code)
		}
	}
}
