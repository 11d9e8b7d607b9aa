package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func nominatimStub(hits *int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		if r.URL.Query().Get("q") == "" {
			http.Error(w, "missing q", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"lat": "31.105", "lon": "106.303"},
		})
	}
}

func TestLookupCachesResults(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(nominatimStub(&hits))
	defer srv.Close()

	c := New(srv.URL, 5, nil)
	for i := 0; i < 3; i++ {
		lat, lon, ok := c.Lookup(context.Background(), "仪陇")
		if !ok {
			t.Fatal("lookup failed")
		}
		if f, _ := lat.Float64(); f != 31.105 {
			t.Errorf("lat = %v", lat.String())
		}
		if f, _ := lon.Float64(); f != 106.303 {
			t.Errorf("lon = %v", lon.String())
		}
	}
	if hits != 1 {
		t.Errorf("upstream hits = %d, want 1 (cached)", hits)
	}
}

func TestLookupRespectsBudget(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(nominatimStub(&hits))
	defer srv.Close()

	c := New(srv.URL, 1, nil)
	if _, _, ok := c.Lookup(context.Background(), "仪陇"); !ok {
		t.Fatal("first lookup should succeed")
	}
	if _, _, ok := c.Lookup(context.Background(), "上海"); ok {
		t.Error("budget exhausted, lookup should fail")
	}
	// Cached place still served after exhaustion.
	if _, _, ok := c.Lookup(context.Background(), "仪陇"); !ok {
		t.Error("cached place should still resolve")
	}
	if hits != 1 {
		t.Errorf("upstream hits = %d, want 1", hits)
	}
}

func TestLookupEmptyPlace(t *testing.T) {
	c := New("http://localhost:0", 5, nil)
	if _, _, ok := c.Lookup(context.Background(), "   "); ok {
		t.Error("blank place must not resolve")
	}
}

func TestLookupNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := New(srv.URL, 5, nil)
	if _, _, ok := c.Lookup(context.Background(), "不存在的地方"); ok {
		t.Error("empty result set should report not found")
	}
}

func TestLookupKeepsUnparseableCoordinatesAsStrings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]string{{"lat": "N/A", "lon": "N/A"}})
	}))
	defer srv.Close()

	c := New(srv.URL, 5, nil)
	lat, _, ok := c.Lookup(context.Background(), "somewhere")
	if !ok {
		t.Fatal("lookup should still succeed")
	}
	if lat.String() != "N/A" {
		t.Errorf("lat = %q, want raw string preserved", lat.String())
	}
}
