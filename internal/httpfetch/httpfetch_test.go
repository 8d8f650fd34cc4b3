package httpfetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestFetchPrefix_IgnoredRange(t *testing.T) {
	var gotRange, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.Header.Get("Range")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("0123456789abcdefghijklmnop"))
	}))
	defer srv.Close()

	c := New(WithUserAgent("owo-test"))
	b, err := c.FetchPrefix(context.Background(), srv.URL, 11)
	if err != nil {
		t.Fatalf("FetchPrefix: %v", err)
	}
	if string(b) != "0123456789a" {
		t.Errorf("prefix = %q", b)
	}
	if gotRange != "bytes=0-10" {
		t.Errorf("Range = %q", gotRange)
	}
	if gotUA != "owo-test" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	b, err := New().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(b) != "ok" || atomic.LoadInt32(&calls) != 2 {
		t.Errorf("body %q after %d calls", b, calls)
	}
}

func TestFetch_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New().Fetch(context.Background(), srv.URL)
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode() != http.StatusNotFound {
		t.Fatalf("err = %v, want 404 StatusError", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"item":{"id":4151,"name":"Abyssal whip"}}`))
	}))
	defer srv.Close()

	var v struct {
		Item struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"item"`
	}
	if err := New().GetJSON(context.Background(), srv.URL, &v); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if v.Item.ID != 4151 || v.Item.Name != "Abyssal whip" {
		t.Errorf("decoded %+v", v)
	}
}
