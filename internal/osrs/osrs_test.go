package osrs

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/internal/httpfetch"
)

const whipPage = `<!DOCTYPE html><html><body>
<div class="infobox"><table><tr><td>
<div class="GEdataprices infobox-quantity" data-itemid="4151" data-value="1500000"></div>
</td></tr></table></div></body></html>`

const whipDetail = `{"item":{"icon":"i","icon_large":"il","id":4151,"type":"Default","name":"Abyssal whip",
"description":"A weapon from the abyss.","current":{"trend":"neutral","price":"1.5m"},
"today":{"trend":"negative","price":"- 12.1k"},"members":"true",
"day30":{"trend":"positive","change":"+2.0%"},"day90":{"trend":"negative","change":"-1.0%"},
"day180":{"trend":"neutral","change":"0.0%"}}}`

const whipGraph = `{"daily":{"1600200000000":1500000,"1600000000000":1400000,"1600100000000":1600000},"average":{}}`

type osrsServer struct {
	*httptest.Server
	wikiHits int32
	randHits int32
}

func newOSRSServer(t *testing.T) *osrsServer {
	s := &osrsServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/w/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.wikiHits, 1)
		if r.URL.Path != "/w/Abyssal_whip" {
			fmt.Fprint(w, `<html><body><p>There is currently no text in this page.</p></body></html>`)
			return
		}
		fmt.Fprint(w, whipPage)
	})
	mux.HandleFunc("/detail", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("item") != "4151" {
			atomic.AddInt32(&s.randHits, 1)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, whipDetail)
	})
	mux.HandleFunc("/graph/4151.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, whipGraph)
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *osrsServer) client(opts ...Option) *Client {
	opts = append([]Option{WithURLs(s.URL+"/w/%s", s.URL+"/detail?item=%d", s.URL+"/graph/%d.json")}, opts...)
	return New(httpfetch.New(httpfetch.WithMaxAttempts(1)), opts...)
}

func TestLookup(t *testing.T) {
	srv := newOSRSServer(t)
	c := srv.client()

	it, err := c.Lookup(context.Background(), "abyssal  whip")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if it.ID != 4151 || it.Name != "Abyssal whip" {
		t.Errorf("item = %+v", it)
	}
	if it.Current.Price.Value != 1500000 || it.Today.Price.Value != -12100 {
		t.Errorf("prices = %d, %d", it.Current.Price.Value, it.Today.Price.Value)
	}
	if ch, ok := it.ChangeOver("90d"); !ok || ch.Change != "-1.0%" {
		t.Errorf("ChangeOver(90d) = %+v, %v", ch, ok)
	}

	if _, err := c.Lookup(context.Background(), "Abyssal_whip"); err != nil {
		t.Fatalf("second Lookup: %v", err)
	}
	if n := atomic.LoadInt32(&srv.wikiHits); n != 1 {
		t.Errorf("wiki fetched %d times, want 1", n)
	}
}

func TestLookup_NotFound(t *testing.T) {
	c := newOSRSServer(t).client()
	_, err := c.Lookup(context.Background(), "dragon scimmy of doom")
	if !errors.Is(err, errkind.ItemNotFound) {
		t.Errorf("err = %v, want ItemNotFound", err)
	}
}

func TestHistory(t *testing.T) {
	c := newOSRSServer(t).client()
	it, err := c.Item(context.Background(), 4151)
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	h, err := c.History(context.Background(), it)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h.Points) != 3 {
		t.Fatalf("points = %d", len(h.Points))
	}
	for i := 1; i < len(h.Points); i++ {
		if !h.Points[i-1].Time.Before(h.Points[i].Time) {
			t.Error("points not sorted by time")
		}
	}
	avg, max, min := h.Stats()
	if avg != 1500000 || max != 1600000 || min != 1400000 {
		t.Errorf("stats = %d %d %d", avg, max, min)
	}
}

func TestRandomItem_Bounded(t *testing.T) {
	srv := newOSRSServer(t)
	c := srv.client(WithRand(rand.New(rand.NewSource(7))))

	_, err := c.RandomItem(context.Background())
	if !errors.Is(err, errkind.ItemNotFound) {
		t.Fatalf("err = %v, want ItemNotFound", err)
	}
	if n := atomic.LoadInt32(&srv.randHits); n > RandomAttempts {
		t.Errorf("tried %d ids, want at most %d", n, RandomAttempts)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1,234", 1234},
		{"12.5k", 12500},
		{"1.5m", 1500000},
		{"2.1b", 2100000000},
		{"- 12", -12},
		{"+ 5", 5},
		{"0", 0},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParsePrice(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParsePrice("lots"); err == nil {
		t.Error("expected error for non-numeric price")
	}
}

func TestPageName(t *testing.T) {
	tests := map[string]string{
		"abyssal whip":      "Abyssal_whip",
		"Abyssal_whip":      "Abyssal_whip",
		"  dragon   bones ": "Dragon_bones",
		"":                  "",
	}
	for in, want := range tests {
		if got := PageName(in); got != want {
			t.Errorf("PageName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractItemID(t *testing.T) {
	if id, ok := extractItemID(whipPage); !ok || id != 4151 {
		t.Errorf("extractItemID = %d, %v", id, ok)
	}
	if _, ok := extractItemID(strings.ReplaceAll(whipPage, "GEdataprices", "prices")); ok {
		t.Error("matched a div without the GEdataprices class")
	}
}
