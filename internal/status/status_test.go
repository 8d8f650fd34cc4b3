package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sudosnok/owopondbot/datastore"
	"github.com/sudosnok/owopondbot/internal/imagesource"
)

type fakeBot struct{ ready bool }

func (f fakeBot) Ready() bool            { return f.ready }
func (f fakeBot) Latency() time.Duration { return 42 * time.Millisecond }
func (f fakeBot) GuildCount() int        { return 3 }

func get(t *testing.T, src Sources, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	Router(src).ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthz(t *testing.T) {
	if w := get(t, Sources{Bot: fakeBot{ready: false}}, "/healthz"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("not ready: status %d", w.Code)
	}
	if w := get(t, Sources{Bot: fakeBot{ready: true}}, "/healthz"); w.Code != http.StatusOK {
		t.Errorf("ready: status %d", w.Code)
	}
}

func TestStatus(t *testing.T) {
	src := Sources{
		Bot:      fakeBot{ready: true},
		Resolver: func() imagesource.Stats { return imagesource.Stats{Hits: 5, Misses: 2, Size: 2, Capacity: 15} },
		Store:    func() datastore.Stats { return datastore.Stats{Keys: 4} },
		Jobs:     func() []string { return []string{"pins:c1"} },
		Started:  time.Now().Add(-time.Minute),
	}
	w := get(t, src, "/status")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}

	var r Report
	if err := json.Unmarshal(w.Body.Bytes(), &r); err != nil {
		t.Fatal(err)
	}
	if !r.Ready || r.LatencyMS != 42 || r.Guilds != 3 {
		t.Errorf("bot fields = %+v", r)
	}
	if r.Resolver == nil || r.Resolver.Hits != 5 || r.Store == nil || r.Store.Keys != 4 {
		t.Errorf("stats = %+v %+v", r.Resolver, r.Store)
	}
	if len(r.Jobs) != 1 || r.Jobs[0] != "pins:c1" || r.Uptime == "" {
		t.Errorf("jobs/uptime = %v %q", r.Jobs, r.Uptime)
	}
}

func TestStatus_Empty(t *testing.T) {
	w := get(t, Sources{}, "/status")
	var r Report
	if err := json.Unmarshal(w.Body.Bytes(), &r); err != nil {
		t.Fatal(err)
	}
	if r.Resolver != nil || r.Store != nil || r.Jobs == nil {
		t.Errorf("empty report = %+v", r)
	}
}
