package osrs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Price is a Grand Exchange price. The catalogue sends small prices as JSON
// numbers and large ones as abbreviated strings such as "1.5m" or "- 12".
type Price struct {
	Raw   string
	Value int64
}

func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := ParsePrice(s)
		if err != nil {
			return err
		}
		*p = Price{Raw: s, Value: v}
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	*p = Price{Raw: string(b), Value: int64(f)}
	return nil
}

func (p Price) String() string {
	if p.Raw != "" {
		return p.Raw
	}
	return strconv.FormatInt(p.Value, 10)
}

// ParsePrice parses "1,234", "12.5k", "1.5m", "2b", "+ 5" and "- 12".
func ParsePrice(s string) (int64, error) {
	s = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}

	mult := 1.0
	switch s[len(s)-1] {
	case 'k':
		mult = 1e3
	case 'm':
		mult = 1e6
	case 'b':
		mult = 1e9
	}
	if mult != 1 {
		s = s[:len(s)-1]
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("price %q: %w", s, err)
	}
	return int64(math.Round(f * mult)), nil
}

// Trend is a price with its direction.
type Trend struct {
	Trend string `json:"trend"`
	Price Price  `json:"price"`
}

// Change is a percentage change over a period.
type Change struct {
	Trend  string `json:"trend"`
	Change string `json:"change"`
}

// Item is a catalogue entry.
type Item struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	IconLarge   string `json:"icon_large"`
	Type        string `json:"type"`
	Members     string `json:"members"`
	Current     Trend  `json:"current"`
	Today       Trend  `json:"today"`
	Day30       Change `json:"day30"`
	Day90       Change `json:"day90"`
	Day180      Change `json:"day180"`
}

// Summary is the plain-text card printed by randitem.
func (it *Item) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", it.Name)
	fmt.Fprintf(&b, "ID: %d\n", it.ID)
	fmt.Fprintf(&b, "Description: %s\n", it.Description)
	fmt.Fprintf(&b, "Current price: %s\n", it.Current.Price)
	fmt.Fprintf(&b, "Current trend: %s\n", it.Current.Trend)
	return b.String()
}

// ChangeOver returns the change for "30d", "90d" or "180d" style periods.
func (it *Item) ChangeOver(period string) (Change, bool) {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "1m", "30d", "1 month", "30 days":
		return it.Day30, true
	case "3m", "90d", "3 months", "90 days":
		return it.Day90, true
	case "6m", "180d", "6 months", "180 days":
		return it.Day180, true
	}
	return Change{}, false
}

// Point is one daily price.
type Point struct {
	Time  time.Time
	Price int64
}

// History is an item's daily price series, oldest first.
type History struct {
	Item   *Item
	Points []Point
}

// ParseDaily converts the graph API's daily map of millisecond timestamps.
func ParseDaily(daily map[string]float64) ([]Point, error) {
	pts := make([]Point, 0, len(daily))
	for k, v := range daily {
		ms, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("graph timestamp %q: %w", k, err)
		}
		pts = append(pts, Point{Time: time.UnixMilli(ms).UTC(), Price: int64(v)})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Time.Before(pts[j].Time) })
	return pts, nil
}

// Stats returns the integer average, maximum and minimum price.
func (h *History) Stats() (avg, max, min int64) {
	if len(h.Points) == 0 {
		return 0, 0, 0
	}
	var sum int64
	max, min = h.Points[0].Price, h.Points[0].Price
	for _, p := range h.Points {
		sum += p.Price
		if p.Price > max {
			max = p.Price
		}
		if p.Price < min {
			min = p.Price
		}
	}
	return sum / int64(len(h.Points)), max, min
}
