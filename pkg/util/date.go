package util

import (
	"strings"
	"time"
)

// dateTpl maps template placeholders to Go layout tokens. Longer tokens come
// first so YYYY is never read as two YY.
var dateTpl = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MM", "01",
	"DD", "02",
	"hh", "15",
	"mm", "04",
	"ss", "05",
)

// FormatDateTpl formats t using a template with YYYY, YY, MM, DD, hh, mm and ss
// placeholders. The zero time formats as "".
//
//	FormatDateTpl(t, "DD:MM:YY")         // "18:09:16"
//	FormatDateTpl(t, "YYYY-MM-DD hh:mm") // "2016-09-18 00:00"
func FormatDateTpl(t time.Time, tpl string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTpl.Replace(tpl))
}

// ParseDateTpl is the inverse of FormatDateTpl.
func ParseDateTpl(s, tpl string) (time.Time, error) {
	return time.Parse(dateTpl.Replace(tpl), s)
}
