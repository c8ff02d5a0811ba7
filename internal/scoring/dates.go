// Package scoring derives recency, reliability and corpus statistics from
// classified documents. Nothing here calls external services.
package scoring

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	numericDate = regexp.MustCompile(`(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})`)
	textualDate = regexp.MustCompile(`([A-Za-z]+)\.?\s+(\d{1,2}),?\s+(\d{4})`)
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	time.DateTime,
	time.DateOnly,
}

var months = func() map[string]time.Month {
	m := make(map[string]time.Month, 24)
	for mo := time.January; mo <= time.December; mo++ {
		name := strings.ToLower(mo.String())
		m[name] = mo
		m[name[:3]] = mo
	}
	m["sept"] = time.September
	return m
}()

// ParseDate accepts ISO dates and date-times, YYYY-MM-DD with '-', '/' or '.'
// separators anywhere in the text, and "Month D, YYYY". The result is UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	if m := numericDate.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		return calendarDate(y, time.Month(mo), d)
	}

	if m := textualDate.FindStringSubmatch(s); m != nil {
		mo, ok := months[strings.ToLower(m[1])]
		if !ok {
			return time.Time{}, false
		}
		d, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		return calendarDate(y, mo, d)
	}

	return time.Time{}, false
}

// calendarDate rejects dates time.Date would silently normalize (Feb 30).
func calendarDate(y int, mo time.Month, d int) (time.Time, bool) {
	t := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != mo || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// AgeDays counts whole days between t and now, flooring like a calendar
// difference. Future dates give negative values.
func AgeDays(t, now time.Time) int {
	return int(math.Floor(now.Sub(t).Hours() / 24))
}
