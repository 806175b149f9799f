// Package datetime converts between civil wall-clock values in the clinic's
// timezone and the canonical "YYYY-MM-DDTHH:mm" string stored on appointments.
//
// The canonical form is zero-padded with fields in year-month-day-hour-minute
// order, so plain string comparison is chronological comparison.
package datetime

import (
	"strings"
	"time"
)

const (
	// ZoneName is the civil timezone used for every "today"/"now" computation.
	ZoneName = "America/Sao_Paulo"

	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04"
	CanonicalLayout = DateLayout + "T" + TimeLayout
	DisplayLayout   = "02/01/2006 15:04"

	// DefaultTime is used by Join when no usable time part is given.
	DefaultTime = "09:00"
)

// Zone is a fixed UTC-3 offset. Brazil dropped DST in 2019, so no tz database
// lookup is needed and the host timezone never leaks into results.
var Zone = time.FixedZone(ZoneName, -3*60*60)

// Now returns the current instant in the civil zone.
func Now() time.Time { return time.Now().In(Zone) }

// Today returns today's date part (YYYY-MM-DD) in the civil zone.
func Today() string { return DatePart(Now()) }

// DatePart formats t (converted to the civil zone) as YYYY-MM-DD.
func DatePart(t time.Time) string { return t.In(Zone).Format(DateLayout) }

// Canonical formats t (converted to the civil zone) as YYYY-MM-DDTHH:mm.
func Canonical(t time.Time) string { return t.In(Zone).Format(CanonicalLayout) }

// Join concatenates a date part and a time part into a canonical timestamp.
// An empty date yields "". An empty or unparsable time part falls back to
// 09:00; a single-digit hour is zero-padded. Only HH:mm is accepted, so a
// time with seconds ("14:30:00") also falls back to 09:00.
func Join(datePart, timePart string) string {
	if datePart == "" {
		return ""
	}
	t := DefaultTime
	if len(timePart) >= 4 {
		if parsed, err := time.Parse(TimeLayout, timePart); err == nil {
			t = parsed.Format(TimeLayout)
		}
	}
	return datePart + "T" + t
}

// Split is the inverse of Join. A missing time segment yields an empty time
// part; seconds and zone suffixes are cut off the time part.
func Split(ts string) (datePart, timePart string) {
	if ts == "" {
		return "", ""
	}
	d, t, _ := strings.Cut(ts, "T")
	if len(t) > 5 {
		t = t[:5]
	}
	return d, t
}

// ToDisplay renders a canonical timestamp as "DD/MM/YYYY HH:mm".
// Input without a date/time separator renders as "".
func ToDisplay(ts string) string {
	if !strings.Contains(ts, "T") {
		return ""
	}
	d, t := Split(ts)
	parts := strings.Split(d, "-")
	if len(parts) != 3 {
		return ""
	}
	return pad2(parts[2]) + "/" + pad2(parts[1]) + "/" + parts[0] + " " + t
}

// Compare orders two canonical timestamps, returning -1, 0 or 1.
func Compare(a, b string) int {
	return strings.Compare(a, b)
}

// Parse reads a canonical timestamp, a bare date or an RFC3339 value.
// Values without an explicit offset are interpreted in the civil zone.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{CanonicalLayout, CanonicalLayout + ":05", DateLayout} {
		if t, err := time.ParseInLocation(layout, s, Zone); err == nil {
			return t, nil
		}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(Zone), nil
}

// StartOfWeek returns midnight of the Sunday that starts t's calendar week.
func StartOfWeek(t time.Time) time.Time {
	t = t.In(Zone)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Zone)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// CalendarWeeksBetween counts calendar weeks (Sunday based) from then to now.
// The result is negative when then falls in a later week than now.
func CalendarWeeksBetween(now, then time.Time) int {
	days := StartOfWeek(now).Sub(StartOfWeek(then)).Hours() / 24
	// fixed offset zone: every day is exactly 24h
	return int(days) / 7
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
