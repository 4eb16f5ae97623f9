package yamlv

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// timestampParts holds the fields of a scalar matching the timestamp grammar.
type timestampParts struct {
	year, month, day  int
	hasTime           bool
	hour, min, sec    int
	frac              string
	hasZone           bool
	zoneSign          int
	zoneHour, zoneMin int
}

// IsTimestamp reports whether text matches the timestamp grammar:
//
//	YYYY-MM-DD
//	YYYY-M-D(T|t|spaces)H:MM:SS[.frac][spaces][Z|(+|-)H[H][:MM]|(+|-)HHMM]
//
// Leading and trailing spaces are allowed.
func IsTimestamp(text string) bool {
	_, ok := scanTimestamp(text)
	return ok
}

func scanTimestamp(s string) (timestampParts, bool) {
	var ts timestampParts
	n := len(s)
	p := 0
	skipSpace := func() {
		for p < n && (s[p] == ' ' || s[p] == '\t') {
			p++
		}
	}
	number := func() (int, int) {
		start := p
		for p < n && isDecimalDigit(s[p]) {
			p++
		}
		v, _ := strconv.Atoi(s[start:p])
		return v, p - start
	}

	skipSpace()
	dateStart := p

	var w int
	if ts.year, w = number(); w != 4 || p == n || s[p] != '-' {
		return ts, false
	}
	p++
	if ts.month, w = number(); w == 0 || w > 2 || p == n || s[p] != '-' {
		return ts, false
	}
	p++
	if ts.day, w = number(); w == 0 || w > 2 {
		return ts, false
	}
	dateLen := p - dateStart

	skipSpace()
	if p == n {
		// date-only form needs two-digit month and day
		return ts, dateLen == 10
	}
	if s[p] == 'T' || s[p] == 't' {
		p++
	}

	ts.hasTime = true
	if ts.hour, w = number(); w == 0 || w > 2 || p == n || s[p] != ':' {
		return ts, false
	}
	p++
	if ts.min, w = number(); w != 2 || p == n || s[p] != ':' {
		return ts, false
	}
	p++
	if ts.sec, w = number(); w != 2 {
		return ts, false
	}
	if p == n {
		return ts, true
	}

	if s[p] == '.' {
		p++
		start := p
		for p < n && isDecimalDigit(s[p]) {
			p++
		}
		ts.frac = s[start:p]
	}

	skipSpace()
	if p == n {
		return ts, true
	}

	if s[p] == 'Z' {
		p++
		ts.hasZone = true
		skipSpace()
		return ts, p == n
	}
	if s[p] != '+' && s[p] != '-' {
		return ts, false
	}
	ts.hasZone = true
	ts.zoneSign = 1
	if s[p] == '-' {
		ts.zoneSign = -1
	}
	p++
	start := p
	_, w = number()
	digits := s[start:p]
	switch {
	case w == 0 || w > 4:
		return ts, false
	case w <= 2:
		ts.zoneHour, _ = strconv.Atoi(digits)
	default:
		ts.zoneHour, _ = strconv.Atoi(digits[:w-2])
		ts.zoneMin, _ = strconv.Atoi(digits[w-2:])
	}
	if w < 3 && p < n && s[p] == ':' {
		p++
		if ts.zoneMin, w = number(); w != 2 {
			return ts, false
		}
	}
	skipSpace()
	return ts, p == n
}

// ParseTimestamp parses text matching the timestamp grammar. A timestamp
// without a zone is taken as UTC.
func ParseTimestamp(text string) (time.Time, error) {
	ts, ok := scanTimestamp(text)
	if !ok {
		return time.Time{}, errors.Errorf("%q is not a timestamp", text)
	}
	if ts.month < 1 || ts.month > 12 {
		return time.Time{}, errors.Errorf("%q: month out of range", text)
	}
	if ts.day < 1 || ts.day > daysIn(time.Month(ts.month), ts.year) {
		return time.Time{}, errors.Errorf("%q: day out of range", text)
	}
	if ts.hour > 23 || ts.min > 59 || ts.sec > 59 {
		return time.Time{}, errors.Errorf("%q: time of day out of range", text)
	}
	if ts.zoneHour > 23 || ts.zoneMin > 59 {
		return time.Time{}, errors.Errorf("%q: zone offset out of range", text)
	}

	nsec := 0
	if ts.frac != "" {
		frac := ts.frac
		if len(frac) > 9 {
			frac = frac[:9]
		}
		for len(frac) < 9 {
			frac += "0"
		}
		nsec, _ = strconv.Atoi(frac)
	}

	loc := time.UTC
	if ts.hasZone && (ts.zoneHour != 0 || ts.zoneMin != 0) {
		loc = time.FixedZone("", ts.zoneSign*(ts.zoneHour*3600+ts.zoneMin*60))
	}
	return time.Date(ts.year, time.Month(ts.month), ts.day, ts.hour, ts.min, ts.sec, nsec, loc), nil
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
