// Package hours parses restaurant working-hours descriptors and decides
// whether a restaurant is currently open. Working days use German
// two-letter abbreviations ("Mo-Fr, Sa"), the time window is a 24h
// range ("09:00-22:00"). Both formats come from the registration form
// and are validated there; parsing is pure and has no side effects.
package hours

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var weekdays = []string{"Mo", "Di", "Mi", "Do", "Fr", "Sa", "So"}

// ErrBadFormat is wrapped by all parse errors so callers can treat any
// malformed descriptor as a validation failure.
var ErrBadFormat = errors.New("invalid format")

// weekdayIndex returns the position of a two-letter day abbreviation,
// Monday first, or -1 when unknown.
func weekdayIndex(day string) int {
	for i, d := range weekdays {
		if d == day {
			return i
		}
	}
	return -1
}

// ParseDays expands a working-day descriptor like "Mo-Fr, Sa" into the
// set of open days. Entries are single days or inclusive ranges joined
// by ", ". An error wrapping ErrBadFormat is returned for anything else.
func ParseDays(spec string) (map[string]bool, error) {
	days := make(map[string]bool)
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("%w: empty day entry in %q", ErrBadFormat, spec)
		}
		if start, end, ok := strings.Cut(part, "-"); ok {
			si, ei := weekdayIndex(start), weekdayIndex(end)
			if si < 0 || ei < 0 || si > ei {
				return nil, fmt.Errorf("%w: day range %q", ErrBadFormat, part)
			}
			for i := si; i <= ei; i++ {
				days[weekdays[i]] = true
			}
			continue
		}
		if weekdayIndex(part) < 0 {
			return nil, fmt.Errorf("%w: day %q", ErrBadFormat, part)
		}
		days[part] = true
	}
	return days, nil
}

// Window is an open/close time pair within one day. Minutes are counted
// from midnight so comparisons need no date arithmetic.
type Window struct {
	OpenMin  int
	CloseMin int
}

// ParseWindow parses an "HH:MM-HH:MM" opening-hours string.
func ParseWindow(spec string) (Window, error) {
	open, close, ok := strings.Cut(spec, "-")
	if !ok {
		return Window{}, fmt.Errorf("%w: time window %q", ErrBadFormat, spec)
	}
	o, err := parseClock(open)
	if err != nil {
		return Window{}, err
	}
	c, err := parseClock(close)
	if err != nil {
		return Window{}, err
	}
	return Window{OpenMin: o, CloseMin: c}, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: clock value %q", ErrBadFormat, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Validate checks both descriptor strings and reports the first parse
// error. Used by registration and profile updates before storing them.
func Validate(daysSpec, windowSpec string) error {
	if _, err := ParseDays(daysSpec); err != nil {
		return err
	}
	_, err := ParseWindow(windowSpec)
	return err
}

// IsOpen reports whether a restaurant with the given descriptors is open
// at the instant now. Malformed descriptors count as closed; they are
// rejected at write time, so this only guards legacy rows.
func IsOpen(daysSpec, windowSpec string, now time.Time) bool {
	days, err := ParseDays(daysSpec)
	if err != nil {
		return false
	}
	win, err := ParseWindow(windowSpec)
	if err != nil {
		return false
	}
	// time.Weekday counts from Sunday; our table counts from Monday.
	day := weekdays[(int(now.Weekday())+6)%7]
	if !days[day] {
		return false
	}
	minute := now.Hour()*60 + now.Minute()
	return win.OpenMin <= minute && minute <= win.CloseMin
}
