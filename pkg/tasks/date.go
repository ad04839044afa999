package tasks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the only accepted input format for calendar dates
const DateLayout = "2006-01-02"

// Date is an optional calendar date without time-of-day. The zero value means "absent".
type Date struct {
	t time.Time
}

// NewDate returns the given calendar date
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf keeps only the calendar part of t, in t's own location
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today returns the local calendar date
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses YYYY-MM-DD. Blank input yields an absent date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// IsZero reports whether the date is absent
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time returns midnight UTC of the date, or the zero time when absent
func (d Date) Time() time.Time {
	return d.t
}

// Before reports whether d is strictly earlier than o; absent dates are never before anything
func (d Date) Before(o Date) bool {
	if d.IsZero() || o.IsZero() {
		return false
	}
	return d.t.Before(o.t)
}

// String formats the date as YYYY-MM-DD, or "" when absent
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MarshalJSON encodes midnight UTC in RFC3339, or null when absent
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.t.Format(time.RFC3339))
}

// UnmarshalJSON accepts null, RFC3339 timestamps and YYYY-MM-DD
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Date{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*d = DateOf(t)
		return nil
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
