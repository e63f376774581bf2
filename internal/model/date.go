package model

import (
	"fmt"
	"strings"
	"time"
)

// dateLayout is the wire format for all calendar dates.
const dateLayout = "2006-01-02"

// Date is a calendar date without a time component, marshalled as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return fmt.Errorf("date is required")
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Time.IsZero()
}

// After reports whether d is after other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Equal reports whether two dates name the same day.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}
