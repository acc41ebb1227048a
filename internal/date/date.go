// Package date provides a calendar Date type that marshals as YYYY-MM-DD.
package date

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

const (
	format      = "2006-01-02"
	dmyFormat   = "02/01/2006"
	dottedFmt   = "02.01.2006"
	isoDateSize = len(format)
)

// Date represents a calendar date without time or timezone.
type Date struct {
	time.Time
}

// New creates a Date from year, month, day.
func New(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns today's date.
func Today() Date {
	return FromTime(time.Now())
}

// FromTime drops the clock part of t.
func FromTime(t time.Time) Date {
	return New(t.Year(), t.Month(), t.Day())
}

// Parse parses YYYY-MM-DD. A trailing time part ("2024-03-01T10:00") is
// ignored, and DD/MM/YYYY is accepted for operator input.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > isoDateSize && (s[isoDateSize] == 'T' || s[isoDateSize] == ' ') {
		s = s[:isoDateSize]
	}
	for _, layout := range []string{format, dmyFormat} {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{t}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(format)
}

// DMY returns the date as DD/MM/YYYY.
func (d Date) DMY() string {
	return d.Format(dmyFormat)
}

// Dotted returns the date as DD.MM.YYYY.
func (d Date) Dotted() string {
	return d.Format(dottedFmt)
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{d.AddDate(0, 0, n)}
}

// AddMonths moves by n months, clamping the day to the target month's length.
func (d Date) AddMonths(n int) Date {
	first := New(d.Year(), d.Month(), 1).AddDate(0, n, 0)
	last := DaysIn(first.Year(), first.Month())
	day := d.Day()
	if day > last {
		day = last
	}
	return New(first.Year(), first.Month(), day)
}

// FirstOfMonth returns the first day of the date's month.
func (d Date) FirstOfMonth() Date {
	return New(d.Year(), d.Month(), 1)
}

// Same reports whether both dates are the same calendar day.
func (d Date) Same(o Date) bool {
	return d.Year() == o.Year() && d.YearDay() == o.YearDay()
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MarshalYAML implements yaml.Marshaler.
func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.v3 Unmarshaler.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := Parse(value.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
