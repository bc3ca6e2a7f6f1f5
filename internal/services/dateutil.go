package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate marks caller-supplied date filters that failed to parse.
var ErrInvalidDate = errors.New("invalid date")

// timestampLayouts are tried in order for values that carry a time component.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"01-02-06 15:04", // excelize default datetime number format
}

// dateLayouts are tried for bare dates (no time component).
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"02-01-2006",
}

// BusinessTime interprets bare dates in a fixed business timezone so that
// the ingestion date filter and the reconciliation date filter agree on day
// boundaries. Full timestamps are used verbatim.
type BusinessTime struct {
	loc *time.Location
}

func NewBusinessTime(tzName string) (*BusinessTime, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("loading business timezone %q: %w", tzName, err)
	}

	return &BusinessTime{loc: loc}, nil
}

// Location returns the business timezone.
func (b *BusinessTime) Location() *time.Location {
	return b.loc
}

// StartOfDay resolves s to the first instant of that day in the business
// timezone when s is a bare date, or to the parsed instant when s is a full
// timestamp.
func (b *BusinessTime) StartOfDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if d, ok := b.parseBareDate(s); ok {
		return d, nil
	}

	return b.parseTimestamp(s)
}

// EndOfDay resolves s to the last instant of that day in the business
// timezone when s is a bare date, or to the parsed instant when s is a full
// timestamp.
func (b *BusinessTime) EndOfDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if d, ok := b.parseBareDate(s); ok {
		return d.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}

	return b.parseTimestamp(s)
}

// ParseTimestamp parses a spreadsheet cell value that must carry a date,
// trying timestamp layouts first and falling back to bare dates at midnight
// business time.
func (b *BusinessTime) ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := b.parseTimestamp(s); err == nil {
		return t, nil
	}

	if d, ok := b.parseBareDate(s); ok {
		return d, nil
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %q", s)
}

// Range resolves optional from/to strings to optional bounds. Empty strings
// yield nil bounds.
func (b *BusinessTime) Range(from, to string) (*time.Time, *time.Time, error) {
	var lo, hi *time.Time

	if strings.TrimSpace(from) != "" {
		t, err := b.StartOfDay(from)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: from: %v", ErrInvalidDate, err)
		}

		lo = &t
	}

	if strings.TrimSpace(to) != "" {
		t, err := b.EndOfDay(to)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: to: %v", ErrInvalidDate, err)
		}

		hi = &t
	}

	return lo, hi, nil
}

func (b *BusinessTime) parseBareDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, b.loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func (b *BusinessTime) parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, b.loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse timestamp: %q", s)
}
