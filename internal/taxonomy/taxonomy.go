// Package taxonomy defines the folder-name grammar for day, month and year
// folders. Names are zero-padded and fixed width, so string order equals
// chronological order.
package taxonomy

import (
	"fmt"
	"time"

	"github.com/starford/archivist/internal/apperr"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
	yearLayout  = "2006"
)

// Year is a YYYY folder key.
type Year int

// Month is a YYYY-MM folder key.
type Month struct {
	Year  Year
	Month time.Month
}

// Day is a YYYY-MM-DD folder key.
type Day struct {
	Year  Year
	Month time.Month
	Day   int
}

// ParseDay parses a YYYY-MM-DD folder name.
func ParseDay(name string) (Day, error) {
	t, err := parseExact(name, dayLayout)
	if err != nil {
		return Day{}, err
	}
	return DayFromTime(t), nil
}

// ParseMonth parses a YYYY-MM folder name.
func ParseMonth(name string) (Month, error) {
	t, err := parseExact(name, monthLayout)
	if err != nil {
		return Month{}, err
	}
	return Month{Year: Year(t.Year()), Month: t.Month()}, nil
}

// ParseYear parses a YYYY folder name.
func ParseYear(name string) (Year, error) {
	t, err := parseExact(name, yearLayout)
	if err != nil {
		return 0, err
	}
	return Year(t.Year()), nil
}

// parseExact accepts name only if it has the exact width of layout, names a
// real calendar date, and formats back to itself.
func parseExact(name, layout string) (time.Time, error) {
	if len(name) != len(layout) {
		return time.Time{}, fmt.Errorf("%w: %q", apperr.ErrMalformedName, name)
	}
	t, err := time.Parse(layout, name)
	if err != nil || t.Year() < 1 || t.Format(layout) != name {
		return time.Time{}, fmt.Errorf("%w: %q", apperr.ErrMalformedName, name)
	}
	return t, nil
}

// DayFromTime returns the day key of t in t's location.
func DayFromTime(t time.Time) Day {
	return Day{Year: Year(t.Year()), Month: t.Month(), Day: t.Day()}
}

// String formats the year as YYYY.
func (y Year) String() string { return fmt.Sprintf("%04d", int(y)) }

// String formats the month as YYYY-MM.
func (m Month) String() string { return fmt.Sprintf("%04d-%02d", int(m.Year), int(m.Month)) }

// String formats the day as YYYY-MM-DD.
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", int(d.Year), int(d.Month), d.Day)
}

// InMonth returns the month the day belongs to.
func (d Day) InMonth() Month { return Month{Year: d.Year, Month: d.Month} }

// InYear returns the year the month belongs to.
func (m Month) InYear() Year { return m.Year }

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time {
	return time.Date(int(d.Year), d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Prev returns the previous calendar day.
func (d Day) Prev() Day { return DayFromTime(d.Time().AddDate(0, 0, -1)) }

// Prev returns the previous calendar month.
func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// Before reports whether d is strictly earlier than o.
func (d Day) Before(o Day) bool { return d.key() < o.key() }

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool { return m.key() < o.key() }

// Name returns the English month name, e.g. "February".
func (m Month) Name() string { return m.Month.String() }

// ShortName returns the three-letter month name, e.g. "Feb".
func (m Month) ShortName() string { return m.Month.String()[:3] }

func (d Day) key() int { return int(d.Year)*10000 + int(d.Month)*100 + d.Day }

func (m Month) key() int { return int(m.Year)*100 + int(m.Month) }
