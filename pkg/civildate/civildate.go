// Package civildate keeps every date-only computation of the service in one
// place: the institution's timezone, the "today" used as the attendance key,
// parsing of user supplied dates and the calendar names printed on reports.
//
// A civil date is represented as a time.Time at midnight UTC carrying the
// Y/M/D of the day as seen in the institution's timezone.
package civildate

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// DefaultTimezone is the institution's timezone.
const DefaultTimezone = "America/Sao_Paulo"

const (
	isoLayout     = "2006-01-02"
	displayLayout = "02/01/2006"
	clockLayout   = "15:04:05"
)

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

// Calendar resolves civil dates in a fixed location.
type Calendar struct {
	loc   *time.Location
	clock Clock
}

// NewCalendar loads tz (DefaultTimezone when empty). A nil clock means SystemClock.
func NewCalendar(tz string, clock Clock) (*Calendar, error) {
	if strings.TrimSpace(tz) == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Calendar{loc: loc, clock: clock}, nil
}

// Location returns the institution's location.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now returns the current instant in the institution's location.
func (c *Calendar) Now() time.Time {
	return c.clock.Now().In(c.loc)
}

// Today returns the current civil date in the institution's location.
func (c *Calendar) Today() time.Time {
	return Of(c.clock.Now(), c.loc)
}

// Local converts t to the institution's location for display.
func (c *Calendar) Local(t time.Time) time.Time {
	return t.In(c.loc)
}

// Of returns the civil date of instant t as observed in loc.
func Of(t time.Time, loc *time.Location) time.Time {
	return Normalize(t.In(loc))
}

// Normalize drops the time of day and zone, keeping t's own Y/M/D.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Parse accepts "YYYY-MM-DD" and "DD/MM/YYYY".
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layout := isoLayout
	if strings.Contains(s, "/") {
		layout = displayLayout
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or DD/MM/YYYY", s)
	}
	return Normalize(t), nil
}

// ISO formats d as YYYY-MM-DD.
func ISO(d time.Time) string {
	return d.Format(isoLayout)
}

// Format formats d as DD/MM/YYYY.
func Format(d time.Time) string {
	return d.Format(displayLayout)
}

// FormatClock formats the time of day as HH:MM:SS.
func FormatClock(t time.Time) string {
	return t.Format(clockLayout)
}

// MonthBounds returns the first and last civil day of the month.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// WeekKey returns the Sunday starting d's week.
func WeekKey(d time.Time) time.Time {
	d = Normalize(d)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// CountWeeks returns the number of distinct Sunday-start weeks among dates.
func CountWeeks(dates []time.Time) int {
	seen := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		seen[WeekKey(d)] = struct{}{}
	}
	return len(seen)
}

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

var weekdayNames = [...]string{
	"Domingo", "Segunda-feira", "Terça-feira", "Quarta-feira",
	"Quinta-feira", "Sexta-feira", "Sábado",
}

// MonthName returns the Portuguese month name.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// WeekdayName returns the Portuguese weekday name.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}
