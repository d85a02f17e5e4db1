package format

import (
	"strings"
	"time"
)

const (
	DayLayout   = "02/01/2006"
	MonthLayout = "January 2006"
)

func DayLabel(t time.Time) string {
	return t.Format(DayLayout)
}

func MonthLabel(t time.Time) string {
	return t.Format(MonthLayout)
}

// ParseMonth reads a label produced by MonthLabel in loc.
func ParseMonth(label string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(MonthLayout, strings.TrimSpace(label), loc)
}

// ParseDay accepts dd/mm/yyyy and the HTML date input form yyyy-mm-dd.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation("2006-01-02", value, loc); err == nil {
		return t, nil
	}
	return time.ParseInLocation(DayLayout, value, loc)
}
