package utils

import (
	"reflect"
	"strings"
	"time"
)

func FormatEpoch(millis int64) string {
	return time.UnixMilli(millis).
		UTC().
		Format(time.RFC3339)
}

func NowUTC() int64 {
	return time.Now().
		UTC().
		UnixMilli()
}

// FromEpoch parses an RFC3339 instant into epoch milliseconds. Offsets are
// honoured, so "2024-06-01T12:30:00+03:30" and "2024-06-01T09:00:00Z" are
// the same instant.
func FromEpoch(rfc string) (int64, error) {
	t, err := time.Parse(time.RFC3339, rfc)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// TruncateMinute drops seconds and milliseconds from an epoch instant.
func TruncateMinute(millis int64) int64 {
	return millis - millis%time.Minute.Milliseconds()
}

// DayBounds resolves a "YYYY-MM-DD" calendar date in loc to the half-open
// range [start of day, start of next day) in epoch milliseconds.
func DayBounds(date string, loc *time.Location) (int64, int64, error) {
	day, err := time.ParseInLocation(time.DateOnly, date, loc)
	if err != nil {
		return 0, 0, err
	}
	next := day.AddDate(0, 0, 1)
	return day.UnixMilli(), next.UnixMilli(), nil
}

// ParseClock parses "HH:MM" into an offset from midnight.
func ParseClock(clock string) (time.Duration, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func Sanitize(o any) {
	v := reflect.ValueOf(o)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		panic("sanitize: expected pointer to struct")
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		panic("sanitize: expected struct")
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(sanitizeString(field.String()))

		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				for j := 0; j < field.Len(); j++ {
					field.Index(j).SetString(sanitizeString(field.Index(j).String()))
				}
			}
		}
	}
}

func sanitizeString(s string) string {
	return strings.TrimSpace(s)
}
