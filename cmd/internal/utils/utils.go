package utils

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

// isoMillis mirrors the layout browsers produce with Date.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func FormatEpoch(millis int64) string {
	return time.UnixMilli(millis).
		UTC().
		Format(time.RFC3339)
}

// FormatISO formats a millisecond epoch keeping millisecond precision.
func FormatISO(millis int64) string {
	return time.UnixMilli(millis).
		UTC().
		Format(isoMillis)
}

func NowUTC() int64 {
	return time.Now().
		UTC().
		UnixMilli()
}

// StartOfDayUTC returns the first millisecond of the UTC day containing millis.
func StartOfDayUTC(millis int64) int64 {
	t := time.UnixMilli(millis).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).UnixMilli()
}

// ParseID parses a positive numeric identifier, returning 0 for anything else.
func ParseID(raw string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
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
