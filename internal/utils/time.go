package utils

import "time"

const layoutDateTime = "2006-01-02 15:04"

// FormatDateTime renders t in UTC for documents and messages; zero prints "-".
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(layoutDateTime) + " UTC"
}

// FormatDateTimePtr is FormatDateTime for optional timestamps.
func FormatDateTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return FormatDateTime(*t)
}
