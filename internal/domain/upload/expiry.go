package upload

import (
	"strings"
	"time"
)

// autoDeleteOptions maps every accepted auto_delete value to its lifetime.
// A nil function means the upload never expires.
var autoDeleteOptions = map[string]func(time.Time) time.Time{
	"":        nil,
	"none":    nil,
	"1d":      func(t time.Time) time.Time { return t.Add(24 * time.Hour) },
	"1-day":   func(t time.Time) time.Time { return t.Add(24 * time.Hour) },
	"1w":      func(t time.Time) time.Time { return t.Add(7 * 24 * time.Hour) },
	"1-week":  func(t time.Time) time.Time { return t.Add(7 * 24 * time.Hour) },
	"2w":      func(t time.Time) time.Time { return t.Add(14 * 24 * time.Hour) },
	"2-week":  func(t time.Time) time.Time { return t.Add(14 * 24 * time.Hour) },
	"1m":      func(t time.Time) time.Time { return t.AddDate(0, 1, 0) },
	"1-month": func(t time.Time) time.Time { return t.AddDate(0, 1, 0) },
}

// ExpiryFor returns the absolute expiry for an auto_delete selection relative
// to now, or nil when the upload should be kept.
func ExpiryFor(option string, now time.Time) (*time.Time, error) {
	fn, ok := autoDeleteOptions[strings.ToLower(strings.TrimSpace(option))]
	if !ok {
		return nil, ErrInvalidAutoDelete
	}
	if fn == nil {
		return nil, nil
	}
	at := fn(now)
	return &at, nil
}
