// Package slogx provides small log/slog attribute helpers shared across the
// broker and server packages.
package slogx

import (
	"fmt"
	"log/slog"
)

// Error wraps an error in a slog.Attr under the conventional "error" key.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Stringer renders a fmt.Stringer value as a string attribute, so types like
// roles and UUIDs log without extra formatting at the call site.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}
