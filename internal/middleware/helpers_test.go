package middleware

import (
	"io"
	"log/slog"
	"strings"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
