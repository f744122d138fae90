package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init installs the default slog logger: text handler on stderr, level
// selectable via WANOTEBOOK_LOG_LEVEL (debug, info, warn, error).
func Init() {
	lvl := strings.ToLower(strings.TrimSpace(os.Getenv("WANOTEBOOK_LOG_LEVEL")))

	var level slog.Level
	switch lvl {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
