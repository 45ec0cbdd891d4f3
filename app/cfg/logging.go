package cfg

import (
	"log/slog"
	"os"
)

// SetupLogger installs a JSON slog handler as the default logger. JSON lines
// without colors keep CloudWatch and journald output readable.
func SetupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
