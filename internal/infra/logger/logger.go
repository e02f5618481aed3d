package logger

import (
	"log/slog"
	"os"
)

// New — JSON-логгер процесса. В dev включаем debug и человекочитаемый
// текстовый вывод, киоск в проде шлёт JSON.
func New(env string) *slog.Logger {
	if env == "dev" {
		h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
		return slog.New(h)
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(h)
}
