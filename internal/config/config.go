package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DataDir     string
	SeatsPerRow int
	LogLevel    slog.Level
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "database"
	}

	seatsPerRowStr := os.Getenv("SEATS_PER_ROW")
	if seatsPerRowStr == "" {
		seatsPerRowStr = "10"
	}

	seatsPerRow, err := strconv.Atoi(seatsPerRowStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid SEATS_PER_ROW: %w", op, err)
	}
	if seatsPerRow <= 0 {
		return nil, fmt.Errorf("%s: SEATS_PER_ROW must be positive, got %d", op, seatsPerRow)
	}

	logLevel, err := parseLogLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Config{
		DataDir:     dataDir,
		SeatsPerRow: seatsPerRow,
		LogLevel:    logLevel,
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
