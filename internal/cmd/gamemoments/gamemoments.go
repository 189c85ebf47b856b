// Package gamemoments parses command flags and runs the interactive match
// event logger.
package gamemoments

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/KTGlem/GameMoments/internal/match/session"
	entrypoint "github.com/KTGlem/GameMoments/internal/platform/cmd"
	"github.com/KTGlem/GameMoments/internal/storage"
	"github.com/KTGlem/GameMoments/internal/storage/bolt"
	"github.com/KTGlem/GameMoments/internal/storage/sqlite"
)

// Storage driver names accepted by Config.StorageDriver.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

// Config holds gamemoments command configuration.
type Config struct {
	StorageDriver string `env:"GAMEMOMENTS_STORAGE_DRIVER" envDefault:"sqlite"`
	StoragePath   string `env:"GAMEMOMENTS_STORAGE_PATH" envDefault:"gamemoments.db"`
	ExportDir     string `env:"GAMEMOMENTS_EXPORT_DIR" envDefault:"."`
	LoggerName    string `env:"GAMEMOMENTS_LOGGER_NAME"`
	LogLevel      string `env:"GAMEMOMENTS_LOG_LEVEL" envDefault:"warn"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.StorageDriver, "driver", cfg.StorageDriver, "Storage driver: sqlite or bolt")
	fs.StringVar(&cfg.StoragePath, "path", cfg.StoragePath, "Storage file path")
	fs.StringVar(&cfg.ExportDir, "export-dir", cfg.ExportDir, "Directory for exported files")
	fs.StringVar(&cfg.LoggerName, "logger", cfg.LoggerName, "Default logger name for new games")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func openStore(cfg Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case DriverSQLite:
		return sqlite.Open(cfg.StoragePath)
	case DriverBolt:
		return bolt.Open(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Run opens the store and drives the interactive loop until the context is
// cancelled or the user quits. Unflushed writes are retried on the way out.
func Run(ctx context.Context, cfg Config) error {
	log := newLogger(cfg.LogLevel)

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	sess := session.New(store, session.WithLogger(log))

	r := &repl{
		session:    sess,
		log:        log,
		in:         os.Stdin,
		out:        os.Stdout,
		exportDir:  cfg.ExportDir,
		loggerName: cfg.LoggerName,
	}
	runErr := r.run(ctx)

	// Retry dirty records on a fresh context before the store closes.
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sess.Flush(flushCtx); err != nil {
		log.Error().Err(err).Msg("final flush failed; unpersisted records lost")
	}
	return runErr
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).Level(lvl).With().Timestamp().Logger()
}
