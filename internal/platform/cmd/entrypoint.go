// Package cmd provides shared helpers for command entrypoints.
package cmd

import (
	"errors"
	"flag"

	"github.com/KTGlem/GameMoments/internal/platform/config"
)

// ParseConfig loads environment defaults into a command config struct.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}
