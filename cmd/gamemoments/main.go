package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	gamemomentscmd "github.com/KTGlem/GameMoments/internal/cmd/gamemoments"
)

func main() {
	cfg, err := gamemomentscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := gamemomentscmd.Run(ctx, cfg); err != nil {
		log.Fatalf("run: %v", err)
	}
}
