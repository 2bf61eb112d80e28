// Package main loads the builtin content catalog into a SQLite store.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ameliebruno/daybound/internal/content"
	"github.com/ameliebruno/daybound/internal/platform/config"
	"github.com/ameliebruno/daybound/internal/storage/sqlite"
)

type seedConfig struct {
	StorePath string `env:"DAYBOUND_STORE_PATH" envDefault:"daybound.db"`
}

func main() {
	log.SetPrefix("[SEED] ")

	var cfg seedConfig
	if err := config.ParseEnv(&cfg); err != nil {
		config.Exitf("parse config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(cfg.StorePath)
	if err != nil {
		config.Exitf("open store: %v", err)
	}
	defer store.Close()

	if err := content.Seed(ctx, store); err != nil {
		config.Exitf("seed content: %v", err)
	}
	log.Printf("seeded %d storylets and %d arcs into %s",
		len(content.Storylets()), len(content.Arcs()), cfg.StorePath)
}
