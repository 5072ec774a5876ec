package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/izumilab/groundwater-viewer/internal/config"
	"github.com/izumilab/groundwater-viewer/internal/db"
	"github.com/izumilab/groundwater-viewer/internal/httpapi"
	"github.com/izumilab/groundwater-viewer/internal/standards"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	table := standards.Default()
	if cfg.StandardsPath != "" {
		table, err = standards.LoadFile(cfg.StandardsPath)
		if err != nil {
			log.Fatalf("standards error: %v", err)
		}
		log.Printf("loaded standards overrides from %s", cfg.StandardsPath)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connection error: %v", err)
	}
	defer store.Close()

	srv := httpapi.New(cfg, store, table)
	log.Printf("REST API listening on %s", cfg.ListenAddr())

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
