package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/geopython/geousage/internal/duckdb"
	"github.com/geopython/geousage/internal/httpserver"
)

// runServer exposes an existing request archive over the HTTP API until
// interrupted.
func runServer(cfg appConfig) error {
	if cfg.DBPath == "" {
		return fmt.Errorf("-serve requires -db-path (or GEOUSAGE_DB_PATH)")
	}

	store, err := duckdb.NewStore(cfg.DBPath, cfg.QueryTimeout)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer store.Close()

	apiServer := httpserver.NewServer(cfg.APIAddr, store)
	if err := apiServer.Start(); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer apiServer.Stop()

	fmt.Printf("Serving usage API on http://%s (archive: %s)\n", cfg.APIAddr, cfg.DBPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	fmt.Println("\nShutting down.")

	return nil
}
