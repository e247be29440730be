package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/case-dashboard/internal/api"
	"github.com/case-dashboard/internal/app"
	"github.com/case-dashboard/internal/render"
)

func main() {
	migrate := flag.Bool("migrate", false, "apply case table migrations before loading a postgres source")
	importCSV := flag.String("import", "", "copy a CSV export into the postgres case table before loading")
	flag.Parse()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := app.Bootstrap(ctx, app.Options{Migrate: *migrate, ImportCSV: *importCSV})
	if err != nil {
		log.Fatalf("Failed to start case dashboard: %v", err)
	}
	defer rt.Close()

	cfg := rt.Config.GetConfig()
	rt.Logger.Infof("Serving case dashboard on %s:%d", cfg.Server.Host, cfg.Server.Port)

	server := api.NewServer(rt.Config, rt.Session, render.NewPlotlyRenderer(nil), rt.Logger)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		rt.Logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		rt.Logger.WithError(err).Error("Server failed")
		rt.Close()
		os.Exit(1)
	}

	rt.Logger.Info("Server stopped")
}
