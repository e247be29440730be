package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/case-dashboard/internal/app"
	"github.com/case-dashboard/internal/mcp"
	"github.com/case-dashboard/internal/setup"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		if err := setup.RunCLI(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// stdout carries the protocol
	log.SetOutput(os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := app.Bootstrap(ctx, app.Options{})
	if err != nil {
		log.Fatalf("Failed to load case dashboard: %v", err)
	}
	defer rt.Close()

	mcpConfig := rt.Config.GetConfig().MCP
	rt.Logger.Infof("Starting %s %s on stdio", mcpConfig.ServerName, mcpConfig.ServerVersion)

	server := mcp.NewServer(rt.Config, rt.Session, rt.Logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		rt.Logger.Info("Shutdown signal received, gracefully shutting down MCP server...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		rt.Logger.WithError(err).Error("MCP server failed")
		rt.Close()
		os.Exit(1)
	}

	rt.Logger.Info("Case dashboard MCP server stopped")
}
