package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codeqa/internal/debug"
	"github.com/standardbeagle/codeqa/internal/mcp"
)

// mcpCommand serves the analyzer over MCP stdio until the client disconnects or a signal arrives
func mcpCommand(c *cli.Context) error {
	// stdout carries the protocol; keep debug output off it
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	analyzer, cleanup, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	server, err := mcp.NewServer(analyzer, cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		debug.LogMCP("MCP server error: %v\n", err)
		return fmt.Errorf("MCP server error: %w", err)
	}
	debug.LogMCP("MCP server stopped\n")
	return nil
}
