// Package mcp exposes the extractor over the Model Context Protocol on
// stdio. Three tools are served: declscan_extract for inline content,
// declscan_scan for directory trees, and declscan_languages for the
// profile table.
package mcp

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
)

// Server manages the MCP server lifecycle.
type Server struct {
	workers int
	mcp     *server.MCPServer
}

// NewServer creates an MCP server with all declscan tools registered.
// workers sets the extraction pool width for scan requests; zero means
// one per CPU.
func NewServer(workers int) *Server {
	mcpServer := server.NewMCPServer(
		"declscan-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s := &Server{workers: workers, mcp: mcpServer}
	AddExtractTool(mcpServer)
	AddScanTool(mcpServer, workers)
	AddLanguagesTool(mcpServer)
	return s
}

// Serve runs the server on stdio and blocks until a shutdown signal, a
// server error, or context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		errCh <- server.ServeStdio(s.mcp)
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
