// Package main provides the entry point for the Waldur MCP server.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/openportal-dev/waldur-mcp/internal/auth"
	"github.com/openportal-dev/waldur-mcp/internal/config"
	"github.com/openportal-dev/waldur-mcp/internal/endpoints"
	"github.com/openportal-dev/waldur-mcp/internal/httpclient"
	"github.com/openportal-dev/waldur-mcp/internal/log"
	"github.com/openportal-dev/waldur-mcp/internal/prompts"
	mcpserver "github.com/openportal-dev/waldur-mcp/internal/server"
	"github.com/openportal-dev/waldur-mcp/internal/tools"
	"github.com/openportal-dev/waldur-mcp/internal/waldur"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.New(cfg.LogLevel, cfg.LogFormat)

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.HTTPTimeout
	httpCfg.RetryAttempts = cfg.HTTPRetryAttempts
	httpCfg.InsecureSkipVerify = !cfg.VerifySSL
	client, err := httpclient.New(httpCfg)
	if err != nil {
		return fmt.Errorf("create http client: %w", err)
	}

	waldurClient := waldur.New(cfg.WaldurBaseURL, client, logger)

	authenticator := auth.New(auth.Config{
		ClientID:       cfg.ClientID,
		DiscoveryURL:   cfg.DiscoveryURL,
		DeviceEndpoint: cfg.DeviceEndpoint,
		TokenEndpoint:  cfg.TokenEndpoint,
	}, client, logger)

	endpointSvc := endpoints.NewService(cfg.SchemaURL, cfg.DataPath, client, logger)

	s := mcpserver.New(waldurClient, authenticator, endpointSvc, logger)
	tools.RegisterAll(s, cfg.Toolset)
	prompts.Register(s)

	logger.Info("starting waldur mcp server", "toolset", string(cfg.Toolset), "base_url", cfg.WaldurBaseURL)

	// Stdio transport: stdout is the protocol channel, logs stay on stderr.
	if err := server.ServeStdio(s.MCPServer()); err != nil {
		return err
	}
	return nil
}
