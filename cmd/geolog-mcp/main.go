package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/viper"

	"geolog/internal/adapters/filesystem"
	mcpadapter "geolog/internal/adapters/mcp"
	"geolog/internal/adapters/share"
	"geolog/internal/adapters/source"
	"geolog/internal/adapters/sqlite"
	"geolog/internal/application"
	"geolog/internal/config"
)

func main() {
	configFlag := flag.String("config", "", "config file (default: $HOME/.config/geolog/config.yaml)")
	sourceFlag := flag.String("source", "", "location source (static, nmea, mqtt); overrides the config")
	flag.Parse()

	if err := run(*configFlag, *sourceFlag); err != nil {
		log.Fatalf("geolog-mcp: %v", err)
	}
}

func run(cfgFile, sourceName string) error {
	v := viper.New()
	if err := config.Init(v, cfgFile); err != nil {
		return err
	}
	if sourceName != "" {
		v.Set("location.source", sourceName)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	// an editor would fight the client for stdin and stdout
	if cfg.Export.Share == share.SinkEditor {
		return fmt.Errorf("export.share %q needs a terminal", share.SinkEditor)
	}

	// stdout carries the protocol
	closeLog, err := config.SetupLogging(cfg.Logging, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer closeLog()

	sink, err := share.New(cfg.Export.Share)
	if err != nil {
		return err
	}
	capability, err := source.New(cfg.Location)
	if err != nil {
		return err
	}
	defer capability.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := application.NewLoop(application.NewSession(capability, nil))
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		loop.Run(ctx)
	}()
	defer func() {
		stop()
		<-loopDone
	}()

	mcpServer := server.NewMCPServer(
		"geolog-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	svc := &mcpadapter.Service{
		Loop:     loop,
		Writer:   filesystem.NewExporter(cfg.Export.Dir),
		Sink:     sink,
		Database: sqlite.Encoder{},
	}
	mcpadapter.RegisterReadTools(mcpServer, svc)
	mcpadapter.RegisterWriteTools(mcpServer, svc)

	slog.Info("serving MCP on stdio", "source", source.Describe(cfg.Location))
	return server.ServeStdio(mcpServer)
}
