package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"geolog/internal/adapters/filesystem"
	"geolog/internal/adapters/share"
	"geolog/internal/adapters/source"
	"geolog/internal/application"
	"geolog/internal/config"
	"geolog/internal/ports"
)

var (
	cfgFile  string
	v        = viper.New()
	cfg      *config.Config
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "geolog-cli",
	Short: "Log GPS-tagged field observations from the command line",
	Long: `geolog-cli records field observations (light, trees, microclimate,
sidewalks or free-form notes) tagged with the current GPS position, and
exports them as CSV, GeoJSON or SQLite.

The location comes from the configured source: a fixed position, an NMEA
receiver, or an OwnTracks-style MQTT topic.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return initConfig()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

// Execute runs the root command; SIGINT and SIGTERM cancel its context
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/geolog/config.yaml)")
	flags.String("source", config.SourceStatic, "location source (static, nmea, mqtt)")
	flags.String("export-dir", "", "directory for export files (default: system temp dir)")
	flags.String("share", "none", "what to do with an export (clipboard, open, editor, none)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")

	_ = v.BindPFlag("location.source", flags.Lookup("source"))
	_ = v.BindPFlag("export.dir", flags.Lookup("export-dir"))
	_ = v.BindPFlag("export.share", flags.Lookup("share"))
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("logging.format", flags.Lookup("log-format"))

	rootCmd.AddCommand(logCmd, categoriesCmd, probeCmd)
}

func initConfig() error {
	if err := config.Init(v, cfgFile); err != nil {
		return err
	}
	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg = loaded

	closer, err := config.SetupLogging(cfg.Logging, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	closeLog = closer
	return nil
}

// session is a running session loop over the configured location source
type session struct {
	loop   *application.Loop
	cancel context.CancelFunc
	done   chan struct{}
	source ports.LocationCapability
}

// startSession opens the configured source and runs a loop over it until
// stop is called
func startSession(ctx context.Context) (*session, error) {
	capability, err := source.New(cfg.Location)
	if err != nil {
		return nil, err
	}
	slog.Debug("location source", "source", source.Describe(cfg.Location))

	loop := application.NewLoop(application.NewSession(capability, nil))
	ctx, cancel := context.WithCancel(ctx)
	s := &session{
		loop:   loop,
		cancel: cancel,
		done:   make(chan struct{}),
		source: capability,
	}
	go func() {
		defer close(s.done)
		loop.Run(ctx)
	}()
	return s, nil
}

func (s *session) stop() {
	s.cancel()
	<-s.done
	if err := s.source.Close(); err != nil {
		slog.Warn("closing location source", "error", err)
	}
}

func newExporter() (ports.ExportWriter, ports.ExportSink, error) {
	sink, err := share.New(cfg.Export.Share)
	if err != nil {
		return nil, nil, err
	}
	return filesystem.NewExporter(cfg.Export.Dir), sink, nil
}
