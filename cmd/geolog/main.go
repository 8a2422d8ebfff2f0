package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"geolog/internal/adapters/editor"
	"geolog/internal/adapters/filesystem"
	"geolog/internal/adapters/share"
	"geolog/internal/adapters/source"
	"geolog/internal/adapters/sqlite"
	"geolog/internal/adapters/tui"
	"geolog/internal/application"
	"geolog/internal/config"
)

var (
	cfgFile string
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "geolog",
	Short: "Terminal logger for GPS-tagged field observations",
	Long: `geolog is an interactive terminal app for logging field observations
(light, trees, microclimate, sidewalks or free-form notes) at the current
GPS position. Sessions can be exported as CSV, GeoJSON or SQLite.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/geolog/config.yaml)")
	flags.String("source", config.SourceStatic, "location source (static, nmea, mqtt)")
	flags.String("export-dir", "", "directory for export files (default: system temp dir)")
	flags.String("share", "none", "what to do with an export (clipboard, open, editor, none)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "log file (default: $XDG_STATE_HOME/geolog/geolog.log)")

	_ = v.BindPFlag("location.source", flags.Lookup("source"))
	_ = v.BindPFlag("export.dir", flags.Lookup("export-dir"))
	_ = v.BindPFlag("export.share", flags.Lookup("share"))
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("logging.file", flags.Lookup("log-file"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := config.Init(v, cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs always go to a file
	if cfg.Logging.File == "" {
		cfg.Logging.File = config.DefaultLogFile()
	}
	closeLog, err := config.SetupLogging(cfg.Logging, io.Discard)
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

	slog.Info("starting geolog", "source", source.Describe(cfg.Location), "export_dir", cfg.Export.Dir)

	opts := tui.Options{
		Writer:   filesystem.NewExporter(cfg.Export.Dir),
		Sink:     sink,
		Database: sqlite.Encoder{},
		Editor:   editor.NewOpener(),
		Source:   source.Describe(cfg.Location),
	}
	if cfg.Export.Share == share.SinkEditor {
		opts.Sink = share.None{}
		opts.EditAfterExport = true
	}
	app := tui.NewApp(application.NewSession(capability, nil), opts)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
