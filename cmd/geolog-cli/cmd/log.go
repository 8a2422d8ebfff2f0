package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"geolog/internal/adapters/sqlite"
	"geolog/internal/application"
	"geolog/internal/application/commands"
	"geolog/internal/domain"
	"geolog/internal/ports"
)

var (
	logCategory string
	logFormat   string
	logTimeout  time.Duration
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log observations read from stdin, then export them",
	Long: `Read one observation per line from stdin and log each at the current
location. A line is a value, optionally followed by a semicolon and a note:

  12.5
  13;under the bridge
  ;no reading, lamp broken

Blank lines and lines starting with # are skipped. At end of input the
session is exported in the chosen format.

Examples:
  geolog-cli log --category light < readings.txt
  geolog-cli log -c tree -f geojson --source nmea`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := application.ParseCategory(logCategory)
		if err != nil {
			return err
		}
		format := ports.ExportFormat(strings.ToLower(logFormat))

		writer, sink, err := newExporter()
		if err != nil {
			return err
		}
		exportOpts := []commands.ExportOption{
			commands.WithSink(sink),
			commands.WithDatabase(sqlite.Encoder{}),
		}
		// Reject a bad format before any input is consumed
		if err := commands.NewExportCommand(nil, writer, format, exportOpts...).Validate(); err != nil {
			return err
		}

		ctx := cmd.Context()
		s, err := startSession(ctx)
		if err != nil {
			return err
		}
		defer s.stop()

		waitCtx, cancel := context.WithTimeout(ctx, logTimeout)
		fix, err := s.loop.WaitForFix(waitCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("no location fix: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Location: %s\n", fix)

		logged, failed, err := appendLines(ctx, s.loop, category, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if failed > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d line(s) rejected\n", failed)
		}
		if logged == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing logged, no export written")
			return nil
		}

		var (
			result *commands.ExportResult
			expErr error
		)
		err = s.loop.Do(ctx, func(session *application.Session) {
			result, expErr = commands.NewExportCommand(session.Log, writer, format, exportOpts...).Execute(ctx)
		})
		if err != nil {
			return err
		}
		if expErr != nil {
			return expErr
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

// appendLines logs every observation line of in. Rejected lines are
// reported on errOut and counted; only a stopped session is fatal.
func appendLines(ctx context.Context, loop *application.Loop, category domain.Category, in io.Reader, out, errOut io.Writer) (logged, failed int, err error) {
	scanner := bufio.NewScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		value, note, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}

		var (
			result    *commands.AppendResult
			appendErr error
		)
		if err := loop.Do(ctx, func(s *application.Session) {
			result, appendErr = commands.NewAppendCommand(s.Log, s.Provider, category, value, note).Execute(ctx)
		}); err != nil {
			return logged, failed, err
		}

		if appendErr != nil {
			failed++
			fmt.Fprintf(errOut, "line %d: %v\n", line, appendErr)
			continue
		}
		logged++
		fmt.Fprintln(out, result.Message)
	}
	if err := scanner.Err(); err != nil {
		return logged, failed, fmt.Errorf("reading input: %w", err)
	}
	return logged, failed, nil
}

// parseLine splits "value[;note]". Blank lines and # comments yield ok == false.
func parseLine(text string) (value, note string, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "#") {
		return "", "", false
	}
	value, note, _ = strings.Cut(text, ";")
	return strings.TrimSpace(value), strings.TrimSpace(note), true
}

func init() {
	logCmd.Flags().StringVarP(&logCategory, "category", "c", "", "category to log: "+application.CategoryKeys())
	logCmd.Flags().StringVarP(&logFormat, "format", "f", string(ports.FormatCSV), "export format (csv, geojson, sqlite)")
	logCmd.Flags().DurationVar(&logTimeout, "timeout", 30*time.Second, "how long to wait for the first fix")
	_ = logCmd.MarkFlagRequired("category")
}
