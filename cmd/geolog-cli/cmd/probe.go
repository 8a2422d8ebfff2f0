package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"geolog/internal/adapters/source"
	"geolog/internal/application"
	"geolog/internal/domain"
)

var probeTimeout time.Duration

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check the location source and print the first fix",
	Long: `Ask the configured location source for access and wait for one fix.
Useful to check a receiver or broker before going into the field.

Examples:
  geolog-cli probe
  geolog-cli probe --source nmea --timeout 2m`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Source:        %s\n", source.Describe(cfg.Location))

		ctx := cmd.Context()
		s, err := startSession(ctx)
		if err != nil {
			return err
		}
		defer s.stop()

		waitCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()
		fix, waitErr := s.loop.WaitForFix(waitCtx)

		var (
			auth    domain.AuthorizationState
			lastErr string
		)
		if err := s.loop.Do(ctx, func(session *application.Session) {
			auth = session.Provider.Authorization()
			lastErr = session.Provider.LastError()
		}); err != nil {
			return err
		}

		fmt.Fprintf(out, "Authorization: %s\n", auth)
		if lastErr != "" {
			fmt.Fprintf(out, "Last error:    %s\n", lastErr)
		}

		switch {
		case waitErr == nil:
			fmt.Fprintf(out, "Fix:           %s at %s\n", fix, domain.FormatTimestamp(fix.Timestamp))
			return nil
		case errors.Is(waitErr, context.DeadlineExceeded):
			return fmt.Errorf("no fix within %s", probeTimeout)
		default:
			return waitErr
		}
	},
}

func init() {
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", 30*time.Second, "how long to wait for a fix")
}
