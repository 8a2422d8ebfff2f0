// Package mcp exposes one in-memory observation session as MCP tools.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"geolog/internal/application"
	"geolog/internal/domain"
	"geolog/internal/ports"
)

// Service is what the tools operate on. Every session access goes through
// the loop so tool calls never race with location events.
type Service struct {
	Loop     *application.Loop
	Writer   ports.ExportWriter
	Sink     ports.ExportSink
	Database ports.RecordEncoder
}

// do runs fn on the session goroutine and converts its error for the client
func (s *Service) do(ctx context.Context, fn func(*application.Session) (string, error)) (*mcp.CallToolResult, error) {
	var (
		text string
		err  error
	)
	if loopErr := s.Loop.Do(ctx, func(session *application.Session) {
		text, err = fn(session)
	}); loopErr != nil {
		return toolError(loopErr)
	}
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(text), nil
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatRecords(records []domain.Record) string {
	if len(records) == 0 {
		return "No observations."
	}
	var sb strings.Builder
	for _, r := range records {
		sb.WriteString(formatRecord(r))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func formatRecord(r domain.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d  %s  %.6f,%.6f  ±%gm  %s",
		r.SequenceIndex, domain.FormatTimestamp(r.Timestamp),
		r.Latitude, r.Longitude, r.HorizontalAccuracy, r.Category.Label())
	if r.HasValue() {
		fmt.Fprintf(&sb, "  %s", domain.FormatValue(r.Value))
		if unit := r.Category.Unit(); unit != "" {
			sb.WriteString(" " + unit)
		}
	}
	if r.HasNote() {
		fmt.Fprintf(&sb, "  %q", r.NoteText())
	}
	fmt.Fprintf(&sb, "  id=%s", r.ID)
	return sb.String()
}

func formatStatus(p *application.LocationProvider, log *domain.SessionLog) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "authorization: %s\n", p.Authorization())
	fmt.Fprintf(&sb, "updating: %t\n", p.Updating())
	if fix, ok := p.CurrentFix(); ok {
		fmt.Fprintf(&sb, "fix: %.6f,%.6f ±%gm at %s\n",
			fix.Latitude, fix.Longitude, fix.HorizontalAccuracy, domain.FormatTimestamp(fix.Timestamp))
	} else {
		sb.WriteString("fix: none\n")
	}
	if msg := p.LastError(); msg != "" {
		fmt.Fprintf(&sb, "last error: %s\n", msg)
	}
	if category, ok := log.LockedCategory(); ok {
		fmt.Fprintf(&sb, "session: %d observations, locked to %s\n", log.Len(), category.Label())
	} else {
		sb.WriteString("session: empty\n")
	}
	return sb.String()
}
