package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"geolog/internal/application"
	"geolog/internal/application/commands"
	"geolog/internal/ports"
)

// RegisterWriteTools adds the tools that change or export the session.
func RegisterWriteTools(s *server.MCPServer, svc *Service) {
	s.AddTool(appendTool(), appendHandler(svc))
	s.AddTool(deleteTool(), deleteHandler(svc))
	s.AddTool(clearTool(), clearHandler(svc))
	s.AddTool(exportTool(), exportHandler(svc))
}

// --- append_observation ---

func appendTool() mcp.Tool {
	return mcp.NewTool("append_observation",
		mcp.WithDescription("Record an observation at the current location. Needs a fix, and the category must match the session's once it holds records."),
		mcp.WithString("category",
			mcp.Description("Category key: light, tree, microclimate, sidewalk or custom"),
			mcp.Required(),
		),
		mcp.WithString("value",
			mcp.Description("Numeric measurement, e.g. 350 for lux"),
		),
		mcp.WithString("note",
			mcp.Description("Free-text note. Either value or note is required."),
		),
	)
}

func appendHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category, err := application.ParseCategory(req.GetString("category", ""))
		if err != nil {
			return toolError(err)
		}
		value := req.GetString("value", "")
		note := req.GetString("note", "")

		return svc.do(ctx, func(s *application.Session) (string, error) {
			result, err := commands.NewAppendCommand(s.Log, s.Provider, category, value, note).Execute(ctx)
			if err != nil {
				return "", err
			}
			return result.Message + "\n" + formatRecord(result.Record), nil
		})
	}
}

// --- delete_observations ---

func deleteTool() mcp.Tool {
	return mcp.NewTool("delete_observations",
		mcp.WithDescription("Delete observations by ID or by 1-based index. Remaining observations are renumbered."),
		mcp.WithString("ids",
			mcp.Description("Comma-separated observation IDs"),
		),
		mcp.WithString("indices",
			mcp.Description("Comma-separated 1-based indices as shown by list_observations"),
		),
	)
}

func deleteHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids := splitList(req.GetString("ids", ""))
		positions, err := parseIndices(req.GetString("indices", ""))
		if err != nil {
			return toolError(err)
		}

		return svc.do(ctx, func(s *application.Session) (string, error) {
			cmd := commands.NewDeleteCommand(s.Log, ids...)
			cmd.Positions = positions
			result, err := cmd.Execute(ctx)
			if err != nil {
				return "", err
			}
			return result.Message, nil
		})
	}
}

// parseIndices turns "1, 3" into the 0-based positions [0 2]
func parseIndices(raw string) ([]int, error) {
	var positions []int
	for _, field := range splitList(raw) {
		n, err := strconv.Atoi(field)
		if err != nil || n < 1 {
			return nil, &application.ValidationError{
				Field:   "indices",
				Message: fmt.Sprintf("invalid index %q", field),
			}
		}
		positions = append(positions, n-1)
	}
	return positions, nil
}

func splitList(raw string) []string {
	var out []string
	for _, field := range strings.Split(raw, ",") {
		if field = strings.TrimSpace(field); field != "" {
			out = append(out, field)
		}
	}
	return out
}

// --- clear_session ---

func clearTool() mcp.Tool {
	return mcp.NewTool("clear_session",
		mcp.WithDescription("Delete every observation and unlock the category."),
	)
}

func clearHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return svc.do(ctx, func(s *application.Session) (string, error) {
			result, err := commands.NewClearCommand(s.Log).Execute(ctx)
			if err != nil {
				return "", err
			}
			return result.Message, nil
		})
	}
}

// --- export_session ---

func exportTool() mcp.Tool {
	return mcp.NewTool("export_session",
		mcp.WithDescription("Write the session to GeoLog_<unix-seconds>.<ext> and return the file path."),
		mcp.WithString("format",
			mcp.Description("Export format"),
			mcp.Enum(string(ports.FormatCSV), string(ports.FormatGeoJSON), string(ports.FormatSQLite)),
			mcp.Required(),
		),
	)
}

func exportHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		format := ports.ExportFormat(strings.ToLower(req.GetString("format", "")))

		opts := []commands.ExportOption{}
		if svc.Sink != nil {
			opts = append(opts, commands.WithSink(svc.Sink))
		}
		if svc.Database != nil {
			opts = append(opts, commands.WithDatabase(svc.Database))
		}

		return svc.do(ctx, func(s *application.Session) (string, error) {
			result, err := commands.NewExportCommand(s.Log, svc.Writer, format, opts...).Execute(ctx)
			if err != nil {
				return "", err
			}
			return result.Message, nil
		})
	}
}
