package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"geolog/internal/application"
	"geolog/internal/application/commands"
)

// RegisterReadTools adds the read-only session tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, svc *Service) {
	s.AddTool(locationStatusTool(), locationStatusHandler(svc))
	s.AddTool(listCategoriesTool(), listCategoriesHandler(svc))
	s.AddTool(listObservationsTool(), listObservationsHandler(svc))
}

// --- location_status ---

func locationStatusTool() mcp.Tool {
	return mcp.NewTool("location_status",
		mcp.WithDescription("Report location permission, the current fix and its accuracy, the last delivery error and the session lock."),
	)
}

func locationStatusHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return svc.do(ctx, func(s *application.Session) (string, error) {
			return formatStatus(s.Provider, s.Log), nil
		})
	}
}

// --- list_categories ---

func listCategoriesTool() mcp.Tool {
	return mcp.NewTool("list_categories",
		mcp.WithDescription("List observation categories with their units. While the session holds records only its category can be used."),
	)
}

func listCategoriesHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return svc.do(ctx, func(s *application.Session) (string, error) {
			options, err := commands.NewListCategoriesCommand(s.Log).Execute(ctx)
			if err != nil {
				return "", err
			}
			var sb strings.Builder
			for _, o := range options {
				fmt.Fprintf(&sb, "%s  %s", o.Category.Key(), o.Category.Label())
				if unit := o.Category.Unit(); unit != "" {
					fmt.Fprintf(&sb, " (%s)", unit)
				}
				if !o.Selectable {
					sb.WriteString("  [locked]")
				}
				sb.WriteByte('\n')
			}
			return sb.String(), nil
		})
	}
}

// --- list_observations ---

func listObservationsTool() mcp.Tool {
	return mcp.NewTool("list_observations",
		mcp.WithDescription("List the observations of the session in creation order, with their IDs."),
		mcp.WithBoolean("newest_first",
			mcp.Description("List the newest observation first"),
		),
	)
}

func listObservationsHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		newestFirst := req.GetBool("newest_first", false)
		return svc.do(ctx, func(s *application.Session) (string, error) {
			result, err := commands.NewListCommand(s.Log, newestFirst).Execute(ctx)
			if err != nil {
				return "", err
			}
			return formatRecords(result.Records), nil
		})
	}
}
