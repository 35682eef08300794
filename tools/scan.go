package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lexandro/storycheck/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ScanArgs defines the input parameters for the storycheck_scan tool.
type ScanArgs struct {
	Format string `json:"format,omitempty" jsonschema:"Output format: text (default) or json"`
}

// ScanFunc runs one full scan. It is provided by main.go to avoid circular dependencies.
type ScanFunc func() (*report.Report, error)

// ScanHandler holds the dependencies for the scan tool.
type ScanHandler struct {
	DoScan          ScanFunc
	StoryExtensions []string
	Logger          *slog.Logger
}

// Handle processes a storycheck_scan request. Missing stories are a normal
// result; only scan failures are reported as tool errors.
func (h *ScanHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ScanArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	format := strings.ToLower(args.Format)
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "json" {
		h.Logger.Warn("storycheck_scan called with unknown format", "format", args.Format)
		return errorResult(fmt.Sprintf("Error: unknown format %q (must be text or json)", args.Format)), nil, nil
	}

	r, err := h.DoScan()
	if err != nil {
		h.Logger.Error("storycheck_scan failed", "error", err)
		return errorResult(fmt.Sprintf("Scan error: %v", err)), nil, nil
	}

	var builder strings.Builder
	if format == "json" {
		err = report.WriteJSON(&builder, r)
	} else {
		err = report.WriteText(&builder, r, report.TextOptions{
			Verbose:         true,
			StoryExtensions: h.StoryExtensions,
		})
	}
	if err != nil {
		h.Logger.Error("storycheck_scan render failed", "error", err)
		return errorResult(fmt.Sprintf("Render error: %v", err)), nil, nil
	}

	h.Logger.Info("storycheck_scan",
		"total", r.TotalComponents,
		"missing", r.MissingCount,
		"passed", r.Passed,
		"elapsed", time.Since(start),
	)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: builder.String()}},
	}, nil, nil
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
