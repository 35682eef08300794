package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/storycheck/catalog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ComponentsArgs defines the input parameters for the storycheck_components tool.
type ComponentsArgs struct {
	Pattern    string `json:"pattern,omitempty" jsonschema:"Glob pattern over component paths relative to the source root (default **)"`
	NameOnly   bool   `json:"nameOnly,omitempty" jsonschema:"If true return only component paths without metadata"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 50)"`
}

// LocateFunc walks the source tree and returns the component catalog.
type LocateFunc func() (*catalog.Catalog, error)

// ComponentsHandler holds the dependencies for the components tool.
type ComponentsHandler struct {
	DoLocate LocateFunc
	Logger   *slog.Logger
}

// Handle processes a storycheck_components request.
func (h *ComponentsHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ComponentsArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	pattern := args.Pattern
	if pattern == "" {
		pattern = "**"
	}

	cat, err := h.DoLocate()
	if err != nil {
		h.Logger.Error("storycheck_components locate failed", "error", err)
		return errorResult(fmt.Sprintf("Scan error: %v", err)), nil, nil
	}

	results, err := cat.SearchByGlob(pattern, args.MaxResults)
	if err != nil {
		h.Logger.Error("storycheck_components failed", "pattern", pattern, "error", err)
		return errorResult(fmt.Sprintf("Search error: %v", err)), nil, nil
	}

	h.Logger.Info("storycheck_components",
		"pattern", pattern,
		"results", len(results),
		"elapsed", time.Since(start),
	)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatComponentResults(results, args.NameOnly)}},
	}, nil, nil
}
