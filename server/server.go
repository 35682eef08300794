package server

import (
	"github.com/lexandro/storycheck/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Setup creates and configures the MCP server with all tool registrations.
func Setup(
	version string,
	scanHandler *tools.ScanHandler,
	componentsHandler *tools.ComponentsHandler,
) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "storycheck",
			Version: version,
		},
		&mcp.ServerOptions{
			Instructions: `This server checks that every UI component in the project has a Storybook story file.

A component is a .tsx or .jsx file directly inside a "components" directory that is not itself a story, a test, or an index file. Its story must live at components/stories/<Name>.stories.(tsx|ts|jsx|js).

- Use storycheck_scan after adding or renaming components to see which ones still need stories
- Use storycheck_components to list component files by glob pattern
- Every call rescans the source tree; results are never cached`,
		},
	)

	// Register storycheck_scan tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "storycheck_scan",
		Description: `Scan the source tree and report components that have no story file.

Formats:
  - text (default): the same report the CLI prints, including stories without a component
  - json: the full report object with per-component results and suggestions

A report with missing stories is a normal result, not a tool error.`,
	}, scanHandler.Handle)

	// Register storycheck_components tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "storycheck_components",
		Description: `List component files found in components directories.

Pattern examples:
  - "**" - every component
  - "**/Button*" - components whose file name starts with Button
  - "features/**" - components under src/features/`,
	}, componentsHandler.Handle)

	return mcpServer
}
