package main

import (
	"github.com/lexandro/storycheck/catalog"
	"github.com/lexandro/storycheck/report"
	"github.com/lexandro/storycheck/server"
	"github.com/lexandro/storycheck/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run an MCP server on stdio exposing the story check as tools",
		Long: `serve runs a Model Context Protocol server on stdio. Every tool call performs
a fresh scan of the source tree; nothing is cached between calls.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closeLog, err := loadSettings(cmd, *flags)
			if err != nil {
				return err
			}
			defer closeLog()

			s, err := newScanner(cfg.Root, cfg, logger)
			if err != nil {
				return err
			}

			scanHandler := &tools.ScanHandler{
				Logger: logger,
				DoScan: func() (*report.Report, error) {
					return s.rescan()
				},
				StoryExtensions: cfg.NormalizedStoryExtensions(),
			}
			componentsHandler := &tools.ComponentsHandler{
				Logger: logger,
				DoLocate: func() (*catalog.Catalog, error) {
					s.matcher.Reload()
					return s.locate()
				},
			}

			mcpServer := server.Setup(Version, scanHandler, componentsHandler)

			logger.Info("MCP server starting on stdio", "root", s.rootDir)
			if err := mcpServer.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
				logger.Error("MCP server error", "error", err)
				return err
			}
			return nil
		},
	}
}
