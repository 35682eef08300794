package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lexandro/storycheck/config"
	"github.com/lexandro/storycheck/register"
	"github.com/lexandro/storycheck/report"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// errCheckFailed signals missing stories. The report already explains it,
// so main only turns it into the exit code.
var errCheckFailed = errors.New("story check failed")

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// globalFlags are shared by the check and serve commands.
type globalFlags struct {
	root            string
	configPath      string
	excludes        []string
	skipStoriesDirs bool
	skipDefaultDirs bool
	noHints         bool
	logLevel        string
	logFile         string
}

func newRootCommand() *cobra.Command {
	var flags globalFlags
	var format string
	var noColor bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "storycheck",
		Short: "Verify that every UI component has a story file",
		Long: `storycheck scans a source tree for "components" directories and checks that
every component file (.tsx/.jsx, excluding stories, tests, and index files)
has a matching story in the container's "stories" subdirectory.

It exits 0 when every component has a story and 1 otherwise.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q (must be text or json)", format)
			}

			cfg, logger, closeLog, err := loadSettings(cmd, flags)
			if err != nil {
				return err
			}
			defer closeLog()

			s, err := newScanner(cfg.Root, cfg, logger)
			if err != nil {
				return err
			}
			r, err := s.run()
			if err != nil {
				logger.Error("scan failed", "error", err)
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				err = report.WriteJSON(out, r)
			case "text":
				err = report.WriteText(out, r, report.TextOptions{
					Color:           !noColor && stdoutIsTerminal(),
					Verbose:         verbose,
					StoryExtensions: cfg.NormalizedStoryExtensions(),
				})
			}
			if err != nil {
				return err
			}

			if !r.Passed {
				return errCheckFailed
			}
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.root, "root", "", "Source directory to scan (default: src, or root from the config file)")
	pf.StringVar(&flags.configPath, "config", config.DefaultFileName, "Config file path")
	pf.StringArrayVar(&flags.excludes, "exclude", nil, "Directory pattern to skip (repeatable, doublestar syntax)")
	pf.BoolVar(&flags.skipStoriesDirs, "skip-stories-dirs", false, "Do not descend into stories directories")
	pf.BoolVar(&flags.skipDefaultDirs, "skip-default-dirs", false, "Skip .git, .svn, .hg and node_modules directories")
	pf.BoolVar(&flags.noHints, "no-hints", false, "Disable suggestions for missing stories")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug|info|warn|error (default: warn)")
	pf.StringVar(&flags.logFile, "log-file", "", "Log file path (default: stderr)")

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text|json")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also list stories without a matching component")

	cmd.AddCommand(newServeCommand(&flags))
	cmd.AddCommand(newRegisterCommand())

	return cmd
}

// loadSettings reads the config file, applies flags that were set, and builds
// the logger. The returned func closes the log file, if any.
func loadSettings(cmd *cobra.Command, flags globalFlags) (*config.Config, *slog.Logger, func(), error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	overrides := config.Flags{Exclude: flags.excludes}
	changed := cmd.Flags().Changed
	if changed("root") {
		overrides.Root = &flags.root
	}
	if changed("skip-stories-dirs") {
		overrides.SkipStoriesDirs = &flags.skipStoriesDirs
	}
	if changed("skip-default-dirs") {
		overrides.SkipDefaultDirs = &flags.skipDefaultDirs
	}
	if changed("no-hints") {
		overrides.NoHints = &flags.noHints
	}
	if changed("log-level") {
		overrides.LogLevel = &flags.logLevel
	}
	cfg.MergeWithFlags(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	logger, closeLog := setupLogger(cfg.LogLevel, flags.logFile)
	logger.Debug("configuration loaded", "config", flags.configPath, "root", cfg.Root)
	return cfg, logger, closeLog, nil
}

func newRegisterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "register project|user [directory] [-- server flags]",
		Short: "Register storycheck as an MCP server for Claude",
		// Arguments after "--" are forwarded to the server verbatim.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && (args[0] == "-h" || args[0] == "--help") {
				return cmd.Help()
			}
			serverName := register.DeriveServerName(os.Args[0])
			return register.Run(serverName, args, cmd.OutOrStdout())
		},
	}
}

// setupLogger creates an slog.Logger writing to stderr or a file, and a func
// that closes the file. stdout is reserved for the report and for MCP stdio.
func setupLogger(level string, logFile string) (*slog.Logger, func()) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	writer := os.Stderr
	closeLog := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
		} else {
			writer = f
			closeLog = func() { f.Close() }
		}
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler), closeLog
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
