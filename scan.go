package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lexandro/storycheck/catalog"
	"github.com/lexandro/storycheck/config"
	"github.com/lexandro/storycheck/ignore"
	"github.com/lexandro/storycheck/locator"
	"github.com/lexandro/storycheck/naming"
	"github.com/lexandro/storycheck/report"
	"github.com/lexandro/storycheck/stories"
)

// scanner runs the locate -> resolve -> aggregate pipeline over one root.
// It holds no results between runs.
type scanner struct {
	rootDir     string // Absolute root directory
	displayRoot string // Root as shown in the report, relative to cwd when possible
	fsys        fs.FS
	cfg         *config.Config
	matcher     *ignore.Matcher
	logger      *slog.Logger
}

// newScanner prepares a scanner for rootDir. The root must be an existing directory.
func newScanner(rootDir string, cfg *config.Config, logger *slog.Logger) (*scanner, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", rootDir, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, &locator.TraversalError{Path: absRoot, Err: err}
	}
	if !info.IsDir() {
		return nil, &locator.TraversalError{Path: absRoot, Err: fmt.Errorf("not a directory")}
	}

	fsys := os.DirFS(absRoot)
	return &scanner{
		rootDir:     absRoot,
		displayRoot: displayRoot(absRoot),
		fsys:        fsys,
		cfg:         cfg,
		matcher: ignore.NewMatcher(fsys, ignore.MatcherOptions{
			CustomPatterns:   cfg.Exclude,
			RespectGitignore: cfg.RespectGitignore,
			SkipDefaultDirs:  cfg.SkipDefaultDirs,
		}),
		logger: logger,
	}, nil
}

// locate walks the root and returns the component catalog.
func (s *scanner) locate() (*catalog.Catalog, error) {
	return locator.Locate(s.fsys, locator.Options{
		ContainerName:   s.cfg.ContainerName,
		StoriesDirName:  s.cfg.StoriesDir,
		SkipStoriesDirs: s.cfg.SkipStoriesDirs,
		Classifier:      naming.NewClassifier(s.cfg.ComponentExtensions),
		Filter:          s.matcher,
		Logger:          s.logger,
	})
}

// run performs one full scan and returns the report.
func (s *scanner) run() (*report.Report, error) {
	start := time.Now()

	cat, err := s.locate()
	if err != nil {
		return nil, err
	}
	s.logger.Info("located components",
		"root", s.rootDir,
		"containers", cat.ContainerCount(),
		"components", cat.ComponentCount(),
	)

	resolver := &stories.Resolver{
		FS:         s.fsys,
		DirName:    s.cfg.StoriesDir,
		Extensions: s.cfg.NormalizedStoryExtensions(),
		Logger:     s.logger,
	}

	r, err := report.Aggregate(cat, resolver, report.Options{
		DisplayRoot: s.displayRoot,
		Hints:       s.cfg.Hints,
		MaxHints:    s.cfg.MaxHints,
		Logger:      s.logger,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("scan complete",
		"total", r.TotalComponents,
		"missing", r.MissingCount,
		"orphans", len(r.OrphanStories),
		"passed", r.Passed,
		"duration", time.Since(start),
	)
	return r, nil
}

// rescan re-reads ignore files and scans again. Used by long-running servers.
func (s *scanner) rescan() (*report.Report, error) {
	s.matcher.Reload()
	return s.run()
}

// displayRoot returns absRoot relative to the working directory, or absRoot
// itself when no relative form exists.
func displayRoot(absRoot string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return absRoot
	}
	rel, err := filepath.Rel(cwd, absRoot)
	if err != nil {
		return absRoot
	}
	return rel
}
