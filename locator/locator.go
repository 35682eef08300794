package locator

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	"github.com/lexandro/storycheck/catalog"
	"github.com/lexandro/storycheck/naming"
)

const (
	// DefaultContainerName is the reserved directory name for component containers.
	DefaultContainerName = "components"
	// DefaultStoriesDirName is the story subdirectory inside a container.
	DefaultStoriesDirName = "stories"
)

// DirFilter decides whether a directory is traversed. ignore.Matcher implements it.
type DirFilter interface {
	ShouldSkipDir(relPath string) bool
}

// Options configures a locate run.
type Options struct {
	// Root is the directory inside fsys where the walk starts (default ".").
	Root string
	// ContainerName is the directory name that marks a container.
	ContainerName string
	// StoriesDirName is only used when SkipStoriesDirs is set.
	StoriesDirName string
	// SkipStoriesDirs stops the walk from descending into stories directories.
	// Stories directories never hold containers in the conventional layout.
	SkipStoriesDirs bool
	// Classifier decides which files are components (default naming.DefaultClassifier).
	Classifier *naming.Classifier
	// Filter optionally skips directories.
	Filter DirFilter
	Logger *slog.Logger
}

// TraversalError is returned when a directory on the walk cannot be listed.
type TraversalError struct {
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("listing directory %s: %v", e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error {
	return e.Err
}

// Locate walks fsys depth-first from opts.Root and returns every container
// directory with its direct checkable components. Siblings are visited in the
// order fs.ReadDir returns them, which is sorted by name. Any listing failure
// aborts the walk.
func Locate(fsys fs.FS, opts Options) (*catalog.Catalog, error) {
	opts = withDefaults(opts)

	var containers []catalog.Container
	stack := []string{opts.Root}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := fs.ReadDir(fsys, dir)
		if err != nil {
			return nil, &TraversalError{Path: dir, Err: err}
		}

		if dir != opts.Root && path.Base(dir) == opts.ContainerName {
			components := collectComponents(dir, entries, opts.Classifier)
			if len(components) > 0 {
				containers = append(containers, catalog.Container{Path: dir, Components: components})
				opts.Logger.Debug("found container", "path", dir, "components", len(components))
			}
		}

		// Push in reverse so the first sibling is popped first.
		for i := len(entries) - 1; i >= 0; i-- {
			entry := entries[i]
			if !entry.IsDir() {
				continue
			}
			child := path.Join(dir, entry.Name())
			if opts.SkipStoriesDirs && entry.Name() == opts.StoriesDirName {
				continue
			}
			if opts.Filter != nil && opts.Filter.ShouldSkipDir(child) {
				opts.Logger.Debug("skipping directory", "path", child)
				continue
			}
			stack = append(stack, child)
		}
	}

	return catalog.New(containers)
}

// collectComponents classifies the direct files of a container.
func collectComponents(dir string, entries []fs.DirEntry, classifier *naming.Classifier) []catalog.Component {
	var components []catalog.Component
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !classifier.IsCheckable(entry.Name()) {
			continue
		}
		fileEntry := naming.ParseFileEntry(entry.Name())
		components = append(components, catalog.Component{
			Name:       fileEntry.BaseName,
			SourcePath: path.Join(dir, entry.Name()),
			Extension:  fileEntry.Extension,
			Container:  dir,
			Language:   naming.DetectLanguage(entry.Name()),
		})
	}
	return components
}

func withDefaults(opts Options) Options {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.ContainerName == "" {
		opts.ContainerName = DefaultContainerName
	}
	if opts.StoriesDirName == "" {
		opts.StoriesDirName = DefaultStoriesDirName
	}
	if opts.Classifier == nil {
		opts.Classifier = naming.DefaultClassifier
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return opts
}
