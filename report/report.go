package report

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/lexandro/storycheck/catalog"
	"github.com/lexandro/storycheck/hints"
	"github.com/lexandro/storycheck/stories"
)

// Item is the per-component outcome of a scan.
type Item struct {
	Container   string   `json:"container"`
	Component   string   `json:"component"`
	SourcePath  string   `json:"sourcePath"`
	DisplayPath string   `json:"displayPath"`
	HasStory    bool     `json:"hasStory"`
	StoryPath   string   `json:"storyPath,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Report is the aggregated result of a scan.
type Report struct {
	Root            string   `json:"root"`
	ContainerCount  int      `json:"containerCount"`
	TotalComponents int      `json:"totalComponents"`
	SatisfiedCount  int      `json:"satisfiedCount"`
	MissingCount    int      `json:"missingCount"`
	MissingEntries  []string `json:"missingEntries"`
	Items           []Item   `json:"items"`
	OrphanStories   []string `json:"orphanStories,omitempty"`
	Passed          bool     `json:"passed"`
}

// Empty reports whether the scan found no component containers.
func (r *Report) Empty() bool {
	return r.ContainerCount == 0
}

// Missing returns the items without a story, in report order.
func (r *Report) Missing() []Item {
	var missing []Item
	for _, item := range r.Items {
		if !item.HasStory {
			missing = append(missing, item)
		}
	}
	return missing
}

// Options configures aggregation.
type Options struct {
	// DisplayRoot is joined with each source path to build the human-readable
	// identifier of a missing component, typically the root relative to cwd.
	DisplayRoot string
	// Hints enables near-miss story suggestions for missing components.
	Hints bool
	// MaxHints caps suggestions per missing component; zero disables them.
	MaxHints int
	Logger   *slog.Logger
}

// Aggregate resolves every component of the catalog and builds the report.
// Every component is evaluated; the first resolver error aborts the run.
func Aggregate(cat *catalog.Catalog, resolver *stories.Resolver, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := &Report{
		Root:           opts.DisplayRoot,
		ContainerCount: cat.ContainerCount(),
		MissingEntries: []string{},
		Items:          make([]Item, 0, cat.ComponentCount()),
	}

	for _, container := range cat.Containers() {
		for _, component := range container.Components {
			resolution, err := resolver.Resolve(container.Path, component.Name)
			if err != nil {
				return nil, fmt.Errorf("resolving story for %s: %w", component.SourcePath, err)
			}

			item := Item{
				Container:   container.Path,
				Component:   component.Name,
				SourcePath:  component.SourcePath,
				DisplayPath: displayPath(opts.DisplayRoot, component.SourcePath),
				HasStory:    resolution.HasStory,
				StoryPath:   resolution.StoryPath,
			}

			r.TotalComponents++
			if resolution.HasStory {
				r.SatisfiedCount++
			} else {
				r.MissingCount++
				r.MissingEntries = append(r.MissingEntries, item.DisplayPath)
				logger.Debug("missing story", "component", component.SourcePath)
			}
			r.Items = append(r.Items, item)
		}
	}

	orphans, storyFiles, err := findOrphans(cat, resolver)
	if err != nil {
		return nil, err
	}
	for _, orphan := range orphans {
		r.OrphanStories = append(r.OrphanStories, displayPath(opts.DisplayRoot, orphan))
	}

	if opts.Hints && opts.MaxHints > 0 && r.MissingCount > 0 && len(storyFiles) > 0 {
		if err := attachHints(r, storyFiles, opts); err != nil {
			return nil, err
		}
	}

	r.Passed = r.MissingCount == 0
	return r, nil
}

// findOrphans lists story files in container stories directories that match
// no component of their container. It also returns every story file seen.
func findOrphans(cat *catalog.Catalog, resolver *stories.Resolver) ([]string, []stories.StoryFile, error) {
	var orphans []string
	var all []stories.StoryFile

	for _, container := range cat.Containers() {
		files, err := resolver.ListStories(container.Path)
		if err != nil {
			return nil, nil, err
		}
		names := make(map[string]bool, len(container.Components))
		for _, component := range container.Components {
			names[component.Name] = true
		}
		for _, file := range files {
			all = append(all, file)
			if !names[file.Component] {
				orphans = append(orphans, file.Path)
			}
		}
	}
	return orphans, all, nil
}

// attachHints indexes every known story file and suggests candidates for each
// missing component. Stories already resolved to a component are never suggested.
func attachHints(r *Report, storyFiles []stories.StoryFile, opts Options) error {
	idx, err := hints.NewStoryIndex()
	if err != nil {
		return err
	}
	defer idx.Close()

	for _, file := range storyFiles {
		if err := idx.Add(file.Path, file.Component); err != nil {
			return err
		}
	}

	var claimed []string
	for _, item := range r.Items {
		if item.HasStory {
			claimed = append(claimed, item.StoryPath)
		}
	}

	for i := range r.Items {
		item := &r.Items[i]
		if item.HasStory {
			continue
		}
		suggestions, err := idx.Suggest(item.Component, opts.MaxHints, claimed...)
		if err != nil {
			return err
		}
		for _, s := range suggestions {
			item.Suggestions = append(item.Suggestions, displayPath(opts.DisplayRoot, s.StoryPath))
		}
	}
	return nil
}

func displayPath(root, slashPath string) string {
	return filepath.Join(root, filepath.FromSlash(slashPath))
}
