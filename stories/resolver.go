package stories

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	"github.com/lexandro/storycheck/naming"
)

// DefaultDirName is the subdirectory of a container that holds its stories.
const DefaultDirName = "stories"

// DefaultExtensions are the accepted story extensions in probe order.
var DefaultExtensions = []string{".tsx", ".ts", ".jsx", ".js"}

// Resolution is the outcome of looking up a component's story.
type Resolution struct {
	HasStory  bool
	StoryPath string // Path of the first matching candidate, empty if none
}

// Resolver checks for story files next to components.
type Resolver struct {
	FS         fs.FS
	DirName    string
	Extensions []string
	Logger     *slog.Logger
}

// NewResolver creates a resolver with the default stories directory and extensions.
func NewResolver(fsys fs.FS) *Resolver {
	return &Resolver{
		FS:         fsys,
		DirName:    DefaultDirName,
		Extensions: DefaultExtensions,
	}
}

// StoriesDir returns the stories directory of a container.
func (r *Resolver) StoriesDir(containerPath string) string {
	return path.Join(containerPath, r.dirName())
}

// Candidates returns the story file names probed for a component, in order.
func (r *Resolver) Candidates(baseName string) []string {
	extensions := r.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	candidates := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		candidates = append(candidates, baseName+".stories"+ext)
	}
	return candidates
}

// Resolve looks for the first existing story candidate of a component.
// A missing stories directory is not an error. Stat failures other than
// "does not exist" are.
func (r *Resolver) Resolve(containerPath, baseName string) (Resolution, error) {
	storiesDir := r.StoriesDir(containerPath)

	isDir, err := r.isDir(storiesDir)
	if err != nil {
		return Resolution{}, err
	}
	if !isDir {
		r.logger().Debug("no stories directory", "container", containerPath, "component", baseName)
		return Resolution{}, nil
	}

	for _, candidate := range r.Candidates(baseName) {
		storyPath := path.Join(storiesDir, candidate)
		exists, err := r.exists(storyPath)
		if err != nil {
			return Resolution{}, err
		}
		if exists {
			r.logger().Debug("story resolved", "component", baseName, "story", storyPath)
			return Resolution{HasStory: true, StoryPath: storyPath}, nil
		}
	}

	return Resolution{}, nil
}

// HasStory reports whether any story candidate exists for the component.
func (r *Resolver) HasStory(containerPath, baseName string) (bool, error) {
	resolution, err := r.Resolve(containerPath, baseName)
	if err != nil {
		return false, err
	}
	return resolution.HasStory, nil
}

// StoryFile is a story file found in a container's stories directory.
type StoryFile struct {
	Path      string // Path relative to the scan root
	Component string // Component name the story documents
}

// ListStories returns the story files directly inside a container's stories
// directory, sorted by name. A missing stories directory yields no files.
func (r *Resolver) ListStories(containerPath string) ([]StoryFile, error) {
	storiesDir := r.StoriesDir(containerPath)

	isDir, err := r.isDir(storiesDir)
	if err != nil || !isDir {
		return nil, err
	}

	entries, err := fs.ReadDir(r.FS, storiesDir)
	if err != nil {
		return nil, fmt.Errorf("listing stories in %s: %w", storiesDir, err)
	}

	var files []StoryFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		component, ok := naming.StoryComponentName(entry.Name())
		if !ok {
			continue
		}
		files = append(files, StoryFile{
			Path:      path.Join(storiesDir, entry.Name()),
			Component: component,
		})
	}
	return files, nil
}

func (r *Resolver) isDir(name string) (bool, error) {
	info, err := fs.Stat(r.FS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", name, err)
	}
	return info.IsDir(), nil
}

func (r *Resolver) exists(name string) (bool, error) {
	_, err := fs.Stat(r.FS, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("checking %s: %w", name, err)
}

func (r *Resolver) dirName() string {
	if r.DirName == "" {
		return DefaultDirName
	}
	return r.DirName
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
